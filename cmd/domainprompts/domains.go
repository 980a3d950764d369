package domainprompts

import (
	"fmt"
	"maps"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/soundprediction/go-domainprompts/pkg/prompts"
)

var domainsCmd = &cobra.Command{
	Use:   "domains",
	Short: "List domain bindings, aliases and known sources",
	RunE:  runDomains,
}

var domainsCatalog bool

func init() {
	rootCmd.AddCommand(domainsCmd)

	domainsCmd.Flags().BoolVar(&domainsCatalog, "catalog", false, "also print the catalog of known source descriptions")
}

func runDomains(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FAMILY\tKEY\tTEMPLATE SET\tSOURCE")
	for _, family := range []prompts.Family{prompts.FamilyExtractNodes, prompts.FamilyExtractEdges} {
		def := a.registry.Default(family)
		fmt.Fprintf(w, "%s\t(default)\t%s\t%s\n", family, def.Name(), def.Source())
		for _, key := range a.registry.Domains(family) {
			set, ok := a.registry.Lookup(family, key)
			if !ok {
				continue
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", family, key, set.Name(), set.Source())
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	aliases := a.registry.Aliases()
	if len(aliases) > 0 {
		fmt.Fprintln(cmd.OutOrStdout())
		w = tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ALIAS\tROUTES TO")
		for _, alias := range slices.Sorted(maps.Keys(aliases)) {
			fmt.Fprintf(w, "%s\t%s\n", alias, aliases[alias])
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	if !domainsCatalog {
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout())
	w = tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SOURCE\tDOMAIN\tSUBDOMAIN\tLABEL")
	for _, info := range prompts.Catalog() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", info.Key, info.Domain, info.Subdomain, info.Label)
	}
	return w.Flush()
}
