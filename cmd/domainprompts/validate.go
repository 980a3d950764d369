package domainprompts

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/soundprediction/go-domainprompts/pkg/prompts"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that every bound template set is complete and renders",
	Long: `Check that every bound template set implements its family's operations and
that each operation renders against a context holding all of its required keys.`,
	RunE: runValidate,
}

var validateConcurrency int

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().IntVar(&validateConcurrency, "concurrency", runtime.GOMAXPROCS(0), "number of renders run in parallel")
}

type renderCheck struct {
	family prompts.Family
	key    string
	set    *prompts.TemplateSet
	op     prompts.Operation
}

func runValidate(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := a.registry.Validate(); err != nil {
		return fmt.Errorf("incomplete template sets: %w", err)
	}

	checks := collectChecks(a.registry)
	failures := renderAll(cmd.Context(), checks, validateConcurrency)
	if failures != nil {
		return failures
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d renders across %d families OK\n", len(checks), len(prompts.Families()))
	return nil
}

func collectChecks(registry *prompts.Registry) []renderCheck {
	var checks []renderCheck
	for _, family := range prompts.Families() {
		if !family.Dynamic() {
			set, err := prompts.Builtin(family, string(family))
			if err != nil {
				continue
			}
			for _, op := range set.Operations() {
				checks = append(checks, renderCheck{family: family, key: string(family), set: set, op: op})
			}
			continue
		}
		def := registry.Default(family)
		for _, op := range def.Operations() {
			checks = append(checks, renderCheck{family: family, key: "(default)", set: def, op: op})
		}
		for _, key := range registry.Domains(family) {
			set, ok := registry.Lookup(family, key)
			if !ok {
				continue
			}
			for _, op := range set.Operations() {
				checks = append(checks, renderCheck{family: family, key: key, set: set, op: op})
			}
		}
	}
	return checks
}

// renderAll renders every check and joins the failures.
func renderAll(ctx context.Context, checks []renderCheck, limit int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	var (
		mu       sync.Mutex
		failures []error
	)
	for _, check := range checks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := prompts.Render(check.set, check.op, sampleContext(check.set, check.op, check.key)); err != nil {
				mu.Lock()
				failures = append(failures, fmt.Errorf("%s/%s %s: %w", check.family, check.key, check.op, err))
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return errors.Join(failures...)
}

// sampleContext fills every key the operation requires with a placeholder.
func sampleContext(set *prompts.TemplateSet, op prompts.Operation, key string) map[string]interface{} {
	sample := map[string]interface{}{prompts.SourceDescriptionKey: key}
	for _, k := range set.RequiredKeys(op) {
		if _, ok := sample[k]; !ok {
			sample[k] = "<" + k + ">"
		}
	}
	return sample
}
