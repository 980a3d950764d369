package prompts

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Domain groups related source descriptions.
type Domain string

const (
	DomainCloud         Domain = "cloud"
	DomainGitHub        Domain = "github"
	DomainCICD          Domain = "cicd"
	DomainObservability Domain = "observability"
	DomainApplication   Domain = "application"
	DomainGeneric       Domain = "generic"
)

// SourceInfo describes a known source description.
type SourceInfo struct {
	Key         string `json:"key" yaml:"key"`
	Domain      Domain `json:"domain" yaml:"domain"`
	Subdomain   string `json:"subdomain" yaml:"subdomain"`
	Label       string `json:"label" yaml:"label"`
	Description string `json:"description" yaml:"description"`
}

var catalog = map[string]SourceInfo{
	"aws_resources":           {Domain: DomainCloud, Subdomain: "aws", Label: "AWS Cloud", Description: "AWS cloud infrastructure and services"},
	"azure_resources":         {Domain: DomainCloud, Subdomain: "azure", Label: "Azure Cloud", Description: "Azure cloud infrastructure and services"},
	"gcp_resources":           {Domain: DomainCloud, Subdomain: "gcp", Label: "GCP Cloud", Description: "Google Cloud Platform infrastructure and services"},
	"cloud_resources":         {Domain: DomainCloud, Subdomain: "generic", Label: "Generic Cloud", Description: "Generic cloud infrastructure and services"},
	"github_repo":             {Domain: DomainGitHub, Subdomain: "generic", Label: "GitHub Repository", Description: "GitHub repository and development resources"},
	"github_resources":        {Domain: DomainGitHub, Subdomain: "generic", Label: "GitHub Development", Description: "GitHub repositories, workflows, and development tools"},
	"cicd_resources":          {Domain: DomainCICD, Subdomain: "generic", Label: "CI/CD Pipeline", Description: "CI/CD pipelines and build systems"},
	"pipeline_resources":      {Domain: DomainCICD, Subdomain: "generic", Label: "Deployment Pipeline", Description: "Deployment pipelines and automation tools"},
	"logs_resources":          {Domain: DomainObservability, Subdomain: "logs", Label: "Observability Logs", Description: "Logging systems and log management"},
	"metrics_resources":       {Domain: DomainObservability, Subdomain: "metrics", Label: "Observability Metrics", Description: "Metrics collection and monitoring systems"},
	"traces_resources":        {Domain: DomainObservability, Subdomain: "traces", Label: "Observability Traces", Description: "Distributed tracing and trace analysis"},
	"observability_resources": {Domain: DomainObservability, Subdomain: "generic", Label: "General Observability", Description: "General observability and monitoring"},
	"monitoring_resources":    {Domain: DomainObservability, Subdomain: "generic", Label: "Monitoring Systems", Description: "Monitoring and alerting systems"},
	"application_resources":   {Domain: DomainApplication, Subdomain: "application", Label: "Application Hub", Description: "Cross-domain application hubs and relationships"},
}

// LookupDomain returns the catalog entry for a source description.
func LookupDomain(key string) (SourceInfo, bool) {
	info, ok := catalog[key]
	if ok {
		info.Key = key
	}
	return info, ok
}

// Catalog returns every known source description, sorted by key.
func Catalog() []SourceInfo {
	out := make([]SourceInfo, 0, len(catalog))
	for _, key := range slices.Sorted(maps.Keys(catalog)) {
		info, _ := LookupDomain(key)
		out = append(out, info)
	}
	return out
}

// IsKnownSource reports whether key is in the catalog.
func IsKnownSource(key string) bool {
	_, ok := catalog[key]
	return ok
}

// DomainOf returns the domain of key, or DomainGeneric.
func DomainOf(key string) Domain {
	if info, ok := catalog[key]; ok {
		return info.Domain
	}
	return DomainGeneric
}

// SubdomainOf returns the subdomain of key, or "generic".
func SubdomainOf(key string) string {
	if info, ok := catalog[key]; ok {
		return info.Subdomain
	}
	return "generic"
}

// DomainLabel is the human readable name of key used in logs. Unknown keys
// are returned as given.
func DomainLabel(key string) string {
	if info, ok := catalog[key]; ok {
		return info.Label
	}
	return key
}

// FocusInstruction returns extra instruction text for a source description,
// suitable for appending to custom_prompt. Generic cloud and observability
// sources name their subdomain like any other. It is empty for sources
// outside the cloud, observability, GitHub and CI/CD domains.
func FocusInstruction(key string) string {
	domain, sub := DomainOf(key), SubdomainOf(key)
	switch {
	case domain == DomainCloud && sub != "":
		return fmt.Sprintf("\nFocus specifically on %s services and infrastructure components.", strings.ToUpper(sub))
	case domain == DomainObservability && sub != "":
		return fmt.Sprintf("\nFocus specifically on %s collection and analysis.", sub)
	case domain == DomainGitHub:
		return "\nFocus specifically on GitHub repositories, workflows, and development resources."
	case domain == DomainCICD:
		return "\nFocus specifically on CI/CD pipelines, build systems, and deployment automation."
	}
	return ""
}
