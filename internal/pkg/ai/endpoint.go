// Package ai builds completion prompts and streams commit messages from
// OpenAI-compatible chat completion endpoints.
package ai

import (
	"net/url"
	"strings"
)

// ProviderFlavor selects the URL convention of the completion API.
type ProviderFlavor int

const (
	// FlavorGeneric is the OpenAI-style {base}/chat/completions convention.
	FlavorGeneric ProviderFlavor = iota
	// FlavorAzure is the Azure OpenAI deployment-scoped convention.
	FlavorAzure
)

const (
	// CompletionsPath is the path suffix of the chat completions resource.
	CompletionsPath = "/chat/completions"

	// DefaultAzureAPIVersion is used when no api-version is configured.
	DefaultAzureAPIVersion = "2024-02-15-preview"
)

// String returns the string representation of ProviderFlavor.
func (f ProviderFlavor) String() string {
	switch f {
	case FlavorGeneric:
		return "generic"
	case FlavorAzure:
		return "azure"
	default:
		return "unknown"
	}
}

// FlavorFromAzure maps the is_azure configuration switch to a flavor.
func FlavorFromAzure(isAzure bool) ProviderFlavor {
	if isAzure {
		return FlavorAzure
	}
	return FlavorGeneric
}

// ResolveEndpoint returns the request URL for the given base URL and flavor.
// It does no validation; a malformed base surfaces later as a transport error.
func ResolveEndpoint(baseURL string, flavor ProviderFlavor, model, apiVersion string) string {
	base := strings.TrimRight(baseURL, "/")

	if flavor == FlavorAzure {
		if apiVersion == "" {
			apiVersion = DefaultAzureAPIVersion
		}
		return base + "/openai/deployments/" + model + CompletionsPath +
			"?api-version=" + url.QueryEscape(apiVersion)
	}

	if strings.HasSuffix(base, CompletionsPath) {
		return base
	}
	return base + CompletionsPath
}
