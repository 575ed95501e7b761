package llm

import (
	"fmt"
	"strings"
)

// advancedPreamble frames the model as a spoken ERP assistant for the
// enriched variant.
const advancedPreamble = `You are an AI assistant specialized in ERP systems.
You provide accurate, helpful information about ERP functionality, troubleshooting, and best practices.
Be professional, concise, and accurate in your responses.
Speak naturally and conversationally, as this will be spoken by an avatar assistant.`

// BuildStandardPrompt renders the standard-variant prompt: the bare query,
// prefixed with context when there is any.
func BuildStandardPrompt(query, relevantInfo string) string {
	if relevantInfo == "" {
		return query
	}
	return fmt.Sprintf("Context: %s\n\nUser query: %s", relevantInfo, query)
}

// BuildAdvancedPrompt renders the enriched prompt: assistant preamble plus
// whichever context sections the bundle carries.
func BuildAdvancedPrompt(query string, bundle ContextBundle) string {
	var b strings.Builder
	b.WriteString(advancedPreamble)

	if bundle.RelevantInfo != "" {
		fmt.Fprintf(&b, "\n\nHere is some relevant information that might help: %s", bundle.RelevantInfo)
	}
	if bundle.UserHistory != "" {
		fmt.Fprintf(&b, "\n\nUser's recent activity: %s", bundle.UserHistory)
	}
	if bundle.DetectedIntent != "" {
		fmt.Fprintf(&b, "\n\nThe user's intent appears to be: %s", bundle.DetectedIntent)
	}

	fmt.Fprintf(&b, "\n\nUser query: %s", query)
	return b.String()
}

// ChooseVariant picks a variant for a query when the caller asked for
// automatic selection. Long queries, explanation requests, and queries with
// a how-to or troubleshooting intent get the enriched prompt.
func ChooseVariant(query, detectedIntent string) Variant {
	lower := strings.ToLower(query)
	complex := len(query) > 50 ||
		strings.Contains(lower, "explain") ||
		strings.Contains(lower, "how") ||
		detectedIntent == "how_to" ||
		detectedIntent == "troubleshooting"

	if complex {
		return ModelAdvancedGemini
	}
	return ModelGemini
}
