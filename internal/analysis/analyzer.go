// Package analysis classifies raw user queries: which ERP modules a query
// mentions and what the user is trying to do (intent). Pure string matching,
// no side effects, no network.
package analysis

import (
	"strings"

	"erpassist/internal/logging"
)

// Intent is a coarse classification of query purpose.
type Intent string

const (
	IntentHowTo           Intent = "how_to"
	IntentTroubleshooting Intent = "troubleshooting"
	IntentComparison      Intent = "comparison"
	IntentRecommendation  Intent = "recommendation"
	IntentConfiguration   Intent = "configuration"
	IntentGeneral         Intent = "general_information"
)

// GeneralModule is the placeholder module when no catalog topic matches.
const GeneralModule = "General"

// Result holds the outcome of analyzing one query.
type Result struct {
	Modules []string
	Intent  Intent
}

// Analyzer detects topic modules and intent in query text.
type Analyzer struct {
	catalog *Catalog
}

// New creates an analyzer over the given catalog. A nil catalog uses the
// embedded default.
func New(catalog *Catalog) *Analyzer {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Analyzer{catalog: catalog}
}

// Catalog exposes the catalog the analyzer matches against.
func (a *Analyzer) Catalog() *Catalog {
	return a.catalog
}

// intentRules are evaluated in order; the first matching rule wins.
// Order is significant: "how to fix this error" is a how_to, not
// troubleshooting.
var intentRules = []struct {
	intent  Intent
	phrases []string
}{
	{IntentHowTo, []string{"how to", "how do i"}},
	{IntentTroubleshooting, []string{"error", "issue", "problem", "not working"}},
	{IntentComparison, []string{"compare", "difference between", "vs"}},
	{IntentRecommendation, []string{"best practice", "recommend"}},
	{IntentConfiguration, []string{"setup", "configure"}},
}

// Analyze extracts the modules mentioned in the query and its intent.
// All matching modules are collected; an empty or unrecognized query yields
// the General module and general_information intent.
func (a *Analyzer) Analyze(query string) Result {
	lower := strings.ToLower(query)

	var modules []string
	for _, topic := range a.catalog.Topics {
		if strings.Contains(lower, strings.ToLower(topic.Name)) {
			modules = append(modules, topic.Name)
		}
	}
	if len(modules) == 0 {
		modules = []string{GeneralModule}
	}

	intent := IntentGeneral
	for _, rule := range intentRules {
		if containsAny(lower, rule.phrases) {
			intent = rule.intent
			break
		}
	}

	logging.AnalysisDebug("query analyzed: modules=%v intent=%s", modules, intent)

	return Result{Modules: modules, Intent: intent}
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
