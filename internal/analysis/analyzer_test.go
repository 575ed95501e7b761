package analysis

import (
	"reflect"
	"testing"
)

func TestAnalyzeDetectsAllMentionedModules(t *testing.T) {
	a := New(nil)

	got := a.Analyze("How does Inventory interact with Sales and Finance?")
	want := []string{"Finance", "Inventory", "Sales"}
	if !reflect.DeepEqual(got.Modules, want) {
		t.Fatalf("Modules = %v, want %v (catalog order)", got.Modules, want)
	}
}

func TestAnalyzeCaseInsensitive(t *testing.T) {
	a := New(nil)

	got := a.Analyze("tell me about PAYROLL processing")
	if !reflect.DeepEqual(got.Modules, []string{"Payroll"}) {
		t.Fatalf("Modules = %v, want [Payroll]", got.Modules)
	}
}

func TestAnalyzeDefaultsToGeneral(t *testing.T) {
	a := New(nil)

	got := a.Analyze("what is the meaning of life")
	if !reflect.DeepEqual(got.Modules, []string{GeneralModule}) {
		t.Fatalf("Modules = %v, want [General]", got.Modules)
	}
	if got.Intent != IntentGeneral {
		t.Fatalf("Intent = %s, want general_information", got.Intent)
	}
}

func TestAnalyzeEmptyQuery(t *testing.T) {
	a := New(nil)

	got := a.Analyze("")
	if !reflect.DeepEqual(got.Modules, []string{GeneralModule}) {
		t.Fatalf("Modules = %v, want [General]", got.Modules)
	}
	if got.Intent != IntentGeneral {
		t.Fatalf("Intent = %s, want general_information", got.Intent)
	}
}

func TestIntentClassification(t *testing.T) {
	a := New(nil)

	cases := []struct {
		query string
		want  Intent
	}{
		{"how to create a purchase order", IntentHowTo},
		{"how do i post a journal entry", IntentHowTo},
		{"the report is not working", IntentTroubleshooting},
		{"I get an error when saving", IntentTroubleshooting},
		{"difference between CGST and SGST", IntentComparison},
		{"GSTR-1 vs GSTR-3B", IntentComparison},
		{"what do you recommend for month-end close", IntentRecommendation},
		{"best practice for stocktaking", IntentRecommendation},
		{"how to setup the warehouse", IntentHowTo}, // rule 1 beats rule 5
		{"setup the warehouse zones", IntentConfiguration},
		{"configure the tax rates", IntentConfiguration},
		{"tell me about the system", IntentGeneral},
	}
	for _, tc := range cases {
		if got := a.Analyze(tc.query).Intent; got != tc.want {
			t.Errorf("Analyze(%q).Intent = %s, want %s", tc.query, got, tc.want)
		}
	}
}

// Rule order is part of the contract: how_to wins over troubleshooting when
// both phrasings appear in the same query.
func TestIntentPriorityOrder(t *testing.T) {
	a := New(nil)

	got := a.Analyze("how to fix this error in Payroll")
	if got.Intent != IntentHowTo {
		t.Fatalf("Intent = %s, want how_to (priority over troubleshooting)", got.Intent)
	}
}

func TestCatalogTasks(t *testing.T) {
	c := DefaultCatalog()

	tasks := c.Tasks("Finance")
	if len(tasks) == 0 {
		t.Fatal("Finance should have task phrases")
	}
	if c.Tasks("NotAModule") != nil {
		t.Error("unknown module should have nil tasks")
	}
	if len(c.ModuleNames()) != 10 {
		t.Errorf("catalog has %d modules, want 10", len(c.ModuleNames()))
	}
}
