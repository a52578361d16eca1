package statements

import (
	"testing"

	"github.com/bxxd/mcp-edgar-ux/pkg/models"
)

func annual(fy int, val float64) models.FactValue {
	return models.FactValue{
		Value:        val,
		Unit:         "USD",
		EndDate:      "2023-12-31",
		FiscalYear:   fy,
		FiscalPeriod: "FY",
		Form:         "10-K",
		Filed:        "2024-01-29",
	}
}

func testFacts() *models.CompanyFacts {
	return &models.CompanyFacts{
		CIK:        "1318605",
		EntityName: "Tesla, Inc.",
		Concepts: map[string]models.ConceptFacts{
			"RevenueFromContractWithCustomerExcludingAssessedTax": {
				Label: "Revenue from Contract with Customer",
				Values: []models.FactValue{
					annual(2023, 96_773_000_000),
					annual(2022, 81_462_000_000),
					// Quarterly value must not leak into an annual statement.
					{Value: 23_000_000_000, Unit: "USD", FiscalYear: 2023, FiscalPeriod: "Q1", Form: "10-Q", Filed: "2023-04-24"},
				},
			},
			"NetIncomeLoss": {
				Label: "Net Income (Loss)",
				Values: []models.FactValue{
					annual(2023, 14_997_000_000),
					annual(2022, 12_556_000_000),
				},
			},
			"Assets": {
				Label:  "Assets",
				Values: []models.FactValue{annual(2023, 106_618_000_000)},
			},
			"EarningsPerShareDiluted": {
				Label: "Diluted EPS",
				Values: []models.FactValue{
					{Value: 4.30, Unit: "USD/shares", FiscalYear: 2023, FiscalPeriod: "FY", Form: "10-K", Filed: "2024-01-29"},
				},
			},
		},
	}
}

func TestBuildIncomeStatement(t *testing.T) {
	stmt, err := Build(testFacts(), models.StatementIncome)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(stmt.Periods) != 2 || stmt.Periods[0] != "FY2023" || stmt.Periods[1] != "FY2022" {
		t.Errorf("expected periods [FY2023 FY2022], got %v", stmt.Periods)
	}

	byLabel := make(map[string]models.StatementLine)
	for _, l := range stmt.Lines {
		byLabel[l.Label] = l
	}

	rev, ok := byLabel["Revenue"]
	if !ok {
		t.Fatal("expected a Revenue line")
	}
	if rev.Concept != "RevenueFromContractWithCustomerExcludingAssessedTax" {
		t.Errorf("expected alias concept recorded, got %s", rev.Concept)
	}
	if rev.Values["FY2023"] != 96_773_000_000 {
		t.Errorf("expected FY2023 revenue, got %v", rev.Values)
	}

	eps := byLabel["Diluted EPS"]
	if eps.Values["FY2023"] != 4.30 {
		t.Errorf("expected per-share values in USD/shares, got %v", eps.Values)
	}

	// The quarterly revenue value must not have created a phantom period or
	// overwritten an annual one.
	if len(rev.Values) != 2 {
		t.Errorf("expected 2 annual revenue values, got %v", rev.Values)
	}
}

func TestBuildRestatedYearTakesLatestFiling(t *testing.T) {
	facts := testFacts()
	restated := annual(2022, 81_500_000_000)
	restated.Filed = "2025-01-15"
	cf := facts.Concepts["NetIncomeLoss"]
	cf.Values = append(cf.Values, models.FactValue{
		Value: 12_583_000_000, Unit: "USD", FiscalYear: 2022,
		FiscalPeriod: "FY", Form: "10-K", Filed: "2025-01-15",
	})
	facts.Concepts["NetIncomeLoss"] = cf

	stmt, err := Build(facts, models.StatementIncome)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for _, l := range stmt.Lines {
		if l.Label == "Net Income" && l.Values["FY2022"] != 12_583_000_000 {
			t.Errorf("expected restated FY2022 value, got %v", l.Values["FY2022"])
		}
	}
}

func TestBuildMissingDataErrors(t *testing.T) {
	facts := &models.CompanyFacts{EntityName: "Shell Co", Concepts: map[string]models.ConceptFacts{}}
	if _, err := Build(facts, models.StatementCashFlow); err == nil {
		t.Error("expected error when no annual facts exist")
	}
	if _, err := Build(testFacts(), "bogus"); err == nil {
		t.Error("expected error for unknown statement type")
	}
}

func TestBuildAll(t *testing.T) {
	// Only income and balance data exist; "all" should return those two and
	// skip cash flow rather than failing.
	got, err := BuildAll(testFacts(), models.StatementAll)
	if err != nil {
		t.Fatalf("BuildAll failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected income and balance statements, got %d", len(got))
	}
	if got[models.StatementIncome] == nil || got[models.StatementBalance] == nil {
		t.Errorf("expected income and balance present, got %v", got)
	}

	single, err := BuildAll(testFacts(), models.StatementIncome)
	if err != nil {
		t.Fatalf("BuildAll single failed: %v", err)
	}
	if len(single) != 1 || single[models.StatementIncome] == nil {
		t.Errorf("expected only the income statement, got %v", single)
	}
}
