package models

// --- Financial statements (XBRL company facts) ---

// StatementType selects which financial statements to build.
type StatementType string

const (
	StatementAll      StatementType = "all"
	StatementIncome   StatementType = "income"
	StatementBalance  StatementType = "balance"
	StatementCashFlow StatementType = "cash_flow"
)

// ValidStatementType reports whether s is a recognized statement selector.
func ValidStatementType(s StatementType) bool {
	switch s {
	case StatementAll, StatementIncome, StatementBalance, StatementCashFlow:
		return true
	}
	return false
}

// FactValue is one reported value for an XBRL concept.
type FactValue struct {
	Value        float64 `json:"value"`
	Unit         string  `json:"unit"`
	EndDate      string  `json:"end_date"` // YYYY-MM-DD
	FiscalYear   int     `json:"fiscal_year"`
	FiscalPeriod string  `json:"fiscal_period"` // "FY", "Q1", ...
	Form         string  `json:"form"`          // "10-K", "10-Q", ...
	Filed        string  `json:"filed"`
}

// ConceptFacts holds all reported values for a single XBRL concept.
type ConceptFacts struct {
	Label  string      `json:"label"`
	Values []FactValue `json:"values"`
}

// CompanyFacts is the normalized XBRL company-facts record for one entity.
// Concepts are keyed by us-gaap tag name.
type CompanyFacts struct {
	CIK        string                  `json:"cik"`
	EntityName string                  `json:"entity_name"`
	Concepts   map[string]ConceptFacts `json:"concepts"`
}

// StatementLine is one row of a multi-period statement. Values are keyed by
// period label (e.g. "FY2023"); absent periods have no entry.
type StatementLine struct {
	Label   string             `json:"label"`
	Concept string             `json:"concept"`
	Values  map[string]float64 `json:"values"`
}

// Statement is a multi-period financial statement summary.
type Statement struct {
	Type    StatementType   `json:"type"`
	Periods []string        `json:"periods"` // newest first
	Lines   []StatementLine `json:"lines"`
}

// FinancialStatements bundles the statements requested for one company.
type FinancialStatements struct {
	CompanyName string                       `json:"company_name"`
	CIK         string                       `json:"cik"`
	Ticker      string                       `json:"ticker"`
	Statements  map[StatementType]*Statement `json:"statements"`
}
