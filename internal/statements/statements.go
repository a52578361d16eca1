// Package statements condenses XBRL company facts into multi-period
// financial statement summaries. Companies tag the same economic line item
// under different us-gaap concepts, so each statement line carries an alias
// list tried in priority order.
package statements

import (
	"fmt"
	"sort"

	"github.com/bxxd/mcp-edgar-ux/pkg/models"
)

// maxPeriods bounds how many fiscal years a statement covers.
const maxPeriods = 4

type lineSpec struct {
	Label    string
	Concepts []string // us-gaap aliases, first match wins
	PerShare bool     // reported in USD/shares rather than USD
}

var incomeLines = []lineSpec{
	{Label: "Revenue", Concepts: []string{"Revenues", "RevenueFromContractWithCustomerExcludingAssessedTax", "SalesRevenueNet"}},
	{Label: "Cost of Revenue", Concepts: []string{"CostOfRevenue", "CostOfGoodsAndServicesSold", "CostOfGoodsSold"}},
	{Label: "Gross Profit", Concepts: []string{"GrossProfit"}},
	{Label: "Operating Income", Concepts: []string{"OperatingIncomeLoss"}},
	{Label: "Net Income", Concepts: []string{"NetIncomeLoss", "ProfitLoss"}},
	{Label: "Diluted EPS", Concepts: []string{"EarningsPerShareDiluted"}, PerShare: true},
}

var balanceLines = []lineSpec{
	{Label: "Total Assets", Concepts: []string{"Assets"}},
	{Label: "Current Assets", Concepts: []string{"AssetsCurrent"}},
	{Label: "Total Liabilities", Concepts: []string{"Liabilities"}},
	{Label: "Current Liabilities", Concepts: []string{"LiabilitiesCurrent"}},
	{Label: "Stockholders' Equity", Concepts: []string{"StockholdersEquity", "StockholdersEquityIncludingPortionAttributableToNoncontrollingInterest"}},
	{Label: "Cash & Equivalents", Concepts: []string{"CashAndCashEquivalentsAtCarryingValue"}},
}

var cashFlowLines = []lineSpec{
	{Label: "Operating Cash Flow", Concepts: []string{"NetCashProvidedByUsedInOperatingActivities", "NetCashProvidedByUsedInOperatingActivitiesContinuingOperations"}},
	{Label: "Investing Cash Flow", Concepts: []string{"NetCashProvidedByUsedInInvestingActivities"}},
	{Label: "Financing Cash Flow", Concepts: []string{"NetCashProvidedByUsedInFinancingActivities"}},
	{Label: "Capital Expenditures", Concepts: []string{"PaymentsToAcquirePropertyPlantAndEquipment"}},
}

func linesFor(stype models.StatementType) ([]lineSpec, error) {
	switch stype {
	case models.StatementIncome:
		return incomeLines, nil
	case models.StatementBalance:
		return balanceLines, nil
	case models.StatementCashFlow:
		return cashFlowLines, nil
	}
	return nil, fmt.Errorf("unknown statement type %q", stype)
}

// Build assembles one statement from company facts. Only annual values
// (10-K filings tagged FY) participate; the most recently filed value wins
// when a fiscal year was reported more than once.
func Build(facts *models.CompanyFacts, stype models.StatementType) (*models.Statement, error) {
	specs, err := linesFor(stype)
	if err != nil {
		return nil, err
	}

	stmt := &models.Statement{Type: stype}
	yearSet := make(map[int]bool)

	for _, spec := range specs {
		values := annualValues(facts, spec)
		if len(values) == 0 {
			continue
		}
		line := models.StatementLine{
			Label:   spec.Label,
			Concept: conceptUsed(facts, spec),
			Values:  make(map[string]float64, len(values)),
		}
		for fy, v := range values {
			line.Values[periodLabel(fy)] = v
			yearSet[fy] = true
		}
		stmt.Lines = append(stmt.Lines, line)
	}

	if len(stmt.Lines) == 0 {
		return nil, fmt.Errorf("no annual %s facts reported for %s", stype, facts.EntityName)
	}

	years := make([]int, 0, len(yearSet))
	for fy := range yearSet {
		years = append(years, fy)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	if len(years) > maxPeriods {
		years = years[:maxPeriods]
	}
	for _, fy := range years {
		stmt.Periods = append(stmt.Periods, periodLabel(fy))
	}

	// Trim values outside the kept period window.
	keep := make(map[string]bool, len(stmt.Periods))
	for _, p := range stmt.Periods {
		keep[p] = true
	}
	for _, line := range stmt.Lines {
		for p := range line.Values {
			if !keep[p] {
				delete(line.Values, p)
			}
		}
	}
	return stmt, nil
}

// BuildAll assembles the statement set a request asks for. StatementAll
// builds every statement type that has data, failing only when none do.
func BuildAll(facts *models.CompanyFacts, stype models.StatementType) (map[models.StatementType]*models.Statement, error) {
	types := []models.StatementType{stype}
	if stype == models.StatementAll {
		types = []models.StatementType{models.StatementIncome, models.StatementBalance, models.StatementCashFlow}
	}

	out := make(map[models.StatementType]*models.Statement, len(types))
	var lastErr error
	for _, t := range types {
		stmt, err := Build(facts, t)
		if err != nil {
			lastErr = err
			continue
		}
		out[t] = stmt
	}
	if len(out) == 0 {
		return nil, lastErr
	}
	return out, nil
}

// annualValues returns FY -> value for the first alias concept with data.
func annualValues(facts *models.CompanyFacts, spec lineSpec) map[int]float64 {
	for _, concept := range spec.Concepts {
		cf, ok := facts.Concepts[concept]
		if !ok {
			continue
		}
		values := make(map[int]float64)
		filed := make(map[int]string)
		for _, v := range cf.Values {
			if !annualFact(v, spec.PerShare) {
				continue
			}
			if prev, seen := filed[v.FiscalYear]; seen && prev >= v.Filed {
				continue
			}
			values[v.FiscalYear] = v.Value
			filed[v.FiscalYear] = v.Filed
		}
		if len(values) > 0 {
			return values
		}
	}
	return nil
}

func annualFact(v models.FactValue, perShare bool) bool {
	if v.FiscalPeriod != "FY" || v.Form != "10-K" || v.FiscalYear == 0 {
		return false
	}
	if perShare {
		return v.Unit == "USD/shares"
	}
	return v.Unit == "USD"
}

// conceptUsed reports which alias satisfied the line, for display.
func conceptUsed(facts *models.CompanyFacts, spec lineSpec) string {
	for _, concept := range spec.Concepts {
		if cf, ok := facts.Concepts[concept]; ok {
			for _, v := range cf.Values {
				if annualFact(v, spec.PerShare) {
					return concept
				}
			}
		}
	}
	return spec.Concepts[0]
}

func periodLabel(fy int) string { return fmt.Sprintf("FY%d", fy) }
