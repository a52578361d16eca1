package format

import (
	"strings"
	"testing"

	"github.com/bxxd/mcp-edgar-ux/internal/service"
	"github.com/bxxd/mcp-edgar-ux/pkg/models"
)

func testFiling() models.Filing {
	return models.Filing{
		Ticker:      "TSLA",
		FormType:    "10-K",
		FilingDate:  "2025-01-30",
		AccessionNo: "0001318605-25-000001",
		CompanyName: "Tesla, Inc.",
	}
}

func TestFetchFiling(t *testing.T) {
	out := FetchFiling(&models.FilingContent{
		Filing:     testFiling(),
		Path:       "/var/sec-filings/TSLA/10-K/2025-01-30.txt",
		Format:     models.FormatText,
		SizeBytes:  437 * 1024,
		TotalLines: 10234,
		Cached:     false,
	}, []string{"     1→Annual Report"})

	for _, want := range []string{
		"TSLA 10-K | 2025-01-30 | FETCHED (downloaded)",
		"COMPANY:     Tesla, Inc.",
		"SIZE:        437 KB (10,234 lines)",
		"PATH: /var/sec-filings/TSLA/10-K/2025-01-30.txt",
		"PREVIEW",
		"     1→Annual Report",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}

	cached := FetchFiling(&models.FilingContent{Filing: testFiling(), Cached: true}, nil)
	if !strings.Contains(cached, "FETCHED (cached)") {
		t.Errorf("expected cached indicator, got:\n%s", cached)
	}
	if strings.Contains(cached, "PREVIEW") {
		t.Error("expected no preview section without preview lines")
	}
}

func TestSearchFiling(t *testing.T) {
	result := &models.SearchResult{
		Filing:  testFiling(),
		Pattern: "supply chain",
		Matches: []models.SearchMatch{
			{LineNumber: 1234, Line: "supply chain constraints", ContextBefore: []string{"before"}, ContextAfter: []string{"after"}},
			{LineNumber: 2456, Line: "global supply chain"},
		},
		TotalMatches: 12,
		FilePath:     "/var/sec-filings/TSLA/10-K/2025-01-30.txt",
	}

	out := SearchFiling(result, 0)
	for _, want := range []string{
		`SEARCH "supply chain"`,
		"MATCHES (12 found (showing first 2))",
		"  1233: before",
		"  1234: supply chain constraints",
		"  1235: after",
		"More: search_filing(..., offset=2)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}

	paged := SearchFiling(result, 4)
	if !strings.Contains(paged, "(showing 5-6)") {
		t.Errorf("expected offset range, got:\n%s", paged)
	}
}

func TestSearchFilingNoMatches(t *testing.T) {
	out := SearchFiling(&models.SearchResult{
		Filing:   testFiling(),
		Pattern:  "unobtainium",
		FilePath: "/var/sec-filings/TSLA/10-K/2025-01-30.txt",
	}, 0)
	if !strings.Contains(out, "NO MATCHES FOUND") {
		t.Errorf("expected no-matches message, got:\n%s", out)
	}
}

func TestListFilingsSingleTicker(t *testing.T) {
	out := ListFilings(&service.ListResult{
		Filings: []models.AvailableFiling{
			{Filing: testFiling(), Cached: true, Paths: map[models.Format]string{
				models.FormatText: "/var/sec-filings/TSLA/10-K/2025-01-30.txt",
			}},
			{Filing: models.Filing{Ticker: "TSLA", FormType: "10-K", FilingDate: "2024-01-29", CompanyName: "Tesla, Inc."}},
		},
		Total: 2,
	})

	for _, want := range []string{
		"TSLA (Tesla, Inc.) FILINGS AVAILABLE",
		"/var/sec-filings/TSLA/10-K/2025-01-30.txt",
		"(not cached - will download on demand)",
		"Showing 1-2 of 2 filings (1 cached)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestListFilingsMultiTicker(t *testing.T) {
	out := ListFilings(&service.ListResult{
		Filings: []models.AvailableFiling{
			{Filing: testFiling()},
			{Filing: models.Filing{Ticker: "AAPL", FormType: "10-Q", FilingDate: "2025-01-28", CompanyName: "Apple Inc."}},
		},
		Total: 50,
		Start: 10,
	})

	for _, want := range []string{
		"TICKER",
		"COMPANY",
		"AAPL",
		"Apple Inc.",
		"Showing 11-12 of 50 filings (0 cached)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestListCached(t *testing.T) {
	out := ListCached(&service.CachedResult{
		Filings: []models.CachedFiling{
			{Ticker: "TSLA", FormType: "10-K", FilingDate: "2025-01-30", Format: models.FormatText, SizeBytes: 437000},
		},
		TotalSizeBytes: 437000,
		CacheDir:       "/var/sec-filings",
	})

	for _, want := range []string{
		"CACHED SEC FILINGS",
		"1 filings cached",
		"437,000 bytes",
		"Cache directory: /var/sec-filings",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}

	empty := ListCached(&service.CachedResult{CacheDir: "/var/sec-filings"})
	if !strings.Contains(empty, "No filings cached yet") {
		t.Errorf("expected empty-cache message, got:\n%s", empty)
	}
}

func TestStatements(t *testing.T) {
	out := Statements(&models.FinancialStatements{
		CompanyName: "Tesla, Inc.",
		CIK:         "1318605",
		Ticker:      "TSLA",
		Statements: map[models.StatementType]*models.Statement{
			models.StatementIncome: {
				Type:    models.StatementIncome,
				Periods: []string{"FY2023", "FY2022"},
				Lines: []models.StatementLine{
					{Label: "Revenue", Values: map[string]float64{"FY2023": 96_773_000_000, "FY2022": 81_462_000_000}},
					{Label: "Diluted EPS", Values: map[string]float64{"FY2023": 4.30}},
				},
			},
		},
	})

	for _, want := range []string{
		"TSLA (Tesla, Inc.) | FINANCIAL STATEMENTS | CIK 1318605",
		"INCOME STATEMENT (ANNUAL, USD)",
		"FY2023",
		"96,773",
		"4.30",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
	// The EPS line has no FY2022 value.
	if !strings.Contains(out, "-") {
		t.Errorf("expected placeholder for missing period, got:\n%s", out)
	}
}

func TestThousands(t *testing.T) {
	cases := map[int]string{
		0:        "0",
		999:      "999",
		1000:     "1,000",
		10234:    "10,234",
		96773:    "96,773",
		-1234567: "-1,234,567",
	}
	for in, want := range cases {
		if got := thousands(in); got != want {
			t.Errorf("thousands(%d) = %q, want %q", in, got, want)
		}
	}
}
