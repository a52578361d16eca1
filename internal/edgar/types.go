package edgar

import (
	"encoding/json"
	"strings"
	"time"
)

// --- EDGAR Submissions (data.sec.gov/submissions) ---

type submissionsResponse struct {
	CIK     string    `json:"cik"`
	Name    string    `json:"name"`
	Tickers []string  `json:"tickers"`
	Filings filingLog `json:"filings"`
}

type filingLog struct {
	Recent filingSet `json:"recent"`
}

// filingSet is EDGAR's column-oriented filing index: parallel arrays,
// one entry per filing, newest first.
type filingSet struct {
	AccessionNumber []string `json:"accessionNumber"`
	FilingDate      []string `json:"filingDate"`
	Form            []string `json:"form"`
	PrimaryDocument []string `json:"primaryDocument"`
	Description     []string `json:"primaryDocDescription"`
}

// --- CIK / Ticker Mapping ---

// tickerEntry is a row from company_tickers.json. cik_str is numeric in the
// source document, so decode through json.Number.
type tickerEntry struct {
	CIK    json.Number `json:"cik_str"`
	Ticker string      `json:"ticker"`
	Title  string      `json:"title"`
}

// --- EDGAR Company Facts (XBRL) ---

type companyFactsResponse struct {
	CIK        json.Number                `json:"cik"`
	EntityName string                     `json:"entityName"`
	Facts      map[string]map[string]fact `json:"facts"` // taxonomy -> concept -> fact
}

type fact struct {
	Label string                `json:"label"`
	Units map[string][]factUnit `json:"units"` // unit ("USD", "USD/shares") -> values
}

type factUnit struct {
	Start string  `json:"start"`
	End   string  `json:"end"`
	Val   float64 `json:"val"`
	FY    int     `json:"fy"`
	FP    string  `json:"fp"` // "Q1".."Q4", "FY"
	Form  string  `json:"form"`
	Filed string  `json:"filed"`
}

// --- Archives directory index ---

type archiveIndex struct {
	Directory archiveDirectory `json:"directory"`
}

type archiveDirectory struct {
	Items []archiveItem `json:"item"`
}

type archiveItem struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size string `json:"size"`
}

// --- Helpers ---

// padCIK pads a CIK number to 10 digits with leading zeros.
func padCIK(cik string) string {
	for len(cik) < 10 {
		cik = "0" + cik
	}
	return cik
}

// stripCIK drops leading zeros, the form used in Archives URLs.
func stripCIK(cik string) string {
	trimmed := strings.TrimLeft(cik, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}

// cleanAccession removes the dashes from an accession number, the form used
// in Archives paths.
func cleanAccession(accNo string) string {
	return strings.ReplaceAll(accNo, "-", "")
}

// normalizeDate converts any date representation EDGAR hands back into the
// canonical YYYY-MM-DD form. All Filing records are built through this, so
// nothing downstream ever branches on date shape.
func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	for _, layout := range []string{
		"2006-01-02",
		time.RFC3339,
		"2006-01-02T15:04:05.000Z",
		"2006-01-02 15:04:05",
		"01/02/2006",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	// Unknown shape: keep the first date-sized prefix rather than guessing.
	if len(s) > 10 {
		return s[:10]
	}
	return s
}
