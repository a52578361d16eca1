package edgar

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bxxd/mcp-edgar-ux/pkg/models"
)

// maxExhibits caps how many exhibit documents one fetch will pull in. Some
// 8-Ks attach dozens of boilerplate exhibits.
const maxExhibits = 8

// FetchContent downloads a filing's primary document and renders it in the
// requested format. The primary document is re-resolved from the company
// submissions index by accession number, so a Filing built from either the
// historical index or the recent feed downloads the same bytes.
//
// With includeExhibits and markdown output, exhibit documents from the
// filing's archive folder are appended after the primary document.
func (c *Client) FetchContent(ctx context.Context, filing models.Filing, format models.Format, includeExhibits bool) (string, error) {
	cik := filing.CIK
	if cik == "" {
		resolved, err := c.ResolveCIK(ctx, filing.Ticker)
		if err != nil {
			return "", err
		}
		cik = resolved
	}

	primary, err := c.primaryDocument(ctx, cik, filing.AccessionNo)
	if err != nil {
		return "", err
	}
	if primary == "" {
		return "", &ErrNotFound{Ticker: filing.Ticker, FormType: filing.FormType, Date: filing.FilingDate}
	}

	op := fmt.Sprintf("download %s %s", filing.Ticker, filing.FormType)
	raw, err := c.getRaw(ctx, op, c.archiveDocURL(cik, filing.AccessionNo, primary))
	if err != nil {
		return "", err
	}

	content, err := renderContent(raw, format)
	if err != nil {
		return "", err
	}

	if includeExhibits && format == models.FormatMarkdown {
		exhibits, err := c.fetchExhibits(ctx, cik, filing.AccessionNo, primary)
		if err != nil {
			// Exhibits are an enrichment; the primary document already
			// answers the request.
			return content, nil
		}
		content += exhibits
	}
	return content, nil
}

// primaryDocument looks up the primary document filename for an accession
// number in the company's submissions index.
func (c *Client) primaryDocument(ctx context.Context, cik, accNo string) (string, error) {
	subs, err := c.submissions(ctx, cik)
	if err != nil {
		return "", err
	}
	recent := subs.Filings.Recent
	for i, acc := range recent.AccessionNumber {
		if acc != accNo {
			continue
		}
		if i < len(recent.PrimaryDocument) {
			return recent.PrimaryDocument[i], nil
		}
		return "", nil
	}
	return "", nil
}

// fetchExhibits pulls the filing's archive directory listing and renders
// each HTML exhibit to markdown, concatenated with separator headings.
func (c *Client) fetchExhibits(ctx context.Context, cik, accNo, primary string) (string, error) {
	u := fmt.Sprintf("%s/Archives/edgar/data/%s/%s/index.json",
		c.cfg.WWWBaseURL, stripCIK(cik), cleanAccession(accNo))
	var index archiveIndex
	if err := c.getJSON(ctx, "filing archive index", u, &index); err != nil {
		return "", err
	}

	items := index.Directory.Items
	sort.SliceStable(items, func(i, j int) bool { return items[i].Name < items[j].Name })

	var b strings.Builder
	count := 0
	for _, item := range items {
		if count >= maxExhibits {
			break
		}
		name := item.Name
		if name == primary || !isExhibitDoc(name) {
			continue
		}
		raw, err := c.getRaw(ctx, "download exhibit "+name, c.archiveDocURL(cik, accNo, name))
		if err != nil {
			continue
		}
		body, err := renderContent(raw, models.FormatMarkdown)
		if err != nil || strings.TrimSpace(body) == "" {
			continue
		}
		fmt.Fprintf(&b, "\n---\n\n## Exhibit: %s\n\n%s", name, body)
		count++
	}
	return b.String(), nil
}

// isExhibitDoc filters the archive listing down to renderable exhibit
// documents, skipping XBRL payloads, images, and the index pages.
func isExhibitDoc(name string) bool {
	lower := strings.ToLower(name)
	if !strings.HasSuffix(lower, ".htm") && !strings.HasSuffix(lower, ".html") {
		return false
	}
	for _, skip := range []string{"-index", "xslgfd", "xslform", "_def", "_lab", "_pre", "_cal"} {
		if strings.Contains(lower, skip) {
			return false
		}
	}
	return strings.HasPrefix(lower, "ex") || strings.Contains(lower, "-ex") ||
		strings.Contains(lower, "_ex") || strings.Contains(lower, "exhibit")
}

// CompanyFacts fetches the XBRL company-facts dataset for a ticker and
// normalizes the us-gaap taxonomy into the shared model.
func (c *Client) CompanyFacts(ctx context.Context, ticker string) (*models.CompanyFacts, error) {
	cik, err := c.ResolveCIK(ctx, ticker)
	if err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/api/xbrl/companyfacts/CIK%s.json", c.cfg.DataBaseURL, padCIK(cik))
	var resp companyFactsResponse
	if err := c.getJSON(ctx, "company facts", u, &resp); err != nil {
		return nil, fmt.Errorf("company facts for %s: %w", ticker, err)
	}

	facts := &models.CompanyFacts{
		CIK:        stripCIK(resp.CIK.String()),
		EntityName: resp.EntityName,
		Concepts:   make(map[string]models.ConceptFacts),
	}
	for concept, f := range resp.Facts["us-gaap"] {
		cf := models.ConceptFacts{Label: f.Label}
		for unit, values := range f.Units {
			for _, v := range values {
				cf.Values = append(cf.Values, models.FactValue{
					Value:        v.Val,
					Unit:         unit,
					EndDate:      v.End,
					FiscalYear:   v.FY,
					FiscalPeriod: v.FP,
					Form:         v.Form,
					Filed:        v.Filed,
				})
			}
		}
		sort.SliceStable(cf.Values, func(i, j int) bool {
			return cf.Values[i].EndDate > cf.Values[j].EndDate
		})
		facts.Concepts[concept] = cf
	}
	return facts, nil
}
