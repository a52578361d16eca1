// Package service composes the EDGAR fetcher, the filing store, and the
// searcher into the operations exposed by the CLI and the MCP server.
package service

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/bxxd/mcp-edgar-ux/internal/cache"
	"github.com/bxxd/mcp-edgar-ux/internal/search"
	"github.com/bxxd/mcp-edgar-ux/internal/statements"
	"github.com/bxxd/mcp-edgar-ux/pkg/models"
)

// defaultForm is assumed when a single-filing request names no form type.
const defaultForm = "10-K"

// Fetcher resolves and downloads filings from EDGAR.
type Fetcher interface {
	ListAvailable(ctx context.Context, ticker string, sel models.FormSelector) ([]models.Filing, error)
	GetLatest(ctx context.Context, ticker string, sel models.FormSelector, date string) (models.Filing, error)
	FetchContent(ctx context.Context, filing models.Filing, format models.Format, includeExhibits bool) (string, error)
	CompanyFacts(ctx context.Context, ticker string) (*models.CompanyFacts, error)
}

// Service orchestrates fetch, cache, and search for filings.
type Service struct {
	fetcher  Fetcher
	store    *cache.Store
	searcher *search.Searcher
}

func New(fetcher Fetcher, store *cache.Store, searcher *search.Searcher) *Service {
	return &Service{fetcher: fetcher, store: store, searcher: searcher}
}

// FetchRequest identifies one filing and how to materialize it.
type FetchRequest struct {
	Ticker          string
	FormType        string // concrete form, "CORE", or "ALL"; empty means 10-K
	Date            string // optional YYYY-MM-DD floor
	Format          string // text (default), markdown, html
	Force           bool   // re-download even when cached
	IncludeExhibits bool
}

// FetchFiling resolves a filing, serves it from the cache when present, and
// otherwise downloads, renders, and stores it. The returned Cached flag
// reports whether the upstream was consulted for content.
func (s *Service) FetchFiling(ctx context.Context, req FetchRequest) (*models.FilingContent, error) {
	if strings.TrimSpace(req.Ticker) == "" {
		return nil, fmt.Errorf("ticker is required")
	}
	format, err := models.ParseFormat(req.Format)
	if err != nil {
		return nil, err
	}
	if err := validateDate(req.Date); err != nil {
		return nil, err
	}
	sel := fetchSelector(req.FormType)

	filing, err := s.fetcher.GetLatest(ctx, req.Ticker, sel, req.Date)
	if err != nil {
		return nil, err
	}

	if req.Force {
		if err := s.store.Remove(filing.Ticker, filing.FormType, filing.FilingDate, format); err != nil {
			return nil, err
		}
	}

	cached := s.store.Exists(filing.Ticker, filing.FormType, filing.FilingDate, format)
	var path string
	if cached {
		path, err = s.store.PathFor(filing.Ticker, filing.FormType, filing.FilingDate, format)
		if err != nil {
			return nil, err
		}
	} else {
		content, err := s.fetcher.FetchContent(ctx, filing, format, req.IncludeExhibits)
		if err != nil {
			return nil, err
		}
		path, err = s.store.Save(filing.Ticker, filing.FormType, filing.FilingDate, content, format)
		if err != nil {
			return nil, err
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, &cache.StorageError{Op: "stat", Path: path, Err: err}
	}
	totalLines, err := s.searcher.CountLines(path)
	if err != nil {
		return nil, err
	}

	return &models.FilingContent{
		Filing:     filing,
		Path:       path,
		Format:     format,
		SizeBytes:  info.Size(),
		TotalLines: totalLines,
		Cached:     cached,
	}, nil
}

// SearchRequest identifies a filing plus the pattern and search options.
type SearchRequest struct {
	FetchRequest
	Pattern       string
	ContextLines  int
	MaxResults    int
	Offset        int
	CaseSensitive bool
	WholeWord     bool
	EditDistance  int
}

// SearchFiling ensures a filing is cached locally and greps it. Fetching on
// demand means a search never fails just because nothing was fetched first.
func (s *Service) SearchFiling(ctx context.Context, req SearchRequest) (*models.SearchResult, error) {
	if strings.TrimSpace(req.Pattern) == "" {
		return nil, &search.ErrInvalidPattern{Pattern: req.Pattern, Detail: "empty pattern"}
	}

	content, err := s.FetchFiling(ctx, req.FetchRequest)
	if err != nil {
		return nil, err
	}

	matches, total, err := s.searcher.Search(content.Path, req.Pattern, search.Options{
		ContextLines:  req.ContextLines,
		MaxResults:    req.MaxResults,
		Offset:        req.Offset,
		CaseSensitive: req.CaseSensitive,
		WholeWord:     req.WholeWord,
		EditDistance:  req.EditDistance,
	})
	if err != nil {
		return nil, err
	}

	result := &models.SearchResult{
		Filing:       content.Filing,
		Pattern:      req.Pattern,
		TotalMatches: total,
		FilePath:     content.Path,
	}
	for _, m := range matches {
		result.Matches = append(result.Matches, models.SearchMatch{
			LineNumber:    m.LineNumber,
			Line:          m.Line,
			ContextBefore: m.ContextBefore,
			ContextAfter:  m.ContextAfter,
		})
	}
	return result, nil
}

// ListRequest scopes an available-filings listing.
type ListRequest struct {
	Ticker   string // optional; empty lists the global recent feed
	FormType string // concrete form, "CORE" (default), or "ALL"
	Start    int    // pagination offset into the merged listing
	Max      int    // page size; 0 means everything
}

// ListResult is one page of available filings annotated with cache state.
type ListResult struct {
	Filings []models.AvailableFiling `json:"filings"`
	Total   int                      `json:"total"` // before pagination
	Start   int                      `json:"start"`
}

// ListFilings lists filings known upstream, marking the ones already
// materialized in the local cache.
func (s *Service) ListFilings(ctx context.Context, req ListRequest) (*ListResult, error) {
	sel := models.ParseFormSelector(req.FormType)

	available, err := s.fetcher.ListAvailable(ctx, req.Ticker, sel)
	if err != nil {
		return nil, err
	}

	cachedIndex, err := s.cachedIndex(req.Ticker)
	if err != nil {
		return nil, err
	}

	annotated := make([]models.AvailableFiling, 0, len(available))
	for _, f := range available {
		af := models.AvailableFiling{Filing: f}
		key := cacheKey(f.Ticker, f.FormType, f.FilingDate)
		for _, c := range cachedIndex[key] {
			af.Cached = true
			af.CachedFormats = append(af.CachedFormats, c.Format)
			if af.Paths == nil {
				af.Paths = make(map[models.Format]string)
			}
			af.Paths[c.Format] = c.Path
			af.SizeBytes += c.SizeBytes
		}
		annotated = append(annotated, af)
	}

	total := len(annotated)
	start := req.Start
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	page := annotated[start:]
	if req.Max > 0 && len(page) > req.Max {
		page = page[:req.Max]
	}
	return &ListResult{Filings: page, Total: total, Start: start}, nil
}

// CachedResult summarizes the local cache contents. TotalSizeBytes covers
// the filtered listing; DiskUsageBytes covers the whole cache directory.
type CachedResult struct {
	Filings        []models.CachedFiling `json:"filings"`
	TotalSizeBytes int64                 `json:"total_size_bytes"`
	DiskUsageBytes int64                 `json:"disk_usage_bytes"`
	CacheDir       string                `json:"cache_dir"`
}

// ListCached lists locally cached filings, optionally narrowed by ticker
// and form type. No network traffic.
func (s *Service) ListCached(ticker, formType string) (*CachedResult, error) {
	form := ""
	if sel := models.ParseFormSelector(formType); sel.IsExplicit() {
		form = sel.Form()
	}
	filings, err := s.store.ListAll(ticker, form)
	if err != nil {
		return nil, err
	}
	var size int64
	for _, f := range filings {
		size += f.SizeBytes
	}
	return &CachedResult{
		Filings:        filings,
		TotalSizeBytes: size,
		DiskUsageBytes: s.store.DiskUsage(),
		CacheDir:       s.store.Root(),
	}, nil
}

// Statements fetches XBRL company facts and condenses them into financial
// statement summaries.
func (s *Service) Statements(ctx context.Context, ticker, statementType string) (*models.FinancialStatements, error) {
	if strings.TrimSpace(ticker) == "" {
		return nil, fmt.Errorf("ticker is required")
	}
	stype := models.StatementType(strings.ToLower(strings.TrimSpace(statementType)))
	if stype == "" {
		stype = models.StatementAll
	}
	if !models.ValidStatementType(stype) {
		return nil, fmt.Errorf("invalid statement type %q (expected all, income, balance, or cash_flow)", statementType)
	}

	facts, err := s.fetcher.CompanyFacts(ctx, ticker)
	if err != nil {
		return nil, err
	}
	built, err := statements.BuildAll(facts, stype)
	if err != nil {
		return nil, err
	}
	return &models.FinancialStatements{
		CompanyName: facts.EntityName,
		CIK:         facts.CIK,
		Ticker:      strings.ToUpper(strings.TrimSpace(ticker)),
		Statements:  built,
	}, nil
}

// Preview returns the first n lines of a cached filing with line-number
// gutters, plus the file's total line count.
func (s *Service) Preview(path string, n int) ([]string, int, error) {
	return s.searcher.ReadPreview(path, n)
}

// cachedIndex loads the cache contents keyed by (ticker, form, date).
func (s *Service) cachedIndex(ticker string) (map[string][]models.CachedFiling, error) {
	cachedFilings, err := s.store.ListAll(ticker, "")
	if err != nil {
		return nil, err
	}
	index := make(map[string][]models.CachedFiling, len(cachedFilings))
	for _, c := range cachedFilings {
		key := cacheKey(c.Ticker, c.FormType, c.FilingDate)
		index[key] = append(index[key], c)
	}
	for _, group := range index {
		sort.Slice(group, func(i, j int) bool { return group[i].Format < group[j].Format })
	}
	return index, nil
}

func cacheKey(ticker, form, date string) string {
	return strings.ToUpper(ticker) + "|" + strings.ToUpper(form) + "|" + date
}

// fetchSelector interprets the form argument of a single-filing request.
// Unlike listings, an empty form means the annual report.
func fetchSelector(formType string) models.FormSelector {
	trimmed := strings.TrimSpace(formType)
	if trimmed == "" {
		return models.ExplicitForm(defaultForm)
	}
	return models.ParseFormSelector(trimmed)
}

func validateDate(date string) error {
	if date == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", date)
	}
	return nil
}
