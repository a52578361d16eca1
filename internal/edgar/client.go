// Package edgar implements the SEC EDGAR filing fetcher: filing metadata
// resolution, content download and rendering, and the freshness-cached
// recent-filings feed.
//
// No API key required. SEC requires a User-Agent identifying the requester
// and enforces a rate limit of 10 requests/second per user agent.
// Docs: https://www.sec.gov/edgar/sec-api-documentation
package edgar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"github.com/bxxd/mcp-edgar-ux/internal/infra"
	"github.com/bxxd/mcp-edgar-ux/pkg/models"
)

const (
	defaultDataBaseURL = "https://data.sec.gov"
	defaultWWWBaseURL  = "https://www.sec.gov"
)

// coreForms is the curated set the "CORE" selector expands to: annual and
// quarterly reports, current-event reports, and registration statements.
var coreForms = []string{"10-K", "10-Q", "8-K", "S-1"}

// ownershipForms are included in the CORE expansion only when configured.
var ownershipForms = []string{"3", "4", "5"}

// Config holds the EDGAR client settings.
type Config struct {
	UserAgent        string
	RequestTimeout   time.Duration
	RateLimitPerSec  int
	FreshWindow      time.Duration
	StaleWindow      time.Duration
	FanoutWorkers    int
	FanoutTimeout    time.Duration
	RecentPageSize   int
	IncludeOwnership bool

	// Base URL overrides, used by tests.
	DataBaseURL string
	WWWBaseURL  string
}

// Client is the SEC EDGAR API client.
type Client struct {
	cfg       Config
	client    *http.Client
	limiter   *infra.RateLimiter
	feedCache *infra.FeedCache

	// CIK<->ticker mapping, lazily built once per client lifetime.
	tickerOnce sync.Once
	tickerErr  error
	byCIK      map[string]string // stripped CIK -> ticker
	byTicker   map[string]string // upper ticker -> stripped CIK
}

// New creates an EDGAR client.
func New(cfg Config) *Client {
	if cfg.UserAgent == "" {
		cfg.UserAgent = "edgar-ux/1.0 (github.com/bxxd/mcp-edgar-ux)"
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.RateLimitPerSec <= 0 {
		cfg.RateLimitPerSec = 8
	}
	if cfg.FreshWindow <= 0 {
		cfg.FreshWindow = 30 * time.Second
	}
	if cfg.StaleWindow <= 0 {
		cfg.StaleWindow = 2 * time.Hour
	}
	if cfg.FanoutWorkers <= 0 {
		cfg.FanoutWorkers = 4
	}
	if cfg.FanoutTimeout <= 0 {
		cfg.FanoutTimeout = 45 * time.Second
	}
	if cfg.RecentPageSize <= 0 {
		cfg.RecentPageSize = 100
	}
	if cfg.DataBaseURL == "" {
		cfg.DataBaseURL = defaultDataBaseURL
	}
	if cfg.WWWBaseURL == "" {
		cfg.WWWBaseURL = defaultWWWBaseURL
	}

	return &Client{
		cfg:       cfg,
		client:    &http.Client{Timeout: cfg.RequestTimeout},
		limiter:   infra.NewRateLimiter(cfg.RateLimitPerSec, time.Second),
		feedCache: infra.NewFeedCache(cfg.FreshWindow, cfg.StaleWindow),
	}
}

func (c *Client) headers() map[string]string {
	return map[string]string{
		"User-Agent": c.cfg.UserAgent,
		"Accept":     "application/json",
	}
}

// getJSON performs a rate-limited GET against an EDGAR endpoint and decodes
// the JSON response. Timeouts and HTTP 429 map to the typed error kinds.
func (c *Client) getJSON(ctx context.Context, op, u string, dest any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	body, err := infra.DoGet(ctx, c.client, u, c.headers())
	if err != nil {
		return c.mapErr(op, err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return c.mapErr(op, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("parse EDGAR JSON for %s: %w", op, err)
	}
	return nil
}

// getRaw performs a rate-limited GET and returns the raw body bytes.
func (c *Client) getRaw(ctx context.Context, op, u string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	body, err := infra.DoGet(ctx, c.client, u, map[string]string{"User-Agent": c.cfg.UserAgent})
	if err != nil {
		return nil, c.mapErr(op, err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, c.mapErr(op, err)
	}
	return data, nil
}

// mapErr converts transport failures into the typed error taxonomy.
func (c *Client) mapErr(op string, err error) error {
	var httpErr *infra.HTTPError
	if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusTooManyRequests {
		return &ErrRateLimited{Op: op}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &ErrUpstreamTimeout{Op: op}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &ErrUpstreamTimeout{Op: op}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// --- CIK / ticker mapping ---

// loadTickerMap builds the CIK<->ticker lookup table from
// company_tickers.json. Built at most once per client.
func (c *Client) loadTickerMap(ctx context.Context) error {
	c.tickerOnce.Do(func() {
		u := c.cfg.WWWBaseURL + "/files/company_tickers.json"
		var entries map[string]tickerEntry
		if err := c.getJSON(ctx, "company tickers", u, &entries); err != nil {
			c.tickerErr = err
			return
		}
		byCIK := make(map[string]string, len(entries))
		byTicker := make(map[string]string, len(entries))
		for _, e := range entries {
			cik := stripCIK(e.CIK.String())
			ticker := strings.ToUpper(e.Ticker)
			if _, seen := byCIK[cik]; !seen {
				byCIK[cik] = ticker
			}
			byTicker[ticker] = cik
		}
		c.byCIK = byCIK
		c.byTicker = byTicker
	})
	return c.tickerErr
}

// ResolveCIK resolves a ticker symbol to its CIK number. A numeric input is
// treated as a CIK already.
func (c *Client) ResolveCIK(ctx context.Context, ticker string) (string, error) {
	sym := strings.ToUpper(strings.TrimSpace(ticker))
	if isNumeric(sym) {
		return stripCIK(sym), nil
	}
	if err := c.loadTickerMap(ctx); err != nil {
		return "", fmt.Errorf("resolve CIK for %s: %w", ticker, err)
	}
	cik, ok := c.byTicker[sym]
	if !ok {
		return "", fmt.Errorf("CIK not found for ticker %s", ticker)
	}
	return cik, nil
}

// tickerForCIK returns the ticker for a CIK, falling back to the CIK itself
// when the entity has no known ticker.
func (c *Client) tickerForCIK(cik string) string {
	if t, ok := c.byCIK[stripCIK(cik)]; ok {
		return t
	}
	return stripCIK(cik)
}

// --- Filing listings ---

// expandForms resolves a selector to the concrete form-type list used for
// ticker-less queries. ALL has no server-side filter with a ticker, but a
// ticker-less ALL is treated as CORE: the unfiltered global feed is
// dominated by high-volume noise.
func (c *Client) expandForms(sel models.FormSelector) []string {
	if sel.IsExplicit() {
		return []string{sel.Form()}
	}
	forms := append([]string(nil), coreForms...)
	if c.cfg.IncludeOwnership {
		forms = append(forms, ownershipForms...)
	}
	return forms
}

// inCoreSet reports whether a concrete form belongs to the CORE expansion.
func (c *Client) inCoreSet(form string) bool {
	for _, f := range c.expandForms(models.ParseFormSelector(models.SelectorCore)) {
		if strings.EqualFold(f, form) {
			return true
		}
	}
	return false
}

// selectorMatches applies a selector to a concrete form type, with CORE
// resolved against the configured expansion.
func (c *Client) selectorMatches(sel models.FormSelector, form string) bool {
	if sel.IsCore() {
		return c.inCoreSet(form)
	}
	return sel.Matches(form)
}

// ListAvailable lists filings matching the selector, sorted by filing date
// descending after deduplication.
//
// With a ticker, the historical submissions index is merged with the
// same-day recent feed (which covers the window where today's filings are
// not yet in the historical index), deduplicated by accession number and
// then by filing date. Recent-feed failures are logged and swallowed: a
// per-ticker request should not fail because the supplement is unavailable.
//
// Without a ticker, the global recent feed is queried per concrete form
// type, concurrently for multi-form selectors, and deduplicated by
// (ticker, form, date).
func (c *Client) ListAvailable(ctx context.Context, ticker string, sel models.FormSelector) ([]models.Filing, error) {
	if ticker == "" {
		return c.listGlobal(ctx, sel)
	}
	return c.listForTicker(ctx, ticker, sel)
}

func (c *Client) listForTicker(ctx context.Context, ticker string, sel models.FormSelector) ([]models.Filing, error) {
	cik, err := c.ResolveCIK(ctx, ticker)
	if err != nil {
		return nil, err
	}

	subs, err := c.submissions(ctx, cik)
	if err != nil {
		return nil, fmt.Errorf("list %s filings for %s: %w", sel.Key(), ticker, err)
	}

	sym := strings.ToUpper(strings.TrimSpace(ticker))
	var filings []models.Filing
	recent := subs.Filings.Recent
	for i := range recent.AccessionNumber {
		if i >= len(recent.Form) || i >= len(recent.FilingDate) {
			break
		}
		form := recent.Form[i]
		if !c.selectorMatches(sel, form) {
			continue
		}
		primary := ""
		if i < len(recent.PrimaryDocument) {
			primary = recent.PrimaryDocument[i]
		}
		filings = append(filings, models.Filing{
			Ticker:      sym,
			FormType:    form,
			FilingDate:  normalizeDate(recent.FilingDate[i]),
			AccessionNo: recent.AccessionNumber[i],
			SECURL:      c.archiveDocURL(cik, recent.AccessionNumber[i], primary),
			CompanyName: subs.Name,
			CIK:         stripCIK(subs.CIK),
		})
	}

	// Supplement with the same-day feed. Failures here are non-fatal:
	// historical-only results still answer the request.
	feedForm := ""
	if sel.IsExplicit() {
		feedForm = sel.Form()
	}
	current, err := c.recentFilings(ctx, feedForm)
	if err != nil {
		log.Printf("edgar: recent-filings supplement for %s unavailable: %v", ticker, err)
	} else {
		seen := make(map[string]bool, len(filings))
		for _, f := range filings {
			seen[f.AccessionNo] = true
		}
		for _, f := range current {
			if stripCIK(f.CIK) != cik || seen[f.AccessionNo] || !c.selectorMatches(sel, f.FormType) {
				continue
			}
			f.Ticker = sym
			if f.CompanyName == "" {
				f.CompanyName = subs.Name
			}
			filings = append(filings, f)
			seen[f.AccessionNo] = true
		}
	}

	sort.SliceStable(filings, func(i, j int) bool {
		return filings[i].FilingDate > filings[j].FilingDate
	})

	// Per-company dedupe by filing date alone: absorbs amendment-vs-original
	// pairs filed the same day, keeping the first encountered.
	byDate := make(map[string]bool, len(filings))
	out := filings[:0]
	for _, f := range filings {
		key := f.FormType + "|" + f.FilingDate
		if byDate[key] {
			continue
		}
		byDate[key] = true
		out = append(out, f)
	}
	return out, nil
}

func (c *Client) listGlobal(ctx context.Context, sel models.FormSelector) ([]models.Filing, error) {
	forms := c.expandForms(sel)

	var filings []models.Filing
	if len(forms) == 1 {
		got, err := c.recentFilings(ctx, forms[0])
		if err != nil {
			return nil, err
		}
		filings = got
	} else {
		// Bounded fan-out across the form set. Individual failures are
		// dropped; partial results are acceptable, total failure is not.
		fanCtx, cancel := context.WithTimeout(ctx, c.cfg.FanoutTimeout)
		defer cancel()

		var mu sync.Mutex
		g, gctx := errgroup.WithContext(fanCtx)
		g.SetLimit(c.cfg.FanoutWorkers)
		for _, form := range forms {
			g.Go(func() error {
				got, err := c.recentFilings(gctx, form)
				if err != nil {
					log.Printf("edgar: recent %s filings query failed: %v", form, err)
					return nil // non-fatal
				}
				mu.Lock()
				filings = append(filings, got...)
				mu.Unlock()
				return nil
			})
		}
		g.Wait() //nolint:errcheck // workers never return errors
	}

	sort.SliceStable(filings, func(i, j int) bool {
		return filings[i].FilingDate > filings[j].FilingDate
	})

	// Global dedupe by (ticker, form, date): collapses multiple accessions
	// filed the same day by the same company into one entry.
	seen := make(map[string]bool, len(filings))
	out := filings[:0]
	for _, f := range filings {
		key := f.Ticker + "|" + f.FormType + "|" + f.FilingDate
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, f)
	}
	return out, nil
}

// GetLatest resolves the single filing a (ticker, selector, date) request
// refers to. With no date, the most recent filing wins. With a date, the
// qualifying filing closest to and at-or-after the date wins, not simply
// the newest overall.
func (c *Client) GetLatest(ctx context.Context, ticker string, sel models.FormSelector, date string) (models.Filing, error) {
	filings, err := c.ListAvailable(ctx, ticker, sel)
	if err != nil {
		return models.Filing{}, err
	}
	if len(filings) == 0 {
		return models.Filing{}, &ErrNotFound{Ticker: ticker, FormType: sel.Key()}
	}

	if date == "" {
		return filings[0], nil
	}

	best := models.Filing{}
	found := false
	for _, f := range filings {
		if f.FilingDate < date {
			continue
		}
		if !found || f.FilingDate < best.FilingDate {
			best = f
			found = true
		}
	}
	if !found {
		return models.Filing{}, &ErrNotFound{Ticker: ticker, FormType: sel.Key(), Date: date}
	}
	return best, nil
}

// --- Recent filings feed ---

// feedCIKRe finds the parenthesized CIK in a getcurrent feed entry title,
// e.g. "10-K - Tesla, Inc. (0001318605) (Filer)".
var feedCIKRe = regexp.MustCompile(`\((\d{5,10})\)`)

// recentFilings queries EDGAR's getcurrent Atom feed for one form type
// (empty form means no filter). Results pass through the freshness cache:
// a fresh entry short-circuits the upstream call entirely, and a stale
// entry is served immediately rather than blocking the caller behind a
// slow or failing upstream.
func (c *Client) recentFilings(ctx context.Context, form string) ([]models.Filing, error) {
	key := "current:" + strings.ToUpper(form)
	if cached, state := c.feedCache.Get(key); state != infra.Miss {
		if state == infra.Stale {
			log.Printf("edgar: serving stale recent-filings list for %q", key)
		}
		return cached.([]models.Filing), nil
	}

	op := "recent filings feed"
	if form != "" {
		op = fmt.Sprintf("recent %s filings feed", form)
	}

	u := fmt.Sprintf("%s/cgi-bin/browse-edgar?action=getcurrent&type=%s&count=%d&output=atom",
		c.cfg.WWWBaseURL, url.QueryEscape(form), c.cfg.RecentPageSize)
	data, err := c.getRaw(ctx, op, u)
	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().Parse(strings.NewReader(string(data)))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", op, err)
	}

	// Ticker resolution for feed entries is best-effort: with no mapping
	// available the CIK doubles as the display ticker.
	if err := c.loadTickerMap(ctx); err != nil {
		log.Printf("edgar: ticker map unavailable, falling back to CIK display: %v", err)
	}

	var filings []models.Filing
	for _, item := range feed.Items {
		f, ok := c.feedItemToFiling(item)
		if !ok {
			continue
		}
		if form != "" && !strings.EqualFold(f.FormType, form) {
			continue
		}
		filings = append(filings, f)
	}

	c.feedCache.Set(key, filings)
	return filings, nil
}

// feedItemToFiling converts one Atom entry into a Filing record.
func (c *Client) feedItemToFiling(item *gofeed.Item) (models.Filing, bool) {
	accNo := ""
	if i := strings.LastIndex(item.GUID, "accession-number="); i >= 0 {
		accNo = item.GUID[i+len("accession-number="):]
	}
	if accNo == "" {
		return models.Filing{}, false
	}

	form := ""
	if len(item.Categories) > 0 {
		form = item.Categories[0]
	}
	// Title shape: "10-K - Tesla, Inc. (0001318605) (Filer)".
	title := item.Title
	if i := strings.Index(title, " - "); i > 0 {
		if form == "" {
			form = strings.TrimSpace(title[:i])
		}
		title = title[i+len(" - "):]
	}
	company, cik := "", ""
	if m := feedCIKRe.FindStringSubmatchIndex(title); m != nil {
		company = strings.TrimSpace(title[:m[0]])
		cik = stripCIK(title[m[2]:m[3]])
	}
	if cik == "" {
		return models.Filing{}, false
	}

	date := ""
	if item.UpdatedParsed != nil {
		date = item.UpdatedParsed.Format("2006-01-02")
	} else if item.PublishedParsed != nil {
		date = item.PublishedParsed.Format("2006-01-02")
	} else {
		date = normalizeDate(item.Updated)
	}

	return models.Filing{
		Ticker:      c.tickerForCIK(cik),
		FormType:    form,
		FilingDate:  date,
		AccessionNo: accNo,
		SECURL:      item.Link,
		CompanyName: company,
		CIK:         cik,
	}, true
}

// --- Submissions / archives ---

func (c *Client) submissions(ctx context.Context, cik string) (*submissionsResponse, error) {
	u := fmt.Sprintf("%s/submissions/CIK%s.json", c.cfg.DataBaseURL, padCIK(cik))
	var resp submissionsResponse
	if err := c.getJSON(ctx, "company submissions", u, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) archiveDocURL(cik, accNo, doc string) string {
	return fmt.Sprintf("%s/Archives/edgar/data/%s/%s/%s",
		c.cfg.WWWBaseURL, stripCIK(cik), cleanAccession(accNo), doc)
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
