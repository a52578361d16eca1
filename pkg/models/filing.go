// Package models defines the shared data types for SEC filing
// acquisition, caching, and search.
package models

import (
	"fmt"
	"strings"
)

// Format is the rendering format a filing is stored in.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// Ext returns the file extension for this format, without a leading dot.
func (f Format) Ext() string {
	switch f {
	case FormatText:
		return "txt"
	case FormatMarkdown:
		return "md"
	case FormatHTML:
		return "html"
	}
	return ""
}

// ParseFormat validates and normalizes a rendering format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatText, "":
		return FormatText, nil
	case FormatMarkdown:
		return FormatMarkdown, nil
	case FormatHTML:
		return FormatHTML, nil
	}
	return "", &ErrInvalidFormat{Format: s}
}

// FormatForExt maps a file extension (without dot) back to its format.
// Returns false for unrecognized extensions.
func FormatForExt(ext string) (Format, bool) {
	switch strings.ToLower(ext) {
	case "txt":
		return FormatText, true
	case "md":
		return FormatMarkdown, true
	case "html":
		return FormatHTML, true
	}
	return "", false
}

// ErrInvalidFormat is returned when a caller supplies an unrecognized
// rendering format.
type ErrInvalidFormat struct {
	Format string
}

func (e *ErrInvalidFormat) Error() string {
	return fmt.Sprintf("invalid format %q (expected text, markdown, or html)", e.Format)
}

// Reserved form-type selector values. "CORE" expands to the most commonly
// analyzed form types; "ALL" matches every form type.
const (
	SelectorCore = "CORE"
	SelectorAll  = "ALL"
)

// FormSelector identifies which form types a listing query covers: a single
// explicit form type, the curated core set, or all form types.
type FormSelector struct {
	form string
	kind selectorKind
}

type selectorKind int

const (
	selectorExplicit selectorKind = iota
	selectorCore
	selectorAll
)

// ParseFormSelector interprets a form-type argument. The reserved values
// "CORE" and "ALL" (case-insensitive) select the curated core set and the
// unfiltered set respectively; anything else is an explicit form type.
func ParseFormSelector(s string) FormSelector {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case SelectorCore, "":
		return FormSelector{kind: selectorCore}
	case SelectorAll:
		return FormSelector{kind: selectorAll}
	}
	return FormSelector{form: strings.ToUpper(strings.TrimSpace(s)), kind: selectorExplicit}
}

// ExplicitForm builds a selector for a single concrete form type.
func ExplicitForm(form string) FormSelector {
	return FormSelector{form: strings.ToUpper(strings.TrimSpace(form)), kind: selectorExplicit}
}

func (s FormSelector) IsCore() bool     { return s.kind == selectorCore }
func (s FormSelector) IsAll() bool      { return s.kind == selectorAll }
func (s FormSelector) IsExplicit() bool { return s.kind == selectorExplicit }

// Form returns the explicit form type, or "" for CORE/ALL selectors.
func (s FormSelector) Form() string { return s.form }

// Key returns a stable string for cache keys and logging.
func (s FormSelector) Key() string {
	switch s.kind {
	case selectorCore:
		return SelectorCore
	case selectorAll:
		return SelectorAll
	}
	return s.form
}

// Matches reports whether a concrete form type satisfies this selector.
// CORE expansion is centralized in the fetcher, so here CORE and ALL both
// match everything; only explicit selectors constrain the form.
func (s FormSelector) Matches(form string) bool {
	if s.kind != selectorExplicit {
		return true
	}
	return strings.EqualFold(s.form, form)
}

// Filing is the immutable metadata record for one SEC filing. Identity is
// the accession number: two Filing values with the same AccessionNo describe
// the same real-world document even when resolved via different tickers.
type Filing struct {
	Ticker      string `json:"ticker"`
	FormType    string `json:"form_type"`
	FilingDate  string `json:"filing_date"` // YYYY-MM-DD
	AccessionNo string `json:"accession_number"`
	SECURL      string `json:"sec_url"`
	CompanyName string `json:"company_name,omitempty"`
	CIK         string `json:"cik,omitempty"`
}

// CachedFiling is a filing artifact materialized on disk.
type CachedFiling struct {
	Ticker     string `json:"ticker"`
	FormType   string `json:"form_type"`
	FilingDate string `json:"filing_date"`
	Path       string `json:"path"`
	SizeBytes  int64  `json:"size_bytes"`
	Format     Format `json:"format"`
}

// FilingContent is the uniform result of a fetch-filing request.
type FilingContent struct {
	Filing     Filing `json:"filing"`
	Path       string `json:"path"`
	Format     Format `json:"format"`
	SizeBytes  int64  `json:"size_bytes"`
	TotalLines int    `json:"total_lines"`
	Cached     bool   `json:"cached"` // true when served without an upstream download
}

// SearchMatch is one matching line within a cached filing.
type SearchMatch struct {
	LineNumber    int      `json:"line_number"` // 1-based
	Line          string   `json:"line"`
	ContextBefore []string `json:"context_before"`
	ContextAfter  []string `json:"context_after"`
}

// SearchResult is the outcome of searching within a filing. TotalMatches
// counts all matches before pagination; Matches holds the returned slice.
type SearchResult struct {
	Filing       Filing        `json:"filing"`
	Pattern      string        `json:"pattern"`
	Matches      []SearchMatch `json:"matches"`
	TotalMatches int           `json:"total_matches"`
	FilePath     string        `json:"file_path"`
}

// AvailableFiling annotates an upstream filing with its local cache state,
// produced by the list-filings merge.
type AvailableFiling struct {
	Filing
	Cached        bool              `json:"cached"`
	CachedFormats []Format          `json:"cached_formats,omitempty"`
	Paths         map[Format]string `json:"paths,omitempty"`
	SizeBytes     int64             `json:"size_bytes,omitempty"`
}
