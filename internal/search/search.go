// Package search implements line-oriented pattern search over cached filing
// files: grep-style matching with context windows, line counting, and
// head-of-file previews.
package search

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"
)

// Filings can contain very long lines (minified HTML, inline XBRL).
const maxLineBytes = 16 * 1024 * 1024

// ErrInvalidPattern is returned for unparseable search patterns.
// No I/O is attempted.
type ErrInvalidPattern struct {
	Pattern string
	Detail  string
}

func (e *ErrInvalidPattern) Error() string {
	return fmt.Sprintf("invalid search pattern %q: %s", e.Pattern, e.Detail)
}

// ErrSearchTimeout is returned when a search exceeds its wall-clock budget.
// Distinct from a zero-match result.
type ErrSearchTimeout struct {
	Budget time.Duration
}

func (e *ErrSearchTimeout) Error() string {
	return fmt.Sprintf("search timed out after %s (file too large or pattern too complex)", e.Budget)
}

// Options controls a single search call.
type Options struct {
	ContextLines  int  // lines of context before and after each match
	MaxResults    int  // pagination: size of the returned slice
	Offset        int  // pagination: matches to skip
	CaseSensitive bool // default is case-insensitive
	WholeWord     bool // constrain matches to word boundaries
	EditDistance  int  // >0 enables fuzzy matching of the literal pattern
}

// Match is one matching line with its surrounding context.
type Match struct {
	LineNumber    int
	Line          string
	ContextBefore []string
	ContextAfter  []string
}

// Searcher runs bounded-time searches over files on disk.
type Searcher struct {
	timeout time.Duration
}

// New creates a Searcher with the given wall-clock budget per operation.
func New(timeout time.Duration) *Searcher {
	return &Searcher{timeout: timeout}
}

// CountLines returns the number of lines in the file.
func (s *Searcher) CountLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	scanner := newLineScanner(f)
	for scanner.Scan() {
		count++
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("count lines %s: %w", path, err)
	}
	return count, nil
}

// ReadPreview returns the first n lines, each prefixed with a left-padded
// 1-based line number, plus the file's total line count. n = 0 returns an
// empty preview and the true total.
func (s *Searcher) ReadPreview(path string, n int) ([]string, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	var preview []string
	total := 0
	scanner := newLineScanner(f)
	for scanner.Scan() {
		total++
		if total <= n {
			preview = append(preview, fmt.Sprintf("%6d→%s", total, scanner.Text()))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("read preview %s: %w", path, err)
	}
	return preview, total, nil
}

// Search finds all lines matching pattern, in ascending line order, each
// with up to opts.ContextLines lines of context on either side (truncated
// at file boundaries). The returned total counts every match; Offset and
// MaxResults paginate only the returned slice.
func (s *Searcher) Search(path, pattern string, opts Options) ([]Match, int, error) {
	matcher, err := compileMatcher(pattern, opts)
	if err != nil {
		return nil, 0, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	deadline := time.Now().Add(s.timeout)

	var lines []string
	scanner := newLineScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if len(lines)%4096 == 0 && time.Now().After(deadline) {
			return nil, 0, &ErrSearchTimeout{Budget: s.timeout}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("scan %s: %w", path, err)
	}

	var matches []Match
	for i, line := range lines {
		if i%2048 == 0 && time.Now().After(deadline) {
			return nil, 0, &ErrSearchTimeout{Budget: s.timeout}
		}
		if !matcher(line) {
			continue
		}
		matches = append(matches, Match{
			LineNumber:    i + 1,
			Line:          line,
			ContextBefore: contextSlice(lines, i-opts.ContextLines, i),
			ContextAfter:  contextSlice(lines, i+1, i+1+opts.ContextLines),
		})
	}

	total := len(matches)
	start := opts.Offset
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := total
	if opts.MaxResults > 0 && start+opts.MaxResults < end {
		end = start + opts.MaxResults
	}
	return matches[start:end], total, nil
}

// compileMatcher builds the per-line match predicate.
func compileMatcher(pattern string, opts Options) (func(string) bool, error) {
	if opts.EditDistance > 0 {
		// Fuzzy mode treats the pattern as a literal.
		needle := pattern
		if !opts.CaseSensitive {
			needle = strings.ToLower(needle)
		}
		k := opts.EditDistance
		return func(line string) bool {
			if !opts.CaseSensitive {
				line = strings.ToLower(line)
			}
			return fuzzyContains(line, needle, k)
		}, nil
	}

	expr := pattern
	if opts.WholeWord {
		expr = `\b(?:` + expr + `)\b`
	}
	if !opts.CaseSensitive {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, &ErrInvalidPattern{Pattern: pattern, Detail: err.Error()}
	}
	return re.MatchString, nil
}

// contextSlice returns lines[lo:hi] clamped to file boundaries, copied so
// callers can hold the result without pinning the whole file.
func contextSlice(lines []string, lo, hi int) []string {
	if lo < 0 {
		lo = 0
	}
	if hi > len(lines) {
		hi = len(lines)
	}
	if lo >= hi {
		return nil
	}
	out := make([]string, hi-lo)
	copy(out, lines[lo:hi])
	return out
}

// fuzzyContains reports whether text contains a substring within edit
// distance k of needle (Sellers approximate matching: substitutions,
// insertions, and deletions all cost 1).
func fuzzyContains(text, needle string, k int) bool {
	if needle == "" {
		return true
	}
	p := []rune(needle)
	t := []rune(text)
	m := len(p)

	// prev[i] is the edit distance for the first i pattern runes ending
	// anywhere before the current text rune. Column 0 stays 0: a match may
	// start at any position.
	prev := make([]int, m+1)
	cur := make([]int, m+1)
	for i := 0; i <= m; i++ {
		prev[i] = i
	}
	for _, r := range t {
		cur[0] = 0
		for i := 1; i <= m; i++ {
			cost := 1
			if p[i-1] == r {
				cost = 0
			}
			cur[i] = min3(prev[i-1]+cost, prev[i]+1, cur[i-1]+1)
		}
		if cur[m] <= k {
			return true
		}
		prev, cur = cur, prev
	}
	return false
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

func newLineScanner(f *os.File) *bufio.Scanner {
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	return scanner
}
