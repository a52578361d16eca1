package edgar

import "fmt"

// ErrNotFound is returned when no filing matches the requested
// ticker/form/date constraints. Never retried.
type ErrNotFound struct {
	Ticker   string
	FormType string
	Date     string
}

func (e *ErrNotFound) Error() string {
	if e.Date != "" {
		return fmt.Sprintf("no %s filings found for %s on or after %s", e.FormType, e.Ticker, e.Date)
	}
	return fmt.Sprintf("no %s filings found for %s", e.FormType, e.Ticker)
}

// ErrUpstreamTimeout is returned when SEC EDGAR was too slow to respond.
type ErrUpstreamTimeout struct {
	Op string
}

func (e *ErrUpstreamTimeout) Error() string {
	return fmt.Sprintf("SEC EDGAR timed out during %s; try again in a few seconds", e.Op)
}

// ErrRateLimited is returned when SEC EDGAR refused service with HTTP 429.
type ErrRateLimited struct {
	Op string
}

func (e *ErrRateLimited) Error() string {
	return fmt.Sprintf("SEC EDGAR rate limited %s; wait a few seconds before retrying", e.Op)
}
