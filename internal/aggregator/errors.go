package aggregator

import (
	"errors"
	"fmt"

	"github.com/jackmcnulty/sports-ticker/internal/providers/espn"
)

// AdapterError wraps any failure while mapping a league's payload:
// decode errors, missing structural fields, or a recovered panic.
type AdapterError struct {
	Sport  string
	League string
	Err    error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("parsing %s scoreboard: %v", e.League, e.Err)
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}

// Failure records one league that contributed no events
type Failure struct {
	Sport  string `json:"sport"`
	League string `json:"league"`
	Err    error  `json:"-"`
}

// Message is the user-facing text; fetch and parse failures read the same
func (f Failure) Message() string {
	return AlertMessage(f.League)
}

// Kind names the failure class for logs and metrics
func (f Failure) Kind() string {
	var fetchErr *espn.FetchError
	if errors.As(f.Err, &fetchErr) {
		return "fetch"
	}
	return "parse"
}

// AlertMessage is the generic per-league failure text
func AlertMessage(league string) string {
	return fmt.Sprintf("Could not load %s scores", league)
}
