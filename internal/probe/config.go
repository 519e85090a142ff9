// Package probe smoke-tests a running prediction server: every endpoint must
// answer a canned payload deterministically and reject an incomplete one.
package probe

import (
	"time"

	"github.com/okian/enhealth/internal/domain/types"
)

// Config holds configuration for a probe run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Repeat     int           // Identical requests per endpoint
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	ReportFile string        // Optional JSON report path
	Verbose    bool          // Log every response
}

// Check is the outcome of probing one endpoint.
type Check struct {
	Condition     types.Condition `json:"condition"`
	Requests      int             `json:"requests"`
	Deterministic bool            `json:"deterministic"`
	Rejected      bool            `json:"rejectsIncomplete"`
	DroppedField  string          `json:"droppedField"`
	Result        *types.Result   `json:"result,omitempty"`
	Errors        []string        `json:"errors,omitempty"`
	Latency       time.Duration   `json:"latency"`
}

// Passed reports whether every expectation held.
func (c Check) Passed() bool {
	return len(c.Errors) == 0 && c.Deterministic && c.Rejected
}

// Report collects the checks of one run.
type Report struct {
	BaseURL   string        `json:"baseUrl"`
	Checks    []Check       `json:"checks"`
	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration"`
}

// Failed lists the conditions whose check did not pass.
func (r *Report) Failed() []types.Condition {
	var out []types.Condition
	for _, c := range r.Checks {
		if !c.Passed() {
			out = append(out, c.Condition)
		}
	}
	return out
}
