// pkg/checks/checks.go

// Package checks runs the post-deployment validation checklist: an
// ordered, declarative list of independent checks whose results aggregate
// into a single report.
package checks

import "encoding/json"

// Status classifies one check outcome, or a whole report.
type Status int

const (
	Success Status = iota
	Info
	Warning
	Error
)

// MarshalJSON emits the textual form so JSON reports read the same as
// terminal output.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s Status) String() string {
	switch s {
	case Success:
		return "SUCCESS"
	case Info:
		return "INFO"
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Result is the immutable outcome of one check.
type Result struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Status   Status `json:"status"`
	Message  string `json:"message"`
	// Hint carries the remediation guidance, distinct from the failure
	// message.
	Hint string `json:"hint,omitempty"`
}

// Report is the ordered outcome of a full validation run. It is produced
// once per run, after every check has reported.
type Report struct {
	Results []Result `json:"results"`
}

// Overall derives the report status: ERROR if any result is ERROR, else
// WARNING if any is WARNING, else SUCCESS. INFO results never affect it.
func (r Report) Overall() Status {
	overall := Success
	for _, res := range r.Results {
		switch res.Status {
		case Error:
			return Error
		case Warning:
			overall = Warning
		}
	}
	return overall
}

// ExitCode implements the three-tier policy: 0 on SUCCESS, 1 on ERROR,
// 2 on WARNING-only.
func (r Report) ExitCode() int {
	switch r.Overall() {
	case Error:
		return 1
	case Warning:
		return 2
	default:
		return 0
	}
}

// Counts returns how many results carry each status.
func (r Report) Counts() (success, info, warning, errors int) {
	for _, res := range r.Results {
		switch res.Status {
		case Success:
			success++
		case Info:
			info++
		case Warning:
			warning++
		case Error:
			errors++
		}
	}
	return
}
