package errs

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mlcore-lang/mlcore/internal/ast"
)

// Report is the canonical structured error/warning type. All error builders
// across the pipeline return a *Report, wrapped as a ReportError so it
// survives errors.As unwrapping.
// internal/errors.Report.
type Report struct {
	Schema  string         `json:"schema"`
	Code    string         `json:"code"`
	Phase   string         `json:"phase"`
	Message string         `json:"message"`
	Pos     *ast.Pos       `json:"pos,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// ReportError wraps a Report so it satisfies the error interface while
// staying retrievable via AsReport.
type ReportError struct {
	Rep *Report
}

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown error"
	}
	return e.Rep.Error()
}

// Error renders the user-visible "<kind>: <detail> at <file>:<line>:<col>"
// format.
func (r *Report) Error() string {
	if r.Pos == nil {
		return fmt.Sprintf("%s: %s", r.Code, r.Message)
	}
	return fmt.Sprintf("%s: %s at %s", r.Code, r.Message, r.Pos.String())
}

// AsReport extracts the Report from an error chain, if any.
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// Wrap wraps a Report as an error.
func Wrap(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// New builds a Report for the given phase/code/message/position.
func New(phase, code, message string, pos *ast.Pos) *Report {
	return &Report{Schema: "mlcore.error/v1", Phase: phase, Code: code, Message: message, Pos: pos}
}

// WithData attaches structured data and returns the same Report for chaining.
func (r *Report) WithData(key string, val any) *Report {
	if r.Data == nil {
		r.Data = map[string]any{}
	}
	r.Data[key] = val
	return r
}

// ToJSON serializes the Report deterministically.
func (r *Report) ToJSON(compact bool) (string, error) {
	var data []byte
	var err error
	if compact {
		data, err = json.Marshal(r)
	} else {
		data, err = json.MarshalIndent(r, "", "  ")
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Sink accumulates warnings emitted by a Session during a single statement
//; side effects must surface in source order.
type Sink struct {
	warnings []*Report
}

func (s *Sink) Emit(r *Report) { s.warnings = append(s.warnings, r) }

func (s *Sink) Warnings() []*Report { return s.warnings }

func (s *Sink) Reset() { s.warnings = nil }
