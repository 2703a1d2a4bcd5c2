// Package replcore implements the REPL wire surface as a
// non-interactive statement runner: input is a `;`-terminated statement
// sequence, output is one `val <name> = <value> : <type>` line per binding,
// with bare expressions bound to `it`. The interactive shell around it (line
// editing, history) lives in cmd/mlcore; everything testable about the
// wire format lives here.
package replcore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mlcore-lang/mlcore/internal/errs"
	"github.com/mlcore-lang/mlcore/internal/eval"
	"github.com/mlcore-lang/mlcore/internal/parser"
	"github.com/mlcore-lang/mlcore/internal/session"
)

// Runner renders a Session's statement results in the wire format.
type Runner struct {
	S *session.Session
}

// New wraps a session.
func New(s *session.Session) *Runner { return &Runner{S: s} }

// Run executes src and returns the wire output for every binding produced,
// including those of statements preceding a failure. Empty input produces
// empty output.
func (r *Runner) Run(file, src string) (string, error) {
	bindings, err := r.S.Execute(file, src)
	var sb strings.Builder
	for _, b := range bindings {
		fmt.Fprintf(&sb, "val %s = %s : %s\n", b.Name, b.Value.String(), b.Type)
	}
	return sb.String(), err
}

// Warnings returns the warnings the last Run accumulated, in source
// order.
func (r *Runner) Warnings() []*errs.Report { return r.S.Warnings.Warnings() }

// ExitCode maps an error from Run to the host REPL's exit code contract:
// 0 success, 1 unhandled evaluator exception, 2 parse or type
// error.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var pe *parser.ParseError
	if errors.As(err, &pe) {
		return 2
	}
	var exc *eval.Exception
	if errors.As(err, &exc) {
		return 1
	}
	if rep, ok := errs.AsReport(err); ok {
		if rep.Phase == errs.PhaseEval {
			return 1
		}
		return 2
	}
	return 1
}
