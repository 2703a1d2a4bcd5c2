// Package errs provides the structured error/warning report type used
// across every pipeline phase: a stable code taxonomy plus a
// JSON-serialisable Report.
package errs

// Error codes, one per reportable failure kind.
const (
	// Parser
	ParseUnexpectedToken = "PAR001"
	ParseUnclosedDelim   = "PAR002"

	// Type errors
	TypeMismatch         = "TYP001"
	TypeOccursCheck      = "TYP002"
	TypeUnboundIdent     = "TYP003"
	TypeEqualityRequired = "TYP004"
	TypeArityMismatch    = "TYP005"

	// Compile-time errors
	CompileMatchRedundant               = "CMP001"
	CompileMatchNonExhaustiveAndRedundant = "CMP002"
	CompileIllegalRecursion              = "CMP003"

	// Compile-time warnings
	WarnMatchNonExhaustive = "WRN001"
	WarnUnusedBinding      = "WRN002"

	// Evaluation errors
	EvalMatch     = "EVL001"
	EvalBind      = "EVL002"
	EvalDiv       = "EVL003"
	EvalOverflow  = "EVL004"
	EvalException = "EVL005"
	EvalType      = "EVL006"
)

// Phase names used in Report.Phase.
const (
	PhaseParse    = "parse"
	PhaseTypecheck = "typecheck"
	PhaseResolve  = "resolve"
	PhaseMatch    = "match"
	PhaseAnalyze  = "analyze"
	PhaseEval     = "eval"
)
