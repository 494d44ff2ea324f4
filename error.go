package grammar

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/tdewolff/parse/v2"
)

// Kind classifies an Error as a recoverable syntax error, a warning, or a budget breach.
type Kind uint8

// Kind values.
const (
	KindSyntax Kind = iota
	KindWarning
	KindBudget
)

// String returns the string representation of a Kind.
func (k Kind) String() string {
	switch k {
	case KindSyntax:
		return "SyntaxError"
	case KindWarning:
		return "Warning"
	case KindBudget:
		return "BudgetExceeded"
	}
	return "Invalid(" + strconv.Itoa(int(k)) + ")"
}

// Sentinel errors, matched by errors.Is against any *Error of the same Kind.
var (
	ErrSyntax  = errors.New("syntax error")
	ErrWarning = errors.New("warning")
	ErrBudget  = errors.New("budget exceeded")
)

////////////////////////////////////////////////////////////////

// ErrorCode is a stable numeric identifier of a problem.
type ErrorCode uint16

// Syntax error codes.
const (
	ErrUnexpectedChar ErrorCode = iota + 1
	ErrUnexpectedEOF
	ErrUnmatchedBracket
	ErrInvalidIdent
	ErrUnknownNamespace
	ErrInvalidSelector
	ErrInvalidPseudo
	ErrInvalidAttribute
	ErrEmptyValue
	ErrInvalidValue
	ErrInvalidOperator
	ErrInvalidRule
	ErrInvalidAtRule
	ErrInvalidCondition
	ErrInvalidMediaQuery
	ErrInvalidPriority
	ErrBadString
	ErrInvalidSyntax
	ErrInvalidDescriptor
	ErrIO
)

// Budget error codes.
const (
	ErrNestingDepth ErrorCode = iota + 100
	ErrStreamSize
	ErrEditSize
)

// Warning codes.
const (
	WarnDuplicateSelector ErrorCode = iota + 200
	WarnCompatHack
	WarnSuspiciousProperty
	WarnUnsupportedPredicate
	WarnCharsetPosition
	WarnIgnoredAtRule
	WarnDiscardedRule
)

var codeNames = map[ErrorCode]string{
	ErrUnexpectedChar:        "UnexpectedChar",
	ErrUnexpectedEOF:         "UnexpectedEOF",
	ErrUnmatchedBracket:      "UnmatchedBracket",
	ErrInvalidIdent:          "InvalidIdent",
	ErrUnknownNamespace:      "UnknownNamespace",
	ErrInvalidSelector:       "InvalidSelector",
	ErrInvalidPseudo:         "InvalidPseudo",
	ErrInvalidAttribute:      "InvalidAttribute",
	ErrEmptyValue:            "EmptyValue",
	ErrInvalidValue:          "InvalidValue",
	ErrInvalidOperator:       "InvalidOperator",
	ErrInvalidRule:           "InvalidRule",
	ErrInvalidAtRule:         "InvalidAtRule",
	ErrInvalidCondition:      "InvalidCondition",
	ErrInvalidMediaQuery:     "InvalidMediaQuery",
	ErrInvalidPriority:       "InvalidPriority",
	ErrBadString:             "BadString",
	ErrInvalidSyntax:         "InvalidSyntax",
	ErrInvalidDescriptor:     "InvalidDescriptor",
	ErrIO:                    "IO",
	ErrNestingDepth:          "NestingDepth",
	ErrStreamSize:            "StreamSize",
	ErrEditSize:              "EditSize",
	WarnDuplicateSelector:    "DuplicateSelector",
	WarnCompatHack:           "CompatHack",
	WarnSuspiciousProperty:   "SuspiciousProperty",
	WarnUnsupportedPredicate: "UnsupportedPredicate",
	WarnCharsetPosition:      "CharsetPosition",
	WarnIgnoredAtRule:        "IgnoredAtRule",
	WarnDiscardedRule:        "DiscardedRule",
}

// String returns the string representation of an ErrorCode.
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "Invalid(" + strconv.Itoa(int(c)) + ")"
}

////////////////////////////////////////////////////////////////

// Error is a problem found while parsing. It contains a message, the byte offset into the source
// and the line, column and context line derived from that offset.
type Error struct {
	Kind    Kind
	Code    ErrorCode
	Message string
	Offset  int
	Line    int
	Column  int
	Context string
}

// NewError creates a new error positioned at offset in src. A nil src leaves the position unset.
func NewError(src []byte, offset int, kind Kind, code ErrorCode, msg string, a ...interface{}) *Error {
	if 0 < len(a) {
		msg = fmt.Sprintf(msg, a...)
	}
	e := &Error{
		Kind:    kind,
		Code:    code,
		Message: msg,
		Offset:  offset,
	}
	if src != nil {
		if offset > len(src) {
			offset = len(src)
		}
		e.Line, e.Column, e.Context = parse.Position(bytes.NewReader(src), offset)
	}
	return e
}

// NewBudgetError creates an error for a breached resource ceiling.
func NewBudgetError(code ErrorCode, msg string, a ...interface{}) *Error {
	return NewError(nil, 0, KindBudget, code, msg, a...)
}

// Position returns the line, column, and context of the error.
// Context is the entire line at which the error occurred.
func (e *Error) Position() (int, int, string) {
	return e.Line, e.Column, e.Context
}

// Error returns the error string, containing the context and line + column number.
func (e *Error) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s on line %d and column %d\n%s", e.Code, e.Message, e.Line, e.Column, e.Context)
}

// Is reports whether target is the sentinel of the error's Kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrSyntax:
		return e.Kind == KindSyntax
	case ErrWarning:
		return e.Kind == KindWarning
	case ErrBudget:
		return e.Kind == KindBudget
	}
	return false
}

// IsBudget returns true if err is or wraps a budget error.
func IsBudget(err error) bool {
	return errors.Is(err, ErrBudget)
}
