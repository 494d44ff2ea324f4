package css

import (
	"strings"

	"go.uber.org/zap"

	"github.com/cssgrammar/grammar"
)

// recognizer consumes the tokens of one construct. The manager dispatches every token to the recognizer on top of
// its stack, a recognizer finishes by popping itself and handing the terminating token back to its parent.
type recognizer interface {
	name() string
	handle(t token)
}

// manager owns the stack of recognizers sharing one token stream.
type manager struct {
	src     []byte
	opts    grammar.Options
	profile *grammar.Profile
	doc     DocumentHandler
	errs    ErrorHandler
	log     *zap.Logger

	stack      []recognizer
	namespaces map[string]string
	err        error          // aborts the parse
	first      *grammar.Error // first syntax error, also when forwarded
}

func newManager(src []byte, opts grammar.Options, doc DocumentHandler, errs ErrorHandler) *manager {
	if doc == nil {
		doc = BaseHandler{}
	}
	return &manager{
		src:        src,
		opts:       opts,
		profile:    opts.GetProfile(),
		doc:        doc,
		errs:       errs,
		log:        opts.GetLogger(),
		namespaces: map[string]string{},
	}
}

// yield makes r the current recognizer.
func (m *manager) yield(r recognizer) {
	m.stack = append(m.stack, r)
	if ce := m.log.Check(zap.DebugLevel, "yield"); ce != nil {
		ce.Write(zap.String("recognizer", r.name()), zap.String("context", m.Context()))
	}
}

// restore pops the current recognizer and resumes its parent.
func (m *manager) restore() {
	if len(m.stack) == 0 {
		return
	}
	m.stack = m.stack[:len(m.stack)-1]
	if ce := m.log.Check(zap.DebugLevel, "restore"); ce != nil {
		ce.Write(zap.String("context", m.Context()))
	}
}

// handBack dispatches a terminating token to the parent after restore.
func (m *manager) handBack(t token) {
	if 0 < len(m.stack) {
		m.dispatch(t)
	}
}

// unwind closes the blocks left open by an aborted parse, innermost first.
func (m *manager) unwind() {
	for i := len(m.stack) - 1; 0 <= i; i-- {
		if b, ok := m.stack[i].(*block); ok {
			b.close()
		}
	}
	m.stack = m.stack[:0]
}

// replay dispatches buffered tokens, typically to a freshly yielded recognizer.
func (m *manager) replay(ts []token) {
	for _, t := range ts {
		m.dispatch(t)
	}
}

func (m *manager) dispatch(t token) {
	if m.err != nil || len(m.stack) == 0 {
		return
	}
	m.stack[len(m.stack)-1].handle(t)
}

// Context returns the names of the active recognizers from the outermost to the current one.
func (m *manager) Context() string {
	names := make([]string, 0, len(m.stack))
	for _, r := range m.stack {
		names = append(names, r.name())
	}
	return strings.Join(names, " > ")
}

// Stopped returns true once the parse has been aborted.
func (m *manager) Stopped() bool {
	return m.err != nil
}

////////////////////////////////////////////////////////////////

// syntaxError reports a positioned syntax error. Without an ErrorHandler the first error aborts the parse.
func (m *manager) syntaxError(pos int, code grammar.ErrorCode, msg string, a ...interface{}) {
	e := grammar.NewError(m.src, pos, grammar.KindSyntax, code, msg, a...)
	if m.first == nil {
		m.first = e
	}
	if m.errs == nil {
		if m.err == nil {
			m.err = e
		}
		return
	}
	m.errs.Error(e)
}

// unexpected reports t as out of place. The end of the stream goes through the same path.
func (m *manager) unexpected(t token) {
	switch t.kind {
	case eofTok:
		m.syntaxError(t.pos, grammar.ErrUnexpectedEOF, "unexpected end of input")
	case lexErrTok:
		m.syntaxError(t.pos, grammar.ErrBadString, "%s", t.text)
	case rparenTok, rbracketTok, rbraceTok:
		m.syntaxError(t.pos, grammar.ErrUnmatchedBracket, "unmatched %s", t.describe())
	default:
		m.syntaxError(t.pos, grammar.ErrUnexpectedChar, "unexpected %s", t.describe())
	}
}

// warning reports a positioned warning, it goes to the logger when nobody listens.
func (m *manager) warning(pos int, code grammar.ErrorCode, msg string, a ...interface{}) {
	e := grammar.NewError(m.src, pos, grammar.KindWarning, code, msg, a...)
	if m.errs == nil {
		m.log.Warn(e.Message, zap.Stringer("code", e.Code), zap.Int("line", e.Line), zap.Int("column", e.Column))
		return
	}
	m.errs.Warning(e)
}

// abort stops the parse with err regardless of an ErrorHandler, it is used for budget errors.
func (m *manager) abort(err error) {
	if m.err == nil {
		m.err = err
		m.log.Debug("abort", zap.String("context", m.Context()), zap.Error(err))
	}
}

// budget aborts with a positioned budget error.
func (m *manager) budget(pos int, code grammar.ErrorCode, msg string, a ...interface{}) {
	m.abort(grammar.NewError(m.src, pos, grammar.KindBudget, code, msg, a...))
}

// text returns the source between two offsets.
func (m *manager) text(start, end int) string {
	if end > len(m.src) {
		end = len(m.src)
	}
	if start > end {
		return ""
	}
	return string(m.src[start:end])
}
