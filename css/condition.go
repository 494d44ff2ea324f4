package css

import (
	"strings"

	"github.com/cssgrammar/grammar"
	"github.com/cssgrammar/grammar/condition"
	"github.com/cssgrammar/grammar/lexical"
	"github.com/cssgrammar/grammar/selector"
)

// condLevel is one parenthesized level of a condition.
type condLevel struct {
	cond    condition.Condition
	op      condition.Kind
	hasOp   bool
	not     bool // not applies to the next operand
	negated bool // the level is a negation and takes no operators
	expect  bool // an operand is expected
}

// condRec builds the boolean conditions of @supports and media queries. Predicates in parentheses are read by a
// delegate, a supports declaration or a media feature. It finishes at a token accepted by stop outside of
// parentheses.
type condRec struct {
	m     *manager
	media bool
	noOr  bool // the top level takes no or, as after "screen and"
	stop  func(t token) bool
	done  func(c condition.Condition, ok bool)

	levels  []condLevel
	open    bool // a ( awaits its first token
	openPos int
	closing bool // a selector() argument awaits its )

	inError bool
	depth   int
}

func newCondRec(m *manager, media bool, stop func(t token) bool, done func(c condition.Condition, ok bool)) *condRec {
	return &condRec{
		m:      m,
		media:  media,
		stop:   stop,
		done:   done,
		levels: []condLevel{{expect: true}},
	}
}

func (r *condRec) name() string {
	if r.media {
		return "media-condition"
	}
	return "supports-condition"
}

func (r *condRec) handle(t token) {
	if r.inError {
		r.recover(t)
		return
	} else if t.isSpace() {
		return
	} else if r.open {
		r.open = false
		r.openParen(t)
		return
	} else if r.closing {
		r.closing = false
		if t.kind != rparenTok {
			r.fail(t, grammar.ErrInvalidCondition, "expected ), got %s", t.describe())
		}
		return
	}

	top := &r.levels[len(r.levels)-1]
	if t.kind == eofTok || len(r.levels) == 1 && r.stop(t) {
		if 1 < len(r.levels) {
			r.fail(t, grammar.ErrUnexpectedEOF, "unclosed condition")
			return
		}
		r.end(t)
		return
	}

	switch t.kind {
	case identTok:
		switch lower := strings.ToLower(t.text); lower {
		case "not":
			if !top.expect || top.cond != nil || top.not || top.hasOp {
				r.fail(t, grammar.ErrInvalidCondition, "unexpected not")
				return
			}
			top.not = true
		case "and", "or":
			op := condition.AndCondition
			if lower == "or" {
				op = condition.OrCondition
			}
			if top.expect || top.negated {
				r.fail(t, grammar.ErrInvalidCondition, "unexpected %s", lower)
				return
			} else if top.hasOp && top.op != op {
				r.fail(t, grammar.ErrInvalidCondition, "and and or cannot be mixed without parentheses")
				return
			} else if op == condition.OrCondition && r.noOr && len(r.levels) == 1 {
				r.fail(t, grammar.ErrInvalidCondition, "or is not allowed after a media type")
				return
			}
			top.op, top.hasOp, top.expect = op, true, true
		default:
			r.fail(t, grammar.ErrInvalidCondition, "unexpected %s in condition", t.describe())
		}
	case lparenTok:
		if !top.expect {
			r.fail(t, grammar.ErrInvalidCondition, "missing operator before (")
			return
		} else if grammar.MaxNestingDepth < len(r.levels) {
			r.m.budget(t.pos, grammar.ErrNestingDepth, "conditions nested deeper than %d levels", grammar.MaxNestingDepth)
			return
		}
		r.open, r.openPos = true, t.pos
	case functionTok:
		if !top.expect {
			r.fail(t, grammar.ErrInvalidCondition, "missing operator before %s", t.describe())
			return
		}
		r.function(t)
	case rparenTok:
		if len(r.levels) == 1 {
			r.fail(t, grammar.ErrUnmatchedBracket, "unmatched )")
			return
		} else if top.expect {
			r.fail(t, grammar.ErrInvalidCondition, "missing condition before )")
			return
		}
		c := top.cond
		r.levels = r.levels[:len(r.levels)-1]
		r.operand(c)
	default:
		r.fail(t, grammar.ErrInvalidCondition, "unexpected %s in condition", t.describe())
	}
}

// openParen decides between a nested condition and a predicate by the first token after (.
func (r *condRec) openParen(t token) {
	if t.kind == lparenTok || t.isIdent("not") {
		r.levels = append(r.levels, condLevel{expect: true})
		r.handle(t)
		return
	}
	done := func(c condition.Condition, ok bool) {
		if !ok {
			r.skip(len(r.levels) - 1)
			return
		}
		r.operand(c)
	}
	if r.media {
		r.m.yield(newMediaFeature(r.m, done))
	} else {
		r.m.yield(newSupportsPredicate(r.m, r.openPos, done))
	}
	r.m.dispatch(t)
}

func (r *condRec) function(t token) {
	lower := strings.ToLower(t.text)
	switch {
	case lower == "and" || lower == "or" || lower == "not":
		r.fail(t, grammar.ErrInvalidCondition, "missing whitespace after %s", lower)
	case lower == "selector" && !r.media:
		child := newSelectorRec(r.m, func(l selector.List, ok bool) {
			if !ok {
				r.skip(len(r.levels))
				return
			}
			r.operand(&condition.Selector{Selectors: l})
			r.closing = true
		})
		child.inArg = true
		r.m.yield(child)
	default:
		start := t.pos
		r.m.yield(newEnclosed(r.m, func(end int, ok bool) {
			if !ok {
				r.skip(len(r.levels) - 1)
				return
			}
			r.operand(r.unsupported(start, end))
		}))
	}
}

// unsupported returns the false placeholder of a general enclosed predicate.
func (r *condRec) unsupported(start, end int) condition.Condition {
	text := r.m.text(start, end)
	r.m.warning(start, grammar.WarnUnsupportedPredicate, "unsupported predicate %s", text)
	return &condition.False{Text: text}
}

func (r *condRec) operand(c condition.Condition) {
	top := &r.levels[len(r.levels)-1]
	if top.not {
		c = &condition.Not{Operand: c}
		top.not, top.negated = false, true
	}
	if top.cond == nil {
		top.cond = c
	} else {
		top.cond = condition.Append(top.cond, top.op, c)
	}
	top.expect = false
}

func (r *condRec) end(t token) {
	if r.levels[0].expect {
		r.fail(t, grammar.ErrInvalidCondition, "missing condition")
		return
	}
	r.m.restore()
	r.done(r.levels[0].cond, true)
	r.m.handBack(t)
}

// fail reports an error and skips to the end of the condition.
func (r *condRec) fail(t token, code grammar.ErrorCode, msg string, a ...interface{}) {
	r.m.syntaxError(t.pos, code, msg, a...)
	depth := len(r.levels) - 1
	if r.open {
		depth++
	}
	r.skip(depth)
	r.recover(t)
}

// skip enters recovery with depth open parentheses.
func (r *condRec) skip(depth int) {
	r.inError = true
	r.depth = depth
}

func (r *condRec) recover(t token) {
	switch t.kind {
	case lparenTok, functionTok, lbracketTok:
		r.depth++
	case rparenTok, rbracketTok:
		if r.depth == 0 && r.stop(t) {
			r.abandon(t)
		} else if 0 < r.depth {
			r.depth--
		}
	case eofTok, lbraceTok, rbraceTok:
		r.abandon(t)
	default:
		if t.isChar(';') || r.depth == 0 && r.stop(t) {
			r.abandon(t)
		}
	}
}

func (r *condRec) abandon(t token) {
	r.m.restore()
	r.done(nil, false)
	r.m.handBack(t)
}

////////////////////////////////////////////////////////////////

// predStage is the part of a supports declaration being read.
type predStage uint8

const (
	predName predStage = iota
	predColon
	predValue
	predImportant
	predClose
)

// supportsPredicate reads (property: value [!important]) after its opening parenthesis and consumes the closing
// one. Anything else in parentheses is a general enclosed predicate that evaluates to false.
type supportsPredicate struct {
	m     *manager
	start int
	done  func(c condition.Condition, ok bool)
	stage predStage

	decl   condition.Declaration
	failed bool
}

func newSupportsPredicate(m *manager, start int, done func(c condition.Condition, ok bool)) *supportsPredicate {
	return &supportsPredicate{m: m, start: start, done: done}
}

func (p *supportsPredicate) name() string {
	return "supports-declaration"
}

func (p *supportsPredicate) handle(t token) {
	if t.kind == eofTok {
		p.m.unexpected(t)
		p.m.restore()
		p.done(nil, false)
		p.m.handBack(t)
		return
	} else if t.isSpace() {
		return
	}

	switch p.stage {
	case predName:
		if t.kind != identTok {
			p.general(t)
			return
		}
		p.decl.Property = t.text
		if !strings.HasPrefix(t.text, "--") {
			p.decl.Property = strings.ToLower(t.text)
		}
		p.stage = predColon
	case predColon:
		if !t.isChar(':') {
			p.general(t)
			return
		}
		p.stage = predValue
		p.m.yield(newValueRec(p.m, p.decl.Property, stopParen, func(v lexical.Value, ok bool) {
			p.decl.Value = v
			p.failed = !ok
		}))
	case predValue:
		switch {
		case t.isChar('!'):
			p.stage = predImportant
		default:
			p.stage = predClose
			p.handle(t)
		}
	case predImportant:
		if p.failed {
			p.stage = predClose
			return
		} else if !t.isIdent("important") {
			p.fail(t, grammar.ErrInvalidPriority, "expected important, got %s", t.describe())
			return
		}
		p.decl.Important = true
		p.stage = predClose
	case predClose:
		if p.failed {
			p.finish(nil, false)
			if t.kind != rparenTok {
				p.m.handBack(t)
			}
			return
		} else if t.kind != rparenTok {
			p.fail(t, grammar.ErrInvalidCondition, "expected ), got %s", t.describe())
			return
		}
		decl := p.decl
		p.finish(&decl, true)
	}
}

// general switches to a general enclosed predicate.
func (p *supportsPredicate) general(t token) {
	p.m.restore()
	p.m.yield(newEnclosed(p.m, func(end int, ok bool) {
		if !ok {
			p.done(nil, false)
			return
		}
		text := p.m.text(p.start, end)
		p.m.warning(p.start, grammar.WarnUnsupportedPredicate, "unsupported predicate %s", text)
		p.done(&condition.False{Text: text}, true)
	}))
	p.m.dispatch(t)
}

func (p *supportsPredicate) fail(t token, code grammar.ErrorCode, msg string, a ...interface{}) {
	p.m.syntaxError(t.pos, code, msg, a...)
	p.failed = true
	p.m.restore()
	p.m.yield(newEnclosed(p.m, func(end int, ok bool) {
		p.done(nil, false)
	}))
	p.m.dispatch(t)
}

func (p *supportsPredicate) finish(c condition.Condition, ok bool) {
	p.m.restore()
	p.done(c, ok)
}
