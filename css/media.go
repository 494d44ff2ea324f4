package css

import (
	"strings"

	"github.com/cssgrammar/grammar"
	"github.com/cssgrammar/grammar/condition"
	"github.com/cssgrammar/grammar/lexical"
)

// mediaFeature reads a media feature after its opening parenthesis and consumes the closing one. It accepts
// (name), (name: value), (name op value), (value op name) and (value op name op value).
type mediaFeature struct {
	m    *manager
	done func(c condition.Condition, ok bool)

	segs    []lexical.Value
	ops     []condition.RangeOp
	opPos   int
	pending rune // < or > awaiting a possible =
	started bool
	failed  bool
}

func newMediaFeature(m *manager, done func(c condition.Condition, ok bool)) *mediaFeature {
	return &mediaFeature{m: m, done: done}
}

func (f *mediaFeature) name() string {
	return "media-feature"
}

// stopMediaSegment ends one side of a media feature.
func stopMediaSegment(t token) bool {
	return t.kind == rparenTok || t.isChar(':') || t.isChar('<') || t.isChar('>') || t.isChar('=')
}

func (f *mediaFeature) segment() {
	f.m.yield(newValueRec(f.m, "", stopMediaSegment, func(v lexical.Value, ok bool) {
		if !ok {
			f.failed = true
			return
		}
		f.segs = append(f.segs, v)
	}))
}

func (f *mediaFeature) handle(t token) {
	if !f.started {
		f.started = true
		f.segment()
		f.m.dispatch(t)
		return
	} else if f.pending != 0 {
		op, orEqual := condition.OpLT, condition.OpLE
		if f.pending == '>' {
			op, orEqual = condition.OpGT, condition.OpGE
		}
		f.pending = 0
		if t.isChar('=') && t.pos == f.opPos+1 {
			f.ops = append(f.ops, orEqual)
			f.segment()
			return
		}
		f.ops = append(f.ops, op)
		f.segment()
		f.m.dispatch(t)
		return
	}

	if f.failed {
		f.m.restore()
		switch t.kind {
		case rparenTok:
			f.done(nil, false)
		case eofTok, lbraceTok, rbraceTok:
			f.done(nil, false)
			f.m.handBack(t)
		default:
			f.m.yield(newEnclosed(f.m, func(end int, ok bool) {
				f.done(nil, false)
			}))
			f.m.dispatch(t)
		}
		return
	}

	switch {
	case t.kind == rparenTok:
		c, ok := f.feature(t)
		f.m.restore()
		f.done(c, ok)
	case len(f.ops) == 2:
		f.fail(t, "too many operators in media feature")
	case t.isChar(':'):
		if len(f.ops) != 0 {
			f.fail(t, "unexpected : in range")
			return
		}
		f.ops = append(f.ops, condition.OpColon)
		f.segment()
	case t.isChar('='):
		f.ops = append(f.ops, condition.OpEQ)
		f.segment()
	case t.isChar('<'), t.isChar('>'):
		f.pending, f.opPos = t.c, t.pos
	default:
		f.m.unexpected(t)
		f.m.restore()
		f.done(nil, false)
		f.m.handBack(t)
	}
}

// feature interprets the segments read up to the closing parenthesis.
func (f *mediaFeature) feature(t token) (condition.Condition, bool) {
	switch {
	case len(f.segs) == 1 && len(f.ops) == 0:
		if name, ok := featureName(f.segs[0]); ok {
			return &condition.Feature{Name: name}, true
		}
	case len(f.segs) == 2 && f.ops[0] == condition.OpColon:
		name, ok := featureName(f.segs[0])
		if !ok {
			break
		}
		if base, legacy := grammar.TrimRangePrefix(name); legacy && f.m.profile.IsRangeFeature(base) {
			op := condition.OpGE
			if strings.HasPrefix(strings.TrimLeft(name, "-"), "max-") || strings.Contains(name, "-max-") {
				op = condition.OpLE
			}
			return &condition.Feature{Name: base, Op: op, Value: f.segs[1], LegacyName: name}, true
		}
		return &condition.Feature{Name: name, Op: condition.OpColon, Value: f.segs[1]}, true
	case len(f.segs) == 2:
		left, lok := featureName(f.segs[0])
		right, rok := featureName(f.segs[1])
		op := f.ops[0]
		switch {
		case lok && f.m.profile.IsMediaFeature(left):
		case rok && f.m.profile.IsMediaFeature(right):
			return &condition.Feature{Name: right, Op: op.Flip(), Value: f.segs[0]}, true
		case lok:
		case rok:
			return &condition.Feature{Name: right, Op: op.Flip(), Value: f.segs[0]}, true
		default:
			f.m.syntaxError(t.pos, grammar.ErrInvalidMediaQuery, "media feature without a name")
			return nil, false
		}
		return &condition.Feature{Name: left, Op: op, Value: f.segs[1]}, true
	case len(f.segs) == 3:
		name, ok := featureName(f.segs[1])
		lop, rop := f.ops[0], f.ops[1]
		if !ok || lop == condition.OpColon || rop == condition.OpColon || lop == condition.OpEQ || rop == condition.OpEQ {
			break
		} else if lop.IsLess() != rop.IsLess() {
			f.m.syntaxError(t.pos, grammar.ErrInvalidMediaQuery, "range operators must point in the same direction")
			return nil, false
		}
		return &condition.Feature{Name: name, LeftOp: lop, Left: f.segs[0], Op: rop, Value: f.segs[2]}, true
	}
	f.m.syntaxError(t.pos, grammar.ErrInvalidMediaQuery, "invalid media feature")
	return nil, false
}

// featureName returns the lowercase name of a value made of a single identifier.
func featureName(v lexical.Value) (string, bool) {
	if v.Type() != lexical.Ident || !v.Next().IsNil() {
		return "", false
	}
	return strings.ToLower(v.Text()), true
}

func (f *mediaFeature) fail(t token, msg string) {
	f.m.syntaxError(t.pos, grammar.ErrInvalidMediaQuery, msg)
	f.m.restore()
	f.m.yield(newEnclosed(f.m, func(end int, ok bool) {
		f.done(nil, false)
	}))
	f.m.dispatch(t)
}

////////////////////////////////////////////////////////////////

// mqStage is the part of a media query being read.
type mqStage uint8

const (
	mqStart mqStage = iota
	mqNot           // after not or only
	mqType
	mqAnd // a condition follows the type
	mqEnd
)

// mqList builds a media query list. An invalid query is reported and replaced by not all.
type mqList struct {
	m    *manager
	stop func(t token) bool
	done func(l condition.MediaQueryList)

	list   condition.MediaQueryList
	q      condition.MediaQuery
	stage  mqStage
	notTok token
}

func newMQList(m *manager, stop func(t token) bool, done func(l condition.MediaQueryList)) *mqList {
	return &mqList{m: m, stop: stop, done: done}
}

func (l *mqList) name() string {
	return "media-query-list"
}

// stopQuery ends a single media query.
func (l *mqList) stopQuery(t token) bool {
	return t.isChar(',') || l.stop(t)
}

func (l *mqList) handle(t token) {
	if t.isSpace() {
		return
	}
	end := t.kind == eofTok || l.stop(t)

	switch l.stage {
	case mqStart:
		switch {
		case end && len(l.list) == 0:
			l.finish(t)
		case t.isIdent("not") || t.isIdent("only"):
			l.q.Not, l.q.Only = t.isIdent("not"), t.isIdent("only")
			l.notTok = t
			l.stage = mqNot
		case t.kind == identTok:
			l.mediaType(t)
		case t.kind == lparenTok || t.kind == functionTok:
			l.condition(t, false)
		default:
			l.fail(t, "expected media query, got %s", t.describe())
		}
	case mqNot:
		switch {
		case t.kind == identTok:
			l.mediaType(t)
		case l.q.Not && (t.kind == lparenTok || t.kind == functionTok):
			l.q.Not = false
			l.condition(l.notTok, false)
			l.m.dispatch(t)
		default:
			l.fail(t, "expected media type, got %s", t.describe())
		}
	case mqType:
		switch {
		case t.isIdent("and"):
			l.stage = mqAnd
		case t.isChar(',') || end:
			l.next(t)
		default:
			l.fail(t, "expected and, got %s", t.describe())
		}
	case mqAnd:
		if t.kind == eofTok || l.stopQuery(t) {
			l.fail(t, "missing condition after and")
			return
		}
		l.condition(t, true)
	case mqEnd:
		l.next(t)
	}
}

func (l *mqList) mediaType(t token) {
	switch lower := strings.ToLower(t.text); lower {
	case "and", "or", "not", "only", "layer":
		l.fail(t, "invalid media type %s", lower)
	default:
		l.q.Type = lower
		l.stage = mqType
	}
}

// condition reads a media condition starting at t.
func (l *mqList) condition(t token, noOr bool) {
	r := newCondRec(l.m, true, l.stopQuery, func(c condition.Condition, ok bool) {
		if !ok {
			l.q = condition.NotAll()
		} else {
			l.q.Condition = c
		}
		l.stage = mqEnd
	})
	r.noOr = noOr
	l.m.yield(r)
	l.m.dispatch(t)
}

// next finishes the current query at a comma or the end of the list.
func (l *mqList) next(t token) {
	l.list = append(l.list, l.q)
	l.q = condition.MediaQuery{}
	l.stage = mqStart
	if t.isChar(',') {
		return
	}
	l.finish(t)
}

func (l *mqList) finish(t token) {
	l.m.restore()
	l.done(l.list)
	l.m.handBack(t)
}

// fail reports an invalid query and skips to the next one.
func (l *mqList) fail(t token, msg string, a ...interface{}) {
	l.m.syntaxError(t.pos, grammar.ErrInvalidMediaQuery, msg, a...)
	l.q = condition.NotAll()
	l.stage = mqEnd
	s := newSkipper(l.m, skipDeclaration, nil)
	s.stop = l.stopQuery
	l.m.yield(s)
	l.m.dispatch(t)
}
