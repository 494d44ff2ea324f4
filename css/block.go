package css

import (
	"strings"

	"github.com/cssgrammar/grammar"
	"github.com/cssgrammar/grammar/lexical"
	"github.com/cssgrammar/grammar/selector"
)

// blockCtx determines what a block contains.
type blockCtx uint8

// blockCtx values.
const (
	ctxTop          blockCtx = iota // style sheet
	ctxRules                        // @media, @supports and @layer blocks between rules
	ctxDecls                        // style rule, declarations and nested rules
	ctxPage                         // declarations and margin rules
	ctxMargin                       // declarations
	ctxFontFace                     // descriptors
	ctxCounterStyle                 // descriptors
	ctxProperty                     // descriptors of a registered custom property
	ctxKeyframes                    // keyframe rules
	ctxKeyframe                     // declarations
	ctxFontFeatures                 // feature value blocks and descriptors
	ctxFeatureMap                   // feature values
)

var blockCtxNames = [...]string{
	"style-sheet", "rule-list", "declaration-list", "page", "margin", "font-face", "counter-style", "property",
	"keyframes", "keyframe", "font-feature-values", "feature-map",
}

// ruleLevel returns true for blocks containing rules instead of declarations.
func (c blockCtx) ruleLevel() bool {
	return c == ctxTop || c == ctxRules
}

// block reads a list of rules or declarations. A closed block ends at the } that it consumes, otherwise it ends at
// the end of the stream.
type block struct {
	m      *manager
	ctx    blockCtx
	closed bool
	end    func()

	next     func(t token) // continuation receiving the token that ended a child
	lf       bool          // the preceding separator contained a line feed
	seen     bool          // a rule other than @charset was read
	styled   bool          // a rule other than @charset, @import, @namespace or @layer statements was read
	single   bool          // accepts only one rule
	finished bool

	descriptors map[string]lexical.Value
	important   bool
}

func newBlock(m *manager, ctx blockCtx, closed bool, end func()) *block {
	return &block{m: m, ctx: ctx, closed: closed, end: end}
}

func (b *block) name() string {
	return blockCtxNames[b.ctx]
}

// close ends the block without a closing brace, it is used when the parse was aborted.
func (b *block) close() {
	if !b.finished {
		b.finished = true
		if b.end != nil {
			b.end()
		}
	}
}

func (b *block) handle(t token) {
	if b.next != nil {
		next := b.next
		b.next = nil
		next(t)
		return
	}

	switch t.kind {
	case separatorTok:
		b.lf = t.lf
		return
	case commentTok:
		if b.ctx.ruleLevel() && !t.sgml {
			b.m.doc.Comment(t.text, b.lf)
		}
		b.lf = false
		return
	case eofTok:
		b.finish(t)
		return
	case rbraceTok:
		if b.closed {
			b.finish(t)
		} else {
			b.m.unexpected(t)
		}
		return
	}
	b.lf = false

	if b.single && b.seen {
		b.m.syntaxError(t.pos, grammar.ErrInvalidRule, "unexpected %s after rule", t.describe())
		b.m.yield(newSkipper(b.m, skipStatement, nil))
		b.m.dispatch(t)
		return
	}

	switch b.ctx {
	case ctxTop, ctxRules:
		b.rule(t)
	case ctxKeyframes:
		b.keyframe(t)
	default:
		b.item(t)
	}
}

// finish ends the block at its } or at the end of the stream, which is handed back.
func (b *block) finish(t token) {
	b.m.restore()
	b.close()
	if t.kind != rbraceTok || !b.closed {
		b.m.handBack(t)
	}
}

// rule starts a rule of a rule list.
func (b *block) rule(t token) {
	switch {
	case t.kind == atKeywordTok:
		b.atRule(t)
	case t.isChar(';'):
		b.m.unexpected(t)
	default:
		b.seen, b.styled = true, true
		b.qualifiedRule([]token{t}, false)
	}
}

// qualifiedRule reads the selectors of a style rule from the buffered tokens and the stream.
func (b *block) qualifiedRule(ts []token, nested bool) {
	r := newSelectorRec(b.m, func(l selector.List, ok bool) {
		b.next = func(t token) {
			b.ruleBody(t, l, ok)
		}
	})
	r.relative, r.semicolon = nested, nested
	b.m.yield(r)
	b.m.replay(ts)
}

func (b *block) ruleBody(t token, l selector.List, ok bool) {
	switch {
	case t.kind == lbraceTok && ok:
		b.m.doc.StartSelector(l)
		b.m.yield(newBlock(b.m, ctxDecls, true, func() {
			b.m.doc.EndSelector(l)
		}))
	case t.kind == lbraceTok:
		b.m.yield(newSkipper(b.m, skipBlock, nil))
	case t.isChar(';') && !ok:
	default:
		if ok {
			b.m.unexpected(t)
		}
		b.handle(t)
	}
}

// childCtx returns the context of conditional blocks such as @media inside b.
func (b *block) childCtx() blockCtx {
	if b.ctx.ruleLevel() {
		return ctxRules
	}
	return ctxDecls
}

////////////////////////////////////////////////////////////////

// item starts a declaration, or a nested rule in style rules. The item is buffered up to its terminator, a { makes
// it a nested rule.
func (b *block) item(t token) {
	switch {
	case t.kind == atKeywordTok:
		b.atRule(t)
		return
	case t.isChar(';'):
		return
	}
	b.seen = true
	p := newPrelude(b.m, func(ts []token) {
		b.next = func(end token) {
			b.itemEnd(ts, end)
		}
	})
	p.comments = true
	b.m.yield(p)
	b.m.dispatch(t)
}

func (b *block) itemEnd(ts []token, t token) {
	if t.kind != lbraceTok || isCustomDeclaration(ts) {
		b.declaration(ts, t)
		return
	} else if b.ctx != ctxDecls {
		b.m.syntaxError(t.pos, grammar.ErrInvalidRule, "unexpected block in %s", b.name())
		b.m.yield(newSkipper(b.m, skipBlock, nil))
		return
	}
	b.qualifiedRule(ts, true)
	b.m.dispatch(t)
}

// isCustomDeclaration returns true for buffered tokens starting with --name:, whose value may hold {} blocks.
func isCustomDeclaration(ts []token) bool {
	if len(ts) == 0 || ts[0].kind != identTok || !strings.HasPrefix(ts[0].text, "--") {
		return false
	}
	for _, t := range ts[1:] {
		if !t.isSpace() {
			return t.isChar(':')
		}
	}
	return false
}

// declaration reads name: value [!important] from the buffered tokens followed by the terminator t.
func (b *block) declaration(ts []token, t token) {
	i, name, ok := b.propertyName(ts)
	if !ok {
		b.handle(t)
		return
	}
	for i < len(ts) && ts[i].isSpace() {
		i++
	}
	if i == len(ts) || !ts[i].isChar(':') {
		pos := t.pos
		if i < len(ts) {
			pos = ts[i].pos
		}
		b.m.syntaxError(pos, grammar.ErrInvalidRule, "expected : after property %s", name)
		b.handle(t)
		return
	}

	b.important = false
	b.m.yield(newValueRec(b.m, name, stopDeclaration, func(v lexical.Value, ok bool) {
		b.next = func(t token) {
			b.priority(t, name, v, ok)
		}
	}))
	b.m.replay(ts[i+1:])
	b.m.dispatch(t)
}

// propertyName returns the index after the property name and the normalized name.
func (b *block) propertyName(ts []token) (int, string, bool) {
	star := false
	i := 0
	if ts[0].isChar('*') && b.m.opts.Flags.Has(grammar.FlagStarHack) && 1 < len(ts) && ts[1].kind == identTok && ts[1].pos == ts[0].end {
		star = true
		i++
	}
	if ts[i].kind != identTok {
		b.m.syntaxError(ts[i].pos, grammar.ErrInvalidRule, "expected property name, got %s", ts[i].describe())
		return 0, "", false
	}

	name := ts[i].text
	if !strings.HasPrefix(name, "--") {
		name = strings.ToLower(name)
	}
	if star {
		name = "*" + name
		b.m.warning(ts[0].pos, grammar.WarnCompatHack, "star hack on property %s", name)
	} else if strings.HasPrefix(name, "_") {
		b.m.warning(ts[i].pos, grammar.WarnSuspiciousProperty, "underscore hack on property %s", name)
	}
	return i + 1, name, true
}

// priority reads what follows the value of a declaration.
func (b *block) priority(t token, name string, v lexical.Value, ok bool) {
	switch {
	case !ok:
		b.skipDeclaration(t)
	case t.isChar('!'):
		b.next = func(t token) {
			b.bang(t, name, v)
		}
	default:
		b.emit(t, name, v)
	}
}

// bang reads the word after !.
func (b *block) bang(t token, name string, v lexical.Value) {
	flags := b.m.opts.Flags
	switch {
	case t.kind == separatorTok || t.kind == commentTok:
		b.next = func(t token) {
			b.bang(t, name, v)
		}
		return
	case t.isIdent("important"):
		b.important = true
	case t.isIdent("ie") && flags.Has(grammar.FlagIEPrio):
		b.m.warning(t.pos, grammar.WarnCompatHack, "!ie priority on property %s", name)
		b.important = true
	case (t.isChar(';') || t.kind == rbraceTok || t.kind == eofTok) && flags.Has(grammar.FlagIEPrioChar):
		b.m.warning(t.pos, grammar.WarnCompatHack, "trailing ! on property %s", name)
		u, err := v.Arena().NewText(lexical.CompatPrio, "!")
		if err != nil {
			b.m.abort(err)
			return
		}
		v.Arena().Append(v.Last(), u)
		b.emit(t, name, v)
		return
	default:
		b.m.syntaxError(t.pos, grammar.ErrInvalidPriority, "invalid priority %s", t.describe())
		b.skipDeclaration(t)
		return
	}
	b.next = func(t token) {
		b.afterPriority(t, name, v)
	}
}

func (b *block) afterPriority(t token, name string, v lexical.Value) {
	if t.kind == separatorTok || t.kind == commentTok {
		b.next = func(t token) {
			b.afterPriority(t, name, v)
		}
		return
	} else if !t.isChar(';') && t.kind != rbraceTok && t.kind != eofTok {
		b.m.syntaxError(t.pos, grammar.ErrInvalidPriority, "unexpected %s after priority", t.describe())
		b.skipDeclaration(t)
		return
	}
	b.emit(t, name, v)
}

// emit reports the declaration and hands t, its terminator, to the block.
func (b *block) emit(t token, name string, v lexical.Value) {
	if b.ctx == ctxProperty {
		if b.descriptors == nil {
			b.descriptors = map[string]lexical.Value{}
		}
		b.descriptors[name] = v
	}
	b.m.doc.Property(name, v, b.important)
	if !t.isChar(';') {
		b.handle(t)
	}
}

// skipDeclaration drops the rest of an erroneous declaration.
func (b *block) skipDeclaration(t token) {
	if t.isChar(';') {
		return
	} else if t.kind == rbraceTok || t.kind == eofTok {
		b.handle(t)
		return
	}
	b.m.yield(newSkipper(b.m, skipDeclaration, nil))
	b.m.dispatch(t)
}

////////////////////////////////////////////////////////////////

// keyframe starts a keyframe rule: from, to or percentages followed by a block.
func (b *block) keyframe(t token) {
	if t.kind == atKeywordTok || t.isChar(';') {
		b.m.syntaxError(t.pos, grammar.ErrInvalidRule, "unexpected %s in @keyframes", t.describe())
		b.m.yield(newSkipper(b.m, skipStatement, nil))
		b.m.dispatch(t)
		return
	}
	b.seen = true
	b.m.yield(newPrelude(b.m, func(ts []token) {
		b.next = func(end token) {
			b.keyframeBody(ts, end)
		}
	}))
	b.m.dispatch(t)
}

func (b *block) keyframeBody(ts []token, t token) {
	v, ok := b.keyframeSelectors(ts, t)
	switch {
	case t.kind == lbraceTok && ok:
		b.m.doc.StartKeyframe(v)
		b.m.yield(newBlock(b.m, ctxKeyframe, true, func() {
			b.m.doc.EndKeyframe(v)
		}))
	case t.kind == lbraceTok:
		b.m.yield(newSkipper(b.m, skipBlock, nil))
	case t.isChar(';'):
		if ok {
			b.m.unexpected(t)
		}
	default:
		if ok {
			b.m.unexpected(t)
		}
		b.handle(t)
	}
}

// keyframeSelectors returns the comma-separated keyframe selectors as a lexical value.
func (b *block) keyframeSelectors(ts []token, t token) (lexical.Value, bool) {
	a := lexical.NewArena(b.m.opts.EditLimit())
	var first, last lexical.Value
	add := func(u lexical.Value) {
		if last.IsNil() {
			first = u
		} else {
			a.Append(last, u)
		}
		last = u
	}
	for i, part := range splitCommas(ts) {
		var u lexical.Value
		var err error
		switch {
		case len(part) != 1:
			pos := t.pos
			if 0 < len(part) {
				pos = part[0].pos
			}
			b.m.syntaxError(pos, grammar.ErrInvalidRule, "invalid keyframe selector")
			return lexical.Value{}, false
		case part[0].isIdent("from") || part[0].isIdent("to"):
			u, err = a.NewText(lexical.Ident, strings.ToLower(part[0].text))
		case part[0].kind == numberTok:
			n, ok := lexical.ParseNumeric(part[0].text)
			if !ok || n.Type != lexical.Percentage {
				b.m.syntaxError(part[0].pos, grammar.ErrInvalidRule, "invalid keyframe selector %s", part[0].describe())
				return lexical.Value{}, false
			}
			u, err = a.NewNumeric(n)
		default:
			b.m.syntaxError(part[0].pos, grammar.ErrInvalidRule, "invalid keyframe selector %s", part[0].describe())
			return lexical.Value{}, false
		}
		if err == nil && i != 0 {
			var comma lexical.Value
			if comma, err = a.New(lexical.OperatorComma); err == nil {
				add(comma)
			}
		}
		if err != nil {
			b.m.abort(err)
			return lexical.Value{}, false
		}
		add(u)
	}
	return first, true
}
