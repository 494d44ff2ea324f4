package css

import (
	"strings"

	"github.com/cssgrammar/grammar"
	"github.com/cssgrammar/grammar/condition"
	"github.com/cssgrammar/grammar/lexical"
	"github.com/cssgrammar/grammar/syntax"
)

var marginRules = map[string]bool{
	"top-left-corner": true, "top-left": true, "top-center": true, "top-right": true, "top-right-corner": true,
	"bottom-left-corner": true, "bottom-left": true, "bottom-center": true, "bottom-right": true, "bottom-right-corner": true,
	"left-top": true, "left-middle": true, "left-bottom": true,
	"right-top": true, "right-middle": true, "right-bottom": true,
}

var featureMaps = map[string]bool{
	"stylistic": true, "styleset": true, "character-variant": true, "swash": true, "ornaments": true,
	"annotation": true, "historical-forms": true,
}

var pagePseudos = map[string]bool{
	"left": true, "right": true, "first": true, "blank": true,
}

// stopPrelude ends the preamble of an at-rule.
func stopPrelude(t token) bool {
	return t.kind == lbraceTok || t.kind == rbraceTok || t.isChar(';')
}

// isKeyframes matches @keyframes and its vendor-prefixed forms.
func isKeyframes(name string) bool {
	return name == "keyframes" || strings.HasPrefix(name, "-") && strings.HasSuffix(name, "-keyframes")
}

func (b *block) atRule(t token) {
	name := strings.ToLower(t.text)
	switch b.ctx {
	case ctxTop, ctxRules:
		switch {
		case name == "charset":
			b.statement(t, b.charset)
			return
		case name == "import":
			b.importRule(t)
			return
		case name == "namespace":
			b.statement(t, b.namespace)
			return
		}
		styled := b.styled
		b.seen, b.styled = true, true
		switch {
		case name == "media":
			b.media(t)
		case name == "supports":
			b.supports(t)
		case name == "layer":
			b.styled = styled
			b.prelude(t, b.layer)
		case name == "page":
			b.prelude(t, b.page)
		case name == "font-face":
			b.prelude(t, b.fontFace)
		case isKeyframes(name):
			b.prelude(t, b.keyframes)
		case name == "property":
			b.prelude(t, b.property)
		case name == "font-feature-values":
			b.prelude(t, b.fontFeatures)
		case name == "counter-style":
			b.prelude(t, b.counterStyle)
		default:
			b.ignorable(t, name)
		}
	case ctxDecls:
		switch name {
		case "media":
			b.media(t)
		case "supports":
			b.supports(t)
		case "layer":
			b.prelude(t, b.layer)
		default:
			b.ignorable(t, name)
		}
	case ctxPage:
		if marginRules[name] {
			b.prelude(t, b.margin)
			return
		}
		b.ignorable(t, name)
	case ctxFontFeatures:
		if featureMaps[name] {
			b.prelude(t, b.featureMap)
			return
		}
		b.ignorable(t, name)
	default:
		b.ignorable(t, name)
	}
}

// ignorable skips an unknown at-rule and reports its text.
func (b *block) ignorable(t token, name string) {
	b.m.warning(t.pos, grammar.WarnIgnoredAtRule, "ignored at-rule @%s", name)
	start := t.pos
	b.m.yield(newSkipper(b.m, skipStatement, func(end int) {
		b.m.doc.IgnorableAtRule(strings.TrimSpace(b.m.text(start, end)))
	}))
}

// prelude collects the preamble of the at-rule t and passes it with its terminator to body.
func (b *block) prelude(t token, body func(at token, ts []token, end token)) {
	b.m.yield(newPrelude(b.m, func(ts []token) {
		b.next = func(end token) {
			body(t, ts, end)
		}
	}))
}

// statement is a prelude for at-rules that end with a semicolon.
func (b *block) statement(t token, body func(at token, ts []token)) {
	b.prelude(t, func(at token, ts []token, end token) {
		if end.kind == lbraceTok {
			b.invalid(at, end, "@%s takes no block", strings.ToLower(at.text))
			return
		}
		body(at, ts)
		b.afterStatement(end)
	})
}

// afterStatement handles the token that ended a statement at-rule.
func (b *block) afterStatement(t token) {
	if !t.isChar(';') {
		b.handle(t)
	}
}

// invalid reports an invalid at-rule and drops it including its block.
func (b *block) invalid(at, t token, msg string, a ...interface{}) {
	b.m.syntaxError(at.pos, grammar.ErrInvalidAtRule, msg, a...)
	if t.kind == lbraceTok {
		b.m.yield(newSkipper(b.m, skipBlock, nil))
		return
	}
	b.afterStatement(t)
}

// open starts the block of an at-rule, or reports the at-rule when t does not open one.
func (b *block) open(at, t token, ctx blockCtx, start, end func()) {
	if t.kind != lbraceTok {
		b.invalid(at, t, "missing block of @%s", strings.ToLower(at.text))
		return
	}
	start()
	b.m.yield(newBlock(b.m, ctx, true, end))
}

////////////////////////////////////////////////////////////////

func (b *block) charset(at token, ts []token) {
	ws := words(ts)
	if len(ws) != 1 || ws[0].kind != quotedTok {
		b.m.syntaxError(at.pos, grammar.ErrInvalidAtRule, "@charset expects a string")
		return
	} else if b.ctx != ctxTop || b.seen {
		b.m.warning(at.pos, grammar.WarnCharsetPosition, "@charset must be the first rule")
		return
	}
	b.seen = true
	b.m.doc.Charset(ws[0].text)
}

func (b *block) namespace(at token, ts []token) {
	ws := words(ts)
	prefix := ""
	if 0 < len(ws) && ws[0].kind == identTok {
		prefix = ws[0].text
		ws = ws[1:]
	}
	uri, rest, ok := uriOf(ws)
	switch {
	case !ok || len(rest) != 0:
		b.m.syntaxError(at.pos, grammar.ErrInvalidAtRule, "@namespace expects a prefix and a URI")
		return
	case b.ctx != ctxTop || b.styled:
		b.m.syntaxError(at.pos, grammar.ErrInvalidAtRule, "@namespace must precede all style rules")
		return
	}
	b.seen = true
	b.m.namespaces[prefix] = uri
	b.m.doc.NamespaceDeclaration(prefix, uri)
}

// uriOf reads a string or url() from the start of ws.
func uriOf(ws []token) (string, []token, bool) {
	switch {
	case 0 < len(ws) && ws[0].kind == quotedTok:
		return ws[0].text, ws[1:], true
	case 2 < len(ws) && ws[0].isFunction("url") && ws[1].kind == quotedTok && ws[2].kind == rparenTok:
		return ws[1].text, ws[3:], true
	case 1 < len(ws) && ws[0].isFunction("url") && ws[1].kind == rparenTok:
		return "", ws[2:], true
	}
	return "", ws, false
}

func (b *block) importRule(t token) {
	if b.ctx != ctxTop || b.styled {
		b.m.syntaxError(t.pos, grammar.ErrInvalidAtRule, "@import must precede all other rules")
		b.m.yield(newSkipper(b.m, skipStatement, nil))
		return
	}
	b.seen = true
	b.m.yield(newImportRec(b.m, t, func(imp Import, ok bool) {
		b.next = func(end token) {
			switch {
			case !ok:
				b.invalid(t, end, "invalid @import")
			case end.kind == lbraceTok:
				b.invalid(t, end, "@import takes no block")
			default:
				b.m.doc.ImportStyle(imp)
				b.afterStatement(end)
			}
		}
	}))
}

func (b *block) media(t token) {
	b.m.yield(newMQList(b.m, stopPrelude, func(l condition.MediaQueryList) {
		b.next = func(end token) {
			b.open(t, end, b.childCtx(), func() {
				b.m.doc.StartMedia(l)
			}, func() {
				b.m.doc.EndMedia(l)
			})
		}
	}))
}

func (b *block) supports(t token) {
	b.m.yield(newCondRec(b.m, false, stopPrelude, func(c condition.Condition, ok bool) {
		b.next = func(end token) {
			if !ok {
				if end.kind == lbraceTok {
					b.m.yield(newSkipper(b.m, skipBlock, nil))
				} else {
					b.afterStatement(end)
				}
				return
			}
			b.open(t, end, b.childCtx(), func() {
				b.m.doc.StartSupports(c)
			}, func() {
				b.m.doc.EndSupports(c)
			})
		}
	}))
}

func (b *block) layer(at token, ts []token, end token) {
	var names []string
	if 0 < len(ts) {
		for _, part := range splitCommas(ts) {
			name, ok := layerName(part)
			if !ok {
				b.invalid(at, end, "invalid layer name")
				return
			}
			names = append(names, name)
		}
	}

	if end.kind != lbraceTok {
		if len(names) == 0 {
			b.invalid(at, end, "missing layer name")
			return
		}
		b.m.doc.LayerStatement(names)
		b.afterStatement(end)
		return
	} else if 1 < len(names) {
		b.invalid(at, end, "a layer block takes one name")
		return
	}
	name := ""
	if len(names) == 1 {
		name = names[0]
	}
	b.styled = true
	b.open(at, end, b.childCtx(), func() {
		b.m.doc.StartLayer(name)
	}, func() {
		b.m.doc.EndLayer(name)
	})
}

// layerName reads a dotted layer name without whitespace.
func layerName(ts []token) (string, bool) {
	sb := strings.Builder{}
	for i, t := range ts {
		if i%2 == 0 && t.kind != identTok || i%2 == 1 && !t.isChar('.') {
			return "", false
		}
		if t.kind == identTok {
			if lexical.KeywordType(strings.ToLower(t.text)) != lexical.Unknown {
				return "", false
			}
			sb.WriteString(t.text)
		} else {
			sb.WriteByte('.')
		}
	}
	return sb.String(), 0 < len(ts) && len(ts)%2 == 1
}

func (b *block) page(at token, ts []token, end token) {
	var sels []PageSelector
	if 0 < len(ts) {
		for _, part := range splitCommas(ts) {
			sel, ok := pageSelector(part)
			if !ok {
				b.invalid(at, end, "invalid page selector")
				return
			}
			sels = append(sels, sel)
		}
	}
	b.open(at, end, ctxPage, func() {
		b.m.doc.StartPage(sels)
	}, func() {
		b.m.doc.EndPage(sels)
	})
}

// pageSelector reads [name](:left|:right|:first|:blank)* without whitespace.
func pageSelector(ts []token) (PageSelector, bool) {
	sel := PageSelector{}
	if len(ts) == 0 {
		return sel, false
	}
	i := 0
	if ts[0].kind == identTok {
		sel.Name = ts[0].text
		i++
	}
	for ; i < len(ts); i += 2 {
		if !ts[i].isChar(':') || len(ts) <= i+1 || ts[i+1].kind != identTok || !pagePseudos[strings.ToLower(ts[i+1].text)] {
			return sel, false
		}
		sel.Pseudos = append(sel.Pseudos, strings.ToLower(ts[i+1].text))
	}
	return sel, true
}

func (b *block) margin(at token, ts []token, end token) {
	name := strings.ToLower(at.text)
	if 0 < len(ts) {
		b.invalid(at, end, "@%s takes no prelude", name)
		return
	}
	b.open(at, end, ctxMargin, func() {
		b.m.doc.StartMargin(name)
	}, func() {
		b.m.doc.EndMargin(name)
	})
}

func (b *block) fontFace(at token, ts []token, end token) {
	if 0 < len(ts) {
		b.invalid(at, end, "@font-face takes no prelude")
		return
	}
	b.open(at, end, ctxFontFace, b.m.doc.StartFontFace, b.m.doc.EndFontFace)
}

func (b *block) keyframes(at token, ts []token, end token) {
	ws := words(ts)
	if len(ws) != 1 || ws[0].kind != quotedTok && (ws[0].kind != identTok || reservedName(ws[0].text)) {
		b.invalid(at, end, "invalid @keyframes name")
		return
	}
	name := ws[0].text
	b.open(at, end, ctxKeyframes, func() {
		b.m.doc.StartKeyframes(name)
	}, func() {
		b.m.doc.EndKeyframes(name)
	})
}

// reservedName returns true for identifiers that cannot name keyframes or counter styles.
func reservedName(name string) bool {
	lower := strings.ToLower(name)
	return lower == "none" || lower == "default" || lexical.KeywordType(lower) != lexical.Unknown
}

func (b *block) counterStyle(at token, ts []token, end token) {
	ws := words(ts)
	if len(ws) != 1 || ws[0].kind != identTok || reservedName(ws[0].text) {
		b.invalid(at, end, "invalid @counter-style name")
		return
	}
	name := ws[0].text
	b.open(at, end, ctxCounterStyle, func() {
		b.m.doc.StartCounterStyle(name)
	}, func() {
		b.m.doc.EndCounterStyle(name)
	})
}

func (b *block) fontFeatures(at token, ts []token, end token) {
	var families []string
	for _, part := range splitCommas(ts) {
		ws := words(part)
		switch {
		case len(ws) == 1 && ws[0].kind == quotedTok:
			families = append(families, ws[0].text)
			continue
		case len(ws) == 0:
			b.invalid(at, end, "missing font family")
			return
		}
		names := make([]string, 0, len(ws))
		for _, w := range ws {
			if w.kind != identTok {
				b.invalid(at, end, "invalid font family %s", w.describe())
				return
			}
			names = append(names, w.text)
		}
		families = append(families, strings.Join(names, " "))
	}
	b.open(at, end, ctxFontFeatures, func() {
		b.m.doc.StartFontFeatures(families)
	}, func() {
		b.m.doc.EndFontFeatures(families)
	})
}

func (b *block) featureMap(at token, ts []token, end token) {
	name := strings.ToLower(at.text)
	if 0 < len(ts) {
		b.invalid(at, end, "@%s takes no prelude", name)
		return
	}
	b.open(at, end, ctxFeatureMap, func() {
		b.m.doc.StartFeatureMap(name)
	}, func() {
		b.m.doc.EndFeatureMap(name)
	})
}

////////////////////////////////////////////////////////////////

func (b *block) property(at token, ts []token, end token) {
	ws := words(ts)
	if len(ws) != 1 || ws[0].kind != identTok || !strings.HasPrefix(ws[0].text, "--") || ws[0].text == "--" {
		b.invalid(at, end, "@property expects a custom property name")
		return
	} else if end.kind != lbraceTok {
		b.invalid(at, end, "missing block of @property")
		return
	}
	name := ws[0].text
	b.m.doc.StartProperty(name)
	child := newBlock(b.m, ctxProperty, true, nil)
	child.end = func() {
		b.m.doc.EndProperty(!b.validProperty(at, name, child.descriptors))
	}
	b.m.yield(child)
}

// validProperty checks the descriptors of @property, an invalid rule is discarded with a warning.
func (b *block) validProperty(at token, name string, descs map[string]lexical.Value) bool {
	discard := func(msg string, a ...interface{}) bool {
		b.m.warning(at.pos, grammar.WarnDiscardedRule, "@property "+name+": "+msg, a...)
		return false
	}

	v, ok := descs["syntax"]
	if !ok {
		return discard("missing syntax descriptor")
	} else if v.Type() != lexical.String || !v.Next().IsNil() {
		return discard("syntax must be a string")
	}
	s, err := syntax.Parse(v.Text())
	if err != nil {
		return discard("%v", err)
	}

	v, ok = descs["inherits"]
	if !ok {
		return discard("missing inherits descriptor")
	} else if v.Type() != lexical.Ident || !v.Next().IsNil() || v.Text() != "true" && v.Text() != "false" {
		return discard("inherits must be true or false")
	}

	v, ok = descs["initial-value"]
	if !ok {
		if s.Category == syntax.Universal {
			return true
		}
		return discard("missing initial-value descriptor")
	} else if s.Category == syntax.Universal {
		return true
	} else if v.Type().IsKeyword() {
		return discard("initial-value cannot be a CSS-wide keyword")
	} else if syntax.Matches(v, s) != syntax.True {
		return discard("initial-value %s does not match %s", v, s)
	}
	return true
}

////////////////////////////////////////////////////////////////

// impStage is the part of an @import preamble being read.
type impStage uint8

const (
	impURI impStage = iota
	impURL
	impURLEnd
	impLayer
	impLayerName
	impSupports
	impSupportsEnd
	impMedia
	impEnd
)

// importRec reads url|string [layer|layer(name)] [supports(...)] [media queries] up to the terminator, which it hands
// back.
type importRec struct {
	m     *manager
	at    token
	done  func(imp Import, ok bool)
	imp   Import
	stage impStage
	layer []token
	ok    bool
}

func newImportRec(m *manager, at token, done func(imp Import, ok bool)) *importRec {
	return &importRec{m: m, at: at, done: done, ok: true}
}

func (r *importRec) name() string {
	return "import"
}

func (r *importRec) handle(t token) {
	if t.kind == commentTok || t.kind == separatorTok && r.stage != impLayerName {
		return
	}
	if r.stage != impEnd && (t.kind == eofTok || stopPrelude(t)) {
		if r.stage <= impURLEnd || r.stage == impLayerName {
			r.ok = false
		}
		r.finish(t)
		return
	}

	switch r.stage {
	case impURI:
		switch {
		case t.kind == quotedTok:
			r.imp.URI = t.text
			r.stage = impLayer
		case t.isFunction("url"):
			r.stage = impURL
		default:
			r.fail(t)
		}
	case impURL:
		switch {
		case t.kind == quotedTok:
			r.imp.URI = t.text
			r.stage = impURLEnd
		case t.kind == rparenTok:
			r.stage = impLayer
		default:
			r.fail(t)
		}
	case impURLEnd:
		if t.kind != rparenTok {
			r.fail(t)
			return
		}
		r.stage = impLayer
	case impLayer, impSupports:
		switch {
		case r.stage == impLayer && t.isIdent("layer"):
			r.imp.HasLayer = true
			r.stage = impSupports
		case r.stage == impLayer && t.isFunction("layer"):
			r.imp.HasLayer = true
			r.stage = impLayerName
		case t.isFunction("supports"):
			r.stage = impSupportsEnd
			r.supports()
		default:
			r.media(t)
		}
	case impLayerName:
		if t.kind != rparenTok {
			r.layer = append(r.layer, t)
			return
		}
		name, ok := layerName(trimSpace(r.layer))
		if !ok {
			r.fail(t)
			return
		}
		r.imp.Layer = name
		r.stage = impSupports
	case impSupportsEnd:
		if t.kind != rparenTok {
			r.fail(t)
			return
		}
		r.stage = impMedia
	case impMedia:
		r.media(t)
	case impEnd:
		r.finish(t)
	}
}

// supports reads the condition of supports(), which may be a bare declaration. A declaration consumes the closing
// parenthesis, a condition hands it back.
func (r *importRec) supports() {
	r.m.yield(&importSupports{m: r.m, done: func(c condition.Condition, ok, consumed bool) {
		if !ok {
			r.ok = false
		}
		r.imp.Supports = c
		if consumed {
			r.stage = impMedia
		}
	}})
}

func (r *importRec) media(t token) {
	r.stage = impEnd
	r.m.yield(newMQList(r.m, stopPrelude, func(l condition.MediaQueryList) {
		r.imp.Media = l
	}))
	r.m.dispatch(t)
}

func (r *importRec) fail(t token) {
	r.m.syntaxError(t.pos, grammar.ErrInvalidAtRule, "unexpected %s in @import", t.describe())
	r.ok = false
	r.stage = impEnd
	s := newSkipper(r.m, skipDeclaration, nil)
	s.stop = stopPrelude
	r.m.yield(s)
	r.m.dispatch(t)
}

func (r *importRec) finish(t token) {
	r.m.restore()
	r.done(r.imp, r.ok)
	r.m.handBack(t)
}

// importSupports picks the reader of a supports() argument by its first token: a declaration without parentheses
// or a condition.
type importSupports struct {
	m    *manager
	done func(c condition.Condition, ok, consumed bool)
}

func (s *importSupports) name() string {
	return "import-supports"
}

func (s *importSupports) handle(t token) {
	if t.isSpace() {
		return
	}
	s.m.restore()
	if t.kind == identTok && !t.isIdent("not") {
		s.m.yield(newSupportsPredicate(s.m, t.pos, func(c condition.Condition, ok bool) {
			s.done(c, ok, true)
		}))
	} else {
		s.m.yield(newCondRec(s.m, false, func(t token) bool {
			return t.kind == rparenTok
		}, func(c condition.Condition, ok bool) {
			s.done(c, ok, false)
		}))
	}
	s.m.dispatch(t)
}
