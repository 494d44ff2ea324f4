package css

import (
	"strings"

	"github.com/cssgrammar/grammar"
	"github.com/cssgrammar/grammar/selector"
)

// pseudoKind determines how a pseudo-class is parsed.
type pseudoKind uint8

const (
	pseudoPlain      pseudoKind = iota // no argument
	pseudoPositional                   // :first-child and friends
	pseudoNth                          // An+B with an optional "of S"
	pseudoNthType                      // An+B
	pseudoSelectors                    // selector list argument
	pseudoLang                         // language ranges
	pseudoArgument                     // argument kept as text
)

var pseudoClasses = map[string]pseudoKind{
	"first-child":      pseudoPositional,
	"last-child":       pseudoPositional,
	"only-child":       pseudoPositional,
	"first-of-type":    pseudoPositional,
	"last-of-type":     pseudoPositional,
	"only-of-type":     pseudoPositional,
	"nth-child":        pseudoNth,
	"nth-last-child":   pseudoNth,
	"nth-of-type":      pseudoNthType,
	"nth-last-of-type": pseudoNthType,
	"nth-col":          pseudoNthType,
	"nth-last-col":     pseudoNthType,
	"not":              pseudoSelectors,
	"is":               pseudoSelectors,
	"where":            pseudoSelectors,
	"matches":          pseudoSelectors,
	"has":              pseudoSelectors,
	"lang":             pseudoLang,
	"dir":              pseudoArgument,
	"state":            pseudoArgument,
	"host":             pseudoArgument,
	"host-context":     pseudoArgument,
}

// legacyPseudoElements may be written with a single colon.
var legacyPseudoElements = map[string]bool{
	"before":       true,
	"after":        true,
	"first-line":   true,
	"first-letter": true,
}

// selStage is the part of a compound selector being read.
type selStage uint8

const (
	selCompound selStage = iota
	selClass
	selPseudo
	selPseudoElement
	selNamespace
	selAttrName
	selAttrStar
	selAttrNamespace
	selAttrOp
	selAttrPipe
	selAttrEquals
	selAttrValue
	selAttrFlag
	selAttrEnd
	selArgument
	selArgumentEnd
)

// selectorRec builds a selector list. It finishes at { or the end of the stream, or at ) inside a pseudo-class
// argument. An invalid selector invalidates the whole list.
type selectorRec struct {
	m         *manager
	inArg     bool // ends at )
	relative  bool // complex selectors may start with a combinator
	inHas     bool // forbids :has() and pseudo-elements
	semicolon bool // ; ends recovery, for nested rules
	done      func(l selector.List, ok bool)

	list    selector.List
	left    selector.Selector
	comb    selector.Kind
	hasComb bool
	simple  selector.Selector
	cond    selector.Condition
	space   bool
	stage   selStage

	ns     string
	nsElem *selector.ElementSelector
	attr   *selector.Attribute
	attrOp selector.AttrOp

	arg struct {
		name    string
		kind    pseudoKind
		element bool
		start   int
		depth   int
		toks    []token
	}

	inError bool
	depth   int
}

func newSelectorRec(m *manager, done func(l selector.List, ok bool)) *selectorRec {
	return &selectorRec{m: m, done: done}
}

func (r *selectorRec) name() string {
	if r.inArg {
		return "selector-argument"
	}
	return "selector"
}

func (r *selectorRec) started() bool {
	return r.simple != nil || r.cond != nil
}

func (r *selectorRec) handle(t token) {
	if r.inError {
		r.recover(t)
		return
	} else if t.kind == commentTok {
		return
	}

	switch r.stage {
	case selCompound:
		r.compound(t)
	case selClass:
		if t.kind != identTok {
			r.fail(t, grammar.ErrInvalidSelector, "expected class name, got %s", t.describe())
			return
		}
		r.addCond(&selector.Class{Name: t.text})
	case selPseudo:
		switch {
		case t.isChar(':'):
			r.stage = selPseudoElement
		case t.kind == identTok:
			r.pseudo(t, false)
		case t.kind == functionTok:
			r.pseudoFunction(t, false)
		default:
			r.fail(t, grammar.ErrInvalidPseudo, "expected pseudo-class name, got %s", t.describe())
		}
	case selPseudoElement:
		switch t.kind {
		case identTok:
			r.pseudo(t, true)
		case functionTok:
			r.pseudoFunction(t, true)
		default:
			r.fail(t, grammar.ErrInvalidPseudo, "expected pseudo-element name, got %s", t.describe())
		}
	case selNamespace:
		r.namespaced(t)
	case selArgument:
		r.argument(t)
	case selArgumentEnd:
		if t.kind != rparenTok {
			r.fail(t, grammar.ErrInvalidPseudo, "expected ), got %s", t.describe())
			return
		}
		r.stage = selCompound
	default:
		r.attribute(t)
	}
}

func (r *selectorRec) compound(t token) {
	switch t.kind {
	case separatorTok:
		if r.started() || r.left != nil || r.hasComb {
			r.space = true
		}
	case identTok:
		r.begin()
		if r.started() {
			r.fail(t, grammar.ErrInvalidSelector, "type selector %s must come first", t.describe())
			return
		}
		r.simple = &selector.ElementSelector{Name: t.text}
	case hashTok:
		if !grammar.IsIdent(t.text) {
			r.fail(t, grammar.ErrInvalidSelector, "invalid id %s", t.describe())
			return
		}
		r.begin()
		r.addCond(&selector.ID{Name: t.text})
	case lbracketTok:
		r.begin()
		r.attr = &selector.Attribute{}
		r.stage = selAttrName
	case lbraceTok, eofTok:
		if r.inArg {
			r.fail(t, grammar.ErrUnexpectedChar, "unclosed selector argument")
			return
		}
		r.finish(t)
	case rparenTok:
		if !r.inArg {
			r.fail(t, grammar.ErrUnmatchedBracket, "unmatched )")
			return
		}
		r.finish(t)
	case charTok:
		r.char(t)
	default:
		r.fail(t, grammar.ErrInvalidSelector, "unexpected %s in selector", t.describe())
	}
}

func (r *selectorRec) char(t token) {
	switch t.c {
	case '.':
		r.begin()
		r.stage = selClass
	case ':':
		r.begin()
		r.stage = selPseudo
	case '*', '&':
		r.begin()
		if r.started() {
			r.fail(t, grammar.ErrInvalidSelector, "%s must come first", t.describe())
			return
		}
		if t.c == '*' {
			r.simple = &selector.ElementSelector{Name: "*"}
		} else {
			r.simple = &selector.NestingSelector{}
		}
	case '|':
		if e, ok := r.simple.(*selector.ElementSelector); ok && r.cond == nil && !e.HasNamespace && !r.space {
			r.ns, r.nsElem, r.simple = e.Name, e, nil
		} else if r.started() && !r.space {
			r.fail(t, grammar.ErrInvalidSelector, "unexpected |")
			return
		} else {
			r.ns, r.nsElem = "", nil
		}
		r.stage = selNamespace
	case '>':
		r.combinator(t, selector.Child)
	case '+':
		r.combinator(t, selector.NextSibling)
	case '~':
		r.combinator(t, selector.SubsequentSibling)
	case ',':
		if r.endAlternative(t) {
			r.space = false
		}
	case ';':
		r.fail(t, grammar.ErrInvalidSelector, "unexpected ; in selector")
	default:
		r.fail(t, grammar.ErrInvalidSelector, "unexpected %s in selector", t.describe())
	}
}

// begin closes the previous compound selector with a descendant combinator when whitespace separates them.
func (r *selectorRec) begin() {
	if r.space && r.started() {
		r.flush()
		r.comb, r.hasComb = selector.Descendant, true
	}
	r.space = false
}

func (r *selectorRec) flush() {
	simple := r.simple
	if simple == nil {
		simple = &selector.ElementSelector{Name: "*"}
	}
	c := simple
	if r.cond != nil {
		c = &selector.ConditionalSelector{Simple: simple, Condition: r.cond}
	}
	if r.hasComb {
		c = &selector.CombinatorSelector{Combinator: r.comb, Left: r.left, Right: c}
	}
	r.left, r.simple, r.cond, r.hasComb = c, nil, nil, false
}

func (r *selectorRec) combinator(t token, k selector.Kind) {
	if r.started() {
		r.flush()
	} else if r.hasComb || r.left == nil && !r.relative {
		r.fail(t, grammar.ErrInvalidSelector, "unexpected combinator %s", t.describe())
		return
	}
	r.comb, r.hasComb, r.space = k, true, false
	r.stage = selCompound
}

func (r *selectorRec) addCond(c selector.Condition) {
	r.cond = selector.Join(r.cond, c)
	r.stage = selCompound
}

// endAlternative appends the complex selector read so far to the list.
func (r *selectorRec) endAlternative(t token) bool {
	if r.started() {
		r.flush()
	}
	if r.hasComb {
		r.fail(t, grammar.ErrInvalidSelector, "missing selector after combinator")
		return false
	} else if r.left == nil {
		r.fail(t, grammar.ErrInvalidSelector, "empty selector")
		return false
	}
	if r.list.Contains(r.left) {
		r.m.warning(t.pos, grammar.WarnDuplicateSelector, "duplicate selector %s", r.left)
	}
	r.list = append(r.list, r.left)
	r.left = nil
	return true
}

func (r *selectorRec) finish(t token) {
	if !r.endAlternative(t) {
		return
	}
	r.m.restore()
	r.done(r.list, true)
	r.m.handBack(t)
}

////////////////////////////////////////////////////////////////

// namespaced reads the name after ns|.
func (r *selectorRec) namespaced(t token) {
	switch {
	case t.isChar('|'):
		if r.nsElem != nil {
			r.simple = r.nsElem
		}
		r.combinator(t, selector.Column)
		return
	case t.kind == identTok || t.isChar('*'):
		if !r.knownNamespace(t, r.ns) {
			return
		}
		name := t.text
		if t.kind != identTok {
			name = "*"
		}
		r.begin()
		r.simple = &selector.ElementSelector{Namespace: r.ns, HasNamespace: true, Name: name}
		r.stage = selCompound
	default:
		r.fail(t, grammar.ErrInvalidSelector, "expected name after |, got %s", t.describe())
	}
}

// knownNamespace checks that prefix was declared by @namespace.
func (r *selectorRec) knownNamespace(t token, prefix string) bool {
	if prefix == "" || prefix == "*" {
		return true
	} else if _, ok := r.m.namespaces[prefix]; !ok {
		r.fail(t, grammar.ErrUnknownNamespace, "unknown namespace prefix %s", prefix)
		return false
	}
	return true
}

func (r *selectorRec) attribute(t token) {
	switch r.stage {
	case selAttrStar, selAttrNamespace, selAttrPipe, selAttrEquals:
	default:
		if t.kind == separatorTok {
			return
		}
	}
	a := r.attr
	switch r.stage {
	case selAttrName:
		switch {
		case t.kind == identTok:
			a.Name = t.text
			r.stage = selAttrOp
		case t.isChar('*'):
			a.Namespace = "*"
			r.stage = selAttrStar
		case t.isChar('|'):
			a.HasNamespace = true
			r.stage = selAttrNamespace
		default:
			r.fail(t, grammar.ErrInvalidAttribute, "expected attribute name, got %s", t.describe())
		}
	case selAttrStar:
		if !t.isChar('|') {
			r.fail(t, grammar.ErrInvalidAttribute, "expected | after *")
			return
		}
		a.HasNamespace = true
		r.stage = selAttrNamespace
	case selAttrNamespace:
		if t.kind != identTok {
			r.fail(t, grammar.ErrInvalidAttribute, "expected attribute name, got %s", t.describe())
			return
		}
		a.Name = t.text
		r.stage = selAttrOp
	case selAttrOp:
		switch {
		case t.kind == rbracketTok:
			a.Op = selector.AttrExists
			r.addCond(a)
		case t.isChar('='):
			a.Op = selector.AttrEquals
			r.stage = selAttrValue
		case t.isChar('|'):
			r.stage = selAttrPipe
		case t.isChar('~'), t.isChar('^'), t.isChar('$'), t.isChar('*'):
			r.attrOp = map[rune]selector.AttrOp{
				'~': selector.AttrIncludes,
				'^': selector.AttrPrefix,
				'$': selector.AttrSuffix,
				'*': selector.AttrSubstring,
			}[t.c]
			r.stage = selAttrEquals
		default:
			r.fail(t, grammar.ErrInvalidAttribute, "expected attribute operator, got %s", t.describe())
		}
	case selAttrPipe:
		switch {
		case t.isChar('='):
			a.Op = selector.AttrDashMatch
			r.stage = selAttrValue
		case t.kind == identTok && !a.HasNamespace:
			if !r.knownNamespace(t, a.Name) {
				return
			}
			a.Namespace, a.HasNamespace, a.Name = a.Name, true, t.text
			r.stage = selAttrOp
		default:
			r.fail(t, grammar.ErrInvalidAttribute, "unexpected %s after |", t.describe())
		}
	case selAttrEquals:
		if !t.isChar('=') {
			r.fail(t, grammar.ErrInvalidAttribute, "expected =, got %s", t.describe())
			return
		}
		a.Op = r.attrOp
		r.stage = selAttrValue
	case selAttrValue:
		switch t.kind {
		case identTok, quotedTok:
			a.Value = t.text
			r.stage = selAttrFlag
		case rbracketTok:
			r.fail(t, grammar.ErrInvalidAttribute, "missing value of attribute %s", a.Name)
		default:
			r.fail(t, grammar.ErrInvalidAttribute, "invalid attribute value %s", t.describe())
		}
	case selAttrFlag:
		switch {
		case t.kind == rbracketTok:
			r.addCond(a)
		case t.isIdent("i"), t.isIdent("s"):
			a.Flag = strings.ToLower(t.text)[0]
			r.stage = selAttrEnd
		default:
			r.fail(t, grammar.ErrInvalidAttribute, "unexpected %s in attribute selector", t.describe())
		}
	case selAttrEnd:
		if t.kind != rbracketTok {
			r.fail(t, grammar.ErrInvalidAttribute, "expected ], got %s", t.describe())
			return
		}
		r.addCond(a)
	}
}

////////////////////////////////////////////////////////////////

func (r *selectorRec) pseudo(t token, element bool) {
	name := strings.ToLower(t.text)
	if element || legacyPseudoElements[name] {
		if r.inHas {
			r.fail(t, grammar.ErrInvalidPseudo, "pseudo-element %s not allowed in :has()", name)
			return
		}
		r.addCond(&selector.Pseudo{Element: element, Name: name})
		return
	}
	switch pseudoClasses[name] {
	case pseudoPlain:
		r.addCond(&selector.Pseudo{Name: name})
		return
	case pseudoPositional:
		r.addCond(&selector.Positional{Name: name, A: 0, B: 1})
		return
	}
	if name == "host" {
		r.addCond(&selector.Pseudo{Name: name})
		return
	}
	r.fail(t, grammar.ErrInvalidPseudo, "pseudo-class %s requires an argument", name)
}

func (r *selectorRec) pseudoFunction(t token, element bool) {
	name := strings.ToLower(t.text)
	kind := pseudoArgument
	if element {
		if r.inHas {
			r.fail(t, grammar.ErrInvalidPseudo, "pseudo-element %s not allowed in :has()", name)
			return
		}
	} else if k, ok := pseudoClasses[name]; ok {
		kind = k
	}

	switch kind {
	case pseudoPositional:
		r.fail(t, grammar.ErrInvalidPseudo, "pseudo-class %s takes no argument", name)
	case pseudoSelectors:
		if name == "has" && r.inHas {
			r.fail(t, grammar.ErrInvalidPseudo, ":has() cannot be nested")
			return
		}
		child := newSelectorRec(r.m, func(l selector.List, ok bool) {
			if !ok {
				r.skip(1)
				return
			}
			r.cond = selector.Join(r.cond, &selector.SelectorArgument{Name: name, Selectors: l})
		})
		child.inArg = true
		child.relative = name == "has"
		child.inHas = r.inHas || name == "has"
		r.stage = selArgumentEnd
		r.m.yield(child)
	default:
		r.arg.name, r.arg.kind, r.arg.element = name, kind, element
		r.arg.start, r.arg.depth, r.arg.toks = t.end, 0, nil
		r.stage = selArgument
	}
}

// argument collects the tokens of a pseudo-class argument up to its closing parenthesis.
func (r *selectorRec) argument(t token) {
	switch t.kind {
	case lparenTok, functionTok, lbracketTok:
		r.arg.depth++
	case rparenTok, rbracketTok:
		if r.arg.depth == 0 {
			if t.kind == rbracketTok {
				r.fail(t, grammar.ErrUnmatchedBracket, "unmatched ]")
				return
			}
			r.endArgument(t)
			return
		}
		r.arg.depth--
	case identTok:
		if r.arg.depth == 0 && r.arg.kind == pseudoNth && t.isIdent("of") {
			r.nthOf(t)
			return
		}
	case lbraceTok, rbraceTok, eofTok:
		r.fail(t, grammar.ErrInvalidPseudo, "unclosed argument of %s", r.arg.name)
		return
	}
	r.arg.toks = append(r.arg.toks, t)
}

func (r *selectorRec) endArgument(t token) {
	text := strings.TrimSpace(r.m.text(r.arg.start, t.pos))
	switch r.arg.kind {
	case pseudoNth, pseudoNthType:
		a, b, ok := selector.ParseAnB(text)
		if !ok {
			r.fail(t, grammar.ErrInvalidPseudo, "invalid An+B %q", text)
			return
		}
		r.addCond(&selector.Positional{Name: r.arg.name, A: a, B: b})
	case pseudoLang:
		ranges, ok := langRanges(r.arg.toks)
		if !ok {
			r.fail(t, grammar.ErrInvalidPseudo, "invalid :lang() argument %q", text)
			return
		}
		r.addCond(&selector.Lang{Ranges: ranges})
	default:
		if text == "" {
			r.fail(t, grammar.ErrInvalidPseudo, "empty argument of %s", r.arg.name)
			return
		}
		r.addCond(&selector.Pseudo{Element: r.arg.element, Name: r.arg.name, Argument: text, HasArgument: true})
	}
}

// nthOf parses An+B before "of" and reads the selector list after it.
func (r *selectorRec) nthOf(t token) {
	name := r.arg.name
	text := strings.TrimSpace(r.m.text(r.arg.start, t.pos))
	a, b, ok := selector.ParseAnB(text)
	if !ok {
		r.fail(t, grammar.ErrInvalidPseudo, "invalid An+B %q", text)
		return
	}
	child := newSelectorRec(r.m, func(l selector.List, ok bool) {
		if !ok {
			r.skip(1)
			return
		}
		r.cond = selector.Join(r.cond, &selector.Positional{Name: name, A: a, B: b, Of: l})
	})
	child.inArg = true
	child.inHas = r.inHas
	r.stage = selArgumentEnd
	r.m.yield(child)
}

// langRanges reads identifiers and strings separated by commas.
func langRanges(ts []token) ([]string, bool) {
	var ranges []string
	for _, part := range splitCommas(ts) {
		part = words(part)
		if len(part) != 1 || part[0].kind != identTok && part[0].kind != quotedTok {
			return nil, false
		}
		ranges = append(ranges, part[0].text)
	}
	return ranges, true
}

////////////////////////////////////////////////////////////////

// fail reports an error and skips to the end of the selector list.
func (r *selectorRec) fail(t token, code grammar.ErrorCode, msg string, a ...interface{}) {
	r.m.syntaxError(t.pos, code, msg, a...)
	depth := 0
	if r.stage == selArgument {
		depth = r.arg.depth + 1
	}
	r.skip(depth)
	r.recover(t)
}

// skip enters recovery, depth counts the open parentheses of the current position.
func (r *selectorRec) skip(depth int) {
	r.inError = true
	r.depth = depth
	r.list = nil
}

func (r *selectorRec) recover(t token) {
	switch t.kind {
	case lparenTok, functionTok, lbracketTok:
		r.depth++
	case rparenTok, rbracketTok:
		if r.depth == 0 && t.kind == rparenTok && r.inArg {
			r.abandon(t)
		} else if 0 < r.depth {
			r.depth--
		}
	case lbraceTok, rbraceTok, eofTok:
		r.abandon(t)
	case charTok:
		if t.c == ';' && r.semicolon && r.depth == 0 {
			r.abandon(t)
		}
	}
}

func (r *selectorRec) abandon(t token) {
	r.m.restore()
	r.done(nil, false)
	r.m.handBack(t)
}
