package css

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/cssgrammar/grammar"
	"github.com/cssgrammar/grammar/condition"
	"github.com/cssgrammar/grammar/lexical"
	"github.com/cssgrammar/grammar/scan"
	"github.com/cssgrammar/grammar/selector"
)

// Parser parses style sheets and their parts, reporting constructs to a DocumentHandler.
//
// Without an ErrorHandler the first syntax error aborts the parse and is returned. With one, errors are forwarded
// and the parser recovers where CSS prescribes it. Budget errors always abort.
type Parser struct {
	opts grammar.Options
	doc  DocumentHandler
	errs ErrorHandler
}

// New returns a new Parser.
func New(opts grammar.Options) *Parser {
	return &Parser{opts: opts}
}

// SetDocumentHandler sets the receiver of parsed constructs.
func (p *Parser) SetDocumentHandler(doc DocumentHandler) {
	p.doc = doc
}

// SetErrorHandler sets the receiver of errors and warnings.
func (p *Parser) SetErrorHandler(errs ErrorHandler) {
	p.errs = errs
}

// run scans src into the recognizer built by root.
func (p *Parser) run(src []byte, root func(m *manager) recognizer) *manager {
	m := newManager(src, p.opts, p.doc, p.errs)
	m.yield(&tail{m: m})
	m.yield(root(m))
	scan.New(src).Run(newTokenizer(m))
	m.unwind()
	return m
}

// source checks the size of a string argument.
func (p *Parser) source(s string) ([]byte, error) {
	return scan.Read(strings.NewReader(s), p.opts.StreamLimit())
}

// result returns the error of a parse producing a single construct that is invalid when ok is false.
func result(m *manager, ok bool) error {
	switch {
	case m.err != nil:
		return m.err
	case ok:
		return nil
	case m.first != nil:
		return m.first
	}
	return grammar.NewError(m.src, 0, grammar.KindSyntax, grammar.ErrInvalidSyntax, "invalid input")
}

func never(token) bool {
	return false
}

////////////////////////////////////////////////////////////////

// ParseStyleSheet parses a complete style sheet.
func (p *Parser) ParseStyleSheet(r io.Reader) error {
	src, err := scan.Read(r, p.opts.StreamLimit())
	if err != nil {
		return err
	}
	p.opts.GetLogger().Debug("parse style sheet", zap.Int("size", len(src)))
	m := p.run(src, func(m *manager) recognizer {
		m.doc.StartDocument()
		return newBlock(m, ctxTop, false, m.doc.EndDocument)
	})
	return m.err
}

// ParseStyleSheetFile parses the style sheet at path.
func (p *Parser) ParseStyleSheetFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return grammar.NewError(nil, 0, grammar.KindSyntax, grammar.ErrIO, "%v", err)
	}
	defer f.Close()
	return p.ParseStyleSheet(f)
}

// ParseRule parses a single rule, which may be an at-rule.
func (p *Parser) ParseRule(s string) error {
	src, err := p.source(s)
	if err != nil {
		return err
	}
	m := p.run(src, func(m *manager) recognizer {
		b := newBlock(m, ctxTop, false, nil)
		b.single = true
		return b
	})
	return m.err
}

// ParseSelectors parses a selector list.
func (p *Parser) ParseSelectors(s string) (selector.List, error) {
	src, err := p.source(s)
	if err != nil {
		return nil, err
	}
	var list selector.List
	var ok bool
	m := p.run(src, func(m *manager) recognizer {
		return newSelectorRec(m, func(l selector.List, valid bool) {
			list, ok = l, valid
		})
	})
	if err := result(m, ok); err != nil || !ok {
		return nil, err
	}
	return list, nil
}

// ParsePropertyValue parses a value without a property, idents keep their case.
func (p *Parser) ParsePropertyValue(s string) (lexical.Value, error) {
	return p.ParsePropertyValueFor("", s)
}

// ParsePropertyValueFor parses the value of property, which determines how idents are normalized.
func (p *Parser) ParsePropertyValueFor(property, s string) (lexical.Value, error) {
	src, err := p.source(s)
	if err != nil {
		return lexical.Value{}, err
	}
	var v lexical.Value
	var ok bool
	m := p.run(src, func(m *manager) recognizer {
		return newValueRec(m, property, never, func(val lexical.Value, valid bool) {
			v, ok = val, valid
		})
	})
	if err := result(m, ok); err != nil || !ok {
		return lexical.Value{}, err
	}
	return v, nil
}

// ParseStyleDeclaration parses the declarations of a style attribute, nested rules included.
func (p *Parser) ParseStyleDeclaration(s string) error {
	return p.body(s, ctxDecls)
}

// ParsePageRuleBody parses the contents of an @page block.
func (p *Parser) ParsePageRuleBody(s string) error {
	return p.body(s, ctxPage)
}

// ParseKeyframesBody parses the keyframe rules of an @keyframes block.
func (p *Parser) ParseKeyframesBody(s string) error {
	return p.body(s, ctxKeyframes)
}

// ParseFontFeatureValuesBody parses the contents of an @font-feature-values block.
func (p *Parser) ParseFontFeatureValuesBody(s string) error {
	return p.body(s, ctxFontFeatures)
}

func (p *Parser) body(s string, ctx blockCtx) error {
	src, err := p.source(s)
	if err != nil {
		return err
	}
	m := p.run(src, func(m *manager) recognizer {
		return newBlock(m, ctx, false, nil)
	})
	return m.err
}

// ParseSupportsCondition parses the condition of @supports.
func (p *Parser) ParseSupportsCondition(s string) (condition.Condition, error) {
	src, err := p.source(s)
	if err != nil {
		return nil, err
	}
	var c condition.Condition
	var ok bool
	m := p.run(src, func(m *manager) recognizer {
		return newCondRec(m, false, never, func(cond condition.Condition, valid bool) {
			c, ok = cond, valid
		})
	})
	if err := result(m, ok); err != nil || !ok {
		return nil, err
	}
	return c, nil
}

// ParseMediaQueryList parses a media query list, invalid queries become not all.
func (p *Parser) ParseMediaQueryList(s string) (condition.MediaQueryList, error) {
	src, err := p.source(s)
	if err != nil {
		return nil, err
	}
	var l condition.MediaQueryList
	m := p.run(src, func(m *manager) recognizer {
		return newMQList(m, never, func(list condition.MediaQueryList) {
			l = list
		})
	})
	if m.err != nil {
		return nil, m.err
	}
	return l, nil
}
