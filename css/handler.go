package css

import (
	"github.com/cssgrammar/grammar"
	"github.com/cssgrammar/grammar/condition"
	"github.com/cssgrammar/grammar/lexical"
	"github.com/cssgrammar/grammar/selector"
)

// Import is the preamble of an @import rule.
type Import struct {
	URI      string
	Layer    string // dotted layer name of layer(name)
	HasLayer bool   // set for both layer and layer(name)
	Supports condition.Condition
	Media    condition.MediaQueryList
}

// PageSelector is one selector of an @page rule, eg. toc:first has Name toc and Pseudos [first].
type PageSelector struct {
	Name    string
	Pseudos []string
}

func (s PageSelector) String() string {
	text := grammar.EscapeIdent(s.Name)
	for _, p := range s.Pseudos {
		text += ":" + p
	}
	return text
}

// DocumentHandler receives the constructs of a style sheet in source order. Begin and end callbacks of blocks are
// balanced, also when the stream ends inside a block.
type DocumentHandler interface {
	StartDocument()
	EndDocument()
	Comment(text string, precededByLF bool)
	Charset(encoding string)
	ImportStyle(imp Import)
	NamespaceDeclaration(prefix, uri string)

	StartMedia(media condition.MediaQueryList)
	EndMedia(media condition.MediaQueryList)
	StartSupports(cond condition.Condition)
	EndSupports(cond condition.Condition)
	LayerStatement(names []string)
	StartLayer(name string)
	EndLayer(name string)

	StartPage(selectors []PageSelector)
	EndPage(selectors []PageSelector)
	StartMargin(name string)
	EndMargin(name string)
	StartFontFace()
	EndFontFace()
	StartCounterStyle(name string)
	EndCounterStyle(name string)
	StartKeyframes(name string)
	EndKeyframes(name string)
	StartKeyframe(selectors lexical.Value)
	EndKeyframe(selectors lexical.Value)
	StartFontFeatures(families []string)
	EndFontFeatures(families []string)
	StartFeatureMap(name string)
	EndFeatureMap(name string)
	StartProperty(name string)
	EndProperty(discard bool)

	StartSelector(selectors selector.List)
	EndSelector(selectors selector.List)
	Property(name string, value lexical.Value, important bool)
	IgnorableAtRule(text string)
}

// BaseHandler implements DocumentHandler with methods that do nothing, to be embedded by handlers that are only
// interested in some callbacks.
type BaseHandler struct{}

func (BaseHandler) StartDocument()                       {}
func (BaseHandler) EndDocument()                         {}
func (BaseHandler) Comment(string, bool)                 {}
func (BaseHandler) Charset(string)                       {}
func (BaseHandler) ImportStyle(Import)                   {}
func (BaseHandler) NamespaceDeclaration(string, string)  {}
func (BaseHandler) StartMedia(condition.MediaQueryList)  {}
func (BaseHandler) EndMedia(condition.MediaQueryList)    {}
func (BaseHandler) StartSupports(condition.Condition)    {}
func (BaseHandler) EndSupports(condition.Condition)      {}
func (BaseHandler) LayerStatement([]string)              {}
func (BaseHandler) StartLayer(string)                    {}
func (BaseHandler) EndLayer(string)                      {}
func (BaseHandler) StartPage([]PageSelector)             {}
func (BaseHandler) EndPage([]PageSelector)               {}
func (BaseHandler) StartMargin(string)                   {}
func (BaseHandler) EndMargin(string)                     {}
func (BaseHandler) StartFontFace()                       {}
func (BaseHandler) EndFontFace()                         {}
func (BaseHandler) StartCounterStyle(string)             {}
func (BaseHandler) EndCounterStyle(string)               {}
func (BaseHandler) StartKeyframes(string)                {}
func (BaseHandler) EndKeyframes(string)                  {}
func (BaseHandler) StartKeyframe(lexical.Value)          {}
func (BaseHandler) EndKeyframe(lexical.Value)            {}
func (BaseHandler) StartFontFeatures([]string)           {}
func (BaseHandler) EndFontFeatures([]string)             {}
func (BaseHandler) StartFeatureMap(string)               {}
func (BaseHandler) EndFeatureMap(string)                 {}
func (BaseHandler) StartProperty(string)                 {}
func (BaseHandler) EndProperty(bool)                     {}
func (BaseHandler) StartSelector(selector.List)          {}
func (BaseHandler) EndSelector(selector.List)            {}
func (BaseHandler) Property(string, lexical.Value, bool) {}
func (BaseHandler) IgnorableAtRule(string)               {}

////////////////////////////////////////////////////////////////

// ErrorHandler receives syntax errors and warnings. Registering one turns the first syntax error from fatal into
// recoverable, budget errors still abort the parse.
type ErrorHandler interface {
	Error(err *grammar.Error)
	Warning(err *grammar.Error)
}

// ErrorList is an ErrorHandler collecting all problems.
type ErrorList struct {
	Errors   []*grammar.Error
	Warnings []*grammar.Error
}

// Error appends a syntax error.
func (l *ErrorList) Error(err *grammar.Error) {
	l.Errors = append(l.Errors, err)
}

// Warning appends a warning.
func (l *ErrorList) Warning(err *grammar.Error) {
	l.Warnings = append(l.Warnings, err)
}

// Codes returns the codes of the collected errors in order.
func (l *ErrorList) Codes() []grammar.ErrorCode {
	codes := make([]grammar.ErrorCode, 0, len(l.Errors))
	for _, err := range l.Errors {
		codes = append(codes, err.Code)
	}
	return codes
}
