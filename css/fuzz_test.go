package css

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cssgrammar/grammar"
)

var fuzzSeeds = []string{
	"",
	"a{color:red}",
	"@media screen and (min-width: 100px){a{x:y}}",
	"@supports (a: b) and (not (c: d)){a{x:y}}",
	"@import url(a.css) layer(x) supports(display: grid) print;",
	"a:not(.b, .c)::before{x:y}",
	"a{&:hover{x:y}}",
	"a{width:calc((1px + 2px) * 3)}",
	"@page :first{@top-left{content:\"x\"}}",
	"@keyframes k{from{a:b}}",
	"a{color:(red",
	"@media (",
	"<!-- a{} -->",
	"a{b:url(",
	"\"unterminated",
}

// FuzzParseStyleSheet checks that recovery never panics and always closes the document.
func FuzzParseStyleSheet(f *testing.F) {
	for _, seed := range fuzzSeeds {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, s string) {
		rec := &recorder{}
		p := New(grammar.DefaultOptions())
		p.SetDocumentHandler(rec)
		p.SetErrorHandler(&ErrorList{})
		err := p.ParseStyleSheet(strings.NewReader(s))
		if err != nil {
			require.True(t, grammar.IsBudget(err), "%v", err)
		}
		require.Equal(t, 1, rec.docs)
		require.Equal(t, 1, rec.ends)
	})
}

func FuzzParseSelectors(f *testing.F) {
	for _, seed := range []string{"a", "a > b, c", ":is(a, b) ~ c", "[a=b i]", "*|a", "a)"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, s string) {
		l, err := New(grammar.DefaultOptions()).ParseSelectors(s)
		if err != nil {
			return
		}
		// serialized lists parse back to themselves
		l2, err := New(grammar.DefaultOptions()).ParseSelectors(l.String())
		require.NoError(t, err, l.String())
		require.Equal(t, l.String(), l2.String())
	})
}
