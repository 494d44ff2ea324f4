package lexical

import (
	"fmt"
	"strings"

	"github.com/mazznoer/csscolorparser"
)

// Color resolves a color unit to RGBA. Named colors, hex colors and the color functions understood by csscolorparser are
// supported, values depending on var() or attr() are not.
func (v Value) Color() (csscolorparser.Color, error) {
	switch t := v.Type(); {
	case t == Ident:
		if !IsColorKeyword(v.Text()) {
			return csscolorparser.Color{}, fmt.Errorf("%s is not a color keyword", v.Text())
		}
	case t.IsColor():
		for p := v.Parameters(); !p.IsNil(); p = p.Next() {
			switch p.Type() {
			case Var, Attr, Env, Calc, MathFunction:
				return csscolorparser.Color{}, fmt.Errorf("%s depends on substitution", v.CSSText())
			}
		}
	default:
		return csscolorparser.Color{}, fmt.Errorf("%s is not a color", t)
	}
	return csscolorparser.Parse(v.CSSText())
}

// IsColorKeyword returns true for named colors and the transparent keyword.
func IsColorKeyword(name string) bool {
	name = strings.ToLower(name)
	if name == "" || isHexString(name) {
		// csscolorparser also accepts hex digits without #
		return false
	} else if name == "currentcolor" {
		return true
	}
	_, err := csscolorparser.Parse(name)
	return err == nil
}

// ValidHexColor returns true for #rgb, #rgba, #rrggbb and #rrggbbaa, hex excludes the #.
func ValidHexColor(hex string) bool {
	switch len(hex) {
	case 3, 4, 6, 8:
	default:
		return false
	}
	if !isHexString(hex) {
		return false
	}
	_, err := csscolorparser.Parse("#" + hex)
	return err == nil
}

func isHexString(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}
	return true
}
