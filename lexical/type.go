// Package lexical holds the lexical-value model produced by the value recognizer: a doubly-linked
// tree of typed units stored in an arena and addressed by index.
package lexical

import "strconv"

// Type determines the type of a lexical unit, eg. a number or a function.
type Type uint8

// Type values.
const (
	Unknown Type = iota
	Inherit
	Initial
	Unset
	Revert
	RevertLayer
	Integer
	Real
	Percentage
	Dimension
	Ident
	String
	URI
	UnicodeRange
	UnicodeWildcard
	RGBColor
	HSLColor
	HWBColor
	LabColor
	LCHColor
	OklabColor
	OklchColor
	ColorFunction
	ColorMix
	Calc
	MathFunction
	SubExpression
	Var
	Attr
	Env
	Function
	PrefixedFunction
	CubicBezierFunction
	StepsFunction
	LinearFunction
	Counter
	Counters
	RectFunction
	Gradient
	ImageSet
	ElementReference
	TransformFunction
	OperatorComma
	OperatorPlus
	OperatorMinus
	OperatorMultiply
	OperatorSlash
	LeftBracket
	RightBracket
	CompatIdent
	CompatPrio
	Empty
	Block // {} block of a custom property, kept as source text
)

var typeNames = [...]string{
	Unknown:             "Unknown",
	Inherit:             "Inherit",
	Initial:             "Initial",
	Unset:               "Unset",
	Revert:              "Revert",
	RevertLayer:         "RevertLayer",
	Integer:             "Integer",
	Real:                "Real",
	Percentage:          "Percentage",
	Dimension:           "Dimension",
	Ident:               "Ident",
	String:              "String",
	URI:                 "URI",
	UnicodeRange:        "UnicodeRange",
	UnicodeWildcard:     "UnicodeWildcard",
	RGBColor:            "RGBColor",
	HSLColor:            "HSLColor",
	HWBColor:            "HWBColor",
	LabColor:            "LabColor",
	LCHColor:            "LCHColor",
	OklabColor:          "OklabColor",
	OklchColor:          "OklchColor",
	ColorFunction:       "ColorFunction",
	ColorMix:            "ColorMix",
	Calc:                "Calc",
	MathFunction:        "MathFunction",
	SubExpression:       "SubExpression",
	Var:                 "Var",
	Attr:                "Attr",
	Env:                 "Env",
	Function:            "Function",
	PrefixedFunction:    "PrefixedFunction",
	CubicBezierFunction: "CubicBezierFunction",
	StepsFunction:       "StepsFunction",
	LinearFunction:      "LinearFunction",
	Counter:             "Counter",
	Counters:            "Counters",
	RectFunction:        "RectFunction",
	Gradient:            "Gradient",
	ImageSet:            "ImageSet",
	ElementReference:    "ElementReference",
	TransformFunction:   "TransformFunction",
	OperatorComma:       "OperatorComma",
	OperatorPlus:        "OperatorPlus",
	OperatorMinus:       "OperatorMinus",
	OperatorMultiply:    "OperatorMultiply",
	OperatorSlash:       "OperatorSlash",
	LeftBracket:         "LeftBracket",
	RightBracket:        "RightBracket",
	CompatIdent:         "CompatIdent",
	CompatPrio:          "CompatPrio",
	Empty:               "Empty",
	Block:               "Block",
}

// String returns the string representation of a Type.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Invalid(" + strconv.Itoa(int(t)) + ")"
}

// IsKeyword returns true for the CSS-wide keywords.
func (t Type) IsKeyword() bool {
	return Inherit <= t && t <= RevertLayer
}

// IsNumeric returns true for plain numeric units.
func (t Type) IsNumeric() bool {
	return Integer <= t && t <= Dimension
}

// IsOperator returns true for the comma and arithmetic operators.
func (t Type) IsOperator() bool {
	return OperatorComma <= t && t <= OperatorSlash
}

// IsArithmetic returns true for + - * /.
func (t Type) IsArithmetic() bool {
	return OperatorPlus <= t && t <= OperatorSlash
}

// IsColor returns true for color literals and color functions.
func (t Type) IsColor() bool {
	return RGBColor <= t && t <= ColorMix
}

// IsMath returns true for calc() and the other math functions.
func (t Type) IsMath() bool {
	return t == Calc || t == MathFunction
}

// HasParameters returns true for types whose unit owns a parameter chain.
func (t Type) HasParameters() bool {
	switch t {
	case URI:
		return false
	}
	return RGBColor <= t && t <= TransformFunction && t != UnicodeRange
}

// keywordTypes maps the CSS-wide keywords to their types.
var keywordTypes = map[string]Type{
	"inherit":      Inherit,
	"initial":      Initial,
	"unset":        Unset,
	"revert":       Revert,
	"revert-layer": RevertLayer,
}

// KeywordType returns the type of a CSS-wide keyword, or Unknown. name must be lowercase.
func KeywordType(name string) Type {
	if t, ok := keywordTypes[name]; ok {
		return t
	}
	return Unknown
}

// mathFunctions lists the math functions other than calc().
var mathFunctions = map[string]bool{
	"min": true, "max": true, "clamp": true,
	"round": true, "mod": true, "rem": true,
	"sin": true, "cos": true, "tan": true,
	"asin": true, "acos": true, "atan": true, "atan2": true,
	"pow": true, "sqrt": true, "hypot": true, "log": true, "exp": true,
	"abs": true, "sign": true,
}

var functionTypes = map[string]Type{
	"calc":         Calc,
	"-webkit-calc": Calc,
	"-moz-calc":    Calc,
	"var":          Var,
	"attr":         Attr,
	"env":          Env,
	"rgb":          RGBColor,
	"rgba":         RGBColor,
	"hsl":          HSLColor,
	"hsla":         HSLColor,
	"hwb":          HWBColor,
	"lab":          LabColor,
	"lch":          LCHColor,
	"oklab":        OklabColor,
	"oklch":        OklchColor,
	"color":        ColorFunction,
	"color-mix":    ColorMix,
	"cubic-bezier": CubicBezierFunction,
	"steps":        StepsFunction,
	"linear":       LinearFunction,
	"counter":      Counter,
	"counters":     Counters,
	"rect":         RectFunction,
	"image-set":    ImageSet,
	"element":      ElementReference,

	"linear-gradient":           Gradient,
	"radial-gradient":           Gradient,
	"conic-gradient":            Gradient,
	"repeating-linear-gradient": Gradient,
	"repeating-radial-gradient": Gradient,
	"repeating-conic-gradient":  Gradient,

	"matrix": TransformFunction, "matrix3d": TransformFunction,
	"translate": TransformFunction, "translatex": TransformFunction, "translatey": TransformFunction,
	"translatez": TransformFunction, "translate3d": TransformFunction,
	"scale": TransformFunction, "scalex": TransformFunction, "scaley": TransformFunction,
	"scalez": TransformFunction, "scale3d": TransformFunction,
	"rotate": TransformFunction, "rotatex": TransformFunction, "rotatey": TransformFunction,
	"rotatez": TransformFunction, "rotate3d": TransformFunction,
	"skew": TransformFunction, "skewx": TransformFunction, "skewy": TransformFunction,
	"perspective": TransformFunction,
}

// FunctionType returns the unit type of a function by its lowercase name.
func FunctionType(name string) Type {
	if t, ok := functionTypes[name]; ok {
		return t
	} else if mathFunctions[name] {
		return MathFunction
	} else if 1 < len(name) && name[0] == '-' && name[1] != '-' {
		return PrefixedFunction
	}
	return Function
}

// IsMathFunctionName returns true for the names of math functions other than calc().
func IsMathFunctionName(name string) bool {
	return mathFunctions[name]
}
