// Package syntax parses value grammars such as "<length-percentage>#" or "auto | <color>" and matches lexical values
// against them, using dimensional analysis for calc() and the other math functions.
package syntax

import (
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cssgrammar/grammar"
	"github.com/cssgrammar/grammar/lexical"
)

// Category is the data type an alternative of a grammar accepts.
type Category uint8

// Category values.
const (
	Universal Category = iota
	Length
	Percentage
	LengthPercentage
	Number
	Integer
	Angle
	Time
	Frequency
	Resolution
	Flex
	Color
	Image
	URL
	String
	CustomIdent
	TransformFunction
	TransformList
	Ident
)

var categoryNames = map[Category]string{
	Universal:         "*",
	Length:            "length",
	Percentage:        "percentage",
	LengthPercentage:  "length-percentage",
	Number:            "number",
	Integer:           "integer",
	Angle:             "angle",
	Time:              "time",
	Frequency:         "frequency",
	Resolution:        "resolution",
	Flex:              "flex",
	Color:             "color",
	Image:             "image",
	URL:               "url",
	String:            "string",
	CustomIdent:       "custom-ident",
	TransformFunction: "transform-function",
	TransformList:     "transform-list",
	Ident:             "ident",
}

var categoryByName = func() map[string]Category {
	m := map[string]Category{}
	for c, name := range categoryNames {
		if c != Universal && c != Ident {
			m[name] = c
		}
	}
	return m
}()

// String returns the string representation of a Category.
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "Invalid(" + strconv.Itoa(int(c)) + ")"
}

// Multiplier is the repetition suffix of an alternative.
type Multiplier uint8

// Multiplier values.
const (
	None  Multiplier = iota
	List             // #, comma-separated
	Space            // +, space-separated
)

// Syntax is one alternative of a grammar, Next points to the following alternative.
type Syntax struct {
	Category   Category
	Multiplier Multiplier
	Name       string // keyword of Ident alternatives
	Next       *Syntax
}

// String serializes the grammar starting at s.
func (s *Syntax) String() string {
	sb := strings.Builder{}
	for alt := s; alt != nil; alt = alt.Next {
		if alt != s {
			sb.WriteString(" | ")
		}
		switch alt.Category {
		case Universal:
			sb.WriteByte('*')
		case Ident:
			sb.WriteString(grammar.EscapeIdent(alt.Name))
		default:
			sb.WriteByte('<')
			sb.WriteString(alt.Category.String())
			sb.WriteByte('>')
		}
		switch alt.Multiplier {
		case List:
			sb.WriteByte('#')
		case Space:
			sb.WriteByte('+')
		}
	}
	return sb.String()
}

// Alternatives returns the alternatives in order.
func (s *Syntax) Alternatives() []*Syntax {
	var alts []*Syntax
	for alt := s; alt != nil; alt = alt.Next {
		alts = append(alts, alt)
	}
	return alts
}

// Has returns true if an alternative of s has category c and no multiplier.
func (s *Syntax) Has(c Category) bool {
	for alt := s; alt != nil; alt = alt.Next {
		if alt.Category == c && alt.Multiplier == None {
			return true
		}
	}
	return false
}

////////////////////////////////////////////////////////////////

const cacheSize = 256

var cache, _ = lru.New[string, *Syntax](cacheSize)

// Parse parses a grammar. Results are cached by text and must not be modified.
func Parse(text string) (*Syntax, error) {
	text = strings.TrimSpace(text)
	if s, ok := cache.Get(text); ok {
		return s, nil
	}
	s, err := parse(text)
	if err != nil {
		return nil, err
	}
	cache.Add(text, s)
	return s, nil
}

// MustParse is like Parse but panics on invalid grammars, for use in package variables.
func MustParse(text string) *Syntax {
	s, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return s
}

func parse(text string) (*Syntax, error) {
	if text == "" {
		return nil, syntaxError("empty grammar")
	} else if text == "*" {
		return &Syntax{Category: Universal}, nil
	}

	var first, last *Syntax
	for _, part := range strings.Split(text, "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, syntaxError("empty alternative in %q", text)
		}
		alt := &Syntax{}
		switch part[len(part)-1] {
		case '#':
			alt.Multiplier = List
			part = part[:len(part)-1]
		case '+':
			alt.Multiplier = Space
			part = part[:len(part)-1]
		}
		if strings.HasPrefix(part, "<") && strings.HasSuffix(part, ">") {
			c, ok := categoryByName[part[1:len(part)-1]]
			if !ok {
				return nil, syntaxError("unknown data type %s", part)
			} else if c == TransformList && alt.Multiplier != None {
				return nil, syntaxError("<transform-list> cannot be repeated")
			}
			alt.Category = c
		} else if part == "*" {
			return nil, syntaxError("the universal syntax must stand alone")
		} else if name := grammar.Unescape(part); grammar.IsIdent(part) && !isReservedIdent(name) {
			alt.Category = Ident
			alt.Name = name
		} else {
			return nil, syntaxError("invalid keyword %q", part)
		}
		if first == nil {
			first = alt
		} else {
			last.Next = alt
		}
		last = alt
	}
	return first, nil
}

func syntaxError(msg string, a ...interface{}) error {
	return grammar.NewError(nil, 0, grammar.KindSyntax, grammar.ErrInvalidSyntax, msg, a...)
}

// isReservedIdent returns true for the CSS-wide keywords and default, which are not valid custom identifiers.
func isReservedIdent(name string) bool {
	name = strings.ToLower(name)
	return lexical.KeywordType(name) != lexical.Unknown || name == "default"
}
