package grammar

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// IsNameStart returns true if r may start an identifier.
func IsNameStart(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r == '_' || r >= 0x80
}

// IsNameChar returns true if r may continue an identifier.
func IsNameChar(r rune) bool {
	return IsNameStart(r) || r >= '0' && r <= '9' || r == '-'
}

// IsIdent returns true if s is a valid identifier as written, i.e. without needing escapes.
func IsIdent(s string) bool {
	if s == "" || s == "-" {
		return false
	}
	i := 0
	if s[0] == '-' {
		i = 1
		if s[1] == '-' {
			return allNameChars(s[2:])
		}
	}
	r, n := utf8.DecodeRuneInString(s[i:])
	if !IsNameStart(r) {
		return false
	}
	return allNameChars(s[i+n:])
}

func allNameChars(s string) bool {
	for _, r := range s {
		if !IsNameChar(r) {
			return false
		}
	}
	return true
}

func isHex(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

// Unescape resolves backslash escapes. Text without backslashes is returned unchanged,
// which makes it idempotent on identifiers that are already unescaped.
func Unescape(s string) string {
	if strings.IndexByte(s, '\\') == -1 {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		i++
		if i == len(s) {
			sb.WriteRune(utf8.RuneError)
			break
		}
		if isHex(s[i]) {
			j := i
			for j < len(s) && j-i < 6 && isHex(s[j]) {
				j++
			}
			cp, _ := strconv.ParseUint(s[i:j], 16, 32)
			sb.WriteRune(ValidCodepoint(rune(cp)))
			if j < len(s) && (s[j] == ' ' || s[j] == '\t' || s[j] == '\n' || s[j] == '\f') {
				j++
			} else if j < len(s) && s[j] == '\r' {
				j++
				if j < len(s) && s[j] == '\n' {
					j++
				}
			}
			i = j - 1
		} else if s[i] == '\n' || s[i] == '\f' {
			// escaped newline is a line continuation
		} else {
			r, n := utf8.DecodeRuneInString(s[i:])
			sb.WriteRune(r)
			i += n - 1
		}
	}
	return sb.String()
}

// ValidCodepoint replaces NUL, surrogates and out-of-range code points by U+FFFD.
func ValidCodepoint(r rune) rune {
	if r == 0 || r >= 0xD800 && r <= 0xDFFF || r > utf8.MaxRune {
		return utf8.RuneError
	}
	return r
}

// EscapeIdent serializes an identifier, escaping only the characters that need it.
func EscapeIdent(s string) string {
	if IsIdent(s) {
		return s
	}
	var sb strings.Builder
	first := rune(-1)
	i := 0
	for _, r := range s {
		switch {
		case r == 0:
			sb.WriteRune(utf8.RuneError)
		case r < 0x20 || r == 0x7F:
			writeCodepointEscape(&sb, r)
		case i == 0 && r >= '0' && r <= '9':
			writeCodepointEscape(&sb, r)
		case i == 1 && r >= '0' && r <= '9' && first == '-':
			writeCodepointEscape(&sb, r)
		case i == 0 && r == '-' && len(s) == 1:
			sb.WriteString(`\-`)
		case IsNameChar(r):
			sb.WriteRune(r)
		default:
			sb.WriteByte('\\')
			sb.WriteRune(r)
		}
		if i == 0 {
			first = r
		}
		i++
	}
	return sb.String()
}

func writeCodepointEscape(sb *strings.Builder, r rune) {
	sb.WriteByte('\\')
	sb.WriteString(strconv.FormatInt(int64(r), 16))
	sb.WriteByte(' ')
}

// QuoteString serializes s as a CSS string using quote, escaping it and control characters.
func QuoteString(s string, quote byte) string {
	if quote != '\'' {
		quote = '"'
	}
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte(quote)
	for _, r := range s {
		switch {
		case r == 0:
			sb.WriteRune(utf8.RuneError)
		case r < 0x20 || r == 0x7F:
			writeCodepointEscape(&sb, r)
		case r == rune(quote) || r == '\\':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte(quote)
	return sb.String()
}
