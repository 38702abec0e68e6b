package bindgen

import (
	"go/token"
	"strconv"
	"strings"
	"unicode"
)

// words splits an export name into lowercase words at '_', '-', '.',
// other non-alphanumerics and lower-to-upper case changes.
func words(name string) []string {
	var out []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			out = append(out, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}

	runes := []rune(name)
	for i, r := range runes {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
		case unicode.IsUpper(r) && i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])):
			flush()
			cur = append(cur, r)
		case unicode.IsUpper(r) && i > 0 && unicode.IsUpper(runes[i-1]) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
			// "HTTPServer" -> http, server
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
	}
	flush()
	return out
}

// goIdent converts an export name to an exported Go identifier.
func goIdent(name string) string {
	var b strings.Builder
	for _, w := range words(name) {
		r := []rune(w)
		b.WriteRune(unicode.ToUpper(r[0]))
		b.WriteString(string(r[1:]))
	}
	s := b.String()
	if s == "" || !unicode.IsLetter([]rune(s)[0]) {
		s = "X" + s
	}
	if !token.IsIdentifier(s) {
		return "X"
	}
	return s
}

// kebab converts an export name to a WIT identifier: lowercase words joined
// by '-', each starting with a letter. Keywords are escaped when rendered.
func kebab(name string) string {
	var parts []string
	for _, w := range words(name) {
		var b strings.Builder
		for _, r := range w {
			if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
				b.WriteRune(r)
			}
		}
		w = b.String()
		switch {
		case w == "":
		case unicode.IsDigit(rune(w[0])) && len(parts) > 0:
			parts[len(parts)-1] += w
		case unicode.IsDigit(rune(w[0])):
			parts = append(parts, "x"+w)
		default:
			parts = append(parts, w)
		}
	}
	if len(parts) == 0 {
		return "x"
	}
	return strings.Join(parts, "-")
}

// isJSIdent reports whether name can be used as a bare JavaScript property.
func isJSIdent(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || r == '$':
		case r < unicode.MaxASCII && unicode.IsLetter(r):
		case i > 0 && r < unicode.MaxASCII && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}

// namer hands out unique identifiers, suffixing repeats with 2, 3, ...
type namer struct {
	used map[string]bool
}

func newNamer(reserved ...string) *namer {
	n := &namer{used: make(map[string]bool)}
	for _, r := range reserved {
		n.used[r] = true
	}
	return n
}

func (n *namer) unique(base string, sep string) string {
	name := base
	for i := 2; n.used[name]; i++ {
		name = base + sep + strconv.Itoa(i)
	}
	n.used[name] = true
	return name
}
