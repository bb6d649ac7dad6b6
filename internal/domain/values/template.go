package values

import (
	"fmt"
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Template is a string with named {placeholder} tokens.
// "{{" and "}}" stand for literal braces.
type Template struct {
	raw    string
	tokens []templateToken
}

type templateToken struct {
	text        string
	placeholder bool
}

// ParseTemplate splits s into literal text and placeholders.
func ParseTemplate(s string) (Template, error) {
	var tokens []templateToken
	var literal strings.Builder

	flush := func() {
		if literal.Len() > 0 {
			tokens = append(tokens, templateToken{text: literal.String()})
			literal.Reset()
		}
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '$' && i+1 < len(s) && s[i+1] == '{':
			// ${VAR} is an environment reference, not a placeholder.
			end := strings.IndexByte(s[i:], '}')
			if end < 0 {
				return Template{}, fmt.Errorf("template %q: unclosed '${' at offset %d", s, i)
			}
			literal.WriteString(s[i : i+end+1])
			i += end
		case c == '{' && i+1 < len(s) && s[i+1] == '{':
			literal.WriteByte('{')
			i++
		case c == '}' && i+1 < len(s) && s[i+1] == '}':
			literal.WriteByte('}')
			i++
		case c == '{':
			end := strings.IndexByte(s[i+1:], '}')
			if end < 0 {
				return Template{}, fmt.Errorf("template %q: unclosed '{' at offset %d", s, i)
			}
			key := s[i+1 : i+1+end]
			if !placeholderPattern.MatchString(key) {
				return Template{}, fmt.Errorf("template %q: invalid placeholder {%s}", s, key)
			}
			flush()
			tokens = append(tokens, templateToken{text: key, placeholder: true})
			i += end + 1
		case c == '}':
			return Template{}, fmt.Errorf("template %q: unmatched '}' at offset %d", s, i)
		default:
			literal.WriteByte(c)
		}
	}
	flush()

	return Template{raw: s, tokens: tokens}, nil
}

// String returns the template source.
func (t Template) String() string {
	return t.raw
}

// Placeholders returns the distinct placeholder names in order of first use.
func (t Template) Placeholders() []string {
	seen := make(map[string]bool)
	var keys []string
	for _, tok := range t.tokens {
		if tok.placeholder && !seen[tok.text] {
			seen[tok.text] = true
			keys = append(keys, tok.text)
		}
	}
	return keys
}

// Execute substitutes every placeholder through lookup. When lookup reports
// keep=true the placeholder is written back verbatim as "{key}".
// A lookup error aborts execution.
func (t Template) Execute(lookup func(key string) (value string, keep bool, err error)) (string, error) {
	var out strings.Builder
	for _, tok := range t.tokens {
		if !tok.placeholder {
			out.WriteString(tok.text)
			continue
		}
		value, keep, err := lookup(tok.text)
		if err != nil {
			return "", err
		}
		if keep {
			out.WriteString("{" + tok.text + "}")
			continue
		}
		out.WriteString(value)
	}
	return out.String(), nil
}
