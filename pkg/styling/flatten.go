package styling

import (
	"strings"
)

// groupingAtRules wrap the component's rules; other at-rules (keyframes,
// font-face) are emitted verbatim.
var groupingAtRules = map[string]bool{
	"media":     true,
	"supports":  true,
	"container": true,
	"layer":     true,
	"document":  true,
}

// Flatten expands a component's CSS body into flat rules scoped to selector.
//
//	color: blue;
//	&:hover { color: red; }
//	@media (min-width: 100px) { color: green; }
//
// becomes
//
//	.x{color:blue;}
//	.x:hover{color:red;}
//	@media (min-width: 100px){.x{color:green;}}
//
// Own declarations are grouped into one rule emitted before nested rules.
func Flatten(selector, css string) []string {
	f := &flattener{}
	f.block(removeComments(css), []string{selector}, nil)
	return f.rules
}

type flattener struct {
	rules []string
}

type nestedBlock struct {
	prelude string
	body    string
}

func (f *flattener) block(body string, selectors, wrap []string) {
	var decls []string
	var nested []nestedBlock

	var buf strings.Builder
	var quote byte
	parens := 0

	flushDecl := func() {
		if d, ok := normalizeDeclaration(buf.String()); ok {
			decls = append(decls, d)
		}
		buf.Reset()
	}

	for i := 0; i < len(body); i++ {
		c := body[i]

		if quote != 0 {
			buf.WriteByte(c)
			if c == '\\' && i+1 < len(body) {
				i++
				buf.WriteByte(body[i])
			} else if c == quote {
				quote = 0
			}
			continue
		}

		switch {
		case c == '"' || c == '\'':
			quote = c
			buf.WriteByte(c)
		case c == '(':
			parens++
			buf.WriteByte(c)
		case c == ')':
			if parens > 0 {
				parens--
			}
			buf.WriteByte(c)
		case c == ';' && parens == 0:
			flushDecl()
		case c == '{' && parens == 0:
			end := matchingBrace(body, i)
			nested = append(nested, nestedBlock{
				prelude: collapseSpace(buf.String()),
				body:    body[i+1 : end],
			})
			buf.Reset()
			i = end
		case c == '}' && parens == 0:
			// stray closing brace
		default:
			buf.WriteByte(c)
		}
	}
	flushDecl()

	if len(decls) > 0 {
		f.emit(strings.Join(selectors, ",")+"{"+strings.Join(decls, "")+"}", wrap)
	}

	for _, n := range nested {
		if n.prelude == "" {
			continue
		}
		if strings.HasPrefix(n.prelude, "@") {
			name := atRuleName(n.prelude)
			if groupingAtRules[name] {
				inner := append(wrap[:len(wrap):len(wrap)], n.prelude)
				f.block(n.body, selectors, inner)
			} else {
				f.emit(n.prelude+"{"+collapseSpace(n.body)+"}", wrap)
			}
			continue
		}
		f.block(n.body, resolveSelectors(selectors, n.prelude), wrap)
	}
}

// emit appends rule wrapped in every enclosing at-rule, innermost last
func (f *flattener) emit(rule string, wrap []string) {
	for i := len(wrap) - 1; i >= 0; i-- {
		rule = wrap[i] + "{" + rule + "}"
	}
	f.rules = append(f.rules, rule)
}

// matchingBrace returns the index of the brace closing the one at open,
// or len(s) when the block is never closed.
func matchingBrace(s string, open int) int {
	depth := 0
	var quote byte
	for i := open; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return len(s)
}

// resolveSelectors combines parent selectors with a nested selector list.
// "&" is replaced by the parent; a leading ':' attaches to the parent;
// anything else is a descendant.
func resolveSelectors(parents []string, nested string) []string {
	var out []string
	for _, part := range splitTopLevel(nested, ',') {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		for _, parent := range parents {
			if strings.Contains(part, "&") {
				out = append(out, collapseSpace(strings.ReplaceAll(part, "&", parent)))
			} else if strings.HasPrefix(part, ":") {
				out = append(out, collapseSpace(parent+part))
			} else {
				out = append(out, collapseSpace(parent+" "+part))
			}
		}
	}
	return out
}

// splitTopLevel splits s on sep outside parentheses and quotes
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	var quote byte
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// normalizeDeclaration turns " color :  blue " into "color:blue;"
func normalizeDeclaration(decl string) (string, bool) {
	prop, val, ok := strings.Cut(decl, ":")
	if !ok {
		return "", false
	}
	prop = strings.TrimSpace(prop)
	val = collapseSpace(val)
	if prop == "" || val == "" {
		return "", false
	}
	return prop + ":" + val + ";", true
}

func atRuleName(prelude string) string {
	name := strings.TrimPrefix(prelude, "@")
	if i := strings.IndexAny(name, " \t\n("); i >= 0 {
		name = name[:i]
	}
	return strings.ToLower(name)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// removeComments removes CSS comments from the string
func removeComments(css string) string {
	result := strings.Builder{}
	i := 0
	for i < len(css) {
		if i < len(css)-1 && css[i] == '/' && css[i+1] == '*' {
			// Find end of comment; an unterminated comment runs to EOF
			end := strings.Index(css[i+2:], "*/")
			if end < 0 {
				break
			}
			i += 2 + end + 2
		} else {
			result.WriteByte(css[i])
			i++
		}
	}
	return result.String()
}
