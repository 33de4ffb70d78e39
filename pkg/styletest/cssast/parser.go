package cssast

import (
	"errors"
	"fmt"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// ParseError reports CSS text that is not a well-formed stylesheet.
type ParseError struct {
	Line   int // 1-based, 0 when unknown
	Column int // 1-based, 0 when unknown
	Msg    string
	Err    error // Underlying tokenizer error, if any
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("css: %s at line %d, column %d", e.Msg, e.Line, e.Column)
	}
	return "css: " + e.Msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parser parses CSS stylesheets into a Stylesheet tree.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// Parse parses CSS text into a Stylesheet. Malformed input yields a *ParseError.
func (p *Parser) Parse(src string) (*Stylesheet, error) {
	if err := checkBraces(src); err != nil {
		return nil, err
	}

	sheet := &Stylesheet{Items: make([]Item, 0)}
	parser := css.NewParser(parse.NewInputString(src), false)

	var (
		groups   []*AtRule // open at-rule blocks, innermost last
		rule     *Rule     // open ruleset
		selector []string  // selectors seen before the ruleset opens
		start    int       // source offset where the current grammar began
	)

	appendItem := func(item Item) {
		if len(groups) > 0 {
			top := groups[len(groups)-1]
			top.Items = append(top.Items, item)
			return
		}
		sheet.Items = append(sheet.Items, item)
	}

	for {
		start = min(parser.Offset(), len(src))
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			err := parser.Err()
			if err != nil && !errors.Is(err, io.EOF) {
				p.log.Debug("CSS parse error", zap.Error(err))
				return nil, &ParseError{Msg: err.Error(), Err: err}
			}
			if rule != nil || len(groups) > 0 {
				return nil, &ParseError{Msg: "unexpected end of input inside a block"}
			}
			p.log.Debug("Parsed CSS", zap.Int("bytes", len(src)), zap.Int("rules", sheet.RuleCount()))
			return sheet, nil

		case css.CommentGrammar:
			continue

		case css.AtRuleGrammar:
			appendItem(Item{AtRule: &AtRule{
				Name:    atRuleName(data),
				Prelude: joinTokens(parser.Values()),
			}})

		case css.BeginAtRuleGrammar:
			at := &AtRule{
				Name:    atRuleName(data),
				Prelude: joinTokens(parser.Values()),
			}
			appendItem(Item{AtRule: at})
			groups = append(groups, at)

		case css.EndAtRuleGrammar:
			if len(groups) == 0 {
				return nil, &ParseError{Msg: "unexpected end of at-rule"}
			}
			groups = groups[:len(groups)-1]

		case css.QualifiedRuleGrammar:
			selector = append(selector, splitSelectors(data, parser.Values())...)

		case css.BeginRulesetGrammar:
			selector = append(selector, splitSelectors(data, parser.Values())...)
			rule = &Rule{Selectors: selector}
			selector = nil
			appendItem(Item{Rule: rule})

		case css.EndRulesetGrammar:
			if rule == nil {
				return nil, &ParseError{Msg: "unexpected end of ruleset"}
			}
			rule = nil

		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			decl := Declaration{Property: string(data)}
			if v, ok := sourceValue(src, start, parser.Offset()); ok {
				decl.Value = v
			} else {
				decl.Value = joinTokens(parser.Values())
			}
			if gt == css.DeclarationGrammar {
				decl.Property = strings.ToLower(decl.Property)
			}

			switch {
			case rule != nil:
				rule.Declarations = append(rule.Declarations, decl)
			case len(groups) > 0:
				top := groups[len(groups)-1]
				top.Declarations = append(top.Declarations, decl)
			default:
				return nil, &ParseError{Msg: fmt.Sprintf("declaration %q outside of a rule", decl.Property)}
			}

		case css.TokenGrammar:
			if tok := strings.TrimSpace(string(data)); tok != "" && tok != ";" && tok != "<!--" && tok != "-->" {
				return nil, &ParseError{Msg: fmt.Sprintf("unexpected token %q", tok)}
			}
		}
	}
}

// atRuleName turns "@Media" into "media"
func atRuleName(data []byte) string {
	return strings.ToLower(strings.TrimPrefix(string(data), "@"))
}

// joinTokens renders tokens back to text with whitespace collapsed
func joinTokens(tokens []css.Token) string {
	var sb strings.Builder
	for _, t := range tokens {
		if t.TokenType == css.WhitespaceToken {
			sb.WriteByte(' ')
			continue
		}
		sb.Write(t.Data)
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

// splitSelectors extracts selector strings from token data. Commas inside
// parentheses, brackets or strings do not separate selectors.
func splitSelectors(data []byte, values []css.Token) []string {
	var sb strings.Builder
	if d := string(data); d != "{" && d != "," {
		sb.WriteString(d)
	}
	for _, v := range values {
		if v.TokenType == css.WhitespaceToken {
			sb.WriteByte(' ')
			continue
		}
		sb.Write(v.Data)
	}

	var (
		selectors []string
		quote     byte
		depth     int
	)
	list := sb.String()
	from := 0
	flush := func(to int) {
		if s := strings.Join(strings.Fields(list[from:to]), " "); s != "" {
			selectors = append(selectors, s)
		}
		from = to + 1
	}
	for i := 0; i < len(list); i++ {
		c := list[i]
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
		case '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				flush(i)
			}
		}
	}
	flush(len(list))
	return selectors
}

// sourceValue returns the value of the declaration written in src[start:end]:
// the text after its first colon, up to the terminating ';' or '}', with
// comments dropped and runs of whitespace outside strings collapsed.
// The tokenizer drops whitespace around commas and before '!', so values
// are read from the source to keep them as written.
func sourceValue(src string, start, end int) (string, bool) {
	if start < 0 || end > len(src) || start >= end {
		return "", false
	}
	decl := src[start:end]

	colon := -1
	var quote byte
	for i := 0; i < len(decl) && colon < 0; i++ {
		c := decl[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '/' && i+1 < len(decl) && decl[i+1] == '*':
			n := strings.Index(decl[i+2:], "*/")
			if n < 0 {
				return "", false
			}
			i += n + 3
		case c == ':':
			colon = i
		}
	}
	if colon < 0 {
		return "", false
	}

	raw := decl[colon+1:]
	if n := len(raw); n > 0 && (raw[n-1] == ';' || raw[n-1] == '}') {
		raw = raw[:n-1]
	}

	var sb strings.Builder
	space := false
	quote = 0
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if quote != 0 {
			sb.WriteByte(c)
			if c == '\\' && i+1 < len(raw) {
				i++
				sb.WriteByte(raw[i])
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch {
		case c == '/' && i+1 < len(raw) && raw[i+1] == '*':
			n := strings.Index(raw[i+2:], "*/")
			if n < 0 {
				return "", false
			}
			i += n + 3
			continue
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f':
			space = true
			continue
		}
		if space && sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		space = false
		if c == '"' || c == '\'' {
			quote = c
		}
		sb.WriteByte(c)
	}
	return sb.String(), true
}

// checkBraces verifies that every block is closed exactly once, ignoring
// braces inside strings and comments.
func checkBraces(src string) error {
	var open [][2]int
	line, col := 1, 0
	var quote byte

	for i := 0; i < len(src); i++ {
		c := src[i]
		if c == '\n' {
			line, col = line+1, 0
		} else {
			col++
		}

		if quote != 0 {
			if c == '\\' && i+1 < len(src) && src[i+1] != '\n' {
				i++
				col++
			} else if c == quote {
				quote = 0
			}
			continue
		}

		switch c {
		case '"', '\'':
			quote = c
		case '/':
			if i+1 < len(src) && src[i+1] == '*' {
				end := strings.Index(src[i+2:], "*/")
				if end < 0 {
					// comment runs to EOF
					i = len(src)
					continue
				}
				comment := src[i : i+2+end+2]
				if n := strings.Count(comment, "\n"); n > 0 {
					line += n
					col = len(comment) - strings.LastIndex(comment, "\n") - 1
				} else {
					col += len(comment) - 1
				}
				i += len(comment) - 1
			}
		case '{':
			open = append(open, [2]int{line, col})
		case '}':
			if len(open) == 0 {
				return &ParseError{Line: line, Column: col, Msg: "unexpected '}'"}
			}
			open = open[:len(open)-1]
		}
	}

	if len(open) > 0 {
		pos := open[len(open)-1]
		return &ParseError{Line: pos[0], Column: pos[1], Msg: "unclosed '{'"}
	}
	return nil
}
