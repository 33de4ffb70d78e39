// Package cssast holds the parsed form of an injected stylesheet: rules,
// declarations and the at-rule groups wrapping them, in source order.
package cssast

import (
	"fmt"
	"io"
	"strings"
)

// Declaration is a single property/value pair in source order.
type Declaration struct {
	Property string // Lowercased property name, custom properties kept as written
	Value    string // Value text with whitespace collapsed
}

// String returns the declaration as "property: value".
func (d Declaration) String() string {
	return d.Property + ": " + d.Value
}

// Rule is a ruleset: a selector list and its declaration block.
type Rule struct {
	Selectors    []string // One entry per comma-separated selector, whitespace collapsed
	Declarations []Declaration
}

// AtRule is an @-rule. Grouping rules (@media, @supports) carry nested
// Items; descriptor rules (@font-face, @page) carry Declarations;
// statement rules (@import) carry neither.
type AtRule struct {
	Name         string // Lowercased name without "@", e.g. "media"
	Prelude      string // Text between the name and the block, whitespace collapsed
	Items        []Item
	Declarations []Declaration
}

// Item is a single node of a stylesheet.
// Exactly one of Rule or AtRule is non-nil.
type Item struct {
	Rule   *Rule
	AtRule *AtRule
}

// Stylesheet is a parsed stylesheet.
type Stylesheet struct {
	Items []Item // Top-level items in source order
}

// Walk calls fn for every rule in document order together with the chain
// of at-rules enclosing it, outermost first. Walking stops when fn returns false.
func (s *Stylesheet) Walk(fn func(rule *Rule, groups []*AtRule) bool) {
	if s == nil {
		return
	}
	walkItems(s.Items, nil, fn)
}

func walkItems(items []Item, groups []*AtRule, fn func(*Rule, []*AtRule) bool) bool {
	for _, item := range items {
		switch {
		case item.Rule != nil:
			if !fn(item.Rule, groups) {
				return false
			}
		case item.AtRule != nil && len(item.AtRule.Items) > 0:
			inner := append(groups[:len(groups):len(groups)], item.AtRule)
			if !walkItems(item.AtRule.Items, inner, fn) {
				return false
			}
		}
	}
	return true
}

// RuleCount returns the number of rules at any depth.
func (s *Stylesheet) RuleCount() int {
	n := 0
	s.Walk(func(*Rule, []*AtRule) bool {
		n++
		return true
	})
	return n
}

// WriteTo writes the stylesheet to w in source order, one rule per line,
// implementing io.WriterTo.
func (s *Stylesheet) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, item := range s.Items {
		n, err := writeItem(w, item, "")
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// String returns the CSS text of the stylesheet.
func (s *Stylesheet) String() string {
	var sb strings.Builder
	s.WriteTo(&sb) //nolint:errcheck
	return sb.String()
}

func writeItem(w io.Writer, item Item, indent string) (int, error) {
	switch {
	case item.Rule != nil:
		return fmt.Fprintf(w, "%s%s { %s }\n", indent,
			strings.Join(item.Rule.Selectors, ", "), joinDeclarations(item.Rule.Declarations))

	case item.AtRule != nil:
		at := item.AtRule
		head := "@" + at.Name
		if at.Prelude != "" {
			head += " " + at.Prelude
		}
		if len(at.Items) == 0 {
			if len(at.Declarations) == 0 {
				return fmt.Fprintf(w, "%s%s;\n", indent, head)
			}
			return fmt.Fprintf(w, "%s%s { %s }\n", indent, head, joinDeclarations(at.Declarations))
		}

		total, err := fmt.Fprintf(w, "%s%s {\n", indent, head)
		if err != nil {
			return total, err
		}
		for _, inner := range at.Items {
			n, err := writeItem(w, inner, indent+"  ")
			total += n
			if err != nil {
				return total, err
			}
		}
		n, err := fmt.Fprintf(w, "%s}\n", indent)
		return total + n, err
	}
	return 0, nil
}

func joinDeclarations(decls []Declaration) string {
	parts := make([]string, len(decls))
	for i, d := range decls {
		parts[i] = d.String() + ";"
	}
	return strings.Join(parts, " ")
}
