package styletest

import (
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/recera/vango-styled/pkg/vango/vdom"
)

// ClassNamer is implemented by rendered values that know their class tokens.
type ClassNamer interface {
	ClassNames() []string
}

// ClassList is a ready-made set of class tokens.
type ClassList []string

// ClassNames returns the tokens.
func (c ClassList) ClassNames() []string {
	return c
}

// UnsupportedError reports a received value the matcher cannot read
// class names from.
type UnsupportedError struct {
	Type string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("cannot read class names from a value of type %s", e.Type)
}

// classed matches any element carrying a class attribute
var classed = mustSel("[class]")

func mustSel(selector string) cascadia.Sel {
	group, err := cascadia.ParseGroupWithPseudoElements(selector)
	if err != nil || len(group) != 1 {
		panic(fmt.Sprintf("styletest: bad selector %q: %v", selector, err))
	}
	return group[0]
}

// classNames returns the class tokens carried by the root element of received
func classNames(received any) ([]string, error) {
	switch r := received.(type) {
	case *vdom.VNode:
		if r == nil {
			return nil, &UnsupportedError{Type: "nil *vdom.VNode"}
		}
		return r.ClassNames(), nil
	case vdom.VNode:
		return r.ClassNames(), nil
	case ClassNamer:
		return r.ClassNames(), nil
	case *html.Node:
		if r == nil {
			return nil, &UnsupportedError{Type: "nil *html.Node"}
		}
		return htmlClassNames(r), nil
	case string:
		doc, err := html.Parse(strings.NewReader(r))
		if err != nil {
			return nil, fmt.Errorf("parse rendered markup: %w", err)
		}
		return htmlClassNames(doc), nil
	}
	return nil, &UnsupportedError{Type: fmt.Sprintf("%T", received)}
}

// htmlClassNames returns the class tokens of n, or of the first element
// below it carrying a class attribute.
func htmlClassNames(n *html.Node) []string {
	el := n
	if n.Type != html.ElementNode || !classed.Match(n) {
		found := cascadia.QueryAll(n, classed)
		if len(found) == 0 {
			return nil
		}
		el = found[0]
	}
	for _, a := range el.Attr {
		if a.Key == "class" {
			return strings.Fields(a.Val)
		}
	}
	return nil
}

// intersect keeps the tokens of classes that are known hashes, in class order
func intersect(classes, hashes []string) []string {
	known := make(map[string]bool, len(hashes))
	for _, h := range hashes {
		known[h] = true
	}
	var out []string
	seen := make(map[string]bool)
	for _, c := range classes {
		if known[c] && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}
