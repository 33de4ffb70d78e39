package vdom

import "strings"

// VKind represents the type of virtual node
type VKind uint8

const (
	// KindElement represents a DOM element node
	KindElement VKind = iota
	// KindText represents a text node
	KindText
	// KindFragment represents a fragment (multiple children without parent)
	KindFragment
)

// Props represents the properties/attributes of a VNode
type Props map[string]any

// VNode represents a rendered virtual node.
// Once created it should never be modified; styled components hand these
// to tests, which only read the class attribute back out of them.
type VNode struct {
	// Kind determines the type of this node
	Kind VKind

	// Tag is the element tag name (e.g., "div", "button")
	// Only used when Kind == KindElement
	Tag string

	// Props contains all attributes for this node, including "class"
	Props Props

	// Kids contains child nodes
	Kids []VNode

	// Text content (only used when Kind == KindText)
	Text string
}

// NewElement creates a new element VNode
func NewElement(tag string, props Props, children ...*VNode) *VNode {
	return &VNode{
		Kind:  KindElement,
		Tag:   tag,
		Props: props,
		Kids:  collect(children),
	}
}

// NewText creates a new text VNode
func NewText(text string) *VNode {
	return &VNode{
		Kind: KindText,
		Text: text,
	}
}

// NewFragment creates a new fragment VNode
func NewFragment(children ...*VNode) *VNode {
	return &VNode{
		Kind: KindFragment,
		Kids: collect(children),
	}
}

// collect converts child pointers to values, skipping nils
func collect(children []*VNode) []VNode {
	kids := make([]VNode, 0, len(children))
	for _, child := range children {
		if child != nil {
			kids = append(kids, *child)
		}
	}
	return kids
}

// IsElement returns true if this is an element node
func (v VNode) IsElement() bool {
	return v.Kind == KindElement
}

// IsText returns true if this is a text node
func (v VNode) IsText() bool {
	return v.Kind == KindText
}

// IsFragment returns true if this is a fragment node
func (v VNode) IsFragment() bool {
	return v.Kind == KindFragment
}

// Root returns the first element node in document order, descending
// through fragments. It returns nil for trees without elements.
func (v *VNode) Root() *VNode {
	if v == nil {
		return nil
	}
	if v.Kind == KindElement {
		return v
	}
	for i := range v.Kids {
		if el := v.Kids[i].Root(); el != nil {
			return el
		}
	}
	return nil
}

// Class returns the raw class attribute of this node
func (v VNode) Class() string {
	if v.Props == nil {
		return ""
	}
	switch c := v.Props["class"].(type) {
	case string:
		return c
	case []string:
		return strings.Join(c, " ")
	}
	return ""
}

// ClassNames returns the whitespace-separated class tokens of the root element
func (v *VNode) ClassNames() []string {
	el := v.Root()
	if el == nil {
		return nil
	}
	return strings.Fields(el.Class())
}

// Walk visits v and every descendant in document order until fn returns false
func (v *VNode) Walk(fn func(*VNode) bool) bool {
	if v == nil {
		return true
	}
	if !fn(v) {
		return false
	}
	for i := range v.Kids {
		if !v.Kids[i].Walk(fn) {
			return false
		}
	}
	return true
}
