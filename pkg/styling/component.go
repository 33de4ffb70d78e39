package styling

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"github.com/recera/vango-styled/pkg/vango/vdom"
)

// Interpolation computes part of a component's CSS from its props
type Interpolation func(props vdom.Props) string

// Component is a styled element definition.
// Its id is the primary hash; every distinct CSS permutation produced by
// its interpolations is registered in the sheet under a variant name.
type Component struct {
	tag         string
	id          string
	displayName string
	parts       []any
	sheet       *Sheet
}

var (
	idMu     sync.Mutex
	idCounts = make(map[string]int)
)

// Styled defines a component registered in the process-wide sheet.
// Parts are CSS strings, Interpolation funcs, func(vdom.Props) string,
// or any value printable with fmt.
func Styled(tag string, parts ...any) *Component {
	return NewComponent(Master, tag, parts...)
}

// NewComponent defines a component registered in the given sheet
func NewComponent(sheet *Sheet, tag string, parts ...any) *Component {
	if sheet == nil {
		sheet = Master
	}
	return &Component{
		tag:         tag,
		id:          generateComponentID(tag),
		displayName: tag,
		parts:       parts,
		sheet:       sheet,
	}
}

// generateComponentID derives a stable id from the definition order of
// components sharing a display name
func generateComponentID(displayName string) string {
	idMu.Lock()
	n := idCounts[displayName]
	idCounts[displayName]++
	idMu.Unlock()

	h := sha256.Sum256([]byte(fmt.Sprintf("%s#%d", displayName, n)))
	return "vg-" + hex.EncodeToString(h[:])[:6]
}

// ID returns the component's primary hash
func (c *Component) ID() string {
	return c.id
}

// Tag returns the element tag the component renders
func (c *Component) Tag() string {
	return c.tag
}

// Sheet returns the sheet the component injects into
func (c *Component) Sheet() *Sheet {
	return c.sheet
}

// CSS evaluates the component's CSS body for the given props
func (c *Component) CSS(props vdom.Props) string {
	var b strings.Builder
	for _, part := range c.parts {
		switch p := part.(type) {
		case string:
			b.WriteString(p)
		case Interpolation:
			b.WriteString(p(props))
		case func(vdom.Props) string:
			b.WriteString(p(props))
		case fmt.Stringer:
			b.WriteString(p.String())
		case nil:
		default:
			fmt.Fprint(&b, p)
		}
	}
	return b.String()
}

// nameFor returns the variant name for an evaluated CSS body
func (c *Component) nameFor(css string) string {
	h := sha256.Sum256([]byte(c.id + css))
	return "_" + hex.EncodeToString(h[:])[:8]
}

// Render evaluates the component for props, injects the resulting rules
// once per variant and returns the element carrying both class names.
// Props prefixed with "$" are transient: visible to interpolations but
// not rendered as attributes.
func (c *Component) Render(props vdom.Props, children ...*vdom.VNode) *vdom.VNode {
	css := c.CSS(props)
	name := c.nameFor(css)

	c.sheet.InsertRulesOnce(c.id, name, func() []string {
		return Flatten("."+name, css)
	})

	attrs := make(vdom.Props, len(props)+1)
	classes := []string{c.id, name}
	for k, v := range props {
		switch {
		case strings.HasPrefix(k, "$"):
		case k == "class":
			if extra, ok := v.(string); ok && extra != "" {
				classes = append(classes, extra)
			}
		default:
			attrs[k] = v
		}
	}
	attrs["class"] = strings.Join(classes, " ")

	return vdom.NewElement(c.tag, attrs, children...)
}

// Class returns the variant name the component would use for props,
// without injecting anything
func (c *Component) Class(props vdom.Props) string {
	if c == nil {
		return ""
	}
	return c.nameFor(c.CSS(props))
}
