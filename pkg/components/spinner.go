package components

import (
	"github.com/recera/vango-styled/pkg/styling"
	"github.com/recera/vango-styled/pkg/vango/vdom"
)

// SpinnerProps defines the properties for the Spinner component
type SpinnerProps struct {
	Size  string // "small", "medium", "large"
	Color string // CSS color value
	Label string // Accessible label, defaults to "Loading"
	Class string
}

var spinnerSizes = map[string]string{
	"small":  "16px",
	"medium": "24px",
	"large":  "48px",
}

func newSpinner(sheet *styling.Sheet) *styling.Component {
	return styling.NewComponent(sheet, "span", `
		display: inline-block;
		border-radius: 50%;
		border-style: solid;
		border-right-color: transparent;
		animation: vg-spin 0.75s linear infinite;
		@keyframes vg-spin { to { transform: rotate(360deg); } }
		@media (prefers-reduced-motion: reduce) { animation-duration: 2s; }
	`,
		func(p vdom.Props) string {
			size, _ := p["$size"].(string)
			px := spinnerSizes[size]
			width := "2px"
			if size == "large" {
				width = "4px"
			}
			return "width: " + px + "; height: " + px + "; border-width: " + width + ";"
		},
		func(p vdom.Props) string {
			color, _ := p["$color"].(string)
			return "border-color: " + color + "; border-right-color: transparent;"
		},
	)
}

// Spinner renders a styled loading spinner into the process-wide sheet
func Spinner(props SpinnerProps) *vdom.VNode {
	return defaultKit().Spinner(props)
}

// Spinner renders a styled loading spinner into the kit's sheet
func (k *Kit) Spinner(props SpinnerProps) *vdom.VNode {
	// Default values
	if _, ok := spinnerSizes[props.Size]; !ok {
		props.Size = "medium"
	}
	if props.Color == "" {
		props.Color = "#3b82f6"
	}
	if props.Label == "" {
		props.Label = "Loading"
	}

	attrs := vdom.Props{
		"$size":      props.Size,
		"$color":     props.Color,
		"role":       "status",
		"aria-label": props.Label,
	}
	if props.Class != "" {
		attrs["class"] = props.Class
	}
	return k.spinner.Render(attrs)
}
