package components

import (
	"github.com/recera/vango-styled/pkg/styling"
	"github.com/recera/vango-styled/pkg/vango/vdom"
)

// ButtonVariant defines the visual style of the button
type ButtonVariant string

const (
	ButtonPrimary   ButtonVariant = "primary"
	ButtonSecondary ButtonVariant = "secondary"
	ButtonDanger    ButtonVariant = "danger"
	ButtonSuccess   ButtonVariant = "success"
	ButtonGhost     ButtonVariant = "ghost"
)

// ButtonSize defines the size of the button
type ButtonSize string

const (
	ButtonSmall  ButtonSize = "small"
	ButtonMedium ButtonSize = "medium"
	ButtonLarge  ButtonSize = "large"
)

// ButtonProps defines the properties for the Button component
type ButtonProps struct {
	Text     string
	Variant  ButtonVariant
	Size     ButtonSize
	Disabled bool
	Loading  bool
	Block    bool // Full width below the mobile breakpoint
	Icon     *vdom.VNode
	Class    string
	ID       string
}

type palette struct {
	background string
	color      string
	hover      string
}

var buttonPalettes = map[ButtonVariant]palette{
	ButtonPrimary:   {background: "#3b82f6", color: "white", hover: "#2563eb"},
	ButtonSecondary: {background: "#64748b", color: "white", hover: "#475569"},
	ButtonDanger:    {background: "#ef4444", color: "white", hover: "#dc2626"},
	ButtonSuccess:   {background: "#10b981", color: "white", hover: "#059669"},
	ButtonGhost:     {background: "transparent", color: "#3b82f6", hover: "#eff6ff"},
}

var buttonPadding = map[ButtonSize]string{
	ButtonSmall:  "padding: 4px 8px; font-size: 0.875rem;",
	ButtonMedium: "padding: 8px 16px; font-size: 1rem;",
	ButtonLarge:  "padding: 12px 24px; font-size: 1.125rem;",
}

func newButton(sheet *styling.Sheet) *styling.Component {
	return styling.NewComponent(sheet, "button", `
		display: inline-flex;
		align-items: center;
		gap: 0.5rem;
		border: none;
		border-radius: 6px;
		cursor: pointer;
		transition: background-color 0.15s ease;
	`,
		styling.Interpolation(func(p vdom.Props) string {
			size, _ := p["$size"].(ButtonSize)
			return buttonPadding[size]
		}),
		styling.Interpolation(func(p vdom.Props) string {
			variant, _ := p["$variant"].(ButtonVariant)
			c := buttonPalettes[variant]
			return "background-color: " + c.background + "; color: " + c.color + ";" +
				"&:hover { background-color: " + c.hover + "; }"
		}),
		styling.Interpolation(func(p vdom.Props) string {
			if p["$disabled"] == true {
				return "opacity: 0.5; cursor: not-allowed; &:hover { background-color: inherit; }"
			}
			return ""
		}),
		styling.Interpolation(func(p vdom.Props) string {
			if p["$block"] == true {
				return "@media (max-width: 640px) { display: flex; width: 100%; }"
			}
			return ""
		}),
	)
}

// Button renders a styled button into the process-wide sheet
func Button(props ButtonProps) *vdom.VNode {
	return defaultKit().Button(props)
}

// Button renders a styled button into the kit's sheet
func (k *Kit) Button(props ButtonProps) *vdom.VNode {
	// Default values
	if props.Variant == "" {
		props.Variant = ButtonPrimary
	}
	if props.Size == "" {
		props.Size = ButtonMedium
	}
	disabled := props.Disabled || props.Loading

	attrs := vdom.Props{
		"$variant":  props.Variant,
		"$size":     props.Size,
		"$disabled": disabled,
		"$block":    props.Block,
		"type":      "button",
		"disabled":  disabled,
	}
	if props.ID != "" {
		attrs["id"] = props.ID
	}
	if props.Class != "" {
		attrs["class"] = props.Class
	}

	var children []*vdom.VNode
	if props.Loading {
		children = append(children, k.Spinner(SpinnerProps{Size: "small", Color: "currentColor"}))
	} else if props.Icon != nil {
		children = append(children, props.Icon)
	}
	if props.Text != "" {
		children = append(children, vdom.NewElement("span", nil, vdom.NewText(props.Text)))
	}

	return k.button.Render(attrs, children...)
}
