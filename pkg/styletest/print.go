package styletest

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// absent is printed in place of a received value that does not exist
const absent = "<absent>"

// Style definitions
var (
	successColor = lipgloss.Color("#10b981") // Green
	errorColor   = lipgloss.Color("#ef4444") // Red

	headlineStyle = lipgloss.NewStyle().Bold(true)
	expectedStyle = lipgloss.NewStyle().Foreground(successColor)
	receivedStyle = lipgloss.NewStyle().Foreground(errorColor)
)

// printer formats failure messages, optionally with colour
type printer struct {
	color bool
}

func (p printer) style(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

// message builds the explanation for a ToHaveStyleRule result.
func (p printer) message(property string, expected any, found string, ok bool, modifier *Modifier) string {
	var b strings.Builder

	headline := fmt.Sprintf("Value mismatch for property '%s'", property)
	if !ok {
		headline = fmt.Sprintf("Property '%s' not found in style rules", property)
		found = absent
	}
	if modifier != nil {
		headline += fmt.Sprintf(" (modifier %s)", modifier)
	}

	b.WriteString(p.style(headlineStyle, headline))
	b.WriteString("\n\nExpected\n  ")
	b.WriteString(p.style(expectedStyle, property+": "+formatExpected(expected)))
	b.WriteString("\nReceived:\n  ")
	b.WriteString(p.style(receivedStyle, property+": "+found))
	return b.String()
}

// matched explains a passing result, shown when the assertion is negated
func (p printer) matched(property, found string, modifier *Modifier) string {
	headline := fmt.Sprintf("Expected property '%s' not to match", property)
	if modifier != nil {
		headline += fmt.Sprintf(" (modifier %s)", modifier)
	}
	return p.style(headlineStyle, headline) + "\n\nReceived:\n  " + p.style(receivedStyle, property+": "+found)
}

// unsupported explains a received value the matcher could not read
func (p printer) unsupported(property string, err error) string {
	return p.style(headlineStyle, fmt.Sprintf("Property '%s' not found in style rules", property)) +
		"\n\n" + p.style(receivedStyle, err.Error())
}
