package styletest

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	htmlrender "github.com/recera/vango-styled/pkg/renderer/html"
	"github.com/recera/vango-styled/pkg/styling"
	"github.com/recera/vango-styled/pkg/vango/vdom"
)

const mediaCSS = ".a1 { color: blue; } @media (min-width: 100px) { .a1 { color: green; } }"

func newTestMatcher(t *testing.T, css string) (*Matcher, *fakeEngine) {
	t.Helper()
	engine := newFakeEngine(css, map[string][]string{"vg-a": {"a1"}})
	m, err := New(engine, &Config{Mode: "dom"}, zap.NewNop())
	require.NoError(t, err)
	return m, engine
}

func TestToHaveStyleRule_MediaScenario(t *testing.T) {
	m, _ := newTestMatcher(t, mediaCSS)
	component := ClassList{"vg-a", "a1"}

	res, err := m.ToHaveStyleRule(component, "color", "green", Media("(min-width: 100px)"))
	require.NoError(t, err)
	assert.True(t, res.Pass, res.Message())

	res, err = m.ToHaveStyleRule(component, "color", "blue", Media("(min-width: 100px)"))
	require.NoError(t, err)
	assert.False(t, res.Pass)
	assert.Contains(t, res.Message(), "Value mismatch for property 'color'")
	assert.Contains(t, res.Message(), "color: blue")
	assert.Contains(t, res.Message(), "color: green")
	assert.NotContains(t, res.Message(), "not found")

	res, err = m.ToHaveStyleRule(component, "color", "blue")
	require.NoError(t, err)
	assert.True(t, res.Pass, res.Message())
}

func TestToHaveStyleRule_NotFound(t *testing.T) {
	m, _ := newTestMatcher(t, mediaCSS)

	res, err := m.ToHaveStyleRule(ClassList{"a1"}, "margin", "0")
	require.NoError(t, err)
	assert.False(t, res.Pass)

	msg := res.Message()
	assert.Contains(t, msg, "Property 'margin' not found")
	assert.NotContains(t, msg, "mismatch")
	assert.Equal(t, "Property 'margin' not found in style rules\n\nExpected\n  margin: 0\nReceived:\n  margin: <absent>", msg)
}

func TestToHaveStyleRule_Pattern(t *testing.T) {
	m, _ := newTestMatcher(t, ".a1 { width: 10px; height: 10em; }")
	px := regexp.MustCompile(`^\d+px$`)

	res, err := m.ToHaveStyleRule(ClassList{"a1"}, "width", px)
	require.NoError(t, err)
	assert.True(t, res.Pass)

	res, err = m.ToHaveStyleRule(ClassList{"a1"}, "height", px)
	require.NoError(t, err)
	assert.False(t, res.Pass)
	assert.Contains(t, res.Message(), `height: /^\d+px$/`)
}

func TestToHaveStyleRule_HoverScoping(t *testing.T) {
	m, _ := newTestMatcher(t, ".a1 { color: blue; } .a1:hover { color: red; }")
	component := ClassList{"a1"}

	for _, mod := range []string{":hover", "&:hover"} {
		res, err := m.ToHaveStyleRule(component, "color", "red", WithModifier(mod))
		require.NoError(t, err)
		assert.True(t, res.Pass, mod)
	}

	res, err := m.ToHaveStyleRule(component, "color", "red")
	require.NoError(t, err)
	assert.False(t, res.Pass)
}

func TestToHaveStyleRule_LastOptionWins(t *testing.T) {
	m, _ := newTestMatcher(t, mediaCSS)

	res, err := m.ToHaveStyleRule(ClassList{"a1"}, "color", "green", WithModifier(":hover"), Media("(min-width: 100px)"))
	require.NoError(t, err)
	assert.True(t, res.Pass)
}

func TestToHaveStyleRule_PropertyCase(t *testing.T) {
	m, _ := newTestMatcher(t, ".a1 { Background-Color: red; --Gap: 4px; }")

	res, err := m.ToHaveStyleRule(ClassList{"a1"}, "BACKGROUND-COLOR", "red")
	require.NoError(t, err)
	assert.True(t, res.Pass)

	res, err = m.ToHaveStyleRule(ClassList{"a1"}, "--Gap", "4px")
	require.NoError(t, err)
	assert.True(t, res.Pass)
}

func TestToHaveStyleRule_IgnoresUnknownClasses(t *testing.T) {
	m, _ := newTestMatcher(t, ".a1 { color: blue; } .user { color: red; }")

	res, err := m.ToHaveStyleRule(ClassList{"a1", "user"}, "color", "blue")
	require.NoError(t, err)
	assert.True(t, res.Pass)
}

func TestToHaveStyleRule_Unsupported(t *testing.T) {
	m, _ := newTestMatcher(t, mediaCSS)

	res, err := m.ToHaveStyleRule(42, "color", "blue")
	require.NoError(t, err)
	assert.False(t, res.Pass)
	assert.Contains(t, res.Message(), "not found")
	assert.Contains(t, res.Message(), "int")

	var nilNode *vdom.VNode
	res, err = m.ToHaveStyleRule(nilNode, "color", "blue")
	require.NoError(t, err)
	assert.False(t, res.Pass)
}

func TestToHaveStyleRule_ParseError(t *testing.T) {
	m, _ := newTestMatcher(t, ".a1 { color: blue;")

	_, err := m.ToHaveStyleRule(ClassList{"a1"}, "color", "blue")
	require.Error(t, err)

	var perr *ParseError
	assert.True(t, errors.As(err, &perr))
}

func TestToHaveStyleRule_ComparisonPanic(t *testing.T) {
	m, _ := newTestMatcher(t, mediaCSS)

	var pattern *regexp.Regexp
	assert.NotPanics(t, func() {
		res, err := m.ToHaveStyleRule(ClassList{"a1"}, "color", pattern)
		require.NoError(t, err)
		assert.False(t, res.Pass)
		assert.Contains(t, res.Message(), "Value mismatch")
	})
}

func TestToHaveStyleRule_DoesNotMutateRegistry(t *testing.T) {
	m, engine := newTestMatcher(t, mediaCSS)

	_, err := m.ToHaveStyleRule(ClassList{"a1"}, "color", "blue")
	require.NoError(t, err)
	assert.Equal(t, mediaCSS, engine.text)
	assert.Zero(t, engine.clearedNames)
	assert.Zero(t, engine.clearedTag)
}

func TestResult_MessageIsLazy(t *testing.T) {
	calls := 0
	res := Result{msg: newLazyMessage(func() string {
		calls++
		return fmt.Sprintf("built %d", calls)
	})}
	assert.Zero(t, calls)

	assert.Equal(t, "built 1", res.Message())
	assert.Equal(t, "built 1", res.Message())
	assert.Equal(t, 1, calls)

	assert.Empty(t, Result{}.Message())
}

func TestNew_ConfigError(t *testing.T) {
	_, err := New(textOnlyEngine{}, nil, zap.NewNop())

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Panics(t, func() { MustNew(textOnlyEngine{}, nil, zap.NewNop()) })
}

func TestNew_BadMode(t *testing.T) {
	_, err := New(newFakeEngine("", nil), &Config{Mode: "jsdom"}, zap.NewNop())
	assert.Error(t, err)
}

func TestMessage_Color(t *testing.T) {
	p := printer{color: false}
	plain := p.message("color", "blue", "green", true, nil)
	assert.Equal(t, "Value mismatch for property 'color'\n\nExpected\n  color: blue\nReceived:\n  color: green", plain)

	withModifier := p.message("color", "blue", "", false, ParseModifier(":hover"))
	assert.True(t, strings.HasPrefix(withModifier, "Property 'color' not found in style rules (modifier :hover)"))
}

// The styling engine end to end: render, inject, read back.

func TestStylingEngine_MediaScenario(t *testing.T) {
	sheet := styling.NewSheet()
	box := styling.NewComponent(sheet, "div", `
		color: blue;
		@media (min-width: 100px) {
			color: green;
		}
	`)
	node := box.Render(nil)

	m := MustNew(sheet, &Config{Mode: "server"}, zap.NewNop())

	AssertStyleRule(t, m, node, "color", "green", Media("(min-width: 100px)"))
	AssertStyleRule(t, m, node, "color", "blue")
	AssertNoStyleRule(t, m, node, "color", "blue", Media("(min-width: 100px)"))

	dom := MustNew(sheet, &Config{Mode: "dom"}, zap.NewNop())
	AssertStyleRule(t, dom, *node, "color", "green", WithModifier("@media (min-width: 100px)"))
}

func TestStylingEngine_Variants(t *testing.T) {
	sheet := styling.NewSheet()
	button := styling.NewComponent(sheet, "button",
		"padding: 4px 8px;",
		styling.Interpolation(func(p vdom.Props) string {
			if p["$primary"] == true {
				return "color: white; &:hover { opacity: 0.8; }"
			}
			return "color: black;"
		}),
	)
	primary := button.Render(vdom.Props{"$primary": true})
	plain := button.Render(nil)

	m := MustNew(sheet, &Config{Mode: "server"}, zap.NewNop())

	AssertStyleRule(t, m, primary, "color", "white")
	AssertStyleRule(t, m, primary, "opacity", regexp.MustCompile(`^0\.\d+$`), WithModifier(":hover"))
	AssertStyleRule(t, m, plain, "color", "black")
	AssertStyleRule(t, m, plain, "padding", "4px 8px")
	AssertNoStyleRule(t, m, plain, "opacity", "0.8", WithModifier(":hover"))
}

func TestStylingEngine_RenderedMarkup(t *testing.T) {
	sheet := styling.NewSheet()
	link := styling.NewComponent(sheet, "a", "text-decoration: none; & > span { margin-left: 2px; }")
	node := link.Render(vdom.Props{"href": "/home"}, vdom.NewElement("span", nil, vdom.NewText("Home")))

	markup, err := htmlrender.RenderToString(node)
	require.NoError(t, err)

	m := MustNew(sheet, &Config{Mode: "server"}, zap.NewNop())
	AssertStyleRule(t, m, markup, "text-decoration", "none")
	AssertStyleRule(t, m, markup, "margin-left", "2px", WithModifier("> span"))

	doc, err := html.Parse(strings.NewReader(markup))
	require.NoError(t, err)
	AssertStyleRule(t, m, doc, "text-decoration", "none")
}

func TestStylingEngine_ValuesAsWritten(t *testing.T) {
	sheet := styling.NewSheet()
	field := styling.NewComponent(sheet, "input", `
		box-shadow: 0 0 0 3px rgba(59, 130, 246, 0.5);
		font-family: "Inter", sans-serif;
		margin: 0 auto !important;
		&:not(.a, .b) { color: red; }
	`)
	node := field.Render(nil)

	m := MustNew(sheet, &Config{Mode: "server"}, zap.NewNop())

	AssertStyleRule(t, m, node, "box-shadow", "0 0 0 3px rgba(59, 130, 246, 0.5)")
	AssertStyleRule(t, m, node, "font-family", `"Inter", sans-serif`)
	AssertStyleRule(t, m, node, "margin", "0 auto !important")
	AssertStyleRule(t, m, node, "color", "red", WithModifier("&:not(.a, .b)"))
	AssertNoStyleRule(t, m, node, "color", "red")
}

func TestStylingEngine_Reset(t *testing.T) {
	sheet := styling.NewSheet()
	box := styling.NewComponent(sheet, "div", "color: blue;")
	node := box.Render(nil)

	m := MustNew(sheet, nil, zap.NewNop())
	require.NotEmpty(t, m.Adapter().ListHashes())
	AssertStyleRule(t, m, node, "color", "blue")

	m.Reset()

	assert.Empty(t, m.Adapter().ListHashes())
	assert.Empty(t, m.Adapter().Read())

	res, err := m.ToHaveStyleRule(node, "color", "blue")
	require.NoError(t, err)
	assert.False(t, res.Pass)
	assert.Contains(t, res.Message(), "not found")

	// Rendering again injects the rules again.
	node = box.Render(nil)
	AssertStyleRule(t, m, node, "color", "blue")
}

// recordingT captures assertion failures without failing the test.
type recordingT struct {
	errors []string
	failed bool
}

func (r *recordingT) Errorf(format string, args ...any) {
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}

func (r *recordingT) FailNow() {
	r.failed = true
}

func TestAssertStyleRule_Failure(t *testing.T) {
	m, _ := newTestMatcher(t, mediaCSS)

	rec := &recordingT{}
	ok := AssertStyleRule(rec, m, ClassList{"a1"}, "color", "red")
	assert.False(t, ok)
	require.Len(t, rec.errors, 1)
	assert.Contains(t, rec.errors[0], "Value mismatch for property 'color'")
	assert.False(t, rec.failed)

	rec = &recordingT{}
	assert.True(t, AssertNoStyleRule(rec, m, ClassList{"a1"}, "color", "red"))
	assert.Empty(t, rec.errors)
}
