// Package styletest asserts on the CSS that styled components inject.
//
// A Matcher reads the stylesheet back out of a style engine, parses it,
// finds the rules generated for a rendered component and compares one
// property against an expected value:
//
//	m := styletest.MustNew(styling.Master, nil, nil)
//	node := button.Render(vdom.Props{"$primary": true})
//	styletest.AssertStyleRule(t, m, node, "color", "white")
//	styletest.AssertStyleRule(t, m, node, "color", "green", styletest.Media("(min-width: 100px)"))
//	styletest.AssertStyleRule(t, m, node, "opacity", regexp.MustCompile(`^0\.\d+$`), styletest.WithModifier(":hover"))
package styletest

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Option scopes a single ToHaveStyleRule call.
type Option func(*callOptions)

type callOptions struct {
	modifier *Modifier
}

// WithModifier scopes the lookup to a selector such as ":hover", "&:hover"
// or "> span". A value starting with "@" is read as an at-rule, e.g.
// "@media (min-width: 100px)".
func WithModifier(modifier string) Option {
	return func(o *callOptions) {
		o.modifier = ParseModifier(modifier)
	}
}

// Media scopes the lookup to rules inside @media query.
//
// Rules outside any at-rule still count and rules inside the query
// override them, so a property declared only on the unwrapped rule passes
// under Media too. To check a property only the query sets, also assert
// it is absent without Media.
func Media(query string) Option {
	return AtRule("media", query)
}

// Supports scopes the lookup to rules inside @supports condition.
func Supports(condition string) Option {
	return AtRule("supports", condition)
}

// AtRule scopes the lookup to rules inside the named grouping at-rule.
// As with Media, unwrapped rules contribute the values the at-rule does
// not override.
func AtRule(name, prelude string) Option {
	return func(o *callOptions) {
		o.modifier = &Modifier{
			Kind:  ModifierAtRule,
			Name:  strings.ToLower(strings.TrimPrefix(name, "@")),
			Value: strings.TrimSpace(prelude),
		}
	}
}

// Result is the outcome of a ToHaveStyleRule call.
type Result struct {
	Pass bool

	msg *lazyMessage
}

// Message explains the result. It is built on first use and reused after.
func (r Result) Message() string {
	if r.msg == nil {
		return ""
	}
	return r.msg.get()
}

type lazyMessage struct {
	once  sync.Once
	build func() string
	text  string
}

func newLazyMessage(build func() string) *lazyMessage {
	return &lazyMessage{build: build}
}

func (l *lazyMessage) get() string {
	l.once.Do(func() {
		l.text = l.build()
		l.build = nil
	})
	return l.text
}

// Matcher checks rendered components against the styles their engine
// generated.
type Matcher struct {
	adapter   *RegistryAdapter
	extractor *Extractor
	locator   *Locator
	printer   printer
	log       *zap.Logger
}

// New binds a matcher to engine. A nil config selects DefaultConfig;
// a nil logger selects the logger described by the config.
func New(engine any, cfg *Config, log *zap.Logger) (*Matcher, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	applyDefaults(cfg)
	if log == nil {
		log = cfg.Logger()
	}

	mode, err := cfg.ParsedMode()
	if err != nil {
		return nil, fmt.Errorf("styletest: %w", err)
	}

	adapter, err := Bind(engine, mode, log)
	if err != nil {
		return nil, err
	}

	return &Matcher{
		adapter:   adapter,
		extractor: NewExtractor(cfg.MarkerPrefix, log),
		locator:   NewLocator(log),
		printer:   printer{color: cfg.Color},
		log:       log.Named("matcher"),
	}, nil
}

// MustNew is like New but panics when the engine cannot be bound.
func MustNew(engine any, cfg *Config, log *zap.Logger) *Matcher {
	m, err := New(engine, cfg, log)
	if err != nil {
		panic(err)
	}
	return m
}

// Adapter returns the registry adapter the matcher reads through.
func (m *Matcher) Adapter() *RegistryAdapter {
	return m.adapter
}

// Reset clears the engine's names and rules. Call it between tests that
// share an engine.
func (m *Matcher) Reset() {
	m.adapter.Reset()
}

// ToHaveStyleRule reports whether the rules generated for received declare
// property with a value matching expected. Expected is a string for exact
// matches or a *regexp.Regexp for patterns.
//
// Received is a *vdom.VNode, a vdom.VNode, a ClassNamer, a *html.Node or
// rendered HTML markup. A value of any other type fails the assertion.
//
// The returned error is non-nil only when the injected CSS cannot be parsed
// (a *ParseError); mismatches are reported through Result.
func (m *Matcher) ToHaveStyleRule(received any, property string, expected any, opts ...Option) (Result, error) {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}
	property = normalizeProperty(property)

	classes, err := classNames(received)
	if err != nil {
		var unsupported *UnsupportedError
		if errors.As(err, &unsupported) {
			m.log.Debug("Unsupported received value", zap.String("type", unsupported.Type))
			return Result{Pass: false, msg: newLazyMessage(func() string {
				return m.printer.unsupported(property, err)
			})}, nil
		}
		return Result{}, fmt.Errorf("styletest: %w", err)
	}
	hashes := intersect(classes, m.adapter.ListHashes())

	sheet, err := m.extractor.Extract(m.adapter.Read())
	if err != nil {
		return Result{}, fmt.Errorf("styletest: read injected styles: %w", err)
	}

	decls := m.locator.FindDeclarations(sheet, hashes, o.modifier)
	found, ok := decls[property]

	pass := false
	if ok {
		var recovered any
		pass, recovered = compare(found, expected)
		if recovered != nil {
			m.log.Debug("Comparison panicked", zap.String("property", property), zap.Any("panic", recovered))
		}
	}

	m.log.Debug("Checked style rule",
		zap.String("property", property),
		zap.Strings("hashes", hashes),
		zap.Bool("found", ok),
		zap.Bool("pass", pass))

	modifier := o.modifier
	return Result{Pass: pass, msg: newLazyMessage(func() string {
		if pass {
			return m.printer.matched(property, found, modifier)
		}
		return m.printer.message(property, expected, found, ok, modifier)
	})}, nil
}

// normalizeProperty lowercases property names, leaving custom properties as written
func normalizeProperty(property string) string {
	property = strings.TrimSpace(property)
	if strings.HasPrefix(property, "--") {
		return property
	}
	return strings.ToLower(property)
}

// AssertStyleRule asserts that received has a style rule declaring property
// with a value matching expected. Unparseable styles stop the test.
func AssertStyleRule(t require.TestingT, m *Matcher, received any, property string, expected any, opts ...Option) bool {
	if h, ok := t.(interface{ Helper() }); ok {
		h.Helper()
	}

	res, err := m.ToHaveStyleRule(received, property, expected, opts...)
	require.NoError(t, err)
	if !res.Pass {
		return assert.Fail(t, res.Message())
	}
	return true
}

// AssertNoStyleRule asserts that received has no style rule declaring
// property with a value matching expected.
func AssertNoStyleRule(t require.TestingT, m *Matcher, received any, property string, expected any, opts ...Option) bool {
	if h, ok := t.(interface{ Helper() }); ok {
		h.Helper()
	}

	res, err := m.ToHaveStyleRule(received, property, expected, opts...)
	require.NoError(t, err)
	if res.Pass {
		return assert.Fail(t, res.Message())
	}
	return true
}
