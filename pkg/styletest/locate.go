package styletest

import (
	"strings"

	"go.uber.org/zap"

	"github.com/recera/vango-styled/pkg/styletest/cssast"
)

// ModifierKind tells selector modifiers from at-rule modifiers.
type ModifierKind int

const (
	// ModifierSelector scopes the lookup to a pseudo class, pseudo element
	// or nested selector, e.g. ":hover", "&:hover" or "> span".
	ModifierSelector ModifierKind = iota + 1
	// ModifierAtRule scopes the lookup to a grouping at-rule such as
	// @media or @supports.
	ModifierAtRule
)

// Modifier narrows which rules of a component count.
type Modifier struct {
	Kind  ModifierKind
	Name  string // At-rule name without "@", e.g. "media"
	Value string // Selector, or the at-rule prelude
}

// ParseModifier turns "&:hover" into a selector modifier and
// "@media (min-width: 100px)" into an at-rule modifier.
// An empty string yields nil.
func ParseModifier(s string) *Modifier {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if strings.HasPrefix(s, "@") {
		name, prelude, _ := strings.Cut(s[1:], " ")
		return &Modifier{Kind: ModifierAtRule, Name: strings.ToLower(name), Value: strings.TrimSpace(prelude)}
	}
	return &Modifier{Kind: ModifierSelector, Value: s}
}

func (m *Modifier) String() string {
	if m == nil {
		return ""
	}
	if m.Kind == ModifierAtRule {
		return "@" + m.Name + " " + m.Value
	}
	return m.Value
}

// Locator finds the declarations that apply to a component instance.
type Locator struct {
	log *zap.Logger
}

// NewLocator creates a locator.
func NewLocator(log *zap.Logger) *Locator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Locator{log: log.Named("locator")}
}

var defaultLocator = NewLocator(nil)

// FindDeclarations merges the declarations of every rule targeting one of
// hashes under modifier. Later rules override earlier ones.
func FindDeclarations(sheet *cssast.Stylesheet, hashes []string, modifier *Modifier) map[string]string {
	return defaultLocator.FindDeclarations(sheet, hashes, modifier)
}

// FindDeclarationList is like FindDeclarations but keeps the properties in
// the order they first appear.
func FindDeclarationList(sheet *cssast.Stylesheet, hashes []string, modifier *Modifier) []cssast.Declaration {
	return defaultLocator.FindDeclarationList(sheet, hashes, modifier)
}

// FindDeclarations merges the declarations of every rule targeting one of
// hashes under modifier into property -> value. Rules are applied in
// document order and the last value written for a property wins.
// No match yields an empty map.
func (l *Locator) FindDeclarations(sheet *cssast.Stylesheet, hashes []string, modifier *Modifier) map[string]string {
	decls := make(map[string]string)
	for _, d := range l.FindDeclarationList(sheet, hashes, modifier) {
		decls[d.Property] = d.Value
	}
	return decls
}

// FindDeclarationList returns the merged declarations, one per property,
// in order of first appearance with the winning value.
func (l *Locator) FindDeclarationList(sheet *cssast.Stylesheet, hashes []string, modifier *Modifier) []cssast.Declaration {
	var (
		out   []cssast.Declaration
		index = make(map[string]int)
		rules int
	)
	if len(hashes) == 0 {
		return out
	}

	targets := targetSelectors(hashes, modifier)

	sheet.Walk(func(rule *cssast.Rule, groups []*cssast.AtRule) bool {
		if !inScope(groups, modifier) || !targets.matchAny(rule.Selectors) {
			return true
		}
		rules++
		for _, d := range rule.Declarations {
			if i, ok := index[d.Property]; ok {
				out[i].Value = d.Value
				continue
			}
			index[d.Property] = len(out)
			out = append(out, d)
		}
		return true
	})

	l.log.Debug("Located declarations",
		zap.Strings("hashes", hashes),
		zap.Stringer("modifier", modifier),
		zap.Int("rules", rules),
		zap.Int("properties", len(out)))
	return out
}

// inScope reports whether a rule wrapped in groups can apply under modifier.
// Unwrapped rules always can. Wrapped rules only count for an at-rule
// modifier naming exactly their single enclosing group.
func inScope(groups []*cssast.AtRule, modifier *Modifier) bool {
	if len(groups) == 0 {
		return true
	}
	if modifier == nil || modifier.Kind != ModifierAtRule || len(groups) != 1 {
		return false
	}
	g := groups[0]
	return g.Name == modifier.Name && normalizePrelude(g.Prelude) == normalizePrelude(modifier.Value)
}

type selectorSet map[string]struct{}

func (s selectorSet) matchAny(selectors []string) bool {
	for _, sel := range selectors {
		if _, ok := s[normalizeSelector(sel)]; ok {
			return true
		}
	}
	return false
}

// targetSelectors returns the normalized selectors that address hashes
// under modifier. At-rule modifiers do not change the selector.
func targetSelectors(hashes []string, modifier *Modifier) selectorSet {
	set := make(selectorSet, len(hashes))
	for _, h := range hashes {
		base := "." + h
		if modifier == nil || modifier.Kind != ModifierSelector {
			set[base] = struct{}{}
			continue
		}
		set[normalizeSelector(expandSelector(base, modifier.Value))] = struct{}{}
	}
	return set
}

// expandSelector applies a selector modifier to base. "&" stands for base;
// without it pseudo selectors attach to base and anything else is nested.
func expandSelector(base, mod string) string {
	mod = strings.TrimSpace(mod)
	switch {
	case strings.Contains(mod, "&"):
		return strings.ReplaceAll(mod, "&", base)
	case strings.HasPrefix(mod, ":"):
		return base + mod
	default:
		return base + " " + mod
	}
}

func isCombinator(c byte) bool {
	return c == '>' || c == '+' || c == '~' || c == ','
}

// normalizeSelector collapses whitespace and drops it around combinators,
// so ".a > .b" and ".a>.b" compare equal.
func normalizeSelector(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ' ' {
			out := sb.String()
			if len(out) > 0 && isCombinator(out[len(out)-1]) {
				continue
			}
			if i+1 < len(s) && isCombinator(s[i+1]) {
				continue
			}
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// normalizePrelude lowercases an at-rule prelude and drops whitespace
// around punctuation, so "(min-width:100px)" matches "(min-width: 100px)".
func normalizePrelude(s string) string {
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ' ' {
			out := sb.String()
			if len(out) > 0 && strings.IndexByte("(:,", out[len(out)-1]) >= 0 {
				continue
			}
			if i+1 < len(s) && strings.IndexByte("):,", s[i+1]) >= 0 {
				continue
			}
		}
		sb.WriteByte(c)
	}
	return sb.String()
}
