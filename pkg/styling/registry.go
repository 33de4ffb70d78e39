package styling

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

const (
	// Attr marks the style tags and bookkeeping lines owned by the engine
	Attr = "data-vango"

	// MarkerPrefix starts every group marker line in the serialized sheet,
	// e.g. data-vango.g3[id="vg-1a2b3c"]{content:"_9f8e7d6c,"}
	MarkerPrefix = Attr + ".g"

	// Splitter terminates every rule and marker line in the serialized sheet
	Splitter = "/*!vg*/\n"

	// Version is written into server-rendered style tags
	Version = "1"

	// hookVersion is reported to adapters that read the sheet back out
	hookVersion = 1
)

// Sheet is the registry of generated component styles.
// Every component id (the primary hash) owns a group; each distinct
// prop-driven permutation adds a variant name and its rules to that group.
type Sheet struct {
	mu sync.RWMutex

	// names maps component id -> variant names in insertion order
	names map[string][]string

	// groups maps component id -> group number; ids holds the reverse.
	// Group numbers survive ClearTag so markers stay stable between tests.
	groups map[string]int
	ids    []string

	// tag holds the injected rules per group
	tag map[int][]string
}

// Master is the process-wide sheet used by Styled
var Master = NewSheet()

// NewSheet creates an empty, isolated sheet
func NewSheet() *Sheet {
	return &Sheet{
		names:  make(map[string][]string),
		groups: make(map[string]int),
		tag:    make(map[int][]string),
	}
}

// groupFor returns the group number for id, allocating one if needed.
// Callers must hold the write lock.
func (s *Sheet) groupFor(id string) int {
	if g, ok := s.groups[id]; ok {
		return g
	}
	s.ids = append(s.ids, id)
	g := len(s.ids)
	s.groups[id] = g
	return g
}

// HasNameForID reports whether name was already registered for id
func (s *Sheet) HasNameForID(id, name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.names[id], name)
}

// InsertRules registers name under id and injects its rules
func (s *Sheet) InsertRules(id, name string, rules []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.groupFor(id)
	if !slices.Contains(s.names[id], name) {
		s.names[id] = append(s.names[id], name)
	}
	s.tag[g] = append(s.tag[g], rules...)
}

// InsertRulesOnce registers name under id and injects the rules built by
// rules, unless name is already registered. The check and the insert hold
// one lock, so concurrent renders of a variant inject it once.
// It reports whether rules were injected.
func (s *Sheet) InsertRulesOnce(id, name string, rules func() []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.Contains(s.names[id], name) {
		return false
	}
	g := s.groupFor(id)
	s.names[id] = append(s.names[id], name)
	s.tag[g] = append(s.tag[g], rules()...)
	return true
}

// Names returns a copy of the id -> variant names map
func (s *Sheet) Names() map[string][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]string, len(s.names))
	for id, names := range s.names {
		out[id] = slices.Clone(names)
	}
	return out
}

// String serializes the sheet the way it is injected into a live document:
// each group's rules followed by its marker line.
func (s *Sheet) String() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var b strings.Builder
	for i, id := range s.ids {
		g := i + 1
		rules := s.tag[g]
		if len(rules) == 0 {
			continue
		}
		for _, rule := range rules {
			b.WriteString(rule)
			b.WriteString(Splitter)
		}
		fmt.Fprintf(&b, `%s%d[id="%s"]{content:"`, MarkerPrefix, g, id)
		for _, name := range s.names[id] {
			b.WriteString(name)
			b.WriteString(",")
		}
		b.WriteString(`"}`)
		b.WriteString(Splitter)
	}
	return b.String()
}

// StyleTags renders the sheet as server-side style markup.
// It returns an empty string when nothing has been injected.
func (s *Sheet) StyleTags() string {
	css := s.String()
	if css == "" {
		return ""
	}
	return fmt.Sprintf(`<style %s="active" %s-version="%s">%s</style>`, Attr, Attr, Version, css)
}

// ClearNames forgets every registered variant name
func (s *Sheet) ClearNames() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names = make(map[string][]string)
}

// ClearTag drops every injected rule
func (s *Sheet) ClearTag() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tag = make(map[int][]string)
}

// Reset clears names and rules (useful for testing)
func (s *Sheet) Reset() {
	s.ClearNames()
	s.ClearTag()
}

// HookVersion reports the version of the read-back surface
// (String, StyleTags, Names, ClearNames, ClearTag)
func (s *Sheet) HookVersion() int {
	return hookVersion
}

// GetAllCSS returns the CSS of the process-wide sheet
func GetAllCSS() string {
	return Master.String()
}

// Reset clears the process-wide sheet
func Reset() {
	Master.Reset()
}
