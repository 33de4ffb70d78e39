package styletest

import (
	"fmt"
	"runtime"
	"sort"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// HookVersion is the version of the engine surface this package binds to.
// Engines report theirs through HookVersion() int.
const HookVersion = 1

// Mode selects where Read takes the stylesheet from.
type Mode int

const (
	// ModeAuto reads the live sheet when running inside a browser (GOOS=js)
	// and the server-rendered style tags everywhere else.
	ModeAuto Mode = iota
	// ModeServer always reads the server-rendered style tags.
	ModeServer
	// ModeDOM always reads the live sheet text.
	ModeDOM
)

func (m Mode) String() string {
	switch m {
	case ModeServer:
		return "server"
	case ModeDOM:
		return "dom"
	default:
		return "auto"
	}
}

// ParseMode converts a config value into a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ModeAuto, nil
	case "server", "ssr":
		return ModeServer, nil
	case "dom", "browser":
		return ModeDOM, nil
	}
	return ModeAuto, fmt.Errorf("unknown mode %q", s)
}

// Engine hooks. Each is checked on its own so a ConfigError can name
// every missing one.
type (
	sheetTextHook interface {
		String() string
	}
	styleTagsHook interface {
		StyleTags() string
	}
	namesHook interface {
		Names() map[string][]string
	}
	clearNamesHook interface {
		ClearNames()
	}
	clearTagHook interface {
		ClearTag()
	}
	versionHook interface {
		HookVersion() int
	}
)

// RegistryAdapter reads generated styles back out of a style engine.
type RegistryAdapter struct {
	text       sheetTextHook
	tags       styleTagsHook
	names      namesHook
	clearNames clearNamesHook
	clearTag   clearTagHook

	mode Mode
	log  *zap.Logger
}

// Bind checks that engine exposes every hook the adapter needs and returns
// an adapter reading from it. All missing hooks are reported together in a
// *ConfigError.
func Bind(engine any, mode Mode, log *zap.Logger) (*RegistryAdapter, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if engine == nil {
		return nil, &ConfigError{Engine: "<nil>", Err: fmt.Errorf("%w: no engine given", ErrMissingHook)}
	}

	a := &RegistryAdapter{mode: mode, log: log.Named("registry")}

	var errs error
	var ok bool
	if a.text, ok = engine.(sheetTextHook); !ok {
		errs = multierr.Append(errs, missingHook("String() string"))
	}
	if a.tags, ok = engine.(styleTagsHook); !ok {
		errs = multierr.Append(errs, missingHook("StyleTags() string"))
	}
	if a.names, ok = engine.(namesHook); !ok {
		errs = multierr.Append(errs, missingHook("Names() map[string][]string"))
	}
	if a.clearNames, ok = engine.(clearNamesHook); !ok {
		errs = multierr.Append(errs, missingHook("ClearNames()"))
	}
	if a.clearTag, ok = engine.(clearTagHook); !ok {
		errs = multierr.Append(errs, missingHook("ClearTag()"))
	}
	if v, ok := engine.(versionHook); !ok {
		errs = multierr.Append(errs, missingHook("HookVersion() int"))
	} else if got := v.HookVersion(); got != HookVersion {
		errs = multierr.Append(errs, fmt.Errorf("hook version %d is not supported, want %d", got, HookVersion))
	}

	if errs != nil {
		return nil, &ConfigError{Engine: fmt.Sprintf("%T", engine), Err: errs}
	}

	a.log.Debug("Bound style engine", zap.String("engine", fmt.Sprintf("%T", engine)), zap.Stringer("mode", mode))
	return a, nil
}

// MustBind is like Bind but panics on error. Use it to initialize
// package-level matchers so a misconfigured engine stops the test binary.
func MustBind(engine any, mode Mode, log *zap.Logger) *RegistryAdapter {
	a, err := Bind(engine, mode, log)
	if err != nil {
		panic(err)
	}
	return a
}

// Server reports whether Read returns server-rendered style tags.
func (a *RegistryAdapter) Server() bool {
	switch a.mode {
	case ModeServer:
		return true
	case ModeDOM:
		return false
	default:
		return runtime.GOOS != "js"
	}
}

// Read returns the current stylesheet: style tag markup in server mode,
// the live sheet text otherwise. Nothing is cached between calls.
func (a *RegistryAdapter) Read() string {
	if a.Server() {
		return a.tags.StyleTags()
	}
	return a.text.String()
}

// Reset forgets every registered name and drops every injected rule.
func (a *RegistryAdapter) Reset() {
	a.clearNames.ClearNames()
	a.clearTag.ClearTag()
}

// ListHashes returns every component id and variant name known to the
// engine, deduplicated and sorted.
func (a *RegistryAdapter) ListHashes() []string {
	set := make(map[string]struct{})
	for id, variants := range a.names.Names() {
		set[id] = struct{}{}
		for _, v := range variants {
			set[v] = struct{}{}
		}
	}

	hashes := make([]string, 0, len(set))
	for h := range set {
		hashes = append(hashes, h)
	}
	sort.Strings(hashes)
	return hashes
}
