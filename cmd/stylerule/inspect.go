package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/recera/vango-styled/pkg/styletest"
)

// errPropertyMissing is returned when --property names nothing the rules declare
var errPropertyMissing = errors.New("property not found in style rules")

// errValueMismatch is returned when --expect does not match the declared value
var errValueMismatch = errors.New("value mismatch")

type inspectOptions struct {
	classes  []string
	modifier string
	media    string
	property string
	expect   string
	watch    bool
}

func newInspectCommand(flags *globalFlags) *cobra.Command {
	opts := &inspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show the declarations for a set of class names",
		Long: `Reads a stylesheet dump or a server-rendered page, drops the engine's
marker lines and prints the declarations that apply to the given class
names. With --property only that property is printed and a missing
property is an error; --expect additionally checks its value (wrap a
pattern in slashes, e.g. --expect '/^\d+px$/').`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := flags.load()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			in := newInspector(cfg, log, opts)
			if !opts.watch {
				return in.run(cmd.OutOrStdout(), args[0])
			}
			return in.watch(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	}

	cmd.Flags().StringSliceVar(&opts.classes, "class", nil, "Class names (hashes) of the component, repeatable")
	cmd.Flags().StringVarP(&opts.modifier, "modifier", "m", "", "Selector or at-rule modifier, e.g. ':hover' or '@media print'")
	cmd.Flags().StringVar(&opts.media, "media", "", "Media query the rules must be inside, e.g. '(min-width: 100px)'")
	cmd.Flags().StringVarP(&opts.property, "property", "p", "", "Only print this property")
	cmd.Flags().StringVar(&opts.expect, "expect", "", "Expected value of --property")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Re-run whenever the file changes")
	cmd.MarkFlagRequired("class") //nolint:errcheck
	cmd.MarkFlagsMutuallyExclusive("modifier", "media")

	return cmd
}

type inspector struct {
	opts      *inspectOptions
	extractor *styletest.Extractor
	locator   *styletest.Locator
	log       *zap.Logger
}

func newInspector(cfg *styletest.Config, log *zap.Logger, opts *inspectOptions) *inspector {
	return &inspector{
		opts:      opts,
		extractor: styletest.NewExtractor(cfg.MarkerPrefix, log),
		locator:   styletest.NewLocator(log),
		log:       log.Named("inspect"),
	}
}

func (in *inspector) modifier() *styletest.Modifier {
	if in.opts.media != "" {
		return &styletest.Modifier{Kind: styletest.ModifierAtRule, Name: "media", Value: in.opts.media}
	}
	return styletest.ParseModifier(in.opts.modifier)
}

// expected turns --expect into a string or, when wrapped in slashes, a pattern
func (in *inspector) expected() (any, error) {
	e := in.opts.expect
	if len(e) >= 2 && strings.HasPrefix(e, "/") && strings.HasSuffix(e, "/") {
		re, err := regexp.Compile(e[1 : len(e)-1])
		if err != nil {
			return nil, fmt.Errorf("invalid --expect pattern: %w", err)
		}
		return re, nil
	}
	return e, nil
}

// run inspects the file once
func (in *inspector) run(w io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	sheet, err := in.extractor.Extract(string(data))
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	mod := in.modifier()
	decls := in.locator.FindDeclarationList(sheet, in.opts.classes, mod)
	in.log.Debug("Inspected file",
		zap.String("path", path),
		zap.Int("rules", sheet.RuleCount()),
		zap.Int("declarations", len(decls)))

	if in.opts.property == "" {
		for _, d := range decls {
			fmt.Fprintf(w, "%s;\n", d)
		}
		return nil
	}

	property := strings.ToLower(strings.TrimSpace(in.opts.property))
	for _, d := range decls {
		if d.Property != property {
			continue
		}
		fmt.Fprintf(w, "%s;\n", d)
		if in.opts.expect == "" {
			return nil
		}
		expected, err := in.expected()
		if err != nil {
			return err
		}
		if !styletest.Compare(d.Value, expected) {
			return fmt.Errorf("%w for %s: expected %s", errValueMismatch, property, in.opts.expect)
		}
		return nil
	}
	return fmt.Errorf("%w: %s", errPropertyMissing, property)
}

// watch runs the inspection, then again after every change to path until ctx is done
func (in *inspector) watch(ctx context.Context, w io.Writer, path string) (err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		err = multierr.Append(err, watcher.Close())
	}()

	// Editors often replace files, so watch the directory
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	report := func() {
		if err := in.run(w, path); err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
		}
		fmt.Fprintln(w, "---")
	}
	report()

	debounce := time.NewTimer(0)
	<-debounce.C // drain initial timer

	var errs error
	for {
		select {
		case <-ctx.Done():
			return errs

		case event, ok := <-watcher.Events:
			if !ok {
				return errs
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				debounce.Reset(100 * time.Millisecond)
			}

		case werr, ok := <-watcher.Errors:
			if !ok {
				return errs
			}
			in.log.Warn("Watcher error", zap.Error(werr))
			errs = multierr.Append(errs, werr)

		case <-debounce.C:
			report()
		}
	}
}
