package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/recera/vango-styled/pkg/styletest"
	"github.com/recera/vango-styled/pkg/styling"
)

const snapshot = ".a1{color:blue;margin:0;}/*!vg*/\n" +
	".a1:hover{color:red;}/*!vg*/\n" +
	"@media (min-width: 100px){.a1{color:green;}}/*!vg*/\n" +
	`data-vango.g1[id="vg-abc123"]{content:"a1,"}/*!vg*/` + "\n"

// syncBuffer is a bytes.Buffer safe for one writer and concurrent readers
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func writeSnapshot(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.css")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	// Keep tests independent of a config file in the working directory
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.yaml")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestInspect(t *testing.T) {
	path := writeSnapshot(t, snapshot)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "all declarations",
			args: []string{"inspect", path, "--class", "a1"},
			want: "color: blue;\nmargin: 0;\n",
		},
		{
			name: "hover",
			args: []string{"inspect", path, "--class", "a1", "-m", ":hover"},
			want: "color: red;\n",
		},
		{
			name: "media",
			args: []string{"inspect", path, "--class", "a1", "--media", "(min-width:100px)"},
			want: "color: green;\nmargin: 0;\n",
		},
		{
			name: "single property",
			args: []string{"inspect", path, "--class", "vg-abc123,a1", "-p", "Margin"},
			want: "margin: 0;\n",
		},
		{
			name: "expected value",
			args: []string{"inspect", path, "--class", "a1", "-p", "color", "--expect", "/^bl/"},
			want: "color: blue;\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestInspect_Errors(t *testing.T) {
	path := writeSnapshot(t, snapshot)

	_, err := runCLI(t, "inspect", path, "--class", "a1", "-p", "padding")
	assert.True(t, errors.Is(err, errPropertyMissing))

	_, err = runCLI(t, "inspect", path, "--class", "a1", "-p", "color", "--expect", "red")
	assert.True(t, errors.Is(err, errValueMismatch))

	_, err = runCLI(t, "inspect", path, "--class", "a1", "-p", "color", "--expect", "/[/")
	assert.ErrorContains(t, err, "invalid --expect pattern")

	_, err = runCLI(t, "inspect", writeSnapshot(t, ".a1{color:blue;"), "--class", "a1")
	assert.ErrorContains(t, err, "parse")

	_, err = runCLI(t, "inspect", filepath.Join(t.TempDir(), "missing.css"), "--class", "a1")
	assert.Error(t, err)

	_, err = runCLI(t, "inspect", path)
	assert.Error(t, err, "--class is required")
}

func TestInspect_RenderedPage(t *testing.T) {
	sheet := styling.NewSheet()
	box := styling.NewComponent(sheet, "div", "padding: 4px; &:hover { padding: 8px; }")
	node := box.Render(nil)
	classes := node.ClassNames()

	page := "<!DOCTYPE html><html><head>" + sheet.StyleTags() + "</head><body></body></html>"
	path := writeSnapshot(t, page)

	out, err := runCLI(t, "inspect", path, "--class", strings.Join(classes, ","), "-m", "&:hover")
	require.NoError(t, err)
	assert.Equal(t, "padding: 8px;\n", out)
}

func TestInspect_Watch(t *testing.T) {
	path := writeSnapshot(t, ".a1{color:blue;}")

	opts := &inspectOptions{classes: []string{"a1"}, property: "color"}
	in := newInspector(styletest.DefaultConfig(), zap.NewNop(), opts)

	ctx, cancel := context.WithCancel(context.Background())
	var out syncBuffer
	done := make(chan error, 1)
	go func() { done <- in.watch(ctx, &out, path) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "color: blue;")
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte(".a1{color:red;}"), 0o644))
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "color: red;")
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}
