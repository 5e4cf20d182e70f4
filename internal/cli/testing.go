package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// CLI runs catalog in-process for tests, rooted in its own temp dir with
// an empty environment unless Env is filled in.
type CLI struct {
	t   *testing.T
	Dir string
	Env map[string]string
}

func NewCLI(t *testing.T) *CLI {
	t.Helper()

	return &CLI{
		t:   t,
		Dir: t.TempDir(),
		Env: map[string]string{},
	}
}

// Run invokes catalog with args after "catalog --cwd <Dir>" and no stdin.
func (r *CLI) Run(args ...string) (string, string, int) {
	var outBuf, errBuf bytes.Buffer

	fullArgs := append([]string{"catalog", "--cwd", r.Dir}, args...)
	code := Run(nil, &outBuf, &errBuf, fullArgs, r.Env, nil)

	return outBuf.String(), errBuf.String(), code
}

// RunWithInput is Run with stdin fed from a string or io.Reader.
func (r *CLI) RunWithInput(stdin any, args ...string) (string, string, int) {
	var inReader io.Reader

	switch v := stdin.(type) {
	case string:
		inReader = strings.NewReader(v)
	case io.Reader:
		inReader = v
	default:
		panic(fmt.Sprintf("stdin must be string or io.Reader, got %T", stdin))
	}

	var outBuf, errBuf bytes.Buffer

	fullArgs := append([]string{"catalog", "--cwd", r.Dir}, args...)
	code := Run(inReader, &outBuf, &errBuf, fullArgs, r.Env, nil)

	return outBuf.String(), errBuf.String(), code
}

// MustRun returns trimmed stdout, failing the test on a non-zero exit.
func (r *CLI) MustRun(args ...string) string {
	r.t.Helper()

	stdout, stderr, code := r.Run(args...)
	if code != 0 {
		r.t.Fatalf("command %v failed with exit code %d\nstderr: %s", args, code, stderr)
	}

	return strings.TrimSpace(stdout)
}

// MustFail returns trimmed stderr. The command must exit non-zero with
// nothing on stdout.
func (r *CLI) MustFail(args ...string) string {
	r.t.Helper()

	stdout, stderr, code := r.Run(args...)
	if code == 0 {
		r.t.Fatalf("command %v should have failed but succeeded\nstdout: %s", args, stdout)
	}

	if stdout != "" {
		r.t.Fatalf("command %v failed but stdout should be empty\nstdout: %s", args, stdout)
	}

	return strings.TrimSpace(stderr)
}

// WriteFile creates name under Dir and returns its path.
func (r *CLI) WriteFile(name, content string) string {
	r.t.Helper()

	path := filepath.Join(r.Dir, name)

	err := os.WriteFile(path, []byte(content), 0o600)
	if err != nil {
		r.t.Fatalf("failed to write %s: %v", name, err)
	}

	return path
}

// ReadFile returns the content of name under Dir.
func (r *CLI) ReadFile(name string) string {
	r.t.Helper()

	content, err := os.ReadFile(filepath.Join(r.Dir, name))
	if err != nil {
		r.t.Fatalf("failed to read %s: %v", name, err)
	}

	return string(content)
}

func AssertContains(t *testing.T, content, substr string) {
	t.Helper()

	if !strings.Contains(content, substr) {
		t.Errorf("content should contain %q\ncontent:\n%s", substr, content)
	}
}

func AssertNotContains(t *testing.T, content, substr string) {
	t.Helper()

	if strings.Contains(content, substr) {
		t.Errorf("content should NOT contain %q\ncontent:\n%s", substr, content)
	}
}
