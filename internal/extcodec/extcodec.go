// Package extcodec runs the out-of-process codecs (cwebp, avifenc, avifdec).
// Keeping them out of process avoids CGO; the tools exchange data through
// scratch files in the OS temp dir which are removed before Run returns.
package extcodec

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
)

// Atomic counter for unique temp file names across goroutines.
var tempCounter atomic.Int64

// Tool is a lazily located external binary.
type Tool struct {
	Name string
	// Path overrides the PATH lookup when set.
	Path string

	once     sync.Once
	resolved string
	err      error
}

// NewTool returns a tool that resolves name on PATH unless path is given.
func NewTool(name, path string) *Tool {
	return &Tool{Name: name, Path: path}
}

func (t *Tool) resolve() {
	t.once.Do(func() {
		bin := t.Name
		if t.Path != "" {
			bin = t.Path
		}
		t.resolved, t.err = exec.LookPath(bin)
	})
}

// Available reports whether the binary can be executed.
func (t *Tool) Available() bool {
	if t == nil {
		return false
	}
	t.resolve()
	return t.err == nil
}

// Bin returns the resolved executable path.
func (t *Tool) Bin() (string, error) {
	if t == nil {
		return "", fmt.Errorf("tool not configured")
	}
	t.resolve()
	if t.err != nil {
		return "", fmt.Errorf("%s not found: %w", t.Name, t.err)
	}
	return t.resolved, nil
}

// HelpMentions runs `<tool> --help` and reports whether the output
// contains flag. Tools that exit non-zero on --help still count.
func (t *Tool) HelpMentions(flag string) bool {
	bin, err := t.Bin()
	if err != nil {
		return false
	}
	out, _ := exec.Command(bin, "--help").CombinedOutput()
	return bytes.Contains(out, []byte(flag))
}

// Convert writes input to a scratch file with extension inExt, runs the
// tool with args(src, dst) and returns the bytes written to dst.
//
// The tool is never killed early; callers rely on it running to completion.
func (t *Tool) Convert(input []byte, inExt, outExt string, args func(src, dst string) []string) ([]byte, error) {
	bin, err := t.Bin()
	if err != nil {
		return nil, err
	}

	id := tempCounter.Add(1)
	srcFile, err := os.CreateTemp("", fmt.Sprintf("imgpress_src_%d_*.%s", id, inExt))
	if err != nil {
		return nil, fmt.Errorf("create temp: %w", err)
	}
	srcPath := srcFile.Name()
	defer os.Remove(srcPath)

	dstFile, err := os.CreateTemp("", fmt.Sprintf("imgpress_dst_%d_*.%s", id, outExt))
	if err != nil {
		srcFile.Close()
		return nil, fmt.Errorf("create temp: %w", err)
	}
	dstPath := dstFile.Name()
	dstFile.Close()
	defer os.Remove(dstPath)

	if _, err := srcFile.Write(input); err != nil {
		srcFile.Close()
		return nil, fmt.Errorf("write temp: %w", err)
	}
	if err := srcFile.Close(); err != nil {
		return nil, fmt.Errorf("close temp: %w", err)
	}

	cmd := exec.Command(bin, args(srcPath, dstPath)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, &ToolError{Tool: t.Name, Err: err, Output: strings.TrimSpace(string(out))}
	}

	data, err := os.ReadFile(dstPath)
	if err != nil {
		return nil, fmt.Errorf("read %s output: %w", t.Name, err)
	}
	if len(data) == 0 {
		return nil, &ToolError{Tool: t.Name, Err: fmt.Errorf("empty output")}
	}
	return data, nil
}

// ToolError is a non-zero exit (or empty output) from an external codec.
type ToolError struct {
	Tool   string
	Err    error
	Output string
}

func (e *ToolError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("%s: %v", e.Tool, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Tool, e.Err, e.Output)
}

func (e *ToolError) Unwrap() error { return e.Err }
