// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
)

// ExecCommandFunc is the function signature for creating exec.Cmd.
// This allows injection of mock implementations for testing.
type ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

// execCommand is the default command constructor. Tests swap it out via
// the mock recorder in cli_mock_test.go.
var execCommand ExecCommandFunc = exec.CommandContext

type (
	// BaseCLIOption configures a BaseCLI.
	BaseCLIOption func(*BaseCLI)

	// BaseCLI provides the shared plumbing for CLI-backed engines: binary
	// resolution, per-command environment derived from the engine Config,
	// and the run helpers engine methods are built from.
	BaseCLI struct {
		binaryPath  string
		execCommand ExecCommandFunc
		env         map[string]string
	}
)

// WithExecCommand overrides the command constructor. Intended for tests.
func WithExecCommand(fn ExecCommandFunc) BaseCLIOption {
	return func(c *BaseCLI) { c.execCommand = fn }
}

// NewBaseCLI creates a BaseCLI for the given binary path. An empty path means
// the binary was not found on PATH; commands will fail with a descriptive
// error rather than panicking.
func NewBaseCLI(binaryPath string, opts ...BaseCLIOption) *BaseCLI {
	c := &BaseCLI{
		binaryPath:  binaryPath,
		execCommand: execCommand,
		env:         map[string]string{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BinaryPath returns the resolved binary path, empty if not found.
func (c *BaseCLI) BinaryPath() string { return c.binaryPath }

// SetEnv replaces the per-command environment overrides.
func (c *BaseCLI) SetEnv(env map[string]string) { c.env = env }

// CreateCommand builds an exec.Cmd for the engine binary with the
// per-command environment applied on top of the process environment.
func (c *BaseCLI) CreateCommand(ctx context.Context, args ...string) *exec.Cmd {
	cmd := c.execCommand(ctx, c.binaryPath, args...)
	if len(c.env) > 0 {
		env := os.Environ()
		keys := make([]string, 0, len(c.env))
		for k := range c.env {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			env = append(env, k+"="+c.env[k])
		}
		cmd.Env = env
	}
	return cmd
}

// RunCommand runs the binary and returns trimmed stdout. On a non-zero exit
// it returns an error carrying the command's stderr.
func (c *BaseCLI) RunCommand(ctx context.Context, args ...string) (string, error) {
	if c.binaryPath == "" {
		return "", fmt.Errorf("binary not found on PATH")
	}
	var stdout, stderr bytes.Buffer
	cmd := c.CreateCommand(ctx, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", cliError(args, stderr.String(), err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// RunCommandStatus runs the binary and reports only success or failure.
func (c *BaseCLI) RunCommandStatus(ctx context.Context, args ...string) error {
	_, err := c.RunCommand(ctx, args...)
	return err
}

// cliError folds captured stderr into the exec error so backend failures
// surface the daemon's own message, not just "exit status 1".
func cliError(args []string, stderr string, err error) error {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return fmt.Errorf("%s: %w", strings.Join(args, " "), err)
	}
	return fmt.Errorf("%s: %s: %w", strings.Join(args, " "), stderr, err)
}

// --- Argument builders ---

// ListArgs builds the `ps` arguments for List. Containers managed by this
// tool carry the kbox label; a non-empty appFilter narrows to one app.
func (c *BaseCLI) ListArgs(appFilter string) []string {
	args := []string{"ps", "--all", "--no-trunc", "--format", "{{json .}}", "--filter", "label=" + labelManaged}
	if appFilter != "" {
		args = append(args, "--filter", "label="+labelApp+"="+appFilter)
	}
	return args
}

// GetArgs builds the `inspect` arguments that resolve a reference to an
// ID/name pair.
func (c *BaseCLI) GetArgs(ref string) []string {
	return []string{"inspect", "--format", "{{.Id}} {{.Name}}", ref}
}

// InspectArgs builds the `inspect` arguments returning the full JSON payload.
func (c *BaseCLI) InspectArgs(id string) []string {
	return []string{"inspect", id}
}

// CreateArgs builds the `create` arguments.
func (c *BaseCLI) CreateArgs(opts CreateOptions) []string {
	args := []string{"create", "--label", labelManaged}
	if opts.App != "" {
		args = append(args, "--label", labelApp+"="+opts.App)
	}
	if opts.Name != "" {
		args = append(args, "--name", opts.Name)
	}
	for _, e := range opts.Env {
		args = append(args, "--env", e)
	}
	for _, v := range opts.Volumes {
		args = append(args, "--volume", v)
	}
	for _, p := range opts.Ports {
		args = append(args, "--publish", p)
	}
	args = append(args, opts.Image)
	args = append(args, opts.Cmd...)
	return args
}

// StartArgs builds the `start` arguments.
func (c *BaseCLI) StartArgs(ref string, opts StartOptions) []string {
	args := []string{"start"}
	if opts.Attach {
		args = append(args, "--attach")
	}
	return append(args, ref)
}

// StopArgs builds the `stop` arguments.
func (c *BaseCLI) StopArgs(ref string) []string {
	return []string{"stop", ref}
}

// RemoveArgs builds the `rm` arguments. Volumes created for the container
// are removed with it.
func (c *BaseCLI) RemoveArgs(ref string) []string {
	return []string{"rm", "--volumes", ref}
}

// BuildArgs builds the `build` arguments for a locally built image.
func (c *BaseCLI) BuildArgs(img Image) []string {
	args := []string{"build", "--tag", img.Name}
	if img.Dockerfile != "" {
		args = append(args, "--file", img.Dockerfile)
	}
	contextDir := img.ContextDir
	if contextDir == "" {
		contextDir = "."
	}
	return append(args, contextDir)
}

// PullArgs builds the `pull` arguments for a registry image.
func (c *BaseCLI) PullArgs(img Image) []string {
	return []string{"pull", img.Name}
}
