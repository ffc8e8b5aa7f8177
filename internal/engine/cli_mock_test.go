// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"testing"
)

type (
	// mockCommandRecorder captures arguments passed to exec.CommandContext
	// for verification. It uses the TestHelperProcess pattern to simulate
	// command execution.
	mockCommandRecorder struct {
		// Invocations records each call to the mock exec command.
		Invocations []mockInvocation
		// ExitCode is the exit code to return (0 = success).
		ExitCode int
		// Stdout is the output to write to stdout.
		Stdout string
		// Stderr is the output to write to stderr.
		Stderr string
	}

	// mockInvocation represents a single command invocation.
	mockInvocation struct {
		Name string
		Args []string
	}
)

func newMockCommandRecorder() *mockCommandRecorder {
	return &mockCommandRecorder{Invocations: make([]mockInvocation, 0)}
}

// CommandFunc returns an ExecCommandFunc that records invocations and runs
// TestHelperProcess with the configured output and exit code.
func (m *mockCommandRecorder) CommandFunc(t *testing.T) ExecCommandFunc {
	t.Helper()
	return func(_ context.Context, name string, args ...string) *exec.Cmd {
		m.Invocations = append(m.Invocations, mockInvocation{Name: name, Args: args})

		cs := []string{"-test.run=TestHelperProcess", "--", name}
		cs = append(cs, args...)
		cmd := exec.Command(os.Args[0], cs...) //nolint:noctx // test helper process
		cmd.Env = []string{
			"GO_WANT_HELPER_PROCESS=1",
			fmt.Sprintf("GO_HELPER_EXIT_CODE=%d", m.ExitCode),
			"GO_HELPER_STDOUT=" + m.Stdout,
			"GO_HELPER_STDERR=" + m.Stderr,
		}
		return cmd
	}
}

// LastArgs returns the arguments from the most recent invocation.
func (m *mockCommandRecorder) LastArgs() []string {
	if len(m.Invocations) == 0 {
		return nil
	}
	return m.Invocations[len(m.Invocations)-1].Args
}

// HasArg reports whether the last invocation contains a specific argument.
func (m *mockCommandRecorder) HasArg(arg string) bool {
	return slices.Contains(m.LastArgs(), arg)
}

// HasArgPair reports whether the last invocation contains a flag-value pair.
func (m *mockCommandRecorder) HasArgPair(flag, value string) bool {
	args := m.LastArgs()
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag && args[i+1] == value {
			return true
		}
	}
	return false
}

// mockEngine returns a DockerEngine whose docker and docker-machine CLIs both
// route through the recorder.
func mockEngine(t *testing.T, rec *mockCommandRecorder) *DockerEngine {
	t.Helper()
	return NewDockerEngine(
		WithDockerCLI(NewBaseCLI("docker", WithExecCommand(rec.CommandFunc(t)))),
		WithMachineCLI(NewBaseCLI("docker-machine", WithExecCommand(rec.CommandFunc(t)))),
	)
}

// TestHelperProcess is used by the mock to simulate command execution.
// It reads configuration from environment variables and outputs accordingly.
// This function should not be called directly - it is invoked by the mock.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	if stdout := os.Getenv("GO_HELPER_STDOUT"); stdout != "" {
		fmt.Fprint(os.Stdout, stdout)
	}
	if stderr := os.Getenv("GO_HELPER_STDERR"); stderr != "" {
		fmt.Fprint(os.Stderr, stderr)
	}

	exitCode := 0
	if code := os.Getenv("GO_HELPER_EXIT_CODE"); code != "" {
		fmt.Sscanf(code, "%d", &exitCode)
	}
	os.Exit(exitCode)
}
