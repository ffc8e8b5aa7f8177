// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/pirog/kalabox-cli/internal/engine"
)

// DefaultMachine is the machine name used when none is configured.
const DefaultMachine = "kbox"

func init() {
	Register("machine", func(opts Options) Provider {
		return NewMachineProvider(opts.Machine)
	})
}

// MachineProvider drives a docker-machine VM. Installed means the
// docker-machine binary exists and the named machine has been created;
// up means the machine reports the Running state.
type MachineProvider struct {
	machine string
	cli     *engine.BaseCLI
}

// MachineProviderOption configures a MachineProvider.
type MachineProviderOption func(*MachineProvider)

// WithMachineCLI overrides the docker-machine CLI helper. Intended for tests.
func WithMachineCLI(cli *engine.BaseCLI) MachineProviderOption {
	return func(p *MachineProvider) { p.cli = cli }
}

// NewMachineProvider creates a machine provider for the named machine,
// resolving the docker-machine binary from PATH. An empty machine name
// falls back to DefaultMachine.
func NewMachineProvider(machine string, opts ...MachineProviderOption) *MachineProvider {
	if machine == "" {
		machine = DefaultMachine
	}
	path, _ := exec.LookPath("docker-machine")
	p := &MachineProvider{
		machine: machine,
		cli:     engine.NewBaseCLI(path),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the provider name used in error messages.
func (p *MachineProvider) Name() string { return "machine" }

// IsInstalled reports whether docker-machine exists and the machine has been
// created. A missing binary or a status command failing with a non-zero exit
// (machine never created) is a successful negative check, not a query error.
func (p *MachineProvider) IsInstalled(ctx context.Context) (bool, error) {
	if p.cli.BinaryPath() == "" {
		return false, nil
	}
	log.Debug("provider check", "provider", p.Name(), "check", "installed", "machine", p.machine)

	_, err := p.cli.RunCommand(ctx, "status", p.machine)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// IsUp reports whether the machine is in the Running state.
func (p *MachineProvider) IsUp(ctx context.Context) (bool, error) {
	log.Debug("provider check", "provider", p.Name(), "check", "up", "machine", p.machine)

	out, err := p.cli.RunCommand(ctx, "status", p.machine)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(strings.TrimSpace(out), "Running"), nil
}

// EngineConfig derives the engine configuration from `docker-machine env`.
func (p *MachineProvider) EngineConfig(ctx context.Context) (engine.Config, error) {
	out, err := p.cli.RunCommand(ctx, "env", "--shell", "bash", p.machine)
	if err != nil {
		return engine.Config{}, err
	}

	env := parseMachineEnv(out)
	host := env["DOCKER_HOST"]
	if host == "" {
		return engine.Config{}, fmt.Errorf("docker-machine env for %q did not export DOCKER_HOST", p.machine)
	}

	return engine.Config{
		Host:      host,
		CertDir:   env["DOCKER_CERT_PATH"],
		TLSVerify: env["DOCKER_TLS_VERIFY"] == "1",
		Machine:   p.machine,
	}, nil
}

// parseMachineEnv extracts KEY=VALUE pairs from the bash-flavored
// `docker-machine env` output (lines of `export KEY="VALUE"`).
func parseMachineEnv(out string) map[string]string {
	env := map[string]string{}
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		rest, ok := strings.CutPrefix(line, "export ")
		if !ok {
			continue
		}
		key, value, ok := strings.Cut(rest, "=")
		if !ok {
			continue
		}
		env[key] = strings.Trim(value, `"`)
	}
	return env
}
