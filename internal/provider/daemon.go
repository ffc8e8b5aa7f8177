// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"runtime"

	"github.com/charmbracelet/log"

	"github.com/pirog/kalabox-cli/internal/engine"
)

func init() {
	Register("daemon", func(Options) Provider {
		return NewDaemonProvider()
	})
}

// DaemonProvider talks to a host-local Docker daemon. Installed means the
// docker binary exists on PATH; up means `docker info` answers.
type DaemonProvider struct {
	cli *engine.BaseCLI
}

// DaemonProviderOption configures a DaemonProvider.
type DaemonProviderOption func(*DaemonProvider)

// WithDaemonCLI overrides the docker CLI helper. Intended for tests.
func WithDaemonCLI(cli *engine.BaseCLI) DaemonProviderOption {
	return func(p *DaemonProvider) { p.cli = cli }
}

// NewDaemonProvider creates a daemon provider with the docker binary
// resolved from PATH.
func NewDaemonProvider(opts ...DaemonProviderOption) *DaemonProvider {
	path, _ := exec.LookPath("docker")
	p := &DaemonProvider{cli: engine.NewBaseCLI(path)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the provider name used in error messages.
func (p *DaemonProvider) Name() string { return "daemon" }

// IsInstalled reports whether the docker binary exists on PATH.
func (p *DaemonProvider) IsInstalled(_ context.Context) (bool, error) {
	return p.cli.BinaryPath() != "", nil
}

// IsUp reports whether the daemon answers an info query. A non-zero exit is
// a successful negative check (daemon down); anything else is a query error.
func (p *DaemonProvider) IsUp(ctx context.Context) (bool, error) {
	log.Debug("provider check", "provider", p.Name(), "check", "up")

	_, err := p.cli.RunCommand(ctx, "info", "--format", "{{.ServerVersion}}")
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// EngineConfig builds the engine configuration from the DOCKER_* environment,
// falling back to the platform default socket.
func (p *DaemonProvider) EngineConfig(_ context.Context) (engine.Config, error) {
	host := os.Getenv("DOCKER_HOST")
	if host == "" {
		host = defaultDockerHost()
	}
	return engine.Config{
		Host:      host,
		CertDir:   os.Getenv("DOCKER_CERT_PATH"),
		TLSVerify: os.Getenv("DOCKER_TLS_VERIFY") == "1",
	}, nil
}

func defaultDockerHost() string {
	if runtime.GOOS == "windows" {
		return "npipe:////./pipe/docker_engine"
	}
	return "unix:///var/run/docker.sock"
}
