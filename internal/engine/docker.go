// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

const (
	// labelManaged marks containers created through this tool.
	labelManaged = "kbox=true"
	// labelApp carries the owning application name.
	labelApp = "kbox.app"
)

func init() {
	Register("docker", func() Engine { return NewDockerEngine() })
}

type (
	// DockerEngine implements Engine by shelling out to the docker CLI.
	// Daemon endpoint and TLS material are passed via DOCKER_* environment
	// variables derived from the Config handed to Init. When the Config
	// names a machine, Up and Down drive it through docker-machine.
	DockerEngine struct {
		cli     *BaseCLI
		machine *BaseCLI

		initMu      sync.Mutex
		initialized bool
		cfg         Config
	}

	// DockerEngineOption configures a DockerEngine.
	DockerEngineOption func(*DockerEngine)

	// psRow is one line of `docker ps --format '{{json .}}'` output.
	psRow struct {
		ID     string `json:"ID"`
		Names  string `json:"Names"`
		State  string `json:"State"`
		Labels string `json:"Labels"`
	}
)

// WithDockerCLI overrides the docker CLI helper. Intended for tests.
func WithDockerCLI(cli *BaseCLI) DockerEngineOption {
	return func(e *DockerEngine) { e.cli = cli }
}

// WithMachineCLI overrides the docker-machine CLI helper. Intended for tests.
func WithMachineCLI(cli *BaseCLI) DockerEngineOption {
	return func(e *DockerEngine) { e.machine = cli }
}

// NewDockerEngine creates a docker engine with binaries resolved from PATH.
func NewDockerEngine(opts ...DockerEngineOption) *DockerEngine {
	dockerPath, _ := exec.LookPath("docker")
	machinePath, _ := exec.LookPath("docker-machine")
	e := &DockerEngine{
		cli:     NewBaseCLI(dockerPath),
		machine: NewBaseCLI(machinePath),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the engine name.
func (e *DockerEngine) Name() string { return "docker" }

// Init consumes the resolved configuration. The first call wins; any later
// call returns AlreadyInitializedError without touching the stored config.
func (e *DockerEngine) Init(cfg Config) error {
	e.initMu.Lock()
	defer e.initMu.Unlock()
	if e.initialized {
		return &AlreadyInitializedError{Engine: e.Name()}
	}
	e.cfg = cfg

	env := map[string]string{}
	if cfg.Host != "" {
		env["DOCKER_HOST"] = cfg.Host
	}
	if cfg.CertDir != "" {
		env["DOCKER_CERT_PATH"] = cfg.CertDir
	}
	if cfg.TLSVerify {
		env["DOCKER_TLS_VERIFY"] = "1"
	}
	for k, v := range cfg.Env {
		env[k] = v
	}
	e.cli.SetEnv(env)

	e.initialized = true
	return nil
}

// config returns the stored config, or an error before Init has run.
func (e *DockerEngine) config() (Config, error) {
	e.initMu.Lock()
	defer e.initMu.Unlock()
	if !e.initialized {
		return Config{}, ErrNotInitialized
	}
	return e.cfg, nil
}

// Up brings the daemon up. For a machine-backed config this starts the VM;
// for a host-local daemon it only verifies the daemon answers, since the
// daemon's lifecycle belongs to the host init system.
func (e *DockerEngine) Up(ctx context.Context) error {
	cfg, err := e.config()
	if err != nil {
		return err
	}
	if cfg.Machine != "" {
		return e.machine.RunCommandStatus(ctx, "start", cfg.Machine)
	}
	return e.cli.RunCommandStatus(ctx, "version", "--format", "{{.Server.Version}}")
}

// Down brings a machine-backed daemon down. A host-local daemon is left
// alone for the same reason Up does not start it.
func (e *DockerEngine) Down(ctx context.Context) error {
	cfg, err := e.config()
	if err != nil {
		return err
	}
	if cfg.Machine != "" {
		return e.machine.RunCommandStatus(ctx, "stop", cfg.Machine)
	}
	return nil
}

// List returns managed containers, optionally narrowed to one app.
func (e *DockerEngine) List(ctx context.Context, appFilter string) ([]ContainerInfo, error) {
	out, err := e.cli.RunCommand(ctx, e.cli.ListArgs(appFilter)...)
	if err != nil {
		return nil, err
	}

	var infos []ContainerInfo
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var row psRow
		if err := json.Unmarshal([]byte(line), &row); err != nil {
			return nil, fmt.Errorf("decode container list row: %w", err)
		}
		infos = append(infos, ContainerInfo{
			ID:      row.ID,
			Name:    firstName(row.Names),
			App:     labelValue(row.Labels, labelApp),
			Running: row.State == "running",
		})
	}
	return infos, nil
}

// Get resolves a container reference to a handle.
func (e *DockerEngine) Get(ctx context.Context, ref string) (Container, error) {
	out, err := e.cli.RunCommand(ctx, e.cli.GetArgs(ref)...)
	if err != nil {
		if strings.Contains(err.Error(), "No such object") ||
			strings.Contains(err.Error(), "No such container") {
			return Container{}, &ContainerNotFoundError{Ref: ref}
		}
		return Container{}, err
	}
	id, name, _ := strings.Cut(out, " ")
	return Container{ID: id, Name: strings.TrimPrefix(name, "/")}, nil
}

// Inspect returns the decoded `docker inspect` payload for a handle.
func (e *DockerEngine) Inspect(ctx context.Context, c Container) (InspectResult, error) {
	out, err := e.cli.RunCommand(ctx, e.cli.InspectArgs(c.ID)...)
	if err != nil {
		return nil, err
	}
	var payload []InspectResult
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		return nil, fmt.Errorf("decode inspect payload for %s: %w", c.ID, err)
	}
	if len(payload) == 0 {
		return nil, &ContainerNotFoundError{Ref: c.ID}
	}
	return payload[0], nil
}

// Create creates a container and returns its handle.
func (e *DockerEngine) Create(ctx context.Context, opts CreateOptions) (Container, error) {
	out, err := e.cli.RunCommand(ctx, e.cli.CreateArgs(opts)...)
	if err != nil {
		return Container{}, err
	}
	return Container{ID: out, Name: opts.Name}, nil
}

// Start starts a container.
func (e *DockerEngine) Start(ctx context.Context, ref string, opts StartOptions) error {
	return e.cli.RunCommandStatus(ctx, e.cli.StartArgs(ref, opts)...)
}

// Stop stops a container.
func (e *DockerEngine) Stop(ctx context.Context, ref string) error {
	return e.cli.RunCommandStatus(ctx, e.cli.StopArgs(ref)...)
}

// Remove removes a container along with its anonymous volumes.
func (e *DockerEngine) Remove(ctx context.Context, ref string) error {
	return e.cli.RunCommandStatus(ctx, e.cli.RemoveArgs(ref)...)
}

// Build builds an image from its context directory.
func (e *DockerEngine) Build(ctx context.Context, img Image) error {
	return e.cli.RunCommandStatus(ctx, e.cli.BuildArgs(img)...)
}

// Pull pulls an image from a registry.
func (e *DockerEngine) Pull(ctx context.Context, img Image) error {
	return e.cli.RunCommandStatus(ctx, e.cli.PullArgs(img)...)
}

// firstName extracts the first name from the comma-joined Names column.
func firstName(names string) string {
	name, _, _ := strings.Cut(names, ",")
	return strings.TrimPrefix(name, "/")
}

// labelValue extracts the value of key from the comma-joined Labels column.
func labelValue(labels, key string) string {
	for _, pair := range strings.Split(labels, ",") {
		if k, v, ok := strings.Cut(pair, "="); ok && k == key {
			return v
		}
	}
	return ""
}
