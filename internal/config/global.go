// SPDX-License-Identifier: MPL-2.0

package config

var (
	// configDirOverride allows tests to override the config directory.
	// os.UserHomeDir() doesn't reliably respect the HOME env var on all
	// platforms (e.g., macOS in CI), so tests set this instead.
	configDirOverride string

	// configFileOverride is set from the --config flag.
	configFileOverride string
)

// Reset clears overrides. Call from test cleanup to restore defaults.
func Reset() {
	configDirOverride = ""
	configFileOverride = ""
}

// SetConfigDirOverride sets a custom config directory path. Primarily for
// tests.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}

// SetConfigFileOverride sets an explicit config file path, bypassing the
// config directory lookup. Wired to the --config flag.
func SetConfigFileOverride(path string) {
	configFileOverride = path
}
