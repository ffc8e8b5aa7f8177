// SPDX-License-Identifier: MPL-2.0

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pirog/kalabox-cli/internal/config"
)

// statusCmd live-queries the provider, bypassing the readiness cache so the
// answer always reflects the current state.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether the backend provider is up right now",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		d, err := newDispatcher()
		if err != nil {
			return renderError("check status", err)
		}
		up, err := d.IsUp(cmd.Context())
		if err != nil {
			return renderError("check status", err)
		}
		if up {
			fmt.Println(SuccessStyle.Render("up"))
		} else {
			fmt.Println(MutedStyle.Render("down"))
		}
		return nil
	},
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Bring the backend engine up",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		d, err := newDispatcher()
		if err != nil {
			return renderError("bring the engine up", err)
		}
		if err := d.Up(cmd.Context()); err != nil {
			return renderError("bring the engine up", err)
		}
		fmt.Println(SuccessStyle.Render("engine is up"))
		return nil
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Bring the backend engine down",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		d, err := newDispatcher()
		if err != nil {
			return renderError("bring the engine down", err)
		}
		if err := d.Down(cmd.Context()); err != nil {
			return renderError("bring the engine down", err)
		}
		fmt.Println(MutedStyle.Render("engine is down"))
		return nil
	},
}

// initCmd seeds the default config file.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the default config file",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		path, err := config.WriteDefault()
		if err != nil {
			return renderError("seed config file", err)
		}
		fmt.Println("config: " + path)
		return nil
	},
}
