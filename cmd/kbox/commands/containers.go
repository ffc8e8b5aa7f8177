// SPDX-License-Identifier: MPL-2.0

package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pirog/kalabox-cli/internal/engine"
)

var (
	createName    string
	createApp     string
	createImage   string
	createEnv     []string
	createVolumes []string
	createPorts   []string

	startAttach bool
)

func init() {
	createCmd.Flags().StringVar(&createName, "name", "", "container name")
	createCmd.Flags().StringVar(&createApp, "app", "", "application the container belongs to")
	createCmd.Flags().StringVar(&createImage, "image", "", "image to create the container from")
	createCmd.Flags().StringArrayVar(&createEnv, "env", nil, "environment entry (KEY=VALUE), repeatable")
	createCmd.Flags().StringArrayVar(&createVolumes, "volume", nil, "bind mount (host:container), repeatable")
	createCmd.Flags().StringArrayVar(&createPorts, "publish", nil, "port mapping (host:container), repeatable")
	_ = createCmd.MarkFlagRequired("image")

	startCmd.Flags().BoolVar(&startAttach, "attach", false, "attach to container output")
}

var listCmd = &cobra.Command{
	Use:   "list [app]",
	Short: "List containers, optionally narrowed to one app",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appFilter := ""
		if len(args) == 1 {
			appFilter = args[0]
		}
		d, err := newDispatcher()
		if err != nil {
			return renderError("list containers", err)
		}
		infos, err := d.List(cmd.Context(), appFilter)
		if err != nil {
			return renderError("list containers", err)
		}
		if len(infos) == 0 {
			fmt.Println(MutedStyle.Render("no containers"))
			return nil
		}
		for _, info := range infos {
			state := MutedStyle.Render("stopped")
			if info.Running {
				state = SuccessStyle.Render("running")
			}
			app := info.App
			if app == "" {
				app = "-"
			}
			fmt.Printf("%-14s %-20s %-14s %s\n", shortID(info.ID), info.Name, app, state)
		}
		return nil
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect CONTAINER",
	Short: "Show engine-level details for a container",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDispatcher()
		if err != nil {
			return renderError("inspect container", err)
		}
		res, err := d.Inspect(cmd.Context(), args[0])
		if err != nil {
			return renderError("inspect container", err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a container",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		d, err := newDispatcher()
		if err != nil {
			return renderError("create container", err)
		}
		c, err := d.Create(cmd.Context(), engine.CreateOptions{
			Name:    createName,
			App:     createApp,
			Image:   createImage,
			Env:     createEnv,
			Volumes: createVolumes,
			Ports:   createPorts,
		})
		if err != nil {
			return renderError("create container", err)
		}
		fmt.Println(shortID(c.ID))
		return nil
	},
}

var startCmd = &cobra.Command{
	Use:   "start CONTAINER",
	Short: "Start a container",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDispatcher()
		if err != nil {
			return renderError("start container", err)
		}
		if err := d.Start(cmd.Context(), args[0], engine.StartOptions{Attach: startAttach}); err != nil {
			return renderError("start container", err)
		}
		return nil
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop CONTAINER",
	Short: "Stop a container",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDispatcher()
		if err != nil {
			return renderError("stop container", err)
		}
		if err := d.Stop(cmd.Context(), args[0]); err != nil {
			return renderError("stop container", err)
		}
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm CONTAINER",
	Short: "Remove a container",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDispatcher()
		if err != nil {
			return renderError("remove container", err)
		}
		if err := d.Remove(cmd.Context(), args[0]); err != nil {
			return renderError("remove container", err)
		}
		return nil
	},
}

// shortID trims a full container ID to the familiar 12-character form.
func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
