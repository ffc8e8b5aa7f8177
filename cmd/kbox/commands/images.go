// SPDX-License-Identifier: MPL-2.0

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pirog/kalabox-cli/internal/engine"
)

var (
	buildContextDir string
	buildDockerfile string
)

func init() {
	buildCmd.Flags().StringVar(&buildContextDir, "context", ".", "build context directory")
	buildCmd.Flags().StringVar(&buildDockerfile, "file", "", "Dockerfile path relative to the context")
}

var buildCmd = &cobra.Command{
	Use:   "build IMAGE",
	Short: "Build an image from a local context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDispatcher()
		if err != nil {
			return renderError("build image", err)
		}
		img := engine.Image{
			Name:       args[0],
			Build:      true,
			ContextDir: buildContextDir,
			Dockerfile: buildDockerfile,
		}
		if err := d.Build(cmd.Context(), img); err != nil {
			return renderError("build image", err)
		}
		fmt.Println(SuccessStyle.Render("built ") + args[0])
		return nil
	},
}

var pullCmd = &cobra.Command{
	Use:   "pull IMAGE",
	Short: "Pull an image from a registry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDispatcher()
		if err != nil {
			return renderError("pull image", err)
		}
		// An image without the build marker routes through the engine's
		// pull path.
		if err := d.Build(cmd.Context(), engine.Image{Name: args[0]}); err != nil {
			return renderError("pull image", err)
		}
		fmt.Println(SuccessStyle.Render("pulled ") + args[0])
		return nil
	},
}
