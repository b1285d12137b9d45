// Package config implements `pace config`.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/coral-mesh/pace/internal/cli/helpers"
	"github.com/coral-mesh/pace/internal/config"
	"github.com/coral-mesh/pace/internal/constants"
	"github.com/coral-mesh/pace/internal/safe"
)

// NewConfigCmd creates the config command and its subcommands.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and create pace configuration",
		Long: `Configuration is layered: built-in defaults, then the YAML file, then
PACE_* environment variables, then command-line flags.

The file is --config if given, else $PACE_CONFIG, else ./pace.yaml.`,
	}

	cmd.AddCommand(newShowCmd())
	cmd.AddCommand(newValidateCmd())
	cmd.AddCommand(newInitCmd())

	return cmd
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := helpers.LoadConfig(cmd, nil)
			if err != nil {
				return err
			}
			return config.Write(cmd.OutOrStdout(), cfg)
		},
	}
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration for errors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			explicit, _ := cmd.Flags().GetString(helpers.ConfigFlag)
			path := config.ResolvePath(explicit)

			if _, err := helpers.LoadConfig(cmd, nil); err != nil {
				return err
			}

			if path == "" {
				cmd.Println("✓ Defaults are valid (no config file found)")
			} else {
				cmd.Printf("✓ %s is valid\n", path)
			}
			return nil
		},
	}
}

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a config file with the default settings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := constants.ConfigFile
			if len(args) == 1 {
				path = args[0]
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			var buf bytes.Buffer
			if err := config.Write(&buf, config.Default()); err != nil {
				return err
			}

			logger := helpers.NewLogger(config.Default(), cmd.ErrOrStderr())
			if err := safe.WriteFile(path, 0o644, logger, func(w io.Writer) error {
				_, err := w.Write(buf.Bytes())
				return err
			}); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}

			cmd.Printf("✓ Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	return cmd
}
