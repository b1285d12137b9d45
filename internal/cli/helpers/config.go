package helpers

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/coral-mesh/pace/internal/config"
	"github.com/coral-mesh/pace/internal/logging"
)

// Persistent flag names registered by the root command.
const (
	ConfigFlag   = "config"
	LogLevelFlag = "log-level"
)

// LoadConfig resolves and loads the configuration for cmd, then applies
// --log-level and any profiling flags. profile may be nil.
func LoadConfig(cmd *cobra.Command, profile *ProfileFlags) (*config.Config, error) {
	explicit, _ := cmd.Flags().GetString(ConfigFlag)
	path := config.ResolvePath(explicit)

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed(LogLevelFlag) {
		level, _ := cmd.Flags().GetString(LogLevelFlag)
		cfg.Logging.Level = level
	}
	if profile != nil {
		profile.Apply(cmd.Flags(), cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// NewLogger builds the command logger writing to w.
func NewLogger(cfg *config.Config, w io.Writer) zerolog.Logger {
	return logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Pretty: cfg.Logging.Pretty,
		Output: w,
	})
}
