// Package constants defines shared configuration constants.
package constants

var (
	// ConfigFile is the config file looked up in the working directory when --config is not set.
	ConfigFile = "pace.yaml"

	// ConfigEnv names the environment variable holding a config file path.
	ConfigEnv = "PACE_CONFIG"

	// ServiceName identifies pace in exported profiles and traces.
	ServiceName = "pace"
)
