package config

import (
	"os"
	"strconv"
)

// OverlayEnv applies environment overrides on top of the loaded file.
// Deployment settings (port, secrets) are the ones worth overriding
// without editing the user's config.
func OverlayEnv(cfg *Config) {
	if v := os.Getenv("ENGINE_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.App.Port = p
		}
	}
	if v := os.Getenv("ENGINE_DATA_DIR"); v != "" {
		cfg.App.DataDir = v
	}
	if v := os.Getenv("ENGINE_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
}
