package backend

import (
	"fmt"

	"pocketledger/internal/config"
	"pocketledger/internal/store/postgres"
)

// Select picks the backend for this process. The remote backend is chosen
// only when both credentials are present and the URL parses; anything else
// runs locally. The decision is made once at startup.
func Select(appConfig *config.Config) BackendType {
	if appConfig == nil || !appConfig.HasRemoteDB() {
		return LocalBackend
	}
	if _, err := postgres.ParseURL(appConfig.RemoteDBURL, appConfig.RemoteDBKey); err != nil {
		return LocalBackend
	}
	return RemoteBackend
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	return Config{
		Type:        Select(appConfig),
		RemoteDBURL: appConfig.RemoteDBURL,
		RemoteDBKey: appConfig.RemoteDBKey,
		LocalDBPath: appConfig.LocalDBPath,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	if c.Type == RemoteBackend {
		if c.RemoteDBURL == "" {
			return fmt.Errorf("remote database URL is required for remote backend")
		}
		if c.RemoteDBKey == "" {
			return fmt.Errorf("remote database key is required for remote backend")
		}
	}

	return nil
}

// Shared reports whether data written by this process is visible to other
// processes using the same configuration. A local backend without a database
// path keeps everything in memory.
func (c Config) Shared() bool {
	return c.Type == RemoteBackend || c.LocalDBPath != ""
}
