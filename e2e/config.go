package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

// Config drives the e2e suite. With no E2E_SERVER_URL the suite starts
// the whole stack in-process, which is how CI runs it; point it at a
// deployed instance to smoke test an environment.
type Config struct {
	ServerURL string `envconfig:"E2E_SERVER_URL"`
	Colours   bool   `envconfig:"E2E_COLOURS" default:"true"`
	DebugJSON bool   `envconfig:"E2E_DEBUG_JSON" default:"false"`
}

func LoadConfig() (Config, error) {
	var config Config
	err := envconfig.Process("", &config)
	return config, err
}
