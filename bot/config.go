package bot

import (
	"fmt"
	"strings"

	coreconfig "github.com/jeanzhou31/slackattack/core/config"
	coredatabase "github.com/jeanzhou31/slackattack/core/database"
	"github.com/jeanzhou31/slackattack/core/integrations/gmaps"
	"github.com/jeanzhou31/slackattack/core/integrations/yelp"
)

// Settings holds the bot's own presentation settings.
type Settings struct {
	Name string `yaml:"name" envconfig:"BOT_NAME"`
}

// Config is the full application configuration: the core sections plus
// the audit store and the lookup collaborators.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Bot      Settings            `yaml:"bot"`
	Database coredatabase.Config `yaml:"database"`
	Yelp     yelp.Config         `yaml:"yelp"`
	GMaps    gmaps.Config        `yaml:"gmaps"`
}

// CoreConfig returns the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// LoadConfig reads path, overlays the environment and validates the result.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if err := coreconfig.Load(path, cfg); err != nil {
		return nil, err
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the sections outside the core.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Yelp.APIKey) == "" {
		return fmt.Errorf("yelp.api_key is required")
	}
	if strings.TrimSpace(c.GMaps.APIKey) == "" {
		return fmt.Errorf("gmaps.api_key is required")
	}
	if strings.TrimSpace(c.Bot.Name) == "" {
		c.Bot.Name = DefaultName
	}
	return c.Database.Validate()
}
