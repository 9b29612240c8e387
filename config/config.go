package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Nostr struct {
		RelayURL  string `yaml:"relay_url"`
		BotPubkey string `yaml:"bot_pubkey"`
		SecretKey string `yaml:"secret_key"`
	} `yaml:"nostr"`
	Bot struct {
		Prefix          string `yaml:"prefix"`
		DefaultBalance  int64  `yaml:"default_balance"`
		FaucetAmount    int64  `yaml:"faucet_amount"`
		FaucetThreshold int64  `yaml:"faucet_threshold"`
	} `yaml:"bot"`
	Auth struct {
		Secret  string `yaml:"secret"`
		ExpHour int    `yaml:"exp_hour"`
	} `yaml:"auth"`
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
}

// GlobalConfig is the global configuration instance
var GlobalConfig Config

// LoadConfig reads and parses the YAML configuration file into GlobalConfig
func LoadConfig(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, &GlobalConfig); err != nil {
		return err
	}

	// Secrets may come from the environment instead of the file
	if v := os.Getenv("NOSTR_SECRET_KEY"); v != "" {
		GlobalConfig.Nostr.SecretKey = v
	}
	if v := os.Getenv("AUTH_SECRET"); v != "" {
		GlobalConfig.Auth.Secret = v
	}

	applyDefaults(&GlobalConfig)

	// Validate required fields
	if GlobalConfig.Database.Path == "" {
		return fmt.Errorf("database.path is required in %s", filePath)
	}
	if GlobalConfig.Nostr.RelayURL == "" {
		return fmt.Errorf("nostr.relay_url is required in %s", filePath)
	}
	if GlobalConfig.Nostr.BotPubkey == "" {
		return fmt.Errorf("nostr.bot_pubkey is required in %s", filePath)
	}
	if GlobalConfig.Nostr.SecretKey == "" {
		return fmt.Errorf("nostr.secret_key is required (config or NOSTR_SECRET_KEY)")
	}
	if GlobalConfig.Auth.Secret == "" {
		return fmt.Errorf("auth.secret is required (config or AUTH_SECRET)")
	}
	if GlobalConfig.Server.Port == 0 {
		return fmt.Errorf("server.port is required in %s", filePath)
	}

	return nil
}

func applyDefaults(c *Config) {
	if c.Bot.Prefix == "" {
		c.Bot.Prefix = "!"
	}
	if c.Bot.FaucetAmount == 0 {
		c.Bot.FaucetAmount = 5
	}
	if c.Bot.FaucetThreshold == 0 {
		c.Bot.FaucetThreshold = 1
	}
	if c.Auth.ExpHour == 0 {
		c.Auth.ExpHour = 24
	}
}
