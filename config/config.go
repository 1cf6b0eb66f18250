package config

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	TelegramBotToken       string `mapstructure:"TELEGRAM_BOT_TOKEN"`
	OwnerID                int64  `mapstructure:"OWNER_ID"`
	AdminIDs               string `mapstructure:"ADMIN_IDS"`
	DB_URL                 string `mapstructure:"DB_URL"`
	MaxTreeDepth           int    `mapstructure:"MAX_TREE_DEPTH"`
	RewardBlockedAncestors bool   `mapstructure:"REWARD_BLOCKED_ANCESTORS"`
}

func LoadConfig(path string) (config Config, err error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return config, fmt.Errorf("failed to resolve config path: %w", err)
	}

	viper.AddConfigPath(filepath.Dir(absPath))
	viper.SetConfigName(filepath.Base(absPath))
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	viper.SetDefault("MAX_TREE_DEPTH", 7)
	viper.SetDefault("REWARD_BLOCKED_ANCESTORS", true)

	if err := viper.ReadInConfig(); err != nil {
		return config, fmt.Errorf("failed to read config: %w", err)
	}

	if err := viper.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return config, nil
}

// AdminIDList parses the comma-separated ADMIN_IDS value. The owner id is
// always included.
func (c *Config) AdminIDList() []int64 {
	ids := []int64{c.OwnerID}
	for _, part := range strings.Split(c.AdminIDs, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id == c.OwnerID {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
