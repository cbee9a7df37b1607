package providers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/lockedloop/tempus-fugit/internal/structures"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("logger.level", "TEMPUS_LOG_LEVEL")
	viper.BindEnv("dashboard.tickInterval", "TEMPUS_TICK_INTERVAL")
	viper.BindEnv("storage.syncUrl", "TEMPUS_SYNC_URL")
	viper.BindEnv("storage.syncTimeout", "TEMPUS_SYNC_TIMEOUT")
	viper.BindEnv("cache.enabled", "TEMPUS_CACHE_ENABLED")
	viper.BindEnv("cache.size", "TEMPUS_CACHE_SIZE")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "TempusFugit"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
