package providers

import (
	"buildwatch/internal/structures"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const AppName = "BuildWatch"

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")

	setDefaults(v)

	v.BindEnv("logger.level", "BW_LOG_LEVEL")
	v.BindEnv("webServer.port", "BW_PORT")
	v.BindEnv("storage.driver", "BW_STORAGE_DRIVER")
	v.BindEnv("storage.filePath", "BW_STORAGE_PATH")
	v.BindEnv("watcher.apiKey", "BW_ITCH_API_KEY")
	v.BindEnv("watcher.titleIds", "BW_TITLE_IDS")
	v.BindEnv("watcher.interval", "BW_POLL_INTERVAL")
	v.BindEnv("notifier.discordWebhookUrl", "BW_DISCORD_WEBHOOK_URL")
	v.BindEnv("auth.jwtSecret", "BW_JWT_SECRET")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	applyMillisInterval(v, "watcher.interval")

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}
	conf.Watcher.TitleIDs = normalizeTitleIDs(conf.Watcher.TitleIDs)

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = AppName
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("webServer.host", "0.0.0.0")
	v.SetDefault("webServer.port", 5000)
	v.SetDefault("storage.driver", "json")
	v.SetDefault("storage.filePath", "db/localstorage.json")
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.mode", 0644)
	v.SetDefault("logger.dir", "logs")
	v.SetDefault("watcher.interval", 10*time.Minute)
	v.SetDefault("watcher.baseUrl", "https://itch.io/api/1")
	v.SetDefault("watcher.requestTimeout", 15*time.Second)
	v.SetDefault("notifier.timeout", 5*time.Second)
	v.SetDefault("auth.issuer", "buildwatch")
	v.SetDefault("auth.tokenTTL", 24*time.Hour)
	v.SetDefault("auth.passwordCost", 10)
	v.SetDefault("rateLimit.loginAttempts", 5)
	v.SetDefault("rateLimit.window", 15*time.Minute)
	v.SetDefault("launcher.instructionTTL", 30*time.Second)
	v.SetDefault("cache.ttl", 5*time.Second)
}

// applyMillisInterval reads a bare integer at key as milliseconds
// ("600000" -> 10m). Duration strings such as "10m" are left to viper.
func applyMillisInterval(v *viper.Viper, key string) {
	ms, err := strconv.ParseInt(strings.TrimSpace(v.GetString(key)), 10, 64)
	if err != nil {
		return
	}
	v.Set(key, time.Duration(ms)*time.Millisecond)
}

// normalizeTitleIDs splits comma separated entries (as they arrive from the
// environment) and drops blanks.
func normalizeTitleIDs(ids []string) []string {
	var out []string
	for _, id := range ids {
		for _, part := range strings.Split(id, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
