package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type StorageConfig struct {
	Driver   string `yaml:"driver" validate:"required|in:json,sqlite"`
	FilePath string `yaml:"filePath" validate:"required|unixPath"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type WatcherConfig struct {
	TitleIDs       []string      `yaml:"titleIds"`
	Interval       time.Duration `yaml:"interval" validate:"required|min:1"`
	APIKey         string        `yaml:"apiKey"`
	BaseURL        string        `yaml:"baseUrl" validate:"required|fullUrl"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
}

type NotifierConfig struct {
	DiscordWebhookURL string        `yaml:"discordWebhookUrl"`
	Timeout           time.Duration `yaml:"timeout"`
}

type AuthConfig struct {
	JWTSecret    string        `yaml:"jwtSecret" validate:"required|minLen:16"`
	Issuer       string        `yaml:"issuer"`
	TokenTTL     time.Duration `yaml:"tokenTTL" validate:"required|min:1"`
	PasswordCost int           `yaml:"passwordCost"`
	AdminUsers   []string      `yaml:"adminUsers"`
	AdminTokens  []string      `yaml:"adminTokens"`
}

type RateLimitConfig struct {
	LoginAttempts int           `yaml:"loginAttempts"`
	Window        time.Duration `yaml:"window"`
}

type LauncherConfig struct {
	InstructionTTL time.Duration `yaml:"instructionTTL"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type CorsConfig struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

type Config struct {
	AppName   string
	Debug     bool
	Path      string
	WebServer Server          `yaml:"webServer"`
	Storage   StorageConfig   `yaml:"storage"`
	Logger    LoggerConfig    `yaml:"logger"`
	Watcher   WatcherConfig   `yaml:"watcher"`
	Notifier  NotifierConfig  `yaml:"notifier"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rateLimit"`
	Launcher  LauncherConfig  `yaml:"launcher"`
	Cache     CacheConfig     `yaml:"cache"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Cors      CorsConfig      `yaml:"cors"`
}
