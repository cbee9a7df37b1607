package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type StorageConfig struct {
	Dir               string        `yaml:"dir" validate:"required|unixPath"`
	SyncURL           string        `yaml:"syncUrl"`
	SyncTimeout       time.Duration `yaml:"syncTimeout"`
	SyncFlushInterval time.Duration `yaml:"syncFlushInterval"`
}

type DashboardConfig struct {
	TickInterval   time.Duration `yaml:"tickInterval" validate:"required|min:1"`
	DefaultColumns int           `yaml:"defaultColumns" validate:"uint"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName   string
	Debug     bool
	Path      string
	WebServer Server          `yaml:"webServer"`
	Storage   StorageConfig   `yaml:"storage"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Logger    LoggerConfig    `yaml:"logger"`
	Cache     CacheConfig     `yaml:"cache"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}
