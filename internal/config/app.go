package config

import (
	"log"
	"os"
	"sync"
	"time"
)

type AppConfig struct {
	Name     string
	Env      string
	Port     string
	BaseURL  string
	TimeZone string
	PageSize int
}

var (
	appConfig *AppConfig
	appOnce   sync.Once
)

func LoadAppConfig() *AppConfig {
	appOnce.Do(func() {
		env := os.Getenv("APP_ENV")
		if env == "" {
			env = "development"
			log.Printf("Warning: APP_ENV not set, defaulting to %s", env)
		}
		appConfig = &AppConfig{
			Name:     getEnv("APP_NAME", "notice-radar"),
			Env:      env,
			Port:     getEnv("APP_PORT", ":8080"),
			BaseURL:  os.Getenv("APP_URL"),
			TimeZone: getEnv("APP_TIMEZONE", "Asia/Seoul"),
			PageSize: getEnvInt("PAGE_SIZE", 50),
		}
	})
	return appConfig
}

func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}

// Location is the zone D-day values are computed in. Falls back to the
// process local zone when the name is unknown.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		log.Printf("Warning: unknown APP_TIMEZONE %q, using local time", c.TimeZone)
		return time.Local
	}
	return loc
}
