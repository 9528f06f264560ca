package config

import (
	"fmt"
	"os"
	"sync"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type DBConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	TimeZone string
	Path     string
}

var (
	dbConfig *DBConfig
	dbOnce   sync.Once
)

func LoadDBConfig() *DBConfig {
	dbOnce.Do(func() {
		dbConfig = &DBConfig{
			Driver:   getEnv("DB_DRIVER", DriverPostgres),
			Host:     os.Getenv("DB_HOST"),
			Port:     os.Getenv("DB_PORT"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			TimeZone: getEnv("APP_TIMEZONE", "Asia/Seoul"),
			Path:     getEnv("DB_PATH", "data/notices.db"),
		}
	})
	return dbConfig
}

// DSN renders the connection string for the configured driver.
func (c *DBConfig) DSN() string {
	if c.Driver == DriverSQLite {
		return fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=on", c.Path)
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.Host,
		c.User,
		c.Password,
		c.Name,
		c.Port,
		c.SSLMode,
		c.TimeZone,
	)
}
