package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvHelpers(t *testing.T) {
	tests := map[string]struct {
		env      map[string]string
		validate func(*testing.T)
	}{
		"fallbacks when unset": {
			env: map[string]string{},
			validate: func(t *testing.T) {
				assert.Equal(t, "def", getEnv("NR_TEST_STRING", "def"))
				assert.Equal(t, 7, getEnvInt("NR_TEST_INT", 7))
				assert.Equal(t, time.Second, getEnvDuration("NR_TEST_DURATION", time.Second))
			},
		},
		"values are parsed": {
			env: map[string]string{
				"NR_TEST_STRING":   " value ",
				"NR_TEST_INT":      "20",
				"NR_TEST_DURATION": "45s",
			},
			validate: func(t *testing.T) {
				assert.Equal(t, "value", getEnv("NR_TEST_STRING", "def"))
				assert.Equal(t, 20, getEnvInt("NR_TEST_INT", 7))
				assert.Equal(t, 45*time.Second, getEnvDuration("NR_TEST_DURATION", time.Second))
			},
		},
		"invalid values fall back": {
			env: map[string]string{
				"NR_TEST_INT":      "twenty",
				"NR_TEST_DURATION": "-5s",
			},
			validate: func(t *testing.T) {
				assert.Equal(t, 7, getEnvInt("NR_TEST_INT", 7))
				assert.Equal(t, time.Second, getEnvDuration("NR_TEST_DURATION", time.Second))
			},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			tc.validate(t)
		})
	}
}

func TestAppConfigLocation(t *testing.T) {
	c := &AppConfig{TimeZone: "Asia/Seoul"}
	assert.Equal(t, "Asia/Seoul", c.Location().String())

	bad := &AppConfig{TimeZone: "Mars/Olympus"}
	assert.Equal(t, time.Local, bad.Location())
}
