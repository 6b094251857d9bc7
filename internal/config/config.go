package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenAddr   string
	UserdataFile string
	ProjectsFile string

	CookieHashKey  []byte // base64 in the environment
	CookieBlockKey []byte

	SessionTTL time.Duration

	DevMode bool
}

func FromEnv() (Config, error) {
	cfg := Config{
		ListenAddr:   envDefault("LISTEN_ADDR", ":8080"),
		UserdataFile: envDefault("USERDATA_FILE", "userdata.json"),
		ProjectsFile: envDefault("PROJECTS_FILE", "projects.json"),
		DevMode:      strings.TrimSpace(os.Getenv("DEV_MODE")) == "1",
	}

	ttlHours, err := strconv.Atoi(envDefault("SESSION_TTL_HOURS", "24"))
	if err != nil || ttlHours < 1 {
		return Config{}, fmt.Errorf("invalid SESSION_TTL_HOURS")
	}
	cfg.SessionTTL = time.Duration(ttlHours) * time.Hour

	cfg.CookieHashKey, err = mustB64("COOKIE_HASH_KEY")
	if err != nil {
		return Config{}, err
	}
	cfg.CookieBlockKey, err = mustB64("COOKIE_BLOCK_KEY")
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func envDefault(k, d string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return d
	}
	return v
}

func mustB64(k string) ([]byte, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return nil, fmt.Errorf("%s is required (base64, see `projecthub keys`)", k)
	}
	if b, err := base64.StdEncoding.DecodeString(v); err == nil {
		return b, nil
	}
	b, err := base64.RawStdEncoding.DecodeString(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", k, err)
	}
	return b, nil
}
