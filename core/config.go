package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		AppName  string
		Env      string // DEV (default), TEST, QA, PROD
		Debug    bool
		TestMode bool
		WorkDir  string

		API      APIConfig
		Keystore KeystoreConfig
		Rollbar  RollbarConfig
	}

	APIConfig struct {
		BaseURL string
		Timeout time.Duration
	}

	KeystoreConfig struct {
		Backend   string // "file" (default) | "redis"
		Path      string // file backend: path to the keystore file
		RedisAddr string
		RedisDB   int
	}

	RollbarConfig struct {
		Token string
	}
)

// NewConfig loads configuration from defaults, an optional config/.env.<env>
// file and <ENV>_-prefixed environment variables, in increasing precedence.
func NewConfig() *Config {
	conf := viper.New()
	conf.SetTypeByDefaultValue(true)

	// defaults
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "Darasa")
	conf.SetDefault("apiBaseUrl", "http://localhost:8000/api")
	conf.SetDefault("apiTimeout", 30*time.Second)
	conf.SetDefault("keystoreBackend", "file")
	conf.SetDefault("keystorePath", defaultKeystorePath())
	conf.SetDefault("keystoreRedisAddr", "localhost:6379")
	conf.SetDefault("keystoreRedisDb", 0)
	conf.SetDefault("rollbarToken", "")

	env := os.Getenv("ENV")
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err = godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		AppName:  conf.GetString("appName"),
		Env:      env,
		Debug:    conf.GetBool("debug"),
		TestMode: conf.GetBool("testMode"),
		WorkDir:  Getwd(),
		API: APIConfig{
			BaseURL: conf.GetString("apiBaseUrl"),
			Timeout: conf.GetDuration("apiTimeout"),
		},
		Keystore: KeystoreConfig{
			Backend:   conf.GetString("keystoreBackend"),
			Path:      conf.GetString("keystorePath"),
			RedisAddr: conf.GetString("keystoreRedisAddr"),
			RedisDB:   conf.GetInt("keystoreRedisDb"),
		},
		Rollbar: RollbarConfig{
			Token: conf.GetString("rollbarToken"),
		},
	}
}

func defaultKeystorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = Getwd()
	}
	return filepath.Join(dir, "darasa", "keystore.json")
}

// Getwd returns the app's working directory.
func Getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("config.os.Getwd: %v", err)
	}
	return wd
}
