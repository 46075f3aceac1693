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
		Env      string
		AppName  string
		Build    string
		Debug    bool
		TestMode bool

		SecretKey    []byte
		RollbarToken string

		Database DatabaseConfig
		Server   ServerConfig
	}

	DatabaseConfig struct {
		// Path is the location of the bolt data file.
		Path string
	}

	ServerConfig struct {
		Host               string
		Addr               string
		JWTExpirationDelta time.Duration
		ShutdownTimeout    time.Duration
	}
)

// NewConfig loads the app configuration from defaults, an optional
// `config/.env.<env>` file and `<ENV>`-prefixed environment variables.
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "Darasa")
	conf.SetDefault("build", "dev")
	conf.SetDefault("secretKey", "w3=ak%2fu)d$yb#0v+p&5s!hqz(x_8gm4j^c7r*n1le9to6i")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("databasePath", filepath.Join("data", "darasa.db"))
	conf.SetDefault("serverHost", "localhost")
	conf.SetDefault("serverAddr", ":8000")
	conf.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("shutdownTimeout", 5*time.Second)

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err = godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Env:          env,
		AppName:      conf.GetString("appName"),
		Build:        conf.GetString("build"),
		Debug:        conf.GetBool("debug"),
		TestMode:     env == "TEST",
		SecretKey:    []byte(conf.GetString("secretKey")),
		RollbarToken: conf.GetString("rollbarToken"),
		Database: DatabaseConfig{
			Path: conf.GetString("databasePath"),
		},
		Server: ServerConfig{
			Host:               conf.GetString("serverHost"),
			Addr:               conf.GetString("serverAddr"),
			JWTExpirationDelta: conf.GetDuration("jwtExpirationDelta"),
			ShutdownTimeout:    conf.GetDuration("shutdownTimeout"),
		},
	}
}
