package core

import (
	"fmt"
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host            string
		Address         string
		DebugHost       string
		ShutdownTimeout time.Duration
		DisableReqLogs  bool
	}

	AuthConfig struct {
		CookieName string
		SessionTTL time.Duration
		DemoBypass bool
	}

	DatabaseConfig struct {
		Engine     string // memory | sqlite | postgres | bolt
		Path       string // sqlite & bolt
		Host       string
		Port       int
		Name       string
		User       string
		Password   string
		DisableTLS bool
	}

	EmailConfig struct {
		DefaultFrom    string
		SendgridApiKey string
	}

	Config struct {
		Env          string
		Build        string
		AppName      string
		Debug        bool
		TestMode     bool
		SeedDemo     bool
		SecretKey    string
		RollbarToken string
		WorkDir      string

		Server   ServerConfig
		Auth     AuthConfig
		Database DatabaseConfig
		Email    EmailConfig
	}
)

// Address returns the "host:port" of a networked database server.
func (c DatabaseConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsSQL reports whether the configured engine is backed by database/sql.
func (c DatabaseConfig) IsSQL() bool {
	return c.Engine == "sqlite" || c.Engine == "postgres"
}

// DefaultFromEmail parses the configured sender address.
func (c *Config) DefaultFromEmail() mail.Address {
	addr, err := mail.ParseAddress(c.Email.DefaultFrom)
	if err != nil {
		return mail.Address{Name: c.AppName, Address: "noreply@localhost"}
	}
	if addr.Name == "" {
		addr.Name = c.AppName
	}
	return *addr
}

// NewConfig loads the configuration from defaults, an optional `config/.env.<env>` file and the environment.
// Environment variables are prefixed with the upper-cased env name, eg. PROD_SECRETKEY.
func NewConfig() *Config {
	v := viper.New()

	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("build", "dev")
	v.SetDefault("appName", "Campus Tasks")
	v.SetDefault("seedDemo", true)
	v.SetDefault("secretKey", "k3v9-xn2)jq$+41=ph&uobz7(m!c)#*r5(#wd8^$tafe6lsq")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.disableReqLogs", false)

	v.SetDefault("auth.cookieName", "auth-token")
	v.SetDefault("auth.sessionTTL", 7*24*time.Hour)
	v.SetDefault("auth.demoBypass", true)

	v.SetDefault("database.engine", "sqlite")
	v.SetDefault("database.path", filepath.Join("data", "university.db"))
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "university")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.disableTLS", false)

	v.SetDefault("email.defaultFrom", "noreply@localhost")
	v.SetDefault("email.sendgridApiKey", "")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
		v.SetDefault("seedDemo", false)
		v.SetDefault("database.engine", "memory")
	case "QA", "PROD":
		v.SetDefault("debug", false)
		v.SetDefault("seedDemo", false)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("config.os.Getwd(): %v", err)
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Env:          env,
		Build:        v.GetString("build"),
		AppName:      v.GetString("appName"),
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		SeedDemo:     v.GetBool("seedDemo"),
		SecretKey:    v.GetString("secretKey"),
		RollbarToken: v.GetString("rollbarToken"),
		WorkDir:      wd,
		Server: ServerConfig{
			Host:            v.GetString("server.host"),
			Address:         v.GetString("server.address"),
			DebugHost:       v.GetString("server.debugHost"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
			DisableReqLogs:  v.GetBool("server.disableReqLogs"),
		},
		Auth: AuthConfig{
			CookieName: v.GetString("auth.cookieName"),
			SessionTTL: v.GetDuration("auth.sessionTTL"),
			DemoBypass: v.GetBool("auth.demoBypass"),
		},
		Database: DatabaseConfig{
			Engine:     strings.ToLower(v.GetString("database.engine")),
			Path:       v.GetString("database.path"),
			Host:       v.GetString("database.host"),
			Port:       v.GetInt("database.port"),
			Name:       v.GetString("database.name"),
			User:       v.GetString("database.user"),
			Password:   v.GetString("database.password"),
			DisableTLS: v.GetBool("database.disableTLS"),
		},
		Email: EmailConfig{
			DefaultFrom:    v.GetString("email.defaultFrom"),
			SendgridApiKey: v.GetString("email.sendgridApiKey"),
		},
	}
}

// NewTestConfig returns a Config suitable for tests: in-memory storage, no demo seed, no outbound services.
func NewTestConfig() *Config {
	return &Config{
		Env:       "TEST",
		Build:     "test",
		AppName:   "Campus Tasks",
		TestMode:  true,
		SecretKey: "secret",
		Server: ServerConfig{
			Address:         ":0",
			ShutdownTimeout: time.Second,
			DisableReqLogs:  true,
		},
		Auth: AuthConfig{
			CookieName: "auth-token",
			SessionTTL: 7 * 24 * time.Hour,
			DemoBypass: true,
		},
		Database: DatabaseConfig{Engine: "memory"},
		Email:    EmailConfig{DefaultFrom: "noreply@localhost"},
	}
}
