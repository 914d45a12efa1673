package core

import (
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type (
	// Config is the application configuration, loaded once at startup and
	// passed down to whoever needs it.
	Config struct {
		Env      string
		Debug    bool
		TestMode bool
		AppName  string
		Build    string

		SecretKey        []byte
		FrontendBaseURL  string
		DefaultFromEmail mail.Address

		SendgridApiKey string
		RollbarToken   string

		PasswordResetTimeoutDelta time.Duration

		Server    ServerConfig
		Database  DatabaseConfig
		Scheduler SchedulerConfig
		Google    GoogleConfig
	}

	ServerConfig struct {
		Host                      string
		Addr                      string
		DebugAddr                 string
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		ShutdownTimeout           time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Host          string
		Port          string
		DisableTLS    bool
	}

	// SchedulerConfig drives the background reminder scheduler.
	// Leader must only be set on a single process per deployment; the
	// scheduler does not start without it.
	SchedulerConfig struct {
		Leader       bool
		Interval     time.Duration
		StartupDelay time.Duration
	}

	GoogleConfig struct {
		ClientID     string
		ClientSecret string
		RedirectURL  string
	}
)

func (c DatabaseConfig) Address() string {
	return c.Host + ":" + c.Port
}

// NewConfig loads the configuration for the current ENV (DEV by default).
// Defaults are set in code; a config/.env.<env> file and environment
// variables (prefixed with the ENV name) override them.
func NewConfig() (*Config, error) {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	v.SetDefault("debug", true)
	v.SetDefault("appName", "Collegia")
	v.SetDefault("build", "dev")
	v.SetDefault("secretKey", "w3lc0me-t0-c0ll3g1a-ch4ng3-m3-1n-pr0d")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromName", "Collegia Team")
	v.SetDefault("defaultFromEmail", "noreply@collegia.app")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.debugAddr", ":4000")
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.jwtRefreshExpirationDelta", 4*time.Hour)
	v.SetDefault("server.shutdownTimeout", 20*time.Second)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.name", "collegia")
	v.SetDefault("database.user", "collegia")
	v.SetDefault("database.password", "collegia")
	v.SetDefault("database.adminUser", "")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("scheduler.leader", true)
	v.SetDefault("scheduler.interval", time.Hour)
	v.SetDefault("scheduler.startupDelay", 5*time.Second)

	v.SetDefault("google.clientID", "")
	v.SetDefault("google.clientSecret", "")
	v.SetDefault("google.redirectURL", "")

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load config/.env.<env> if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err = godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
	}
	v.AutomaticEnv()

	conf := &Config{
		Env:              env,
		Debug:            v.GetBool("debug"),
		TestMode:         env == "TEST",
		AppName:          v.GetString("appName"),
		Build:            v.GetString("build"),
		SecretKey:        []byte(v.GetString("secretKey")),
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		DefaultFromEmail: mail.Address{Name: v.GetString("defaultFromName"), Address: v.GetString("defaultFromEmail")},
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		RollbarToken:     v.GetString("rollbarToken"),

		PasswordResetTimeoutDelta: v.GetDuration("passwordResetTimeoutDelta"),

		Server: ServerConfig{
			Host:                      v.GetString("server.host"),
			Addr:                      v.GetString("server.addr"),
			DebugAddr:                 v.GetString("server.debugAddr"),
			JWTExpirationDelta:        v.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("server.jwtRefreshExpirationDelta"),
			ShutdownTimeout:           v.GetDuration("server.shutdownTimeout"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Scheduler: SchedulerConfig{
			Leader:       v.GetBool("scheduler.leader"),
			Interval:     v.GetDuration("scheduler.interval"),
			StartupDelay: v.GetDuration("scheduler.startupDelay"),
		},
		Google: GoogleConfig{
			ClientID:     v.GetString("google.clientID"),
			ClientSecret: v.GetString("google.clientSecret"),
			RedirectURL:  v.GetString("google.redirectURL"),
		},
	}

	// check upcoming meetings every 2 minutes locally so reminders can
	// actually be observed while developing
	if conf.Debug && !v.InConfig("scheduler.interval") && os.Getenv(env+"_SCHEDULER_INTERVAL") == "" {
		conf.Scheduler.Interval = 2 * time.Minute
	}
	return conf, nil
}
