package core

import (
	"log"
	"net"
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
		Host                      string
		Port                      string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
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

	GatewayConfig struct {
		BaseURL   string
		SecretKey string
	}

	QuestionServiceConfig struct {
		BaseURL string
		Timeout time.Duration
	}

	Config struct {
		Debug    bool
		TestMode bool
		Env      string
		Build    string

		AppName         string
		SecretKey       string
		FrontendBaseURL string

		DefaultFromEmail mail.Address
		SendgridApiKey   string
		RollbarToken     string

		VerificationTimeoutDelta  time.Duration
		PasswordResetTimeoutDelta time.Duration

		Server          ServerConfig
		Database        DatabaseConfig
		Kora            GatewayConfig
		Paystack        GatewayConfig
		QuestionService QuestionServiceConfig
	}
)

func (c ServerConfig) Address() string   { return net.JoinHostPort(c.Host, c.Port) }
func (c DatabaseConfig) Address() string { return net.JoinHostPort(c.Host, c.Port) }

// LoadConfig reads configuration from the environment (and an optional
// config/.env.<env> file) into an explicit Config. Time-dependent values
// (eg. payment dates) are never frozen here; components compute them per call.
func LoadConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "LegacyBuilder")
	v.SetDefault("secretKey", "q0j5-top)xcb$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	v.SetDefault("frontendBaseURL", "https://legacy-builder.vercel.app")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("jwtExpirationDelta", 24*time.Hour)
	v.SetDefault("jwtRefreshExpirationDelta", 4*time.Hour)
	v.SetDefault("verificationTimeoutDelta", 24*time.Hour)
	v.SetDefault("passwordResetTimeoutDelta", 15*time.Minute)
	v.SetDefault("serverHost", "0.0.0.0")
	v.SetDefault("serverPort", "8000")
	v.SetDefault("serverDebugHost", "0.0.0.0:4000")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("dbEngine", "postgres")
	v.SetDefault("dbName", "legacybuilder")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", "5432")
	v.SetDefault("koraBaseURL", "https://api.korapay.com")
	v.SetDefault("paystackBaseURL", "https://api.paystack.co")
	v.SetDefault("questionServiceBaseURL", "https://questionapp-t8bu.onrender.com")
	v.SetDefault("questionServiceTimeout", 8*time.Second)

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Debug:    v.GetBool("debug"),
		TestMode: v.GetBool("testMode"),
		Env:      env,
		Build:    v.GetString("build"),

		AppName:         v.GetString("appName"),
		SecretKey:       v.GetString("secretKey"),
		FrontendBaseURL: v.GetString("frontendBaseURL"),

		DefaultFromEmail: mail.Address{Name: v.GetString("appName"), Address: v.GetString("defaultFromEmail")},
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		RollbarToken:     v.GetString("rollbarToken"),

		VerificationTimeoutDelta:  v.GetDuration("verificationTimeoutDelta"),
		PasswordResetTimeoutDelta: v.GetDuration("passwordResetTimeoutDelta"),

		Server: ServerConfig{
			Host:                      v.GetString("serverHost"),
			Port:                      v.GetString("serverPort"),
			DebugHost:                 v.GetString("serverDebugHost"),
			ShutdownTimeout:           v.GetDuration("serverShutdownTimeout"),
			JWTExpirationDelta:        v.GetDuration("jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("jwtRefreshExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("dbEngine"),
			Name:          v.GetString("dbName"),
			User:          v.GetString("dbUser"),
			Password:      v.GetString("dbPassword"),
			AdminUser:     v.GetString("dbAdminUser"),
			AdminPassword: v.GetString("dbAdminPassword"),
			Host:          v.GetString("dbHost"),
			Port:          v.GetString("dbPort"),
			DisableTLS:    v.GetBool("dbDisableTLS"),
		},
		Kora: GatewayConfig{
			BaseURL:   v.GetString("koraBaseURL"),
			SecretKey: v.GetString("korapaySecretKey"),
		},
		Paystack: GatewayConfig{
			BaseURL:   v.GetString("paystackBaseURL"),
			SecretKey: v.GetString("paystackSecretKey"),
		},
		QuestionService: QuestionServiceConfig{
			BaseURL: v.GetString("questionServiceBaseURL"),
			Timeout: v.GetDuration("questionServiceTimeout"),
		},
	}
}
