package config

import (
	"fmt"
	"os"
	"reflect"
	"sync"
)

var cfg *Config
var once sync.Once

// Config is the configuration for the application
type Config struct {
	Server
	PostgreSQL
	Payment
	Auth
	AMQP
	Process
}

// Server is the configuration for the HTTP server
type Server struct {
	Port string `env:"PORT" envDefault:"8080"`
}

// Addr returns the address for the server
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%s", "0.0.0.0", s.Port)
}

// PostgreSQL is the configuration for the database
type PostgreSQL struct {
	Driver          string `env:"DB_DRIVER" envDefault:"postgres"`
	Host            string `env:"DB_HOST" envDefault:"localhost"`
	Port            string `env:"DB_PORT" envDefault:"5432"`
	Database        string `env:"DB_DATABASE" envDefault:"fundlane"`
	Username        string `env:"DB_USERNAME" envDefault:"fundlane"`
	Password        string `env:"DB_PASSWORD" envDefault:"fundlane"`
	SSLMode         string `env:"DB_SSLMODE" envDefault:"disable"`
	MaxConnAttempts string `env:"DB_MAX_CONN_ATTEMPTS" envDefault:"5"`
}

// DSN returns the DSN for the database
func (c PostgreSQL) DSN() string {
	return fmt.Sprintf("%s://%s:%s@%s:%s/%s?sslmode=%s",
		c.Driver,
		c.Username,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
		c.SSLMode,
	)
}

// Payment is the configuration for the payment provider integration.
// The secret signs settlement callbacks and must match the provider dashboard.
type Payment struct {
	ProviderBaseURL string `env:"PAYMENT_PROVIDER_BASE_URL" envDefault:"https://api.razorpay.com"`
	ProviderKeyID   string `env:"PAYMENT_PROVIDER_KEY_ID" envDefault:""`
	ProviderSecret  string `env:"PAYMENT_PROVIDER_SECRET" envDefault:""`
	OrderTTLMinutes string `env:"PAYMENT_ORDER_TTL_MINUTES" envDefault:"60"`
}

// Auth is the configuration for bearer-token authentication
type Auth struct {
	JWTSecret string `env:"JWT_SECRET" envDefault:""`
}

// AMQP is the configuration for the event broker
type AMQP struct {
	URL      string `env:"AMQP_URL" envDefault:""`
	Exchange string `env:"AMQP_EXCHANGE" envDefault:"fundlane.events"`
}

// Process is the configuration for scheduled background jobs
type Process struct {
	ExpireSchedule    string `env:"ORDER_EXPIRY_SCHEDULE" envDefault:"*/10 * * * *"`
	ReconcileSchedule string `env:"RECONCILE_SCHEDULE" envDefault:"0 * * * *"`
}

// Load loads the configuration from environment variables
func Load() *Config {
	once.Do(func() {
		cfg = &Config{}
		cfgType := reflect.TypeOf(*cfg)
		cfgValue := reflect.ValueOf(cfg).Elem()

		for i := 0; i < cfgType.NumField(); i++ {
			field := cfgType.Field(i)
			fieldValue := cfgValue.Field(i)
			for j := 0; j < field.Type.NumField(); j++ {
				subField := field.Type.Field(j)
				envVar := subField.Tag.Get("env")
				envDefault := subField.Tag.Get("envDefault")
				value := getEnv(envVar, envDefault)

				fieldValue.Field(j).SetString(value)
			}
		}
	})

	return cfg
}

// getEnv retrieves the value of the environment variable named by the key or returns the defaultValue if not set
func getEnv(key, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = defaultValue
	}
	return value
}
