package config

import (
	"log"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Application ApplicationConfig `mapstructure:"application"`
	Postgres    PostgresConfig    `mapstructure:"postgres"`
	Redis       RedisConfig       `mapstructure:"redis"`
	AMQP        AMQPConfig        `mapstructure:"amqp"`
	JWT         JWTConfig         `mapstructure:"jwt"`
	MediaStore  MediaStoreConfig  `mapstructure:"mediastore"`
	Monitoring  MonitoringConfig  `mapstructure:"monitoring"`
	CORS        CORSConfig        `mapstructure:"cors"`
}

type ApplicationConfig struct {
	Name        string        `mapstructure:"name"`
	Environment string        `mapstructure:"environment"`
	Port        int           `mapstructure:"port"`
	Debug       bool          `mapstructure:"debug"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type PostgresConfig struct {
	DSN          string        `mapstructure:"dsn"`
	MaxOpenConns int           `mapstructure:"max_open_conns"`
	MaxIdleConns int           `mapstructure:"max_idle_conns"`
	MaxLifetime  time.Duration `mapstructure:"max_lifetime"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AMQPConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

type JWTConfig struct {
	PrivateKey string `mapstructure:"private_key"`
	PublicKey  string `mapstructure:"public_key"`
}

type MediaStoreConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	BasicAuthKey string `mapstructure:"basic_auth_key"`
}

type MonitoringConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	MaxAge           int      `mapstructure:"max_age"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

var (
	once sync.Once
	c    *Config
)

// Get loads the configuration exactly once for the whole process.
func Get() *Config {
	once.Do(func() {
		v := viper.New()
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./")
		v.AddConfigPath("./deploy/")
		v.AddConfigPath("/etc/sf-order/")

		v.SetEnvPrefix("SFORDER")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()

		v.SetDefault("application.name", "sf-order")
		v.SetDefault("application.environment", "development")
		v.SetDefault("application.port", 9000)
		v.SetDefault("application.timeout", 30*time.Second)
		v.SetDefault("amqp.exchange", "sf-order")

		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				log.Fatalf("config: %v", err)
			}
		}

		cfg := &Config{}
		if err := v.Unmarshal(cfg); err != nil {
			log.Fatalf("config: %v", err)
		}

		c = cfg
	})

	return c
}
