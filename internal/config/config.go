package config

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type HTTPServer struct {
	Addr string `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
}

type InventoryAPI struct {
	BaseURL string        `yaml:"API_BASE_URL" env:"API_BASE_URL" env-required:"true"`
	Timeout time.Duration `yaml:"API_TIMEOUT" env:"API_TIMEOUT" env-default:"10s"`
}

// Session selects where the bearer token lives. Backend "file" keeps it on
// disk next to the terminal; "redis" shares it across terminals; "memory"
// forgets it on restart.
type Session struct {
	Backend  string `yaml:"SESSION_BACKEND" env:"SESSION_BACKEND" env-default:"file"`
	FilePath string `yaml:"SESSION_FILE" env:"SESSION_FILE" env-default:".counterdesk-session"`
	Redis    Redis  `yaml:"redis"`
}

type Redis struct {
	Host     string        `yaml:"REDIS_HOST" env:"REDIS_HOST"`
	Username string        `yaml:"REDIS_USER" env:"REDIS_USER"`
	Password string        `yaml:"REDIS_PASSWORD" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"REDIS_DB" env:"REDIS_DB" env-default:"0"`
	TTL      time.Duration `yaml:"REDIS_TTL" env:"REDIS_TTL" env-default:"12h"`
}

type Telemetry struct {
	OTLPEndpoint string `yaml:"OTLP_ENDPOINT" env:"OTLP_ENDPOINT" env-default:""`
}

type Config struct {
	Env          string `yaml:"env" env:"ENV" env-required:"true"`
	HTTPServer   `yaml:"http_server"`
	InventoryAPI InventoryAPI `yaml:"inventory_api"`
	Session      Session      `yaml:"session"`
	Telemetry    Telemetry    `yaml:"telemetry"`
}

func MustLoad() *Config {

	var configPath string

	configPath = os.Getenv("CONFIG_PATH")

	if configPath == "" {

		flags := flag.String("config", "", "gets the config flag value")

		flag.Parse()

		configPath = *flags

		if configPath == "" {
			log.Fatal("Config path is not set")
		}

	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", configPath)
	}

	var cfg Config

	err := cleanenv.ReadConfig(configPath, &cfg)

	if err != nil {
		log.Fatalf("can not read config file: %s", err.Error())
	}

	return &cfg

}

func (r *Redis) Addr() string {
	return r.Host
}
