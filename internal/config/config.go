package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	ClientConfig
	AuthConfig
	CorsConfig
}

type mainConfig struct {
	EnvVars
	Client
	Auth
	Cors
}

func New() Config {
	return mainConfig{}
}

// Load reads environment variables from a .env file if one exists.
// Missing files are not an error; deployments configure the environment directly.
func Load(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}
