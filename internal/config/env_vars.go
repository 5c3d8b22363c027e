package config

import (
	"fmt"
	"os"
)

const (
	portEnvVar    = "PORT"
	appNameVar    = "APP_NAME"
	dataFolderVar = "DATA_FOLDER"
	seedFileVar   = "SEED_FILE"
)

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDataFolder() string
	GetSeedFile() string
	GetEnv() string
}

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Job Board")
}

// GetDataFolder returns the folder used for durable client state
// (stored credentials live here).
func (EnvVars) GetDataFolder() string {
	return GetEnv(dataFolderVar, "./data")
}

// GetSeedFile returns the path of the YAML fixture the development
// server loads companies and jobs from. Empty disables seeding.
func (EnvVars) GetSeedFile() string {
	return GetEnv(seedFileVar, "")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
