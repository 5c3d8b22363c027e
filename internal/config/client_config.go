package config

import "time"

type ClientConfig interface {
	GetAPIBaseURL() string
	GetRequestTimeout() time.Duration
}

type Client struct{}

var _ ClientConfig = Client{}

func (Client) GetAPIBaseURL() string {
	return GetEnv("API_BASE_URL", "http://localhost:8080/api")
}

func (Client) GetRequestTimeout() time.Duration {
	raw := GetEnv("REQUEST_TIMEOUT", "")
	if raw == "" {
		return 30 * time.Second
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 30 * time.Second
	}
	return d
}
