package config

import "strings"

type CorsConfig interface {
	GetAllowedOrigins() []string
	GetAllowedMethods() []string
	GetAllowedHeaders() []string
}

type Cors struct{}

var _ CorsConfig = Cors{}

// GetAllowedOrigins returns the SPA origins allowed to call the API.
func (Cors) GetAllowedOrigins() []string {
	raw := GetEnv("ALLOWED_ORIGINS", "http://localhost:3000")
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

func (Cors) GetAllowedMethods() []string {
	return []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
}

func (Cors) GetAllowedHeaders() []string {
	return []string{"Content-Type", "Authorization"}
}
