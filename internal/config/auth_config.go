package config

import "time"

type AuthConfig interface {
	GetJWTSecret() []byte
	GetRefreshTokenLength() int
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
}

type Auth struct{}

var _ AuthConfig = Auth{}

func (Auth) GetJWTSecret() []byte {
	return []byte(GetEnv("JWT_SECRET", "dev-only-secret"))
}

func (Auth) GetRefreshTokenLength() int {
	return 32 // 32 bytes = 256 bits
}

func (Auth) GetAccessTokenExpiry() time.Duration {
	return 15 * time.Minute
}

func (Auth) GetRefreshTokenExpiry() time.Duration {
	return 7 * 24 * time.Hour // 7 days
}
