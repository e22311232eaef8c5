package config

import "time"

const devJWTSecret = "your-secret-key-change-this-in-production"

// JWTConfig holds the HS256 signing key and the lifetime of issued tokens.
type JWTConfig struct {
	Secret     []byte
	Expiration time.Duration
}
