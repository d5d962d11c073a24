package config

import (
	"os"
	"strconv"
	"time"
)

var JWTSecret []byte
var JWTExpiration time.Duration

func init() {
	InitJWT()
}

// InitJWT reads the token settings. main calls it again after .env is loaded.
func InitJWT() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "your-secret-key-change-this-in-production"
	}
	JWTSecret = []byte(secret)

	JWTExpiration = 30 * 24 * time.Hour
	if hours, err := strconv.Atoi(os.Getenv("JWT_EXPIRATION_HOURS")); err == nil && hours > 0 {
		JWTExpiration = time.Duration(hours) * time.Hour
	}
}
