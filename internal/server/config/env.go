package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// envPrefix namespaces every variable, e.g. GOPHAUTH_TOKEN_SECRET_KEY.
const envPrefix = "GOPHAUTH"

// EnvConfig mirrors Config for envconfig. Unset variables stay at their zero
// value and do not override earlier sources.
type EnvConfig struct {
	EndpointAddrGRPC      string        `envconfig:"ENDPOINT_ADDR_GRPC"`
	MetricsAddr           string        `envconfig:"METRICS_ADDR"`
	DatabaseDSN           string        `envconfig:"DATABASE_DSN"`
	HashSecretKey         string        `envconfig:"HASH_SECRET_KEY"`
	TokenSecretKey        string        `envconfig:"TOKEN_SECRET_KEY"`
	TokenValidityDuration time.Duration `envconfig:"TOKEN_VALIDITY_DURATION"`
	HashMemoryKiB         uint32        `envconfig:"HASH_MEMORY_KIB"`
	HashIterations        uint32        `envconfig:"HASH_ITERATIONS"`
	HashParallelism       uint8         `envconfig:"HASH_PARALLELISM"`
	HashWorkers           int           `envconfig:"HASH_WORKERS"`
	S3RootUser            string        `envconfig:"S3_ROOT_USER"`
	S3RootPassword        string        `envconfig:"S3_ROOT_PASSWORD"`
	S3Bucket              string        `envconfig:"S3_BUCKET"`
	S3Region              string        `envconfig:"S3_REGION"`
	S3BaseEndpoint        string        `envconfig:"S3_BASE_ENDPOINT"`
	AvatarURLValidity     time.Duration `envconfig:"AVATAR_URL_VALIDITY"`
	LogLevel              string        `envconfig:"LOG_LEVEL"`
}

// parseEnv overlays GOPHAUTH_* environment variables. A malformed value
// (e.g. a non-numeric HASH_WORKERS) panics.
func parseEnv(config *Config) {
	e := &EnvConfig{}
	if err := envconfig.Process(envPrefix, e); err != nil {
		panic(err)
	}
	e.apply(config)
}

func (e *EnvConfig) apply(config *Config) {
	setNonZero(&config.EndpointAddrGRPC, e.EndpointAddrGRPC)
	setNonZero(&config.MetricsAddr, e.MetricsAddr)
	setNonZero(&config.DatabaseDSN, e.DatabaseDSN)
	setNonZero(&config.HashSecretKey, e.HashSecretKey)
	setNonZero(&config.TokenSecretKey, e.TokenSecretKey)
	setNonZero(&config.TokenValidityDuration, e.TokenValidityDuration)
	setNonZero(&config.HashMemoryKiB, e.HashMemoryKiB)
	setNonZero(&config.HashIterations, e.HashIterations)
	setNonZero(&config.HashParallelism, e.HashParallelism)
	setNonZero(&config.HashWorkers, e.HashWorkers)
	setNonZero(&config.S3RootUser, e.S3RootUser)
	setNonZero(&config.S3RootPassword, e.S3RootPassword)
	setNonZero(&config.S3Bucket, e.S3Bucket)
	setNonZero(&config.S3Region, e.S3Region)
	setNonZero(&config.S3BaseEndpoint, e.S3BaseEndpoint)
	setNonZero(&config.AvatarURLValidity, e.AvatarURLValidity)
	setNonZero(&config.LogLevel, e.LogLevel)
}

func setNonZero[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}
