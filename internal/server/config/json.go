package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/dmitrijs2005/gophauth/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "24h" and integer nanoseconds are accepted. Fields
// left out of the file keep their current values.
type JsonConfig struct {
	EndpointAddrGRPC      *string         `json:"endpoint_addr_grpc"`
	MetricsAddr           *string         `json:"metrics_addr"`
	DatabaseDSN           *string         `json:"database_dsn"`
	HashSecretKey         *string         `json:"hash_secret_key"`
	TokenSecretKey        *string         `json:"token_secret_key"`
	TokenValidityDuration *timex.Duration `json:"token_validity_duration"`
	HashMemoryKiB         *uint32         `json:"hash_memory_kib"`
	HashIterations        *uint32         `json:"hash_iterations"`
	HashParallelism       *uint8          `json:"hash_parallelism"`
	HashWorkers           *int            `json:"hash_workers"`
	S3RootUser            *string         `json:"s3_root_user"`
	S3RootPassword        *string         `json:"s3_root_password"`
	S3Bucket              *string         `json:"s3_bucket"`
	S3Region              *string         `json:"s3_region"`
	S3BaseEndpoint        *string         `json:"s3_base_endpoint"`
	AvatarURLValidity     *timex.Duration `json:"avatar_url_validity"`
	LogLevel              *string         `json:"log_level"`
}

// parseJson overlays values from the JSON file named by -c/-config (or
// GOPHAUTH_CONFIG). Nothing happens when no file is configured; an unreadable
// or invalid file panics, as startup cannot continue with a half-read config.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setIf(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setIf(&config.MetricsAddr, c.MetricsAddr)
	setIf(&config.DatabaseDSN, c.DatabaseDSN)
	setIf(&config.HashSecretKey, c.HashSecretKey)
	setIf(&config.TokenSecretKey, c.TokenSecretKey)
	setIf(&config.HashMemoryKiB, c.HashMemoryKiB)
	setIf(&config.HashIterations, c.HashIterations)
	setIf(&config.HashParallelism, c.HashParallelism)
	setIf(&config.HashWorkers, c.HashWorkers)
	setIf(&config.S3RootUser, c.S3RootUser)
	setIf(&config.S3RootPassword, c.S3RootPassword)
	setIf(&config.S3Bucket, c.S3Bucket)
	setIf(&config.S3Region, c.S3Region)
	setIf(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setIf(&config.LogLevel, c.LogLevel)

	if c.TokenValidityDuration != nil {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	if c.AvatarURLValidity != nil {
		config.AvatarURLValidity = c.AvatarURLValidity.Duration
	}
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
