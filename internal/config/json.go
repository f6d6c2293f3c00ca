package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// JsonConfig is the on-disk shape of the configuration file. Empty fields
// leave the current value untouched.
type JsonConfig struct {
	Driver         string `json:"driver"`
	DatabaseDSN    string `json:"database_dsn"`
	LogLevel       string `json:"log_level"`
	S3Bucket       string `json:"s3_bucket"`
	S3Region       string `json:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint"`
	S3AccessKey    string `json:"s3_access_key"`
	S3SecretKey    string `json:"s3_secret_key"`
	ExportPrefix   string `json:"export_prefix"`
}

func applyJSON(config *Config, path string) error {
	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&config.Driver, c.Driver)
	set(&config.DatabaseDSN, c.DatabaseDSN)
	set(&config.LogLevel, c.LogLevel)
	set(&config.S3Bucket, c.S3Bucket)
	set(&config.S3Region, c.S3Region)
	set(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	set(&config.S3AccessKey, c.S3AccessKey)
	set(&config.S3SecretKey, c.S3SecretKey)
	set(&config.ExportPrefix, c.ExportPrefix)
	return nil
}
