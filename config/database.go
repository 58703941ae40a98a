package config

import "os"

type DatabaseConfig struct {
	Path string
}

func GetDatabaseConfig() (*DatabaseConfig, error) {
	path := os.Getenv("PIPELINE_DB_PATH")
	if path == "" {
		path = "pipeline.db"
	}

	return &DatabaseConfig{
		Path: path,
	}, nil
}
