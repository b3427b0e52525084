package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/osmnotes/internal/flagx"
	"github.com/dmitrijs2005/osmnotes/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept "24h"
// as well as integer nanoseconds.
type JsonConfig struct {
	DatabaseDSN           string         `json:"database_dsn"`
	SecretKey             string         `json:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	Namespace             string         `json:"namespace"`
	Database              string         `json:"database"`
	MasterKey             string         `json:"master_key"`
	KMSKeyID              string         `json:"kms_key_id"`
	WrappedDataKey        string         `json:"wrapped_data_key"`
	S3RootUser            string         `json:"s3_root_user"`
	S3RootPassword        string         `json:"s3_root_password"`
	S3Bucket              string         `json:"s3_bucket"`
	S3Region              string         `json:"s3_region"`
	S3BaseEndpoint        string         `json:"s3_base_endpoint"`
}

// parseJson overlays config with the file named by -c/-config. Keys missing
// from the file keep their current value. An unreadable or malformed file
// panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{
		DatabaseDSN:           config.DatabaseDSN,
		SecretKey:             config.SecretKey,
		TokenValidityDuration: timex.Duration{Duration: config.TokenValidityDuration},
		Namespace:             config.Namespace,
		Database:              config.Database,
		MasterKey:             config.MasterKey,
		KMSKeyID:              config.KMSKeyID,
		WrappedDataKey:        config.WrappedDataKey,
		S3RootUser:            config.S3RootUser,
		S3RootPassword:        config.S3RootPassword,
		S3Bucket:              config.S3Bucket,
		S3Region:              config.S3Region,
		S3BaseEndpoint:        config.S3BaseEndpoint,
	}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.TokenValidityDuration = c.TokenValidityDuration.Duration
	config.Namespace = c.Namespace
	config.Database = c.Database
	config.MasterKey = c.MasterKey
	config.KMSKeyID = c.KMSKeyID
	config.WrappedDataKey = c.WrappedDataKey
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
}
