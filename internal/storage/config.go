package storage

import (
	"strings"

	"github.com/spf13/viper"
)

// MinIOConfig holds MinIO connection configuration
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	// PublicBaseURL, when set, is used to build plain object URLs instead of presigned ones.
	PublicBaseURL string
}

// LoadMinIOConfig loads MinIO config from the environment (via viper)
func LoadMinIOConfig() *MinIOConfig {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("MINIO_BUCKET", "portfolio")
	v.SetDefault("MINIO_USE_SSL", false)
	return &MinIOConfig{
		Endpoint:      v.GetString("MINIO_ENDPOINT"),
		AccessKey:     v.GetString("MINIO_ACCESS_KEY"),
		SecretKey:     v.GetString("MINIO_SECRET_KEY"),
		UseSSL:        v.GetBool("MINIO_USE_SSL"),
		Bucket:        v.GetString("MINIO_BUCKET"),
		PublicBaseURL: strings.TrimRight(v.GetString("MINIO_PUBLIC_URL"), "/"),
	}
}
