package config

import (
	"time"
)

type StorageConfig struct {
	Region          string        `yaml:"region"`
	Bucket          string        `yaml:"bucket"`
	CDNDomain       string        `yaml:"cdn_domain"`
	KYCPrefix       string        `yaml:"kyc_prefix"`
	PresignedExpiry time.Duration `yaml:"presigned_expiry"`
	MaxDocumentSize int64         `yaml:"max_document_size"`
}

func loadStorageConfig() *StorageConfig {
	return &StorageConfig{
		Region:          getEnv("AWS_REGION", "eu-west-1"),
		Bucket:          getEnv("S3_BUCKET", "swapcash-kyc"),
		CDNDomain:       getEnv("S3_CDN_DOMAIN", ""),
		KYCPrefix:       getEnv("S3_KYC_PREFIX", "kyc"),
		PresignedExpiry: getEnvAsDuration("S3_PRESIGNED_EXPIRY", 15*time.Minute),
		MaxDocumentSize: getEnvAsInt64("KYC_MAX_DOCUMENT_SIZE", 10*1024*1024),
	}
}
