package config

import (
	"context"
	"errors"
	"os"
)

var ErrNotFound = errors.New("not found")

// Environment variable names recognized across all configuration sources.
// Values set in the environment take precedence over the config file or
// database.
const (
	EnvLabelStudioHost        = "LABEL_STUDIO_HOST"
	EnvLabelStudioAccessToken = "LABEL_STUDIO_ACCESS_TOKEN"
	EnvAWSAccessKeyID         = "AWS_ACCESS_KEY_ID"
	EnvAWSSecretAccessKey     = "AWS_SECRET_ACCESS_KEY"
	EnvAWSSessionToken        = "AWS_SESSION_TOKEN"
	EnvAWSEndpoint            = "AWS_ENDPOINT"
	EnvMinioRootUser          = "MINIO_ROOT_USER"
	EnvMinioRootPassword      = "MINIO_ROOT_PASSWORD"
	EnvGCPRegion              = "GCP_REGION"
)

// S3Settings groups the object storage access parameters used to fetch task
// files from s3:// references.
type S3Settings struct {
	Endpoint     string
	AccessKey    string
	SecretKey    string
	SessionToken string
	UseSSL       bool
}

// IConfig provides the backend configuration. Implementations read it from a
// YAML file, a PostgreSQL settings table, or memory (tests), and all apply
// the environment variable overrides above.
type IConfig interface {
	// Core server settings
	ListenAddr() (string, error)
	ServerName() (string, error)
	ServerVersion() (string, error)
	LogLevel() (string, error)

	// Label Studio connection, used to download task files
	LabelStudioURL() (string, error)
	LabelStudioAccessToken() (string, error)

	// Model selection and versioning
	ModelName() (string, error)
	ModelVersion() (string, error)

	// OCR engine settings
	OCRLanguages() ([]string, error)
	OCRPageSegMode() (int, error)

	// Mounted data directories
	ImagesDir() (string, error)
	PDFDir() (string, error)
	ValidationDir() (string, error)
	TempDir() (string, error)

	// External extraction pipeline invocation (stratigraphy model);
	// empty means read a previously produced predictions file instead.
	PipelineCommand() ([]string, error)

	// Key-value store backing Get/Set persistence
	StoreDriver() (string, error) // "memory", "file" or "postgres"
	StorePath() (string, error)
	StoreDSN() (string, error)

	// Object storage for s3:// task references
	S3() (S3Settings, error)

	// Request limits
	MaxRequestBytes() (int64, error)
	RequestsPerSecond() (int, error)
	RequestsPerMinute() (int, error)

	// SSL settings
	SSLEnabled() (bool, error)
	SSLMode() (string, error) // "manual" or "acme"
	SSLCertFile() (string, error)
	SSLKeyFile() (string, error)
	SSLAcmeDomains() ([]string, error)
	SSLAcmeEmail() (string, error)
	SSLAcmeCacheDir() (string, error)

	// Lifecycle & status
	Status(ctx context.Context) error
	Close() error
}

// envOverride returns the environment value for key when set, otherwise the
// provided fallback.
func envOverride(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// s3FromEnv applies the AWS_* and MINIO_* environment overrides on top of the
// given settings. MINIO_ROOT_USER/PASSWORD are honored when no AWS
// credentials are present, matching the docker-compose setups the backend
// ships with.
func s3FromEnv(s S3Settings) S3Settings {
	s.Endpoint = envOverride(EnvAWSEndpoint, s.Endpoint)
	s.AccessKey = envOverride(EnvAWSAccessKeyID, s.AccessKey)
	s.SecretKey = envOverride(EnvAWSSecretAccessKey, s.SecretKey)
	s.SessionToken = envOverride(EnvAWSSessionToken, s.SessionToken)
	if s.AccessKey == "" {
		s.AccessKey = os.Getenv(EnvMinioRootUser)
	}
	if s.SecretKey == "" {
		s.SecretKey = os.Getenv(EnvMinioRootPassword)
	}
	return s
}
