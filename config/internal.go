package config

import (
	"context"
	"sync"
)

var _ IConfig = (*InternalConfig)(nil)

// InternalConfig implements IConfig with in-memory storage. It is the default
// used in tests and carries the built-in defaults of the backend.
type InternalConfig struct {
	mu sync.RWMutex

	ServerAddress        string
	ServerNameValue      string
	ServerVersionValue   string
	LogLevelValue        string
	LabelStudioURLValue  string
	AccessTokenValue     string
	ModelNameValue       string
	ModelVersionValue    string
	OCRLanguagesValue    []string
	OCRPageSegModeValue  int
	ImagesDirValue       string
	PDFDirValue          string
	ValidationDirValue   string
	TempDirValue         string
	PipelineCommandValue []string
	StoreDriverValue     string
	StorePathValue       string
	StoreDSNValue        string
	S3Value              S3Settings
	MaxRequestBytesValue int64
	RPSValue             int
	RPMValue             int

	SSLEnabledValue      bool
	SSLModeValue         string
	SSLCertFileValue     string
	SSLKeyFileValue      string
	SSLAcmeDomainsValue  []string
	SSLAcmeEmailValue    string
	SSLAcmeCacheDirValue string
}

// NewInternalConfig creates a new in-memory configuration with defaults
// matching the shipped docker setup.
func NewInternalConfig() *InternalConfig {
	return &InternalConfig{
		ServerAddress:        ":9090",
		ServerNameValue:      "labelkit",
		ServerVersionValue:   "0.0.0",
		LogLevelValue:        "info",
		ModelNameValue:       "bboxocr",
		ModelVersionValue:    "0.0.1",
		OCRLanguagesValue:    []string{"chi_sim", "eng", "deu"},
		OCRPageSegModeValue:  6,
		ImagesDirValue:       "/data/test_png",
		PDFDirValue:          "/data/pdf",
		ValidationDirValue:   "/data/validation",
		TempDirValue:         "/data/_temp",
		StoreDriverValue:     "memory",
		MaxRequestBytesValue: 10 << 20,
		RPSValue:             60,
		RPMValue:             600,
		SSLModeValue:         "manual",
		SSLAcmeCacheDirValue: "./.autocert-cache",
	}
}

func (c *InternalConfig) ListenAddr() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ServerAddress, nil
}

func (c *InternalConfig) SetListenAddr(addr string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ServerAddress = addr
}

func (c *InternalConfig) ServerName() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ServerNameValue, nil
}

func (c *InternalConfig) ServerVersion() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ServerVersionValue, nil
}

func (c *InternalConfig) LogLevel() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.LogLevelValue, nil
}

func (c *InternalConfig) LabelStudioURL() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return envOverride(EnvLabelStudioHost, c.LabelStudioURLValue), nil
}

func (c *InternalConfig) LabelStudioAccessToken() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return envOverride(EnvLabelStudioAccessToken, c.AccessTokenValue), nil
}

func (c *InternalConfig) ModelName() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ModelNameValue, nil
}

func (c *InternalConfig) ModelVersion() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ModelVersionValue, nil
}

func (c *InternalConfig) OCRLanguages() ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string{}, c.OCRLanguagesValue...), nil
}

func (c *InternalConfig) OCRPageSegMode() (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.OCRPageSegModeValue, nil
}

func (c *InternalConfig) ImagesDir() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ImagesDirValue, nil
}

func (c *InternalConfig) PDFDir() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.PDFDirValue, nil
}

func (c *InternalConfig) ValidationDir() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ValidationDirValue, nil
}

func (c *InternalConfig) TempDir() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.TempDirValue, nil
}

func (c *InternalConfig) PipelineCommand() ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string{}, c.PipelineCommandValue...), nil
}

func (c *InternalConfig) StoreDriver() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.StoreDriverValue, nil
}

func (c *InternalConfig) StorePath() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.StorePathValue, nil
}

func (c *InternalConfig) StoreDSN() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.StoreDSNValue, nil
}

func (c *InternalConfig) S3() (S3Settings, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return s3FromEnv(c.S3Value), nil
}

func (c *InternalConfig) MaxRequestBytes() (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.MaxRequestBytesValue, nil
}

func (c *InternalConfig) RequestsPerSecond() (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.RPSValue, nil
}

func (c *InternalConfig) RequestsPerMinute() (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.RPMValue, nil
}

func (c *InternalConfig) SSLEnabled() (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.SSLEnabledValue, nil
}

func (c *InternalConfig) SSLMode() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.SSLModeValue, nil
}

func (c *InternalConfig) SSLCertFile() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.SSLCertFileValue, nil
}

func (c *InternalConfig) SSLKeyFile() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.SSLKeyFileValue, nil
}

func (c *InternalConfig) SSLAcmeDomains() ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string{}, c.SSLAcmeDomainsValue...), nil
}

func (c *InternalConfig) SSLAcmeEmail() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.SSLAcmeEmailValue, nil
}

func (c *InternalConfig) SSLAcmeCacheDir() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.SSLAcmeCacheDirValue, nil
}

func (c *InternalConfig) Status(ctx context.Context) error { return nil }

func (c *InternalConfig) Close() error { return nil }
