package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var _ IConfig = (*YamlConfig)(nil)

// YamlConfig implements IConfig with YAML file-based storage. The file is
// watched and reloaded on change, so labeling-side settings (OCR languages,
// mount directories, limits) can be adjusted without a restart.
type YamlConfig struct {
	mu         sync.RWMutex
	configPath string
	logger     *zap.Logger
	watcher    *fsnotify.Watcher
	done       chan struct{}

	data yamlFile

	// modelName, when set, wins over the file value. Survives reloads.
	modelName string
}

// yamlFile mirrors the on-disk configuration layout.
type yamlFile struct {
	Server struct {
		Address  string `yaml:"address"`
		Name     string `yaml:"name"`
		Version  string `yaml:"version"`
		LogLevel string `yaml:"log_level"`
		SSL      struct {
			Enabled      bool     `yaml:"enabled"`
			Mode         string   `yaml:"mode"`
			CertFile     string   `yaml:"cert_file"`
			KeyFile      string   `yaml:"key_file"`
			AcmeDomains  []string `yaml:"acme_domains"`
			AcmeEmail    string   `yaml:"acme_email"`
			AcmeCacheDir string   `yaml:"acme_cache_dir"`
		} `yaml:"ssl"`
	} `yaml:"server"`

	LabelStudio struct {
		URL         string `yaml:"url"`
		AccessToken string `yaml:"access_token"`
	} `yaml:"label_studio"`

	Model struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"model"`

	OCR struct {
		Languages   []string `yaml:"languages"`
		PageSegMode int      `yaml:"page_seg_mode"`
	} `yaml:"ocr"`

	Mounts struct {
		ImagesDir     string `yaml:"images_dir"`
		PDFDir        string `yaml:"pdf_dir"`
		ValidationDir string `yaml:"validation_dir"`
		TempDir       string `yaml:"temp_dir"`
	} `yaml:"mounts"`

	Pipeline struct {
		Command []string `yaml:"command"`
	} `yaml:"pipeline"`

	Store struct {
		Driver string `yaml:"driver"`
		Path   string `yaml:"path"`
		DSN    string `yaml:"dsn"`
	} `yaml:"store"`

	S3 struct {
		Endpoint  string `yaml:"endpoint"`
		AccessKey string `yaml:"access_key"`
		SecretKey string `yaml:"secret_key"`
		UseSSL    bool   `yaml:"use_ssl"`
	} `yaml:"s3"`

	Limits struct {
		MaxRequestBytes   int64 `yaml:"max_request_bytes"`
		RequestsPerSecond int   `yaml:"requests_per_second"`
		RequestsPerMinute int   `yaml:"requests_per_minute"`
	} `yaml:"limits"`
}

// NewYamlConfig creates a YAML-based configuration and starts watching the
// file for changes.
func NewYamlConfig(configPath string, logger *zap.Logger) (*YamlConfig, error) {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	c := &YamlConfig{
		configPath: configPath,
		logger:     logger,
		done:       make(chan struct{}),
	}
	if err := c.Update(); err != nil {
		return nil, err
	}
	if err := c.watch(); err != nil {
		// Reload is best effort; the initial load already succeeded.
		logger.Warn("Config file watch unavailable", zap.Error(err))
	}
	return c, nil
}

// Update reloads the configuration from the YAML file.
func (c *YamlConfig) Update() error {
	raw, err := os.ReadFile(c.configPath)
	if err != nil {
		c.logger.Error("Failed to read config file", zap.String("path", c.configPath), zap.Error(err))
		return err
	}

	var parsed yamlFile
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		c.logger.Error("Failed to parse YAML config", zap.Error(err))
		return fmt.Errorf("parse config %s: %w", c.configPath, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = parsed
	c.logger.Debug("Configuration loaded", zap.String("path", c.configPath))
	return nil
}

func (c *YamlConfig) watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(c.configPath); err != nil {
		watcher.Close()
		return err
	}
	c.watcher = watcher

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					c.logger.Info("Config file changed, reloading", zap.String("path", c.configPath))
					if err := c.Update(); err != nil {
						c.logger.Error("Config reload failed, keeping previous configuration", zap.Error(err))
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				c.logger.Warn("Config watcher error", zap.Error(err))
			case <-c.done:
				return
			}
		}
	}()
	return nil
}

func (c *YamlConfig) str(get func(*yamlFile) string, def string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if v := get(&c.data); v != "" {
		return v, nil
	}
	return def, nil
}

func (c *YamlConfig) ListenAddr() (string, error) {
	return c.str(func(f *yamlFile) string { return f.Server.Address }, ":9090")
}

func (c *YamlConfig) ServerName() (string, error) {
	return c.str(func(f *yamlFile) string { return f.Server.Name }, "labelkit")
}

func (c *YamlConfig) ServerVersion() (string, error) {
	return c.str(func(f *yamlFile) string { return f.Server.Version }, "0.0.0")
}

func (c *YamlConfig) LogLevel() (string, error) {
	return c.str(func(f *yamlFile) string { return f.Server.LogLevel }, "info")
}

func (c *YamlConfig) LabelStudioURL() (string, error) {
	v, _ := c.str(func(f *yamlFile) string { return f.LabelStudio.URL }, "")
	return envOverride(EnvLabelStudioHost, v), nil
}

func (c *YamlConfig) LabelStudioAccessToken() (string, error) {
	v, _ := c.str(func(f *yamlFile) string { return f.LabelStudio.AccessToken }, "")
	return envOverride(EnvLabelStudioAccessToken, v), nil
}

func (c *YamlConfig) ModelName() (string, error) {
	c.mu.RLock()
	override := c.modelName
	c.mu.RUnlock()
	if override != "" {
		return override, nil
	}
	return c.str(func(f *yamlFile) string { return f.Model.Name }, "bboxocr")
}

// OverrideModelName pins the served model regardless of the file contents,
// for the --model command line flag.
func (c *YamlConfig) OverrideModelName(name string) {
	c.mu.Lock()
	c.modelName = name
	c.mu.Unlock()
}

func (c *YamlConfig) ModelVersion() (string, error) {
	return c.str(func(f *yamlFile) string { return f.Model.Version }, "0.0.1")
}

func (c *YamlConfig) OCRLanguages() ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.data.OCR.Languages) > 0 {
		return append([]string{}, c.data.OCR.Languages...), nil
	}
	return []string{"chi_sim", "eng", "deu"}, nil
}

func (c *YamlConfig) OCRPageSegMode() (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.data.OCR.PageSegMode > 0 {
		return c.data.OCR.PageSegMode, nil
	}
	return 6, nil
}

func (c *YamlConfig) ImagesDir() (string, error) {
	return c.str(func(f *yamlFile) string { return f.Mounts.ImagesDir }, "/data/test_png")
}

func (c *YamlConfig) PDFDir() (string, error) {
	return c.str(func(f *yamlFile) string { return f.Mounts.PDFDir }, "/data/pdf")
}

func (c *YamlConfig) ValidationDir() (string, error) {
	return c.str(func(f *yamlFile) string { return f.Mounts.ValidationDir }, "/data/validation")
}

func (c *YamlConfig) TempDir() (string, error) {
	return c.str(func(f *yamlFile) string { return f.Mounts.TempDir }, "/data/_temp")
}

func (c *YamlConfig) PipelineCommand() ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string{}, c.data.Pipeline.Command...), nil
}

func (c *YamlConfig) StoreDriver() (string, error) {
	v, _ := c.str(func(f *yamlFile) string { return f.Store.Driver }, "memory")
	return strings.ToLower(v), nil
}

func (c *YamlConfig) StorePath() (string, error) {
	return c.str(func(f *yamlFile) string { return f.Store.Path }, "")
}

func (c *YamlConfig) StoreDSN() (string, error) {
	return c.str(func(f *yamlFile) string { return f.Store.DSN }, "")
}

func (c *YamlConfig) S3() (S3Settings, error) {
	c.mu.RLock()
	s := S3Settings{
		Endpoint:  c.data.S3.Endpoint,
		AccessKey: c.data.S3.AccessKey,
		SecretKey: c.data.S3.SecretKey,
		UseSSL:    c.data.S3.UseSSL,
	}
	c.mu.RUnlock()
	return s3FromEnv(s), nil
}

func (c *YamlConfig) MaxRequestBytes() (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.data.Limits.MaxRequestBytes > 0 {
		return c.data.Limits.MaxRequestBytes, nil
	}
	return 10 << 20, nil
}

func (c *YamlConfig) RequestsPerSecond() (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.data.Limits.RequestsPerSecond > 0 {
		return c.data.Limits.RequestsPerSecond, nil
	}
	return 60, nil
}

func (c *YamlConfig) RequestsPerMinute() (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.data.Limits.RequestsPerMinute > 0 {
		return c.data.Limits.RequestsPerMinute, nil
	}
	return 600, nil
}

func (c *YamlConfig) SSLEnabled() (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.Server.SSL.Enabled, nil
}

func (c *YamlConfig) SSLMode() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	mode := strings.ToLower(c.data.Server.SSL.Mode)
	if mode != "acme" {
		mode = "manual"
	}
	return mode, nil
}

func (c *YamlConfig) SSLCertFile() (string, error) {
	return c.str(func(f *yamlFile) string { return f.Server.SSL.CertFile }, "")
}

func (c *YamlConfig) SSLKeyFile() (string, error) {
	return c.str(func(f *yamlFile) string { return f.Server.SSL.KeyFile }, "")
}

func (c *YamlConfig) SSLAcmeDomains() ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string{}, c.data.Server.SSL.AcmeDomains...), nil
}

func (c *YamlConfig) SSLAcmeEmail() (string, error) {
	return c.str(func(f *yamlFile) string { return f.Server.SSL.AcmeEmail }, "")
}

func (c *YamlConfig) SSLAcmeCacheDir() (string, error) {
	return c.str(func(f *yamlFile) string { return f.Server.SSL.AcmeCacheDir }, "./.autocert-cache")
}

func (c *YamlConfig) Status(ctx context.Context) error {
	_, err := os.Stat(c.configPath)
	return err
}

func (c *YamlConfig) Close() error {
	close(c.done)
	if c.watcher != nil {
		return c.watcher.Close()
	}
	return nil
}
