package config

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

var _ IConfig = (*DatabaseConfig)(nil)

// DatabaseConfig implements IConfig with PostgreSQL-based storage. Settings
// live in a single key/value table so the backend can share a database with
// the annotation deployment.
type DatabaseConfig struct {
	logger             *zap.Logger
	dbConnectionString string
}

// NewDatabaseConfig creates a new DatabaseConfig instance.
func NewDatabaseConfig(dbConnectionString string, logger *zap.Logger) (*DatabaseConfig, error) {
	return &DatabaseConfig{
		dbConnectionString: dbConnectionString,
		logger:             logger,
	}, nil
}

func (c *DatabaseConfig) Close() error { return nil }

func (c *DatabaseConfig) getSettingRaw(key string) ([]byte, error) {
	db, err := sql.Open("postgres", c.dbConnectionString)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	defer db.Close()
	var valueStr sql.NullString
	err = db.QueryRowContext(context.Background(), `SELECT value FROM "Settings" WHERE key = $1 LIMIT 1`, key).Scan(&valueStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query setting '%s': %w", key, err)
	}
	if !valueStr.Valid {
		return nil, ErrNotFound
	}
	return []byte(valueStr.String), nil
}

func (c *DatabaseConfig) getSettingJSON(key string) (interface{}, error) {
	raw, err := c.getSettingRaw(key)
	if err != nil {
		return nil, err
	}
	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("unmarshal setting '%s': %w", key, err)
	}
	return value, nil
}

func (c *DatabaseConfig) getSettingString(key string, defaultValue string) (string, error) {
	value, err := c.getSettingJSON(key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return defaultValue, nil
		}
		return defaultValue, err
	}
	switch v := value.(type) {
	case string:
		return v, nil
	case float64:
		return fmt.Sprintf("%v", int(v)), nil
	default:
		return defaultValue, fmt.Errorf("setting '%s' has unexpected type %T", key, value)
	}
}

func (c *DatabaseConfig) getSettingInt(key string, defaultValue int) (int, error) {
	value, err := c.getSettingJSON(key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return defaultValue, nil
		}
		return defaultValue, err
	}
	if f, ok := value.(float64); ok {
		return int(f), nil
	}
	return defaultValue, fmt.Errorf("setting '%s' is not a number (type: %T)", key, value)
}

func (c *DatabaseConfig) getSettingBool(key string, defaultValue bool) (bool, error) {
	value, err := c.getSettingJSON(key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return defaultValue, nil
		}
		return defaultValue, err
	}
	if b, ok := value.(bool); ok {
		return b, nil
	}
	return defaultValue, fmt.Errorf("setting '%s' is not a boolean (type: %T)", key, value)
}

func (c *DatabaseConfig) getSettingStringSlice(key string, defaultValue []string) ([]string, error) {
	value, err := c.getSettingJSON(key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return defaultValue, nil
		}
		return defaultValue, err
	}
	sliceInterface, ok := value.([]interface{})
	if !ok {
		return defaultValue, fmt.Errorf("setting '%s' is not a JSON array (type: %T)", key, value)
	}
	strSlice := make([]string, 0, len(sliceInterface))
	for i, item := range sliceInterface {
		strVal, ok := item.(string)
		if !ok {
			return defaultValue, fmt.Errorf("non-string value at index %d in setting '%s'", i, key)
		}
		strSlice = append(strSlice, strVal)
	}
	return strSlice, nil
}

func (c *DatabaseConfig) ListenAddr() (string, error) {
	return c.getSettingString("ml_listen_address", ":9090")
}

func (c *DatabaseConfig) ServerName() (string, error) {
	return c.getSettingString("ml_server_name", "labelkit")
}

func (c *DatabaseConfig) ServerVersion() (string, error) {
	return c.getSettingString("ml_server_version", "0.0.0")
}

func (c *DatabaseConfig) LogLevel() (string, error) {
	return c.getSettingString("ml_log_level", "info")
}

func (c *DatabaseConfig) LabelStudioURL() (string, error) {
	v, err := c.getSettingString("label_studio_url", "")
	return envOverride(EnvLabelStudioHost, v), err
}

func (c *DatabaseConfig) LabelStudioAccessToken() (string, error) {
	v, err := c.getSettingString("label_studio_access_token", "")
	return envOverride(EnvLabelStudioAccessToken, v), err
}

func (c *DatabaseConfig) ModelName() (string, error) {
	return c.getSettingString("ml_model_name", "bboxocr")
}

func (c *DatabaseConfig) ModelVersion() (string, error) {
	return c.getSettingString("ml_model_version", "0.0.1")
}

func (c *DatabaseConfig) OCRLanguages() ([]string, error) {
	return c.getSettingStringSlice("ocr_languages", []string{"chi_sim", "eng", "deu"})
}

func (c *DatabaseConfig) OCRPageSegMode() (int, error) {
	return c.getSettingInt("ocr_page_seg_mode", 6)
}

func (c *DatabaseConfig) ImagesDir() (string, error) {
	return c.getSettingString("mounts_images_dir", "/data/test_png")
}

func (c *DatabaseConfig) PDFDir() (string, error) {
	return c.getSettingString("mounts_pdf_dir", "/data/pdf")
}

func (c *DatabaseConfig) ValidationDir() (string, error) {
	return c.getSettingString("mounts_validation_dir", "/data/validation")
}

func (c *DatabaseConfig) TempDir() (string, error) {
	return c.getSettingString("mounts_temp_dir", "/data/_temp")
}

func (c *DatabaseConfig) PipelineCommand() ([]string, error) {
	return c.getSettingStringSlice("pipeline_command", nil)
}

func (c *DatabaseConfig) StoreDriver() (string, error) {
	v, err := c.getSettingString("store_driver", "postgres")
	return strings.ToLower(v), err
}

func (c *DatabaseConfig) StorePath() (string, error) {
	return c.getSettingString("store_path", "")
}

// StoreDSN defaults to the configuration database itself.
func (c *DatabaseConfig) StoreDSN() (string, error) {
	return c.getSettingString("store_dsn", c.dbConnectionString)
}

func (c *DatabaseConfig) S3() (S3Settings, error) {
	endpoint, err := c.getSettingString("s3_endpoint", "")
	if err != nil {
		return S3Settings{}, err
	}
	accessKey, _ := c.getSettingString("s3_access_key", "")
	secretKey, _ := c.getSettingString("s3_secret_key", "")
	useSSL, _ := c.getSettingBool("s3_use_ssl", false)
	return s3FromEnv(S3Settings{
		Endpoint:  endpoint,
		AccessKey: accessKey,
		SecretKey: secretKey,
		UseSSL:    useSSL,
	}), nil
}

func (c *DatabaseConfig) MaxRequestBytes() (int64, error) {
	v, err := c.getSettingInt("limits_max_request_bytes", 10<<20)
	return int64(v), err
}

func (c *DatabaseConfig) RequestsPerSecond() (int, error) {
	return c.getSettingInt("limits_requests_per_second", 60)
}

func (c *DatabaseConfig) RequestsPerMinute() (int, error) {
	return c.getSettingInt("limits_requests_per_minute", 600)
}

func (c *DatabaseConfig) SSLEnabled() (bool, error) {
	return c.getSettingBool("ml_ssl_enabled", false)
}

func (c *DatabaseConfig) SSLMode() (string, error) {
	return c.getSettingString("ml_ssl_mode", "manual")
}

func (c *DatabaseConfig) SSLCertFile() (string, error) {
	return c.getSettingString("ml_ssl_cert_file", "")
}

func (c *DatabaseConfig) SSLKeyFile() (string, error) {
	return c.getSettingString("ml_ssl_key_file", "")
}

func (c *DatabaseConfig) SSLAcmeDomains() ([]string, error) {
	return c.getSettingStringSlice("ml_ssl_acme_domains", nil)
}

func (c *DatabaseConfig) SSLAcmeEmail() (string, error) {
	return c.getSettingString("ml_ssl_acme_email", "")
}

func (c *DatabaseConfig) SSLAcmeCacheDir() (string, error) {
	return c.getSettingString("ml_ssl_acme_cache_dir", "./.autocert-cache")
}

func (c *DatabaseConfig) Status(ctx context.Context) error {
	db, err := sql.Open("postgres", c.dbConnectionString)
	if err != nil {
		c.logger.Error("DB connect failed", zap.Error(err))
		return err
	}
	defer db.Close()
	if err = db.PingContext(ctx); err != nil {
		c.logger.Error("DB ping failed", zap.Error(err))
		return err
	}
	return nil
}
