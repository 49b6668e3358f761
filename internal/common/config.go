package common

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/formbatch/constants"
)

// Config holds all application configuration
type Config struct {
	Paths    PathsConfig
	Pipeline PipelineConfig
	OCR      OCRConfig
	Log      LogConfig
}

// PathsConfig holds the directories and override list locations.
// Empty IgnoreFile/OrderFile/CombinedDir are derived from StateDir by Resolve.
type PathsConfig struct {
	CompanyDir  string
	StateDir    string
	CombinedDir string
	IgnoreFile  string
	OrderFile   string
}

// PipelineConfig holds batching and extraction settings
type PipelineConfig struct {
	BatchSize    int
	IdentityPage int
	Manifest     bool
}

// OCRConfig holds text-extraction tool settings
type OCRConfig struct {
	Pdftotext string
	Timeout   time.Duration
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string
}

// Stage names the pipeline stage a configuration is validated for.
type Stage string

const (
	StageRename  Stage = "rename"
	StageCombine Stage = "combine"
	StageAll     Stage = "all"
)

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			CompanyDir:  getEnv("FORMBATCH_COMPANY_DIR", ""),
			StateDir:    getEnv("FORMBATCH_STATE_DIR", ""),
			CombinedDir: getEnv("FORMBATCH_COMBINED_DIR", ""),
			IgnoreFile:  getEnv("FORMBATCH_IGNORE_FILE", ""),
			OrderFile:   getEnv("FORMBATCH_ORDER_FILE", ""),
		},
		Pipeline: PipelineConfig{
			BatchSize:    getEnvAsInt("FORMBATCH_BATCH_SIZE", constants.BatchCapacity),
			IdentityPage: getEnvAsInt("FORMBATCH_IDENTITY_PAGE", constants.IdentityPageIndex),
			Manifest:     getEnvAsBool("FORMBATCH_MANIFEST", true),
		},
		OCR: OCRConfig{
			Pdftotext: getEnv("FORMBATCH_PDFTOTEXT", "pdftotext"),
			Timeout:   getEnvAsDuration("FORMBATCH_OCR_TIMEOUT", 30*time.Second),
		},
		Log: LogConfig{
			Level:  getEnv("FORMBATCH_LOG_LEVEL", "info"),
			Format: getEnv("FORMBATCH_LOG_FORMAT", "json"),
		},
	}
}

// fileConfig mirrors ConfigFileSchema. Nil fields leave the current value untouched.
type fileConfig struct {
	CompanyDir   *string `json:"company_dir"`
	StateDir     *string `json:"state_dir"`
	CombinedDir  *string `json:"combined_dir"`
	IgnoreFile   *string `json:"ignore_file"`
	OrderFile    *string `json:"order_file"`
	BatchSize    *int    `json:"batch_size"`
	IdentityPage *int    `json:"identity_page"`
	Manifest     *bool   `json:"manifest"`
	Pdftotext    *string `json:"pdftotext"`
	OCRTimeout   *string `json:"ocr_timeout"`
	LogLevel     *string `json:"log_level"`
	LogFormat    *string `json:"log_format"`
}

// LoadFile overlays a JSON config file onto c. The file is validated against
// ConfigFileSchema before it is decoded.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return NewAppError(CodeConfig, "read config file", err)
	}
	if err := ValidateJSONAgainstSchema(ConfigFileSchema(), data); err != nil {
		return NewAppError(CodeConfig, fmt.Sprintf("invalid config file %s", path), err)
	}
	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return NewAppError(CodeConfig, "decode config file", err)
	}

	setString(&c.Paths.CompanyDir, fc.CompanyDir)
	setString(&c.Paths.StateDir, fc.StateDir)
	setString(&c.Paths.CombinedDir, fc.CombinedDir)
	setString(&c.Paths.IgnoreFile, fc.IgnoreFile)
	setString(&c.Paths.OrderFile, fc.OrderFile)
	setString(&c.OCR.Pdftotext, fc.Pdftotext)
	setString(&c.Log.Level, fc.LogLevel)
	setString(&c.Log.Format, fc.LogFormat)
	if fc.BatchSize != nil {
		c.Pipeline.BatchSize = *fc.BatchSize
	}
	if fc.IdentityPage != nil {
		c.Pipeline.IdentityPage = *fc.IdentityPage
	}
	if fc.Manifest != nil {
		c.Pipeline.Manifest = *fc.Manifest
	}
	if fc.OCRTimeout != nil {
		d, err := time.ParseDuration(*fc.OCRTimeout)
		if err != nil {
			return NewAppError(CodeConfig, "parse ocr_timeout", err)
		}
		c.OCR.Timeout = d
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// Resolve fills derived paths: the override lists and the combined directory
// sit next to the state directory unless set explicitly.
func (c *Config) Resolve() {
	if c.Paths.StateDir == "" {
		return
	}
	root := filepath.Dir(filepath.Clean(c.Paths.StateDir))
	if c.Paths.IgnoreFile == "" {
		c.Paths.IgnoreFile = filepath.Join(root, constants.IgnoreFile)
	}
	if c.Paths.OrderFile == "" {
		c.Paths.OrderFile = filepath.Join(root, constants.OrderFile)
	}
	if c.Paths.CombinedDir == "" {
		c.Paths.CombinedDir = filepath.Join(root, "combined")
	}
}

// Validate checks the settings a stage needs.
func (c *Config) Validate(stage Stage) error {
	v := NewValidator()
	v.Field("state_dir", c.Paths.StateDir, Required)
	if stage == StageRename || stage == StageAll {
		v.Field("company_dir", c.Paths.CompanyDir, Required)
	}
	if stage == StageCombine || stage == StageAll {
		v.Field("combined_dir", c.Paths.CombinedDir, Required)
		v.Field("batch_size", c.Pipeline.BatchSize, IntRange(1, 10000))
	}
	v.Field("identity_page", c.Pipeline.IdentityPage, IntRange(0, 1<<16))
	v.Field("pdftotext", c.OCR.Pdftotext, Required)
	v.Field("log_level", c.Log.Level, OneOf("debug", "info", "warn", "error"))
	v.Field("log_format", c.Log.Format, OneOf("json", "text"))
	if c.Paths.StateDir != "" && c.Paths.CombinedDir != "" && filepath.Clean(c.Paths.StateDir) == filepath.Clean(c.Paths.CombinedDir) {
		v.errors = append(v.errors, ValidationError{
			Field:   "combined_dir",
			Value:   c.Paths.CombinedDir,
			Message: "must differ from state_dir",
		})
	}
	return v.Err()
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
