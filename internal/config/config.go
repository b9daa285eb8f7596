package config

import (
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/teralogger/internal/common"
)

// ArchiveConfig controls the optional upload of a finished run directory.
// Archiving is disabled while Bucket is empty.
type ArchiveConfig struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Prefix    string
	Timeout   time.Duration
}

// Enabled reports whether a bucket has been configured.
func (a ArchiveConfig) Enabled() bool {
	return a.Bucket != ""
}

// Config holds runtime settings for one extraction run.
type Config struct {
	InputPath  string
	OutputPath string
	LogLevel   string
	// HistoryDir is the per-job database folder, relative to InputPath.
	HistoryDir string
	Archive    ArchiveConfig
}

func (c *Config) LoadDefaults() {
	c.HistoryDir = "History"
	c.LogLevel = "info"
	c.Archive.Region = "us-east-1"
	c.Archive.Prefix = "teralogger"
	c.Archive.Timeout = 60 * time.Second
}

// LoadConfig builds a Config by applying defaults, then the optional config
// file, and finally command-line flags. args excludes the program name.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that both roots are given and are existing directories.
// Every failure wraps common.ErrPrecondition.
func (c *Config) Validate() error {
	if c.InputPath == "" {
		return fmt.Errorf("%w: input path is required", common.ErrPrecondition)
	}
	if c.OutputPath == "" {
		return fmt.Errorf("%w: output path is required", common.ErrPrecondition)
	}
	if err := isDir(c.InputPath); err != nil {
		return fmt.Errorf("%w: input path: %w", common.ErrPrecondition, err)
	}
	if err := isDir(c.OutputPath); err != nil {
		return fmt.Errorf("%w: output path: %w", common.ErrPrecondition, err)
	}
	if c.HistoryDir == "" {
		return fmt.Errorf("%w: history folder name is empty", common.ErrPrecondition)
	}
	return nil
}

func isDir(p string) error {
	fi, err := os.Stat(p)
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return fmt.Errorf("%s is not a directory", p)
	}
	return nil
}
