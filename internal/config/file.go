package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/teralogger/internal/flagx"
	"github.com/dmitrijs2005/teralogger/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of a config file. It is only used for
// decoding; values are copied into Config by apply.
type FileConfig struct {
	InputPath  string            `json:"input_path" yaml:"input_path"`
	OutputPath string            `json:"output_path" yaml:"output_path"`
	LogLevel   string            `json:"log_level" yaml:"log_level"`
	HistoryDir string            `json:"history_dir" yaml:"history_dir"`
	Archive    ArchiveFileConfig `json:"archive" yaml:"archive"`
}

type ArchiveFileConfig struct {
	Bucket    string         `json:"bucket" yaml:"bucket"`
	Region    string         `json:"region" yaml:"region"`
	Endpoint  string         `json:"endpoint" yaml:"endpoint"`
	AccessKey string         `json:"access_key" yaml:"access_key"`
	SecretKey string         `json:"secret_key" yaml:"secret_key"`
	Prefix    string         `json:"prefix" yaml:"prefix"`
	Timeout   timex.Duration `json:"timeout" yaml:"timeout"`
}

// parseFile loads the file named by -c/-config, if any, into config.
func parseFile(config *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	fc := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	default:
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}

	fc.apply(config)
	return nil
}

func (fc *FileConfig) apply(config *Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	set(&config.InputPath, fc.InputPath)
	set(&config.OutputPath, fc.OutputPath)
	set(&config.LogLevel, fc.LogLevel)
	set(&config.HistoryDir, fc.HistoryDir)
	set(&config.Archive.Bucket, fc.Archive.Bucket)
	set(&config.Archive.Region, fc.Archive.Region)
	set(&config.Archive.Endpoint, fc.Archive.Endpoint)
	set(&config.Archive.AccessKey, fc.Archive.AccessKey)
	set(&config.Archive.SecretKey, fc.Archive.SecretKey)
	set(&config.Archive.Prefix, fc.Archive.Prefix)
	if fc.Archive.Timeout.Duration > 0 {
		config.Archive.Timeout = fc.Archive.Timeout.Duration
	}
}
