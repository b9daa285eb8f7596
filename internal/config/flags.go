package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/teralogger/internal/flagx"
)

var flagNames = []string{
	"i", "input_path",
	"o", "output_path",
	"l", "log_level",
	"b", "bucket",
	"g", "region",
	"e", "endpoint",
	"u", "access_key",
	"p", "secret_key",
	"x", "prefix",
	"t", "timeout",
}

// parseFlags overlays command-line flags on config. Only the flags listed in
// flagNames are considered, so -c/-config and anything unknown pass through.
func parseFlags(config *Config, args []string) error {
	filtered := flagx.FilterArgs(args, flagNames)

	fs := flag.NewFlagSet("teralogger", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	stringVar := func(p *string, short, long, usage string) {
		fs.StringVar(p, short, *p, usage)
		fs.StringVar(p, long, *p, usage)
	}

	stringVar(&config.InputPath, "i", "input_path", "folder holding main.db and History")
	stringVar(&config.OutputPath, "o", "output_path", "folder to create the run directory in")
	stringVar(&config.LogLevel, "l", "log_level", "log level")
	stringVar(&config.Archive.Bucket, "b", "bucket", "S3 bucket")
	stringVar(&config.Archive.Region, "g", "region", "S3 region")
	stringVar(&config.Archive.Endpoint, "e", "endpoint", "S3 base endpoint")
	stringVar(&config.Archive.AccessKey, "u", "access_key", "S3 access key")
	stringVar(&config.Archive.SecretKey, "p", "secret_key", "S3 secret key")
	stringVar(&config.Archive.Prefix, "x", "prefix", "S3 key prefix")

	timeout := int(config.Archive.Timeout.Seconds())
	fs.IntVar(&timeout, "t", timeout, "archive upload timeout (in seconds)")
	fs.IntVar(&timeout, "timeout", timeout, "archive upload timeout (in seconds)")

	if err := fs.Parse(filtered); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	config.Archive.Timeout = time.Duration(timeout) * time.Second
	return nil
}
