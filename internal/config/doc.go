// Package config loads runtime configuration for the teralogger CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected via -c or -config. Files ending in
//     .yaml or .yml are read as YAML, anything else as JSON.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags (single or double dash)
//
//	-i, -input_path string    folder holding main.db and History/
//	-o, -output_path string   folder the run directory is created in
//	-l, -log_level string     debug | info | warn | error
//	-b, -bucket string        S3 bucket for archiving the run (optional)
//	-g, -region string        S3 region
//	-e, -endpoint string      S3 base endpoint for S3-compatible stores
//	-u, -access_key string    S3 access key
//	-p, -secret_key string    S3 secret key
//	-x, -prefix string        object key prefix
//	-t, -timeout int          archive upload timeout (seconds)
//
// # File schema
//
// Durations use timex.Duration, so values can be strings like "90s" or
// integer nanoseconds:
//
//	{
//	  "input_path": "E:\\Case42\\TeraCopy",
//	  "output_path": "E:\\Case42\\Reports",
//	  "log_level": "info",
//	  "archive": {
//	    "bucket": "evidence",
//	    "endpoint": "http://127.0.0.1:9000/",
//	    "timeout": "2m"
//	  }
//	}
//
// Empty values in the file leave the defaults in place.
package config
