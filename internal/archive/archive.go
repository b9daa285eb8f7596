// Package archive uploads a finished run directory to S3 or an
// S3-compatible store.
//
// Objects are stored under <prefix>/<run directory name>/<file name>.
// Uploading never modifies or removes the local copy.
package archive

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/teralogger/internal/common"
	"github.com/dmitrijs2005/teralogger/internal/config"
)

// Putter is the part of *s3.Client the uploader uses.
type Putter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// newClient is a seam for tests.
var newClient = func(ctx context.Context, cfg config.ArchiveConfig) (Putter, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

type Uploader struct {
	client Putter
	cfg    config.ArchiveConfig
}

// New builds an Uploader backed by the AWS SDK.
func New(ctx context.Context, cfg config.ArchiveConfig) (*Uploader, error) {
	client, err := newClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: s3 client: %w", common.ErrWrite, err)
	}
	return &Uploader{client: client, cfg: cfg}, nil
}

// Key returns the object key of file inside runDir.
func Key(prefix, runDir, file string) string {
	return path.Join(strings.Trim(prefix, "/"), runDir, file)
}

// UploadDir uploads every regular file directly inside dir and returns the
// keys written, in name order. The whole upload is bounded by the configured
// timeout. The first failure stops the upload and wraps common.ErrWrite.
func (u *Uploader) UploadDir(ctx context.Context, dir string) ([]string, error) {
	if u.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.cfg.Timeout)
		defer cancel()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", common.ErrWrite, dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	runDir := filepath.Base(dir)
	keys := make([]string, 0, len(names))
	for _, name := range names {
		key := Key(u.cfg.Prefix, runDir, name)
		if err := u.put(ctx, filepath.Join(dir, name), key); err != nil {
			return keys, fmt.Errorf("%w: upload %s: %w", common.ErrWrite, key, err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func (u *Uploader) put(ctx context.Context, file, key string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return err
	}

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.cfg.Bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(fi.Size()),
		ContentType:   aws.String(contentType(file)),
	})
	return err
}

func contentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".tsv":
		return "text/tab-separated-values; charset=utf-8"
	case ".json":
		return "application/json"
	default:
		return "text/plain; charset=utf-8"
	}
}
