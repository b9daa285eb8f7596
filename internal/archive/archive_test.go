package archive

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/teralogger/internal/common"
	"github.com/dmitrijs2005/teralogger/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type putCall struct {
	bucket, key, contentType, body string
	hasDeadline                    bool
}

type fakePutter struct {
	calls  []putCall
	failOn string
}

func (f *fakePutter) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	key := aws.ToString(in.Key)
	if key == f.failOn {
		return nil, errors.New("access denied")
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	_, hasDeadline := ctx.Deadline()
	f.calls = append(f.calls, putCall{
		bucket:      aws.ToString(in.Bucket),
		key:         key,
		contentType: aws.ToString(in.ContentType),
		body:        string(body),
		hasDeadline: hasDeadline,
	})
	return &s3.PutObjectOutput{}, nil
}

func withFakeClient(t *testing.T, fp *fakePutter, err error) {
	t.Helper()
	orig := newClient
	newClient = func(context.Context, config.ArchiveConfig) (Putter, error) {
		if err != nil {
			return nil, err
		}
		return fp, nil
	}
	t.Cleanup(func() { newClient = orig })
}

func runDir(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "TeraLogger_Out_20240101-000000_abcdef01")
	require.NoError(t, os.Mkdir(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.tsv"), []byte("tsv"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte("{}"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.txt"), []byte("log"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	return dir
}

func TestKey(t *testing.T) {
	assert.Equal(t, "teralogger/run/file.tsv", Key("teralogger", "run", "file.tsv"))
	assert.Equal(t, "a/b/run/file.tsv", Key("/a/b/", "run", "file.tsv"))
	assert.Equal(t, "run/file.tsv", Key("", "run", "file.tsv"))
}

func TestUploadDir(t *testing.T) {
	fp := &fakePutter{}
	withFakeClient(t, fp, nil)
	dir := runDir(t)

	u, err := New(context.Background(), config.ArchiveConfig{Bucket: "evidence", Prefix: "case42", Timeout: time.Minute})
	require.NoError(t, err)

	keys, err := u.UploadDir(context.Background(), dir)
	require.NoError(t, err)

	base := "case42/TeraLogger_Out_20240101-000000_abcdef01/"
	assert.Equal(t, []string{base + "a.json", base + "b.tsv", base + "c.txt"}, keys)

	require.Len(t, fp.calls, 3)
	assert.Equal(t, putCall{bucket: "evidence", key: base + "a.json", contentType: "application/json", body: "{}", hasDeadline: true}, fp.calls[0])
	assert.Equal(t, "text/tab-separated-values; charset=utf-8", fp.calls[1].contentType)
	assert.Equal(t, "log", fp.calls[2].body)
}

func TestUploadDir_StopsOnFailure(t *testing.T) {
	dir := runDir(t)
	fp := &fakePutter{failOn: "p/" + filepath.Base(dir) + "/b.tsv"}
	withFakeClient(t, fp, nil)

	u, err := New(context.Background(), config.ArchiveConfig{Bucket: "evidence", Prefix: "p"})
	require.NoError(t, err)

	keys, err := u.UploadDir(context.Background(), dir)
	require.ErrorIs(t, err, common.ErrWrite)
	assert.Contains(t, err.Error(), "access denied")
	assert.Len(t, keys, 1)

	_, statErr := os.Stat(filepath.Join(dir, "b.tsv"))
	assert.NoError(t, statErr)
}

func TestNew_ClientError(t *testing.T) {
	withFakeClient(t, nil, errors.New("no region"))

	_, err := New(context.Background(), config.ArchiveConfig{Bucket: "b"})
	require.ErrorIs(t, err, common.ErrWrite)
}

func TestUploadDir_MissingDir(t *testing.T) {
	withFakeClient(t, &fakePutter{}, nil)
	u, err := New(context.Background(), config.ArchiveConfig{Bucket: "b"})
	require.NoError(t, err)

	_, err = u.UploadDir(context.Background(), filepath.Join(t.TempDir(), "gone"))
	require.ErrorIs(t, err, common.ErrWrite)
}

func TestNewClient_BuildsS3Client(t *testing.T) {
	c, err := newClient(context.Background(), config.ArchiveConfig{
		Region: "us-east-1", Endpoint: "http://127.0.0.1:9000/", AccessKey: "k", SecretKey: "s",
	})
	require.NoError(t, err)
	assert.IsType(t, &s3.Client{}, c)
}
