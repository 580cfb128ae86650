package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/abduss/blogd/internal/config"
	"github.com/abduss/blogd/migrations"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeBuckets struct {
	exists  bool
	err     error
	created []string
}

func (f *fakeBuckets) BucketExists(ctx context.Context, bucket string) (bool, error) {
	return f.exists, f.err
}

func (f *fakeBuckets) MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error {
	f.created = append(f.created, bucket+"@"+opts.Region)
	return nil
}

func TestEnsureBucket(t *testing.T) {
	existing := &fakeBuckets{exists: true}
	require.NoError(t, EnsureBucket(context.Background(), existing, "images", ""))
	assert.Empty(t, existing.created)

	missing := &fakeBuckets{}
	require.NoError(t, EnsureBucket(context.Background(), missing, "images", "eu-west-1"))
	assert.Equal(t, []string{"images@eu-west-1"}, missing.created)

	broken := &fakeBuckets{err: errors.New("dial tcp: refused")}
	assert.ErrorContains(t, EnsureBucket(context.Background(), broken, "images", ""), `check bucket "images"`)
}

func TestNewMinIOClientRequiresEndpoint(t *testing.T) {
	_, err := NewMinIOClient(config.MinIOConfig{})
	assert.Error(t, err)

	client, err := NewMinIOClient(config.MinIOConfig{Endpoint: "minio", AccessKeyID: "k", SecretAccessKey: "s"})
	require.NoError(t, err)
	assert.Equal(t, "minio:9000", client.EndpointURL().Host)
}

func TestOpenImagesWithoutMirror(t *testing.T) {
	root := filepath.Join(t.TempDir(), "images")
	cfg := config.Config{Images: config.ImageConfig{Root: root, ResizedHeight: 432, ThumbnailSize: 200}}

	images, err := OpenImages(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, images.Mirror)
	require.NotNil(t, images.Lifecycle)

	for _, dir := range []string{"original", "resized", "thumbnails"} {
		info, err := os.Stat(filepath.Join(root, dir))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

type recordingExecer struct {
	statements []string
	failOn     string
}

func (r *recordingExecer) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if r.failOn != "" && strings.Contains(sql, r.failOn) {
		return pgconn.CommandTag{}, errors.New("syntax error")
	}
	r.statements = append(r.statements, sql)
	return pgconn.NewCommandTag("CREATE TABLE"), nil
}

func TestMigrateAppliesFilesInOrder(t *testing.T) {
	schema := fstest.MapFS{
		"0002_posts.sql": {Data: []byte("CREATE TABLE posts ();")},
		"0001_users.sql": {Data: []byte("CREATE TABLE users ();")},
		"README.md":      {Data: []byte("ignored")},
	}

	db := &recordingExecer{}
	applied, err := Migrate(context.Background(), db, schema)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_users.sql", "0002_posts.sql"}, applied)
	assert.Equal(t, []string{"CREATE TABLE users ();", "CREATE TABLE posts ();"}, db.statements)

	_, err = Migrate(context.Background(), &recordingExecer{failOn: "posts"}, schema)
	assert.ErrorContains(t, err, "apply migration 0002_posts.sql")
}

func TestEmbeddedSchemaDefinesTables(t *testing.T) {
	db := &recordingExecer{}
	applied, err := Migrate(context.Background(), db, migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, applied)
	for _, table := range []string{"users", "refresh_tokens", "posts"} {
		assert.Contains(t, strings.Join(db.statements, "\n"), "CREATE TABLE IF NOT EXISTS "+table)
	}
}
