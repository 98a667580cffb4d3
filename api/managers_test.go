package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLocalManager_Scan(t *testing.T) {
	root := t.TempDir()
	slidesDir := filepath.Join(root, "slides")
	writeFile(t, filepath.Join(slidesDir, "status.html"), "<section data-slide=\"status\"></section>")
	writeFile(t, filepath.Join(slidesDir, "notes.txt"), "ignored")

	l, err := NewLocalManager(root, clockwork.NewFakeClock())
	require.NoError(t, err)
	assert.False(t, l.scan())

	writeFile(t, filepath.Join(slidesDir, "hours.htm"), "<section data-slide=\"hours\"></section>")
	assert.True(t, l.scan())
	assert.False(t, l.scan())

	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(slidesDir, "status.html"), later, later))
	assert.True(t, l.scan())

	writeFile(t, filepath.Join(slidesDir, "other.txt"), "still ignored")
	assert.False(t, l.scan())

	require.NoError(t, os.Remove(filepath.Join(slidesDir, "hours.htm")))
	assert.True(t, l.scan())
}

func TestLocalManager_RunSignalsUpdate(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "slides", "status.html"), "<section></section>")
	clock := clockwork.NewFakeClock()
	l, err := NewLocalManager(root, clock)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)
	require.NoError(t, clock.BlockUntilContext(ctx, 1))

	writeFile(t, filepath.Join(root, "slides", "promo.html"), "<section></section>")
	clock.Advance(localCheckInterval)

	select {
	case <-l.Updated:
	case <-time.After(time.Second):
		t.Fatal("no update signalled")
	}
}

func TestNewLocalManager_MissingDir(t *testing.T) {
	_, err := NewLocalManager(filepath.Join(t.TempDir(), "nope"), nil)
	assert.Error(t, err)

	_, err = NewLocalManager("", nil)
	assert.Error(t, err)
}

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	listErr error
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	keys := make([]string, 0, len(f.objects))
	for key := range f.objects {
		if strings.HasPrefix(key, aws.ToString(in.Prefix)) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)

	out := &s3.ListObjectsV2Output{}
	for _, key := range keys {
		out.Contents = append(out.Contents, s3types.Object{Key: aws.String(key)})
	}
	return out, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: aws.Int64(int64(len(data))),
	}, nil
}

func TestRemoteManager_SyncFolder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "assets", "promo", "old.png"), "old")
	writeFile(t, filepath.Join(root, "assets", "hero", "hero-image.jpg"), "hero")
	writeFile(t, filepath.Join(root, "assets", "readme.txt"), "not an image")

	fake := &fakeS3{objects: map[string][]byte{
		"assets/hero/hero-image.jpg": []byte("hero"),
		"assets/promo/spring.webp":   []byte("spring"),
		"assets/../escape.jpg":       []byte("nope"),
		"assets/notes.md":            []byte("nope"),
		"other/unrelated.jpg":        []byte("nope"),
	}}
	r, err := newRemoteManager(fake, clockwork.NewFakeClock(), RemoteOptions{Bucket: "lab-board", RootPath: root})
	require.NoError(t, err)

	changed, err := r.SyncFolder(context.Background())
	require.NoError(t, err)
	assert.True(t, changed)

	data, err := os.ReadFile(filepath.Join(root, "assets", "promo", "spring.webp"))
	require.NoError(t, err)
	assert.Equal(t, "spring", string(data))
	assert.NoFileExists(t, filepath.Join(root, "assets", "promo", "old.png"))
	assert.FileExists(t, filepath.Join(root, "assets", "readme.txt"))
	assert.NoFileExists(t, filepath.Join(root, "escape.jpg"))

	changed, err = r.SyncFolder(context.Background())
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestRemoteManager_ListFailure(t *testing.T) {
	fake := &fakeS3{listErr: errors.New("access denied")}
	r, err := newRemoteManager(fake, clockwork.NewFakeClock(), RemoteOptions{Bucket: "lab-board", RootPath: t.TempDir()})
	require.NoError(t, err)

	_, err = r.SyncFolder(context.Background())
	assert.ErrorContains(t, err, "access denied")

	_, err = newRemoteManager(fake, clockwork.NewFakeClock(), RemoteOptions{})
	assert.Error(t, err)
}
