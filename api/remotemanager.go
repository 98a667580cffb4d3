package api

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/aouyang1/labboard/util"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/jonboulle/clockwork"
)

const (
	remoteCheckInterval = time.Hour
	remoteSyncTimeout   = 30 * time.Minute

	// DefaultAssetPrefix is the bucket prefix mirrored into <root>/assets.
	DefaultAssetPrefix = "assets/"
)

type s3API interface {
	s3.ListObjectsV2APIClient
	manager.DownloadAPIClient
}

type RemoteOptions struct {
	Profile  string
	Bucket   string
	Prefix   string
	RootPath string
}

// RemoteManager mirrors hero and promo images from an S3 bucket into the local assets
// directory served at /assets.
type RemoteManager struct {
	client s3API
	clock  clockwork.Clock

	s3Bucket   string
	prefix     string
	outputPath string

	Updated chan bool
}

func NewRemoteManager(ctx context.Context, opts RemoteOptions) (*RemoteManager, error) {
	if opts.Profile == "" {
		return nil, errors.New("no aws profile provided in LAB_AWS_PROFILE")
	}

	// Load the Shared AWS Configuration (~/.aws/config)
	ctxCfg, cancelCfg := context.WithTimeout(ctx, 3*time.Second)
	cfg, err := config.LoadDefaultConfig(
		ctxCfg,
		config.WithSharedConfigProfile(opts.Profile),
	)
	cancelCfg()
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return newRemoteManager(s3.NewFromConfig(cfg), clockwork.NewRealClock(), opts)
}

func newRemoteManager(client s3API, clock clockwork.Clock, opts RemoteOptions) (*RemoteManager, error) {
	if opts.Bucket == "" {
		return nil, errors.New("no s3 bucket provided in LAB_S3_BUCKET")
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultAssetPrefix
	}
	rootPath := opts.RootPath
	if rootPath == "" {
		rootPath = "."
	}

	return &RemoteManager{
		client:     client,
		clock:      clock,
		s3Bucket:   opts.Bucket,
		prefix:     prefix,
		outputPath: filepath.Join(rootPath, "assets"),
		Updated:    make(chan bool, 1),
	}, nil
}

func supportedAsset(name string) bool {
	return util.SupportedImageExt.Contains(path.Ext(name))
}

// getRemoteFiles lists asset paths relative to the prefix.
func (r *RemoteManager) getRemoteFiles(ctx context.Context) (mapset.Set[string], error) {
	remoteFiles := mapset.NewSet[string]()
	paginator := s3.NewListObjectsV2Paginator(r.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(r.s3Bucket),
		Prefix: aws.String(r.prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("unable to list s3 objects, %s, %w", r.s3Bucket, err)
		}
		for _, object := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(object.Key), r.prefix)
			if !supportedAsset(name) || !filepath.IsLocal(filepath.FromSlash(name)) {
				continue
			}
			remoteFiles.Add(name)
		}
	}

	if remoteFiles.Cardinality() == 0 {
		slog.Info("no remote assets found", "bucket", r.s3Bucket, "prefix", r.prefix)
	}
	return remoteFiles, nil
}

// getLocalFiles lists asset paths relative to the output directory, slash separated.
func (r *RemoteManager) getLocalFiles() (mapset.Set[string], error) {
	localFiles := mapset.NewSet[string]()
	err := filepath.WalkDir(r.outputPath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && p == r.outputPath {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() || !supportedAsset(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(r.outputPath, p)
		if err != nil {
			return err
		}
		localFiles.Add(filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to read directory, %s, %w", r.outputPath, err)
	}
	return localFiles, nil
}

func (r *RemoteManager) DownloadObject(ctx context.Context, name string) error {
	target := filepath.Join(r.outputPath, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("unable to create asset directory for %s, %w", name, err)
	}

	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("unable to create file for s3 download, %s, %w", name, err)
	}
	defer f.Close()

	downloader := manager.NewDownloader(r.client)
	if _, err := downloader.Download(ctx, f, &s3.GetObjectInput{
		Bucket: aws.String(r.s3Bucket),
		Key:    aws.String(r.prefix + name),
	}); err != nil {
		os.Remove(target)
		return fmt.Errorf("unable to download object from s3, %s, %w", name, err)
	}
	return nil
}

// SyncFolder makes the assets directory match the bucket and reports whether anything
// changed.
func (r *RemoteManager) SyncFolder(ctx context.Context) (bool, error) {
	localFiles, err := r.getLocalFiles()
	if err != nil {
		return false, err
	}

	remoteFiles, err := r.getRemoteFiles(ctx)
	if err != nil {
		return false, err
	}

	toDelete := localFiles.Difference(remoteFiles).ToSlice()
	toDownload := remoteFiles.Difference(localFiles).ToSlice()
	slices.Sort(toDelete)
	slices.Sort(toDownload)

	changed := false
	if len(toDelete) > 0 {
		slog.Info("deleting local assets", "count", len(toDelete), "names", toDelete)
		for _, name := range toDelete {
			if err := os.Remove(filepath.Join(r.outputPath, filepath.FromSlash(name))); err != nil {
				slog.Warn("unable to remove local asset", "name", name, "error", err)
				continue
			}
			changed = true
		}
	}
	if len(toDownload) > 0 {
		slog.Info("downloading assets", "count", len(toDownload), "names", toDownload)
		for _, name := range toDownload {
			if err := r.DownloadObject(ctx, name); err != nil {
				slog.Warn("error while downloading s3 object", "name", name, "error", err)
				continue
			}
			changed = true
		}
	}
	return changed, nil
}

func (r *RemoteManager) sync(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, remoteSyncTimeout)
	defer cancel()

	changed, err := r.SyncFolder(ctx)
	if err != nil {
		slog.Warn("error while syncing with remote", "error", err)
		return
	}
	if changed {
		select {
		case r.Updated <- true:
		default:
		}
	}
}

func (r *RemoteManager) Run(ctx context.Context) {
	ticker := r.clock.NewTicker(remoteCheckInterval)
	defer ticker.Stop()

	// Initial sync
	r.sync(ctx)
	for {
		select {
		case <-ticker.Chan():
			r.sync(ctx)
		case <-ctx.Done():
			return
		}
	}
}
