package membership

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"roster-sync/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// ErrReportNotFound is returned when an archived report does not exist.
var ErrReportNotFound = errors.New("report not found")

// ReportArchive stores run reports as JSON objects named "<prefix>/<RFC3339>-<run id>.json".
type ReportArchive struct {
	client    storage.Client
	bucket    string
	region    string
	prefix    string
	retention int
	logger    *zap.Logger
}

// NewReportArchive creates an archive in bucket. retention limits the number of kept reports; zero keeps all.
func NewReportArchive(client storage.Client, bucket, region string, cfg Config, logger *zap.Logger) *ReportArchive {
	prefix := strings.Trim(cfg.ReportPrefix, "/")
	if prefix == "" {
		prefix = "reports"
	}
	return &ReportArchive{
		client:    client,
		bucket:    bucket,
		region:    region,
		prefix:    prefix,
		retention: cfg.ReportRetention,
		logger:    logger,
	}
}

// ReportName returns the archive name of a report.
func ReportName(r *Report) string {
	return r.StartedAt.UTC().Format(time.RFC3339) + "-" + r.RunID + ".json"
}

// Save uploads the report and applies the retention limit. It returns the object name.
func (a *ReportArchive) Save(ctx context.Context, r *Report) (string, error) {
	if err := storage.EnsureBucket(ctx, a.client, a.bucket, a.region); err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	key := a.prefix + "/" + ReportName(r)
	_, err = a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report %s: %w", key, err)
	}

	if a.retention > 0 {
		if err := a.prune(ctx); err != nil {
			a.logger.Warn("Failed to prune archived reports", zap.Error(err))
		}
	}

	return key, nil
}

// List returns the archived report names, newest first.
func (a *ReportArchive) List(ctx context.Context) ([]string, error) {
	keys, err := storage.ListKeys(ctx, a.client, a.bucket, a.prefix+"/")
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(keys))
	for _, key := range keys {
		if name := strings.TrimPrefix(key, a.prefix+"/"); strings.HasSuffix(name, ".json") {
			names = append(names, name)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

// Get returns the raw JSON of an archived report.
func (a *ReportArchive) Get(ctx context.Context, name string) ([]byte, error) {
	if name == "" || strings.Contains(name, "/") || !strings.HasSuffix(name, ".json") {
		return nil, ErrReportNotFound
	}

	obj, err := a.client.GetObject(ctx, a.bucket, a.prefix+"/"+name, minio.GetObjectOptions{})
	if err != nil {
		return nil, a.readError(name, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, a.readError(name, err)
	}
	return data, nil
}

func (a *ReportArchive) readError(name string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return ErrReportNotFound
	}
	return fmt.Errorf("failed to read report %s: %w", name, err)
}

// prune removes the oldest reports beyond the retention limit.
func (a *ReportArchive) prune(ctx context.Context) error {
	names, err := a.List(ctx)
	if err != nil {
		return err
	}
	if len(names) <= a.retention {
		return nil
	}

	stale := make([]string, 0, len(names)-a.retention)
	for _, name := range names[a.retention:] {
		stale = append(stale, a.prefix+"/"+name)
	}

	a.logger.Info("Pruning archived reports", zap.Int("count", len(stale)))
	return storage.RemoveKeys(ctx, a.client, a.bucket, stale)
}
