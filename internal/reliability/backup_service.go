// Package reliability snapshots the ledger and ships it to object storage.
package reliability

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Andre13Filho/FII-AI/internal/utils"
)

const (
	backupPrefix    = "fii-ledger-backup-"
	backupSuffix    = ".tar.gz"
	timestampLayout = "2006-01-02-150405"

	// MinBackupsToKeep survive rotation regardless of age.
	MinBackupsToKeep = 3
)

// Snapshotter writes a consistent copy of one data file to dst.
type Snapshotter interface {
	Name() string
	Snapshot(ctx context.Context, dst string) error
}

// FileSnapshot copies a file as is. Suitable for files replaced atomically.
type FileSnapshot struct {
	Path string
}

// Name implements Snapshotter.
func (f FileSnapshot) Name() string { return filepath.Base(f.Path) }

// Snapshot implements Snapshotter. A missing file is an error.
func (f FileSnapshot) Snapshot(ctx context.Context, dst string) error {
	src, err := os.Open(f.Path)
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// SQLiteSnapshot copies a live sqlite database with VACUUM INTO.
type SQLiteSnapshot struct {
	DB       *sql.DB
	FileName string
}

// Name implements Snapshotter.
func (s SQLiteSnapshot) Name() string { return s.FileName }

// Snapshot implements Snapshotter.
func (s SQLiteSnapshot) Snapshot(ctx context.Context, dst string) error {
	_, err := s.DB.ExecContext(ctx, "VACUUM INTO ?", dst)
	return err
}

// BackupMetadata contains metadata about a backup
type BackupMetadata struct {
	Timestamp time.Time      `json:"timestamp"`
	Files     []FileMetadata `json:"files"`
}

// FileMetadata describes one file inside the archive.
type FileMetadata struct {
	Name      string `json:"name"`
	SizeBytes int64  `json:"size_bytes"`
	Checksum  string `json:"checksum"`
}

// BackupInfo represents information about a stored backup
type BackupInfo struct {
	Key       string    `json:"key"`
	Timestamp time.Time `json:"timestamp"`
	SizeBytes int64     `json:"size_bytes"`
	AgeHours  int64     `json:"age_hours"`
}

// BackupService archives the ledger files and uploads them.
type BackupService struct {
	store   ObjectStore
	sources []Snapshotter
	now     func() time.Time
	log     zerolog.Logger
}

// NewBackupService creates a backup service for the given files.
func NewBackupService(store ObjectStore, sources []Snapshotter, log zerolog.Logger) *BackupService {
	return &BackupService{
		store:   store,
		sources: sources,
		now:     time.Now,
		log:     log.With().Str("service", "backup").Logger(),
	}
}

// Backup snapshots every source into a tar.gz archive, uploads it and
// returns the object key.
func (s *BackupService) Backup(ctx context.Context) (string, error) {
	s.log.Info().Msg("Starting ledger backup")
	defer utils.OperationTimer("ledger_backup", 30*time.Second, s.log)()
	start := s.now()

	stagingDir, err := os.MkdirTemp("", "fii-backup-*")
	if err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(stagingDir)

	metadata := BackupMetadata{Timestamp: start.UTC()}
	names := make([]string, 0, len(s.sources)+1)

	for _, src := range s.sources {
		name := src.Name()
		path := filepath.Join(stagingDir, name)
		if err := src.Snapshot(ctx, path); err != nil {
			return "", fmt.Errorf("failed to snapshot %s: %w", name, err)
		}

		info, err := os.Stat(path)
		if err != nil {
			return "", fmt.Errorf("failed to stat %s snapshot: %w", name, err)
		}
		checksum, err := fileChecksum(path)
		if err != nil {
			return "", fmt.Errorf("failed to calculate checksum for %s: %w", name, err)
		}

		metadata.Files = append(metadata.Files, FileMetadata{Name: name, SizeBytes: info.Size(), Checksum: checksum})
		names = append(names, name)
	}

	metaBytes, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(stagingDir, "backup-metadata.json"), metaBytes, 0o644); err != nil {
		return "", fmt.Errorf("failed to write metadata: %w", err)
	}
	names = append(names, "backup-metadata.json")

	var archive bytes.Buffer
	if err := writeArchive(&archive, stagingDir, names); err != nil {
		return "", fmt.Errorf("failed to create archive: %w", err)
	}

	key := backupPrefix + start.UTC().Format(timestampLayout) + backupSuffix
	size := archive.Len()
	if err := s.store.Upload(ctx, key, &archive); err != nil {
		return "", fmt.Errorf("failed to upload backup: %w", err)
	}

	s.log.Info().
		Str("key", key).
		Int("size_bytes", size).
		Dur("duration", s.now().Sub(start)).
		Msg("Ledger backup completed")
	return key, nil
}

// ListBackups returns the stored backups, newest first.
func (s *BackupService) ListBackups(ctx context.Context) ([]BackupInfo, error) {
	objects, err := s.store.List(ctx, backupPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}

	now := s.now()
	backups := make([]BackupInfo, 0, len(objects))
	for _, obj := range objects {
		ts, ok := parseBackupKey(obj.Key)
		if !ok {
			s.log.Warn().Str("key", obj.Key).Msg("Skipping object with unexpected name")
			continue
		}
		backups = append(backups, BackupInfo{
			Key:       obj.Key,
			Timestamp: ts,
			SizeBytes: obj.Size,
			AgeHours:  int64(now.Sub(ts).Hours()),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}

// RotateOldBackups deletes backups older than retentionDays, always keeping
// the newest MinBackupsToKeep. Zero retention keeps everything. Returns the
// number deleted.
func (s *BackupService) RotateOldBackups(ctx context.Context, retentionDays int) (int, error) {
	backups, err := s.ListBackups(ctx)
	if err != nil {
		return 0, err
	}
	if retentionDays <= 0 || len(backups) <= MinBackupsToKeep {
		return 0, nil
	}

	cutoff := s.now().AddDate(0, 0, -retentionDays)
	deleted := 0
	for _, b := range backups[MinBackupsToKeep:] {
		if !b.Timestamp.Before(cutoff) {
			continue
		}
		if err := s.store.Delete(ctx, b.Key); err != nil {
			s.log.Error().Err(err).Str("key", b.Key).Msg("Failed to delete old backup")
			continue
		}
		deleted++
	}

	s.log.Info().Int("deleted", deleted).Int("remaining", len(backups)-deleted).Msg("Backup rotation completed")
	return deleted, nil
}

func parseBackupKey(key string) (time.Time, bool) {
	if !strings.HasPrefix(key, backupPrefix) || !strings.HasSuffix(key, backupSuffix) {
		return time.Time{}, false
	}
	raw := strings.TrimSuffix(strings.TrimPrefix(key, backupPrefix), backupSuffix)
	ts, err := time.Parse(timestampLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

func fileChecksum(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return fmt.Sprintf("sha256:%x", hash.Sum(nil)), nil
}

func writeArchive(w io.Writer, dir string, names []string) error {
	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)

	for _, name := range names {
		if err := addFile(tw, filepath.Join(dir, name), name); err != nil {
			return fmt.Errorf("failed to add %s to archive: %w", name, err)
		}
	}

	if err := tw.Close(); err != nil {
		return err
	}
	return gz.Close()
}

func addFile(tw *tar.Writer, path, name string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	header := &tar.Header{
		Name:    name,
		Size:    info.Size(),
		Mode:    int64(info.Mode().Perm()),
		ModTime: info.ModTime(),
	}
	if err := tw.WriteHeader(header); err != nil {
		return err
	}
	_, err = io.Copy(tw, file)
	return err
}
