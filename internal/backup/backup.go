// Package backup snapshots the local document cache to S3-compatible
// storage, encrypted with a user passphrase. Offline lists live only on
// the device, so the snapshot is their sole recovery path.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ferndale/pantryd/internal/cache"
	"github.com/ferndale/pantryd/internal/model"
)

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// snapshot is the on-wire layout of one backup, before encryption.
type snapshot struct {
	CreatedAt time.Time                     `json:"created_at"`
	Documents map[string]model.ListDocument `json:"documents"`
}

// Manager creates and restores encrypted cache snapshots.
type Manager struct {
	mu     sync.Mutex
	cfg    S3Config
	cache  *cache.Cache
	client s3Client
	log    *slog.Logger

	lastBackup time.Time
}

// NewManager creates a backup manager. It stays disabled until the
// bucket and keys are configured.
func NewManager(cfg S3Config, c *cache.Cache, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	m := &Manager{cfg: cfg, cache: c, log: log}
	if m.Enabled() {
		m.client = newS3Client(cfg)
	}
	return m
}

// Enabled reports whether snapshots can run with the current config.
func (m *Manager) Enabled() bool {
	return m.cfg.Bucket != "" && m.cfg.AccessKey != "" && m.cfg.SecretKey != ""
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Snapshot serializes every cached document, encrypts the result and
// uploads it. Returns the object key.
func (m *Manager) Snapshot(ctx context.Context, passphrase string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client == nil {
		return "", fmt.Errorf("backup not configured")
	}

	docs, err := m.cache.All()
	if err != nil {
		return "", fmt.Errorf("snapshot cache: %w", err)
	}

	payload, err := json.Marshal(snapshot{CreatedAt: time.Now().UTC(), Documents: docs})
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	salt, err := GenerateSalt()
	if err != nil {
		return "", err
	}
	sealed, err := Encrypt(payload, passphrase, salt)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("snapshots/pantryd-%s.enc", time.Now().UTC().Format("20060102-150405"))
	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(m.cfg.Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(sealed),
	})
	if err != nil {
		return "", fmt.Errorf("upload snapshot: %w", err)
	}

	m.lastBackup = time.Now().UTC()
	m.log.Info("snapshot uploaded", "key", key, "documents", len(docs))
	return key, nil
}

// Restore downloads and decrypts a snapshot and re-seeds the cache with
// its documents. Existing cache entries for the same lists are replaced.
func (m *Manager) Restore(ctx context.Context, key, passphrase string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client == nil {
		return 0, fmt.Errorf("backup not configured")
	}

	out, err := m.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return 0, fmt.Errorf("download snapshot: %w", err)
	}
	defer out.Body.Close()

	sealed, err := io.ReadAll(out.Body)
	if err != nil {
		return 0, fmt.Errorf("read snapshot: %w", err)
	}

	payload, err := Decrypt(sealed, passphrase)
	if err != nil {
		return 0, err
	}

	var snap snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return 0, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	restored := 0
	for listID, doc := range snap.Documents {
		if err := m.cache.Put(listID, doc); err != nil {
			return restored, fmt.Errorf("restore %s: %w", listID, err)
		}
		restored++
	}
	m.log.Info("snapshot restored", "key", key, "documents", restored)
	return restored, nil
}
