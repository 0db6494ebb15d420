package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"housepoint/internal/model"
)

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Source provides the snapshot to export. Satisfied by *ledger.Ledger.
type Source interface {
	Snapshot() model.Snapshot
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// Config holds backup manager configuration.
type Config struct {
	S3       S3Config
	Interval time.Duration
}

// State represents the backup manager state.
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateDisabled State = "disabled"
	StateError    State = "error"
)

// Status holds the current backup manager status.
type Status struct {
	State      State      `json:"state"`
	LastBackup *time.Time `json:"last_backup,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// StatusCallback is called whenever the backup state changes.
type StatusCallback func(Status)

// Manager periodically exports the ledger snapshot as JSON to
// S3-compatible storage. It is a pure reader of the ledger: a failed
// export never touches ledger state.
type Manager struct {
	mu       sync.RWMutex
	cfg      Config
	status   Status
	source   Source
	client   s3Client
	callback StatusCallback
	logger   *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager creates a backup manager. It stays disabled unless bucket
// and credentials are configured.
func NewManager(cfg Config, source Source, callback StatusCallback, logger *slog.Logger) *Manager {
	m := &Manager{
		cfg:      cfg,
		source:   source,
		callback: callback,
		logger:   logger,
		status:   Status{State: StateDisabled},
	}

	if cfg.S3.Bucket != "" && cfg.S3.AccessKey != "" && cfg.S3.SecretKey != "" {
		m.client = newS3Client(cfg.S3)
		m.status.State = StateIdle
	}

	return m
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

// Start begins the scheduled export loop.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.status.State == StateDisabled {
		m.mu.Unlock()
		return
	}
	interval := m.cfg.Interval
	if interval <= 0 {
		interval = time.Hour
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	m.mu.Unlock()

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := m.BackupNow(ctx); err != nil {
					m.logger.Error("scheduled backup", "error", err)
				}
			}
		}
	}()
}

// Stop gracefully stops the export loop.
func (m *Manager) Stop() {
	m.mu.RLock()
	cancel := m.cancel
	done := m.done
	m.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Status returns the current manager status.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// BackupNow exports the current snapshot immediately.
func (m *Manager) BackupNow(ctx context.Context) error {
	m.mu.Lock()
	if m.client == nil {
		m.mu.Unlock()
		return fmt.Errorf("backups are disabled")
	}
	if m.status.State == StateRunning {
		m.mu.Unlock()
		return fmt.Errorf("backup already in progress")
	}
	m.setStatusLocked(Status{State: StateRunning, LastBackup: m.status.LastBackup})
	client := m.client
	bucket := m.cfg.S3.Bucket
	m.mu.Unlock()

	data, err := json.Marshal(exportFromSnapshot(m.source.Snapshot()))
	if err != nil {
		m.fail(fmt.Errorf("marshal snapshot: %w", err))
		return err
	}

	now := time.Now().UTC()
	key := fmt.Sprintf("housepoint/snapshot-%s.json", now.Format("20060102T150405Z"))
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		err = fmt.Errorf("upload snapshot: %w", err)
		m.fail(err)
		return err
	}

	m.mu.Lock()
	m.setStatusLocked(Status{State: StateIdle, LastBackup: &now})
	m.mu.Unlock()

	m.logger.Info("snapshot backed up", "key", key, "bytes", len(data))
	return nil
}

func (m *Manager) fail(err error) {
	m.mu.Lock()
	m.setStatusLocked(Status{State: StateError, LastBackup: m.status.LastBackup, Error: err.Error()})
	m.mu.Unlock()
}

// setStatusLocked updates the status and fires the callback. Callers hold mu.
func (m *Manager) setStatusLocked(s Status) {
	m.status = s
	if m.callback != nil {
		go m.callback(s)
	}
}

// export mirrors the snapshot store's key layout so a backup object can
// be restored entry by entry.
type export struct {
	Users          []model.User          `json:"users"`
	Chores         []model.Chore         `json:"chores"`
	Rewards        []model.Reward        `json:"rewards"`
	PendingRewards []model.PendingReward `json:"pendingRewards"`
}

func exportFromSnapshot(snap model.Snapshot) export {
	return export{
		Users:          snap.Users,
		Chores:         snap.Chores,
		Rewards:        snap.Rewards,
		PendingRewards: snap.PendingRewards,
	}
}
