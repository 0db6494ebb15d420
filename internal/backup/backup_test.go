package backup

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"housepoint/internal/model"
)

// fakeS3Client implements s3Client for testing.
type fakeS3Client struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newFakeS3() *fakeS3Client {
	return &fakeS3Client{objects: make(map[string][]byte)}
}

func (f *fakeS3Client) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	data, _ := io.ReadAll(input.Body)
	f.objects[*input.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3Client) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.objects))
	for k := range f.objects {
		keys = append(keys, k)
	}
	return keys
}

// fixedSource returns a canned snapshot.
type fixedSource struct {
	snap model.Snapshot
}

func (s fixedSource) Snapshot() model.Snapshot { return s.snap }

func enabledConfig() Config {
	return Config{
		S3:       S3Config{Bucket: "test", AccessKey: "key", SecretKey: "secret"},
		Interval: time.Hour,
	}
}

func TestManagerStateLifecycle(t *testing.T) {
	// Without S3 config -> disabled.
	m := NewManager(Config{}, fixedSource{}, nil, slog.Default())
	if m.Status().State != StateDisabled {
		t.Errorf("state = %q, want %q", m.Status().State, StateDisabled)
	}

	// With S3 config -> idle.
	m2 := NewManager(enabledConfig(), fixedSource{}, nil, slog.Default())
	if m2.Status().State != StateIdle {
		t.Errorf("state = %q, want %q", m2.Status().State, StateIdle)
	}
}

func TestBackupNowUploadsSnapshot(t *testing.T) {
	fake := newFakeS3()
	famID := uuid.New()
	source := fixedSource{snap: model.Snapshot{
		Users:   []model.User{{ID: uuid.New(), Username: "parent", IsParent: true, FamilyID: famID}},
		Rewards: []model.Reward{{ID: uuid.New(), Name: "Movie Night", Cost: 15, FamilyID: famID}},
	}}

	m := NewManager(enabledConfig(), source, nil, slog.Default())
	m.client = fake

	if err := m.BackupNow(context.Background()); err != nil {
		t.Fatalf("backup: %v", err)
	}

	keys := fake.keys()
	if len(keys) != 1 {
		t.Fatalf("expected 1 uploaded object, got %d", len(keys))
	}
	if !strings.HasPrefix(keys[0], "housepoint/snapshot-") || !strings.HasSuffix(keys[0], ".json") {
		t.Errorf("unexpected object key %q", keys[0])
	}

	var got export
	if err := json.Unmarshal(fake.objects[keys[0]], &got); err != nil {
		t.Fatalf("unmarshal uploaded object: %v", err)
	}
	if len(got.Users) != 1 || got.Users[0].Username != "parent" {
		t.Error("uploaded object should contain the user directory")
	}
	if len(got.Rewards) != 1 || got.Rewards[0].Cost != 15 {
		t.Error("uploaded object should contain the reward catalog")
	}

	status := m.Status()
	if status.State != StateIdle {
		t.Errorf("state after backup = %q, want %q", status.State, StateIdle)
	}
	if status.LastBackup == nil {
		t.Error("LastBackup should be set after a successful backup")
	}
}

func TestBackupNowUploadFailure(t *testing.T) {
	fake := newFakeS3()
	fake.putErr = errors.New("bucket unreachable")

	m := NewManager(enabledConfig(), fixedSource{}, nil, slog.Default())
	m.client = fake

	if err := m.BackupNow(context.Background()); err == nil {
		t.Fatal("expected an error from a failed upload")
	}

	status := m.Status()
	if status.State != StateError {
		t.Errorf("state = %q, want %q", status.State, StateError)
	}
	if status.Error == "" {
		t.Error("status should carry the failure reason")
	}
}

func TestBackupNowDisabled(t *testing.T) {
	m := NewManager(Config{}, fixedSource{}, nil, slog.Default())
	if err := m.BackupNow(context.Background()); err == nil {
		t.Fatal("expected an error when backups are disabled")
	}
}

func TestManagerStatusCallback(t *testing.T) {
	var mu sync.Mutex
	var received []Status
	done := make(chan struct{}, 4)
	cb := func(s Status) {
		mu.Lock()
		received = append(received, s)
		mu.Unlock()
		done <- struct{}{}
	}

	m := NewManager(enabledConfig(), fixedSource{}, cb, slog.Default())
	m.client = newFakeS3()

	if err := m.BackupNow(context.Background()); err != nil {
		t.Fatalf("backup: %v", err)
	}

	// Callbacks fire asynchronously; wait for the running + idle pair.
	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for status callbacks")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	states := map[State]bool{}
	for _, s := range received {
		states[s.State] = true
	}
	if !states[StateRunning] || !states[StateIdle] {
		t.Errorf("expected running and idle callbacks, got %v", received)
	}
}

func TestManagerStopSafety(t *testing.T) {
	m := NewManager(enabledConfig(), fixedSource{}, nil, slog.Default())
	m.client = newFakeS3()

	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)
	cancel()
	m.Stop()

	// Double stop should not panic.
	m.Stop()
}

func TestManagerDisabledNoStart(t *testing.T) {
	m := NewManager(Config{}, fixedSource{}, nil, slog.Default())

	m.Start(context.Background())

	// Stop should not block when Start was a no-op.
	m.Stop()
}
