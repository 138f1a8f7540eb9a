package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"slackmcp/internal/domain"
)

func TestWatcherReportsCredentialChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "slackmcp.yaml")
	require.NoError(t, os.WriteFile(path, []byte("auth:\n  token: xoxb-initial\n"), 0o600))

	loader := NewLoader(nil)
	cfg, err := loader.Load(context.Background(), path)
	require.NoError(t, err)

	var mu sync.Mutex
	var received []domain.Credential
	watcher := NewWatcher(loader, path, cfg.Auth, nil)
	watcher.OnCredential = func(cred domain.Credential) {
		mu.Lock()
		received = append(received, cred)
		mu.Unlock()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		watcher.Run(ctx)
	}()

	// Give the watch a moment to attach before rewriting.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("auth:\n  token: xoxb-rotated\n"), 0o600))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 1 && received[0].Token == "xoxb-rotated"
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	<-done
}

func TestWatcherIgnoresUnchangedAuth(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "slackmcp.yaml")
	content := []byte("auth:\n  token: xoxb-initial\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	loader := NewLoader(nil)
	cfg, err := loader.Load(context.Background(), path)
	require.NoError(t, err)

	var mu sync.Mutex
	var count int
	watcher := NewWatcher(loader, path, cfg.Auth, nil)
	watcher.OnCredential = func(domain.Credential) {
		mu.Lock()
		count++
		mu.Unlock()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Run(ctx)

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	time.Sleep(3 * reloadDebounce)
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 0, count)
}

func TestWatcherKeepsCredentialOnBrokenReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "slackmcp.yaml")
	require.NoError(t, os.WriteFile(path, []byte("auth:\n  token: xoxb-initial\n"), 0o600))

	loader := NewLoader(nil)
	cfg, err := loader.Load(context.Background(), path)
	require.NoError(t, err)

	var mu sync.Mutex
	var count int
	watcher := NewWatcher(loader, path, cfg.Auth, nil)
	watcher.OnCredential = func(domain.Credential) {
		mu.Lock()
		count++
		mu.Unlock()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Run(ctx)

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("auth:\n  token: ''\n"), 0o600))

	time.Sleep(3 * reloadDebounce)
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 0, count, "a broken config must not replace the working credential")
}
