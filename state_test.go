// FILE: lixenwraith/reload/state_test.go
package reload

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestState(t *testing.T, dir string) *State {
	t.Helper()

	verifier, _, err := ResolveKeyMaterial(AuthConfig{JWTSecret: "state-test-secret"})
	require.NoError(t, err)

	sink, err := NewAuditSink(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sink.Close() })

	return NewState(verifier, sink, NewMemoryQueue(), NewUpdates())
}

func TestStateSwapVerifier(t *testing.T) {
	s := newTestState(t, "")
	before := s.Verifier()

	replacement, _, err := ResolveKeyMaterial(AuthConfig{JWTSecret: "rotated"})
	require.NoError(t, err)

	old := s.SwapVerifier(replacement)
	assert.Same(t, before, old)
	assert.Same(t, replacement, s.Verifier())
}

func TestStateSwapAuditSink(t *testing.T) {
	s := newTestState(t, "")

	next, err := NewAuditSink(t.TempDir())
	require.NoError(t, err)
	defer next.Close()

	old := s.SwapAuditSink(next)
	require.NotNil(t, old)
	assert.Same(t, next, s.AuditSink())
}

func TestStateAuditWritesEntry(t *testing.T) {
	dir := t.TempDir()
	s := newTestState(t, dir)

	s.Audit("POST", "/api/things", map[string]string{"id": "7"}, map[string]string{"q": "x"}, map[string]any{"name": "thing"})

	f, err := os.Open(filepath.Join(dir, "audit.log"))
	require.NoError(t, err)
	defer f.Close()

	scanner := bufio.NewScanner(f)
	require.True(t, scanner.Scan(), "expected one audit line")

	var entry AuditEntry
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
	assert.Equal(t, AuditCategoryRequest, entry.Category)
	assert.Equal(t, "POST /api/things", entry.Message)
	assert.Equal(t, "/api/things", entry.Metadata["path"])
}

func TestStateVerifierUsableAcrossSwap(t *testing.T) {
	s := newTestState(t, "")

	// A request that captured the old verifier keeps a working instance even
	// after rotation lands.
	captured := s.Verifier()
	token, err := captured.Issue(context.Background(), "alice", time.Minute)
	require.NoError(t, err)

	replacement, _, err := ResolveKeyMaterial(AuthConfig{JWTSecret: "rotated"})
	require.NoError(t, err)
	s.SwapVerifier(replacement)

	subject, err := captured.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)
}
