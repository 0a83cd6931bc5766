package localstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type kvPayload struct {
	Name   string            `json:"name"`
	Count  int               `json:"count"`
	Labels map[string]string `json:"labels"`
}

func newTestKV(t *testing.T) *KV {
	t.Helper()
	return NewKV(filepath.Join(t.TempDir(), "data.json"), zap.NewNop())
}

func TestKVReadSeedsDefault(t *testing.T) {
	kv := newTestKV(t)

	got := Read(kv, "missing", kvPayload{Name: "default", Count: 7})
	assert.Equal(t, "default", got.Name)
	assert.Equal(t, 7, got.Count)

	// The default is now persisted; a fresh instance over the same file
	// must see it.
	reopened := NewKV(kv.Path(), zap.NewNop())
	again := Read(reopened, "missing", kvPayload{})
	assert.Equal(t, "default", again.Name)
}

func TestKVWriteReadRoundTrip(t *testing.T) {
	kv := newTestKV(t)

	want := kvPayload{
		Name:   "ravi",
		Count:  3,
		Labels: map[string]string{"village": "anand", "route": "7"},
	}
	Write(kv, "payload", want)

	got := Read(kv, "payload", kvPayload{})
	assert.Equal(t, want, got)

	// Deep-equal across a reload from disk too.
	reopened := NewKV(kv.Path(), zap.NewNop())
	assert.Equal(t, want, Read(reopened, "payload", kvPayload{}))
}

func TestKVUpdateAppliesFunctionOfPrevious(t *testing.T) {
	kv := newTestKV(t)

	Write(kv, "counter", 10)
	got := Update(kv, "counter", 0, func(prev int) int { return prev + 5 })
	assert.Equal(t, 15, got)
	assert.Equal(t, 15, Read(kv, "counter", 0))
}

func TestKVUpdateStartsFromDefaultWhenUnset(t *testing.T) {
	kv := newTestKV(t)

	got := Update(kv, "list", []string{}, func(prev []string) []string {
		return append(prev, "first")
	})
	require.Len(t, got, 1)
	assert.Equal(t, "first", got[0])
}

func TestKVCorruptFileFallsBackToDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	kv := NewKV(path, zap.NewNop())
	got := Read(kv, "anything", "fallback")
	assert.Equal(t, "fallback", got)
}

func TestKVCorruptValueFallsBackToDefault(t *testing.T) {
	kv := newTestKV(t)

	// Store a string where the caller later expects a struct.
	Write(kv, "entry", "not a struct")
	got := Read(kv, "entry", kvPayload{Name: "seeded"})
	assert.Equal(t, "seeded", got.Name)
}
