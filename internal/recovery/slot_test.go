package recovery

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisSlot(t *testing.T) (*RedisSlot, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisSlot(client, "timer:pendingPhase"), mr
}

func exerciseSlot(t *testing.T, slot Slot) {
	t.Helper()
	ctx := context.Background()

	raw, err := slot.Read(ctx)
	require.NoError(t, err)
	assert.Nil(t, raw)

	require.NoError(t, slot.Write(ctx, []byte(`{"n":1}`)))
	require.NoError(t, slot.Write(ctx, []byte(`{"n":2}`)))
	raw, err = slot.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"n":2}`, string(raw))

	require.NoError(t, slot.Delete(ctx))
	require.NoError(t, slot.Delete(ctx))
	raw, err = slot.Read(ctx)
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestFileSlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "pending-phase.json")
	exerciseSlot(t, NewFileSlot(path))
}

func TestFileSlotLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	slot := NewFileSlot(filepath.Join(dir, "pending-phase.json"))
	for i := 0; i < 5; i++ {
		require.NoError(t, slot.Write(context.Background(), []byte("x")))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "pending-phase.json", entries[0].Name())
}

func TestRedisSlot(t *testing.T) {
	slot, mr := newRedisSlot(t)
	exerciseSlot(t, slot)
	assert.False(t, mr.Exists("timer:pendingPhase"))
}

func TestRedisSlotReportsConnectionErrors(t *testing.T) {
	slot, mr := newRedisSlot(t)
	mr.Close()

	_, err := slot.Read(context.Background())
	assert.Error(t, err)
	assert.Error(t, slot.Write(context.Background(), []byte("x")))
}
