package repository

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHashStore struct {
	hashes map[string]map[string]int64
	err    error
}

func newFakeHashStore() *fakeHashStore {
	return &fakeHashStore{hashes: make(map[string]map[string]int64)}
}

func (f *fakeHashStore) HIncrBy(ctx context.Context, key, field string, incr int64) *redis.IntCmd {
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	if f.hashes[key] == nil {
		f.hashes[key] = make(map[string]int64)
	}
	f.hashes[key][field] += incr
	return redis.NewIntResult(f.hashes[key][field], nil)
}

func (f *fakeHashStore) HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd {
	if f.err != nil {
		return redis.NewMapStringStringResult(nil, f.err)
	}
	out := make(map[string]string)
	for field, n := range f.hashes[key] {
		out[field] = strconv.FormatInt(n, 10)
	}
	return redis.NewMapStringStringResult(out, nil)
}

func TestUsageRepo_RecordAndSnapshot(t *testing.T) {
	store := newFakeHashStore()
	repo := NewUsageRepo(store)
	ctx := context.Background()

	require.NoError(t, repo.Record(ctx, "gemini-2.5-flash", "not_found"))
	require.NoError(t, repo.Record(ctx, "gemini-1.5-pro", "success"))
	require.NoError(t, repo.Record(ctx, "gemini-1.5-pro", "success"))

	assert.Equal(t, int64(1), store.hashes["relay:usage:gemini-2.5-flash"]["not_found"])

	snap, err := repo.Snapshot(ctx, []string{"gemini-2.5-flash", "gemini-1.5-pro", "unused"})
	require.NoError(t, err)
	assert.Equal(t, map[string]map[string]int64{
		"gemini-2.5-flash": {"not_found": 1},
		"gemini-1.5-pro":   {"success": 2},
	}, snap)
}

func TestUsageRepo_Errors(t *testing.T) {
	store := newFakeHashStore()
	store.err = errors.New("connection refused")
	repo := NewUsageRepo(store)

	assert.ErrorContains(t, repo.Record(context.Background(), "m", "success"), "connection refused")

	_, err := repo.Snapshot(context.Background(), []string{"m"})
	assert.ErrorContains(t, err, "connection refused")
}
