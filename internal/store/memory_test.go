package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_LoadSave(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, ok, err := m.Load(ctx, "session")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Save(ctx, "session", []byte("first")))
	require.NoError(t, m.Save(ctx, "session", []byte("second")))

	data, ok, err := m.Load(ctx, "session")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "second", string(data))

	backup, ok, err := m.LoadBackup(ctx, "session")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "first", string(backup))
}

func TestMemory_CopiesValues(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	in := []byte("abc")
	require.NoError(t, m.Save(ctx, "k", in))
	in[0] = 'z'

	out, _, _ := m.Load(ctx, "k")
	assert.Equal(t, "abc", string(out))
	out[0] = 'y'

	again, _, _ := m.Load(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestMemory_FailSave(t *testing.T) {
	m := NewMemory()
	boom := errors.New("disk full")
	m.FailSave = boom

	err := m.Save(context.Background(), "k", []byte("x"))
	assert.ErrorIs(t, err, boom)

	_, ok, _ := m.Load(context.Background(), "k")
	assert.False(t, ok)
}

func TestMemory_PutAndDelete(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Save(ctx, "k", []byte("good")))
	m.Put("k", []byte("{broken"))

	data, _, _ := m.Load(ctx, "k")
	assert.Equal(t, "{broken", string(data))
	_, ok, _ := m.LoadBackup(ctx, "k")
	assert.False(t, ok, "Put must not create a backup")

	require.NoError(t, m.Delete(ctx, "k"))
	_, ok, _ = m.Load(ctx, "k")
	assert.False(t, ok)
}
