package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/linetrack/internal/repository/store"
)

func newService(t *testing.T) (*Service, store.Store) {
	t.Helper()
	s, err := store.NewBoltStore(filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return NewService(s, nil), s
}

func TestTokenAbsentIsAnonymous(t *testing.T) {
	svc, _ := newService(t)

	token, err := svc.Token(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)

	_, ok, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSaveLoadClear(t *testing.T) {
	ctx := context.Background()
	svc, s := newService(t)

	sess := Session{
		Token:        "tok",
		RefreshToken: "ref",
		User:         User{ID: 3, Username: "sup3", FullName: "Line Supervisor"},
		Permissions:  []string{"hourly:write"},
	}
	require.NoError(t, svc.Save(ctx, sess))

	token, err := svc.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", token)

	got, ok, err := svc.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sess, got)

	require.NoError(t, s.Set(ctx, store.KeyAppSettings, "{}"))
	require.NoError(t, svc.Clear(ctx))

	keys, err := s.ListKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{store.KeyAppSettings}, keys)
}

func TestSaveRequiresToken(t *testing.T) {
	svc, _ := newService(t)
	assert.Error(t, svc.Save(context.Background(), Session{}))
}
