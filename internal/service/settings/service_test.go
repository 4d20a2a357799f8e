package settings

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/linetrack/internal/domain/models"
	"github.com/mamadbah2/linetrack/internal/repository/store"
)

type recordingController struct {
	calls []string
}

func (r *recordingController) Start(context.Context) error {
	r.calls = append(r.calls, "start")
	return nil
}

func (r *recordingController) Stop() { r.calls = append(r.calls, "stop") }

func newService(t *testing.T) (*Service, store.Store, *recordingController) {
	t.Helper()
	s, err := store.NewBoltStore(filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })

	ctrl := &recordingController{}
	svc := NewService(s, nil)
	svc.SetSyncController(ctrl)
	return svc, s, ctrl
}

func ptr[T any](v T) *T { return &v }

func TestGetPersistsDefaults(t *testing.T) {
	ctx := context.Background()
	svc, s, _ := newService(t)

	got, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultAppSettings(), got)

	var stored models.AppSettings
	require.NoError(t, store.GetJSON(ctx, s, store.KeyAppSettings, &stored))
	assert.Equal(t, models.DefaultAppSettings(), stored)
}

func TestGetResetsUnreadableRecord(t *testing.T) {
	ctx := context.Background()
	svc, s, _ := newService(t)
	require.NoError(t, s.Set(ctx, store.KeyAppSettings, "{oops"))

	got, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultAppSettings(), got)
}

// flakyStore fails reads while down is set.
type flakyStore struct {
	store.Store
	down bool
}

var errConnReset = errors.New("mongo: connection reset")

func (f *flakyStore) Get(ctx context.Context, key string) (string, error) {
	if f.down {
		return "", errConnReset
	}
	return f.Store.Get(ctx, key)
}

func TestGetKeepsSettingsOnReadError(t *testing.T) {
	ctx := context.Background()
	_, s, _ := newService(t)
	flaky := &flakyStore{Store: s}
	svc := NewService(flaky, nil)

	saved, err := svc.Update(ctx, models.SettingsPatch{AutoSync: ptr(false), SyncInterval: ptr(5)})
	require.NoError(t, err)

	flaky.down = true
	_, err = svc.Get(ctx)
	require.ErrorIs(t, err, errConnReset)

	_, err = svc.Update(ctx, models.SettingsPatch{Theme: ptr("dark")})
	require.ErrorIs(t, err, errConnReset)

	flaky.down = false
	got, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved, got)
	assert.False(t, got.AutoSync)
	assert.Equal(t, 5, got.SyncInterval)
}

func TestUpdateWithoutSyncChangeLeavesScheduleAlone(t *testing.T) {
	ctx := context.Background()
	svc, _, ctrl := newService(t)

	got, err := svc.Update(ctx, models.SettingsPatch{Theme: ptr("dark"), Language: ptr("bn")})
	require.NoError(t, err)
	assert.Equal(t, "dark", got.Theme)
	assert.Equal(t, "bn", got.Language)
	assert.Empty(t, ctrl.calls)

	again, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestUpdateRestartsScheduleOnIntervalChange(t *testing.T) {
	svc, _, ctrl := newService(t)

	got, err := svc.Update(context.Background(), models.SettingsPatch{SyncInterval: ptr(5)})
	require.NoError(t, err)
	assert.Equal(t, 5, got.SyncInterval)
	assert.Equal(t, []string{"stop", "start"}, ctrl.calls)
}

func TestUpdateDisablingAutoSyncOnlyStops(t *testing.T) {
	svc, _, ctrl := newService(t)

	got, err := svc.Update(context.Background(), models.SettingsPatch{AutoSync: ptr(false)})
	require.NoError(t, err)
	assert.False(t, got.AutoSync)
	assert.Equal(t, []string{"stop"}, ctrl.calls)
}

func TestUpdateSameValuesIsNoRestart(t *testing.T) {
	svc, _, ctrl := newService(t)

	_, err := svc.Update(context.Background(), models.SettingsPatch{
		AutoSync:     ptr(true),
		SyncInterval: ptr(models.DefaultSyncIntervalMinutes),
	})
	require.NoError(t, err)
	assert.Empty(t, ctrl.calls)
}

func TestUpdateRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		patch models.SettingsPatch
	}{
		{name: "zero interval", patch: models.SettingsPatch{SyncInterval: ptr(0)}},
		{name: "unknown theme", patch: models.SettingsPatch{Theme: ptr("neon")}},
		{name: "negative line", patch: models.SettingsPatch{DefaultLine: ptr(-1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			svc, _, ctrl := newService(t)

			_, err := svc.Update(ctx, tt.patch)
			assert.ErrorIs(t, err, ErrInvalidSettings)
			assert.Empty(t, ctrl.calls)

			got, err := svc.Get(ctx)
			require.NoError(t, err)
			assert.Equal(t, models.DefaultAppSettings(), got)
		})
	}
}
