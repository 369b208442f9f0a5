package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_SaveOpenDelete(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)

	id := uuid.New()
	info, err := s.Save(ctx, id, "perdas_lince.xlsx", "application/xlsx", strings.NewReader("sheet"))
	require.NoError(t, err)
	assert.Equal(t, id, info.ID)
	assert.Equal(t, int64(5), info.Size)
	assert.Equal(t, id.String()[:8]+"_perdas_lince.xlsx", info.Path)
	assert.Equal(t, "perdas_lince.xlsx", info.Name)

	data, err := os.ReadFile(filepath.Join(s.basePath, info.Path))
	require.NoError(t, err)
	assert.Equal(t, "sheet", string(data))

	rc, got, err := s.Open(ctx, id)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "sheet", string(body))
	assert.Equal(t, info.Name, got.Name)

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, s.Delete(ctx, id))
	_, err = s.GetInfo(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = os.Stat(filepath.Join(s.basePath, info.Path))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStorage_BatchesKeepTheirOwnFiles(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	week1, week2 := uuid.New(), uuid.New()
	_, err = s.Save(ctx, week1, "out.csv", "text/csv", strings.NewReader("WEEK1"))
	require.NoError(t, err)
	_, err = s.Save(ctx, week2, "out.csv", "text/csv", strings.NewReader("WEEK2"))
	require.NoError(t, err)

	read := func(id uuid.UUID) string {
		t.Helper()
		rc, _, err := s.Open(ctx, id)
		require.NoError(t, err)
		defer rc.Close()
		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(body)
	}
	assert.Equal(t, "WEEK1", read(week1))
	assert.Equal(t, "WEEK2", read(week2))

	require.NoError(t, s.Delete(ctx, week1))
	assert.Equal(t, "WEEK2", read(week2))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, week2, list[0].ID)
}

func TestLocalStorage_SaveSameIDReplaces(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	id := uuid.New()
	_, err = s.Save(ctx, id, "out.csv", "text/csv", strings.NewReader("first"))
	require.NoError(t, err)
	info, err := s.Save(ctx, id, "out.csv", "text/csv", strings.NewReader("second"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(s.basePath, info.Path))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(s.basePath)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), "."+info.Path+"."), "temporary file left behind: %s", e.Name())
	}
}

func TestLocalStorage_EmptyList(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	list, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestLocalStorage_CancelledContext(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.Save(ctx, uuid.New(), "x.csv", "text/csv", strings.NewReader("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"perdas.xlsx", "perdas.xlsx"},
		{"../../etc/passwd", "____etc_passwd"},
		{"a:b*c?.csv", "a_b_c_.csv"},
		{"  ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeFilename(tt.in))
		})
	}
}
