package storage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"drivebox/file-api/apperr"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocal(t *testing.T) *Local {
	t.Helper()

	viper.Set("upload.max_size", int64(5<<20))
	viper.Set("upload.allowed_extensions", []string{
		"jpeg", "jpg", "png", "gif", "pdf", "txt", "doc", "docx",
	})

	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	return l
}

func TestPlaceAndOpenRoundtrip(t *testing.T) {
	l := newTestLocal(t)
	content := []byte("%PDF-1.4\nsome report body\n%%EOF\n")

	placement, err := l.Place(context.Background(), bytes.NewReader(content), "report.pdf")
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), placement.Size)
	assert.Equal(t, "application/pdf", placement.ContentType)

	rc, size, err := l.Open(context.Background(), placement.Key)
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, got)
	assert.Equal(t, int64(len(content)), size)
}

func TestPlaceKeyIsOpaque(t *testing.T) {
	l := newTestLocal(t)

	placement, err := l.Place(context.Background(), strings.NewReader("plain text"), "../../etc/passwd.txt")
	require.NoError(t, err)

	assert.NotContains(t, placement.Key, "/")
	assert.NotContains(t, placement.Key, "passwd")
	assert.True(t, strings.HasSuffix(placement.Key, ".txt"))
}

func TestPlaceSameNameNoCollision(t *testing.T) {
	l := newTestLocal(t)

	first, err := l.Place(context.Background(), strings.NewReader("first upload"), "notes.txt")
	require.NoError(t, err)

	second, err := l.Place(context.Background(), strings.NewReader("second upload"), "notes.txt")
	require.NoError(t, err)

	assert.NotEqual(t, first.Key, second.Key)

	rc, _, err := l.Open(context.Background(), first.Key)
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "first upload", string(got))
}

func TestPlaceRejectsExtension(t *testing.T) {
	l := newTestLocal(t)

	_, err := l.Place(context.Background(), strings.NewReader("#!/bin/sh\n"), "script.sh")
	assert.ErrorIs(t, err, apperr.ErrRejectedType)
}

func TestPlaceRejectsSniffedType(t *testing.T) {
	l := newTestLocal(t)

	// ELF magic behind an accepted extension
	_, err := l.Place(context.Background(), bytes.NewReader([]byte{0x7f, 'E', 'L', 'F', 0, 0, 0, 0}), "binary.txt")
	assert.ErrorIs(t, err, apperr.ErrRejectedType)
}

func TestPlaceEnforcesSizeCap(t *testing.T) {
	l := newTestLocal(t)
	viper.Set("upload.max_size", int64(4096))

	_, err := l.Place(context.Background(), strings.NewReader(strings.Repeat("a", 5000)), "big.txt")
	assert.ErrorIs(t, err, apperr.ErrTooLarge)

	// Nothing but temp leftovers may survive a rejected placement, and
	// not even those
	keys, err := l.StaleKeys(-time.Second)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestPlaceAtSizeCapSucceeds(t *testing.T) {
	l := newTestLocal(t)
	viper.Set("upload.max_size", int64(4096))

	placement, err := l.Place(context.Background(), strings.NewReader(strings.Repeat("a", 4096)), "exact.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(4096), placement.Size)
}

func TestRemoveIsIdempotent(t *testing.T) {
	l := newTestLocal(t)

	placement, err := l.Place(context.Background(), strings.NewReader("short lived"), "gone.txt")
	require.NoError(t, err)

	require.NoError(t, l.Remove(context.Background(), placement.Key))
	require.NoError(t, l.Remove(context.Background(), placement.Key))

	_, _, err = l.Open(context.Background(), placement.Key)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestStaleKeys(t *testing.T) {
	l := newTestLocal(t)

	placement, err := l.Place(context.Background(), strings.NewReader("orphan"), "orphan.txt")
	require.NoError(t, err)

	keys, err := l.StaleKeys(time.Hour)
	require.NoError(t, err)
	assert.Empty(t, keys, "fresh content must not be considered stale")

	keys, err = l.StaleKeys(-time.Second)
	require.NoError(t, err)
	assert.Contains(t, keys, placement.Key)
}
