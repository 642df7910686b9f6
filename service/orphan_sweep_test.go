package service

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"drivebox/file-api/apperr"
	"drivebox/file-api/model"
	"drivebox/file-api/storage"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestSweepOnce(t *testing.T) {
	viper.Set("upload.max_size", int64(5<<20))
	viper.Set("upload.allowed_extensions", []string{"txt"})

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.File{}))

	local, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)

	orphan, err := local.Place(context.Background(), strings.NewReader("nobody references me"), "orphan.txt")
	require.NoError(t, err)

	kept, err := local.Place(context.Background(), strings.NewReader("still referenced"), "kept.txt")
	require.NoError(t, err)

	require.NoError(t, db.Create(&model.File{
		UserID:       "user-alice",
		StorageKey:   kept.Key,
		OriginalName: "kept.txt",
		Size:         kept.Size,
		CreatedAt:    time.Now().Unix(),
	}).Error)

	// A fresh orphan survives, it might be an upload in flight
	sweepOnce(db, local, time.Hour)
	_, _, err = local.Open(context.Background(), orphan.Key)
	require.NoError(t, err)

	// Past the age cutoff it goes, the referenced key stays
	sweepOnce(db, local, -time.Second)
	_, _, err = local.Open(context.Background(), orphan.Key)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, _, err = local.Open(context.Background(), kept.Key)
	assert.NoError(t, err)
}
