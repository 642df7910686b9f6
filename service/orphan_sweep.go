// Package service holds background work that runs next to the request
// handlers
package service

import (
	"context"
	"time"

	"drivebox/file-api/model"
	"drivebox/file-api/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Only keys untouched for at least this long get swept, so an upload
// that's still between placement and record never disappears under it.
const orphanAge = time.Hour

// OrphanSweep periodically removes content that no metadata row references
// anymore, the leftover of a delete whose content removal failed or a
// crash between placement and record.
func OrphanSweep(t time.Duration, db *gorm.DB, store storage.Store) {
	local, ok := store.(*storage.Local)
	if !ok {
		zap.L().Debug("Orphan sweep only runs with local storage")
		return
	}

	ticker := time.NewTicker(t)

	zap.L().Debug("Orphan sweep attached", zap.Duration("tick_every", t))

	go func() {
		for range ticker.C {
			sweepOnce(db, local, orphanAge)
		}
	}()
}

func sweepOnce(db *gorm.DB, local *storage.Local, age time.Duration) {
	keys, err := local.StaleKeys(age)
	if err != nil {
		zap.L().Error("Failed to list storage keys", zap.Error(err))
		return
	}

	for _, key := range keys {
		var referenced bool

		err := db.
			Model(model.File{}).
			Select("count(*) > 0").
			Where("storage_key = ?", key).
			Find(&referenced).
			Error
		if err != nil {
			zap.L().Error("Failed to check key references", zap.Error(err))
			continue
		}

		if referenced {
			continue
		}

		if err := local.Remove(context.Background(), key); err != nil {
			zap.L().Error("Failed to sweep orphaned content", zap.String("key", key), zap.Error(err))
			continue
		}

		zap.L().Debug("Swept orphaned content", zap.String("key", key))
	}
}
