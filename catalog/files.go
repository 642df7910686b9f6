package catalog

import (
	"context"
	"errors"
	"io"
	"time"

	"drivebox/file-api/apperr"
	"drivebox/file-api/identity"
	"drivebox/file-api/model"
	"drivebox/file-api/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// lookup is the shared owner-scoped fetch. A row that exists but belongs to
// someone else reports exactly like a missing one.
func (c *Catalog) lookup(p identity.Principal, fileID uint) (*model.File, error) {
	var file model.File

	err := c.DB.
		Where("id = ? AND user_id = ?", fileID, p.ID).
		First(&file).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}

		return nil, err
	}

	return &file, nil
}

// ListFiles returns every file the principal owns, filed or not, newest
// first.
func (c *Catalog) ListFiles(p identity.Principal) ([]model.File, error) {
	files := []model.File{}

	err := c.DB.
		Where("user_id = ?", p.ID).
		Order("created_at desc").
		Find(&files).
		Error
	if err != nil {
		return nil, err
	}

	return files, nil
}

// CreateFile records metadata for content the object store has already
// durably placed. On failure the caller owns removing that content again.
func (c *Catalog) CreateFile(p identity.Principal, declaredName string, placement *storage.Placement) (*model.File, error) {
	file := &model.File{
		UserID:       p.ID,
		StorageKey:   placement.Key,
		OriginalName: declaredName,
		ContentType:  placement.ContentType,
		Size:         placement.Size,
		CreatedAt:    time.Now().Unix(),
	}

	if err := c.DB.Create(file).Error; err != nil {
		return nil, err
	}

	err := c.DB.
		Model(model.Stats{}).
		Where("user_id = ?", p.ID).
		Updates(map[string]any{
			"used_storage":   gorm.Expr("used_storage + ?", placement.Size),
			"uploaded_files": gorm.Expr("uploaded_files + ?", 1),
		}).
		Error
	if err != nil {
		zap.L().Error("Failed to increment user's used storage", zap.Error(err))
	}

	return file, nil
}

// MoveFile sets the file's folder, or unfiles it when folderID is nil. The
// target folder must exist and belong to the principal, a foreign folder
// reports as not found just like a missing one.
func (c *Catalog) MoveFile(p identity.Principal, fileID uint, folderID *uint) (*model.File, error) {
	file, err := c.lookup(p, fileID)
	if err != nil {
		return nil, err
	}

	if folderID != nil {
		owns, err := c.ownsFolder(p, *folderID)
		if err != nil {
			return nil, err
		}

		if !owns {
			return nil, apperr.ErrNotFound
		}
	}

	err = c.DB.
		Model(model.File{}).
		Where("id = ? AND user_id = ?", fileID, p.ID).
		Update("folder_id", folderID).
		Error
	if err != nil {
		return nil, err
	}

	file.FolderID = folderID
	return file, nil
}

// DeleteFile removes the metadata row and then the content behind it. The
// row goes first so no request can ever observe a record whose bytes are
// already gone. If the content removal fails the key stays orphaned on
// disk, which is harmless and what the sweeper exists for.
func (c *Catalog) DeleteFile(ctx context.Context, p identity.Principal, fileID uint) error {
	file, err := c.lookup(p, fileID)
	if err != nil {
		return err
	}

	err = c.DB.
		Where("id = ? AND user_id = ?", fileID, p.ID).
		Delete(model.File{}).
		Error
	if err != nil {
		return err
	}

	if err := c.Store.Remove(ctx, file.StorageKey); err != nil {
		zap.L().Error("Content removal failed after metadata delete, leaving key to the sweeper",
			zap.String("key", file.StorageKey),
			zap.Error(errors.Join(apperr.ErrStorageInconsistency, err)),
		)
	}

	err = c.DB.
		Model(model.Stats{}).
		Where("user_id = ?", p.ID).
		Updates(map[string]any{
			"used_storage":   gorm.Expr("used_storage - ?", file.Size),
			"uploaded_files": gorm.Expr("uploaded_files - ?", 1),
		}).
		Error
	if err != nil {
		zap.L().Error("Failed to decrement user's used storage", zap.Error(err))
	}

	return nil
}

// OpenFile resolves a file to its metadata and a content stream for
// download. A record whose content vanished out-of-band reports not found
// to the caller and screams in the logs.
func (c *Catalog) OpenFile(ctx context.Context, p identity.Principal, fileID uint) (*model.File, io.ReadCloser, error) {
	file, err := c.lookup(p, fileID)
	if err != nil {
		return nil, nil, err
	}

	rc, _, err := c.Store.Open(ctx, file.StorageKey)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			zap.L().Error("File record points at missing content",
				zap.Uint("fileID", file.ID),
				zap.String("key", file.StorageKey),
				zap.Error(apperr.ErrStorageInconsistency),
			)
		}

		return nil, nil, err
	}

	return file, rc, nil
}
