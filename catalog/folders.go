package catalog

import (
	"strings"
	"time"

	"drivebox/file-api/apperr"
	"drivebox/file-api/identity"
	"drivebox/file-api/model"
)

// CreateFolder makes a new flat folder for the principal. Names don't have
// to be unique, two folders called "Work" are the owner's problem.
func (c *Catalog) CreateFolder(p identity.Principal, name string) (*model.Folder, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperr.ErrEmptyName
	}

	folder := &model.Folder{
		UserID:    p.ID,
		Name:      name,
		CreatedAt: time.Now().Unix(),
	}

	if err := c.DB.Create(folder).Error; err != nil {
		return nil, err
	}

	if folder.Files == nil {
		folder.Files = []model.File{}
	}

	return folder, nil
}

// ListFolders returns the principal's folders with their files nested,
// oldest folder first.
func (c *Catalog) ListFolders(p identity.Principal) ([]model.Folder, error) {
	folders := []model.Folder{}

	err := c.DB.
		Preload("Files").
		Where("user_id = ?", p.ID).
		Order("id asc").
		Find(&folders).
		Error
	if err != nil {
		return nil, err
	}

	for i := range folders {
		if folders[i].Files == nil {
			folders[i].Files = []model.File{}
		}
	}

	return folders, nil
}

// ownsFolder reports whether the folder exists and belongs to the
// principal. The two cases are indistinguishable on purpose.
func (c *Catalog) ownsFolder(p identity.Principal, folderID uint) (bool, error) {
	var owns bool

	err := c.DB.
		Model(model.Folder{}).
		Select("count(*) > 0").
		Where("id = ? AND user_id = ?", folderID, p.ID).
		Find(&owns).
		Error
	if err != nil {
		return false, err
	}

	return owns, nil
}
