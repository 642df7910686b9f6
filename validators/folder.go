package validators

import (
	"errors"
	"strings"

	"drivebox/file-api/apperr"
)

var ErrFolderNameTooLong = errors.New("folder name is too long")

func FolderNameValidator(n string) error {
	if strings.TrimSpace(n) == "" {
		return apperr.ErrEmptyName
	}

	if len(n) > 128 {
		return ErrFolderNameTooLong
	}

	return nil
}
