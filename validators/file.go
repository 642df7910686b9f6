package validators

import (
	"errors"
	"mime/multipart"
	"net/http"

	"drivebox/file-api/apperr"
	"drivebox/file-api/storage"

	"github.com/spf13/viper"
)

var (
	ErrNoFile          = errors.New("no file provided")
	ErrFileNameTooLong = errors.New("file name is too long")
)

const maxFileNameSize = 255

// UploadValidator runs the cheap checks on the multipart header before any
// bytes get streamed. Header values are trivial to spoof, so the object
// store repeats the size and type checks on the actual content; rejecting
// obvious garbage here just saves the round trip through the spool.
func UploadValidator(fh *multipart.FileHeader) (int, error) {
	if fh == nil {
		return http.StatusBadRequest, ErrNoFile
	}

	if fh.Filename == "" {
		return http.StatusBadRequest, apperr.ErrEmptyName
	}

	if len(fh.Filename) > maxFileNameSize {
		return http.StatusBadRequest, ErrFileNameTooLong
	}

	if !storage.AllowedExtension(fh.Filename) {
		return http.StatusUnsupportedMediaType, apperr.ErrRejectedType
	}

	if fh.Size > viper.GetInt64("upload.max_size") {
		return http.StatusRequestEntityTooLarge, apperr.ErrTooLarge
	}

	return 0, nil
}
