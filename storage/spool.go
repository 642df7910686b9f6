package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"slices"
	"strings"

	"drivebox/file-api/apperr"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/viper"
)

// Sniffed types accepted on top of the extension check. The container
// formats are here because legacy .doc files detect as raw OLE storage and
// .docx as plain zip before mimetype digs into them.
var allowedMIMEs = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"application/pdf",
	"text/plain",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/x-ole-storage",
	"application/zip",
}

// AllowedExtension reports whether the declared name carries an extension
// from the configured accepted set.
func AllowedExtension(declaredName string) bool {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(path.Base(declaredName))), ".")
	if ext == "" {
		return false
	}

	return slices.Contains(viper.GetStringSlice("upload.allowed_extensions"), ext)
}

// spool drains r into a temp file inside dir, enforcing the size cap while
// the bytes stream in and sniffing the content type from the head. The
// caller owns the returned file and must remove it on any of its own
// failures. Checking the cap during the copy instead of after keeps a
// lying Content-Length from filling the disk.
func spool(dir string, r io.Reader, declaredName string) (*os.File, *Placement, error) {
	if !AllowedExtension(declaredName) {
		return nil, nil, apperr.ErrRejectedType
	}

	key, err := newKey(declaredName)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", apperr.ErrWriteFailure, err)
	}

	head := make([]byte, 3072)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, nil, fmt.Errorf("%w: %v", apperr.ErrWriteFailure, err)
	}

	mime := mimetype.Detect(head[:n])
	if !slices.ContainsFunc(allowedMIMEs, mime.Is) {
		return nil, nil, apperr.ErrRejectedType
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", apperr.ErrWriteFailure, err)
	}

	maxSize := viper.GetInt64("upload.max_size")
	body := io.MultiReader(bytes.NewReader(head[:n]), r)

	written, err := io.Copy(tmp, io.LimitReader(body, maxSize+1))
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, nil, fmt.Errorf("%w: %v", apperr.ErrWriteFailure, err)
	}

	if written > maxSize {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, nil, apperr.ErrTooLarge
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, nil, fmt.Errorf("%w: %v", apperr.ErrWriteFailure, err)
	}

	return tmp, &Placement{
		Key:         key,
		Size:        written,
		ContentType: mime.String(),
	}, nil
}
