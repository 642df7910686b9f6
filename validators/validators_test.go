package validators

import (
	"mime/multipart"
	"strings"
	"testing"

	"drivebox/file-api/apperr"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func setupUploadConfig(t *testing.T) {
	t.Helper()

	viper.Set("upload.max_size", int64(5<<20))
	viper.Set("upload.allowed_extensions", []string{
		"jpeg", "jpg", "png", "gif", "pdf", "txt", "doc", "docx",
	})
}

func TestEmailValidator(t *testing.T) {
	assert.NoError(t, EmailValidator("alice@example.com"))
	assert.ErrorIs(t, EmailValidator(""), ErrEmailEmpty)
	assert.ErrorIs(t, EmailValidator("not-an-email"), ErrEmailInvalid)
}

func TestPasswordValidator(t *testing.T) {
	assert.NoError(t, PasswordValidator("longenough"))
	assert.ErrorIs(t, PasswordValidator(""), ErrPasswordEmpty)
	assert.ErrorIs(t, PasswordValidator("short"), ErrPasswordTooShort)
	assert.ErrorIs(t, PasswordValidator(strings.Repeat("a", 256)), ErrPasswordTooLong)
}

func TestUsernameValidator(t *testing.T) {
	assert.NoError(t, UsernameValidator("alice"))
	assert.NoError(t, UsernameValidator("alice.b-c_1"))
	assert.ErrorIs(t, UsernameValidator(""), ErrUsernameEmpty)
	assert.ErrorIs(t, UsernameValidator("has space"), ErrUsernameInvalid)
	assert.ErrorIs(t, UsernameValidator(strings.Repeat("a", 33)), ErrUsernameTooLong)
}

func TestFolderNameValidator(t *testing.T) {
	assert.NoError(t, FolderNameValidator("Work"))
	assert.ErrorIs(t, FolderNameValidator(""), apperr.ErrEmptyName)
	assert.ErrorIs(t, FolderNameValidator("   "), apperr.ErrEmptyName)
	assert.ErrorIs(t, FolderNameValidator(strings.Repeat("a", 129)), ErrFolderNameTooLong)
}

func TestUploadValidator(t *testing.T) {
	setupUploadConfig(t)

	_, err := UploadValidator(nil)
	assert.ErrorIs(t, err, ErrNoFile)

	_, err = UploadValidator(&multipart.FileHeader{Filename: "notes.exe", Size: 100})
	assert.ErrorIs(t, err, apperr.ErrRejectedType)

	_, err = UploadValidator(&multipart.FileHeader{Filename: "noextension", Size: 100})
	assert.ErrorIs(t, err, apperr.ErrRejectedType)

	_, err = UploadValidator(&multipart.FileHeader{Filename: "movie.pdf", Size: 6 << 20})
	assert.ErrorIs(t, err, apperr.ErrTooLarge)

	_, err = UploadValidator(&multipart.FileHeader{Filename: "report.pdf", Size: 2048})
	assert.NoError(t, err)
}
