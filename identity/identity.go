// Package identity owns user records and credential verification. Nothing
// else reads or writes the users table.
package identity

import (
	"errors"
	"time"

	"drivebox/file-api/apperr"
	"drivebox/file-api/model"
	"drivebox/file-api/pkg/security"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const idCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Principal is the authenticated identity attached to a request. It
// deliberately carries no credential material.
type Principal struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func PrincipalOf(u *model.User) Principal {
	return Principal{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
	}
}

type Service struct {
	DB    *gorm.DB
	Argon *security.ArgonHash
}

func NewService(db *gorm.DB) *Service {
	return &Service{
		DB:    db,
		Argon: security.New(),
	}
}

// Register creates a new user and returns its ID. Fails with
// apperr.ErrDuplicateIdentity when the username or email is taken.
func (s *Service) Register(username, email, rawPassword string) (string, error) {
	var taken bool

	r := s.DB.
		Model(model.User{}).
		Select("count(*) > 0").
		Where("username = ? OR email = ?", username, email).
		Find(&taken)
	if r.Error != nil {
		return "", r.Error
	}

	if taken {
		return "", apperr.ErrDuplicateIdentity
	}

	hash, err := s.Argon.Hash(rawPassword)
	if err != nil {
		return "", err
	}

	userID, err := gonanoid.Generate(idCharset, 16)
	if err != nil {
		return "", err
	}

	err = s.DB.Create(&model.User{
		ID:           userID,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().Unix(),
		Stats: model.Stats{
			UserID:     userID,
			MaxStorage: viper.GetInt64("storage.max_usage"),
		},
	}).Error
	if err != nil {
		// Two signups racing past the count check end up here on the
		// unique index instead
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", apperr.ErrDuplicateIdentity
		}

		return "", err
	}

	return userID, nil
}

// Verify checks a username/password pair. Unknown usernames and wrong
// passwords fail with the same apperr.ErrAuthFailure so responses can't be
// used to enumerate accounts. The actual reason only reaches the logs.
func (s *Service) Verify(username, rawPassword string) (*model.User, error) {
	var user model.User

	err := s.DB.Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			zap.L().Debug("Login attempt for unknown username")
			return nil, apperr.ErrAuthFailure
		}

		return nil, err
	}

	ok, err := s.Argon.Verify(rawPassword, user.PasswordHash)
	if err != nil {
		return nil, err
	}

	if !ok {
		zap.L().Debug("Login attempt with wrong password", zap.String("userID", user.ID))
		return nil, apperr.ErrAuthFailure
	}

	return &user, nil
}

// LoadByID materializes the user behind an established session.
func (s *Service) LoadByID(id string) (*model.User, error) {
	var user model.User

	err := s.DB.Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}

		return nil, err
	}

	return &user, nil
}
