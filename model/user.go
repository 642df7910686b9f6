// Package model defines database models
package model

type User struct {
	ID           string `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"unique;not null" json:"username"`
	Email        string `gorm:"unique;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	CreatedAt    int64  `gorm:"not null" json:"created_at"`

	Folders []Folder `gorm:"foreignKey:UserID" json:"-"`
	Files   []File   `gorm:"foreignKey:UserID" json:"-"`
	Stats   Stats    `gorm:"foreignKey:UserID" json:"-"`
}
