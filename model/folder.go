package model

// Folders are flat. There is no parent reference on purpose: a folder can
// hold files and nothing else.
type Folder struct {
	ID     uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID string `gorm:"index;not null" json:"-"`
	Name   string `gorm:"not null" json:"name"`

	Files []File `gorm:"foreignKey:FolderID" json:"files"`

	CreatedAt int64 `gorm:"not null" json:"created_at"`
}
