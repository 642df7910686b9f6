package model

type File struct {
	ID     uint   `gorm:"primaryKey;autoIncrement;index" json:"id"`
	UserID string `gorm:"index;not null" json:"-"`

	// Content lives under a generated key so two users (or one user twice)
	// uploading "report.pdf" never collide. The original name is display
	// metadata only and never takes part in lookups.
	StorageKey   string `gorm:"not null" json:"-"`
	OriginalName string `gorm:"not null" json:"name"`
	ContentType  string `json:"content_type"`
	Size         int64  `json:"size"`

	// Null means the file sits outside any folder
	FolderID *uint `gorm:"index" json:"folder_id"`

	CreatedAt int64 `gorm:"not null" json:"created_at"`
}
