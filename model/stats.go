package model

// Stats exist only so the dashboard can show usage. Nothing enforces
// MaxStorage, it's a display ceiling.
type Stats struct {
	UserID        string `gorm:"primaryKey" json:"-"`
	UsedStorage   int64  `json:"used_storage"`
	UploadedFiles int64  `json:"uploaded_files"`
	MaxStorage    int64  `json:"max_storage"`
}
