// Package catalog owns file and folder metadata together with the only
// authorization rule the service has: a principal may touch a record if and
// only if it owns it. Every operation takes the principal explicitly, so
// the checks work the same with or without an HTTP stack in front.
package catalog

import (
	"drivebox/file-api/storage"

	"gorm.io/gorm"
)

type Catalog struct {
	DB    *gorm.DB
	Store storage.Store
}

func New(db *gorm.DB, store storage.Store) *Catalog {
	return &Catalog{
		DB:    db,
		Store: store,
	}
}
