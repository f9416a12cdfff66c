package models

import "time"

// DocumentRecord is the registry row for an ingested document. The
// combination of Collection and Filename is unique: re-uploading the same
// document updates the row instead of inserting a second one.
type DocumentRecord struct {
	ID           uint   `gorm:"primaryKey"`
	Collection   string `gorm:"index:idx_collection_file,unique;not null;size:255"`
	Filename     string `gorm:"index:idx_collection_file,unique;not null;size:512"`
	Pages        int    `gorm:"not null"`
	Chunks       int    `gorm:"not null"`
	Digest       string `gorm:"size:64"`  // sha256 of the uploaded bytes
	ModelVersion string `gorm:"size:128"` // embedding model the chunks were indexed with
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
