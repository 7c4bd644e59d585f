package model

import (
	"time"
)

const (
	FileTypePhoto = "photo"

	FileOwnerVerification = "verification"
)

// File is an uploaded evidence blob. The bytes live in object storage and
// the row points at them.
type File struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"userId"`
	OwnerType    string    `db:"owner_type" json:"ownerType"`
	OwnerID      string    `db:"owner_id" json:"ownerId"` // Polymorphic FK
	Type         string    `db:"type" json:"type"`
	Filename     string    `db:"filename" json:"filename"`
	OriginalName string    `db:"original_name" json:"originalName"`
	MimeType     string    `db:"mime_type" json:"mimeType"`
	Size         int64     `db:"size" json:"size"`
	StoragePath  string    `db:"storage_path" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}
