package file

import (
	"time"

	"github.com/google/uuid"
)

// File type categories assigned at upload when the caller does not supply
// one. Stored as free-form text, not enforced as an enum.
const (
	TypeDocument = "document"
	TypeImage    = "image"
	TypeVideo    = "video"
	TypeAudio    = "audio"
	TypeArchive  = "archive"
	TypeOther    = "other"
)

type File struct {
	ID           uuid.UUID
	OriginalName string
	Slug         *string
	StorageKey   string
	Size         int64
	ContentType  *string
	IsPublic     bool
	Description  *string
	FileType     *string
	Tags         *string
	FolderID     *uuid.UUID
	UploadedBy   uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

type CreateFileInput struct {
	OriginalName string
	Slug         *string
	StorageKey   string
	Size         int64
	ContentType  *string
	IsPublic     bool
	Description  *string
	FileType     *string
	Tags         *string
	FolderID     *uuid.UUID
	UploadedBy   uuid.UUID
}

// UpdateFileInput is a field-presence patch: nil means "not supplied",
// which is distinct from "set to empty".
type UpdateFileInput struct {
	IsPublic    *bool
	Slug        *string
	Description *string
	FileType    *string
	Tags        *string
}

type ListFilesFilter struct {
	// OwnerID scopes results to a single uploader. Nil means unscoped
	// (admin callers only).
	OwnerID *uuid.UUID

	// FolderScoped narrows results to one folder; FolderID nil with
	// FolderScoped true means root-level files.
	FolderScoped bool
	FolderID     *uuid.UUID

	FileType *string
	IsPublic *bool
	Search   string
	Tags     []string

	Limit  int
	Offset int
}
