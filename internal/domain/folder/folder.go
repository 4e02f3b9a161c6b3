package folder

import (
	"time"

	"github.com/google/uuid"
)

type Folder struct {
	ID        uuid.UUID
	Name      string
	ParentID  *uuid.UUID
	CreatedBy uuid.UUID
	CreatedAt time.Time
	UpdatedAt *time.Time

	// Direct-children counts, filled on read paths only.
	FileCount      int
	SubfolderCount int
}

type CreateFolderInput struct {
	Name      string
	ParentID  *uuid.UUID
	CreatedBy uuid.UUID
}

// Breadcrumb is one step of the root-to-folder ancestor chain.
type Breadcrumb struct {
	ID   uuid.UUID
	Name string
}

// TreeNode is one node of the full folder tree.
type TreeNode struct {
	ID       uuid.UUID
	Name     string
	Children []*TreeNode
}

// Subtree is a folder together with everything beneath it. Folders are
// ordered bottom-up (deepest first, root last) so they can be deleted in
// slice order without breaking parent references.
type Subtree struct {
	Folders []*Folder
	Files   []SubtreeFile
}

type SubtreeFile struct {
	ID         uuid.UUID
	FolderID   uuid.UUID
	StorageKey string
}

// DeleteReport describes the outcome of a folder deletion. A recursive
// delete that fails on some blobs still deletes what it can; the report
// names what was left behind rather than swallowing the failure.
type DeleteReport struct {
	FilesDeleted   int64
	FoldersDeleted int64
	FailedFiles    []FailedFile
	FoldersSkipped int
}

// FailedFile is a file whose blob could not be removed; its metadata
// row and containing folders are kept so the delete can be retried.
type FailedFile struct {
	ID         uuid.UUID
	StorageKey string
	Reason     string
}
