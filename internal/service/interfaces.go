package service

import (
	"context"
	"filedock/internal/domain/file"
	"filedock/internal/domain/folder"
	"filedock/internal/domain/user"
	"filedock/internal/storage/s3"
	"io"
	"time"

	"github.com/google/uuid"
)

// Consumer-side interfaces over the postgres repositories and the blob
// store, so services can be tested against in-memory fakes.

type UserRepository interface {
	Create(ctx context.Context, input user.CreateUserInput) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	List(ctx context.Context, limit, offset int) ([]*user.User, int, error)
	Update(ctx context.Context, id uuid.UUID, input user.UpdateUserInput) (*user.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type FolderRepository interface {
	Create(ctx context.Context, input folder.CreateFolderInput) (*folder.Folder, error)
	GetByID(ctx context.Context, id uuid.UUID) (*folder.Folder, error)
	ListByParent(ctx context.Context, parentID, ownerID *uuid.UUID) ([]*folder.Folder, error)
	ListAll(ctx context.Context, ownerID *uuid.UUID) ([]*folder.Folder, error)
	Rename(ctx context.Context, id uuid.UUID, name string) (*folder.Folder, error)
	SetParent(ctx context.Context, id uuid.UUID, parentID *uuid.UUID) (*folder.Folder, error)
	HasChildren(ctx context.Context, id uuid.UUID) (bool, error)
	CollectSubtree(ctx context.Context, rootID uuid.UUID) (*folder.Subtree, error)
	DeleteRows(ctx context.Context, ids []uuid.UUID) (int64, error)
	DeleteOwnedBy(ctx context.Context, userID uuid.UUID) (int64, error)
}

type FileRepository interface {
	Create(ctx context.Context, input file.CreateFileInput) (*file.File, error)
	GetByID(ctx context.Context, id uuid.UUID) (*file.File, error)
	GetBySlug(ctx context.Context, slug string) (*file.File, error)
	Update(ctx context.Context, id uuid.UUID, input file.UpdateFileInput) (*file.File, error)
	SetFolder(ctx context.Context, id uuid.UUID, folderID *uuid.UUID) (*file.File, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteBatch(ctx context.Context, ids []uuid.UUID) (int64, error)
	List(ctx context.Context, filter file.ListFilesFilter) ([]*file.File, int, error)
	ListByFolder(ctx context.Context, folderID, ownerID *uuid.UUID) ([]*file.File, error)
	ListAllByOwner(ctx context.Context, userID uuid.UUID) ([]*file.File, error)
}

type BlobStore interface {
	GenerateKey(originalName string) string
	Put(ctx context.Context, key string, body io.ReadSeeker, size int64, contentType string) error
	Get(ctx context.Context, key string) (*s3.Object, error)
	Delete(ctx context.Context, key string) error
	PresignDownload(ctx context.Context, key string, expiry time.Duration) (string, error)
}
