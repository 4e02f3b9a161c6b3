package handler

import (
	"context"

	"filedock/internal/audit"
	"filedock/internal/domain/file"
	"filedock/internal/domain/folder"
	"filedock/internal/domain/user"
	"filedock/internal/service"
	"filedock/internal/storage/s3"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Consumer-side interfaces: each handler declares only the service surface
// it actually calls so tests can swap in small fakes.

type AccountService interface {
	Register(ctx context.Context, email, password string) (*service.LoginResult, error)
	Login(ctx context.Context, email, password string) (*service.LoginResult, error)
	Get(ctx context.Context, ident *user.Identity, id uuid.UUID) (*user.User, error)
}

type UserAdminService interface {
	List(ctx context.Context, ident *user.Identity, page, perPage int) (*service.UserPage, error)
	Get(ctx context.Context, ident *user.Identity, id uuid.UUID) (*user.User, error)
	Create(ctx context.Context, ident *user.Identity, email, password string, isAdmin bool) (*user.User, error)
	Update(ctx context.Context, ident *user.Identity, id uuid.UUID, patch service.AdminPatch) (*user.User, error)
	Delete(ctx context.Context, ident *user.Identity, id uuid.UUID) error
}

type FolderOperations interface {
	Create(ctx context.Context, ident *user.Identity, name string, parentID *uuid.UUID) (*folder.Folder, error)
	Get(ctx context.Context, ident *user.Identity, id uuid.UUID) (*folder.Folder, error)
	Contents(ctx context.Context, ident *user.Identity, folderID *uuid.UUID) (*service.FolderContents, error)
	Breadcrumbs(ctx context.Context, ident *user.Identity, id uuid.UUID) ([]folder.Breadcrumb, error)
	Tree(ctx context.Context, ident *user.Identity) ([]*folder.TreeNode, error)
	Rename(ctx context.Context, ident *user.Identity, id uuid.UUID, newName string) (*folder.Folder, error)
	Move(ctx context.Context, ident *user.Identity, id uuid.UUID, newParentID *uuid.UUID) (*folder.Folder, error)
	Delete(ctx context.Context, ident *user.Identity, id uuid.UUID, recursive bool) (*folder.DeleteReport, error)
}

type FileOperations interface {
	Upload(ctx context.Context, ident *user.Identity, input service.UploadInput) (*file.File, error)
	Get(ctx context.Context, ident *user.Identity, id uuid.UUID) (*file.File, error)
	List(ctx context.Context, ident *user.Identity, input service.ListInput) (*service.FilePage, error)
	Update(ctx context.Context, ident *user.Identity, id uuid.UUID, input service.UpdateInput) (*file.File, error)
	Move(ctx context.Context, ident *user.Identity, id uuid.UUID, folderID *uuid.UUID) (*file.File, error)
	Delete(ctx context.Context, ident *user.Identity, id uuid.UUID) error
	Download(ctx context.Context, ident *user.Identity, id uuid.UUID) (*file.File, *s3.Object, error)
	DownloadURL(ctx context.Context, ident *user.Identity, id uuid.UUID) (string, error)
}

type PublicFileResolver interface {
	OpenBySlug(ctx context.Context, slug string) (*file.File, *s3.Object, error)
}

type AuditRecorder interface {
	Record(c echo.Context, resourceType audit.ResourceType, resourceID *uuid.UUID, action audit.Action, status audit.Status, metadata map[string]any)
	RecordError(c echo.Context, resourceType audit.ResourceType, resourceID *uuid.UUID, action audit.Action, actionErr error)
}

type AuditQuerier interface {
	Query(ctx context.Context, filter audit.QueryFilter) ([]*audit.Event, error)
}
