package handler

import (
	"time"

	"filedock/internal/audit"
	"filedock/internal/domain/file"
	"filedock/internal/domain/folder"
	"filedock/internal/domain/user"
	"filedock/internal/service"

	"github.com/google/uuid"
)

const publicPathPrefix = "/public/"

type FileResponse struct {
	ID           uuid.UUID  `json:"id"`
	OriginalName string     `json:"original_name"`
	Slug         *string    `json:"slug"`
	StorageKey   string     `json:"storage_key"`
	Size         int64      `json:"size"`
	ContentType  *string    `json:"content_type"`
	IsPublic     bool       `json:"is_public"`
	Description  *string    `json:"description"`
	FileType     *string    `json:"file_type"`
	Tags         *string    `json:"tags"`
	FolderID     *uuid.UUID `json:"folder_id"`
	UploadedBy   uuid.UUID  `json:"uploaded_by"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at"`
	PublicURL    *string    `json:"public_url"`
}

func newFileResponse(f *file.File) FileResponse {
	resp := FileResponse{
		ID:           f.ID,
		OriginalName: f.OriginalName,
		Slug:         f.Slug,
		StorageKey:   f.StorageKey,
		Size:         f.Size,
		ContentType:  f.ContentType,
		IsPublic:     f.IsPublic,
		Description:  f.Description,
		FileType:     f.FileType,
		Tags:         f.Tags,
		FolderID:     f.FolderID,
		UploadedBy:   f.UploadedBy,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}

	// Only a public file with a minted slug has a working public link.
	if f.IsPublic && f.Slug != nil {
		url := publicPathPrefix + *f.Slug
		resp.PublicURL = &url
	}

	return resp
}

type FileListResponse struct {
	Files   []FileResponse `json:"files"`
	Total   int            `json:"total"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
}

func newFileListResponse(page *service.FilePage) FileListResponse {
	files := make([]FileResponse, 0, len(page.Items))
	for _, f := range page.Items {
		files = append(files, newFileResponse(f))
	}

	return FileListResponse{
		Files:   files,
		Total:   page.Total,
		Page:    page.Page,
		PerPage: page.PerPage,
	}
}

type FolderResponse struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	ParentID       *uuid.UUID `json:"parent_id"`
	CreatedBy      uuid.UUID  `json:"created_by"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at"`
	FileCount      int        `json:"file_count"`
	SubfolderCount int        `json:"subfolder_count"`
}

func newFolderResponse(f *folder.Folder) FolderResponse {
	return FolderResponse{
		ID:             f.ID,
		Name:           f.Name,
		ParentID:       f.ParentID,
		CreatedBy:      f.CreatedBy,
		CreatedAt:      f.CreatedAt,
		UpdatedAt:      f.UpdatedAt,
		FileCount:      f.FileCount,
		SubfolderCount: f.SubfolderCount,
	}
}

type FolderContentsResponse struct {
	Folder     *FolderResponse  `json:"folder"`
	Subfolders []FolderResponse `json:"subfolders"`
	Files      []FileResponse   `json:"files"`
}

func newFolderContentsResponse(contents *service.FolderContents) FolderContentsResponse {
	resp := FolderContentsResponse{
		Subfolders: make([]FolderResponse, 0, len(contents.Subfolders)),
		Files:      make([]FileResponse, 0, len(contents.Files)),
	}

	if contents.Folder != nil {
		fr := newFolderResponse(contents.Folder)
		resp.Folder = &fr
	}
	for _, sub := range contents.Subfolders {
		resp.Subfolders = append(resp.Subfolders, newFolderResponse(sub))
	}
	for _, f := range contents.Files {
		resp.Files = append(resp.Files, newFileResponse(f))
	}

	return resp
}

type BreadcrumbResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type TreeNodeResponse struct {
	ID       uuid.UUID          `json:"id"`
	Name     string             `json:"name"`
	Children []TreeNodeResponse `json:"children"`
}

func newTreeResponse(nodes []*folder.TreeNode) []TreeNodeResponse {
	resp := make([]TreeNodeResponse, 0, len(nodes))
	for _, n := range nodes {
		resp = append(resp, TreeNodeResponse{
			ID:       n.ID,
			Name:     n.Name,
			Children: newTreeResponse(n.Children),
		})
	}
	return resp
}

type DeleteReportResponse struct {
	Message        string               `json:"message"`
	FilesDeleted   int64                `json:"files_deleted"`
	FoldersDeleted int64                `json:"folders_deleted"`
	FoldersSkipped int                  `json:"folders_skipped"`
	FailedFiles    []FailedFileResponse `json:"failed_files"`
}

type FailedFileResponse struct {
	ID         uuid.UUID `json:"id"`
	StorageKey string    `json:"storage_key"`
	Reason     string    `json:"reason"`
}

func newDeleteReportResponse(message string, report *folder.DeleteReport) DeleteReportResponse {
	resp := DeleteReportResponse{
		Message:        message,
		FilesDeleted:   report.FilesDeleted,
		FoldersDeleted: report.FoldersDeleted,
		FoldersSkipped: report.FoldersSkipped,
		FailedFiles:    make([]FailedFileResponse, 0, len(report.FailedFiles)),
	}

	for _, ff := range report.FailedFiles {
		resp.FailedFiles = append(resp.FailedFiles, FailedFileResponse{
			ID:         ff.ID,
			StorageKey: ff.StorageKey,
			Reason:     ff.Reason,
		})
	}

	return resp
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"is_admin"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		IsAdmin:   u.IsAdmin,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type UserListResponse struct {
	Users   []UserResponse `json:"users"`
	Total   int            `json:"total"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
}

type AuditEventResponse struct {
	ID           uuid.UUID      `json:"id"`
	EventType    string         `json:"event_type"`
	ActorType    string         `json:"actor_type"`
	ActorID      *uuid.UUID     `json:"actor_id"`
	ResourceType string         `json:"resource_type"`
	ResourceID   *uuid.UUID     `json:"resource_id"`
	Action       string         `json:"action"`
	Status       string         `json:"status"`
	IPAddress    string         `json:"ip_address"`
	RequestID    string         `json:"request_id"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

type AuditEventListResponse struct {
	Events []AuditEventResponse `json:"events"`
	Count  int                  `json:"count"`
}

func newAuditEventListResponse(events []*audit.Event) AuditEventListResponse {
	resp := AuditEventListResponse{
		Events: make([]AuditEventResponse, 0, len(events)),
		Count:  len(events),
	}

	for _, e := range events {
		resp.Events = append(resp.Events, AuditEventResponse{
			ID:           e.ID,
			EventType:    e.EventType,
			ActorType:    string(e.ActorType),
			ActorID:      e.ActorID,
			ResourceType: string(e.ResourceType),
			ResourceID:   e.ResourceID,
			Action:       string(e.Action),
			Status:       string(e.Status),
			IPAddress:    e.IPAddress,
			RequestID:    e.RequestID,
			Metadata:     e.Metadata,
			ErrorMessage: e.ErrorMessage,
			CreatedAt:    e.CreatedAt,
		})
	}

	return resp
}

type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        UserResponse `json:"user"`
}

func newTokenResponse(result *service.LoginResult) TokenResponse {
	return TokenResponse{
		AccessToken: result.Token,
		TokenType:   "bearer",
		User:        newUserResponse(result.User),
	}
}
