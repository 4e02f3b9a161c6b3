package service

import (
	"context"
	"errors"
	"filedock/internal/domain/file"
	"filedock/internal/domain/user"
	"filedock/internal/infra/cache"
	"filedock/internal/storage/s3"
	apperrors "filedock/pkg/errors"
	"filedock/pkg/validator"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	msgFileNotFound      = "file not found"
	msgFileAccessDenied  = "you do not have access to this file"
	msgFolderAccess      = "you do not have access to the target folder"
	msgTargetNotFound    = "target folder not found"
	msgSlugExhausted     = "could not find a free link name, try again"
	msgBlobDeleteFailed  = "failed to remove file from storage"
	msgOrphanCleanupFmt  = "failed to clean up orphaned blob"
	msgPublicLinkMissing = "public link not found"
)

const (
	slugAttempts = 5

	defaultPerPage = 20
	maxPerPage     = 100

	// Cached presigned URLs expire slightly before the URL itself so a
	// cache hit is never already stale.
	presignCacheMargin = time.Minute
)

// UploadInput carries one file upload. Reader must be seekable because
// the blob client retries from offset zero.
type UploadInput struct {
	Reader       io.ReadSeeker
	OriginalName string
	Size         int64
	ContentType  string
	IsPublic     bool
	CustomName   *string
	Description  *string
	FileType     *string
	Tags         *string
	FolderID     *uuid.UUID
}

// UpdateInput is a field-presence patch; nil fields are left untouched.
type UpdateInput struct {
	IsPublic    *bool
	CustomName  *string
	Description *string
	FileType    *string
	Tags        *string
}

// ListInput is the caller-facing pagination and filter request.
// FolderScoped narrows results to one folder; FolderID nil with
// FolderScoped true means root-level files.
type ListInput struct {
	Page         int
	PerPage      int
	FileType     *string
	IsPublic     *bool
	Search       string
	Tags         string
	FolderScoped bool
	FolderID     *uuid.UUID
}

// ListLimits bounds the page sizes listing callers may request. Zero
// fields fall back to the built-in defaults.
type ListLimits struct {
	DefaultPerPage int
	MaxPerPage     int
}

func (l ListLimits) normalized() ListLimits {
	if l.DefaultPerPage < 1 {
		l.DefaultPerPage = defaultPerPage
	}
	if l.MaxPerPage < 1 {
		l.MaxPerPage = maxPerPage
	}
	if l.MaxPerPage < l.DefaultPerPage {
		l.MaxPerPage = l.DefaultPerPage
	}
	return l
}

func (l ListLimits) clamp(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = l.DefaultPerPage
	}
	if perPage > l.MaxPerPage {
		perPage = l.MaxPerPage
	}
	return page, perPage
}

// FilePage is the pagination envelope for file listings.
type FilePage struct {
	Items   []*file.File
	Total   int
	Page    int
	PerPage int
}

// FileServiceOptions carries the environment-driven tunables. Zero
// fields fall back to readable slugs and the built-in page limits.
type FileServiceOptions struct {
	PresignExpiry time.Duration
	SlugStyle     string
	Limits        ListLimits
}

type FileService struct {
	files         FileRepository
	folders       FolderRepository
	blobs         BlobStore
	urlCache      *cache.URLCache
	presignExpiry time.Duration
	slugStyle     string
	limits        ListLimits
	logger        zerolog.Logger
}

func NewFileService(
	files FileRepository,
	folders FolderRepository,
	blobs BlobStore,
	urlCache *cache.URLCache,
	opts FileServiceOptions,
	logger zerolog.Logger,
) *FileService {
	slugStyle := opts.SlugStyle
	switch slugStyle {
	case SlugStyleReadable, SlugStyleShort:
	default:
		slugStyle = SlugStyleReadable
	}

	return &FileService{
		files:         files,
		folders:       folders,
		blobs:         blobs,
		urlCache:      urlCache,
		presignExpiry: opts.PresignExpiry,
		slugStyle:     slugStyle,
		limits:        opts.Limits.normalized(),
		logger:        logger.With().Str("service", "file").Logger(),
	}
}

// Upload stores the blob first and inserts the metadata row only after
// the blob write succeeded, so a row never points at missing bytes.
func (s *FileService) Upload(ctx context.Context, ident *user.Identity, input UploadInput) (*file.File, error) {
	if ident == nil {
		return nil, apperrors.Unauthorized(msgAuthRequired)
	}

	input.OriginalName = strings.TrimSpace(input.OriginalName)
	if err := validator.FileName(input.OriginalName); err != nil {
		return nil, apperrors.InvalidName(err.Error())
	}
	if err := validator.FileSize(input.Size); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	contentType, err := validator.SanitizeContentType(input.ContentType)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	if input.FolderID != nil {
		target, err := s.folders.GetByID(ctx, *input.FolderID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.NotFound(msgTargetNotFound)
			}
			return nil, err
		}
		if !ident.Owns(target.CreatedBy) {
			return nil, apperrors.Forbidden(msgFolderAccess)
		}
	}

	storageKey := s.blobs.GenerateKey(input.OriginalName)

	if err := s.blobs.Put(ctx, storageKey, input.Reader, input.Size, contentType); err != nil {
		return nil, err
	}

	fileType := input.FileType
	if fileType == nil || strings.TrimSpace(*fileType) == "" {
		detected := DetectFileType(contentType, input.OriginalName)
		fileType = &detected
	}

	createInput := file.CreateFileInput{
		OriginalName: input.OriginalName,
		StorageKey:   storageKey,
		Size:         input.Size,
		ContentType:  &contentType,
		IsPublic:     input.IsPublic,
		Description:  input.Description,
		FileType:     fileType,
		Tags:         input.Tags,
		FolderID:     input.FolderID,
		UploadedBy:   ident.UserID,
	}

	needsSlug := input.IsPublic || input.CustomName != nil

	var created *file.File
	if needsSlug {
		created, err = s.createWithSlug(ctx, createInput, input.CustomName)
	} else {
		created, err = s.files.Create(ctx, createInput)
	}

	if err != nil {
		// The blob is already written; reclaim it so the bucket does
		// not accumulate orphans.
		if cleanupErr := s.blobs.Delete(ctx, storageKey); cleanupErr != nil {
			s.logger.Error().
				Err(cleanupErr).
				Str("storage_key", storageKey).
				Msg(msgOrphanCleanupFmt)
		}
		return nil, err
	}

	s.logger.Info().
		Str("file_id", created.ID.String()).
		Str("name", created.OriginalName).
		Int64("size", created.Size).
		Bool("public", created.IsPublic).
		Msg("file uploaded")

	return created, nil
}

// createWithSlug inserts the row with a fresh slug candidate, retrying
// on uniqueness collisions. The database constraint is the arbiter;
// there is no check-then-insert window.
func (s *FileService) createWithSlug(ctx context.Context, input file.CreateFileInput, customName *string) (*file.File, error) {
	for attempt := 0; attempt < slugAttempts; attempt++ {
		candidate := s.newSlugCandidate(customName)
		input.Slug = &candidate

		created, err := s.files.Create(ctx, input)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, apperrors.ErrSlugTaken) {
			return nil, err
		}
	}

	return nil, apperrors.SlugExhausted(msgSlugExhausted)
}

func (s *FileService) newSlugCandidate(customName *string) string {
	if customName != nil && strings.TrimSpace(*customName) != "" {
		return GenerateSlug(*customName, SlugStyleNamed)
	}
	return GenerateSlug("", s.slugStyle)
}

// Get returns file metadata if the caller may see it: the file is
// public, or the caller owns it, or the caller is an admin.
func (s *FileService) Get(ctx context.Context, ident *user.Identity, id uuid.UUID) (*file.File, error) {
	f, err := s.files.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := authorizeAccess(f, ident); err != nil {
		return nil, err
	}

	return f, nil
}

// List returns one page of the caller's files. Admin callers see every
// file; everyone else is scoped to their own uploads regardless of the
// filters supplied.
func (s *FileService) List(ctx context.Context, ident *user.Identity, input ListInput) (*FilePage, error) {
	if ident == nil {
		return nil, apperrors.Unauthorized(msgAuthRequired)
	}

	page, perPage := s.limits.clamp(input.Page, input.PerPage)

	filter := file.ListFilesFilter{
		FileType:     input.FileType,
		IsPublic:     input.IsPublic,
		Search:       strings.TrimSpace(input.Search),
		Tags:         splitTags(input.Tags),
		FolderScoped: input.FolderScoped,
		FolderID:     input.FolderID,
		Limit:        perPage,
		Offset:       (page - 1) * perPage,
	}
	if !ident.IsAdmin {
		filter.OwnerID = &ident.UserID
	}

	items, total, err := s.files.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &FilePage{
		Items:   items,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	}, nil
}

// Update applies a partial metadata patch. Publishing a file mints a
// slug if it never had one; an existing slug is reused. Unpublishing
// keeps the slug so re-publishing restores the same link.
func (s *FileService) Update(ctx context.Context, ident *user.Identity, id uuid.UUID, input UpdateInput) (*file.File, error) {
	existing, err := s.ownedFile(ctx, ident, id)
	if err != nil {
		return nil, err
	}

	if input.Tags != nil {
		if err := validator.Tags(*input.Tags); err != nil {
			return nil, apperrors.InvalidInput(err.Error())
		}
	}
	if input.Description != nil {
		if err := validator.Description(*input.Description); err != nil {
			return nil, apperrors.InvalidInput(err.Error())
		}
	}

	patch := file.UpdateFileInput{
		IsPublic:    input.IsPublic,
		Description: input.Description,
		FileType:    input.FileType,
		Tags:        input.Tags,
	}

	mintSlug := false
	var customName *string

	if input.CustomName != nil && strings.TrimSpace(*input.CustomName) != "" {
		// A custom name always re-mints a named slug.
		mintSlug = true
		customName = input.CustomName
	} else if input.IsPublic != nil && *input.IsPublic && existing.Slug == nil {
		mintSlug = true
	}

	if !mintSlug {
		return s.files.Update(ctx, id, patch)
	}

	for attempt := 0; attempt < slugAttempts; attempt++ {
		candidate := s.newSlugCandidate(customName)
		patch.Slug = &candidate

		updated, err := s.files.Update(ctx, id, patch)
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, apperrors.ErrSlugTaken) {
			return nil, err
		}
	}

	return nil, apperrors.SlugExhausted(msgSlugExhausted)
}

// Move places the file in another folder, or at the root when folderID
// is nil.
func (s *FileService) Move(ctx context.Context, ident *user.Identity, id uuid.UUID, folderID *uuid.UUID) (*file.File, error) {
	if _, err := s.ownedFile(ctx, ident, id); err != nil {
		return nil, err
	}

	if folderID != nil {
		target, err := s.folders.GetByID(ctx, *folderID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.NotFound(msgTargetNotFound)
			}
			return nil, err
		}
		if !ident.Owns(target.CreatedBy) {
			return nil, apperrors.Forbidden(msgFolderAccess)
		}
	}

	return s.files.SetFolder(ctx, id, folderID)
}

// Delete removes the blob first; the metadata row goes only after the
// blob delete succeeded, so a row is never left pointing at bytes that
// may or may not exist.
func (s *FileService) Delete(ctx context.Context, ident *user.Identity, id uuid.UUID) error {
	f, err := s.ownedFile(ctx, ident, id)
	if err != nil {
		return err
	}

	if err := s.blobs.Delete(ctx, f.StorageKey); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.StorageFailure(msgBlobDeleteFailed, err)
	}

	if err := s.files.Delete(ctx, id); err != nil {
		return err
	}

	s.urlCache.Delete(f.StorageKey)

	s.logger.Info().
		Str("file_id", id.String()).
		Str("name", f.OriginalName).
		Msg("file deleted")

	return nil
}

// Download fetches the blob for streaming. The caller owns the body.
func (s *FileService) Download(ctx context.Context, ident *user.Identity, id uuid.UUID) (*file.File, *s3.Object, error) {
	f, err := s.files.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if err := authorizeAccess(f, ident); err != nil {
		return nil, nil, err
	}

	obj, err := s.blobs.Get(ctx, f.StorageKey)
	if err != nil {
		return nil, nil, err
	}

	return f, obj, nil
}

// DownloadURL returns a presigned URL for the blob, cached per storage
// key until shortly before the URL expires.
func (s *FileService) DownloadURL(ctx context.Context, ident *user.Identity, id uuid.UUID) (string, error) {
	f, err := s.files.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	if err := authorizeAccess(f, ident); err != nil {
		return "", err
	}

	if url, found := s.urlCache.Get(f.StorageKey); found {
		return url, nil
	}

	url, err := s.blobs.PresignDownload(ctx, f.StorageKey, s.presignExpiry)
	if err != nil {
		return "", err
	}

	cacheFor := s.presignExpiry - presignCacheMargin
	if cacheFor > 0 {
		s.urlCache.Set(f.StorageKey, url, time.Now().Add(cacheFor))
	}

	return url, nil
}

// ResolveSlug looks a file up by its public link. The slug of a file
// that was made private again still exists in the store but no longer
// resolves.
func (s *FileService) ResolveSlug(ctx context.Context, slug string) (*file.File, error) {
	f, err := s.files.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound(msgPublicLinkMissing)
		}
		return nil, err
	}

	if !f.IsPublic {
		return nil, apperrors.NotFound(msgPublicLinkMissing)
	}

	return f, nil
}

// OpenBySlug resolves a public link and fetches its blob for anonymous
// inline serving.
func (s *FileService) OpenBySlug(ctx context.Context, slug string) (*file.File, *s3.Object, error) {
	f, err := s.ResolveSlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}

	obj, err := s.blobs.Get(ctx, f.StorageKey)
	if err != nil {
		return nil, nil, err
	}

	return f, obj, nil
}

func (s *FileService) ownedFile(ctx context.Context, ident *user.Identity, id uuid.UUID) (*file.File, error) {
	if ident == nil {
		return nil, apperrors.Unauthorized(msgAuthRequired)
	}

	f, err := s.files.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !ident.Owns(f.UploadedBy) {
		return nil, apperrors.Forbidden(msgFileAccessDenied)
	}

	return f, nil
}

// authorizeAccess gates both metadata reads and byte access: allowed
// iff the file is public, or the caller owns it, or the caller is an
// admin.
func authorizeAccess(f *file.File, ident *user.Identity) error {
	if f.IsPublic {
		return nil
	}
	if ident == nil {
		return apperrors.Unauthorized(msgAuthRequired)
	}
	if !ident.Owns(f.UploadedBy) {
		return apperrors.Forbidden(msgFileAccessDenied)
	}
	return nil
}

// splitTags turns a comma-delimited tag string into trimmed non-empty
// tokens for exact-match filtering.
func splitTags(tags string) []string {
	if strings.TrimSpace(tags) == "" {
		return nil
	}

	parts := strings.Split(tags, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}

	return out
}
