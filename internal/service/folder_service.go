package service

import (
	"context"
	"errors"
	"filedock/internal/domain/file"
	"filedock/internal/domain/folder"
	"filedock/internal/domain/user"
	apperrors "filedock/pkg/errors"
	"filedock/pkg/validator"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	msgFolderNotFound       = "folder not found"
	msgParentNotFound       = "parent folder not found"
	msgFolderAccessDenied   = "you do not have access to this folder"
	msgParentAccessDenied   = "you do not have access to the target folder"
	msgAuthRequired         = "authentication required"
	msgMoveWouldCreateCycle = "cannot move a folder into itself or its descendants"
	msgFolderHasChildren    = "folder is not empty"
	msgPartialFolderDelete  = "some files could not be deleted from storage"
)

// maxFolderDepth bounds ancestor walks so a corrupted parent chain can
// never loop forever.
const maxFolderDepth = 256

// FolderContents is a folder together with its direct children. Folder
// is nil when listing the root level.
type FolderContents struct {
	Folder     *folder.Folder
	Subfolders []*folder.Folder
	Files      []*file.File
}

type FolderService struct {
	folders FolderRepository
	files   FileRepository
	blobs   BlobStore
	logger  zerolog.Logger
}

func NewFolderService(folders FolderRepository, files FileRepository, blobs BlobStore, logger zerolog.Logger) *FolderService {
	return &FolderService{
		folders: folders,
		files:   files,
		blobs:   blobs,
		logger:  logger.With().Str("service", "folder").Logger(),
	}
}

// Create makes a folder owned by the caller. Non-admins may only nest
// under folders they own.
func (s *FolderService) Create(ctx context.Context, ident *user.Identity, name string, parentID *uuid.UUID) (*folder.Folder, error) {
	if ident == nil {
		return nil, apperrors.Unauthorized(msgAuthRequired)
	}

	name = strings.TrimSpace(name)
	if err := validator.FolderName(name); err != nil {
		return nil, apperrors.InvalidName(err.Error())
	}

	if parentID != nil {
		parent, err := s.folders.GetByID(ctx, *parentID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.NotFound(msgParentNotFound)
			}
			return nil, err
		}
		if !ident.Owns(parent.CreatedBy) {
			return nil, apperrors.Forbidden(msgParentAccessDenied)
		}
	}

	created, err := s.folders.Create(ctx, folder.CreateFolderInput{
		Name:      name,
		ParentID:  parentID,
		CreatedBy: ident.UserID,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("folder_id", created.ID.String()).
		Str("name", created.Name).
		Msg("folder created")

	return created, nil
}

// Get returns the folder if the caller may see it. Folders owned by
// someone else are indistinguishable from absent ones.
func (s *FolderService) Get(ctx context.Context, ident *user.Identity, id uuid.UUID) (*folder.Folder, error) {
	return s.visibleFolder(ctx, ident, id)
}

// Contents lists a folder's direct children, or the root level when
// folderID is nil.
func (s *FolderService) Contents(ctx context.Context, ident *user.Identity, folderID *uuid.UUID) (*FolderContents, error) {
	if ident == nil {
		return nil, apperrors.Unauthorized(msgAuthRequired)
	}

	contents := &FolderContents{}

	if folderID != nil {
		f, err := s.visibleFolder(ctx, ident, *folderID)
		if err != nil {
			return nil, err
		}
		contents.Folder = f
	}

	ownerScope := s.ownerScope(ident)

	subfolders, err := s.folders.ListByParent(ctx, folderID, ownerScope)
	if err != nil {
		return nil, err
	}
	contents.Subfolders = subfolders

	files, err := s.files.ListByFolder(ctx, folderID, ownerScope)
	if err != nil {
		return nil, err
	}
	contents.Files = files

	return contents, nil
}

// Breadcrumbs returns the ancestor chain from the root down to and
// including the folder itself.
func (s *FolderService) Breadcrumbs(ctx context.Context, ident *user.Identity, id uuid.UUID) ([]folder.Breadcrumb, error) {
	f, err := s.visibleFolder(ctx, ident, id)
	if err != nil {
		return nil, err
	}

	chain := []folder.Breadcrumb{{ID: f.ID, Name: f.Name}}
	seen := map[uuid.UUID]bool{f.ID: true}

	current := f
	for current.ParentID != nil {
		if seen[*current.ParentID] || len(chain) >= maxFolderDepth {
			s.logger.Error().
				Str("folder_id", id.String()).
				Msg("parent chain loop detected while building breadcrumbs")
			break
		}

		parent, err := s.folders.GetByID(ctx, *current.ParentID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				break
			}
			return nil, err
		}

		chain = append(chain, folder.Breadcrumb{ID: parent.ID, Name: parent.Name})
		seen[parent.ID] = true
		current = parent
	}

	// Built leaf-first, reverse into root-first order.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}

	return chain, nil
}

// Tree assembles the caller's full folder forest in one pass over a
// flat listing, so depth never translates into recursion depth.
func (s *FolderService) Tree(ctx context.Context, ident *user.Identity) ([]*folder.TreeNode, error) {
	if ident == nil {
		return nil, apperrors.Unauthorized(msgAuthRequired)
	}

	all, err := s.folders.ListAll(ctx, s.ownerScope(ident))
	if err != nil {
		return nil, err
	}

	nodes := make(map[uuid.UUID]*folder.TreeNode, len(all))
	for _, f := range all {
		nodes[f.ID] = &folder.TreeNode{ID: f.ID, Name: f.Name}
	}

	roots := make([]*folder.TreeNode, 0)
	for _, f := range all {
		node := nodes[f.ID]
		if f.ParentID != nil {
			if parent, ok := nodes[*f.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	return roots, nil
}

// Rename changes the folder's name, keeping its position and owner.
func (s *FolderService) Rename(ctx context.Context, ident *user.Identity, id uuid.UUID, newName string) (*folder.Folder, error) {
	newName = strings.TrimSpace(newName)
	if err := validator.FolderName(newName); err != nil {
		return nil, apperrors.InvalidName(err.Error())
	}

	if _, err := s.ownedFolder(ctx, ident, id); err != nil {
		return nil, err
	}

	return s.folders.Rename(ctx, id, newName)
}

// Move reparents the folder, or moves it to the root level when
// newParentID is nil. Moving a folder under itself or any of its
// descendants is rejected.
func (s *FolderService) Move(ctx context.Context, ident *user.Identity, id uuid.UUID, newParentID *uuid.UUID) (*folder.Folder, error) {
	if _, err := s.ownedFolder(ctx, ident, id); err != nil {
		return nil, err
	}

	if newParentID != nil {
		target, err := s.folders.GetByID(ctx, *newParentID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.NotFound(msgParentNotFound)
			}
			return nil, err
		}
		if !ident.Owns(target.CreatedBy) {
			return nil, apperrors.Forbidden(msgParentAccessDenied)
		}

		if err := s.checkNoCycle(ctx, id, target); err != nil {
			return nil, err
		}
	}

	return s.folders.SetParent(ctx, id, newParentID)
}

// checkNoCycle walks from the move target up to the root and fails if
// the folder being moved appears anywhere on that chain.
func (s *FolderService) checkNoCycle(ctx context.Context, movingID uuid.UUID, target *folder.Folder) error {
	if target.ID == movingID {
		return apperrors.CycleDetected(msgMoveWouldCreateCycle)
	}

	current := target
	for depth := 0; current.ParentID != nil; depth++ {
		if depth >= maxFolderDepth {
			return apperrors.CycleDetected(msgMoveWouldCreateCycle)
		}
		if *current.ParentID == movingID {
			return apperrors.CycleDetected(msgMoveWouldCreateCycle)
		}

		parent, err := s.folders.GetByID(ctx, *current.ParentID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil
			}
			return err
		}
		current = parent
	}

	return nil
}

// Delete removes a folder. Without recursive, a non-empty folder is
// rejected. With recursive, every descendant file's blob is deleted
// before its row; folders whose contents could not be fully removed
// are kept so the delete can be retried, and the report says so.
func (s *FolderService) Delete(ctx context.Context, ident *user.Identity, id uuid.UUID, recursive bool) (*folder.DeleteReport, error) {
	if _, err := s.ownedFolder(ctx, ident, id); err != nil {
		return nil, err
	}

	if !recursive {
		hasChildren, err := s.folders.HasChildren(ctx, id)
		if err != nil {
			return nil, err
		}
		if hasChildren {
			return nil, apperrors.FolderNotEmpty(msgFolderHasChildren)
		}

		deleted, err := s.folders.DeleteRows(ctx, []uuid.UUID{id})
		if err != nil {
			return nil, err
		}
		return &folder.DeleteReport{FoldersDeleted: deleted}, nil
	}

	subtree, err := s.folders.CollectSubtree(ctx, id)
	if err != nil {
		return nil, err
	}

	report := &folder.DeleteReport{}

	// Blocked folders contain a file whose blob delete failed, or a
	// blocked descendant. They survive the cascade.
	blocked := make(map[uuid.UUID]bool)
	deletableFiles := make([]uuid.UUID, 0, len(subtree.Files))

	for _, f := range subtree.Files {
		if err := s.blobs.Delete(ctx, f.StorageKey); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Error().
				Err(err).
				Str("file_id", f.ID.String()).
				Str("storage_key", f.StorageKey).
				Msg("blob delete failed during recursive folder delete")

			report.FailedFiles = append(report.FailedFiles, folder.FailedFile{
				ID:         f.ID,
				StorageKey: f.StorageKey,
				Reason:     err.Error(),
			})
			blocked[f.FolderID] = true
			continue
		}
		deletableFiles = append(deletableFiles, f.ID)
	}

	filesDeleted, err := s.files.DeleteBatch(ctx, deletableFiles)
	if err != nil {
		return nil, err
	}
	report.FilesDeleted = filesDeleted

	// Subtree folders come deepest-first, so a blocked folder marks its
	// parent before the parent is considered.
	deletableFolders := make([]uuid.UUID, 0, len(subtree.Folders))
	for _, f := range subtree.Folders {
		if blocked[f.ID] {
			report.FoldersSkipped++
			if f.ParentID != nil {
				blocked[*f.ParentID] = true
			}
			continue
		}
		deletableFolders = append(deletableFolders, f.ID)
	}

	foldersDeleted, err := s.folders.DeleteRows(ctx, deletableFolders)
	if err != nil {
		return nil, err
	}
	report.FoldersDeleted = foldersDeleted

	if len(report.FailedFiles) > 0 {
		return report, apperrors.PartialDeletion(
			fmt.Sprintf("%s: %d of %d files", msgPartialFolderDelete,
				len(report.FailedFiles), len(subtree.Files)))
	}

	return report, nil
}

func (s *FolderService) ownerScope(ident *user.Identity) *uuid.UUID {
	if ident.IsAdmin {
		return nil
	}
	return &ident.UserID
}

func (s *FolderService) visibleFolder(ctx context.Context, ident *user.Identity, id uuid.UUID) (*folder.Folder, error) {
	if ident == nil {
		return nil, apperrors.Unauthorized(msgAuthRequired)
	}

	f, err := s.folders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !ident.Owns(f.CreatedBy) {
		return nil, apperrors.NotFound(msgFolderNotFound)
	}

	return f, nil
}

func (s *FolderService) ownedFolder(ctx context.Context, ident *user.Identity, id uuid.UUID) (*folder.Folder, error) {
	if ident == nil {
		return nil, apperrors.Unauthorized(msgAuthRequired)
	}

	f, err := s.folders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !ident.Owns(f.CreatedBy) {
		return nil, apperrors.Forbidden(msgFolderAccessDenied)
	}

	return f, nil
}
