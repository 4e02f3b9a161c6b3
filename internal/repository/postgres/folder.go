package postgres

import (
	"context"
	"filedock/internal/domain/folder"
	apperrors "filedock/pkg/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	msgFolderNameConflict = "a folder with this name already exists in this location"

	folderColumnsWithCounts = `
		f.id, f.name, f.parent_id, f.created_by, f.created_at, f.updated_at,
		(SELECT COUNT(*) FROM files fi WHERE fi.folder_id = f.id),
		(SELECT COUNT(*) FROM folders c WHERE c.parent_id = f.id)
	`
)

type FolderRepository struct {
	db *DB
}

func NewFolderRepository(db *DB) *FolderRepository {
	return &FolderRepository{db: db}
}

func scanFolderWithCounts(row pgx.Row) (*folder.Folder, error) {
	f := &folder.Folder{}
	err := row.Scan(
		&f.ID, &f.Name, &f.ParentID, &f.CreatedBy, &f.CreatedAt, &f.UpdatedAt,
		&f.FileCount, &f.SubfolderCount,
	)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *FolderRepository) Create(ctx context.Context, input folder.CreateFolderInput) (*folder.Folder, error) {
	query := `
		INSERT INTO folders (name, parent_id, created_by)
		VALUES ($1, $2, $3)
		RETURNING id, name, parent_id, created_by, created_at, updated_at, 0, 0
	`

	f, err := scanFolderWithCounts(r.db.Pool.QueryRow(ctx, query, input.Name, input.ParentID, input.CreatedBy))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict(msgFolderNameConflict)
		}
		return nil, errFailedCreateFolder(err)
	}

	return f, nil
}

func (r *FolderRepository) GetByID(ctx context.Context, id uuid.UUID) (*folder.Folder, error) {
	query := `SELECT ` + folderColumnsWithCounts + ` FROM folders f WHERE f.id = $1`

	f, err := scanFolderWithCounts(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errFolderNotFound)
		}
		return nil, errFailedGetFolder(err)
	}

	return f, nil
}

// ListByParent returns the direct child folders of parentID (root level when
// nil), optionally scoped to a single owner, ordered by name.
func (r *FolderRepository) ListByParent(ctx context.Context, parentID, ownerID *uuid.UUID) ([]*folder.Folder, error) {
	query := `SELECT ` + folderColumnsWithCounts + ` FROM folders f WHERE `
	args := make([]any, 0, 2)

	if parentID != nil {
		args = append(args, *parentID)
		query += `f.parent_id = $1`
	} else {
		query += `f.parent_id IS NULL`
	}

	if ownerID != nil {
		args = append(args, *ownerID)
		if len(args) == 1 {
			query += ` AND f.created_by = $1`
		} else {
			query += ` AND f.created_by = $2`
		}
	}

	query += ` ORDER BY f.name ASC`

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errFailedListFolders(err)
	}
	defer rows.Close()

	folders := make([]*folder.Folder, 0)
	for rows.Next() {
		f, err := scanFolderWithCounts(rows)
		if err != nil {
			return nil, errFailedScanFolder(err)
		}
		folders = append(folders, f)
	}

	return folders, rows.Err()
}

// ListAll returns every folder visible to the scope, for tree assembly.
// Counts are not computed here; the caller only needs structure.
func (r *FolderRepository) ListAll(ctx context.Context, ownerID *uuid.UUID) ([]*folder.Folder, error) {
	query := `
		SELECT id, name, parent_id, created_by, created_at, updated_at
		FROM folders
	`
	args := make([]any, 0, 1)
	if ownerID != nil {
		query += ` WHERE created_by = $1`
		args = append(args, *ownerID)
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errFailedListFolders(err)
	}
	defer rows.Close()

	folders := make([]*folder.Folder, 0)
	for rows.Next() {
		f := &folder.Folder{}
		if err := rows.Scan(&f.ID, &f.Name, &f.ParentID, &f.CreatedBy, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, errFailedScanFolder(err)
		}
		folders = append(folders, f)
	}

	return folders, rows.Err()
}

func (r *FolderRepository) Rename(ctx context.Context, id uuid.UUID, name string) (*folder.Folder, error) {
	query := `
		UPDATE folders f SET name = $2, updated_at = now()
		WHERE f.id = $1
		RETURNING ` + folderColumnsWithCounts

	f, err := scanFolderWithCounts(r.db.Pool.QueryRow(ctx, query, id, name))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errFolderNotFound)
		}
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict(msgFolderNameConflict)
		}
		return nil, errFailedUpdateFolder(err)
	}

	return f, nil
}

func (r *FolderRepository) SetParent(ctx context.Context, id uuid.UUID, parentID *uuid.UUID) (*folder.Folder, error) {
	query := `
		UPDATE folders f SET parent_id = $2, updated_at = now()
		WHERE f.id = $1
		RETURNING ` + folderColumnsWithCounts

	f, err := scanFolderWithCounts(r.db.Pool.QueryRow(ctx, query, id, parentID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errFolderNotFound)
		}
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict(msgFolderNameConflict)
		}
		return nil, errFailedUpdateFolder(err)
	}

	return f, nil
}

func (r *FolderRepository) HasChildren(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM folders WHERE parent_id = $1)
		    OR EXISTS (SELECT 1 FROM files WHERE folder_id = $1)
	`

	var hasChildren bool
	if err := r.db.Pool.QueryRow(ctx, query, id).Scan(&hasChildren); err != nil {
		return false, errFailedCheckChildren(err)
	}

	return hasChildren, nil
}

// CollectSubtree walks the folder tree below rootID with a recursive CTE and
// returns folders deepest-first plus every file attached to them. Both
// queries run in one repeatable-read transaction so the snapshot is
// consistent.
func (r *FolderRepository) CollectSubtree(ctx context.Context, rootID uuid.UUID) (*folder.Subtree, error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, errFailedStartTransaction(err)
	}
	defer tx.Rollback(ctx)

	folderQuery := `
		WITH RECURSIVE subtree AS (
			SELECT id, name, parent_id, created_by, created_at, updated_at, 0 AS depth
			FROM folders WHERE id = $1
			UNION ALL
			SELECT f.id, f.name, f.parent_id, f.created_by, f.created_at, f.updated_at, s.depth + 1
			FROM folders f
			JOIN subtree s ON f.parent_id = s.id
		)
		SELECT id, name, parent_id, created_by, created_at, updated_at
		FROM subtree
		ORDER BY depth DESC, name ASC
	`

	rows, err := tx.Query(ctx, folderQuery, rootID)
	if err != nil {
		return nil, errFailedCollectSubtree(err)
	}

	sub := &folder.Subtree{}
	folderIDs := make([]uuid.UUID, 0)
	for rows.Next() {
		f := &folder.Folder{}
		if err := rows.Scan(&f.ID, &f.Name, &f.ParentID, &f.CreatedBy, &f.CreatedAt, &f.UpdatedAt); err != nil {
			rows.Close()
			return nil, errFailedScanFolder(err)
		}
		sub.Folders = append(sub.Folders, f)
		folderIDs = append(folderIDs, f.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, errFailedCollectSubtree(err)
	}

	if len(sub.Folders) == 0 {
		return nil, apperrors.NotFound(errFolderNotFound)
	}

	fileQuery := `
		SELECT id, folder_id, storage_key
		FROM files WHERE folder_id = ANY($1)
	`

	fileRows, err := tx.Query(ctx, fileQuery, folderIDs)
	if err != nil {
		return nil, errFailedCollectSubtree(err)
	}
	defer fileRows.Close()

	for fileRows.Next() {
		var sf folder.SubtreeFile
		if err := fileRows.Scan(&sf.ID, &sf.FolderID, &sf.StorageKey); err != nil {
			return nil, errFailedScanFile(err)
		}
		sub.Files = append(sub.Files, sf)
	}
	if err := fileRows.Err(); err != nil {
		return nil, errFailedCollectSubtree(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errFailedCommitTransaction(err)
	}

	return sub, nil
}

// DeleteRows removes the given folder rows in a single statement. Callers
// pass a closed set (every descendant included) so the self-referencing
// parent constraint cannot be violated.
func (r *FolderRepository) DeleteRows(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result, err := r.db.Pool.Exec(ctx, `DELETE FROM folders WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, errFailedDeleteFolders(err)
	}

	return result.RowsAffected(), nil
}

// DeleteOwnedBy removes every folder created by userID. Folders and files
// owned by other principals that live under the deleted subtrees are moved
// to root first, so the cascade never touches another owner's data.
func (r *FolderRepository) DeleteOwnedBy(ctx context.Context, userID uuid.UUID) (int64, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return 0, errFailedStartTransaction(err)
	}
	defer tx.Rollback(ctx)

	reparentFolders := `
		UPDATE folders SET parent_id = NULL, updated_at = now()
		WHERE created_by <> $1
		  AND parent_id IN (SELECT id FROM folders WHERE created_by = $1)
	`
	if _, err := tx.Exec(ctx, reparentFolders, userID); err != nil {
		return 0, errFailedUpdateFolder(err)
	}

	reparentFiles := `
		UPDATE files SET folder_id = NULL, updated_at = now()
		WHERE uploaded_by <> $1
		  AND folder_id IN (SELECT id FROM folders WHERE created_by = $1)
	`
	if _, err := tx.Exec(ctx, reparentFiles, userID); err != nil {
		return 0, errFailedUpdateFile(err)
	}

	result, err := tx.Exec(ctx, `DELETE FROM folders WHERE created_by = $1`, userID)
	if err != nil {
		return 0, errFailedDeleteFolders(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, errFailedCommitTransaction(err)
	}

	return result.RowsAffected(), nil
}
