package postgres

import (
	"context"
	"filedock/internal/domain/file"
	apperrors "filedock/pkg/errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	msgStorageKeyConflict = "storage key already exists"

	fileColumns = `
		id, original_name, slug, storage_key, size, content_type, is_public,
		description, file_type, tags, folder_id, uploaded_by, created_at, updated_at
	`
)

type FileRepository struct {
	db *DB
}

func NewFileRepository(db *DB) *FileRepository {
	return &FileRepository{db: db}
}

func scanFile(row pgx.Row) (*file.File, error) {
	f := &file.File{}
	err := row.Scan(
		&f.ID, &f.OriginalName, &f.Slug, &f.StorageKey, &f.Size, &f.ContentType, &f.IsPublic,
		&f.Description, &f.FileType, &f.Tags, &f.FolderID, &f.UploadedBy, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// mapUniqueViolation distinguishes slug collisions (retryable by the slug
// resolver) from storage-key collisions (programming error, surfaced as
// conflict).
func mapUniqueViolation(err error) error {
	switch uniqueConstraint(err) {
	case constraintFilesSlug:
		return apperrors.ErrSlugTaken
	case constraintFilesStorageKey:
		return apperrors.Conflict(msgStorageKeyConflict)
	}
	return nil
}

func (r *FileRepository) Create(ctx context.Context, input file.CreateFileInput) (*file.File, error) {
	query := `
		INSERT INTO files (
			original_name, slug, storage_key, size, content_type, is_public,
			description, file_type, tags, folder_id, uploaded_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + fileColumns

	f, err := scanFile(r.db.Pool.QueryRow(ctx, query,
		input.OriginalName, input.Slug, input.StorageKey, input.Size, input.ContentType,
		input.IsPublic, input.Description, input.FileType, input.Tags, input.FolderID, input.UploadedBy,
	))

	if err != nil {
		if mapped := mapUniqueViolation(err); mapped != nil {
			return nil, mapped
		}
		return nil, errFailedCreateFile(err)
	}

	return f, nil
}

func (r *FileRepository) GetByID(ctx context.Context, id uuid.UUID) (*file.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE id = $1`

	f, err := scanFile(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errFileNotFound)
		}
		return nil, errFailedGetFile(err)
	}

	return f, nil
}

func (r *FileRepository) GetBySlug(ctx context.Context, slug string) (*file.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE slug = $1`

	f, err := scanFile(r.db.Pool.QueryRow(ctx, query, slug))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errFileNotFound)
		}
		return nil, errFailedGetFile(err)
	}

	return f, nil
}

func (r *FileRepository) Update(ctx context.Context, id uuid.UUID, input file.UpdateFileInput) (*file.File, error) {
	setClauses := make([]string, 0, 5)
	args := make([]any, 0, 6)

	appendSet := func(column string, value any) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if input.IsPublic != nil {
		appendSet("is_public", *input.IsPublic)
	}
	if input.Slug != nil {
		appendSet("slug", *input.Slug)
	}
	if input.Description != nil {
		appendSet("description", *input.Description)
	}
	if input.FileType != nil {
		appendSet("file_type", *input.FileType)
	}
	if input.Tags != nil {
		appendSet("tags", *input.Tags)
	}

	if len(setClauses) == 0 {
		return r.GetByID(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE files SET %s, updated_at = now()
		WHERE id = $%d
		RETURNING %s
	`, joinClauses(setClauses), len(args), fileColumns)

	f, err := scanFile(r.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errFileNotFound)
		}
		if mapped := mapUniqueViolation(err); mapped != nil {
			return nil, mapped
		}
		return nil, errFailedUpdateFile(err)
	}

	return f, nil
}

func (r *FileRepository) SetFolder(ctx context.Context, id uuid.UUID, folderID *uuid.UUID) (*file.File, error) {
	query := `
		UPDATE files SET folder_id = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + fileColumns

	f, err := scanFile(r.db.Pool.QueryRow(ctx, query, id, folderID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errFileNotFound)
		}
		return nil, errFailedUpdateFile(err)
	}

	return f, nil
}

func (r *FileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return errFailedDeleteFile(err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NotFound(errFileNotFound)
	}

	return nil
}

func (r *FileRepository) DeleteBatch(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result, err := r.db.Pool.Exec(ctx, `DELETE FROM files WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, errFailedDeleteFile(err)
	}

	return result.RowsAffected(), nil
}

// List applies the filter and returns one page plus the total filtered
// count. Results are ordered newest first.
func (r *FileRepository) List(ctx context.Context, filter file.ListFilesFilter) ([]*file.File, int, error) {
	where := "TRUE"
	args := make([]any, 0, 6)

	appendCond := func(cond string, value any) {
		args = append(args, value)
		where += fmt.Sprintf(" AND "+cond, len(args))
	}

	if filter.OwnerID != nil {
		appendCond("uploaded_by = $%d", *filter.OwnerID)
	}

	if filter.FolderScoped {
		if filter.FolderID != nil {
			appendCond("folder_id = $%d", *filter.FolderID)
		} else {
			where += " AND folder_id IS NULL"
		}
	}

	if filter.FileType != nil {
		appendCond("file_type = $%d", *filter.FileType)
	}

	if filter.IsPublic != nil {
		appendCond("is_public = $%d", *filter.IsPublic)
	}

	if filter.Search != "" {
		pattern := "%" + escapeLikePattern(filter.Search) + "%"
		args = append(args, pattern)
		where += fmt.Sprintf(" AND (original_name ILIKE $%d OR description ILIKE $%d)", len(args), len(args))
	}

	if len(filter.Tags) > 0 {
		// Exact-token intersection of the comma-delimited tag sets.
		appendCond("EXISTS (SELECT 1 FROM unnest(string_to_array(COALESCE(tags, ''), ',')) t WHERE btrim(t) = ANY($%d))", filter.Tags)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM files WHERE ` + where
	if err := r.db.Pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, errFailedCountFiles(err)
	}

	args = append(args, filter.Limit, filter.Offset)
	pageQuery := fmt.Sprintf(
		`SELECT %s FROM files WHERE %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		fileColumns, where, len(args)-1, len(args),
	)

	rows, err := r.db.Pool.Query(ctx, pageQuery, args...)
	if err != nil {
		return nil, 0, errFailedListFiles(err)
	}
	defer rows.Close()

	files := make([]*file.File, 0)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, 0, errFailedScanFile(err)
		}
		files = append(files, f)
	}

	return files, total, rows.Err()
}

// ListByFolder returns the files directly inside folderID (root when nil),
// optionally scoped to an owner, ordered by name for folder views.
func (r *FileRepository) ListByFolder(ctx context.Context, folderID, ownerID *uuid.UUID) ([]*file.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE `
	args := make([]any, 0, 2)

	if folderID != nil {
		args = append(args, *folderID)
		query += `folder_id = $1`
	} else {
		query += `folder_id IS NULL`
	}

	if ownerID != nil {
		args = append(args, *ownerID)
		query += fmt.Sprintf(` AND uploaded_by = $%d`, len(args))
	}

	query += ` ORDER BY original_name ASC`

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errFailedListFiles(err)
	}
	defer rows.Close()

	files := make([]*file.File, 0)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, errFailedScanFile(err)
		}
		files = append(files, f)
	}

	return files, rows.Err()
}

// ListAllByOwner returns every file uploaded by userID, used by the
// account-deletion cascade.
func (r *FileRepository) ListAllByOwner(ctx context.Context, userID uuid.UUID) ([]*file.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE uploaded_by = $1 ORDER BY created_at ASC`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, errFailedListFiles(err)
	}
	defer rows.Close()

	files := make([]*file.File, 0)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, errFailedScanFile(err)
		}
		files = append(files, f)
	}

	return files, rows.Err()
}
