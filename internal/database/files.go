package database

import (
	"context"
	"errors"
	"time"
	"wymiana-plikow/internal/models"

	"github.com/jackc/pgx/v5"
)

type CreateFileParams struct {
	ID          string
	Title       string
	Description string
	StorageKey  string
	FileName    string
	SizeBytes   *int64
	MimeType    *string
	UploadedBy  *int64
}

func (q *Queries) CreateFile(ctx context.Context, arg CreateFileParams) (*models.File, error) {
	query := `
		INSERT INTO files (id, title, description, storage_key, file_name, size_bytes, mime_type, uploaded_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, title, description, storage_key, file_name, size_bytes, mime_type,
		          download_count, emails_sent, uploaded_by, created_at, updated_at
	`
	now := time.Now()

	row := q.db.QueryRow(ctx, query,
		arg.ID,
		arg.Title,
		arg.Description,
		arg.StorageKey,
		arg.FileName,
		arg.SizeBytes,
		arg.MimeType,
		arg.UploadedBy,
		now,
		now,
	)

	var file models.File
	err := row.Scan(
		&file.ID,
		&file.Title,
		&file.Description,
		&file.StorageKey,
		&file.FileName,
		&file.SizeBytes,
		&file.MimeType,
		&file.DownloadCount,
		&file.EmailsSent,
		&file.UploadedBy,
		&file.CreatedAt,
		&file.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &file, nil
}

func (q *Queries) GetFileByID(ctx context.Context, id string) (*models.File, error) {
	query := `
		SELECT id, title, description, storage_key, file_name, size_bytes, mime_type,
		       download_count, emails_sent, uploaded_by, created_at, updated_at
		FROM files
		WHERE id = $1
	`
	var file models.File

	err := q.db.QueryRow(ctx, query, id).Scan(
		&file.ID,
		&file.Title,
		&file.Description,
		&file.StorageKey,
		&file.FileName,
		&file.SizeBytes,
		&file.MimeType,
		&file.DownloadCount,
		&file.EmailsSent,
		&file.UploadedBy,
		&file.CreatedAt,
		&file.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &file, nil
}

// SearchFilesByTitle does a case-insensitive substring match over title.
// An empty query returns the whole catalog; an empty result is a valid
// zero-length slice, never an error.
func (q *Queries) SearchFilesByTitle(ctx context.Context, titleQuery string, limit int, offset int) ([]models.File, error) {
	query := `
		SELECT id, title, description, storage_key, file_name, size_bytes, mime_type,
		       download_count, emails_sent, uploaded_by, created_at, updated_at
		FROM files
		WHERE title ILIKE '%' || $1 || '%'
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`
	rows, err := q.db.Query(ctx, query, titleQuery, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []models.File
	for rows.Next() {
		var file models.File
		err := rows.Scan(
			&file.ID,
			&file.Title,
			&file.Description,
			&file.StorageKey,
			&file.FileName,
			&file.SizeBytes,
			&file.MimeType,
			&file.DownloadCount,
			&file.EmailsSent,
			&file.UploadedBy,
			&file.CreatedAt,
			&file.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if files == nil {
		return []models.File{}, nil
	}

	return files, nil
}

// ListFiles is the unfiltered catalog listing.
func (q *Queries) ListFiles(ctx context.Context, limit int, offset int) ([]models.File, error) {
	return q.SearchFilesByTitle(ctx, "", limit, offset)
}

func (q *Queries) FileExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM files WHERE id = $1)"
	err := q.db.QueryRow(ctx, query, id).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (q *Queries) DeleteFile(ctx context.Context, id string) (bool, error) {
	query := `DELETE FROM files WHERE id = $1`
	res, err := q.db.Exec(ctx, query, id)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

// Counter bumps go through a single UPDATE by id so concurrent downloads or
// shares of the same file cannot lose updates.
func (q *Queries) IncrementDownloadCount(ctx context.Context, id string) error {
	query := `UPDATE files SET download_count = download_count + 1, updated_at = NOW() WHERE id = $1`
	_, err := q.db.Exec(ctx, query, id)
	return err
}

func (q *Queries) IncrementEmailsSent(ctx context.Context, id string) error {
	query := `UPDATE files SET emails_sent = emails_sent + 1, updated_at = NOW() WHERE id = $1`
	_, err := q.db.Exec(ctx, query, id)
	return err
}
