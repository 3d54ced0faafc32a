package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// AttachmentRepository persists attachment metadata and ownership links.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *domain.Attachment) error
	GetByID(ctx context.Context, id string) (*domain.Attachment, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.Attachment, error)
	// Link attaches existing files to an owning record. A file may be
	// linked to several owners; rows are never exclusive.
	Link(ctx context.Context, owner domain.AttachmentOwner, ownerID string, attachmentIDs []string) error
	ListByOwner(ctx context.Context, owner domain.AttachmentOwner, ownerID string) ([]domain.Attachment, error)
}

type attachmentRepository struct {
	q Querier
}

// NewAttachmentRepository constructs repository.
func NewAttachmentRepository(q Querier) AttachmentRepository {
	return &attachmentRepository{q: q}
}

const attachmentColumns = `id, file_name, storage_key, mime_type, size_bytes, uploaded_by_id, created_at`

func (r *attachmentRepository) Create(ctx context.Context, attachment *domain.Attachment) error {
	const query = `
        INSERT INTO attachments (file_name, storage_key, mime_type, size_bytes, uploaded_by_id)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.q.QueryRow(ctx, query,
		attachment.FileName,
		attachment.StorageKey,
		attachment.MimeType,
		attachment.SizeBytes,
		attachment.UploadedByID,
	).Scan(&attachment.ID, &attachment.CreatedAt)
}

func (r *attachmentRepository) GetByID(ctx context.Context, id string) (*domain.Attachment, error) {
	const query = `SELECT ` + attachmentColumns + ` FROM attachments WHERE id=$1`
	var attachment domain.Attachment
	if err := scanAttachment(r.q.QueryRow(ctx, query, id), &attachment); err != nil {
		return nil, err
	}
	return &attachment, nil
}

func (r *attachmentRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.Attachment, error) {
	if len(ids) == 0 {
		return []domain.Attachment{}, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf(`SELECT %s FROM attachments WHERE id IN (%s)`,
		attachmentColumns, strings.Join(placeholders, ","))
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAttachments(rows)
}

func (r *attachmentRepository) Link(ctx context.Context, owner domain.AttachmentOwner, ownerID string, attachmentIDs []string) error {
	const query = `
        INSERT INTO attachment_links (attachment_id, owner_type, owner_id)
        VALUES ($1,$2,$3)`
	for _, attachmentID := range attachmentIDs {
		if _, err := r.q.Exec(ctx, query, attachmentID, owner, ownerID); err != nil {
			return err
		}
	}
	return nil
}

func (r *attachmentRepository) ListByOwner(ctx context.Context, owner domain.AttachmentOwner, ownerID string) ([]domain.Attachment, error) {
	const query = `
        SELECT a.id, a.file_name, a.storage_key, a.mime_type, a.size_bytes, a.uploaded_by_id, a.created_at
        FROM attachments a
        JOIN attachment_links l ON l.attachment_id = a.id
        WHERE l.owner_type=$1 AND l.owner_id=$2
        ORDER BY a.created_at ASC`
	rows, err := r.q.Query(ctx, query, owner, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAttachments(rows)
}

func collectAttachments(rows pgx.Rows) ([]domain.Attachment, error) {
	var result []domain.Attachment
	for rows.Next() {
		var attachment domain.Attachment
		if err := scanAttachment(rows, &attachment); err != nil {
			return nil, err
		}
		result = append(result, attachment)
	}
	return result, rows.Err()
}

func scanAttachment(row pgx.Row, attachment *domain.Attachment) error {
	return row.Scan(
		&attachment.ID,
		&attachment.FileName,
		&attachment.StorageKey,
		&attachment.MimeType,
		&attachment.SizeBytes,
		&attachment.UploadedByID,
		&attachment.CreatedAt,
	)
}
