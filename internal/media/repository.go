package media

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles media persistence for one collection table.
type Repository struct {
	db      *pgxpool.Pool
	kind    Kind
	columns string
	orderBy string
}

// NewRepository creates a Repository over the table described by kind.
func NewRepository(db *pgxpool.Pool, kind Kind) *Repository {
	r := &Repository{db: db, kind: kind}
	if kind.Ordered {
		r.columns = `id::text, title, description, storage_path, public_url, file_name, file_size,
			sort_order, NULL::int AS page_count, user_id::text, created_at`
		r.orderBy = "sort_order ASC, created_at ASC"
	} else {
		r.columns = `id::text, title, NULL::text AS description, storage_path, public_url, file_name, file_size,
			NULL::int AS sort_order, page_count, user_id::text, created_at`
		r.orderBy = "created_at DESC"
	}
	return r
}

// List returns every item in display order.
func (r *Repository) List(ctx context.Context) ([]Item, error) {
	rows, err := r.db.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s`, r.columns, r.kind.Table, r.orderBy),
	)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.kind.Collection, err)
	}

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Item, error) {
		return scanItem(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", r.kind.Collection, err)
	}
	return items, nil
}

// Get fetches an item by id.
func (r *Repository) Get(ctx context.Context, id string) (*Item, error) {
	row := r.db.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, r.columns, r.kind.Table),
		id,
	)
	it, err := scanItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s item: %w", r.kind.Collection, err)
	}
	return &it, nil
}

// Insert creates the record for an uploaded blob. Gallery items are placed
// ahead of the current first item so new uploads show at the top.
func (r *Repository) Insert(ctx context.Context, n NewItem) (*Item, error) {
	var q string
	args := []any{n.Title, n.StoragePath, n.PublicURL, n.FileName, n.FileSize, nullIfEmpty(n.UserID)}

	if r.kind.Ordered {
		q = fmt.Sprintf(`INSERT INTO %s (title, storage_path, public_url, file_name, file_size, user_id, sort_order)
			VALUES ($1, $2, $3, $4, $5, $6, (SELECT COALESCE(MIN(sort_order), 1) - 1 FROM %s))
			RETURNING %s`, r.kind.Table, r.kind.Table, r.columns)
	} else {
		q = fmt.Sprintf(`INSERT INTO %s (title, storage_path, public_url, file_name, file_size, user_id, page_count)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING %s`, r.kind.Table, r.columns)
		args = append(args, n.PageCount)
	}

	it, err := scanItem(r.db.QueryRow(ctx, q, args...))
	if err != nil {
		return nil, fmt.Errorf("insert %s item: %w", r.kind.Collection, err)
	}
	return &it, nil
}

// Update applies a patch of user-editable fields.
func (r *Repository) Update(ctx context.Context, id string, p Patch) (*Item, error) {
	q := fmt.Sprintf(`UPDATE %s SET title = COALESCE($2, title)`, r.kind.Table)
	args := []any{id, p.Title}
	if r.kind.Describable {
		q += `, description = COALESCE($3, description)`
		args = append(args, p.Description)
	}
	q += fmt.Sprintf(` WHERE id = $1 RETURNING %s`, r.columns)

	it, err := scanItem(r.db.QueryRow(ctx, q, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update %s item: %w", r.kind.Collection, err)
	}
	return &it, nil
}

// ReplaceFile points the record at a new blob.
func (r *Repository) ReplaceFile(ctx context.Context, id string, f FileRef) (*Item, error) {
	q := fmt.Sprintf(`UPDATE %s
		SET storage_path = $2, public_url = $3, file_name = $4, file_size = $5`, r.kind.Table)
	args := []any{id, f.StoragePath, f.PublicURL, f.FileName, f.FileSize}
	if !r.kind.Ordered {
		q += `, page_count = $6`
		args = append(args, f.PageCount)
	}
	q += fmt.Sprintf(` WHERE id = $1 RETURNING %s`, r.columns)

	it, err := scanItem(r.db.QueryRow(ctx, q, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("replace %s file: %w", r.kind.Collection, err)
	}
	return &it, nil
}

// UpdatePosition sets the absolute sort_order of one gallery item.
func (r *Repository) UpdatePosition(ctx context.Context, id string, position int) error {
	if !r.kind.Ordered {
		return ErrUnsupported
	}
	tag, err := r.db.Exec(ctx,
		fmt.Sprintf(`UPDATE %s SET sort_order = $2 WHERE id = $1`, r.kind.Table),
		id, position,
	)
	if err != nil {
		return fmt.Errorf("update position: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the record.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.kind.Table),
		id,
	)
	if err != nil {
		return fmt.Errorf("delete %s item: %w", r.kind.Collection, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanItem(row pgx.Row) (Item, error) {
	var it Item
	err := row.Scan(
		&it.ID, &it.Title, &it.Description, &it.StoragePath, &it.PublicURL,
		&it.FileName, &it.FileSize, &it.Position, &it.PageCount, &it.UserID, &it.CreatedAt,
	)
	if err != nil {
		return Item{}, err
	}
	it.FileSizeLabel = sizeLabel(it.FileSize)
	return it, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
