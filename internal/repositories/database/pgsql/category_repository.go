package pgsql

import (
	"context"

	"github.com/SscSPs/fireledger/internal/core/domain"
	portsrepo "github.com/SscSPs/fireledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxCategoryRepository struct {
	BaseRepository
}

func newPgxCategoryRepository(pool *pgxpool.Pool) portsrepo.CategoryRepositoryFacade {
	return &PgxCategoryRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CategoryRepositoryFacade = (*PgxCategoryRepository)(nil)

const categoryColumns = `category_id, user_id, name, created_at, created_by, last_updated_at, last_updated_by`

func scanCategory(row pgx.Row) (domain.Category, error) {
	var c domain.Category
	err := row.Scan(&c.CategoryID, &c.UserID, &c.Name, &c.CreatedAt, &c.CreatedBy, &c.LastUpdatedAt, &c.LastUpdatedBy)
	return c, err
}

func (r *PgxCategoryRepository) FindCategoryByID(ctx context.Context, userID string, categoryID string) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE category_id = $1 AND user_id = $2;`
	c, err := scanCategory(r.DB(ctx).QueryRow(ctx, query, categoryID, userID))
	if err != nil {
		return nil, mapError(err, "category "+categoryID)
	}
	return &c, nil
}

func (r *PgxCategoryRepository) FindCategoriesByName(ctx context.Context, userID string, name string) ([]domain.Category, error) {
	rows, err := r.DB(ctx).Query(ctx, `SELECT `+categoryColumns+` FROM categories WHERE user_id = $1 AND name = $2 ORDER BY created_at;`, userID, name)
	if err != nil {
		return nil, mapError(err, "categories")
	}
	defer rows.Close()
	categories, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Category, error) {
		return scanCategory(row)
	})
	if err != nil {
		return nil, mapError(err, "categories")
	}
	return categories, nil
}

func (r *PgxCategoryRepository) SaveCategory(ctx context.Context, c domain.Category) error {
	_, err := r.DB(ctx).Exec(ctx, `INSERT INTO categories (`+categoryColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7);`,
		c.CategoryID, c.UserID, c.Name, c.CreatedAt, c.CreatedBy, c.LastUpdatedAt, c.LastUpdatedBy)
	return mapError(err, "category "+c.Name)
}
