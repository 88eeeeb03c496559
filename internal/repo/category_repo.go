package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MorseWayne/catalog_shop/internal/domain"
)

// CategoryRepository 分类数据访问接口
type CategoryRepository interface {
	List(ctx context.Context) ([]*domain.Category, error)
	// GetByID 不存在时返回 nil, nil
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
}

type categoryRepo struct {
	db *sql.DB
}

// NewCategoryRepository 创建分类仓储实例
func NewCategoryRepository(db *sql.DB) CategoryRepository {
	return &categoryRepo{db: db}
}

// List 按名称排序返回全部分类
func (r *categoryRepo) List(ctx context.Context) ([]*domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, parent_id, description FROM categories ORDER BY name ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]*domain.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}
	return categories, nil
}

// GetByID 根据ID获取分类
func (r *categoryRepo) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, parent_id, description FROM categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category by id: %w", err)
	}
	return c, nil
}

func scanCategory(row rowScanner) (*domain.Category, error) {
	var (
		c           domain.Category
		parentID    sql.NullInt64
		description sql.NullString
	)
	if err := row.Scan(&c.ID, &c.Name, &parentID, &description); err != nil {
		return nil, err
	}
	if parentID.Valid {
		id := parentID.Int64
		c.ParentID = &id
	}
	c.Description = description.String
	return &c, nil
}
