package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MorseWayne/catalog_shop/internal/domain"
)

// FilterRepository 提供过滤描述所需的属性登记与取值统计
type FilterRepository interface {
	// FilterableAttributes 返回分类下可过滤的属性，按展示顺序、名称排序
	FilterableAttributes(ctx context.Context, categoryID int64) ([]*domain.Attribute, error)
	// OptionCounts 返回分类内该属性的全部观测取值及商品数，按数量降序、取值升序
	OptionCounts(ctx context.Context, categoryID, attributeID int64) ([]domain.FilterOption, error)
	// NumericBounds 返回分类内该属性数值的最小/最大值，无取值时均为 nil
	NumericBounds(ctx context.Context, categoryID, attributeID int64) (min, max *float64, err error)
}

type filterRepo struct {
	db *sql.DB
}

// NewFilterRepository 创建过滤统计仓储实例
func NewFilterRepository(db *sql.DB) FilterRepository {
	return &filterRepo{db: db}
}

func (r *filterRepo) FilterableAttributes(ctx context.Context, categoryID int64) ([]*domain.Attribute, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT am.attribute_id, am.name, am.data_type, ca.display_order
		FROM category_attributes ca
		JOIN attribute_master am ON am.attribute_id = ca.attribute_id
		WHERE ca.category_id = ? AND ca.is_filterable = ?
		ORDER BY ca.display_order ASC, am.name ASC
	`, categoryID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to query filterable attributes: %w", err)
	}
	defer rows.Close()

	attrs := make([]*domain.Attribute, 0)
	for rows.Next() {
		var (
			a        domain.Attribute
			dataType string
		)
		if err := rows.Scan(&a.ID, &a.Name, &dataType, &a.DisplayOrder); err != nil {
			return nil, fmt.Errorf("failed to scan attribute: %w", err)
		}
		a.DataType = domain.AttributeDataType(dataType)
		attrs = append(attrs, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attributes: %w", err)
	}
	return attrs, nil
}

func (r *filterRepo) OptionCounts(ctx context.Context, categoryID, attributeID int64) ([]domain.FilterOption, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT av.value_string, COUNT(DISTINCT av.product_id) AS cnt
		FROM attribute_values av
		JOIN products p ON p.product_id = av.product_id
		WHERE p.category_id = ? AND av.attribute_id = ? AND av.value_string IS NOT NULL
		GROUP BY av.value_string
		ORDER BY cnt DESC, av.value_string ASC
	`, categoryID, attributeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query option counts: %w", err)
	}
	defer rows.Close()

	options := make([]domain.FilterOption, 0)
	for rows.Next() {
		var o domain.FilterOption
		if err := rows.Scan(&o.Value, &o.Count); err != nil {
			return nil, fmt.Errorf("failed to scan option count: %w", err)
		}
		o.Label = o.Value
		options = append(options, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate option counts: %w", err)
	}
	return options, nil
}

func (r *filterRepo) NumericBounds(ctx context.Context, categoryID, attributeID int64) (*float64, *float64, error) {
	var min, max sql.NullFloat64
	err := r.db.QueryRowContext(ctx, `
		SELECT MIN(av.value_number), MAX(av.value_number)
		FROM attribute_values av
		JOIN products p ON p.product_id = av.product_id
		WHERE p.category_id = ? AND av.attribute_id = ? AND av.value_number IS NOT NULL
	`, categoryID, attributeID).Scan(&min, &max)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query numeric bounds: %w", err)
	}

	var lo, hi *float64
	if min.Valid {
		v := min.Float64
		lo = &v
	}
	if max.Valid {
		v := max.Float64
		hi = &v
	}
	return lo, hi, nil
}
