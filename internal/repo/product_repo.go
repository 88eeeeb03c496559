// Package repo 实现数据访问层，负责与数据库的交互。
// SQL 仅使用 MySQL 与 SQLite 共同支持的语法，两种驱动共用同一套查询。
package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/MorseWayne/catalog_shop/internal/domain"
)

// ProductRepository 定义商品数据访问接口（只读）
type ProductRepository interface {
	// List 按过滤条件分页查询，返回当前页商品与忽略分页的总数
	List(ctx context.Context, spec *domain.FilterSpec) ([]*domain.Product, int64, error)
	// GetByID 查询商品详情（含属性与图片），不存在时返回 nil, nil
	GetByID(ctx context.Context, productID string) (*domain.Product, error)
}

// productRepo 实现ProductRepository接口
type productRepo struct {
	db *sql.DB
}

// NewProductRepository 创建商品仓储实例
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepo{db: db}
}

const productColumns = `p.product_id, p.title, p.brand, p.product_type, p.category_id,
		p.price, p.mrp, p.discount_percent, p.currency, p.stock_status,
		(SELECT pi.image_url FROM product_images pi
			WHERE pi.product_id = p.product_id
			ORDER BY pi.is_primary DESC, pi.display_order ASC, pi.image_id ASC
			LIMIT 1) AS primary_image`

// List 获取商品列表
func (r *productRepo) List(ctx context.Context, spec *domain.FilterSpec) ([]*domain.Product, int64, error) {
	textMatches, err := r.rangeTextMatches(ctx, spec)
	if err != nil {
		return nil, 0, err
	}
	where, args := buildSpecWhere(spec, textMatches)

	// 获取总数
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM products p %s", where)
	var total int64
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	products := make([]*domain.Product, 0, spec.PageSize)
	// 超出最后一页时不再查询，直接返回空列表与真实总数
	offset := spec.Offset()
	if offset >= total {
		return products, total, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM products p %s %s LIMIT ? OFFSET ?`,
		productColumns, where, buildOrderClause(spec))
	pageArgs := append(append([]any{}, args...), spec.PageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate products: %w", err)
	}

	return products, total, nil
}

// rangeTextMatches 为每个区间过滤找出以文本存储、可解析为数值且落在区间内的取值
func (r *productRepo) rangeTextMatches(ctx context.Context, spec *domain.FilterSpec) (map[string][]string, error) {
	var matches map[string][]string
	for _, name := range spec.AttributeNames() {
		rng, ok := spec.AttributeFilters[name].(domain.Range)
		if !ok || domain.IsEmpty(rng) {
			continue
		}

		rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT av.value_string FROM attribute_values av
			JOIN attribute_master am ON am.attribute_id = av.attribute_id
			WHERE am.name = ? AND av.value_string IS NOT NULL`, name)
		if err != nil {
			return nil, fmt.Errorf("failed to load text values of %s: %w", name, err)
		}
		var kept []string
		for rows.Next() {
			var s string
			if err := rows.Scan(&s); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan text value of %s: %w", name, err)
			}
			if n, ok := parseNumericText(s); ok && inRange(n, rng) {
				kept = append(kept, s)
			}
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to iterate text values of %s: %w", name, err)
		}

		if len(kept) > 0 {
			if matches == nil {
				matches = make(map[string][]string)
			}
			matches[name] = kept
		}
	}
	return matches, nil
}

// GetByID 根据ID获取商品详情
func (r *productRepo) GetByID(ctx context.Context, productID string) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products p WHERE p.product_id = ?`, productColumns)

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, productID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product by id: %w", err)
	}

	if product.Attributes, err = r.attributes(ctx, product); err != nil {
		return nil, err
	}
	if product.Images, err = r.images(ctx, product.ProductID); err != nil {
		return nil, err
	}
	return product, nil
}

// attributes 查询商品属性，按分类配置的展示顺序排列，未配置的属性排在最后并按名称排序
func (r *productRepo) attributes(ctx context.Context, product *domain.Product) ([]domain.ProductAttribute, error) {
	query := `
		SELECT am.attribute_id, am.name, am.data_type, av.value_string, av.value_number, av.value_boolean
		FROM attribute_values av
		JOIN attribute_master am ON am.attribute_id = av.attribute_id
		LEFT JOIN category_attributes ca ON ca.attribute_id = av.attribute_id AND ca.category_id = ?
		WHERE av.product_id = ?
		ORDER BY CASE WHEN ca.display_order IS NULL THEN 1 ELSE 0 END, ca.display_order, am.name
	`

	var categoryID any
	if product.CategoryID != nil {
		categoryID = *product.CategoryID
	}

	rows, err := r.db.QueryContext(ctx, query, categoryID, product.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to query product attributes: %w", err)
	}
	defer rows.Close()

	attrs := make([]domain.ProductAttribute, 0)
	for rows.Next() {
		var (
			a        domain.ProductAttribute
			dataType string
			str      sql.NullString
			num      sql.NullFloat64
			boolean  sql.NullBool
		)
		if err := rows.Scan(&a.AttributeID, &a.AttributeName, &dataType, &str, &num, &boolean); err != nil {
			return nil, fmt.Errorf("failed to scan product attribute: %w", err)
		}
		a.AttributeType = domain.AttributeDataType(dataType)
		switch {
		case str.Valid:
			a.Value = str.String
		case num.Valid:
			a.Value = strconv.FormatFloat(num.Float64, 'f', -1, 64)
		case boolean.Valid:
			a.Value = strconv.FormatBool(boolean.Bool)
		default:
			continue
		}
		attrs = append(attrs, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate product attributes: %w", err)
	}
	return attrs, nil
}

// images 查询商品图片，主图优先
func (r *productRepo) images(ctx context.Context, productID string) ([]domain.ProductImage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT image_url, is_primary FROM product_images
		WHERE product_id = ?
		ORDER BY is_primary DESC, display_order ASC, image_id ASC
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query product images: %w", err)
	}
	defer rows.Close()

	images := make([]domain.ProductImage, 0)
	for rows.Next() {
		var img domain.ProductImage
		if err := rows.Scan(&img.ImageURL, &img.IsPrimary); err != nil {
			return nil, fmt.Errorf("failed to scan product image: %w", err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate product images: %w", err)
	}
	return images, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		p            domain.Product
		brand        sql.NullString
		productType  sql.NullString
		categoryID   sql.NullInt64
		mrp          sql.NullFloat64
		discount     sql.NullFloat64
		stockStatus  sql.NullString
		primaryImage sql.NullString
	)
	err := row.Scan(
		&p.ProductID,
		&p.Title,
		&brand,
		&productType,
		&categoryID,
		&p.Price,
		&mrp,
		&discount,
		&p.Currency,
		&stockStatus,
		&primaryImage,
	)
	if err != nil {
		return nil, err
	}

	p.Brand = brand.String
	p.ProductType = productType.String
	if categoryID.Valid {
		id := categoryID.Int64
		p.CategoryID = &id
	}
	if mrp.Valid {
		v := mrp.Float64
		p.MRP = &v
	}
	if discount.Valid {
		v := discount.Float64
		p.DiscountPercent = &v
	}
	p.StockStatus = domain.StockStatus(stockStatus.String)
	p.PrimaryImage = primaryImage.String
	return &p, nil
}
