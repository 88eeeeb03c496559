// Package importer 将 CSV / XLSX 商品目录导入 EAV 结构的商品库。
//
// 核心列写入 products，其余非空列作为属性写入 attribute_values；
// 分类由 product_type 决定，属性以可过滤方式挂到该分类下。
package importer

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/MorseWayne/catalog_shop/internal/domain"
)

// 核心列
const (
	colProductID       = "product_id"
	colTitle           = "title"
	colBrand           = "brand"
	colProductType     = "product_type"
	colPrice           = "price"
	colMRP             = "mrp"
	colDiscountPercent = "discount_percent"
	colCurrency        = "currency"
	colStockStatus     = "stock_status"
	colImageURLs       = "image_urls"

	defaultCurrency = "INR"
	imageSeparator  = "|"
)

var coreColumns = []string{
	colProductID, colTitle, colBrand, colProductType, colPrice, colMRP,
	colDiscountPercent, colCurrency, colStockStatus, colImageURLs,
}

// PlaceholderImage 目录未提供图片时使用的占位图
func PlaceholderImage(productID string) string {
	return "https://via.placeholder.com/400x400?text=" + url.QueryEscape(productID)
}

// RowError 某一行导入失败的原因，Line 为表格中的行号（表头为第 1 行）
type RowError struct {
	Line      int
	ProductID string
	Err       error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d (product %q): %v", e.Line, e.ProductID, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// MarshalJSON 输出行号、商品 ID 与错误文本
func (e *RowError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Line      int    `json:"line"`
		ProductID string `json:"product_id"`
		Error     string `json:"error"`
	}{e.Line, e.ProductID, e.Err.Error()})
}

// Stats 导入统计
type Stats struct {
	Products   int
	Skipped    int
	Failed     int
	Categories int
	Attributes int
	Values     int
	Options    int
	Images     int
	Errors     []*RowError
}

// Importer 目录导入器
type Importer struct {
	db       *sql.DB
	registry *Registry
	logger   *zap.Logger

	// enumValues 已成功导入的枚举取值，按属性 ID 归集
	enumValues map[int64]map[string]struct{}
}

// Import 导入整张表。单行失败只记录并跳过，已存在的商品跳过不覆盖；
// 返回的 error 仅表示无法继续的整体失败。
func Import(ctx context.Context, db *sql.DB, table *Table, registry *Registry, logger *zap.Logger) (*Stats, error) {
	if registry == nil {
		registry = DefaultRegistry()
	}
	im := &Importer{db: db, registry: registry, logger: logger, enumValues: map[int64]map[string]struct{}{}}
	return im.run(ctx, table)
}

func (im *Importer) run(ctx context.Context, table *Table) (*Stats, error) {
	stats := &Stats{}

	for i := range table.Rows {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		line := i + 2
		rec := table.Record(i)

		delta, err := im.importRow(ctx, table.Header, rec)
		switch {
		case errors.Is(err, errProductExists):
			stats.Skipped++
			im.logger.Debug("product already exists, skipped", zap.Int("line", line), zap.String("product_id", rec[colProductID]))
		case err != nil:
			rowErr := &RowError{Line: line, ProductID: rec[colProductID], Err: err}
			stats.Failed++
			stats.Errors = append(stats.Errors, rowErr)
			im.logger.Warn("import row failed", zap.Int("line", line), zap.String("product_id", rec[colProductID]), zap.Error(err))
		default:
			stats.Products++
			stats.Categories += delta.categories
			stats.Attributes += delta.attributes
			stats.Values += delta.values
			stats.Images += delta.images
			for id, v := range delta.enums {
				set, ok := im.enumValues[id]
				if !ok {
					set = map[string]struct{}{}
					im.enumValues[id] = set
				}
				set[v] = struct{}{}
			}
		}
	}

	options, err := im.populateOptions(ctx)
	if err != nil {
		return stats, err
	}
	stats.Options = options

	im.logger.Info("catalog import finished",
		zap.Int("products", stats.Products),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed),
		zap.Int("categories", stats.Categories),
		zap.Int("attributes", stats.Attributes),
		zap.Int("options", stats.Options),
	)
	return stats, nil
}

var errProductExists = errors.New("product already exists")

// rowDelta 单行事务提交后才计入统计
type rowDelta struct {
	categories int
	attributes int
	values     int
	images     int
	enums      map[int64]string
}

func (im *Importer) importRow(ctx context.Context, header []string, rec map[string]string) (*rowDelta, error) {
	id := rec[colProductID]
	if id == "" {
		return nil, errors.New("product_id is empty")
	}
	title := rec[colTitle]
	if title == "" {
		return nil, errors.New("title is empty")
	}
	price, err := parseRequiredFloat(rec[colPrice])
	if err != nil {
		return nil, fmt.Errorf("price: %w", err)
	}
	mrp, err := parseOptionalFloat(rec[colMRP])
	if err != nil {
		return nil, fmt.Errorf("mrp: %w", err)
	}
	discount, err := parseOptionalFloat(rec[colDiscountPercent])
	if err != nil {
		return nil, fmt.Errorf("discount_percent: %w", err)
	}
	currency := strings.ToUpper(rec[colCurrency])
	if currency == "" {
		currency = defaultCurrency
	}

	tx, err := im.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM products WHERE product_id = ?`, id).Scan(&exists)
	if err == nil {
		return nil, errProductExists
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("check product: %w", err)
	}

	delta := &rowDelta{enums: map[int64]string{}}

	var categoryID *int64
	if productType := rec[colProductType]; productType != "" {
		cid, created, err := getOrCreateCategory(ctx, tx, productType)
		if err != nil {
			return nil, err
		}
		categoryID = &cid
		if created {
			delta.categories++
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO products (product_id, title, brand, product_type, category_id, price, mrp, discount_percent, currency, stock_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, title, nullString(rec[colBrand]), nullString(rec[colProductType]), categoryID,
		price, mrp, discount, currency, nullString(rec[colStockStatus]),
	); err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}

	for order, column := range header {
		if slices.Contains(coreColumns, column) || im.registry.excluded(column) {
			continue
		}
		value := rec[column]
		if value == "" {
			continue
		}

		attr, created, err := getOrCreateAttribute(ctx, tx, column, im.registry.TypeOf(column, value))
		if err != nil {
			return nil, err
		}
		if created {
			delta.attributes++
		}
		if err := insertValue(ctx, tx, id, attr, value); err != nil {
			return nil, err
		}
		delta.values++

		if categoryID != nil {
			if err := linkAttribute(ctx, tx, *categoryID, attr.ID, order); err != nil {
				return nil, err
			}
		}
		if attr.DataType == domain.AttributeEnum {
			delta.enums[attr.ID] = value
		}
	}

	images := splitImages(rec[colImageURLs])
	if len(images) == 0 {
		images = []string{PlaceholderImage(id)}
	}
	for i, u := range images {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO product_images (product_id, image_url, is_primary, display_order) VALUES (?, ?, ?, ?)`,
			id, u, i == 0, i,
		); err != nil {
			return nil, fmt.Errorf("insert image: %w", err)
		}
		delta.images++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return delta, nil
}

func getOrCreateCategory(ctx context.Context, tx *sql.Tx, name string) (int64, bool, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM categories WHERE name = ?`, name).Scan(&id)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, fmt.Errorf("find category %q: %w", name, err)
	}
	res, err := tx.ExecContext(ctx, `INSERT INTO categories (name) VALUES (?)`, name)
	if err != nil {
		return 0, false, fmt.Errorf("create category %q: %w", name, err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("create category %q: %w", name, err)
	}
	return id, true, nil
}

// getOrCreateAttribute 已存在的属性沿用登记时的类型
func getOrCreateAttribute(ctx context.Context, tx *sql.Tx, name string, dataType domain.AttributeDataType) (*domain.Attribute, bool, error) {
	attr := &domain.Attribute{Name: name}
	err := tx.QueryRowContext(ctx, `SELECT attribute_id, data_type FROM attribute_master WHERE name = ?`, name).
		Scan(&attr.ID, &attr.DataType)
	if err == nil {
		return attr, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("find attribute %q: %w", name, err)
	}
	res, err := tx.ExecContext(ctx, `INSERT INTO attribute_master (name, data_type) VALUES (?, ?)`, name, string(dataType))
	if err != nil {
		return nil, false, fmt.Errorf("create attribute %q: %w", name, err)
	}
	if attr.ID, err = res.LastInsertId(); err != nil {
		return nil, false, fmt.Errorf("create attribute %q: %w", name, err)
	}
	attr.DataType = dataType
	return attr, true, nil
}

// insertValue 按属性类型写入对应的取值列；数字或布尔无法解析时退回字符串列，原样保留
func insertValue(ctx context.Context, tx *sql.Tx, productID string, attr *domain.Attribute, value string) error {
	var (
		s sql.NullString
		n sql.NullFloat64
		b sql.NullBool
	)
	switch attr.DataType {
	case domain.AttributeBoolean:
		v, ok := parseBool(value)
		switch {
		case ok:
			b = sql.NullBool{Bool: v, Valid: true}
		case value == "1", value == "0":
			b = sql.NullBool{Bool: value == "1", Valid: true}
		default:
			s = sql.NullString{String: value, Valid: true}
		}
	case domain.AttributeNumber:
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			n = sql.NullFloat64{Float64: f, Valid: true}
		} else {
			s = sql.NullString{String: value, Valid: true}
		}
	default:
		s = sql.NullString{String: value, Valid: true}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO attribute_values (product_id, attribute_id, value_string, value_number, value_boolean)
		VALUES (?, ?, ?, ?, ?)`,
		productID, attr.ID, s, n, b,
	); err != nil {
		return fmt.Errorf("insert value for %q: %w", attr.Name, err)
	}
	return nil
}

func linkAttribute(ctx context.Context, tx *sql.Tx, categoryID, attributeID int64, order int) error {
	var exists int
	err := tx.QueryRowContext(ctx,
		`SELECT 1 FROM category_attributes WHERE category_id = ? AND attribute_id = ?`, categoryID, attributeID,
	).Scan(&exists)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("find category attribute: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO category_attributes (category_id, attribute_id, is_required, is_filterable, display_order)
		VALUES (?, ?, ?, ?, ?)`,
		categoryID, attributeID, false, true, order,
	); err != nil {
		return fmt.Errorf("link attribute to category: %w", err)
	}
	return nil
}

// populateOptions 为枚举属性补齐候选值，display_order 为全部取值排序后的位置
func (im *Importer) populateOptions(ctx context.Context) (int, error) {
	ids := make([]int64, 0, len(im.enumValues))
	for id := range im.enumValues {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	tx, err := im.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	created := 0
	for _, id := range ids {
		existing, err := loadOptions(ctx, tx, id)
		if err != nil {
			return 0, err
		}
		all := slices.Clone(existing)
		for v := range im.enumValues[id] {
			if !slices.Contains(all, v) {
				all = append(all, v)
			}
		}
		slices.Sort(all)

		for order, v := range all {
			if slices.Contains(existing, v) {
				continue
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO attribute_options (attribute_id, option_value, display_order) VALUES (?, ?, ?)`,
				id, v, order,
			); err != nil {
				return 0, fmt.Errorf("insert option %q: %w", v, err)
			}
			created++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit options: %w", err)
	}
	return created, nil
}

func loadOptions(ctx context.Context, tx *sql.Tx, attributeID int64) ([]string, error) {
	rows, err := tx.QueryContext(ctx, `SELECT option_value FROM attribute_options WHERE attribute_id = ?`, attributeID)
	if err != nil {
		return nil, fmt.Errorf("load options: %w", err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan option: %w", err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

func splitImages(raw string) []string {
	var out []string
	for _, u := range strings.Split(raw, imageSeparator) {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}

func parseRequiredFloat(raw string) (float64, error) {
	if raw == "" {
		return 0, errors.New("is required")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", raw)
	}
	if f < 0 {
		return 0, fmt.Errorf("%q must not be negative", raw)
	}
	return f, nil
}

func parseOptionalFloat(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	f, err := parseRequiredFloat(raw)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
