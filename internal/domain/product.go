// Package domain 定义商品目录的领域模型、过滤查询模型及错误分类。
package domain

// StockStatus 库存状态（导入数据中的原始字符串，未知值原样保留）
type StockStatus string

const (
	StockInStock    StockStatus = "In Stock"
	StockLowStock   StockStatus = "Low Stock"
	StockOutOfStock StockStatus = "Out of Stock"
)

// Known 判断是否为已知的库存状态
func (s StockStatus) Known() bool {
	switch s {
	case StockInStock, StockLowStock, StockOutOfStock:
		return true
	}
	return false
}

// Product 商品只读投影。列表接口只填充基础字段与主图，详情接口额外填充属性与图片。
type Product struct {
	ProductID       string             `json:"product_id"`
	Title           string             `json:"title"`
	Brand           string             `json:"brand,omitempty"`
	ProductType     string             `json:"product_type,omitempty"`
	CategoryID      *int64             `json:"category_id"`
	Price           float64            `json:"price"`
	MRP             *float64           `json:"mrp"`
	DiscountPercent *float64           `json:"discount_percent"`
	Currency        string             `json:"currency"`
	StockStatus     StockStatus        `json:"stock_status,omitempty"`
	PrimaryImage    string             `json:"primary_image,omitempty"`
	Attributes      []ProductAttribute `json:"attributes,omitempty"`
	Images          []ProductImage     `json:"images,omitempty"`
}

// HasDiscount 仅当 mrp 大于售价时才展示折扣
func (p *Product) HasDiscount() bool {
	return p.MRP != nil && *p.MRP > p.Price
}

// DiscountPct 返回展示用的折扣百分比：优先使用存储值，否则由 mrp 推算
func (p *Product) DiscountPct() int {
	if !p.HasDiscount() {
		return 0
	}
	if p.DiscountPercent != nil && *p.DiscountPercent > 0 {
		return int(*p.DiscountPercent + 0.5)
	}
	return int((*p.MRP-p.Price)/(*p.MRP)*100 + 0.5)
}

// ProductAttribute 商品的一条属性，值统一渲染为字符串
type ProductAttribute struct {
	AttributeID   int64             `json:"attribute_id"`
	AttributeName string            `json:"attribute_name"`
	AttributeType AttributeDataType `json:"attribute_type"`
	Value         string            `json:"value"`
}

// ProductImage 商品图片
type ProductImage struct {
	ImageURL  string `json:"image_url"`
	IsPrimary bool   `json:"is_primary"`
}

// PagedResult 分页查询结果；Total 为忽略分页的全部匹配数
type PagedResult struct {
	Products []*Product `json:"products"`
	Total    int64      `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
}

// TotalPages 总页数（无结果时为 0）
func (r *PagedResult) TotalPages() int {
	if r.PageSize <= 0 || r.Total <= 0 {
		return 0
	}
	return int((r.Total + int64(r.PageSize) - 1) / int64(r.PageSize))
}
