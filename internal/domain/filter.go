package domain

import (
	"encoding/json"
	"math"
	"sort"
	"strings"
)

// 分页与选项截断策略：page_size 越界时收敛到 [MinPageSize, MaxPageSize]，不拒绝请求。
const (
	DefaultPage      = 1
	DefaultPageSize  = 20
	MinPageSize      = 1
	MaxPageSize      = 100
	MaxFilterOptions = 20
)

// ClampPageSize 是 page_size 的唯一收敛入口
func ClampPageSize(n int) int {
	if n < MinPageSize {
		return MinPageSize
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}

// SortField 可排序字段
type SortField string

const (
	SortByProductID       SortField = "product_id"
	SortByPrice           SortField = "price"
	SortByTitle           SortField = "title"
	SortByBrand           SortField = "brand"
	SortByDiscountPercent SortField = "discount_percent"
)

// DefaultSortField 默认按稳定标识排序
const DefaultSortField = SortByProductID

// ParseSortField 解析排序字段，未知字段返回 false
func ParseSortField(s string) (SortField, bool) {
	switch f := SortField(strings.ToLower(strings.TrimSpace(s))); f {
	case SortByProductID, SortByPrice, SortByTitle, SortByBrand, SortByDiscountPercent:
		return f, true
	}
	return "", false
}

// SortOrder 排序方向
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder 大小写不敏感地解析排序方向
func ParseSortOrder(s string) (SortOrder, bool) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case SortAsc, SortDesc:
		return o, true
	}
	return "", false
}

// FilterSpec 单次请求归一化后的过滤条件
type FilterSpec struct {
	Page             int
	PageSize         int
	Brand            *string
	StockStatus      *string
	CategoryID       *int64
	MinPrice         *float64
	MaxPrice         *float64
	SortBy           SortField
	SortOrder        SortOrder
	AttributeFilters map[string]FilterValue
}

// NewFilterSpec 返回带默认值的过滤条件
func NewFilterSpec() *FilterSpec {
	return &FilterSpec{
		Page:      DefaultPage,
		PageSize:  DefaultPageSize,
		SortBy:    DefaultSortField,
		SortOrder: SortAsc,
	}
}

// Offset 分页偏移量；乘积溢出 int64 时饱和为 math.MaxInt64，即必然越过最后一页
func (s *FilterSpec) Offset() int64 {
	if s.Page <= 1 || s.PageSize <= 0 {
		return 0
	}
	page, size := int64(s.Page-1), int64(s.PageSize)
	if page > math.MaxInt64/size {
		return math.MaxInt64
	}
	return page * size
}

// AttributeNames 按字典序返回属性过滤的键，保证 SQL 拼接顺序稳定
func (s *FilterSpec) AttributeNames() []string {
	names := make([]string, 0, len(s.AttributeFilters))
	for name := range s.AttributeFilters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FilterKind 属性过滤值的形态
type FilterKind string

const (
	KindMultiSelect FilterKind = "multi_select"
	KindRange       FilterKind = "range"
	KindToggle      FilterKind = "toggle"
)

// FilterValue 属性过滤值：MultiSelect | Range | Toggle 三选一。
// filterValue 未导出，外部包无法新增实现。
type FilterValue interface {
	Kind() FilterKind
	filterValue()
}

// MultiSelect 属性值必须属于给定集合（原样比较，不做归一化）
type MultiSelect struct {
	Values []string
}

// Range 数值属性的闭区间，任一侧为 nil 表示该侧不限
type Range struct {
	Min *float64
	Max *float64
}

// Toggle 属性必须存在且为真
type Toggle struct {
	Value bool
}

func (MultiSelect) Kind() FilterKind { return KindMultiSelect }
func (Range) Kind() FilterKind       { return KindRange }
func (Toggle) Kind() FilterKind      { return KindToggle }

func (MultiSelect) filterValue() {}
func (Range) filterValue()       {}
func (Toggle) filterValue()      {}

// IsEmpty 判断该过滤值是否不构成任何约束
func IsEmpty(v FilterValue) bool {
	switch fv := v.(type) {
	case MultiSelect:
		return len(fv.Values) == 0
	case Range:
		return fv.Min == nil && fv.Max == nil
	case Toggle:
		return !fv.Value
	}
	return true
}

// MarshalJSON 编码为字符串数组
func (m MultiSelect) MarshalJSON() ([]byte, error) {
	if m.Values == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(m.Values)
}

// MarshalJSON 编码为 {min, max}，未设置的一侧省略
func (r Range) MarshalJSON() ([]byte, error) {
	out := make(map[string]float64, 2)
	if r.Min != nil {
		out["min"] = *r.Min
	}
	if r.Max != nil {
		out["max"] = *r.Max
	}
	return json.Marshal(out)
}

// MarshalJSON 编码为布尔值
func (t Toggle) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Value)
}

// FilterType 过滤控件类型
type FilterType string

const (
	FilterMultiSelect FilterType = "multi_select"
	FilterRange       FilterType = "range"
	FilterToggle      FilterType = "toggle"
)

// FilterTypeFor 按属性登记类型决定控件类型，不依赖取值嗅探
func FilterTypeFor(t AttributeDataType) FilterType {
	switch t {
	case AttributeNumber:
		return FilterRange
	case AttributeBoolean:
		return FilterToggle
	default:
		return FilterMultiSelect
	}
}

// FilterOption 多选控件的一个选项
type FilterOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// FilterDescriptor 描述分类下一个可过滤属性
type FilterDescriptor struct {
	AttributeName  string         `json:"attribute_name"`
	DisplayName    string         `json:"display_name"`
	FilterType     FilterType     `json:"filter_type"`
	Options        []FilterOption `json:"options,omitempty"`
	HasMoreOptions bool           `json:"has_more_options,omitempty"`
	TotalOptions   int            `json:"total_options,omitempty"`
	MinValue       *float64       `json:"min_value"`
	MaxValue       *float64       `json:"max_value"`
}

// FiltersResponse GET /filters 的响应
type FiltersResponse struct {
	Category *Category          `json:"category"`
	Filters  []FilterDescriptor `json:"filters"`
}
