// Package client 实现浏览端逻辑：过滤控件状态、查询串编码、HTTP 客户端、列表与聊天会话。
package client

import (
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/MorseWayne/catalog_shop/internal/domain"
)

// 控件名称
const (
	ControlCategoryID  = "category_id"
	ControlBrand       = "brand"
	ControlStockStatus = "stock_status"
	ControlMinPrice    = "min_price"
	ControlMaxPrice    = "max_price"
	ControlSort        = "sort"
	ControlPage        = "page"
	ControlPageSize    = "page_size"

	attributeControlPrefix = "attribute_"
)

// SortChoice 排序下拉框的组合选项
type SortChoice string

const (
	SortDefault      SortChoice = ""
	SortPriceAsc     SortChoice = "price_asc"
	SortPriceDesc    SortChoice = "price_desc"
	SortTitleAsc     SortChoice = "title_asc"
	SortTitleDesc    SortChoice = "title_desc"
	SortNewest       SortChoice = "newest"
	SortDiscountDesc SortChoice = "discount_desc"
)

// SortChoices 下拉框中的选项顺序
var SortChoices = []SortChoice{
	SortDefault, SortPriceAsc, SortPriceDesc, SortTitleAsc, SortTitleDesc, SortNewest, SortDiscountDesc,
}

// Label 选项展示文本
func (c SortChoice) Label() string {
	switch c {
	case SortPriceAsc:
		return "Price: Low to High"
	case SortPriceDesc:
		return "Price: High to Low"
	case SortTitleAsc:
		return "Name: A to Z"
	case SortTitleDesc:
		return "Name: Z to A"
	case SortNewest:
		return "Newest"
	case SortDiscountDesc:
		return "Biggest Discount"
	default:
		return "Relevance"
	}
}

// Fields 将组合选项分解为 sort_by / sort_order；默认选项返回 false
func (c SortChoice) Fields() (domain.SortField, domain.SortOrder, bool) {
	switch c {
	case SortPriceAsc:
		return domain.SortByPrice, domain.SortAsc, true
	case SortPriceDesc:
		return domain.SortByPrice, domain.SortDesc, true
	case SortTitleAsc:
		return domain.SortByTitle, domain.SortAsc, true
	case SortTitleDesc:
		return domain.SortByTitle, domain.SortDesc, true
	case SortNewest:
		return domain.SortByProductID, domain.SortDesc, true
	case SortDiscountDesc:
		return domain.SortByDiscountPercent, domain.SortDesc, true
	}
	return "", "", false
}

// RangeInput 区间控件的原始输入文本
type RangeInput struct {
	Min string
	Max string
}

// FilterState 一次查询对应的全部控件状态。
// 值语义：所有 With* 方法返回修改后的副本，原值不变。
type FilterState struct {
	CategoryID  string
	Brand       string
	StockStatus string
	MinPrice    string
	MaxPrice    string
	Sort        SortChoice
	Page        int
	PageSize    int

	MultiSelect map[string][]string
	Ranges      map[string]RangeInput
	Toggles     map[string]bool
}

// clone 深拷贝，保证副本与原值不共享 map/slice
func (s FilterState) clone() FilterState {
	out := s
	if s.MultiSelect != nil {
		out.MultiSelect = make(map[string][]string, len(s.MultiSelect))
		for k, v := range s.MultiSelect {
			out.MultiSelect[k] = slices.Clone(v)
		}
	}
	out.Ranges = maps.Clone(s.Ranges)
	out.Toggles = maps.Clone(s.Toggles)
	return out
}

// WithCategory 切换分类；动态属性控件随分类变化，一并清空并回到第一页
func (s FilterState) WithCategory(categoryID string) FilterState {
	out := s.clone()
	out.CategoryID = categoryID
	out.MultiSelect, out.Ranges, out.Toggles = nil, nil, nil
	out.Page = 0
	return out
}

func (s FilterState) WithBrand(brand string) FilterState {
	out := s.clone()
	out.Brand = brand
	out.Page = 0
	return out
}

func (s FilterState) WithStockStatus(status string) FilterState {
	out := s.clone()
	out.StockStatus = status
	out.Page = 0
	return out
}

// WithPriceRange 设置价格区间的原始文本，非数字在编码时丢弃
func (s FilterState) WithPriceRange(min, max string) FilterState {
	out := s.clone()
	out.MinPrice, out.MaxPrice = min, max
	out.Page = 0
	return out
}

func (s FilterState) WithSort(choice SortChoice) FilterState {
	out := s.clone()
	out.Sort = choice
	out.Page = 0
	return out
}

// WithPage 翻页，不改变其他控件
func (s FilterState) WithPage(page int) FilterState {
	out := s.clone()
	out.Page = page
	return out
}

// WithSelection 设置多选属性的勾选值；空列表表示取消该属性
func (s FilterState) WithSelection(attribute string, values ...string) FilterState {
	out := s.clone()
	if out.MultiSelect == nil {
		out.MultiSelect = make(map[string][]string)
	}
	if len(values) == 0 {
		delete(out.MultiSelect, attribute)
	} else {
		out.MultiSelect[attribute] = slices.Clone(values)
	}
	out.Page = 0
	return out
}

// WithRange 设置区间属性的原始输入
func (s FilterState) WithRange(attribute, min, max string) FilterState {
	out := s.clone()
	if out.Ranges == nil {
		out.Ranges = make(map[string]RangeInput)
	}
	out.Ranges[attribute] = RangeInput{Min: min, Max: max}
	out.Page = 0
	return out
}

// WithToggle 勾选或取消开关属性
func (s FilterState) WithToggle(attribute string, on bool) FilterState {
	out := s.clone()
	if out.Toggles == nil {
		out.Toggles = make(map[string]bool)
	}
	if on {
		out.Toggles[attribute] = true
	} else {
		delete(out.Toggles, attribute)
	}
	out.Page = 0
	return out
}

// Clear 将全部控件恢复为初始状态
func (s FilterState) Clear() FilterState {
	return FilterState{}
}

// IsZero 是否不含任何约束
func (s FilterState) IsZero() bool {
	return len(Encode(s)) == 0
}

// ReadControls 从表单/查询参数中读取控件状态。
// 动态属性控件按描述读取：多选 attribute_{name}（可重复），
// 区间 attribute_{name}_min / attribute_{name}_max，开关 attribute_{name}=on|true。
func ReadControls(q url.Values, descriptors []domain.FilterDescriptor) FilterState {
	s := FilterState{
		CategoryID:  strings.TrimSpace(q.Get(ControlCategoryID)),
		Brand:       strings.TrimSpace(q.Get(ControlBrand)),
		StockStatus: strings.TrimSpace(q.Get(ControlStockStatus)),
		MinPrice:    strings.TrimSpace(q.Get(ControlMinPrice)),
		MaxPrice:    strings.TrimSpace(q.Get(ControlMaxPrice)),
		Sort:        SortChoice(q.Get(ControlSort)),
	}
	if page, err := strconv.Atoi(q.Get(ControlPage)); err == nil && page > 0 {
		s.Page = page
	}
	if size, err := strconv.Atoi(q.Get(ControlPageSize)); err == nil && size > 0 {
		s.PageSize = size
	}

	for _, d := range descriptors {
		name := AttributeControl(d.AttributeName)
		switch d.FilterType {
		case domain.FilterMultiSelect:
			var values []string
			for _, v := range q[name] {
				if v != "" {
					values = append(values, v)
				}
			}
			if len(values) > 0 {
				if s.MultiSelect == nil {
					s.MultiSelect = make(map[string][]string)
				}
				s.MultiSelect[d.AttributeName] = values
			}

		case domain.FilterRange:
			in := RangeInput{
				Min: strings.TrimSpace(q.Get(name + "_min")),
				Max: strings.TrimSpace(q.Get(name + "_max")),
			}
			if in.Min != "" || in.Max != "" {
				if s.Ranges == nil {
					s.Ranges = make(map[string]RangeInput)
				}
				s.Ranges[d.AttributeName] = in
			}

		case domain.FilterToggle:
			switch strings.ToLower(q.Get(name)) {
			case "on", "true":
				if s.Toggles == nil {
					s.Toggles = make(map[string]bool)
				}
				s.Toggles[d.AttributeName] = true
			}
		}
	}
	return s
}

// AttributeControl 属性控件名称
func AttributeControl(attribute string) string {
	return attributeControlPrefix + attribute
}

// Controls 将状态还原为控件取值，用于生成保留当前状态的链接
func (s FilterState) Controls() url.Values {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set(ControlCategoryID, s.CategoryID)
	set(ControlBrand, s.Brand)
	set(ControlStockStatus, s.StockStatus)
	set(ControlMinPrice, s.MinPrice)
	set(ControlMaxPrice, s.MaxPrice)
	set(ControlSort, string(s.Sort))
	if s.Page > 1 {
		q.Set(ControlPage, strconv.Itoa(s.Page))
	}
	if s.PageSize > 0 {
		q.Set(ControlPageSize, strconv.Itoa(s.PageSize))
	}
	for name, values := range s.MultiSelect {
		for _, v := range values {
			q.Add(AttributeControl(name), v)
		}
	}
	for name, in := range s.Ranges {
		set(AttributeControl(name)+"_min", in.Min)
		set(AttributeControl(name)+"_max", in.Max)
	}
	for name, on := range s.Toggles {
		if on {
			q.Set(AttributeControl(name), "on")
		}
	}
	return q
}
