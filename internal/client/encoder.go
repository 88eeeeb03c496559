package client

import (
	"encoding/json"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/MorseWayne/catalog_shop/internal/domain"
	"github.com/MorseWayne/catalog_shop/internal/query"
)

// Encode 将控件状态编码为 GET /products 的查询参数。
// 只输出有值的键；非数字或负数的价格直接丢弃，填反的上下界交换；空的属性约束在序列化前剔除。
func Encode(s FilterState) url.Values {
	q := url.Values{}

	if v := strings.TrimSpace(s.CategoryID); v != "" {
		q.Set(query.ParamCategoryID, v)
	}
	if v := strings.TrimSpace(s.Brand); v != "" {
		q.Set(query.ParamBrand, v)
	}
	if v := strings.TrimSpace(s.StockStatus); v != "" {
		q.Set(query.ParamStockStatus, v)
	}
	minPrice, maxPrice := orderedBounds(nonNegative(s.MinPrice), nonNegative(s.MaxPrice))
	if minPrice != nil {
		q.Set(query.ParamMinPrice, formatNumber(*minPrice))
	}
	if maxPrice != nil {
		q.Set(query.ParamMaxPrice, formatNumber(*maxPrice))
	}
	if field, order, ok := s.Sort.Fields(); ok {
		q.Set(query.ParamSortBy, string(field))
		q.Set(query.ParamSortOrder, string(order))
	}
	if s.Page > 1 {
		q.Set(query.ParamPage, strconv.Itoa(s.Page))
	}
	if s.PageSize > 0 {
		q.Set(query.ParamPageSize, strconv.Itoa(s.PageSize))
	}

	if filters := attributeFilters(s); len(filters) > 0 {
		// map 键按字典序编码，同一状态总是得到同一查询串
		raw, err := json.Marshal(filters)
		if err == nil {
			q.Set(query.ParamFilters, string(raw))
		}
	}
	return q
}

// EncodeQuery 编码后的完整查询串
func EncodeQuery(s FilterState) string {
	return Encode(s).Encode()
}

func attributeFilters(s FilterState) map[string]domain.FilterValue {
	filters := make(map[string]domain.FilterValue)

	for name, values := range s.MultiSelect {
		kept := make([]string, 0, len(values))
		for _, v := range values {
			if v != "" {
				kept = append(kept, v)
			}
		}
		filters[name] = domain.MultiSelect{Values: kept}
	}

	for name, in := range s.Ranges {
		lo, hi := orderedBounds(number(in.Min), number(in.Max))
		filters[name] = domain.Range{Min: lo, Max: hi}
	}

	for name, on := range s.Toggles {
		filters[name] = domain.Toggle{Value: on}
	}

	for name, fv := range filters {
		if domain.IsEmpty(fv) {
			delete(filters, name)
		}
	}
	return filters
}

func number(s string) *float64 {
	if v, ok := parseNumber(s); ok {
		return &v
	}
	return nil
}

// nonNegative 价格输入：负数与非数字一样丢弃
func nonNegative(s string) *float64 {
	if v := number(s); v != nil && *v >= 0 {
		return v
	}
	return nil
}

// orderedBounds 上下界填反时交换，保证编码出的区间 lo <= hi
func orderedBounds(lo, hi *float64) (*float64, *float64) {
	if lo != nil && hi != nil && *lo > *hi {
		return hi, lo
	}
	return lo, hi
}

// parseNumber 解析有限浮点数
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
