// Package query 将商品列表请求的查询参数解析为归一化的 domain.FilterSpec。
//
// 解析是严格的：可识别参数的非法取值一律返回 *domain.ValidationError，
// 不会静默丢弃；未知参数被忽略以保持向前兼容。空字符串视为未提供。
package query

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/MorseWayne/catalog_shop/internal/domain"
)

// 可识别的查询参数名
const (
	ParamPage        = "page"
	ParamPageSize    = "page_size"
	ParamBrand       = "brand"
	ParamStockStatus = "stock_status"
	ParamCategoryID  = "category_id"
	ParamMinPrice    = "min_price"
	ParamMaxPrice    = "max_price"
	ParamSortBy      = "sort_by"
	ParamSortOrder   = "sort_order"
	ParamFilters     = "filters"
)

// DecodeFilterSpec 解析查询参数
func DecodeFilterSpec(q url.Values) (*domain.FilterSpec, error) {
	spec := domain.NewFilterSpec()

	if v, ok := lookup(q, ParamPage); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, domain.NewValidationError(ParamPage, "must be an integer")
		}
		if n < 1 {
			return nil, domain.NewValidationError(ParamPage, "must be at least 1")
		}
		spec.Page = n
	}

	if v, ok := lookup(q, ParamPageSize); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, domain.NewValidationError(ParamPageSize, "must be an integer")
		}
		spec.PageSize = domain.ClampPageSize(n)
	}

	if v, ok := lookup(q, ParamBrand); ok {
		spec.Brand = &v
	}

	if v, ok := lookup(q, ParamStockStatus); ok {
		status, err := parseStockStatus(v)
		if err != nil {
			return nil, err
		}
		spec.StockStatus = &status
	}

	if v, ok := lookup(q, ParamCategoryID); ok {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return nil, domain.NewValidationError(ParamCategoryID, "must be a positive integer")
		}
		spec.CategoryID = &id
	}

	var err error
	if spec.MinPrice, err = parsePrice(q, ParamMinPrice); err != nil {
		return nil, err
	}
	if spec.MaxPrice, err = parsePrice(q, ParamMaxPrice); err != nil {
		return nil, err
	}
	if spec.MinPrice != nil && spec.MaxPrice != nil && *spec.MinPrice > *spec.MaxPrice {
		return nil, domain.NewValidationError(ParamMinPrice, "must not exceed max_price")
	}

	if v, ok := lookup(q, ParamSortBy); ok {
		field, ok := domain.ParseSortField(v)
		if !ok {
			return nil, domain.NewValidationError(ParamSortBy, "unsupported sort field %q", v)
		}
		spec.SortBy = field
	}

	if v, ok := lookup(q, ParamSortOrder); ok {
		order, ok := domain.ParseSortOrder(v)
		if !ok {
			return nil, domain.NewValidationError(ParamSortOrder, "must be asc or desc")
		}
		spec.SortOrder = order
	}

	if v, ok := lookup(q, ParamFilters); ok {
		filters, err := DecodeAttributeFilters([]byte(v))
		if err != nil {
			return nil, err
		}
		if len(filters) > 0 {
			spec.AttributeFilters = filters
		}
	}

	return spec, nil
}

// DecodeAttributeFilters 解析 filters 参数中的 JSON 对象并逐键归类为 FilterValue。
// 不构成约束的值（空数组、两侧均未设置的区间、false 开关）会被剔除。
func DecodeAttributeFilters(raw []byte) (map[string]domain.FilterValue, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, domain.NewValidationError(ParamFilters, "must be a JSON object")
	}
	if dec.More() {
		return nil, domain.NewValidationError(ParamFilters, "must contain a single JSON object")
	}

	if err := filtersSchema.Validate(doc); err != nil {
		if key := offendingKey(err); key != "" {
			return nil, invalidShape(key)
		}
		return nil, domain.NewValidationError(ParamFilters, "must be a JSON object")
	}

	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, domain.NewValidationError(ParamFilters, "must be a JSON object")
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]domain.FilterValue, len(obj))
	for _, key := range keys {
		if strings.TrimSpace(key) == "" {
			return nil, domain.NewValidationError(ParamFilters, "attribute name must not be empty")
		}
		fv, err := classify(key, obj[key])
		if err != nil {
			return nil, err
		}
		if domain.IsEmpty(fv) {
			continue
		}
		out[key] = fv
	}
	return out, nil
}

// classify 按 JSON 值的形态归类：字符串数组 ⇒ 多选，{min,max} ⇒ 区间，布尔 ⇒ 开关
func classify(key string, raw any) (domain.FilterValue, error) {
	switch v := raw.(type) {
	case []any:
		values := make([]string, 0, len(v))
		seen := make(map[string]struct{}, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, invalidShape(key)
			}
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			values = append(values, s)
		}
		return domain.MultiSelect{Values: values}, nil

	case map[string]any:
		var r domain.Range
		for bound, val := range v {
			var target **float64
			switch bound {
			case "min":
				target = &r.Min
			case "max":
				target = &r.Max
			default:
				return nil, invalidShape(key)
			}
			if val == nil {
				continue
			}
			num, ok := val.(json.Number)
			if !ok {
				return nil, invalidShape(key)
			}
			f, err := num.Float64()
			if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
				return nil, invalidShape(key)
			}
			*target = &f
		}
		if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
			return nil, domain.NewValidationError(ParamFilters+"."+key, "range min must not exceed max")
		}
		return r, nil

	case bool:
		return domain.Toggle{Value: v}, nil

	default:
		return nil, invalidShape(key)
	}
}

func invalidShape(key string) error {
	return domain.NewValidationError(ParamFilters+"."+key,
		"invalid filter shape: expected string array, {min,max} object or boolean")
}

func parsePrice(q url.Values, key string) (*float64, error) {
	v, ok := lookup(q, key)
	if !ok {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, domain.NewValidationError(key, "must be a number")
	}
	if f < 0 {
		return nil, domain.NewValidationError(key, "must not be negative")
	}
	return &f, nil
}

func parseStockStatus(v string) (string, error) {
	for _, s := range []domain.StockStatus{domain.StockInStock, domain.StockLowStock, domain.StockOutOfStock} {
		if strings.EqualFold(v, string(s)) {
			return string(s), nil
		}
	}
	return "", domain.NewValidationError(ParamStockStatus, "must be one of %q, %q, %q",
		domain.StockInStock, domain.StockLowStock, domain.StockOutOfStock)
}

// lookup 返回去除空白后的首个取值；空值视为未提供
func lookup(q url.Values, key string) (string, bool) {
	v := strings.TrimSpace(q.Get(key))
	return v, v != ""
}

// Describe 生成用于日志的简短描述
func Describe(spec *domain.FilterSpec) string {
	return fmt.Sprintf("page=%d page_size=%d sort=%s:%s attrs=%d",
		spec.Page, spec.PageSize, spec.SortBy, spec.SortOrder, len(spec.AttributeFilters))
}
