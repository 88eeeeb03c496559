package repo

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/MorseWayne/catalog_shop/internal/domain"
)

// likeEscape 是 LIKE 子句的转义字符；使用 '!' 以兼容 MySQL 与 SQLite 的字符串字面量规则
const likeEscape = "!"

// attributeExists 属性过滤子查询模板：按属性名关联登记表，%s 处追加值条件
const attributeExists = `EXISTS (
		SELECT 1 FROM attribute_values av
		JOIN attribute_master am ON am.attribute_id = av.attribute_id
		WHERE av.product_id = p.product_id AND am.name = ? AND %s)`

// queryBuilder 收集 WHERE 条件与占位参数，列表查询与计数查询共用同一份条件
type queryBuilder struct {
	conditions []string
	args       []any
}

func newQueryBuilder() *queryBuilder {
	return &queryBuilder{}
}

func (qb *queryBuilder) addCondition(condition string, args ...any) {
	qb.conditions = append(qb.conditions, condition)
	qb.args = append(qb.args, args...)
}

// addFloatRange 添加闭区间条件，nil 表示该侧不限
func (qb *queryBuilder) addFloatRange(column string, min, max *float64) {
	if min != nil {
		qb.addCondition(column+" >= ?", *min)
	}
	if max != nil {
		qb.addCondition(column+" <= ?", *max)
	}
}

// addAttributeFilter 将一个属性过滤值翻译为 EXISTS 子查询。
// 值按登记类型存放在不同列，条件按渲染后的取值比较：多选同时匹配字符串、数值与布尔列，
// 区间除数值列外还接受 textMatches 中已判定落在区间内的数字文本。
func (qb *queryBuilder) addAttributeFilter(name string, fv domain.FilterValue, textMatches []string) {
	switch v := fv.(type) {
	case domain.MultiSelect:
		args := []any{name}
		parts := []string{"av.value_string IN (" + placeholders(len(v.Values)) + ")"}
		for _, s := range v.Values {
			args = append(args, s)
		}

		var numbers []any
		var bools []any
		for _, s := range v.Values {
			if n, ok := canonicalNumber(s); ok {
				numbers = append(numbers, n)
			}
			switch s {
			case "true":
				bools = append(bools, true)
			case "false":
				bools = append(bools, false)
			}
		}
		if len(numbers) > 0 {
			parts = append(parts, "av.value_number IN ("+placeholders(len(numbers))+")")
			args = append(args, numbers...)
		}
		if len(bools) > 0 {
			parts = append(parts, "av.value_boolean IN ("+placeholders(len(bools))+")")
			args = append(args, bools...)
		}
		qb.addCondition(fmt.Sprintf(attributeExists, "("+strings.Join(parts, " OR ")+")"), args...)

	case domain.Range:
		cond := "av.value_number IS NOT NULL"
		args := []any{name}
		if v.Min != nil {
			cond += " AND av.value_number >= ?"
			args = append(args, *v.Min)
		}
		if v.Max != nil {
			cond += " AND av.value_number <= ?"
			args = append(args, *v.Max)
		}
		if len(textMatches) > 0 {
			cond = "(" + cond + ") OR av.value_string IN (" + placeholders(len(textMatches)) + ")"
			for _, s := range textMatches {
				args = append(args, s)
			}
		}
		qb.addCondition(fmt.Sprintf(attributeExists, "("+cond+")"), args...)

	case domain.Toggle:
		qb.addCondition(fmt.Sprintf(attributeExists, "av.value_boolean = ?"), name, v.Value)
	}
}

// canonicalNumber 仅当 s 恰为数值的最短渲染形式（与详情页一致）时返回该数值
func canonicalNumber(s string) (float64, bool) {
	n, ok := parseNumericText(s)
	if !ok || strconv.FormatFloat(n, 'f', -1, 64) != s {
		return 0, false
	}
	return n, true
}

// parseNumericText 解析以文本存储的有限数值
func parseNumericText(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// inRange 闭区间判断，nil 表示该侧不限
func inRange(n float64, r domain.Range) bool {
	return (r.Min == nil || n >= *r.Min) && (r.Max == nil || n <= *r.Max)
}

func (qb *queryBuilder) build() (string, []any) {
	if len(qb.conditions) == 0 {
		return "", qb.args
	}
	return "WHERE " + strings.Join(qb.conditions, " AND "), qb.args
}

// buildSpecWhere 将 FilterSpec 翻译为 WHERE 子句（products 别名为 p）。
// textMatches 按属性名给出区间过滤命中的数字文本取值，可为 nil。
func buildSpecWhere(spec *domain.FilterSpec, textMatches map[string][]string) (string, []any) {
	qb := newQueryBuilder()

	if spec.CategoryID != nil {
		qb.addCondition("p.category_id = ?", *spec.CategoryID)
	}
	if spec.Brand != nil {
		qb.addCondition("LOWER(p.brand) LIKE ? ESCAPE '"+likeEscape+"'", "%"+escapeLike(strings.ToLower(*spec.Brand))+"%")
	}
	if spec.StockStatus != nil {
		qb.addCondition("p.stock_status = ?", *spec.StockStatus)
	}
	qb.addFloatRange("p.price", spec.MinPrice, spec.MaxPrice)

	for _, name := range spec.AttributeNames() {
		fv := spec.AttributeFilters[name]
		if domain.IsEmpty(fv) {
			continue
		}
		qb.addAttributeFilter(name, fv, textMatches[name])
	}

	return qb.build()
}

// sortColumns 排序字段白名单
var sortColumns = map[domain.SortField]string{
	domain.SortByProductID:       "p.product_id",
	domain.SortByPrice:           "p.price",
	domain.SortByTitle:           "p.title",
	domain.SortByBrand:           "p.brand",
	domain.SortByDiscountPercent: "p.discount_percent",
}

// buildOrderClause 构建排序子句，始终以 product_id 升序作为次级键保证结果确定
func buildOrderClause(spec *domain.FilterSpec) string {
	column, ok := sortColumns[spec.SortBy]
	if !ok {
		column = sortColumns[domain.DefaultSortField]
	}
	direction := "ASC"
	if spec.SortOrder == domain.SortDesc {
		direction = "DESC"
	}
	if column == "p.product_id" {
		return "ORDER BY p.product_id " + direction
	}
	return "ORDER BY " + column + " " + direction + ", p.product_id ASC"
}

func escapeLike(s string) string {
	r := strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")
	return r.Replace(s)
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
