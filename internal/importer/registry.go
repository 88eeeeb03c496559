package importer

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MorseWayne/catalog_shop/internal/domain"
)

// Registry 属性类型登记表，对应 attributes.yaml：
//
//	attributes:
//	  color: enum
//	  rating: number
//	exclude:
//	  - embedding_text
type Registry struct {
	Attributes map[string]domain.AttributeDataType `yaml:"attributes"`
	Exclude    []string                            `yaml:"exclude"`
}

// DefaultRegistry 未提供登记表时使用：服装类目常见的枚举列
func DefaultRegistry() *Registry {
	r := &Registry{Attributes: map[string]domain.AttributeDataType{}, Exclude: []string{"embedding_text"}}
	for _, name := range []string{
		"age_group", "gender", "primary_fabric", "secondary_fabric", "transparency", "fabric_stretch",
		"fit_type", "length", "sleeves", "neckline", "closure_type", "hemline", "waist_type", "pattern",
		"embellishment", "color", "color_family", "surface_styling", "occasion", "lining", "weight",
		"safety_compliance", "size",
	} {
		r.Attributes[name] = domain.AttributeEnum
	}
	return r
}

// LoadRegistry 从 YAML 文件加载登记表
func LoadRegistry(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open attribute registry: %w", err)
	}
	defer f.Close()
	return ParseRegistry(f)
}

// ParseRegistry 解析 YAML 登记表；未知类型视为错误
func ParseRegistry(r io.Reader) (*Registry, error) {
	var reg Registry
	if err := yaml.NewDecoder(r).Decode(&reg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode attribute registry: %w", err)
	}
	normalized := make(map[string]domain.AttributeDataType, len(reg.Attributes))
	for name, t := range reg.Attributes {
		t = domain.AttributeDataType(strings.ToLower(strings.TrimSpace(string(t))))
		if !t.Valid() {
			return nil, fmt.Errorf("attribute %q: unknown data type %q", name, t)
		}
		normalized[normalizeColumn(name)] = t
	}
	reg.Attributes = normalized
	for i, name := range reg.Exclude {
		reg.Exclude[i] = normalizeColumn(name)
	}
	return &reg, nil
}

func (r *Registry) excluded(column string) bool {
	for _, name := range r.Exclude {
		if name == column {
			return true
		}
	}
	return false
}

// TypeOf 返回列的属性类型：登记表优先，否则按取值推断
func (r *Registry) TypeOf(column, value string) domain.AttributeDataType {
	if t, ok := r.Attributes[column]; ok {
		return t
	}
	return sniffType(value)
}

// sniffType 布尔词 ⇒ boolean，可解析为数字 ⇒ number，其余 ⇒ string。
// 0/1 按数字处理。
func sniffType(value string) domain.AttributeDataType {
	if _, ok := parseBool(value); ok {
		return domain.AttributeBoolean
	}
	if _, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
		return domain.AttributeNumber
	}
	return domain.AttributeString
}

func parseBool(value string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "yes":
		return true, true
	case "false", "no":
		return false, true
	}
	return false, false
}
