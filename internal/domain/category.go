package domain

// Category 商品分类
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	ParentID    *int64 `json:"parent_id,omitempty"`
	Description string `json:"description,omitempty"`
}

// AttributeDataType 属性类型登记表中的数据类型
type AttributeDataType string

const (
	AttributeString  AttributeDataType = "string"
	AttributeNumber  AttributeDataType = "number"
	AttributeBoolean AttributeDataType = "boolean"
	AttributeEnum    AttributeDataType = "enum"
)

// Valid 判断是否为登记表支持的类型
func (t AttributeDataType) Valid() bool {
	switch t {
	case AttributeString, AttributeNumber, AttributeBoolean, AttributeEnum:
		return true
	}
	return false
}

// Attribute 分类下可过滤的属性定义
type Attribute struct {
	ID           int64             `json:"attribute_id"`
	Name         string            `json:"name"`
	DataType     AttributeDataType `json:"data_type"`
	DisplayOrder int               `json:"display_order"`
}
