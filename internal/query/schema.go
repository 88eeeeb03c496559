package query

import (
	_ "embed"
	"errors"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const filtersSchemaURL = "filters.schema.json"

//go:embed filters.schema.json
var filtersSchemaJSON string

var filtersSchema = mustCompileFiltersSchema()

func mustCompileFiltersSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(filtersSchemaURL, strings.NewReader(filtersSchemaJSON)); err != nil {
		panic("query: add filters schema: " + err.Error())
	}
	schema, err := compiler.Compile(filtersSchemaURL)
	if err != nil {
		panic("query: compile filters schema: " + err.Error())
	}
	return schema
}

// offendingKey 从校验错误中找出第一个出错的顶层属性名；根节点本身不合法时返回空串
func offendingKey(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return ""
	}
	return firstInstanceKey(ve)
}

func firstInstanceKey(ve *jsonschema.ValidationError) string {
	if loc := strings.TrimPrefix(ve.InstanceLocation, "/"); loc != "" {
		key, _, _ := strings.Cut(loc, "/")
		return unescapePointer(key)
	}
	for _, cause := range ve.Causes {
		if key := firstInstanceKey(cause); key != "" {
			return key
		}
	}
	return ""
}

// unescapePointer 还原 JSON Pointer 中的转义（~1 → /, ~0 → ~）
func unescapePointer(s string) string {
	s = strings.ReplaceAll(s, "~1", "/")
	return strings.ReplaceAll(s, "~0", "~")
}
