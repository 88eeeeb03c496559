// Package web 服务端渲染的商品列表页与详情页。
package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/MorseWayne/catalog_shop/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// funcs 模板函数
var funcs = template.FuncMap{
	"formatPrice":  domain.FormatPrice,
	"formatAmount": func(v float64, currency string) string { return domain.FormatPrice(v, nil, currency) },
	"formatNumber": formatNumber,
	"stockClass":   stockClass,
	"stockLabel":   stockLabel,
	"displayName":  displayName,
	"deref": func(v *float64) float64 {
		if v == nil {
			return 0
		}
		return *v
	},
}

func parseTemplates() (*template.Template, error) {
	return template.New("catalog").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}

// stockClass 库存徽标的样式类
func stockClass(s domain.StockStatus) string {
	switch s {
	case domain.StockInStock:
		return "in-stock"
	case domain.StockLowStock:
		return "low-stock"
	case domain.StockOutOfStock:
		return "out-of-stock"
	default:
		return "stock-unknown"
	}
}

func stockLabel(s domain.StockStatus) string {
	if s == "" {
		return "Availability unknown"
	}
	return string(s)
}

func formatNumber(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func displayName(name string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(name, "_", " "))
}

// render 先渲染到缓冲区，模板出错时不会输出半页内容
func (h *Handler) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Error("render template failed", zap.String("template", name), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
