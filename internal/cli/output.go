package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/MorseWayne/catalog_shop/internal/domain"
	"github.com/MorseWayne/catalog_shop/internal/importer"
)

// Output 按格式输出命令结果
type Output struct {
	Format string
	Writer io.Writer
}

// JSON 以缩进 JSON 输出
func (o *Output) JSON(v any) error {
	enc := json.NewEncoder(o.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (o *Output) isJSON() bool { return o.Format == "json" }

func (o *Output) table(header string, rows func(w io.Writer)) error {
	tw := tabwriter.NewWriter(o.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	rows(tw)
	return tw.Flush()
}

// Products 商品列表
func (o *Output) Products(result *domain.PagedResult) error {
	if o.isJSON() {
		return o.JSON(result)
	}
	if len(result.Products) == 0 {
		_, err := fmt.Fprintln(o.Writer, "No products match the current filters.")
		return err
	}
	err := o.table("ID\tTITLE\tBRAND\tPRICE\tSTOCK", func(w io.Writer) {
		for _, p := range result.Products {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				p.ProductID, p.Title, p.Brand, domain.FormatPrice(p.Price, p.MRP, p.Currency), p.StockStatus)
		}
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(o.Writer, "\nPage %d of %d (%d products)\n", result.Page, result.TotalPages(), result.Total)
	return err
}

// Product 商品详情
func (o *Output) Product(p *domain.Product) error {
	if o.isJSON() {
		return o.JSON(p)
	}
	fmt.Fprintf(o.Writer, "%s  %s\n", p.ProductID, p.Title)
	if p.Brand != "" {
		fmt.Fprintf(o.Writer, "Brand:  %s\n", p.Brand)
	}
	fmt.Fprintf(o.Writer, "Price:  %s\n", domain.FormatPrice(p.Price, p.MRP, p.Currency))
	if p.StockStatus != "" {
		fmt.Fprintf(o.Writer, "Stock:  %s\n", p.StockStatus)
	}
	if len(p.Attributes) > 0 {
		fmt.Fprintln(o.Writer)
		if err := o.table("ATTRIBUTE\tVALUE", func(w io.Writer) {
			for _, a := range p.Attributes {
				fmt.Fprintf(w, "%s\t%s\n", a.AttributeName, a.Value)
			}
		}); err != nil {
			return err
		}
	}
	for _, img := range p.Images {
		marker := ""
		if img.IsPrimary {
			marker = " (primary)"
		}
		fmt.Fprintf(o.Writer, "Image:  %s%s\n", img.ImageURL, marker)
	}
	return nil
}

// Categories 分类列表
func (o *Output) Categories(categories []*domain.Category) error {
	if o.isJSON() {
		return o.JSON(categories)
	}
	return o.table("ID\tNAME", func(w io.Writer) {
		for _, c := range categories {
			fmt.Fprintf(w, "%d\t%s\n", c.ID, c.Name)
		}
	})
}

// Filters 分类下的过滤项
func (o *Output) Filters(resp *domain.FiltersResponse) error {
	if o.isJSON() {
		return o.JSON(resp)
	}
	if len(resp.Filters) == 0 {
		_, err := fmt.Fprintln(o.Writer, "No filters for this category.")
		return err
	}
	return o.table("ATTRIBUTE\tTYPE\tVALUES", func(w io.Writer) {
		for _, d := range resp.Filters {
			fmt.Fprintf(w, "%s\t%s\t%s\n", d.AttributeName, d.FilterType, describeValues(d))
		}
	})
}

func describeValues(d domain.FilterDescriptor) string {
	switch d.FilterType {
	case domain.FilterMultiSelect:
		parts := make([]string, 0, len(d.Options))
		for _, opt := range d.Options {
			parts = append(parts, fmt.Sprintf("%s (%d)", opt.Label, opt.Count))
		}
		s := strings.Join(parts, ", ")
		if d.HasMoreOptions {
			s += fmt.Sprintf(" ... %d total", d.TotalOptions)
		}
		return s
	case domain.FilterRange:
		return bound(d.MinValue) + " to " + bound(d.MaxValue)
	default:
		return "on/off"
	}
}

func bound(v *float64) string {
	if v == nil {
		return "?"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// Reply 助手回复
func (o *Output) Reply(r *domain.SearchResponse) error {
	if o.isJSON() {
		return o.JSON(r)
	}
	if !r.Success {
		_, err := fmt.Fprintln(o.Writer, r.ErrorMessage)
		return err
	}
	if r.ResponseText != "" {
		fmt.Fprintln(o.Writer, r.ResponseText)
	}
	for _, group := range [][]domain.SearchProduct{r.Products, r.RecommendedProducts} {
		for _, p := range group {
			fmt.Fprintf(o.Writer, "  - %s  %s\n", p.ID, p.Title)
		}
	}
	if len(r.FollowUpQuestions) > 0 {
		fmt.Fprintln(o.Writer, "You could also ask:")
		for _, q := range r.FollowUpQuestions {
			fmt.Fprintf(o.Writer, "  * %s\n", q)
		}
	}
	return nil
}

// ImportStats 导入统计
func (o *Output) ImportStats(s *importer.Stats) error {
	if o.isJSON() {
		return o.JSON(s)
	}
	fmt.Fprintf(o.Writer, "Imported %d products (%d skipped, %d failed)\n", s.Products, s.Skipped, s.Failed)
	fmt.Fprintf(o.Writer, "Categories: %d  Attributes: %d  Values: %d  Options: %d  Images: %d\n",
		s.Categories, s.Attributes, s.Values, s.Options, s.Images)
	for _, e := range s.Errors {
		fmt.Fprintf(o.Writer, "  %s\n", e.Error())
	}
	return nil
}
