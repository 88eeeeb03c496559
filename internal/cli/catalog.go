package cli

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MorseWayne/catalog_shop/internal/client"
)

// productsOptions products 命令的过滤参数
type productsOptions struct {
	category string
	brand    string
	stock    string
	minPrice string
	maxPrice string
	sort     string
	page     int
	pageSize int
	selects  []string
	ranges   []string
	toggles  []string
}

// NewProductsCommand 列出商品
func NewProductsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &productsOptions{}

	cmd := &cobra.Command{
		Use:   "products",
		Short: "List products matching the given filters",
		Example: `  catalogctl products --category 1 --select color=Red --select color=Blue --range rating=4: --sort price_asc
  catalogctl products --brand acme --min-price 500 --max-price 2000 --toggle skin_friendly`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := opts.state()
			if err != nil {
				return err
			}
			c, err := rootOpts.client()
			if err != nil {
				return err
			}
			session := client.NewListingSession(c, state)
			result, err := session.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			return rootOpts.output(cmd).Products(result)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.category, "category", "", "category id")
	f.StringVar(&opts.brand, "brand", "", "brand (case-insensitive substring)")
	f.StringVar(&opts.stock, "stock", "", `stock status, e.g. "In Stock"`)
	f.StringVar(&opts.minPrice, "min-price", "", "minimum price")
	f.StringVar(&opts.maxPrice, "max-price", "", "maximum price")
	f.StringVar(&opts.sort, "sort", "", "sort: price_asc, price_desc, title_asc, title_desc, newest, discount_desc")
	f.IntVar(&opts.page, "page", 1, "page number")
	f.IntVar(&opts.pageSize, "page-size", 0, "page size (server default when 0)")
	f.StringArrayVar(&opts.selects, "select", nil, "multi-select attribute value name=value (repeatable)")
	f.StringArrayVar(&opts.ranges, "range", nil, "numeric attribute range name=min:max, either side may be empty (repeatable)")
	f.StringArrayVar(&opts.toggles, "toggle", nil, "boolean attribute that must be true (repeatable)")

	return cmd
}

// state 将命令行参数转为控件状态
func (o *productsOptions) state() (client.FilterState, error) {
	sort := client.SortChoice(o.sort)
	if !slices.Contains(client.SortChoices, sort) {
		return client.FilterState{}, fmt.Errorf("invalid sort %q", o.sort)
	}

	s := client.FilterState{}.
		WithCategory(o.category).
		WithBrand(o.brand).
		WithStockStatus(o.stock).
		WithPriceRange(o.minPrice, o.maxPrice).
		WithSort(sort)

	selected := map[string][]string{}
	var order []string
	for _, raw := range o.selects {
		name, value, ok := strings.Cut(raw, "=")
		if !ok || name == "" || value == "" {
			return client.FilterState{}, fmt.Errorf("invalid --select %q: expected name=value", raw)
		}
		if _, seen := selected[name]; !seen {
			order = append(order, name)
		}
		selected[name] = append(selected[name], value)
	}
	for _, name := range order {
		s = s.WithSelection(name, selected[name]...)
	}

	for _, raw := range o.ranges {
		name, bounds, ok := strings.Cut(raw, "=")
		lo, hi, okBounds := strings.Cut(bounds, ":")
		if !ok || !okBounds || name == "" {
			return client.FilterState{}, fmt.Errorf("invalid --range %q: expected name=min:max", raw)
		}
		s = s.WithRange(name, lo, hi)
	}

	for _, name := range o.toggles {
		if name == "" {
			return client.FilterState{}, fmt.Errorf("invalid --toggle: attribute name is empty")
		}
		s = s.WithToggle(name, true)
	}

	if o.page > 1 {
		s = s.WithPage(o.page)
	}
	if o.pageSize > 0 {
		s.PageSize = o.pageSize
	}
	return s, nil
}

// NewProductCommand 查看单个商品
func NewProductCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "product <product_id>",
		Short: "Show a product with its attributes and images",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := rootOpts.client()
			if err != nil {
				return err
			}
			p, err := c.GetProduct(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return rootOpts.output(cmd).Product(p)
		},
	}
}

// NewCategoriesCommand 列出分类
func NewCategoriesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := rootOpts.client()
			if err != nil {
				return err
			}
			categories, err := c.ListCategories(cmd.Context())
			if err != nil {
				return err
			}
			return rootOpts.output(cmd).Categories(categories)
		},
	}
}

// NewFiltersCommand 查看分类的过滤项
func NewFiltersCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "filters <category_id>",
		Short: "Show the filters available for a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			categoryID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || categoryID < 1 {
				return fmt.Errorf("invalid category id %q", args[0])
			}
			c, err := rootOpts.client()
			if err != nil {
				return err
			}
			filters, err := c.GetFilters(cmd.Context(), categoryID)
			if err != nil {
				return err
			}
			return rootOpts.output(cmd).Filters(filters)
		},
	}
}
