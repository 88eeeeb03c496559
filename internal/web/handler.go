package web

import (
	"errors"
	"html/template"
	"net/http"
	"slices"
	"strconv"

	"go.uber.org/zap"

	"github.com/MorseWayne/catalog_shop/internal/client"
	"github.com/MorseWayne/catalog_shop/internal/domain"
	"github.com/MorseWayne/catalog_shop/internal/middleware"
	"github.com/MorseWayne/catalog_shop/internal/query"
	"github.com/MorseWayne/catalog_shop/internal/service"
)

// Handler 页面处理器
type Handler struct {
	catalog service.CatalogService
	filters service.FilterService
	logger  *zap.Logger
	tmpl    *template.Template
}

// NewHandler 创建页面处理器并解析内嵌模板
func NewHandler(catalog service.CatalogService, filters service.FilterService, logger *zap.Logger) (*Handler, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	return &Handler{catalog: catalog, filters: filters, logger: logger, tmpl: tmpl}, nil
}

type optionView struct {
	Value   string
	Label   string
	Count   int64
	Checked bool
}

type boundsView struct {
	Min *float64
	Max *float64
}

// controlView 一个动态属性控件
type controlView struct {
	Name         string
	DisplayName  string
	Type         domain.FilterType
	Options      []optionView
	HasMore      bool
	TotalOptions int
	Bounds       boundsView
	Min          string
	Max          string
	On           bool
}

type sortView struct {
	Value    string
	Label    string
	Selected bool
}

type pagerView struct {
	Page       int
	TotalPages int
	PrevURL    string
	NextURL    string
}

type listingPage struct {
	Title         string
	Categories    []*domain.Category
	StockStatuses []domain.StockStatus
	State         client.FilterState
	Controls      []controlView
	SortChoices   []sortView
	Result        *domain.PagedResult
	Pager         pagerView
	Error         string
}

type productPage struct {
	Title   string
	Product *domain.Product
}

type messagePage struct {
	Title   string
	Message string
}

// Listing 商品列表页
// GET /
// 控件状态 -> 编码 -> 解码 -> 查询，与 JSON API 走同一条校验路径
func (h *Handler) Listing(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())
	ctx := r.Context()
	q := r.URL.Query()

	page := &listingPage{
		Title:         "Products",
		StockStatuses: []domain.StockStatus{domain.StockInStock, domain.StockLowStock, domain.StockOutOfStock},
	}

	categories, err := h.catalog.ListCategories(ctx)
	if err != nil {
		h.logger.Error("list categories failed", zap.String("request_id", reqID), zap.Error(err))
	}
	page.Categories = categories

	descriptors := h.descriptors(r, q.Get(client.ControlCategoryID))
	state := client.ReadControls(q, descriptors)
	page.State = state
	page.Controls = buildControls(descriptors, state)
	page.SortChoices = buildSortChoices(state.Sort)

	status := http.StatusOK
	spec, err := query.DecodeFilterSpec(client.Encode(state))
	if err == nil {
		page.Result, err = h.catalog.ListProducts(ctx, spec)
	}

	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		h.logger.Warn("listing rejected", zap.String("request_id", reqID), zap.Error(err))
		status = http.StatusBadRequest
		page.Error = "Some filters are invalid: " + ve.Error()
	case err != nil:
		h.logger.Error("listing failed", zap.String("request_id", reqID), zap.Error(err))
		status = http.StatusInternalServerError
		page.Error = "We could not load products right now. Please try again."
	default:
		page.Pager = buildPager(state, page.Result)
	}

	h.render(w, status, "listing", page)
}

// descriptors 当前分类的过滤描述；分类未选、不存在或查询失败时返回空
func (h *Handler) descriptors(r *http.Request, rawCategory string) []domain.FilterDescriptor {
	if rawCategory == "" {
		return nil
	}
	categoryID, err := strconv.ParseInt(rawCategory, 10, 64)
	if err != nil || categoryID < 1 {
		return nil
	}
	resp, err := h.filters.GetFilters(r.Context(), categoryID)
	if err != nil {
		if !errors.Is(err, domain.ErrCategoryNotFound) {
			h.logger.Warn("load filters failed",
				zap.String("request_id", middleware.RequestIDFromContext(r.Context())),
				zap.Int64("category_id", categoryID),
				zap.Error(err),
			)
		}
		return nil
	}
	return resp.Filters
}

func buildControls(descriptors []domain.FilterDescriptor, state client.FilterState) []controlView {
	controls := make([]controlView, 0, len(descriptors))
	for _, d := range descriptors {
		c := controlView{
			Name:         client.AttributeControl(d.AttributeName),
			DisplayName:  d.DisplayName,
			Type:         d.FilterType,
			HasMore:      d.HasMoreOptions,
			TotalOptions: d.TotalOptions,
			Bounds:       boundsView{Min: d.MinValue, Max: d.MaxValue},
		}
		switch d.FilterType {
		case domain.FilterMultiSelect:
			selected := state.MultiSelect[d.AttributeName]
			for _, o := range d.Options {
				c.Options = append(c.Options, optionView{
					Value:   o.Value,
					Label:   o.Label,
					Count:   o.Count,
					Checked: slices.Contains(selected, o.Value),
				})
			}
		case domain.FilterRange:
			in := state.Ranges[d.AttributeName]
			c.Min, c.Max = in.Min, in.Max
		case domain.FilterToggle:
			c.On = state.Toggles[d.AttributeName]
		}
		controls = append(controls, c)
	}
	return controls
}

func buildSortChoices(current client.SortChoice) []sortView {
	out := make([]sortView, 0, len(client.SortChoices))
	for _, c := range client.SortChoices {
		out = append(out, sortView{Value: string(c), Label: c.Label(), Selected: c == current})
	}
	return out
}

// buildPager 翻页链接保留全部控件状态
func buildPager(state client.FilterState, result *domain.PagedResult) pagerView {
	p := pagerView{Page: result.Page, TotalPages: result.TotalPages()}
	if p.Page > 1 {
		p.PrevURL = pageURL(state.WithPage(p.Page - 1))
	}
	if p.Page < p.TotalPages {
		p.NextURL = pageURL(state.WithPage(p.Page + 1))
	}
	return p
}

func pageURL(state client.FilterState) string {
	q := state.Controls()
	if len(q) == 0 {
		return "/"
	}
	return "/?" + q.Encode()
}

// Product 商品详情页
// GET /product/{product_id}
func (h *Handler) Product(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())
	id := r.PathValue("product_id")

	product, err := h.catalog.GetProduct(r.Context(), id)
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		h.render(w, http.StatusNotFound, "notfound", &messagePage{
			Title:   "Product not found",
			Message: "We could not find a product with id " + id + ".",
		})
	case err != nil:
		h.logger.Error("product page failed", zap.String("request_id", reqID), zap.String("product_id", id), zap.Error(err))
		h.render(w, http.StatusInternalServerError, "error", &messagePage{
			Title:   "Something went wrong",
			Message: "We could not load this product. Please try again.",
		})
	default:
		h.render(w, http.StatusOK, "product", &productPage{Title: product.Title, Product: product})
	}
}
