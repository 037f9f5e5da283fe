package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/crucial707/product-catalog/internal/catalog"
	"github.com/crucial707/product-catalog/internal/common"
	"github.com/crucial707/product-catalog/internal/metrics"
	"github.com/crucial707/product-catalog/internal/models"
	"github.com/crucial707/product-catalog/internal/session"
)

// Products is the part of the catalog service the product pages use.
type Products interface {
	List(ctx context.Context, offset, limit int) ([]models.Product, error)
	Search(ctx context.Context, term string, filters, sorts map[string]string) ([]models.Product, error)
	GetProduct(ctx context.Context, id int) (*models.Product, error)
	CreateProduct(ctx context.Context, sess session.Session, f models.ProductFields) (*models.Product, error)
	UpdateProduct(ctx context.Context, productID int, sess session.Session, patch models.ProductFields) (*models.Product, error)
}

// ========================
// HANDLER STRUCT
// ========================

type ProductHandler struct {
	Products Products
}

// sortKeys are offered in the listing's sort control.
var sortKeys = []string{"name", "ingredients", "area", "date_added"}

// searchParams echoes the search form back into the page.
type searchParams struct {
	Query     string
	UserID    string
	Area      string
	Region    string
	OrderBy   string
	Direction string
}

type productsPage struct {
	page
	Products []models.Product
	Areas    []string
	Regions  []string
	SortKeys []string
	Search   searchParams
}

type productForm struct {
	Name        string `validate:"required,max=255"`
	Description string `validate:"max=5000"`
	Area        string `validate:"max=255"`
	Regions     string `validate:"max=255"`
	Ingredients string `validate:"max=5000"`
	DateAdded   time.Time
	UserID      int
}

func (f productForm) fields() models.ProductFields {
	return models.ProductFields{
		Name:        f.Name,
		Description: f.Description,
		Area:        f.Area,
		Regions:     f.Regions,
		Ingredients: f.Ingredients,
		DateAdded:   f.DateAdded,
		UserID:      f.UserID,
	}
}

type productFormPage struct {
	page
	ProductID int
	Form      productForm
}

// currentPage fills the layout data from the request's session.
func currentPage(r *http.Request) page {
	id, ok := session.FromContext(r.Context()).Identity()
	if !ok {
		return page{}
	}
	return page{CurrentUser: &models.User{ID: id.UserID, Username: id.Username}}
}

func (h *ProductHandler) renderList(w http.ResponseWriter, r *http.Request, products []models.Product, params searchParams) {
	areas, regions := catalog.Facets(products)
	renderTemplate(w, http.StatusOK, "products.html", productsPage{
		page:     currentPage(r),
		Products: products,
		Areas:    areas,
		Regions:  regions,
		SortKeys: sortKeys,
		Search:   params,
	})
}

// ========================
// LIST PRODUCTS
// ========================

func (h *ProductHandler) ReadProducts(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	products, err := h.Products.List(r.Context(), offset, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.renderList(w, r, products, searchParams{Direction: "asc"})
}

// ========================
// SEARCH PRODUCTS
// ========================

// SearchProducts filters by query, user_id, area and region. Sorting applies
// only when both order_by and direction are given.
func (h *ProductHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := searchParams{
		Query:     q.Get("query"),
		UserID:    q.Get("user_id"),
		Area:      q.Get("area"),
		Region:    q.Get("region"),
		OrderBy:   q.Get("order_by"),
		Direction: q.Get("direction"),
	}

	filters := map[string]string{}
	if params.Area != "" {
		filters["area"] = params.Area
	}
	if params.Region != "" {
		filters["region"] = params.Region
	}
	if params.UserID != "" {
		filters["user_id"] = params.UserID
	}
	sorts := map[string]string{}
	if params.OrderBy != "" && params.Direction != "" {
		sorts[params.OrderBy] = params.Direction
	}

	products, err := h.Products.Search(r.Context(), params.Query, filters, sorts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.renderList(w, r, products, params)
}

// ========================
// CREATE PRODUCT
// ========================

func (h *ProductHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, http.StatusOK, "create_form.html", productFormPage{page: currentPage(r)})
}

func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	form, err := readProductForm(r, false)
	if err != nil {
		metrics.IncOperation("create_product", resultLabel(err))
		h.renderFormError(w, r, "create_form.html", 0, form, err)
		return
	}

	_, err = h.Products.CreateProduct(r.Context(), session.FromContext(r.Context()), form.fields())
	metrics.IncOperation("create_product", resultLabel(err))
	if err != nil {
		h.renderFormError(w, r, "create_form.html", 0, form, err)
		return
	}
	http.Redirect(w, r, "/products/read", http.StatusSeeOther)
}

// ========================
// EDIT PRODUCT
// ========================

func (h *ProductHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.Products.GetProduct(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	f := p.Fields()
	renderTemplate(w, http.StatusOK, "edit_form.html", productFormPage{
		page:      currentPage(r),
		ProductID: p.ID,
		Form: productForm{
			Name:        f.Name,
			Description: f.Description,
			Area:        f.Area,
			Regions:     f.Regions,
			Ingredients: f.Ingredients,
			DateAdded:   f.DateAdded,
			UserID:      f.UserID,
		},
	})
}

// UpdateProduct replaces the product with the submitted form. The form must
// carry every field, date_added and user_id included.
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	form, err := readProductForm(r, true)
	if err != nil {
		// Ownership is decided before the form's content.
		if gateErr := h.checkOwner(r, id); gateErr != nil {
			err = gateErr
		}
		metrics.IncOperation("update_product", resultLabel(err))
		h.renderFormError(w, r, "edit_form.html", id, form, err)
		return
	}

	_, err = h.Products.UpdateProduct(r.Context(), id, session.FromContext(r.Context()), form.fields())
	metrics.IncOperation("update_product", resultLabel(err))
	if err != nil {
		h.renderFormError(w, r, "edit_form.html", id, form, err)
		return
	}
	http.Redirect(w, r, "/products/read", http.StatusSeeOther)
}

// checkOwner reports common.ErrNotFound or common.ErrForbidden when the
// session may not edit product id.
func (h *ProductHandler) checkOwner(r *http.Request, id int) error {
	p, err := h.Products.GetProduct(r.Context(), id)
	if err != nil {
		return err
	}
	ident, ok := session.FromContext(r.Context()).Identity()
	if !ok {
		return common.ErrUnauthorized
	}
	if p.UserID != ident.UserID {
		return common.ErrForbidden
	}
	return nil
}

// renderFormError re-renders a product form for input errors and falls back
// to writeError for everything else.
func (h *ProductHandler) renderFormError(w http.ResponseWriter, r *http.Request, name string, id int, form productForm, err error) {
	if StatusFor(err) != http.StatusBadRequest {
		writeError(w, r, err)
		return
	}
	p := productFormPage{page: currentPage(r), ProductID: id, Form: form}
	p.Error = "Adjust your data: name is required and every field must fit its limit."
	renderTemplate(w, http.StatusBadRequest, name, p)
}

func productID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return 0, common.ErrNotFound
	}
	return id, nil
}

// readProductForm parses and validates a product form. full requires the
// date_added and user_id fields of the edit form.
func readProductForm(r *http.Request, full bool) (productForm, error) {
	if err := r.ParseForm(); err != nil {
		return productForm{}, common.ErrInvalid
	}
	f := productForm{
		Name:        strings.TrimSpace(r.PostFormValue("name")),
		Description: r.PostFormValue("description"),
		Area:        strings.TrimSpace(r.PostFormValue("area")),
		Regions:     strings.TrimSpace(r.PostFormValue("regions")),
		Ingredients: r.PostFormValue("ingredients"),
	}
	if err := validate.Struct(f); err != nil {
		return f, common.ErrInvalid
	}
	if !full {
		return f, nil
	}

	added, err := parseFormTime(r.PostFormValue("date_added"))
	if err != nil {
		return f, common.ErrInvalid
	}
	f.DateAdded = added
	uid, err := strconv.Atoi(r.PostFormValue("user_id"))
	if err != nil || uid <= 0 {
		return f, common.ErrInvalid
	}
	f.UserID = uid
	return f, nil
}

var formTimeLayouts = []string{time.RFC3339Nano, inputTimeLayout, "2006-01-02T15:04", "2006-01-02 15:04:05"}

// parseFormTime accepts RFC 3339 and the datetime-local formats. Values
// without a zone are UTC.
func parseFormTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var err error
	for _, layout := range formTimeLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}
