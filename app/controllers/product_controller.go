package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/sampleapp/app/models"
	"github.com/shashiranjanraj/sampleapp/app/repositories"
	"github.com/shashiranjanraj/sampleapp/pkg/fault"
	"github.com/shashiranjanraj/sampleapp/pkg/middleware"
	"github.com/shashiranjanraj/sampleapp/pkg/response"
	"github.com/shashiranjanraj/sampleapp/pkg/validate"
)

// URLBuilder resolves a named route to a path.
type URLBuilder interface {
	URL(name string, params map[string]string) (string, error)
}

type ProductController struct {
	products *repositories.ProductRepository
	urls     URLBuilder
}

func NewProductController(products *repositories.ProductRepository, urls URLBuilder) *ProductController {
	return &ProductController{products: products, urls: urls}
}

func (c *ProductController) Index(w http.ResponseWriter, r *http.Request) {
	products, err := c.products.All(r.Context())
	if err != nil {
		fault.Pass(w, r, err)
		return
	}
	response.Success(w, products)
}

func (c *ProductController) Show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		fault.Pass(w, r, fault.BadRequest("Invalid product id"))
		return
	}

	product, err := c.products.Find(r.Context(), uint(id))
	if errors.Is(err, repositories.ErrNotFound) {
		fault.Pass(w, r, fault.NotFound("Product not found"))
		return
	}
	if err != nil {
		fault.Pass(w, r, err)
		return
	}
	response.Success(w, product)
}

type productInput struct {
	Name        string  `json:"name"        validate:"required,max=255"`
	Description string  `json:"description" validate:"max=2000"`
	Price       float64 `json:"price"       validate:"gte=0"`
	Stock       int     `json:"stock"       validate:"gte=0"`
	SKU         string  `json:"sku"         validate:"required,max=100"`
}

func (c *ProductController) Store(w http.ResponseWriter, r *http.Request) {
	var in productInput
	if err := middleware.DecodeJSON(r, &in); err != nil {
		fault.Pass(w, r, err)
		return
	}
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		fault.Pass(w, r, fault.Validation(errs))
		return
	}

	product := models.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		SKU:         in.SKU,
	}
	if err := c.products.Create(r.Context(), &product); err != nil {
		fault.Pass(w, r, err)
		return
	}
	if c.urls != nil {
		if loc, err := c.urls.URL("products.show", map[string]string{"id": strconv.FormatUint(uint64(product.ID), 10)}); err == nil {
			w.Header().Set("Location", loc)
		}
	}
	response.Created(w, product)
}
