package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	r "github.com/Shray90/YalaCarves-sub001/internal/repository"
)

type ProductHandler struct {
	products r.ProductsRepo
}

func NewProductHandler(products r.ProductsRepo) *ProductHandler {
	return &ProductHandler{products: products}
}

type ProductResponse struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	OriginalPrice float64 `json:"original_price"`
	CategoryID    int64   `json:"category_id"`
	Artisan       string  `json:"artisan"`
	Image         string  `json:"image"`
	Stock         int     `json:"stock"`
}

type ProductsResponse struct {
	Products []ProductResponse `json:"products"`
}

type CategoryResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// GET /api/v1/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	res, err := h.products.ListProducts(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	products := make([]ProductResponse, len(res))
	for i, p := range res {
		products[i] = ProductResponse{
			ID:            p.ID,
			Name:          p.Name,
			Description:   p.Description,
			Price:         p.Price,
			OriginalPrice: p.OriginalPrice,
			CategoryID:    p.CategoryID,
			Artisan:       p.Artisan,
			Image:         p.Image,
			Stock:         p.Stock,
		}
	}

	respondJSON(w, http.StatusOK, &ProductsResponse{Products: products})
}

// GET /api/v1/products/{product_id}
func (h *ProductHandler) Get(w http.ResponseWriter, req *http.Request) {
	productIDStr := chi.URLParam(req, "product_id")
	productID, err := strconv.ParseInt(productIDStr, 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	p, err := h.products.GetProduct(req.Context(), productID)
	if err != nil {
		if err == r.ErrProductNotFound {
			respondError(w, http.StatusNotFound, "not_found", "product not found")
			return
		}
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		CategoryID:    p.CategoryID,
		Artisan:       p.Artisan,
		Image:         p.Image,
		Stock:         p.Stock,
	})
}

// GET /api/v1/categories
func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	res, err := h.products.ListCategories(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	categories := make([]CategoryResponse, len(res))
	for i, c := range res {
		categories[i] = CategoryResponse{ID: c.ID, Name: c.Name, Description: c.Description}
	}

	respondJSON(w, http.StatusOK, categories)
}
