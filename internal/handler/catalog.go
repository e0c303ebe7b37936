package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/collab-shopping/internal/repository"
)

// CatalogHandler exposes read-only product browse endpoints.  These are
// public and cacheable: catalog records change rarely, unlike session
// snapshots which must always be served fresh.
type CatalogHandler struct {
	Products *repository.ProductRepo
}

// NewCatalogHandler constructs a CatalogHandler and panics if the
// repository is nil.
func NewCatalogHandler(products *repository.ProductRepo) *CatalogHandler {
	if products == nil {
		panic("nil repository passed to NewCatalogHandler")
	}
	return &CatalogHandler{Products: products}
}

// GetProduct handles GET /v1/products/:id.  It returns the product
// snapshot or 404 when the id is unknown.
func (h *CatalogHandler) GetProduct(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}
	p, err := h.Products.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": p})
}

// ListProducts handles GET /v1/products.  Supports ?limit= and ?offset=
// query parameters; invalid values fall back to defaults.
func (h *CatalogHandler) ListProducts(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	items, err := h.Products.List(c.Request().Context(), limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
