package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/collab-shopping/internal/handler" // import the handlers that implement business logic
)

// RegisterRoutes registers routes that do not belong to a feature
// surface.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterCollab registers the collaborative session surface.  The whole
// engine is one action-dispatch endpoint plus a polling read alias:
// clients POST {action, ...} to /collab and poll GET /collab/:code for
// fresh snapshots between mutations.  Identity and rate-limit
// middleware are applied by the caller on the Echo instance so they
// also cover the read alias.
func RegisterCollab(e *echo.Echo, h *handler.CollabHandler) {
	// Single mutating dispatch endpoint; the action discriminator in the
	// body selects create/join/addItem/removeItem/vote/sendMessage/react/refresh.
	e.POST("/collab", h.Dispatch)
	// Polling read path.  Same snapshot as every mutating response.
	e.GET("/collab/:code", h.Refresh)
}

// RegisterCatalog registers unauthenticated catalog browse endpoints on the
// provided Echo instance.  The provided CatalogHandler returns sanitized
// read-only product data.  cacheMW is the Redis response cache; it wraps
// only these routes because catalog responses are safe to serve stale.
func RegisterCatalog(e *echo.Echo, p *handler.CatalogHandler, cacheMW echo.MiddlewareFunc) {
	// Expose a paginated list of products
	e.GET("/v1/products", p.ListProducts, cacheMW)
	// Product details by product id
	e.GET("/v1/products/:id", p.GetProduct, cacheMW)
}
