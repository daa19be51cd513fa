package server

import (
	"net/http"

	"agroshop/internal/config"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, cfg config.Config, h Handlers) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	h.Auth.RegisterRoutes(e)
	h.Product.RegisterRoutes(e)
	h.Cart.RegisterRoutes(e, cfg)
	h.Order.RegisterRoutes(e, cfg)
}
