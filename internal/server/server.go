package server

import (
	"net/http"

	"agroshop/internal/config"
	"agroshop/internal/handler"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// Handlers はルート登録に必要なハンドラ一式。
type Handlers struct {
	Auth    *handler.AuthHandler
	Product *handler.ProductHandler
	Cart    *handler.CartHandler
	Order   *handler.OrderHandler
}

// Start はechoを組み立ててサーバーを起動する。
func Start(cfg config.Config, h Handlers) error {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	//フロントのオリジンだけ許可
	origins := []string{"http://localhost:3000"}
	if cfg.FEURL != "" {
		origins = []string{cfg.FEURL}
	}
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization, "X-Device-ID", "X-Idempotency-Key"},
	}))

	RegisterRoutes(e, cfg, h)

	return e.Start(":" + cfg.Port)
}
