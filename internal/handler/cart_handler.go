package handler

import (
	"net/http"
	"strconv"

	"agroshop/internal/config"
	"agroshop/internal/middleware"
	"agroshop/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 端末を識別するヘッダ。フロントが初回アクセス時に発行して保持する。
const deviceIDHeader = "X-Device-ID"

// /cartのHTTP。guestでも使えるので認証はオプショナル。
type CartHandler struct {
	uc *usecase.CartService
}

// DI
func NewCartHandler(uc *usecase.CartService) *CartHandler {
	return &CartHandler{uc: uc}
}

type AddCartItemRequest struct {
	ProductID int64 `json:"product_id"`
	VariantID int64 `json:"variant_id"`
	Quantity  int64 `json:"quantity"`
}

type UpdateCartItemRequest struct {
	ProductID int64 `json:"product_id"`
	VariantID int64 `json:"variant_id"`
	Quantity  int64 `json:"quantity"`
}

// /cart 配下を登録
func (h *CartHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/cart")
	g.Use(middleware.OptionalAuthJWT(cfg))

	g.GET("", h.getCart)
	g.POST("/items", h.addItem)
	g.PATCH("/items", h.updateItem)
	g.DELETE("/items/:product_id/:variant_id", h.removeItem)
	g.DELETE("", h.clear)
}

func (h *CartHandler) getCart(c echo.Context) error {
	deviceID := c.Request().Header.Get(deviceIDHeader)
	userID, _ := getUserIDFromContext(c)

	out, err := h.uc.GetCart(c.Request().Context(), deviceID, userID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) addItem(c echo.Context) error {
	deviceID := c.Request().Header.Get(deviceIDHeader)
	userID, _ := getUserIDFromContext(c)

	var req AddCartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.AddItem(c.Request().Context(), deviceID, userID, usecase.AddItemInput{
		ProductID: req.ProductID,
		VariantID: req.VariantID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) updateItem(c echo.Context) error {
	deviceID := c.Request().Header.Get(deviceIDHeader)
	userID, _ := getUserIDFromContext(c)

	var req UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.UpdateItem(c.Request().Context(), deviceID, userID, usecase.UpdateItemInput{
		ProductID: req.ProductID,
		VariantID: req.VariantID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) removeItem(c echo.Context) error {
	deviceID := c.Request().Header.Get(deviceIDHeader)
	userID, _ := getUserIDFromContext(c)

	productID, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product_id"})
	}
	variantID, err := strconv.ParseInt(c.Param("variant_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid variant_id"})
	}

	out, err := h.uc.RemoveItem(c.Request().Context(), deviceID, userID, productID, variantID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) clear(c echo.Context) error {
	deviceID := c.Request().Header.Get(deviceIDHeader)
	userID, _ := getUserIDFromContext(c)

	out, err := h.uc.ClearCart(c.Request().Context(), deviceID, userID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func getUserIDFromContext(c echo.Context) (string, bool) {
	v := c.Get(middleware.CtxUserIDKey)
	if v == nil {
		return "", false
	}

	id, ok := v.(string)
	if !ok || id == "" {
		return "", false
	}

	return id, true
}
