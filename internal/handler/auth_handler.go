package handler

import (
	"net/http"

	auth "agroshop/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	registerUC *auth.RegisterUserUsecase // 会員登録usecase
	loginUC    *auth.LoginUsecase        // ログインusecase
}

// DIコンストラクタ
func NewAuthHandler(
	registerUC *auth.RegisterUserUsecase,
	loginUC *auth.LoginUsecase,
) *AuthHandler {
	return &AuthHandler{
		registerUC: registerUC,
		loginUC:    loginUC,
	}
}

// /auth/register のリクエストボディ。
type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// /auth/login のリクエストボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// /auth 配下を登録
func (h *AuthHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/auth/register", h.register)
	e.POST("/auth/login", h.login)
}

// registerはPOST /auth/registerのハンドラ
func (h *AuthHandler) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "VALIDATION_ERROR"})
	}

	out, err := h.registerUC.Execute(c.Request().Context(), auth.RegisterUserInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch err {
		case auth.ErrInvalidEmailFormat, auth.ErrPasswordTooShort, auth.ErrWeakPassword:
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "VALIDATION_ERROR"})
		case auth.ErrEmailAlreadyExists:
			return c.JSON(http.StatusConflict, ErrorResponse{Error: "CONFLICT"})
		default:
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "INTERNAL"})
		}
	}

	return c.JSON(http.StatusOK, out)
}

// loginはPOST /auth/login のハンドラ。
// サインイン後、フロントは同じ端末IDで /cart を叩き直し、
// サーバー側でローカルカートとリモートカートが統合される。
func (h *AuthHandler) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "VALIDATION_ERROR"})
	}

	out, err := h.loginUC.Execute(c.Request().Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch err {
		case auth.ErrInvalidCredentials:
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "UNAUTHORIZED"})
		case auth.ErrUserInactive:
			return c.JSON(http.StatusForbidden, ErrorResponse{Error: "FORBIDDEN"})
		default:
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "INTERNAL"})
		}
	}

	//JSONレスポンス（user + token）
	return c.JSON(http.StatusOK, out)
}
