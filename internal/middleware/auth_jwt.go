package middleware

import (
	"errors"
	"net/http"
	"strings"

	"agroshop/internal/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey   = "user_id"   // string
	CtxUserRoleKey = "user_role" // string
)

// bearerAuth用のJWT検証ミドルウェア。
func AuthJWT(cfg config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, role, ok := parseBearer(c, cfg)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//contextへ保存
			c.Set(CtxUserIDKey, userID)
			c.Set(CtxUserRoleKey, role)

			return next(c)
		}
	}
}

// OptionalAuthJWT はトークンが無くても通すJWT検証。
// カートはゲストでも使えるので、トークンがあれば検証してユーザーIDを
// 渡し、無ければguest扱いで次へ進める。壊れたトークンは黙ってguestに
// 落とさず401を返す。
func OptionalAuthJWT(cfg config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get("Authorization") == "" {
				return next(c)
			}

			userID, role, ok := parseBearer(c, cfg)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			c.Set(CtxUserIDKey, userID)
			c.Set(CtxUserRoleKey, role)

			return next(c)
		}
	}
}

// Authorizationヘッダを検証してユーザーIDとロールを取り出す。
func parseBearer(c echo.Context, cfg config.Config) (string, string, bool) {
	authz := c.Request().Header.Get("Authorization")
	if authz == "" {
		return "", "", false
	}

	//Bearer形式か確認してtokenを抜く
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", "", false
	}
	rawToken := strings.TrimSpace(parts[1])
	if rawToken == "" {
		return "", "", false
	}

	//JWTをパースして検証する
	token, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || token == nil || !token.Valid {
		return "", "", false
	}

	//claimsを取り出す
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", false
	}

	//user_idを取り出す
	userID, ok := claims["sub"].(string)
	if !ok || userID == "" {
		return "", "", false
	}

	//roleを取り出す（USER/ADMIN）
	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return "", "", false
	}

	return userID, role, true
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
