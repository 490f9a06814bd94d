package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/permission"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const CtxActorKey = "actor" // permission.Actor

// ActorFromContext はミドルウェアが載せたアクターを取り出す。
// 無ければ未認証アクターを返す。
func ActorFromContext(c echo.Context) permission.Actor {
	if a, ok := c.Get(CtxActorKey).(permission.Actor); ok {
		return a
	}
	return permission.Anonymous()
}

// bearerAuth用のJWT検証ミドルウェア。
// IDプロバイダが発行したクレーム（sub/role）をそのまま信頼する。
func AuthJWT(cfg config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, err := actorFromRequest(c, cfg)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			c.Set(CtxActorKey, actor)
			return next(c)
		}
	}
}

// OptionalAuthJWT は公開エンドポイント用。
// トークンが無ければ匿名のまま通し、あれば検証してアクターを載せる。
func OptionalAuthJWT(cfg config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get("Authorization") == "" {
				c.Set(CtxActorKey, permission.Anonymous())
				return next(c)
			}

			actor, err := actorFromRequest(c, cfg)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			c.Set(CtxActorKey, actor)
			return next(c)
		}
	}
}

func actorFromRequest(c echo.Context, cfg config.Config) (permission.Actor, error) {
	//Authorizationヘッダを取得
	authz := c.Request().Header.Get("Authorization")
	if authz == "" {
		return permission.Actor{}, errors.New("missing authorization header")
	}

	//Bearer形式か確認してtokenを抜く
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return permission.Actor{}, errors.New("invalid authorization header")
	}
	rawToken := strings.TrimSpace(parts[1])
	if rawToken == "" {
		return permission.Actor{}, errors.New("empty token")
	}

	//JWTをパースして検証する
	token, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || token == nil || !token.Valid {
		return permission.Actor{}, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return permission.Actor{}, errors.New("invalid claims")
	}

	//user_idを取り出す
	userID, err := parseUserID(claims["sub"])
	if err != nil || userID <= 0 {
		return permission.Actor{}, errors.New("invalid sub")
	}

	//roleを取り出す（CLIENT/ADMIN）
	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return permission.Actor{}, errors.New("invalid role")
	}
	switch model.Role(role) {
	case model.RoleClient, model.RoleAdmin:
		// OK
	default:
		return permission.Actor{}, errors.New("invalid role")
	}

	return permission.Actor{
		ID:            userID,
		Role:          model.Role(role),
		Authenticated: true,
	}, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}

// user_idをint64に変換する
func parseUserID(v interface{}) (int64, error) {
	switch t := v.(type) {
	case float64:
		return int64(t), nil
	case string:
		return strconv.ParseInt(t, 10, 64)
	default:
		return 0, errors.New("invalid sub")
	}
}
