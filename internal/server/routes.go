package server

import (
	"app/internal/config"

	"github.com/labstack/echo/v4"
)

func registerRoutes(e *echo.Echo, cfg config.Config, h Handlers) {
	//公開カタログ
	h.Catalog.RegisterRoutes(e)

	//レビュー（一覧は公開・投稿は要認証）
	h.Review.RegisterRoutes(e, cfg)

	//要認証
	h.Cart.RegisterRoutes(e, cfg)
	h.Order.RegisterRoutes(e, cfg)
	h.Profile.RegisterRoutes(e, cfg)

	//管理者
	h.AdminCatalog.RegisterRoutes(e, cfg)
	h.AdminOrder.RegisterRoutes(e, cfg)
}
