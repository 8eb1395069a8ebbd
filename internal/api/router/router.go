// Package router 注册HTTP路由
package router

import (
	"context"

	"ai-match-go/internal/api/handler"
	"ai-match-go/internal/config"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/keyauth"
)

// RegisterRoutes 注册 API 路由。
// 配置了 server.api_key 时，匹配接口要求请求头携带 X-API-Key，
// 健康与就绪检查保持匿名可访问。
func RegisterRoutes(h *server.Hertz, cfg *config.Config, matchHandler *handler.MatchHandler) {
	api := h.Group("/api/v1")

	// 探活接口不鉴权
	api.GET("/health", matchHandler.HandleHealth)
	api.GET("/ready", matchHandler.HandleReady)

	matchGroup := api.Group("")
	if cfg.Server.APIKey != "" {
		matchGroup.Use(keyauth.New(
			keyauth.WithKeyLookUp("header:X-API-Key", ""),
			keyauth.WithValidator(func(ctx context.Context, c *app.RequestContext, key string) (bool, error) {
				return key == cfg.Server.APIKey, nil
			}),
			keyauth.WithErrorHandler(func(ctx context.Context, c *app.RequestContext, err error) {
				c.JSON(consts.StatusUnauthorized, utils.H{"error": "无效的API密钥"})
				c.Abort()
			}),
		))
	}

	matchGroup.POST("/match", matchHandler.HandleMatch)
}
