package handler

import (
	th "github.com/mymmrac/telego/telegohandler"

	"dealradar/internal/transport/bot/middleware"
)

func (h *Handler) RegisterRoutes(bh *th.BotHandler, adminID int64) {
	adminGroup := bh.Group(th.AnyMessage())
	adminGroup.Use(middleware.AdminOnly(adminID))

	adminGroup.HandleMessage(h.OnStart, th.CommandEqual("start"))
	adminGroup.HandleMessage(h.OnRun, th.CommandEqual("run"))
	adminGroup.HandleMessage(h.OnQuota, th.CommandEqual("quota"))
	adminGroup.HandleMessage(h.OnDeals, th.CommandEqual("deals"))
	adminGroup.HandleMessage(h.OnStatus, th.CommandEqual("status"))
}
