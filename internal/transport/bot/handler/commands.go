package handler

import (
	"fmt"
	"strings"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"dealradar/internal/domain/entity"
	"dealradar/internal/domain/service/discovery"
	"dealradar/internal/transport/bot/view"
)

func (h *Handler) OnStart(ctx *th.Context, msg telego.Message) error {
	return h.sendHTML(ctx, msg.Chat.ID, view.StartMessage)
}

func (h *Handler) OnRun(ctx *th.Context, msg telego.Message) error {
	if err := h.sendHTML(ctx, msg.Chat.ID, view.RunStarted); err != nil {
		return err
	}

	result, err := h.discoveryService.RunCycle(ctx)
	if err != nil {
		if result.Outcome == discovery.OutcomeFetchFailed {
			return h.sendHTML(ctx, msg.Chat.ID, view.RunFetchFailed)
		}
		return h.sendHTML(ctx, msg.Chat.ID, fmt.Sprintf(view.RunFailed, err))
	}

	if result.Outcome == discovery.OutcomeQuotaExceeded {
		return h.sendHTML(ctx, msg.Chat.ID, fmt.Sprintf(
			view.RunQuotaDenied,
			result.NextResetAt.Format(view.TimestampLayout),
		))
	}

	return h.sendHTML(ctx, msg.Chat.ID, formatCycleResult(result))
}

func formatCycleResult(result discovery.CycleResult) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "✅ <b>Цикл завершён</b>\n\n")
	fmt.Fprintf(&sb, "🔎 Кандидатов: %d (пропущено %d, с ошибками %d)\n",
		result.Attempted, result.Skipped, result.Failed)
	fmt.Fprintf(&sb, "💎 Новых сделок: %d\n", len(result.Opportunities))

	for _, opportunity := range result.Opportunities {
		fmt.Fprintf(&sb, "\n%s", formatOpportunity(opportunity))
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintf(&sb, "\n⚠️ Предупреждений: %d", len(result.Warnings))
	}

	return sb.String()
}

func (h *Handler) OnQuota(ctx *th.Context, msg telego.Message) error {
	decision, err := h.quotaService.Remaining(ctx)
	if err != nil {
		return fmt.Errorf("quotaService.Remaining: %w", err)
	}

	return h.sendHTML(ctx, msg.Chat.ID, fmt.Sprintf(
		view.QuotaTemplate,
		decision.Used,
		h.quotaService.Limit(),
		decision.Remaining,
		decision.NextResetAt.Format(view.TimestampLayout),
	))
}

func (h *Handler) OnDeals(ctx *th.Context, msg telego.Message) error {
	memory, err := h.dealStore.Load(ctx)
	if err != nil {
		return fmt.Errorf("dealStore.Load: %w", err)
	}

	if len(memory.Opportunities) == 0 {
		return h.sendHTML(ctx, msg.Chat.ID, view.NoDealsYet)
	}

	opportunities := memory.Opportunities
	if len(opportunities) > view.DealsListLimit {
		opportunities = opportunities[:view.DealsListLimit]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "💎 <b>Последние сделки</b> (%d всего)\n", len(memory.Opportunities))
	for _, opportunity := range opportunities {
		fmt.Fprintf(&sb, "\n%s", formatOpportunity(opportunity))
	}

	return h.sendHTML(ctx, msg.Chat.ID, sb.String())
}

func formatOpportunity(opportunity entity.Opportunity) string {
	confidence := ""
	if opportunity.Estimate.Degraded {
		confidence = " ⚠️"
	}

	return fmt.Sprintf(
		"🏷 <a href=\"%s\">%s</a>\n💰 $%.2f → 📊 $%.2f (выгода $%.2f)%s\n",
		opportunity.Deal.URL,
		opportunity.Deal.Title,
		opportunity.Deal.Price,
		opportunity.Estimate.Value,
		opportunity.Discount,
		confidence,
	)
}

func (h *Handler) OnStatus(ctx *th.Context, msg telego.Message) error {
	decision, err := h.quotaService.Remaining(ctx)
	if err != nil {
		return fmt.Errorf("quotaService.Remaining: %w", err)
	}

	memory, err := h.dealStore.Load(ctx)
	if err != nil {
		return fmt.Errorf("dealStore.Load: %w", err)
	}

	quotaStatus := "🟢 есть запас"
	if !decision.Allowed {
		quotaStatus = "🔴 исчерпана"
	}

	text := fmt.Sprintf(`📊 <b>Статус системы</b>

🔋 <b>Квота:</b> %s (%d из %d)
💎 <b>Сделок в памяти:</b> %d
👁 <b>Обработано лотов:</b> %d
⏰ <b>Сброс квоты:</b> %s`,
		quotaStatus,
		decision.Used,
		h.quotaService.Limit(),
		len(memory.Opportunities),
		len(memory.SeenIDs),
		decision.NextResetAt.Format(view.TimestampLayout),
	)

	return h.sendHTML(ctx, msg.Chat.ID, text)
}

func (h *Handler) sendHTML(ctx *th.Context, chatID int64, text string) error {
	_, err := ctx.Bot().SendMessage(ctx, &telego.SendMessageParams{
		ChatID:    telego.ChatID{ID: chatID},
		Text:      text,
		ParseMode: telego.ModeHTML,
	})
	return err
}
