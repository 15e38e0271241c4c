package notifier

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"dealradar/internal/domain/entity"
)

type TelegramBot struct {
	bot    *telego.Bot
	chatID int64
}

func NewTelegramBot(token string, chatID int64) (*TelegramBot, error) {
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	return &TelegramBot{
		bot:    bot,
		chatID: chatID,
	}, nil
}

// Send отправляет алерты по найденным сделкам.
func (b *TelegramBot) Send(ctx context.Context, opportunities []entity.Opportunity) error {
	for _, opportunity := range opportunities {
		if err := b.sendOne(ctx, opportunity); err != nil {
			return fmt.Errorf("send opportunity %s: %w", opportunity.Deal.ID, err)
		}
	}

	return nil
}

func (b *TelegramBot) sendOne(ctx context.Context, opportunity entity.Opportunity) error {
	confidence := ""
	if opportunity.Estimate.Degraded {
		confidence = "\n⚠️ <i>estimate from a single source</i>"
	}

	text := fmt.Sprintf(
		"🔥 <b>DEAL FOUND!</b>\n\n"+
			"🏷 <b>Item:</b> %s\n"+
			"💰 <b>Price:</b> $%.2f\n"+
			"📊 <b>Estimate:</b> $%.2f\n"+
			"📉 <b>Discount:</b> $%.2f%s\n\n"+
			"🔗 <a href=\"%s\">View Deal</a>",
		opportunity.Deal.Title,
		opportunity.Deal.Price,
		opportunity.Estimate.Value,
		opportunity.Discount,
		confidence,
		opportunity.Deal.URL,
	)

	msg := tu.Message(
		tu.ID(b.chatID),
		text,
	).WithParseMode(telego.ModeHTML)

	_, err := b.bot.SendMessage(ctx, msg)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	return nil
}

// SendText отправляет простое текстовое сообщение.
func (b *TelegramBot) SendText(ctx context.Context, text string) error {
	msg := tu.Message(tu.ID(b.chatID), text)

	_, err := b.bot.SendMessage(ctx, msg)
	return err
}
