package notifier

import (
	"context"
	"log/slog"

	"dealradar/internal/domain/entity"
	"dealradar/pkg/contextx"
	"dealradar/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type Sender interface {
	Send(ctx context.Context, opportunities []entity.Opportunity) error
}

// Multi рассылает алерты по всем каналам; отказ одного канала не
// блокирует остальные.
type Multi struct {
	senders []namedSender
}

type namedSender struct {
	name   string
	sender Sender
}

func NewMulti() *Multi {
	return &Multi{}
}

func (m *Multi) Register(name string, sender Sender) {
	m.senders = append(m.senders, namedSender{name: name, sender: sender})
}

// Send возвращает имена каналов, которым не удалось доставить алерты.
func (m *Multi) Send(ctx context.Context, opportunities []entity.Opportunity) []string {
	if len(opportunities) == 0 {
		return nil
	}

	var failed []string
	for _, s := range m.senders {
		if err := s.sender.Send(ctx, opportunities); err != nil {
			logger(ctx).Warn(
				"notification channel failed",
				slog.String("channel", s.name),
				logx.Error(err),
			)
			failed = append(failed, s.name)
		}
	}

	return failed
}
