package notifier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"dealradar/internal/domain/entity"
)

type stubSender struct {
	err   error
	calls int
}

func (s *stubSender) Send(_ context.Context, _ []entity.Opportunity) error {
	s.calls++
	return s.err
}

func TestMulti_Send(t *testing.T) {
	opportunities := []entity.Opportunity{{
		Deal: entity.Deal{ID: "deal-1", Title: "Widget", Price: 10},
	}}

	t.Run("all channels succeed", func(t *testing.T) {
		rq := require.New(t)

		telegram := &stubSender{}
		email := &stubSender{}

		multi := NewMulti()
		multi.Register("telegram", telegram)
		multi.Register("email", email)

		failed := multi.Send(context.Background(), opportunities)

		rq.Empty(failed)
		rq.Equal(1, telegram.calls)
		rq.Equal(1, email.calls)
	})

	t.Run("one channel failure does not block the rest", func(t *testing.T) {
		rq := require.New(t)

		telegram := &stubSender{err: errors.New("chat not found")}
		email := &stubSender{}

		multi := NewMulti()
		multi.Register("telegram", telegram)
		multi.Register("email", email)

		failed := multi.Send(context.Background(), opportunities)

		rq.Equal([]string{"telegram"}, failed)
		rq.Equal(1, email.calls)
	})

	t.Run("nothing to send skips channels", func(t *testing.T) {
		rq := require.New(t)

		telegram := &stubSender{}

		multi := NewMulti()
		multi.Register("telegram", telegram)

		failed := multi.Send(context.Background(), nil)

		rq.Empty(failed)
		rq.Zero(telegram.calls)
	})
}
