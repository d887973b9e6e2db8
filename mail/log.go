package mail

import (
	"context"

	"go.uber.org/zap"
)

// LogDispatcher não envia nada: só registra o remetente. Uso em desenvolvimento.
type LogDispatcher struct {
	Logger *zap.Logger
}

func (d LogDispatcher) Dispatch(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("contact message received",
		zap.String("id", msg.ID),
		zap.String("reply_to", msg.ReplyTo),
		zap.Int("text_len", len(msg.Text)),
	)
	return nil
}
