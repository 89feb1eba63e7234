package email

import "log/slog"

// LogSender writes messages to the log instead of delivering them. It is
// used when no mail transport is configured.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(msg Message) error {
	s.logger.Info("email not delivered, no transport configured",
		"to", msg.To, "subject", msg.Subject, "body", msg.TextBody)
	return nil
}
