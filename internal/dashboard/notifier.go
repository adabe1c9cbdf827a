package dashboard

import "go.uber.org/zap"

// LogNotifier renders user-visible notifications through the dashboard
// binary's structured logger.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Success(msg string) { n.log.Info(msg, zap.String("kind", "success")) }
func (n *LogNotifier) Error(msg string)   { n.log.Warn(msg, zap.String("kind", "error")) }
func (n *LogNotifier) Info(msg string)    { n.log.Info(msg, zap.String("kind", "info")) }
