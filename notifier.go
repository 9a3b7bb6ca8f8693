package quizforge

import "go.uber.org/zap"

// NoticeLevel classifies user-facing notifications.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a user-facing notification. Sticky notices persist until
// dismissed; the rest auto-expire. Errors are sticky by policy, warnings and
// info are not.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
	Sticky  bool        `json:"sticky"`
}

// Notifier delivers notices to whatever surface the host has (toasts, logs).
type Notifier interface {
	Notify(n Notice)
}

func errorNotice(message string) Notice {
	return Notice{Level: NoticeError, Message: message, Sticky: true}
}

func warningNotice(message string) Notice {
	return Notice{Level: NoticeWarning, Message: message}
}

// LogNotifier writes notices to the process log. It is the default sink when
// no interactive surface is wired in.
type LogNotifier struct {
	log *zap.SugaredLogger
}

func NewLogNotifier(log *zap.SugaredLogger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(notice Notice) {
	if n.log == nil {
		return
	}
	switch notice.Level {
	case NoticeError:
		n.log.Errorw(notice.Message, "sticky", notice.Sticky)
	case NoticeWarning:
		n.log.Warnw(notice.Message, "sticky", notice.Sticky)
	default:
		n.log.Infow(notice.Message, "sticky", notice.Sticky)
	}
}
