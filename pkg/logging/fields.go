package logging

import "log/slog"

// Domain identifiers

func Conversation(id string) slog.Attr {
	return slog.String("conversation_id", id)
}

func User(id string) slog.Attr {
	return slog.String("user_id", id)
}

func Connection(id string) slog.Attr {
	return slog.String("connection_id", id)
}

func Message(id string) slog.Attr {
	return slog.String("message_id", id)
}

func Notification(id string) slog.Attr {
	return slog.String("notification_id", id)
}

func Sequence(seq int64) slog.Attr {
	return slog.Int64("sequence", seq)
}

// Error handling

func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}
