package domain

import "errors"

var (
	ErrUnauthenticated  = errors.New("authentication required")
	ErrValidation       = errors.New("invalid request")
	ErrPermissionDenied = errors.New("permission denied")

	ErrConversationNotFound = errors.New("conversation not found")
	ErrMessageNotFound      = errors.New("message not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrUserNotFound         = errors.New("user not found")

	ErrInvalidConversationID  = errors.New("invalid conversation id")
	ErrSequenceNotInitialized = errors.New("conversation sequence not initialized")
)
