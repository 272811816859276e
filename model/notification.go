package model

type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
)

// Notification is the single transient message shown to the user.
type Notification struct {
	Message string           `json:"message"`
	Type    NotificationType `json:"type"`
}

func Success(message string) Notification {
	return Notification{Message: message, Type: NotificationSuccess}
}

func Failure(message string) Notification {
	return Notification{Message: message, Type: NotificationError}
}
