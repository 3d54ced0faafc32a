package worker

import (
	"github.com/spec-kit/issue-tracker/internal/service"
)

// StartNotificationWorker wires the notification fan-out into the event
// dispatcher.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
