package worker

import (
	"github.com/spec-kit/incident-intake/internal/service"
)

// StartNotificationWorker subscribes incident forwarding to the dispatcher.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
