package worker

import (
	"github.com/melcoco/registration-service/internal/service"
)

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
