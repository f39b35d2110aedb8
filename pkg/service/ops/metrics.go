package ops

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Business metrics, updated from the usecase layer.
var (
	RemindersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "superbot_reminders_created_total",
		Help: "Number of reminders created",
	})

	RemindersFired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "superbot_reminders_fired_total",
		Help: "Number of reminder timers that fired",
	})

	RemindersCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "superbot_reminders_cancelled_total",
		Help: "Number of reminders cancelled before firing",
	})

	DeliveryFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "superbot_delivery_failures_total",
		Help: "Number of fired reminders whose chat delivery failed",
	})

	FilesSaved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "superbot_files_saved_total",
		Help: "Number of file records saved",
	})

	ImagesConverted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "superbot_images_converted_total",
		Help: "Number of images converted between JPEG and PNG",
	})
)
