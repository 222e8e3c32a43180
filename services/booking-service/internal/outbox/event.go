package outbox

// Event is the domain event envelope written to the outbox table.
// The Kafka topic name equals EventType (event per topic).
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// Event types emitted by the booking service. The notification service
// consumes the notification.* topics.
const (
	EventAppointmentBooked = "booking.appointment.booked.v1"
	EventWelcomeRequested  = "notification.welcome.requested.v1"
	EventMessageRequested  = "notification.message.requested.v1"
)
