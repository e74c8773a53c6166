package outbox

// Topic names double as event types; one topic per event.
const (
	EventAppointmentBooked    = "clinic.appointment.booked.v1"
	EventAppointmentCompleted = "clinic.appointment.completed.v1"
	EventAppointmentCancelled = "clinic.appointment.cancelled.v1"
)

// Event is the domain event envelope written to the outbox table.
// The Kafka topic name equals EventType.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}
