package event

type Type string

const (
	TypeCourseCreated     Type = "course.created"
	TypeCourseUpdated     Type = "course.updated"
	TypeCourseDeleted     Type = "course.deleted"
	TypeEnrollmentCreated Type = "enrollment.created"
	TypeEnrollmentUpdated Type = "enrollment.updated"
	TypeReviewSaved       Type = "review.saved"
	TypeUserRegistered    Type = "user.registered"
)

type Event struct {
	ID        string `json:"id"`
	Type      Type   `json:"type"`
	Payload   any    `json:"payload"`
	Timestamp string `json:"timestamp"`
	ActorID   string `json:"actor_id,omitempty"` // Who triggered the event
}

type Handler func(Event)

type Bus interface {
	Publish(e Event)
	Subscribe(h Handler) func() // Returns the unsubscribe function
}
