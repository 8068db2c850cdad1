package model

import "time"

const (
	CourseStatusActive   = "active"
	CourseStatusDraft    = "draft"
	CourseStatusArchived = "archived"
)

const DefaultCourseImage = "https://images.unsplash.com/photo-1454165804606-c3d57bc86b40?auto=format&fit=crop&w=1170&q=80"

type Course struct {
	ID               string    `db:"id" json:"id"`
	Title            string    `db:"title" json:"title"`
	Description      string    `db:"description" json:"description"`
	Category         string    `db:"category" json:"category"`
	Duration         string    `db:"duration" json:"duration"`
	Price            float64   `db:"price" json:"price"`
	Instructor       string    `db:"instructor" json:"instructor"`
	Image            string    `db:"image" json:"image"`
	Rating           float64   `db:"rating" json:"rating"`
	StudentsEnrolled int       `db:"students_enrolled" json:"students_enrolled"`
	Status           string    `db:"status" json:"status"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

type Enrollment struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"user_id"`
	CourseID   string    `db:"course_id" json:"course_id"`
	Progress   int       `db:"progress" json:"progress"`
	Completed  bool      `db:"completed" json:"completed"`
	EnrolledAt time.Time `db:"enrolled_at" json:"enrolled_at"`
}

// EnrollmentWithCourse is an enrollment joined with a summary of its course.
type EnrollmentWithCourse struct {
	Enrollment
	CourseTitle       string `db:"course_title" json:"course_title"`
	CourseDescription string `db:"course_description" json:"course_description"`
	CourseImage       string `db:"course_image" json:"course_image"`
	CourseInstructor  string `db:"course_instructor" json:"course_instructor"`
	CourseCategory    string `db:"course_category" json:"course_category"`
}

type Review struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	CourseID  string    `db:"course_id" json:"course_id"`
	Rating    int       `db:"rating" json:"rating"`
	Comment   string    `db:"comment" json:"comment"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type ReviewWithAuthor struct {
	Review
	UserName string `db:"user_name" json:"user_name"`
}

type CalendarEvent struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	CourseID    *string   `db:"course_id" json:"course_id,omitempty"`
	CourseTitle *string   `db:"course_title" json:"course_title,omitempty"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	StartTime   time.Time `db:"start_time" json:"start_time"`
	EndTime     time.Time `db:"end_time" json:"end_time"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
