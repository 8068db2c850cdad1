package model

import "time"

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type CourseRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"required"`
	Category    string   `json:"category" validate:"required,max=100"`
	Duration    string   `json:"duration" validate:"required,max=100"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Instructor  string   `json:"instructor" validate:"required,max=120"`
	Image       string   `json:"image" validate:"omitempty,url"`
	Status      string   `json:"status" validate:"omitempty,oneof=active draft archived"`
}

type EnrollRequest struct {
	CourseID string `json:"course_id" validate:"required"`
}

type ProgressRequest struct {
	Progress  *int `json:"progress" validate:"required,min=0,max=100"`
	Completed bool `json:"completed"`
}

type ReviewRequest struct {
	CourseID string `json:"course_id" validate:"required"`
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
	Comment  string `json:"comment" validate:"max=2000"`
}

type CalendarEventRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=2000"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	CourseID    *string   `json:"course_id"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
