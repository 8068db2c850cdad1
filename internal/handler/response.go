package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"entrepreneurhub/internal/logger"
	"entrepreneurhub/internal/model"
	"entrepreneurhub/pkg/apierror"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, model.MessageResponse{Message: message})
}

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

var errorMappings = []errorMapping{
	{model.ErrUserAlreadyExists, http.StatusBadRequest, "USER_EXISTS", "user already exists"},
	{model.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials"},
	{model.ErrUnauthorized, http.StatusUnauthorized, apierror.CodeUnauthorized, "authentication required"},
	{model.ErrForbidden, http.StatusForbidden, apierror.CodeForbidden, "admin access required"},
	{model.ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND", "user not found"},
	{model.ErrCourseNotFound, http.StatusNotFound, "COURSE_NOT_FOUND", "course not found"},
	{model.ErrEnrollmentNotFound, http.StatusNotFound, "ENROLLMENT_NOT_FOUND", "enrollment not found"},
	{model.ErrAlreadyEnrolled, http.StatusBadRequest, "ALREADY_ENROLLED", "already enrolled in this course"},
	{model.ErrNotEnrolled, http.StatusForbidden, "NOT_ENROLLED", "you must be enrolled in the course to review it"},
	{model.ErrEventNotFound, http.StatusNotFound, "EVENT_NOT_FOUND", "event not found or access denied"},
}

// writeError maps service errors onto the JSON error body. Anything it does
// not recognise is logged and reported as a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	body := &model.APIError{
		Code:    apierror.CodeInternal,
		Message: "unexpected server error",
	}

	var apiErr *apierror.APIError
	matched := false
	if errors.As(err, &apiErr) {
		status = apiErr.HTTPStatus
		body.Code = apiErr.Code
		body.Message = apiErr.Message
		body.Details = apiErr.Details
		matched = true
	} else {
		for _, m := range errorMappings {
			if errors.Is(err, m.target) {
				status, body.Code, body.Message = m.status, m.code, m.message
				matched = true
				break
			}
		}
	}

	if !matched || status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed", "path", r.URL.Path, "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.ErrorResponse{
		Success: false,
		Error:   body,
	})
}

// decodeAndValidate reads a JSON body into dst and runs struct validation.
func decodeAndValidate(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apierror.Validation("request body is required", "")
		}
		return apierror.Validation("invalid JSON body", err.Error())
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return apierror.Validation("invalid request", describeValidation(verrs))
		}
		return fmt.Errorf("validate request: %w", err)
	}
	return nil
}

func describeValidation(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
