// Package errors carries HTTP-aware application errors rendered as
// RFC 7807 problem documents.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/strogmv/blogadmin/internal/pkg/logger"
)

// AppError is an error with an HTTP status and a problem title.
type AppError struct {
	Status int
	Title  string
	Detail string
	Err    error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Title, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Title, e.Detail)
}

func (e *AppError) Unwrap() error { return e.Err }

// New creates an AppError.
func New(status int, title, detail string) *AppError {
	return &AppError{Status: status, Title: title, Detail: detail}
}

// Wrap creates an AppError that keeps cause in its chain.
func Wrap(cause error, status int, title, detail string) *AppError {
	return &AppError{Status: status, Title: title, Detail: detail, Err: cause}
}

func Validation(detail string) *AppError {
	return New(http.StatusBadRequest, "Validation Error", detail)
}

func NotFound(detail string) *AppError {
	return New(http.StatusNotFound, "Not Found", detail)
}

func Conflict(detail string) *AppError {
	return New(http.StatusConflict, "Conflict", detail)
}

func Unavailable(detail string) *AppError {
	return New(http.StatusServiceUnavailable, "Service Unavailable", detail)
}

// StatusOf returns the HTTP status carried by err, or 500.
func StatusOf(err error) int {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

func IsValidation(err error) bool { return StatusOf(err) == http.StatusBadRequest }

func IsNotFound(err error) bool { return StatusOf(err) == http.StatusNotFound }

func IsConflict(err error) bool { return StatusOf(err) == http.StatusConflict }

// Is and As re-export the standard library helpers so callers need a
// single errors import.
func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target any) bool { return stderrors.As(err, target) }

// Problem is the RFC 7807 body.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// WriteError renders err as a problem document. Errors without an HTTP
// status are logged and hidden behind a generic 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	p := Problem{Type: "about:blank", Instance: r.URL.Path}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		p.Title = appErr.Title
		p.Status = appErr.Status
		p.Detail = appErr.Detail
	} else {
		p.Title = "Internal Server Error"
		p.Status = http.StatusInternalServerError
		p.Detail = "unexpected error"
	}
	l := logger.From(r.Context())
	if p.Status >= http.StatusInternalServerError {
		l.Error("request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	} else {
		l.Debug("request rejected", slog.Int("status", p.Status), slog.Any("error", err))
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}
