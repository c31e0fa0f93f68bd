package server

import (
	"encoding/json"
	"net/http"
)

// Problem types for RFC 7807 Problem Details responses.
const (
	ProblemTypeNotFound     = "https://themeforge.dev/problems/not-found"
	ProblemTypeBadRequest   = "https://themeforge.dev/problems/bad-request"
	ProblemTypeInternal     = "https://themeforge.dev/problems/internal-error"
	ProblemTypeUnauthorized = "https://themeforge.dev/problems/unauthorized"
	ProblemTypeForbidden    = "https://themeforge.dev/problems/forbidden"
	ProblemTypeRateLimited  = "https://themeforge.dev/problems/rate-limited"
	ProblemTypeConflict     = "https://themeforge.dev/problems/conflict"
	ProblemTypeInvalidTheme = "https://themeforge.dev/problems/invalid-theme"
)

// Problem represents an RFC 7807 Problem Details response.
type Problem struct {
	Type     string `json:"type" example:"https://themeforge.dev/problems/bad-request"`
	Title    string `json:"title" example:"Bad Request"`
	Status   int    `json:"status" example:"400"`
	Detail   string `json:"detail,omitempty" example:"configuration must be an object"`
	Instance string `json:"instance,omitempty" example:"/api/v1/themes"`
	// Errors carries structured details, such as validation violations.
	Errors any `json:"errors,omitempty"`
}

// WriteProblem writes an RFC 7807 Problem Details JSON response.
func WriteProblem(w http.ResponseWriter, p Problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

func problem(w http.ResponseWriter, typ string, status int, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     typ,
		Title:    http.StatusText(status),
		Status:   status,
		Detail:   detail,
		Instance: instance,
	})
}

// NotFound writes a 404 problem response.
func NotFound(w http.ResponseWriter, detail, instance string) {
	problem(w, ProblemTypeNotFound, http.StatusNotFound, detail, instance)
}

// BadRequest writes a 400 problem response.
func BadRequest(w http.ResponseWriter, detail, instance string) {
	problem(w, ProblemTypeBadRequest, http.StatusBadRequest, detail, instance)
}

// Conflict writes a 409 problem response.
func Conflict(w http.ResponseWriter, detail, instance string) {
	problem(w, ProblemTypeConflict, http.StatusConflict, detail, instance)
}

// Unauthorized writes a 401 problem response.
func Unauthorized(w http.ResponseWriter, detail, instance string) {
	problem(w, ProblemTypeUnauthorized, http.StatusUnauthorized, detail, instance)
}

// InvalidTheme writes a 422 problem response listing what failed.
func InvalidTheme(w http.ResponseWriter, detail, instance string, errs any) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeInvalidTheme,
		Title:    http.StatusText(http.StatusUnprocessableEntity),
		Status:   http.StatusUnprocessableEntity,
		Detail:   detail,
		Instance: instance,
		Errors:   errs,
	})
}

// InternalError writes a 500 problem response.
func InternalError(w http.ResponseWriter, detail, instance string) {
	problem(w, ProblemTypeInternal, http.StatusInternalServerError, detail, instance)
}

// RateLimited writes a 429 problem response.
func RateLimited(w http.ResponseWriter, detail, instance string) {
	problem(w, ProblemTypeRateLimited, http.StatusTooManyRequests, detail, instance)
}
