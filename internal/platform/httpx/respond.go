// Package httpx provides HTTP response utilities following RFC7807 problem details.
package httpx

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

// ProblemDetail represents RFC7807 problem details.
type ProblemDetail struct {
	Type   string `json:"type,omitempty"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (p *ProblemDetail) String() string {
	if p == nil {
		return ""
	}
	if p.Detail != "" {
		return p.Title + ": " + p.Detail
	}
	return p.Title
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Problem sends an RFC7807 problem details response.
func Problem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ProblemDetail{
		Title:  title,
		Status: status,
		Detail: detail,
	})
}

// DecodeJSON decodes JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}

// ReadProblem decodes an error response body into problem details. Bodies
// that are not JSON yield a problem whose detail is the trimmed text, and an
// empty body yields nil.
func ReadProblem(resp *http.Response) *ProblemDetail {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(strings.TrimSpace(string(raw))) == 0 {
		return nil
	}
	var problem ProblemDetail
	if json.Unmarshal(raw, &problem) == nil && (problem.Title != "" || problem.Detail != "") {
		if problem.Status == 0 {
			problem.Status = resp.StatusCode
		}
		return &problem
	}
	return &ProblemDetail{
		Title:  http.StatusText(resp.StatusCode),
		Status: resp.StatusCode,
		Detail: strings.TrimSpace(string(raw)),
	}
}
