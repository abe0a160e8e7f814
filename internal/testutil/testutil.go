package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"bookshelf/internal/auth"
	"bookshelf/internal/book"
)

// TestSecret signs tokens in handler and middleware tests.
const TestSecret = "test-secret"

// TestBook is a fixture book for testing
var TestBook = book.Book{
	Author: "J.K. Rowling",
	Title:  "Harry Potter",
	Pages:  223,
}

// TestBooks is a sorted fixture collection
var TestBooks = []book.Book{
	{Author: "Frank Herbert", Title: "Dune", Pages: 412},
	TestBook,
	{Author: "J.K. Rowling", Title: "Harry Potter 2", Pages: 251},
}

// GenerateTestToken generates a JWT token for testing
func GenerateTestToken(secret, subject, role string) string {
	token, _, _ := auth.GenerateToken(secret, subject, role, time.Hour)
	return token
}

// NewRequest creates a new HTTP request for testing
func NewRequest(method, path string, body interface{}) *http.Request {
	var r *http.Request
	switch b := body.(type) {
	case nil:
		r = httptest.NewRequest(method, path, nil)
	case string:
		r = httptest.NewRequest(method, path, bytes.NewReader([]byte(b)))
		r.Header.Set("Content-Type", "application/json")
	default:
		bodyBytes, _ := json.Marshal(b)
		r = httptest.NewRequest(method, path, bytes.NewReader(bodyBytes))
		r.Header.Set("Content-Type", "application/json")
	}
	return r
}

// NewRequestWithAuth creates a new HTTP request with JWT auth for testing
func NewRequestWithAuth(method, path string, body interface{}, token string) *http.Request {
	r := NewRequest(method, path, body)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return r
}

// RecordResponse records the HTTP response for testing
type RecordResponse struct {
	Code   int
	Header http.Header
	Body   map[string]interface{}
}

// RecordHTTPResponse records the HTTP response
func RecordHTTPResponse(w *httptest.ResponseRecorder) RecordResponse {
	result := w.Result()
	defer result.Body.Close()

	bodyBytes, _ := io.ReadAll(result.Body)

	var bodyMap map[string]interface{}
	if len(bodyBytes) > 0 {
		json.NewDecoder(bytes.NewReader(bodyBytes)).Decode(&bodyMap)
	}

	return RecordResponse{
		Code:   result.StatusCode,
		Header: result.Header,
		Body:   bodyMap,
	}
}

// ErrorCode returns error.code from a JSON error envelope.
func (rr RecordResponse) ErrorCode() string {
	errBody, ok := rr.Body["error"].(map[string]interface{})
	if !ok {
		return ""
	}
	code, _ := errBody["code"].(string)
	return code
}

// DataList returns data from a JSON success envelope as a list.
func (rr RecordResponse) DataList() []interface{} {
	list, _ := rr.Body["data"].([]interface{})
	return list
}
