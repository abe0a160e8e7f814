package book_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"bookshelf/internal/book"
	"bookshelf/internal/book/mocks"
	"bookshelf/internal/testutil"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPHandler_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := mocks.NewMockRepository(ctrl)
	handler := book.NewHTTPHandler(mockRepo)

	tests := []struct {
		name      string
		books     []book.Book
		wantCount int
	}{
		{name: "empty shelf", books: []book.Book{}, wantCount: 0},
		{name: "with books", books: testutil.TestBooks, wantCount: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo.EXPECT().List(gomock.Any()).Return(tt.books)

			w := httptest.NewRecorder()
			handler.List(w, testutil.NewRequest(http.MethodGet, "/api/books", nil))

			resp := testutil.RecordHTTPResponse(w)
			assert.Equal(t, http.StatusOK, resp.Code)
			assert.Equal(t, true, resp.Body["success"])
			assert.Len(t, resp.DataList(), tt.wantCount)
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
		})
	}
}

func TestHTTPHandler_Search(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := mocks.NewMockRepository(ctrl)
	handler := book.NewHTTPHandler(mockRepo)

	tests := []struct {
		name           string
		path           string
		setupMock      func()
		expectedStatus int
		expectedCount  int
	}{
		{
			name: "matches",
			path: "/api/books/otte",
			setupMock: func() {
				mockRepo.EXPECT().Search(gomock.Any(), "otte").Return(testutil.TestBooks[1:])
			},
			expectedStatus: http.StatusOK,
			expectedCount:  2,
		},
		{
			name: "no matches is not an error",
			path: "/api/books/zzz",
			setupMock: func() {
				mockRepo.EXPECT().Search(gomock.Any(), "zzz").Return([]book.Book{})
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "escaped keyword",
			path: "/api/books/Harry%20Potter",
			setupMock: func() {
				mockRepo.EXPECT().Search(gomock.Any(), "Harry Potter").Return([]book.Book{testutil.TestBook})
			},
			expectedStatus: http.StatusOK,
			expectedCount:  1,
		},
		{
			name: "keyword with encoded slash",
			path: "/api/books/AC%2FDC",
			setupMock: func() {
				mockRepo.EXPECT().Search(gomock.Any(), "AC/DC").Return([]book.Book{{Author: "Murray Engleheart", Title: "AC/DC: Maximum Rock & Roll"}})
			},
			expectedStatus: http.StatusOK,
			expectedCount:  1,
		},
		{
			name:           "blank keyword",
			path:           "/api/books/%20%20",
			setupMock:      func() {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			w := httptest.NewRecorder()
			handler.Search(w, testutil.NewRequest(http.MethodGet, tt.path, nil))

			resp := testutil.RecordHTTPResponse(w)
			assert.Equal(t, tt.expectedStatus, resp.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Len(t, resp.DataList(), tt.expectedCount)
			}
		})
	}
}

func TestHTTPHandler_Add(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := mocks.NewMockRepository(ctrl)
	handler := book.NewHTTPHandler(mockRepo)

	tests := []struct {
		name           string
		body           interface{}
		setupMock      func()
		expectedStatus int
		expectedCode   string
		expectedField  string
	}{
		{
			name: "created",
			body: map[string]interface{}{"author": " J.K. Rowling ", "title": "Harry Potter", "pages": 223},
			setupMock: func() {
				mockRepo.EXPECT().Add(gomock.Any(), testutil.TestBook).Return(nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "pages default to zero",
			body: map[string]interface{}{"author": "A", "title": "T"},
			setupMock: func() {
				mockRepo.EXPECT().Add(gomock.Any(), book.Book{Author: "A", Title: "T"}).Return(nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing title",
			body:           map[string]interface{}{"author": "A"},
			setupMock:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
		},
		{
			name:           "blank author",
			body:           map[string]interface{}{"author": "   ", "title": "T"},
			setupMock:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
		},
		{
			name:           "negative pages",
			body:           map[string]interface{}{"author": "A", "title": "T", "pages": -5},
			setupMock:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
			expectedField:  "pages",
		},
		{
			name:           "malformed json",
			body:           `{"author":`,
			setupMock:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INVALID_JSON",
		},
		{
			name:           "unknown field",
			body:           map[string]interface{}{"author": "A", "title": "T", "isbn": "123"},
			setupMock:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INVALID_JSON",
		},
		{
			name: "duplicate",
			body: map[string]interface{}{"author": "A", "title": "T"},
			setupMock: func() {
				mockRepo.EXPECT().Add(gomock.Any(), gomock.Any()).Return(&book.DuplicateError{Author: "A", Title: "T"})
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "DUPLICATE_BOOK",
		},
		{
			name: "write failure",
			body: map[string]interface{}{"author": "A", "title": "T"},
			setupMock: func() {
				mockRepo.EXPECT().Add(gomock.Any(), gomock.Any()).Return(&book.PersistenceError{Path: "books.xml", Err: os.ErrPermission})
			},
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   "PERSISTENCE_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			w := httptest.NewRecorder()
			handler.Add(w, testutil.NewRequest(http.MethodPost, "/api/books", tt.body))

			resp := testutil.RecordHTTPResponse(w)
			assert.Equal(t, tt.expectedStatus, resp.Code)
			assert.Equal(t, tt.expectedCode, resp.ErrorCode())
			if tt.expectedField != "" {
				errBody, _ := resp.Body["error"].(map[string]interface{})
				assert.Equal(t, "Invalid book", errBody["message"])
				details, _ := errBody["details"].([]interface{})
				require.Len(t, details, 1)
				detail, _ := details[0].(map[string]interface{})
				assert.Equal(t, tt.expectedField, detail["field"])
			}
		})
	}
}

func TestHTTPHandler_AddSetsLocation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := mocks.NewMockRepository(ctrl)
	handler := book.NewHTTPHandler(mockRepo)
	mockRepo.EXPECT().Add(gomock.Any(), gomock.Any()).Return(nil)

	w := httptest.NewRecorder()
	handler.Add(w, testutil.NewRequest(http.MethodPost, "/api/books", testutil.TestBook))

	assert.Equal(t, "/api/books/Harry%20Potter", w.Header().Get("Location"))
}

func TestHTTPHandler_Update(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := mocks.NewMockRepository(ctrl)
	handler := book.NewHTTPHandler(mockRepo)

	tests := []struct {
		name           string
		query          string
		setupMock      func()
		expectedStatus int
		expectedCode   string
	}{
		{
			name:  "updated",
			query: "?author=Test+Author&oldTitle=Old+Title&newTitle=New+Title",
			setupMock: func() {
				mockRepo.EXPECT().Update(gomock.Any(), "Test Author", "Old Title", "New Title").Return(true, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:  "not found",
			query: "?author=Test+Author&oldTitle=Missing&newTitle=New+Title",
			setupMock: func() {
				mockRepo.EXPECT().Update(gomock.Any(), "Test Author", "Missing", "New Title").Return(false, nil)
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   "NOT_FOUND",
		},
		{
			name:  "conflict",
			query: "?author=A&oldTitle=First&newTitle=Second",
			setupMock: func() {
				mockRepo.EXPECT().Update(gomock.Any(), "A", "First", "Second").
					Return(false, &book.ConflictError{Author: "A", OldTitle: "First", NewTitle: "Second"})
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "TITLE_CONFLICT",
		},
		{
			name:           "missing new title",
			query:          "?author=A&oldTitle=First",
			setupMock:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
		},
		{
			name:  "unexpected error",
			query: "?author=A&oldTitle=First&newTitle=Second",
			setupMock: func() {
				mockRepo.EXPECT().Update(gomock.Any(), "A", "First", "Second").Return(false, context.DeadlineExceeded)
			},
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			w := httptest.NewRecorder()
			handler.Update(w, testutil.NewRequest(http.MethodPut, "/api/books"+tt.query, nil))

			resp := testutil.RecordHTTPResponse(w)
			assert.Equal(t, tt.expectedStatus, resp.Code)
			assert.Equal(t, tt.expectedCode, resp.ErrorCode())
		})
	}
}

func TestHTTPHandler_Reload(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := mocks.NewMockRepository(ctrl)
	handler := book.NewHTTPHandler(mockRepo)

	t.Run("reloaded", func(t *testing.T) {
		mockRepo.EXPECT().Reload(gomock.Any()).Return(nil)
		mockRepo.EXPECT().List(gomock.Any()).Return(testutil.TestBooks)

		w := httptest.NewRecorder()
		handler.Reload(w, testutil.NewRequest(http.MethodPost, "/api/admin/reload", nil))

		resp := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusOK, resp.Code)
		meta, _ := resp.Body["meta"].(map[string]interface{})
		assert.Equal(t, float64(3), meta["total"])
	})

	t.Run("corrupt file", func(t *testing.T) {
		mockRepo.EXPECT().Reload(gomock.Any()).Return(&book.LoadError{Path: "books.xml", Err: errors.New("EOF")})

		w := httptest.NewRecorder()
		handler.Reload(w, testutil.NewRequest(http.MethodPost, "/api/admin/reload", nil))

		resp := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusInternalServerError, resp.Code)
		assert.Equal(t, "LOAD_ERROR", resp.ErrorCode())
	})
}
