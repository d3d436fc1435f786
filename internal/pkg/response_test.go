package pkg

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"

	"github.com/simp-lee/gamestore/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newResponseTestContext(method, body string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, "/api/v1/reviews", strings.NewReader(body))
	if body != "" {
		c.Request.Header.Set("Content-Type", "application/json")
	}
	return c, w
}

// envelope decodes a Response keeping Data as raw JSON.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var e envelope
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("unmarshal %q: %v", w.Body.String(), err)
	}
	return e
}

func TestSuccessCreatedList(t *testing.T) {
	page := domain.NewPageResult([]string{"Celeste"}, 21, domain.PageRequest{PageNumber: 2, PageSize: 10})

	tests := []struct {
		name     string
		send     func(*gin.Context)
		wantCode int
		wantMsg  string
		wantData string
	}{
		{"success", func(c *gin.Context) { Success(c, gin.H{"title": "Hades"}) }, http.StatusOK, "success", `{"title":"Hades"}`},
		{"success without data", func(c *gin.Context) { Success(c, nil) }, http.StatusOK, "success", `null`},
		{"created", func(c *gin.Context) { Created(c, gin.H{"score": 5}) }, http.StatusCreated, "created", `{"score":5}`},
		{
			"list", func(c *gin.Context) { List(c, page) }, http.StatusOK, "success",
			`{"items":["Celeste"],"total_items":21,"page_number":2,"page_size":10,"total_pages":3}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newResponseTestContext(http.MethodGet, "")
			tt.send(c)

			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantCode)
			}
			e := decodeEnvelope(t, w)
			if e.Code != tt.wantCode || e.Message != tt.wantMsg {
				t.Errorf("envelope = %d %q, want %d %q", e.Code, e.Message, tt.wantCode, tt.wantMsg)
			}
			if string(e.Data) != tt.wantData {
				t.Errorf("data = %s, want %s", e.Data, tt.wantData)
			}
		})
	}
}

func TestError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
		wantDetail *ErrorDetail
	}{
		{"not found", domain.ErrNotFound, http.StatusNotFound, "not found", nil},
		{"duplicate review", domain.NewAppError(domain.CodeAlreadyExists, "user already reviewed this game", nil), http.StatusConflict, "user already reviewed this game", nil},
		{"validation", domain.NewAppError(domain.CodeValidation, "score must be between 1 and 5", nil), http.StatusBadRequest, "score must be between 1 and 5", nil},
		{"wrapped validation", fmt.Errorf("create review: %w", domain.ErrValidation), http.StatusBadRequest, "validation error", nil},
		{
			"unsupported entity", domain.NewUnsupportedEntityTypeError("Console"), http.StatusBadRequest,
			`unsupported entity type "Console"`, &ErrorDetail{Value: "Console"},
		},
		{
			"disallowed field", domain.NewDisallowedFieldError("Password"), http.StatusBadRequest,
			`field "Password" is not allowed`, &ErrorDetail{Field: "Password"},
		},
		{
			"invalid filter value", domain.NewInvalidFilterValueError("PrezzoListino", "cheap"), http.StatusBadRequest,
			`invalid value "cheap" for field "PrezzoListino"`, &ErrorDetail{Field: "PrezzoListino", Value: "cheap"},
		},
		{"invalid page request", domain.NewInvalidPageRequestError("page_size must be at least 1"), http.StatusBadRequest, "invalid page request: page_size must be at least 1", nil},
		{"invalid syntax", domain.NewInvalidFilterSyntaxError("unexpected token", nil), http.StatusBadRequest, "invalid filter expression: unexpected token", nil},
		{"internal hides message", domain.NewAppError(domain.CodeInternal, "database error", errors.New("disk I/O error")), http.StatusInternalServerError, "internal error", nil},
		{"plain error", errors.New("connection reset"), http.StatusInternalServerError, "internal error", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newResponseTestContext(http.MethodGet, "")
			Error(c, tt.err)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			e := decodeEnvelope(t, w)
			if e.Code != tt.wantStatus || e.Message != tt.wantMsg {
				t.Errorf("envelope = %d %q, want %d %q", e.Code, e.Message, tt.wantStatus, tt.wantMsg)
			}

			var detail *ErrorDetail
			if string(e.Data) != "null" {
				detail = new(ErrorDetail)
				if err := json.Unmarshal(e.Data, detail); err != nil {
					t.Fatalf("unmarshal detail: %v", err)
				}
			}
			if diff := cmp.Diff(tt.wantDetail, detail); diff != "" {
				t.Errorf("detail mismatch (-want +got):\n%s", diff)
			}

			if last := c.Errors.Last(); last == nil || !errors.Is(last.Err, tt.err) {
				t.Errorf("expected the error to be attached to the context, got %v", c.Errors)
			}
		})
	}
}

type reviewBody struct {
	UserID string `json:"user_id" binding:"required,uuid"`
	Score  int    `json:"score" binding:"required,min=1,max=5"`
	Title  string `json:"title" binding:"max=10"`
	Email  string `json:"contact_email" binding:"omitempty,email"`
	Notes  string `binding:"max=3"`
}

func TestBindAndValidate(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantOK     bool
		wantMsg    string
		wantErrors map[string]string
	}{
		{
			name:   "valid",
			body:   `{"user_id":"7b0c3f7e-9a51-4a3e-8f0e-2f4f0d3c1a11","score":4,"title":"Great"}`,
			wantOK: true,
		},
		{
			name:    "malformed json",
			body:    `{"score":`,
			wantMsg: "bad request",
		},
		{
			name:    "missing required fields",
			body:    `{}`,
			wantMsg: "validation error",
			wantErrors: map[string]string{
				"user_id": "This field is required",
				"score":   "This field is required",
			},
		},
		{
			name:    "bounds and formats",
			body:    `{"user_id":"42","score":9,"title":"Far too long a title","contact_email":"nope","Notes":"abcd"}`,
			wantMsg: "validation error",
			wantErrors: map[string]string{
				"user_id":       "Must be a valid identifier",
				"score":         "Must be at most 5",
				"title":         "Must be at most 10 characters",
				"contact_email": "Must be a valid email address",
				"notes":         "Must be at most 3 characters",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newResponseTestContext(http.MethodPost, tt.body)

			var req reviewBody
			if got := BindAndValidate(c, &req); got != tt.wantOK {
				t.Fatalf("BindAndValidate() = %v, want %v", got, tt.wantOK)
			}
			if tt.wantOK {
				if w.Body.Len() != 0 {
					t.Errorf("expected no response on success, got %s", w.Body.String())
				}
				return
			}

			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			var resp ValidationErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if resp.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", resp.Message, tt.wantMsg)
			}
			if diff := cmp.Diff(tt.wantErrors, resp.Errors); diff != "" {
				t.Errorf("errors mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidationError_NonValidatorError(t *testing.T) {
	c, w := newResponseTestContext(http.MethodPost, "")
	ValidationError(c, errors.New("unexpected EOF"))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if e := decodeEnvelope(t, w); e.Message != "bad request" {
		t.Errorf("message = %q, want bad request", e.Message)
	}
}

func TestParseJSONTagName(t *testing.T) {
	tests := map[string]string{
		"":                    "",
		"-":                   "",
		"-,":                  "",
		",omitempty":          "",
		"list_price":          "list_price",
		"page_size,omitempty": "page_size",
	}
	for tag, want := range tests {
		if got := parseJSONTagName(tag); got != want {
			t.Errorf("parseJSONTagName(%q) = %q, want %q", tag, got, want)
		}
	}
}
