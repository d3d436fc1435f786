package pkg

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/simp-lee/gamestore/internal/domain"
)

// Response is the JSON envelope every endpoint answers with.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// ErrorDetail identifies the filter field and raw value a query error refers to.
type ErrorDetail struct {
	Field string `json:"field,omitempty"`
	Value string `json:"value,omitempty"`
}

// ValidationErrorResponse replaces Data with per-field messages keyed by
// the JSON name of the rejected field.
type ValidationErrorResponse struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Response{Code: status, Message: message, Data: data})
}

// Success answers 200 with data.
func Success(c *gin.Context, data any) {
	respond(c, http.StatusOK, "success", data)
}

// Created answers 201 with the stored entity.
func Created(c *gin.Context, data any) {
	respond(c, http.StatusCreated, "created", data)
}

// List answers 200 with a page, typically a *domain.PageResult.
func List(c *gin.Context, page any) {
	respond(c, http.StatusOK, "success", page)
}

// Error translates err into its HTTP status and envelope. Messages of
// server-side failures are never exposed. Query errors carry the offending
// field and raw value in Data. err is attached to the context so the
// request logger can record it.
func Error(c *gin.Context, err error) {
	_ = c.Error(err)

	status := domain.HTTPStatusCode(err)
	if status == http.StatusInternalServerError {
		respond(c, status, "internal error", nil)
		return
	}

	var appErr *domain.AppError
	if !errors.As(err, &appErr) {
		respond(c, status, http.StatusText(status), nil)
		return
	}
	var detail any
	if appErr.Field != "" || appErr.Value != "" {
		detail = ErrorDetail{Field: appErr.Field, Value: appErr.Value}
	}
	respond(c, status, appErr.Message, detail)
}

// ValidationError answers 400. Validator failures are listed per field;
// anything else, such as a malformed body, is a plain bad request.
func ValidationError(c *gin.Context, err error) {
	writeValidation(c, err, nil)
}

// BindAndValidate binds the request into obj and reports false after
// answering 400 when binding or validation fails:
//
//	if !pkg.BindAndValidate(c, &req) { return }
func BindAndValidate(c *gin.Context, obj any) bool {
	err := c.ShouldBind(obj)
	if err == nil {
		return true
	}
	writeValidation(c, err, obj)
	return false
}

func writeValidation(c *gin.Context, err error, obj any) {
	var failures validator.ValidationErrors
	if !errors.As(err, &failures) {
		respond(c, http.StatusBadRequest, "bad request", nil)
		return
	}

	out := make(map[string]string, len(failures))
	for _, fe := range failures {
		out[jsonFieldName(obj, fe)] = describeFailure(fe)
	}
	c.JSON(http.StatusBadRequest, ValidationErrorResponse{
		Code:    http.StatusBadRequest,
		Message: "validation error",
		Errors:  out,
	})
}

// jsonFieldName prefers the json tag of the failing field on obj and falls
// back to its lowercased Go name.
func jsonFieldName(obj any, fe validator.FieldError) string {
	if obj != nil {
		t := reflect.TypeOf(obj)
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if t.Kind() == reflect.Struct {
			if f, ok := t.FieldByName(fe.StructField()); ok {
				if name := parseJSONTagName(f.Tag.Get("json")); name != "" {
					return name
				}
			}
		}
	}
	return strings.ToLower(fe.Field())
}

func describeFailure(fe validator.FieldError) string {
	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "uuid", "uuid4":
		return "Must be a valid identifier"
	case "min", "gte":
		return "Must be at least " + fe.Param() + unit
	case "max", "lte":
		return "Must be at most " + fe.Param() + unit
	case "oneof":
		return "Must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	}
	if fe.Param() != "" {
		return fe.Tag() + "=" + fe.Param()
	}
	return fe.Tag()
}

// parseJSONTagName returns the name part of a json struct tag, or "" when
// the tag names nothing.
func parseJSONTagName(tag string) string {
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}
	return name
}
