package pkg

import (
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/simp-lee/gamestore/internal/domain"
)

// ParseID reads the ":id" path parameter as a record identifier.
func ParseID(c *gin.Context) (uuid.UUID, error) {
	return ParseIDParam(c, "id")
}

// ParseIDParam reads the named path parameter as a record identifier.
func ParseIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	raw := c.Param(name)
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, domain.NewAppError(domain.CodeValidation, "invalid "+name+": "+raw, nil)
	}
	return id, nil
}

// BindPageRequest decodes a JSON page request, including a structured
// filter_tree, from the request body. Numbers in filter values keep their
// literal text so decimals are not rounded through float64.
func BindPageRequest(c *gin.Context, d PageDefaults) (domain.PageRequest, error) {
	var req domain.PageRequest
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil && err != io.EOF {
		return domain.PageRequest{}, domain.NewAppError(domain.CodeValidation, "invalid page request body", err)
	}
	d.Apply(&req)
	return req, nil
}

// QueryBool reads an optional boolean query parameter. An absent parameter
// is false.
func QueryBool(c *gin.Context, key string) (bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, domain.NewAppError(domain.CodeValidation, key+" must be true or false", nil)
	}
	return v, nil
}

// QueryInt reads an optional integer query parameter, returning def when it
// is absent.
func QueryInt(c *gin.Context, key string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewAppError(domain.CodeValidation, key+" must be an integer", nil)
	}
	return n, nil
}

// QueryTime reads a required instant from the query string, either RFC 3339
// or a bare date (midnight UTC).
func QueryTime(c *gin.Context, key string) (time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return time.Time{}, domain.NewAppError(domain.CodeValidation, key+" is required", nil)
	}
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, domain.NewAppError(domain.CodeValidation, key+" must be an RFC 3339 time or a YYYY-MM-DD date", nil)
}
