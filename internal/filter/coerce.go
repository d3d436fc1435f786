package filter

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simp-lee/gamestore/internal/domain"
)

// Accepted DateTime layouts. All are locale independent; values without a
// zone are read as UTC. Fractional seconds are accepted after the seconds field.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Coerce converts raw to the Go representation of f's declared type:
// string, decimal.Decimal, int64, uuid.UUID, time.Time (UTC) or bool.
// A nil raw value stays nil.
func Coerce(f Field, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	v, ok := coerce(f.Type, raw)
	if !ok {
		return nil, domain.NewInvalidFilterValueError(f.Name, rawString(raw))
	}
	return v, nil
}

func coerce(t domain.FieldType, raw any) (any, bool) {
	switch t {
	case domain.FieldString:
		return toString(raw)
	case domain.FieldInteger:
		return toInt64(raw)
	case domain.FieldDecimal:
		return toDecimal(raw)
	case domain.FieldIdentifier:
		return toUUID(raw)
	case domain.FieldDateTime:
		return toTime(raw)
	case domain.FieldBoolean:
		return toBool(raw)
	}
	return nil, false
}

func toString(raw any) (any, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case bool:
		return strconv.FormatBool(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case decimal.Decimal:
		return v.String(), true
	case uuid.UUID:
		return v.String(), true
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano), true
	}
	return nil, false
}

func toInt64(raw any) (any, bool) {
	switch v := raw.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return uintToInt64(uint64(v))
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return uintToInt64(v)
	case float64:
		if math.Trunc(v) != v || v < math.MinInt64 || v >= math.MaxInt64 {
			return nil, false
		}
		return int64(v), true
	case json.Number:
		n, err := strconv.ParseInt(v.String(), 10, 64)
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return n, err == nil
	case decimal.Decimal:
		if !v.IsInteger() {
			return nil, false
		}
		return v.IntPart(), true
	}
	return nil, false
}

func uintToInt64(v uint64) (any, bool) {
	if v > math.MaxInt64 {
		return nil, false
	}
	return int64(v), true
}

func toDecimal(raw any) (any, bool) {
	switch v := raw.(type) {
	case decimal.Decimal:
		return v, true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, false
		}
		return decimal.NewFromFloat(v), true
	case float32:
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, false
		}
		return decimal.NewFromFloat32(v), true
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		return d, err == nil
	}
	if n, ok := toInt64(raw); ok {
		return decimal.NewFromInt(n.(int64)), true
	}
	return nil, false
}

func toUUID(raw any) (any, bool) {
	switch v := raw.(type) {
	case uuid.UUID:
		return v, true
	case string:
		id, err := uuid.Parse(strings.TrimSpace(v))
		return id, err == nil
	}
	return nil, false
}

func toTime(raw any) (any, bool) {
	switch v := raw.(type) {
	case time.Time:
		return v.UTC(), true
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range dateTimeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), true
			}
		}
	}
	return nil, false
}

func toBool(raw any) (any, bool) {
	switch v := raw.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return nil, false
}

// rawString renders a caller-supplied value for error messages.
func rawString(raw any) string {
	if raw == nil {
		return "null"
	}
	if s, ok := raw.(string); ok {
		return s
	}
	return fmt.Sprint(raw)
}
