package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Error carries per-field validation failures, so handlers can report
// exactly which input fields were rejected.
type Error struct {
	Fields map[string]string `json:"fields"`
}

func NewError() *Error {
	return &Error{
		Fields: map[string]string{},
	}
}

func (e *Error) Add(field, message string) {
	e.Fields[field] = message
}

// OrNil returns nil when no field failed, making the usual
// `return verr.OrNil()` pattern possible.
func (e *Error) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *Error) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var sb strings.Builder
	sb.WriteString("invalid input: ")
	for i, f := range fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(f)
		sb.WriteString(": ")
		sb.WriteString(e.Fields[f])
	}
	return sb.String()
}

func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}{
		Error:  "validation failed",
		Fields: e.Fields,
	})
}

// Number accepts a JSON number or a numeric string, so that HTML form
// clients posting `"distance": "10"` and JSON clients posting
// `"distance": 10.3` both coerce into the same value.
type Number struct {
	value float64
	set   bool
	valid bool
}

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	n.set = true

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil
		}
		n.value = v
		n.valid = true
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	n.value = v
	n.valid = true
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.value)
}

func (n Number) IsSet() bool {
	return n.set
}

func (n Number) IsValid() bool {
	return n.valid
}

// Int returns the value rounded to the nearest integer.
func (n Number) Int() int {
	return int(math.Round(n.value))
}

func (n Number) Float() float64 {
	return n.value
}

func NumberOf(v float64) Number {
	return Number{value: v, set: true, valid: true}
}

// Date accepts RFC3339 timestamps as well as plain `2006-01-02` dates.
type Date struct {
	value time.Time
	set   bool
	valid bool
}

func (d *Date) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	d.set = true

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		d.value = t
		d.valid = true
		return nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		d.value = t
		d.valid = true
		return nil
	}
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if !d.valid {
		return []byte("null"), nil
	}
	return json.Marshal(d.value.Format(time.RFC3339))
}

func (d Date) IsSet() bool {
	return d.set
}

func (d Date) IsValid() bool {
	return d.valid
}

func (d Date) Time() time.Time {
	return d.value
}

func DateOf(t time.Time) Date {
	return Date{value: t, set: true, valid: true}
}

// PositiveInt validates that the given number field coerces to a positive
// integer and records a field error otherwise.
func PositiveInt(verr *Error, field string, n Number) int {
	switch {
	case !n.set:
		verr.Add(field, "required")
	case !n.valid:
		verr.Add(field, "must be a number")
	case n.Int() <= 0:
		verr.Add(field, "must be positive")
	default:
		return n.Int()
	}
	return 0
}

// RequiredString validates that the given string is present and non-empty.
func RequiredString(verr *Error, field, value string) string {
	if strings.TrimSpace(value) == "" {
		verr.Add(field, "required")
		return ""
	}
	return value
}

// RequiredDate validates that the given date field was set and parsed.
func RequiredDate(verr *Error, field string, d Date) time.Time {
	switch {
	case !d.set:
		verr.Add(field, "required")
	case !d.valid:
		verr.Add(field, fmt.Sprintf("must be an ISO-8601 date (%s)", time.RFC3339))
	default:
		return d.value
	}
	return time.Time{}
}
