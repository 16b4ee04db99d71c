package validation

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_OrNil(t *testing.T) {
	verr := NewError()
	require.NoError(t, verr.OrNil())

	verr.Add("distance", "must be positive")
	err := verr.OrNil()
	require.Error(t, err)
	assert.Equal(t, "invalid input: distance: must be positive", err.Error())

	verr.Add("date", "required")
	assert.Equal(t, "invalid input: date: required, distance: must be positive", verr.Error())
}

func TestError_MarshalJSON(t *testing.T) {
	verr := NewError()
	verr.Add("sets", "must be a number")

	out, err := json.Marshal(verr)
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"validation failed","fields":{"sets":"must be a number"}}`, string(out))
}

func TestNumber_Unmarshal(t *testing.T) {
	type payload struct {
		Distance Number `json:"distance"`
	}

	for name, tc := range map[string]struct {
		in        string
		wantSet   bool
		wantValid bool
		wantInt   int
	}{
		"number":         {`{"distance": 10}`, true, true, 10},
		"float rounds":   {`{"distance": 10.6}`, true, true, 11},
		"numeric string": {`{"distance": "42"}`, true, true, 42},
		"missing":        {`{}`, false, false, 0},
		"null":           {`{"distance": null}`, false, false, 0},
		"garbage":        {`{"distance": "ten"}`, true, false, 0},
		"object":         {`{"distance": {"km": 10}}`, true, false, 0},
	} {
		t.Run(name, func(t *testing.T) {
			var p payload
			require.NoError(t, json.Unmarshal([]byte(tc.in), &p))
			assert.Equal(t, tc.wantSet, p.Distance.IsSet())
			assert.Equal(t, tc.wantValid, p.Distance.IsValid())
			if tc.wantValid {
				assert.Equal(t, tc.wantInt, p.Distance.Int())
			}
		})
	}
}

func TestDate_Unmarshal(t *testing.T) {
	type payload struct {
		Date Date `json:"date"`
	}

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2024-01-10T00:00:00Z"}`), &p))
	require.True(t, p.Date.IsValid())
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), p.Date.Time())

	p = payload{}
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2024-01-10"}`), &p))
	require.True(t, p.Date.IsValid())
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), p.Date.Time())

	p = payload{}
	require.NoError(t, json.Unmarshal([]byte(`{"date":"not-a-date"}`), &p))
	assert.True(t, p.Date.IsSet())
	assert.False(t, p.Date.IsValid())
}

func TestPositiveInt(t *testing.T) {
	verr := NewError()
	assert.Equal(t, 5, PositiveInt(verr, "reps", NumberOf(5)))
	require.NoError(t, verr.OrNil())

	PositiveInt(verr, "distance", NumberOf(-2))
	PositiveInt(verr, "duration", Number{})
	err := verr.OrNil()
	require.Error(t, err)
	assert.Equal(t, "must be positive", verr.Fields["distance"])
	assert.Equal(t, "required", verr.Fields["duration"])
}

func TestRequiredString(t *testing.T) {
	verr := NewError()
	assert.Equal(t, "Running", RequiredString(verr, "name", "Running"))
	RequiredString(verr, "username", "   ")
	require.Error(t, verr.OrNil())
	assert.Equal(t, "required", verr.Fields["username"])
}
