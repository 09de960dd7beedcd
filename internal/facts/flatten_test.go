package facts

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/riskline/internal/model"
)

func TestFlatten_NestedAndEnvelopes(t *testing.T) {
	answers := map[string]any{
		"switchboard": map[string]any{
			"rcd_present": map[string]any{"value": false, "status": "answered"},
			"spare_ways":  3,
			"location": map[string]any{
				"floor": "ground",
			},
		},
		"thermal": map[string]any{
			"hotspot_severity": map[string]any{
				"value":  map[string]any{"value": "major", "status": "answered"},
				"status": "reviewed",
			},
		},
		"protection": map[string]any{
			"devices": []any{"MCB", "RCBO"},
		},
	}

	got := Flatten(answers)

	want := model.Facts{
		"switchboard.rcd_present":    false,
		"switchboard.spare_ways":     3,
		"switchboard.location.floor": "ground",
		"thermal.hotspot_severity":   "major",
		"protection.devices":         []any{"MCB", "RCBO"},
	}
	assert.Equal(t, want, got)
}

func TestFlatten_EnvelopeDepthIsBounded(t *testing.T) {
	innermost := map[string]any{"value": "deep", "status": "x"}
	answers := map[string]any{
		"q": map[string]any{
			"value": map[string]any{
				"value":  innermost,
				"status": "b",
			},
			"status": "a",
		},
	}

	got := Flatten(answers)

	// Two levels are unwrapped; the third envelope is stored as-is.
	assert.Equal(t, innermost, got["q"])
}

func TestFlatten_ArraysAreTerminal(t *testing.T) {
	answers := map[string]any{
		"circuits": []any{
			map[string]any{"id": "C1", "result": "pass"},
			map[string]any{"id": "C2", "result": "fail"},
		},
	}

	got := Flatten(answers)

	require.Len(t, got, 1)
	assert.Contains(t, got, "circuits")
	assert.NotContains(t, got, "circuits.0.id")
}

func TestFlatten_NullLeafIsStoredButNotPresent(t *testing.T) {
	got := Flatten(map[string]any{"smoke_alarms": map[string]any{"count": nil}})

	_, ok := got.Get("smoke_alarms.count")
	assert.True(t, ok)
	assert.False(t, got.Present("smoke_alarms.count"))
}

func TestFlatten_IdempotentOnFlatInput(t *testing.T) {
	flat := map[string]any{
		"switchboard.rcd_present": true,
		"switchboard.spare_ways":  0,
		"protection.devices":      []any{"RCD"},
	}

	once := Flatten(flat)
	twice := Flatten(map[string]any(once))

	assert.Equal(t, model.Facts(flat), once)
	assert.Equal(t, once, twice)
}

func TestFlatten_OrderIndependent(t *testing.T) {
	a := `{"b":{"y":1,"x":{"value":2,"status":"ok"}},"a":[1,2]}`
	b := `{"a":[1,2],"b":{"x":{"status":"ok","value":2},"y":1}}`

	answersA, err := FromJSON([]byte(a))
	require.NoError(t, err)
	answersB, err := FromJSON([]byte(b))
	require.NoError(t, err)

	assert.Equal(t, Flatten(answersA), Flatten(answersB))
}

func TestFromJSON(t *testing.T) {
	answers, err := FromJSON([]byte(`{"meter":{"reading":12.5}}`))
	require.NoError(t, err)

	got := Flatten(answers)
	assert.Equal(t, json.Number("12.5"), got["meter.reading"])

	_, err = FromJSON([]byte(`[1,2]`))
	assert.Error(t, err)

	_, err = FromJSON([]byte(`null`))
	assert.Error(t, err)
}
