package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampAlwaysThreeFractionDigits(t *testing.T) {
	cases := map[string]time.Time{
		"2025-01-02T03:04:05.000Z": time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		"2025-01-02T03:04:05.100Z": time.Date(2025, 1, 2, 3, 4, 5, 100_000_000, time.UTC),
		"2025-01-02T03:04:05.123Z": time.Date(2025, 1, 2, 3, 4, 5, 123_456_789, time.UTC),
		"2025-01-02T08:04:05.000Z": time.Date(2025, 1, 2, 3, 4, 5, 0, time.FixedZone("COT", -5*3600)),
	}
	for want, in := range cases {
		raw, err := json.Marshal(struct {
			CreatedAt Timestamp `json:"createdAt"`
		}{NewTimestamp(in)})
		require.NoError(t, err)
		assert.JSONEq(t, `{"createdAt":"`+want+`"}`, string(raw))
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	ts := NewTimestamp(time.Date(2025, 1, 2, 3, 4, 5, 6_000_000, time.UTC))
	raw, err := json.Marshal(ts)
	require.NoError(t, err)

	var back Timestamp
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, ts.Equal(back.Time))

	var zero Timestamp
	require.NoError(t, json.Unmarshal([]byte("null"), &zero))
	assert.True(t, zero.IsZero())
}

func TestIncidentKeepsExplicitNull(t *testing.T) {
	inc := Incident{ID: 1, CustomerName: Null, CXAgent: DefaultCXAgent}

	raw, err := json.Marshal(inc)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Contains(t, out, "customer_name")
	assert.Nil(t, out["customer_name"])
	assert.NotContains(t, out, "customer_email")

	var back Incident
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, Null, back.CustomerName)
	assert.Nil(t, back.CustomerEmail)
}

func TestIncidentDecodesNumbersExactly(t *testing.T) {
	var inc Incident
	require.NoError(t, json.Unmarshal([]byte(`{"id":3,"priority":12345678901234567890}`), &inc))
	assert.Equal(t, int64(3), inc.ID)
	assert.Equal(t, json.Number("12345678901234567890"), inc.Priority)
}
