package service

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/incident-intake/internal/config"
	"github.com/spec-kit/incident-intake/internal/domain"
)

var fixedNow = time.Date(2025, 3, 14, 15, 9, 26, 535897000, time.UTC)

func newTestNormalizer(profile string) *Normalizer {
	return NewNormalizer(profile,
		WithClock(func() time.Time { return fixedNow }),
		WithRandom(func(int) int { return 234 }),
	)
}

func TestNormalizeFullDefaults(t *testing.T) {
	inc := newTestNormalizer(config.DefaultsFull).Normalize(map[string]any{})

	assert.Equal(t, fixedNow.Truncate(time.Millisecond).UnixMilli(), inc.ID)
	assert.Equal(t, "CO-1234", inc.TicketNumber)
	assert.Equal(t, domain.DefaultCXAgent, inc.CXAgent)
	assert.Equal(t, domain.DefaultPriority, inc.Priority)
	assert.Equal(t, domain.DefaultCustomerName, inc.CustomerName)
	assert.Equal(t, domain.DefaultCustomerEmail, inc.CustomerEmail)
	assert.Equal(t, domain.DefaultCountry, inc.Country)
	assert.Equal(t, domain.DefaultReportDescription, inc.ReportDescription)
	assert.Equal(t, domain.DefaultStatus, inc.Status)
	assert.Equal(t, domain.DefaultChannel, inc.Channel)
	assert.Equal(t, domain.DefaultIncidentType, inc.IncidentType)
	assert.Equal(t, fixedNow.Truncate(time.Millisecond), inc.CreatedAt.Time)
}

func TestNormalizeMinimalLeavesCustomerFieldsUnset(t *testing.T) {
	inc := newTestNormalizer(config.DefaultsMinimal).Normalize(map[string]any{})

	assert.Nil(t, inc.TicketNumber)
	assert.Nil(t, inc.CustomerName)
	assert.Nil(t, inc.CustomerEmail)
	assert.Nil(t, inc.ReportDescription)
	assert.Nil(t, inc.IncidentType)
	assert.Equal(t, domain.DefaultCXAgent, inc.CXAgent)
	assert.Equal(t, domain.DefaultChannel, inc.Channel)

	raw, err := json.Marshal(inc)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.NotContains(t, out, "customer_name")
	assert.NotContains(t, out, "incident_type")
	assert.Contains(t, out, "createdAt")
}

func TestNormalizeFalsyFallsBackToDefault(t *testing.T) {
	cases := map[string]any{
		"nil":         nil,
		"empty":       "",
		"false":       false,
		"zero number": json.Number("0"),
		"zero float":  float64(0),
	}
	for name, v := range cases {
		t.Run(name, func(t *testing.T) {
			inc := newTestNormalizer(config.DefaultsFull).Normalize(map[string]any{
				"priority":      v,
				"customer_name": v,
			})
			assert.Equal(t, domain.DefaultPriority, inc.Priority)
			assert.Equal(t, domain.DefaultCustomerName, inc.CustomerName)
		})
	}
}

func TestNormalizePreservesTruthyValues(t *testing.T) {
	payload := map[string]any{
		"ticket_number":      "CO-0001",
		"cx_agent":           "  Mateo ",
		"priority":           json.Number("3"),
		"customer_name":      "Ana",
		"customer_email":     "ana@example.com",
		"country":            "MEX",
		"report_description": "No carga la app",
		"status":             true,
		"channel":            "Email",
		"incident_type":      []any{"a", "b"},
	}

	for _, profile := range []string{config.DefaultsFull, config.DefaultsMinimal} {
		inc := newTestNormalizer(profile).Normalize(payload)
		assert.Equal(t, "CO-0001", inc.TicketNumber)
		assert.Equal(t, "  Mateo ", inc.CXAgent)
		assert.Equal(t, json.Number("3"), inc.Priority)
		assert.Equal(t, "Ana", inc.CustomerName)
		assert.Equal(t, "ana@example.com", inc.CustomerEmail)
		assert.Equal(t, "MEX", inc.Country)
		assert.Equal(t, "No carga la app", inc.ReportDescription)
		assert.Equal(t, true, inc.Status)
		assert.Equal(t, "Email", inc.Channel)
	}
}

func TestNormalizeMinimalPassesFalsyThrough(t *testing.T) {
	inc := newTestNormalizer(config.DefaultsMinimal).Normalize(map[string]any{"customer_name": ""})
	assert.Equal(t, "", inc.CustomerName)
}

func TestNormalizeMinimalKeepsExplicitNull(t *testing.T) {
	inc := newTestNormalizer(config.DefaultsMinimal).Normalize(map[string]any{"customer_name": nil})
	assert.Equal(t, domain.Null, inc.CustomerName)
	assert.Nil(t, inc.CustomerEmail)

	raw, err := json.Marshal(inc)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Contains(t, out, "customer_name")
	assert.Nil(t, out["customer_name"])
	assert.NotContains(t, out, "customer_email")
}

func TestNormalizeCreatedAtIsFixedWidth(t *testing.T) {
	onTheSecond := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	inc := NewNormalizer(config.DefaultsMinimal, WithClock(func() time.Time { return onTheSecond })).Normalize(nil)

	raw, err := json.Marshal(inc)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"createdAt":"2025-01-02T03:04:05.000Z"`)
}

func TestNormalizeUnknownProfileIsMinimal(t *testing.T) {
	assert.Equal(t, config.DefaultsMinimal, NewNormalizer("bogus").Profile())
}

func TestGeneratedTicketNumberRange(t *testing.T) {
	low := NewNormalizer(config.DefaultsFull, WithRandom(func(int) int { return 0 })).Normalize(nil)
	high := NewNormalizer(config.DefaultsFull, WithRandom(func(n int) int { return n - 1 })).Normalize(nil)
	assert.Equal(t, "CO-1000", low.TicketNumber)
	assert.Equal(t, "CO-9999", high.TicketNumber)
}

func TestDecodePayload(t *testing.T) {
	payload, err := DecodePayload([]byte(`{"customer_name":"Ana","priority":7}`))
	require.NoError(t, err)
	assert.Equal(t, "Ana", payload["customer_name"])
	assert.Equal(t, json.Number("7"), payload["priority"])

	payload, err = DecodePayload([]byte(`[1,2,3]`))
	require.NoError(t, err)
	assert.Empty(t, payload)

	_, err = DecodePayload([]byte(`null`))
	assert.ErrorIs(t, err, ErrNullPayload)

	_, err = DecodePayload([]byte(`not json`))
	assert.Error(t, err)

	_, err = DecodePayload(nil)
	assert.Error(t, err)

	for _, body := range []string{`{} {}`, `{}]`, `{}}`, `[]]`, `{"a":1}x`} {
		_, err = DecodePayload([]byte(body))
		assert.Error(t, err, body)
	}

	payload, err = DecodePayload([]byte("{\"a\":1}\n  "))
	require.NoError(t, err)
	assert.Equal(t, json.Number("1"), payload["a"])
}
