package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/spec-kit/incident-intake/internal/config"
	"github.com/spec-kit/incident-intake/internal/domain"
)

// ErrNullPayload is returned when the body decodes to JSON null.
var ErrNullPayload = errors.New("request body must not be null")

var errTrailingData = errors.New("unexpected data after JSON value")

// Normalizer maps untrusted webhook payloads to incidents.
type Normalizer struct {
	profile string
	now     func() time.Time
	intn    func(n int) int
}

// NormalizerOption customizes a Normalizer.
type NormalizerOption func(*Normalizer)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) NormalizerOption {
	return func(n *Normalizer) { n.now = now }
}

// WithRandom overrides the source used for generated ticket numbers.
func WithRandom(intn func(n int) int) NormalizerOption {
	return func(n *Normalizer) { n.intn = intn }
}

// NewNormalizer builds a normalizer for the given defaults profile
// (config.DefaultsFull or config.DefaultsMinimal).
func NewNormalizer(profile string, opts ...NormalizerOption) *Normalizer {
	if profile != config.DefaultsFull {
		profile = config.DefaultsMinimal
	}
	n := &Normalizer{profile: profile, now: time.Now, intn: rand.Intn}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Profile reports the active defaults profile.
func (n *Normalizer) Profile() string {
	return n.profile
}

// Normalize never fails; every field is either taken from the payload or defaulted.
func (n *Normalizer) Normalize(payload map[string]any) *domain.Incident {
	now := domain.NewTimestamp(n.now())

	incident := &domain.Incident{
		ID:        now.UnixMilli(),
		CXAgent:   orDefault(payload["cx_agent"], domain.DefaultCXAgent),
		Priority:  orDefault(payload["priority"], domain.DefaultPriority),
		Country:   orDefault(payload["country"], domain.DefaultCountry),
		Status:    orDefault(payload["status"], domain.DefaultStatus),
		Channel:   orDefault(payload["channel"], domain.DefaultChannel),
		CreatedAt: now,
	}

	if n.profile == config.DefaultsFull {
		incident.TicketNumber = orDefault(payload["ticket_number"], n.ticketNumber())
		incident.CustomerName = orDefault(payload["customer_name"], domain.DefaultCustomerName)
		incident.CustomerEmail = orDefault(payload["customer_email"], domain.DefaultCustomerEmail)
		incident.ReportDescription = orDefault(payload["report_description"], domain.DefaultReportDescription)
		incident.IncidentType = orDefault(payload["incident_type"], domain.DefaultIncidentType)
		return incident
	}

	incident.TicketNumber = passthrough(payload, "ticket_number")
	incident.CustomerName = passthrough(payload, "customer_name")
	incident.CustomerEmail = passthrough(payload, "customer_email")
	incident.ReportDescription = passthrough(payload, "report_description")
	return incident
}

// passthrough copies a raw value, keeping an explicit null distinct from an absent key.
func passthrough(payload map[string]any, key string) any {
	v, ok := payload[key]
	if ok && v == nil {
		return domain.Null
	}
	return v
}

func (n *Normalizer) ticketNumber() string {
	return fmt.Sprintf("%s%d", domain.TicketNumberPrefix, 1000+n.intn(9000))
}

// DecodePayload parses a webhook body. Non-object JSON values yield an empty payload.
func DecodePayload(body []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}

	switch v := raw.(type) {
	case nil:
		return nil, ErrNullPayload
	case map[string]any:
		return v, nil
	default:
		return map[string]any{}, nil
	}
}

func orDefault(v any, fallback any) any {
	if truthy(v) {
		return v
	}
	return fallback
}

// truthy mirrors loose truthiness of decoded JSON values.
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case json.Number:
		f, err := val.Float64()
		return err != nil || f != 0
	case float64:
		return val != 0
	default:
		return true
	}
}
