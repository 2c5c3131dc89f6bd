package domain

import (
	"bytes"
	"encoding/json"
)

// Incident is a normalized customer issue received through the webhook.
//
// Descriptive fields are untyped: inbound values are carried as decoded,
// without coercion. Fields tagged omitempty are absent when the normalizer
// profile passes an unset input through; an explicit JSON null is kept as Null.
type Incident struct {
	ID                int64     `json:"id"`
	TicketNumber      any       `json:"ticket_number,omitempty"`
	CXAgent           any       `json:"cx_agent"`
	Priority          any       `json:"priority"`
	CustomerName      any       `json:"customer_name,omitempty"`
	CustomerEmail     any       `json:"customer_email,omitempty"`
	Country           any       `json:"country"`
	ReportDescription any       `json:"report_description,omitempty"`
	Status            any       `json:"status"`
	Channel           any       `json:"channel"`
	IncidentType      any       `json:"incident_type,omitempty"`
	CreatedAt         Timestamp `json:"createdAt"`
}

// Default field values applied by the normalizer.
const (
	DefaultCXAgent           = "Alejandra"
	DefaultPriority          = "Medio"
	DefaultCustomerName      = "Cliente"
	DefaultCustomerEmail     = "cliente@example.com"
	DefaultCountry           = "COL"
	DefaultReportDescription = "Descripción"
	DefaultStatus            = "En progreso"
	DefaultChannel           = "WhatsApp"
	DefaultIncidentType      = "Falla in-app"

	TicketNumberPrefix = "CO-"
)

type explicitNull struct{}

func (explicitNull) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// Null marks an optional field that was sent as JSON null. Unlike a nil
// value it survives omitempty and encodes as null.
var Null any = explicitNull{}

// UnmarshalJSON decodes numbers as json.Number and restores Null for
// optional fields stored as null.
func (i *Incident) UnmarshalJSON(data []byte) error {
	type plain Incident
	var p plain

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&p); err != nil {
		return err
	}
	*i = Incident(p)

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	optional := map[string]*any{
		"ticket_number":      &i.TicketNumber,
		"customer_name":      &i.CustomerName,
		"customer_email":     &i.CustomerEmail,
		"report_description": &i.ReportDescription,
		"incident_type":      &i.IncidentType,
	}
	for key, field := range optional {
		if raw, ok := keys[key]; ok && bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			*field = Null
		}
	}
	return nil
}
