package integrationapp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lyracrm/lyra/app/sdk/errs"
	"github.com/lyracrm/lyra/business/domain/integrationbus"
	"github.com/lyracrm/lyra/business/types/status"
)

// Integration represents a third-party integration configured for a
// client. Credential blobs never appear in responses; only the key names
// are echoed so callers can tell what is configured.
type Integration struct {
	ID             int64    `json:"id"`
	ClientID       int64    `json:"clientId"`
	Type           string   `json:"type"`
	CredentialKeys []string `json:"credentialKeys,omitempty"`
	WebhookURL     string   `json:"webhookUrl,omitempty"`
	Status         string   `json:"status"`
	DateCreated    string   `json:"dateCreated"`
	DateUpdated    string   `json:"dateUpdated"`
}

// Encode implements the web.Encoder interface.
func (i Integration) Encode() ([]byte, string, error) {
	data, err := json.Marshal(i)
	return data, "application/json", err
}

func toAppIntegration(bus integrationbus.Integration) Integration {
	var keys []string
	for k := range bus.Credentials {
		keys = append(keys, k)
	}

	return Integration{
		ID:             bus.ID,
		ClientID:       bus.ClientID,
		Type:           bus.Type,
		CredentialKeys: keys,
		WebhookURL:     bus.WebhookURL,
		Status:         bus.Status.String(),
		DateCreated:    bus.CreatedAt.Format(time.RFC3339),
		DateUpdated:    bus.UpdatedAt.Format(time.RFC3339),
	}
}

func toAppIntegrations(integrations []integrationbus.Integration) []Integration {
	app := make([]Integration, len(integrations))
	for i, itg := range integrations {
		app[i] = toAppIntegration(itg)
	}
	return app
}

// =============================================================================

// NewIntegration defines the data needed to add a new integration.
type NewIntegration struct {
	ClientID    int64          `json:"clientId" validate:"required"`
	Type        string         `json:"type" validate:"required"`
	Credentials map[string]any `json:"credentials"`
	WebhookURL  string         `json:"webhookUrl" validate:"omitempty,url"`
}

// Decode implements the web.Decoder interface.
func (app *NewIntegration) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app NewIntegration) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusNewIntegration(app NewIntegration) integrationbus.NewIntegration {
	return integrationbus.NewIntegration{
		ClientID:    app.ClientID,
		Type:        app.Type,
		Credentials: app.Credentials,
		WebhookURL:  app.WebhookURL,
	}
}

// =============================================================================

// UpdateIntegration defines the data needed to update an integration.
type UpdateIntegration struct {
	Type        *string        `json:"type"`
	Credentials map[string]any `json:"credentials"`
	WebhookURL  *string        `json:"webhookUrl" validate:"omitempty,url"`
	Status      *string        `json:"status"`
}

// Decode implements the web.Decoder interface.
func (app *UpdateIntegration) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app UpdateIntegration) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusUpdateIntegration(app UpdateIntegration) (integrationbus.UpdateIntegration, error) {
	var sts *status.Status
	if app.Status != nil {
		st, err := status.Parse(*app.Status)
		if err != nil {
			return integrationbus.UpdateIntegration{}, fmt.Errorf("parse status: %w", err)
		}
		sts = &st
	}

	bus := integrationbus.UpdateIntegration{
		Type:        app.Type,
		Credentials: app.Credentials,
		WebhookURL:  app.WebhookURL,
		Status:      sts,
	}

	return bus, nil
}
