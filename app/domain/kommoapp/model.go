package kommoapp

import (
	"encoding/json"
	"fmt"

	"github.com/lyracrm/lyra/app/sdk/errs"
)

// Author identifies the contact who wrote the inbound message.
type Author struct {
	ID        string `json:"id" validate:"required"`
	Type      string `json:"type"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

// MessageAdd is a single inbound message in the webhook batch.
type MessageAdd struct {
	ID          string `json:"id"`
	ChatID      string `json:"chat_id" validate:"required"`
	TalkID      string `json:"talk_id"`
	ContactID   string `json:"contact_id"`
	Text        string `json:"text"`
	CreatedAt   string `json:"created_at"`
	ElementType string `json:"element_type"`
	EntityType  string `json:"entity_type"`
	ElementID   string `json:"element_id"`
	EntityID    string `json:"entity_id"`
	Type        string `json:"type"`
	Author      Author `json:"author"`
	Origin      string `json:"origin"`
}

// Account identifies the Kommo account that emitted the webhook.
type Account struct {
	Subdomain string `json:"subdomain"`
	ID        string `json:"id"`
}

// Message wraps the webhook message batch.
type Message struct {
	Add []MessageAdd `json:"add" validate:"required,min=1,dive"`
}

// Webhook is the inbound message webhook payload.
type Webhook struct {
	Account Account `json:"account"`
	Message Message `json:"message"`
}

// Decode implements the web.Decoder interface.
func (app *Webhook) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app Webhook) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

// =============================================================================

// Ack is the immediate webhook acknowledgement. The reply itself is
// dispatched after the response is written.
type Ack struct {
	Accepted bool `json:"accepted"`
}

// Encode implements the web.Encoder interface.
func (a Ack) Encode() ([]byte, string, error) {
	data, err := json.Marshal(a)
	return data, "application/json", err
}
