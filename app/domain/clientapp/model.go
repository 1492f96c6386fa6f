package clientapp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lyracrm/lyra/app/sdk/errs"
	"github.com/lyracrm/lyra/business/domain/clientbus"
	"github.com/lyracrm/lyra/business/types/name"
	"github.com/lyracrm/lyra/business/types/status"
)

// Client represents a tenant in the system.
type Client struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Industry    string `json:"industry,omitempty"`
	Status      string `json:"status"`
	DateCreated string `json:"dateCreated"`
	DateUpdated string `json:"dateUpdated"`
}

// Encode implements the web.Encoder interface.
func (c Client) Encode() ([]byte, string, error) {
	data, err := json.Marshal(c)
	return data, "application/json", err
}

func toAppClient(bus clientbus.Client) Client {
	return Client{
		ID:          bus.ID,
		Name:        bus.Name.String(),
		Industry:    bus.Industry,
		Status:      bus.Status.String(),
		DateCreated: bus.CreatedAt.Format(time.RFC3339),
		DateUpdated: bus.UpdatedAt.Format(time.RFC3339),
	}
}

func toAppClients(clients []clientbus.Client) []Client {
	app := make([]Client, len(clients))
	for i, clt := range clients {
		app[i] = toAppClient(clt)
	}
	return app
}

// =============================================================================

// NewClient defines the data needed to add a new client.
type NewClient struct {
	Name     string `json:"name" validate:"required"`
	Industry string `json:"industry"`
}

// Decode implements the web.Decoder interface.
func (app *NewClient) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app NewClient) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusNewClient(app NewClient) (clientbus.NewClient, error) {
	nme, err := name.Parse(app.Name)
	if err != nil {
		return clientbus.NewClient{}, fmt.Errorf("parse name: %w", err)
	}

	bus := clientbus.NewClient{
		Name:     nme,
		Industry: app.Industry,
	}

	return bus, nil
}

// =============================================================================

// UpdateClient defines the data needed to update a client.
type UpdateClient struct {
	Name     *string `json:"name"`
	Industry *string `json:"industry"`
	Status   *string `json:"status"`
}

// Decode implements the web.Decoder interface.
func (app *UpdateClient) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app UpdateClient) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusUpdateClient(app UpdateClient) (clientbus.UpdateClient, error) {
	var nme *name.Name
	if app.Name != nil {
		nm, err := name.Parse(*app.Name)
		if err != nil {
			return clientbus.UpdateClient{}, fmt.Errorf("parse name: %w", err)
		}
		nme = &nm
	}

	var sts *status.Status
	if app.Status != nil {
		st, err := status.Parse(*app.Status)
		if err != nil {
			return clientbus.UpdateClient{}, fmt.Errorf("parse status: %w", err)
		}
		sts = &st
	}

	bus := clientbus.UpdateClient{
		Name:     nme,
		Industry: app.Industry,
		Status:   sts,
	}

	return bus, nil
}
