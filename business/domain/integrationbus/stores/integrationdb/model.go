package integrationdb

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lyracrm/lyra/business/domain/integrationbus"
	"github.com/lyracrm/lyra/business/types/status"
)

type integrationDB struct {
	ID          int64          `db:"integration_id"`
	ClientID    int64          `db:"client_id"`
	Type        string         `db:"integration_type"`
	Credentials []byte         `db:"credentials"`
	WebhookURL  sql.NullString `db:"webhook_url"`
	Status      string         `db:"status"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func toDBIntegration(bus integrationbus.Integration) (integrationDB, error) {
	creds, err := json.Marshal(bus.Credentials)
	if err != nil {
		return integrationDB{}, fmt.Errorf("marshal credentials: %w", err)
	}

	return integrationDB{
		ID:          bus.ID,
		ClientID:    bus.ClientID,
		Type:        bus.Type,
		Credentials: creds,
		WebhookURL:  sql.NullString{String: bus.WebhookURL, Valid: bus.WebhookURL != ""},
		Status:      bus.Status.String(),
		CreatedAt:   bus.CreatedAt.UTC(),
		UpdatedAt:   bus.UpdatedAt.UTC(),
	}, nil
}

func toBusIntegration(db integrationDB) (integrationbus.Integration, error) {
	sts, err := status.Parse(db.Status)
	if err != nil {
		return integrationbus.Integration{}, fmt.Errorf("parse status: %w", err)
	}

	var creds map[string]any
	if len(db.Credentials) > 0 {
		if err := json.Unmarshal(db.Credentials, &creds); err != nil {
			return integrationbus.Integration{}, fmt.Errorf("unmarshal credentials: %w", err)
		}
	}

	bus := integrationbus.Integration{
		ID:          db.ID,
		ClientID:    db.ClientID,
		Type:        db.Type,
		Credentials: creds,
		WebhookURL:  db.WebhookURL.String,
		Status:      sts,
		CreatedAt:   db.CreatedAt.In(time.Local),
		UpdatedAt:   db.UpdatedAt.In(time.Local),
	}

	return bus, nil
}

func toBusIntegrations(dbs []integrationDB) ([]integrationbus.Integration, error) {
	bus := make([]integrationbus.Integration, len(dbs))

	for i, db := range dbs {
		var err error
		bus[i], err = toBusIntegration(db)
		if err != nil {
			return nil, err
		}
	}

	return bus, nil
}
