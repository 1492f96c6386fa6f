package assistantdb

import (
	"fmt"
	"time"

	"github.com/lyracrm/lyra/business/domain/assistantbus"
	"github.com/lyracrm/lyra/business/types/name"
	"github.com/lyracrm/lyra/business/types/status"
)

type assistantDB struct {
	ID                int64     `db:"assistant_id"`
	ClientID          int64     `db:"client_id"`
	Name              string    `db:"name"`
	OpenAIAssistantID string    `db:"openai_assistant_id"`
	Model             string    `db:"model"`
	Temperature       float64   `db:"temperature"`
	Instructions      string    `db:"instructions"`
	Status            string    `db:"status"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

func toDBAssistant(bus assistantbus.Assistant) assistantDB {
	return assistantDB{
		ID:                bus.ID,
		ClientID:          bus.ClientID,
		Name:              bus.Name.String(),
		OpenAIAssistantID: bus.OpenAIAssistantID,
		Model:             bus.Model,
		Temperature:       bus.Temperature,
		Instructions:      bus.Instructions,
		Status:            bus.Status.String(),
		CreatedAt:         bus.CreatedAt.UTC(),
		UpdatedAt:         bus.UpdatedAt.UTC(),
	}
}

func toBusAssistant(db assistantDB) (assistantbus.Assistant, error) {
	nme, err := name.Parse(db.Name)
	if err != nil {
		return assistantbus.Assistant{}, fmt.Errorf("parse name: %w", err)
	}

	sts, err := status.Parse(db.Status)
	if err != nil {
		return assistantbus.Assistant{}, fmt.Errorf("parse status: %w", err)
	}

	bus := assistantbus.Assistant{
		ID:                db.ID,
		ClientID:          db.ClientID,
		Name:              nme,
		OpenAIAssistantID: db.OpenAIAssistantID,
		Model:             db.Model,
		Temperature:       db.Temperature,
		Instructions:      db.Instructions,
		Status:            sts,
		CreatedAt:         db.CreatedAt.In(time.Local),
		UpdatedAt:         db.UpdatedAt.In(time.Local),
	}

	return bus, nil
}

func toBusAssistants(dbs []assistantDB) ([]assistantbus.Assistant, error) {
	bus := make([]assistantbus.Assistant, len(dbs))

	for i, db := range dbs {
		var err error
		bus[i], err = toBusAssistant(db)
		if err != nil {
			return nil, err
		}
	}

	return bus, nil
}
