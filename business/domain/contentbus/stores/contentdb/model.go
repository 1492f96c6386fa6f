package contentdb

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lyracrm/lyra/business/domain/contentbus"
	"github.com/lyracrm/lyra/business/types/contentstatus"
)

type contentDB struct {
	ID          int64        `db:"content_id"`
	ClientID    int64        `db:"client_id"`
	AssistantID int64        `db:"assistant_id"`
	Type        string       `db:"content_type"`
	Parameters  []byte       `db:"parameters"`
	Status      string       `db:"status"`
	RequestedAt time.Time    `db:"requested_at"`
	StartedAt   sql.NullTime `db:"started_at"`
	CompletedAt sql.NullTime `db:"completed_at"`
}

func toDBContent(bus contentbus.Content) (contentDB, error) {
	params, err := json.Marshal(bus.Parameters)
	if err != nil {
		return contentDB{}, fmt.Errorf("marshal parameters: %w", err)
	}

	db := contentDB{
		ID:          bus.ID,
		ClientID:    bus.ClientID,
		AssistantID: bus.AssistantID,
		Type:        bus.Type,
		Parameters:  params,
		Status:      bus.Status.String(),
		RequestedAt: bus.RequestedAt.UTC(),
	}

	if bus.StartedAt != nil {
		db.StartedAt = sql.NullTime{Time: bus.StartedAt.UTC(), Valid: true}
	}

	if bus.CompletedAt != nil {
		db.CompletedAt = sql.NullTime{Time: bus.CompletedAt.UTC(), Valid: true}
	}

	return db, nil
}

func toBusContent(db contentDB) (contentbus.Content, error) {
	sts, err := contentstatus.Parse(db.Status)
	if err != nil {
		return contentbus.Content{}, fmt.Errorf("parse status: %w", err)
	}

	var params map[string]any
	if len(db.Parameters) > 0 {
		if err := json.Unmarshal(db.Parameters, &params); err != nil {
			return contentbus.Content{}, fmt.Errorf("unmarshal parameters: %w", err)
		}
	}

	bus := contentbus.Content{
		ID:          db.ID,
		ClientID:    db.ClientID,
		AssistantID: db.AssistantID,
		Type:        db.Type,
		Parameters:  params,
		Status:      sts,
		RequestedAt: db.RequestedAt.In(time.Local),
	}

	if db.StartedAt.Valid {
		t := db.StartedAt.Time.In(time.Local)
		bus.StartedAt = &t
	}

	if db.CompletedAt.Valid {
		t := db.CompletedAt.Time.In(time.Local)
		bus.CompletedAt = &t
	}

	return bus, nil
}

func toBusContents(dbs []contentDB) ([]contentbus.Content, error) {
	bus := make([]contentbus.Content, len(dbs))

	for i, db := range dbs {
		var err error
		bus[i], err = toBusContent(db)
		if err != nil {
			return nil, err
		}
	}

	return bus, nil
}
