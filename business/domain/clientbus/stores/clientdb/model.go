package clientdb

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lyracrm/lyra/business/domain/clientbus"
	"github.com/lyracrm/lyra/business/types/name"
	"github.com/lyracrm/lyra/business/types/status"
)

type clientDB struct {
	ID        int64          `db:"client_id"`
	Name      string         `db:"name"`
	Industry  sql.NullString `db:"industry"`
	Status    string         `db:"status"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func toDBClient(bus clientbus.Client) clientDB {
	return clientDB{
		ID:        bus.ID,
		Name:      bus.Name.String(),
		Industry:  sql.NullString{String: bus.Industry, Valid: bus.Industry != ""},
		Status:    bus.Status.String(),
		CreatedAt: bus.CreatedAt.UTC(),
		UpdatedAt: bus.UpdatedAt.UTC(),
	}
}

func toBusClient(db clientDB) (clientbus.Client, error) {
	nme, err := name.Parse(db.Name)
	if err != nil {
		return clientbus.Client{}, fmt.Errorf("parse name: %w", err)
	}

	sts, err := status.Parse(db.Status)
	if err != nil {
		return clientbus.Client{}, fmt.Errorf("parse status: %w", err)
	}

	bus := clientbus.Client{
		ID:        db.ID,
		Name:      nme,
		Industry:  db.Industry.String,
		Status:    sts,
		CreatedAt: db.CreatedAt.In(time.Local),
		UpdatedAt: db.UpdatedAt.In(time.Local),
	}

	return bus, nil
}

func toBusClients(dbs []clientDB) ([]clientbus.Client, error) {
	bus := make([]clientbus.Client, len(dbs))

	for i, db := range dbs {
		var err error
		bus[i], err = toBusClient(db)
		if err != nil {
			return nil, err
		}
	}

	return bus, nil
}
