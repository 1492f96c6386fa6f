package accessdb

import (
	"time"

	"github.com/lyracrm/lyra/business/domain/accessbus"
)

type userClientDB struct {
	ID          int64     `db:"user_client_id"`
	UserID      int64     `db:"user_id"`
	ClientID    int64     `db:"client_id"`
	Permissions string    `db:"permissions"`
	AssignedAt  time.Time `db:"assigned_at"`
}

func toDBUserClient(bus accessbus.UserClient) userClientDB {
	return userClientDB{
		ID:          bus.ID,
		UserID:      bus.UserID,
		ClientID:    bus.ClientID,
		Permissions: bus.Permissions,
		AssignedAt:  bus.AssignedAt.UTC(),
	}
}

func toBusUserClient(db userClientDB) accessbus.UserClient {
	return accessbus.UserClient{
		ID:          db.ID,
		UserID:      db.UserID,
		ClientID:    db.ClientID,
		Permissions: db.Permissions,
		AssignedAt:  db.AssignedAt.In(time.Local),
	}
}

func toBusUserClients(dbs []userClientDB) []accessbus.UserClient {
	bus := make([]accessbus.UserClient, len(dbs))

	for i, db := range dbs {
		bus[i] = toBusUserClient(db)
	}

	return bus
}
