package accessbus

import "time"

// UserClient represents a delegated access grant of a client to a user. At
// most one grant exists per (user, client) pair.
type UserClient struct {
	ID          int64
	UserID      int64
	ClientID    int64
	Permissions string
	AssignedAt  time.Time
}

// NewUserClient contains information needed to create a new grant.
type NewUserClient struct {
	UserID      int64
	ClientID    int64
	Permissions string
}
