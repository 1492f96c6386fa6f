package userbus_test

import (
	"context"
	"errors"
	"net/mail"
	"testing"

	"github.com/lyracrm/lyra/business/domain/userbus"
	"github.com/lyracrm/lyra/business/sdk/order"
	"github.com/lyracrm/lyra/business/sdk/page"
	"github.com/lyracrm/lyra/business/sdk/sqldb"
	"github.com/lyracrm/lyra/business/types/name"
	"github.com/lyracrm/lyra/business/types/password"
	"github.com/lyracrm/lyra/business/types/role"
)

type userStore struct {
	users  map[int64]userbus.User
	nextID int64
}

func (s *userStore) NewWithTx(tx sqldb.CommitRollbacker) (userbus.Storer, error) {
	return s, nil
}

func (s *userStore) Create(ctx context.Context, usr userbus.User) (userbus.User, error) {
	s.nextID++
	usr.ID = s.nextID
	s.users[usr.ID] = usr
	return usr, nil
}

func (s *userStore) Update(ctx context.Context, usr userbus.User) error {
	s.users[usr.ID] = usr
	return nil
}

func (s *userStore) Delete(ctx context.Context, usr userbus.User) error {
	delete(s.users, usr.ID)
	return nil
}

func (s *userStore) Query(ctx context.Context, filter userbus.QueryFilter, orderBy order.By, page page.Page) ([]userbus.User, error) {
	return nil, nil
}

func (s *userStore) Count(ctx context.Context, filter userbus.QueryFilter) (int, error) {
	return len(s.users), nil
}

func (s *userStore) QueryByID(ctx context.Context, userID int64) (userbus.User, error) {
	usr, ok := s.users[userID]
	if !ok {
		return userbus.User{}, userbus.ErrNotFound
	}
	return usr, nil
}

func (s *userStore) QueryByEmail(ctx context.Context, email mail.Address) (userbus.User, error) {
	for _, usr := range s.users {
		if usr.Email.Address == email.Address {
			return usr, nil
		}
	}
	return userbus.User{}, userbus.ErrNotFound
}

// =============================================================================

func Test_Create(t *testing.T) {
	ctx := context.Background()
	bus := userbus.NewCore(&userStore{users: map[int64]userbus.User{}})

	nu := userbus.NewUser{
		Name:     name.MustParse("Ada Lovelace"),
		Email:    mail.Address{Address: "ada@example.com"},
		Role:     role.Operator,
		Password: password.MustParse("gophers1"),
	}

	usr, err := bus.Create(ctx, nu)
	if err != nil {
		t.Fatalf("create: %s", err)
	}

	if usr.ID == 0 {
		t.Error("id: expected to be assigned")
	}
	if len(usr.PasswordHash) == 0 {
		t.Error("passwordHash: expected to be set")
	}
	if string(usr.PasswordHash) == "gophers1" {
		t.Error("passwordHash: expected the password to be hashed")
	}

	if _, err := bus.Create(ctx, nu); !errors.Is(err, userbus.ErrUniqueEmail) {
		t.Fatalf("duplicate email: got %v, exp %v", err, userbus.ErrUniqueEmail)
	}
}

func Test_Authenticate(t *testing.T) {
	ctx := context.Background()
	bus := userbus.NewCore(&userStore{users: map[int64]userbus.User{}})

	email := mail.Address{Address: "ada@example.com"}

	if _, err := bus.Create(ctx, userbus.NewUser{
		Name:     name.MustParse("Ada Lovelace"),
		Email:    email,
		Role:     role.Operator,
		Password: password.MustParse("gophers1"),
	}); err != nil {
		t.Fatalf("create: %s", err)
	}

	usr, err := bus.Authenticate(ctx, email, password.MustParse("gophers1"))
	if err != nil {
		t.Fatalf("authenticate: %s", err)
	}
	if usr.Email.Address != email.Address {
		t.Errorf("email: got %q, exp %q", usr.Email.Address, email.Address)
	}

	if _, err := bus.Authenticate(ctx, email, password.MustParse("wrongpass")); !errors.Is(err, userbus.ErrAuthenticationFailure) {
		t.Fatalf("wrong password: got %v, exp %v", err, userbus.ErrAuthenticationFailure)
	}

	if _, err := bus.Authenticate(ctx, mail.Address{Address: "nobody@example.com"}, password.MustParse("gophers1")); !errors.Is(err, userbus.ErrNotFound) {
		t.Fatalf("unknown email: got %v, exp %v", err, userbus.ErrNotFound)
	}
}

func Test_Update_Password(t *testing.T) {
	ctx := context.Background()
	bus := userbus.NewCore(&userStore{users: map[int64]userbus.User{}})

	email := mail.Address{Address: "ada@example.com"}

	usr, err := bus.Create(ctx, userbus.NewUser{
		Name:     name.MustParse("Ada Lovelace"),
		Email:    email,
		Role:     role.Viewer,
		Password: password.MustParse("gophers1"),
	})
	if err != nil {
		t.Fatalf("create: %s", err)
	}

	newPass := password.MustParse("gophers2")
	if _, err := bus.Update(ctx, usr, userbus.UpdateUser{Password: &newPass}); err != nil {
		t.Fatalf("update: %s", err)
	}

	if _, err := bus.Authenticate(ctx, email, newPass); err != nil {
		t.Fatalf("authenticate with new password: %s", err)
	}

	if _, err := bus.Authenticate(ctx, email, password.MustParse("gophers1")); !errors.Is(err, userbus.ErrAuthenticationFailure) {
		t.Fatalf("old password: got %v, exp %v", err, userbus.ErrAuthenticationFailure)
	}
}
