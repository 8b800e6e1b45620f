package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"

	"github.com/tanpawarit/Chative-Restaurant-Concierge/agent/validate"
)

func (s *Store) CreateCustomer(ctx context.Context, name, phone, email string) (*Customer, error) {
	c, err := newCustomer(name, phone, email)
	if err != nil {
		return nil, err
	}
	c.CreatedAt = s.timestamp()

	if _, err := s.db.NewInsert().Model(c).Exec(ctx); err != nil {
		return nil, fmt.Errorf("store: insert customer: %w", err)
	}
	return c, nil
}

func (s *Store) GetCustomer(ctx context.Context, id int64) (*Customer, error) {
	c := new(Customer)
	if err := s.db.NewSelect().Model(c).Where("c.id = ?", id).Scan(ctx); err != nil {
		return nil, notFound(err, "customer", id)
	}
	return c, nil
}

func (s *Store) CustomerByPhone(ctx context.Context, phone string) (*Customer, error) {
	return customerByPhone(ctx, s.db, validate.NormalizePhone(phone))
}

// GetOrCreateCustomer returns the customer registered under phone, creating
// it when absent. An existing customer's name is refreshed when it changed.
func (s *Store) GetOrCreateCustomer(ctx context.Context, name, phone, email string) (*Customer, error) {
	fresh, err := newCustomer(name, phone, email)
	if err != nil {
		return nil, err
	}

	existing, err := customerByPhone(ctx, s.db, fresh.Phone)
	switch {
	case err == nil:
		if existing.Name != fresh.Name {
			existing.Name = fresh.Name
			if _, err := s.db.NewUpdate().Model(existing).Column("name").WherePK().Exec(ctx); err != nil {
				return nil, fmt.Errorf("store: update customer name: %w", err)
			}
		}
		return existing, nil
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	fresh.CreatedAt = s.timestamp()
	if _, insertErr := s.db.NewInsert().Model(fresh).Exec(ctx); insertErr != nil {
		// A concurrent registration of the same phone wins the unique index.
		if existing, err := customerByPhone(ctx, s.db, fresh.Phone); err == nil {
			return existing, nil
		}
		return nil, fmt.Errorf("store: insert customer: %w", insertErr)
	}
	return fresh, nil
}

func customerByPhone(ctx context.Context, db bun.IDB, phone string) (*Customer, error) {
	c := new(Customer)
	if err := db.NewSelect().Model(c).Where("c.phone = ?", phone).Limit(1).Scan(ctx); err != nil {
		return nil, notFound(err, "customer with phone", phone)
	}
	return c, nil
}

func newCustomer(name, phone, email string) (*Customer, error) {
	name = validate.SanitizeString(name, 100)
	if name == "" {
		return nil, fmt.Errorf("%w: customer name is required", ErrInvalidArgument)
	}
	if !validate.IsValidPhone(phone) {
		return nil, fmt.Errorf("%w: invalid phone number %q", ErrInvalidArgument, phone)
	}

	c := &Customer{Name: name, Phone: validate.NormalizePhone(phone)}
	if email = strings.TrimSpace(email); email != "" {
		if !validate.IsValidEmail(email) {
			return nil, fmt.Errorf("%w: invalid email %q", ErrInvalidArgument, email)
		}
		c.Email = &email
	}
	return c, nil
}
