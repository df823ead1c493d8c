package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fitdesert/fitdesert/internal/model"
)

type GymStore struct {
	db *sql.DB
}

func NewGymStore(db *sql.DB) *GymStore {
	return &GymStore{db: db}
}

func scanGym(scanner interface{ Scan(...any) error }) (*model.Gym, error) {
	var g model.Gym
	err := scanner.Scan(&g.ID, &g.Name, &g.Address, &g.City, &g.State, &g.OwnerID,
		&g.QRCode, &g.KYCVerified, &g.IsActive, &g.Phone, &g.Email,
		&g.RegistrationDate, &g.SubscriptionPlan, &g.SubscriptionExpiry, &g.StripeCustomerID)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

const gymCols = `id, name, address, city, state, owner_id, qr_code, kyc_verified, is_active,
	phone, email, registration_date, subscription_plan, subscription_expiry, stripe_customer_id`

type NewGym struct {
	Name               string
	Address            string
	City               string
	State              string
	OwnerID            string
	QRCode             string
	KYCVerified        bool
	Phone              string
	Email              string
	SubscriptionPlan   model.SubscriptionPlan
	SubscriptionExpiry time.Time
}

func (s *GymStore) Create(ctx context.Context, n NewGym) (*model.Gym, error) {
	id := newID("gym")
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO gyms (id, name, address, city, state, owner_id, qr_code, kyc_verified,
		 phone, email, subscription_plan, subscription_expiry)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, n.Name, n.Address, n.City, n.State, n.OwnerID, n.QRCode, n.KYCVerified,
		n.Phone, n.Email, n.SubscriptionPlan, n.SubscriptionExpiry,
	)
	if err != nil {
		return nil, fmt.Errorf("insert gym: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *GymStore) GetByID(ctx context.Context, id string) (*model.Gym, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+gymCols+` FROM gyms WHERE id = ?`, id)
	g, err := scanGym(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get gym: %w", err)
	}
	return g, nil
}

// GetByOwnerID returns the gym owned by the given manager, or nil.
// A manager owns at most one gym.
func (s *GymStore) GetByOwnerID(ctx context.Context, ownerID string) (*model.Gym, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+gymCols+` FROM gyms WHERE owner_id = ?`, ownerID)
	g, err := scanGym(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get gym by owner: %w", err)
	}
	return g, nil
}

func (s *GymStore) List(ctx context.Context) ([]*model.Gym, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+gymCols+` FROM gyms ORDER BY registration_date`)
	if err != nil {
		return nil, fmt.Errorf("list gyms: %w", err)
	}
	defer rows.Close()

	var gyms []*model.Gym
	for rows.Next() {
		g, err := scanGym(rows)
		if err != nil {
			return nil, fmt.Errorf("scan gym: %w", err)
		}
		gyms = append(gyms, g)
	}
	return gyms, rows.Err()
}

// UpdateDetails replaces the contact fields of a gym.
func (s *GymStore) UpdateDetails(ctx context.Context, id, name, address, city, state, phone, email string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE gyms SET name = ?, address = ?, city = ?, state = ?, phone = ?, email = ? WHERE id = ?`,
		name, address, city, state, phone, email, id,
	)
	if err != nil {
		return fmt.Errorf("update gym: %w", err)
	}
	return nil
}

func (s *GymStore) UpdateSubscription(ctx context.Context, id string, plan model.SubscriptionPlan, expiry time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE gyms SET subscription_plan = ?, subscription_expiry = ? WHERE id = ?`,
		plan, expiry, id,
	)
	if err != nil {
		return fmt.Errorf("update gym subscription: %w", err)
	}
	return nil
}

// SetQRCode stores the generated QR image. The payload encodes the gym
// ID, so the code can only be generated after the row exists.
func (s *GymStore) SetQRCode(ctx context.Context, id, qrCode string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE gyms SET qr_code = ? WHERE id = ?`, qrCode, id)
	if err != nil {
		return fmt.Errorf("set gym qr code: %w", err)
	}
	return nil
}

func (s *GymStore) SetActive(ctx context.Context, id string, active bool) error {
	_, err := s.db.ExecContext(ctx, `UPDATE gyms SET is_active = ? WHERE id = ?`, active, id)
	if err != nil {
		return fmt.Errorf("set gym active: %w", err)
	}
	return nil
}

func (s *GymStore) SetStripeCustomerID(ctx context.Context, id, customerID string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE gyms SET stripe_customer_id = ? WHERE id = ?`, customerID, id)
	if err != nil {
		return fmt.Errorf("set stripe customer: %w", err)
	}
	return nil
}

// GetByStripeCustomerID resolves a gym from a Stripe webhook event.
func (s *GymStore) GetByStripeCustomerID(ctx context.Context, customerID string) (*model.Gym, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+gymCols+` FROM gyms WHERE stripe_customer_id = ?`, customerID)
	g, err := scanGym(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get gym by stripe customer: %w", err)
	}
	return g, nil
}

func (s *GymStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM gyms WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete gym: %w", err)
	}
	return nil
}
