package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fitdesert/fitdesert/internal/model"
)

type PaymentStore struct {
	db *sql.DB
}

func NewPaymentStore(db *sql.DB) *PaymentStore {
	return &PaymentStore{db: db}
}

func scanPayment(scanner interface{ Scan(...any) error }) (*model.Payment, error) {
	var p model.Payment
	err := scanner.Scan(&p.ID, &p.MemberID, &p.GymID, &p.Amount, &p.PaymentType, &p.Status,
		&p.RazorpayOrderID, &p.RazorpayPaymentID, &p.RazorpaySignature,
		&p.InvoiceNumber, &p.GSTNumber, &p.CreatedAt, &p.PaymentDate)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

const paymentCols = `id, member_id, gym_id, amount, payment_type, status, razorpay_order_id,
	razorpay_payment_id, razorpay_signature, invoice_number, gst_number, created_at, payment_date`

type NewPayment struct {
	MemberID        string
	GymID           string
	Amount          float64
	PaymentType     model.PaymentType
	Status          model.PaymentStatus
	RazorpayOrderID string
}

func (s *PaymentStore) Create(ctx context.Context, n NewPayment) (*model.Payment, error) {
	id := newID("pay")
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO payments (id, member_id, gym_id, amount, payment_type, status, razorpay_order_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, n.MemberID, n.GymID, n.Amount, n.PaymentType, n.Status, n.RazorpayOrderID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert payment: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *PaymentStore) GetByID(ctx context.Context, id string) (*model.Payment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+paymentCols+` FROM payments WHERE id = ?`, id)
	p, err := scanPayment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return p, nil
}

// MarkVerified records the gateway's payment ID and signature and flips
// the payment to success with the verification time as payment date.
func (s *PaymentStore) MarkVerified(ctx context.Context, id, gatewayPaymentID, signature string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE payments SET razorpay_payment_id = ?, razorpay_signature = ?, status = ?, payment_date = ?
		 WHERE id = ?`,
		gatewayPaymentID, signature, model.PaymentSuccess, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("mark payment verified: %w", err)
	}
	return nil
}

func (s *PaymentStore) list(ctx context.Context, query string, args ...any) ([]*model.Payment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []*model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (s *PaymentStore) ListByMember(ctx context.Context, memberID string, limit int) ([]*model.Payment, error) {
	return s.list(ctx,
		`SELECT `+paymentCols+` FROM payments WHERE member_id = ?
		 ORDER BY created_at DESC LIMIT ?`, memberID, limit)
}

func (s *PaymentStore) ListByGym(ctx context.Context, gymID string, limit int) ([]*model.Payment, error) {
	return s.list(ctx,
		`SELECT `+paymentCols+` FROM payments WHERE gym_id = ?
		 ORDER BY created_at DESC LIMIT ?`, gymID, limit)
}

// ListSuccessfulByGym returns successful payments with the paying
// member's display name attached.
func (s *PaymentStore) ListSuccessfulByGym(ctx context.Context, gymID string, limit int) ([]*model.Payment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.id, p.member_id, p.gym_id, p.amount, p.payment_type, p.status,
		 p.razorpay_order_id, p.razorpay_payment_id, p.razorpay_signature,
		 p.invoice_number, p.gst_number, p.created_at, p.payment_date, COALESCE(u.name, 'Unknown')
		 FROM payments p
		 LEFT JOIN members m ON m.id = p.member_id
		 LEFT JOIN users u ON u.id = m.user_id
		 WHERE p.gym_id = ? AND p.status = ?
		 ORDER BY p.created_at DESC LIMIT ?`,
		gymID, model.PaymentSuccess, limit)
	if err != nil {
		return nil, fmt.Errorf("list successful payments: %w", err)
	}
	defer rows.Close()

	var payments []*model.Payment
	for rows.Next() {
		var p model.Payment
		err := rows.Scan(&p.ID, &p.MemberID, &p.GymID, &p.Amount, &p.PaymentType, &p.Status,
			&p.RazorpayOrderID, &p.RazorpayPaymentID, &p.RazorpaySignature,
			&p.InvoiceNumber, &p.GSTNumber, &p.CreatedAt, &p.PaymentDate, &p.MemberName)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, &p)
	}
	return payments, rows.Err()
}

func (s *PaymentStore) DeleteByMember(ctx context.Context, memberID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM payments WHERE member_id = ?`, memberID)
	if err != nil {
		return fmt.Errorf("delete payments by member: %w", err)
	}
	return nil
}

func (s *PaymentStore) DeleteByGym(ctx context.Context, gymID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM payments WHERE gym_id = ?`, gymID)
	if err != nil {
		return fmt.Errorf("delete payments by gym: %w", err)
	}
	return nil
}
