package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fitdesert/fitdesert/internal/model"
)

type MemberStore struct {
	db *sql.DB
}

func NewMemberStore(db *sql.DB) *MemberStore {
	return &MemberStore{db: db}
}

func scanMember(scanner interface{ Scan(...any) error }) (*model.Member, error) {
	var m model.Member
	err := scanner.Scan(&m.ID, &m.UserID, &m.GymID, &m.Role, &m.Photo, &m.ContactInfo,
		&m.JoiningDate, &m.MembershipPlan, &m.PlanDurationMonths, &m.MembershipExpiry,
		&m.Goal, &m.AssignedTrainerID, &m.Status, &m.Height, &m.Weight, &m.Age)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func scanMemberWithUser(scanner interface{ Scan(...any) error }) (*model.Member, error) {
	var m model.Member
	err := scanner.Scan(&m.ID, &m.UserID, &m.GymID, &m.Role, &m.Photo, &m.ContactInfo,
		&m.JoiningDate, &m.MembershipPlan, &m.PlanDurationMonths, &m.MembershipExpiry,
		&m.Goal, &m.AssignedTrainerID, &m.Status, &m.Height, &m.Weight, &m.Age,
		&m.UserName, &m.UserEmail)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

const memberCols = `id, user_id, gym_id, role, photo, contact_info, joining_date,
	membership_plan, plan_duration_months, membership_expiry, goal, assigned_trainer_id,
	status, height, weight, age`

const memberColsPrefixed = `m.id, m.user_id, m.gym_id, m.role, m.photo, m.contact_info, m.joining_date,
	m.membership_plan, m.plan_duration_months, m.membership_expiry, m.goal, m.assigned_trainer_id,
	m.status, m.height, m.weight, m.age`

type NewMember struct {
	UserID             string
	GymID              string
	Role               model.Role // trainer or trainee
	Photo              *string
	ContactInfo        string
	MembershipPlan     *string
	PlanDurationMonths int
	MembershipExpiry   time.Time
	Goal               *string
	AssignedTrainerID  *string
	Height             *float64
	Weight             *float64
	Age                *int
}

func (s *MemberStore) Create(ctx context.Context, n NewMember) (*model.Member, error) {
	id := newID("member")
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO members (id, user_id, gym_id, role, photo, contact_info, membership_plan,
		 plan_duration_months, membership_expiry, goal, assigned_trainer_id, height, weight, age)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, n.UserID, n.GymID, n.Role, n.Photo, n.ContactInfo, n.MembershipPlan,
		n.PlanDurationMonths, n.MembershipExpiry, n.Goal, n.AssignedTrainerID,
		n.Height, n.Weight, n.Age,
	)
	if err != nil {
		return nil, fmt.Errorf("insert member: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *MemberStore) GetByID(ctx context.Context, id string) (*model.Member, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+memberCols+` FROM members WHERE id = ?`, id)
	m, err := scanMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

// GetByUserID returns the user's membership. The mobile app keeps one
// membership per trainee; when several exist the earliest joined wins.
func (s *MemberStore) GetByUserID(ctx context.Context, userID string) (*model.Member, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+memberCols+` FROM members WHERE user_id = ? ORDER BY joining_date LIMIT 1`, userID)
	m, err := scanMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get member by user: %w", err)
	}
	return m, nil
}

func (s *MemberStore) GetByUserAndGym(ctx context.Context, userID, gymID string) (*model.Member, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+memberCols+` FROM members WHERE user_id = ? AND gym_id = ?`, userID, gymID)
	m, err := scanMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get member by user and gym: %w", err)
	}
	return m, nil
}

func (s *MemberStore) listWithUser(ctx context.Context, query string, args ...any) ([]*model.Member, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []*model.Member
	for rows.Next() {
		m, err := scanMemberWithUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// ListByGym returns all members of a gym with the owning user's name and
// email attached.
func (s *MemberStore) ListByGym(ctx context.Context, gymID string) ([]*model.Member, error) {
	return s.listWithUser(ctx,
		`SELECT `+memberColsPrefixed+`, u.name, u.email
		 FROM members m JOIN users u ON u.id = m.user_id
		 WHERE m.gym_id = ? ORDER BY m.joining_date`, gymID)
}

// ListTrainersByGym returns the gym's members that hold the trainer role.
func (s *MemberStore) ListTrainersByGym(ctx context.Context, gymID string) ([]*model.Member, error) {
	return s.listWithUser(ctx,
		`SELECT `+memberColsPrefixed+`, u.name, u.email
		 FROM members m JOIN users u ON u.id = m.user_id
		 WHERE m.gym_id = ? AND m.role = ? ORDER BY m.joining_date`, gymID, model.RoleTrainer)
}

// MemberUpdate holds the manager-editable fields of a membership.
type MemberUpdate struct {
	MembershipPlan     *string
	PlanDurationMonths int
	Goal               *string
	AssignedTrainerID  *string
	Height             *float64
	Weight             *float64
	Age                *int
}

func (s *MemberStore) Update(ctx context.Context, id string, u MemberUpdate) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE members SET membership_plan = ?, plan_duration_months = ?, goal = ?,
		 assigned_trainer_id = ?, height = ?, weight = ?, age = ? WHERE id = ?`,
		u.MembershipPlan, u.PlanDurationMonths, u.Goal, u.AssignedTrainerID,
		u.Height, u.Weight, u.Age, id,
	)
	if err != nil {
		return fmt.Errorf("update member: %w", err)
	}
	return nil
}

func (s *MemberStore) AssignTrainer(ctx context.Context, id, trainerID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE members SET assigned_trainer_id = ? WHERE id = ?`, trainerID, id)
	if err != nil {
		return fmt.Errorf("assign trainer: %w", err)
	}
	return nil
}

// ExtendExpiry pushes the membership expiry forward by the given number
// of days and returns the new expiry.
func (s *MemberStore) ExtendExpiry(ctx context.Context, id string, days int) (time.Time, error) {
	m, err := s.GetByID(ctx, id)
	if err != nil {
		return time.Time{}, err
	}
	if m == nil {
		return time.Time{}, fmt.Errorf("extend expiry: member %s not found", id)
	}
	newExpiry := m.MembershipExpiry.Add(time.Duration(days) * 24 * time.Hour)
	_, err = s.db.ExecContext(ctx,
		`UPDATE members SET membership_expiry = ? WHERE id = ?`, newExpiry, id)
	if err != nil {
		return time.Time{}, fmt.Errorf("extend expiry: %w", err)
	}
	return newExpiry, nil
}

func (s *MemberStore) CountByGym(ctx context.Context, gymID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM members WHERE gym_id = ?`, gymID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return count, nil
}

func (s *MemberStore) CountActiveByGym(ctx context.Context, gymID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM members WHERE gym_id = ? AND status = ?`,
		gymID, model.StatusActive).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count active members: %w", err)
	}
	return count, nil
}

// CountByUserID reports how many memberships reference the user, across
// all gyms. Used to decide whether deleting a membership orphans the user.
func (s *MemberStore) CountByUserID(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM members WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count memberships by user: %w", err)
	}
	return count, nil
}

func (s *MemberStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM members WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	return nil
}

func (s *MemberStore) DeleteByGym(ctx context.Context, gymID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM members WHERE gym_id = ?`, gymID)
	if err != nil {
		return fmt.Errorf("delete members by gym: %w", err)
	}
	return nil
}
