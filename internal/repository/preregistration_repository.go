package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/conexao-adventure/booking-api/internal/model"
)

// PreRegistrationRepo persists provisional signups from first-time
// customers.  The (cpf, event) unique key keeps one pre-registration
// per national ID per event.
type PreRegistrationRepo struct{ db *sql.DB }

// NewPreRegistrationRepo returns a new PreRegistrationRepo bound to
// the given database.
func NewPreRegistrationRepo(db *sql.DB) *PreRegistrationRepo { return &PreRegistrationRepo{db: db} }

const preRegColumns = `id, event_id, first_name, last_name, email, phone, cpf, birth_date,
	emergency_contact_name, emergency_contact_phone, address, city, state, zip_code,
	medical_conditions, medications, allergies, status, user_notes, admin_notes,
	created_user_id, created_at, updated_at, approved_at`

func scanPreRegistration(row eventScanner) (*model.PreRegistration, error) {
	var (
		p          model.PreRegistration
		userID     sql.NullInt64
		approvedAt sql.NullTime
	)
	err := row.Scan(
		&p.ID, &p.EventID, &p.FirstName, &p.LastName, &p.Email, &p.Phone, &p.CPF, &p.BirthDate,
		&p.EmergencyContactName, &p.EmergencyContactPhone, &p.Address, &p.City, &p.State, &p.ZipCode,
		&p.MedicalConditions, &p.Medications, &p.Allergies, &p.Status, &p.UserNotes, &p.AdminNotes,
		&userID, &p.CreatedAt, &p.UpdatedAt, &approvedAt,
	)
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		v := uint64(userID.Int64)
		p.CreatedUserID = &v
	}
	if approvedAt.Valid {
		v := approvedAt.Time
		p.ApprovedAt = &v
	}
	return &p, nil
}

// Create inserts a pre-registration.  A duplicate (cpf, event) pair
// surfaces as ErrDuplicatePreRegistration.
func (r *PreRegistrationRepo) Create(ctx context.Context, p *model.PreRegistration) error {
	const q = `INSERT INTO pre_registrations
		(event_id, first_name, last_name, email, phone, cpf, birth_date,
		 emergency_contact_name, emergency_contact_phone, address, city, state, zip_code,
		 medical_conditions, medications, allergies, status, user_notes)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`
	res, err := r.db.ExecContext(ctx, q,
		p.EventID, p.FirstName, p.LastName, p.Email, p.Phone, p.CPF,
		p.BirthDate.Format("2006-01-02"),
		p.EmergencyContactName, p.EmergencyContactPhone, p.Address, p.City, p.State, p.ZipCode,
		p.MedicalConditions, p.Medications, p.Allergies, p.Status, p.UserNotes)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicatePreRegistration
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// GetByID fetches a single pre-registration.  sql.ErrNoRows when absent.
func (r *PreRegistrationRepo) GetByID(ctx context.Context, id uint64) (*model.PreRegistration, error) {
	return scanPreRegistration(r.db.QueryRowContext(ctx,
		`SELECT `+preRegColumns+` FROM pre_registrations WHERE id = ?`, id))
}

// ListByStatus returns pre-registrations in a given status for staff
// review, oldest first so the queue drains in arrival order.
func (r *PreRegistrationRepo) ListByStatus(ctx context.Context, status string) ([]model.PreRegistration, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+preRegColumns+` FROM pre_registrations WHERE status = ? ORDER BY created_at`,
		status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.PreRegistration, 0)
	for rows.Next() {
		p, err := scanPreRegistration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// UpdateStatus moves a pre-registration through its review lifecycle.
// approvedAt is only written when non-nil.
func (r *PreRegistrationRepo) UpdateStatus(ctx context.Context, id uint64, status, adminNotes string, approvedAt *time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE pre_registrations SET status = ?, admin_notes = ?, approved_at = COALESCE(?, approved_at)
		 WHERE id = ?`,
		status, adminNotes, nullableTime(approvedAt), id)
	return err
}

// Convert finalizes an approved review in one statement: the record
// flips straight to converted, pointing at the user account created or
// matched for it, with the review notes and approval time.  A single
// write means a crash can never leave the record half converted.
func (r *PreRegistrationRepo) Convert(ctx context.Context, id, userID uint64, adminNotes string, approvedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE pre_registrations
		 SET status = ?, created_user_id = ?, admin_notes = ?, approved_at = ?
		 WHERE id = ?`,
		model.PreRegConverted, userID, adminNotes, approvedAt, id)
	return err
}
