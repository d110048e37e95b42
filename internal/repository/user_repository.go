package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/conexao-adventure/booking-api/internal/model"
)

// ErrEmailExists is returned when registering an email that is
// already taken.
var ErrEmailExists = errors.New("email already exists")

// UserRepo persists user accounts, including the loyalty columns the
// points engine maintains.  Point updates always go through
// UpdatePointsTx under a row lock so concurrent awards serialize.
type UserRepo struct{ db *sql.DB }

// NewUserRepo returns a new UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = `id, email, password_hash, role, first_name, last_name, phone, cpf,
	birth_date, is_active, experience_level, adventurer_level, total_points,
	available_points, level_progress, created_at, updated_at`

func scanUser(row eventScanner) (*model.User, error) {
	var (
		u     model.User
		birth sql.NullTime
	)
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.FirstName, &u.LastName,
		&u.Phone, &u.CPF, &birth, &u.IsActive, &u.ExperienceLevel, &u.AdventurerLevel,
		&u.TotalPoints, &u.AvailablePoints, &u.LevelProgress, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if birth.Valid {
		v := birth.Time
		u.BirthDate = &v
	}
	return &u, nil
}

// Create inserts a user with an already-hashed password and returns
// its ID.  Email and CPF are normalized before insert.
func (r *UserRepo) Create(ctx context.Context, u *model.User) (uint64, error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	const q = `INSERT INTO users
		(email, password_hash, role, first_name, last_name, phone, cpf, birth_date,
		 experience_level, adventurer_level)
		VALUES (?,?,?,?,?,?,?,?,?,?)`
	res, err := r.db.ExecContext(ctx, q,
		u.Email, u.PasswordHash, u.Role, u.FirstName, u.LastName, u.Phone, u.CPF,
		nullableTime(u.BirthDate), u.ExperienceLevel, model.LevelTrailBeginner)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	u.ID = uint64(id)
	return u.ID, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? LIMIT 1`, email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ? LIMIT 1`, id))
}

// GetByCPF fetches a user by national ID (digits only).  Used by the
// CPF check and direct-registration flows.
func (r *UserRepo) GetByCPF(ctx context.Context, cpf string) (*model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE cpf = ? LIMIT 1`, cpf))
}

// GetByIDForUpdateTx loads a user inside tx with the row locked.  The
// loyalty engine serializes point awards on this lock so a cascade
// never works from a stale balance.
func (r *UserRepo) GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.User, error) {
	return scanUser(tx.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ? FOR UPDATE`, id))
}

// UpdatePointsTx persists the loyalty columns after a point change or
// redemption, inside the engine's transaction.
func (r *UserRepo) UpdatePointsTx(ctx context.Context, tx *sql.Tx, u *model.User) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE users SET total_points=?, available_points=?, adventurer_level=?, level_progress=?
		 WHERE id = ?`,
		u.TotalPoints, u.AvailablePoints, u.AdventurerLevel, u.LevelProgress, u.ID)
	return err
}
