package model

import "time"

// Roles stored in the users.role column and carried in JWT claims.
const (
	RoleCustomer = "CUSTOMER"
	RoleStaff    = "STAFF"
)

// Adventurer levels derived from lifetime points.  The derivation is
// a pure function of TotalPoints; see the loyalty service.
const (
	LevelTrailBeginner    = "trail_beginner"
	LevelJungleExplorer   = "jungle_explorer"
	LevelHighlandsWarrior = "highlands_warrior"
	LevelMaster           = "master"
)

// User is a platform account, either a customer ("adventurer") or a
// staff member.  TotalPoints is the lifetime point total and drives
// the adventurer level; AvailablePoints is the spendable balance and
// only ever decreases through reward redemption, so the two diverge
// once rewards are redeemed.  AdventurerLevel and LevelProgress are
// derived in full from TotalPoints on every point change.
//
// Fields:
//  ID              – primary key identifier.
//  Email           – unique email address, login identifier.
//  PasswordHash    – bcrypt hash of the password.
//  Role            – RoleCustomer or RoleStaff.
//  FirstName, LastName – personal names.
//  Phone           – contact phone in international digits.
//  CPF             – national ID, digits only; used to match
//                    pre-registrations and direct registrations.
//  BirthDate       – optional date of birth.
//  IsActive        – whether the account is active.
//  ExperienceLevel – self-declared outdoor experience.
//  AdventurerLevel – one of the Level* constants, derived.
//  TotalPoints     – lifetime points earned.
//  AvailablePoints – spendable point balance.
//  LevelProgress   – percentage progress to the next level, 0..100.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type User struct {
	ID              uint64     // users.id
	Email           string     // users.email
	PasswordHash    string     // users.password_hash
	Role            string     // users.role
	FirstName       string     // users.first_name
	LastName        string     // users.last_name
	Phone           string     // users.phone
	CPF             string     // users.cpf
	BirthDate       *time.Time // users.birth_date (nullable)
	IsActive        bool       // users.is_active
	ExperienceLevel string     // users.experience_level
	AdventurerLevel string     // users.adventurer_level
	TotalPoints     int64      // users.total_points
	AvailablePoints int64      // users.available_points
	LevelProgress   float64    // users.level_progress
	CreatedAt       time.Time  // users.created_at
	UpdatedAt       time.Time  // users.updated_at
}

// FullName joins the first and last name for display and messaging.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
