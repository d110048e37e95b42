package model

import "time"

// Pre-registration status values.  A converted record points at the
// user account that was created or matched for it.
const (
	PreRegPending   = "pending"
	PreRegApproved  = "approved"
	PreRegRejected  = "rejected"
	PreRegConverted = "converted"
)

// PreRegistration is a provisional signup for a first-time customer,
// collected before any user account exists.  It is keyed by
// (cpf, event): the same national ID may pre-register once per event.
// On conversion a user account is created, or matched by CPF when one
// already exists, and CreatedUserID links to it.
//
// Fields:
//  ID                    – primary key identifier.
//  EventID               – event the customer wants to join.
//  FirstName, LastName   – personal names.
//  Email, Phone          – contact details.
//  CPF                   – national ID, digits only.
//  BirthDate             – date of birth.
//  EmergencyContactName  – who to call in an emergency.
//  EmergencyContactPhone – their phone number.
//  Address, City, State, ZipCode – postal address.
//  MedicalConditions, Medications, Allergies – optional health info.
//  Status                – one of the PreReg* constants.
//  UserNotes             – free text from the customer.
//  AdminNotes            – internal review notes.
//  CreatedUserID         – user created/matched on conversion.
//  CreatedAt             – creation timestamp.
//  UpdatedAt             – last update timestamp.
//  ApprovedAt            – when staff approved the record.
type PreRegistration struct {
	ID                    uint64     // pre_registrations.id
	EventID               uint64     // pre_registrations.event_id
	FirstName             string     // pre_registrations.first_name
	LastName              string     // pre_registrations.last_name
	Email                 string     // pre_registrations.email
	Phone                 string     // pre_registrations.phone
	CPF                   string     // pre_registrations.cpf
	BirthDate             time.Time  // pre_registrations.birth_date
	EmergencyContactName  string     // pre_registrations.emergency_contact_name
	EmergencyContactPhone string     // pre_registrations.emergency_contact_phone
	Address               string     // pre_registrations.address
	City                  string     // pre_registrations.city
	State                 string     // pre_registrations.state
	ZipCode               string     // pre_registrations.zip_code
	MedicalConditions     string     // pre_registrations.medical_conditions
	Medications           string     // pre_registrations.medications
	Allergies             string     // pre_registrations.allergies
	Status                string     // pre_registrations.status
	UserNotes             string     // pre_registrations.user_notes
	AdminNotes            string     // pre_registrations.admin_notes
	CreatedUserID         *uint64    // pre_registrations.created_user_id (nullable)
	CreatedAt             time.Time  // pre_registrations.created_at
	UpdatedAt             time.Time  // pre_registrations.updated_at
	ApprovedAt            *time.Time // pre_registrations.approved_at (nullable)
}

// FullName joins the first and last name for display and messaging.
func (p *PreRegistration) FullName() string {
	if p.FirstName == "" {
		return p.LastName
	}
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}
