package model

import "time"

// Difficulty levels accepted for an adventure.  Stored as plain
// strings in the `difficulty` column.
const (
	DifficultyBeginner     = "beginner"
	DifficultyModerate     = "moderate"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
	DifficultyExpert       = "expert"
)

// Adventure represents a guided outdoor experience offered by the
// company (rappelling, trekking, canyoning and so on).  An adventure
// owns zero or more pricing tiers and zero or more scheduled events.
// All prices are stored as integer cents to avoid floating point
// rounding; see PricingTier and AdventureEvent for the price override
// chain.  This struct corresponds to a row in the `adventures` table.
//
// Fields:
//  ID              – primary key identifier.
//  Title           – display title of the adventure.
//  Slug            – unique URL slug derived from the title.
//  ShortDescription– one-line text shown in listings.
//  Description     – full description shown on the detail page.
//  Difficulty      – one of the Difficulty* constants.
//  DurationHours   – expected duration in hours (1..720).
//  MinParticipants – minimum group size; must be <= MaxParticipants.
//  MaxParticipants – maximum group size for the adventure itself.
//  Location        – human readable location string.
//  MeetingPoint    – where participants gather.
//  BasePriceCents  – fallback price when no pricing tier applies.
//  IsFeatured      – highlighted on the home listing.
//  IsActive        – inactive adventures accept no registrations.
//  ShowInListing   – hidden adventures are reachable only by slug.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Adventure struct {
	ID               uint64    // adventures.id
	Title            string    // adventures.title
	Slug             string    // adventures.slug
	ShortDescription string    // adventures.short_description
	Description      string    // adventures.description
	Difficulty       string    // adventures.difficulty
	DurationHours    uint32    // adventures.duration_hours
	MinParticipants  uint32    // adventures.min_participants
	MaxParticipants  uint32    // adventures.max_participants
	Location         string    // adventures.location
	MeetingPoint     string    // adventures.meeting_point
	BasePriceCents   int64     // adventures.base_price_cents
	IsFeatured       bool      // adventures.is_featured
	IsActive         bool      // adventures.is_active
	ShowInListing    bool      // adventures.show_in_listing
	CreatedAt        time.Time // adventures.created_at
	UpdatedAt        time.Time // adventures.updated_at
}

// PricingTier is a time-boxed override of an adventure's base price,
// used for early-bird promotions and last-minute pricing.  Tiers for
// the same adventure may overlap in time; resolution order is defined
// by the pricing service, not by this struct.
//
// Fields:
//  ID          – primary key identifier.
//  AdventureID – owning adventure.
//  Name        – label such as "Early bird" or "Last minute".
//  PriceCents  – price while the tier applies.
//  StartDate   – instant the tier becomes applicable (inclusive).
//  EndDate     – instant the tier stops applying (inclusive).
//  IsActive    – inactive tiers never match.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type PricingTier struct {
	ID          uint64    // pricing_tiers.id
	AdventureID uint64    // pricing_tiers.adventure_id
	Name        string    // pricing_tiers.name
	PriceCents  int64     // pricing_tiers.price_cents
	StartDate   time.Time // pricing_tiers.start_date
	EndDate     time.Time // pricing_tiers.end_date
	IsActive    bool      // pricing_tiers.is_active
	CreatedAt   time.Time // pricing_tiers.created_at
	UpdatedAt   time.Time // pricing_tiers.updated_at
}
