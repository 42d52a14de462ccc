// Package store is the persistence collaborator: client and slot records per account,
// durable conversation sessions, and business information.
package store

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/sudo-god/AI-Receptionist/pkg/turns"
)

// BookingType selects one of the slot lists of an account.
type BookingType string

const (
	BookingJobs      BookingType = "jobs"
	BookingInquiries BookingType = "inquiries"
)

// ParseBookingType accepts "jobs"/"job" and "inquiries"/"inquiry".
func ParseBookingType(s string) (BookingType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "jobs", "job":
		return BookingJobs, nil
	case "inquiries", "inquiry":
		return BookingInquiries, nil
	default:
		return "", errors.Errorf("invalid booking type %q, please use jobs or inquiries", s)
	}
}

// Singular is used in user-facing messages ("job", "inquiry").
func (b BookingType) Singular() string {
	if b == BookingInquiries {
		return "inquiry"
	}
	return "job"
}

type Client struct {
	Name  string `bson:"name" yaml:"name" json:"name"`
	Email string `bson:"email" yaml:"email" json:"email"`
	Phone string `bson:"phone" yaml:"phone" json:"phone"`
}

// Slot is a schedulable time unit. StartTime uses the "2006-01-02 15:04" layout.
type Slot struct {
	StartTime   string `bson:"start_time" yaml:"start_time" json:"start_time"`
	IsBooked    bool   `bson:"is_booked" yaml:"is_booked" json:"is_booked"`
	ClientEmail string `bson:"client_email,omitempty" yaml:"client_email,omitempty" json:"client_email,omitempty"`
	Title       string `bson:"title,omitempty" yaml:"title,omitempty" json:"title,omitempty"`
	Location    string `bson:"location,omitempty" yaml:"location,omitempty" json:"location,omitempty"`
}

// Account is the per-account document holding client and slot lists.
type Account struct {
	AccountID string   `bson:"account_id" yaml:"account_id" json:"account_id"`
	Clients   []Client `bson:"clients" yaml:"clients" json:"clients"`
	Jobs      []Slot   `bson:"jobs" yaml:"jobs" json:"jobs"`
	Inquiries []Slot   `bson:"inquiries" yaml:"inquiries" json:"inquiries"`
}

func (a *Account) slots(t BookingType) *[]Slot {
	if t == BookingInquiries {
		return &a.Inquiries
	}
	return &a.Jobs
}

// ClientUpdate lists the fields to change. Empty fields are left untouched.
type ClientUpdate struct {
	Name  string
	Email string
	Phone string
}

func (u ClientUpdate) Empty() bool {
	return u.Name == "" && u.Email == "" && u.Phone == ""
}

// Booking is what gets written into a slot when it is booked.
type Booking struct {
	ClientEmail string
	Title       string
	Location    string
}

// BusinessInfo is a free-form fact about the business, e.g. opening hours.
type BusinessInfo struct {
	AccountID string `bson:"account_id" yaml:"account_id" json:"account_id"`
	Topic     string `bson:"topic" yaml:"topic" json:"topic"`
	Content   string `bson:"content" yaml:"content" json:"content"`
}

// AccountStore reads and updates client and slot records.
// Absence is never an error: lookups return nil and updates report whether anything matched.
type AccountStore interface {
	FindClient(ctx context.Context, accountID, email, phone string) (*Client, error)
	// InsertClient adds c unless a client with the same email exists; it reports whether c was added.
	InsertClient(ctx context.Context, accountID string, c Client) (bool, error)
	UpdateClient(ctx context.Context, accountID, email string, u ClientUpdate) (bool, error)
	DeleteClient(ctx context.Context, accountID, email string) (bool, error)

	Slots(ctx context.Context, accountID string, t BookingType, booked bool) ([]Slot, error)
	FindSlot(ctx context.Context, accountID string, t BookingType, startTime string) (*Slot, error)
	// BookSlot marks the slot booked only if it is still unbooked; it reports whether it won.
	BookSlot(ctx context.Context, accountID string, t BookingType, startTime string, b Booking) (bool, error)

	UpsertAccount(ctx context.Context, a Account) error
}

// SessionStore persists conversation sessions keyed by session id.
type SessionStore interface {
	// LoadSession returns a fresh empty session when none is stored.
	LoadSession(ctx context.Context, id string) (*turns.Session, error)
	SaveSession(ctx context.Context, s *turns.Session) error
	DeleteSession(ctx context.Context, id string) error
}

// BusinessInfoStore answers knowledge-base lookups.
type BusinessInfoStore interface {
	FindBusinessInfo(ctx context.Context, accountID, topic string) ([]BusinessInfo, error)
	UpsertBusinessInfo(ctx context.Context, info BusinessInfo) error
}

// Store bundles every persistence concern.
type Store interface {
	AccountStore
	SessionStore
	BusinessInfoStore
	Close(ctx context.Context) error
}

// StartTimes lists the start times of slots.
func StartTimes(slots []Slot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.StartTime)
	}
	return out
}
