// Package mail is the calendar/mail collaborator used by booking and email tools.
package mail

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Event is a calendar appointment with a single attendee.
type Event struct {
	Title         string
	Description   string
	Location      string
	AttendeeEmail string
	Start         time.Time
	End           time.Time
}

// Sender sends emails and creates calendar events.
type Sender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
	CreateEvent(ctx context.Context, ev Event) error
}

// LogSender only logs. It is used when no Google credentials are configured.
type LogSender struct{}

var _ Sender = LogSender{}

func (LogSender) SendEmail(ctx context.Context, to, subject, body string) error {
	log.Info().Str("to", to).Str("subject", subject).Int("body_len", len(body)).Msg("email (not sent, mail disabled)")
	return nil
}

func (LogSender) CreateEvent(ctx context.Context, ev Event) error {
	log.Info().
		Str("title", ev.Title).
		Str("attendee", ev.AttendeeEmail).
		Time("start", ev.Start).
		Time("end", ev.End).
		Msg("calendar event (not created, mail disabled)")
	return nil
}

type Email struct {
	To      string
	Subject string
	Body    string
}

// Recorder keeps every email and event in memory. Err, when set, is returned by every call.
type Recorder struct {
	mu     sync.Mutex
	Emails []Email
	Events []Event
	Err    error
}

var _ Sender = (*Recorder)(nil)

func (r *Recorder) SendEmail(ctx context.Context, to, subject, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Emails = append(r.Emails, Email{To: to, Subject: subject, Body: body})
	return nil
}

func (r *Recorder) CreateEvent(ctx context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Events = append(r.Events, ev)
	return nil
}

func (r *Recorder) SentEmails() []Email {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Email(nil), r.Emails...)
}

func (r *Recorder) CreatedEvents() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.Events...)
}
