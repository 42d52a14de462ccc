package mail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GoogleConfig locates OAuth credentials and picks the calendar to write to.
type GoogleConfig struct {
	CredentialsFile string `mapstructure:"credentials_file"`
	TokenFile       string `mapstructure:"token_file"`
	SenderEmail     string `mapstructure:"sender_email"`
	CalendarID      string `mapstructure:"calendar_id"`
	TimeZone        string `mapstructure:"time_zone"`
}

// Google sends mail through Gmail and creates events in Google Calendar.
type Google struct {
	cfg      GoogleConfig
	gmail    *gmail.Service
	calendar *calendar.Service
}

var _ Sender = (*Google)(nil)

// NewGoogle builds an authorized client from an OAuth client secret file and a stored token.
func NewGoogle(ctx context.Context, cfg GoogleConfig) (*Google, error) {
	secret, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read google credentials")
	}
	oc, err := google.ConfigFromJSON(secret, gmail.GmailSendScope, calendar.CalendarEventsScope)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse google credentials")
	}
	tok, err := readToken(cfg.TokenFile)
	if err != nil {
		return nil, err
	}
	return NewGoogleWithOptions(ctx, cfg, option.WithHTTPClient(oc.Client(ctx, tok)))
}

// NewGoogleWithOptions builds the services from explicit client options.
func NewGoogleWithOptions(ctx context.Context, cfg GoogleConfig, opts ...option.ClientOption) (*Google, error) {
	if cfg.CalendarID == "" {
		cfg.CalendarID = "primary"
	}
	g, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create gmail service")
	}
	c, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create calendar service")
	}
	return &Google{cfg: cfg, gmail: g, calendar: c}, nil
}

// NewGoogleForEndpoint points both services at a custom base URL.
func NewGoogleForEndpoint(ctx context.Context, cfg GoogleConfig, client *http.Client, gmailEndpoint, calendarEndpoint string) (*Google, error) {
	if cfg.CalendarID == "" {
		cfg.CalendarID = "primary"
	}
	g, err := gmail.NewService(ctx, option.WithHTTPClient(client), option.WithEndpoint(gmailEndpoint))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create gmail service")
	}
	c, err := calendar.NewService(ctx, option.WithHTTPClient(client), option.WithEndpoint(calendarEndpoint))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create calendar service")
	}
	return &Google{cfg: cfg, gmail: g, calendar: c}, nil
}

func readToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open google token file")
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, errors.Wrap(err, "failed to decode google token")
	}
	return tok, nil
}

func (g *Google) SendEmail(ctx context.Context, to, subject, body string) error {
	raw := buildMessage(g.cfg.SenderEmail, to, subject, body)
	msg := &gmail.Message{Raw: base64.URLEncoding.EncodeToString(raw)}
	sent, err := g.gmail.Users.Messages.Send("me", msg).Context(ctx).Do()
	if err != nil {
		return errors.Wrapf(err, "failed to send email to %s", to)
	}
	log.Debug().Str("to", to).Str("message_id", sent.Id).Msg("email sent")
	return nil
}

func (g *Google) CreateEvent(ctx context.Context, ev Event) error {
	event := &calendar.Event{
		Summary:     ev.Title,
		Description: ev.Description,
		Location:    ev.Location,
		Start: &calendar.EventDateTime{
			DateTime: ev.Start.Format(time.RFC3339),
			TimeZone: g.cfg.TimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: ev.End.Format(time.RFC3339),
			TimeZone: g.cfg.TimeZone,
		},
	}
	if ev.AttendeeEmail != "" {
		event.Attendees = []*calendar.EventAttendee{{Email: ev.AttendeeEmail}}
	}
	created, err := g.calendar.Events.Insert(g.cfg.CalendarID, event).SendUpdates("all").Context(ctx).Do()
	if err != nil {
		return errors.Wrapf(err, "failed to create calendar event %s", ev.Title)
	}
	log.Debug().Str("event_id", created.Id).Str("link", created.HtmlLink).Msg("calendar event created")
	return nil
}

var headerBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// headerValue folds line breaks so a value cannot start a new header.
func headerValue(v string) string {
	return strings.TrimSpace(headerBreaks.Replace(v))
}

// buildMessage renders a minimal RFC 2822 plain-text message.
// The subject is RFC 2047 encoded when it is not plain ASCII.
func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	if from != "" {
		fmt.Fprintf(&b, "From: %s\r\n", headerValue(from))
	}
	fmt.Fprintf(&b, "To: %s\r\n", headerValue(to))
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", headerValue(subject)))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
