// Package toolbox holds the receptionist's domain tools. Every tool returns a
// tools.Result: validation problems and not-found outcomes are Completed messages,
// missing prerequisites are NeedsInput questions, and errors mean a collaborator failed.
package toolbox

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sudo-god/AI-Receptionist/pkg/inference/tools"
	"github.com/sudo-god/AI-Receptionist/pkg/mail"
	"github.com/sudo-god/AI-Receptionist/pkg/store"
)

const (
	CrudClientTool        = "crud_client_tool"
	CheckAvailabilityTool = "check_slot_availability_tool"
	CheckBookedSlotsTool  = "check_booked_slots_tool"
	BookInquiryTool       = "book_inquiry_tool"
	BookJobTool           = "book_job_tool"
	SendEmailTool         = "send_email_tool"
	BusinessInfoTool      = "lookup_business_info_tool"
)

// ReceptionistPriority is the execution order of receptionist tools within a
// turn: clients exist before anything is booked for them, and emails go last.
var ReceptionistPriority = []string{
	CrudClientTool,
	CheckAvailabilityTool,
	BookInquiryTool,
	BookJobTool,
	SendEmailTool,
}

// StartTimeLayout is the slot start time format shared with the store.
const StartTimeLayout = "2006-01-02 15:04"

const (
	defaultLocation      = "Virtual"
	defaultEventDuration = time.Hour
	defaultTimeZone      = "America/New_York"
)

// Toolbox binds the domain tools to their collaborators.
type Toolbox struct {
	accounts      store.AccountStore
	info          store.BusinessInfoStore
	sender        mail.Sender
	location      *time.Location
	eventDuration time.Duration
}

type Option func(*Toolbox)

// WithBusinessInfo enables the knowledge-base lookup tool.
func WithBusinessInfo(info store.BusinessInfoStore) Option {
	return func(tb *Toolbox) { tb.info = info }
}

// WithTimeZone sets the zone slot start times are interpreted in.
func WithTimeZone(name string) Option {
	return func(tb *Toolbox) {
		loc, err := time.LoadLocation(name)
		if err != nil {
			log.Warn().Err(err).Str("time_zone", name).Msg("unknown time zone, using UTC")
			loc = time.UTC
		}
		tb.location = loc
	}
}

func WithEventDuration(d time.Duration) Option {
	return func(tb *Toolbox) {
		if d > 0 {
			tb.eventDuration = d
		}
	}
}

func New(accounts store.AccountStore, sender mail.Sender, options ...Option) *Toolbox {
	tb := &Toolbox{
		accounts:      accounts,
		sender:        sender,
		eventDuration: defaultEventDuration,
	}
	WithTimeZone(defaultTimeZone)(tb)
	for _, o := range options {
		o(tb)
	}
	if tb.sender == nil {
		tb.sender = mail.LogSender{}
	}
	return tb
}

// ReceptionistTools are the tools of the receptionist agent.
func (tb *Toolbox) ReceptionistTools() []*tools.ToolDefinition {
	return []*tools.ToolDefinition{
		tools.MustNewToolFromFunc(CrudClientTool,
			"Create, read, update or delete a client of the business. "+
				"operation is one of create, read, update, delete. Read matches by client_email or client_phone.",
			tb.CrudClient),
		tools.MustNewToolFromFunc(CheckAvailabilityTool,
			"List the start times of open slots. booking_type is jobs or inquiries.",
			tb.CheckAvailability),
		tools.MustNewToolFromFunc(CheckBookedSlotsTool,
			"List the start times of already booked slots. booking_type is jobs or inquiries.",
			tb.CheckBookedSlots),
		tools.MustNewToolFromFunc(BookInquiryTool,
			"Book an inquiry slot for an existing client. start_time uses the format YYYY-MM-DD HH:MM.",
			tb.BookInquiry),
		tools.MustNewToolFromFunc(BookJobTool,
			"Book a job slot for an existing client. start_time uses the format YYYY-MM-DD HH:MM.",
			tb.BookJob),
		tools.MustNewToolFromFunc(SendEmailTool,
			"Send an email to a client.",
			tb.SendEmail),
	}
}

// KnowledgeBaseTools are the tools of the knowledge-base agent.
func (tb *Toolbox) KnowledgeBaseTools() []*tools.ToolDefinition {
	return []*tools.ToolDefinition{
		tools.MustNewToolFromFunc(BusinessInfoTool,
			"Look up information about the business (opening hours, services, pricing, policies) by topic.",
			tb.LookupBusinessInfo),
	}
}
