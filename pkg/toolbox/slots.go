package toolbox

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sudo-god/AI-Receptionist/pkg/inference/tools"
	"github.com/sudo-god/AI-Receptionist/pkg/mail"
	"github.com/sudo-god/AI-Receptionist/pkg/store"
)

type SlotQueryInput struct {
	AccountID   string `json:"account_id" jsonschema:"-"`
	BookingType string `json:"booking_type" jsonschema:"description=Either jobs or inquiries"`
}

type BookingInput struct {
	AccountID   string `json:"account_id" jsonschema:"-"`
	Title       string `json:"title" jsonschema:"description=Short title of the appointment"`
	ClientEmail string `json:"client_email" jsonschema:"description=Email of an existing client"`
	StartTime   string `json:"start_time" jsonschema:"description=Start of the slot as YYYY-MM-DD HH:MM"`
	Location    string `json:"location,omitempty" jsonschema:"description=Where the appointment takes place,default=Virtual"`
}

func formatList(items []string) string {
	return "[" + strings.Join(items, ", ") + "]"
}

func (tb *Toolbox) CheckAvailability(ctx context.Context, in SlotQueryInput) (tools.Result, error) {
	return tb.listSlots(ctx, in, false, "Available slots")
}

func (tb *Toolbox) CheckBookedSlots(ctx context.Context, in SlotQueryInput) (tools.Result, error) {
	return tb.listSlots(ctx, in, true, "Booked slots")
}

func (tb *Toolbox) listSlots(ctx context.Context, in SlotQueryInput, booked bool, label string) (tools.Result, error) {
	if in.AccountID == "" {
		return tools.Completed("account_id is required"), nil
	}
	bt, err := store.ParseBookingType(in.BookingType)
	if err != nil {
		return tools.Completed(err.Error()), nil
	}
	slots, err := tb.accounts.Slots(ctx, in.AccountID, bt, booked)
	if err != nil {
		return tools.Result{}, errors.Wrapf(err, "list %s", bt)
	}
	return tools.Completedf("%s: %s", label, formatList(store.StartTimes(slots))), nil
}

func (tb *Toolbox) BookJob(ctx context.Context, in BookingInput) (tools.Result, error) {
	return tb.bookSlot(ctx, store.BookingJobs, in)
}

func (tb *Toolbox) BookInquiry(ctx context.Context, in BookingInput) (tools.Result, error) {
	return tb.bookSlot(ctx, store.BookingInquiries, in)
}

// bookSlot books the exact slot for an existing client. The store's conditional
// update decides races; the loser gets the current availability to pick from.
func (tb *Toolbox) bookSlot(ctx context.Context, bt store.BookingType, in BookingInput) (tools.Result, error) {
	if in.AccountID == "" {
		return tools.Completed("account_id is required"), nil
	}
	var missing []string
	if in.Title == "" {
		missing = append(missing, "title")
	}
	if in.ClientEmail == "" {
		missing = append(missing, "client_email")
	}
	if in.StartTime == "" {
		missing = append(missing, "start_time")
	}
	if len(missing) > 0 {
		return tools.Completedf("Missing required fields to book a %s: %s", bt.Singular(), strings.Join(missing, ", ")), nil
	}
	if in.Location == "" {
		in.Location = defaultLocation
	}
	start, err := tb.parseStart(in.StartTime)
	if err != nil {
		return tools.Completedf("Invalid start_time %s, please use the format YYYY-MM-DD HH:MM", in.StartTime), nil
	}

	client, err := tb.accounts.FindClient(ctx, in.AccountID, in.ClientEmail, "")
	if err != nil {
		return tools.Result{}, errors.Wrapf(err, "book %s", bt.Singular())
	}
	if client == nil {
		return tools.NeedsInputf("Client %s not found, please create a client first", in.ClientEmail), nil
	}

	won, err := tb.accounts.BookSlot(ctx, in.AccountID, bt, in.StartTime, store.Booking{
		ClientEmail: in.ClientEmail,
		Title:       in.Title,
		Location:    in.Location,
	})
	if err != nil {
		return tools.Result{}, errors.Wrapf(err, "book %s", bt.Singular())
	}

	if won {
		ev := mail.Event{
			Title:         in.Title,
			Description:   fmt.Sprintf("Appointment with %s", client.Name),
			Location:      in.Location,
			AttendeeEmail: client.Email,
			Start:         start,
			End:           start.Add(tb.eventDuration),
		}
		if err := tb.sender.CreateEvent(ctx, ev); err != nil {
			log.Error().Err(err).Str("account_id", in.AccountID).Str("start_time", in.StartTime).
				Msg("slot booked but calendar event could not be created")
		}
		return tools.Completedf("Booked %s slot for %s on %s at %s for %s",
			bt.Singular(), in.Title, in.StartTime, in.Location, in.ClientEmail), nil
	}

	slot, err := tb.accounts.FindSlot(ctx, in.AccountID, bt, in.StartTime)
	if err != nil {
		return tools.Result{}, errors.Wrapf(err, "book %s", bt.Singular())
	}
	if slot != nil && slot.IsBooked && slot.ClientEmail == in.ClientEmail {
		return tools.Completedf("You have already booked a slot for %s on %s", in.Title, in.StartTime), nil
	}

	free, err := tb.accounts.Slots(ctx, in.AccountID, bt, false)
	if err != nil {
		return tools.Result{}, errors.Wrapf(err, "book %s", bt.Singular())
	}
	return tools.NeedsInputf("Sorry, your desired slot is not available, please try a different slot. "+
		"Please choose from the following available slots: %s", formatList(store.StartTimes(free))), nil
}

func (tb *Toolbox) parseStart(s string) (time.Time, error) {
	return time.ParseInLocation(StartTimeLayout, strings.TrimSpace(s), tb.location)
}
