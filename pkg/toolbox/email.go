package toolbox

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/sudo-god/AI-Receptionist/pkg/inference/tools"
)

type SendEmailInput struct {
	AccountID   string `json:"account_id" jsonschema:"-"`
	ClientEmail string `json:"client_email" jsonschema:"description=Recipient email"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
}

// SendEmail never asks for input: missing fields are reported and mail failures are errors.
func (tb *Toolbox) SendEmail(ctx context.Context, in SendEmailInput) (tools.Result, error) {
	var missing []string
	if strings.TrimSpace(in.ClientEmail) == "" {
		missing = append(missing, "client_email")
	}
	if strings.TrimSpace(in.Subject) == "" {
		missing = append(missing, "subject")
	}
	if strings.TrimSpace(in.Body) == "" {
		missing = append(missing, "body")
	}
	if len(missing) > 0 {
		return tools.Completedf("Missing required fields to send an email: %s", strings.Join(missing, ", ")), nil
	}

	if err := tb.sender.SendEmail(ctx, in.ClientEmail, in.Subject, in.Body); err != nil {
		return tools.Result{}, errors.Wrap(err, "send email")
	}
	return tools.Completedf("Email sent to %s successfully", in.ClientEmail), nil
}
