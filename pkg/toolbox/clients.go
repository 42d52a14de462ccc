package toolbox

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/sudo-god/AI-Receptionist/pkg/inference/tools"
	"github.com/sudo-god/AI-Receptionist/pkg/store"
)

type CrudClientInput struct {
	AccountID      string `json:"account_id" jsonschema:"-"`
	Operation      string `json:"operation" jsonschema:"description=One of: create | read | update | delete"`
	ClientEmail    string `json:"client_email,omitempty" jsonschema:"description=Email of the client"`
	ClientName     string `json:"client_name,omitempty" jsonschema:"description=Full name of the client"`
	ClientPhone    string `json:"client_phone,omitempty" jsonschema:"description=Phone number of the client"`
	NewClientEmail string `json:"new_client_email,omitempty" jsonschema:"description=New email when updating a client"`
}

func (tb *Toolbox) CrudClient(ctx context.Context, in CrudClientInput) (tools.Result, error) {
	if in.AccountID == "" {
		return tools.Completed("account_id is required"), nil
	}
	switch strings.ToLower(strings.TrimSpace(in.Operation)) {
	case "create":
		return tb.createClient(ctx, in)
	case "read":
		return tb.readClient(ctx, in)
	case "update":
		return tb.updateClient(ctx, in)
	case "delete":
		return tb.deleteClient(ctx, in)
	default:
		return tools.Completed("Invalid operation, please use create, read, update or delete"), nil
	}
}

func (tb *Toolbox) createClient(ctx context.Context, in CrudClientInput) (tools.Result, error) {
	if in.ClientEmail == "" {
		return tools.Completed("client_email is required to create a client"), nil
	}
	existing, err := tb.accounts.FindClient(ctx, in.AccountID, in.ClientEmail, "")
	if err != nil {
		return tools.Result{}, errors.Wrap(err, "create client")
	}
	if existing != nil {
		return tools.Completedf("Client %s already exists", in.ClientEmail), nil
	}

	added, err := tb.accounts.InsertClient(ctx, in.AccountID, store.Client{
		Name:  in.ClientName,
		Email: in.ClientEmail,
		Phone: in.ClientPhone,
	})
	if err != nil {
		return tools.Result{}, errors.Wrap(err, "create client")
	}
	if !added {
		return tools.Completedf("Client %s already exists", in.ClientEmail), nil
	}
	return tools.Completedf("Client %s created successfully", in.ClientEmail), nil
}

func (tb *Toolbox) readClient(ctx context.Context, in CrudClientInput) (tools.Result, error) {
	if in.ClientEmail == "" && in.ClientPhone == "" {
		return tools.Completed("Please provide a client email or phone number to look up a client"), nil
	}
	c, err := tb.accounts.FindClient(ctx, in.AccountID, in.ClientEmail, in.ClientPhone)
	if err != nil {
		return tools.Result{}, errors.Wrap(err, "read client")
	}
	if c == nil {
		return tools.Completed("Client not found"), nil
	}
	return tools.Completedf("Client found: name: %s, email: %s, phone: %s", c.Name, c.Email, c.Phone), nil
}

func (tb *Toolbox) updateClient(ctx context.Context, in CrudClientInput) (tools.Result, error) {
	if in.ClientEmail == "" {
		return tools.Completed("client_email is required to update a client"), nil
	}
	u := store.ClientUpdate{Name: in.ClientName, Email: in.NewClientEmail, Phone: in.ClientPhone}
	if u.Empty() {
		return tools.Completed("No fields to update provided"), nil
	}
	ok, err := tb.accounts.UpdateClient(ctx, in.AccountID, in.ClientEmail, u)
	if err != nil {
		return tools.Result{}, errors.Wrap(err, "update client")
	}
	if !ok {
		return tools.Completedf("Client %s not found", in.ClientEmail), nil
	}
	email := in.ClientEmail
	if in.NewClientEmail != "" {
		email = in.NewClientEmail
	}
	return tools.Completedf("Client %s updated successfully", email), nil
}

func (tb *Toolbox) deleteClient(ctx context.Context, in CrudClientInput) (tools.Result, error) {
	if in.ClientEmail == "" {
		return tools.Completed("client_email is required to delete a client"), nil
	}
	ok, err := tb.accounts.DeleteClient(ctx, in.AccountID, in.ClientEmail)
	if err != nil {
		return tools.Result{}, errors.Wrap(err, "delete client")
	}
	if !ok {
		return tools.Completedf("Client %s not found", in.ClientEmail), nil
	}
	return tools.Completedf("Client %s deleted successfully", in.ClientEmail), nil
}
