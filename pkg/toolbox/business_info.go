package toolbox

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/sudo-god/AI-Receptionist/pkg/inference/tools"
)

type BusinessInfoInput struct {
	AccountID string `json:"account_id" jsonschema:"-"`
	Topic     string `json:"topic" jsonschema:"description=What the caller wants to know about (for example opening hours)"`
}

func (tb *Toolbox) LookupBusinessInfo(ctx context.Context, in BusinessInfoInput) (tools.Result, error) {
	if in.AccountID == "" {
		return tools.Completed("account_id is required"), nil
	}
	if tb.info == nil {
		return tools.Completed("No business information is available"), nil
	}
	found, err := tb.info.FindBusinessInfo(ctx, in.AccountID, in.Topic)
	if err != nil {
		return tools.Result{}, errors.Wrap(err, "lookup business info")
	}
	if len(found) == 0 {
		return tools.Completedf("No business information found for %s", in.Topic), nil
	}

	var b strings.Builder
	b.WriteString("Business information:")
	for _, bi := range found {
		fmt.Fprintf(&b, "\n- %s: %s", bi.Topic, bi.Content)
	}
	return tools.Completed(b.String()), nil
}
