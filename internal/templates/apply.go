package templates

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/luminastudio/lumina-backend/internal/proposals"
	"github.com/luminastudio/lumina-backend/pkg/db/models"
)

// Draft is the editable proposal state the template merges into. It mirrors
// the editor's in-memory draft; nothing here touches persisted storage.
type Draft struct {
	ContractContent *string
	PaymentConfigID *uuid.UUID
	ValidUntil      *time.Time
	Items           []proposals.ItemInput
}

// Apply merges a template's defaults into the draft:
//   - content is copied only when the template has some and never clears an
//     already populated contract
//   - the default payment config wins whenever the template sets one
//   - valid_until is recomputed only when the template declares valid days
//   - default items replace the draft's items, re-indexed from zero
func Apply(template *models.ProposalTemplate, draft Draft, now time.Time) Draft {
	if template == nil {
		return draft
	}

	if strings.TrimSpace(template.Content) != "" {
		content := template.Content
		draft.ContractContent = &content
	}

	if template.DefaultPaymentConfigID != nil {
		id := *template.DefaultPaymentConfigID
		draft.PaymentConfigID = &id
	}

	if template.DefaultValidDays != nil && *template.DefaultValidDays > 0 {
		until := now.UTC().AddDate(0, 0, *template.DefaultValidDays)
		draft.ValidUntil = &until
	}

	if len(template.DefaultItems) > 0 {
		items := make([]proposals.ItemInput, 0, len(template.DefaultItems))
		for _, def := range template.DefaultItems {
			price, err := decimal.NewFromString(def.UnitPrice)
			if err != nil {
				price = decimal.Zero
			}
			quantity := def.Quantity
			if quantity < 1 {
				quantity = 1
			}
			items = append(items, proposals.ItemInput{
				Name:      def.Name,
				Details:   def.Details,
				Quantity:  quantity,
				UnitPrice: price,
				ShowPrice: def.ShowPrice,
			})
		}
		draft.Items = items
	}

	return draft
}
