package reporting

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/milkbook/milkbook/internal/domain/models"
)

// smsRecordLimit caps how many records an SMS summary lists.
const smsRecordLimit = 10

// SMSSummary is a composed text summary ready to hand to a phone's SMS
// composer or an outbound gateway.
type SMSSummary struct {
	To   string `json:"to"`
	Body string `json:"body"`
	URI  string `json:"uri"`
}

// ComposeSMS builds the text summary for a customer: a header, the
// aggregate totals, and the most recent records (at most ten). The URI is
// the platform-level compose action with the body percent-encoded.
func (s *Service) ComposeSMS(ctx context.Context, ownerID, customerID string) (SMSSummary, error) {
	customer, err := s.dairy.GetCustomer(ctx, ownerID, customerID)
	if err != nil {
		return SMSSummary{}, err
	}

	records, err := s.dairy.LastNRecordsByCustomer(ctx, ownerID, customerID, smsRecordLimit)
	if err != nil {
		return SMSSummary{}, fmt.Errorf("load records: %w", err)
	}

	body := composeSMSBody(customer, records)
	return SMSSummary{
		To:   customer.ContactNumber,
		Body: body,
		URI:  fmt.Sprintf("sms:%s?body=%s", customer.ContactNumber, encodeBody(body)),
	}, nil
}

func composeSMSBody(customer models.Customer, records []models.MilkRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Milk Summary for %s:\n", customer.Name)

	if len(records) == 0 {
		b.WriteString("No milk records yet.")
		return b.String()
	}

	if summary := Summarize(records); summary != nil {
		fmt.Fprintf(&b, "Total: %.2fL, Avg Fat: %.2f, Amount: Rs.%.2f\n",
			summary.TotalQuantity, summary.AvgFat, summary.TotalRevenue)
	}
	for _, r := range records {
		fmt.Fprintf(&b, "%s - Qty: %gL, Fat: %g, SNF: %g, Total: Rs.%.2f\n",
			r.Timestamp.Format("02-01-2006"), r.Quantity, r.Fat, r.SNF, r.TotalPrice)
	}
	return strings.TrimRight(b.String(), "\n")
}

// encodeBody percent-encodes the message body for an sms: URI. QueryEscape
// uses + for spaces, which SMS composers do not decode, so rewrite those.
func encodeBody(body string) string {
	return strings.ReplaceAll(url.QueryEscape(body), "+", "%20")
}
