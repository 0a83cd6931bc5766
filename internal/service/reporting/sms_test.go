package reporting

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milkbook/milkbook/internal/domain/models"
	"github.com/milkbook/milkbook/internal/service/dairy"
)

func TestComposeSMSBody(t *testing.T) {
	dairySvc, svc := newTestServices(t)
	ctx := context.Background()

	customer, err := dairySvc.AddCustomer(ctx, owner, "Ravi", "9999999999")
	require.NoError(t, err)

	price := 40.0
	_, err = dairySvc.AddMilkRecord(ctx, owner, customer.ID, dairy.MilkRecordInput{
		Quantity: 5, Fat: 6, SNF: 8.5, PricePerLiter: &price,
		Session: models.SessionMorning,
	})
	require.NoError(t, err)

	summary, err := svc.ComposeSMS(ctx, owner, customer.ID)
	require.NoError(t, err)

	assert.Equal(t, "9999999999", summary.To)
	assert.Contains(t, summary.Body, "Milk Summary for Ravi:")
	assert.Contains(t, summary.Body, "Total: 5.00L, Avg Fat: 6.00, Amount: Rs.200.00")
	assert.Contains(t, summary.Body, "Qty: 5L, Fat: 6, SNF: 8.5, Total: Rs.200.00")
}

func TestComposeSMSNoRecords(t *testing.T) {
	dairySvc, svc := newTestServices(t)
	ctx := context.Background()

	customer, err := dairySvc.AddCustomer(ctx, owner, "Ravi", "9999999999")
	require.NoError(t, err)

	summary, err := svc.ComposeSMS(ctx, owner, customer.ID)
	require.NoError(t, err)
	assert.Contains(t, summary.Body, "No milk records yet.")
}

func TestComposeSMSCapsRecords(t *testing.T) {
	dairySvc, svc := newTestServices(t)
	ctx := context.Background()

	customer, err := dairySvc.AddCustomer(ctx, owner, "Ravi", "9999999999")
	require.NoError(t, err)
	for i := 0; i < 15; i++ {
		_, err := dairySvc.AddMilkRecord(ctx, owner, customer.ID, dairy.MilkRecordInput{
			Quantity: 1, Session: models.SessionMorning,
		})
		require.NoError(t, err)
	}

	summary, err := svc.ComposeSMS(ctx, owner, customer.ID)
	require.NoError(t, err)

	// One header line, one totals line, then at most ten record lines.
	lines := strings.Split(summary.Body, "\n")
	assert.Len(t, lines, 12)
}

func TestComposeSMSURIEncoding(t *testing.T) {
	dairySvc, svc := newTestServices(t)
	ctx := context.Background()

	customer, err := dairySvc.AddCustomer(ctx, owner, "Ravi", "9999999999")
	require.NoError(t, err)

	summary, err := svc.ComposeSMS(ctx, owner, customer.ID)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(summary.URI, "sms:9999999999?body="))
	assert.NotContains(t, summary.URI, "+", "spaces must encode as %20, not +")
	assert.Contains(t, summary.URI, "%20")
}
