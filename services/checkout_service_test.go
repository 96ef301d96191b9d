package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"saif-gifts/identity"
	"saif-gifts/models"
	"saif-gifts/pricing"
	"saif-gifts/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var checkoutNow = time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC)

type checkoutFixture struct {
	svc     *CheckoutService
	carts   *CartService
	repo    *MockCartRepository
	current *MockCurrentOrderStore
	sink    *MockOrderSink
	events  *MockEventPublisher
	mailer  *MockMailer
}

func newCheckoutFixture() *checkoutFixture {
	f := &checkoutFixture{
		current: NewMockCurrentOrderStore(),
		sink:    &MockOrderSink{},
		events:  &MockEventPublisher{},
		mailer:  &MockMailer{},
	}
	f.carts, f.repo = newTestCartService()
	f.svc = NewCheckoutService(
		CheckoutConfig{
			TaxRate:     pricing.DefaultTaxRate,
			SyncTimeout: time.Second,
			Now:         func() time.Time { return checkoutNow },
		},
		f.carts, f.current, f.sink, &MockInvoiceRenderer{}, f.events, f.mailer, zap.NewNop(),
	)
	return f
}

func (f *checkoutFixture) fill(t *testing.T, owner identity.OwnerKey) {
	t.Helper()
	ctx := context.Background()
	_, err := f.carts.AddItem(ctx, owner, "A", 1)
	require.NoError(t, err)
	_, err = f.carts.AddItem(ctx, owner, "B", 3)
	require.NoError(t, err)
}

func validShipping() models.ShippingDetails {
	return models.ShippingDetails{
		FullName:   " Zainab Qureshi ",
		Email:      "zainab@example.com",
		Phone:      "+92 300 0000000",
		Address:    "12 Mall Road",
		City:       "Lahore",
		PostalCode: "54000",
	}
}

func TestValidateShippingDetails(t *testing.T) {
	d, err := ValidateShippingDetails(validShipping())
	require.NoError(t, err)
	assert.Equal(t, "Zainab Qureshi", d.FullName)

	tests := []struct {
		name  string
		edit  func(d *models.ShippingDetails)
		field string
	}{
		{"missing name", func(d *models.ShippingDetails) { d.FullName = "  " }, "full_name"},
		{"missing email", func(d *models.ShippingDetails) { d.Email = "" }, "email"},
		{"bad email", func(d *models.ShippingDetails) { d.Email = "zainab-at-example" }, "email"},
		{"display name email", func(d *models.ShippingDetails) { d.Email = "Zainab <zainab@example.com>" }, "email"},
		{"missing phone", func(d *models.ShippingDetails) { d.Phone = "" }, "phone"},
		{"missing address", func(d *models.ShippingDetails) { d.Address = "" }, "address"},
		{"missing city", func(d *models.ShippingDetails) { d.City = "" }, "city"},
		{"missing postal code", func(d *models.ShippingDetails) { d.PostalCode = "" }, "postal_code"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validShipping()
			tt.edit(&d)
			_, err := ValidateShippingDetails(d)
			var verr *models.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestPlaceOrder_InvalidDetailsLeaveCart(t *testing.T) {
	f := newCheckoutFixture()
	f.fill(t, testGuest)

	d := validShipping()
	d.City = ""
	_, err := f.svc.PlaceOrder(context.Background(), testGuest, d)
	assert.True(t, models.IsValidation(err))

	assert.Len(t, f.repo.Load(context.Background(), testGuest.String()).Items, 2)
	_, err = f.current.Get(context.Background(), testGuest.String())
	assert.True(t, models.IsNotFound(err))
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	f := newCheckoutFixture()

	_, err := f.svc.PlaceOrder(context.Background(), testGuest, validShipping())
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "cart", verr.Field)
}

func TestPlaceOrder_Guest(t *testing.T) {
	f := newCheckoutFixture()
	f.fill(t, testGuest)
	ctx := context.Background()

	placement, err := f.svc.PlaceOrder(ctx, testGuest, validShipping())
	require.NoError(t, err)
	f.svc.Wait()

	s := placement.Snapshot
	assert.Equal(t, fmt.Sprintf("ORD-%d", checkoutNow.UnixMilli()), s.OrderID)
	assert.Equal(t, checkoutNow, s.OrderDate)
	assert.Equal(t, testGuest.String(), s.Owner)
	assert.Equal(t, "Zainab Qureshi", s.ShippingDetails.FullName)
	require.Len(t, s.LineItems, 2)
	assert.Equal(t, "1750", s.Subtotal.String())
	assert.Equal(t, "175", s.Tax.String())
	assert.Equal(t, "1925", s.Total.String())

	assert.False(t, placement.Synced)
	assert.NoError(t, placement.SyncErr)
	assert.Equal(t, 0, f.sink.Calls, "guest orders are never synced")

	current, err := f.current.Get(ctx, testGuest.String())
	require.NoError(t, err)
	assert.Equal(t, s.OrderID, current.OrderID)

	view, err := f.carts.View(ctx, testGuest)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	assert.Equal(t, []string{s.OrderID}, f.events.Published)
	assert.Equal(t, []bool{true}, f.events.Guest)
	assert.Equal(t, []string{s.OrderID}, f.mailer.Sent)
	assert.Equal(t, []byte("%PDF-"+s.OrderID), f.mailer.Attachments[0])
}

func TestPlaceOrder_UserSynced(t *testing.T) {
	f := newCheckoutFixture()
	f.fill(t, testUser)

	placement, err := f.svc.PlaceOrder(context.Background(), testUser, validShipping())
	require.NoError(t, err)
	f.svc.Wait()

	assert.True(t, placement.Synced)
	assert.NoError(t, placement.SyncErr)
	assert.Equal(t, testUser.String(), f.sink.Created[placement.Snapshot.OrderID])
	assert.Equal(t, []bool{false}, f.events.Guest)
}

func TestPlaceOrder_IDsNeverRepeat(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		f.fill(t, testGuest)
		placement, err := f.svc.PlaceOrder(ctx, testGuest, validShipping())
		require.NoError(t, err)
		assert.False(t, seen[placement.Snapshot.OrderID])
		seen[placement.Snapshot.OrderID] = true
	}
	f.svc.Wait()
	assert.True(t, seen[fmt.Sprintf("ORD-%d", checkoutNow.UnixMilli()+2)])
}

func TestPlaceOrder_SyncFailureKeepsOrder(t *testing.T) {
	f := newCheckoutFixture()
	f.fill(t, testUser)
	f.sink.Err = errors.New("database unavailable")
	ctx := context.Background()

	placement, err := f.svc.PlaceOrder(ctx, testUser, validShipping())
	require.NoError(t, err)
	f.svc.Wait()

	assert.False(t, placement.Synced)
	require.Error(t, placement.SyncErr)
	assert.True(t, models.IsCollaborator(placement.SyncErr))

	view, err := f.carts.View(ctx, testUser)
	require.NoError(t, err)
	assert.Empty(t, view.Items, "cart stays cleared when only the sync failed")

	current, err := f.svc.CurrentOrder(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, placement.Snapshot.OrderID, current.OrderID)
}

func TestRetrySync(t *testing.T) {
	f := newCheckoutFixture()
	f.fill(t, testUser)
	f.sink.Err = errors.New("database unavailable")
	ctx := context.Background()

	placement, err := f.svc.PlaceOrder(ctx, testUser, validShipping())
	require.NoError(t, err)
	require.Error(t, placement.SyncErr)

	f.sink.Err = nil
	retried, err := f.svc.RetrySync(ctx, testUser)
	require.NoError(t, err)
	assert.True(t, retried.Synced)
	assert.Equal(t, placement.Snapshot.OrderID, retried.Snapshot.OrderID)

	again, err := f.svc.RetrySync(ctx, testUser)
	require.NoError(t, err)
	assert.True(t, again.Synced)
	assert.Len(t, f.sink.Created, 1)
	f.svc.Wait()
}

func TestRetrySync_Errors(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	_, err := f.svc.RetrySync(ctx, testGuest)
	assert.True(t, models.IsValidation(err))

	_, err = f.svc.RetrySync(ctx, testUser)
	assert.True(t, models.IsNotFound(err))
}

func TestPlaceOrder_RecordFailureLeavesCart(t *testing.T) {
	f := newCheckoutFixture()
	f.fill(t, testUser)
	f.current.PutErr = errors.New("redis down")
	ctx := context.Background()

	_, err := f.svc.PlaceOrder(ctx, testUser, validShipping())
	require.Error(t, err)
	assert.True(t, models.IsCollaborator(err))
	f.svc.Wait()

	view, err := f.carts.View(ctx, testUser)
	require.NoError(t, err)
	assert.Len(t, view.Items, 2)
	assert.Equal(t, 0, f.sink.Calls)
	assert.Empty(t, f.events.Published)
}

func TestPlaceOrder_BreakerOpens(t *testing.T) {
	f := newCheckoutFixture()
	f.sink.Err = errors.New("database unavailable")
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		f.fill(t, testUser)
		placement, err := f.svc.PlaceOrder(ctx, testUser, validShipping())
		require.NoError(t, err)
		assert.Error(t, placement.SyncErr)
	}
	f.svc.Wait()
	assert.Equal(t, 3, f.sink.Calls, "open breaker short-circuits the fourth sync")
}

func TestInvoice(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	_, _, err := f.svc.Invoice(ctx, testGuest)
	assert.True(t, models.IsNotFound(err))

	f.fill(t, testGuest)
	placement, err := f.svc.PlaceOrder(ctx, testGuest, validShipping())
	require.NoError(t, err)
	f.svc.Wait()

	snapshot, pdf, err := f.svc.Invoice(ctx, testGuest)
	require.NoError(t, err)
	assert.Equal(t, placement.Snapshot.OrderID, snapshot.OrderID)
	assert.Equal(t, []byte("%PDF-"+snapshot.OrderID), pdf)
}

func TestPlaceOrder_NotificationFailuresIgnored(t *testing.T) {
	f := newCheckoutFixture()
	f.fill(t, testGuest)
	f.events.Err = errors.New("broker down")
	f.mailer.Err = errors.New("smtp down")

	placement, err := f.svc.PlaceOrder(context.Background(), testGuest, validShipping())
	require.NoError(t, err)
	f.svc.Wait()
	assert.NotEmpty(t, placement.Snapshot.OrderID)
	assert.Len(t, f.mailer.Sent, 1)
}

func TestCheckout_ReissuesOrderIDTakenByAnotherAccount(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	f.fill(t, testUser)
	taken := fmt.Sprintf("ORD-%d", checkoutNow.UnixMilli())
	f.sink.Created = map[string]string{taken: "99"}

	p, err := f.svc.PlaceOrder(ctx, testUser, validShipping())
	require.NoError(t, err)
	f.svc.Wait()

	require.NoError(t, p.SyncErr)
	assert.True(t, p.Synced)
	want := fmt.Sprintf("ORD-%d", checkoutNow.UnixMilli()+1)
	assert.Equal(t, want, p.Snapshot.OrderID)
	assert.Equal(t, testUser.String(), f.sink.Created[want])
	assert.Equal(t, "99", f.sink.Created[taken])

	current, err := f.svc.CurrentOrder(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, want, current.OrderID)

	retried, err := f.svc.RetrySync(ctx, testUser)
	require.NoError(t, err)
	assert.True(t, retried.Synced)
	assert.Equal(t, want, retried.Snapshot.OrderID)
}

func TestCheckout_OrderIDReissueGivesUp(t *testing.T) {
	f := newCheckoutFixture()
	f.fill(t, testUser)
	ms := checkoutNow.UnixMilli()
	f.sink.Created = map[string]string{}
	for i := int64(0); i < maxOrderIDAttempts; i++ {
		f.sink.Created[fmt.Sprintf("ORD-%d", ms+i)] = "99"
	}

	p, err := f.svc.PlaceOrder(context.Background(), testUser, validShipping())
	require.NoError(t, err)
	f.svc.Wait()

	assert.False(t, p.Synced)
	require.Error(t, p.SyncErr)
	assert.True(t, errors.Is(p.SyncErr, repositories.ErrOrderIDConflict))
	assert.Equal(t, maxOrderIDAttempts, f.sink.Calls)
}
