package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"varto-api/config"
	"varto-api/models"
	"varto-api/push"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []push.Message
	fail map[string]error
}

func (f *fakeSender) Send(ctx context.Context, msg push.Message) (*push.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	if err := f.fail[msg.To]; err != nil {
		return nil, err
	}
	return &push.Ticket{Status: "ok", ID: "t-" + msg.To}, nil
}

func (f *fakeSender) tokens() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, m := range f.sent {
		out = append(out, m.To)
	}
	return out
}

func setup(t *testing.T) (*gorm.DB, *fakeSender, *Notifier) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1) // background fan-out shares the test's database
	require.NoError(t, db.AutoMigrate(models.All()...))

	log := logrus.New()
	log.SetOutput(io.Discard)
	sender := &fakeSender{fail: map[string]error{}}
	n := New(db, sender, config.DefaultCatalog().OrderMessages, time.Second, log)
	return db, sender, n
}

func notifications(t *testing.T, db *gorm.DB) []models.VartoNotification {
	var rows []models.VartoNotification
	require.NoError(t, db.Order("id").Find(&rows).Error)
	return rows
}

func TestConfirmedNotifiesActiveCouriersOnly(t *testing.T) {
	db, sender, n := setup(t)
	vendor := models.Vendor{Name: "Varto Pide", Slug: "varto-pide", IsActive: true}
	require.NoError(t, db.Create(&vendor).Error)

	active1 := models.Courier{Name: "Ali", IsActive: true, PushToken: "ExponentPushToken[ali]"}
	active2 := models.Courier{Name: "Veli", IsActive: true} // no token
	inactive := models.Courier{Name: "Can", IsActive: false, PushToken: "ExponentPushToken[can]"}
	require.NoError(t, db.Create(&[]*models.Courier{&active1, &active2, &inactive}).Error)

	order := models.VartoOrder{VendorID: vendor.ID, Status: models.StatusConfirmed}
	require.NoError(t, db.Create(&order).Error)

	queued := n.OrderStatusChanged(&order, models.StatusPending)
	n.Wait()

	assert.Equal(t, 2, queued)
	assert.Equal(t, []string{"ExponentPushToken[ali]"}, sender.tokens())

	rows := notifications(t, db)
	require.Len(t, rows, 2)
	ids := []uint{rows[0].RecipientID, rows[1].RecipientID}
	assert.ElementsMatch(t, []uint{active1.ID, active2.ID}, ids)
	for _, row := range rows {
		assert.Equal(t, models.RecipientCourier, row.RecipientType)
		assert.Equal(t, "order_status", row.Type)
		assert.Equal(t, "varto_order", row.ReferenceType)
		require.NotNil(t, row.ReferenceID)
		assert.Equal(t, order.ID, *row.ReferenceID)
		assert.Contains(t, row.Body, "Varto Pide")
		assert.False(t, row.IsRead)
	}
}

func TestPushFailureDoesNotBlockOthers(t *testing.T) {
	db, sender, n := setup(t)
	bad := models.Courier{Name: "Bad", IsActive: true, PushToken: "ExponentPushToken[bad]"}
	good := models.Courier{Name: "Good", IsActive: true, PushToken: "ExponentPushToken[good]"}
	require.NoError(t, db.Create(&bad).Error)
	require.NoError(t, db.Create(&good).Error)
	sender.fail["ExponentPushToken[bad]"] = errors.New("DeviceNotRegistered")

	order := models.VartoOrder{ID: 99, VendorID: 1, Status: models.StatusConfirmed}
	n.OrderStatusChanged(&order, models.StatusPending)
	n.Wait()

	assert.Equal(t, []string{"ExponentPushToken[bad]", "ExponentPushToken[good]"}, sender.tokens())
	assert.Len(t, notifications(t, db), 2, "the failed push still gets a row")
}

func TestDeliveringNotifiesCustomer(t *testing.T) {
	db, sender, n := setup(t)
	customer := models.Customer{Phone: "+905551112233", PushToken: "ExponentPushToken[cust]"}
	require.NoError(t, db.Create(&customer).Error)
	courier := models.Courier{Name: "Ali", IsActive: true, PushToken: "ExponentPushToken[ali]"}
	require.NoError(t, db.Create(&courier).Error)

	for _, status := range []models.OrderStatus{models.StatusDelivering, models.StatusDelivered} {
		order := models.VartoOrder{ID: 5, VendorID: 1, CustomerID: &customer.ID, Status: status}
		assert.Equal(t, 1, n.OrderStatusChanged(&order, models.StatusAccepted))
		n.Wait()
	}

	assert.Equal(t, []string{"ExponentPushToken[cust]", "ExponentPushToken[cust]"}, sender.tokens())
	rows := notifications(t, db)
	require.Len(t, rows, 2)
	assert.Equal(t, models.RecipientCustomer, rows[0].RecipientType)
	assert.Equal(t, "Siparişiniz yolda", rows[0].Title)
	assert.Equal(t, "Siparişiniz teslim edildi", rows[1].Title)
}

func TestNoNotificationWithoutChangeOrAudience(t *testing.T) {
	db, sender, n := setup(t)
	courier := models.Courier{Name: "Ali", IsActive: true, PushToken: "ExponentPushToken[ali]"}
	require.NoError(t, db.Create(&courier).Error)

	confirmed := models.VartoOrder{ID: 1, VendorID: 1, Status: models.StatusConfirmed}
	assert.Zero(t, n.OrderStatusChanged(&confirmed, models.StatusConfirmed))

	preparing := models.VartoOrder{ID: 1, VendorID: 1, Status: models.StatusPreparing}
	assert.Zero(t, n.OrderStatusChanged(&preparing, models.StatusConfirmed))

	guest := models.VartoOrder{ID: 2, VendorID: 1, Status: models.StatusDelivered}
	assert.Zero(t, n.OrderStatusChanged(&guest, models.StatusDelivering))

	missing := uint(404)
	ghost := models.VartoOrder{ID: 3, VendorID: 1, CustomerID: &missing, Status: models.StatusDelivered}
	assert.Zero(t, n.OrderStatusChanged(&ghost, models.StatusDelivering))

	n.Wait()
	assert.Empty(t, sender.tokens())
	assert.Empty(t, notifications(t, db))
}

func TestLookup(t *testing.T) {
	db, _, n := setup(t)
	vendor := models.Vendor{Name: "Fırın", Slug: "firin", PushToken: "ExponentPushToken[v]"}
	require.NoError(t, db.Create(&vendor).Error)

	r, err := n.Lookup(models.RecipientVendor, vendor.ID)
	require.NoError(t, err)
	assert.Equal(t, "ExponentPushToken[v]", r.PushToken)

	_, err = n.Lookup(models.RecipientCourier, 12345)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = n.Lookup("admin", 1)
	assert.Error(t, err)
}
