package notify

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"varto-api/config"
	"varto-api/metrics"
	"varto-api/models"
	"varto-api/push"
	"varto-api/statemachine"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Recipient is anyone who can hold a push token and a notification inbox
type Recipient struct {
	Type      models.RecipientType
	ID        uint
	PushToken string
}

// Content is what a recipient sees
type Content struct {
	Title         string
	Body          string
	Type          string
	ReferenceType string
	ReferenceID   *uint
	Data          map[string]string
}

// Notifier fans order events out to push and the notification table.
// Every step is best effort: failures are logged and counted, never returned.
type Notifier struct {
	db        *gorm.DB
	sender    push.Sender
	logger    *logrus.Logger
	templates map[string]config.MessageTemplate
	timeout   time.Duration

	wg sync.WaitGroup
}

func New(db *gorm.DB, sender push.Sender, templates map[string]config.MessageTemplate, timeout time.Duration, logger *logrus.Logger) *Notifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Notifier{
		db:        db,
		sender:    sender,
		logger:    logger,
		templates: templates,
		timeout:   timeout,
	}
}

// OrderStatusChanged notifies the audience for prev → order.Status.
// Recipients are resolved before it returns, so the courier set is the one
// active at call time; delivery happens in the background. It returns the
// number of recipients queued.
func (n *Notifier) OrderStatusChanged(order *models.VartoOrder, prev models.OrderStatus) int {
	audience := statemachine.AudienceFor(prev, order.Status)
	if audience == statemachine.AudienceNone {
		return 0
	}

	recipients, err := n.resolve(audience, order)
	if err != nil {
		n.logger.WithError(err).WithFields(logrus.Fields{
			"order_id": order.ID,
			"audience": audience,
		}).Error("Failed to resolve notification recipients")
		return 0
	}
	if len(recipients) == 0 {
		n.logger.WithFields(logrus.Fields{
			"order_id": order.ID,
			"audience": audience,
		}).Info("No recipients for order status notification")
		return 0
	}

	content := n.orderContent(order)
	n.Dispatch(recipients, content)
	return len(recipients)
}

// Dispatch delivers content to each recipient in the background, one after
// another. A failure for one recipient does not stop the rest.
func (n *Notifier) Dispatch(recipients []Recipient, content Content) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		for _, r := range recipients {
			n.deliver(r, content)
		}
	}()
}

// Wait blocks until every dispatched fan-out has finished
func (n *Notifier) Wait() {
	n.wg.Wait()
}

// Lookup loads a single recipient with its current push token
func (n *Notifier) Lookup(t models.RecipientType, id uint) (Recipient, error) {
	r := Recipient{Type: t, ID: id}
	var err error
	switch t {
	case models.RecipientVendor:
		var v models.Vendor
		err = n.db.Select("id", "push_token").First(&v, id).Error
		r.PushToken = v.PushToken
	case models.RecipientCourier:
		var c models.Courier
		err = n.db.Select("id", "push_token").First(&c, id).Error
		r.PushToken = c.PushToken
	case models.RecipientCustomer:
		var c models.Customer
		err = n.db.Select("id", "push_token").First(&c, id).Error
		r.PushToken = c.PushToken
	default:
		err = errors.New("unknown recipient type " + string(t))
	}
	return r, err
}

func (n *Notifier) resolve(audience statemachine.Audience, order *models.VartoOrder) ([]Recipient, error) {
	switch audience {
	case statemachine.AudienceCouriers:
		var couriers []models.Courier
		if err := n.db.Where("is_active = ?", true).Order("id").Find(&couriers).Error; err != nil {
			return nil, err
		}
		out := make([]Recipient, 0, len(couriers))
		for _, c := range couriers {
			out = append(out, Recipient{Type: models.RecipientCourier, ID: c.ID, PushToken: c.PushToken})
		}
		return out, nil

	case statemachine.AudienceCustomer:
		if order.CustomerID == nil {
			return nil, nil
		}
		r, err := n.Lookup(models.RecipientCustomer, *order.CustomerID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return []Recipient{r}, nil
	}
	return nil, nil
}

func (n *Notifier) orderContent(order *models.VartoOrder) Content {
	vendorName := ""
	if order.Vendor != nil {
		vendorName = order.Vendor.Name
	} else {
		var v models.Vendor
		if err := n.db.Select("name").First(&v, order.VendorID).Error; err == nil {
			vendorName = v.Name
		}
	}

	orderID := strconv.FormatUint(uint64(order.ID), 10)
	tmpl, ok := n.templates[string(order.Status)]
	if !ok {
		tmpl = config.MessageTemplate{Title: "Sipariş güncellendi", Body: "#{order_id}: {status}"}
	}
	replacer := strings.NewReplacer("{order_id}", orderID, "{vendor}", vendorName, "{status}", string(order.Status))

	id := order.ID
	return Content{
		Title:         replacer.Replace(tmpl.Title),
		Body:          replacer.Replace(tmpl.Body),
		Type:          "order_status",
		ReferenceType: "varto_order",
		ReferenceID:   &id,
		Data: map[string]string{
			"order_id": orderID,
			"status":   string(order.Status),
		},
	}
}

// deliver pushes when push is enabled and the recipient has a token, then
// records the notification row regardless of the push outcome.
func (n *Notifier) deliver(r Recipient, content Content) {
	log := n.logger.WithFields(logrus.Fields{
		"recipient_type": r.Type,
		"recipient_id":   r.ID,
		"type":           content.Type,
	})

	if r.PushToken != "" && n.sender != nil {
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		_, err := n.sender.Send(ctx, push.Message{
			To:    r.PushToken,
			Title: content.Title,
			Body:  content.Body,
			Data:  content.Data,
		})
		cancel()
		metrics.RecordPush(string(r.Type), err)
		if err != nil {
			log.WithError(err).Warn("Push notification failed")
		}
	}

	row := models.VartoNotification{
		RecipientType: r.Type,
		RecipientID:   r.ID,
		Title:         content.Title,
		Body:          content.Body,
		Type:          content.Type,
		ReferenceType: content.ReferenceType,
		ReferenceID:   content.ReferenceID,
	}
	err := n.db.Create(&row).Error
	metrics.RecordNotificationWrite(string(r.Type), err)
	if err != nil {
		log.WithError(err).Error("Failed to store notification")
	}
}
