package services

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/example/velora/internal/models"
	"github.com/example/velora/internal/realtime"
)

// Notifier fans workflow events out to persisted notifications, the
// realtime hub, and email. Every method is fire-and-forget: failures are
// logged and never propagate back into the triggering workflow.
type Notifier struct {
	db     *gorm.DB
	hub    *realtime.Hub
	mailer *Mailer
}

// NewNotifier constructs a Notifier.
func NewNotifier(db *gorm.DB, hub *realtime.Hub, mailer *Mailer) *Notifier {
	return &Notifier{db: db, hub: hub, mailer: mailer}
}

// OrderPlaced notifies the ordering user and all staff about a new order,
// and emails the user an itemized confirmation.
func (n *Notifier) OrderPlaced(user *models.User, order *models.Order) {
	userNote := models.Notification{
		UserID:      &user.ID,
		Title:       "Order placed",
		Description: fmt.Sprintf("Your order %s has been placed", order.OrderNumber),
		Tag:         models.NotifyOrder,
		Target:      "/orders/" + order.ID.String(),
		Color:       "green",
	}
	n.persist(&userNote)
	n.hub.PushToUser(user.ID, realtime.Event{Name: realtime.EventNotificationOrder, Payload: userNote})

	staffNote := models.Notification{
		SenderAvatar: user.Avatar,
		Title:        "New order",
		Description:  fmt.Sprintf("%s %s placed order %s", user.FirstName, user.LastName, order.OrderNumber),
		Tag:          models.NotifyOrder,
		Target:       "/admin/orders/" + order.ID.String(),
		Color:        "blue",
	}
	n.notifyStaff(staffNote, realtime.EventNotifyStaffNewOrder)
	n.hub.PushToStaff(realtime.Event{Name: realtime.EventStaffNewOrder, Payload: order})

	if err := n.mailer.SendOrderConfirmation(user, order); err != nil {
		log.Printf("[Notifier] order confirmation email failed for %s: %v", order.OrderNumber, err)
	}
}

// OrderCancelled notifies the owning user and all staff about a
// user-initiated cancellation.
func (n *Notifier) OrderCancelled(user *models.User, order *models.Order) {
	userNote := models.Notification{
		UserID:      &user.ID,
		Title:       "Order cancelled",
		Description: fmt.Sprintf("Your order %s has been cancelled", order.OrderNumber),
		Tag:         models.NotifyOrder,
		Target:      "/orders/" + order.ID.String(),
		Color:       "red",
	}
	n.persist(&userNote)
	n.hub.PushToUser(user.ID, realtime.Event{Name: realtime.EventNotificationOrder, Payload: userNote})

	staffNote := models.Notification{
		SenderAvatar: user.Avatar,
		Title:        "Order cancelled",
		Description:  fmt.Sprintf("%s %s cancelled order %s", user.FirstName, user.LastName, order.OrderNumber),
		Tag:          models.NotifyOrder,
		Target:       "/admin/orders/" + order.ID.String(),
		Color:        "red",
	}
	n.notifyStaff(staffNote, realtime.EventNotifyStaffCancel)

	n.pushStatus(order)
}

// OrderStatusChanged notifies the owning user about a staff-driven status
// transition using a human-readable label.
func (n *Notifier) OrderStatusChanged(user *models.User, order *models.Order) {
	note := models.Notification{
		UserID:      &user.ID,
		Title:       "Order update",
		Description: fmt.Sprintf("Your order %s %s", order.OrderNumber, models.StatusLabel(order.Status)),
		Tag:         models.NotifyOrder,
		Target:      "/orders/" + order.ID.String(),
		Color:       "blue",
	}
	n.persist(&note)
	n.hub.PushToUser(user.ID, realtime.Event{Name: realtime.EventNotificationOrder, Payload: note})

	n.pushStatus(order)
}

// ReviewPosted notifies staff about a new product review.
func (n *Notifier) ReviewPosted(user *models.User, product *models.Product, review *models.Review) {
	note := models.Notification{
		SenderAvatar: user.Avatar,
		Title:        "New review",
		Description:  fmt.Sprintf("%s %s rated %s %d/5", user.FirstName, user.LastName, product.Name, review.Rating),
		Tag:          models.NotifyReview,
		Target:       "/admin/products/" + product.ID.String(),
		Color:        "yellow",
	}
	n.notifyStaff(note, realtime.EventNotificationOrder)
}

func (n *Notifier) pushStatus(order *models.Order) {
	n.hub.PushToUser(order.UserID, realtime.Event{
		Name: realtime.EventOrderStatus,
		Payload: map[string]interface{}{
			"order_id": order.ID,
			"status":   order.Status,
		},
	})
}

// notifyStaff persists one notification per staff account and pushes the
// given event to connected staff sessions.
func (n *Notifier) notifyStaff(template models.Notification, event string) {
	var staff []models.User
	if err := n.db.Where("role IN ?", []string{models.RoleStaff, models.RoleAdmin}).Find(&staff).Error; err != nil {
		log.Printf("[Notifier] failed to load staff accounts: %v", err)
		return
	}

	for _, account := range staff {
		note := template
		id := account.ID
		note.UserID = &id
		n.persist(&note)
	}

	n.hub.PushToStaff(realtime.Event{Name: event, Payload: template})
}

func (n *Notifier) persist(note *models.Notification) {
	if err := n.db.Create(note).Error; err != nil {
		log.Printf("[Notifier] failed to persist notification %q: %v", note.Title, err)
	}
}
