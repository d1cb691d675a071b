// Package notification delivers web push alerts to browsers subscribed to
// an elevator: one when a maintenance visit is logged, one when a visit is
// flagged as needing repair.
package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"elevator-maintenance-backend/internal/model"
)

// EventKind distinguishes the notification triggers.
type EventKind int

const (
	// EventLogged fires when a technician logs a maintenance visit.
	EventLogged EventKind = iota
	// EventRepairFlagged fires when a record's repair flag is raised.
	EventRepairFlagged
)

// Event is one notification job; RecordID names the maintenance record that
// triggered it.
type Event struct {
	RecordID int64
	Kind     EventKind
}

// NotificationSender defines the interface for sending a web push
// notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the
// webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool manages a pool of workers for sending notifications.
type WorkerPool struct {
	size    int
	jobs    chan Event
	db      *gorm.DB
	webpush *webpush.Options
	sender  NotificationSender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Event, size),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Notification worker %d started", id)
	for {
		select {
		case event := <-wp.jobs:
			wp.sendNotificationsForRecord(ctx, event)
		case <-ctx.Done():
			log.Printf("Notification worker %d shutting down", id)
			return
		}
	}
}

// Dispatch sends a job to the worker pool.
func (wp *WorkerPool) Dispatch(event Event) {
	wp.jobs <- event
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan Event {
	return wp.jobs
}

// sendNotificationsForRecord loads the record and notifies every
// subscription watching its elevator.
func (wp *WorkerPool) sendNotificationsForRecord(ctx context.Context, event Event) {
	var record model.MaintenanceRecord
	err := wp.db.WithContext(ctx).
		Preload("Elevator").
		Preload("User").
		First(&record, event.RecordID).Error
	if err != nil {
		log.Printf("Error fetching record %d for notification: %v", event.RecordID, err)
		return
	}

	var subscriptions []model.PushSubscription
	err = wp.db.WithContext(ctx).
		Joins("JOIN subscription_elevator_mapping sem ON sem.push_subscription_endpoint = push_subscriptions.endpoint").
		Where("sem.elevator_id = ?", record.ElevatorID).
		Find(&subscriptions).Error
	if err != nil {
		log.Printf("Error fetching subscriptions for elevator %d: %v", record.ElevatorID, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	label := record.Elevator.Name
	if record.Elevator.Location != "" {
		label = fmt.Sprintf("%s (%s)", record.Elevator.Name, record.Elevator.Location)
	}

	var message string
	switch event.Kind {
	case EventRepairFlagged:
		message = fmt.Sprintf("Elevator %s needs repair, reported by %s", label, record.User.Name)
	default:
		message = fmt.Sprintf("Elevator %s was serviced by %s", label, record.User.Name)
	}

	log.Printf("Sending %d notifications for record %d", len(subscriptions), record.ID)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, []byte(message))
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Endpoint gone; drop the subscription.
	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
