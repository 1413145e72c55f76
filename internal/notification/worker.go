package notification

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"hotel-market-backend/internal/model"
	"hotel-market-backend/internal/store"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// AlertJob carries the alerts fired for one city during an analysis run.
type AlertJob struct {
	City   string
	Alerts []model.Alert
}

// alertPayload is the JSON body pushed to subscribers.
type alertPayload struct {
	City   string        `json:"city"`
	Alerts []model.Alert `json:"alerts"`
}

// WorkerPool manages a pool of workers for sending market alert notifications.
type WorkerPool struct {
	size    int
	jobs    chan AlertJob
	store   store.Store
	webpush *webpush.Options
	sender  NotificationSender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, st store.Store, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan AlertJob, size), // Buffered channel
		store:   st,
		webpush: webpushOptions,
		sender:  &WebPushSender{}, // Use the real sender by default
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

// worker is the actual worker goroutine.
func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Worker %d started", id)
	for {
		select {
		case job := <-wp.jobs:
			log.Printf("Worker %d processing alerts for %s", id, job.City)
			wp.notifyCity(ctx, job)
		case <-ctx.Done():
			log.Printf("Worker %d shutting down", id)
			return
		}
	}
}

// Dispatch sends a job to the worker pool. Alerts are best-effort: when the
// queue is full the job is dropped rather than blocking the caller, which
// may be an HTTP handler.
func (wp *WorkerPool) Dispatch(job AlertJob) {
	select {
	case wp.jobs <- job:
	default:
		log.Printf("Notification queue full; dropping %d alerts for %s", len(job.Alerts), job.City)
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan AlertJob {
	return wp.jobs
}

// notifyCity fetches the city's subscribers and pushes the alert payload to
// each of them.
func (wp *WorkerPool) notifyCity(ctx context.Context, job AlertJob) {
	if len(job.Alerts) == 0 {
		return
	}

	subscriptions, err := wp.store.SubscribersForCity(ctx, job.City)
	if err != nil {
		log.Printf("Error fetching subscribers for %s: %v", job.City, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	payload, err := json.Marshal(alertPayload{City: job.City, Alerts: job.Alerts})
	if err != nil {
		log.Printf("Error marshaling alert payload for %s: %v", job.City, err)
		return
	}

	log.Printf("Sending %d notifications for %s", len(subscriptions), job.City)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload)
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.AlertSubscription, payload []byte) {
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

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.store.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
