package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-market-backend/internal/model"
	"hotel-market-backend/internal/store"
)

// mockSender is a mock implementation of the NotificationSender interface.
type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// Send calls the mock SendFunc.
func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

func emptyStore(t *testing.T) store.Store {
	t.Helper()
	return store.NewSyntheticSource(1, nil, 0, time.Now())
}

func TestWorkerPool_Dispatch(t *testing.T) {
	wp := NewWorkerPool(1, emptyStore(t), &webpush.Options{})

	wp.Dispatch(AlertJob{City: "Gramado"})

	select {
	case job := <-wp.jobs:
		assert.Equal(t, "Gramado", job.City)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for job to be dispatched")
	}
}

// A full queue with no running workers must drop jobs instead of blocking
// the dispatching goroutine.
func TestWorkerPool_DispatchDoesNotBlockWhenFull(t *testing.T) {
	wp := NewWorkerPool(1, emptyStore(t), &webpush.Options{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 5; i++ {
			wp.Dispatch(AlertJob{City: "Gramado"})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Dispatch blocked on a full queue")
	}
	assert.Len(t, wp.jobs, 1, "only the buffered job should survive")
}

func TestWorkerPool_WorkerLogic(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	alerts := []model.Alert{{
		Type:             model.AlertPriceSurge,
		Severity:         model.SeverityHigh,
		Message:          "prices moving fast",
		AffectedListings: 4,
		CreatedAt:        now,
	}}

	t.Run("sends notification for one subscription", func(t *testing.T) {
		st := emptyStore(t)
		require.NoError(t, st.SaveSubscription(context.Background(), model.AlertSubscription{
			Endpoint: "https://example.com/push",
			P256DH:   "test_p256dh",
			Auth:     "test_auth",
		}, []string{"Gramado"}))

		wp := NewWorkerPool(1, st, &webpush.Options{})
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		wp.Start(ctx)

		var wg sync.WaitGroup
		wg.Add(1)
		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				assert.Equal(t, "https://example.com/push", sub.Endpoint)

				var body alertPayload
				require.NoError(t, json.Unmarshal(payload, &body))
				assert.Equal(t, "Gramado", body.City)
				require.Len(t, body.Alerts, 1)
				assert.Equal(t, model.AlertPriceSurge, body.Alerts[0].Type)

				wg.Done()
				return &http.Response{
					StatusCode: http.StatusCreated,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		}

		wp.Dispatch(AlertJob{City: "Gramado", Alerts: alerts})
		wg.Wait()
	})

	t.Run("deletes expired subscription", func(t *testing.T) {
		st := emptyStore(t)
		require.NoError(t, st.SaveSubscription(context.Background(), model.AlertSubscription{
			Endpoint: "https://example.com/expired",
			P256DH:   "test_p256dh_expired",
			Auth:     "test_auth_expired",
		}, []string{"Gramado"}))

		wp := NewWorkerPool(1, st, &webpush.Options{})
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		wp.Start(ctx)

		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusGone,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		}

		wp.Dispatch(AlertJob{City: "Gramado", Alerts: alerts})

		// A short sleep to allow the worker to process the job
		time.Sleep(100 * time.Millisecond)

		_, err := st.GetSubscription(context.Background(), "https://example.com/expired")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("skips jobs with no alerts", func(t *testing.T) {
		st := emptyStore(t)
		require.NoError(t, st.SaveSubscription(context.Background(), model.AlertSubscription{
			Endpoint: "https://example.com/quiet",
		}, []string{"Gramado"}))

		wp := NewWorkerPool(1, st, &webpush.Options{})
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		wp.Start(ctx)

		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				t.Error("no notification should be sent for an empty alert set")
				return nil, nil
			},
		}

		wp.Dispatch(AlertJob{City: "Gramado"})
		time.Sleep(100 * time.Millisecond)
	})
}
