// Package notify delivers transactional email to customers. The
// Postmark sender sits behind a circuit breaker so a flapping email
// provider stops being hammered; order placement never fails on it.
package notify

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/keighl/postmark"
	"github.com/sony/gobreaker/v2"

	"github.com/Shray90/YalaCarves-sub001/internal/domain"
)

type PostmarkNotifier struct {
	client  *postmark.Client
	sender  string
	breaker *gobreaker.CircuitBreaker[postmark.EmailResponse]
}

func NewPostmarkNotifier(apiToken, sender string) *PostmarkNotifier {
	breaker := gobreaker.NewCircuitBreaker[postmark.EmailResponse](gobreaker.Settings{
		Name:    "postmark",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
	return &PostmarkNotifier{
		client:  postmark.NewClient(apiToken, ""),
		sender:  sender,
		breaker: breaker,
	}
}

func (n *PostmarkNotifier) OrderPlaced(_ context.Context, email, name string, order *domain.Order) error {
	subject := fmt.Sprintf("Order Confirmation - %s", order.OrderNumber)
	body := orderPlacedBody(name, order)
	return n.send(email, subject, body)
}

func (n *PostmarkNotifier) OrderCancelled(_ context.Context, email, name string, order *domain.Order) error {
	subject := fmt.Sprintf("Order Cancelled - %s", order.OrderNumber)
	body := orderCancelledBody(name, order)
	return n.send(email, subject, body)
}

func (n *PostmarkNotifier) send(to, subject, body string) error {
	_, err := n.breaker.Execute(func() (postmark.EmailResponse, error) {
		return n.client.SendEmail(postmark.Email{
			From:     n.sender,
			To:       to,
			Subject:  subject,
			TextBody: body,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func orderPlacedBody(name string, order *domain.Order) string {
	return fmt.Sprintf(
		"Dear %s,\n\nThank you for your order %s! It has been placed successfully and will be paid on delivery.\n\nTotal Amount: Rs. %.2f\n\nThank you for shopping with Yala Carves!\n",
		name, order.OrderNumber, order.TotalAmount)
}

func orderCancelledBody(name string, order *domain.Order) string {
	return fmt.Sprintf(
		"Dear %s,\n\nYour order %s has been cancelled. Since payment is collected on delivery, nothing has been charged.\n\nWe hope to see you again at Yala Carves.\n",
		name, order.OrderNumber)
}

// NoopNotifier is used when no Postmark token is configured (local
// development, tests). It only logs.
type NoopNotifier struct{}

func (NoopNotifier) OrderPlaced(_ context.Context, email, _ string, order *domain.Order) error {
	log.Printf("order confirmation for %s suppressed (no email provider configured, to=%s)", order.OrderNumber, email)
	return nil
}

func (NoopNotifier) OrderCancelled(_ context.Context, email, _ string, order *domain.Order) error {
	log.Printf("cancellation notice for %s suppressed (no email provider configured, to=%s)", order.OrderNumber, email)
	return nil
}
