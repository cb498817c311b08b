package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"candleshop/internal/services"

	amqp "github.com/streadway/amqp"
)

const reconcileTimeout = 2 * time.Minute

// handleReconcileRequest recomputes every category count when another
// instance or an operator asks for it over the broker.
func (a *App) handleReconcileRequest(msg amqp.Delivery) error {
	ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
	defer cancel()

	corrected, err := a.Products.ReconcileCounts(ctx)
	if err != nil {
		return fmt.Errorf("reconcile request %s: %w", msg.MessageId, err)
	}
	log.Printf("Reconcile request handled, %d categories corrected", corrected)
	return nil
}

func handleOrderEvent(msg amqp.Delivery) error {
	var event services.OrderEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		// Malformed payloads are dropped rather than requeued.
		log.Printf("Discarding malformed order event: %v", err)
		return nil
	}
	log.Printf("Order event %s: order %s for %s is %s (total %.2f)",
		msg.RoutingKey, event.OrderID, event.Email, event.Status, event.Total)
	return nil
}
