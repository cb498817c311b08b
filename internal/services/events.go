package services

import (
	"context"
	"log"
	"time"

	"candleshop/pkg/metrics"
)

// EventPublisher hands domain events to the message broker.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
}

// CacheInvalidator drops cached storefront listings after catalog writes.
type CacheInvalidator interface {
	Invalidate(ctx context.Context)
}

// Routing keys of the events published by the services.
const (
	EventProductCreated      = "product.created"
	EventProductUpdated      = "product.updated"
	EventProductDeleted      = "product.deleted"
	EventProductMoved        = "product.moved"
	EventCategoryCreated     = "category.created"
	EventCategoryUpdated     = "category.updated"
	EventCategoryDeleted     = "category.deleted"
	EventCatalogReconciled   = "catalog.reconciled"
	EventOrderCreated        = "order.created"
	EventOrderStatusUpdated  = "order.status_updated"
	RoutingKeyReconcileOrder = "catalog.reconcile"
)

// CatalogEvent is the payload of product and category events.
type CatalogEvent struct {
	ProductID        string    `json:"productId,omitempty"`
	CategoryID       string    `json:"categoryId,omitempty"`
	Category         string    `json:"category,omitempty"`
	PreviousCategory string    `json:"previousCategory,omitempty"`
	OccurredAt       time.Time `json:"occurredAt"`
}

// publish is best effort: a broker failure never fails the operation.
func publish(ctx context.Context, pub EventPublisher, routingKey string, payload interface{}) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, routingKey, payload); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", routingKey, err)
		metrics.EventsPublished.WithLabelValues(routingKey, "failed").Inc()
		return
	}
	metrics.EventsPublished.WithLabelValues(routingKey, "ok").Inc()
}

func invalidate(ctx context.Context, inv CacheInvalidator) {
	if inv != nil {
		inv.Invalidate(ctx)
	}
}
