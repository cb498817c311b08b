package models

import "time"

// ProductStatus is derived from stock and never set directly by clients.
type ProductStatus string

const (
	StatusInStock    ProductStatus = "In Stock"
	StatusLowStock   ProductStatus = "Low Stock"
	StatusOutOfStock ProductStatus = "Out of Stock"
)

// LowStockThreshold is the highest stock level still reported as low stock.
const LowStockThreshold = 10

// Store field names. Patches sent to the repositories are keyed by these.
const (
	FieldName         = "name"
	FieldCategory     = "category"
	FieldPrice        = "price"
	FieldStock        = "stock"
	FieldStatus       = "status"
	FieldDescription  = "description"
	FieldImageURL     = "image_url"
	FieldProductCount = "product_count"
	FieldCreatedAt    = "created_at"
	FieldUpdatedAt    = "updated_at"
)

// Product represents a product in the store. Category holds the name of the
// category the product belongs to, not its ID.
type Product struct {
	ID          string        `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	Name        string        `json:"name" gorm:"type:varchar(255);not null" bson:"name"`
	Category    string        `json:"category" gorm:"type:varchar(255);index" bson:"category"`
	Price       float64       `json:"price" bson:"price"`
	Stock       int           `json:"stock" bson:"stock"`
	Status      ProductStatus `json:"status" gorm:"type:varchar(20)" bson:"status"`
	Description string        `json:"description" gorm:"type:text" bson:"description"`
	ImageURL    *string       `json:"imageUrl" gorm:"type:text" bson:"image_url"`
	CreatedAt   time.Time     `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time     `json:"updatedAt" bson:"updated_at"`
}

// DeriveStatus maps a stock level to the status shown to customers.
func DeriveStatus(stock int) ProductStatus {
	switch {
	case stock <= 0:
		return StatusOutOfStock
	case stock <= LowStockThreshold:
		return StatusLowStock
	default:
		return StatusInStock
	}
}
