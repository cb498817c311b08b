package models

import "time"

// Category groups products by name. ProductCount is a denormalized count of
// the products whose Category equals Name.
type Category struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	Name         string    `json:"name" gorm:"type:varchar(255);index;not null" bson:"name"`
	Description  string    `json:"description" gorm:"type:text" bson:"description"`
	ProductCount int       `json:"productCount" bson:"product_count"`
	CreatedAt    time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updated_at"`
}
