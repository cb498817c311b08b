package models

import (
	"fmt"
	"time"
)

// Apply copies a store patch onto the product. Unknown fields and values of
// the wrong type are rejected.
func (p *Product) Apply(fields map[string]interface{}) error {
	for key, value := range fields {
		var ok bool
		switch key {
		case FieldName:
			p.Name, ok = value.(string)
		case FieldCategory:
			p.Category, ok = value.(string)
		case FieldPrice:
			p.Price, ok = value.(float64)
		case FieldStock:
			p.Stock, ok = value.(int)
		case FieldStatus:
			p.Status, ok = value.(ProductStatus)
		case FieldDescription:
			p.Description, ok = value.(string)
		case FieldImageURL:
			p.ImageURL, ok = value.(*string)
		case FieldUpdatedAt:
			p.UpdatedAt, ok = value.(time.Time)
		default:
			return fmt.Errorf("unknown product field %q", key)
		}
		if !ok {
			return fmt.Errorf("invalid value %T for product field %q", value, key)
		}
	}
	return nil
}

// Apply copies a store patch onto the category.
func (c *Category) Apply(fields map[string]interface{}) error {
	for key, value := range fields {
		var ok bool
		switch key {
		case FieldName:
			c.Name, ok = value.(string)
		case FieldDescription:
			c.Description, ok = value.(string)
		case FieldProductCount:
			c.ProductCount, ok = value.(int)
		case FieldUpdatedAt:
			c.UpdatedAt, ok = value.(time.Time)
		default:
			return fmt.Errorf("unknown category field %q", key)
		}
		if !ok {
			return fmt.Errorf("invalid value %T for category field %q", value, key)
		}
	}
	return nil
}
