package services

import (
	"errors"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MaxImageSize is the largest accepted product image, in bytes.
const MaxImageSize = 5 * 1024 * 1024

// ImageUpload is a newly selected image file that still has to be stored.
type ImageUpload struct {
	Filename    string
	ContentType string `validate:"oneof=image/jpeg image/png image/gif"`
	Size        int64  `validate:"max=5242880"`
	Data        []byte
}

// ProductInput is the product form as submitted by an admin. Either ImageURL
// (an image uploaded earlier) or Image (a new file) must be set.
type ProductInput struct {
	Name        string       `json:"name" form:"name" validate:"min=3"`
	Category    string       `json:"category" form:"category" validate:"required"`
	Price       float64      `json:"price" form:"price" validate:"gt=0"`
	Stock       int          `json:"stock" form:"stock" validate:"gte=0"`
	Description string       `json:"description" form:"description" validate:"min=10"`
	ImageURL    string       `json:"imageUrl" form:"imageUrl" validate:"required_without=Image"`
	Image       *ImageUpload `json:"-" form:"-"`
}

var validate = validator.New()

var validationMessages = map[string]struct{ key, message string }{
	"Name":        {"name", "Product name must be at least 3 characters long"},
	"Price":       {"price", "Price must be greater than 0"},
	"Stock":       {"stock", "Stock cannot be negative"},
	"Category":    {"category", "Please select a category"},
	"Description": {"description", "Description must be at least 10 characters long"},
	"ImageURL":    {"image", "Please upload a product image"},
	"ContentType": {"image", "File type not supported. Please upload a JPEG, PNG, or GIF image."},
	"Size":        {"image", "Image size must be less than 5MB"},
}

func (in ProductInput) normalized() ProductInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	in.Description = strings.TrimSpace(in.Description)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	return in
}

// Validate checks a product form and returns every violation found, keyed by
// form field. It returns nil when the input is valid.
func (s *ProductService) Validate(input ProductInput) ValidationErrors {
	return validateProduct(input.normalized())
}

func validateProduct(input ProductInput) ValidationErrors {
	errs := ValidationErrors{}
	if err := validate.Struct(input); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return ValidationErrors{"form": err.Error()}
		}
		for _, fe := range fieldErrs {
			m, ok := validationMessages[fe.Field()]
			if !ok {
				errs[strings.ToLower(fe.Field())] = fe.Error()
				continue
			}
			if _, seen := errs[m.key]; !seen {
				errs[m.key] = m.message
			}
		}
	}

	// Infinite prices pass gt=0 but cannot be encoded as JSON.
	if math.IsInf(input.Price, 0) || math.IsNaN(input.Price) {
		errs["price"] = validationMessages["Price"].message
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
