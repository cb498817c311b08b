package services

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrUpload means the product image could not be stored. No product
	// document was written.
	ErrUpload = errors.New("image upload failed")
	// ErrWrite means a store create, update or delete failed.
	ErrWrite = errors.New("store write failed")
	// ErrStaleCount means the product change was persisted but a category
	// product count could not be adjusted afterwards.
	ErrStaleCount = errors.New("category product count not adjusted")
	// ErrInvalidMove is returned for a move to an empty or unchanged category.
	ErrInvalidMove = errors.New("invalid product move")
)

// ValidationErrors maps an input field to a user-facing message.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+v[field])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
