// Package services holds the gallery's business operations. Handlers pass the
// authenticated user id explicitly; nothing here reads request or session state.
package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrNotFound means the addressed publication, remix, comment or user does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the caller does not own the resource.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidInput means a field failed validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrMissingData means a required field was absent or blank.
	ErrMissingData = errors.New("missing data")
)

// loadByID fetches a row by primary key, mapping a missing row to ErrNotFound.
func loadByID(ctx context.Context, db *gorm.DB, dest interface{}, id uint, what string) error {
	if id == 0 {
		return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
	}
	if err := db.WithContext(ctx).First(dest, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
		}
		return fmt.Errorf("load %s %d: %w", what, id, err)
	}
	return nil
}
