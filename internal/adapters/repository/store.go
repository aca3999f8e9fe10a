// Package repository persists employee histories, one file per employee.
package repository

import (
	"context"

	"github.com/okian/ewi/internal/domain/employee"
	"github.com/okian/ewi/internal/domain/model"
)

// Store provides read/write access to employee histories.
type Store interface {
	// Load returns the history for id.
	// Returns ErrNotFound if the employee has no history yet.
	Load(ctx context.Context, id model.EmployeeID) (*employee.Record, error)

	// Save writes rec, replacing any previous history for the same employee.
	Save(ctx context.Context, rec *employee.Record) error

	// Exists reports whether a history is stored for id.
	Exists(ctx context.Context, id model.EmployeeID) (bool, error)

	// List returns the stored employee IDs whose formal code matches the glob
	// pattern, ordered by code. An empty pattern matches everything.
	List(ctx context.Context, pattern string) ([]model.EmployeeID, error)

	// Delete removes the history for id.
	Delete(ctx context.Context, id model.EmployeeID) error
}
