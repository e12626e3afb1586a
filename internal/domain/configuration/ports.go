package configuration

import (
	"context"
	"errors"
)

// ErrProfileNotFound is returned when no document is stored under a profile
var ErrProfileNotFound = errors.New("configuration profile not found")

// Repository persists configuration documents under named profiles
type Repository interface {
	Save(ctx context.Context, profile string, doc *Document) error
	Load(ctx context.Context, profile string) (*Document, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, profile string) error
}
