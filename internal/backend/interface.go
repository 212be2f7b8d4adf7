package backend

import (
	"context"

	"pocketledger/internal/store"
)

// Backend is the full persistence surface the ledger service needs.
type Backend interface {
	store.SubscriptionStore
	store.ExpenseStore
	store.InteractionStore
	store.UnlockStore
	store.UserStore
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backend instance and optional cleanup function
type BackendResult struct {
	Backend Backend
	Type    BackendType
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type BackendType

	// Remote specific
	RemoteDBURL string
	RemoteDBKey string

	// Local specific; empty path means in-memory blobs
	LocalDBPath string
}

// BackendType represents the type of backend
type BackendType string

const (
	RemoteBackend BackendType = "remote"
	LocalBackend  BackendType = "local"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case RemoteBackend, LocalBackend:
		return true
	default:
		return false
	}
}
