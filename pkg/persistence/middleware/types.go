package middleware

import "github.com/aretw0/formflow/pkg/ports"

// Middleware allows wrapping a StateStore to add behavior.
type Middleware func(ports.StateStore) ports.StateStore

// ResponseMiddleware allows wrapping a ResponseStore to add behavior.
type ResponseMiddleware func(ports.ResponseStore) ports.ResponseStore
