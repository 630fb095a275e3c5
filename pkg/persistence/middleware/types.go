package middleware

import "github.com/aretw0/fsmgen/pkg/ports"

// Middleware allows wrapping an OutcomeStore to add behavior.
type Middleware func(ports.OutcomeStore) ports.OutcomeStore
