package ports

import (
	"context"

	"github.com/aretw0/fsmgen/pkg/domain"
)

// Dialogue is a chat-style generative model.
type Dialogue interface {
	// Chat appends prompt to history as a user turn, asks the model and returns
	// its reply together with the extended history (user + assistant turns).
	// An empty history starts a new conversation with the default persona.
	// When randomize is set the sampling parameters are drawn per call.
	Chat(ctx context.Context, prompt string, history []domain.Message, randomize bool) (string, []domain.Message, error)
}
