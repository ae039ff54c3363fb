package chat

import (
	"context"

	historyRepo "homelead/database/repository/history"
	"homelead/models"
	"homelead/services/memory"
	"homelead/utils"
)

// TextGenerator is the boundary to the language-generation backend. The
// engine treats whatever comes back as untrusted text: every extracted
// value is re-validated deterministically before it touches slot state.
type TextGenerator interface {
	Generate(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

// ChatService drives one qualification conversation per session.
type ChatService interface {
	StartSession(ctx context.Context) (*models.ChatResponse, error)
	ProcessMessage(ctx context.Context, sessionID, text string) (*models.ChatResponse, error)
	ResetSession(ctx context.Context, sessionID string) error
	SessionLog(ctx context.Context, sessionID string) ([]models.ChatLogEntry, error)
}

// QualificationRules are the deterministic business gates. They decide
// acceptance regardless of what the generation backend's prose claims.
type QualificationRules struct {
	// MinimumBudget is inclusive: a budget equal to it passes.
	MinimumBudget int64
	// OfficeNumber is surfaced on every rejection path.
	OfficeNumber string
	// MaxRounds caps the number of user turns per session; 0 disables
	// the cap.
	MaxRounds int
}

// DefaultChatService is the production implementation. One instance
// serves many sessions; all per-conversation state lives in the
// session store, never on the service.
type DefaultChatService struct {
	Generator TextGenerator
	Extractor *Extractor
	Sessions  SessionStore
	Areas     utils.ServiceAreaReference
	Rules     QualificationRules

	// Optional collaborators; both are best-effort sinks.
	History historyRepo.ConversationRepository
	Memory  memory.TranscriptStore
}

// NewDefaultChatService wires the engine with its extraction adapter.
func NewDefaultChatService(
	gen TextGenerator,
	sessions SessionStore,
	areas utils.ServiceAreaReference,
	rules QualificationRules,
) *DefaultChatService {
	return &DefaultChatService{
		Generator: gen,
		Extractor: NewExtractor(gen),
		Sessions:  sessions,
		Areas:     areas,
		Rules:     rules,
	}
}
