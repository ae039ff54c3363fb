package models

import (
	"strconv"
	"time"
)

// FormatBudget renders a budget amount as a plain decimal string for
// prompts and snapshots.
func FormatBudget(v int64) string {
	return strconv.FormatInt(v, 10)
}

// Intent values the classifier is allowed to produce. Anything else is
// coerced to IntentGeneralQuery before it reaches the engine.
const (
	IntentBuyHome      = "BUY_HOME"
	IntentSellHome     = "SELL_HOME"
	IntentGeneralQuery = "GENERAL_QUERY"
	IntentInvalid      = "INVALID"
)

// Conversation phases. Phase is derived from slot state plus gate
// outcomes; it is never set directly by a handler.
const (
	PhaseCollecting   = "collecting"
	PhaseQualified    = "qualified"
	PhaseRejected     = "rejected"
	PhaseReassistance = "reassistance"
	PhaseClosed       = "closed"
)

// Slot keys, in the order the engine asks for them.
const (
	SlotIntent       = "intent"
	SlotPropertyType = "property_type"
	SlotName         = "name"
	SlotPhone        = "phone"
	SlotEmail        = "email"
	SlotBudget       = "budget"
	SlotPostcode     = "postcode"
)

// SlotOrder is the canonical asking order. property_type is only
// required when the intent is BUY_HOME.
var SlotOrder = []string{
	SlotIntent,
	SlotPropertyType,
	SlotName,
	SlotPhone,
	SlotEmail,
	SlotBudget,
	SlotPostcode,
}

// SlotState holds everything the dialogue has collected so far. Fields
// are declared statically so that unknown keys coming back from the
// generation backend are dropped at the extraction boundary instead of
// leaking into state. Empty string (or nil budget) means "not collected
// yet".
type SlotState struct {
	Intent       string `json:"intent"`
	PropertyType string `json:"property_type"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Budget       *int64 `json:"budget"`
	Postcode     string `json:"postcode"`
}

// Get returns the value stored under a slot key, with budget rendered
// as its decimal string. Unknown keys report as unset.
func (s *SlotState) Get(key string) (string, bool) {
	switch key {
	case SlotIntent:
		return s.Intent, s.Intent != ""
	case SlotPropertyType:
		return s.PropertyType, s.PropertyType != ""
	case SlotName:
		return s.Name, s.Name != ""
	case SlotPhone:
		return s.Phone, s.Phone != ""
	case SlotEmail:
		return s.Email, s.Email != ""
	case SlotBudget:
		if s.Budget == nil {
			return "", false
		}
		return FormatBudget(*s.Budget), true
	case SlotPostcode:
		return s.Postcode, s.Postcode != ""
	}
	return "", false
}

// IsSet reports whether a slot already holds a confirmed value.
func (s *SlotState) IsSet(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Clone returns a deep copy. Log entries snapshot slot state through
// this, so a later merge can never mutate an appended entry.
func (s *SlotState) Clone() SlotState {
	out := *s
	if s.Budget != nil {
		b := *s.Budget
		out.Budget = &b
	}
	return out
}

// ChatLogEntry is one immutable turn of the conversation log.
type ChatLogEntry struct {
	Timestamp         time.Time `json:"timestamp"`
	UserMessage       string    `json:"user_message"`
	AssistantResponse string    `json:"assistant_response"`
	Slots             SlotState `json:"slots"`
}

// ChatSession is the unit of state owned by one conversation. Each
// session is an independently owned instance; nothing here is shared
// across sessions.
type ChatSession struct {
	ID        string         `json:"id"`
	Phase     string         `json:"phase"`
	Slots     SlotState      `json:"slots"`
	Log       []ChatLogEntry `json:"log"`
	Rounds    int            `json:"rounds"`
	CreatedAt time.Time      `json:"createdAt"`
}

// ConversationRecord is the per-turn record handed to reporting
// collaborators and persisted to the history collection. Field names
// follow the external output contract.
type ConversationRecord struct {
	ID                string    `json:"id" bson:"id"`
	SessionID         string    `json:"session_id" bson:"sessionId"`
	Timestamp         time.Time `json:"timestamp" bson:"timestamp"`
	UserMessage       string    `json:"user_message" bson:"userMessage"`
	AssistantResponse string    `json:"assistant_response" bson:"assistantResponse"`
	Slots             SlotState `json:"slots" bson:"slots"`
}

// ChatRequest is the payload coming from the frontend into /api/chat/message.
type ChatRequest struct {
	Text string `json:"text"`
}

// ChatResponse is what the chat handler returns to the frontend.
type ChatResponse struct {
	SessionID string    `json:"session_id"`
	Reply     string    `json:"reply"`
	Phase     string    `json:"phase"`
	Slots     SlotState `json:"slots"`
	Done      bool      `json:"done"`
}
