// File: services/chat/engine.go
package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"homelead/models"
	"homelead/services/memory"
	"homelead/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StartSession creates a fresh, isolated conversation and returns the
// scripted welcome message. No generation call is made here.
func (s *DefaultChatService) StartSession(ctx context.Context) (*models.ChatResponse, error) {
	session := &models.ChatSession{
		ID:        uuid.New().String(),
		Phase:     models.PhaseCollecting,
		CreatedAt: time.Now(),
	}
	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return &models.ChatResponse{
		SessionID: session.ID,
		Reply:     WelcomeMessage,
		Phase:     session.Phase,
		Slots:     session.Slots.Clone(),
	}, nil
}

// ProcessMessage runs one strictly sequential turn: load the session,
// advance the state machine, append the log entry, notify sinks, and
// persist. Returns ErrSessionNotFound for unknown or expired sessions.
func (s *DefaultChatService) ProcessMessage(ctx context.Context, sessionID, text string) (*models.ChatResponse, error) {
	session, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	reply, turnPhase := s.step(ctx, session, text)

	// The log entry snapshots post-merge slot state and is appended on
	// every branch, including rejections and apologies.
	entry := models.ChatLogEntry{
		Timestamp:         time.Now(),
		UserMessage:       text,
		AssistantResponse: reply,
		Slots:             session.Slots.Clone(),
	}
	session.Log = append(session.Log, entry)
	session.Rounds++

	s.notifySinks(ctx, session.ID, entry)

	switch turnPhase {
	case models.PhaseRejected:
		// A gate fired: the outcome is final for this enquiry, but the
		// channel restarts clean so the user can begin a new one.
		session.Slots = models.SlotState{}
		session.Phase = models.PhaseCollecting
		session.Rounds = 0
		if err := s.Sessions.Save(ctx, session); err != nil {
			return nil, err
		}
	case models.PhaseClosed:
		// The conversation is over; drop the stored state. The next
		// enquiry starts a new logical session with a new ID.
		if err := s.Sessions.Delete(ctx, session.ID); err != nil {
			return nil, err
		}
	default:
		if err := s.Sessions.Save(ctx, session); err != nil {
			return nil, err
		}
	}

	return &models.ChatResponse{
		SessionID: session.ID,
		Reply:     reply,
		Phase:     turnPhase,
		Slots:     entry.Slots,
		Done:      turnPhase == models.PhaseRejected || turnPhase == models.PhaseClosed,
	}, nil
}

// ResetSession discards all collected state for a session, including
// its archived history and transcript memory. Sink purges are
// best-effort, like sink writes.
func (s *DefaultChatService) ResetSession(ctx context.Context, sessionID string) error {
	session, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	session.Slots = models.SlotState{}
	session.Phase = models.PhaseCollecting
	session.Rounds = 0
	session.Log = nil

	logger := utils.GetLogger()
	if s.History != nil {
		if err := s.History.DeleteBySessionID(ctx, sessionID); err != nil {
			logger.Warn("failed to purge conversation history", zap.String("sessionID", sessionID), zap.Error(err))
		}
	}
	if s.Memory != nil {
		if err := s.Memory.Clear(ctx, sessionID); err != nil {
			logger.Warn("failed to purge transcript memory", zap.String("sessionID", sessionID), zap.Error(err))
		}
	}

	return s.Sessions.Save(ctx, session)
}

// SessionLog returns the append-only conversation log. When the live
// session has expired, the archived history records stand in for it; a
// session unknown to both reports not-found.
func (s *DefaultChatService) SessionLog(ctx context.Context, sessionID string) ([]models.ChatLogEntry, error) {
	session, err := s.Sessions.Get(ctx, sessionID)
	if err == nil {
		return session.Log, nil
	}
	if !errors.Is(err, ErrSessionNotFound) || s.History == nil {
		return nil, err
	}

	records, histErr := s.History.GetBySessionID(ctx, sessionID)
	if histErr != nil || len(records) == 0 {
		return nil, err
	}
	log := make([]models.ChatLogEntry, 0, len(records))
	for _, r := range records {
		log = append(log, models.ChatLogEntry{
			Timestamp:         r.Timestamp,
			UserMessage:       r.UserMessage,
			AssistantResponse: r.AssistantResponse,
			Slots:             r.Slots,
		})
	}
	return log, nil
}

// step advances the phase machine for one user message and returns the
// outbound reply plus the phase to report for this turn. Reported and
// stored phase differ in exactly one case: a turn that completes
// qualification reports "qualified" while the session moves straight on
// to "reassistance". Reassistance re-entry is a loop, not recursion, so
// stack depth stays bounded no matter what the user sends.
func (s *DefaultChatService) step(ctx context.Context, session *models.ChatSession, text string) (string, string) {
	for {
		switch session.Phase {
		case models.PhaseReassistance:
			// A goodbye always gets the goodbye, even on the last
			// permitted round; the cap only limits collection turns.
			if isDecline(text) {
				session.Phase = models.PhaseClosed
				return closingMessage, models.PhaseClosed
			}
			// Anything else re-enters collection and the same text is
			// processed as a fresh turn.
			session.Phase = models.PhaseCollecting
			continue

		default:
			if s.Rules.MaxRounds > 0 && session.Rounds >= s.Rules.MaxRounds {
				session.Phase = models.PhaseClosed
				return turnLimitMessage(s.Rules.OfficeNumber), models.PhaseClosed
			}
			return s.collectTurn(ctx, session, text)
		}
	}
}

// collectTurn handles a single collecting-phase message end to end:
// intent resolution, extraction, merge, gates, and phase transitions.
func (s *DefaultChatService) collectTurn(ctx context.Context, session *models.ChatSession, text string) (string, string) {
	logger := utils.GetLogger()

	// First turn: resolve intent before any slot filling.
	if session.Slots.Intent == "" {
		intent := shortcutIntent(text)
		if intent == "" {
			intent = detectIntent(ctx, s.Generator, text)
		}
		switch intent {
		case models.IntentBuyHome, models.IntentSellHome:
			session.Slots.Intent = intent
			next := nextRequiredSlot(&session.Slots)
			return intentAckMessage(intent, next), session.Phase
		default:
			// GENERAL_QUERY and INVALID both re-prompt the menu.
			return menuMessage(), session.Phase
		}
	}

	next := nextRequiredSlot(&session.Slots)

	result, err := s.Extractor.Extract(ctx, session.Slots, next, text)
	if err != nil {
		// Backend trouble must not corrupt state; the user can retry.
		logger.Warn("extraction call failed", zap.String("sessionID", session.ID), zap.Error(err))
		return apologyMessage, session.Phase
	}

	if next == "" {
		// Everything is collected already; this is a conversational
		// turn and the session settles back into reassistance.
		session.Phase = models.PhaseReassistance
		if strings.TrimSpace(result.DisplayText) == "" {
			return anythingElseMessage, models.PhaseReassistance
		}
		return result.DisplayText, models.PhaseReassistance
	}

	// Merge extracted values in slot order. A filled slot is never
	// overwritten; an invalid postcode is cleared rather than kept.
	var postcodeAck string
	for _, key := range models.SlotOrder {
		value, ok := result.Slots[key]
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}

		switch key {
		case models.SlotPostcode:
			verdict := utils.ValidatePostcode(value, s.Areas)
			if !verdict.Valid {
				session.Slots.Postcode = ""
				if verdict.Reason == utils.PostcodeBadFormat {
					return postcodeBadFormatMessage(verdict.Normalized, s.Rules.OfficeNumber), session.Phase
				}
				session.Phase = models.PhaseRejected
				if verdict.Reason == utils.PostcodeUnknown {
					return postcodeUnknownMessage(verdict.Normalized, s.Rules.OfficeNumber), models.PhaseRejected
				}
				return postcodeUnservicedMessage(verdict.Normalized, s.Rules.OfficeNumber), models.PhaseRejected
			}
			if session.Slots.Postcode == "" {
				session.Slots.Postcode = verdict.Normalized
				postcodeAck = postcodeAcceptedMessage(session.Slots.Intent, verdict.Normalized)
			}

		case models.SlotBudget:
			if session.Slots.Budget == nil {
				if amount, parsed := ParseBudget(value); parsed {
					session.Slots.Budget = &amount
				}
			}

		case models.SlotPropertyType:
			if session.Slots.Intent == models.IntentBuyHome && session.Slots.PropertyType == "" {
				session.Slots.PropertyType = strings.ToUpper(strings.TrimSpace(value))
			}

		case models.SlotName:
			if session.Slots.Name == "" {
				session.Slots.Name = strings.TrimSpace(value)
			}

		case models.SlotPhone:
			if session.Slots.Phone == "" {
				session.Slots.Phone = strings.TrimSpace(value)
			}

		case models.SlotEmail:
			if session.Slots.Email == "" {
				session.Slots.Email = strings.TrimSpace(value)
			}
		}
	}

	// Budget gate, buyers only. The comparison is the decision, not
	// whatever the backend's prose said about the amount. Exactly the
	// minimum passes.
	if session.Slots.Intent == models.IntentBuyHome &&
		session.Slots.Budget != nil &&
		*session.Slots.Budget < s.Rules.MinimumBudget {
		session.Phase = models.PhaseRejected
		return budgetRejectionMessage(s.Rules.MinimumBudget, s.Rules.OfficeNumber), models.PhaseRejected
	}

	// All required slots present and no gate fired: qualified, then
	// straight into reassistance with the callback promise.
	if nextRequiredSlot(&session.Slots) == "" {
		session.Phase = models.PhaseReassistance
		return callbackMessage(session.Slots), models.PhaseQualified
	}

	// Still collecting. When the controller just accepted a postcode it
	// owns the phrasing; otherwise the adapter's reply (which asks for
	// the next missing slot) is shown as-is. A backend reply that was
	// nothing but the slot block leaves no prose to show, so the
	// controller asks the next question itself rather than send an
	// empty reply.
	if postcodeAck != "" {
		return postcodeAck + " " + askSlotQuestion(nextRequiredSlot(&session.Slots)), session.Phase
	}
	if strings.TrimSpace(result.DisplayText) == "" {
		return askSlotQuestion(nextRequiredSlot(&session.Slots)), session.Phase
	}
	return result.DisplayText, session.Phase
}

// nextRequiredSlot returns the first unset slot in canonical order,
// skipping property_type unless the intent is BUY_HOME. Empty result
// means every required slot is filled.
func nextRequiredSlot(slots *models.SlotState) string {
	for _, key := range models.SlotOrder {
		if key == models.SlotIntent {
			continue
		}
		if key == models.SlotPropertyType && slots.Intent != models.IntentBuyHome {
			continue
		}
		if !slots.IsSet(key) {
			return key
		}
	}
	return ""
}

// notifySinks forwards the turn to the history repository and the
// transcript memory. Both are best-effort: a sink failure is logged and
// the turn carries on.
func (s *DefaultChatService) notifySinks(ctx context.Context, sessionID string, entry models.ChatLogEntry) {
	logger := utils.GetLogger()

	if s.History != nil {
		record := models.ConversationRecord{
			SessionID:         sessionID,
			Timestamp:         entry.Timestamp,
			UserMessage:       entry.UserMessage,
			AssistantResponse: entry.AssistantResponse,
			Slots:             entry.Slots.Clone(),
		}
		if _, err := s.History.Append(ctx, record); err != nil {
			logger.Warn("failed to persist conversation record", zap.String("sessionID", sessionID), zap.Error(err))
		}
	}

	if s.Memory != nil {
		turns := []memory.TranscriptEntry{
			{Role: "user", Text: entry.UserMessage, Timestamp: entry.Timestamp, Metadata: map[string]string{"intent": entry.Slots.Intent}},
			{Role: "assistant", Text: entry.AssistantResponse, Timestamp: entry.Timestamp, Metadata: map[string]string{"intent": entry.Slots.Intent}},
		}
		for _, turn := range turns {
			if err := s.Memory.AddTurn(ctx, sessionID, turn); err != nil {
				logger.Warn("failed to store transcript turn", zap.String("sessionID", sessionID), zap.Error(err))
				break
			}
		}
	}
}
