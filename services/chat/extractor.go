package chat

import (
	"context"
	"strings"

	"homelead/models"
)

// ExtractionResult is the adapter's untrusted output: text to show the
// user plus the slot values the backend claims to have found. A key
// absent from Slots means "not provided this turn", never "empty".
type ExtractionResult struct {
	DisplayText string
	Slots       map[string]string
}

// Extractor wraps the generation backend with a slot-aware prompt and
// parses its reply. Parse failures are recoverable: the reply is still
// shown to the user, just with no extracted slots.
type Extractor struct {
	gen TextGenerator
}

func NewExtractor(gen TextGenerator) *Extractor {
	return &Extractor{gen: gen}
}

// Extract runs one slot-filling generation call. nextSlot may be empty
// when nothing is outstanding and the turn is conversational only.
// Only a backend call failure is returned as an error; malformed
// replies degrade to an empty slot map.
func (e *Extractor) Extract(ctx context.Context, slots models.SlotState, nextSlot, userMessage string) (*ExtractionResult, error) {
	prompt := buildExtractionPrompt(slots, nextSlot)
	reply, err := e.gen.Generate(ctx, prompt, userMessage)
	if err != nil {
		return nil, err
	}

	display, extracted := parseSlotBlock(reply)
	return &ExtractionResult{DisplayText: display, Slots: extracted}, nil
}

// parseSlotBlock splits a backend reply into display text and the
// structured slot map. If either sentinel is missing or the block
// content is malformed, the whole reply becomes display text and the
// map is empty. Unknown keys are dropped here so they never propagate
// into slot state.
func parseSlotBlock(reply string) (string, map[string]string) {
	slots := make(map[string]string)

	begin := strings.Index(reply, slotBlockBegin)
	end := strings.Index(reply, slotBlockEnd)
	if begin == -1 || end == -1 || end < begin {
		return strings.TrimSpace(reply), slots
	}

	block := reply[begin+len(slotBlockBegin) : end]
	display := strings.TrimSpace(reply[:begin] + reply[end+len(slotBlockEnd):])

	allowed := make(map[string]bool, len(extractableSlots))
	for _, key := range extractableSlots {
		allowed[key] = true
	}

	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if !allowed[key] || value == "" {
			continue
		}
		slots[key] = value
	}

	return display, slots
}
