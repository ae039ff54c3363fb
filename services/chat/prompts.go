package chat

import (
	"fmt"
	"strings"

	"homelead/models"
)

// Sentinel markers delimiting the structured slot block the backend is
// asked to emit. Everything between them is parsed as key: value lines;
// everything outside them is display text for the user.
const (
	slotBlockBegin = "BEGIN_SLOTS"
	slotBlockEnd   = "END_SLOTS"
)

const intentRecognitionPrompt = `You are a real estate assistant. Analyze the user's message and determine their intent.
Possible intents are: BUY_HOME, SELL_HOME, GENERAL_QUERY, INVALID

Rules:
- BUY_HOME: the user wants to buy a property.
- SELL_HOME: the user wants to sell a property.
- INVALID: the message is about renting, or is abusive or nonsensical.
- GENERAL_QUERY: anything else.

Respond with the intent only, nothing else.`

// slotQuestions are the canonical phrasings for each slot, used both in
// the extraction prompt and for the deterministic questions the engine
// asks on controller-owned turns.
var slotQuestions = map[string]string{
	models.SlotPropertyType: "Are you interested in a new home or a resale home?",
	models.SlotName:         "May I have your name, please?",
	models.SlotPhone:        "May I have your phone number, please?",
	models.SlotEmail:        "May I have your email address, please?",
	models.SlotBudget:       "What is your budget?",
	models.SlotPostcode:     "What is the postcode you are interested in?",
}

// buildExtractionPrompt assembles the single system prompt for a
// slot-filling turn: current state, the one slot to ask for next, and
// the output contract (one question plus a delimited slot block).
func buildExtractionPrompt(slots models.SlotState, nextSlot string) string {
	var sb strings.Builder
	sb.WriteString("You are a polite, professional real estate assistant qualifying a lead. ")
	sb.WriteString("You only help with buying or selling property, never renting.\n\n")

	sb.WriteString("Information collected so far:\n")
	for _, key := range models.SlotOrder {
		value, ok := slots.Get(key)
		if !ok {
			value = "(not collected)"
		}
		fmt.Fprintf(&sb, "- %s: %s\n", key, value)
	}

	sb.WriteString("\nYour reply must do exactly two things:\n")
	sb.WriteString("1. Briefly acknowledge any of the above details the user just provided, then ask exactly one question")
	if nextSlot != "" {
		fmt.Fprintf(&sb, ": %q", slotQuestions[nextSlot])
	} else {
		sb.WriteString(" asking if there is anything else you can help with")
	}
	sb.WriteString(". Never ask for information that is already collected.\n")
	fmt.Fprintf(&sb, "2. End your reply with a block delimited by %s and %s lines. ", slotBlockBegin, slotBlockEnd)
	sb.WriteString("Inside it, write one `key: value` line for each detail the user clearly stated in their latest message. ")
	fmt.Fprintf(&sb, "Allowed keys: %s. ", strings.Join(extractableSlots, ", "))
	sb.WriteString("If the user stated nothing usable, emit the block with no lines inside. ")
	sb.WriteString("Only include values you are confident about; never guess.\n")

	return sb.String()
}

// extractableSlots are the keys the adapter will accept back from the
// backend. Intent is settled separately on the first turn and is not
// extractable here.
var extractableSlots = []string{
	models.SlotPropertyType,
	models.SlotName,
	models.SlotPhone,
	models.SlotEmail,
	models.SlotBudget,
	models.SlotPostcode,
}
