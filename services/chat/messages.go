package chat

import (
	"fmt"
	"strings"

	"homelead/models"
)

// WelcomeMessage opens every new session.
const WelcomeMessage = "Hi, I'm your real estate assistant. Are you looking to buy or sell a property? Reply 1 to buy or 2 to sell."

// apologyMessage is the fallback whenever the generation backend fails.
// Slot state is left untouched so the user can simply retry.
const apologyMessage = "I apologize, but I'm having trouble processing your request. Please try again."

const closingMessage = "Thank you for chatting with us. Goodbye and have a great day!"

const anythingElseMessage = "Is there anything else I can help you with?"

func menuMessage() string {
	return "I can help with buying or selling property only. I'm afraid I can't assist with renting. Reply 1 if you'd like to buy a home, or 2 if you'd like to sell one."
}

func askSlotQuestion(slot string) string {
	return slotQuestions[slot]
}

func intentAckMessage(intent, nextSlot string) string {
	if intent == models.IntentSellHome {
		return "Great, you're looking to sell your home. " + askSlotQuestion(nextSlot)
	}
	return "Great, you're looking to buy a home. " + askSlotQuestion(nextSlot)
}

func budgetRejectionMessage(minimumBudget int64, officeNumber string) string {
	return fmt.Sprintf(
		"I'm sorry, we currently only cater to properties with a budget of %s and above. Please call our office on %s and our team will be happy to help you further.",
		formatAmount(minimumBudget), officeNumber,
	)
}

func postcodeBadFormatMessage(normalized, officeNumber string) string {
	return fmt.Sprintf(
		"%s doesn't look like a valid UK postcode: it should look like SW1A 1AA. Could you double-check it for me? If you're not sure, call our office on %s and they'll help you out.",
		normalized, officeNumber,
	)
}

func postcodeUnservicedMessage(normalized, officeNumber string) string {
	return fmt.Sprintf(
		"I'm sorry, we don't currently cover %s. Please call our office on %s and they'll point you to someone who can help with that area.",
		normalized, officeNumber,
	)
}

func postcodeUnknownMessage(normalized, officeNumber string) string {
	return fmt.Sprintf(
		"I'm sorry, I couldn't find %s among the postcodes we service. Please call our office on %s for help with that location.",
		normalized, officeNumber,
	)
}

func postcodeAcceptedMessage(intent, normalized string) string {
	if intent == models.IntentSellHome {
		return fmt.Sprintf("Good news, we do operate in %s.", normalized)
	}
	return fmt.Sprintf("Good news, we cover %s.", normalized)
}

func callbackMessage(slots models.SlotState) string {
	if slots.Intent == models.IntentSellHome {
		return fmt.Sprintf(
			"Thank you, %s. One of our selling specialists will call you within 24 hours to arrange a valuation of your property in %s. Is there anything else I can help you with?",
			slots.Name, slots.Postcode,
		)
	}
	return fmt.Sprintf(
		"Thank you, %s. One of our buying specialists will call you within 24 hours to discuss properties in %s. Is there anything else I can help you with?",
		slots.Name, slots.Postcode,
	)
}

func turnLimitMessage(officeNumber string) string {
	return fmt.Sprintf(
		"We've reached the message limit for this conversation. Please call our office on %s, or start a new chat. Thank you!",
		officeNumber,
	)
}

// formatAmount renders 1000000 as "1,000,000".
func formatAmount(v int64) string {
	s := fmt.Sprintf("%d", v)
	if len(s) <= 3 {
		return s
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	return strings.Join(parts, ",")
}

// declineWords end a reassistance exchange.
var declineWords = map[string]bool{
	"no":            true,
	"nope":          true,
	"nah":           true,
	"no thanks":     true,
	"no thank you":  true,
	"nothing":       true,
	"nothing else":  true,
	"that's all":    true,
	"thats all":     true,
	"goodbye":       true,
	"bye":           true,
	"all good":      true,
	"i'm good":      true,
	"im good":       true,
	"that is all":   true,
	"no that's all": true,
}

// isDecline interprets a reassistance reply as "no, we're done".
func isDecline(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	t = strings.TrimRight(t, ".!?,")
	if declineWords[t] {
		return true
	}
	return strings.Contains(t, "goodbye") || strings.HasPrefix(t, "bye")
}
