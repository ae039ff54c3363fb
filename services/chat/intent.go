package chat

import (
	"context"
	"strings"

	"homelead/models"
	"homelead/utils"

	"go.uber.org/zap"
)

// shortcutIntent resolves the literal menu shortcuts without touching
// the generation backend. Returns "" when the text is not a shortcut.
func shortcutIntent(text string) string {
	switch strings.TrimSpace(text) {
	case "1":
		return models.IntentBuyHome
	case "2":
		return models.IntentSellHome
	}
	return ""
}

// detectIntent classifies a first-turn message into the fixed intent
// vocabulary. Anything outside the vocabulary, and any backend
// failure, coerces to GENERAL_QUERY so a flaky classification can
// never crash a conversation.
func detectIntent(ctx context.Context, gen TextGenerator, message string) string {
	reply, err := gen.Generate(ctx, intentRecognitionPrompt, message)
	if err != nil {
		utils.GetLogger().Warn("intent detection failed", zap.Error(err))
		return models.IntentGeneralQuery
	}

	intent := strings.ToUpper(strings.TrimSpace(reply))
	switch intent {
	case models.IntentBuyHome, models.IntentSellHome, models.IntentGeneralQuery, models.IntentInvalid:
		return intent
	}
	return models.IntentGeneralQuery
}
