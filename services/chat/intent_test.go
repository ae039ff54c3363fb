package chat

import (
	"context"
	"errors"
	"testing"

	"homelead/models"

	"github.com/stretchr/testify/assert"
)

func TestShortcutIntent(t *testing.T) {
	assert.Equal(t, models.IntentBuyHome, shortcutIntent("1"))
	assert.Equal(t, models.IntentSellHome, shortcutIntent(" 2 "))
	assert.Equal(t, "", shortcutIntent("12"))
	assert.Equal(t, "", shortcutIntent("I want to buy"))
}

func TestDetectIntentVocabulary(t *testing.T) {
	cases := map[string]string{
		"BUY_HOME":        models.IntentBuyHome,
		" sell_home \n":   models.IntentSellHome,
		"GENERAL_QUERY":   models.IntentGeneralQuery,
		"INVALID":         models.IntentInvalid,
		"RENT_HOME":       models.IntentGeneralQuery,
		"I think BUY":     models.IntentGeneralQuery,
		"":                models.IntentGeneralQuery,
	}

	for reply, want := range cases {
		gen := &scriptedGenerator{replies: []string{reply}}
		got := detectIntent(context.Background(), gen, "hello")
		assert.Equal(t, want, got, "reply %q", reply)
	}
}

func TestDetectIntentBackendFailureDefaultsToGeneralQuery(t *testing.T) {
	gen := &scriptedGenerator{err: errors.New("backend unreachable")}
	got := detectIntent(context.Background(), gen, "hello")
	assert.Equal(t, models.IntentGeneralQuery, got)
}
