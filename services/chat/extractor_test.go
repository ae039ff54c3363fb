package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSlotBlockWellFormed(t *testing.T) {
	reply := "Thanks, Ada! May I have your phone number, please?\n" +
		"BEGIN_SLOTS\nname: Ada Lovelace\nemail: ada@example.com\nEND_SLOTS"

	display, slots := parseSlotBlock(reply)

	assert.Equal(t, "Thanks, Ada! May I have your phone number, please?", display)
	assert.Equal(t, map[string]string{
		"name":  "Ada Lovelace",
		"email": "ada@example.com",
	}, slots)
}

func TestParseSlotBlockMissingMarkers(t *testing.T) {
	// No structured block at all: the whole reply is display text and
	// no slots are extracted.
	reply := "I'd love to help you find a home! What's your budget?"

	display, slots := parseSlotBlock(reply)

	assert.Equal(t, reply, display)
	assert.Empty(t, slots)
}

func TestParseSlotBlockEndBeforeBegin(t *testing.T) {
	reply := "END_SLOTS something odd BEGIN_SLOTS"

	display, slots := parseSlotBlock(reply)

	assert.Equal(t, reply, display)
	assert.Empty(t, slots)
}

func TestParseSlotBlockDropsUnknownKeysAndJunk(t *testing.T) {
	reply := "Noted.\nBEGIN_SLOTS\nname: Ada\nfavourite_colour: mauve\nnot a pair\nphone:\nEND_SLOTS"

	_, slots := parseSlotBlock(reply)

	// Unknown keys, junk lines and empty values never reach the engine.
	assert.Equal(t, map[string]string{"name": "Ada"}, slots)
}

func TestParseSlotBlockEmptyBlock(t *testing.T) {
	reply := "Could you tell me a bit more?\nBEGIN_SLOTS\nEND_SLOTS"

	display, slots := parseSlotBlock(reply)

	assert.Equal(t, "Could you tell me a bit more?", display)
	assert.Empty(t, slots)
}

func TestParseSlotBlockValueWithColon(t *testing.T) {
	reply := "Got it.\nBEGIN_SLOTS\nemail: ada:lovelace@example.com\nEND_SLOTS"

	_, slots := parseSlotBlock(reply)

	assert.Equal(t, "ada:lovelace@example.com", slots["email"])
}
