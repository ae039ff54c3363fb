package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"homelead/models"
	"homelead/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedGenerator returns canned replies in order, recording every
// system prompt it was handed.
type scriptedGenerator struct {
	replies []string
	calls   int
	err     error
	prompts []string
}

func (g *scriptedGenerator) Generate(_ context.Context, systemPrompt, _ string) (string, error) {
	g.prompts = append(g.prompts, systemPrompt)
	if g.err != nil {
		return "", g.err
	}
	if g.calls >= len(g.replies) {
		return "", nil
	}
	reply := g.replies[g.calls]
	g.calls++
	return reply, nil
}

func slotBlock(display string, lines ...string) string {
	return display + "\n" + slotBlockBegin + "\n" + strings.Join(lines, "\n") + "\n" + slotBlockEnd
}

var testAreas = utils.ServiceAreaReference{
	Serviceable: []string{"SW1A 1AA", "SW1A 2AA", "EC1A 1BB"},
	Blacklist:   []string{"0000", "9999", "1234"},
}

var testRules = QualificationRules{
	MinimumBudget: 1000000,
	OfficeNumber:  "1300 111 222",
	MaxRounds:     10,
}

func newTestService(gen TextGenerator) *DefaultChatService {
	return NewDefaultChatService(gen, NewLocalSessionStore(), testAreas, testRules)
}

func startSession(t *testing.T, svc *DefaultChatService) string {
	t.Helper()
	resp, err := svc.StartSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, WelcomeMessage, resp.Reply)
	assert.Equal(t, models.PhaseCollecting, resp.Phase)
	return resp.SessionID
}

func TestMenuShortcutSetsBuyIntent(t *testing.T) {
	gen := &scriptedGenerator{}
	svc := newTestService(gen)
	ctx := context.Background()
	id := startSession(t, svc)

	resp, err := svc.ProcessMessage(ctx, id, "1")
	require.NoError(t, err)

	assert.Equal(t, models.IntentBuyHome, resp.Slots.Intent)
	assert.Contains(t, resp.Reply, "buy a home")
	assert.Contains(t, resp.Reply, slotQuestions[models.SlotPropertyType])
	assert.Equal(t, models.PhaseCollecting, resp.Phase)
	assert.False(t, resp.Done)
	// Shortcuts resolve without a generation call.
	assert.Equal(t, 0, gen.calls)
}

func TestMenuShortcutSellSkipsPropertyType(t *testing.T) {
	gen := &scriptedGenerator{}
	svc := newTestService(gen)
	ctx := context.Background()
	id := startSession(t, svc)

	resp, err := svc.ProcessMessage(ctx, id, "2")
	require.NoError(t, err)

	assert.Equal(t, models.IntentSellHome, resp.Slots.Intent)
	assert.Contains(t, resp.Reply, "sell your home")
	// Sellers go straight to name; the property-type question is a
	// buyer-only step.
	assert.Contains(t, resp.Reply, slotQuestions[models.SlotName])
	assert.NotContains(t, resp.Reply, slotQuestions[models.SlotPropertyType])
}

func TestGeneralQueryRepromptsMenu(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{"GENERAL_QUERY"}}
	svc := newTestService(gen)
	ctx := context.Background()
	id := startSession(t, svc)

	resp, err := svc.ProcessMessage(ctx, id, "what's the weather like?")
	require.NoError(t, err)

	assert.Equal(t, menuMessage(), resp.Reply)
	assert.Equal(t, "", resp.Slots.Intent)
	assert.Equal(t, models.PhaseCollecting, resp.Phase)
}

func TestRentingIsRedirectedToMenu(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{"INVALID"}}
	svc := newTestService(gen)
	ctx := context.Background()
	id := startSession(t, svc)

	resp, err := svc.ProcessMessage(ctx, id, "I'd like to rent a flat")
	require.NoError(t, err)

	assert.Equal(t, menuMessage(), resp.Reply)
	assert.Equal(t, "", resp.Slots.Intent)
}

func TestBuyerQualificationFlow(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{
		slotBlock("Got it, a new home. And your name?",
			"property_type: new",
		),
		slotBlock("Thanks John! What's your phone number?",
			"name: John Smith",
			"phone: 0400 123 456",
			"email: john@example.com",
		),
		slotBlock("Great. What postcode are you interested in?",
			"budget: 1,200,000",
		),
		slotBlock("Let me check that postcode.",
			"postcode: SW1A 1AA",
		),
	}}
	svc := newTestService(gen)
	ctx := context.Background()
	id := startSession(t, svc)

	_, err := svc.ProcessMessage(ctx, id, "1")
	require.NoError(t, err)

	resp, err := svc.ProcessMessage(ctx, id, "a new home please")
	require.NoError(t, err)
	assert.Equal(t, "NEW", resp.Slots.PropertyType)

	resp, err = svc.ProcessMessage(ctx, id, "John Smith, 0400 123 456, john@example.com")
	require.NoError(t, err)
	assert.Equal(t, "John Smith", resp.Slots.Name)
	assert.Equal(t, "0400 123 456", resp.Slots.Phone)
	assert.Equal(t, "john@example.com", resp.Slots.Email)

	resp, err = svc.ProcessMessage(ctx, id, "around 1.2 million")
	require.NoError(t, err)
	require.NotNil(t, resp.Slots.Budget)
	assert.Equal(t, int64(1200000), *resp.Slots.Budget)
	assert.Equal(t, models.PhaseCollecting, resp.Phase)

	resp, err = svc.ProcessMessage(ctx, id, "SW1A 1AA")
	require.NoError(t, err)
	assert.Equal(t, models.PhaseQualified, resp.Phase)
	assert.Equal(t, "SW1A 1AA", resp.Slots.Postcode)
	assert.Contains(t, resp.Reply, "John Smith")
	assert.Contains(t, resp.Reply, "buying specialists")
	assert.Contains(t, resp.Reply, "24 hours")
	assert.False(t, resp.Done)

	// The stored session has already moved on to reassistance.
	session, err := svc.Sessions.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseReassistance, session.Phase)
	assert.Len(t, session.Log, 5)
}

func TestSellerQualificationUsesValuationWording(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{
		slotBlock("Thanks! And your phone number?",
			"name: Mary Jones",
			"phone: 0400 999 888",
			"email: mary@example.com",
			"budget: 2 million",
		),
		slotBlock("Checking that postcode now.",
			"postcode: sw1a1aa",
		),
	}}
	svc := newTestService(gen)
	ctx := context.Background()
	id := startSession(t, svc)

	_, err := svc.ProcessMessage(ctx, id, "2")
	require.NoError(t, err)

	_, err = svc.ProcessMessage(ctx, id, "Mary Jones, 0400 999 888, mary@example.com, about 2 million")
	require.NoError(t, err)

	resp, err := svc.ProcessMessage(ctx, id, "sw1a1aa")
	require.NoError(t, err)

	assert.Equal(t, models.PhaseQualified, resp.Phase)
	// Raw input is normalized before it is stored or echoed.
	assert.Equal(t, "SW1A 1AA", resp.Slots.Postcode)
	assert.Contains(t, resp.Reply, "selling specialists")
	assert.Contains(t, resp.Reply, "valuation")
	assert.Contains(t, resp.Reply, "SW1A 1AA")
	// Sellers were never asked for a property type.
	assert.Equal(t, "", resp.Slots.PropertyType)
}

func TestBudgetBelowMinimumRejectsBuyer(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{
		slotBlock("Noted.", "budget: 500000"),
	}}
	svc := newTestService(gen)
	ctx := context.Background()
	id := startSession(t, svc)

	_, err := svc.ProcessMessage(ctx, id, "1")
	require.NoError(t, err)

	resp, err := svc.ProcessMessage(ctx, id, "my budget is 500000")
	require.NoError(t, err)

	assert.Equal(t, models.PhaseRejected, resp.Phase)
	assert.True(t, resp.Done)
	assert.Contains(t, resp.Reply, "1,000,000")
	assert.Contains(t, resp.Reply, testRules.OfficeNumber)

	// The rejection is final for the enquiry, but the channel restarts
	// clean with the log preserved.
	session, err := svc.Sessions.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseCollecting, session.Phase)
	assert.Equal(t, models.SlotState{}, session.Slots)
	assert.Equal(t, 0, session.Rounds)
	assert.Len(t, session.Log, 2)
}

func TestBudgetExactlyMinimumPasses(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{
		slotBlock("Noted. What's your name?", "budget: 1000000"),
	}}
	svc := newTestService(gen)
	ctx := context.Background()
	id := startSession(t, svc)

	_, err := svc.ProcessMessage(ctx, id, "1")
	require.NoError(t, err)

	resp, err := svc.ProcessMessage(ctx, id, "exactly one million")
	require.NoError(t, err)

	assert.Equal(t, models.PhaseCollecting, resp.Phase)
	assert.False(t, resp.Done)
	require.NotNil(t, resp.Slots.Budget)
	assert.Equal(t, int64(1000000), *resp.Slots.Budget)
}

func TestBudgetGateIgnoredForSellers(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{
		slotBlock("Noted. What's your name?", "budget: 300000"),
	}}
	svc := newTestService(gen)
	ctx := context.Background()
	id := startSession(t, svc)

	_, err := svc.ProcessMessage(ctx, id, "2")
	require.NoError(t, err)

	resp, err := svc.ProcessMessage(ctx, id, "I'm hoping for 300000")
	require.NoError(t, err)

	assert.Equal(t, models.PhaseCollecting, resp.Phase)
	assert.False(t, resp.Done)
}

func TestBlacklistedPostcodeRejects(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{
		slotBlock("Let me check.", "postcode: 0000"),
	}}
	svc := newTestService(gen)
	ctx := context.Background()
	id := startSession(t, svc)

	_, err := svc.ProcessMessage(ctx, id, "2")
	require.NoError(t, err)

	resp, err := svc.ProcessMessage(ctx, id, "the postcode is 0000")
	require.NoError(t, err)

	assert.Equal(t, models.PhaseRejected, resp.Phase)
	assert.True(t, resp.Done)
	// A blocked entry reports "not covered", not a format complaint.
	assert.Contains(t, resp.Reply, "0000")
	assert.Contains(t, resp.Reply, testRules.OfficeNumber)
	assert.NotContains(t, resp.Reply, "valid UK postcode")
	assert.Equal(t, "", resp.Slots.Postcode)
}

func TestMalformedPostcodeStaysCollecting(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{
		slotBlock("Thanks.", "postcode: not-a-postcode"),
	}}
	svc := newTestService(gen)
	ctx := context.Background()
	id := startSession(t, svc)

	_, err := svc.ProcessMessage(ctx, id, "2")
	require.NoError(t, err)

	resp, err := svc.ProcessMessage(ctx, id, "not-a-postcode")
	require.NoError(t, err)

	assert.Equal(t, models.PhaseCollecting, resp.Phase)
	assert.False(t, resp.Done)
	assert.Contains(t, resp.Reply, "double-check")
	// The office line is offered on every postcode failure, even the
	// recoverable one.
	assert.Contains(t, resp.Reply, testRules.OfficeNumber)
	// The invalid value is cleared, not stored.
	assert.Equal(t, "", resp.Slots.Postcode)
}

func TestUnservicedPostcodeRejects(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{
		slotBlock("Checking.", "postcode: M1 1AE"),
	}}
	svc := newTestService(gen)
	ctx := context.Background()
	id := startSession(t, svc)

	_, err := svc.ProcessMessage(ctx, id, "2")
	require.NoError(t, err)

	resp, err := svc.ProcessMessage(ctx, id, "M1 1AE please")
	require.NoError(t, err)

	assert.Equal(t, models.PhaseRejected, resp.Phase)
	assert.True(t, resp.Done)
	assert.Contains(t, resp.Reply, "M1 1AE")
	assert.Contains(t, resp.Reply, testRules.OfficeNumber)
}

func TestReplyWithoutSlotBlockIsShownAsIs(t *testing.T) {
	freeform := "Happy to help with that. May I have your name, please?"
	gen := &scriptedGenerator{replies: []string{freeform}}
	svc := newTestService(gen)
	ctx := context.Background()
	id := startSession(t, svc)

	_, err := svc.ProcessMessage(ctx, id, "2")
	require.NoError(t, err)

	resp, err := svc.ProcessMessage(ctx, id, "how long does selling usually take?")
	require.NoError(t, err)

	assert.Equal(t, freeform, resp.Reply)
	assert.Equal(t, models.PhaseCollecting, resp.Phase)
	// No slots are merged from a reply that carried no block.
	assert.Equal(t, "", resp.Slots.Name)
}

func TestBlockOnlyReplyFallsBackToNextQuestion(t *testing.T) {
	// The backend replied with nothing but the slot block; the engine
	// asks the next question itself instead of sending a blank reply.
	gen := &scriptedGenerator{replies: []string{
		slotBlockBegin + "\nname: Mary\n" + slotBlockEnd,
	}}
	svc := newTestService(gen)
	ctx := context.Background()
	id := startSession(t, svc)

	_, err := svc.ProcessMessage(ctx, id, "2")
	require.NoError(t, err)

	resp, err := svc.ProcessMessage(ctx, id, "I'm Mary")
	require.NoError(t, err)

	assert.Equal(t, "Mary", resp.Slots.Name)
	assert.Equal(t, models.PhaseCollecting, resp.Phase)
	require.NotEmpty(t, resp.Reply)
	assert.Equal(t, slotQuestions[models.SlotPhone], resp.Reply)
}

func TestBlockOnlyReplyAfterQualificationAsksAnythingElse(t *testing.T) {
	gen := &scriptedGenerator{replies: append(sellerQualificationScript(),
		slotBlockBegin+"\n"+slotBlockEnd,
	)}
	svc := newTestService(gen)
	ctx := context.Background()
	id := startSession(t, svc)
	qualifySeller(t, svc, id)

	resp, err := svc.ProcessMessage(ctx, id, "hmm")
	require.NoError(t, err)

	require.NotEmpty(t, resp.Reply)
	assert.Equal(t, anythingElseMessage, resp.Reply)
	assert.Equal(t, models.PhaseReassistance, resp.Phase)
}

func TestFilledSlotIsNeverOverwritten(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{
		slotBlock("Thanks John!", "name: John Smith"),
		slotBlock("Noted.", "name: Somebody Else", "phone: 0400 123 456"),
	}}
	svc := newTestService(gen)
	ctx := context.Background()
	id := startSession(t, svc)

	_, err := svc.ProcessMessage(ctx, id, "2")
	require.NoError(t, err)

	_, err = svc.ProcessMessage(ctx, id, "I'm John Smith")
	require.NoError(t, err)

	resp, err := svc.ProcessMessage(ctx, id, "actually call me Somebody Else, 0400 123 456")
	require.NoError(t, err)

	assert.Equal(t, "John Smith", resp.Slots.Name)
	assert.Equal(t, "0400 123 456", resp.Slots.Phone)
}

func TestBackendFailureLeavesStateUntouched(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{
		slotBlock("Thanks John!", "name: John Smith"),
	}}
	svc := newTestService(gen)
	ctx := context.Background()
	id := startSession(t, svc)

	_, err := svc.ProcessMessage(ctx, id, "2")
	require.NoError(t, err)
	_, err = svc.ProcessMessage(ctx, id, "I'm John Smith")
	require.NoError(t, err)

	gen.err = errors.New("backend unreachable")
	resp, err := svc.ProcessMessage(ctx, id, "my phone is 0400 123 456")
	require.NoError(t, err)

	assert.Equal(t, apologyMessage, resp.Reply)
	assert.Equal(t, models.PhaseCollecting, resp.Phase)
	assert.False(t, resp.Done)
	assert.Equal(t, "John Smith", resp.Slots.Name)
	assert.Equal(t, "", resp.Slots.Phone)

	// And the turn is still logged.
	session, err := svc.Sessions.Get(ctx, id)
	require.NoError(t, err)
	assert.Len(t, session.Log, 3)
	assert.Equal(t, apologyMessage, session.Log[2].AssistantResponse)
}

func qualifySeller(t *testing.T, svc *DefaultChatService, id string) {
	t.Helper()
	ctx := context.Background()
	_, err := svc.ProcessMessage(ctx, id, "2")
	require.NoError(t, err)
	_, err = svc.ProcessMessage(ctx, id, "Mary, 0400 999 888, mary@example.com, 2 million")
	require.NoError(t, err)
	resp, err := svc.ProcessMessage(ctx, id, "SW1A 2AA")
	require.NoError(t, err)
	require.Equal(t, models.PhaseQualified, resp.Phase)
}

func sellerQualificationScript() []string {
	return []string{
		slotBlock("Thanks!",
			"name: Mary",
			"phone: 0400 999 888",
			"email: mary@example.com",
			"budget: 2 million",
		),
		slotBlock("Checking.", "postcode: SW1A 2AA"),
	}
}

func TestDeclineAfterQualificationClosesSession(t *testing.T) {
	gen := &scriptedGenerator{replies: sellerQualificationScript()}
	svc := newTestService(gen)
	ctx := context.Background()
	id := startSession(t, svc)
	qualifySeller(t, svc, id)

	resp, err := svc.ProcessMessage(ctx, id, "no thanks, that's all")
	require.NoError(t, err)

	assert.Equal(t, models.PhaseClosed, resp.Phase)
	assert.True(t, resp.Done)
	assert.Equal(t, closingMessage, resp.Reply)

	// Closed sessions are gone; the next enquiry needs a new session.
	_, err = svc.Sessions.Get(ctx, id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestFollowUpAfterQualificationReentersConversation(t *testing.T) {
	followUp := "Of course! Our fees are on our website. Anything else?"
	gen := &scriptedGenerator{replies: append(sellerQualificationScript(), followUp)}
	svc := newTestService(gen)
	ctx := context.Background()
	id := startSession(t, svc)
	qualifySeller(t, svc, id)

	resp, err := svc.ProcessMessage(ctx, id, "yes, what are your fees?")
	require.NoError(t, err)

	assert.Equal(t, followUp, resp.Reply)
	assert.Equal(t, models.PhaseReassistance, resp.Phase)
	assert.False(t, resp.Done)

	// Collected slots survive the follow-up exchange.
	session, err := svc.Sessions.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Mary", session.Slots.Name)
	assert.Equal(t, "SW1A 2AA", session.Slots.Postcode)
}

func TestTurnCapClosesConversation(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{"GENERAL_QUERY", "GENERAL_QUERY"}}
	svc := newTestService(gen)
	svc.Rules.MaxRounds = 2
	ctx := context.Background()
	id := startSession(t, svc)

	_, err := svc.ProcessMessage(ctx, id, "hello")
	require.NoError(t, err)
	_, err = svc.ProcessMessage(ctx, id, "hello again")
	require.NoError(t, err)

	resp, err := svc.ProcessMessage(ctx, id, "hello once more")
	require.NoError(t, err)

	assert.Equal(t, models.PhaseClosed, resp.Phase)
	assert.True(t, resp.Done)
	assert.Contains(t, resp.Reply, "message limit")
	assert.Contains(t, resp.Reply, testRules.OfficeNumber)
}

func TestDeclineOnFinalRoundStillGetsGoodbye(t *testing.T) {
	// Qualification takes three rounds; with the cap at three, the
	// goodbye on the next round must win over the turn-limit message.
	gen := &scriptedGenerator{replies: sellerQualificationScript()}
	svc := newTestService(gen)
	svc.Rules.MaxRounds = 3
	ctx := context.Background()
	id := startSession(t, svc)
	qualifySeller(t, svc, id)

	resp, err := svc.ProcessMessage(ctx, id, "no thanks, that's all")
	require.NoError(t, err)

	assert.Equal(t, models.PhaseClosed, resp.Phase)
	assert.Equal(t, closingMessage, resp.Reply)
	assert.NotContains(t, resp.Reply, "message limit")
}

func TestUnknownSessionReturnsNotFound(t *testing.T) {
	svc := newTestService(&scriptedGenerator{})
	_, err := svc.ProcessMessage(context.Background(), "nope", "hello")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestResetSessionClearsEverything(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{
		slotBlock("Thanks John!", "name: John Smith"),
	}}
	svc := newTestService(gen)
	ctx := context.Background()
	id := startSession(t, svc)

	_, err := svc.ProcessMessage(ctx, id, "2")
	require.NoError(t, err)
	_, err = svc.ProcessMessage(ctx, id, "I'm John Smith")
	require.NoError(t, err)

	require.NoError(t, svc.ResetSession(ctx, id))

	session, err := svc.Sessions.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.SlotState{}, session.Slots)
	assert.Equal(t, models.PhaseCollecting, session.Phase)
	assert.Equal(t, 0, session.Rounds)
	assert.Empty(t, session.Log)
}

func TestLogSnapshotsAreImmutable(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{
		slotBlock("Thanks!", "name: Mary"),
		slotBlock("Noted.", "phone: 0400 999 888"),
	}}
	svc := newTestService(gen)
	ctx := context.Background()
	id := startSession(t, svc)

	_, err := svc.ProcessMessage(ctx, id, "2")
	require.NoError(t, err)
	_, err = svc.ProcessMessage(ctx, id, "Mary")
	require.NoError(t, err)
	_, err = svc.ProcessMessage(ctx, id, "0400 999 888")
	require.NoError(t, err)

	log, err := svc.SessionLog(ctx, id)
	require.NoError(t, err)
	require.Len(t, log, 3)

	// Each entry reflects slot state as of its own turn.
	assert.Equal(t, "", log[0].Slots.Name)
	assert.Equal(t, "Mary", log[1].Slots.Name)
	assert.Equal(t, "", log[1].Slots.Phone)
	assert.Equal(t, "0400 999 888", log[2].Slots.Phone)
}

func TestExtractionPromptCarriesCollectedState(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{
		slotBlock("Thanks!", "name: Mary"),
		slotBlock("Noted.", "phone: 0400 999 888"),
	}}
	svc := newTestService(gen)
	ctx := context.Background()
	id := startSession(t, svc)

	_, err := svc.ProcessMessage(ctx, id, "2")
	require.NoError(t, err)
	_, err = svc.ProcessMessage(ctx, id, "Mary")
	require.NoError(t, err)
	_, err = svc.ProcessMessage(ctx, id, "0400 999 888")
	require.NoError(t, err)

	require.Len(t, gen.prompts, 2)
	// The second extraction prompt already knows the name and asks for
	// the phone number next.
	assert.Contains(t, gen.prompts[1], "name: Mary")
	assert.Contains(t, gen.prompts[1], fmt.Sprintf("%q", slotQuestions[models.SlotPhone]))
}
