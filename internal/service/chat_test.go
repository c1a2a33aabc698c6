package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Lyzr-Apps/corey-support-agent-amazing-gear-2llo/internal/agent"
	"github.com/Lyzr-Apps/corey-support-agent-amazing-gear-2llo/internal/models"
	"github.com/Lyzr-Apps/corey-support-agent-amazing-gear-2llo/internal/session"
)

// stubInvoker returns a fixed reply and records what it was asked.
type stubInvoker struct {
	result      agent.Result
	err         error
	calls       int
	lastMessage string
	lastAgentID string
}

func (s *stubInvoker) Invoke(ctx context.Context, message, agentID string, opts agent.Options) (agent.Result, error) {
	s.calls++
	s.lastMessage = message
	s.lastAgentID = agentID
	return s.result, s.err
}

func testSettings() *session.Settings {
	return session.NewSettings(models.AppSettings{
		Greeting:                 "Welcome to Corey Support! How can I help you today?",
		ProFundPercentage:        20,
		ProFundThreshold:         120,
		ConversionCountThreshold: 3,
		TimeWindowDays:           14,
	})
}

func newChat(inv agent.Invoker) (*ChatService, *session.Store) {
	store := session.New()
	return &ChatService{
		Store:          store,
		Settings:       testSettings(),
		Agent:          inv,
		SupportAgentID: "support-agent",
		Logger:         zerolog.Nop(),
	}, store
}

func TestChatSend_EmptyMessageRejected(t *testing.T) {
	inv := &stubInvoker{}
	svc, store := newChat(inv)

	for _, text := range []string{"", "   ", "\n\t"} {
		if _, err := svc.Send(context.Background(), text); !errors.Is(err, ErrEmptyMessage) {
			t.Fatalf("input %q: expected ErrEmptyMessage, got %v", text, err)
		}
	}
	if inv.calls != 0 {
		t.Fatalf("agent invoked %d times for empty input", inv.calls)
	}
	if len(store.Messages()) != 0 {
		t.Fatal("empty input reached the transcript")
	}
}

func TestChatSend_BusyRejected(t *testing.T) {
	svc, store := newChat(&stubInvoker{})
	store.BeginExchange()
	defer store.EndExchange()

	if _, err := svc.Send(context.Background(), "hello"); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
}

func TestChatSend_UpsellHasNoSideEffects(t *testing.T) {
	inv := &stubInvoker{result: agent.Result{
		Raw: `{"response_text": "Here is our concierge package.", "upsell_offer": {"product_name": "Concierge Setup", "price": "$97", "description": "Full setup", "checkout_url": "https://example.com/buy"}}`,
	}}
	svc, store := newChat(inv)

	msgs, err := svc.Send(context.Background(), "tell me about the concierge package")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected user + agent messages, got %d", len(msgs))
	}
	agentMsg := msgs[1]
	if agentMsg.Role != models.RoleAgent || agentMsg.UpsellOffer == nil {
		t.Fatalf("agent message missing offer: %+v", agentMsg)
	}
	if agentMsg.UpsellOffer.ProductName != "Concierge Setup" {
		t.Fatalf("unexpected offer: %+v", agentMsg.UpsellOffer)
	}

	if len(store.Tickets()) != 0 || len(store.PendingApprovals()) != 0 || len(store.RevenueEntries()) != 0 {
		t.Fatal("display-only offer produced workflow side effects")
	}
}

func TestChatSend_RevenueRecorded(t *testing.T) {
	inv := &stubInvoker{result: agent.Result{
		Raw: `{"response_text": "Payment confirmed!", "revenue_entry": {"amount": 97, "product": "Concierge Setup"}}`,
	}}
	svc, store := newChat(inv)

	if _, err := svc.Send(context.Background(), "I just purchased the concierge setup"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := store.RevenueEntries()
	if len(entries) != 1 {
		t.Fatalf("ledger has %d entries, want 1", len(entries))
	}
	if math.Abs(entries[0].ProFundAllocation-19.4) > 1e-9 {
		t.Fatalf("allocation = %v, want 19.4 (20%% of 97)", entries[0].ProFundAllocation)
	}
	if _, count := store.FundProgress(entries[0].Timestamp, 0); count != 1 {
		t.Fatalf("conversion count = %d, want 1", count)
	}
}

func TestChatSend_InvalidRevenueWarns(t *testing.T) {
	inv := &stubInvoker{result: agent.Result{
		Raw: `{"response_text": "Payment confirmed!", "revenue_entry": {"product": "Concierge Setup"}}`,
	}}
	svc, store := newChat(inv)

	msgs, err := svc.Send(context.Background(), "I bought it")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.RevenueEntries()) != 0 {
		t.Fatal("amount-less entry reached the ledger")
	}

	last := msgs[len(msgs)-1]
	if last.Role != models.RoleSystem || !strings.Contains(last.Content, "not recorded") {
		t.Fatalf("expected a visible warning, got %+v", last)
	}
}

func TestChatSend_TicketAndApproval(t *testing.T) {
	inv := &stubInvoker{result: agent.Result{
		Raw: `{"response_text": "I have escalated your refund.", "ticket": {"ticket_id": "TKT-401", "category": "billing", "subject": "Refund for #7001", "status": "pending_approval", "priority": "high"}, "approval_request": {"request_type": "refund", "reason": "defective item", "order_id": "#7001", "desired_outcome": "full refund", "summary": "Customer reports defect", "ticket_id": "TKT-401"}, "lead_info": {"name": "Sam Ortiz", "email": "sam@example.com", "use_case": "support"}}`,
	}}
	svc, store := newChat(inv)

	msgs, err := svc.Send(context.Background(), "I want a refund for order #7001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ticket, ok := store.Ticket("TKT-401")
	if !ok || ticket.Status != models.StatusPendingApproval {
		t.Fatalf("ticket not upserted: %+v", ticket)
	}
	pending := store.PendingApprovals()
	if len(pending) != 1 {
		t.Fatalf("pending approvals = %d, want 1", len(pending))
	}
	if pending[0].CustomerName != "Sam Ortiz" {
		t.Fatalf("lead name not used as customer fallback: %q", pending[0].CustomerName)
	}

	var systemNotices int
	for _, m := range msgs {
		if m.Role == models.RoleSystem {
			systemNotices++
		}
	}
	if systemNotices != 2 {
		t.Fatalf("expected approval + lead notices, got %d system messages", systemNotices)
	}
}

func TestChatSend_AgentFailureLeavesStateUntouched(t *testing.T) {
	inv := &stubInvoker{err: errors.New("agent service unavailable")}
	svc, store := newChat(inv)

	msgs, err := svc.Send(context.Background(), "hello")
	if err != nil {
		t.Fatalf("remote failure should not surface as an error: %v", err)
	}
	if len(msgs) != 2 || msgs[1].Role != models.RoleAgent {
		t.Fatalf("expected user + agent error message, got %+v", msgs)
	}
	if !strings.Contains(msgs[1].Content, "unavailable") {
		t.Fatalf("error text not surfaced: %q", msgs[1].Content)
	}
	if len(store.Tickets()) != 0 || len(store.PendingApprovals()) != 0 || len(store.RevenueEntries()) != 0 {
		t.Fatal("failed exchange produced workflow side effects")
	}
	if !store.BeginExchange() {
		t.Fatal("exchange slot not released after failure")
	}
	store.EndExchange()
}

func TestChatSend_UnstructuredReplyShownVerbatim(t *testing.T) {
	inv := &stubInvoker{result: agent.Result{Raw: "Thanks for reaching out! No structured data here."}}
	svc, store := newChat(inv)

	msgs, err := svc.Send(context.Background(), "hi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msgs[1].Content != "Thanks for reaching out! No structured data here." {
		t.Fatalf("raw text not shown verbatim: %q", msgs[1].Content)
	}
	if len(store.Tickets()) != 0 || len(store.RevenueEntries()) != 0 {
		t.Fatal("plain reply produced workflow side effects")
	}
}

func TestChatSend_AppendsInOrder(t *testing.T) {
	inv := &stubInvoker{result: agent.Result{
		Raw: `{"response_text": "done", "approval_request": {"request_type": "refund", "order_id": "#1", "summary": "s"}}`,
	}}
	svc, store := newChat(inv)

	if _, err := svc.Send(context.Background(), "refund please"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	roles := []string{}
	for _, m := range store.Messages() {
		roles = append(roles, m.Role)
	}
	want := []string{models.RoleUser, models.RoleAgent, models.RoleSystem}
	if len(roles) != len(want) {
		t.Fatalf("transcript roles = %v, want %v", roles, want)
	}
	for i := range want {
		if roles[i] != want[i] {
			t.Fatalf("transcript roles = %v, want %v", roles, want)
		}
	}
	if inv.lastAgentID != "support-agent" {
		t.Fatalf("wrong agent id: %q", inv.lastAgentID)
	}
}
