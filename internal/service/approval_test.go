package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Lyzr-Apps/corey-support-agent-amazing-gear-2llo/internal/agent"
	"github.com/Lyzr-Apps/corey-support-agent-amazing-gear-2llo/internal/models"
	"github.com/Lyzr-Apps/corey-support-agent-amazing-gear-2llo/internal/session"
)

func newApproval(inv agent.Invoker) (*ApprovalService, *session.Store) {
	store := session.New()
	return &ApprovalService{
		Store:           store,
		Agent:           inv,
		ApprovalAgentID: "approval-agent",
		Logger:          zerolog.Nop(),
	}, store
}

func pendingRefund(store *session.Store, orderID string) {
	store.EnqueueApproval(models.ApprovalRequest{
		RequestType:    models.RequestTypeRefund,
		Reason:         "defective item",
		OrderID:        orderID,
		DesiredOutcome: "full refund",
		Summary:        "Customer reports a defect",
		TicketID:       "TKT-501",
	}, time.Now(), "Customer")
}

func TestApprovalResolve_NotesRequired(t *testing.T) {
	inv := &stubInvoker{}
	svc, store := newApproval(inv)
	pendingRefund(store, "#8001")

	_, err := svc.Resolve(context.Background(), "#8001", models.DecisionApproved, "   ")
	if !errors.Is(err, ErrNotesRequired) {
		t.Fatalf("expected ErrNotesRequired, got %v", err)
	}
	if inv.calls != 0 {
		t.Fatal("agent called despite missing notes")
	}
	if len(store.PendingApprovals()) != 1 {
		t.Fatal("pending set mutated on validation failure")
	}
}

func TestApprovalResolve_UnknownOrder(t *testing.T) {
	svc, _ := newApproval(&stubInvoker{})

	_, err := svc.Resolve(context.Background(), "#nope", models.DecisionApproved, "checked")
	if !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestApprovalResolve_AppliesAgentReply(t *testing.T) {
	inv := &stubInvoker{result: agent.Result{
		Raw: `{"decision": "approved", "customer_response": "Your refund is on its way!", "ticket_update": {"resolution_notes": "refund issued to original payment method", "new_status": "resolved"}, "outcome_log": {"operator_notes": "verified order history", "action_taken": "refund_issued"}}`,
	}}
	svc, store := newApproval(inv)
	pendingRefund(store, "#8002")
	store.UpsertTicket(models.Ticket{TicketID: "TKT-501", Status: models.StatusPendingApproval}, time.Now())

	record, err := svc.Resolve(context.Background(), "#8002", models.DecisionApproved, "looks legitimate")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.Decision != models.DecisionApproved {
		t.Fatalf("decision = %q", record.Decision)
	}
	if record.CustomerResponse != "Your refund is on its way!" {
		t.Fatalf("customer response not taken from reply: %q", record.CustomerResponse)
	}
	if record.ActionTaken != "refund_issued" || record.OperatorNotes != "verified order history" {
		t.Fatalf("outcome log fields not applied: %+v", record)
	}
	if record.Request.OrderID != "#8002" {
		t.Fatalf("request snapshot missing: %+v", record.Request)
	}

	if len(store.PendingApprovals()) != 0 {
		t.Fatal("request still pending after resolution")
	}
	ticket, _ := store.Ticket("TKT-501")
	if ticket.Status != models.StatusResolved {
		t.Fatalf("linked ticket status = %q, want resolved", ticket.Status)
	}

	if !strings.Contains(inv.lastMessage, "approved") || !strings.Contains(inv.lastMessage, "#8002") {
		t.Fatalf("agent message missing decision context: %q", inv.lastMessage)
	}
	if !strings.Contains(inv.lastMessage, "looks legitimate") {
		t.Fatalf("operator notes not forwarded: %q", inv.lastMessage)
	}
	if inv.lastAgentID != "approval-agent" {
		t.Fatalf("wrong agent id: %q", inv.lastAgentID)
	}
}

func TestApprovalResolve_FallbacksOnUnstructuredReply(t *testing.T) {
	inv := &stubInvoker{result: agent.Result{Raw: "Understood, processing now."}}
	svc, store := newApproval(inv)
	pendingRefund(store, "#8003")

	record, err := svc.Resolve(context.Background(), "#8003", models.DecisionDenied, "policy violation")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.Decision != models.DecisionDenied {
		t.Fatalf("operator decision not used as fallback: %q", record.Decision)
	}
	if record.CustomerResponse != "Request denied." {
		t.Fatalf("fallback customer response = %q", record.CustomerResponse)
	}
	if record.ResolutionNotes != "policy violation" || record.OperatorNotes != "policy violation" {
		t.Fatalf("notes fallback missing: %+v", record)
	}
}

func TestApprovalResolve_BadDecisionInReplyIgnored(t *testing.T) {
	inv := &stubInvoker{result: agent.Result{Raw: `{"decision": "maybe"}`}}
	svc, store := newApproval(inv)
	pendingRefund(store, "#8004")

	record, err := svc.Resolve(context.Background(), "#8004", models.DecisionApproved, "ok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.Decision != models.DecisionApproved {
		t.Fatalf("unrecognized reply decision should be ignored, got %q", record.Decision)
	}
}

func TestApprovalResolve_AgentFailureKeepsPending(t *testing.T) {
	inv := &stubInvoker{err: errors.New("agent timeout")}
	svc, store := newApproval(inv)
	pendingRefund(store, "#8005")

	if _, err := svc.Resolve(context.Background(), "#8005", models.DecisionApproved, "ok"); err == nil {
		t.Fatal("expected the remote error to surface")
	}
	if len(store.PendingApprovals()) != 1 {
		t.Fatal("request no longer pending after remote failure")
	}
	if len(store.ResolvedApprovals()) != 0 {
		t.Fatal("failed resolution reached the resolved log")
	}
	// the guard must be released so a retry can go through
	if !store.BeginApproval("#8005") {
		t.Fatal("processing guard not released after failure")
	}
	store.EndApproval("#8005")
}

func TestApprovalResolve_InFlightGuard(t *testing.T) {
	svc, store := newApproval(&stubInvoker{})
	pendingRefund(store, "#8006")
	store.BeginApproval("#8006")
	defer store.EndApproval("#8006")

	_, err := svc.Resolve(context.Background(), "#8006", models.DecisionApproved, "ok")
	if !errors.Is(err, ErrProcessing) {
		t.Fatalf("expected ErrProcessing, got %v", err)
	}
}
