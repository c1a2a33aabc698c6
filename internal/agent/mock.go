package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/Lyzr-Apps/corey-support-agent-amazing-gear-2llo/internal/utils"
)

// MockInvoker produces deterministic canned replies keyed on message content,
// used when no agent platform is configured. Replies embed JSON in prose so
// the full extraction path is exercised.
type MockInvoker struct {
	SupportAgentID  string
	ApprovalAgentID string
}

func (m MockInvoker) Invoke(ctx context.Context, message, agentID string, opts Options) (Result, error) {
	if agentID == m.ApprovalAgentID {
		return m.approvalReply(message), nil
	}
	return m.supportReply(message), nil
}

func (m MockInvoker) supportReply(message string) Result {
	lower := strings.ToLower(message)
	h := utils.HashStringToUint64(message)
	ticketID := fmt.Sprintf("TKT-%03d", h%900+100)
	orderID := fmt.Sprintf("#%04d", h%9000+1000)

	switch {
	case strings.Contains(lower, "refund"):
		return Result{Raw: fmt.Sprintf("Here is what I can do.\n```json\n"+
			`{"response_text": "I understand you would like a refund. I have opened a ticket and escalated this to an operator for approval.", "ticket": {"ticket_id": %q, "category": "billing", "subject": "Refund request", "status": "pending_approval", "priority": "high"}, "approval_request": {"request_type": "refund", "reason": "Customer dissatisfied with purchase", "order_id": %q, "desired_outcome": "Full refund", "summary": "Customer requested a refund via chat.", "ticket_id": %q}}`+
			"\n```", ticketID, orderID, ticketID)}
	case strings.Contains(lower, "concierge") || strings.Contains(lower, "package"):
		return Result{Raw: `{"response_text": "Our Concierge Setup package provides hands-on assistance to get you fully configured.", "upsell_offer": {"product_name": "Concierge Setup", "price": "$97", "description": "Full hands-on setup assistance including API configuration, integration testing, and 30-day priority support.", "checkout_url": "https://checkout.stripe.com/concierge-setup"}}`}
	case strings.Contains(lower, "purchase") || strings.Contains(lower, "buy"):
		return Result{Raw: `{"response_text": "Your purchase of the Concierge Setup package is confirmed. You will receive onboarding details shortly.", "revenue_entry": {"amount": 97, "product": "Concierge Setup"}}`}
	case strings.Contains(lower, "@"):
		return Result{Raw: fmt.Sprintf(`{"response_text": "Thanks! I have noted your details and our team will reach out.", "lead_info": {"name": "Customer %d", "email": "customer%d@example.com", "use_case": "support inquiry"}}`, h%100, h%100)}
	case strings.Contains(lower, "help") || strings.Contains(lower, "issue") || strings.Contains(lower, "problem"):
		return Result{Raw: fmt.Sprintf("Let me open a ticket for that.\n"+
			`{"response_text": "I have logged your issue and our team will take a look.", "citations": [{"source": "Support Handbook", "excerpt": "Technical issues are triaged within one business day."}], "ticket": {"ticket_id": %q, "category": "technical", "subject": "Support request", "status": "open", "priority": "medium"}}`, ticketID)}
	default:
		return Result{Raw: `{"response_text": "Thanks for reaching out! How else can I help you today?"}`}
	}
}

func (m MockInvoker) approvalReply(message string) Result {
	decision := "denied"
	if strings.Contains(strings.ToLower(message), "approved") {
		decision = "approved"
	}
	action := "denied request and notified customer"
	response := "After review we are unable to grant this request."
	status := "denied"
	if decision == "approved" {
		action = "issued refund"
		response = "Good news! Your request has been approved and processed."
		status = "resolved"
	}
	return Result{Raw: fmt.Sprintf(`{"decision": %q, "customer_response": %q, "ticket_update": {"resolution_notes": "Processed by approval handler.", "new_status": %q}, "outcome_log": {"operator_notes": "Mock resolution.", "action_taken": %q}}`,
		decision, response, status, action)}
}
