package session

import (
	"time"

	"github.com/Lyzr-Apps/corey-support-agent-amazing-gear-2llo/internal/models"
	"github.com/Lyzr-Apps/corey-support-agent-amazing-gear-2llo/internal/utils"
)

// LoadSample replaces all workflow state with the demo dataset: a handful of
// tickets in assorted states, a short transcript ending in an upsell offer,
// three revenue entries and two pending approvals.
func (s *Store) LoadSample(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := 24 * time.Hour

	s.tickets = []models.Ticket{
		{TicketID: "TKT-001", Category: models.CategoryBilling, Subject: "Refund request for order #4521", Status: models.StatusPendingApproval, Priority: "high", CreatedAt: now.Add(-day)},
		{TicketID: "TKT-002", Category: models.CategoryTechnical, Subject: "API integration not working", Status: models.StatusInProgress, Priority: "medium", CreatedAt: now.Add(-day)},
		{TicketID: "TKT-003", Category: models.CategoryAccount, Subject: "Password reset issue", Status: models.StatusOpen, Priority: "low", CreatedAt: now},
		{TicketID: "TKT-004", Category: models.CategoryGeneral, Subject: "Feature request: dark mode", Status: models.StatusResolved, Priority: "low", CreatedAt: now.Add(-2 * day)},
	}

	s.revenue = []models.RevenueEntry{
		{Amount: 97, Product: "Concierge Setup", ProFundAllocation: 19.40, Timestamp: now},
		{Amount: 25, Product: "Add-On Pack", ProFundAllocation: 5.00, Timestamp: now.Add(-day)},
		{Amount: 97, Product: "Concierge Setup", ProFundAllocation: 19.40, Timestamp: now.Add(-2 * day)},
	}
	s.proFundBalance = 43.80
	s.conversionCount = 3

	s.pending = []models.ApprovalRequest{
		{
			RequestType:    models.RequestTypeRefund,
			Reason:         "Product did not meet expectations",
			OrderID:        "#4521",
			DesiredOutcome: "Full refund of $97",
			Summary:        "Customer requesting full refund for Concierge Setup package. Purchased 5 days ago, claims features did not match description.",
			CustomerName:   "Sarah Mitchell",
			TicketID:       "TKT-001",
			Timestamp:      now.Add(-day),
		},
		{
			RequestType:    models.RequestTypeAccountChange,
			Reason:         "Needs enterprise tier upgrade",
			OrderID:        "#4530",
			DesiredOutcome: "Upgrade to enterprise with prorated billing",
			Summary:        "Long-term customer requesting enterprise upgrade with prorated billing for remainder of current billing cycle.",
			CustomerName:   "James Anderson",
			TicketID:       "TKT-005",
			Timestamp:      now,
		},
	}
	s.resolved = nil

	s.messages = []models.ChatMessage{
		{ID: utils.NewID(), Role: models.RoleAgent, Content: "Welcome to Corey Support! How can I help you today?", Timestamp: now.Add(-time.Hour)},
		{ID: utils.NewID(), Role: models.RoleUser, Content: "I need help with my recent order. The product setup guide seems incomplete.", Timestamp: now.Add(-59 * time.Minute)},
		{
			ID:        utils.NewID(),
			Role:      models.RoleAgent,
			Content:   "I understand your concern about the setup guide. Let me pull up the relevant documentation for you.",
			Timestamp: now.Add(-58 * time.Minute),
			Citations: []models.Citation{{Source: "Setup Guide v3.2", Excerpt: "The setup wizard provides step-by-step configuration for new users..."}},
		},
		{ID: utils.NewID(), Role: models.RoleUser, Content: "That helps! Can you also tell me about the Concierge Setup package?", Timestamp: now.Add(-55 * time.Minute)},
		{
			ID:        utils.NewID(),
			Role:      models.RoleAgent,
			Content:   "Great question! Our Concierge Setup package provides hands-on assistance to get you fully configured. Here is what is included:",
			Timestamp: now.Add(-54 * time.Minute),
			UpsellOffer: &models.UpsellOffer{
				ProductName: "Concierge Setup",
				Price:       "$97",
				Description: "Full hands-on setup assistance including API configuration, integration testing, and 30-day priority support.",
				CheckoutURL: "https://checkout.stripe.com/concierge-setup",
			},
		},
	}
}
