// Package session holds the live workflow state of a support session: the
// chat transcript, tickets, the pending approval set and resolved log, the
// revenue ledger and the Pro Fund aggregates. Every transition is atomic
// under the store mutex; readers only ever see fully applied transitions.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/Lyzr-Apps/corey-support-agent-amazing-gear-2llo/internal/models"
	"github.com/Lyzr-Apps/corey-support-agent-amazing-gear-2llo/internal/utils"
)

// ErrNotFound reports an approval order id that is not in the pending set.
var ErrNotFound = errors.New("approval request not pending")

// ErrInvalidAmount reports a revenue entry without a numeric amount. The
// entry is rejected and the caller must surface a visible warning.
var ErrInvalidAmount = errors.New("revenue entry amount is not numeric")

// RevenueInput is a sale as reported by the agent, before validation.
// Amount is a pointer so "absent or non-numeric" is distinguishable from a
// zero-value sale; ProFundAllocation is optional and computed when nil.
type RevenueInput struct {
	Amount            *float64
	Product           string
	ProFundAllocation *float64
}

// ApprovalResolution carries the operator decision and the fields pulled
// from the approval agent's reply. NewTicketStatus may be empty, in which
// case the linked ticket defaults to resolved/denied by decision.
type ApprovalResolution struct {
	Decision         string
	CustomerResponse string
	ResolutionNotes  string
	OperatorNotes    string
	ActionTaken      string
	NewTicketStatus  string
}

// Stats is the dashboard aggregate view of the store.
type Stats struct {
	TotalTickets     int     `json:"total_tickets"`
	ActiveTickets    int     `json:"active_tickets"`
	TotalRevenue     float64 `json:"total_revenue"`
	RevenueEntries   int     `json:"revenue_entries"`
	ProFundBalance   float64 `json:"pro_fund_balance"`
	ConversionCount  int     `json:"conversion_count"`
	PendingApprovals int     `json:"pending_approvals"`
}

type Store struct {
	mu sync.Mutex

	sessionID string

	messages []models.ChatMessage
	tickets  []models.Ticket
	pending  []models.ApprovalRequest
	resolved []models.ResolvedApproval
	revenue  []models.RevenueEntry

	proFundBalance  float64
	conversionCount int

	chatBusy   bool
	processing map[string]struct{}
}

func New() *Store {
	return &Store{
		sessionID:  utils.NewID(),
		processing: map[string]struct{}{},
	}
}

// SessionID is the stable conversational context passed to the agents.
func (s *Store) SessionID() string {
	return s.sessionID
}

func (s *Store) AppendMessage(msg models.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

// UpsertTicket merges by ticket_id. The first-seen created_at is immutable:
// updates keep it regardless of what the incoming record carries. The merge
// is shallow; incoming non-empty fields overwrite, empty ones keep prior
// values.
func (s *Store) UpsertTicket(t models.Ticket, now time.Time) models.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tickets {
		if s.tickets[i].TicketID == t.TicketID {
			merged := mergeTicket(s.tickets[i], t)
			s.tickets[i] = merged
			return merged
		}
	}

	t.CreatedAt = now
	s.tickets = append(s.tickets, t)
	return t
}

func mergeTicket(existing, incoming models.Ticket) models.Ticket {
	out := existing
	if incoming.Category != "" {
		out.Category = incoming.Category
	}
	if incoming.Subject != "" {
		out.Subject = incoming.Subject
	}
	if incoming.Status != "" {
		out.Status = incoming.Status
	}
	if incoming.Priority != "" {
		out.Priority = incoming.Priority
	}
	return out
}

// EnqueueApproval appends to the pending set. Duplicate order ids stack: the
// agent, not this store, owns order id uniqueness, and merging here would
// silently drop a second legitimate request. The badge count over-counts in
// that case, which is the accepted trade-off.
func (s *Store) EnqueueApproval(req models.ApprovalRequest, now time.Time, customerNameFallback string) models.ApprovalRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	req.Timestamp = now
	if req.CustomerName == "" {
		req.CustomerName = customerNameFallback
	}
	s.pending = append(s.pending, req)
	return req
}

// RecordRevenue validates and appends a ledger entry, computing the Pro Fund
// allocation from the percentage setting when the agent did not supply one,
// and bumps the incremental aggregates.
func (s *Store) RecordRevenue(in RevenueInput, now time.Time, proFundPercentage float64) (models.RevenueEntry, error) {
	if in.Amount == nil {
		return models.RevenueEntry{}, ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	allocation := *in.Amount * proFundPercentage / 100
	if in.ProFundAllocation != nil {
		allocation = *in.ProFundAllocation
	}

	entry := models.RevenueEntry{
		Amount:            *in.Amount,
		Product:           in.Product,
		ProFundAllocation: allocation,
		Timestamp:         now,
	}
	s.revenue = append(s.revenue, entry)
	s.proFundBalance += allocation
	s.conversionCount++
	return entry, nil
}

// ResolveApproval removes exactly one pending entry matching orderID, appends
// the resolved record, and syncs the linked ticket's status. A second call
// for the same order id fails with ErrNotFound and leaves state untouched.
func (s *Store) ResolveApproval(orderID string, res ApprovalResolution, now time.Time) (models.ResolvedApproval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.pending {
		if s.pending[i].OrderID == orderID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.ResolvedApproval{}, ErrNotFound
	}

	req := s.pending[idx]
	s.pending = append(s.pending[:idx], s.pending[idx+1:]...)

	record := models.ResolvedApproval{
		Request:          req,
		Decision:         res.Decision,
		CustomerResponse: res.CustomerResponse,
		ResolutionNotes:  res.ResolutionNotes,
		OperatorNotes:    res.OperatorNotes,
		ActionTaken:      res.ActionTaken,
		ResolvedAt:       now,
	}
	s.resolved = append(s.resolved, record)

	if req.TicketID != "" {
		status := res.NewTicketStatus
		if status == "" {
			status = models.StatusDenied
			if res.Decision == models.DecisionApproved {
				status = models.StatusResolved
			}
		}
		for i := range s.tickets {
			if s.tickets[i].TicketID == req.TicketID {
				s.tickets[i].Status = status
				break
			}
		}
	}
	return record, nil
}

// BeginExchange claims the single in-flight chat slot. Returns false while a
// previous exchange is still running.
func (s *Store) BeginExchange() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.chatBusy {
		return false
	}
	s.chatBusy = true
	return true
}

func (s *Store) EndExchange() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chatBusy = false
}

// BeginApproval marks orderID as being processed. Distinct orders may be
// resolved concurrently; only a second attempt on the same order is refused.
func (s *Store) BeginApproval(orderID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.processing[orderID]; busy {
		return false
	}
	s.processing[orderID] = struct{}{}
	return true
}

func (s *Store) EndApproval(orderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.processing, orderID)
}

// PendingByOrderID returns the first pending request with the given order id.
func (s *Store) PendingByOrderID(orderID string) (models.ApprovalRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, req := range s.pending {
		if req.OrderID == orderID {
			return req, true
		}
	}
	return models.ApprovalRequest{}, false
}

func (s *Store) Messages() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ChatMessage(nil), s.messages...)
}

func (s *Store) Tickets() []models.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Ticket(nil), s.tickets...)
}

func (s *Store) Ticket(ticketID string) (models.Ticket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tickets {
		if t.TicketID == ticketID {
			return t, true
		}
	}
	return models.Ticket{}, false
}

func (s *Store) PendingApprovals() []models.ApprovalRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ApprovalRequest(nil), s.pending...)
}

func (s *Store) ResolvedApprovals() []models.ResolvedApproval {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ResolvedApproval(nil), s.resolved...)
}

func (s *Store) RevenueEntries() []models.RevenueEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.RevenueEntry(nil), s.revenue...)
}

func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{
		TotalTickets:     len(s.tickets),
		RevenueEntries:   len(s.revenue),
		ProFundBalance:   s.proFundBalance,
		ConversionCount:  s.conversionCount,
		PendingApprovals: len(s.pending),
	}
	for _, t := range s.tickets {
		if t.Status != models.StatusResolved {
			st.ActiveTickets++
		}
	}
	for _, e := range s.revenue {
		st.TotalRevenue += e.Amount
	}
	return st
}

// FundProgress reports the fund balance and conversion count for the payout
// check. A zero window keeps the incremental all-time aggregates (current
// policy); a positive window recomputes both over ledger entries newer than
// now minus the window, so the rolling-window policy can be switched on
// without touching callers.
func (s *Store) FundProgress(now time.Time, window time.Duration) (float64, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if window <= 0 {
		return s.proFundBalance, s.conversionCount
	}
	cutoff := now.Add(-window)
	var balance float64
	var count int
	for _, e := range s.revenue {
		if e.Timestamp.Before(cutoff) {
			continue
		}
		balance += e.ProFundAllocation
		count++
	}
	return balance, count
}

// Reset clears all workflow state. Used by the sample-data toggle.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	s.tickets = nil
	s.pending = nil
	s.resolved = nil
	s.revenue = nil
	s.proFundBalance = 0
	s.conversionCount = 0
}
