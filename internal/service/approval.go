package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Lyzr-Apps/corey-support-agent-amazing-gear-2llo/internal/agent"
	"github.com/Lyzr-Apps/corey-support-agent-amazing-gear-2llo/internal/interpret"
	"github.com/Lyzr-Apps/corey-support-agent-amazing-gear-2llo/internal/models"
	"github.com/Lyzr-Apps/corey-support-agent-amazing-gear-2llo/internal/session"
)

// ErrNotesRequired blocks resolution before any remote call is made.
var ErrNotesRequired = errors.New("operator notes are required")

// ErrProcessing rejects a second resolution attempt while one is in flight
// for the same order id.
var ErrProcessing = errors.New("approval is already being processed")

// ApprovalService runs an operator decision round trip: validate notes, call
// the approval-handling agent, interpret its reply, and apply the resolution
// to the store. On any failure the request stays pending and resolvable.
type ApprovalService struct {
	Store           *session.Store
	Agent           agent.Invoker
	ApprovalAgentID string
	Logger          zerolog.Logger
}

// Resolve processes an operator decision for the pending request with the
// given order id. decision must be approved or denied.
func (s *ApprovalService) Resolve(ctx context.Context, orderID, decision, notes string) (models.ResolvedApproval, error) {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return models.ResolvedApproval{}, ErrNotesRequired
	}

	req, ok := s.Store.PendingByOrderID(orderID)
	if !ok {
		return models.ResolvedApproval{}, session.ErrNotFound
	}
	if !s.Store.BeginApproval(orderID) {
		return models.ResolvedApproval{}, ErrProcessing
	}
	defer s.Store.EndApproval(orderID)

	ticketRef := req.TicketID
	if ticketRef == "" {
		ticketRef = "N/A"
	}
	message := fmt.Sprintf(
		"Process %s decision for %s request. Order: %s. Customer requested: %s. Summary: %s. Operator notes: %s. Ticket: %s.",
		decision, req.RequestType, req.OrderID, req.DesiredOutcome, req.Summary, notes, ticketRef)

	result, err := s.Agent.Invoke(ctx, message, s.ApprovalAgentID, agent.Options{SessionID: s.Store.SessionID()})
	if err != nil {
		s.Logger.Warn().Err(err).Str("order_id", orderID).Msg("approval agent call failed")
		return models.ResolvedApproval{}, err
	}

	// every field falls back to the operator's own decision and notes
	resolution := session.ApprovalResolution{
		Decision:         decision,
		CustomerResponse: fmt.Sprintf("Request %s.", decision),
		ResolutionNotes:  notes,
		OperatorNotes:    notes,
		ActionTaken:      decision,
	}
	if parsed, perr := interpret.InterpretResolution(result.Raw); perr == nil {
		if parsed.Decision == models.DecisionApproved || parsed.Decision == models.DecisionDenied {
			resolution.Decision = parsed.Decision
		}
		if parsed.CustomerResponse != "" {
			resolution.CustomerResponse = parsed.CustomerResponse
		}
		if parsed.ResolutionNotes != "" {
			resolution.ResolutionNotes = parsed.ResolutionNotes
		}
		if parsed.OperatorNotes != "" {
			resolution.OperatorNotes = parsed.OperatorNotes
		}
		if parsed.ActionTaken != "" {
			resolution.ActionTaken = parsed.ActionTaken
		}
		resolution.NewTicketStatus = parsed.NewStatus
	}

	record, err := s.Store.ResolveApproval(orderID, resolution, time.Now().UTC())
	if err != nil {
		return models.ResolvedApproval{}, err
	}

	s.Logger.Info().
		Str("order_id", orderID).
		Str("decision", record.Decision).
		Msg("approval resolved")
	return record, nil
}
