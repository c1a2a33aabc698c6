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
	"github.com/Lyzr-Apps/corey-support-agent-amazing-gear-2llo/internal/utils"
)

// ErrEmptyMessage rejects empty or whitespace-only input at the boundary.
var ErrEmptyMessage = errors.New("message must not be empty")

// ErrBusy rejects a send while a previous exchange is still in flight.
var ErrBusy = errors.New("another exchange is in flight")

const (
	genericAck     = "I received your message. Let me look into that for you."
	genericApology = "I apologize, but I encountered an issue processing your request. Please try again."
)

// ChatService runs one message exchange with the customer-support agent:
// append the user message, invoke, interpret, apply workflow side effects,
// append the agent and system messages.
type ChatService struct {
	Store          *session.Store
	Settings       *session.Settings
	Agent          agent.Invoker
	SupportAgentID string
	Logger         zerolog.Logger
}

// Send runs a full exchange and returns every message it appended, in
// transcript order. Remote and interpretation failures are not errors to the
// caller: they degrade to a single agent message with no workflow effects.
func (s *ChatService) Send(ctx context.Context, text string) ([]models.ChatMessage, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrEmptyMessage
	}
	if !s.Store.BeginExchange() {
		return nil, ErrBusy
	}
	defer s.Store.EndExchange()

	now := time.Now().UTC()
	userMsg := models.ChatMessage{
		ID:        utils.NewID(),
		Role:      models.RoleUser,
		Content:   trimmed,
		Timestamp: now,
	}
	s.Store.AppendMessage(userMsg)
	appended := []models.ChatMessage{userMsg}

	result, err := s.Agent.Invoke(ctx, trimmed, s.SupportAgentID, agent.Options{SessionID: s.Store.SessionID()})
	if err != nil {
		s.Logger.Warn().Err(err).Msg("support agent call failed")
		content := err.Error()
		if content == "" {
			content = genericApology
		}
		errMsg := s.appendAgent(content, nil)
		return append(appended, errMsg), nil
	}

	payload, perr := interpret.Interpret(result.Raw)
	if perr != nil {
		// no structured payload; the reply text is still display content
		content := ""
		if raw, ok := result.Raw.(string); ok {
			content = strings.TrimSpace(raw)
		}
		if content == "" {
			content = result.Message
		}
		if content == "" {
			content = genericAck
		}
		plain := s.appendAgent(content, nil)
		return append(appended, plain), nil
	}

	content := payload.ResponseText
	if content == "" {
		content = result.Message
	}
	if content == "" {
		content = genericAck
	}
	agentMsg := s.appendAgent(content, payload)
	appended = append(appended, agentMsg)

	appended = append(appended, s.applyEffects(payload, now)...)
	return appended, nil
}

// applyEffects applies the payload's workflow side effects in fixed order:
// ticket upsert, approval enqueue, revenue record, lead capture. Each is
// independently optional; they touch disjoint parts of the store.
func (s *ChatService) applyEffects(payload *interpret.Payload, now time.Time) []models.ChatMessage {
	var notices []models.ChatMessage

	if t := payload.Ticket; t != nil && t.TicketID != "" {
		s.Store.UpsertTicket(models.Ticket{
			TicketID: t.TicketID,
			Category: t.Category,
			Subject:  t.Subject,
			Status:   t.Status,
			Priority: t.Priority,
		}, now)
	}

	if a := payload.ApprovalRequest; a != nil {
		fallbackName := "Customer"
		if payload.LeadInfo != nil && payload.LeadInfo.Name != "" {
			fallbackName = payload.LeadInfo.Name
		}
		s.Store.EnqueueApproval(models.ApprovalRequest{
			RequestType:    a.RequestType,
			Reason:         a.Reason,
			OrderID:        a.OrderID,
			DesiredOutcome: a.DesiredOutcome,
			Summary:        a.Summary,
			TicketID:       a.TicketID,
			CustomerName:   a.CustomerName,
		}, now, fallbackName)
		notices = append(notices, s.appendSystem(fmt.Sprintf(
			"Approval request submitted for %s. An operator will review and follow up.", a.RequestType)))
	}

	if r := payload.RevenueEntry; r != nil {
		_, err := s.Store.RecordRevenue(session.RevenueInput{
			Amount:            r.Amount,
			Product:           r.Product,
			ProFundAllocation: r.ProFundAllocation,
		}, now, s.Settings.Get().ProFundPercentage)
		if err != nil {
			s.Logger.Warn().Err(err).Str("product", r.Product).Msg("revenue entry rejected")
			notices = append(notices, s.appendSystem(
				"A revenue entry from the agent was missing a valid amount and was not recorded."))
		}
	}

	if l := payload.LeadInfo; l != nil {
		notices = append(notices, s.appendSystem(fmt.Sprintf("Lead information captured for %s.", l.Name)))
	}
	return notices
}

func (s *ChatService) appendAgent(content string, payload *interpret.Payload) models.ChatMessage {
	msg := models.ChatMessage{
		ID:        utils.NewID(),
		Role:      models.RoleAgent,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	if payload != nil {
		msg.Citations = payload.Citations
		if t := payload.Ticket; t != nil {
			msg.Ticket = &models.Ticket{
				TicketID: t.TicketID,
				Category: t.Category,
				Subject:  t.Subject,
				Status:   t.Status,
				Priority: t.Priority,
			}
		}
		msg.LeadInfo = payload.LeadInfo
		msg.UpsellOffer = payload.UpsellOffer
		if a := payload.ApprovalRequest; a != nil {
			msg.ApprovalRequest = &models.ApprovalRequest{
				RequestType:    a.RequestType,
				Reason:         a.Reason,
				OrderID:        a.OrderID,
				DesiredOutcome: a.DesiredOutcome,
				Summary:        a.Summary,
				TicketID:       a.TicketID,
				CustomerName:   a.CustomerName,
			}
		}
		if r := payload.RevenueEntry; r != nil && r.Amount != nil {
			msg.RevenueEntry = &models.RevenueEntry{
				Amount:  *r.Amount,
				Product: r.Product,
			}
			if r.ProFundAllocation != nil {
				msg.RevenueEntry.ProFundAllocation = *r.ProFundAllocation
			}
		}
	}
	s.Store.AppendMessage(msg)
	return msg
}

func (s *ChatService) appendSystem(content string) models.ChatMessage {
	msg := models.ChatMessage{
		ID:        utils.NewID(),
		Role:      models.RoleSystem,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	s.Store.AppendMessage(msg)
	return msg
}
