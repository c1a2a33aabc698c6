// Package interpret turns raw agent replies into typed payloads. Agent output
// is JSON at best and JSON buried in prose at worst, so extraction is a
// two-stage affair: locate a candidate span, then strict-parse with one
// bounded repair retry. Failure is a typed result, not an exception: callers
// fall back to treating the reply as plain display text.
package interpret

import (
	"encoding/json"
	"errors"

	"github.com/Lyzr-Apps/corey-support-agent-amazing-gear-2llo/internal/models"
)

// ErrNoPayload reports that no structured payload could be extracted from the
// reply. The surrounding text is still usable as display content.
var ErrNoPayload = errors.New("no structured payload in agent reply")

// Ticket is the wire shape of a ticket inside an agent payload. The store
// owns created_at, so the agent-supplied value is not carried.
type Ticket struct {
	TicketID string `json:"ticket_id"`
	Category string `json:"category"`
	Subject  string `json:"subject"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
}

// ApprovalRequest is the wire shape of an approval request. Timestamps and
// customer names are filled in by the store at enqueue time.
type ApprovalRequest struct {
	RequestType    string `json:"request_type"`
	Reason         string `json:"reason"`
	OrderID        string `json:"order_id"`
	DesiredOutcome string `json:"desired_outcome"`
	Summary        string `json:"summary"`
	TicketID       string `json:"ticket_id"`
	CustomerName   string `json:"customer_name"`
}

// RevenueEntry is the wire shape of a sale. Amount is a pointer so a missing
// or non-numeric amount is distinguishable from zero; the allocation is
// optional and computed from settings when absent.
type RevenueEntry struct {
	Amount            *float64 `json:"amount"`
	Product           string   `json:"product"`
	ProFundAllocation *float64 `json:"pro_fund_allocation"`
}

// Payload is the structured data extracted from a support-agent reply. Every
// field is independently optional.
type Payload struct {
	ResponseText    string
	Citations       []models.Citation
	Ticket          *Ticket
	LeadInfo        *models.LeadInfo
	UpsellOffer     *models.UpsellOffer
	ApprovalRequest *ApprovalRequest
	RevenueEntry    *RevenueEntry
}

// Resolution is the structured data extracted from an approval-agent reply.
type Resolution struct {
	Decision         string
	CustomerResponse string
	ResolutionNotes  string
	NewStatus        string
	OperatorNotes    string
	ActionTaken      string
}

// Interpret extracts a Payload from a raw agent reply. raw may be an
// already-decoded object or a string that embeds JSON in prose or markdown.
// Returns ErrNoPayload when nothing structured can be recovered.
func Interpret(raw any) (*Payload, error) {
	obj, err := toObject(raw)
	if err != nil {
		return nil, err
	}

	p := &Payload{}
	p.ResponseText = stringField(obj, "response_text")
	if rm, ok := obj["citations"]; ok {
		// non-sequence citations degrade to empty, not to failure
		_ = json.Unmarshal(rm, &p.Citations)
	}
	if t := decodeField[Ticket](obj, "ticket"); t != nil {
		p.Ticket = t
	}
	if l := decodeField[models.LeadInfo](obj, "lead_info"); l != nil {
		p.LeadInfo = l
	}
	if u := decodeField[models.UpsellOffer](obj, "upsell_offer"); u != nil {
		p.UpsellOffer = u
	}
	if a := decodeField[ApprovalRequest](obj, "approval_request"); a != nil {
		p.ApprovalRequest = a
	}
	if r := decodeField[RevenueEntry](obj, "revenue_entry"); r != nil {
		p.RevenueEntry = r
	}
	return p, nil
}

// InterpretResolution extracts a Resolution from a raw approval-agent reply.
func InterpretResolution(raw any) (*Resolution, error) {
	obj, err := toObject(raw)
	if err != nil {
		return nil, err
	}

	r := &Resolution{
		Decision:         stringField(obj, "decision"),
		CustomerResponse: stringField(obj, "customer_response"),
	}
	if tu := decodeField[map[string]json.RawMessage](obj, "ticket_update"); tu != nil {
		r.ResolutionNotes = stringField(*tu, "resolution_notes")
		r.NewStatus = stringField(*tu, "new_status")
	}
	if ol := decodeField[map[string]json.RawMessage](obj, "outcome_log"); ol != nil {
		r.OperatorNotes = stringField(*ol, "operator_notes")
		r.ActionTaken = stringField(*ol, "action_taken")
	}
	return r, nil
}

// toObject normalizes raw input to a field map. Structured input passes
// through via re-marshalling; strings go through locate + parse + repair.
func toObject(raw any) (map[string]json.RawMessage, error) {
	switch v := raw.(type) {
	case nil:
		return nil, ErrNoPayload
	case string:
		candidate, ok := locate(v)
		if !ok {
			return nil, ErrNoPayload
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal([]byte(candidate), &obj); err == nil {
			return obj, nil
		}
		if err := json.Unmarshal([]byte(repair(candidate)), &obj); err == nil {
			return obj, nil
		}
		return nil, ErrNoPayload
	case []byte:
		return toObject(string(v))
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, ErrNoPayload
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(b, &obj); err != nil {
			return nil, ErrNoPayload
		}
		return obj, nil
	}
}

func stringField(obj map[string]json.RawMessage, key string) string {
	rm, ok := obj[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(rm, &s); err != nil {
		return ""
	}
	return s
}

// decodeField unmarshals one optional field. A field that fails to decode is
// treated as absent rather than failing the whole payload.
func decodeField[T any](obj map[string]json.RawMessage, key string) *T {
	rm, ok := obj[key]
	if !ok || string(rm) == "null" {
		return nil
	}
	var out T
	if err := json.Unmarshal(rm, &out); err != nil {
		return nil
	}
	return &out
}
