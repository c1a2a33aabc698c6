package models

import "time"

// Message roles in the chat transcript.
const (
	RoleUser   = "user"
	RoleAgent  = "agent"
	RoleSystem = "system"
)

// Ticket statuses.
const (
	StatusOpen            = "open"
	StatusInProgress      = "in_progress"
	StatusPendingApproval = "pending_approval"
	StatusResolved        = "resolved"
	StatusDenied          = "denied"
)

// Ticket categories.
const (
	CategoryBilling   = "billing"
	CategoryTechnical = "technical"
	CategoryAccount   = "account"
	CategoryGeneral   = "general"
)

// Approval request types and decisions.
const (
	RequestTypeRefund        = "refund"
	RequestTypeAccountChange = "account_change"

	DecisionApproved = "approved"
	DecisionDenied   = "denied"
)

type Citation struct {
	Source  string `json:"source"`
	Excerpt string `json:"excerpt"`
}

type Ticket struct {
	TicketID  string    `json:"ticket_id"`
	Category  string    `json:"category"`
	Subject   string    `json:"subject"`
	Status    string    `json:"status"`
	Priority  string    `json:"priority"`
	CreatedAt time.Time `json:"created_at"`
}

type LeadInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	UseCase string `json:"use_case"`
}

type UpsellOffer struct {
	ProductName string `json:"product_name"`
	Price       string `json:"price"`
	Description string `json:"description"`
	CheckoutURL string `json:"checkout_url"`
}

type ApprovalRequest struct {
	RequestType    string    `json:"request_type"`
	Reason         string    `json:"reason"`
	OrderID        string    `json:"order_id"`
	DesiredOutcome string    `json:"desired_outcome"`
	Summary        string    `json:"summary"`
	TicketID       string    `json:"ticket_id,omitempty"`
	CustomerName   string    `json:"customer_name,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// ResolvedApproval is an immutable record of an operator decision applied to
// a pending request. Request is a snapshot taken at resolution time.
type ResolvedApproval struct {
	Request          ApprovalRequest `json:"request"`
	Decision         string          `json:"decision"`
	CustomerResponse string          `json:"customer_response"`
	ResolutionNotes  string          `json:"resolution_notes"`
	OperatorNotes    string          `json:"operator_notes"`
	ActionTaken      string          `json:"action_taken"`
	ResolvedAt       time.Time       `json:"resolved_at"`
}

type RevenueEntry struct {
	Amount            float64   `json:"amount"`
	Product           string    `json:"product"`
	ProFundAllocation float64   `json:"pro_fund_allocation"`
	Timestamp         time.Time `json:"timestamp"`
}

// ChatMessage is one transcript entry. The annotation pointers carry whatever
// structured data the agent attached to its reply; they are display metadata
// with no lifecycle of their own.
type ChatMessage struct {
	ID              string           `json:"id"`
	Role            string           `json:"role"`
	Content         string           `json:"content"`
	Timestamp       time.Time        `json:"timestamp"`
	Citations       []Citation       `json:"citations,omitempty"`
	Ticket          *Ticket          `json:"ticket,omitempty"`
	LeadInfo        *LeadInfo        `json:"lead_info,omitempty"`
	UpsellOffer     *UpsellOffer     `json:"upsell_offer,omitempty"`
	ApprovalRequest *ApprovalRequest `json:"approval_request,omitempty"`
	RevenueEntry    *RevenueEntry    `json:"revenue_entry,omitempty"`
}

// AppSettings is runtime configuration owned by the surrounding application,
// read by the fund policy and the revenue allocation fallback.
type AppSettings struct {
	Greeting                 string  `json:"greeting"`
	ConciergeCheckoutURL     string  `json:"concierge_checkout_url"`
	AddonCheckoutURL         string  `json:"addon_checkout_url"`
	SheetsURL                string  `json:"sheets_url"`
	ProFundPercentage        float64 `json:"pro_fund_percentage"`
	ProFundThreshold         float64 `json:"pro_fund_threshold"`
	ConversionCountThreshold int     `json:"conversion_count_threshold"`
	TimeWindowDays           int     `json:"time_window_days"`
}
