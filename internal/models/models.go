package models

import "time"

// Project lifecycle statuses. The admin console may set any status at any
// time; transitions are advisory, not enforced.
const (
	StatusDraft          = "draft"
	StatusSubmitted      = "submitted"
	StatusUnderReview    = "under_review"
	StatusPaymentPending = "payment_pending"
	StatusAssigned       = "assigned"
	StatusInProgress     = "in_progress"
	StatusInRevision     = "in_revision"
	StatusCompleted      = "completed"
	StatusCancelled      = "cancelled"
	StatusRejected       = "rejected"
)

// Contract request statuses.
const (
	ContractStatusNew      = "new"
	ContractStatusReview   = "review"
	ContractStatusApproved = "approved"
	ContractStatusRejected = "rejected"
)

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name"`
	Phone        string    `json:"phone"`
	Company      string    `json:"company"`
	CreatedAt    time.Time `json:"created_at"`
}

type AdminUser struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Active       bool       `json:"active"`
	AuthUserID   *int64     `json:"auth_user_id"`
	LastLogin    *time.Time `json:"last_login"`
	CreatedAt    time.Time  `json:"created_at"`
}

type Project struct {
	ID                  int64      `json:"id"`
	UserID              int64      `json:"user_id"`
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	AnimationType       string     `json:"animation_type"`
	DurationSeconds     *int       `json:"duration_seconds"`
	StylePreferences    string     `json:"style_preferences"`
	ScriptContent       string     `json:"script_content"`
	BudgetMin           *int       `json:"budget_min"`
	BudgetMax           *int       `json:"budget_max"`
	Deadline            *time.Time `json:"deadline"`
	Status              string     `json:"status"`
	Currency            string     `json:"currency"`
	EstimatedPriceMinor *int64     `json:"estimated_price_minor"`
	FinalPriceMinor     *int64     `json:"final_price_minor"`
	DeliverablePath     *string    `json:"deliverable_path"`
	Notes               string     `json:"notes"`
	AssignedTo          *int64     `json:"assigned_to"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`

	// Joined fields
	Files  []ProjectFile `json:"files,omitempty"`
	Pinned bool          `json:"pinned"`
}

type ProjectFile struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"project_id"`
	FilePath  string    `json:"file_path"`
	FileName  string    `json:"file_name"`
	FileSize  int64     `json:"file_size"`
	CreatedAt time.Time `json:"created_at"`
}

// QuickEstimate is write-once: no code path updates or deletes a row.
type QuickEstimate struct {
	ID              int64     `json:"id"`
	AnimationType   string    `json:"animation_type"`
	DurationSeconds int       `json:"duration_seconds"`
	Complexity      float64   `json:"complexity"`
	Currency        string    `json:"currency"`
	PriceMinor      int64     `json:"price_minor"`
	Email           string    `json:"email"`
	CreatedAt       time.Time `json:"created_at"`
}

type ContractRequest struct {
	ID             int64      `json:"id"`
	Email          string     `json:"email"`
	ContactName    string     `json:"contact_name"`
	Organization   string     `json:"organization"`
	Plan           string     `json:"plan"`
	Currency       string     `json:"currency"`
	MonthlyBudget  *int       `json:"monthly_budget"`
	Timeframe      string     `json:"timeframe"`
	PreferredStart *time.Time `json:"preferred_start"`
	Description    string     `json:"description"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type Review struct {
	ID           int64     `json:"id"`
	ProjectID    *int64    `json:"project_id"`
	UserID       *int64    `json:"user_id"`
	Quote        string    `json:"quote"`
	Author       string    `json:"author"`
	Role         string    `json:"role"`
	Organization string    `json:"organization"`
	Link         string    `json:"link"`
	Topics       []string  `json:"topics"`
	Rating       int       `json:"rating"`
	Approved     bool      `json:"approved"`
	Verified     bool      `json:"verified"`
	CreatedAt    time.Time `json:"created_at"`
}

// SupportMessage belongs to the thread keyed by UserID; SenderID is the
// author (the client, or an admin when FromAdmin is set).
type SupportMessage struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	SenderID  int64     `json:"sender_id"`
	FromAdmin bool      `json:"from_admin"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// ClientProfile is a user joined with project aggregates for the admin view.
type ClientProfile struct {
	UserID          int64     `json:"user_id"`
	Email           string    `json:"email"`
	FullName        string    `json:"full_name"`
	Phone           string    `json:"phone"`
	Company         string    `json:"company"`
	CreatedAt       time.Time `json:"created_at"`
	ProjectCount    int       `json:"project_count"`
	TotalSpentMinor int64     `json:"total_spent_minor"`
}

// ThreadSummary is one row of the admin support inbox: the latest message
// per client thread.
type ThreadSummary struct {
	UserID       int64     `json:"user_id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	LastMessage  string    `json:"last_message"`
	LastAt       time.Time `json:"last_at"`
	MessageCount int       `json:"message_count"`
}
