package handler

// CreateAccountRequest represents a request to open a new account
type CreateAccountRequest struct {
	OwnerID        string `json:"owner_id" binding:"required,uuid"`
	Type           string `json:"type" binding:"required,oneof=CHECKING SAVINGS CREDIT"`
	AccountNumber  string `json:"account_number" binding:"required"`
	InitialBalance int64  `json:"initial_balance" binding:"min=0"`
	AllowOverdraft bool   `json:"allow_overdraft"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID             string `json:"id"`
	OwnerID        string `json:"owner_id"`
	Type           string `json:"type"`
	AccountNumber  string `json:"account_number"`
	Balance        int64  `json:"balance"`
	RewardsBalance int64  `json:"rewards_balance"`
	AllowOverdraft bool   `json:"allow_overdraft"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

// CreateTransferRequest represents a request to move money between accounts.
// Exactly one of payee_account_id and payee_account_number names the
// destination.
type CreateTransferRequest struct {
	PayerAccountID     string `json:"payer_account_id" binding:"required,uuid"`
	PayeeAccountID     string `json:"payee_account_id,omitempty" binding:"omitempty,uuid"`
	PayeeAccountNumber string `json:"payee_account_number,omitempty"`
	Amount             int64  `json:"amount" binding:"required,gt=0"`
	Medium             string `json:"medium,omitempty" binding:"omitempty,oneof=BALANCE REWARDS"`
	Description        string `json:"description,omitempty" binding:"max=255"`
}

// HistoryRecordResponse represents one history record in API responses
type HistoryRecordResponse struct {
	ID              string `json:"id"`
	TransferID      string `json:"transfer_id"`
	AccountID       string `json:"account_id"`
	UserID          string `json:"user_id"`
	Type            string `json:"type"`
	Medium          string `json:"medium"`
	Amount          int64  `json:"amount"`
	PayerAccountID  string `json:"payer_account_id,omitempty"`
	PayeeAccountID  string `json:"payee_account_id,omitempty"`
	PreviousBalance int64  `json:"previous_balance"`
	NewBalance      int64  `json:"new_balance"`
	Status          string `json:"status"`
	Description     string `json:"description,omitempty"`
	CreatedAt       string `json:"created_at"`
}

// RecordPaymentRequest represents a manual settling payment on a plan
type RecordPaymentRequest struct {
	PayerPersonID     string `json:"payer_person_id" binding:"required,uuid"`
	ReceiverPersonID  string `json:"receiver_person_id" binding:"required,uuid"`
	Amount            int64  `json:"amount" binding:"required,gt=0"`
	Date              string `json:"date,omitempty"` // RFC 3339, defaults to now
	Description       string `json:"description,omitempty" binding:"max=255"`
	ActingUserID      string `json:"acting_user_id,omitempty" binding:"omitempty,uuid"`
	PersonalAccountID string `json:"personal_account_id,omitempty" binding:"omitempty,uuid"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=20" binding:"min=1,max=100"`
}
