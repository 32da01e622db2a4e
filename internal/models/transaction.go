package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntityType says whether the counterparty is a person or a legal entity.
type EntityType string

const (
	EntityUndetermined EntityType = "UNDETERMINED"
	EntityIndividual   EntityType = "INDIVIDUAL"
	EntityLegal        EntityType = "LEGAL"
)

// TransactionScope says whether the movement is domestic or international.
type TransactionScope string

const (
	ScopeUndetermined  TransactionScope = "UNDETERMINED"
	ScopeLocal         TransactionScope = "LOCAL"
	ScopeInternational TransactionScope = "INTERNATIONAL"
)

// Transaction is one financial movement extracted from a statement. Everything
// except the three classification fields and MatchedRuleID is immutable after
// import.
type Transaction struct {
	TransactionID string `json:"transactionID"`
	StatementID   string `json:"statementID"`

	TransactionDate time.Time       `json:"transactionDate"`
	ProvisionDate   *time.Time      `json:"provisionDate,omitempty"`
	Amount          decimal.Decimal `json:"amount"` // Absolute value, always positive
	Currency        string          `json:"currency"`
	Description     string          `json:"description"`
	Sender          string          `json:"sender"`
	SenderAccount   string          `json:"senderAccount"`
	IsExpense       bool            `json:"isExpense"`

	// Classification results, written only by the drivers or manual review.
	MatchedRuleID      *string          `json:"matchedRuleID,omitempty"`
	DeclarationPointID *string          `json:"declarationPointID,omitempty"`
	EntityType         EntityType       `json:"entityType"`
	Scope              TransactionScope `json:"scope"`

	AuditFields
}
