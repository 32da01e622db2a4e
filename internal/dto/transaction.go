package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/araratsoft/tax_declaration_app/internal/models"
)

// TransactionResponse defines the data returned for a transaction, including
// its current classification in all three domains.
type TransactionResponse struct {
	TransactionID      string          `json:"transactionID"`
	StatementID        string          `json:"statementID"`
	TransactionDate    time.Time       `json:"transactionDate"`
	ProvisionDate      *time.Time      `json:"provisionDate,omitempty"`
	Amount             decimal.Decimal `json:"amount"`
	Currency           string          `json:"currency"`
	Description        string          `json:"description"`
	Sender             string          `json:"sender"`
	SenderAccount      string          `json:"senderAccount"`
	IsExpense          bool            `json:"isExpense"`
	MatchedRuleID      *string         `json:"matchedRuleID,omitempty"`
	DeclarationPointID *string         `json:"declarationPointID,omitempty"`
	EntityType         string          `json:"entityType"`
	Scope              string          `json:"scope"`
	LastUpdatedAt      time.Time       `json:"lastUpdatedAt"`
}

// ToTransactionResponse converts a models.Transaction to TransactionResponse DTO
func ToTransactionResponse(txn *models.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:      txn.TransactionID,
		StatementID:        txn.StatementID,
		TransactionDate:    txn.TransactionDate,
		ProvisionDate:      txn.ProvisionDate,
		Amount:             txn.Amount,
		Currency:           txn.Currency,
		Description:        txn.Description,
		Sender:             txn.Sender,
		SenderAccount:      txn.SenderAccount,
		IsExpense:          txn.IsExpense,
		MatchedRuleID:      txn.MatchedRuleID,
		DeclarationPointID: txn.DeclarationPointID,
		EntityType:         string(txn.EntityType),
		Scope:              string(txn.Scope),
		LastUpdatedAt:      txn.LastUpdatedAt,
	}
}

// ToListTransactionResponse converts a slice of models.Transaction to DTOs
func ToListTransactionResponse(txns []models.Transaction) []TransactionResponse {
	res := make([]TransactionResponse, len(txns))
	for i := range txns {
		res[i] = ToTransactionResponse(&txns[i])
	}
	return res
}
