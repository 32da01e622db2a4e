package models

import "time"

// DeclarationStatus tracks where a filing period is in its lifecycle.
type DeclarationStatus string

const (
	DeclarationDraft            DeclarationStatus = "DRAFT"
	DeclarationAnalysisComplete DeclarationStatus = "ANALYSIS_COMPLETE"
	DeclarationFiled            DeclarationStatus = "FILED"
)

// Declaration is one taxpayer's filing period grouping statements and transactions.
type Declaration struct {
	DeclarationID   string            `json:"declarationID"`
	Name            string            `json:"name"` // Unique, e.g. "2025 Declaration - Client A"
	TaxPeriodStart  time.Time         `json:"taxPeriodStart"`
	TaxPeriodEnd    time.Time         `json:"taxPeriodEnd"`
	ClientReference string            `json:"clientReference"`
	FirstName       string            `json:"firstName"`
	LastName        string            `json:"lastName"`
	Status          DeclarationStatus `json:"status"`
	AuditFields
}

// Statement is one imported source file's worth of transactions.
type Statement struct {
	StatementID   string    `json:"statementID"`
	DeclarationID string    `json:"declarationID"`
	FileName      string    `json:"fileName"`
	BankName      string    `json:"bankName"`
	UploadDate    time.Time `json:"uploadDate"`
	Status        string    `json:"status"` // e.g. PROCESSED
	AuditFields
}
