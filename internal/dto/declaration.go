package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/araratsoft/tax_declaration_app/internal/models"
)

// CreateDeclarationRequest defines the data needed to open a filing period.
type CreateDeclarationRequest struct {
	Name            string `json:"name" binding:"required"`
	TaxPeriodStart  string `json:"taxPeriodStart" binding:"required"` // YYYY-MM-DD
	TaxPeriodEnd    string `json:"taxPeriodEnd" binding:"required"`   // YYYY-MM-DD
	ClientReference string `json:"clientReference"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
}

// DeclarationResponse defines the data returned for a declaration.
type DeclarationResponse struct {
	DeclarationID   string    `json:"declarationID"`
	Name            string    `json:"name"`
	TaxPeriodStart  time.Time `json:"taxPeriodStart"`
	TaxPeriodEnd    time.Time `json:"taxPeriodEnd"`
	ClientReference string    `json:"clientReference"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
	LastUpdatedAt   time.Time `json:"lastUpdatedAt"`
}

// ToDeclarationResponse converts a models.Declaration to DeclarationResponse DTO
func ToDeclarationResponse(d *models.Declaration) DeclarationResponse {
	return DeclarationResponse{
		DeclarationID:   d.DeclarationID,
		Name:            d.Name,
		TaxPeriodStart:  d.TaxPeriodStart,
		TaxPeriodEnd:    d.TaxPeriodEnd,
		ClientReference: d.ClientReference,
		FirstName:       d.FirstName,
		LastName:        d.LastName,
		Status:          string(d.Status),
		CreatedAt:       d.CreatedAt,
		LastUpdatedAt:   d.LastUpdatedAt,
	}
}

// ToListDeclarationResponse converts a slice of models.Declaration to DTOs
func ToListDeclarationResponse(declarations []models.Declaration) []DeclarationResponse {
	res := make([]DeclarationResponse, len(declarations))
	for i := range declarations {
		res[i] = ToDeclarationResponse(&declarations[i])
	}
	return res
}

// TransactionRow is one normalized statement line in an import request.
// Amount is signed; negative means expense.
type TransactionRow struct {
	TransactionDate string `json:"transactionDate" binding:"required"` // YYYY-MM-DD
	ProvisionDate   string `json:"provisionDate"`                      // Optional, YYYY-MM-DD
	Amount          string `json:"amount" binding:"required"`
	Currency        string `json:"currency" binding:"required,len=3"`
	Description     string `json:"description"`
	Sender          string `json:"sender"`
	SenderAccount   string `json:"senderAccount"`
}

// ImportStatementRequest defines the data needed to import one statement's
// worth of normalized transactions.
type ImportStatementRequest struct {
	FileName     string           `json:"fileName" binding:"required"`
	BankName     string           `json:"bankName"`
	Transactions []TransactionRow `json:"transactions" binding:"required,min=1,dive"`
}

// StatementResponse defines the data returned for a statement.
type StatementResponse struct {
	StatementID   string    `json:"statementID"`
	DeclarationID string    `json:"declarationID"`
	FileName      string    `json:"fileName"`
	BankName      string    `json:"bankName"`
	UploadDate    time.Time `json:"uploadDate"`
	Status        string    `json:"status"`
}

// ToStatementResponse converts a models.Statement to StatementResponse DTO
func ToStatementResponse(st *models.Statement) StatementResponse {
	return StatementResponse{
		StatementID:   st.StatementID,
		DeclarationID: st.DeclarationID,
		FileName:      st.FileName,
		BankName:      st.BankName,
		UploadDate:    st.UploadDate,
		Status:        st.Status,
	}
}

// ToListStatementResponse converts a slice of models.Statement to DTOs
func ToListStatementResponse(statements []models.Statement) []StatementResponse {
	res := make([]StatementResponse, len(statements))
	for i := range statements {
		res[i] = ToStatementResponse(&statements[i])
	}
	return res
}

// ImportStatementResponse reports the outcome of an import.
type ImportStatementResponse struct {
	Statement        StatementResponse `json:"statement"`
	TransactionCount int               `json:"transactionCount"`
}

// PointTotalResponse is one row of a declaration report.
type PointTotalResponse struct {
	PointName        string          `json:"pointName"`
	IsIncome         bool            `json:"isIncome"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	TransactionCount int             `json:"transactionCount"`
}

// ToListPointTotalResponse converts report rows to DTOs
func ToListPointTotalResponse(totals []models.PointTotal) []PointTotalResponse {
	res := make([]PointTotalResponse, len(totals))
	for i, t := range totals {
		res[i] = PointTotalResponse{
			PointName:        t.PointName,
			IsIncome:         t.IsIncome,
			TotalAmount:      t.TotalAmount,
			TransactionCount: t.TransactionCount,
		}
	}
	return res
}

// CreateDeclarationPointRequest defines the data needed to add a declaration
// point.
type CreateDeclarationPointRequest struct {
	Name         string `json:"name" binding:"required"`
	Description  string `json:"description"`
	IsIncome     bool   `json:"isIncome"`
	IsAutoFilled bool   `json:"isAutoFilled"`
}

// DeclarationPointResponse defines the data returned for a declaration point.
type DeclarationPointResponse struct {
	DeclarationPointID string `json:"declarationPointID"`
	Name               string `json:"name"`
	Description        string `json:"description"`
	IsIncome           bool   `json:"isIncome"`
	IsAutoFilled       bool   `json:"isAutoFilled"`
}

// ToDeclarationPointResponse converts a models.DeclarationPoint to its DTO
func ToDeclarationPointResponse(p *models.DeclarationPoint) DeclarationPointResponse {
	return DeclarationPointResponse{
		DeclarationPointID: p.DeclarationPointID,
		Name:               p.Name,
		Description:        p.Description,
		IsIncome:           p.IsIncome,
		IsAutoFilled:       p.IsAutoFilled,
	}
}

// ToListDeclarationPointResponse converts a slice of points to DTOs
func ToListDeclarationPointResponse(points []models.DeclarationPoint) []DeclarationPointResponse {
	res := make([]DeclarationPointResponse, len(points))
	for i := range points {
		res[i] = ToDeclarationPointResponse(&points[i])
	}
	return res
}
