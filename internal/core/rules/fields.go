package rules

import (
	"strconv"
	"strings"

	"github.com/araratsoft/tax_declaration_app/internal/models"
)

// Subject bundles a transaction with the related records a condition may
// traverse. Relations that were not loaded stay nil and simply resolve to
// "not found".
type Subject struct {
	Txn         *models.Transaction
	Statement   *models.Statement
	Declaration *models.Declaration
}

// ResolveField returns the string form of a named transaction field,
// following double-underscore relationship chains such as
// "statement__declaration__first_name". The traversable relationships are an
// explicit enumerated set; any unknown name or missing link resolves to
// (_, false).
func (s Subject) ResolveField(name string) (string, bool) {
	parts := strings.Split(name, "__")
	if parts[0] == "statement" {
		return s.resolveStatementField(parts[1:])
	}
	if len(parts) != 1 {
		return "", false
	}
	return s.resolveTransactionField(parts[0])
}

func (s Subject) resolveTransactionField(name string) (string, bool) {
	if s.Txn == nil {
		return "", false
	}
	switch name {
	case "description":
		return s.Txn.Description, true
	case "sender":
		return s.Txn.Sender, true
	case "sender_account":
		return s.Txn.SenderAccount, true
	case "amount":
		return s.Txn.Amount.String(), true
	case "currency":
		return s.Txn.Currency, true
	case "transaction_date":
		return s.Txn.TransactionDate.Format("2006-01-02"), true
	case "provision_date":
		if s.Txn.ProvisionDate == nil {
			return "", false
		}
		return s.Txn.ProvisionDate.Format("2006-01-02"), true
	case "is_expense":
		return strconv.FormatBool(s.Txn.IsExpense), true
	case "entity_type":
		return string(s.Txn.EntityType), true
	case "transaction_scope":
		return string(s.Txn.Scope), true
	}
	return "", false
}

func (s Subject) resolveStatementField(parts []string) (string, bool) {
	if s.Statement == nil || len(parts) == 0 {
		return "", false
	}
	if parts[0] == "declaration" {
		return s.resolveDeclarationField(parts[1:])
	}
	if len(parts) != 1 {
		return "", false
	}
	switch parts[0] {
	case "file_name":
		return s.Statement.FileName, true
	case "bank_name":
		return s.Statement.BankName, true
	case "status":
		return s.Statement.Status, true
	}
	return "", false
}

func (s Subject) resolveDeclarationField(parts []string) (string, bool) {
	if s.Declaration == nil || len(parts) != 1 {
		return "", false
	}
	switch parts[0] {
	case "name":
		return s.Declaration.Name, true
	case "first_name":
		return s.Declaration.FirstName, true
	case "last_name":
		return s.Declaration.LastName, true
	case "client_reference":
		return s.Declaration.ClientReference, true
	}
	return "", false
}
