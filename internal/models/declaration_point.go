package models

// DeclarationPoint is a tax-category bucket a transaction can be assigned to.
// Points flagged IsAutoFilled are pre-filled by the tax authority and are
// excluded from rule targeting.
type DeclarationPoint struct {
	DeclarationPointID string `json:"declarationPointID"`
	Name               string `json:"name"` // Unique
	Description        string `json:"description"`
	IsIncome           bool   `json:"isIncome"`
	IsAutoFilled       bool   `json:"isAutoFilled"`
	AuditFields
}
