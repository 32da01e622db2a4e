package models

import "github.com/shopspring/decimal"

// PointTotal is one row of a declaration report: all classified transactions
// of one declaration point summed up.
type PointTotal struct {
	PointName        string          `json:"pointName"`
	IsIncome         bool            `json:"isIncome"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	TransactionCount int             `json:"transactionCount"`
}
