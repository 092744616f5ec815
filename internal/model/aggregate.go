package model

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Source tables written by the aggregation job.
const (
	TableProductExposure    = "agg_encours_par_produit"
	TableBranchDistribution = "agg_repartition_agences"
	TableManagerPerformance = "agg_perf_gestionnaire"
	TableTopDepositors      = "agg_top_deposants"
)

// ProductExposure is the outstanding balance of one product.
type ProductExposure struct {
	ProductName      string              `json:"product_name"`
	AvailableBalance decimal.NullDecimal `json:"available_balance"`
}

// BranchDistribution is the balance and account count of one branch.
type BranchDistribution struct {
	BranchName   string              `json:"branch_name"`
	Amount       decimal.NullDecimal `json:"amount"`
	AccountCount sql.NullInt64       `json:"account_count"`
}

// ManagerPerformance is the balance and account count of one account manager.
// The source table is already limited to the top 10 managers.
type ManagerPerformance struct {
	Manager      string              `json:"manager"`
	Amount       decimal.NullDecimal `json:"amount"`
	AccountCount sql.NullInt64       `json:"account_count"`
}

// TopDepositor is one of the ten largest individual balances.
type TopDepositor struct {
	Depositor     string              `json:"depositor"`
	TotalExposure decimal.NullDecimal `json:"total_exposure"`
}

// FieldIssue records a numeric cell that could not be read as a number.
// The row is kept with an invalid value; only that field is affected.
type FieldIssue struct {
	Table  string `json:"table"`
	Row    int    `json:"row"`
	Column string `json:"column"`
	Err    error  `json:"-"`
}

func (i FieldIssue) Error() string { return i.Unwrap().Error() }

// Unwrap exposes the issue as a FORMAT_ERROR.
func (i FieldIssue) Unwrap() error {
	return NewFormatError(i.Table, i.Row, i.Column, i.Err)
}

// Dataset holds the four result sets. It is built once by the gateway and
// never mutated afterwards.
type Dataset struct {
	Products      []ProductExposure    `json:"products"`
	Branches      []BranchDistribution `json:"branches"`
	Managers      []ManagerPerformance `json:"managers"`
	TopDepositors []TopDepositor       `json:"top_depositors"`
	Issues        []FieldIssue         `json:"-"`
	LoadedAt      time.Time            `json:"loaded_at"`
}

// IssuesFor returns the field issues reported for one table.
func (d *Dataset) IssuesFor(table string) []FieldIssue {
	var out []FieldIssue
	for _, is := range d.Issues {
		if is.Table == table {
			out = append(out, is)
		}
	}
	return out
}
