package models

import (
	"time"

	"github.com/guregu/null/v6"
)

type Company struct {
	Symbol      string    `db:"symbol" json:"symbol"`
	DisplayName string    `db:"display_name" json:"display_name"`
	LastUpdated null.Time `db:"last_updated" json:"last_updated"`
}

// RefreshSummary reports the outcome of one successful refresh call.
type RefreshSummary struct {
	Symbol      string    `json:"symbol"`
	RowsFetched int       `json:"rows_fetched"`
	RowsCleaned int       `json:"rows_cleaned"`
	RowsWritten int64     `json:"rows_written"`
	LastUpdated time.Time `json:"last_updated"`
}
