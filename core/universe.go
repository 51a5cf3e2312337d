package core

import (
	"context"
	"fmt"

	m "stockintel/models"
)

// Universe is the fixed set of NSE symbols the service tracks. Refreshing a
// symbol outside this list still works, it just gets its ticker as the
// display name.
var Universe = []m.Company{
	{Symbol: "RELIANCE.NS", DisplayName: "Reliance Industries"},
	{Symbol: "TCS.NS", DisplayName: "Tata Consultancy Services"},
	{Symbol: "HDFCBANK.NS", DisplayName: "HDFC Bank"},
	{Symbol: "INFY.NS", DisplayName: "Infosys"},
	{Symbol: "ICICIBANK.NS", DisplayName: "ICICI Bank"},
	{Symbol: "HINDUNILVR.NS", DisplayName: "Hindustan Unilever"},
	{Symbol: "ITC.NS", DisplayName: "ITC"},
	{Symbol: "SBIN.NS", DisplayName: "State Bank of India"},
	{Symbol: "BHARTIARTL.NS", DisplayName: "Bharti Airtel"},
	{Symbol: "KOTAKBANK.NS", DisplayName: "Kotak Mahindra Bank"},
	{Symbol: "LT.NS", DisplayName: "Larsen & Toubro"},
	{Symbol: "AXISBANK.NS", DisplayName: "Axis Bank"},
	{Symbol: "WIPRO.NS", DisplayName: "Wipro"},
	{Symbol: "MARUTI.NS", DisplayName: "Maruti Suzuki"},
	{Symbol: "TITAN.NS", DisplayName: "Titan Company"},
}

// SeedUniverse makes sure every tracked symbol has a companies row. Existing
// rows are left alone.
func (sc *ServiceContext) SeedUniverse(ctx context.Context) error {
	for _, company := range Universe {
		if err := sc.PostgresConnection.InsertCompany(ctx, &company, nil); err != nil {
			return fmt.Errorf("error seeding universe: %w", err)
		}
	}
	return nil
}
