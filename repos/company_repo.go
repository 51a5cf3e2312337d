package repos

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	m "stockintel/models"
	q "stockintel/queries"
)

func (pg *Postgres) GetAllCompanies(ctx context.Context) ([]*m.Company, error) {
	res, err := Query[m.Company](ctx, pg, q.Get(q.QueryHelper.Select.AllCompanies), pgx.NamedArgs{})
	if err != nil {
		return nil, fmt.Errorf("unable to query companies: %w", err)
	}
	return res, nil
}

// GetCompanyBySymbol returns nil without error when the symbol is unknown.
func (pg *Postgres) GetCompanyBySymbol(ctx context.Context, symbol string) (*m.Company, error) {
	args := pgx.NamedArgs{
		"symbol": symbol,
	}

	res, err := QuerySingle[m.Company](ctx, pg, q.Get(q.QueryHelper.Select.CompanyBySymbol), args)
	if err != nil {
		return nil, fmt.Errorf("unable to query company by symbol (%s): %w", symbol, err)
	}
	return res, nil
}

// InsertCompany adds a company row, leaving existing rows untouched so a
// re-seed never clobbers last_updated.
func (pg *Postgres) InsertCompany(ctx context.Context, company *m.Company, tx *pgx.Tx) (err error) {
	args := pgx.NamedArgs{
		"symbol":       company.Symbol,
		"display_name": company.DisplayName,
	}

	query := q.Get(q.QueryHelper.Insert.Company)
	if tx == nil {
		_, err = pg.db.Exec(ctx, query, args)
	} else {
		_, err = (*tx).Exec(ctx, query, args)
	}

	if err != nil {
		return fmt.Errorf("error inserting company %s: %w", company.Symbol, err)
	}
	return nil
}

func (pg *Postgres) UpdateLastUpdated(ctx context.Context, symbol string, lastUpdated time.Time, tx *pgx.Tx) (err error) {
	args := pgx.NamedArgs{
		"last_updated": lastUpdated,
		"symbol":       symbol,
	}

	query := q.Get(q.QueryHelper.Update.LastUpdated)
	if tx == nil {
		_, err = pg.db.Exec(ctx, query, args)
	} else {
		_, err = (*tx).Exec(ctx, query, args)
	}

	return
}
