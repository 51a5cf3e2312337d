package queries

import (
	"embed"
	"fmt"
)

//go:embed schema/*.sql select/*.sql insert/*.sql update/*.sql delete/*.sql
var Files embed.FS

// ^^^ the go:embed directive is used to embed the files in the queries package
// meaning on compile time it will convert the files to binary data and embed it in the queries package

type SchemaQueries struct {
	Companies string
	Bars      string
}

type SelectQueries struct {
	AllCompanies     string
	CompanyBySymbol  string
	AllBarsBySymbol  string
	BarsBySymbolDesc string
}

type InsertQueries struct {
	Company   string
	UpsertBar string
}

type UpdateQueries struct {
	LastUpdated string
}

type DeleteQueries struct {
	BarsBySymbol string
}

type QueryHelperStruct struct {
	Schema SchemaQueries
	Select SelectQueries
	Insert InsertQueries
	Update UpdateQueries
	Delete DeleteQueries
}

var QueryHelper = QueryHelperStruct{
	Schema: SchemaQueries{
		Companies: "schema/companies.sql",
		Bars:      "schema/bars.sql",
	},
	Select: SelectQueries{
		AllCompanies:     "select/all_companies.sql",
		CompanyBySymbol:  "select/company_by_symbol.sql",
		AllBarsBySymbol:  "select/all_bars_by_symbol.sql",
		BarsBySymbolDesc: "select/bars_by_symbol_desc.sql",
	},
	Insert: InsertQueries{
		Company:   "insert/company.sql",
		UpsertBar: "insert/upsert_bar.sql",
	},
	Update: UpdateQueries{
		LastUpdated: "update/last_updated.sql",
	},
	Delete: DeleteQueries{
		BarsBySymbol: "delete/bars_by_symbol.sql",
	},
}

func Get(path string) string {
	content, err := Files.ReadFile(path)
	if err != nil {
		panic(fmt.Errorf("error reading query file: %w", err))
	}

	return string(content)
}
