package dialect

// builtin.go - dialect definitions for the supported backends.

func init() {
	Register(DuckDB)
	Register(Postgres)
	Register(SQLite)
}

// reservedWords is the shared keyword list that forces identifier quoting.
// It deliberately covers only the SELECT-statement surface this library emits.
var reservedWords = []string{
	"all", "and", "anti", "as", "asc", "between", "by", "case", "cast",
	"desc", "distinct", "else", "end", "except", "exists", "from", "full",
	"group", "having", "in", "inner", "intersect", "is", "join", "left",
	"like", "limit", "not", "null", "offset", "on", "or", "order", "outer",
	"right", "select", "semi", "table", "then", "union", "using", "when",
	"where",
}

func standardFunctions() map[string]Function {
	return map[string]Function{
		"count":      {SQLName: "COUNT", Kind: FuncAggregate},
		"sum":        {SQLName: "SUM", Kind: FuncAggregate},
		"mean":       {SQLName: "AVG", Kind: FuncAggregate},
		"min":        {SQLName: "MIN", Kind: FuncAggregate},
		"max":        {SQLName: "MAX", Kind: FuncAggregate},
		"n_distinct": {SQLName: "COUNT", Kind: FuncAggregate, Prefix: "DISTINCT"},

		"abs":      {SQLName: "ABS"},
		"round":    {SQLName: "ROUND"},
		"lower":    {SQLName: "LOWER"},
		"upper":    {SQLName: "UPPER"},
		"length":   {SQLName: "LENGTH"},
		"coalesce": {SQLName: "COALESCE"},
		"substr":   {SQLName: "SUBSTR"},
	}
}

func withStandard(extra map[string]Function) map[string]Function {
	fns := standardFunctions()
	for k, v := range extra {
		fns[k] = v
	}
	return fns
}

// DuckDB is the primary target dialect.
var DuckDB = &Dialect{
	Name:                 "duckdb",
	IdentQuote:           `"`,
	StringQuote:          "'",
	DefaultSchema:        "main",
	Placeholder:          PlaceholderQuestion,
	SupportsFullJoin:     true,
	SupportsSemiAntiJoin: true,
	SupportsHavingAlias:  true,
	Functions: withStandard(map[string]Function{
		"stddev": {SQLName: "STDDEV_SAMP", Kind: FuncAggregate},
		"median": {SQLName: "MEDIAN", Kind: FuncAggregate},
	}),
	Reserved: reservedWords,
}

// Postgres targets PostgreSQL through the pgx stdlib driver.
var Postgres = &Dialect{
	Name:             "postgres",
	IdentQuote:       `"`,
	StringQuote:      "'",
	DefaultSchema:    "public",
	Placeholder:      PlaceholderDollar,
	SupportsFullJoin: true,
	Functions: withStandard(map[string]Function{
		"stddev": {SQLName: "STDDEV_SAMP", Kind: FuncAggregate},
	}),
	Reserved: reservedWords,
}

// SQLite targets SQLite through the modernc driver. SQLite has no builtin
// stddev or median, so those logical names are absent from its function map.
var SQLite = &Dialect{
	Name:                "sqlite",
	IdentQuote:          `"`,
	StringQuote:         "'",
	DefaultSchema:       "main",
	Placeholder:         PlaceholderQuestion,
	SupportsFullJoin:    true,
	SupportsHavingAlias: true,
	Functions:           standardFunctions(),
	Reserved:            reservedWords,
}
