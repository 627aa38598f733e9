package rel

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func diamonds() *Relation {
	return Table("diamonds", "carat", "cut", "clarity", "color", "price")
}

func TestTableSchema(t *testing.T) {
	r := diamonds()
	assert.Equal(t, []string{"carat", "cut", "clarity", "color", "price"}, r.Schema())
}

func TestOperatorsDoNotMutateSource(t *testing.T) {
	r := diamonds()
	before := r.Schema()

	sel, err := r.Select("carat", "price")
	require.NoError(t, err)
	_, err = r.Mutate(As("price2", Col("price").Mul(Int(2))))
	require.NoError(t, err)
	_, err = r.Rename(To("weight", "carat"))
	require.NoError(t, err)

	assert.Equal(t, before, r.Schema(), "source schema must be unchanged")
	assert.Equal(t, []string{"carat", "price"}, sel.Schema())
}

func TestSelectUnknownColumn(t *testing.T) {
	_, err := diamonds().Select("carat", "weight")
	require.Error(t, err)

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "weight", schemaErr.Column)
	assert.Equal(t, "select", schemaErr.Op)
	assert.Contains(t, err.Error(), "weight")
}

func TestSelectDuplicateColumn(t *testing.T) {
	_, err := diamonds().Select("carat", "carat")
	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Contains(t, schemaErr.Error(), "selected twice")
}

func TestMutateSchemaAndShadowing(t *testing.T) {
	r, err := diamonds().Mutate(
		As("price2", Col("price").Mul(Int(2))),
		As("price", Col("price2").Add(Int(1))), // shadows price in place
	)
	require.NoError(t, err)

	// price keeps its original slot, price2 is appended
	assert.Equal(t, []string{"carat", "cut", "clarity", "color", "price", "price2"}, r.Schema())
}

func TestMutateSeesEarlierDefinitionsInSameCall(t *testing.T) {
	r, err := diamonds().Mutate(
		As("a", Col("carat").Add(Int(1))),
		As("b", Col("a").Add(Int(1))),
	)
	require.NoError(t, err)
	assert.Contains(t, r.Schema(), "b")
}

func TestMutateUnknownReference(t *testing.T) {
	_, err := diamonds().Mutate(As("x", Col("missing").Add(Int(1))))
	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "missing", schemaErr.Column)
	assert.Equal(t, "mutate", schemaErr.Op)
}

func TestMutateRejectsAggregate(t *testing.T) {
	_, err := diamonds().Mutate(As("total", Sum(Col("price"))))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "aggregate")
	assert.Contains(t, err.Error(), "summarize")
}

func TestFilterRejectsAggregate(t *testing.T) {
	_, err := diamonds().Filter(Sum(Col("price")).Gt(Int(10)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "aggregate")

	// Aggregates nested anywhere in the predicate are rejected, not just at
	// the top level.
	_, err = diamonds().Filter(Col("carat").Gt(Int(1)).And(Count().Gt(Int(5))))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "aggregate")
}

func TestRenameHidesOldName(t *testing.T) {
	r, err := diamonds().Rename(To("weight", "carat"))
	require.NoError(t, err)
	assert.Equal(t, []string{"weight", "cut", "clarity", "color", "price"}, r.Schema())

	_, err = r.Filter(Col("carat").Gt(Int(1)))
	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "carat", schemaErr.Column)
}

func TestRenameCollision(t *testing.T) {
	_, err := diamonds().Rename(To("price", "carat"))
	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Contains(t, schemaErr.Error(), "collides")
}

func TestRelocateMovesColumnsToFront(t *testing.T) {
	r, err := diamonds().Relocate("price", "cut")
	require.NoError(t, err)
	assert.Equal(t, []string{"price", "cut", "carat", "clarity", "color"}, r.Schema())
}

func TestGroupBySummarizeSchema(t *testing.T) {
	g, err := diamonds().GroupBy("cut")
	require.NoError(t, err)
	assert.True(t, g.Grouped())

	s, err := g.Summarize(
		As("n", Count()),
		As("avg_price", Mean(Col("price"))),
	)
	require.NoError(t, err)
	assert.False(t, s.Grouped())
	assert.Equal(t, []string{"cut", "n", "avg_price"}, s.Schema())
}

func TestSummarizeWithoutGroupBy(t *testing.T) {
	s, err := diamonds().Summarize(As("n", Count()))
	require.NoError(t, err)
	assert.Equal(t, []string{"n"}, s.Schema())
}

func TestGroupedRelationRejectsOtherOperators(t *testing.T) {
	g, err := diamonds().GroupBy("cut")
	require.NoError(t, err)

	_, err = g.Select("cut")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pending group_by")

	_, err = g.Filter(Col("price").Gt(Int(1)))
	require.Error(t, err)
}

func TestGroupByReplacesPendingKeys(t *testing.T) {
	g, err := diamonds().GroupBy("cut")
	require.NoError(t, err)
	g2, err := g.GroupBy("color")
	require.NoError(t, err)

	s, err := g2.Summarize(As("n", Count()))
	require.NoError(t, err)
	assert.Equal(t, []string{"color", "n"}, s.Schema())
}

func TestArrangeUnknownColumn(t *testing.T) {
	_, err := diamonds().Arrange(Desc("weight"))
	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "arrange", schemaErr.Op)
}

func TestJoinSchemas(t *testing.T) {
	orders := Table("orders", "order_id", "user_id", "amount")
	users := Table("users", "user_id", "name")

	tests := []struct {
		name string
		join func() (*Relation, error)
		want []string
	}{
		{
			name: "inner keeps both sides minus duplicate key",
			join: func() (*Relation, error) { return orders.InnerJoin(users, "user_id") },
			want: []string{"order_id", "user_id", "amount", "name"},
		},
		{
			name: "left keeps both sides",
			join: func() (*Relation, error) { return orders.LeftJoin(users, "user_id") },
			want: []string{"order_id", "user_id", "amount", "name"},
		},
		{
			name: "semi keeps left schema only",
			join: func() (*Relation, error) { return orders.SemiJoin(users, "user_id") },
			want: []string{"order_id", "user_id", "amount"},
		},
		{
			name: "anti keeps left schema only",
			join: func() (*Relation, error) { return orders.AntiJoin(users, "user_id") },
			want: []string{"order_id", "user_id", "amount"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := tt.join()
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.Schema())
		})
	}
}

func TestJoinAmbiguousColumn(t *testing.T) {
	left := Table("a", "id", "value")
	right := Table("b", "id", "value")

	_, err := left.InnerJoin(right, "id")
	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "value", schemaErr.Column)
}

func TestJoinUnknownKey(t *testing.T) {
	orders := Table("orders", "order_id", "user_id")
	users := Table("users", "user_id", "name")

	_, err := orders.InnerJoin(users, "order_id")
	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr), "key missing on right side")
}

func TestExprColumns(t *testing.T) {
	e := Col("a").Add(Col("b")).Gt(Col("a").Mul(Int(2)))
	assert.Equal(t, []string{"a", "b"}, e.Columns())
}

func TestContainsAggregate(t *testing.T) {
	assert.True(t, Mean(Col("x")).Add(Int(1)).ContainsAggregate())
	assert.False(t, Col("x").Add(Int(1)).ContainsAggregate())
}
