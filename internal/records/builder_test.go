package records_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/hscode-reconciler/internal/grid"
	"github.com/ginjaninja78/hscode-reconciler/internal/records"
)

func TestBuildInvoiceRecords(t *testing.T) {
	// Columns: A=no, B=hs primary, C=hs secondary, D=amount1, E=amount2
	g := grid.Grid{
		{"No", "HS", "HS alt", "Amount", "Extra"},
		{},
		{"1", "1001", "", "100", ""},
		{"2", "", "2002", "40", "10"},
		{"3", "3003", "", "0", ""},      // zero amount, dropped
		{"4", "", "", "25", ""},         // no key, dropped
		{"5", " 1001 ", "", "abc", "5"}, // unparseable amount counts as 0
		{"6", "4004", "", "-10", ""},    // negative amount, dropped
	}

	cols := records.InvoiceColumns{Key: []int{1, 2}, Amount: []int{3, 4}}
	got := records.BuildInvoiceRecords(g, cols)

	require.Len(t, got, 3)
	assert.Equal(t, "1001", got[0].Key)
	assert.InDelta(t, 100, got[0].Amount, 1e-9)
	assert.Equal(t, 3, got[0].SourceRow)

	assert.Equal(t, "2002", got[1].Key)
	assert.InDelta(t, 50, got[1].Amount, 1e-9)

	assert.Equal(t, "1001", got[2].Key)
	assert.InDelta(t, 5, got[2].Amount, 1e-9)
	assert.Equal(t, 7, got[2].SourceRow)
}

func TestBuildInvoiceRecordsTooSmall(t *testing.T) {
	cols := records.InvoiceColumns{Key: []int{0}, Amount: []int{1}}
	assert.Empty(t, records.BuildInvoiceRecords(nil, cols))
	assert.Empty(t, records.BuildInvoiceRecords(grid.Grid{{"HS", "Amount"}}, cols))
}

func TestBuildPackingListRecords(t *testing.T) {
	// Columns: A=cartons, B=net, C=gross
	g := grid.Grid{
		{"Cartons", "Net", "Gross"},
		{"12+8", "100", "110"},
		{"", "", ""},
		{"0", "0", "0"},
		{"", "", "5 kg"},
		{"abc", "n/a", ""},
	}

	cols := records.PackingListColumns{Cartons: []int{0}, NetWeight: []int{1}, GrossWeight: []int{2}}
	got := records.BuildPackingListRecords(g, cols)

	require.Len(t, got, 2)
	assert.InDelta(t, 20, got[0].Cartons, 1e-9)
	assert.InDelta(t, 100, got[0].NetWeight, 1e-9)
	assert.InDelta(t, 110, got[0].GrossWeight, 1e-9)
	assert.Equal(t, 2, got[0].SourceRow)

	assert.InDelta(t, 0, got[1].Cartons, 1e-9)
	assert.InDelta(t, 5, got[1].GrossWeight, 1e-9)
	assert.Equal(t, 5, got[1].SourceRow)
}

func TestBuildPackingListRecordsSumsColumns(t *testing.T) {
	g := grid.Grid{
		{"C1", "C2"},
		{"3", "4, 1"},
	}

	cols := records.PackingListColumns{Cartons: []int{0, 1}}
	got := records.BuildPackingListRecords(g, cols)

	require.Len(t, got, 1)
	assert.InDelta(t, 8, got[0].Cartons, 1e-9)
}

func TestBuildInvoiceRecordsOverflowingAmount(t *testing.T) {
	g := grid.Grid{
		{"HS Code", "Amount 1", "Amount 2"},
		{"1001", "1e308", "1e308"},
	}

	out := records.BuildInvoiceRecords(g, records.InvoiceColumns{Key: []int{0}, Amount: []int{1, 2}})
	require.Len(t, out, 1)
	assert.Equal(t, math.MaxFloat64, out[0].Amount)
	assert.False(t, math.IsInf(out[0].Amount, 0))
}
