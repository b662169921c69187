package channel

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/retail-ars/internal/ingest"
)

func inventorySchema() Schema {
	return Schema{Columns: map[string]SourceColumns{
		FieldChannelSKU: {"ASIN"},
		FieldSKUName:    {"Product Name"},
		FieldQuantity:   {"Sellable Qty", "Unsellable Qty"},
		FieldLocation:   {"FC"},
	}}
}

func TestMapTableSumsQuantityColumns(t *testing.T) {
	table := &ingest.Table{
		Name:   "amazon_inventory.csv",
		Header: []string{"ASIN", "Product Name", "Sellable Qty", "Unsellable Qty", "FC"},
		Rows: [][]string{
			{"B001", "Soap", "10", "2", "DEL1"},
			{"B002", "Shampoo", "junk", "3", "DEL1"},
			{"B003", "Conditioner", "", "", "BOM2"},
		},
	}

	records, err := MapTable("amazon", inventorySchema(), table)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, 12.0, records[0].Quantity)
	assert.Equal(t, "amazon", records[0].Channel)
	assert.Equal(t, "DEL1", records[0].Location)

	// Non-numeric cells coerce to 0 and never go negative.
	assert.Equal(t, 3.0, records[1].Quantity)
	assert.Equal(t, 0.0, records[2].Quantity)
}

func TestMapTableMissingColumnExcludesOnlyThatField(t *testing.T) {
	table := &ingest.Table{
		Name:   "amazon_inventory.csv",
		Header: []string{"ASIN", "Sellable Qty"},
		Rows:   [][]string{{"B001", "7"}},
	}

	records, err := MapTable("amazon", inventorySchema(), table)
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "B001", records[0].ChannelSKU)
	assert.Equal(t, 7.0, records[0].Quantity)
	assert.Empty(t, records[0].SKUName)
	assert.Empty(t, records[0].Location)
}

func TestMapTableNoMappedColumns(t *testing.T) {
	table := &ingest.Table{
		Name:   "mystery.csv",
		Header: []string{"Foo", "Bar"},
		Rows:   [][]string{{"1", "2"}},
	}

	_, err := MapTable("amazon", inventorySchema(), table)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoMappedColumns))
}

func TestMapTableUnitPriceDerivesValue(t *testing.T) {
	schema := Schema{Columns: map[string]SourceColumns{
		FieldChannelSKU: {"Article Code"},
		FieldQuantity:   {"Sold Qty"},
		FieldUnitPrice:  {"MRP"},
	}}
	table := &ingest.Table{
		Name:   "tata_sales.csv",
		Header: []string{"Article Code", "Sold Qty", "MRP"},
		Rows:   [][]string{{"T100", "4", "250"}},
	}

	records, err := MapTable("tata", schema, table)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 4.0, records[0].Quantity)
	assert.Equal(t, 1000.0, records[0].Value)
}

func TestMapTableSkipsRowsWithoutSKU(t *testing.T) {
	table := &ingest.Table{
		Name:   "amazon_inventory.csv",
		Header: []string{"ASIN", "Sellable Qty"},
		Rows: [][]string{
			{"", "5"},
			{"B001", "5"},
		},
	}

	records, err := MapTable("amazon", inventorySchema(), table)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "B001", records[0].ChannelSKU)
}
