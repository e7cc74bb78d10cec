package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"dental-shop/internal/models"
	"dental-shop/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() []report.OrderView {
	return []report.OrderView{
		{
			OrderNumber:   "ORD-1001",
			CustomerEmail: "clinic@example.com",
			Status:        models.OrderStatusShipped,
			Total:         129.5,
			ItemCount:     4,
			PaymentMethod: "card",
			CreatedAt:     time.Date(2026, time.March, 1, 14, 5, 0, 0, time.UTC),
		},
		{
			OrderNumber:   "ORD-1002",
			CustomerEmail: "smile, dental@example.com",
			Status:        models.OrderStatusPending,
			Total:         10,
			PaymentMethod: "bank_transfer",
			CreatedAt:     time.Date(2026, time.March, 2, 8, 0, 0, 0, time.UTC),
		},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat(" JSON ")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xlsx")
	assert.True(t, errors.Is(err, ErrUnknownFormat))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sample()))

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, Columns, records[0])
	assert.Equal(t, []string{"ORD-1001", "clinic@example.com", "SHIPPED", "129.50", "4", "2026-03-01 14:05:00", "card"}, records[1])
	assert.Equal(t, "smile, dental@example.com", records[2][1])
	assert.Equal(t, "0", records[2][4])
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	assert.Equal(t, strings.Join(Columns, ",")+"\n", buf.String())
}

func TestWriteJSONKeepsColumnOrder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, sample()[:1]))

	assert.Equal(t,
		`[{"Order Number":"ORD-1001","Customer Email":"clinic@example.com","Status":"SHIPPED","Total":"129.50","Items":"4","Date":"2026-03-01 14:05:00","Payment Method":"card"}]`,
		buf.String())
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil))

	assert.Equal(t, "[]", buf.String())
}

func TestFilename(t *testing.T) {
	name := Filename("orders-30d", FormatCSV, time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, "orders-30d-2026-03-15.csv", name)
}
