package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"dental-shop/internal/report"
)

// ErrUnknownFormat is returned for an unsupported export format
var ErrUnknownFormat = errors.New("unknown export format")

// Format is an export encoding
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Columns is the fixed column order of an order export
var Columns = []string{
	"Order Number",
	"Customer Email",
	"Status",
	"Total",
	"Items",
	"Date",
	"Payment Method",
}

const dateLayout = "2006-01-02 15:04:05"

// ParseFormat validates a format name; empty selects CSV
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	if f == FormatJSON {
		return "application/json"
	}
	return "text/csv"
}

// Filename builds the attachment name of an export
func Filename(prefix string, f Format, now time.Time) string {
	return fmt.Sprintf("%s-%s.%s", prefix, now.Format("2006-01-02"), f)
}

// Row renders one order as export cells, in Columns order
func Row(o report.OrderView) []string {
	return []string{
		o.OrderNumber,
		o.CustomerEmail,
		string(o.Status),
		strconv.FormatFloat(o.Total, 'f', 2, 64),
		strconv.Itoa(o.ItemCount),
		o.CreatedAt.UTC().Format(dateLayout),
		o.PaymentMethod,
	}
}

// Write encodes orders to w in the given format
func Write(w io.Writer, f Format, orders []report.OrderView) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, orders)
	case FormatJSON:
		return WriteJSON(w, orders)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// WriteCSV writes a header line followed by one line per order
func WriteCSV(w io.Writer, orders []report.OrderView) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, o := range orders {
		if err := cw.Write(Row(o)); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes an array of objects keyed by column name. Keys keep the
// column order.
func WriteJSON(w io.Writer, orders []report.OrderView) error {
	if _, err := io.WriteString(w, "["); err != nil {
		return err
	}
	for i, o := range orders {
		if i > 0 {
			if _, err := io.WriteString(w, ","); err != nil {
				return err
			}
		}
		if err := writeObject(w, Row(o)); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "]")
	return err
}

func writeObject(w io.Writer, cells []string) error {
	var b strings.Builder
	b.WriteByte('{')
	for i, col := range Columns {
		if i > 0 {
			b.WriteByte(',')
		}
		key, _ := json.Marshal(col)
		val, err := json.Marshal(cells[i])
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", col, err)
		}
		b.Write(key)
		b.WriteByte(':')
		b.Write(val)
	}
	b.WriteByte('}')
	_, err := io.WriteString(w, b.String())
	return err
}
