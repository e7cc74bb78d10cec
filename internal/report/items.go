package report

import (
	"bytes"
	"encoding/json"
	"fmt"

	"dental-shop/internal/models"
)

// ParseItems decodes an order's item payload. Both encodings found in the
// orders table are accepted: a native JSON array and a JSON string whose
// content is the array.
func ParseItems(raw json.RawMessage) ([]models.OrderItem, error) {
	data := bytes.TrimSpace(raw)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}

	if data[0] == '"' {
		var encoded string
		if err := json.Unmarshal(data, &encoded); err != nil {
			return nil, fmt.Errorf("failed to decode item string: %w", err)
		}
		data = bytes.TrimSpace([]byte(encoded))
		if len(data) == 0 {
			return nil, nil
		}
	}

	var items []models.OrderItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode items: %w", err)
	}
	return items, nil
}

// ItemQuantity sums the quantities of an item list
func ItemQuantity(items []models.OrderItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}
