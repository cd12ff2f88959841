package basket

import (
	"encoding/json"
	"fmt"
)

// The guest basket is persisted in the session as a JSON object mapping
// decimal product-id strings to positive integer quantities, e.g.
// {"42": 2, "7": 1}. The codec performs no stock validation; clamping
// belongs to the ledger.

// DecodeGuestBasket parses a guest basket blob. An empty blob decodes to an
// empty mapping. A malformed blob fails with ErrCorruptState; recovery is
// the session layer's call, not the codec's.
func DecodeGuestBasket(blob string) (map[string]int, error) {
	if blob == "" {
		return map[string]int{}, nil
	}
	var m map[string]int
	if err := json.Unmarshal([]byte(blob), &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	if m == nil {
		m = map[string]int{}
	}
	return m, nil
}

// EncodeGuestBasket serializes a guest basket mapping. Entries with a
// non-positive quantity must not be encoded; callers delete the key instead.
func EncodeGuestBasket(m map[string]int) (string, error) {
	for id, qty := range m {
		if qty <= 0 {
			return "", fmt.Errorf("%w: product %s has quantity %d", ErrInvalidQuantity, id, qty)
		}
	}
	if len(m) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("basket: encode guest basket: %w", err)
	}
	return string(b), nil
}
