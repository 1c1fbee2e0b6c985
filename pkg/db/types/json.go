package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// PriceTable maps a quantity to the fixed total charged for exactly that many units.
// Stored as a JSON object keyed by the quantity ({"2":"50","3":"70"}).
type PriceTable map[int]decimal.Decimal

func (p *PriceTable) Scan(src any) error {
	raw, err := bytesFrom(src)
	if err != nil {
		return fmt.Errorf("PriceTable: %w", err)
	}
	out := PriceTable{}
	if len(raw) == 0 {
		*p = out
		return nil
	}
	var keyed map[string]decimal.Decimal
	if err := json.Unmarshal(raw, &keyed); err != nil {
		return fmt.Errorf("PriceTable: decode: %w", err)
	}
	for k, v := range keyed {
		qty, err := strconv.Atoi(k)
		if err != nil {
			return fmt.Errorf("PriceTable: quantity %q: %w", k, err)
		}
		out[qty] = v
	}
	*p = out
	return nil
}

func (p PriceTable) Value() (driver.Value, error) {
	keyed := make(map[string]decimal.Decimal, len(p))
	for qty, price := range p {
		keyed[strconv.Itoa(qty)] = price
	}
	encoded, err := json.Marshal(keyed)
	if err != nil {
		return nil, err
	}
	return string(encoded), nil
}

// StringList stores an ordered list of labels as a JSON array.
type StringList []string

func (s *StringList) Scan(src any) error {
	raw, err := bytesFrom(src)
	if err != nil {
		return fmt.Errorf("StringList: %w", err)
	}
	if len(raw) == 0 {
		*s = StringList{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("StringList: decode: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	*s = out
	return nil
}

func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	encoded, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(encoded), nil
}

func bytesFrom(src any) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported Scan type %T", src)
	}
}
