package dbtypes

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// UUIDArray stores an ordered id list (promotable type scope, combo members)
// as a postgres array literal {id,id}. sqlite keeps the same text verbatim.
type UUIDArray []uuid.UUID

func (a *UUIDArray) Scan(src any) error {
	var text string
	switch v := src.(type) {
	case nil:
		*a = UUIDArray{}
		return nil
	case string:
		text = v
	case []byte:
		text = string(v)
	default:
		return fmt.Errorf("UUIDArray: unsupported Scan type %T", src)
	}

	body := strings.TrimSpace(text)
	if !strings.HasPrefix(body, "{") || !strings.HasSuffix(body, "}") {
		return fmt.Errorf("UUIDArray: %q is not an array literal", text)
	}
	elems := strings.FieldsFunc(body[1:len(body)-1], func(r rune) bool { return r == ',' })

	out := make(UUIDArray, 0, len(elems))
	for _, elem := range elems {
		elem = strings.Trim(strings.TrimSpace(elem), `"`)
		id, err := uuid.Parse(elem)
		if err != nil {
			return fmt.Errorf("UUIDArray: parse %q: %w", elem, err)
		}
		out = append(out, id)
	}
	*a = out
	return nil
}

func (a UUIDArray) Value() (driver.Value, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, id := range a {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(id.String())
	}
	b.WriteByte('}')
	return b.String(), nil
}

// Contains reports whether id is part of the list.
func (a UUIDArray) Contains(id uuid.UUID) bool {
	for _, candidate := range a {
		if candidate == id {
			return true
		}
	}
	return false
}

// Unique drops repeated ids, keeping the first occurrence of each.
func Unique(ids []uuid.UUID) UUIDArray {
	out := make(UUIDArray, 0, len(ids))
	for _, id := range ids {
		if !out.Contains(id) {
			out = append(out, id)
		}
	}
	return out
}
