package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/eventpos-backend/pkg/errors"
	"github.com/angelmondragon/eventpos-backend/pkg/pagination"
)

type lineBody struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"min=1"`
}

type cartBody struct {
	Lines         []lineBody `json:"lines" validate:"required,min=1,dive"`
	Currency      string     `json:"currency" validate:"omitempty,currency"`
	PaymentMethod string     `json:"payment_method" validate:"required,payment_method"`
	Email         string     `json:"email" validate:"omitempty,email"`
}

func decode(t *testing.T, body string) (cartBody, error) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	var dest cartBody
	return dest, DecodeJSONBody(req, &dest)
}

func TestDecodeJSONBodyAcceptsValidPayload(t *testing.T) {
	got, err := decode(t, `{"lines":[{"product_id":"`+uuid.NewString()+`","quantity":2}],"currency":"eur","payment_method":"card"}`)
	require.NoError(t, err)
	assert.Len(t, got.Lines, 1)
}

func TestDecodeJSONBodyReportsNestedFields(t *testing.T) {
	_, err := decode(t, `{"lines":[{"product_id":"nope","quantity":0}],"currency":"EURO","payment_method":"cheque","email":"x"}`)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "must be at least 1", details["lines[0].quantity"])
	assert.Contains(t, details, "lines[0].product_id")
	assert.Equal(t, "must be a three-letter currency code", details["currency"])
	assert.Equal(t, "must be one of cash, card, transfer", details["payment_method"])
	assert.Equal(t, "must be a valid email", details["email"])
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	_, err := decode(t, `{"lines":[],"bogus":true}`)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestParsePage(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=20", nil)
	got, err := ParsePage(req)
	require.NoError(t, err)
	assert.Equal(t, 20, got.Limit)
	assert.Empty(t, got.Cursor)

	got, err = ParsePage(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, pagination.DefaultLimit, got.Limit)

	for _, query := range []string{"limit=x", "limit=0", "limit=1000", "cursor=%25%25"} {
		_, err = ParsePage(httptest.NewRequest(http.MethodGet, "/?"+query, nil))
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), query)
	}

	cursor := pagination.EncodeCursor(pagination.Cursor{CreatedAt: time.Now(), ID: uuid.New()})
	got, err = ParsePage(httptest.NewRequest(http.MethodGet, "/?cursor="+cursor, nil))
	require.NoError(t, err)
	assert.Equal(t, cursor, got.Cursor)
}

func TestParseUUIDParam(t *testing.T) {
	id := uuid.New()
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("eventId", id.String())
	rctx.URLParams.Add("txId", "nope")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	got, err := ParseUUIDParam(req, "eventId")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = ParseUUIDParam(req, "txId")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "abc", SanitizeString("  abcdef ", 3))
	assert.Equal(t, "Summer fair", SanitizeString(" Summer \t  fair ", 0))
	assert.Equal(t, "Café", SanitizeString("Café del mar", 4))
}
