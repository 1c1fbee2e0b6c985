package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/eventpos-backend/api/validators"
)

const (
	paramEventID   = "eventId"
	paramTypeID    = "typeId"
	paramProductID = "productId"
	paramPromoID   = "promoId"
	paramTxID      = "txId"
)

func eventAndID(r *http.Request, name string) (uuid.UUID, uuid.UUID, error) {
	eventID, err := validators.ParseUUIDParam(r, paramEventID)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	id, err := validators.ParseUUIDParam(r, name)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return eventID, id, nil
}
