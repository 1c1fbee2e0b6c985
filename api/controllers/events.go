package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/eventpos-backend/api/responses"
	"github.com/angelmondragon/eventpos-backend/api/validators"
	"github.com/angelmondragon/eventpos-backend/internal/events"
	"github.com/angelmondragon/eventpos-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/eventpos-backend/pkg/errors"
	"github.com/angelmondragon/eventpos-backend/pkg/logger"
)

type createEventBody struct {
	Name              string      `json:"name" validate:"required,max=120"`
	MainCurrency      string      `json:"main_currency" validate:"required,currency"`
	RoundUp           bool        `json:"round_up"`
	PromotableTypeIDs []uuid.UUID `json:"promotable_type_ids"`
}

type updateEventBody struct {
	Name              *string      `json:"name" validate:"omitempty,max=120"`
	MainCurrency      *string      `json:"main_currency" validate:"omitempty,currency"`
	RoundUp           *bool        `json:"round_up"`
	PromotableTypeIDs *[]uuid.UUID `json:"promotable_type_ids"`
}

func ListEvents(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func CreateEvent(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createEventBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		code, _ := enums.ParseCurrency(body.MainCurrency)
		event, err := svc.Create(r.Context(), events.CreateEventInput{
			Name:              validators.SanitizeString(body.Name, 120),
			MainCurrency:      code,
			RoundUp:           body.RoundUp,
			PromotableTypeIDs: body.PromotableTypeIDs,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, event)
	}
}

func GetEvent(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, paramEventID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		event, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, event)
	}
}

func UpdateEvent(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, paramEventID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body updateEventBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := events.UpdateEventInput{
			Name:              body.Name,
			RoundUp:           body.RoundUp,
			PromotableTypeIDs: body.PromotableTypeIDs,
		}
		if body.MainCurrency != nil {
			code, err := enums.ParseCurrency(*body.MainCurrency)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Validation("main_currency", err.Error()))
				return
			}
			input.MainCurrency = &code
		}

		event, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, event)
	}
}

// SetEventLock locks or unlocks the event's sales history.
func SetEventLock(svc events.Service, locked bool, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, paramEventID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		action := svc.Unlock
		if locked {
			action = svc.Lock
		}
		event, err := action(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		logg.Info(logg.WithField(logg.WithEventID(r.Context(), id), "locked", locked), "event lock changed")
		responses.WriteSuccess(w, event)
	}
}
