package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/luminastudio/lumina-backend/api/responses"
	"github.com/luminastudio/lumina-backend/api/validators"
	paymentsvc "github.com/luminastudio/lumina-backend/internal/paymentconfigs"
	"github.com/luminastudio/lumina-backend/pkg/db/models"
	"github.com/luminastudio/lumina-backend/pkg/enums"
	pkgerrors "github.com/luminastudio/lumina-backend/pkg/errors"
	"github.com/luminastudio/lumina-backend/pkg/logger"
)

type paymentConfigRequest struct {
	Kind         string            `json:"kind" validate:"required"`
	Label        string            `json:"label" validate:"required"`
	Instructions map[string]string `json:"instructions,omitempty"`
}

type paymentConfigResponse struct {
	ID           uuid.UUID               `json:"id"`
	Kind         enums.PaymentConfigKind `json:"kind"`
	Label        string                  `json:"label"`
	Instructions map[string]string       `json:"instructions,omitempty"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
}

// CreatePaymentConfig registers a payment preset for the profile.
func CreatePaymentConfig(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment config service unavailable"))
			return
		}

		profileID, err := profileIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload paymentConfigRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kind, err := enums.ParsePaymentConfigKind(strings.TrimSpace(payload.Kind))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid kind"))
			return
		}

		config, err := svc.Create(r.Context(), paymentsvc.CreateInput{
			ProfileID:    profileID,
			Kind:         kind,
			Label:        strings.TrimSpace(payload.Label),
			Instructions: payload.Instructions,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, paymentConfigFromModel(config))
	}
}

// ListPaymentConfigs lists the profile's payment presets.
func ListPaymentConfigs(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment config service unavailable"))
			return
		}

		profileID, err := profileIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		configs, err := svc.List(r.Context(), profileID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result := make([]paymentConfigResponse, 0, len(configs))
		for i := range configs {
			result = append(result, paymentConfigFromModel(&configs[i]))
		}
		responses.WriteSuccess(w, result)
	}
}

// UpdatePaymentConfig saves an edited payment preset.
func UpdatePaymentConfig(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment config service unavailable"))
			return
		}

		profileID, configID, err := paymentConfigScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload paymentConfigRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kind, err := enums.ParsePaymentConfigKind(strings.TrimSpace(payload.Kind))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid kind"))
			return
		}

		config, err := svc.Update(r.Context(), paymentsvc.UpdateInput{
			ProfileID:    profileID,
			ConfigID:     configID,
			Kind:         kind,
			Label:        strings.TrimSpace(payload.Label),
			Instructions: payload.Instructions,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, paymentConfigFromModel(config))
	}
}

// DeletePaymentConfig removes a payment preset owned by the profile.
func DeletePaymentConfig(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment config service unavailable"))
			return
		}

		profileID, configID, err := paymentConfigScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), profileID, configID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func paymentConfigScope(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	profileID, err := profileIDFromRequest(r)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	configID, err := uuid.Parse(chi.URLParam(r, "configId"))
	if err != nil {
		return uuid.Nil, uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment config id")
	}
	return profileID, configID, nil
}

func paymentConfigFromModel(c *models.PaymentConfig) paymentConfigResponse {
	return paymentConfigResponse{
		ID:           c.ID,
		Kind:         c.Kind,
		Label:        c.Label,
		Instructions: c.Instructions,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}
