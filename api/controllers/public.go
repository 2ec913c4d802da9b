package controllers

import (
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/luminastudio/lumina-backend/api/responses"
	"github.com/luminastudio/lumina-backend/api/validators"
	proposalsvc "github.com/luminastudio/lumina-backend/internal/proposals"
	"github.com/luminastudio/lumina-backend/internal/publicflow"
	pkgerrors "github.com/luminastudio/lumina-backend/pkg/errors"
	"github.com/luminastudio/lumina-backend/pkg/logger"
)

type publicProposalEnvelope struct {
	Proposal *proposalsvc.PublicProposal `json:"proposal"`
	Step     publicflow.Step             `json:"step"`
}

type requestChangesRequest struct {
	Notes string `json:"notes" validate:"required"`
}

type clientDataRequest struct {
	ClientName  string            `json:"client_name,omitempty"`
	ClientEmail string            `json:"client_email,omitempty" validate:"omitempty,email"`
	Values      map[string]string `json:"values" validate:"required"`
}

type signRequest struct {
	ClientName       string            `json:"client_name,omitempty"`
	ClientData       map[string]string `json:"client_data,omitempty"`
	SignatureImage   string            `json:"signature_image" validate:"required"`
	ContentType      string            `json:"content_type,omitempty"`
	AcceptedContract bool              `json:"accepted_contract"`
}

type receiptRequest struct {
	Receipt     string `json:"receipt" validate:"required"`
	ContentType string `json:"content_type,omitempty"`
}

type contractDownloadResponse struct {
	SignedContent     string            `json:"signed_content"`
	ClientData        map[string]string `json:"client_data,omitempty"`
	SignatureImageURL string            `json:"signature_image_url"`
	SignedAt          time.Time         `json:"signed_at"`
}

// PublicProposalView resolves a capability token into the client-facing view.
// The first view of a sent proposal is recorded; everything else is read-only.
func PublicProposalView(svc proposalsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "proposal service unavailable"))
			return
		}

		view, err := svc.ViewByToken(r.Context(), publicToken(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, envelopeFor(view))
	}
}

// PublicApprove moves the proposal to approved on the client's behalf.
func PublicApprove(svc proposalsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "proposal service unavailable"))
			return
		}

		view, err := svc.Approve(r.Context(), publicToken(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, envelopeFor(view))
	}
}

// PublicRequestChanges records the client's change notes.
func PublicRequestChanges(svc proposalsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "proposal service unavailable"))
			return
		}

		var payload requestChangesRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err := svc.RequestChanges(r.Context(), proposalsvc.RequestChangesInput{
			PublicToken: publicToken(r),
			Notes:       payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "changes_requested"})
	}
}

// PublicClientData stores the pre-signature form values and returns the
// contract text with variables substituted.
func PublicClientData(svc proposalsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "proposal service unavailable"))
			return
		}

		var payload clientDataRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rendered, err := svc.SubmitClientData(r.Context(), proposalsvc.ClientDataInput{
			PublicToken: publicToken(r),
			ClientName:  payload.ClientName,
			ClientEmail: payload.ClientEmail,
			Values:      payload.Values,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"rendered_contract": rendered})
	}
}

// PublicSign executes the signing transition.
func PublicSign(svc proposalsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "proposal service unavailable"))
			return
		}

		var payload signRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		signature, err := decodeBase64Payload(payload.SignatureImage, "signature_image")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Sign(r.Context(), proposalsvc.SignInput{
			PublicToken:      publicToken(r),
			ClientName:       payload.ClientName,
			ClientData:       payload.ClientData,
			SignatureImage:   signature,
			ContentType:      payload.ContentType,
			AcceptedContract: payload.AcceptedContract,
			ClientIP:         clientIPFromRequest(r),
			UserAgent:        r.UserAgent(),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, envelopeFor(view))
	}
}

// PublicReceipt stores a payment receipt; the status stays untouched until the
// photographer confirms payment.
func PublicReceipt(svc proposalsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "proposal service unavailable"))
			return
		}

		var payload receiptRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receipt, err := decodeBase64Payload(payload.Receipt, "receipt")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		url, err := svc.UploadReceipt(r.Context(), proposalsvc.ReceiptInput{
			PublicToken: publicToken(r),
			Receipt:     receipt,
			ContentType: payload.ContentType,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"receipt_url": url})
	}
}

// PublicContract downloads the frozen signed contract.
func PublicContract(svc proposalsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "proposal service unavailable"))
			return
		}

		contract, err := svc.SignedContract(r.Context(), publicToken(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, contractDownloadResponse{
			SignedContent:     contract.SignedContent,
			ClientData:        contract.ClientData,
			SignatureImageURL: contract.SignatureImageURL,
			SignedAt:          contract.SignedAt,
		})
	}
}

func publicToken(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "token"))
}

func envelopeFor(view *proposalsvc.PublicProposal) publicProposalEnvelope {
	return publicProposalEnvelope{
		Proposal: view,
		Step:     publicflow.StepForStatus(view.Status),
	}
}

func decodeBase64Payload(raw, field string) ([]byte, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, field+" required")
	}
	// data URI prefixes from canvas exports are tolerated
	if idx := strings.Index(trimmed, ","); idx != -1 && strings.HasPrefix(trimmed, "data:") {
		trimmed = trimmed[idx+1:]
	}
	decoded, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field+" encoding")
	}
	return decoded, nil
}

func clientIPFromRequest(r *http.Request) string {
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host := r.RemoteAddr
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		host = host[:idx]
	}
	return host
}
