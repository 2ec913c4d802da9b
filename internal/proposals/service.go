package proposals

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/luminastudio/lumina-backend/internal/contracts"
	"github.com/luminastudio/lumina-backend/pkg/db/models"
	"github.com/luminastudio/lumina-backend/pkg/enums"
	pkgerrors "github.com/luminastudio/lumina-backend/pkg/errors"
	"github.com/luminastudio/lumina-backend/pkg/metrics"
	"github.com/luminastudio/lumina-backend/pkg/pagination"
	"github.com/luminastudio/lumina-backend/pkg/security"
	"github.com/luminastudio/lumina-backend/pkg/storage/gcs"
	"github.com/luminastudio/lumina-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines proposal operations for both the photographer surface and
// the token-addressed public client flow.
type Service interface {
	Create(ctx context.Context, input CreateProposalInput) (*models.Proposal, error)
	Update(ctx context.Context, input UpdateProposalInput) (*models.Proposal, error)
	Get(ctx context.Context, profileID, proposalID uuid.UUID) (*models.Proposal, error)
	List(ctx context.Context, profileID uuid.UUID, params pagination.Params, filters ListFilters) (*ProposalList, error)
	Send(ctx context.Context, profileID, proposalID uuid.UUID) error
	Cancel(ctx context.Context, profileID, proposalID uuid.UUID) error
	ConfirmPayment(ctx context.Context, input ConfirmPaymentInput) error
	Delete(ctx context.Context, profileID, proposalID uuid.UUID) error

	ViewByToken(ctx context.Context, token string) (*PublicProposal, error)
	Approve(ctx context.Context, token string) (*PublicProposal, error)
	RequestChanges(ctx context.Context, input RequestChangesInput) error
	SubmitClientData(ctx context.Context, input ClientDataInput) (string, error)
	Sign(ctx context.Context, input SignInput) (*PublicProposal, error)
	UploadReceipt(ctx context.Context, input ReceiptInput) (string, error)
	SignedContract(ctx context.Context, token string) (*models.Contract, error)
}

// Config carries the tunables the proposal service needs.
type Config struct {
	PublicTokenBytes int
	DefaultValidDays int
}

type service struct {
	repo     Repository
	tx       txRunner
	uploader gcs.Uploader
	metrics  *metrics.ProposalMetrics
	cfg      Config
}

// NewService builds a proposal service with the required dependencies. The
// metrics collector may be nil; the uploader is required because signing
// depends on it.
func NewService(repo Repository, tx txRunner, uploader gcs.Uploader, m *metrics.ProposalMetrics, cfg Config) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("proposals repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if uploader == nil {
		return nil, fmt.Errorf("storage uploader required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		uploader: uploader,
		metrics:  m,
		cfg:      cfg,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateProposalInput) (*models.Proposal, error) {
	if input.ProfileID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "profile identity missing")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}
	proposalType := input.ProposalType
	if proposalType == "" {
		proposalType = enums.ProposalTypePhoto
	}
	if !proposalType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid proposal type")
	}
	if input.ContractContent != nil && input.ContractFileURL != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contract content and contract file are mutually exclusive")
	}

	token, err := security.GeneratePublicToken(s.cfg.PublicTokenBytes)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint public token")
	}

	items := buildItems(input.Items)
	total := ComputeTotal(input.UseManualTotal, input.ManualAmount, input.DiscountAmount, items)

	validUntil := input.ValidUntil
	if validUntil == nil && s.cfg.DefaultValidDays > 0 {
		t := time.Now().UTC().AddDate(0, 0, s.cfg.DefaultValidDays)
		validUntil = &t
	}

	proposal := &models.Proposal{
		ProfileID:       input.ProfileID,
		PublicToken:     token,
		LeadID:          input.LeadID,
		TemplateID:      input.TemplateID,
		PaymentConfigID: input.PaymentConfigID,
		ProposalType:    proposalType,
		Status:          enums.ProposalStatusDraft,
		Title:           strings.TrimSpace(input.Title),
		ClientName:      strings.TrimSpace(input.ClientName),
		ClientEmail:     strings.TrimSpace(input.ClientEmail),
		UseManualTotal:  input.UseManualTotal,
		ManualAmount:    input.ManualAmount,
		DiscountAmount:  input.DiscountAmount,
		TotalAmount:     total,
		ContractContent: input.ContractContent,
		ContractFileURL: input.ContractFileURL,
		RequiredFields:  requiredFieldsFor(input.ContractContent),
		ValidUntil:      validUntil,

		CoverVideoURL:        input.CoverVideoURL,
		RevisionLimit:        input.RevisionLimit,
		DeliveryFormats:      input.DeliveryFormats,
		EstimatedDurationMin: input.EstimatedDurationMin,
		ReferenceLinks:       input.ReferenceLinks,
		SoundtrackLinks:      input.SoundtrackLinks,

		Items: items,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := s.repo.WithTx(tx).Create(ctx, proposal)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create proposal")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return proposal, nil
}

func (s *service) Update(ctx context.Context, input UpdateProposalInput) (*models.Proposal, error) {
	if input.ProfileID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "profile identity missing")
	}
	if input.ProposalID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "proposal id required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}
	if input.ContractContent != nil && input.ContractFileURL != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contract content and contract file are mutually exclusive")
	}

	var updated *models.Proposal
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		proposal, err := s.loadOwned(ctx, repo, input.ProfileID, input.ProposalID)
		if err != nil {
			return err
		}
		if !IsEditable(proposal.Status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "proposal can no longer be edited")
		}

		items := buildItems(input.Items)
		total := ComputeTotal(input.UseManualTotal, input.ManualAmount, input.DiscountAmount, items)

		updates := map[string]any{
			"title":             strings.TrimSpace(input.Title),
			"payment_config_id": input.PaymentConfigID,
			"client_name":       strings.TrimSpace(input.ClientName),
			"client_email":      strings.TrimSpace(input.ClientEmail),
			"use_manual_total":  input.UseManualTotal,
			"manual_amount":     input.ManualAmount,
			"discount_amount":   input.DiscountAmount,
			"total_amount":      total,
			"contract_content":  input.ContractContent,
			"contract_file_url": input.ContractFileURL,
			"required_fields":   requiredFieldsFor(input.ContractContent),
			"valid_until":       input.ValidUntil,

			"cover_video_url":        input.CoverVideoURL,
			"revision_limit":         input.RevisionLimit,
			"delivery_formats":       types.StringSlice(input.DeliveryFormats),
			"estimated_duration_min": input.EstimatedDurationMin,
			"reference_links":        types.StringSlice(input.ReferenceLinks),
			"soundtrack_links":       types.StringSlice(input.SoundtrackLinks),
		}

		affected, err := repo.UpdateWithVersion(ctx, proposal.ID, input.Version, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update proposal")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "proposal was modified by another session")
		}

		if err := repo.ReplaceItems(ctx, proposal.ID, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace proposal items")
		}

		updated, err = repo.FindByID(ctx, proposal.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload proposal")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Get(ctx context.Context, profileID, proposalID uuid.UUID) (*models.Proposal, error) {
	if profileID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "profile identity missing")
	}
	return s.loadOwned(ctx, s.repo, profileID, proposalID)
}

func (s *service) List(ctx context.Context, profileID uuid.UUID, params pagination.Params, filters ListFilters) (*ProposalList, error) {
	if profileID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "profile identity missing")
	}
	list, err := s.repo.List(ctx, profileID, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list proposals")
	}
	return list, nil
}

func (s *service) Send(ctx context.Context, profileID, proposalID uuid.UUID) error {
	if profileID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "profile identity missing")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		proposal, err := s.loadOwned(ctx, repo, profileID, proposalID)
		if err != nil {
			return err
		}
		if !CanTransition(proposal.Status, enums.ProposalStatusSent) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "proposal cannot be sent in its current state")
		}
		if strings.TrimSpace(proposal.Title) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "title required before sending")
		}
		hasContent := proposal.ContractContent != nil && strings.TrimSpace(*proposal.ContractContent) != ""
		hasFile := proposal.ContractFileURL != nil && strings.TrimSpace(*proposal.ContractFileURL) != ""
		if !hasContent && !hasFile {
			return pkgerrors.New(pkgerrors.CodeValidation, "contract content or file required before sending")
		}
		if !proposal.TotalAmount.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeValidation, "total must be positive before sending")
		}

		now := time.Now().UTC()
		updates := map[string]any{
			"status":               enums.ProposalStatusSent,
			"sent_at":              now,
			"change_request_notes": nil,
		}
		if err := repo.Update(ctx, proposal.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark proposal sent")
		}
		s.metrics.ObserveTransition(proposal.Status.String(), enums.ProposalStatusSent.String())
		return nil
	})
}

func (s *service) Cancel(ctx context.Context, profileID, proposalID uuid.UUID) error {
	if profileID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "profile identity missing")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		proposal, err := s.loadOwned(ctx, repo, profileID, proposalID)
		if err != nil {
			return err
		}
		if proposal.Status == enums.ProposalStatusCancelled {
			return nil
		}
		if !CanTransition(proposal.Status, enums.ProposalStatusCancelled) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "proposal cannot be cancelled in its current state")
		}
		if err := repo.Update(ctx, proposal.ID, map[string]any{"status": enums.ProposalStatusCancelled}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel proposal")
		}
		s.metrics.ObserveTransition(proposal.Status.String(), enums.ProposalStatusCancelled.String())
		return nil
	})
}

func (s *service) ConfirmPayment(ctx context.Context, input ConfirmPaymentInput) error {
	if input.ProfileID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "profile identity missing")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		proposal, err := s.loadOwned(ctx, repo, input.ProfileID, input.ProposalID)
		if err != nil {
			return err
		}
		if !CanTransition(proposal.Status, enums.ProposalStatusPaid) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only signed proposals can be confirmed as paid")
		}
		updates := map[string]any{"status": enums.ProposalStatusPaid}
		if input.ReceiptURL != nil {
			updates["receipt_url"] = *input.ReceiptURL
		}
		if err := repo.Update(ctx, proposal.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm payment")
		}
		s.metrics.ObserveTransition(proposal.Status.String(), enums.ProposalStatusPaid.String())
		return nil
	})
}

func (s *service) Delete(ctx context.Context, profileID, proposalID uuid.UUID) error {
	if profileID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "profile identity missing")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		proposal, err := s.loadOwned(ctx, repo, profileID, proposalID)
		if err != nil {
			return err
		}
		if proposal.Status == enums.ProposalStatusSigned || proposal.Status == enums.ProposalStatusPaid || proposal.Contract != nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "signed proposals cannot be deleted")
		}
		if err := repo.Delete(ctx, proposal.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete proposal")
		}
		return nil
	})
}

// ViewByToken resolves the public view. The first view of a sent proposal
// records viewed_at and moves it to viewed; later views are read-only.
func (s *service) ViewByToken(ctx context.Context, token string) (*PublicProposal, error) {
	var view *PublicProposal
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		proposal, err := s.loadByToken(ctx, repo, token)
		if err != nil {
			return err
		}
		if proposal.Status == enums.ProposalStatusSent && !proposal.IsExpired(time.Now().UTC()) {
			now := time.Now().UTC()
			updates := map[string]any{
				"status":    enums.ProposalStatusViewed,
				"viewed_at": now,
			}
			if err := repo.Update(ctx, proposal.ID, updates); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark proposal viewed")
			}
			s.metrics.ObserveTransition(proposal.Status.String(), enums.ProposalStatusViewed.String())
			proposal.Status = enums.ProposalStatusViewed
			proposal.ViewedAt = &now
		}
		view = buildPublicView(proposal)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *service) Approve(ctx context.Context, token string) (*PublicProposal, error) {
	var view *PublicProposal
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		proposal, err := s.loadByToken(ctx, repo, token)
		if err != nil {
			return err
		}
		if err := s.guardClientAction(proposal); err != nil {
			return err
		}
		if !CanTransition(proposal.Status, enums.ProposalStatusApproved) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "proposal cannot be approved in its current state")
		}

		now := time.Now().UTC()
		updates := map[string]any{
			"status":      enums.ProposalStatusApproved,
			"approved_at": now,
		}
		if err := repo.Update(ctx, proposal.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve proposal")
		}
		s.metrics.ObserveTransition(proposal.Status.String(), enums.ProposalStatusApproved.String())
		proposal.Status = enums.ProposalStatusApproved
		proposal.ApprovedAt = &now
		view = buildPublicView(proposal)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *service) RequestChanges(ctx context.Context, input RequestChangesInput) error {
	notes := strings.TrimSpace(input.Notes)
	if notes == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "change notes required")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		proposal, err := s.loadByToken(ctx, repo, input.PublicToken)
		if err != nil {
			return err
		}
		if err := s.guardClientAction(proposal); err != nil {
			return err
		}
		if !CanTransition(proposal.Status, enums.ProposalStatusChangesRequested) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "changes cannot be requested in the current state")
		}
		updates := map[string]any{
			"status":               enums.ProposalStatusChangesRequested,
			"change_request_notes": notes,
		}
		if err := repo.Update(ctx, proposal.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "request changes")
		}
		s.metrics.ObserveTransition(proposal.Status.String(), enums.ProposalStatusChangesRequested.String())
		return nil
	})
}

// SubmitClientData stores the public form submission and returns the rendered
// contract text. File-based contracts have no text to render.
func (s *service) SubmitClientData(ctx context.Context, input ClientDataInput) (string, error) {
	var rendered string
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		proposal, err := s.loadByToken(ctx, repo, input.PublicToken)
		if err != nil {
			return err
		}
		if err := s.guardClientAction(proposal); err != nil {
			return err
		}
		if proposal.Status != enums.ProposalStatusApproved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "client data can only be submitted after approval")
		}

		data := mergeClientData(proposal.ClientData, input.Values)
		updates := map[string]any{"client_data": data}
		if name := strings.TrimSpace(input.ClientName); name != "" {
			updates["client_name"] = name
		}
		if email := strings.TrimSpace(input.ClientEmail); email != "" {
			updates["client_email"] = email
		}
		if err := repo.Update(ctx, proposal.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store client data")
		}

		if proposal.ContractContent != nil {
			rendered = contracts.Render(contracts.RenderInput{
				Content: *proposal.ContractContent,
				Values:  data,
				Items:   proposal.Items,
				Total:   proposal.TotalAmount,
				Now:     time.Now().UTC(),
			})
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return rendered, nil
}

// Sign executes the signing transition. The signature image is uploaded before
// the transaction; if the transaction fails the proposal keeps its prior
// status and the orphaned upload is tolerated.
func (s *service) Sign(ctx context.Context, input SignInput) (*PublicProposal, error) {
	if !input.AcceptedContract {
		s.metrics.ObserveSignAttempt("rejected")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contract must be accepted before signing")
	}
	if len(input.SignatureImage) == 0 {
		s.metrics.ObserveSignAttempt("rejected")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "signature required")
	}

	proposal, err := s.loadByToken(ctx, s.repo, input.PublicToken)
	if err != nil {
		s.metrics.ObserveSignAttempt("rejected")
		return nil, err
	}
	if err := s.guardClientAction(proposal); err != nil {
		s.metrics.ObserveSignAttempt("rejected")
		return nil, err
	}
	if !CanTransition(proposal.Status, enums.ProposalStatusSigned) {
		s.metrics.ObserveSignAttempt("rejected")
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "proposal must be approved before signing")
	}

	data := mergeClientData(proposal.ClientData, input.ClientData)
	if missing := missingRequiredFields(proposal.RequiredFields, data); len(missing) > 0 {
		s.metrics.ObserveSignAttempt("rejected")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "required fields missing").
			WithDetails(map[string]any{"missing_fields": missing})
	}

	contentType := input.ContentType
	if contentType == "" {
		contentType = "image/png"
	}
	objectName := fmt.Sprintf("proposals/%s/signature-%d.png", proposal.ID, time.Now().UTC().UnixMilli())
	signatureURL, err := s.uploader.Upload(ctx, objectName, input.SignatureImage, contentType)
	if err != nil {
		s.metrics.ObserveSignAttempt("upload_failed")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload signature")
	}

	var view *PublicProposal
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := s.loadByToken(ctx, repo, input.PublicToken)
		if err != nil {
			return err
		}
		if !CanTransition(current.Status, enums.ProposalStatusSigned) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "proposal must be approved before signing")
		}

		now := time.Now().UTC()
		signedContent := ""
		if current.ContractContent != nil {
			signedContent = contracts.Render(contracts.RenderInput{
				Content: *current.ContractContent,
				Values:  data,
				Items:   current.Items,
				Total:   current.TotalAmount,
				Now:     now,
			})
		}

		contract := &models.Contract{
			ProposalID:        current.ID,
			SignedContent:     signedContent,
			ClientData:        data,
			SignatureImageURL: signatureURL,
			SignedAt:          now,
			ClientIP:          input.ClientIP,
			UserAgent:         input.UserAgent,
		}
		if err := repo.CreateContract(ctx, contract); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create contract record")
		}

		updates := map[string]any{
			"status":      enums.ProposalStatusSigned,
			"client_data": data,
		}
		if name := strings.TrimSpace(input.ClientName); name != "" {
			updates["client_name"] = name
		}
		if err := repo.Update(ctx, current.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark proposal signed")
		}
		s.metrics.ObserveTransition(current.Status.String(), enums.ProposalStatusSigned.String())

		current.Status = enums.ProposalStatusSigned
		current.ClientData = data
		current.Contract = contract
		view = buildPublicView(current)
		return nil
	})
	if err != nil {
		s.metrics.ObserveSignAttempt("failed")
		return nil, err
	}
	s.metrics.ObserveSignAttempt("success")
	return view, nil
}

// UploadReceipt stores a payment receipt without changing status; paid is only
// reached through the photographer's confirmation.
func (s *service) UploadReceipt(ctx context.Context, input ReceiptInput) (string, error) {
	if len(input.Receipt) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "receipt payload required")
	}

	proposal, err := s.loadByToken(ctx, s.repo, input.PublicToken)
	if err != nil {
		return "", err
	}
	if proposal.Status != enums.ProposalStatusSigned && proposal.Status != enums.ProposalStatusPaid {
		return "", pkgerrors.New(pkgerrors.CodeStateConflict, "receipts can only be uploaded after signing")
	}

	contentType := input.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	objectName := fmt.Sprintf("proposals/%s/receipt-%d", proposal.ID, time.Now().UTC().UnixMilli())
	url, err := s.uploader.Upload(ctx, objectName, input.Receipt, contentType)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload receipt")
	}

	if err := s.repo.Update(ctx, proposal.ID, map[string]any{"receipt_url": url}); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store receipt url")
	}
	return url, nil
}

// SignedContract returns the immutable contract record once signing happened.
func (s *service) SignedContract(ctx context.Context, token string) (*models.Contract, error) {
	proposal, err := s.loadByToken(ctx, s.repo, token)
	if err != nil {
		return nil, err
	}
	if proposal.Contract == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "proposal has not been signed")
	}
	return proposal.Contract, nil
}

func (s *service) loadOwned(ctx context.Context, repo Repository, profileID, proposalID uuid.UUID) (*models.Proposal, error) {
	if proposalID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "proposal id required")
	}
	proposal, err := repo.FindByID(ctx, proposalID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "proposal not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load proposal")
	}
	if proposal.ProfileID != profileID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "proposal does not belong to profile")
	}
	return proposal, nil
}

func (s *service) loadByToken(ctx context.Context, repo Repository, token string) (*models.Proposal, error) {
	if strings.TrimSpace(token) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "public token required")
	}
	proposal, err := repo.FindByPublicToken(ctx, token)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "proposal not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load proposal")
	}
	return proposal, nil
}

// guardClientAction blocks state-changing client actions on proposals that are
// cancelled or past their validity date. Expiration never rewrites the stored
// status; it only gates what the client may do.
func (s *service) guardClientAction(proposal *models.Proposal) error {
	if proposal.Status == enums.ProposalStatusCancelled {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "proposal has been cancelled")
	}
	if proposal.IsExpired(time.Now().UTC()) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "proposal has expired")
	}
	return nil
}

// buildItems filters out items with an empty trimmed name and normalizes the
// remainder, closing order gaps left by dropped entries.
func buildItems(inputs []ItemInput) []models.ProposalItem {
	items := make([]models.ProposalItem, 0, len(inputs))
	for _, input := range inputs {
		name := strings.TrimSpace(input.Name)
		if name == "" {
			continue
		}
		quantity := input.Quantity
		if quantity < 1 {
			quantity = 1
		}
		items = append(items, models.ProposalItem{
			Name:       name,
			Details:    strings.TrimSpace(input.Details),
			Quantity:   quantity,
			UnitPrice:  input.UnitPrice,
			ShowPrice:  input.ShowPrice,
			OrderIndex: len(items),
		})
	}
	return items
}

func requiredFieldsFor(content *string) types.StringSlice {
	if content == nil {
		return types.StringSlice{}
	}
	return types.StringSlice(contracts.RequiredFields(*content))
}

func mergeClientData(existing types.StringMap, incoming map[string]string) types.StringMap {
	merged := types.StringMap{}
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range incoming {
		merged[k] = strings.TrimSpace(v)
	}
	return merged
}

func missingRequiredFields(required []string, data map[string]string) []string {
	var missing []string
	for _, field := range required {
		if strings.TrimSpace(data[field]) == "" {
			missing = append(missing, field)
		}
	}
	return missing
}

func buildPublicView(proposal *models.Proposal) *PublicProposal {
	items := make([]PublicItem, 0, len(proposal.Items))
	for i := range proposal.Items {
		item := proposal.Items[i]
		public := PublicItem{
			Name:      item.Name,
			Details:   item.Details,
			Quantity:  item.Quantity,
			ShowPrice: item.ShowPrice,
		}
		if item.ShowPrice {
			price := item.UnitPrice
			subtotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
			public.UnitPrice = &price
			public.Subtotal = &subtotal
		}
		items = append(items, public)
	}

	view := &PublicProposal{
		ID:             proposal.ID,
		Title:          proposal.Title,
		ProposalType:   proposal.ProposalType,
		Status:         proposal.Status,
		Expired:        proposal.IsExpired(time.Now().UTC()),
		ClientName:     proposal.ClientName,
		TotalAmount:    proposal.TotalAmount,
		DiscountAmount: proposal.DiscountAmount,
		Items:          items,
		HasContract:    proposal.ContractContent != nil || proposal.ContractFileURL != nil,
		ContractFile:   proposal.ContractFileURL,
		RequiredFields: proposal.RequiredFields,
		ClientData:     proposal.ClientData,
		ChangeNotes:    proposal.ChangeRequestNotes,
		ValidUntil:     proposal.ValidUntil,
		ViewedAt:       proposal.ViewedAt,
		ApprovedAt:     proposal.ApprovedAt,
	}
	if proposal.Contract != nil {
		signedAt := proposal.Contract.SignedAt
		view.SignedAt = &signedAt
	}
	return view
}
