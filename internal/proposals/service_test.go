package proposals

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/luminastudio/lumina-backend/pkg/db/models"
	"github.com/luminastudio/lumina-backend/pkg/enums"
	pkgerrors "github.com/luminastudio/lumina-backend/pkg/errors"
	"github.com/luminastudio/lumina-backend/pkg/pagination"
	"github.com/luminastudio/lumina-backend/pkg/types"
)

type stubProposalsRepo struct {
	proposal       *models.Proposal
	created        *models.Proposal
	contract       *models.Contract
	replacedItems  []models.ProposalItem
	updates        []map[string]any
	versionRows    int64
	versionUpdates map[string]any
}

func (s *stubProposalsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubProposalsRepo) Create(ctx context.Context, proposal *models.Proposal) (*models.Proposal, error) {
	if proposal.ID == uuid.Nil {
		proposal.ID = uuid.New()
	}
	s.created = proposal
	return proposal, nil
}

func (s *stubProposalsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	if s.proposal == nil || s.proposal.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.proposal, nil
}

func (s *stubProposalsRepo) FindByPublicToken(ctx context.Context, token string) (*models.Proposal, error) {
	if s.proposal == nil || s.proposal.PublicToken != token {
		return nil, gorm.ErrRecordNotFound
	}
	return s.proposal, nil
}

func (s *stubProposalsRepo) List(ctx context.Context, profileID uuid.UUID, params pagination.Params, filters ListFilters) (*ProposalList, error) {
	return &ProposalList{}, nil
}

func (s *stubProposalsRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if s.proposal == nil || s.proposal.ID != id {
		return gorm.ErrRecordNotFound
	}
	s.updates = append(s.updates, updates)
	for key, value := range updates {
		switch key {
		case "status":
			if v, ok := value.(enums.ProposalStatus); ok {
				s.proposal.Status = v
			}
		case "sent_at":
			if v, ok := value.(time.Time); ok {
				s.proposal.SentAt = &v
			}
		case "viewed_at":
			if v, ok := value.(time.Time); ok {
				s.proposal.ViewedAt = &v
			}
		case "approved_at":
			if v, ok := value.(time.Time); ok {
				s.proposal.ApprovedAt = &v
			}
		case "change_request_notes":
			switch v := value.(type) {
			case string:
				s.proposal.ChangeRequestNotes = &v
			case nil:
				s.proposal.ChangeRequestNotes = nil
			}
		case "client_data":
			if v, ok := value.(types.StringMap); ok {
				s.proposal.ClientData = v
			}
		case "client_name":
			if v, ok := value.(string); ok {
				s.proposal.ClientName = v
			}
		case "receipt_url":
			if v, ok := value.(string); ok {
				s.proposal.ReceiptURL = &v
			}
		}
	}
	return nil
}

func (s *stubProposalsRepo) UpdateWithVersion(ctx context.Context, id uuid.UUID, version int, updates map[string]any) (int64, error) {
	s.versionUpdates = updates
	return s.versionRows, nil
}

func (s *stubProposalsRepo) ReplaceItems(ctx context.Context, proposalID uuid.UUID, items []models.ProposalItem) error {
	s.replacedItems = items
	if s.proposal != nil && s.proposal.ID == proposalID {
		s.proposal.Items = items
	}
	return nil
}

func (s *stubProposalsRepo) CreateContract(ctx context.Context, contract *models.Contract) error {
	s.contract = contract
	return nil
}

func (s *stubProposalsRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if s.proposal == nil || s.proposal.ID != id {
		return gorm.ErrRecordNotFound
	}
	s.proposal = nil
	return nil
}

func (s *stubProposalsRepo) CountPastValidityByStatus(ctx context.Context, status enums.ProposalStatus, now time.Time) (int64, error) {
	return 0, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubUploader struct {
	calls int
	url   string
	err   error
}

func (s *stubUploader) Upload(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.calls++
	if s.url != "" {
		return s.url, nil
	}
	return "https://storage.test/" + objectName, nil
}

func newTestService(t *testing.T, repo *stubProposalsRepo) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{}, &stubUploader{}, nil, Config{PublicTokenBytes: 32})
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}
	return svc
}

func strPtr(s string) *string { return &s }

func draftProposal(profileID uuid.UUID) *models.Proposal {
	return &models.Proposal{
		ID:              uuid.New(),
		ProfileID:       profileID,
		PublicToken:     "tok-draft",
		Status:          enums.ProposalStatusDraft,
		Title:           "Ensaio externo",
		TotalAmount:     decimal.NewFromInt(130),
		ContractContent: strPtr("Contrato de {{nome}} no valor {{valor_total}}"),
		RequiredFields:  types.StringSlice{"nome"},
	}
}

func TestCreateComputesTotalAndDropsInvalidItems(t *testing.T) {
	repo := &stubProposalsRepo{}
	svc := newTestService(t, repo)

	proposal, err := svc.Create(context.Background(), CreateProposalInput{
		ProfileID:       uuid.New(),
		Title:           "Casamento",
		ContractContent: strPtr("Eu, {{nome}}, aceito {{valor_total}}"),
		DiscountAmount:  decimal.NewFromInt(20),
		Items: []ItemInput{
			{Name: "A", Quantity: 1, UnitPrice: decimal.NewFromInt(100), ShowPrice: true},
			{Name: "   ", Quantity: 1, UnitPrice: decimal.NewFromInt(999), ShowPrice: true},
			{Name: "B", Quantity: 1, UnitPrice: decimal.NewFromInt(50), ShowPrice: false},
		},
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if proposal.Status != enums.ProposalStatusDraft {
		t.Fatalf("expected draft got %s", proposal.Status)
	}
	if proposal.PublicToken == "" {
		t.Fatal("expected public token")
	}
	if !proposal.TotalAmount.Equal(decimal.NewFromInt(130)) {
		t.Fatalf("expected total 130 got %s", proposal.TotalAmount)
	}
	if len(proposal.Items) != 2 {
		t.Fatalf("expected 2 items got %d", len(proposal.Items))
	}
	if proposal.Items[0].OrderIndex != 0 || proposal.Items[1].OrderIndex != 1 {
		t.Fatalf("expected contiguous order indexes, got %d and %d",
			proposal.Items[0].OrderIndex, proposal.Items[1].OrderIndex)
	}
	if len(proposal.RequiredFields) != 1 || proposal.RequiredFields[0] != "nome" {
		t.Fatalf("unexpected required fields %v", proposal.RequiredFields)
	}
}

func TestCreateRequiresTitle(t *testing.T) {
	svc := newTestService(t, &stubProposalsRepo{})
	_, err := svc.Create(context.Background(), CreateProposalInput{ProfileID: uuid.New(), Title: "  "})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
}

func TestUpdateConflictWhenVersionStale(t *testing.T) {
	profileID := uuid.New()
	repo := &stubProposalsRepo{proposal: draftProposal(profileID), versionRows: 0}
	svc := newTestService(t, repo)

	_, err := svc.Update(context.Background(), UpdateProposalInput{
		ProfileID:  profileID,
		ProposalID: repo.proposal.ID,
		Title:      "Novo título",
		Version:    3,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict got %v", err)
	}
	if repo.replacedItems != nil {
		t.Fatal("items must not be replaced on a stale update")
	}
}

func TestUpdateBlockedAfterApproval(t *testing.T) {
	profileID := uuid.New()
	proposal := draftProposal(profileID)
	proposal.Status = enums.ProposalStatusApproved
	repo := &stubProposalsRepo{proposal: proposal}
	svc := newTestService(t, repo)

	_, err := svc.Update(context.Background(), UpdateProposalInput{
		ProfileID:  profileID,
		ProposalID: proposal.ID,
		Title:      "Tarde demais",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict got %v", err)
	}
}

func TestSendHappyPath(t *testing.T) {
	profileID := uuid.New()
	repo := &stubProposalsRepo{proposal: draftProposal(profileID)}
	svc := newTestService(t, repo)

	if err := svc.Send(context.Background(), profileID, repo.proposal.ID); err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if repo.proposal.Status != enums.ProposalStatusSent {
		t.Fatalf("expected sent got %s", repo.proposal.Status)
	}
	if repo.proposal.SentAt == nil {
		t.Fatal("expected sent_at to be set")
	}
}

func TestSendRejectsMissingContract(t *testing.T) {
	profileID := uuid.New()
	proposal := draftProposal(profileID)
	proposal.ContractContent = nil
	repo := &stubProposalsRepo{proposal: proposal}
	svc := newTestService(t, repo)

	err := svc.Send(context.Background(), profileID, proposal.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
	if proposal.Status != enums.ProposalStatusDraft {
		t.Fatalf("status must stay draft, got %s", proposal.Status)
	}
}

func TestSendRejectsNonPositiveTotal(t *testing.T) {
	profileID := uuid.New()
	proposal := draftProposal(profileID)
	proposal.TotalAmount = decimal.NewFromInt(-10)
	repo := &stubProposalsRepo{proposal: proposal}
	svc := newTestService(t, repo)

	err := svc.Send(context.Background(), profileID, proposal.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
}

func TestSendRejectsWrongState(t *testing.T) {
	profileID := uuid.New()
	proposal := draftProposal(profileID)
	proposal.Status = enums.ProposalStatusApproved
	repo := &stubProposalsRepo{proposal: proposal}
	svc := newTestService(t, repo)

	err := svc.Send(context.Background(), profileID, proposal.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict got %v", err)
	}
}

func TestSendForbiddenForOtherProfile(t *testing.T) {
	proposal := draftProposal(uuid.New())
	repo := &stubProposalsRepo{proposal: proposal}
	svc := newTestService(t, repo)

	err := svc.Send(context.Background(), uuid.New(), proposal.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden got %v", err)
	}
}

func TestViewByTokenMarksViewedOnce(t *testing.T) {
	proposal := draftProposal(uuid.New())
	proposal.Status = enums.ProposalStatusSent
	repo := &stubProposalsRepo{proposal: proposal}
	svc := newTestService(t, repo)

	view, err := svc.ViewByToken(context.Background(), proposal.PublicToken)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if view.Status != enums.ProposalStatusViewed {
		t.Fatalf("expected viewed got %s", view.Status)
	}
	if proposal.ViewedAt == nil {
		t.Fatal("expected viewed_at to be set")
	}
	firstViewed := *proposal.ViewedAt
	updatesBefore := len(repo.updates)

	if _, err := svc.ViewByToken(context.Background(), proposal.PublicToken); err != nil {
		t.Fatalf("second view failed: %v", err)
	}
	if len(repo.updates) != updatesBefore {
		t.Fatal("second view must not write")
	}
	if !proposal.ViewedAt.Equal(firstViewed) {
		t.Fatal("viewed_at must be set only once")
	}
}

func TestApproveFromViewed(t *testing.T) {
	proposal := draftProposal(uuid.New())
	proposal.Status = enums.ProposalStatusViewed
	repo := &stubProposalsRepo{proposal: proposal}
	svc := newTestService(t, repo)

	view, err := svc.Approve(context.Background(), proposal.PublicToken)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if view.Status != enums.ProposalStatusApproved {
		t.Fatalf("expected approved got %s", view.Status)
	}
	if proposal.ApprovedAt == nil {
		t.Fatal("expected approved_at to be set")
	}
}

func TestApproveRejectsExpired(t *testing.T) {
	proposal := draftProposal(uuid.New())
	proposal.Status = enums.ProposalStatusSent
	past := time.Now().UTC().Add(-24 * time.Hour)
	proposal.ValidUntil = &past
	repo := &stubProposalsRepo{proposal: proposal}
	svc := newTestService(t, repo)

	_, err := svc.Approve(context.Background(), proposal.PublicToken)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict got %v", err)
	}
	if proposal.Status != enums.ProposalStatusSent {
		t.Fatalf("stored status must be untouched, got %s", proposal.Status)
	}
}

func TestExpiredProposalStillViewable(t *testing.T) {
	proposal := draftProposal(uuid.New())
	proposal.Status = enums.ProposalStatusSent
	past := time.Now().UTC().Add(-time.Hour)
	proposal.ValidUntil = &past
	repo := &stubProposalsRepo{proposal: proposal}
	svc := newTestService(t, repo)

	view, err := svc.ViewByToken(context.Background(), proposal.PublicToken)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if !view.Expired {
		t.Fatal("expected expired view flag")
	}
	if view.Status != enums.ProposalStatusSent {
		t.Fatalf("stored status must remain sent, got %s", view.Status)
	}
	if len(repo.updates) != 0 {
		t.Fatal("expired view must not transition to viewed")
	}
}

func TestRequestChangesStoresNotes(t *testing.T) {
	proposal := draftProposal(uuid.New())
	proposal.Status = enums.ProposalStatusViewed
	repo := &stubProposalsRepo{proposal: proposal}
	svc := newTestService(t, repo)

	err := svc.RequestChanges(context.Background(), RequestChangesInput{
		PublicToken: proposal.PublicToken,
		Notes:       "Trocar o pacote de fotos",
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if proposal.Status != enums.ProposalStatusChangesRequested {
		t.Fatalf("expected changes_requested got %s", proposal.Status)
	}
	if proposal.ChangeRequestNotes == nil || *proposal.ChangeRequestNotes != "Trocar o pacote de fotos" {
		t.Fatalf("unexpected notes %v", proposal.ChangeRequestNotes)
	}
}

func TestSubmitClientDataRendersContract(t *testing.T) {
	proposal := draftProposal(uuid.New())
	proposal.Status = enums.ProposalStatusApproved
	repo := &stubProposalsRepo{proposal: proposal}
	svc := newTestService(t, repo)

	rendered, err := svc.SubmitClientData(context.Background(), ClientDataInput{
		PublicToken: proposal.PublicToken,
		ClientName:  "Maria",
		Values:      map[string]string{"nome": "Maria"},
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if !strings.Contains(rendered, "Maria") {
		t.Fatalf("expected rendered contract to contain client name, got %q", rendered)
	}
	if !strings.Contains(rendered, "R$ 130,00") {
		t.Fatalf("expected rendered total, got %q", rendered)
	}
	if proposal.ClientData["nome"] != "Maria" {
		t.Fatalf("client data not persisted: %v", proposal.ClientData)
	}
}

func TestSubmitClientDataRequiresApproval(t *testing.T) {
	proposal := draftProposal(uuid.New())
	proposal.Status = enums.ProposalStatusViewed
	repo := &stubProposalsRepo{proposal: proposal}
	svc := newTestService(t, repo)

	_, err := svc.SubmitClientData(context.Background(), ClientDataInput{
		PublicToken: proposal.PublicToken,
		Values:      map[string]string{"nome": "Maria"},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict got %v", err)
	}
}

func TestSignHappyPath(t *testing.T) {
	proposal := draftProposal(uuid.New())
	proposal.Status = enums.ProposalStatusApproved
	repo := &stubProposalsRepo{proposal: proposal}
	uploader := &stubUploader{}
	svc, err := NewService(repo, stubTxRunner{}, uploader, nil, Config{PublicTokenBytes: 32})
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}

	view, err := svc.Sign(context.Background(), SignInput{
		PublicToken:      proposal.PublicToken,
		ClientName:       "Maria",
		ClientData:       map[string]string{"nome": "Maria"},
		SignatureImage:   []byte("signature-bytes"),
		AcceptedContract: true,
		ClientIP:         "203.0.113.9",
		UserAgent:        "test-agent",
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if view.Status != enums.ProposalStatusSigned {
		t.Fatalf("expected signed got %s", view.Status)
	}
	if uploader.calls != 1 {
		t.Fatalf("expected one upload got %d", uploader.calls)
	}
	if repo.contract == nil {
		t.Fatal("expected contract record")
	}
	if !strings.Contains(repo.contract.SignedContent, "Maria") {
		t.Fatalf("signed content not rendered: %q", repo.contract.SignedContent)
	}
	if strings.Contains(repo.contract.SignedContent, "{{") {
		t.Fatalf("signed content has unexpanded tokens: %q", repo.contract.SignedContent)
	}
	if repo.contract.ClientIP != "203.0.113.9" {
		t.Fatalf("unexpected client ip %q", repo.contract.ClientIP)
	}
}

func TestSignRejectsDraft(t *testing.T) {
	proposal := draftProposal(uuid.New())
	repo := &stubProposalsRepo{proposal: proposal}
	uploader := &stubUploader{}
	svc, _ := NewService(repo, stubTxRunner{}, uploader, nil, Config{PublicTokenBytes: 32})

	_, err := svc.Sign(context.Background(), SignInput{
		PublicToken:      proposal.PublicToken,
		ClientData:       map[string]string{"nome": "Maria"},
		SignatureImage:   []byte("sig"),
		AcceptedContract: true,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict got %v", err)
	}
	if repo.contract != nil {
		t.Fatal("contract must not be created")
	}
	if uploader.calls != 0 {
		t.Fatal("signature must not be uploaded")
	}
}

func TestSignRejectsMissingRequiredFields(t *testing.T) {
	proposal := draftProposal(uuid.New())
	proposal.Status = enums.ProposalStatusApproved
	repo := &stubProposalsRepo{proposal: proposal}
	svc := newTestService(t, repo)

	_, err := svc.Sign(context.Background(), SignInput{
		PublicToken:      proposal.PublicToken,
		SignatureImage:   []byte("sig"),
		AcceptedContract: true,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
}

func TestSignRequiresAcceptanceAndSignature(t *testing.T) {
	proposal := draftProposal(uuid.New())
	proposal.Status = enums.ProposalStatusApproved
	repo := &stubProposalsRepo{proposal: proposal}
	svc := newTestService(t, repo)

	_, err := svc.Sign(context.Background(), SignInput{
		PublicToken:    proposal.PublicToken,
		ClientData:     map[string]string{"nome": "Maria"},
		SignatureImage: []byte("sig"),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error without acceptance, got %v", err)
	}

	_, err = svc.Sign(context.Background(), SignInput{
		PublicToken:      proposal.PublicToken,
		ClientData:       map[string]string{"nome": "Maria"},
		AcceptedContract: true,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error without signature, got %v", err)
	}
}

func TestConfirmPaymentFromSigned(t *testing.T) {
	profileID := uuid.New()
	proposal := draftProposal(profileID)
	proposal.Status = enums.ProposalStatusSigned
	repo := &stubProposalsRepo{proposal: proposal}
	svc := newTestService(t, repo)

	err := svc.ConfirmPayment(context.Background(), ConfirmPaymentInput{
		ProfileID:  profileID,
		ProposalID: proposal.ID,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if proposal.Status != enums.ProposalStatusPaid {
		t.Fatalf("expected paid got %s", proposal.Status)
	}
}

func TestConfirmPaymentRejectsUnsigned(t *testing.T) {
	profileID := uuid.New()
	proposal := draftProposal(profileID)
	proposal.Status = enums.ProposalStatusApproved
	repo := &stubProposalsRepo{proposal: proposal}
	svc := newTestService(t, repo)

	err := svc.ConfirmPayment(context.Background(), ConfirmPaymentInput{
		ProfileID:  profileID,
		ProposalID: proposal.ID,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict got %v", err)
	}
}

func TestUploadReceiptKeepsStatus(t *testing.T) {
	proposal := draftProposal(uuid.New())
	proposal.Status = enums.ProposalStatusSigned
	repo := &stubProposalsRepo{proposal: proposal}
	svc := newTestService(t, repo)

	url, err := svc.UploadReceipt(context.Background(), ReceiptInput{
		PublicToken: proposal.PublicToken,
		Receipt:     []byte("pdf-bytes"),
		ContentType: "application/pdf",
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if url == "" {
		t.Fatal("expected receipt url")
	}
	if proposal.Status != enums.ProposalStatusSigned {
		t.Fatalf("receipt upload must not change status, got %s", proposal.Status)
	}
	if proposal.ReceiptURL == nil {
		t.Fatal("expected receipt_url to be stored")
	}
}

func TestUploadReceiptRequiresSignedProposal(t *testing.T) {
	proposal := draftProposal(uuid.New())
	proposal.Status = enums.ProposalStatusViewed
	repo := &stubProposalsRepo{proposal: proposal}
	svc := newTestService(t, repo)

	_, err := svc.UploadReceipt(context.Background(), ReceiptInput{
		PublicToken: proposal.PublicToken,
		Receipt:     []byte("pdf-bytes"),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict got %v", err)
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	profileID := uuid.New()
	proposal := draftProposal(profileID)
	proposal.Status = enums.ProposalStatusCancelled
	repo := &stubProposalsRepo{proposal: proposal}
	svc := newTestService(t, repo)

	if err := svc.Cancel(context.Background(), profileID, proposal.ID); err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(repo.updates) != 0 {
		t.Fatal("cancelling twice must not write")
	}
}

func TestCancelRejectsPaid(t *testing.T) {
	profileID := uuid.New()
	proposal := draftProposal(profileID)
	proposal.Status = enums.ProposalStatusPaid
	repo := &stubProposalsRepo{proposal: proposal}
	svc := newTestService(t, repo)

	err := svc.Cancel(context.Background(), profileID, proposal.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict got %v", err)
	}
}

func TestDeleteRejectsSigned(t *testing.T) {
	profileID := uuid.New()
	proposal := draftProposal(profileID)
	proposal.Status = enums.ProposalStatusSigned
	repo := &stubProposalsRepo{proposal: proposal}
	svc := newTestService(t, repo)

	err := svc.Delete(context.Background(), profileID, proposal.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict got %v", err)
	}
	if repo.proposal == nil {
		t.Fatal("proposal must not be deleted")
	}
}

func TestDeleteRejectsCancelledWithContract(t *testing.T) {
	profileID := uuid.New()
	proposal := draftProposal(profileID)
	proposal.Status = enums.ProposalStatusCancelled
	proposal.Contract = &models.Contract{
		ProposalID:    proposal.ID,
		SignedContent: "Contrato assinado",
		SignedAt:      time.Now().Add(-time.Hour),
	}
	repo := &stubProposalsRepo{proposal: proposal}
	svc := newTestService(t, repo)

	err := svc.Delete(context.Background(), profileID, proposal.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict got %v", err)
	}
	if repo.proposal == nil {
		t.Fatal("proposal must not be deleted")
	}
}

func TestSignedContractReturnsFrozenCopy(t *testing.T) {
	proposal := draftProposal(uuid.New())
	proposal.Status = enums.ProposalStatusSigned
	signedAt := time.Now().Add(-time.Hour)
	proposal.Contract = &models.Contract{
		ProposalID:        proposal.ID,
		SignedContent:     "Contrato de Maria no valor R$ 130,00",
		SignatureImageURL: "https://storage.test/signatures/maria.png",
		SignedAt:          signedAt,
	}
	repo := &stubProposalsRepo{proposal: proposal}
	svc := newTestService(t, repo)

	contract, err := svc.SignedContract(context.Background(), proposal.PublicToken)
	if err != nil {
		t.Fatalf("expected contract got %v", err)
	}
	if contract.SignedContent != "Contrato de Maria no valor R$ 130,00" {
		t.Fatalf("unexpected contract content %q", contract.SignedContent)
	}
	if !contract.SignedAt.Equal(signedAt) {
		t.Fatalf("unexpected signed_at %v", contract.SignedAt)
	}
}

func TestSignedContractMissingBeforeSigning(t *testing.T) {
	proposal := draftProposal(uuid.New())
	proposal.Status = enums.ProposalStatusApproved
	repo := &stubProposalsRepo{proposal: proposal}
	svc := newTestService(t, repo)

	_, err := svc.SignedContract(context.Background(), proposal.PublicToken)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found got %v", err)
	}
}
