package routes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/luminastudio/lumina-backend/internal/auth"
	"github.com/luminastudio/lumina-backend/internal/paymentconfigs"
	"github.com/luminastudio/lumina-backend/internal/proposals"
	"github.com/luminastudio/lumina-backend/internal/templates"
	pkgAuth "github.com/luminastudio/lumina-backend/pkg/auth"
	"github.com/luminastudio/lumina-backend/pkg/auth/session"
	"github.com/luminastudio/lumina-backend/pkg/config"
	"github.com/luminastudio/lumina-backend/pkg/db/models"
	"github.com/luminastudio/lumina-backend/pkg/enums"
	"github.com/luminastudio/lumina-backend/pkg/logger"
	"github.com/luminastudio/lumina-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

// memStore is an in-memory RedisStore for routing tests.
type memStore struct {
	mu      sync.Mutex
	data    map[string]string
	counter map[string]int64
}

func newMemStore() *memStore {
	return &memStore{data: map[string]string{}, counter: map[string]int64{}}
}

func (m *memStore) Ping(context.Context) error {
	return nil
}

func (m *memStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *memStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = fmt.Sprint(value)
	return true, nil
}

func (m *memStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *memStore) IdempotencyKey(scope, id string) string {
	return "idempotency:" + scope + ":" + id
}

func (m *memStore) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter[key]++
	return m.counter[key], nil
}

func (m *memStore) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	count, err := m.IncrWithTTL(ctx, "rl:"+scope, window)
	if err != nil {
		return false, 0, err
	}
	return count <= limit, count, nil
}

type stubSessionChecker struct {
	ok bool
}

func (s stubSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	return s.ok, nil
}

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return &auth.LoginResponse{}, nil
}

func (stubAuthService) Register(ctx context.Context, req auth.RegisterRequest) (*auth.LoginResponse, error) {
	return &auth.LoginResponse{}, nil
}

func (stubAuthService) Refresh(ctx context.Context, expiredAccessToken, refreshToken string) (*auth.RefreshResponse, error) {
	return &auth.RefreshResponse{}, nil
}

func (stubAuthService) Logout(ctx context.Context, accessID string) error {
	return nil
}

type stubProposalService struct {
	listFn func(ctx context.Context, profileID uuid.UUID, params pagination.Params, filters proposals.ListFilters) (*proposals.ProposalList, error)
	viewFn func(ctx context.Context, token string) (*proposals.PublicProposal, error)
}

func (s stubProposalService) Create(ctx context.Context, input proposals.CreateProposalInput) (*models.Proposal, error) {
	panic("unimplemented")
}

func (s stubProposalService) Update(ctx context.Context, input proposals.UpdateProposalInput) (*models.Proposal, error) {
	panic("unimplemented")
}

func (s stubProposalService) Get(ctx context.Context, profileID, proposalID uuid.UUID) (*models.Proposal, error) {
	panic("unimplemented")
}

func (s stubProposalService) List(ctx context.Context, profileID uuid.UUID, params pagination.Params, filters proposals.ListFilters) (*proposals.ProposalList, error) {
	if s.listFn != nil {
		return s.listFn(ctx, profileID, params, filters)
	}
	return &proposals.ProposalList{}, nil
}

func (s stubProposalService) Send(ctx context.Context, profileID, proposalID uuid.UUID) error {
	return nil
}

func (s stubProposalService) Cancel(ctx context.Context, profileID, proposalID uuid.UUID) error {
	return nil
}

func (s stubProposalService) ConfirmPayment(ctx context.Context, input proposals.ConfirmPaymentInput) error {
	return nil
}

func (s stubProposalService) Delete(ctx context.Context, profileID, proposalID uuid.UUID) error {
	return nil
}

func (s stubProposalService) ViewByToken(ctx context.Context, token string) (*proposals.PublicProposal, error) {
	if s.viewFn != nil {
		return s.viewFn(ctx, token)
	}
	return &proposals.PublicProposal{Status: enums.ProposalStatusViewed}, nil
}

func (s stubProposalService) Approve(ctx context.Context, token string) (*proposals.PublicProposal, error) {
	return &proposals.PublicProposal{Status: enums.ProposalStatusApproved}, nil
}

func (s stubProposalService) RequestChanges(ctx context.Context, input proposals.RequestChangesInput) error {
	return nil
}

func (s stubProposalService) SubmitClientData(ctx context.Context, input proposals.ClientDataInput) (string, error) {
	return "", nil
}

func (s stubProposalService) Sign(ctx context.Context, input proposals.SignInput) (*proposals.PublicProposal, error) {
	return &proposals.PublicProposal{Status: enums.ProposalStatusSigned}, nil
}

func (s stubProposalService) UploadReceipt(ctx context.Context, input proposals.ReceiptInput) (string, error) {
	return "", nil
}

func (s stubProposalService) SignedContract(ctx context.Context, token string) (*models.Contract, error) {
	return &models.Contract{}, nil
}

type stubTemplateService struct{}

func (stubTemplateService) Create(ctx context.Context, input templates.CreateTemplateInput) (*models.ProposalTemplate, error) {
	panic("unimplemented")
}

func (stubTemplateService) Update(ctx context.Context, input templates.UpdateTemplateInput) (*models.ProposalTemplate, error) {
	panic("unimplemented")
}

func (stubTemplateService) Get(ctx context.Context, profileID, templateID uuid.UUID) (*models.ProposalTemplate, error) {
	panic("unimplemented")
}

func (stubTemplateService) List(ctx context.Context, profileID uuid.UUID) ([]models.ProposalTemplate, error) {
	return nil, nil
}

func (stubTemplateService) Delete(ctx context.Context, profileID, templateID uuid.UUID) error {
	return nil
}

type stubPaymentConfigService struct{}

func (stubPaymentConfigService) Create(ctx context.Context, input paymentconfigs.CreateInput) (*models.PaymentConfig, error) {
	panic("unimplemented")
}

func (stubPaymentConfigService) Update(ctx context.Context, input paymentconfigs.UpdateInput) (*models.PaymentConfig, error) {
	panic("unimplemented")
}

func (stubPaymentConfigService) Get(ctx context.Context, profileID, configID uuid.UUID) (*models.PaymentConfig, error) {
	panic("unimplemented")
}

func (stubPaymentConfigService) List(ctx context.Context, profileID uuid.UUID) ([]models.PaymentConfig, error) {
	return nil, nil
}

func (stubPaymentConfigService) Delete(ctx context.Context, profileID, configID uuid.UUID) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:                 "secret",
			Issuer:                 "issuer",
			ExpirationMinutes:      60,
			RefreshTokenTTLMinutes: 120,
		},
		Proposals: config.ProposalsConfig{
			PublicRateLimitWindow:  time.Minute,
			PublicRateLimitIPLimit: 100,
		},
		AuthRateLimit: config.AuthRateLimitConfig{
			LoginWindow:     15 * time.Minute,
			LoginIPLimit:    30,
			LoginEmailLimit: 10,
			RegisterWindow:  time.Hour,
			RegisterIPLimit: 10,
		},
	}
}

func newTestRouter(cfg *config.Config, svc proposals.Service, checker session.AccessSessionChecker) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(Deps{
		Config:               cfg,
		Logger:               logg,
		DB:                   stubPinger{},
		Redis:                newMemStore(),
		GCS:                  stubPinger{},
		SessionChecker:       checker,
		AuthService:          stubAuthService{},
		ProposalService:      svc,
		TemplateService:      stubTemplateService{},
		PaymentConfigService: stubPaymentConfigService{},
	})
}

func TestPrivateGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig(), stubProposalService{}, stubSessionChecker{ok: true})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/proposals", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestPrivateGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, stubProposalService{}, stubSessionChecker{ok: true})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/proposals", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for proposal list got %d", resp.Code)
	}
}

func TestPrivateGroupRejectsRevokedSession(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, stubProposalService{}, stubSessionChecker{ok: false})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/proposals", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for revoked session got %d", resp.Code)
	}
}

func TestPublicProposalViewNeedsNoAuth(t *testing.T) {
	var seenToken string
	svc := stubProposalService{
		viewFn: func(ctx context.Context, token string) (*proposals.PublicProposal, error) {
			seenToken = token
			return &proposals.PublicProposal{Status: enums.ProposalStatusViewed}, nil
		},
	}
	router := newTestRouter(testConfig(), svc, stubSessionChecker{ok: true})
	req := httptest.NewRequest(http.MethodGet, "/api/public/propostas/tok-abc123", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public view got %d", resp.Code)
	}
	if seenToken != "tok-abc123" {
		t.Fatalf("expected path token to reach the service, got %q", seenToken)
	}
}

func TestPublicSignRequiresIdempotencyKey(t *testing.T) {
	router := newTestRouter(testConfig(), stubProposalService{}, stubSessionChecker{ok: true})
	body := `{"client_name":"Maria","signature_image":"aGVsbG8=","accepted_contract":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/public/propostas/tok-abc123/sign", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without Idempotency-Key got %d", resp.Code)
	}
}

func TestPublicSurfaceRateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.Proposals.PublicRateLimitIPLimit = 2
	router := newTestRouter(cfg, stubProposalService{}, stubSessionChecker{ok: true})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/public/propostas/tok-abc123", nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("request %d expected 200 got %d", i+1, resp.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/public/propostas/tok-abc123", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 once the window is exhausted got %d", resp.Code)
	}
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig(), stubProposalService{}, stubSessionChecker{ok: true})
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
}

func TestHealthReady(t *testing.T) {
	router := newTestRouter(testConfig(), stubProposalService{}, stubSessionChecker{ok: true})
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for readiness got %d", resp.Code)
	}
}

func buildToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		ProfileID: uuid.New(),
		JTI:       session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}
