package proposals

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/luminastudio/lumina-backend/pkg/db/models"
	"github.com/luminastudio/lumina-backend/pkg/enums"
	"github.com/luminastudio/lumina-backend/pkg/pagination"
)

func setupProposalsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	proposals := `
CREATE TABLE IF NOT EXISTS proposals (
  id TEXT PRIMARY KEY,
  profile_id TEXT NOT NULL,
  public_token TEXT NOT NULL UNIQUE,
  lead_id TEXT,
  template_id TEXT,
  payment_config_id TEXT,
  proposal_type TEXT NOT NULL DEFAULT 'photo',
  status TEXT NOT NULL DEFAULT 'draft',
  title TEXT NOT NULL,
  client_name TEXT NOT NULL DEFAULT '',
  client_email TEXT NOT NULL DEFAULT '',
  client_data TEXT,
  use_manual_total INTEGER NOT NULL DEFAULT 0,
  manual_amount TEXT NOT NULL DEFAULT '0',
  discount_amount TEXT NOT NULL DEFAULT '0',
  total_amount TEXT NOT NULL DEFAULT '0',
  contract_content TEXT,
  contract_file_url TEXT,
  required_fields TEXT,
  change_request_notes TEXT,
  cover_video_url TEXT,
  revision_limit INTEGER,
  delivery_formats TEXT,
  estimated_duration_min INTEGER,
  reference_links TEXT,
  soundtrack_links TEXT,
  receipt_url TEXT,
  sent_at DATETIME,
  viewed_at DATETIME,
  approved_at DATETIME,
  valid_until DATETIME,
  version INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	proposalItems := `
CREATE TABLE IF NOT EXISTS proposal_items (
  id TEXT PRIMARY KEY,
  proposal_id TEXT NOT NULL,
  name TEXT NOT NULL,
  details TEXT NOT NULL DEFAULT '',
  quantity INTEGER NOT NULL DEFAULT 1,
  unit_price TEXT NOT NULL DEFAULT '0',
  show_price INTEGER NOT NULL DEFAULT 1,
  order_index INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	contracts := `
CREATE TABLE IF NOT EXISTS contracts (
  id TEXT PRIMARY KEY,
  proposal_id TEXT NOT NULL UNIQUE,
  signed_content TEXT NOT NULL,
  client_data TEXT,
  signature_image_url TEXT NOT NULL,
  signed_at DATETIME NOT NULL,
  client_ip TEXT NOT NULL DEFAULT '',
  user_agent TEXT NOT NULL DEFAULT '',
  created_at DATETIME
);`
	require.NoError(t, db.Exec(proposals).Error)
	require.NoError(t, db.Exec(proposalItems).Error)
	require.NoError(t, db.Exec(contracts).Error)
	return db
}

func createProposal(t *testing.T, db *gorm.DB, profileID uuid.UUID, title string, status enums.ProposalStatus, created time.Time) *models.Proposal {
	t.Helper()

	proposal := &models.Proposal{
		ID:          uuid.New(),
		ProfileID:   profileID,
		PublicToken: uuid.NewString(),
		Status:      status,
		Title:       title,
		TotalAmount: decimal.NewFromInt(100),
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	require.NoError(t, db.Create(proposal).Error)
	return proposal
}

func TestRepositoryReplaceItems(t *testing.T) {
	db := setupProposalsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	proposal := createProposal(t, db, uuid.New(), "Ensaio", enums.ProposalStatusDraft, time.Now().UTC())
	original := []models.ProposalItem{
		{ID: uuid.New(), ProposalID: proposal.ID, Name: "Old A", Quantity: 1, UnitPrice: decimal.NewFromInt(10)},
		{ID: uuid.New(), ProposalID: proposal.ID, Name: "Old B", Quantity: 1, UnitPrice: decimal.NewFromInt(20)},
		{ID: uuid.New(), ProposalID: proposal.ID, Name: "Old C", Quantity: 1, UnitPrice: decimal.NewFromInt(30)},
	}
	require.NoError(t, db.Create(&original).Error)

	replacement := []models.ProposalItem{
		{ID: uuid.New(), Name: "New A", Quantity: 2, UnitPrice: decimal.NewFromInt(50)},
		{ID: uuid.New(), Name: "New B", Quantity: 1, UnitPrice: decimal.NewFromInt(75)},
	}
	require.NoError(t, repo.ReplaceItems(ctx, proposal.ID, replacement))

	var stored []models.ProposalItem
	require.NoError(t, db.Where("proposal_id = ?", proposal.ID).Order("order_index ASC").Find(&stored).Error)
	require.Len(t, stored, 2)
	assert.Equal(t, "New A", stored[0].Name)
	assert.Equal(t, 0, stored[0].OrderIndex)
	assert.Equal(t, "New B", stored[1].Name)
	assert.Equal(t, 1, stored[1].OrderIndex)
}

func TestRepositoryReplaceItemsWithEmptySet(t *testing.T) {
	db := setupProposalsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	proposal := createProposal(t, db, uuid.New(), "Ensaio", enums.ProposalStatusDraft, time.Now().UTC())
	item := models.ProposalItem{ID: uuid.New(), ProposalID: proposal.ID, Name: "Only", Quantity: 1, UnitPrice: decimal.NewFromInt(10)}
	require.NoError(t, db.Create(&item).Error)

	require.NoError(t, repo.ReplaceItems(ctx, proposal.ID, nil))

	var count int64
	require.NoError(t, db.Model(&models.ProposalItem{}).Where("proposal_id = ?", proposal.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRepositoryUpdateWithVersion(t *testing.T) {
	db := setupProposalsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	proposal := createProposal(t, db, uuid.New(), "Ensaio", enums.ProposalStatusDraft, time.Now().UTC())

	affected, err := repo.UpdateWithVersion(ctx, proposal.ID, 0, map[string]any{"title": "Atualizado"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	reloaded, err := repo.FindByID(ctx, proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, "Atualizado", reloaded.Title)
	assert.Equal(t, 1, reloaded.Version)

	stale, err := repo.UpdateWithVersion(ctx, proposal.ID, 0, map[string]any{"title": "Conflito"})
	require.NoError(t, err)
	assert.Zero(t, stale)
}

func TestRepositoryFindByPublicToken(t *testing.T) {
	db := setupProposalsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	proposal := createProposal(t, db, uuid.New(), "Ensaio", enums.ProposalStatusSent, time.Now().UTC())
	items := []models.ProposalItem{
		{ID: uuid.New(), ProposalID: proposal.ID, Name: "Second", Quantity: 1, UnitPrice: decimal.NewFromInt(10), OrderIndex: 1},
		{ID: uuid.New(), ProposalID: proposal.ID, Name: "First", Quantity: 1, UnitPrice: decimal.NewFromInt(10), OrderIndex: 0},
	}
	require.NoError(t, db.Create(&items).Error)

	found, err := repo.FindByPublicToken(ctx, proposal.PublicToken)
	require.NoError(t, err)
	require.Len(t, found.Items, 2)
	assert.Equal(t, "First", found.Items[0].Name)
	assert.Equal(t, "Second", found.Items[1].Name)

	_, err = repo.FindByPublicToken(ctx, "no-such-token")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListFiltersAndPaginates(t *testing.T) {
	db := setupProposalsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	profileID := uuid.New()
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		createProposal(t, db, profileID, "Ensaio", enums.ProposalStatusDraft, base.Add(time.Duration(i)*time.Minute))
	}
	sent := createProposal(t, db, profileID, "Casamento na praia", enums.ProposalStatusSent, base.Add(10*time.Minute))
	createProposal(t, db, uuid.New(), "Outro perfil", enums.ProposalStatusDraft, base)

	list, err := repo.List(ctx, profileID, pagination.Params{Limit: 2}, ListFilters{})
	require.NoError(t, err)
	require.Len(t, list.Proposals, 2)
	require.NotEmpty(t, list.NextCursor)
	assert.Equal(t, sent.ID, list.Proposals[0].ID)

	rest, err := repo.List(ctx, profileID, pagination.Params{Limit: 2, Cursor: list.NextCursor}, ListFilters{})
	require.NoError(t, err)
	assert.Len(t, rest.Proposals, 2)
	assert.Empty(t, rest.NextCursor)

	status := enums.ProposalStatusSent
	filtered, err := repo.List(ctx, profileID, pagination.Params{}, ListFilters{Status: &status})
	require.NoError(t, err)
	require.Len(t, filtered.Proposals, 1)
	assert.Equal(t, sent.ID, filtered.Proposals[0].ID)

	byQuery, err := repo.List(ctx, profileID, pagination.Params{}, ListFilters{Query: "praia"})
	require.NoError(t, err)
	require.Len(t, byQuery.Proposals, 1)
	assert.Equal(t, sent.ID, byQuery.Proposals[0].ID)
}

func TestRepositoryDeleteRemovesItems(t *testing.T) {
	db := setupProposalsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	proposal := createProposal(t, db, uuid.New(), "Ensaio", enums.ProposalStatusDraft, time.Now().UTC())
	item := models.ProposalItem{ID: uuid.New(), ProposalID: proposal.ID, Name: "Only", Quantity: 1, UnitPrice: decimal.NewFromInt(10)}
	require.NoError(t, db.Create(&item).Error)

	require.NoError(t, repo.Delete(ctx, proposal.ID))

	var proposalsLeft, itemsLeft int64
	require.NoError(t, db.Model(&models.Proposal{}).Count(&proposalsLeft).Error)
	require.NoError(t, db.Model(&models.ProposalItem{}).Where("proposal_id = ?", proposal.ID).Count(&itemsLeft).Error)
	assert.Zero(t, proposalsLeft)
	assert.Zero(t, itemsLeft)
}

func TestRepositoryCountPastValidityByStatus(t *testing.T) {
	db := setupProposalsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	past := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)

	expired := createProposal(t, db, uuid.New(), "Vencida", enums.ProposalStatusSent, now)
	require.NoError(t, db.Model(expired).Update("valid_until", past).Error)

	open := createProposal(t, db, uuid.New(), "Aberta", enums.ProposalStatusSent, now)
	require.NoError(t, db.Model(open).Update("valid_until", future).Error)

	signed := createProposal(t, db, uuid.New(), "Assinada", enums.ProposalStatusSigned, now)
	require.NoError(t, db.Model(signed).Update("valid_until", past).Error)

	count, err := repo.CountPastValidityByStatus(ctx, enums.ProposalStatusSent, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	signedCount, err := repo.CountPastValidityByStatus(ctx, enums.ProposalStatusSigned, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, signedCount)
}
