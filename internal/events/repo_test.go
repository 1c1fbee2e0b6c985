package events

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/eventpos-backend/pkg/db/dbtest"
	"github.com/angelmondragon/eventpos-backend/pkg/db/models"
	dbtypes "github.com/angelmondragon/eventpos-backend/pkg/db/types"
	"github.com/angelmondragon/eventpos-backend/pkg/enums"
)

func TestRepositoryRoundTrip(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()

	typeID := uuid.New()
	event := &models.Event{Name: "Spring fair", MainCurrency: enums.CurrencyUSD, RoundUp: true, PromotableTypeIDs: dbtypes.UUIDArray{typeID}}
	require.NoError(t, repo.Create(ctx, event))
	require.NotEqual(t, uuid.Nil, event.ID)

	got, err := repo.FindByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, "Spring fair", got.Name)
	assert.True(t, got.RoundUp)
	assert.Equal(t, dbtypes.UUIDArray{typeID}, got.PromotableTypeIDs)

	locked, err := repo.IsLocked(ctx, event.ID)
	require.NoError(t, err)
	assert.False(t, locked)

	now := time.Now().UTC()
	require.NoError(t, repo.SetLocked(ctx, event.ID, true, now))
	got, err = repo.FindByID(ctx, event.ID)
	require.NoError(t, err)
	assert.True(t, got.Locked)
	require.NotNil(t, got.LockedAt)

	require.NoError(t, repo.SetLocked(ctx, event.ID, false, now))
	got, err = repo.FindByID(ctx, event.ID)
	require.NoError(t, err)
	assert.False(t, got.Locked)
	assert.Nil(t, got.LockedAt)

	assert.ErrorIs(t, repo.SetLocked(ctx, uuid.New(), true, now), gorm.ErrRecordNotFound)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
