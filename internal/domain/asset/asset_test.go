package asset

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finvault-backend/internal/domain/shared"
)

func TestNew(t *testing.T) {
	t.Run("SuccessfulCreation", func(t *testing.T) {
		userID := uuid.New()

		a, err := New(userID, shared.AssetTypeAsset, "HDFC Savings Account")

		require.NoError(t, err)
		require.NotNil(t, a)
		assert.NotEqual(t, uuid.Nil, a.ID)
		assert.Equal(t, userID, a.UserID)
		assert.Equal(t, shared.AssetTypeAsset, a.Type)
		assert.Equal(t, "HDFC Savings Account", a.Name)
		assert.Equal(t, DefaultCurrency, a.Currency)
		assert.Nil(t, a.Balance)
		assert.Nil(t, a.TotalValue)
		assert.False(t, a.CreatedAt.IsZero())
	})

	t.Run("NewAssetsStartInactive", func(t *testing.T) {
		for _, assetType := range []shared.AssetType{
			shared.AssetTypeAsset,
			shared.AssetTypeLiability,
			shared.AssetTypeInsurance,
		} {
			a, err := New(uuid.New(), assetType, "Some Asset")
			require.NoError(t, err)
			assert.Equal(t, shared.AssetStatusInactive, a.Status)
		}
	})

	t.Run("EmptyName", func(t *testing.T) {
		a, err := New(uuid.New(), shared.AssetTypeAsset, "")

		assert.ErrorIs(t, err, ErrEmptyName)
		assert.Nil(t, a)
	})

	t.Run("InvalidType", func(t *testing.T) {
		a, err := New(uuid.New(), shared.AssetType("equity"), "Reliance Shares")

		assert.ErrorIs(t, err, ErrInvalidType)
		assert.Nil(t, a)
	})
}

func TestAsset_Approve(t *testing.T) {
	a, err := New(uuid.New(), shared.AssetTypeInsurance, "LIC Jeevan Anand")
	require.NoError(t, err)
	require.Equal(t, shared.AssetStatusInactive, a.Status)

	a.Approve()

	assert.Equal(t, shared.AssetStatusApproved, a.Status)
}

func TestAsset_RecordUpdate(t *testing.T) {
	t.Run("SnapshotsCurrentValues", func(t *testing.T) {
		balance := decimal.NewFromFloat(45000.50)
		a := &Asset{
			Balance: &balance,
			Status:  shared.AssetStatusActive,
		}

		a.RecordUpdate("email-123", "HDFC Statement July")

		require.Len(t, a.Metadata.UpdateHistory, 1)
		entry := a.Metadata.UpdateHistory[0]
		require.NotNil(t, entry.PreviousBalance)
		assert.True(t, entry.PreviousBalance.Equal(balance))
		assert.Nil(t, entry.PreviousTotalValue)
		assert.Equal(t, shared.AssetStatusActive, entry.PreviousStatus)
		assert.Equal(t, "email-123", entry.EmailID)
		assert.Equal(t, "HDFC Statement July", entry.Subject)
		assert.False(t, entry.Timestamp.IsZero())
	})

	t.Run("HistoryIsAppendOnly", func(t *testing.T) {
		first := decimal.NewFromInt(100)
		a := &Asset{Balance: &first, Status: shared.AssetStatusInactive}

		a.RecordUpdate("email-1", "first")
		second := decimal.NewFromInt(200)
		a.Balance = &second
		a.Status = shared.AssetStatusActive
		a.RecordUpdate("email-2", "second")

		require.Len(t, a.Metadata.UpdateHistory, 2)
		assert.True(t, a.Metadata.UpdateHistory[0].PreviousBalance.Equal(first))
		assert.Equal(t, "email-1", a.Metadata.UpdateHistory[0].EmailID)
		assert.True(t, a.Metadata.UpdateHistory[1].PreviousBalance.Equal(second))
		assert.Equal(t, shared.AssetStatusActive, a.Metadata.UpdateHistory[1].PreviousStatus)
	})
}

func TestAsset_BalanceChange(t *testing.T) {
	t.Run("BothPresent", func(t *testing.T) {
		prev := decimal.NewFromFloat(1000.25)
		next := decimal.NewFromFloat(1500.75)
		a := &Asset{Balance: &prev}

		assert.Equal(t, "500.5", a.BalanceChange(&next))
	})

	t.Run("NilTreatedAsZero", func(t *testing.T) {
		next := decimal.NewFromInt(250)
		a := &Asset{}

		assert.Equal(t, "250", a.BalanceChange(&next))
		assert.Equal(t, "0", a.BalanceChange(nil))
	})

	t.Run("NegativeChange", func(t *testing.T) {
		prev := decimal.NewFromInt(1000)
		a := &Asset{Balance: &prev}

		assert.Equal(t, "-1000", a.BalanceChange(nil))
	})
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(shared.AssetStatusInactive))
	assert.True(t, ValidStatus(shared.AssetStatusMatured))
	assert.False(t, ValidStatus(shared.AssetStatus("archived")))
}
