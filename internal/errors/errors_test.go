package errors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	recerrors "github.com/ginjaninja78/hscode-reconciler/internal/errors"
)

func TestNoDataError(t *testing.T) {
	t.Run("matches sentinel", func(t *testing.T) {
		err := recerrors.NewNoDataError(recerrors.StageInvoice)
		assert.True(t, errors.Is(err, recerrors.ErrNoData))
		assert.True(t, recerrors.IsNoData(err))
	})

	t.Run("wrapped", func(t *testing.T) {
		err := fmt.Errorf("failed to reconcile: %w", recerrors.NewNoDataError(recerrors.StagePairing))
		assert.True(t, recerrors.IsNoData(err))
		assert.Equal(t, recerrors.StagePairing, recerrors.StageOf(err))
	})

	t.Run("other errors", func(t *testing.T) {
		err := errors.New("boom")
		assert.False(t, recerrors.IsNoData(err))
		assert.Equal(t, recerrors.Stage(""), recerrors.StageOf(err))
	})
}

func TestNoDataErrorMessagesAreDistinct(t *testing.T) {
	stages := []recerrors.Stage{
		recerrors.StageInvoice,
		recerrors.StagePackingList,
		recerrors.StagePairing,
		recerrors.StageDescription,
	}

	seen := make(map[string]bool)
	for _, stage := range stages {
		msg := recerrors.NewNoDataError(stage).Error()
		assert.NotEmpty(t, msg)
		assert.False(t, seen[msg], "duplicate message for stage %s", stage)
		seen[msg] = true
	}

	assert.Contains(t, recerrors.NewNoDataError(recerrors.StageInvoice).Error(), "invoice")
	assert.Contains(t, recerrors.NewNoDataError(recerrors.StagePackingList).Error(), "packing list")
	assert.Contains(t, recerrors.NewNoDataError(recerrors.StagePairing).Error(), "positionally-overlapping")
	assert.Contains(t, recerrors.NewNoDataError("other").Error(), "other")
}

func TestDescriptionNoDataMessage(t *testing.T) {
	assert.Equal(t, "no description data found in column A starting from row 12",
		recerrors.NewNoDataError(recerrors.StageDescription).Error())

	err := recerrors.NewDescriptionNoDataError("C", 5)
	assert.Equal(t, "no description data found in column C starting from row 5", err.Error())
	assert.Equal(t, recerrors.StageDescription, recerrors.StageOf(err))
}
