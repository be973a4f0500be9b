package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/promoscan/pkg/promoscan/internalerr"
	"github.com/cognicore/promoscan/pkg/promoscan/store"
)

func sampleRun(id string, at time.Time) store.Run {
	old := 9.90
	pct := 24
	end := "07.10"
	return store.Run{
		ID:        id,
		Source:    "billa-" + id + ".txt",
		Retailer:  "billa",
		CreatedAt: at,
		Products: []store.Product{
			{Name: "Кашкавал Витоша 400г", Category: "Млечни продукти", Price: 7.50, OldPrice: &old, DiscountPercent: &pct, IsPromotional: true, PromoEnd: &end, Confidence: 1},
			{Name: "Хляб Добруджа 500г", Category: "Хляб и тестени", Price: 1.29, Confidence: 0.9},
		},
	}
}

func TestSaveAndGetRun(t *testing.T) {
	ctx := context.Background()
	st := New()
	defer st.Close()

	run := sampleRun("r1", time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC))
	require.NoError(t, st.SaveRun(ctx, run))

	got, err := st.GetRun(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "billa", got.Retailer)
	require.Len(t, got.Products, 2)
	assert.Equal(t, "r1", got.Products[0].RunID)
	require.NotNil(t, got.Products[0].OldPrice)
	assert.Equal(t, 9.90, *got.Products[0].OldPrice)

	// returned runs are copies
	*got.Products[0].OldPrice = 1
	again, err := st.GetRun(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 9.90, *again.Products[0].OldPrice)
}

func TestSaveRunErrors(t *testing.T) {
	ctx := context.Background()
	st := New()

	err := st.SaveRun(ctx, store.Run{})
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)

	run := sampleRun("r1", time.Now())
	require.NoError(t, st.SaveRun(ctx, run))
	assert.ErrorIs(t, st.SaveRun(ctx, run), internalerr.ErrDuplicate)

	_, err = st.GetRun(ctx, "missing")
	assert.ErrorIs(t, err, internalerr.ErrNotFound)
}

func TestListRunsNewestFirst(t *testing.T) {
	ctx := context.Background()
	st := New()
	base := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, st.SaveRun(ctx, sampleRun("a", base)))
	require.NoError(t, st.SaveRun(ctx, sampleRun("b", base.Add(time.Hour))))
	require.NoError(t, st.SaveRun(ctx, sampleRun("c", base.Add(2*time.Hour))))

	runs, err := st.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{runs[0].ID, runs[1].ID, runs[2].ID})
	assert.Equal(t, 2, runs[0].ProductCount)

	limited, err := st.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestProductsByCategory(t *testing.T) {
	ctx := context.Background()
	st := New()
	base := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, st.SaveRun(ctx, sampleRun("old", base)))
	require.NoError(t, st.SaveRun(ctx, sampleRun("new", base.Add(time.Hour))))

	products, err := st.ProductsByCategory(ctx, "Млечни продукти", 0)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "new", products[0].RunID)
	assert.Equal(t, "old", products[1].RunID)

	one, err := st.ProductsByCategory(ctx, "Млечни продукти", 1)
	require.NoError(t, err)
	assert.Len(t, one, 1)

	none, err := st.ProductsByCategory(ctx, "Напитки", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestBlacklistTerms(t *testing.T) {
	ctx := context.Background()
	st := New()

	require.NoError(t, st.AddBlacklistTerms(ctx, []string{"  Промо ", "ВИЖ   повече", ""}))
	terms, err := st.BlacklistTerms(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"виж повече", "промо"}, terms)

	require.NoError(t, st.RemoveBlacklistTerms(ctx, []string{"промо", "missing"}))
	terms, err = st.BlacklistTerms(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"виж повече"}, terms)
}

func TestReplaceProducts(t *testing.T) {
	ctx := context.Background()
	st := New()

	require.NoError(t, st.SaveRun(ctx, sampleRun("r1", time.Now())))
	run, err := st.GetRun(ctx, "r1")
	require.NoError(t, err)

	kept := run.Products[1:]
	kept[0].Category = "Основни храни"
	require.NoError(t, st.ReplaceProducts(ctx, "r1", kept))

	got, err := st.GetRun(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, got.Products, 1)
	assert.Equal(t, "Основни храни", got.Products[0].Category)
	assert.Equal(t, "r1", got.Products[0].RunID)

	err = st.ReplaceProducts(ctx, "missing", nil)
	assert.ErrorIs(t, err, internalerr.ErrNotFound)
}
