package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kakeibo/kakeibo-csv/internal/ledger"
	"kakeibo/kakeibo-csv/internal/logging"
	"kakeibo/kakeibo-csv/internal/models"
	"kakeibo/kakeibo-csv/internal/parsererror"
	"kakeibo/kakeibo-csv/internal/profile"
	"kakeibo/kakeibo-csv/internal/statement"
)

func testProfile() models.FormatProfile {
	p := profile.Rakuten(models.DefaultSourceTag)
	p.Encoding = "utf-8"
	return p
}

func row(line int, date, store, amount string) statement.Row {
	return statement.Row{Line: line, Fields: map[string]string{
		"利用日":      date,
		"利用店名・商品名": store,
		"利用金額":     amount,
	}}
}

func sampleRows() []statement.Row {
	return []statement.Row{
		row(2, "2024/01/01", "セブン-イレブン", "1,200"),
		row(3, "2024/01/05", "東京ガス", "4,500"),
		row(4, "2024/01/09", "AMAZON.CO.JP", "-3,980"),
		row(5, "2024/01/12", "JR東日本 電車", "200"),
		row(6, "2024/01/20", "謎の店", "980"),
	}
}

func newTestPipeline(store ledger.Store) (*Pipeline, *logging.MockLogger) {
	logger := logging.NewMockLogger()
	pl := NewPipeline(store, nil, logger)
	pl.newRunID = func() string { return "run-test" }
	return pl, logger
}

func TestPipeline_DuplicateIdempotence(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()
	pl, _ := newTestPipeline(store)
	opts := Options{Dedup: true}

	first, err := pl.Run(ctx, sampleRows(), testProfile(), opts)
	require.NoError(t, err)
	assert.Equal(t, 5, first.Imported)
	assert.Equal(t, 0, first.Duplicates)
	assert.Equal(t, "run-test", first.RunID)

	second, err := pl.Run(ctx, sampleRows(), testProfile(), opts)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Imported)
	assert.Equal(t, 5, second.Duplicates)

	stored, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 5)
}

func TestPipeline_DedupDisabledImportsAgain(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()
	pl, _ := newTestPipeline(store)

	_, err := pl.Run(ctx, sampleRows(), testProfile(), Options{Dedup: true})
	require.NoError(t, err)
	again, err := pl.Run(ctx, sampleRows(), testProfile(), Options{Dedup: false})
	require.NoError(t, err)
	assert.Equal(t, 5, again.Imported)
	assert.Equal(t, 0, again.Duplicates)
}

func TestPipeline_SameRunSeesEarlierRows(t *testing.T) {
	rows := []statement.Row{
		row(2, "2024/01/01", "セブン-イレブン", "1,200"),
		row(3, "2024/01/01", "セブン-イレブン", "1,200"),
	}
	pl, _ := newTestPipeline(ledger.NewMemoryStore())

	res, err := pl.Run(context.Background(), rows, testProfile(), Options{Dedup: true})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 1, res.Duplicates)
}

func TestPipeline_DateRangeFilter(t *testing.T) {
	rows := []statement.Row{
		row(2, "2024/01/01", "a", "100"),
		row(3, "2024/02/15", "b", "200"),
		row(4, "2024/03/01", "c", "300"),
	}
	r, err := models.NewDateRange(
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	store := ledger.NewMemoryStore()
	pl, _ := newTestPipeline(store)
	res, err := pl.Run(context.Background(), rows, testProfile(), Options{DateRange: &r, Dedup: true})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 2, res.Filtered)
	assert.Equal(t, 0, res.Errors)

	stored, _ := store.List(context.Background())
	require.Len(t, stored, 1)
	assert.Equal(t, "2024-02-15", stored[0].Date)
}

func TestPipeline_RowErrorIsolation(t *testing.T) {
	rows := sampleRows()
	rows[2] = row(4, "2024/13/45", "AMAZON.CO.JP", "3,980")

	pl, logger := newTestPipeline(ledger.NewMemoryStore())
	res, err := pl.Run(context.Background(), rows, testProfile(), Options{Dedup: true})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Errors)
	assert.Equal(t, 4, res.Imported)
	assert.Len(t, logger.GetEntriesByLevel("WARN"), 1)
}

func TestPipeline_AmountsArePositiveAndClassified(t *testing.T) {
	ctx := context.Background()
	for _, negate := range []bool{false, true} {
		store := ledger.NewMemoryStore()
		pl, _ := newTestPipeline(store)
		p := testProfile()
		p.NegateAmount = negate

		res, err := pl.Run(ctx, sampleRows(), p, Options{})
		require.NoError(t, err)
		require.Equal(t, 5, res.Imported)

		stored, err := store.List(ctx)
		require.NoError(t, err)
		for _, e := range stored {
			assert.True(t, e.Amount.IsPositive(), "negate=%v amount=%s", negate, e.Amount)
		}
		assert.True(t, decimal.NewFromInt(3980).Equal(stored[2].Amount))
		assert.Equal(t, "クレジットカード: AMAZON.CO.JP", stored[2].Description)
	}
}

func TestPipeline_Breakdown(t *testing.T) {
	pl, _ := newTestPipeline(ledger.NewMemoryStore())
	res, err := pl.Run(context.Background(), sampleRows(), testProfile(), Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, res.ByCategory[models.CategoryFood].Count)
	assert.Equal(t, 1, res.ByCategory[models.CategoryUtilities].Count)
	assert.Equal(t, 1, res.ByCategory[models.CategoryEntertainment].Count)
	assert.Equal(t, 1, res.ByCategory[models.CategoryTransport].Count)
	assert.Equal(t, 1, res.ByCategory[models.CategoryOther].Count)
}

func TestPipeline_MissingColumnIsFatal(t *testing.T) {
	rows := []statement.Row{{Line: 2, Fields: map[string]string{"日付": "2024/01/01", "金額": "100"}}}
	store := ledger.NewMemoryStore()
	pl, _ := newTestPipeline(store)

	_, err := pl.Run(context.Background(), rows, testProfile(), Options{})
	require.Error(t, err)
	assert.True(t, parsererror.IsFatal(err))
	assert.True(t, errors.Is(err, parsererror.ErrMissingColumn))

	stored, _ := store.List(context.Background())
	assert.Empty(t, stored)
}

func TestPipeline_Preview(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore(ledger.Expense{
		Date: "2024-01-01", Category: models.CategoryFood,
		Amount: decimal.NewFromInt(1200), Description: "カード: セブン-イレブン",
	})
	pl, _ := newTestPipeline(store)

	res, outcomes, err := pl.Preview(ctx, sampleRows(), testProfile(), Options{Dedup: true})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Imported)
	assert.Equal(t, 1, res.Duplicates)
	require.Len(t, outcomes, 5)
	assert.Equal(t, StatusDuplicate, outcomes[0].Status)
	assert.Equal(t, StatusImported, outcomes[1].Status)

	stored, _ := store.List(ctx)
	assert.Len(t, stored, 1, "preview must not write")
}

func TestPipeline_PreviewStatementChecksColumns(t *testing.T) {
	ctx := context.Background()
	pl, _ := newTestPipeline(ledger.NewMemoryStore())

	st := &statement.Statement{
		Path:   "card.csv",
		Header: []string{"利用日", "利用店名・商品名", "利用金額"},
		Rows:   sampleRows(),
	}
	res, outcomes, err := pl.PreviewStatement(ctx, st, testProfile(), Options{})
	require.NoError(t, err)
	assert.Equal(t, 5, res.Imported)
	assert.Len(t, outcomes, 5)

	st.Header = []string{"利用日", "利用金額"}
	_, _, err = pl.PreviewStatement(ctx, st, testProfile(), Options{})
	assert.ErrorIs(t, err, parsererror.ErrMissingColumn)
}

func TestPipeline_ImportFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "card.csv")
	content := "\ufeff利用日,利用店名・商品名,利用者,利用金額\n2025/10/01,ローソン,本人,540\n2025/10/02,スタバ,本人,\"1,000\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	store, err := ledger.OpenSQLite(filepath.Join(dir, "budget.db"), nil)
	require.NoError(t, err)
	defer store.Close()

	pl, _ := newTestPipeline(store)
	p := profile.Rakuten(models.DefaultSourceTag)

	res, err := pl.ImportFile(context.Background(), path, p, Options{Dedup: true})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)

	res, err = pl.ImportFile(context.Background(), path, p, Options{Dedup: true})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Imported)
	assert.Equal(t, 2, res.Duplicates)

	stored, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestPipeline_ImportFileGuessesColumns(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "other.csv")
	require.NoError(t, os.WriteFile(path, []byte("日付,摘要,金額\n2024-02-01,ドラッグストア,-1280\n"), 0600))

	p := profile.Other(models.DefaultSourceTag)
	p.DateFormat = "%Y-%m-%d"

	store := ledger.NewMemoryStore()
	pl, _ := newTestPipeline(store)
	res, err := pl.ImportFile(context.Background(), path, p, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 1, res.ByCategory[models.CategoryOther].Count, "the other profile has no rules")
}

func TestPipeline_ImportFileFatal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wrong.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2\n"), 0600))

	pl, _ := newTestPipeline(ledger.NewMemoryStore())
	_, err := pl.ImportFile(context.Background(), path, testProfile(), Options{})
	require.Error(t, err)

	var fatal *parsererror.FatalImportError
	require.True(t, errors.As(err, &fatal))
	assert.Equal(t, path, fatal.FilePath)
	assert.True(t, errors.Is(err, parsererror.ErrMissingColumn))
}

func TestPipeline_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := ledger.NewMemoryStore()
	pl, _ := newTestPipeline(store)
	res, err := pl.Run(ctx, sampleRows(), testProfile(), Options{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, res.Imported)
}
