package mem

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docgrid/docgrid/document"
	"github.com/docgrid/docgrid/store"
)

func TestInsertAssignsID(t *testing.T) {
	st := NewStore()
	ctx := context.Background()

	doc, err := st.Insert(ctx, "orders", document.Document{"status": "new"})
	require.Nil(t, err)
	assert.Len(t, doc.ID(), 24)

	// Same id again is a conflict.
	_, err = st.Insert(ctx, "orders", document.Document{"_id": doc.ID()})
	assert.True(t, store.IsKind(err, store.ErrConflict))
}

func TestUpdateByIDIgnoresIDField(t *testing.T) {
	st := NewStore()
	ctx := context.Background()

	doc, err := st.Insert(ctx, "orders", document.Document{"status": "new"})
	require.Nil(t, err)

	updated, err := st.UpdateByID(ctx, "orders", doc.ID(), document.Document{
		"_id":    "ffffffffffffffffffffffff",
		"status": "shipped",
	})
	require.Nil(t, err)
	assert.Equal(t, doc.ID(), updated.ID())
	assert.Equal(t, "shipped", updated["status"])

	_, err = st.UpdateByID(ctx, "orders", "ffffffffffffffffffffffff", document.Document{"x": 1})
	assert.True(t, store.IsKind(err, store.ErrNotFound))
}

func TestFindPage(t *testing.T) {
	st := NewStore()
	var docs []document.Document
	for i := 0; i < 7; i++ {
		docs = append(docs, document.Document{"n": float64(i)})
	}
	st.Seed("orders", docs)

	page, err := st.FindPage(context.Background(), "orders", 1, 5)
	require.Nil(t, err)
	assert.Len(t, page.Data, 5)
	assert.Equal(t, int64(7), page.Total)
	assert.True(t, page.HasNext)
	assert.False(t, page.HasPrev)

	page, err = st.FindPage(context.Background(), "orders", 2, 5)
	require.Nil(t, err)
	assert.Len(t, page.Data, 2)
	assert.False(t, page.HasNext)
	assert.True(t, page.HasPrev)
}

func TestBulkFieldOps(t *testing.T) {
	st := NewStore()
	ctx := context.Background()
	st.Seed("orders", []document.Document{
		{"a": float64(1)},
		{"a": float64(2), "b": "x"},
	})

	n, err := st.SetFieldWhereMissing(ctx, "orders", "b", "dflt")
	require.Nil(t, err)
	assert.Equal(t, int64(1), n)

	has, err := st.HasField(ctx, "orders", "b")
	require.Nil(t, err)
	assert.True(t, has)

	n, err = st.RenameField(ctx, "orders", "b", "c")
	require.Nil(t, err)
	assert.Equal(t, int64(2), n)

	n, err = st.UnsetField(ctx, "orders", "c")
	require.Nil(t, err)
	assert.Equal(t, int64(2), n)

	has, err = st.HasField(ctx, "orders", "c")
	require.Nil(t, err)
	assert.False(t, has)
}

func TestReadsDoNotCreateCollections(t *testing.T) {
	st := NewStore()
	ctx := context.Background()

	_, err := st.Stats(ctx, "ghost")
	require.Nil(t, err)
	_, err = st.FindPage(ctx, "ghost", 1, 10)
	require.Nil(t, err)
	_, err = st.Sample(ctx, "ghost", 10)
	require.Nil(t, err)
	_, err = st.HasField(ctx, "ghost", "x")
	require.Nil(t, err)
	v, err := st.Validator(ctx, "ghost")
	require.Nil(t, err)
	assert.Nil(t, v)
	require.Nil(t, st.DisableValidation(ctx, "ghost"))

	names, err := st.ListCollections(ctx)
	require.Nil(t, err)
	assert.Empty(t, names)
}

func TestValidatorReadableWhileValidationOff(t *testing.T) {
	st := NewStore()
	ctx := context.Background()
	st.Seed("orders", []document.Document{{"a": float64(1)}})

	validator := map[string]any{"$jsonSchema": map[string]any{"bsonType": "object"}}
	require.Nil(t, st.SetValidator(ctx, "orders", validator))
	require.Nil(t, st.DisableValidation(ctx, "orders"))

	// Same as collMod validationLevel=off: the document stays attached.
	got, err := st.Validator(ctx, "orders")
	require.Nil(t, err)
	assert.Equal(t, validator, got)
	assert.True(t, st.ValidationDisabled("orders"))
}

func TestStats(t *testing.T) {
	st := NewStore()
	st.Seed("orders", []document.Document{{"a": float64(1)}})

	stats, err := st.Stats(context.Background(), "orders")
	require.Nil(t, err)
	assert.Equal(t, int64(1), stats.EstimatedCount)
	require.NotNil(t, stats.ExactCount)
	assert.Equal(t, int64(1), *stats.ExactCount)
	assert.NotNil(t, stats.TotalSize)
}
