package catalog

import (
	"context"
	"errors"
	"io"
	"testing"

	pkgerrors "github.com/angelmondragon/omnicart-backend/pkg/errors"
	"github.com/angelmondragon/omnicart-backend/pkg/logger"
	"github.com/angelmondragon/omnicart-backend/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	data *Data
	err  error
}

func (s *stubSource) Fetch(context.Context) (*Data, error) {
	return s.data, s.err
}

func TestStoreDerivedCollections(t *testing.T) {
	store := newTestStore(t)

	oversized, err := store.Products("oversized")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 5}, ids(oversized))
	for _, p := range oversized {
		assert.Equal(t, "polos", p.Collection)
	}

	collections := store.Collections()
	require.Len(t, collections, 3)
	assert.Equal(t, "polos", collections[0].Name)
	assert.Equal(t, 7, collections[0].Count)
	assert.Equal(t, DefaultCollectionDescription, collections[1].Description)
	assert.True(t, collections[2].Derived)
	assert.Equal(t, "polos", collections[2].Base)
	assert.Equal(t, 2, collections[2].Count)
	assert.Equal(t, 9, store.Size())
	assert.Len(t, store.All(), 9)
}

func TestStoreUnknownCollection(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Products("hats")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestStoreFindByIDField(t *testing.T) {
	store := newTestStore(t)

	p, err := store.Find(ProductRef{Collection: "bottoms", ID: 11})
	require.NoError(t, err)
	assert.Equal(t, "Chinos", p.Name)

	_, err = store.Find(ProductRef{Collection: "bottoms", ID: 1})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, "Product not found", typed.Message())
}

func TestStoreHandsOutCopies(t *testing.T) {
	store := newTestStore(t)

	p, err := store.Find(ProductRef{Collection: "polos", ID: 1})
	require.NoError(t, err)
	p.Sizes[0] = "XXS"
	p.Name = "changed"

	list, err := store.Products("polos")
	require.NoError(t, err)
	list[0].Tags[0] = "mutated"

	again, err := store.Find(ProductRef{Collection: "polos", ID: 1})
	require.NoError(t, err)
	assert.Equal(t, "Classic Polo", again.Name)
	assert.Equal(t, "S", again.Sizes[0])
	assert.Equal(t, "casual", again.Tags[0])
}

func TestStoreReloadKeepsPreviousSnapshotOnFailure(t *testing.T) {
	source := &stubSource{data: testData()}
	reg := prometheus.NewRegistry()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	store := NewStore(source, logg, metrics.NewStorefrontMetrics(reg))
	ctx := context.Background()

	assert.Equal(t, 0, store.Size())
	assert.True(t, store.LoadedAt().IsZero())

	require.NoError(t, store.Reload(ctx))
	assert.Equal(t, 9, store.Size())
	loadedAt := store.LoadedAt()

	source.err = errors.New("disk gone")
	err := store.Reload(ctx)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
	assert.Equal(t, 9, store.Size())
	assert.Equal(t, loadedAt, store.LoadedAt())

	source.err = nil
	bad := testData()
	bad.Collections[0].Products[0].Price = -1
	source.data = bad
	require.Error(t, store.Reload(ctx))
	assert.Equal(t, 9, store.Size())
}

func TestStoreWithoutSourceStaysEmpty(t *testing.T) {
	store := NewStore(nil, nil, nil)
	require.Error(t, store.Reload(context.Background()))

	_, err := store.Products("polos")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.Empty(t, store.Collections())
}

func TestValidateDataReportsEveryProblem(t *testing.T) {
	data := testData()
	data.Collections[0].Products[1].ID = 1
	data.Collections[0].Products[2].Rating = 6
	data.Collections[1].Products[0].Badge = "HOT"
	data.Collections = append(data.Collections, CollectionData{Name: "oversized"})

	err := ValidateData(data)
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "duplicate id")
	assert.Contains(t, msg, "polos product 3")
	assert.Contains(t, msg, "bottoms product 10")
	assert.Contains(t, msg, "derived")
}

func TestSearchAcrossCollections(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	all, err := store.Search(ctx, "", "", "price-low")
	require.NoError(t, err)
	assert.Len(t, all, 9)
	assert.Equal(t, int64(999), all[0].Price)

	byTag, err := store.Search(ctx, "", "GIFT", "")
	require.NoError(t, err)
	assert.Equal(t, []int{10}, ids(byTag))

	byDescription, err := store.Search(ctx, "bottoms", "stretch", "")
	require.NoError(t, err)
	assert.Equal(t, []int{11}, ids(byDescription))

	derived, err := store.Search(ctx, "oversized", "heavy", "")
	require.NoError(t, err)
	assert.Equal(t, []int{5}, ids(derived))

	_, err = store.Search(ctx, "hats", "", "")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
