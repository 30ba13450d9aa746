package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadSeed(t *testing.T) *Catalog {
	t.Helper()
	cat, err := Load("")
	require.NoError(t, err)
	return cat
}

func TestLoadSeed(t *testing.T) {
	cat := loadSeed(t)
	assert.Equal(t, 10, cat.Count())

	p, err := cat.ByID("pixel-8a")
	require.NoError(t, err)
	assert.Equal(t, "Google Pixel 8a", p.Model)
	assert.Equal(t, 29999, p.Price)
	assert.True(t, p.FiveG)
	assert.Equal(t, "50MP main + 12MP ultrawide", p.Camera.Rear)
}

func TestLoadPrefersDataFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phones.json")
	phones := []Phone{{ID: "test-1", Model: "Test Phone", Brand: "Test", Price: 9999}}
	data, err := json.Marshal(phones)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))

	cat, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, cat.Count())
}

func TestLoadFallsBackToSeedWhenFileMissing(t *testing.T) {
	cat, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, 10, cat.Count())
}

func TestSearchFilters(t *testing.T) {
	cat := loadSeed(t)

	budget := cat.Search(Filter{MaxPrice: 15000})
	require.NotEmpty(t, budget)
	for _, p := range budget {
		assert.LessOrEqual(t, p.Price, 15000)
	}

	apple := cat.Search(Filter{Brand: "apple"})
	require.NotEmpty(t, apple)
	for _, p := range apple {
		assert.Equal(t, "Apple", p.Brand)
	}

	gaming := cat.Search(Filter{MinRAM: 12, MinRefreshRate: 120})
	require.NotEmpty(t, gaming)
	for _, p := range gaming {
		assert.GreaterOrEqual(t, p.RAM, 12)
		assert.GreaterOrEqual(t, p.RefreshRate, 120)
	}

	assert.Empty(t, cat.Search(Filter{Brand: "Nokia"}))
}

func TestByModelPartialMatch(t *testing.T) {
	cat := loadSeed(t)

	p, err := cat.ByModel("pixel")
	require.NoError(t, err)
	assert.Equal(t, "pixel-8a", p.ID)

	p, err = cat.ByModel("IPHONE 15 PRO")
	require.NoError(t, err)
	assert.Equal(t, "iphone-15-pro-max", p.ID)

	_, err = cat.ByModel("galaxy fold")
	assert.ErrorIs(t, err, ErrPhoneNotFound)
}

func TestResolve(t *testing.T) {
	cat := loadSeed(t)

	p, err := cat.Resolve("oneplus-12r")
	require.NoError(t, err)
	assert.Equal(t, "OnePlus 12R", p.Model)

	p, err = cat.Resolve("nothing phone")
	require.NoError(t, err)
	assert.Equal(t, "nothing-phone2", p.ID)
}

func TestUpsertAndSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phones.json")
	cat, err := Load(path)
	require.NoError(t, err)

	cat.Upsert(Phone{ID: "new-1", Model: "New Phone", Brand: "New", Price: 100})
	assert.Equal(t, 11, cat.Count())

	// 同 ID 覆盖而不是新增
	cat.Upsert(Phone{ID: "new-1", Model: "New Phone v2", Brand: "New", Price: 200})
	assert.Equal(t, 11, cat.Count())

	require.NoError(t, cat.Save())

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 11, reloaded.Count())

	// 写回后按价格升序
	phones := reloaded.All()
	for i := 1; i < len(phones); i++ {
		assert.LessOrEqual(t, phones[i-1].Price, phones[i].Price)
	}

	p, err := reloaded.ByID("new-1")
	require.NoError(t, err)
	assert.Equal(t, "New Phone v2", p.Model)
}

func TestSaveRequiresDataPath(t *testing.T) {
	cat := loadSeed(t)
	assert.Error(t, cat.Save())
}
