package datagrid

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChartCacheStoresEntry(t *testing.T) {
	cache := NewChartCache(time.Minute)
	key := ChartKey{Code: "users", Column: "department", Kind: ChartBar, Version: 1}
	calls := 0
	render := func() (string, error) {
		calls++
		return "html", nil
	}

	val1, err := cache.GetOrRender(key, render)
	require.NoError(t, err)
	val2, err := cache.GetOrRender(key, render)
	require.NoError(t, err)

	assert.Equal(t, "html", val1)
	assert.Equal(t, val1, val2)
	assert.Equal(t, 1, calls)
}

func TestChartCacheExpires(t *testing.T) {
	cache := NewChartCache(time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	key := ChartKey{Code: "users", Column: "department", Kind: ChartBar, Version: 1}
	calls := 0
	render := func() (string, error) {
		calls++
		return "fresh", nil
	}

	_, err := cache.GetOrRender(key, render)
	require.NoError(t, err)
	now = now.Add(2 * time.Minute)
	_, err = cache.GetOrRender(key, render)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
}

func TestChartCacheReplacesOlderVersions(t *testing.T) {
	cache := NewChartCache(time.Minute)
	v1 := ChartKey{Code: "users", Column: "department", Kind: ChartBar, Version: 1}
	v2 := v1
	v2.Version = 2

	_, err := cache.GetOrRender(v1, func() (string, error) { return "old", nil })
	require.NoError(t, err)
	html, err := cache.GetOrRender(v2, func() (string, error) { return "new", nil })
	require.NoError(t, err)
	assert.Equal(t, "new", html)
	assert.Equal(t, 1, cache.Len())

	// a reader still holding version 1 renders but does not evict version 2
	html, err = cache.GetOrRender(v1, func() (string, error) { return "stale", nil })
	require.NoError(t, err)
	assert.Equal(t, "stale", html)
	html, err = cache.GetOrRender(v2, func() (string, error) { return "again", nil })
	require.NoError(t, err)
	assert.Equal(t, "new", html)

	pie := v2
	pie.Kind = ChartPie
	_, _ = cache.GetOrRender(pie, func() (string, error) { return "pie", nil })
	_, _ = cache.GetOrRender(ChartKey{Code: "orders", Column: "status", Version: 1}, func() (string, error) { return "x", nil })
	assert.Equal(t, 3, cache.Len())
	cache.Invalidate("users")
	assert.Equal(t, 1, cache.Len())
}

func TestChartCacheSkipsErrors(t *testing.T) {
	cache := NewChartCache(time.Minute)
	_, err := cache.GetOrRender(ChartKey{Code: "users"}, func() (string, error) { return "", errors.New("nope") })
	assert.Error(t, err)
	assert.Zero(t, cache.Len())
}

func TestSummaryChartProviderRendersCounts(t *testing.T) {
	cache := NewChartCache(time.Minute)
	provider := NewSummaryChartProvider(WithChartCache(cache), WithChartAssetsHost("https://cdn.example.com/echarts"))
	def := DemoUsersDefinition()
	rows := []Row{
		{"id": "1", "department": "Sales"},
		{"id": "2", "department": "HR"},
		{"id": "3", "department": "Sales"},
	}
	snap := Snapshot{Rows: rows, Version: 1}
	chart, err := provider.Render(def, snap, "department", "")
	require.NoError(t, err)
	assert.Equal(t, ChartBar, chart.Kind)
	assert.Equal(t, "Department", chart.Title)
	assert.Equal(t, []ValueCount{{Value: "Sales", Count: 2}, {Value: "HR", Count: 1}}, chart.Counts)
	assert.Contains(t, chart.HTML, "https://cdn.example.com/echarts/")
	assert.Equal(t, 1, cache.Len())

	snap = Snapshot{Rows: append(rows, Row{"id": "4", "department": "HR"}), Version: 2}
	chart, err = provider.Render(def, snap, "department", ChartBar)
	require.NoError(t, err)
	assert.Equal(t, []ValueCount{{Value: "Sales", Count: 2}, {Value: "HR", Count: 2}}, chart.Counts)
	assert.Equal(t, 1, cache.Len())

	provider.Invalidate(def.Code)
	assert.Zero(t, cache.Len())

	_, err = provider.Render(def, snap, "nope", ChartBar)
	assert.Error(t, err)
	_, err = provider.Render(def, snap, "department", ChartKind("radar"))
	assert.Error(t, err)
}

func TestEChartsAssetsHostFromEnv(t *testing.T) {
	t.Setenv(envEChartsCDN, "https://assets.example.com")
	assert.Equal(t, "https://assets.example.com/", EChartsAssetsHost())
	t.Setenv(envEChartsCDN, "")
	assert.Equal(t, DefaultEChartsAssetsHost, EChartsAssetsHost())
}
