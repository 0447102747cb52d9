package datagrid

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const (
	defaultChartHeight = "360px"
	// DefaultEChartsAssetsHost is where the ECharts runtime loads from unless
	// GO_DATAGRID_ECHARTS_CDN overrides it.
	DefaultEChartsAssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"
	envEChartsCDN            = "GO_DATAGRID_ECHARTS_CDN"
)

// ChartKind selects the summary chart shape.
type ChartKind string

const (
	ChartBar ChartKind = "bar"
	ChartPie ChartKind = "pie"
)

// SummaryChart is a rendered value-count chart for one column.
type SummaryChart struct {
	Column string       `json:"column"`
	Kind   ChartKind    `json:"kind"`
	Title  string       `json:"title"`
	HTML   string       `json:"chart_html"`
	Counts []ValueCount `json:"counts"`
}

// SummaryChartProvider renders value-count charts for grid columns.
type SummaryChartProvider struct {
	cache      RenderCache
	theme      string
	assetsHost string
}

// SummaryChartOption customizes provider behavior.
type SummaryChartOption func(*SummaryChartProvider)

// WithChartCache injects a render cache. Nil disables caching.
func WithChartCache(cache RenderCache) SummaryChartOption {
	return func(p *SummaryChartProvider) {
		p.cache = cache
	}
}

// WithChartTheme sets the chart theme (defaults to Westeros).
func WithChartTheme(theme string) SummaryChartOption {
	return func(p *SummaryChartProvider) {
		p.theme = theme
	}
}

// WithChartAssetsHost points the ECharts runtime at a different host.
func WithChartAssetsHost(host string) SummaryChartOption {
	return func(p *SummaryChartProvider) {
		p.assetsHost = ensureTrailingSlash(host)
	}
}

// NewSummaryChartProvider builds a provider with a five minute cache.
func NewSummaryChartProvider(options ...SummaryChartOption) *SummaryChartProvider {
	p := &SummaryChartProvider{
		cache:      NewChartCache(5 * time.Minute),
		theme:      types.ThemeWesteros,
		assetsHost: EChartsAssetsHost(),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// EChartsAssetsHost returns the assets host, respecting GO_DATAGRID_ECHARTS_CDN.
func EChartsAssetsHost() string {
	if host := strings.TrimSpace(os.Getenv(envEChartsCDN)); host != "" {
		return ensureTrailingSlash(host)
	}
	return DefaultEChartsAssetsHost
}

// Render charts how often each value of column key occurs in the snapshot.
func (p *SummaryChartProvider) Render(def GridDefinition, snap Snapshot, key string, kind ChartKind) (SummaryChart, error) {
	col, ok := def.Column(key)
	if !ok {
		return SummaryChart{}, fmt.Errorf("datagrid: grid %s has no column %s", def.Code, key)
	}
	if kind == "" {
		kind = ChartBar
	}
	if kind != ChartBar && kind != ChartPie {
		return SummaryChart{}, fmt.Errorf("datagrid: unsupported chart kind %q", kind)
	}
	counts := CountValues(snap.Rows, key)
	title := columnLabel(col)
	render := func() (string, error) {
		switch kind {
		case ChartPie:
			return p.renderPie(title, counts)
		default:
			return p.renderBar(title, counts)
		}
	}
	var (
		html string
		err  error
	)
	if p.cache != nil {
		html, err = p.cache.GetOrRender(ChartKey{Code: def.Code, Column: key, Kind: kind, Version: snap.Version}, render)
	} else {
		html, err = render()
	}
	if err != nil {
		return SummaryChart{}, err
	}
	return SummaryChart{Column: key, Kind: kind, Title: title, HTML: html, Counts: counts}, nil
}

// Invalidate drops cached charts of grid code when the cache supports it.
func (p *SummaryChartProvider) Invalidate(code string) {
	if inv, ok := p.cache.(interface{ Invalidate(string) }); ok {
		inv.Invalidate(code)
	}
}

func (p *SummaryChartProvider) renderBar(title string, counts []ValueCount) (string, error) {
	bar := charts.NewBar()
	bar.SetGlobalOptions(p.globalChartOptions(title)...)
	labels := make([]string, len(counts))
	data := make([]opts.BarData, len(counts))
	for i, c := range counts {
		labels[i] = c.Value
		data[i] = opts.BarData{Name: c.Value, Value: c.Count}
	}
	bar.SetXAxis(labels)
	bar.AddSeries(title, data)
	return renderChart(bar)
}

func (p *SummaryChartProvider) renderPie(title string, counts []ValueCount) (string, error) {
	pie := charts.NewPie()
	pie.SetGlobalOptions(p.globalChartOptions(title)...)
	data := make([]opts.PieData, len(counts))
	for i, c := range counts {
		data[i] = opts.PieData{Name: c.Value, Value: c.Count}
	}
	pie.AddSeries(title, data)
	return renderChart(pie)
}

func (p *SummaryChartProvider) globalChartOptions(title string) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:  p.theme,
		Width:  "100%",
		Height: defaultChartHeight,
	}
	if p.assetsHost != "" {
		initOpts.AssetsHost = p.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func ensureTrailingSlash(value string) string {
	if value == "" || strings.HasSuffix(value, "/") {
		return value
	}
	return value + "/"
}
