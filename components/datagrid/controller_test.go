package datagrid

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRenderer struct {
	calls int
	name  string
	data  any
	err   error
}

func (r *stubRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	r.calls++
	r.name = name
	r.data = data
	if r.err != nil {
		return "", r.err
	}
	for _, w := range out {
		_, _ = io.WriteString(w, "<table>")
	}
	return "<table>", nil
}

func TestControllerViewBuildsCellsAndFilters(t *testing.T) {
	svc := newPeopleService(t, Options{})
	controller := NewController(ControllerOptions{Service: svc})

	view, err := controller.View(context.Background(), ViewerContext{}, "people", Query{SortKey: "name", Filters: map[string]string{"status": "active"}})
	require.NoError(t, err)
	assert.Equal(t, "People", view.Name)
	require.Len(t, view.Rows, 1)
	assert.Equal(t, ViewRow{ID: "1", Cells: []string{"Bob", "Active", ""}}, view.Rows[0])
	require.Len(t, view.Filters, 1)
	assert.Equal(t, "status", view.Filters[0].Key)
	assert.Equal(t, "active", view.Filters[0].Selected)
	assert.Equal(t, []string{"Active", "Inactive"}, view.Filters[0].Options)
	assert.Equal(t, "Showing 1 to 1 of 1", view.Summary)
}

func TestControllerRenderTemplate(t *testing.T) {
	svc := newPeopleService(t, Options{})
	renderer := &stubRenderer{}
	controller := NewController(ControllerOptions{Service: svc, Renderer: renderer})

	var buf bytes.Buffer
	require.NoError(t, controller.RenderTemplate(context.Background(), ViewerContext{UserID: "u"}, "people", Query{}, &buf))
	assert.Equal(t, "<table>", buf.String())
	assert.Equal(t, defaultGridTemplate, renderer.name)
	data, ok := renderer.data.(map[string]any)
	require.True(t, ok)
	assert.IsType(t, GridView{}, data["grid"])

	renderer.err = errors.New("bad template")
	assert.Error(t, controller.RenderTemplate(context.Background(), ViewerContext{}, "people", Query{}, &buf))
	assert.Error(t, NewController(ControllerOptions{Service: svc}).RenderTemplate(context.Background(), ViewerContext{}, "people", Query{}, &buf))
}

func TestControllerWithoutService(t *testing.T) {
	_, err := NewController(ControllerOptions{}).View(context.Background(), ViewerContext{}, "people", Query{})
	assert.Error(t, err)
}
