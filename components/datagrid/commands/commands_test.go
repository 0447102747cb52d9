package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-datagrid/components/datagrid"
)

func TestAddRowCommand(t *testing.T) {
	service := &stubService{}
	telemetry := &stubTelemetry{}
	cmd := NewAddRowCommand(service, telemetry)
	var created datagrid.Row
	err := cmd.Execute(context.Background(), AddRowInput{
		Code:   "people",
		Row:    datagrid.Row{"name": "Ada"},
		Result: &created,
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.addCalls != 1 {
		t.Fatalf("expected add call")
	}
	if created.ID() != "row-1" {
		t.Fatalf("expected result to carry created row, got %v", created)
	}
	if telemetry.calls != 1 {
		t.Fatalf("expected telemetry event")
	}
}

func TestAddRowCommandPropagatesError(t *testing.T) {
	service := &stubService{err: &datagrid.DuplicateIDError{IDs: []string{"1"}}}
	cmd := NewAddRowCommand(service, nil)
	err := cmd.Execute(context.Background(), AddRowInput{Code: "people", Row: datagrid.Row{"id": "1"}})
	if !errors.Is(err, datagrid.ErrDuplicateID) {
		t.Fatalf("expected duplicate id error, got %v", err)
	}
}

func TestCommandsRequireService(t *testing.T) {
	ctx := context.Background()
	if err := NewAddRowCommand(nil, nil).Execute(ctx, AddRowInput{}); err == nil {
		t.Fatalf("expected add command to fail without service")
	}
	if err := NewEditRowCommand(nil, nil).Execute(ctx, EditRowInput{ID: "1"}); err == nil {
		t.Fatalf("expected edit command to fail without service")
	}
	if err := NewDeleteRowCommand(nil, nil).Execute(ctx, DeleteRowInput{ID: "1"}); err == nil {
		t.Fatalf("expected delete command to fail without service")
	}
	if err := NewSetRowsCommand(nil, nil).Execute(ctx, SetRowsInput{}); err == nil {
		t.Fatalf("expected set rows command to fail without service")
	}
	if err := NewRefreshGridCommand(nil, nil).Execute(ctx, RefreshGridInput{}); err == nil {
		t.Fatalf("expected refresh command to fail without service")
	}
	if err := NewSavePreferencesCommand(nil, nil).Execute(ctx, SavePreferencesInput{}); err == nil {
		t.Fatalf("expected preferences command to fail without service")
	}
	if err := NewSeedGridsCommand(nil, nil).Execute(ctx, SeedGridsInput{}); err == nil {
		t.Fatalf("expected seed command to fail without service")
	}
}

func TestEditRowCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewEditRowCommand(service, nil)
	var updated datagrid.Row
	err := cmd.Execute(context.Background(), EditRowInput{
		Code:    "people",
		ID:      "row-7",
		Changes: datagrid.Row{"status": "Inactive"},
		Result:  &updated,
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.editCalls != 1 || service.lastID != "row-7" {
		t.Fatalf("expected edit call for row-7, got %+v", service)
	}
	if updated["status"] != "Inactive" {
		t.Fatalf("expected merged row, got %v", updated)
	}
}

func TestEditRowCommandRequiresID(t *testing.T) {
	service := &stubService{}
	if err := NewEditRowCommand(service, nil).Execute(context.Background(), EditRowInput{Code: "people"}); err == nil {
		t.Fatalf("expected missing id error")
	}
	if service.editCalls != 0 {
		t.Fatalf("expected service not to be called")
	}
}

func TestDeleteRowCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewDeleteRowCommand(service, nil)
	if err := cmd.Execute(context.Background(), DeleteRowInput{Code: "people", ID: "row-2"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.deleteCalls != 1 || service.lastID != "row-2" {
		t.Fatalf("expected delete call for row-2")
	}
}

func TestSetRowsCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewSetRowsCommand(service, nil)
	rows := []datagrid.Row{{"id": "1"}, {"id": "2"}}
	if err := cmd.Execute(context.Background(), SetRowsInput{Code: "people", Rows: rows}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if len(service.setRows) != 2 {
		t.Fatalf("expected rows to be forwarded, got %d", len(service.setRows))
	}
}

func TestRefreshGridCommandDefaultsReason(t *testing.T) {
	service := &stubService{}
	cmd := NewRefreshGridCommand(service, nil)
	if err := cmd.Execute(context.Background(), RefreshGridInput{Event: datagrid.GridEvent{Code: "people"}}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.lastEvent.Reason != "refresh" {
		t.Fatalf("expected default refresh reason, got %q", service.lastEvent.Reason)
	}
}

func TestSavePreferencesCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewSavePreferencesCommand(service, nil)
	q := datagrid.Query{SearchText: "ada"}
	err := cmd.Execute(context.Background(), SavePreferencesInput{
		Viewer: datagrid.ViewerContext{UserID: "user-1"},
		Code:   "people",
		Query:  &q,
		Hidden: []string{"email"},
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.savedQuery.SearchText != "ada" {
		t.Fatalf("expected query to be saved")
	}
	if !service.savedHidden["email"] {
		t.Fatalf("expected hidden columns to be saved")
	}
}

func TestSavePreferencesCommandRequiresViewer(t *testing.T) {
	cmd := NewSavePreferencesCommand(&stubService{}, nil)
	if err := cmd.Execute(context.Background(), SavePreferencesInput{Code: "people"}); err == nil {
		t.Fatalf("expected viewer error")
	}
}

func TestSeedGridsCommand(t *testing.T) {
	service := datagrid.NewService(datagrid.Options{})
	telemetry := &stubTelemetry{}
	manifest := &datagrid.GridManifestDocument{
		Version: "1",
		Grids: []datagrid.ManifestGrid{{
			GridDefinition: datagrid.GridDefinition{
				Code:    "teams",
				Columns: []datagrid.Column{{Key: "id"}, {Key: "name"}},
			},
			Rows: []datagrid.Row{{"id": "t1", "name": "Platform"}},
		}},
	}
	cmd := NewSeedGridsCommand(service, telemetry)
	err := cmd.Execute(context.Background(), SeedGridsInput{Manifest: manifest, Demo: true, DemoRows: 5})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if got := len(service.Definitions()); got != 2 {
		t.Fatalf("expected 2 grids, got %d", got)
	}
	rows, err := service.Rows(context.Background(), datagrid.DemoUsersCode)
	if err != nil {
		t.Fatalf("Rows returned error: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("expected 5 demo rows, got %d", len(rows))
	}
	if telemetry.calls != 1 {
		t.Fatalf("expected seed telemetry")
	}
}

type stubService struct {
	err         error
	addCalls    int
	editCalls   int
	deleteCalls int
	lastID      string
	setRows     []datagrid.Row
	lastEvent   datagrid.GridEvent
	savedQuery  datagrid.Query
	savedHidden map[string]bool
}

func (s *stubService) AddRow(_ context.Context, _ string, partial datagrid.Row) (datagrid.Row, error) {
	s.addCalls++
	if s.err != nil {
		return nil, s.err
	}
	row := partial.Clone()
	row["id"] = "row-1"
	return row, nil
}

func (s *stubService) EditRow(_ context.Context, _ string, id string, partial datagrid.Row) (datagrid.Row, error) {
	s.editCalls++
	s.lastID = id
	if s.err != nil {
		return nil, s.err
	}
	row := partial.Clone()
	row["id"] = id
	return row, nil
}

func (s *stubService) DeleteRow(_ context.Context, _ string, id string) error {
	s.deleteCalls++
	s.lastID = id
	return s.err
}

func (s *stubService) SetRows(_ context.Context, _ string, rows []datagrid.Row) error {
	s.setRows = rows
	return s.err
}

func (s *stubService) NotifyGridUpdated(_ context.Context, event datagrid.GridEvent) error {
	s.lastEvent = event
	return s.err
}

func (s *stubService) SaveQuery(_ context.Context, _ datagrid.ViewerContext, _ string, q datagrid.Query) error {
	s.savedQuery = q
	return s.err
}

func (s *stubService) SaveColumnLayout(_ context.Context, _ datagrid.ViewerContext, _ string, _ []string, hidden map[string]bool) error {
	s.savedHidden = hidden
	return s.err
}

type stubTelemetry struct {
	calls int
}

func (s *stubTelemetry) Record(context.Context, string, map[string]any) {
	s.calls++
}
