package datagrid

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	manifestVersionV1 = "1"
	// ManifestVersion exposes the current manifest format version for tooling.
	ManifestVersion = manifestVersionV1
)

// GridManifestDocument models a YAML manifest describing grids and their rows.
type GridManifestDocument struct {
	Version string         `json:"version" yaml:"version"`
	Name    string         `json:"name,omitempty" yaml:"name,omitempty"`
	Grids   []ManifestGrid `json:"grids" yaml:"grids"`
	Source  string         `json:"-" yaml:"-"`
}

// ManifestGrid is one grid entry: its definition plus either inline rows or
// a remote row source.
type ManifestGrid struct {
	GridDefinition `yaml:",inline"`
	Rows           []Row           `json:"rows,omitempty" yaml:"rows,omitempty"`
	Remote         *ManifestRemote `json:"remote,omitempty" yaml:"remote,omitempty"`
}

// ManifestRemote points a grid at an HTTP endpoint returning a JSON array of rows.
type ManifestRemote struct {
	URL string `json:"url" yaml:"url"`
	// RowsPath names the field holding the array when the payload is an object.
	RowsPath      string            `json:"rows_path,omitempty" yaml:"rows_path,omitempty"`
	Headers       map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	RatePerSecond float64           `json:"rate_per_second,omitempty" yaml:"rate_per_second,omitempty"`
}

// ReadManifest loads a manifest file from disk.
func ReadManifest(path string) (*GridManifestDocument, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("datagrid: open manifest %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeManifest(f)
	if err != nil {
		return nil, fmt.Errorf("datagrid: decode manifest %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeManifest reads a manifest from any reader.
func DecodeManifest(r io.Reader) (*GridManifestDocument, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc GridManifestDocument
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("datagrid: manifest is empty")
		}
		return nil, fmt.Errorf("datagrid: parse manifest: %w", err)
	}
	doc.applyDefaults()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// EncodeManifest writes doc as YAML.
func EncodeManifest(w io.Writer, doc *GridManifestDocument) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("datagrid: encode manifest: %w", err)
	}
	return enc.Close()
}

// Validate ensures the manifest satisfies required fields.
func (doc *GridManifestDocument) Validate() error {
	if doc.Version != manifestVersionV1 {
		return fmt.Errorf("datagrid: unsupported manifest version %q", doc.Version)
	}
	seen := make(map[string]struct{}, len(doc.Grids))
	for idx, grid := range doc.Grids {
		if grid.Code == "" {
			return fmt.Errorf("datagrid: manifest grid at index %d is missing code", idx)
		}
		if _, exists := seen[grid.Code]; exists {
			return fmt.Errorf("datagrid: manifest duplicates grid code %s", grid.Code)
		}
		seen[grid.Code] = struct{}{}
		if err := CheckDefinition(grid.GridDefinition); err != nil {
			return err
		}
		if len(grid.Rows) > 0 && grid.Remote != nil {
			return fmt.Errorf("datagrid: manifest grid %s sets both rows and remote", grid.Code)
		}
		if grid.Remote != nil && grid.Remote.URL == "" {
			return fmt.Errorf("datagrid: manifest grid %s remote is missing url", grid.Code)
		}
		if err := checkIDs(grid.Rows); err != nil {
			return fmt.Errorf("datagrid: manifest grid %s: %w", grid.Code, err)
		}
	}
	return nil
}

// Grid returns the manifest entry for code.
func (doc *GridManifestDocument) Grid(code string) (ManifestGrid, bool) {
	for _, grid := range doc.Grids {
		if grid.Code == code {
			return grid, true
		}
	}
	return ManifestGrid{}, false
}

// Apply registers every grid with its inline rows. Grids with a remote source
// are registered empty; their rows arrive through Service.LoadSources.
func (doc *GridManifestDocument) Apply(ctx context.Context, svc *Service) error {
	if doc == nil {
		return fmt.Errorf("datagrid: manifest document is nil")
	}
	for _, grid := range doc.Grids {
		if err := svc.Register(ctx, grid.GridDefinition, grid.Rows); err != nil {
			return fmt.Errorf("datagrid: register grid %s from %s: %w", grid.Code, doc.Source, err)
		}
	}
	return nil
}

func (doc *GridManifestDocument) applyDefaults() {
	if doc.Version == "" {
		doc.Version = manifestVersionV1
	}
	for i := range doc.Grids {
		if doc.Grids[i].Name == "" {
			doc.Grids[i].Name = doc.Grids[i].Code
		}
	}
}
