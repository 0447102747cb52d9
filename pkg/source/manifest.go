package source

import (
	"net/http"

	"github.com/goliatone/go-datagrid/components/datagrid"
)

// FromManifest builds HTTP sources for every manifest grid that declares a
// remote. Each source carries its grid definition.
func FromManifest(doc *datagrid.GridManifestDocument, client *http.Client) (map[string]datagrid.RowSource, error) {
	sources := map[string]datagrid.RowSource{}
	if doc == nil {
		return sources, nil
	}
	for _, grid := range doc.Grids {
		if grid.Remote == nil {
			continue
		}
		src, err := NewHTTPSource(HTTPConfig{
			URL:        grid.Remote.URL,
			RowsPath:   grid.Remote.RowsPath,
			Headers:    grid.Remote.Headers,
			RatePerSec: grid.Remote.RatePerSecond,
			HTTPClient: client,
		})
		if err != nil {
			return nil, err
		}
		sources[grid.Code] = Describe(grid.GridDefinition, src)
	}
	return sources, nil
}
