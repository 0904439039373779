package api

import (
	"context"
	"fmt"

	"github.com/kosztorapp/kosztor/internal/model"
)

// ProjectSummary is one row of the project list.
type ProjectSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

// Project is the full remote project record.
type Project struct {
	ID                string        `json:"id"`
	Name              string        `json:"name"`
	Description       string        `json:"description"`
	CreatedAt         string        `json:"created_at"`
	UpdatedAt         string        `json:"updated_at,omitempty"`
	Content           model.Content `json:"content"`
	WspregName        string        `json:"wspreg_name,omitempty"`
	WspregValue       float64       `json:"wspreg_value,omitempty"`
	SekocenbudCatalog string        `json:"sekocenbud_catalog,omitempty"`
}

// CatalogQuarter identifies one price-catalog snapshot ("quarter").
type CatalogQuarter struct {
	DBKey string `json:"db_key"`
	Name  string `json:"name"`
}

// ExportFormat names a server-side export format.
type ExportFormat string

// Supported export formats.
const (
	ExportPDF   ExportFormat = "pdf"
	ExportExcel ExportFormat = "excel"
	ExportCSV   ExportFormat = "csv"
)

// Extension returns the file extension used for the downloaded file.
func (f ExportFormat) Extension() string {
	if f == ExportExcel {
		return "xlsx"
	}
	return string(f)
}

// ListProjects fetches the project list.
func (c *Client) ListProjects(ctx context.Context) ([]ProjectSummary, error) {
	var projects []ProjectSummary
	if err := c.Get(ctx, "/api/projects/", nil, &projects); err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return projects, nil
}

// GetProject fetches one project including its content.
func (c *Client) GetProject(ctx context.Context, id string) (*Project, error) {
	var p Project
	if err := c.Get(ctx, "/api/projects/"+id+"/", nil, &p); err != nil {
		return nil, fmt.Errorf("fetching project %s: %w", id, err)
	}
	return &p, nil
}

// CreateProject creates a new project and returns it.
func (c *Client) CreateProject(ctx context.Context, name, description string) (*Project, error) {
	body := map[string]string{"name": name, "description": description}
	var p Project
	if err := c.Post(ctx, "/api/projects/", body, &p); err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}
	return &p, nil
}

// DeleteProject removes a project.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	if err := c.Delete(ctx, "/api/projects/"+id+"/"); err != nil {
		return fmt.Errorf("deleting project %s: %w", id, err)
	}
	return nil
}

// UpdateContent writes the project content as a partial update.
func (c *Client) UpdateContent(ctx context.Context, id string, content model.Content) error {
	body := map[string]interface{}{"content": content}
	if err := c.Patch(ctx, "/api/projects/"+id+"/", body, nil); err != nil {
		return fmt.Errorf("saving content for project %s: %w", id, err)
	}
	return nil
}

// UpdateWspreg sets (or resets, with name "Brak" and value 1.0) the
// project's display multiplier.
func (c *Client) UpdateWspreg(ctx context.Context, id, name string, value float64) error {
	body := map[string]interface{}{"wspreg_name": name, "wspreg_value": value}
	if err := c.Patch(ctx, "/api/projects/"+id+"/", body, nil); err != nil {
		return fmt.Errorf("updating wspreg for project %s: %w", id, err)
	}
	return nil
}

// Reprice asks the server to recompute catalog prices against another
// catalog snapshot. The caller must refetch the project afterwards; the
// local copy is stale once this returns.
func (c *Client) Reprice(ctx context.Context, id, catalogKey string) error {
	body := map[string]string{"sekocenbud_catalog": catalogKey}
	if err := c.Post(ctx, "/api/projects/"+id+"/reprice/", body, nil); err != nil {
		return fmt.Errorf("repricing project %s: %w", id, err)
	}
	return nil
}

// Export downloads a server-generated export and returns the bytes and
// the suggested filename (project-{id}.{ext}).
func (c *Client) Export(ctx context.Context, id string, format ExportFormat) ([]byte, string, error) {
	data, err := c.GetRaw(ctx, "/api/projects/"+id+"/export/"+string(format))
	if err != nil {
		return nil, "", fmt.Errorf("exporting project %s as %s: %w", id, format, err)
	}
	return data, fmt.Sprintf("project-%s.%s", id, format.Extension()), nil
}

// ListCatalogQuarters fetches the available price-catalog snapshots.
func (c *Client) ListCatalogQuarters(ctx context.Context) ([]CatalogQuarter, error) {
	var quarters []CatalogQuarter
	if err := c.Get(ctx, "/api/sekocenbud/dbfs", nil, &quarters); err != nil {
		return nil, fmt.Errorf("listing catalog quarters: %w", err)
	}
	return quarters, nil
}

// ListWspregs fetches the regional multipliers available for a catalog
// snapshot, as name -> value.
func (c *Client) ListWspregs(ctx context.Context, dbKey string) (map[string]float64, error) {
	var wspregs map[string]float64
	err := c.Get(ctx, "/api/sekocenbud/wspreg?db_key="+dbKey, nil, &wspregs)
	if err != nil {
		return nil, fmt.Errorf("listing wspreg values: %w", err)
	}
	return wspregs, nil
}
