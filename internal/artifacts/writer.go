// Package artifacts writes a successful run to disk as a ready-to-install
// project: the rendered files plus package.json, .env.example and a run
// manifest.
package artifacts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	apperrors "site-pipeline/internal/common/errors"
	"site-pipeline/internal/models"
)

const (
	PackageFile  = "package.json"
	EnvFile      = ".env.example"
	ManifestFile = "site-manifest.json"
)

// Manifest describes a written run.
type Manifest struct {
	RunID         string              `json:"runId"`
	ProjectID     string              `json:"projectId"`
	ContentHash   string              `json:"contentHash"`
	CacheHit      bool                `json:"cacheHit"`
	Files         []string            `json:"files"`
	Dependencies  []models.Dependency `json:"dependencies"`
	EnvVars       []models.EnvVar     `json:"envVars"`
	TodoMarkers   []models.TodoMarker `json:"todoMarkers"`
	RequiredTodos int                 `json:"requiredTodos"`
}

// Dir returns <root>/<projectId>/<runId>. Both ids must be single, clean
// path elements.
func Dir(root, projectID, runID string) (string, error) {
	if err := ValidateID(projectID); err != nil {
		return "", fmt.Errorf("project id: %w", err)
	}
	if err := ValidateID(runID); err != nil {
		return "", fmt.Errorf("run id: %w", err)
	}
	return safeJoin(root, projectID+"/"+runID)
}

// ValidateID reports whether id can name one directory below the output
// root.
func ValidateID(id string) error {
	switch {
	case id == "", id == ".", id == "..":
		return fmt.Errorf("invalid path element %q", id)
	case strings.ContainsAny(id, `/\:`) || strings.ContainsRune(id, 0):
		return fmt.Errorf("path element %q contains a separator", id)
	case strings.TrimSpace(id) != id || filepath.Clean(id) != id:
		return fmt.Errorf("path element %q is not clean", id)
	}
	return nil
}

// Write stores res under Dir(root, ...). Failed runs are rejected; a run is
// written whole or reported as an error.
func Write(root string, res *models.PipelineResult) (string, error) {
	if !res.Success {
		return "", fmt.Errorf("run %s did not succeed", res.RunID)
	}
	dir, err := Dir(root, res.ProjectID, res.RunID)
	if err != nil {
		return "", apperrors.NewInputValidationFailedError(err.Error())
	}

	files := append([]models.GeneratedFile(nil), res.GeneratedFiles...)
	pkg, err := packageJSON(res.ProjectID, res.Dependencies)
	if err != nil {
		return "", err
	}
	files = append(files, models.GeneratedFile{Path: PackageFile, Content: pkg, Type: models.FileTypeConfig})
	if len(res.EnvVars) > 0 {
		files = append(files, models.GeneratedFile{Path: EnvFile, Content: envExample(res.EnvVars), Type: models.FileTypeConfig})
	}

	manifest := Manifest{
		RunID:         res.RunID,
		ProjectID:     res.ProjectID,
		CacheHit:      res.Metrics.CacheHit,
		Dependencies:  res.Dependencies,
		EnvVars:       res.EnvVars,
		TodoMarkers:   res.TodoMarkers,
		RequiredTodos: len(res.RequiredTodos()),
	}
	if res.ContentPack != nil {
		manifest.ContentHash = res.ContentPack.Hash
	}
	for _, f := range files {
		manifest.Files = append(manifest.Files, f.Path)
	}
	sort.Strings(manifest.Files)

	data, err := marshal(manifest)
	if err != nil {
		return "", err
	}
	files = append(files, models.GeneratedFile{Path: ManifestFile, Content: data, Type: models.FileTypeConfig})

	for _, f := range files {
		if err := writeFile(dir, f); err != nil {
			return dir, err
		}
	}
	return dir, nil
}

func writeFile(dir string, f models.GeneratedFile) error {
	target, err := safeJoin(dir, f.Path)
	if err != nil {
		return apperrors.NewArtifactWriteFailedError(f.Path, err)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return apperrors.NewArtifactWriteFailedError(f.Path, err)
	}
	if err := os.WriteFile(target, []byte(f.Content), 0o644); err != nil {
		return apperrors.NewArtifactWriteFailedError(f.Path, err)
	}
	return nil
}

// safeJoin rejects absolute paths and paths escaping dir.
func safeJoin(dir, rel string) (string, error) {
	if rel == "" || filepath.IsAbs(rel) {
		return "", fmt.Errorf("invalid path %q", rel)
	}
	target := filepath.Join(dir, filepath.FromSlash(rel))
	back, err := filepath.Rel(dir, target)
	if err != nil || back == ".." || strings.HasPrefix(back, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes output directory", rel)
	}
	return target, nil
}

type packageManifest struct {
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	Private      bool              `json:"private"`
	Scripts      map[string]string `json:"scripts"`
	Dependencies map[string]string `json:"dependencies"`
}

func packageJSON(projectID string, deps []models.Dependency) (string, error) {
	pkg := packageManifest{
		Name:    strings.ToLower(projectID),
		Version: "0.1.0",
		Private: true,
		Scripts: map[string]string{
			"dev":   "next dev",
			"build": "next build",
			"start": "next start",
		},
		Dependencies: make(map[string]string, len(deps)),
	}
	for _, d := range deps {
		pkg.Dependencies[d.Name] = d.Version
	}
	return marshal(pkg)
}

func envExample(vars []models.EnvVar) string {
	var b strings.Builder
	for _, v := range vars {
		req := "optional"
		if v.Required {
			req = "required"
		}
		fmt.Fprintf(&b, "# %s (%s)\n%s=\n", v.Description, req, v.Name)
	}
	return b.String()
}

func marshal(v interface{}) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return buf.String(), nil
}
