package artifacts

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"site-pipeline/internal/models"
)

func result() *models.PipelineResult {
	return &models.PipelineResult{
		Success:   true,
		RunID:     "run-1",
		ProjectID: "proj-acme",
		ContentPack: &models.ContentPack{
			Hash: "abc123",
		},
		GeneratedFiles: []models.GeneratedFile{
			{Path: "src/app/page.tsx", Content: "export default function Page() {}\n"},
			{Path: "src/data/content.ts", Content: "export const content = {} as const;\n"},
		},
		Dependencies: []models.Dependency{{Name: "next", Version: "^14.2.5"}},
		EnvVars:      []models.EnvVar{{Name: "SITE_URL", Description: "Public site URL", Required: true}},
		TodoMarkers:  []models.TodoMarker{{Path: "legal.imprint", Required: true}},
	}
}

func TestWrite(t *testing.T) {
	root := t.TempDir()

	dir, err := Write(root, result())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "proj-acme", "run-1"), dir)

	page, err := os.ReadFile(filepath.Join(dir, "src", "app", "page.tsx"))
	require.NoError(t, err)
	assert.Equal(t, "export default function Page() {}\n", string(page))

	var pkg packageManifest
	data, err := os.ReadFile(filepath.Join(dir, PackageFile))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &pkg))
	assert.Equal(t, "^14.2.5", pkg.Dependencies["next"])
	assert.Equal(t, "proj-acme", pkg.Name)

	env, err := os.ReadFile(filepath.Join(dir, EnvFile))
	require.NoError(t, err)
	assert.Equal(t, "# Public site URL (required)\nSITE_URL=\n", string(env))

	var manifest Manifest
	data, err = os.ReadFile(filepath.Join(dir, ManifestFile))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &manifest))
	assert.Equal(t, "abc123", manifest.ContentHash)
	assert.Equal(t, 1, manifest.RequiredTodos)
	assert.Equal(t, []string{".env.example", "package.json", "src/app/page.tsx", "src/data/content.ts"}, manifest.Files)
}

func TestWrite_RejectsFailedRun(t *testing.T) {
	res := result()
	res.Success = false
	_, err := Write(t.TempDir(), res)
	assert.Error(t, err)
}

func TestWrite_RejectsEscapingPath(t *testing.T) {
	res := result()
	res.GeneratedFiles = append(res.GeneratedFiles, models.GeneratedFile{Path: "../../etc/passwd", Content: "x"})

	_, err := Write(t.TempDir(), res)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ARTIFACT_WRITE_FAILED")
}

func TestWrite_RejectsEscapingIDs(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "output")

	tests := []struct {
		name      string
		projectID string
		runID     string
	}{
		{"parent project", "../../escaped", "run1"},
		{"nested project", "acme/site", "run1"},
		{"dot project", "..", "run1"},
		{"backslash project", `..\escaped`, "run1"},
		{"absolute run", "proj-acme", "/tmp/run1"},
		{"empty run", "proj-acme", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := result()
			res.ProjectID = tt.projectID
			res.RunID = tt.runID

			_, err := Write(root, res)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "INPUT_VALIDATION_FAILED")
		})
	}

	entries, err := os.ReadDir(base)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDir(t *testing.T) {
	dir, err := Dir("/srv/out", "proj-acme", "run-1")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/srv/out", "proj-acme", "run-1"), dir)

	_, err = Dir("/srv/out", "proj-acme", "../run-1")
	assert.ErrorContains(t, err, "run id")
}

func TestValidateID(t *testing.T) {
	for _, id := range []string{"proj-acme", "run_2024.10", "über-site"} {
		assert.NoError(t, ValidateID(id), id)
	}
	for _, id := range []string{"", ".", "..", "a/b", `a\b`, "c:", " padded", "a\x00b"} {
		assert.Error(t, ValidateID(id), id)
	}
}

func TestSafeJoin(t *testing.T) {
	tests := []struct {
		rel     string
		wantErr bool
	}{
		{"src/app/page.tsx", false},
		{"./package.json", false},
		{"", true},
		{"/etc/passwd", true},
		{"../outside", true},
		{"src/../../outside", true},
	}

	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			_, err := safeJoin("/tmp/out", tt.rel)
			assert.Equal(t, tt.wantErr, err != nil)
		})
	}
}
