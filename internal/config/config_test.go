package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPathFunctions(t *testing.T) {
	root := "/test/repo"

	tests := []struct {
		name string
		fn   func(string) string
		want string
	}{
		{"HelioPath", HelioPath, "/test/repo/.helio"},
		{"ConfigPath", ConfigPath, "/test/repo/.helio/config.json"},
		{"DocsPath", DocsPath, "/test/repo/.helio/docs.jsonl"},
		{"AssertedPath", AssertedPath, "/test/repo/.helio/asserted.jsonl"},
		{"CachePath", CachePath, "/test/repo/.helio/cache"},
		{"DBPath", DBPath, "/test/repo/.helio/cache/helio.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.fn(root)
			if got != tt.want {
				t.Errorf("%s(%q) = %q, want %q", tt.name, root, got, tt.want)
			}
		})
	}
}

func TestIsRepository(t *testing.T) {
	tmpDir := t.TempDir()

	if IsRepository(tmpDir) {
		t.Error("IsRepository() = true for non-repo directory")
	}

	if err := os.Mkdir(filepath.Join(tmpDir, HelioDir), 0755); err != nil {
		t.Fatalf("Failed to create .helio: %v", err)
	}

	if !IsRepository(tmpDir) {
		t.Error("IsRepository() = false for repo directory")
	}
}

func TestIsRepository_FileNotDir(t *testing.T) {
	tmpDir := t.TempDir()

	if err := os.WriteFile(filepath.Join(tmpDir, HelioDir), []byte("not a dir"), 0644); err != nil {
		t.Fatalf("Failed to create .helio file: %v", err)
	}

	if IsRepository(tmpDir) {
		t.Error("IsRepository() = true when .helio is a file")
	}
}

func TestFindRepository(t *testing.T) {
	tmpDir := t.TempDir()
	repoDir := filepath.Join(tmpDir, "repo")
	nestedDir := filepath.Join(repoDir, "exports", "2024")

	if err := os.MkdirAll(nestedDir, 0755); err != nil {
		t.Fatalf("Failed to create nested dirs: %v", err)
	}
	if err := os.Mkdir(filepath.Join(repoDir, HelioDir), 0755); err != nil {
		t.Fatalf("Failed to create .helio: %v", err)
	}

	for _, start := range []string{nestedDir, repoDir} {
		found, err := FindRepository(start)
		if err != nil {
			t.Fatalf("FindRepository(%q) error = %v", start, err)
		}
		if found != repoDir {
			t.Errorf("FindRepository(%q) = %q, want %q", start, found, repoDir)
		}
	}
}

func TestFindRepository_NotFound(t *testing.T) {
	_, err := FindRepository(t.TempDir())
	if err == nil {
		t.Error("FindRepository() should return error when no repo found")
	}
}

func TestInit(t *testing.T) {
	tmpDir := t.TempDir()

	if err := Init(tmpDir); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if !IsRepository(tmpDir) {
		t.Fatal("Init() did not create a repository")
	}
	if info, err := os.Stat(CachePath(tmpDir)); err != nil || !info.IsDir() {
		t.Errorf("cache directory missing: %v", err)
	}

	// A second Init keeps an existing config.
	cfg := &Config{Name: "keep me"}
	if err := cfg.Save(tmpDir); err != nil {
		t.Fatal(err)
	}
	if err := Init(tmpDir); err != nil {
		t.Fatalf("second Init() error = %v", err)
	}
	loaded, err := Load(tmpDir)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Name != "keep me" {
		t.Errorf("Name = %q, want %q", loaded.Name, "keep me")
	}
}

func TestConfig_SaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.Mkdir(HelioPath(tmpDir), 0755); err != nil {
		t.Fatalf("Failed to create .helio: %v", err)
	}

	off := false
	cfg := &Config{Name: "heliophysics", SearchLimit: 20, JournalEdges: &off}
	if err := cfg.Save(tmpDir); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Name != cfg.Name {
		t.Errorf("Name = %q, want %q", loaded.Name, cfg.Name)
	}
	if loaded.SearchLimit != 20 {
		t.Errorf("SearchLimit = %d, want 20", loaded.SearchLimit)
	}
	if loaded.Journal() {
		t.Error("Journal() = true, want false")
	}
}

func TestLoad_Missing(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.Journal() {
		t.Error("Journal() should default to true")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "{not valid json"},
		{"negative search limit", `{"search_limit": -1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			if err := os.Mkdir(HelioPath(tmpDir), 0755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(ConfigPath(tmpDir), []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(tmpDir); err == nil {
				t.Error("Load() should return error")
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"/abs/path", "/abs/path"},
		{"relative", "relative"},
		{"~/data", filepath.Join(home, "data")},
	}
	for _, tt := range tests {
		if got := ExpandPath(tt.in); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
