package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"podium/internal/labels"
	"podium/internal/speech"
	"podium/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckRowStore_OK(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cleaned_speeches.csv")
	testsupport.WriteRowStore(t, path,
		testsupport.Record(1994, speech.CategoryBestPicture),
		testsupport.Record(1995, speech.CategoryDirecting),
	)

	result := CheckRowStore(path)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "2 speeches") {
		t.Errorf("detail = %q, want the speech count", result.Detail)
	}
}

func TestCheckRowStore_Missing(t *testing.T) {
	result := CheckRowStore(filepath.Join(t.TempDir(), "cleaned_speeches.csv"))
	if result.Passed {
		t.Fatal("expected failure for missing row store")
	}
	if !strings.Contains(result.Detail, "ingest") {
		t.Errorf("detail = %q, want a pointer at ingest", result.Detail)
	}
}

func TestCheckRowStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cleaned_speeches.csv")
	if err := os.WriteFile(path, []byte("not,a\nrow,store\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckRowStore(path)
	if result.Passed {
		t.Fatal("expected failure for a CSV without the row store columns")
	}
}

func TestCheckLabelStore_NotCreated(t *testing.T) {
	result := CheckLabelStore(filepath.Join(t.TempDir(), "labels.db"))
	if !result.Passed {
		t.Fatalf("a store that does not exist yet should pass, got: %s", result.Detail)
	}
}

func TestCheckLabelStore_OK(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.db")
	store, err := labels.Open(path)
	if err != nil {
		t.Fatalf("labels.Open: %v", err)
	}
	key := speech.Key{Year: 1994, Category: speech.CategoryBestPicture}
	if err := store.SetCell(context.Background(), key, "distinctiveness", labels.Int(4)); err != nil {
		t.Fatalf("SetCell: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	result := CheckLabelStore(path)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "1 label cells") {
		t.Errorf("detail = %q, want the cell count", result.Detail)
	}
}

func TestCheckGemini_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-goog-api-key") != "good-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithGeminiKey("good-key"))
	cfg.Gemini.BaseURL = srv.URL

	result := CheckGemini(context.Background(), cfg)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckGemini_BadKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithGeminiKey("bad-key"))
	cfg.Gemini.BaseURL = srv.URL

	result := CheckGemini(context.Background(), cfg)
	if result.Passed {
		t.Fatal("expected failure for rejected key")
	}
}

func TestCheckGemini_MissingKey(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithGeminiKey(""))

	result := CheckGemini(context.Background(), cfg)
	if result.Passed {
		t.Fatal("expected failure for missing key")
	}
	if !strings.Contains(result.Detail, "GEMINI_API_KEY") {
		t.Errorf("detail = %q, want a pointer at the env fallback", result.Detail)
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	results := RunAll(context.Background(), nil)
	if results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_ReadyConfig(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t)
	cfg.Gemini.BaseURL = srv.URL
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	testsupport.WriteRowStore(t, cfg.Paths.SpeechesCSV,
		testsupport.Record(1994, speech.CategoryBestPicture))

	results := RunAll(context.Background(), cfg)
	if len(results) != 6 {
		t.Fatalf("expected 6 results, got %d", len(results))
	}
	if !Ready(results) {
		for _, r := range results {
			if !r.Passed {
				t.Errorf("check %q failed: %s", r.Name, r.Detail)
			}
		}
	}
}

func TestReady_FailsWhenAnyCheckFails(t *testing.T) {
	if Ready(nil) {
		t.Fatal("no results should not read as ready")
	}
	if Ready([]Result{{Name: "a", Passed: true}, {Name: "b"}}) {
		t.Fatal("a failed check should not read as ready")
	}
	if !Ready([]Result{{Name: "a", Passed: true}}) {
		t.Fatal("all-passed results should read as ready")
	}
}
