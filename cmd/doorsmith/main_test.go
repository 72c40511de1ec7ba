package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"doorsmith/internal/config"
	"doorsmith/internal/customize"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const productsBody = `{"products":[
	{"id":1,"title":"Oak Door","description":"Solid oak","price":350,"thumbnail":"https://img.example/1.jpg"},
	{"id":2,"title":"Steel Gate","description":"Galvanized steel","price":120,"images":["https://img.example/2.jpg"]},
	{"id":3,"title":"Glass Panel","description":"Frosted <b>glass</b>","price":80}
]}`

// setupCLI points the globals at a fake catalog and resets them afterwards.
func setupCLI(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger = zap.NewNop()
	cfg = config.DefaultConfig()
	cfg.Catalog.BaseURL = srv.URL + "/products/search"
	cfg.Catalog.Timeout = "5s"

	t.Cleanup(func() {
		cfg = nil
		searchMaterial, searchSort, searchJSON = "", "", false
		buildPick, buildWidth, buildHeight = 1, "", ""
		buildMaterial, buildColor, buildHardware = "", "", nil
		buildPreview, buildFilter, buildSort = false, "", ""
		now = time.Now
	})
	return srv
}

func productsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, productsBody)
}

func TestJoinArgs(t *testing.T) {
	got := joinArgs([]string{"oak", "door", " "})
	if got != "oak door" {
		t.Fatalf("expected 'oak door', got '%s'", got)
	}
}

func TestRunSearchTable(t *testing.T) {
	var gotQuery, gotLimit string
	setupCLI(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotLimit = r.URL.Query().Get("limit")
		productsHandler(w, r)
	})

	output := captureOutput(t, func() {
		if err := runSearch(&cobra.Command{}, []string{"oak", "door"}); err != nil {
			t.Fatalf("runSearch returned error: %v", err)
		}
	})

	if gotQuery != "oak door" || gotLimit != "20" {
		t.Errorf("unexpected request q=%q limit=%q", gotQuery, gotLimit)
	}
	for _, want := range []string{"Oak Door", "Steel Gate", "Glass Panel", "$350.00", "Showing 3 result(s)."} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestRunSearchJSONFiltered(t *testing.T) {
	setupCLI(t, productsHandler)
	searchMaterial = "steel"
	searchJSON = true

	output := captureOutput(t, func() {
		if err := runSearch(&cobra.Command{}, []string{"door"}); err != nil {
			t.Fatalf("runSearch returned error: %v", err)
		}
	})

	var items []searchItem
	if err := json.Unmarshal([]byte(output), &items); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, output)
	}
	if len(items) != 1 || items[0].Title != "Steel Gate" || items[0].Material != "Metal" {
		t.Fatalf("unexpected items: %+v", items)
	}
	if items[0].ImageURL != "https://img.example/2.jpg" {
		t.Errorf("image fallback to first image not applied: %q", items[0].ImageURL)
	}
}

func TestRunSearchSortedByPrice(t *testing.T) {
	setupCLI(t, productsHandler)
	searchSort = "price-asc"
	searchJSON = true

	output := captureOutput(t, func() {
		if err := runSearch(&cobra.Command{}, []string{"door"}); err != nil {
			t.Fatalf("runSearch returned error: %v", err)
		}
	})

	var items []searchItem
	if err := json.Unmarshal([]byte(output), &items); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	var ids []int
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	if fmt.Sprint(ids) != "[3 2 1]" {
		t.Errorf("price-asc order = %v, want [3 2 1]", ids)
	}
	if items[0].Description != "Frosted glass" {
		t.Errorf("description not sanitized: %q", items[0].Description)
	}
}

func TestRunSearchNoResults(t *testing.T) {
	setupCLI(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"products":[]}`)
	})

	output := captureOutput(t, func() {
		if err := runSearch(&cobra.Command{}, []string{"unicorn"}); err != nil {
			t.Fatalf("runSearch returned error: %v", err)
		}
	})
	if !strings.Contains(output, `No results found for "unicorn".`) {
		t.Fatalf("expected empty message, got: %s", output)
	}
}

func TestRunSearchErrors(t *testing.T) {
	setupCLI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	err := runSearch(&cobra.Command{}, []string{"door"})
	if err == nil || !strings.Contains(err.Error(), "503") {
		t.Fatalf("expected HTTP 503 error, got %v", err)
	}

	searchSort = "cheapest"
	if err := runSearch(&cobra.Command{}, []string{"door"}); err == nil {
		t.Fatal("expected error for unknown sort key")
	}
}

func TestRunBuildEmitsPayload(t *testing.T) {
	setupCLI(t, productsHandler)
	logFile := filepath.Join(t.TempDir(), "builds.jsonl")
	cfg.Build.LogFile = logFile

	fixed := time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC)
	now = func() time.Time { return fixed }
	buildPick = 2
	buildSort = "price-asc"
	buildWidth = "3"
	buildHeight = "6.5"
	buildMaterial = "Wood"
	buildHardware = []string{"Handle", "Lock", "Handle"}

	output := captureOutput(t, func() {
		if err := runBuild(&cobra.Command{}, []string{"door"}); err != nil {
			t.Fatalf("runBuild returned error: %v", err)
		}
	})

	if !strings.Contains(output, `Added "Steel Gate" to build.`) {
		t.Errorf("missing notice:\n%s", output)
	}

	f, err := os.Open(logFile)
	if err != nil {
		t.Fatalf("build log not written: %v", err)
	}
	defer f.Close()

	var payloads []customize.Payload
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var p customize.Payload
		if err := json.Unmarshal(scanner.Bytes(), &p); err != nil {
			t.Fatalf("bad JSONL line %q: %v", scanner.Text(), err)
		}
		payloads = append(payloads, p)
	}
	if len(payloads) != 1 {
		t.Fatalf("expected 1 payload, got %d", len(payloads))
	}

	p := payloads[0]
	if p.ID != 2 || p.BuildID == "" || !p.Timestamp.Equal(fixed) {
		t.Errorf("unexpected payload header: %+v", p)
	}
	if p.Dimensions.Width == nil || *p.Dimensions.Width != 3 || p.Dimensions.Height == nil || *p.Dimensions.Height != 6.5 {
		t.Errorf("unexpected dimensions: %+v", p.Dimensions)
	}
	if fmt.Sprint(p.Hardware) != "[Handle Lock]" || p.Color != customize.Placeholder {
		t.Errorf("unexpected options: hardware=%v color=%q", p.Hardware, p.Color)
	}
	want := "Steel Gate (#2, $120.00) | Dimensions: 3 ft x 6.5 ft | Material: Wood | Color: N/A | Hardware: Handle, Lock"
	if p.Summary != want {
		t.Errorf("summary = %q\nwant      %q", p.Summary, want)
	}
}

func TestRunBuildPreviewDoesNotEmit(t *testing.T) {
	setupCLI(t, productsHandler)
	logFile := filepath.Join(t.TempDir(), "builds.jsonl")
	cfg.Build.LogFile = logFile
	buildPreview = true
	buildColor = "#333333"

	output := captureOutput(t, func() {
		if err := runBuild(&cobra.Command{}, []string{"door"}); err != nil {
			t.Fatalf("runBuild returned error: %v", err)
		}
	})

	if !strings.Contains(output, "Oak Door (#1, $350.00) | Dimensions: N/A x N/A | Material: N/A | Color: #333333 | Hardware: N/A") {
		t.Errorf("missing summary:\n%s", output)
	}
	if _, err := os.Stat(logFile); !os.IsNotExist(err) {
		t.Errorf("preview must not write the build log (stat err=%v)", err)
	}
}

func TestRunBuildPickOutOfRange(t *testing.T) {
	setupCLI(t, productsHandler)
	buildPick = 4

	err := runBuild(&cobra.Command{}, []string{"door"})
	if err == nil || !strings.Contains(err.Error(), "out of range") {
		t.Fatalf("expected out of range error, got %v", err)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	logger = zap.NewNop()
	configPath = filepath.Join(t.TempDir(), "nested", "config.yaml")
	defer func() { configPath, configForce, cfg = "", false, nil }()

	output := captureOutput(t, func() {
		if err := runConfigInit(&cobra.Command{}, nil); err != nil {
			t.Fatalf("config init failed: %v", err)
		}
	})
	if !strings.Contains(output, "Wrote default config") {
		t.Errorf("unexpected output: %s", output)
	}

	if err := runConfigInit(&cobra.Command{}, nil); err == nil {
		t.Error("second init without --force should fail")
	}
	configForce = true
	if err := runConfigInit(&cobra.Command{}, nil); err != nil {
		t.Errorf("init with --force failed: %v", err)
	}

	loaded, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("written config does not load: %v", err)
	}
	cfg = loaded

	output = captureOutput(t, func() {
		if err := runConfigShow(&cobra.Command{}, nil); err != nil {
			t.Fatalf("config show failed: %v", err)
		}
	})
	for _, want := range []string{"base_url: https://dummyjson.com/products/search", "default_sort: relevance", "Kick plate"} {
		if !strings.Contains(output, want) {
			t.Errorf("config show missing %q:\n%s", want, output)
		}
	}
}

func TestLoadConfigFlagOverrides(t *testing.T) {
	t.Setenv("DOORSMITH_SEARCH_URL", "")
	t.Setenv("DOORSMITH_THEME", "")
	t.Setenv("DOORSMITH_BUILD_LOG", "")
	configPath = filepath.Join(t.TempDir(), "missing.yaml")
	searchURL = "http://127.0.0.1:9/search"
	timeout = 2 * time.Second
	defer func() { configPath, searchURL, timeout, cfg = "", "", 0, nil }()

	if err := loadConfig(); err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.Catalog.BaseURL != searchURL {
		t.Errorf("search URL override not applied: %q", cfg.Catalog.BaseURL)
	}
	if cfg.GetTimeout() != 2*time.Second {
		t.Errorf("timeout override not applied: %v", cfg.GetTimeout())
	}

	searchURL = "not a url"
	if err := loadConfig(); err == nil {
		t.Error("expected validation error for a relative search URL")
	}
}

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	origOut := os.Stdout
	origErr := os.Stderr
	rOut, wOut, _ := os.Pipe()
	rErr, wErr, _ := os.Pipe()
	os.Stdout = wOut
	os.Stderr = wErr

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, rOut)
		_, _ = io.Copy(&buf, rErr)
		done <- buf.String()
	}()

	defer func() {
		os.Stdout = origOut
		os.Stderr = origErr
	}()
	fn()

	_ = wOut.Close()
	_ = wErr.Close()
	return <-done
}
