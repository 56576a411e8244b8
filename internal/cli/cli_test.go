package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pfrederiksen/subsidy-scrape/internal/config"
	"github.com/pfrederiksen/subsidy-scrape/internal/fetch"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeConfig(t *testing.T, baseURL string) string {
	t.Helper()
	content := fmt.Sprintf(`
modes:
  test-livestock:
    source: direct
    catalog: fips
    kind: chart
    url: %s/progdetail.php?fips={key}&progcode=livestock
    variable: chartData
    header: [state, year, spending]
    output: test/{region}.tsv
    name_from_page: true
    skip: [United States]
`, baseURL)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRootCmd_DirectMode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("fips") {
		case "01000":
			fmt.Fprint(w, `<span class="stateface-AL">Alabama</span>
				<script>var chartData = [{"year":"2020","spending":1000.5}, ];</script>`)
		case "02000":
			fmt.Fprint(w, `<span class="stateface-AK">Alaska</span>
				<script>var chartData = [{"year":"2021","spending":7}];</script>`)
		case "11000":
			fmt.Fprint(w, `<span class="stateface-US">United States</span>`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	outDir := t.TempDir()
	stdout, stderr, err := execute(t,
		"--data", "test-livestock",
		"--config", writeConfig(t, server.URL),
		"--output-dir", outDir,
		"--format", "json",
	)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	var summary struct {
		Mode    string `json:"mode"`
		Written int    `json:"written"`
		Skipped int    `json:"skipped"`
		Rows    int    `json:"rows"`
		Metrics struct {
			Counters map[string]int64 `json:"counters"`
			Timings  map[string]struct {
				Count int `json:"count"`
			} `json:"timings"`
		} `json:"metrics"`
	}
	if err := json.Unmarshal([]byte(stdout), &summary); err != nil {
		t.Fatalf("summary is not JSON: %v\n%s", err, stdout)
	}
	if summary.Mode != "test-livestock" || summary.Written != 2 || summary.Skipped != 54 || summary.Rows != 2 {
		t.Errorf("summary = %+v", summary)
	}
	if c := summary.Metrics.Counters; c["regions.written"] != 2 || c["regions.skipped"] != 54 {
		t.Errorf("metrics counters = %v", c)
	}
	if got := summary.Metrics.Timings["region"].Count; got != 56 {
		t.Errorf("region timings = %d, want 56", got)
	}
	if !strings.Contains(stderr, `"message":"run finished"`) {
		t.Errorf("stderr missing run finished entry:\n%s", stderr)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "test", "Alabama.tsv"))
	if err != nil {
		t.Fatalf("reading Alabama output: %v", err)
	}
	if string(data) != "state\tyear\tspending\nAlabama\t2020\t1000.5\n" {
		t.Errorf("Alabama output = %q", data)
	}
	if _, err := os.Stat(filepath.Join(outDir, "test", "United States.tsv")); !os.IsNotExist(err) {
		t.Error("aggregate region should not be written")
	}
}

func TestRootCmd_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing data", []string{}, "--data is required"},
		{"unknown mode", []string{"--data", "crops"}, "unknown mode"},
		{"bad format", []string{"--data", "livestock", "--format", "xml"}, "invalid format"},
		{"bad log level", []string{"--data", "livestock", "--log-level", "loud"}, "unknown log level"},
		{"missing config", []string{"--data", "livestock", "--config", "/nonexistent/config.yaml"}, "reading config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Execute() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestRootCmd_LogLevel(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()
	cfgPath := writeConfig(t, server.URL)

	tests := []struct {
		name      string
		args      []string
		wantInfo  bool
		wantDebug bool
	}{
		{"default", nil, true, false},
		{"warn", []string{"--log-level", "warn"}, false, false},
		{"debug", []string{"--log-level", "DEBUG"}, true, true},
		{"verbose wins", []string{"--log-level", "error", "--verbose"}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--data", "test-livestock", "--config", cfgPath, "--output-dir", t.TempDir()}, tt.args...)
			_, stderr, err := execute(t, args...)
			if err != nil {
				t.Fatalf("Execute() error: %v", err)
			}
			if got := strings.Contains(stderr, `"level":"INFO"`); got != tt.wantInfo {
				t.Errorf("INFO entries present = %v, want %v", got, tt.wantInfo)
			}
			if got := strings.Contains(stderr, `"level":"DEBUG"`); got != tt.wantDebug {
				t.Errorf("DEBUG entries present = %v, want %v", got, tt.wantDebug)
			}
		})
	}
}

func TestRootCmd_ListModes(t *testing.T) {
	stdout, _, err := execute(t, "--list-modes")
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	for _, name := range []string{"livestock", "livestock-programs", "spending"} {
		if !strings.Contains(stdout, name) {
			t.Errorf("--list-modes output missing %q:\n%s", name, stdout)
		}
	}
}

type fakeDriver struct {
	pages map[string]string
	url   string
}

func (d *fakeDriver) Navigate(ctx context.Context, url string) error {
	d.url = url
	return nil
}

func (d *fakeDriver) Source(ctx context.Context) (string, error) {
	page, ok := d.pages[d.url]
	if !ok {
		return "", errors.New("tab crashed")
	}
	return page, nil
}

func TestRootCmd_RenderedModeReleasesSession(t *testing.T) {
	driver := &fakeDriver{pages: map[string]string{
		"https://www.usaspending.gov/state/alabama/latest": `<h2>Spending in Alabama</h2>
			<svg><g aria-label="Spending in 2020: $1,000"></g><g aria-label="Spending in 2021: $2,500"></g></svg>`,
	}}
	released := 0
	var endpoint string

	prev := openBrowser
	openBrowser = func(ctx context.Context, ep string) (fetch.Driver, func(), error) {
		endpoint = ep
		return driver, func() { released++ }, nil
	}
	defer func() { openBrowser = prev }()

	outDir := t.TempDir()
	stdout, _, err := execute(t,
		"--data", "spending",
		"--output-dir", outDir,
		"--browser-url", "http://127.0.0.1:9222",
	)

	// Alaska's page is unknown to the fake driver, which is a session error.
	if !errors.Is(err, fetch.ErrSession) {
		t.Fatalf("Execute() error = %v, want ErrSession", err)
	}
	if released != 1 {
		t.Errorf("session released %d times, want 1", released)
	}
	if endpoint != "http://127.0.0.1:9222" {
		t.Errorf("endpoint = %q", endpoint)
	}
	if !strings.Contains(stdout, "aborted") {
		t.Errorf("summary should report the abort:\n%s", stdout)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "spending", "year_Alabama.tsv"))
	if err != nil {
		t.Fatalf("reading Alabama output: %v", err)
	}
	want := "state\tyear\tspending\nAlabama\t2020\t1000\nAlabama\t2021\t2500\n"
	if string(data) != want {
		t.Errorf("Alabama output = %q, want %q", data, want)
	}
}

func TestNewFetcher_Direct(t *testing.T) {
	cfg := config.Default()
	mode, _ := cfg.Mode("livestock")

	f, release, err := newFetcher(context.Background(), cfg, mode)
	if err != nil {
		t.Fatalf("newFetcher() error: %v", err)
	}
	defer release()
	if _, ok := f.(*fetch.HTTPFetcher); !ok {
		t.Errorf("newFetcher() = %T, want *fetch.HTTPFetcher", f)
	}
}
