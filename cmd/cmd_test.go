package cmd

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinema-kiosk/config"
	"cinema-kiosk/store"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--store", "memory", "--log-file", filepath.Join(t.TempDir(), "kiosk.log")))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestVersionString(t *testing.T) {
	appVersion, appCommit = "1.2.3", "abc123"
	t.Cleanup(func() { appVersion, appCommit = "dev", "none" })
	assert.Equal(t, "cinema-kiosk 1.2.3 (abc123)", versionString())

	appCommit = "none"
	assert.Equal(t, "cinema-kiosk 1.2.3", versionString())
}

func TestSimulateCommand(t *testing.T) {
	out := run(t, "simulate", "--film", "flow", "--payment-delay", "0s", "--tickets", "2")

	assert.Contains(t, out, "Flow")
	assert.Contains(t, out, "E5")
	assert.Contains(t, out, "E6")
	assert.Contains(t, out, "R$ 64.00")
}

func TestSimulateUnknownFilm(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"simulate", "--film", "nope", "--store", "memory", "--log-file", filepath.Join(t.TempDir(), "kiosk.log")})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	assert.Error(t, rootCmd.Execute())
}

func TestChartCommandPlain(t *testing.T) {
	out := run(t, "chart", "--plain", "--cols", "60", "--lines", "20", "--film", "")

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 20)
	assert.Contains(t, out, "SCREEN")
}

func TestChartCommandPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.png")
	out := run(t, "chart", "--out", path, "--width", "320", "--height", "240")
	assert.Contains(t, out, "Chart written to")

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 240, img.Bounds().Dy())
}

func TestOrdersCommandEmpty(t *testing.T) {
	out := run(t, "orders")
	assert.Contains(t, out, "No orders yet.")
}

func TestSimulateFetchesUnlistedFilm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/films":
			fmt.Fprint(w, `[{"id":"flow","title":"Flow"}]`)
		case "/films/late":
			fmt.Fprint(w, `{"id":"late","title":"Late Show","price":20}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	t.Cleanup(func() { _ = rootCmd.PersistentFlags().Set("catalog-url", "") })

	out := run(t, "simulate", "--film", "late", "--catalog-url", srv.URL, "--payment-delay", "0s", "--tickets", "2")

	assert.Contains(t, out, "Late Show")
	assert.Contains(t, out, "R$ 40.00")
}

func TestNewDepsFileStore(t *testing.T) {
	dir := t.TempDir()
	d, err := newDeps(context.Background(), &config.Config{
		Store:    "file",
		StoreDir: dir,
		LogLevel: "info",
		LogFile:  filepath.Join(dir, "kiosk.log"),
	})
	require.NoError(t, err)
	defer d.Close()

	fs, ok := d.store.(*store.FileStore)
	require.True(t, ok)
	assert.Equal(t, dir, fs.Dir())
}
