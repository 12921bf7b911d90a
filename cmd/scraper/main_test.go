package main

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunDryRun(t *testing.T) {
	var mu sync.Mutex
	var pages []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		pages = append(pages, r.URL.Query().Get("q")+"/"+r.URL.Query().Get("page"))
		mu.Unlock()

		if r.URL.Query().Get("page") == "1" {
			_, _ = w.Write([]byte(`<ul>
				<li class="type-company"><h3><a href="/company/12345678">ACME LTD</a></h3><p>Private limited Company - Active</p></li>
				<li class="type-company"><h3><a href="/company/87654321">GONE LTD</a></h3><p>Dissolved on 1 June 2019</p></li>
			</ul>`))
			return
		}
		_, _ = w.Write([]byte(`<p>No results found</p>`))
	}))
	defer srv.Close()

	t.Setenv("BASE_URL", srv.URL)
	t.Setenv("SECTORS", "technology")
	t.Setenv("MAX_PAGES", "3")
	t.Setenv("REQUEST_DELAY_MS", "0")
	t.Setenv("SECTOR_DELAY_MS", "0")
	t.Setenv("DEDUP_BACKEND", "memory")
	t.Setenv("FETCH_MODE", "http")
	t.Setenv("LISTEN_ADDR", "")
	t.Setenv("LOG_LEVEL", "error")

	root := newRootCmd()
	root.SetArgs([]string{"--env-file", filepath.Join(t.TempDir(), "none.env"), "run", "--dry-run"})
	require.NoError(t, root.Execute())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"technology/1", "technology/2"}, pages)
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	t.Setenv("DEDUP_BACKEND", "memcached")

	root := newRootCmd()
	root.SetArgs([]string{"--env-file", filepath.Join(t.TempDir(), "none.env"), "run", "--dry-run", "--max-pages", "1"})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "memcached")
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"--env-file", filepath.Join(t.TempDir(), "none.env"), "export", "--format", "xml"})
	assert.Error(t, root.Execute())
}
