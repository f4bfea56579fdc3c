package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/pagesmith/internal/pageservice"
	"github.com/starford/pagesmith/internal/site"
	"github.com/starford/pagesmith/internal/testutil"
)

// testEnv sets up a temp site, manifest, service, and router for testing.
// An empty authToken means disabled mode.
func testEnv(t *testing.T, authToken string) (*testutil.Site, http.Handler) {
	t.Helper()
	return testEnvFull(t, authToken, nil)
}

func testEnvFull(t *testing.T, authToken string, sseHandler http.Handler) (*testutil.Site, http.Handler) {
	t.Helper()
	ts := testutil.TestSite(t, site.Config{Incremental: true})
	svc := pageservice.NewService(ts.Builder, ts.DB)
	router := NewRouter(svc, authToken != "", authToken, sseHandler)
	return ts, router
}

func buildSite(t *testing.T, ts *testutil.Site) {
	t.Helper()
	if _, err := ts.Builder.Build(context.Background(), false); err != nil {
		t.Fatalf("Build: %v", err)
	}
}

func TestListPages(t *testing.T) {
	ts, router := testEnv(t, "")
	ts.WriteSource(t, "index.md", "# Home")
	ts.WriteSource(t, "a.md", "# A")
	ts.WriteSource(t, "b.md", "# B")
	buildSite(t, ts)

	req := httptest.NewRequest(http.MethodGet, "/pages?limit=2", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var resp PageListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 3 || len(resp.Pages) != 2 {
		t.Errorf("total = %d, pages = %d", resp.Total, len(resp.Pages))
	}

	req = httptest.NewRequest(http.MethodGet, "/pages?processor=index_page", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 1 || resp.Pages[0].SourcePath != "index.md" {
		t.Errorf("filtered = %+v", resp)
	}
}

func TestListPages_EmptyIsArray(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/pages", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if !strings.Contains(w.Body.String(), `"pages":[]`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestGetPage(t *testing.T) {
	ts, router := testEnv(t, "")
	ts.WriteSource(t, "blog/hello.md", "---\ntitle: Hello\ndate: 2024-02-03\n---\nWorld")
	buildSite(t, ts)

	req := httptest.NewRequest(http.MethodGet, "/pages/blog/hello.md", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d, body = %s", w.Code, w.Body.String())
	}
	var page PageDetail
	_ = json.Unmarshal(w.Body.Bytes(), &page)
	if page.Title != "Hello" || page.OutputPath != "blog/hello.html" || page.Processor != "standard_article" {
		t.Errorf("page = %+v", page)
	}
	if page.BuiltAt == nil || page.Checksum == "" {
		t.Error("built page should carry its manifest row")
	}
	if page.Data["date"] != "February 2024" {
		t.Errorf("date = %v", page.Data["date"])
	}
}

func TestGetPage_EncodedPath(t *testing.T) {
	ts, router := testEnv(t, "")
	ts.WriteSource(t, "blog/hello.md", "# Hello")

	req := httptest.NewRequest(http.MethodGet, "/pages/blog%2Fhello.md", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("encoded get = %d, body = %s", w.Code, w.Body.String())
	}
	var page PageDetail
	_ = json.Unmarshal(w.Body.Bytes(), &page)
	if page.BuiltAt != nil {
		t.Error("unbuilt page should have no built_at")
	}
}

func TestGetPage_NotFound(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/pages/nope.md", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing page = %d, want 404", w.Code)
	}
}

func TestGetPage_NotMarkdown(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/pages/style.css", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("non-markdown = %d, want 400", w.Code)
	}
}

func TestExtract(t *testing.T) {
	_, router := testEnv(t, "")

	body, _ := json.Marshal(ExtractRequest{Path: "index.md", Content: "# My Editions\n\n### First\nA summary.\n"})
	req := httptest.NewRequest(http.MethodPost, "/extract", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("extract status = %d, body = %s", w.Code, w.Body.String())
	}
	var page ExtractResponse
	_ = json.Unmarshal(w.Body.Bytes(), &page)
	if page.Processor != "index_page" || page.Data["title"] != "My Editions" {
		t.Errorf("page = %+v", page)
	}
	articles, _ := page.Data["articles"].([]any)
	if len(articles) != 1 {
		t.Errorf("articles = %v", page.Data["articles"])
	}
}

func TestExtract_BadRequests(t *testing.T) {
	_, router := testEnv(t, "")

	for _, body := range []string{`not json`, `{"content":"x"}`, `{"path":"x.txt","content":"x"}`} {
		req := httptest.NewRequest(http.MethodPost, "/extract", strings.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %s = %d, want 400", body, w.Code)
		}
	}
}

func TestSearchEndpoint(t *testing.T) {
	ts, router := testEnv(t, "")
	ts.WriteSource(t, "find.md", "# Find\n\nneedle in a haystack")
	buildSite(t, ts)

	req := httptest.NewRequest(http.MethodGet, "/search?q=needle", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("search status = %d", w.Code)
	}
	var resp SearchResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Results) != 1 || resp.Results[0].SourcePath != "find.md" {
		t.Errorf("results = %+v", resp.Results)
	}
}

func TestSearchMissingQuery(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/search", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("search no query = %d, want 400", w.Code)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/pages", nil)
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("authed list = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/pages", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/pages", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_QueryToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/pages?"+TokenQueryParam+"=secret123", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("query token list = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_QueryTokenOnlyForGet(t *testing.T) {
	_, router := testEnv(t, "secret123")

	body := strings.NewReader(`{"path":"a.md","content":"# A"}`)
	req := httptest.NewRequest(http.MethodPost, "/extract?"+TokenQueryParam+"=secret123", body)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("query token on POST = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_HeaderWinsOverQuery(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/pages?"+TokenQueryParam+"=secret123", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong header with good query = %d, want 401", w.Code)
	}
}

// SSE endpoint auth tests.

func sseStub() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-r.Context().Done()
	})
}

func TestSSEEvents_AuthProtected(t *testing.T) {
	_, router := testEnvFull(t, "secret", sseStub())

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	_, router := testEnvFull(t, "tok", sseStub())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE with valid token should not 401")
	}
}

// Static output tests.

func writeOutput(t *testing.T, root, rel, content string) {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestStatic_ServesPagesWithoutCaching(t *testing.T) {
	root := t.TempDir()
	writeOutput(t, root, "index.html", "<h1>home</h1>")
	writeOutput(t, root, "posts/index.html", "<h1>posts</h1>")
	writeOutput(t, root, "posts/a.html", "<h1>a</h1>")
	h := NewStaticHandler(root)

	for path, want := range map[string]string{
		"/":             "<h1>home</h1>",
		"/index.html":   "<h1>home</h1>",
		"/posts":        "<h1>posts</h1>",
		"/posts/a.html": "<h1>a</h1>",
	} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK || w.Body.String() != want {
			t.Errorf("GET %s = %d %q, want %q", path, w.Code, w.Body.String(), want)
		}
		if !strings.Contains(w.Header().Get("Cache-Control"), "no-cache") {
			t.Errorf("GET %s missing no-cache header", path)
		}
	}
}

func TestStatic_NoDirectoryListing(t *testing.T) {
	root := t.TempDir()
	writeOutput(t, root, "assets/site.css", "body{}")
	h := NewStaticHandler(root)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/assets/", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("directory without index = %d, want 404", w.Code)
	}
}

func TestStatic_TraversalBlocked(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "out")
	writeOutput(t, root, "index.html", "ok")
	writeOutput(t, parent, "secret.txt", "secret")
	h := NewStaticHandler(root)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.URL.Path = "/../secret.txt"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if strings.Contains(w.Body.String(), "secret") {
		t.Errorf("traversal served %q", w.Body.String())
	}
}

func TestStatic_RejectsWrites(t *testing.T) {
	h := NewStaticHandler(t.TempDir())
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/index.html", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST = %d, want 405", w.Code)
	}
}
