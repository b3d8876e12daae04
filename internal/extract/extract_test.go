package extract

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articlePage = `<html><head><title>t</title><script>var x = "ignore me please, this is code";</script></head>
<body>
<nav><p>Home | World | Technology | Science and more links</p></nav>
<article>
  <h1>Headline</h1>
  <p>OpenAI announced a new model on Tuesday with better reasoning.</p>
  <p>short</p>
  <p>The company said the model will reach customers next month.</p>
</article>
<footer><p>Copyright notice for the whole site goes here</p></footer>
</body></html>`

const divPage = `<html><body><main><div>Researchers <b>released</b> a dataset for robotics.</div></main></body></html>`

func newPageServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/article", func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Write([]byte(articlePage))
	})
	mux.HandleFunc("/div", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(divPage))
	})
	mux.HandleFunc("/empty", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><script>only()</script></body></html>`))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestExtractParagraphs(t *testing.T) {
	srv := newPageServer(t)
	e := New(Config{})

	text, err := e.Extract(context.Background(), srv.URL+"/article")
	require.NoError(t, err)
	assert.Equal(t,
		"OpenAI announced a new model on Tuesday with better reasoning.\n\nThe company said the model will reach customers next month.",
		text)
}

func TestExtractMarkdownFallback(t *testing.T) {
	srv := newPageServer(t)
	e := New(Config{})

	text, err := e.Extract(context.Background(), srv.URL+"/div")
	require.NoError(t, err)
	assert.Contains(t, text, "Researchers")
	assert.Contains(t, text, "dataset for robotics")
}

func TestExtractFailures(t *testing.T) {
	srv := newPageServer(t)
	e := New(Config{})

	_, err := e.Extract(context.Background(), srv.URL+"/missing")
	assert.Error(t, err)

	_, err = e.Extract(context.Background(), srv.URL+"/empty")
	assert.True(t, errors.Is(err, ErrNoContent))

	_, err = e.Extract(context.Background(), "http://127.0.0.1:1/unreachable")
	assert.Error(t, err)

	_, err = e.Extract(context.Background(), "::not a url")
	assert.Error(t, err)
}

func TestFromDocumentDropsNoise(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(articlePage))
	require.NoError(t, err)

	text := New(Config{}).FromDocument(doc)
	assert.NotContains(t, text, "Copyright")
	assert.NotContains(t, text, "ignore me")
	assert.NotContains(t, text, "Home | World")
}
