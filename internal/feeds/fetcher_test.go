package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ainews-watch/aggregator/internal/models"
)

const rssOne = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>One</title>
  <link>https://one.example.com</link>
  <description>one</description>
  <item>
    <title>OpenAI releases a new model</title>
    <link>https://news.example.com/openai-model</link>
    <description><![CDATA[<p>The <b>GPT</b> family grows &amp; improves.</p>]]></description>
    <pubDate>Mon, 03 Mar 2025 10:00:00 GMT</pubDate>
  </item>
  <item>
    <title>Local bakery opens</title>
    <link>https://news.example.com/bakery</link>
    <description>Fresh bread downtown</description>
    <pubDate>Tue, 04 Mar 2025 10:00:00 GMT</pubDate>
  </item>
  <item>
    <title>Robotics startup without link</title>
    <description>no link here</description>
  </item>
  <item>
    <title>Undated machine learning piece</title>
    <link>https://news.example.com/undated</link>
    <description>Machine learning notes</description>
  </item>
</channel>
</rss>`

const atomTwo = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Two</title>
  <id>urn:two</id>
  <updated>2025-03-05T12:00:00Z</updated>
  <entry>
    <title>Anthropic publishes safety research</title>
    <link href="https://news.example.com/anthropic-safety"/>
    <id>urn:two:1</id>
    <updated>2025-03-05T12:00:00Z</updated>
    <summary>AI safety work</summary>
  </entry>
  <entry>
    <title>OpenAI releases a new model (syndicated)</title>
    <link href="https://news.example.com/openai-model"/>
    <id>urn:two:2</id>
    <updated>2025-03-06T12:00:00Z</updated>
    <summary>Same story, second source</summary>
  </entry>
</feed>`

func newFeedServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/one.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(rssOne))
	})
	mux.HandleFunc("/two.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/atom+xml")
		w.Write([]byte(atomTwo))
	})
	mux.HandleFunc("/broken.xml", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func source(name, url, hint string) models.Source {
	return models.Source{Name: name, FeedURL: url, CategoryHint: hint, IsActive: true}
}

func TestFetchSource(t *testing.T) {
	srv := newFeedServer(t)
	f := NewFetcher(Config{Timeout: 5 * time.Second})

	items, err := f.FetchSource(context.Background(), source("One", srv.URL+"/one.xml", "AI in Industry"))
	require.NoError(t, err)
	require.Len(t, items, 2)

	first := items[0]
	assert.Equal(t, "OpenAI releases a new model", first.Title)
	assert.Equal(t, "https://news.example.com/openai-model", first.URL)
	assert.Equal(t, "One", first.SourceName)
	assert.Equal(t, srv.URL+"/one.xml", first.SourceURL)
	assert.Equal(t, "The GPT family grows & improves.", first.Description)
	assert.Equal(t, "AI in Industry", first.CategoryHint)
	require.NotNil(t, first.PublishedAt)
	assert.True(t, first.PublishedAt.Equal(time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)))

	assert.Equal(t, "https://news.example.com/undated", items[1].URL)
	assert.Nil(t, items[1].PublishedAt)
}

func TestFetchSourceUsesUpdatedDate(t *testing.T) {
	srv := newFeedServer(t)
	f := NewFetcher(Config{})

	items, err := f.FetchSource(context.Background(), source("Two", srv.URL+"/two.xml", ""))
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.NotNil(t, items[0].PublishedAt)
	assert.True(t, items[0].PublishedAt.Equal(time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)))
}

func TestFetchSourceError(t *testing.T) {
	srv := newFeedServer(t)
	f := NewFetcher(Config{})

	items, err := f.FetchSource(context.Background(), source("Broken", srv.URL+"/broken.xml", ""))
	assert.Error(t, err)
	assert.Empty(t, items)
}

func TestFetchAll(t *testing.T) {
	srv := newFeedServer(t)
	f := NewFetcher(Config{})

	batch := f.FetchAll(context.Background(), []models.Source{
		source("One", srv.URL+"/one.xml", ""),
		source("Broken", srv.URL+"/broken.xml", ""),
		source("Two", srv.URL+"/two.xml", ""),
	})

	assert.Equal(t, 1, batch.SourcesFailed)
	assert.Equal(t, []string{"One", "Two"}, batch.Fetched)

	urls := make([]string, 0, len(batch.Items))
	for _, item := range batch.Items {
		urls = append(urls, item.URL)
	}
	// The duplicate URL from Two is dropped; the One entry keeps its own date.
	assert.Equal(t, []string{
		"https://news.example.com/anthropic-safety",
		"https://news.example.com/openai-model",
		"https://news.example.com/undated",
	}, urls)
	assert.Equal(t, "One", batch.Items[1].SourceName)
}

func TestSortByPublished(t *testing.T) {
	day := func(d int) *time.Time {
		ts := time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC)
		return &ts
	}
	items := []models.RawItem{
		{URL: "a"},
		{URL: "b", PublishedAt: day(1)},
		{URL: "c"},
		{URL: "d", PublishedAt: day(3)},
		{URL: "e", PublishedAt: day(2)},
	}

	SortByPublished(items)

	got := make([]string, 0, len(items))
	for _, item := range items {
		got = append(got, item.URL)
	}
	assert.Equal(t, []string{"d", "e", "b", "a", "c"}, got)
}

func TestCleanDescription(t *testing.T) {
	assert.Equal(t, "Hello world", CleanDescription("<div>Hello <i>world</i></div>"))
	assert.Equal(t, "", CleanDescription("   "))

	long := "<p>" + strings.Repeat("x", 800) + "</p>"
	assert.Len(t, CleanDescription(long), MaxDescriptionLength)
}

func serveRSS(t *testing.T, items string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>T</title>` + items + `</channel></rss>`))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestFetchSourceMatchesKeywordsBeyondDescriptionCap(t *testing.T) {
	body := strings.Repeat("x", 520) + " machine learning breakthrough"
	url := serveRSS(t, `<item><title>Quarterly report</title>`+
		`<link>https://news.example.com/quarterly</link>`+
		`<description>`+body+`</description></item>`)

	items, err := NewFetcher(Config{}).FetchSource(context.Background(), source("Long", url, ""))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "https://news.example.com/quarterly", items[0].URL)
	assert.Len(t, items[0].Description, MaxDescriptionLength)
	assert.Equal(t, strings.Repeat("x", MaxDescriptionLength), items[0].Description)
}

func TestFetchSourceSkipsUntitledEntries(t *testing.T) {
	url := serveRSS(t, `<item><title>  </title>`+
		`<link>https://news.example.com/untitled</link>`+
		`<description>A new machine learning model</description></item>`+
		`<item><title>Neural network record</title>`+
		`<link>https://news.example.com/titled</link>`+
		`<description>Deep learning news</description></item>`)

	items, err := NewFetcher(Config{}).FetchSource(context.Background(), source("Mixed", url, ""))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "https://news.example.com/titled", items[0].URL)
}
