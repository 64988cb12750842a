// Package headlines scrapes news headlines from RSS feeds and HTML listing
// pages and scores them with a financial word lexicon.
package headlines

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"deepsent/internal/collector"
	"deepsent/internal/logger"
	"deepsent/internal/types"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Site is one headline listing. URL may contain {ticker}.
type Site struct {
	Name      string
	URL       string
	Feed      bool // RSS instead of HTML
	Selectors Selectors
	RateLimit time.Duration
}

// Selectors are the CSS selectors of an HTML listing page.
type Selectors struct {
	Item  string
	Title string
	Link  string
	Time  string // element whose datetime attribute or text holds the timestamp
	Text  string
}

// DefaultSelectors fit most article listing pages.
func DefaultSelectors() Selectors {
	return Selectors{
		Item:  "article",
		Title: "h2, h3",
		Link:  "a[href]",
		Time:  "time",
		Text:  "p",
	}
}

// DefaultSites returns the Yahoo Finance headline feed.
func DefaultSites() []Site {
	return []Site{
		{
			Name:      "YahooFinance",
			URL:       "https://feeds.finance.yahoo.com/rss/2.0/headline?s={ticker}&region=US&lang=en-US",
			Feed:      true,
			RateLimit: 2 * time.Second,
		},
	}
}

// SitesFromURLs builds sites from URL templates. URLs containing "rss" or
// ending in ".xml" are treated as feeds.
func SitesFromURLs(urls []string) []Site {
	sites := make([]Site, 0, len(urls))
	for _, u := range urls {
		lower := strings.ToLower(u)
		sites = append(sites, Site{
			Name:      getDomain(strings.ReplaceAll(u, "{ticker}", "x")),
			URL:       u,
			Feed:      strings.Contains(lower, "rss") || strings.HasSuffix(lower, ".xml"),
			Selectors: DefaultSelectors(),
			RateLimit: 2 * time.Second,
		})
	}
	return sites
}

// Source implements collector.Source by scraping headline sites
type Source struct {
	sites   []Site
	lexicon *Lexicon
	timeout time.Duration
}

var _ collector.Source = (*Source)(nil)

// NewSource creates a headline source. No sites selects DefaultSites.
func NewSource(sites []Site, timeout time.Duration) *Source {
	if len(sites) == 0 {
		sites = DefaultSites()
	}
	return &Source{sites: sites, lexicon: NewLexicon(), timeout: timeout}
}

func (s *Source) Name() string { return "headlines" }

// Fetch scrapes every site and keeps the dated headlines within [from, to].
// A failing site is logged and skipped.
func (s *Source) Fetch(ctx context.Context, ticker string, from, to time.Time) ([]types.ScoredItem, error) {
	logger.Info(ctx, "Starting headline scraping", "ticker", ticker, "sites", len(s.sites))

	var all []types.ScoredItem
	var failures int
	for i, site := range s.sites {
		items, err := s.scrapeSite(ctx, site, ticker)
		if err != nil {
			failures++
			logger.ErrorWithErr(ctx, "Failed to scrape site", err, "site", site.Name, "ticker", ticker)
		}
		for _, it := range items {
			if it.PublishedAt.IsZero() || it.PublishedAt.Before(from) || it.PublishedAt.After(to) {
				continue
			}
			all = append(all, it)
		}

		if i < len(s.sites)-1 && site.RateLimit > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(site.RateLimit):
			}
		}
	}

	if failures == len(s.sites) {
		return nil, fmt.Errorf("all %d headline sites failed", failures)
	}
	logger.Info(ctx, "Headline scraping completed", "ticker", ticker, "items", len(all))
	return all, nil
}

func (s *Source) scrapeSite(ctx context.Context, site Site, ticker string) ([]types.ScoredItem, error) {
	var items []types.ScoredItem

	target := strings.ReplaceAll(site.URL, "{ticker}", url.QueryEscape(ticker))
	c := colly.NewCollector(
		colly.AllowedDomains(getDomain(target)),
		colly.MaxDepth(1),
	)
	c.SetRequestTimeout(s.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", userAgent)
	})

	if site.Feed {
		c.OnXML("//item", func(e *colly.XMLElement) {
			items = append(items, s.item(site.Name,
				e.ChildText("title"),
				e.ChildText("link"),
				e.ChildText("description"),
				e.ChildText("pubDate"),
			))
		})
	} else {
		c.OnHTML("html", func(e *colly.HTMLElement) {
			items = append(items, s.parseListing(site, e.Request.URL, e.DOM)...)
		})
	}

	var scrapeErr error
	c.OnError(func(r *colly.Response, err error) {
		scrapeErr = err
		logger.ErrorWithErr(ctx, "Scraping error", err, "site", site.Name, "url", r.Request.URL.String())
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := c.Visit(target); err != nil {
		return nil, fmt.Errorf("failed to visit %s: %w", target, err)
	}
	c.Wait()

	if scrapeErr != nil && len(items) == 0 {
		return nil, scrapeErr
	}
	return items, nil
}

// parseListing reads the article blocks of an HTML listing page.
func (s *Source) parseListing(site Site, base *url.URL, doc *goquery.Selection) []types.ScoredItem {
	sel := site.Selectors
	var items []types.ScoredItem
	doc.Find(sel.Item).Each(func(_ int, el *goquery.Selection) {
		title := strings.TrimSpace(el.Find(sel.Title).First().Text())
		if title == "" {
			return
		}
		link, _ := el.Find(sel.Link).First().Attr("href")
		if ref, err := url.Parse(link); err == nil && base != nil {
			link = base.ResolveReference(ref).String()
		}

		ts := el.Find(sel.Time).First()
		published, ok := ts.Attr("datetime")
		if !ok {
			published = ts.Text()
		}

		items = append(items, s.item(site.Name, title, link, el.Find(sel.Text).First().Text(), published))
	})
	return items
}

func (s *Source) item(source, title, link, text, published string) types.ScoredItem {
	it := types.ScoredItem{
		Title:   strings.TrimSpace(title),
		URL:     strings.TrimSpace(link),
		Summary: strings.TrimSpace(text),
		Source:  source,
	}
	if t, ok := parseTime(published); ok {
		it.PublishedAt = t.UTC()
		it.TimePublished = it.PublishedAt.Format("2006-01-02 15:04:05")
	}
	if v, ok := s.lexicon.Score(it.Title + " " + it.Summary); ok {
		it.Sentiment = &v
	}
	return it
}

var timeLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05",
	"Jan 2, 2006",
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// getDomain extracts domain from URL
func getDomain(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
