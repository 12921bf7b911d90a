package parser

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/registry-scraper/internal/domain"
	"github.com/user/registry-scraper/pkg/utils"
)

const (
	resultSelector    = "li.type-company"
	headingSelector   = "h3"
	fragmentSelector  = "p"
	DefaultDetailPath = `/company/([A-Z0-9]+)`
)

// Parser turns one page of search-result markup into candidates.
type Parser struct {
	baseURL    *url.URL
	detailPath *regexp.Regexp
	rules      []Rule
	now        func() time.Time
}

// Option customizes a Parser.
type Option func(*Parser)

// WithRules replaces the default extraction table.
func WithRules(rules []Rule) Option {
	return func(p *Parser) { p.rules = rules }
}

// WithClock overrides the scrape timestamp source.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) { p.now = now }
}

// New creates a parser resolving detail links against baseURL.
func New(baseURL string, opts ...Option) (*Parser, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	p := &Parser{
		baseURL:    base,
		detailPath: regexp.MustCompile(DefaultDetailPath),
		rules:      DefaultRules(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Parse returns the non-dissolved candidates of a page in document order.
// Malformed blocks are skipped silently.
func (p *Parser) Parse(content []byte) ([]domain.CompanyCandidate, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse search results: %w", err)
	}

	scrapedAt := p.now()
	var candidates []domain.CompanyCandidate
	doc.Find(resultSelector).Each(func(i int, s *goquery.Selection) {
		c, ok := p.parseBlock(s)
		if !ok {
			return
		}
		c.ScrapedAt = scrapedAt
		candidates = append(candidates, c)
	})
	return candidates, nil
}

func (p *Parser) parseBlock(s *goquery.Selection) (domain.CompanyCandidate, bool) {
	var c domain.CompanyCandidate

	link := s.Find(headingSelector).First().Find("a").First()
	if link.Length() == 0 {
		return c, false
	}
	href, _ := link.Attr("href")
	m := p.detailPath.FindStringSubmatch(href)
	if len(m) < 2 || m[1] == "" {
		return c, false
	}
	c.RegistryID = m[1]
	c.Name = utils.CollapseWhitespace(link.Text())
	if c.Name == "" {
		return c, false
	}
	if abs, err := utils.ToAbsoluteURL(p.baseURL, href); err == nil {
		c.SourceURL = abs
	}

	var fragments []string
	s.Find(fragmentSelector).Each(func(i int, para *goquery.Selection) {
		if text := utils.CollapseWhitespace(para.Text()); text != "" {
			fragments = append(fragments, text)
		}
	})

	if !Extract(p.rules, fragments, &c) {
		return c, false
	}
	return c, true
}
