package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/user/registry-scraper/internal/domain"
)

// Rule inspects one descriptive text fragment of a result block and fills in
// whatever fields it recognizes. Rules are independent of each other and of
// HTML traversal.
type Rule interface {
	Apply(fragment string, c *domain.CompanyCandidate)
}

// KeywordRule sets a field when the fragment contains a phrase.
type KeywordRule struct {
	Keyword    string
	IgnoreCase bool
	Set        func(c *domain.CompanyCandidate)
}

func (r KeywordRule) Apply(fragment string, c *domain.CompanyCandidate) {
	haystack, needle := fragment, r.Keyword
	if r.IgnoreCase {
		haystack, needle = strings.ToLower(haystack), strings.ToLower(needle)
	}
	if strings.Contains(haystack, needle) {
		r.Set(c)
	}
}

// DateRule extracts a date from the first capture group of Pattern.
type DateRule struct {
	Pattern *regexp.Regexp
	Layout  string
	Set     func(c *domain.CompanyCandidate, t time.Time)
}

func (r DateRule) Apply(fragment string, c *domain.CompanyCandidate) {
	m := r.Pattern.FindStringSubmatch(fragment)
	if len(m) < 2 {
		return
	}
	t, err := time.Parse(r.Layout, m[1])
	if err != nil {
		return
	}
	r.Set(c, t)
}

// AddressRule treats address-like fragments as the registered address and
// pulls a postal code out of them.
type AddressRule struct {
	MinLength        int
	ExcludedPrefixes []string
	PostalCode       *regexp.Regexp
}

func (r AddressRule) Apply(fragment string, c *domain.CompanyCandidate) {
	if !strings.Contains(fragment, ",") || len(fragment) <= r.MinLength {
		return
	}
	for _, prefix := range r.ExcludedPrefixes {
		if strings.HasPrefix(fragment, prefix) {
			return
		}
	}
	c.Address = fragment
	if r.PostalCode == nil {
		return
	}
	if pc := r.PostalCode.FindString(fragment); pc != "" {
		c.PostalCode = pc
	}
}

var (
	incorporatedPattern = regexp.MustCompile(`Incorporated on (\d{1,2} \w+ \d{4})`)
	ukPostalCodePattern = regexp.MustCompile(`[A-Z]{1,2}\d[A-Z\d]? ?\d[A-Z]{2}`)
)

func setStatus(s domain.Status) func(*domain.CompanyCandidate) {
	return func(c *domain.CompanyCandidate) { c.Status = s }
}

func setEntityType(e domain.EntityType) func(*domain.CompanyCandidate) {
	return func(c *domain.CompanyCandidate) { c.EntityType = e }
}

// DefaultRules is the extraction table for the public company search page.
// Within one fragment later rules overwrite earlier ones, so the dissolved
// marker is listed after the active one.
func DefaultRules() []Rule {
	return []Rule{
		KeywordRule{Keyword: "Active", Set: setStatus(domain.StatusActive)},
		KeywordRule{Keyword: "Dissolved", IgnoreCase: true, Set: setStatus(domain.StatusDissolved)},

		KeywordRule{Keyword: "Private limited Company", IgnoreCase: true, Set: setEntityType(domain.EntityTypeLtd)},
		KeywordRule{Keyword: "Public limited Company", IgnoreCase: true, Set: setEntityType(domain.EntityTypePLC)},
		KeywordRule{Keyword: "Limited liability partnership", IgnoreCase: true, Set: setEntityType(domain.EntityTypeLLP)},

		DateRule{
			Pattern: incorporatedPattern,
			Layout:  "2 January 2006",
			Set: func(c *domain.CompanyCandidate, t time.Time) {
				c.IncorporationDate = &t
			},
		},

		AddressRule{
			MinLength:        20,
			ExcludedPrefixes: []string{"Matching", "No results"},
			PostalCode:       ukPostalCodePattern,
		},
	}
}

// Extract runs every rule over every fragment in order. It returns false as
// soon as a fragment marks the company as dissolved.
func Extract(rules []Rule, fragments []string, c *domain.CompanyCandidate) bool {
	for _, fragment := range fragments {
		for _, rule := range rules {
			rule.Apply(fragment, c)
		}
		if c.Status == domain.StatusDissolved {
			return false
		}
	}
	if c.Status == "" {
		c.Status = domain.StatusActive
	}
	if c.EntityType == "" {
		c.EntityType = domain.EntityTypeUnknown
	}
	return true
}
