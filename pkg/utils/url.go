package utils

import (
	"net/url"
	"strconv"
	"strings"
)

// ToAbsoluteURL converts a relative URL to an absolute URL given a base URL.
func ToAbsoluteURL(base *url.URL, relative string) (string, error) {
	relURL, err := url.Parse(relative)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(relURL).String(), nil
}

// SearchURL builds the search endpoint URL for a query and 1-based page.
func SearchURL(base *url.URL, path, query string, page int) string {
	u := base.ResolveReference(&url.URL{Path: path})
	q := u.Query()
	q.Set("q", query)
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}

// CollapseWhitespace trims a string and folds inner runs of whitespace into
// single spaces.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// SplitList splits a comma separated list, dropping empty entries.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
