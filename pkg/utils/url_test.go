package utils

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToAbsoluteURL(t *testing.T) {
	base, err := url.Parse("https://find-and-update.company-information.service.gov.uk")
	require.NoError(t, err)

	abs, err := ToAbsoluteURL(base, "/company/01234567")
	require.NoError(t, err)
	assert.Equal(t, "https://find-and-update.company-information.service.gov.uk/company/01234567", abs)
}

func TestSearchURL(t *testing.T) {
	base, err := url.Parse("https://example.test")
	require.NoError(t, err)

	assert.Equal(t, "https://example.test/search/companies?page=2&q=digital+marketing",
		SearchURL(base, "/search/companies", "digital marketing", 2))
}

func TestCollapseWhitespace(t *testing.T) {
	assert.Equal(t, "1 High St, London", CollapseWhitespace("\n  1 High St,\n\t London  "))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"technology", "digital marketing"}, SplitList(" technology, ,digital marketing "))
	assert.Nil(t, SplitList(""))
}
