package sources

import (
	"html"
	"regexp"
	"strings"
)

// Regexes for converting HTML pages to plain text. Non-content boilerplate
// regions (scripts, styles, chrome elements) are removed before tags are
// stripped.
var (
	titleTag     = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	scriptTag    = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag     = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	noscriptTag  = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	headTag      = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	svgTag       = regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`)
	navTag       = regexp.MustCompile(`(?is)<nav[^>]*>.*?</nav>`)
	headerTag    = regexp.MustCompile(`(?is)<header[^>]*>.*?</header>`)
	footerTag    = regexp.MustCompile(`(?is)<footer[^>]*>.*?</footer>`)
	formTag      = regexp.MustCompile(`(?is)<form[^>]*>.*?</form>`)
	htmlComments = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockClose   = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)>`)
	brTags       = regexp.MustCompile(`(?i)<br\s*/?>`)
	allTags      = regexp.MustCompile(`<[^>]+>`)
	hrefAttr     = regexp.MustCompile(`(?i)<a[^>]+href\s*=\s*["']([^"'#]+)["']`)
	multiSpaces  = regexp.MustCompile(`[ \t]+`)
	multiLines   = regexp.MustCompile(`\n{3,}`)
)

// ExtractTitle returns the page <title>, entity-unescaped and trimmed, or
// an empty string.
func ExtractTitle(page string) string {
	m := titleTag.FindStringSubmatch(page)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(StripTags(m[1])))
}

// ExtractText converts an HTML page to plain text: boilerplate regions are
// dropped, block boundaries become newlines, remaining tags are stripped
// and whitespace is collapsed.
func ExtractText(page string) string {
	text := htmlComments.ReplaceAllString(page, "")
	text = headTag.ReplaceAllString(text, "")
	text = scriptTag.ReplaceAllString(text, "")
	text = styleTag.ReplaceAllString(text, "")
	text = noscriptTag.ReplaceAllString(text, "")
	text = svgTag.ReplaceAllString(text, "")
	text = navTag.ReplaceAllString(text, "")
	text = headerTag.ReplaceAllString(text, "")
	text = footerTag.ReplaceAllString(text, "")
	text = formTag.ReplaceAllString(text, "")
	text = blockClose.ReplaceAllString(text, "\n")
	text = brTags.ReplaceAllString(text, "\n")
	text = allTags.ReplaceAllString(text, " ")
	text = html.UnescapeString(text)
	text = multiSpaces.ReplaceAllString(text, " ")
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	text = strings.Join(lines, "\n")
	text = multiLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// StripTags removes markup from an HTML fragment and collapses whitespace.
// Used for catalog product descriptions.
func StripTags(fragment string) string {
	text := allTags.ReplaceAllString(fragment, " ")
	text = html.UnescapeString(text)
	return strings.Join(strings.Fields(text), " ")
}

// ExtractLinks returns the href values of anchor tags in the page.
func ExtractLinks(page string) []string {
	matches := hrefAttr.FindAllStringSubmatch(page, -1)
	links := make([]string, 0, len(matches))
	for _, m := range matches {
		links = append(links, strings.TrimSpace(m[1]))
	}
	return links
}
