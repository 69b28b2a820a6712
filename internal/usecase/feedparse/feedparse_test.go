package feedparse

import (
	"testing"

	"afrisignal/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:media="http://search.yahoo.com/mrss/">
<channel>
<title>Zimbabwe Herald</title>
<item>
<title>Zimbabwe economy grows 5%</title>
<link>https://example.com/zw-economy</link>
<guid>guid-1</guid>
<description>The economy grew.</description>
<pubDate>Mon, 02 Jan 2023 15:00:00 GMT</pubDate>
<media:thumbnail url="https://cdn.example.com/photo.jpg" />
</item>
<item>
<title>Harare weather update</title>
<link>https://example.com/harare-weather</link>
<guid>guid-2</guid>
<description>Sunny skies ahead.</description>
<pubDate>Mon, 02 Jan 2023 16:00:00 GMT</pubDate>
</item>
</channel>
</rss>`

// TestParse_RSSIngest is end-to-end scenario 1 from SPEC_FULL.md §8.
func TestParse_RSSIngest(t *testing.T) {
	result, err := Parse([]byte(rssFixture), "https://example.com/feed.xml")
	require.NoError(t, err)

	require.Len(t, result.Items, 2)
	assert.Equal(t, 2, result.ItemCount)

	first := result.Items[0]
	assert.Equal(t, "Zimbabwe economy grows 5%", first.Title)
	assert.Equal(t, "https://cdn.example.com/photo.jpg", first.ImageURL)
	assert.Equal(t, "zimbabwe-economy-grows-5", first.Slug)

	second := result.Items[1]
	assert.Equal(t, "Harare weather update", second.Title)
	assert.Empty(t, second.ImageURL)
}

func TestParse_MalformedXMLWithZeroEntriesFails(t *testing.T) {
	_, err := Parse([]byte("not xml at all"), "https://example.com/bad.xml")
	require.Error(t, err)

	var parseErr *entity.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestParse_ClampsToTwentyItems(t *testing.T) {
	xml := `<?xml version="1.0"?><rss version="2.0"><channel><title>Many</title>`
	for i := 0; i < 25; i++ {
		xml += `<item><title>Item</title><link>https://example.com/` + itoaTest(i) + `</link></item>`
	}
	xml += `</channel></rss>`

	result, err := Parse([]byte(xml), "https://example.com/many.xml")
	require.NoError(t, err)
	assert.Len(t, result.Items, 20)
	assert.Equal(t, 25, result.ItemCount)
}

func itoaTest(i int) string {
	digits := "0123456789"
	if i == 0 {
		return "0"
	}
	var b []byte
	for i > 0 {
		b = append([]byte{digits[i%10]}, b...)
		i /= 10
	}
	return string(b)
}

func TestSanitizeImageURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"https passes through", "https://cdn.example.com/a.jpg", "https://cdn.example.com/a.jpg"},
		{"protocol relative promoted", "//cdn.example.com/a.jpg", "https://cdn.example.com/a.jpg"},
		{"ftp rejected", "ftp://cdn.example.com/a.jpg", ""},
		{"blocked domain rejected", "https://doubleclick.net/pixel.gif", ""},
		{"empty rejected", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeImageURL(tt.in))
		})
	}
}

func TestFirstImgInHTML(t *testing.T) {
	html := `<p>Hello</p><img src="https://cdn.example.com/inline.jpg" /><p>World</p>`
	assert.Equal(t, "https://cdn.example.com/inline.jpg", firstImgInHTML(html))
	assert.Equal(t, "", firstImgInHTML(""))
}
