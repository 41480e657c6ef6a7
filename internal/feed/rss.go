// Package feed builds the RSS 2.0 document for published posts.
package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/blog-content-api/internal/models"
)

const (
	// ContentType is served with the rendered feed
	ContentType = "application/rss+xml; charset=utf-8"
	// CacheControl lets shared caches hold the feed for half an hour
	CacheControl = "s-maxage=1800, stale-while-revalidate=86400"

	atomNS    = "http://www.w3.org/2005/Atom"
	contentNS = "http://purl.org/rss/1.0/modules/content/"
)

// Channel describes the feed itself
type Channel struct {
	SiteURL     string
	Title       string
	Description string
}

// Builder renders posts into RSS
type Builder struct {
	channel Channel
	now     func() time.Time
}

// NewBuilder creates a builder for the given channel
func NewBuilder(ch Channel) *Builder {
	ch.SiteURL = strings.TrimRight(ch.SiteURL, "/")
	return &Builder{channel: ch, now: time.Now}
}

// WithClock overrides the time source, used for lastBuildDate and as the
// pubDate of posts whose date does not parse.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

type rssDoc struct {
	XMLName   xml.Name   `xml:"rss"`
	Version   string     `xml:"version,attr"`
	AtomNS    string     `xml:"xmlns:atom,attr"`
	ContentNS string     `xml:"xmlns:content,attr"`
	Channel   rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language"`
	LastBuildDate string    `xml:"lastBuildDate"`
	AtomLink      atomLink  `xml:"atom:link"`
	Items         []rssItem `xml:"item"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	GUID        rssGUID  `xml:"guid"`
	PubDate     string   `xml:"pubDate"`
	Author      string   `xml:"author,omitempty"`
	Categories  []string `xml:"category"`
	Description cdata    `xml:"description"`
	Content     cdata    `xml:"content:encoded"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// cdata is written as a CDATA section; encoding/xml splits any "]]>" in the
// text across two sections.
type cdata struct {
	Text string `xml:",cdata"`
}

// Build renders posts in the order given. Callers pass only published posts,
// with ContentHTML already rendered.
func (b *Builder) Build(posts []*models.Post) ([]byte, error) {
	now := b.now()
	doc := rssDoc{
		Version:   "2.0",
		AtomNS:    atomNS,
		ContentNS: contentNS,
		Channel: rssChannel{
			Title:         b.channel.Title,
			Link:          b.channel.SiteURL,
			Description:   b.channel.Description,
			Language:      "en",
			LastBuildDate: rfc822(now),
			AtomLink: atomLink{
				Href: b.channel.SiteURL + "/feed.xml",
				Rel:  "self",
				Type: "application/rss+xml",
			},
			Items: make([]rssItem, 0, len(posts)),
		},
	}

	for _, p := range posts {
		doc.Channel.Items = append(doc.Channel.Items, b.item(p, now))
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode rss: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func (b *Builder) item(p *models.Post, now time.Time) rssItem {
	link := b.PostURL(p.ID)

	pub := now
	if at, ok := models.ParseDate(p.EffectiveDate()); ok {
		pub = at
	}

	description := p.Excerpt
	if description == "" {
		description = p.Title
	}
	content := p.ContentHTML
	if content == "" {
		content = description
	}

	return rssItem{
		Title:       p.Title,
		Link:        link,
		GUID:        rssGUID{IsPermaLink: true, Value: link},
		PubDate:     rfc822(pub),
		Author:      p.Author.Name,
		Categories:  p.Tags,
		Description: cdata{Text: description},
		Content:     cdata{Text: content},
	}
}

// PostURL is the public page of a post
func (b *Builder) PostURL(id string) string {
	return b.channel.SiteURL + "/blog/" + url.PathEscape(id)
}

func rfc822(t time.Time) string {
	return t.UTC().Format(http.TimeFormat)
}
