package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/blog-content-api/internal/models"
)

// untitled is used when a stored post carries no title
const untitled = "Untitled"

// ErrUnclosed is returned by Decode for a metadata block without a closing
// delimiter
var ErrUnclosed = errors.New("front matter block is not closed")

// envelope decodes leniently: hand-edited files may carry quoted booleans,
// bare timestamps or legacy keys, so every field is coerced after parsing.
type envelope struct {
	ID        any `yaml:"id"`
	Title     any `yaml:"title"`
	Excerpt   any `yaml:"excerpt"`
	Date      any `yaml:"date"`
	Draft     any `yaml:"draft"`
	PublishAt any `yaml:"publishAt"`
	Cover     any `yaml:"cover"`
	ImageSrc  any `yaml:"imageSrc"`
	Tags      any `yaml:"tags"`
	Author    any `yaml:"author"`
}

// Decode normalizes raw and parses it into a post with defaults applied.
// fallbackID is used when the metadata carries no id (normally the file stem).
func Decode(raw string, fallbackID string) (*models.Post, error) {
	normalized := Normalize(raw)
	if HasOpening(normalized) {
		if _, _, had := Split(normalized); !had {
			return nil, ErrUnclosed
		}
	}

	var env envelope
	body, err := frontmatter.Parse(strings.NewReader(normalized), &env)
	if err != nil {
		return nil, fmt.Errorf("parse front matter: %w", err)
	}

	post := &models.Post{
		ID:        asString(env.ID),
		Title:     asString(env.Title),
		Excerpt:   asString(env.Excerpt),
		Date:      asString(env.Date),
		Draft:     asBool(env.Draft),
		DraftSet:  env.Draft != nil,
		PublishAt: strings.TrimSpace(asString(env.PublishAt)),
		Cover:     asString(env.Cover),
		ImageSrc:  asString(env.ImageSrc),
		Tags:      asStrings(env.Tags),
		Author:    asAuthor(env.Author),
		Body:      string(body),
	}
	if post.ID == "" {
		post.ID = fallbackID
	}
	if post.Title == "" {
		post.Title = untitled
	}
	if post.Cover == "" {
		post.Cover = post.ImageSrc
	}
	if post.ImageSrc == "" {
		post.ImageSrc = post.Cover
	}
	return post, nil
}

// Encode serializes the persisted metadata of p as a delimited block,
// including the trailing line break after the closing delimiter. Keys are
// written in a fixed order; optional empty values are omitted.
func Encode(p *models.Post) (string, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key string, value *yaml.Node) {
		root.Content = append(root.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, value)
	}

	add("id", quoted(p.ID))
	add("title", quoted(p.Title))
	if p.Excerpt != "" {
		add("excerpt", quoted(p.Excerpt))
	}
	if p.Date != "" {
		add("date", quoted(p.Date))
	}
	if p.Draft || p.DraftSet {
		add("draft", boolean(p.Draft))
	}
	if p.PublishAt != "" {
		add("publishAt", quoted(p.PublishAt))
	}
	if p.Cover != "" {
		add("cover", quoted(p.Cover))
	}

	tags := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, tag := range p.Tags {
		tags.Content = append(tags.Content, quoted(tag))
	}
	add("tags", tags)

	author := &yaml.Node{Kind: yaml.MappingNode}
	author.Content = append(author.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "name"}, quoted(p.Author.Name))
	if p.Author.AvatarSrc != "" {
		author.Content = append(author.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "avatarSrc"}, quoted(p.Author.AvatarSrc))
	}
	add("author", author)

	var buf bytes.Buffer
	buf.WriteString(delimiter + "\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		_ = enc.Close()
		return "", fmt.Errorf("encode front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode front matter: %w", err)
	}
	buf.WriteString(delimiter + "\n")
	return buf.String(), nil
}

func quoted(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Style: yaml.DoubleQuotedStyle, Value: s}
}

func boolean(b bool) *yaml.Node {
	v := "false"
	if b {
		v = "true"
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: v}
}

func asString(v any) string {
	switch vv := v.(type) {
	case nil:
		return ""
	case string:
		return vv
	case time.Time:
		return vv.Format(time.RFC3339)
	default:
		return fmt.Sprint(vv)
	}
}

func asBool(v any) bool {
	switch vv := v.(type) {
	case bool:
		return vv
	case string:
		return strings.EqualFold(strings.TrimSpace(vv), "true")
	default:
		return false
	}
}

func asStrings(v any) []string {
	out := []string{}
	switch vv := v.(type) {
	case []any:
		for _, item := range vv {
			if item == nil {
				continue
			}
			out = append(out, asString(item))
		}
	case []string:
		out = append(out, vv...)
	}
	return out
}

func asAuthor(v any) models.Author {
	var name, avatar any
	switch vv := v.(type) {
	case map[string]any:
		name, avatar = vv["name"], vv["avatarSrc"]
	case map[any]any:
		name, avatar = vv["name"], vv["avatarSrc"]
	}
	return models.Author{Name: asString(name), AvatarSrc: asString(avatar)}
}
