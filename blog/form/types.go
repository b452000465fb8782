package form

import (
	"strings"

	"github.com/dfryer1193/goblog-backend/blog/domain"
)

// Type contributes fields to a form. Name is the key the Factory resolves.
type Type interface {
	Name() string
	BuildForm(b *Builder)
}

type postType struct{}

// PostType is the backend post form.
var PostType Type = postType{}

func (postType) Name() string {
	return "post"
}

func (postType) BuildForm(b *Builder) {
	b.Add(Field{
		Name:  "title",
		Label: "Title",
		Kind:  Text,
		Rules: "required,max=255",
		Get:   func(p *domain.Post) string { return p.Title },
		Set:   func(p *domain.Post, v string) { p.Title = strings.TrimSpace(v) },
	}).Add(Field{
		Name:  "content",
		Label: "Content",
		Kind:  Textarea,
		Rules: "required",
		Get:   func(p *domain.Post) string { return p.Content },
		Set:   func(p *domain.Post, v string) { p.Content = v },
	}).Add(Field{
		Name:  "author",
		Label: "Author",
		Kind:  Text,
		Rules: "required,max=255",
		Get:   func(p *domain.Post) string { return p.Author },
		Set:   func(p *domain.Post, v string) { p.Author = strings.TrimSpace(v) },
	}).Add(Field{
		Name:  "published",
		Label: "Published",
		Kind:  Checkbox,
		Get: func(p *domain.Post) string {
			if p.Published {
				return "on"
			}
			return ""
		},
		Set: func(p *domain.Post, v string) { p.Published = IsChecked(v) },
	})
}

type withoutType struct {
	base    Type
	removed []string
}

// Without builds base and then drops the named fields.
func Without(base Type, fields ...string) Type {
	return withoutType{base: base, removed: fields}
}

func (t withoutType) Name() string {
	return t.base.Name()
}

func (t withoutType) BuildForm(b *Builder) {
	t.base.BuildForm(b)
	for _, name := range t.removed {
		b.Remove(name)
	}
}

type signedPostType struct {
	Type
}

// SignedPostType is PostType without the author field. The author of a
// signed post comes from the authenticated user.
var SignedPostType Type = signedPostType{Type: Without(PostType, "author")}

func (signedPostType) Name() string {
	return "signed_post"
}
