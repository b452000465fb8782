package form

import (
	"strings"

	"github.com/dfryer1193/goblog-backend/blog/domain"
)

type Kind string

const (
	Text     Kind = "text"
	Textarea Kind = "textarea"
	Checkbox Kind = "checkbox"
)

// Field describes one form input and how it maps onto a post.
// Rules use go-playground/validator tag syntax.
type Field struct {
	Name  string
	Label string
	Kind  Kind
	Rules string
	Get   func(p *domain.Post) string
	Set   func(p *domain.Post, value string)
}

// Builder collects fields in declaration order.
type Builder struct {
	fields []Field
}

func NewBuilder() *Builder {
	return &Builder{}
}

// Add appends a field, replacing any existing field with the same name in place.
func (b *Builder) Add(f Field) *Builder {
	for i := range b.fields {
		if b.fields[i].Name == f.Name {
			b.fields[i] = f
			return b
		}
	}
	b.fields = append(b.fields, f)
	return b
}

func (b *Builder) Remove(name string) *Builder {
	kept := b.fields[:0]
	for _, f := range b.fields {
		if f.Name != name {
			kept = append(kept, f)
		}
	}
	b.fields = kept
	return b
}

func (b *Builder) Has(name string) bool {
	for _, f := range b.fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

func (b *Builder) Fields() []Field {
	out := make([]Field, len(b.fields))
	copy(out, b.fields)
	return out
}

func (b *Builder) Names() []string {
	names := make([]string, 0, len(b.fields))
	for _, f := range b.fields {
		names = append(names, f.Name)
	}
	return names
}

// IsChecked reports whether a submitted checkbox value means "on".
func IsChecked(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "on", "1", "true", "yes":
		return true
	}
	return false
}
