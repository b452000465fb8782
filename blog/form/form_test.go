package form

import (
	"net/url"
	"strings"
	"testing"

	"github.com/dfryer1193/goblog-backend/blog/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldNames(t Type) []string {
	b := NewBuilder()
	t.BuildForm(b)
	return b.Names()
}

func TestPostType_Fields(t *testing.T) {
	assert.Equal(t, "post", PostType.Name())
	assert.Equal(t, []string{"title", "content", "author", "published"}, fieldNames(PostType))
}

func TestSignedPostType_DropsAuthor(t *testing.T) {
	assert.Equal(t, "signed_post", SignedPostType.Name())

	var want []string
	for _, name := range fieldNames(PostType) {
		if name != "author" {
			want = append(want, name)
		}
	}
	assert.Equal(t, want, fieldNames(SignedPostType))
}

func TestWithout(t *testing.T) {
	assert.Equal(t, "post", Without(PostType).Name())
	assert.Equal(t, fieldNames(PostType), fieldNames(Without(PostType)))
	assert.Equal(t, []string{"title"}, fieldNames(Without(PostType, "content", "author", "published", "missing")))
}

func TestBuilder(t *testing.T) {
	b := NewBuilder().
		Add(Field{Name: "a", Label: "A"}).
		Add(Field{Name: "b"}).
		Add(Field{Name: "a", Label: "replaced"})

	assert.Equal(t, []string{"a", "b"}, b.Names())
	assert.Equal(t, "replaced", b.Fields()[0].Label)
	assert.True(t, b.Has("b"))

	b.Remove("a")
	assert.False(t, b.Has("a"))
	assert.Equal(t, []string{"b"}, b.Names())
}

func TestIsChecked(t *testing.T) {
	for _, v := range []string{"on", "1", "true", "yes", " YES "} {
		assert.True(t, IsChecked(v), v)
	}
	for _, v := range []string{"", "off", "0", "false", "no", "checked"} {
		assert.False(t, IsChecked(v), v)
	}
}

func TestFactory_Create(t *testing.T) {
	f := NewFactory(PostType, SignedPostType)

	form, err := f.Create("post", &domain.Post{})
	require.NoError(t, err)
	assert.Equal(t, "post", form.Name())
	assert.Equal(t, []string{"title", "content", "author", "published"}, form.Names())

	signed, err := f.Create("signed_post", &domain.Post{})
	require.NoError(t, err)
	assert.NotContains(t, signed.Names(), "author")

	_, err = f.Create("comment", &domain.Post{})
	assert.ErrorIs(t, err, ErrUnknownForm)
}

func TestForm_BindValid(t *testing.T) {
	post := &domain.Post{}
	form, err := NewFactory(PostType).Create("post", post)
	require.NoError(t, err)

	assert.False(t, form.IsValid(), "an unbound form is never valid")

	form.Bind(url.Values{
		"title":     {"  Hello  "},
		"content":   {"# Body\n"},
		"author":    {"dfryer"},
		"published": {"on"},
	})

	require.True(t, form.IsValid(), "errors: %v", form.Errors())
	assert.Equal(t, "Hello", post.Title)
	assert.Equal(t, "# Body\n", post.Content)
	assert.Equal(t, "dfryer", post.Author)
	assert.True(t, post.Published)
}

func TestForm_BindInvalid(t *testing.T) {
	post := &domain.Post{Title: "Original", Author: "someone"}
	form, err := NewFactory(PostType).Create("post", post)
	require.NoError(t, err)

	form.Bind(url.Values{
		"title":   {strings.Repeat("x", 256)},
		"content": {"   "},
		"author":  {"new author"},
	})

	assert.False(t, form.IsValid())
	errs := form.Errors()
	assert.Contains(t, errs["title"], "255 characters or less")
	assert.Equal(t, "This value should not be blank.", errs["content"])
	assert.NotContains(t, errs, "author")
	assert.NotContains(t, errs, "published")

	assert.Equal(t, "Original", post.Title, "an invalid form leaves the target untouched")
	assert.Equal(t, "someone", post.Author)
}

func TestForm_SignedIgnoresAuthor(t *testing.T) {
	post := &domain.Post{}
	form, err := NewFactory(SignedPostType).Create("signed_post", post)
	require.NoError(t, err)

	form.Bind(url.Values{
		"title":   {"Signed"},
		"content": {"Body"},
		"author":  {"forged"},
	})

	require.True(t, form.IsValid(), "errors: %v", form.Errors())
	assert.Equal(t, "Signed", post.Title)
	assert.Empty(t, post.Author)
	assert.False(t, post.Published)
}

func TestForm_View(t *testing.T) {
	post := &domain.Post{Title: "Existing", Content: "Body", Author: "dfryer", Published: true}
	form, err := NewFactory(PostType).Create("post", post)
	require.NoError(t, err)

	view, ok := form.View().(*View)
	require.True(t, ok)
	require.Len(t, view.Fields, 4)
	assert.Equal(t, "Existing", view.Fields[0].Value)
	assert.Equal(t, Textarea, view.Fields[1].Kind)
	assert.True(t, view.Fields[3].Checked)

	form.Bind(url.Values{"title": {""}, "content": {"Changed"}})

	view = form.View().(*View)
	assert.Equal(t, "", view.Fields[0].Value, "a submitted form shows what was submitted")
	assert.Equal(t, "This value should not be blank.", view.Fields[0].Error)
	assert.Equal(t, "Changed", view.Fields[1].Value)
	assert.False(t, view.Fields[3].Checked)
}
