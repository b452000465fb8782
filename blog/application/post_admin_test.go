package application

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/dfryer1193/goblog-backend/blog/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	posts   map[int64]*domain.Post
	findErr error
	sorter  domain.Sorter
	pager   *fakePaginator
}

func newFakeStore(posts ...*domain.Post) *fakeStore {
	s := &fakeStore{posts: make(map[int64]*domain.Post)}
	for _, p := range posts {
		s.posts[p.ID] = p
	}
	return s
}

func (s *fakeStore) NewPost() *domain.Post {
	return &domain.Post{}
}

func (s *fakeStore) FindPost(_ context.Context, id int64) (*domain.Post, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	p, ok := s.posts[id]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	return p, nil
}

func (s *fakeStore) Paginator(_ context.Context, sorter domain.Sorter) (domain.Paginator, error) {
	s.sorter = sorter
	posts := make([]*domain.Post, 0, len(s.posts))
	for _, p := range s.posts {
		posts = append(posts, p)
	}
	s.pager = &fakePaginator{posts: posts}
	return s.pager, nil
}

type fakePaginator struct {
	posts     []*domain.Post
	page      int
	clampLow  bool
	clampHigh bool
}

func (p *fakePaginator) SetCurrentPage(page int, clampLow, clampHigh bool) error {
	p.page, p.clampLow, p.clampHigh = page, clampLow, clampHigh
	return nil
}

func (p *fakePaginator) CurrentPage() int      { return p.page }
func (p *fakePaginator) MaxPerPage() int       { return 10 }
func (p *fakePaginator) NbPages() int          { return 1 }
func (p *fakePaginator) NbResults() int        { return len(p.posts) }
func (p *fakePaginator) HasPreviousPage() bool { return false }
func (p *fakePaginator) HasNextPage() bool     { return false }

func (p *fakePaginator) CurrentPageResults(context.Context) ([]*domain.Post, error) {
	return p.posts, nil
}

type manipulatorCall struct {
	op string
	id int64
}

type fakeManipulator struct {
	calls []manipulatorCall
	err   error
}

func (m *fakeManipulator) record(op string, p *domain.Post) error {
	m.calls = append(m.calls, manipulatorCall{op: op, id: p.ID})
	return m.err
}

func (m *fakeManipulator) Create(_ context.Context, p *domain.Post) error {
	if err := m.record("create", p); err != nil {
		return err
	}
	p.ID = 100
	return nil
}

func (m *fakeManipulator) Update(_ context.Context, p *domain.Post) error {
	return m.record("update", p)
}

func (m *fakeManipulator) Delete(_ context.Context, p *domain.Post) error {
	return m.record("delete", p)
}

func (m *fakeManipulator) Publish(_ context.Context, p *domain.Post) error {
	if err := m.record("publish", p); err != nil {
		return err
	}
	p.Published = true
	return nil
}

func (m *fakeManipulator) Unpublish(_ context.Context, p *domain.Post) error {
	if err := m.record("unpublish", p); err != nil {
		return err
	}
	p.Published = false
	return nil
}

type fakeDispatcher struct {
	events []domain.Event
}

func (d *fakeDispatcher) Dispatch(_ context.Context, evt domain.Event) {
	d.events = append(d.events, evt)
}

func (d *fakeDispatcher) kinds() []domain.EventKind {
	kinds := make([]domain.EventKind, 0, len(d.events))
	for _, evt := range d.events {
		kinds = append(kinds, evt.Kind)
	}
	return kinds
}

type fakeForm struct {
	target *domain.Post
	valid  bool
	bound  url.Values
}

func (f *fakeForm) Bind(values url.Values) {
	f.bound = values
	if f.valid {
		f.target.Title = values.Get("title")
		f.target.Content = values.Get("content")
	}
}

func (f *fakeForm) IsValid() bool {
	return f.bound != nil && f.valid
}

func (f *fakeForm) View() any {
	return f
}

type fakeForms struct {
	valid   bool
	names   []string
	created []*fakeForm
}

func (f *fakeForms) Create(name string, target *domain.Post) (PostForm, error) {
	f.names = append(f.names, name)
	form := &fakeForm{target: target, valid: f.valid}
	f.created = append(f.created, form)
	return form, nil
}

type fakeURLs struct{}

func (fakeURLs) URLFor(name string, params map[string]string) (string, error) {
	u := "/" + name
	if id, ok := params["id"]; ok {
		u += "/" + id
	}
	return u, nil
}

type fakeMarkdown struct {
	renders int
}

func (m *fakeMarkdown) Render(markdown []byte) (*RenderedPost, error) {
	m.renders++
	return &RenderedPost{HTML: "<p>" + string(markdown) + "</p>"}, nil
}

type fakeRenderCache struct {
	entries map[string]string
	err     error
}

func (c *fakeRenderCache) Get(_ context.Context, key string) (string, bool, error) {
	if c.err != nil {
		return "", false, c.err
	}
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *fakeRenderCache) Set(_ context.Context, key, html string) error {
	if c.err != nil {
		return c.err
	}
	c.entries[key] = html
	return nil
}

func (c *fakeRenderCache) Delete(_ context.Context, key string) error {
	delete(c.entries, key)
	return c.err
}

type adminFixture struct {
	admin       *PostAdmin
	store       *fakeStore
	manipulator *fakeManipulator
	events      *fakeDispatcher
	forms       *fakeForms
	markdown    *fakeMarkdown
}

func newAdminFixture(posts []*domain.Post, opts ...PostAdminOption) *adminFixture {
	f := &adminFixture{
		store:       newFakeStore(posts...),
		manipulator: &fakeManipulator{},
		events:      &fakeDispatcher{},
		forms:       &fakeForms{valid: true},
		markdown:    &fakeMarkdown{},
	}
	f.admin = NewPostAdmin(f.store, f.manipulator, f.forms, f.events, fakeURLs{}, f.markdown, opts...)
	return f
}

func postSubmission(values url.Values) Submission {
	return Submission{Method: http.MethodPost, Values: values}
}

func TestPostAdmin_Resolve(t *testing.T) {
	existing := &domain.Post{ID: 42, Title: "Answer"}
	f := newAdminFixture([]*domain.Post{existing})
	ctx := context.Background()

	post, err := f.admin.resolve(ctx, "42")
	require.NoError(t, err)
	assert.Same(t, existing, post)

	for _, id := range []string{"7", "0", "-1", "abc", ""} {
		_, err := f.admin.resolve(ctx, id)

		var notFound *NotFoundError
		require.ErrorAs(t, err, &notFound, "id %q", id)
		assert.ErrorIs(t, err, domain.ErrPostNotFound)
		assert.Equal(t, "Requested post does not exist", err.Error())
	}
}

func TestPostAdmin_Resolve_StoreError(t *testing.T) {
	f := newAdminFixture(nil)
	f.store.findErr = errors.New("database is locked")

	_, err := f.admin.resolve(context.Background(), "1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrPostNotFound)
}

func TestPostAdmin_List(t *testing.T) {
	f := newAdminFixture([]*domain.Post{{ID: 1, Content: "First paragraph\n\nSecond"}})
	sorter := domain.NewSorter("title", "asc")

	resp, err := f.admin.List(context.Background(), 3, sorter)
	require.NoError(t, err)

	assert.Equal(t, TemplateList, resp.Template)
	assert.False(t, resp.IsRedirect())
	assert.Equal(t, sorter, f.store.sorter, "sorter is passed through untouched")
	assert.Equal(t, 3, f.store.pager.page)
	assert.True(t, f.store.pager.clampLow)
	assert.True(t, f.store.pager.clampHigh)

	items, ok := resp.Data["posts"].([]ListItem)
	require.True(t, ok)
	require.Len(t, items, 1)
	assert.Equal(t, "First paragraph", items[0].Snippet)
	assert.Equal(t, f.store.pager, resp.Data["paginator"])
	assert.Equal(t, sorter, resp.Data["sorter"])
}

func TestPostAdmin_Show(t *testing.T) {
	post := &domain.Post{ID: 5, Content: "body"}
	f := newAdminFixture([]*domain.Post{post})

	resp, err := f.admin.Show(context.Background(), "5")
	require.NoError(t, err)

	assert.Equal(t, TemplateShow, resp.Template)
	assert.Same(t, post, resp.Data["post"])
	assert.Equal(t, template.HTML("<p>body</p>"), resp.Data["content"])
}

func TestPostAdmin_Show_NotFound(t *testing.T) {
	f := newAdminFixture(nil)

	_, err := f.admin.Show(context.Background(), "5")
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
}

func TestPostAdmin_Show_RenderCache(t *testing.T) {
	post := &domain.Post{ID: 5, Content: "body"}
	cache := &fakeRenderCache{entries: map[string]string{}}
	f := newAdminFixture([]*domain.Post{post}, WithRenderCache(cache))
	ctx := context.Background()

	_, err := f.admin.Show(ctx, "5")
	require.NoError(t, err)
	_, err = f.admin.Show(ctx, "5")
	require.NoError(t, err)

	assert.Equal(t, 1, f.markdown.renders, "second show is served from cache")
	assert.Equal(t, "<p>body</p>", cache.entries[RenderCacheKey(post)])
}

func TestPostAdmin_Show_RenderCacheFailure(t *testing.T) {
	post := &domain.Post{ID: 5, Content: "body"}
	cache := &fakeRenderCache{entries: map[string]string{}, err: errors.New("connection refused")}
	f := newAdminFixture([]*domain.Post{post}, WithRenderCache(cache))

	resp, err := f.admin.Show(context.Background(), "5")
	require.NoError(t, err)
	assert.Equal(t, template.HTML("<p>body</p>"), resp.Data["content"])
}

func TestPostAdmin_Create_Valid(t *testing.T) {
	f := newAdminFixture(nil)

	resp, err := f.admin.Create(context.Background(), postSubmission(url.Values{
		"title":   {"Hello"},
		"content": {"World"},
	}))
	require.NoError(t, err)

	assert.True(t, resp.IsRedirect())
	assert.Equal(t, "/"+RouteList, resp.RedirectURL)
	assert.Equal(t, []manipulatorCall{{op: "create"}}, f.manipulator.calls)
	assert.Equal(t, []domain.EventKind{domain.PostCreated}, f.events.kinds())
	assert.Equal(t, "Hello", f.events.events[0].Post.Title)
	assert.Equal(t, []string{FormPost}, f.forms.names)
}

func TestPostAdmin_Create_Invalid(t *testing.T) {
	f := newAdminFixture(nil)
	f.forms.valid = false

	resp, err := f.admin.Create(context.Background(), postSubmission(url.Values{"title": {""}}))
	require.NoError(t, err)

	assert.False(t, resp.IsRedirect())
	assert.Equal(t, TemplateCreate, resp.Template)
	assert.Same(t, f.forms.created[0], resp.Data["form"])
	assert.Empty(t, f.manipulator.calls)
	assert.Empty(t, f.events.events)
}

func TestPostAdmin_Create_Get(t *testing.T) {
	f := newAdminFixture(nil)

	resp, err := f.admin.Create(context.Background(), Submission{Method: http.MethodGet})
	require.NoError(t, err)

	assert.Equal(t, TemplateCreate, resp.Template)
	assert.Nil(t, f.forms.created[0].bound, "a GET never binds request data")
	assert.Empty(t, f.manipulator.calls)
	assert.Empty(t, f.events.events)
}

func TestPostAdmin_Create_Signed(t *testing.T) {
	f := newAdminFixture(nil, WithSignedPosts(true))

	_, err := f.admin.Create(context.Background(), Submission{Method: http.MethodGet})
	require.NoError(t, err)

	assert.Equal(t, FormSignedPost, f.admin.FormName())
	assert.Equal(t, []string{FormSignedPost}, f.forms.names)
}

func TestPostAdmin_Create_ManipulatorError(t *testing.T) {
	f := newAdminFixture(nil)
	f.manipulator.err = errors.New("disk full")

	_, err := f.admin.Create(context.Background(), postSubmission(url.Values{"title": {"x"}}))
	require.Error(t, err)
	assert.Len(t, f.events.events, 1, "the event precedes the failed mutation")
}

func TestPostAdmin_Update(t *testing.T) {
	post := &domain.Post{ID: 8, Title: "Old"}
	f := newAdminFixture([]*domain.Post{post})

	resp, err := f.admin.Update(context.Background(), "8", postSubmission(url.Values{
		"title":   {"New"},
		"content": {"Body"},
	}))
	require.NoError(t, err)

	assert.Equal(t, "/"+RouteShow+"/8", resp.RedirectURL)
	assert.Equal(t, int64(8), post.ID)
	assert.Equal(t, "New", post.Title)
	assert.Equal(t, []manipulatorCall{{op: "update", id: 8}}, f.manipulator.calls)
	assert.Equal(t, []domain.EventKind{domain.PostUpdated}, f.events.kinds())
}

func TestPostAdmin_Update_Invalid(t *testing.T) {
	post := &domain.Post{ID: 8, Title: "Old"}
	f := newAdminFixture([]*domain.Post{post})
	f.forms.valid = false

	resp, err := f.admin.Update(context.Background(), "8", postSubmission(url.Values{"title": {""}}))
	require.NoError(t, err)

	assert.Equal(t, TemplateUpdate, resp.Template)
	assert.Same(t, post, resp.Data["post"])
	assert.Equal(t, "Old", post.Title)
	assert.Empty(t, f.manipulator.calls)
	assert.Empty(t, f.events.events)
}

func TestPostAdmin_Update_NotFound(t *testing.T) {
	f := newAdminFixture(nil)

	_, err := f.admin.Update(context.Background(), "8", postSubmission(url.Values{}))
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
	assert.Empty(t, f.forms.names)
}

func TestPostAdmin_Delete(t *testing.T) {
	post := &domain.Post{ID: 3}
	f := newAdminFixture([]*domain.Post{post})

	resp, err := f.admin.Delete(context.Background(), "3")
	require.NoError(t, err)

	assert.Equal(t, "/"+RouteList, resp.RedirectURL)
	assert.Equal(t, []manipulatorCall{{op: "delete", id: 3}}, f.manipulator.calls)
	assert.Equal(t, []domain.EventKind{domain.PostDeleted}, f.events.kinds())
}

func TestPostAdmin_Delete_NotFound(t *testing.T) {
	f := newAdminFixture(nil)

	_, err := f.admin.Delete(context.Background(), "3")
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
	assert.Empty(t, f.manipulator.calls)
	assert.Empty(t, f.events.events)
}

func TestPostAdmin_PublishTwice(t *testing.T) {
	post := &domain.Post{ID: 42}
	f := newAdminFixture([]*domain.Post{post})
	ctx := context.Background()

	for range 2 {
		resp, err := f.admin.Publish(ctx, "42")
		require.NoError(t, err)
		assert.Equal(t, "/"+RouteList, resp.RedirectURL)
	}

	assert.True(t, post.IsPublished())
	assert.Equal(t, []manipulatorCall{{op: "publish", id: 42}}, f.manipulator.calls)
	assert.Equal(t, []domain.EventKind{domain.PostPublished}, f.events.kinds())
}

func TestPostAdmin_UnpublishTwice(t *testing.T) {
	post := &domain.Post{ID: 42, Published: true}
	f := newAdminFixture([]*domain.Post{post})
	ctx := context.Background()

	for range 2 {
		resp, err := f.admin.Unpublish(ctx, "42")
		require.NoError(t, err)
		assert.Equal(t, "/"+RouteList, resp.RedirectURL)
	}

	assert.False(t, post.IsPublished())
	assert.Equal(t, []manipulatorCall{{op: "unpublish", id: 42}}, f.manipulator.calls)
	assert.Equal(t, []domain.EventKind{domain.PostUnpublished}, f.events.kinds())
}

func TestPostAdmin_Unpublish_AlreadyDraft(t *testing.T) {
	f := newAdminFixture([]*domain.Post{{ID: 2}})

	resp, err := f.admin.Unpublish(context.Background(), "2")
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(resp.RedirectURL, RouteList))
	assert.Empty(t, f.manipulator.calls)
	assert.Empty(t, f.events.events)
}

func TestPostAdmin_Publish_NotFound(t *testing.T) {
	f := newAdminFixture(nil)

	_, err := f.admin.Publish(context.Background(), "42")
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
	_, err = f.admin.Unpublish(context.Background(), "42")
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
}

func TestFormsFrom(t *testing.T) {
	errNoForm := errors.New("unknown form")

	forms := FormsFrom(func(name string, target *domain.Post) (*fakeForm, error) {
		if name != FormPost {
			return nil, errNoForm
		}
		return &fakeForm{target: target}, nil
	})

	form, err := forms.Create(FormPost, &domain.Post{})
	require.NoError(t, err)
	assert.NotNil(t, form)

	form, err = forms.Create("comment", &domain.Post{})
	require.ErrorIs(t, err, errNoForm)
	assert.Nil(t, form, "a failed lookup must not return a typed nil form")
}
