package application

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dfryer1193/goblog-backend/blog/domain"
	"github.com/rs/zerolog/log"
)

// Route names the backend redirects to.
const (
	RouteList      = "blog_backend_post_list"
	RouteCreate    = "blog_backend_post_create"
	RouteShow      = "blog_backend_post_show"
	RouteUpdate    = "blog_backend_post_update"
	RouteDelete    = "blog_backend_post_delete"
	RoutePublish   = "blog_backend_post_publish"
	RouteUnpublish = "blog_backend_post_unpublish"
)

const (
	TemplateList   = "backend/post/list.html"
	TemplateShow   = "backend/post/show.html"
	TemplateCreate = "backend/post/create.html"
	TemplateUpdate = "backend/post/update.html"
)

const (
	FormPost       = "post"
	FormSignedPost = "signed_post"
)

// NotFoundError is returned when a requested post does not exist.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return "Requested post does not exist"
}

func (e *NotFoundError) Unwrap() error {
	return domain.ErrPostNotFound
}

// PostForm is a bound post form.
type PostForm interface {
	Bind(values url.Values)
	IsValid() bool
	View() any
}

type FormFactory interface {
	Create(name string, target *domain.Post) (PostForm, error)
}

// FormFactoryFunc is an adapter to allow ordinary functions to be used as a FormFactory.
type FormFactoryFunc func(name string, target *domain.Post) (PostForm, error)

func (f FormFactoryFunc) Create(name string, target *domain.Post) (PostForm, error) {
	return f(name, target)
}

// FormsFrom adapts a factory that returns a concrete form type.
func FormsFrom[F PostForm](create func(name string, target *domain.Post) (F, error)) FormFactory {
	return FormFactoryFunc(func(name string, target *domain.Post) (PostForm, error) {
		f, err := create(name, target)
		if err != nil {
			return nil, err
		}
		return f, nil
	})
}

type URLGenerator interface {
	URLFor(name string, params map[string]string) (string, error)
}

// Submission is the part of a request the create and update flows look at.
type Submission struct {
	Method string
	Values url.Values
}

func (s Submission) isPost() bool {
	return s.Method == http.MethodPost
}

// Response is either a redirect or a template to render with Data.
type Response struct {
	RedirectURL string
	Template    string
	Data        map[string]any
}

func (r *Response) IsRedirect() bool {
	return r.RedirectURL != ""
}

// ListItem is a post as shown in the listing.
type ListItem struct {
	*domain.Post
	Snippet string
}

type PostAdminOption func(*PostAdmin)

// WithSignedPosts switches create and update to the signed form, which has
// no author field.
func WithSignedPosts(enabled bool) PostAdminOption {
	return func(a *PostAdmin) {
		if enabled {
			a.formName = FormSignedPost
		}
	}
}

func WithRenderCache(cache RenderCache) PostAdminOption {
	return func(a *PostAdmin) {
		a.cache = cache
	}
}

// PostAdmin runs the backend post use cases. It holds no per-request state.
type PostAdmin struct {
	store       domain.PostStore
	manipulator domain.PostManipulator
	forms       FormFactory
	events      domain.EventDispatcher
	urls        URLGenerator
	markdown    MarkdownRenderer
	cache       RenderCache
	formName    string
}

func NewPostAdmin(
	store domain.PostStore,
	manipulator domain.PostManipulator,
	forms FormFactory,
	events domain.EventDispatcher,
	urls URLGenerator,
	markdown MarkdownRenderer,
	opts ...PostAdminOption,
) *PostAdmin {
	a := &PostAdmin{
		store:       store,
		manipulator: manipulator,
		forms:       forms,
		events:      events,
		urls:        urls,
		markdown:    markdown,
		formName:    FormPost,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// FormName is the form type bound on create and update.
func (a *PostAdmin) FormName() string {
	return a.formName
}

func (a *PostAdmin) List(ctx context.Context, page int, sorter domain.Sorter) (*Response, error) {
	paginator, err := a.store.Paginator(ctx, sorter)
	if err != nil {
		return nil, fmt.Errorf("failed to build post paginator: %w", err)
	}

	if err := paginator.SetCurrentPage(page, true, true); err != nil {
		return nil, fmt.Errorf("failed to select page %d: %w", page, err)
	}

	posts, err := paginator.CurrentPageResults(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load posts: %w", err)
	}

	items := make([]ListItem, 0, len(posts))
	for _, p := range posts {
		items = append(items, ListItem{Post: p, Snippet: ExtractSnippet([]byte(p.Content))})
	}

	return &Response{
		Template: TemplateList,
		Data: map[string]any{
			"posts":     items,
			"paginator": paginator,
			"sorter":    sorter,
		},
	}, nil
}

func (a *PostAdmin) Show(ctx context.Context, id string) (*Response, error) {
	post, err := a.resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	content, err := a.render(ctx, post)
	if err != nil {
		return nil, err
	}

	return &Response{
		Template: TemplateShow,
		Data: map[string]any{
			"post":    post,
			"content": content,
		},
	}, nil
}

func (a *PostAdmin) Create(ctx context.Context, sub Submission) (*Response, error) {
	post := a.store.NewPost()

	form, err := a.forms.Create(a.formName, post)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s form: %w", a.formName, err)
	}

	if sub.isPost() {
		form.Bind(sub.Values)
		if form.IsValid() {
			a.events.Dispatch(ctx, domain.NewEvent(domain.PostCreated, post))
			if err := a.manipulator.Create(ctx, post); err != nil {
				return nil, err
			}
			return a.redirect(RouteList, nil)
		}
	}

	return &Response{
		Template: TemplateCreate,
		Data: map[string]any{
			"form": form.View(),
		},
	}, nil
}

func (a *PostAdmin) Update(ctx context.Context, id string, sub Submission) (*Response, error) {
	post, err := a.resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	form, err := a.forms.Create(a.formName, post)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s form: %w", a.formName, err)
	}

	if sub.isPost() {
		form.Bind(sub.Values)
		if form.IsValid() {
			a.events.Dispatch(ctx, domain.NewEvent(domain.PostUpdated, post))
			if err := a.manipulator.Update(ctx, post); err != nil {
				return nil, err
			}
			return a.redirect(RouteShow, map[string]string{"id": strconv.FormatInt(post.ID, 10)})
		}
	}

	return &Response{
		Template: TemplateUpdate,
		Data: map[string]any{
			"form": form.View(),
			"post": post,
		},
	}, nil
}

func (a *PostAdmin) Delete(ctx context.Context, id string) (*Response, error) {
	post, err := a.resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	a.events.Dispatch(ctx, domain.NewEvent(domain.PostDeleted, post))
	if err := a.manipulator.Delete(ctx, post); err != nil {
		return nil, err
	}

	return a.redirect(RouteList, nil)
}

// Publish is a no-op for posts that are already published.
func (a *PostAdmin) Publish(ctx context.Context, id string) (*Response, error) {
	post, err := a.resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	if !post.IsPublished() {
		a.events.Dispatch(ctx, domain.NewEvent(domain.PostPublished, post))
		if err := a.manipulator.Publish(ctx, post); err != nil {
			return nil, err
		}
	}

	return a.redirect(RouteList, nil)
}

// Unpublish is a no-op for posts that are not published.
func (a *PostAdmin) Unpublish(ctx context.Context, id string) (*Response, error) {
	post, err := a.resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	if post.IsPublished() {
		a.events.Dispatch(ctx, domain.NewEvent(domain.PostUnpublished, post))
		if err := a.manipulator.Unpublish(ctx, post); err != nil {
			return nil, err
		}
	}

	return a.redirect(RouteList, nil)
}

// resolve finds the post behind a raw path id. Malformed ids are treated
// as missing posts.
func (a *PostAdmin) resolve(ctx context.Context, id string) (*domain.Post, error) {
	postID, err := strconv.ParseInt(id, 10, 64)
	if err != nil || postID <= 0 {
		return nil, &NotFoundError{ID: id}
	}

	post, err := a.store.FindPost(ctx, postID)
	if errors.Is(err, domain.ErrPostNotFound) {
		return nil, &NotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find post %d: %w", postID, err)
	}

	return post, nil
}

func (a *PostAdmin) redirect(route string, params map[string]string) (*Response, error) {
	target, err := a.urls.URLFor(route, params)
	if err != nil {
		return nil, fmt.Errorf("failed to generate url for %s: %w", route, err)
	}
	return &Response{RedirectURL: target}, nil
}

// render converts post content to HTML, going through the render cache when
// one is configured. Cache failures only cost a re-render.
func (a *PostAdmin) render(ctx context.Context, post *domain.Post) (template.HTML, error) {
	key := RenderCacheKey(post)

	if a.cache != nil {
		html, ok, err := a.cache.Get(ctx, key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Failed to read render cache")
		} else if ok {
			return template.HTML(html), nil
		}
	}

	rendered, err := a.markdown.Render([]byte(post.Content))
	if err != nil {
		return "", fmt.Errorf("failed to render post %d: %w", post.ID, err)
	}

	if a.cache != nil {
		if err := a.cache.Set(ctx, key, rendered.HTML); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Failed to write render cache")
		}
	}

	return template.HTML(rendered.HTML), nil
}
