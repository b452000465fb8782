package rest

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/dfryer1193/goblog-backend/blog/application"
)

var ErrUnknownRoute = errors.New("unknown route")

// Route is a named path template. Segments starting with ':' are parameters.
type Route struct {
	Name    string
	Path    string
	Methods []string
}

// Routes is an ordered, named route table that can generate URLs.
type Routes struct {
	order  []Route
	byName map[string]Route
}

func NewRoutes() *Routes {
	return &Routes{byName: make(map[string]Route)}
}

// BackendRoutes is the post administration route table.
func BackendRoutes() *Routes {
	return NewRoutes().
		Add(application.RouteList, "/backend/posts", http.MethodGet).
		Add(application.RouteCreate, "/backend/posts/new", http.MethodGet, http.MethodPost).
		Add(application.RouteShow, "/backend/posts/:id", http.MethodGet).
		Add(application.RouteUpdate, "/backend/posts/:id/edit", http.MethodGet, http.MethodPost).
		Add(application.RouteDelete, "/backend/posts/:id/delete", http.MethodPost).
		Add(application.RoutePublish, "/backend/posts/:id/publish", http.MethodPost).
		Add(application.RouteUnpublish, "/backend/posts/:id/unpublish", http.MethodPost)
}

func (r *Routes) Add(name, path string, methods ...string) *Routes {
	route := Route{Name: name, Path: path, Methods: methods}
	if _, exists := r.byName[name]; !exists {
		r.order = append(r.order, route)
	} else {
		for i := range r.order {
			if r.order[i].Name == name {
				r.order[i] = route
			}
		}
	}
	r.byName[name] = route
	return r
}

func (r *Routes) Get(name string) (Route, bool) {
	route, ok := r.byName[name]
	return route, ok
}

func (r *Routes) All() []Route {
	out := make([]Route, len(r.order))
	copy(out, r.order)
	return out
}

// URLFor fills the route's parameters from params. Params the path does not
// use are appended as a query string.
func (r *Routes) URLFor(name string, params map[string]string) (string, error) {
	route, ok := r.byName[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownRoute, name)
	}

	used := make(map[string]bool)
	segments := strings.Split(route.Path, "/")
	for i, segment := range segments {
		key, isParam := strings.CutPrefix(segment, ":")
		if !isParam {
			continue
		}

		value, ok := params[key]
		if !ok || value == "" {
			return "", fmt.Errorf("route %s requires parameter %q", name, key)
		}
		segments[i] = url.PathEscape(value)
		used[key] = true
	}

	path := strings.Join(segments, "/")

	query := url.Values{}
	for k, v := range params {
		if !used[k] {
			query.Set(k, v)
		}
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	return path, nil
}
