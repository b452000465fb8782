package rest

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/dfryer1193/goblog-backend/blog/application"
	"github.com/dfryer1193/goblog-backend/blog/domain"
)

const TemplateError = "backend/error.html"

//go:embed templates
var templateFS embed.FS

// LoadTemplates parses every embedded template under its path relative to
// templates/, e.g. "backend/post/list.html".
func LoadTemplates(urls application.URLGenerator) (*template.Template, error) {
	root := template.New("").Funcs(templateFuncs(urls))

	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded templates: %w", err)
	}

	err = fs.WalkDir(sub, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}

		content, err := fs.ReadFile(sub, path)
		if err != nil {
			return fmt.Errorf("failed to read template %s: %w", path, err)
		}
		if _, err := root.New(path).Parse(string(content)); err != nil {
			return fmt.Errorf("failed to parse template %s: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return root, nil
}

func templateFuncs(urls application.URLGenerator) template.FuncMap {
	listURL := func(params map[string]string) (string, error) {
		return urls.URLFor(application.RouteList, params)
	}

	return template.FuncMap{
		// url "route_name" "key" value ...
		"url": func(name string, pairs ...any) (string, error) {
			if len(pairs)%2 != 0 {
				return "", fmt.Errorf("url %s: odd number of parameters", name)
			}
			params := make(map[string]string, len(pairs)/2)
			for i := 0; i < len(pairs); i += 2 {
				params[fmt.Sprint(pairs[i])] = fmt.Sprint(pairs[i+1])
			}
			return urls.URLFor(name, params)
		},
		"sortURL": func(current domain.Sorter, field string) (string, error) {
			next := current.Toggle(field)
			return listURL(map[string]string{"sort": next.Field, "order": next.Order})
		},
		"pageURL": func(current domain.Sorter, page int) (string, error) {
			return listURL(map[string]string{
				"page":  strconv.Itoa(page),
				"sort":  current.Field,
				"order": current.Order,
			})
		},
		"add": func(a, b int) int {
			return a + b
		},
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("2006-01-02 15:04")
		},
	}
}
