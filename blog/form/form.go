package form

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/dfryer1193/goblog-backend/blog/domain"
	"github.com/go-playground/validator/v10"
)

var ErrUnknownForm = errors.New("unknown form type")

// Factory resolves form types by name and builds bound forms.
type Factory struct {
	validate *validator.Validate

	mu    sync.RWMutex
	types map[string]Type
}

func NewFactory(types ...Type) *Factory {
	f := &Factory{
		validate: validator.New(),
		types:    make(map[string]Type),
	}
	for _, t := range types {
		f.Register(t)
	}
	return f
}

func (f *Factory) Register(t Type) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.types[t.Name()] = t
}

func (f *Factory) Create(name string, target *domain.Post) (*Form, error) {
	f.mu.RLock()
	t, ok := f.types[name]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownForm, name)
	}

	b := NewBuilder()
	t.BuildForm(b)

	return &Form{
		name:     name,
		fields:   b.Fields(),
		target:   target,
		validate: f.validate,
		values:   make(map[string]string),
		errors:   make(map[string]string),
	}, nil
}

// Form is a field set bound to one post. Submitted values reach the post
// only when every field validates.
type Form struct {
	name      string
	fields    []Field
	target    *domain.Post
	validate  *validator.Validate
	submitted bool
	values    map[string]string
	errors    map[string]string
}

func (f *Form) Name() string {
	return f.name
}

func (f *Form) Names() []string {
	names := make([]string, 0, len(f.fields))
	for _, field := range f.fields {
		names = append(names, field.Name)
	}
	return names
}

func (f *Form) Bind(values url.Values) {
	f.submitted = true
	clear(f.values)
	clear(f.errors)

	for _, field := range f.fields {
		raw := values.Get(field.Name)
		f.values[field.Name] = raw

		if field.Rules == "" {
			continue
		}
		if err := f.validate.Var(strings.TrimSpace(raw), field.Rules); err != nil {
			f.errors[field.Name] = message(err)
		}
	}

	if len(f.errors) > 0 {
		return
	}

	for _, field := range f.fields {
		if field.Set != nil {
			field.Set(f.target, f.values[field.Name])
		}
	}
}

func (f *Form) IsValid() bool {
	return f.submitted && len(f.errors) == 0
}

func (f *Form) Errors() map[string]string {
	out := make(map[string]string, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

// View is what templates render.
type View struct {
	Name   string
	Fields []FieldView
}

type FieldView struct {
	Name    string
	Label   string
	Kind    Kind
	Value   string
	Checked bool
	Error   string
}

func (f *Form) View() any {
	return f.view()
}

func (f *Form) view() *View {
	v := &View{Name: f.name, Fields: make([]FieldView, 0, len(f.fields))}
	for _, field := range f.fields {
		value := f.values[field.Name]
		if !f.submitted && field.Get != nil {
			value = field.Get(f.target)
		}

		v.Fields = append(v.Fields, FieldView{
			Name:    field.Name,
			Label:   field.Label,
			Kind:    field.Kind,
			Value:   value,
			Checked: field.Kind == Checkbox && IsChecked(value),
			Error:   f.errors[field.Name],
		})
	}
	return v
}

func message(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "This value is not valid."
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return "This value should not be blank."
	case "max":
		return fmt.Sprintf("This value is too long. It should have %s characters or less.", fe.Param())
	default:
		return "This value is not valid."
	}
}
