package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/dfryer1193/goblog-backend/blog/application"
	"github.com/dfryer1193/goblog-backend/blog/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// PostAdmin is the set of backend use cases the controller serves.
type PostAdmin interface {
	List(ctx context.Context, page int, sorter domain.Sorter) (*application.Response, error)
	Show(ctx context.Context, id string) (*application.Response, error)
	Create(ctx context.Context, sub application.Submission) (*application.Response, error)
	Update(ctx context.Context, id string, sub application.Submission) (*application.Response, error)
	Delete(ctx context.Context, id string) (*application.Response, error)
	Publish(ctx context.Context, id string) (*application.Response, error)
	Unpublish(ctx context.Context, id string) (*application.Response, error)
}

// PostController adapts gin requests to PostAdmin calls.
type PostController struct {
	admin PostAdmin
}

func NewPostController(admin PostAdmin) *PostController {
	return &PostController{admin: admin}
}

// Handlers maps route names to handlers.
func (pc *PostController) Handlers() map[string]gin.HandlerFunc {
	return map[string]gin.HandlerFunc{
		application.RouteList:      pc.List,
		application.RouteCreate:    pc.Create,
		application.RouteShow:      pc.Show,
		application.RouteUpdate:    pc.Update,
		application.RouteDelete:    pc.Delete,
		application.RoutePublish:   pc.Publish,
		application.RouteUnpublish: pc.Unpublish,
	}
}

func (pc *PostController) List(c *gin.Context) {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil {
		page = 1
	}
	sorter := domain.NewSorter(c.Query("sort"), c.Query("order"))

	resp, err := pc.admin.List(c.Request.Context(), page, sorter)
	respond(c, resp, err)
}

func (pc *PostController) Show(c *gin.Context) {
	resp, err := pc.admin.Show(c.Request.Context(), c.Param("id"))
	respond(c, resp, err)
}

func (pc *PostController) Create(c *gin.Context) {
	sub, ok := submission(c)
	if !ok {
		return
	}

	resp, err := pc.admin.Create(c.Request.Context(), sub)
	respond(c, resp, err)
}

func (pc *PostController) Update(c *gin.Context) {
	sub, ok := submission(c)
	if !ok {
		return
	}

	resp, err := pc.admin.Update(c.Request.Context(), c.Param("id"), sub)
	respond(c, resp, err)
}

func (pc *PostController) Delete(c *gin.Context) {
	resp, err := pc.admin.Delete(c.Request.Context(), c.Param("id"))
	respond(c, resp, err)
}

func (pc *PostController) Publish(c *gin.Context) {
	resp, err := pc.admin.Publish(c.Request.Context(), c.Param("id"))
	respond(c, resp, err)
}

func (pc *PostController) Unpublish(c *gin.Context) {
	resp, err := pc.admin.Unpublish(c.Request.Context(), c.Param("id"))
	respond(c, resp, err)
}

func submission(c *gin.Context) (application.Submission, bool) {
	sub := application.Submission{Method: c.Request.Method}
	if c.Request.Method != http.MethodPost {
		return sub, true
	}

	if err := c.Request.ParseForm(); err != nil {
		log.Warn().Err(err).Str("path", c.Request.URL.Path).Msg("Failed to parse form submission")
		renderError(c, http.StatusBadRequest, "The submitted form could not be read")
		return sub, false
	}

	sub.Values = c.Request.PostForm
	return sub, true
}

func respond(c *gin.Context, resp *application.Response, err error) {
	if err != nil {
		var notFound *application.NotFoundError
		if errors.As(err, &notFound) || errors.Is(err, domain.ErrPostNotFound) {
			renderError(c, http.StatusNotFound, "Requested post does not exist")
			return
		}

		log.Error().
			Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("postID", c.Param("id")).
			Msg("Backend request failed")
		_ = c.Error(err)
		renderError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	if resp.IsRedirect() {
		c.Redirect(http.StatusFound, resp.RedirectURL)
		return
	}

	c.HTML(http.StatusOK, resp.Template, resp.Data)
}

func renderError(c *gin.Context, status int, message string) {
	c.HTML(status, TemplateError, gin.H{
		"status":  status,
		"message": message,
	})
	c.Abort()
}
