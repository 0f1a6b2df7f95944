package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"crop_yield/internal/feature/navigation/domain/entity"
	"crop_yield/internal/feature/navigation/usecase"
)

// Visitor decides which page a direct visit may render.
type Visitor interface {
	Visit(s *entity.Session, page entity.Page) (entity.Page, error)
}

// Guard runs the navigation guard for a GET of page. It returns true when the caller
// should render page; otherwise the response has already been written (redirect or 404).
// A true result may come with usecase.ErrNoPrediction for the result page.
func Guard(c *gin.Context, nav Visitor, page entity.Page) (bool, error) {
	s := SessionFrom(c)
	got, err := nav.Visit(s, page)
	switch {
	case errors.Is(err, usecase.ErrUnknownPage):
		c.AbortWithStatus(http.StatusNotFound)
		return false, err
	case errors.Is(err, usecase.ErrAuthRequired):
		slog.Info("page requires login", "page", page, "remote_addr", c.ClientIP())
	}
	if got != page {
		c.Redirect(http.StatusSeeOther, got.Path())
		return false, err
	}
	return true, err
}
