// Package handler はnavigationフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"crop_yield/internal/feature/navigation/domain/entity"
	"crop_yield/internal/feature/navigation/transport/middleware"
	"crop_yield/internal/feature/navigation/usecase"
)

// Navigator はページ遷移の判定を定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type Navigator interface {
	Visit(s *entity.Session, page entity.Page) (entity.Page, error)
	Fire(s *entity.Session, action entity.Action) (entity.Page, error)
}

// titles はページごとの表示タイトルです。
var titles = map[entity.Page]string{
	entity.PageHome:    "Home",
	entity.PageAbout:   "About",
	entity.PageContact: "Contact",
}

// PageHandler は静的ページとナビゲーションボタンを処理します。
type PageHandler struct {
	nav Navigator
}

// NewPageHandler はPageHandlerの新しいインスタンスを生成します。
func NewPageHandler(nav Navigator) *PageHandler {
	return &PageHandler{nav: nav}
}

// Root はセッションの現在ページへリダイレクトします。
func (h *PageHandler) Root(c *gin.Context) {
	s := middleware.SessionFrom(c)
	c.Redirect(http.StatusFound, s.Page.Path())
}

// Show はhome・about・contactのような入力を持たないページを描画するハンドラーを返します。
func (h *PageHandler) Show(page entity.Page) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ok, _ := middleware.Guard(c, h.nav, page); !ok {
			return
		}
		c.HTML(http.StatusOK, string(page)+".html", middleware.ViewData(c, gin.H{"Title": titles[page]}))
	}
}

// Navigate はPOST /nav/:action のボタン操作を遷移表に従って処理します。
// - 定義されていない遷移はセッションを変更せず、現在のページへ戻します
// - 認証が必要な場合はログインページへリダイレクトします
func (h *PageHandler) Navigate(c *gin.Context) {
	s := middleware.SessionFrom(c)
	action := entity.Action(c.Param("action"))
	from := s.Page

	next, err := h.nav.Fire(s, action)
	switch {
	case err == nil:
		slog.Debug("navigated", "from", from, "action", action, "to", next, "remote_addr", c.ClientIP())
	case errors.Is(err, usecase.ErrAuthRequired):
		slog.Info("navigation requires login", "from", from, "action", action, "remote_addr", c.ClientIP())
	case errors.Is(err, usecase.ErrTransitionNotAllowed):
		slog.Warn("navigation rejected", "error", err, "from", from, "action", action, "remote_addr", c.ClientIP())
	default:
		slog.Error("navigation failed", "error", err, "from", from, "action", action, "remote_addr", c.ClientIP())
	}
	c.Redirect(http.StatusSeeOther, next.Path())
}
