// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"crop_yield/internal/feature/auth/transport/http/dto"
	"crop_yield/internal/feature/auth/usecase"
	naventity "crop_yield/internal/feature/navigation/domain/entity"
	"crop_yield/internal/feature/navigation/transport/middleware"
	"crop_yield/internal/platform/metrics"
)

// 画面に表示するメッセージ
const (
	msgIncorrectCredentials = "Incorrect Username/Password"
	msgLoginUnavailable     = "Login is temporarily unavailable. Please try again."
	msgFillAllFields        = "Please fill out all fields!"
	msgPasswordMismatch     = "Passwords do not match!"
	msgUsernameTaken        = "Username already exists. Try another."
	msgRegisterFailed       = "Registration failed. Please try again."
	msgRegistered           = "User Registered Successfully! Please Login."
	msgLoggedOut            = "Logged out successfully!"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	// Register は入力を検証し、新規ユーザーを登録します。
	Register(ctx context.Context, username, password, confirm string) error
	// Authenticate はユーザー名とパスワードの組が正しいかを返します。
	Authenticate(ctx context.Context, username, password string) (bool, error)
}

// Navigator はログイン・登録・ログアウトに伴うセッション遷移を定義します。
type Navigator interface {
	Visit(s *naventity.Session, page naventity.Page) (naventity.Page, error)
	Fire(s *naventity.Session, action naventity.Action) (naventity.Page, error)
	LoginSucceeded(s *naventity.Session, username string) error
	Logout(s *naventity.Session) error
}

// Recorder は認証試行の計測を定義します。
type Recorder interface {
	Login(outcome string)
	Registration(outcome string)
}

// AuthHandler は認証画面のHTTPリクエストを処理します。
type AuthHandler struct {
	auth    AuthUsecase
	nav     Navigator
	metrics Recorder
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
// 依存性注入用のコンストラクタです。
func NewAuthHandler(auth AuthUsecase, nav Navigator, rec Recorder) *AuthHandler {
	return &AuthHandler{auth: auth, nav: nav, metrics: rec}
}

// ShowLogin はログインフォームを表示します。ログイン済みの場合はホームへリダイレクトします。
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	if ok, _ := middleware.Guard(c, h.nav, naventity.PageLogin); !ok {
		return
	}
	c.HTML(http.StatusOK, "login.html", middleware.ViewData(c, gin.H{"Title": "Login", "Username": ""}))
}

// Login はログインフォームの送信を処理します。
// - 入力不足は400で再表示
// - 認証失敗は401で再表示（セッションは変更しない）
// - ストレージエラーは500で再表示
// - 成功時はセッションを認証済みにしてホームへリダイレクト
func (h *AuthHandler) Login(c *gin.Context) {
	s := middleware.SessionFrom(c)
	if s.Authenticated {
		c.Redirect(http.StatusSeeOther, naventity.PageHome.Path())
		return
	}

	var form dto.LoginForm
	if err := c.ShouldBind(&form); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		h.metrics.Login(metrics.OutcomeRejected)
		h.renderLogin(c, http.StatusBadRequest, msgIncorrectCredentials, form.Username)
		return
	}

	// 登録時と同じく前後の空白は無視する
	username := strings.TrimSpace(form.Username)
	ok, err := h.auth.Authenticate(c.Request.Context(), username, form.Password)
	if err != nil {
		slog.Error("login failed", "error", err, "username", username, "remote_addr", c.ClientIP())
		h.metrics.Login(metrics.OutcomeError)
		h.renderLogin(c, http.StatusInternalServerError, msgLoginUnavailable, username)
		return
	}
	if !ok {
		// ユーザー列挙攻撃を防止するため、ユーザー不在とパスワード不一致を区別しない
		slog.Warn("login failed", "username", username, "remote_addr", c.ClientIP())
		h.metrics.Login(metrics.OutcomeFailure)
		h.renderLogin(c, http.StatusUnauthorized, msgIncorrectCredentials, username)
		return
	}

	// フォームを別タブ等から送信した場合でもログインページからの遷移として扱う
	_, _ = h.nav.Visit(s, naventity.PageLogin)
	if err := h.nav.LoginSucceeded(s, username); err != nil {
		slog.Error("login transition failed", "error", err, "page", s.Page, "remote_addr", c.ClientIP())
		h.metrics.Login(metrics.OutcomeError)
		h.renderLogin(c, http.StatusInternalServerError, msgLoginUnavailable, username)
		return
	}
	s.Flash = "Welcome, " + username + "!"
	h.metrics.Login(metrics.OutcomeSuccess)
	slog.Info("user login successful", "username", username, "remote_addr", c.ClientIP())
	c.Redirect(http.StatusSeeOther, s.Page.Path())
}

// ShowRegister は登録フォームを表示します。
func (h *AuthHandler) ShowRegister(c *gin.Context) {
	if ok, _ := middleware.Guard(c, h.nav, naventity.PageRegister); !ok {
		return
	}
	c.HTML(http.StatusOK, "register.html", middleware.ViewData(c, gin.H{"Title": "Register", "Username": ""}))
}

// Register は登録フォームの送信を処理します。
// - 入力不足・パスワード不一致は400で再表示
// - ユーザー名重複は409で再表示（既存レコードは変更されない）
// - 成功時はログインページへリダイレクト
func (h *AuthHandler) Register(c *gin.Context) {
	s := middleware.SessionFrom(c)
	if s.Authenticated {
		c.Redirect(http.StatusSeeOther, naventity.PageHome.Path())
		return
	}

	var form dto.RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		slog.Warn("register validation failed", "error", err, "remote_addr", c.ClientIP())
		h.metrics.Registration(metrics.OutcomeRejected)
		h.renderRegister(c, http.StatusBadRequest, msgFillAllFields, form.Username)
		return
	}

	err := h.auth.Register(c.Request.Context(), form.Username, form.Password, form.ConfirmPassword)
	switch {
	case err == nil:
	case errors.Is(err, usecase.ErrMissingFields):
		h.metrics.Registration(metrics.OutcomeRejected)
		h.renderRegister(c, http.StatusBadRequest, msgFillAllFields, form.Username)
		return
	case errors.Is(err, usecase.ErrPasswordMismatch):
		h.metrics.Registration(metrics.OutcomeRejected)
		h.renderRegister(c, http.StatusBadRequest, msgPasswordMismatch, form.Username)
		return
	case errors.Is(err, usecase.ErrUsernameTaken):
		slog.Warn("register failed", "error", err, "username", form.Username, "remote_addr", c.ClientIP())
		h.metrics.Registration(metrics.OutcomeFailure)
		h.renderRegister(c, http.StatusConflict, msgUsernameTaken, form.Username)
		return
	default:
		slog.Error("register failed", "error", err, "username", form.Username, "remote_addr", c.ClientIP())
		h.metrics.Registration(metrics.OutcomeError)
		h.renderRegister(c, http.StatusInternalServerError, msgRegisterFailed, form.Username)
		return
	}

	_, _ = h.nav.Visit(s, naventity.PageRegister)
	next, err := h.nav.Fire(s, naventity.ActionRegistered)
	if err != nil {
		slog.Warn("register transition failed", "error", err, "page", s.Page, "remote_addr", c.ClientIP())
	}
	s.Flash = msgRegistered
	h.metrics.Registration(metrics.OutcomeSuccess)
	slog.Info("user registered", "username", form.Username, "remote_addr", c.ClientIP())
	c.Redirect(http.StatusSeeOther, next.Path())
}

// Logout は認証状態と保存済みの予測を破棄し、ログインページへリダイレクトします。
func (h *AuthHandler) Logout(c *gin.Context) {
	s := middleware.SessionFrom(c)
	username := s.Username
	if err := h.nav.Logout(s); err != nil {
		slog.Warn("logout rejected", "error", err, "remote_addr", c.ClientIP())
		c.Redirect(http.StatusSeeOther, s.Page.Path())
		return
	}
	s.Flash = msgLoggedOut
	slog.Info("user logged out", "username", username, "remote_addr", c.ClientIP())
	c.Redirect(http.StatusSeeOther, s.Page.Path())
}

func (h *AuthHandler) renderLogin(c *gin.Context, status int, msg, username string) {
	c.HTML(status, "login.html", middleware.ViewData(c, gin.H{"Title": "Login", "Error": msg, "Username": username}))
}

func (h *AuthHandler) renderRegister(c *gin.Context, status int, msg, username string) {
	c.HTML(status, "register.html", middleware.ViewData(c, gin.H{"Title": "Register", "Error": msg, "Username": username}))
}
