// Package handler provides HTTP handlers for the prediction feature.
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	naventity "crop_yield/internal/feature/navigation/domain/entity"
	"crop_yield/internal/feature/navigation/transport/middleware"
	navusecase "crop_yield/internal/feature/navigation/usecase"
	"crop_yield/internal/feature/prediction/domain/entity"
	"crop_yield/internal/feature/prediction/transport/http/dto"
	"crop_yield/internal/platform/web"
)

const msgModelUnavailable = "The prediction model is unavailable. Please try again later."

// PredictionUsecase defines the prediction operations used by the handler.
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type PredictionUsecase interface {
	Policy() entity.InputPolicy
	Predict(ctx context.Context, features entity.FeatureRecord) (float64, error)
	Assess(y float64) entity.Assessment
}

// Navigator guards the prediction pages and records results in the session.
type Navigator interface {
	Visit(s *naventity.Session, page naventity.Page) (naventity.Page, error)
	RecordPrediction(s *naventity.Session, y float64) error
	RequiresAuth(p naventity.Page) bool
}

// Recorder receives prediction metrics.
type Recorder interface {
	Prediction(band string)
	ModelCall(d time.Duration, err error)
}

// PredictionHandler handles the input form, the result page and the JSON API.
type PredictionHandler struct {
	uc      PredictionUsecase
	nav     Navigator
	metrics Recorder
}

// NewPredictionHandler creates a new PredictionHandler.
func NewPredictionHandler(uc PredictionUsecase, nav Navigator, rec Recorder) *PredictionHandler {
	return &PredictionHandler{uc: uc, nav: nav, metrics: rec}
}

// ShowForm renders the input form with the policy's minimum values preselected.
func (h *PredictionHandler) ShowForm(c *gin.Context) {
	if ok, _ := middleware.Guard(c, h.nav, naventity.PagePredict); !ok {
		return
	}
	p := h.uc.Policy()
	rec := entity.FeatureRecord{
		RainfallMM:    p.Rainfall.Min,
		TemperatureC:  p.Temperature.Min,
		DaysToHarvest: int(p.DaysToHarvest.Min),
	}
	h.renderForm(c, http.StatusOK, rec, nil)
}

// Submit validates the form, calls the model once and moves the session to the result page.
// - invalid input re-renders the form with 400 and the model is not called
// - a model failure renders the error page with 502 and the session stays on the form
func (h *PredictionHandler) Submit(c *gin.Context) {
	if ok, _ := middleware.Guard(c, h.nav, naventity.PagePredict); !ok {
		return
	}

	var req dto.PredictReq
	if err := c.ShouldBind(&req); err != nil {
		slog.Warn("prediction input rejected", "error", err, "remote_addr", c.ClientIP())
		h.renderForm(c, http.StatusBadRequest, req.Record(), bindingErrors(err))
		return
	}
	rec := req.Record()
	if err := h.uc.Policy().Validate(rec); err != nil {
		slog.Warn("prediction input rejected", "error", err, "remote_addr", c.ClientIP())
		h.renderForm(c, http.StatusBadRequest, rec, asValidationErrors(err))
		return
	}

	y, err := h.predict(c.Request.Context(), rec)
	if err != nil {
		slog.Error("prediction failed", "error", err, "remote_addr", c.ClientIP())
		c.HTML(http.StatusBadGateway, "error.html", middleware.ViewData(c, gin.H{"Title": "Error", "Message": msgModelUnavailable}))
		return
	}

	s := middleware.SessionFrom(c)
	if err := h.nav.RecordPrediction(s, y); err != nil {
		slog.Error("failed to record prediction", "error", err, "page", s.Page, "remote_addr", c.ClientIP())
		c.Redirect(http.StatusSeeOther, s.Page.Path())
		return
	}
	a := h.uc.Assess(y)
	h.metrics.Prediction(a.Band.Key())
	slog.Info("prediction complete", "yield", y, "band", a.Band.Key(), "remote_addr", c.ClientIP())
	c.Redirect(http.StatusSeeOther, naventity.PageResult.Path())
}

// ShowResult renders the stored prediction, or the "no prediction" view when the
// session has none. In that case the session is moved back to the predict page.
func (h *PredictionHandler) ShowResult(c *gin.Context) {
	ok, err := middleware.Guard(c, h.nav, naventity.PageResult)
	if !ok {
		return
	}
	if errors.Is(err, navusecase.ErrNoPrediction) {
		// The session returns to the form so a reload lands there.
		_, _ = h.nav.Visit(middleware.SessionFrom(c), naventity.PagePredict)
		c.HTML(http.StatusOK, "no_prediction.html", middleware.ViewData(c, gin.H{"Title": "Result"}))
		return
	}
	s := middleware.SessionFrom(c)
	a := h.uc.Assess(*s.LastPrediction)
	c.HTML(http.StatusOK, "result.html", middleware.ViewData(c, gin.H{
		"Title":      "Result",
		"Assessment": a,
		"Band":       a.Band.Key(),
	}))
}

// PredictAPI handles POST /api/v1/predict. It answers in JSON and does not move the
// session between pages.
func (h *PredictionHandler) PredictAPI(c *gin.Context) {
	s := middleware.SessionFrom(c)
	if h.nav.RequiresAuth(naventity.PagePredict) && !s.Authenticated {
		c.JSON(http.StatusUnauthorized, dto.ErrorRes{Error: "login required"})
		return
	}

	var req dto.PredictReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("prediction input rejected", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: "invalid request", Fields: dto.NewFieldErrors(bindingErrors(err))})
		return
	}
	rec := req.Record()
	if err := h.uc.Policy().Validate(rec); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: "invalid request", Fields: dto.NewFieldErrors(asValidationErrors(err))})
		return
	}

	y, err := h.predict(c.Request.Context(), rec)
	if err != nil {
		slog.Error("prediction failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadGateway, dto.ErrorRes{Error: "model unavailable"})
		return
	}
	a := h.uc.Assess(y)
	h.metrics.Prediction(a.Band.Key())
	c.JSON(http.StatusOK, dto.NewPredictRes(a, rec, web.FormatYield(y)))
}

func (h *PredictionHandler) predict(ctx context.Context, rec entity.FeatureRecord) (float64, error) {
	start := time.Now()
	y, err := h.uc.Predict(ctx, rec)
	h.metrics.ModelCall(time.Since(start), err)
	return y, err
}

func (h *PredictionHandler) renderForm(c *gin.Context, status int, rec entity.FeatureRecord, errs entity.ValidationErrors) {
	c.HTML(status, "predict.html", middleware.ViewData(c, gin.H{
		"Title":       "Predict",
		"Policy":      h.uc.Policy(),
		"Record":      rec,
		"Details":     rec.Details(),
		"Flags":       entity.AllFlags(),
		"Crops":       entity.AllCrops(),
		"Soils":       entity.AllSoils(),
		"FieldErrors": errs,
	}))
}

// bindingErrors turns gin binding failures into per-field messages.
func bindingErrors(err error) entity.ValidationErrors {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return entity.ValidationErrors{{Field: "request", Message: "could not be parsed"}}
	}
	out := make(entity.ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		name := dto.FieldNames[fe.Field()]
		if name == "" {
			name = fe.Field()
		}
		out = append(out, entity.FieldError{Field: name, Message: ruleMessage(fe)})
	}
	return out
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	default:
		return "is invalid"
	}
}

func asValidationErrors(err error) entity.ValidationErrors {
	var verrs entity.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs
	}
	return entity.ValidationErrors{{Field: "request", Message: err.Error()}}
}
