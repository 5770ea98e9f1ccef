package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/config"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/engine"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/metrics"
)

type Handler struct {
	validate   *validator.Validate
	config     *config.Config
	engine     *engine.Engine
	translator ut.Translator

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, eng *engine.Engine) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:   validate,
		config:     cfg,
		engine:     eng,
		translator: trans,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Get("/healthz", h.Healthz)
	h.Mux.Method("GET", "/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	h.Mux.Route("/schedules", func(r chi.Router) {
		r.With(h.schedulePlan).Post("/generate", h.GenerateSchedule)
		r.Post("/solve", h.SolveSchedule) // 直接接收已经算好代价的请求
	})

	h.Mux.Post("/cost-vectors", h.BuildCostVectors)
	h.Mux.With(h.schedulePlan).Post("/calendar/expand", h.ExpandCalendar)
}
