package handler

import (
	"io"
	"net/http"

	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/protocol"
)

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	h.successResponse(w, r, "服务正常", map[string]string{
		"environment": h.config.Environment,
		"transport":   h.config.Engine.Transport,
	})
}

func (h *Handler) GenerateSchedule(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(SchedulePlanCtx).(*domain.SchedulePlan)

	result, err := h.engine.Generate(r.Context(), plan)
	if err != nil {
		h.failureResponse(w, r, err)
		return
	}

	h.successResponse(w, r, "生成排班结果成功", result)
}

// SolveSchedule 接收与求解器之间相同格式的请求，data 中只返回排班记录
func (h *Handler) SolveSchedule(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	req, err := protocol.DecodeRequest(body)
	if err != nil {
		h.failureResponse(w, r, err)
		return
	}

	assignments, err := h.engine.Solve(r.Context(), req)
	if err != nil {
		h.failureResponse(w, r, err)
		return
	}

	h.successResponse(w, r, "排班成功", assignments)
}

func (h *Handler) BuildCostVectors(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Employees []domain.Employee `json:"employees" validate:"required,dive"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	costs, err := h.engine.CostVectors(req.Employees)
	if err != nil {
		h.failureResponse(w, r, err)
		return
	}

	h.successResponse(w, r, "计算代价向量成功", costs)
}

func (h *Handler) ExpandCalendar(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(SchedulePlanCtx).(*domain.SchedulePlan)

	dates, err := h.engine.ExpandDates(plan)
	if err != nil {
		h.failureResponse(w, r, err)
		return
	}

	h.successResponse(w, r, "展开日期成功", dates)
}
