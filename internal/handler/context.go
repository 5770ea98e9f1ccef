package handler

type ContextKey string

var (
	SchedulePlanCtx ContextKey = "schedulePlan"
)
