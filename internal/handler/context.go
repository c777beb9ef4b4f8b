package handler

type ContextKey string

var (
	IdentityCtx ContextKey = "identity"
	ShiftCtx    ContextKey = "shift"
	TeamCtx     ContextKey = "team"
	WorkerCtx   ContextKey = "worker"
	TemplateCtx ContextKey = "shiftTemplate"
	PatternCtx  ContextKey = "weeklyPattern"
)
