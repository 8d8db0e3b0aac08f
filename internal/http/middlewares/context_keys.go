package middlewares

const (
	CtxRequestID  = "request_id"
	ctxSession    = "session"
	ctxEndSession = "session.end"
	ctxUser       = "auth.user"
)
