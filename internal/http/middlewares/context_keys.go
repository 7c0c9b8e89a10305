package middlewares

// gin context keys; plain strings because gin's Set/Get take string keys.
const (
	CtxRequestID = "request_id"
)
