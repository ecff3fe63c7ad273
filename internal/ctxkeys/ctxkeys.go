package ctxkeys

// TraceIDKey context 中 traceId 的键类型
type TraceIDKey struct{}
