package content

// AuthError 单次重试后鉴权仍失败
type AuthError struct {
	Op string
}

func (e *AuthError) Error() string {
	return "content: " + e.Op + ": authorization failed after retry"
}

// RequestError 非鉴权类业务失败，Raw 保留原始响应用于排障
type RequestError struct {
	Op  string
	Raw string
}

func (e *RequestError) Error() string {
	return "content: " + e.Op + ": upstream failure: " + e.Raw
}
