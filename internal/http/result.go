package httpapi

// Result response envelope shared by every JSON endpoint.
type Result[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Result  T      `json:"result,omitempty"`
}

func Ok[T any](message string, result T) Result[T] {
	return Result[T]{Success: true, Message: message, Result: result}
}

func Fail(message string) Result[any] {
	return Result[any]{Success: false, Error: message}
}
