package gateway

// Messages used when the backend gives nothing better.
const (
	MsgNetworkError  = "Network error. Please check your connection."
	MsgRequestFailed = "An unexpected error occurred"
)

// Result is the outcome of a gateway call. Exactly one of Data (OK is true)
// or Error (OK is false) is meaningful.
type Result[T any] struct {
	OK    bool
	Data  T
	Error string
}

func success[T any](data T) Result[T] {
	return Result[T]{OK: true, Data: data}
}

func failure[T any](msg string) Result[T] {
	if msg == "" {
		msg = MsgRequestFailed
	}
	return Result[T]{Error: msg}
}
