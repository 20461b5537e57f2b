package aggregator

// Kind tags which variant a View holds.
type Kind int

const (
	Loading Kind = iota
	Success
	Error
	Empty
)

func (k Kind) String() string {
	switch k {
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Error:
		return "error"
	case Empty:
		return "empty"
	default:
		return "unknown"
	}
}

// View is the state of one screen. Only the fields of the active Kind are
// meaningful: Data and Refreshing for Success, Message for Error.
// Views are replaced wholesale, never edited after publication.
type View[T any] struct {
	Kind       Kind
	Data       T
	Refreshing bool
	Message    string
}

func loadingView[T any]() View[T] {
	return View[T]{Kind: Loading}
}

func successView[T any](data T, refreshing bool) View[T] {
	return View[T]{Kind: Success, Data: data, Refreshing: refreshing}
}

func errorView[T any](msg string) View[T] {
	return View[T]{Kind: Error, Message: msg}
}

func emptyView[T any]() View[T] {
	return View[T]{Kind: Empty}
}
