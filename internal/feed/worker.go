package feed

// Worker is a background job the API can start and poll.
type Worker interface {
	StartWork()
	Result() interface{}
	Progress() float64
	Done() bool
	Error() error
}
