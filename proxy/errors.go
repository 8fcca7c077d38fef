package proxy

// FetchError reports a failed upstream fetch: timeout, refused connection,
// or another transport error. Every requester coalesced onto the same fetch
// episode observes the identical error; nothing is cached for the key and the
// next request starts a fresh episode.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string { return "fetch " + e.URL + ": " + e.Err.Error() }

func (e *FetchError) Unwrap() error { return e.Err }
