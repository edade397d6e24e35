package scan

// Event is one notification from a background scan: zero or more progress
// events (Dir set) delivered serially, then exactly one terminal event with
// either Result or Err set, after which the channel is closed.
type Event struct {
	Dir    string
	Result *Result
	Err    error
}

// Terminal reports whether this event ends the stream.
func (e Event) Terminal() bool {
	return e.Result != nil || e.Err != nil
}

// ScanAsync runs the walk on a background goroutine so an interactive caller
// stays responsive. The channel is unbuffered: progress delivery is
// synchronous with the walk and a slow receiver slows the walk, it is never
// coalesced.
func (s *Scanner) ScanAsync(roots []string) <-chan Event {
	ch := make(chan Event)
	go func() {
		defer close(ch)
		res, err := s.scan(roots, func(dir string) {
			ch <- Event{Dir: dir}
		})
		if err != nil {
			ch <- Event{Err: err}
			return
		}
		ch <- Event{Result: res}
	}()
	return ch
}
