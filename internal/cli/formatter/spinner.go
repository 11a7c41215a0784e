package formatter

import (
	"fmt"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a braille spinner with a message on the terminal. It
// writes to stderr-style raw stdout, so callers should only start it when
// attached to a TTY.
type Spinner struct {
	message string
	stop    chan struct{}
	done    chan struct{}
}

// StartSpinner creates and starts a spinner, returning the stop function.
// Stop clears the spinner line and is safe to call exactly once.
func StartSpinner(message string) func() {
	s := &Spinner{
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go s.run()
	return func() {
		close(s.stop)
		<-s.done
	}
}

func (s *Spinner) run() {
	defer close(s.done)
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-s.stop:
			fmt.Print("\r\033[K")
			return
		case <-ticker.C:
			frame := spinnerFrames[i%len(spinnerFrames)]
			fmt.Printf("\r  %s %s", StylePurple.Render(frame), Dim(s.message))
		}
	}
}
