package utils

import "os"

// Notifier emits an audible cue for queue arrivals.
type Notifier interface {
	Play()
}

// Bell rings the terminal bell by writing BEL straight to the
// controlling terminal, bypassing whatever owns stdout.
type Bell struct{}

func (Bell) Play() {
	tty, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
	if err != nil {
		return
	}
	defer tty.Close()
	tty.Write([]byte("\a"))
}

// Silent is used in tests and when the terminal should stay quiet.
type Silent struct{}

func (Silent) Play() {}
