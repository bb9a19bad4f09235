package events

import (
	"fmt"
	"io"

	"github.com/randalmurphal/taskdeck/internal/model"
)

// Follow writes one line per event received on ch to out until ch is
// closed. The returned function blocks until every received event has been
// written.
func Follow(out io.Writer, ch <-chan Event) (wait func()) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range ch {
			_, _ = fmt.Fprintln(out, FormatEvent(ev))
		}
	}()
	return func() { <-done }
}

// FormatEvent renders an event as a single line.
func FormatEvent(event Event) string {
	line := fmt.Sprintf("%s %-16s %s", event.Time.Format("15:04:05"), event.Type, event.EntityID)
	switch data := event.Data.(type) {
	case model.Project:
		line += fmt.Sprintf(" %q", data.Name)
	case model.Task:
		line += fmt.Sprintf(" %q [%s]", data.Title, data.Status)
	case CascadeData:
		if n := len(data.RemovedTaskIDs); n > 0 {
			line += fmt.Sprintf(" (+%d tasks)", n)
		}
	}
	return line
}
