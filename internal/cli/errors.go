package cli

import (
	"fmt"
	"io"

	deckerrors "github.com/randalmurphal/taskdeck/internal/errors"
)

// PrintError prints an error with appropriate formatting.
// A DeckError uses its user-friendly format; anything else prints as is.
func PrintError(w io.Writer, err error, verbose bool) {
	if deckErr := deckerrors.AsDeckError(err); deckErr != nil {
		_, _ = fmt.Fprintln(w, deckErr.UserMessage())
		if verbose {
			_, _ = fmt.Fprintf(w, "\nCode: %s\n", deckErr.Code)
			if deckErr.Cause != nil {
				_, _ = fmt.Fprintf(w, "Cause: %v\n", deckErr.Cause)
			}
		}
		return
	}
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
}
