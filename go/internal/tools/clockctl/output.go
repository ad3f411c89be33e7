package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	clockv1 "github.com/mcdev12/turnclock/go/internal/api/clock/v1"
	"github.com/mcdev12/turnclock/go/internal/clock"
)

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeClock prints one line per player, marking whose turn it is.
func writeClock(w io.Writer, c *clockv1.Clock) error {
	if _, err := fmt.Fprintf(w, "%s  %s\n", c.Code, c.State); err != nil {
		return err
	}
	for i, name := range c.PlayerNames {
		marker := " "
		if c.Started && !c.Finished && int32(i) == c.CurrentPlayer {
			marker = ">"
		}
		if _, err := fmt.Fprintf(w, "%s %d  %-20s %s\n", marker, i, name, clock.FormatCountdown(c.RemainingMs[i])); err != nil {
			return err
		}
	}
	return nil
}

// clockLine renders a clock on a single line for the watch stream.
func clockLine(c *clockv1.Clock) string {
	parts := make([]string, len(c.PlayerNames))
	for i, name := range c.PlayerNames {
		entry := name + " " + clock.FormatCountdown(c.RemainingMs[i])
		if c.Started && !c.Finished && int32(i) == c.CurrentPlayer {
			entry = "[" + entry + "]"
		}
		parts[i] = entry
	}
	return fmt.Sprintf("%s %-11s %s", c.Code, c.State, strings.Join(parts, "  "))
}
