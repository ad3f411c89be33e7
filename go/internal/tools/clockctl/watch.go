package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	clockv1 "github.com/mcdev12/turnclock/go/internal/api/clock/v1"
)

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RootOptions
	Count int
}

// snapshotFrame is a pushed stream message
type snapshotFrame struct {
	Type       string        `json:"type"`
	ServerTime time.Time     `json:"server_time"`
	Data       clockv1.Clock `json:"data"`
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch <code>",
		Short: "Follow a clock live until it finishes or the stream closes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return watchClock(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Count, "count", "n", 0, "stop after this many snapshots (0 = no limit)")

	return cmd
}

func watchClock(opts *WatchOptions, code string, cmd *cobra.Command) error {
	target, err := streamURL(opts.Server, code)
	if err != nil {
		return err
	}

	dialer := websocket.Dialer{HandshakeTimeout: opts.Timeout}
	conn, resp, err := dialer.DialContext(cmd.Context(), target, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("failed to open stream: %s", resp.Status)
		}
		return fmt.Errorf("failed to open stream: %w", err)
	}
	defer conn.Close()

	out := cmd.OutOrStdout()
	for seen := 0; opts.Count == 0 || seen < opts.Count; seen++ {
		_, data, err := conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) && closeErr.Code == websocket.CloseNormalClosure {
				return nil
			}
			return fmt.Errorf("stream ended: %w", err)
		}

		var frame snapshotFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			return fmt.Errorf("invalid stream message: %w", err)
		}

		if opts.Format == "json" {
			if err := writeJSON(out, frame); err != nil {
				return err
			}
		} else {
			fmt.Fprintln(out, clockLine(&frame.Data))
		}

		if frame.Data.Finished {
			return nil
		}
	}

	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return nil
}

// streamURL maps the server base URL onto the websocket endpoint for code.
func streamURL(server, code string) (string, error) {
	u, err := url.Parse(strings.TrimRight(server, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid server URL %q: %w", server, err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported server URL scheme %q", u.Scheme)
	}

	u.Path += "/ws/clocks/" + url.PathEscape(code)
	return u.String(), nil
}
