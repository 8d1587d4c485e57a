package firebase

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"courier-dispatch/internal/docstore"
)

const (
	eventPut         = "put"
	eventPatch       = "patch"
	eventKeepAlive   = "keep-alive"
	eventCancel      = "cancel"
	eventAuthRevoked = "auth_revoked"
)

type streamPayload struct {
	Path string `json:"path"`
}

// Subscribe opens a server-sent event stream on path. The channel closes
// when ctx ends, the server cancels the stream, or the connection drops.
func (c *Client) Subscribe(ctx context.Context, path string) (<-chan docstore.Event, error) {
	u, err := c.url(path)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("firebase: build stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, docstore.Transient(fmt.Errorf("firebase: stream %s: %w", path, err))
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		resp.Body.Close()
		se := &StatusError{Method: http.MethodGet, Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return nil, docstore.Transient(se)
		}
		return nil, se
	}

	ch := make(chan docstore.Event, 1)
	go func() {
		defer close(ch)
		defer resp.Body.Close()
		readStream(resp.Body, path, ch)
	}()
	return ch, nil
}

func readStream(r io.Reader, watched string, ch chan docstore.Event) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), 8<<20)

	var event, data string
	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "":
			if !dispatchEvent(event, data, watched, ch) {
				return
			}
			event, data = "", ""
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		}
	}
}

// dispatchEvent returns false when the stream must end.
func dispatchEvent(event, data, watched string, ch chan docstore.Event) bool {
	switch event {
	case eventPut, eventPatch:
		docstore.Notify(ch, docstore.Event{Path: eventPath(watched, data)})
	case eventCancel, eventAuthRevoked:
		return false
	case eventKeepAlive, "":
	}
	return true
}

func eventPath(watched, data string) string {
	var p streamPayload
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return watched
	}
	rel := strings.Trim(p.Path, "/")
	if rel == "" {
		return watched
	}
	return watched + "/" + rel
}
