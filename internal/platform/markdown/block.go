package markdown

import (
	"fmt"
	"strings"
)

// BlockMarkers returns the comment pair delimiting a generated block.
func BlockMarkers(name string) (string, string) {
	return fmt.Sprintf("<!-- punchclock:%s:start -->", name), fmt.Sprintf("<!-- punchclock:%s:end -->", name)
}

// SetBlock rewrites the named generated block of the body, appending it when
// absent. Text outside the markers is left alone.
func (n *Note) SetBlock(name, generated string) {
	startMarker, endMarker := BlockMarkers(name)
	block := startMarker + "\n" + generated + "\n" + endMarker
	body := n.Body

	start := strings.Index(body, startMarker)
	end := strings.Index(body, endMarker)
	if start >= 0 && end > start {
		n.Body = body[:start] + block + body[end+len(endMarker):]
		return
	}

	switch {
	case strings.TrimSpace(body) == "":
		n.Body = block + "\n"
	case strings.HasSuffix(body, "\n"):
		n.Body = body + "\n" + block + "\n"
	default:
		n.Body = body + "\n\n" + block + "\n"
	}
}

// Block returns the content between the named markers.
func (n Note) Block(name string) (string, bool) {
	startMarker, endMarker := BlockMarkers(name)
	start := strings.Index(n.Body, startMarker)
	end := strings.Index(n.Body, endMarker)
	if start < 0 || end <= start {
		return "", false
	}
	return strings.Trim(n.Body[start+len(startMarker):end], "\n"), true
}
