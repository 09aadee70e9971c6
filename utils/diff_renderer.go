package utils

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
)

// RenderDocPreview prints a dry-run preview of a doc change: removed lines in
// red, added lines highlighted through chroma in the configured theme.
// Highlighting failures fall back to plain text so a preview never aborts a
// run.
func RenderDocPreview(w io.Writer, removed []string, added []string, language string, theme string) {
	for _, line := range removed {
		fmt.Fprintf(w, "\x1b[91m- %s\x1b[0m\n", line)
	}
	for _, line := range added {
		var buf bytes.Buffer
		if err := quick.Highlight(&buf, line, language, "terminal256", theme); err != nil {
			fmt.Fprintf(w, "\x1b[92m+ %s\x1b[0m\n", line)
			continue
		}
		fmt.Fprintf(w, "\x1b[92m+\x1b[0m %s\n", strings.TrimRight(buf.String(), "\n"))
	}
}
