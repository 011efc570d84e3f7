package chat

import (
	"fmt"
	"strings"

	"github.com/polychat/polychat/internal/core"
)

var textualMimes = map[string]bool{
	"application/json":       true,
	"application/xml":        true,
	"application/javascript": true,
	"application/x-yaml":     true,
	"application/yaml":       true,
	"application/sql":        true,
	"application/csv":        true,
}

func isTextual(mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	return strings.HasPrefix(mimeType, "text/") || textualMimes[mimeType]
}

// foldAttachments appends textual attachments to the prompt as labeled,
// delimited sections. Binary attachments are referenced by name, type and
// size only; their bytes never enter the text prompt.
func foldAttachments(prompt string, attachments []core.Attachment) string {
	if len(attachments) == 0 {
		return prompt
	}

	var sb strings.Builder
	sb.WriteString(prompt)
	for _, a := range attachments {
		sb.WriteString("\n\n")
		if isTextual(a.MimeType) && a.TextContent != "" {
			sb.WriteString(fmt.Sprintf("[Attachment: %s (%s)]\n", a.Name, a.MimeType))
			sb.WriteString(a.TextContent)
			sb.WriteString("\n[End attachment]")
			continue
		}
		sb.WriteString(fmt.Sprintf("[Attachment: %s (%s, %d bytes)]", a.Name, a.MimeType, a.Size))
	}
	return sb.String()
}
