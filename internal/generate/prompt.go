package generate

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/briefpress/briefpress/internal/domain"
)

// attachmentPreviewBytes caps how much of a decoded attachment is inlined
// into the prompt.
const attachmentPreviewBytes = 100

// BuildPrompt assembles the provider prompt from the brief, attachment
// previews and, on a revision round, the current document.
func BuildPrompt(brief string, attachments []domain.Attachment, prior string) string {
	if prior != "" {
		return fmt.Sprintf("Modify the existing index.html to incorporate: %s. Existing code: %s. Output only the modified index.html.", brief, prior)
	}
	return fmt.Sprintf("Generate a single index.html file with inline CSS and JS to implement this brief: %s. Use attachments if needed: %s. Make it a complete, functional single-page app.",
		brief, attachmentContext(attachments))
}

// attachmentContext renders a short text preview per attachment. Decoding is
// defensive: anything that cannot be decoded or is not text degrades to a
// placeholder annotation, never an error.
func attachmentContext(attachments []domain.Attachment) string {
	var b strings.Builder
	for _, a := range attachments {
		if !strings.HasPrefix(a.URL, "data:") {
			fmt.Fprintf(&b, "\nAttachment %s: available at %s", a.Name, a.URL)
			continue
		}
		fmt.Fprintf(&b, "\nAttachment %s: %s...", a.Name, dataURIPreview(a.URL))
	}
	return b.String()
}

func dataURIPreview(uri string) string {
	_, data, ok := strings.Cut(uri, ",")
	if !ok {
		return "[binary data]"
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(data)
	}
	if err != nil {
		return "[binary data]"
	}

	if len(raw) > attachmentPreviewBytes {
		raw = raw[:attachmentPreviewBytes]
	}
	preview := strings.ToValidUTF8(string(raw), "")
	if strings.TrimSpace(preview) == "" {
		return "[binary data]"
	}
	return preview
}
