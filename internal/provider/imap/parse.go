package imap

import (
	"bytes"
	"encoding/base64"
	"io"
	"strings"

	"github.com/emersion/go-message/mail"

	"github.com/nhle/mailpilot/internal/provider"
)

// parseBody parses a raw RFC 2822 message using go-message and reshapes
// it into the provider body-part tree. Inline text data is re-encoded
// as base64url because that is how the contract delivers part data.
func parseBody(raw []byte) provider.BodyPart {
	reader := bytes.NewReader(raw)

	mr, err := mail.CreateReader(reader)
	if err != nil {
		// Unparseable MIME: treat the whole payload as plain text.
		return provider.BodyPart{
			MIMEType: "text/plain",
			Data:     base64.URLEncoding.EncodeToString(raw),
		}
	}
	defer mr.Close()

	body := provider.BodyPart{MIMEType: "multipart/mixed"}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		switch h := part.Header.(type) {
		case *mail.InlineHeader:
			contentType, _, _ := h.ContentType()
			data, readErr := io.ReadAll(part.Body)
			if readErr != nil {
				continue
			}
			if strings.HasPrefix(contentType, "text/") {
				body.Parts = append(body.Parts, provider.BodyPart{
					MIMEType: contentType,
					Data:     base64.URLEncoding.EncodeToString(data),
					Size:     int64(len(data)),
				})
			}

		case *mail.AttachmentHeader:
			filename, _ := h.Filename()
			contentType, _, _ := h.ContentType()

			// Read to measure size; attachment content itself is not
			// kept in the collection.
			data, readErr := io.ReadAll(part.Body)
			if readErr != nil {
				continue
			}
			body.Parts = append(body.Parts, provider.BodyPart{
				MIMEType: contentType,
				Filename: filename,
				Size:     int64(len(data)),
			})
		}
	}

	return body
}
