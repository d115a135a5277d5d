package whatsapp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// WebhookPayload mirrors the Meta Graph API delivery envelope for a WhatsApp
// Business Account webhook.
type WebhookPayload struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

type Change struct {
	Field string      `json:"field"`
	Value ChangeValue `json:"value"`
}

type ChangeValue struct {
	MessagingProduct string    `json:"messaging_product"`
	Metadata         Metadata  `json:"metadata"`
	Contacts         []Contact `json:"contacts"`
	Messages         []Message `json:"messages"`
}

type Metadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

type Contact struct {
	WaID    string  `json:"wa_id"`
	Profile Profile `json:"profile"`
}

type Profile struct {
	Name string `json:"name"`
}

type Message struct {
	From      string `json:"from"`
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`

	Text     *TextContent  `json:"text,omitempty"`
	Image    *MediaContent `json:"image,omitempty"`
	Document *MediaContent `json:"document,omitempty"`
	Video    *MediaContent `json:"video,omitempty"`
}

type TextContent struct {
	Body string `json:"body"`
}

type MediaContent struct {
	ID       string `json:"id"`
	Caption  string `json:"caption,omitempty"`
	Filename string `json:"filename,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
}

// ValidSignature checks the X-Hub-Signature-256 header against the raw request
// body. An empty secret disables verification (development mode).
func ValidSignature(body []byte, header string, secret string) bool {
	if secret == "" {
		return true
	}

	if !strings.HasPrefix(header, "sha256=") {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(strings.TrimPrefix(header, "sha256=")), []byte(expected))
}

// ExtractContent pulls the display text and media reference out of a message
// according to its type.
func ExtractContent(msg Message) (content string, mediaURL string) {
	switch msg.Type {
	case "text":
		if msg.Text != nil {
			content = msg.Text.Body
		}
	case "image":
		content = "Image received"
		if msg.Image != nil {
			if msg.Image.Caption != "" {
				content = msg.Image.Caption
			}
			mediaURL = msg.Image.ID
		}
	case "document":
		content = "Document received"
		if msg.Document != nil {
			if msg.Document.Caption != "" {
				content = msg.Document.Caption
			} else if msg.Document.Filename != "" {
				content = msg.Document.Filename
			}
			mediaURL = msg.Document.ID
		}
	case "video":
		content = "Video received"
		if msg.Video != nil {
			if msg.Video.Caption != "" {
				content = msg.Video.Caption
			}
			mediaURL = msg.Video.ID
		}
	default:
		content = "Unsupported message type: " + msg.Type
	}

	return content, mediaURL
}

// categoryKeywords is evaluated in declaration order; the first group with a
// match wins.
var categoryKeywords = []struct {
	category string
	words    []string
}{
	{"bursary", []string{"bursary", "bursaries", "scholarship", "nsfas", "funding", "study", "university", "college"}},
	{"career", []string{"job", "jobs", "career", "employment", "position", "vacancy", "hiring", "recruit", "work"}},
	{"learnership", []string{"learnership", "apprentice", "internship", "training", "learner"}},
	{"business", []string{"business", "entrepreneur", "startup", "grant", "nyda", "seda", "funding"}},
}

// CategorizeMessage assigns a coarse listing category by keyword matching.
func CategorizeMessage(content string) string {
	contentLower := strings.ToLower(content)

	for _, group := range categoryKeywords {
		for _, word := range group.words {
			if strings.Contains(contentLower, word) {
				return group.category
			}
		}
	}

	return "general"
}

// AllowedSender checks the sender phone number against a comma-separated
// allow-list; an empty list accepts everyone.
func AllowedSender(from string, allowList string) bool {
	if strings.TrimSpace(allowList) == "" {
		return true
	}

	for _, entry := range strings.Split(allowList, ",") {
		if strings.TrimSpace(entry) == from {
			return true
		}
	}

	return false
}
