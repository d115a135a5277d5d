package whatsapp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func TestCategorizeMessage(t *testing.T) {
	cases := []struct {
		content string
		want    string
	}{
		{"Apply for this bursary before Friday", "bursary"},
		{"NSFAS applications are open", "bursary"},
		{"We are hiring drivers in East London", "career"},
		{"Learnership opportunity at the municipality", "learnership"},
		{"NYDA grant for young entrepreneurs", "business"},
		{"Community meeting on Saturday", "general"},
		{"", "general"},
		// Matching is case-insensitive
		{"BURSARY CLOSING SOON", "bursary"},
		// "funding" appears in both the bursary and business groups; the
		// bursary group is declared first and wins
		{"funding available", "bursary"},
	}

	for _, tc := range cases {
		if got := CategorizeMessage(tc.content); got != tc.want {
			t.Errorf("CategorizeMessage(%q) = %q, want %q", tc.content, got, tc.want)
		}
	}
}

func TestValidSignature(t *testing.T) {
	body := []byte(`{"object":"whatsapp_business_account"}`)
	secret := "app-secret"

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	header := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	if !ValidSignature(body, header, secret) {
		t.Error("valid signature rejected")
	}

	if ValidSignature(body, header, "other-secret") {
		t.Error("signature accepted with wrong secret")
	}

	if ValidSignature([]byte("tampered"), header, secret) {
		t.Error("signature accepted for tampered body")
	}

	if ValidSignature(body, "invalid-format", secret) {
		t.Error("signature without sha256= prefix accepted")
	}

	// Empty secret disables verification
	if !ValidSignature(body, "", "") {
		t.Error("empty secret should accept any request")
	}
}

func TestExtractContent(t *testing.T) {
	content, mediaURL := ExtractContent(Message{
		Type: "text",
		Text: &TextContent{Body: "New bursary available"},
	})
	if content != "New bursary available" || mediaURL != "" {
		t.Errorf("text: got (%q, %q)", content, mediaURL)
	}

	content, mediaURL = ExtractContent(Message{
		Type:  "image",
		Image: &MediaContent{ID: "media-1", Caption: "Poster for job fair"},
	})
	if content != "Poster for job fair" || mediaURL != "media-1" {
		t.Errorf("image with caption: got (%q, %q)", content, mediaURL)
	}

	content, _ = ExtractContent(Message{
		Type:  "image",
		Image: &MediaContent{ID: "media-2"},
	})
	if content != "Image received" {
		t.Errorf("image without caption: got %q", content)
	}

	content, mediaURL = ExtractContent(Message{
		Type:     "document",
		Document: &MediaContent{ID: "media-3", Filename: "vacancies.pdf"},
	})
	if content != "vacancies.pdf" || mediaURL != "media-3" {
		t.Errorf("document with filename: got (%q, %q)", content, mediaURL)
	}

	content, _ = ExtractContent(Message{Type: "sticker"})
	if content != "Unsupported message type: sticker" {
		t.Errorf("unsupported type: got %q", content)
	}
}

func TestAllowedSender(t *testing.T) {
	if !AllowedSender("27821234567", "") {
		t.Error("empty allow-list should accept every sender")
	}

	allowList := "27821234567, 27837654321"

	if !AllowedSender("27821234567", allowList) {
		t.Error("listed sender rejected")
	}

	if !AllowedSender("27837654321", allowList) {
		t.Error("listed sender with surrounding space rejected")
	}

	if AllowedSender("27800000000", allowList) {
		t.Error("unlisted sender accepted")
	}
}
