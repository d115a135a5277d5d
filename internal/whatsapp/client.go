package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

const graphAPIBase = "https://graph.facebook.com/v21.0"

var httpClient = &http.Client{Timeout: 10 * time.Second}

type markReadRequest struct {
	MessagingProduct string `json:"messaging_product"`
	Status           string `json:"status"`
	MessageID        string `json:"message_id"`
}

// MarkMessageAsRead acknowledges a delivered message back to the Graph API.
// Without an access token this is a no-op.
func MarkMessageAsRead(ctx context.Context, phoneNumberID string, messageID string) error {
	accessToken := os.Getenv("WHATSAPP_ACCESS_TOKEN")
	if accessToken == "" {
		return nil
	}

	payload, err := json.Marshal(markReadRequest{
		MessagingProduct: "whatsapp",
		Status:           "read",
		MessageID:        messageID,
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/%s/messages", graphAPIBase, phoneNumberID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mark as read returned status %d", resp.StatusCode)
	}

	return nil
}
