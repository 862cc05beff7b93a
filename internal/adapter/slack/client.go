// Package slack delivers the digest through the external-upload protocol:
// request an upload URL, PUT the calendar bytes, then complete the upload
// with the digest text as the initial comment.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultBaseURL = "https://slack.com/api"

// Client talks to the Slack Web API with a bot token.
type Client struct {
	token      string
	channelID  string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a delivery client for one channel.
func NewClient(token, channelID string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		token:     token,
		channelID: channelID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: defaultBaseURL,
		logger:  logger,
	}
}

// SendDigest uploads the attachment and posts it to the channel with the
// digest text as its comment. Any non-ok API payload is surfaced verbatim
// for diagnosis.
func (c *Client) SendDigest(ctx context.Context, text, filename string, attachment []byte) error {
	ticket, err := c.getUploadURL(ctx, filename, len(attachment))
	if err != nil {
		return err
	}

	if err := c.uploadBytes(ctx, ticket.UploadURL, attachment); err != nil {
		return err
	}

	if err := c.completeUpload(ctx, ticket.FileID, filename, text); err != nil {
		return err
	}

	c.logger.Info("digest delivered", "channel", c.channelID, "file", filename, "bytes", len(attachment))
	return nil
}

type uploadTicket struct {
	UploadURL string `json:"upload_url"`
	FileID    string `json:"file_id"`
}

func (c *Client) getUploadURL(ctx context.Context, filename string, length int) (uploadTicket, error) {
	form := url.Values{
		"filename": {filename},
		"length":   {strconv.Itoa(length)},
	}
	raw, err := c.apiPost(ctx, "files.getUploadURLExternal", form)
	if err != nil {
		return uploadTicket{}, err
	}

	var ticket uploadTicket
	if err := json.Unmarshal(raw, &ticket); err != nil {
		return uploadTicket{}, fmt.Errorf("decode upload ticket: %w", err)
	}
	if ticket.UploadURL == "" || ticket.FileID == "" {
		return uploadTicket{}, fmt.Errorf("upload ticket missing fields: %s", raw)
	}
	return ticket, nil
}

func (c *Client) uploadBytes(ctx context.Context, uploadURL string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("upload error: status %d: %s", resp.StatusCode, body)
	}
	return nil
}

func (c *Client) completeUpload(ctx context.Context, fileID, title, comment string) error {
	files, err := json.Marshal([]map[string]string{{"id": fileID, "title": title}})
	if err != nil {
		return err
	}

	form := url.Values{
		"files":           {string(files)},
		"channel_id":      {c.channelID},
		"initial_comment": {comment},
	}
	_, err = c.apiPost(ctx, "files.completeUploadExternal", form)
	return err
}

// apiPost posts a form to a Web API method and returns the raw payload
// after checking both the HTTP status and the in-band ok flag.
func (c *Client) apiPost(ctx context.Context, method string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", method, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("slack error: %s: status %d: %s", method, resp.StatusCode, body)
	}

	var status struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", method, err)
	}
	if !status.OK {
		return nil, fmt.Errorf("slack api error: %s: %s", method, body)
	}
	return body, nil
}
