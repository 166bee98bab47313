package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/billed/internal/bill"
)

// APIError is a non-2xx answer from the persistence API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("Error %d", e.StatusCode)
	}
	return fmt.Sprintf("Error %d: %s", e.StatusCode, e.Message)
}

// IDGenerator generates request correlation IDs
type IDGenerator interface {
	Generate() string
}

type uuidGenerator struct{}

func (uuidGenerator) Generate() string {
	return uuid.NewString()
}

// Remote implements Store over the persistence API's HTTP interface
type Remote struct {
	baseURL    string
	token      string
	client     *http.Client
	requestIDs IDGenerator
}

// NewRemote creates a Remote for the API at baseURL. token is sent as a
// bearer token when non-empty.
func NewRemote(baseURL, token string) *Remote {
	return NewRemoteWithDeps(baseURL, token, &http.Client{Timeout: 30 * time.Second}, uuidGenerator{})
}

// NewRemoteWithDeps creates a Remote with a custom HTTP client and ID generator
func NewRemoteWithDeps(baseURL, token string, client *http.Client, ids IDGenerator) *Remote {
	return &Remote{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		client:     client,
		requestIDs: ids,
	}
}

// List fetches all bills visible to the caller. Records are decoded one by
// one: a field of the wrong type is dropped from its record and a record
// that is not an object is skipped, both with a warning.
func (r *Remote) List(ctx context.Context) ([]bill.Bill, error) {
	records := make([]json.RawMessage, 0)
	if err := r.doJSON(ctx, http.MethodGet, "/bills", nil, &records); err != nil {
		return nil, err
	}

	bills := make([]bill.Bill, 0, len(records))
	for i, record := range records {
		b, skipped, err := bill.DecodeRecord(record)
		if err != nil {
			slog.Warn("Skipping unreadable bill record", "index", i, "error", err)
			continue
		}
		if len(skipped) > 0 {
			slog.Warn("Bill record has malformed fields", "id", b.ID, "fields", skipped)
		}
		bills = append(bills, b)
	}
	return bills, nil
}

// Create posts a new bill. When the API answers without a body the
// payload is returned.
func (r *Remote) Create(ctx context.Context, b bill.Bill) (bill.Bill, error) {
	var created bill.Bill
	if err := r.doJSON(ctx, http.MethodPost, "/bills", b, &created); err != nil {
		return bill.Bill{}, err
	}
	if created.ID == "" && created.Email == "" && created.Status == "" {
		return b, nil
	}
	return created, nil
}

// Update patches an existing bill
func (r *Remote) Update(ctx context.Context, b bill.Bill) (bill.Bill, error) {
	if b.ID == "" {
		return bill.Bill{}, fmt.Errorf("updating bill: missing id")
	}
	var updated bill.Bill
	if err := r.doJSON(ctx, http.MethodPatch, "/bills/"+url.PathEscape(b.ID), b, &updated); err != nil {
		return bill.Bill{}, err
	}
	// some deployments answer 204 with no body
	if updated.ID == "" {
		return b, nil
	}
	return updated, nil
}

// Upload sends a receipt file as multipart form data
func (r *Remote) Upload(ctx context.Context, u Upload) (Attachment, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if err := mw.WriteField("email", u.Email); err != nil {
		return Attachment{}, fmt.Errorf("writing email field: %w", err)
	}

	contentType := u.ContentType
	if contentType == "" {
		contentType = bill.AttachmentContentType(u.FileName)
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, u.FileName))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return Attachment{}, fmt.Errorf("creating file part: %w", err)
	}
	if _, err := part.Write(u.Data); err != nil {
		return Attachment{}, fmt.Errorf("writing file part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return Attachment{}, fmt.Errorf("closing multipart writer: %w", err)
	}

	var attachment Attachment
	if err := r.do(ctx, http.MethodPost, "/bills/attachments", &body, mw.FormDataContentType(), &attachment); err != nil {
		return Attachment{}, err
	}
	return attachment, nil
}

func (r *Remote) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}
	return r.do(ctx, method, path, body, contentType, out)
}

func (r *Remote) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", r.requestIDs.Generate())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling persistence API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(resp.Body)}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// errorMessage pulls a message out of an error body, which may be JSON
// ({"message": ...} or {"error": ...}) or plain text
func errorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(data, &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return strings.TrimSpace(string(data))
}
