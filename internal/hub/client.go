package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"invoiceterm/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	uploadPath     = "/upload"
	uploadField    = "file"
	statusSuccess  = "success"
	requestIDKey   = "X-Request-ID"
	defaultCSVType = "text/csv"
)

// Client talks to the invoice processing endpoint.
type Client struct {
	base *url.URL
	http *http.Client
	log  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default client. The default has no timeout:
// an upload runs until the server answers or the connection fails.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the request logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient parses the endpoint base URL (scheme and host, optional path prefix).
func NewClient(endpoint string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse endpoint %q: %w", endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("endpoint %q: scheme must be http or https", endpoint)
	}
	c := &Client{base: u, http: &http.Client{}, log: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the endpoint the client was built with.
func (c *Client) BaseURL() string { return c.base.String() }

// uploadResponse is the JSON body of POST /upload.
type uploadResponse struct {
	Status            string             `json:"status"`
	Message           string             `json:"message"`
	TotalRows         int                `json:"total_rows"`
	Processed         int                `json:"processed"`
	EmailSent         int                `json:"email_sent"`
	GeneratedInvoices []generatedInvoice `json:"generated_invoices"`
	Errors            []rowErrors        `json:"errors"`
}

type generatedInvoice struct {
	Client string `json:"client"`
	URL    string `json:"url"`
}

type rowErrors struct {
	Row         json.RawMessage `json:"row"`
	RowMessages []string        `json:"errors"`
}

// Submit uploads f as multipart field "file" and converts the answer into a
// SubmissionResult. It never returns nil.
func (c *Client) Submit(ctx context.Context, f model.File) model.SubmissionResult {
	requestID := uuid.NewString()
	log := c.log.With(zap.String("request_id", requestID), zap.String("file", f.Name))

	body, contentType, err := multipartBody(f)
	if err != nil {
		return transportFailure(log, &model.TransportError{Op: "read file", Err: err})
	}

	endpoint := c.base.JoinPath(uploadPath).String()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return transportFailure(log, &model.TransportError{Op: "build request", Err: err})
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDKey, requestID)

	log.Info("Uploading file", zap.String("endpoint", endpoint), zap.Int64("bytes", f.Size))
	resp, err := c.http.Do(req)
	if err != nil {
		return transportFailure(log, &model.TransportError{Op: "post " + uploadPath, Err: err})
	}
	defer resp.Body.Close()

	var decoded uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return transportFailure(log, &model.TransportError{
			Op:  fmt.Sprintf("decode response (HTTP %d)", resp.StatusCode),
			Err: err,
		})
	}

	if decoded.Status != statusSuccess {
		log.Warn("Upload rejected",
			zap.Int("http_status", resp.StatusCode),
			zap.String("status", decoded.Status),
			zap.String("message", decoded.Message),
		)
		return model.Failure{
			Message: decoded.Message,
			Err:     &model.ApplicationError{Status: decoded.Status, Message: decoded.Message},
		}
	}

	res := decoded.toSuccess()
	log.Info("Upload processed",
		zap.Int("total_rows", res.TotalRows),
		zap.Int("processed", res.Processed),
		zap.Int("emails_sent", res.EmailsSent),
		zap.Int("invoices", len(res.Invoices)),
		zap.Int("row_errors", len(res.Errors)),
	)
	return res
}

func (r uploadResponse) toSuccess() model.Success {
	s := model.Success{
		TotalRows:  r.TotalRows,
		Processed:  r.Processed,
		EmailsSent: r.EmailSent,
	}
	for _, inv := range r.GeneratedInvoices {
		s.Invoices = append(s.Invoices, model.InvoiceLink{Client: inv.Client, URL: inv.URL})
	}
	for _, e := range r.Errors {
		s.Errors = append(s.Errors, model.RowError{Row: rowLabel(e.Row), Messages: e.RowMessages})
	}
	return s
}

// rowLabel accepts the row as a JSON string or number ("N/A" or 5).
func rowLabel(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return model.RowNotApplicable
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

func transportFailure(log *zap.Logger, err *model.TransportError) model.Failure {
	log.Error("Upload failed", zap.Error(err))
	return model.Failure{Message: "Network error: " + err.Err.Error(), Err: err}
}

// multipartBody buffers the whole form; the server reads the file in one go
// anyway and a buffered body gives the request a Content-Length.
func multipartBody(f model.File) (io.Reader, string, error) {
	src, err := f.Reader()
	if err != nil {
		return nil, "", err
	}
	defer src.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, uploadField, f.Name))
	h.Set("Content-Type", ct)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, src); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
