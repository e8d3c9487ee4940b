// Package wcc is the HTTP adapter for the Oracle WebCenter Content REST API.
// Every call carries HTTP Basic credentials and targets <baseURL><apiPath><path>.
//
// Responses are handled in two shapes:
//   - JSON: the body is returned as json.RawMessage (2xx) or turned into *APIError (non-2xx)
//   - Stream: the body is copied into a caller-supplied io.Writer
//
// No retries are performed; a failed call is reported immediately.
package wcc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	mimeJSON          = "application/json"
	headerContentType = "Content-Type"
	headerAccept      = "Accept"
	tracerName        = "github.com/matiasleandrokruk/wccmcp/internal/infra/wcc"
	maxErrorBody      = 64 << 10
)

var (
	ErrMissingBaseURL  = errors.New("wcc: base URL is required")
	ErrMissingUsername = errors.New("wcc: username is required")
	ErrMissingPassword = errors.New("wcc: password is required")
)

// Options configures a Client.
type Options struct {
	BaseURL  string
	APIPath  string
	Username string
	Password string
	// Timeout bounds every request including body transfer. Zero means no timeout.
	Timeout time.Duration
	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Client is safe for concurrent use; it holds no per-request state.
type Client struct {
	endpoint   *url.URL
	username   string
	password   string
	httpClient *http.Client
	logger     zerolog.Logger
	tracer     trace.Tracer
}

// NewClient validates the credential triple and builds the client once.
func NewClient(opts Options) (*Client, error) {
	switch {
	case strings.TrimSpace(opts.BaseURL) == "":
		return nil, ErrMissingBaseURL
	case strings.TrimSpace(opts.Username) == "":
		return nil, ErrMissingUsername
	case opts.Password == "":
		return nil, ErrMissingPassword
	}

	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("wcc: parse base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("wcc: base URL %q must be absolute", opts.BaseURL)
	}
	base.Path = strings.TrimRight(base.Path, "/") + normalizeAPIPath(opts.APIPath)

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	return &Client{
		endpoint:   base,
		username:   opts.Username,
		password:   opts.Password,
		httpClient: httpClient,
		logger:     opts.Logger.With().Str("component", "wcc").Logger(),
		tracer:     otel.Tracer(tracerName),
	}, nil
}

// Endpoint returns the resolved API root, e.g. https://host/documents/wcc/api/v1.1.
func (c *Client) Endpoint() string {
	return c.endpoint.String()
}

// Request describes one REST call. Path is relative to the API root; build it with Path.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	// Body is JSON-encoded when non-nil. Ignored when Upload is set.
	Body   any
	Upload *Upload
}

// Upload describes a multipart check-in: a JSON metadata part plus the primary file.
type Upload struct {
	FilePath string
	Metadata map[string]any
}

const (
	metadataPart    = "metadataValues"
	primaryFilePart = "primaryFile"
)

// Path joins escaped segments into an API-relative path: Path("files", "DOC 1") == "/files/DOC%201".
func Path(segments ...string) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// JSON performs the call and returns the raw JSON body.
// An empty 2xx body yields {"success":true}.
func (c *Client) JSON(ctx context.Context, req Request) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.call(ctx, req, func(resp *http.Response) error {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		if len(strings.TrimSpace(string(body))) == 0 {
			out = json.RawMessage(`{"success":true}`)
			return nil
		}
		if !json.Valid(body) {
			return fmt.Errorf("decode response: body is not valid JSON (content-type %q)", resp.Header.Get(headerContentType))
		}
		out = body
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Stream performs the call and copies the response body into w, returning the byte count.
func (c *Client) Stream(ctx context.Context, req Request, w io.Writer) (int64, error) {
	var n int64
	err := c.call(ctx, req, func(resp *http.Response) error {
		copied, err := io.Copy(w, resp.Body)
		n = copied
		if err != nil {
			return fmt.Errorf("stream response: %w", err)
		}
		return nil
	})
	return n, err
}

// call executes req and hands a 2xx response to handle. The body is always closed.
func (c *Client) call(ctx context.Context, req Request, handle func(*http.Response) error) (err error) {
	ctx, span := c.tracer.Start(ctx, "wcc "+req.Method+" "+req.Path, trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.path", req.Path),
		))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	httpReq, err := c.newHTTPRequest(ctx, req)
	if err != nil {
		return err
	}

	started := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Debug().Err(err).Str("method", req.Method).Str("path", req.Path).Msg("wcc request failed")
		return fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	c.logger.Debug().
		Str("method", req.Method).
		Str("path", req.Path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(started)).
		Msg("wcc request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(req, resp)
	}
	return handle(resp)
}

func (c *Client) newHTTPRequest(ctx context.Context, req Request) (*http.Request, error) {
	target := c.endpoint.String() + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	body, contentType, err := encodeBody(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		if body != nil {
			_ = body.Close()
		}
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.SetBasicAuth(c.username, c.password)
	httpReq.Header.Set(headerAccept, mimeJSON)
	if contentType != "" {
		httpReq.Header.Set(headerContentType, contentType)
	}
	return httpReq, nil
}

// encodeBody returns the request body (nil when none) and its content type.
func encodeBody(req Request) (io.ReadCloser, string, error) {
	if req.Upload != nil {
		return encodeUpload(req.Upload)
	}
	if req.Body == nil {
		return nil, "", nil
	}
	raw, err := json.Marshal(req.Body)
	if err != nil {
		return nil, "", fmt.Errorf("encode request body: %w", err)
	}
	return io.NopCloser(strings.NewReader(string(raw))), mimeJSON, nil
}

// encodeUpload streams the multipart body through a pipe so large files are never buffered.
func encodeUpload(up *Upload) (io.ReadCloser, string, error) {
	meta, err := json.Marshal(up.Metadata)
	if err != nil {
		return nil, "", fmt.Errorf("encode metadata: %w", err)
	}
	file, err := os.Open(up.FilePath)
	if err != nil {
		return nil, "", fmt.Errorf("open upload file: %w", err)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		defer file.Close()
		pw.CloseWithError(writeMultipart(mw, meta, file, filepath.Base(up.FilePath)))
	}()
	return pr, mw.FormDataContentType(), nil
}

func writeMultipart(mw *multipart.Writer, meta []byte, file io.Reader, filename string) error {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q`, metadataPart))
	header.Set(headerContentType, mimeJSON)
	part, err := mw.CreatePart(header)
	if err != nil {
		return err
	}
	if _, err := part.Write(meta); err != nil {
		return err
	}

	filePart, err := mw.CreateFormFile(primaryFilePart, filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(filePart, file); err != nil {
		return err
	}
	return mw.Close()
}

func normalizeAPIPath(p string) string {
	p = strings.TrimRight(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
