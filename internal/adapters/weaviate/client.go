package weaviate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"tripextract/internal/adapters/observability"
	"tripextract/internal/domain"
)

const (
	vectorizer = "text2vec-openai"
	generative = "generative-openai"

	// objects per batch request
	batchSize = 100
)

var (
	ErrUnauthorized = errors.New("weaviate: unauthorized")
	ErrForbidden    = errors.New("weaviate: forbidden")
)

type Options struct {
	BaseURL   string
	APIKey    string // sent as a Bearer token when set
	OpenAIKey string // forwarded to the vectorizer and generative modules
	RPS       int
	Timeout   time.Duration
}

type Client struct {
	http *resty.Client
	rl   *rate.Limiter
}

func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("weaviate URL is required")
	}
	if opts.RPS <= 0 {
		opts.RPS = 5
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	c := &Client{rl: rate.NewLimiter(rate.Limit(opts.RPS), opts.RPS)}

	hc := resty.New()
	hc.SetBaseURL(strings.TrimRight(opts.BaseURL, "/"))
	hc.SetTimeout(opts.Timeout)
	hc.SetHeader("Accept", "application/json")
	hc.SetHeader("User-Agent", "tripextract/1.0")
	if opts.APIKey != "" {
		hc.SetAuthToken(opts.APIKey)
	}
	if opts.OpenAIKey != "" {
		hc.SetHeader("X-OpenAI-Api-Key", opts.OpenAIKey)
	}

	// Retries on 429 and transient 5xx, honoring Retry-After when provided.
	hc.SetRetryCount(3)
	hc.SetRetryWaitTime(200 * time.Millisecond)
	hc.SetRetryMaxWaitTime(5 * time.Second)
	hc.AddRetryCondition(func(r *resty.Response, err error) bool {
		if err != nil {
			return r == nil || r.Request == nil || r.Request.Context().Err() == nil
		}
		switch r.StatusCode() {
		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	})
	hc.SetRetryAfter(func(_ *resty.Client, r *resty.Response) (time.Duration, error) {
		if r == nil || r.RawResponse == nil {
			return 0, nil
		}
		return retryAfter(r.RawResponse), nil
	})
	// client-side rate limiting, applied to every attempt
	hc.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return c.rl.Wait(req.Context())
	})

	c.http = hc
	return c, nil
}

// ClassName returns name the way the store reports it: first letter upper case.
func ClassName(name string) string {
	r, n := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[n:]
}

func (c *Client) Ready(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "ready", "/v1/.well-known/ready", nil, nil)
}

type schemaResponse struct {
	Classes []struct {
		Class string `json:"class"`
	} `json:"classes"`
}

func (c *Client) ListCollections(ctx context.Context) ([]string, error) {
	var out schemaResponse
	if err := c.do(ctx, http.MethodGet, "schema", "/v1/schema", nil, &out); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(out.Classes))
	for _, cl := range out.Classes {
		names = append(names, cl.Class)
	}
	return names, nil
}

type classDef struct {
	Class        string                    `json:"class"`
	Vectorizer   string                    `json:"vectorizer"`
	ModuleConfig map[string]map[string]any `json:"moduleConfig"`
}

// CreateCollection creates a class vectorized with text2vec-openai and wired
// to the OpenAI generative module. Properties are auto-detected on insert.
func (c *Client) CreateCollection(ctx context.Context, name string) error {
	body := classDef{
		Class:      ClassName(name),
		Vectorizer: vectorizer,
		ModuleConfig: map[string]map[string]any{
			vectorizer: {},
			generative: {},
		},
	}
	return c.do(ctx, http.MethodPost, "schema_create", "/v1/schema", body, nil)
}

func (c *Client) DeleteCollection(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "schema_delete", "/v1/schema/"+ClassName(name), nil, nil)
}

type batchObject struct {
	Class      string         `json:"class"`
	ID         string         `json:"id,omitempty"`
	Properties map[string]any `json:"properties"`
}

type batchRequest struct {
	Objects []batchObject `json:"objects"`
}

type batchResult struct {
	ID     string `json:"id"`
	Result struct {
		Errors *struct {
			Error []struct {
				Message string `json:"message"`
			} `json:"error"`
		} `json:"errors"`
	} `json:"result"`
}

// InsertObjects writes objs through the batch endpoint in chunks. Per-object
// failures reported by the store are returned as one error naming the first.
func (c *Client) InsertObjects(ctx context.Context, collection string, objs []domain.VectorObject) error {
	class := ClassName(collection)
	for start := 0; start < len(objs); start += batchSize {
		end := min(start+batchSize, len(objs))
		req := batchRequest{Objects: make([]batchObject, 0, end-start)}
		for _, o := range objs[start:end] {
			req.Objects = append(req.Objects, batchObject{Class: class, ID: o.ID, Properties: o.Properties})
		}
		var res []batchResult
		if err := c.do(ctx, http.MethodPost, "batch_objects", "/v1/batch/objects", req, &res); err != nil {
			return err
		}
		failed := 0
		var first string
		for _, r := range res {
			if r.Result.Errors == nil || len(r.Result.Errors.Error) == 0 {
				continue
			}
			if failed == 0 {
				first = r.ID + ": " + r.Result.Errors.Error[0].Message
			}
			failed++
		}
		if failed > 0 {
			return fmt.Errorf("batch into %s: %d objects rejected (first %s)", class, failed, first)
		}
	}
	return nil
}

// do sends one request and decodes a JSON body into out when given.
func (c *Client) do(ctx context.Context, method, endpoint, path string, body, out any) error {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}
	start := time.Now()
	resp, err := req.Execute(method, path)
	status := 0
	if resp != nil {
		status = resp.StatusCode()
	}
	observability.ObserveExternal("weaviate", endpoint, status, time.Since(start))
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("weaviate %s: %w", endpoint, err)
	}

	switch {
	case resp.IsSuccess():
		return nil
	case status == http.StatusNotFound:
		return fmt.Errorf("weaviate %s: %w", endpoint, domain.ErrNotFound)
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusForbidden:
		return ErrForbidden
	}
	msg := strings.TrimSpace(resp.String())
	if len(msg) > 4096 {
		msg = msg[:4096]
	}
	return fmt.Errorf("weaviate %s: bad status %d: %s", endpoint, status, msg)
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	// seconds form
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	// HTTP-date form
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
