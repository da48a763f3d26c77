package leadapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultMaxAttempts       = 3
	DefaultAttemptTimeout    = 10 * time.Second
	DefaultBaseDelay         = time.Second
	DefaultMaxDelay          = 5 * time.Second
	DefaultRetryAfter        = 60 * time.Second
	DefaultMaxRetryAfter     = 60 * time.Second
	timeoutMessage           = "Tempo limite da requisição excedido"
	connectionFailureMessage = "Erro de conexão com o servidor"
)

// Client chama a API de leads com timeout por tentativa, retentativas com backoff
// e respeito ao Retry-After. Falhas esperadas nunca viram error: voltam como Response.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	maxAttempts    int
	attemptTimeout time.Duration
	baseDelay      time.Duration
	maxDelay       time.Duration
	retryAfter     time.Duration
	maxRetryAfter  time.Duration
	pacer          *rate.Limiter
	sleep          func(ctx context.Context, d time.Duration) error
	now            func() time.Time
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

func WithAttemptTimeout(d time.Duration) Option {
	return func(c *Client) { c.attemptTimeout = d }
}

func WithBackoff(base, max time.Duration) Option {
	return func(c *Client) {
		c.baseDelay = base
		c.maxDelay = max
	}
}

// WithRetryAfter define a espera padrão de um 429 sem dica e o teto de qualquer dica.
func WithRetryAfter(def, max time.Duration) Option {
	return func(c *Client) {
		c.retryAfter = def
		c.maxRetryAfter = max
	}
}

// WithRateLimit limita o ritmo de requisições do próprio cliente.
func WithRateLimit(l *rate.Limiter) Option {
	return func(c *Client) { c.pacer = l }
}

// WithSleep troca a espera entre tentativas (testes).
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) { c.sleep = fn }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		httpClient:     &http.Client{},
		maxAttempts:    DefaultMaxAttempts,
		attemptTimeout: DefaultAttemptTimeout,
		baseDelay:      DefaultBaseDelay,
		maxDelay:       DefaultMaxDelay,
		retryAfter:     DefaultRetryAfter,
		maxRetryAfter:  DefaultMaxRetryAfter,
		sleep:          sleepContext,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Do executa a chamada. O error só aparece quando body não pode ser serializado.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("leadapi: erro ao serializar corpo: %w", err)
		}
		payload = b
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if c.pacer != nil {
			if err := c.pacer.Wait(ctx); err != nil {
				lastErr = err
				break
			}
		}

		resp, err := c.attempt(ctx, method, path, payload)
		if err != nil {
			lastErr = err
			if attempt == c.maxAttempts || ctx.Err() != nil {
				break
			}
			delay := c.backoff(attempt)
			log.Printf("⚠️ [LEADAPI] %s %s tentativa %d falhou: %v (nova tentativa em %s)", method, path, attempt, err, delay)
			if serr := c.sleep(ctx, delay); serr != nil {
				lastErr = serr
				break
			}
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < c.maxAttempts {
			wait := c.retryAfterDelay(resp)
			log.Printf("⏳ [LEADAPI] %s %s limitado (429), aguardando %s", method, path, wait)
			if serr := c.sleep(ctx, wait); serr != nil {
				lastErr = serr
				break
			}
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return failure(resp), nil
		}
		return resp, nil
	}

	return networkError(lastErr), nil
}

func (c *Client) attempt(ctx context.Context, method, path string, payload []byte) (*Response, error) {
	attemptCtx := ctx
	if c.attemptTimeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, c.attemptTimeout)
		defer cancel()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(attemptCtx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	var resp Response
	if strings.Contains(httpResp.Header.Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(raw, &resp); err != nil {
			return nil, fmt.Errorf("resposta JSON inválida: %w", err)
		}
	} else {
		resp = Response{
			Success: httpResp.StatusCode >= 200 && httpResp.StatusCode <= 299,
			Message: strings.TrimSpace(string(raw)),
		}
		if resp.Message == "" {
			resp.Message = http.StatusText(httpResp.StatusCode)
		}
	}
	resp.StatusCode = httpResp.StatusCode

	if httpResp.StatusCode == http.StatusTooManyRequests {
		c.readRetryAfter(&resp, httpResp.Header.Get("Retry-After"), raw)
	}

	return &resp, nil
}

// backoff: base·2^(tentativa-1), limitado ao teto.
func (c *Client) backoff(attempt int) time.Duration {
	d := c.baseDelay << (attempt - 1)
	if d > c.maxDelay || d <= 0 {
		return c.maxDelay
	}
	return d
}

// readRetryAfter preenche a dica de espera de um 429: header (segundos ou data HTTP) e, sem ele,
// o retryAfter do corpo. Zero explícito é dica válida.
func (c *Client) readRetryAfter(resp *Response, header string, raw []byte) {
	header = strings.TrimSpace(header)
	if header != "" {
		if secs, err := strconv.Atoi(header); err == nil && secs >= 0 {
			resp.RetryAfter, resp.hasRetryAfter = secs, true
			return
		}
		if at, err := http.ParseTime(header); err == nil {
			secs := int(math.Ceil(at.Sub(c.now()).Seconds()))
			resp.RetryAfter, resp.hasRetryAfter = max(secs, 0), true
			return
		}
	}

	var body struct {
		RetryAfter *int `json:"retryAfter"`
	}
	if json.Unmarshal(raw, &body) == nil && body.RetryAfter != nil && *body.RetryAfter >= 0 {
		resp.RetryAfter, resp.hasRetryAfter = *body.RetryAfter, true
	}
}

// retryAfterDelay usa a dica do 429; sem dica, a espera padrão.
func (c *Client) retryAfterDelay(resp *Response) time.Duration {
	wait := c.retryAfter
	if resp.hasRetryAfter {
		wait = time.Duration(resp.RetryAfter) * time.Second
	}
	if c.maxRetryAfter > 0 && wait > c.maxRetryAfter {
		wait = c.maxRetryAfter
	}
	return wait
}

func failure(resp *Response) *Response {
	out := &Response{
		Success:    false,
		Message:    resp.Message,
		Errors:     resp.Errors,
		Code:       resp.Code,
		Data:       resp.Data,
		RetryAfter: resp.RetryAfter,
		StatusCode: resp.StatusCode,

		hasRetryAfter: resp.hasRetryAfter,
	}
	if out.Message == "" {
		out.Message = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	if out.Code == "" {
		out.Code = fmt.Sprintf("HTTP_%d", resp.StatusCode)
	}
	return out
}

func networkError(err error) *Response {
	message := connectionFailureMessage
	switch {
	case err == nil:
	case errors.Is(err, context.DeadlineExceeded):
		message = timeoutMessage
	default:
		message = err.Error()
	}
	return &Response{
		Success: false,
		Message: message,
		Code:    CodeNetworkError,
	}
}
