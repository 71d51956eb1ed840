package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"taskBoard/internal/logger"
	"taskBoard/internal/remote"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// Client говорит с деревом документов по REST:
// GET /{c}.json, PUT и DELETE /{c}/{id}.json
type Client struct {
	baseURL string
	auth    string
	http    *http.Client
}

func New(baseURL, auth string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		auth:    auth,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// StatusError - ответ сервера с кодом вне 2xx
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ответ сервера: %s", e.Status)
}

func (c *Client) url(path string) string {
	u := c.baseURL + "/" + path + ".json"
	if c.auth != "" {
		u += "?auth=" + url.QueryEscape(c.auth)
	}
	return u
}

// redact убирает токен из URL в ошибке транспорта, ошибка попадает в логи
func (c *Client) redact(err error, path string) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		uerr.URL = c.baseURL + "/" + path + ".json"
	}
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	start := time.Now()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return nil, fmt.Errorf("создание запроса: %w", c.redact(err, path))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, c.redact(err, path))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("чтение ответа: %w", err)
	}

	if time.Since(start) > time.Second {
		logger.Warn("Remote: Медленный запрос",
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("ms", time.Since(start)))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}
	return data, nil
}

func (c *Client) Get(ctx context.Context, col remote.Collection) (map[string]json.RawMessage, error) {
	data, err := c.do(ctx, http.MethodGet, string(col), nil)
	if err != nil {
		return nil, err
	}
	return remote.ParseTree(data)
}

func (c *Client) Put(ctx context.Context, col remote.Collection, id string, body []byte) error {
	_, err := c.do(ctx, http.MethodPut, string(col)+"/"+url.PathEscape(id), body)
	return err
}

func (c *Client) Delete(ctx context.Context, col remote.Collection, id string) error {
	_, err := c.do(ctx, http.MethodDelete, string(col)+"/"+url.PathEscape(id), nil)
	return err
}
