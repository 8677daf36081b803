// Package fetcher retrieves raw query payloads over HTTP. It owns transport
// concerns only: URL construction, auth, TLS options and secure query-field
// substitution. Parsing and transformation never happen here.
package fetcher

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/grafana/infinity/pkg/query"
)

// Settings is the datasource-level configuration the fetcher needs. These
// values arrive already resolved; persistence belongs to the configuration
// layer.
type Settings struct {
	URL               string
	BasicAuthEnabled  bool
	UserName          string
	Password          string
	CustomHeaders     map[string]string
	SecureQueryFields map[string]string
	TimeoutInSeconds  int64

	InsecureSkipVerify bool
	ServerName         string
	TLSClientAuth      bool
	TLSClientCert      string
	TLSClientKey       string
	TLSAuthWithCACert  bool
	TLSCACert          string
}

// Response is the raw outcome of one fetch. Body and status are populated
// even for non-2xx statuses so degraded data can still be transformed and
// annotated downstream.
type Response struct {
	Body       string
	StatusCode int
	Duration   time.Duration
	Error      string
}

// Client performs single-shot payload retrieval for url-sourced queries.
type Client struct {
	settings   Settings
	httpClient *http.Client
	logger     log.Logger
}

// TLSConfigFromSettings builds the TLS client configuration from resolved
// datasource settings.
func TLSConfigFromSettings(settings Settings) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: settings.InsecureSkipVerify,
		ServerName:         settings.ServerName,
	}
	if settings.TLSClientAuth {
		if settings.TLSClientCert == "" || settings.TLSClientKey == "" {
			return nil, errors.New("invalid client cert or key")
		}
		cert, err := tls.X509KeyPair([]byte(settings.TLSClientCert), []byte(settings.TLSClientKey))
		if err != nil {
			return nil, errors.Wrap(err, "loading client cert pair")
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}
	if settings.TLSAuthWithCACert && settings.TLSCACert != "" {
		caPool := x509.NewCertPool()
		if ok := caPool.AppendCertsFromPEM([]byte(settings.TLSCACert)); !ok {
			return nil, errors.New("invalid TLS CA certificate")
		}
		tlsConfig.RootCAs = caPool
	}
	return tlsConfig, nil
}

// NewClient builds a fetch client from resolved settings.
func NewClient(settings Settings, logger log.Logger) (*Client, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	tlsConfig, err := TLSConfigFromSettings(settings)
	if err != nil {
		return nil, err
	}
	timeout := time.Duration(settings.TimeoutInSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		settings: settings,
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy:           http.ProxyFromEnvironment,
				TLSClientConfig: tlsConfig,
			},
			Timeout: timeout,
		},
		logger: logger,
	}, nil
}

// replaceSecret expands `${__qs.<key>}` references to secure query-field
// values.
func replaceSecret(input string, settings Settings) string {
	for key, value := range settings.SecureQueryFields {
		input = strings.ReplaceAll(input, fmt.Sprintf("${__qs.%s}", key), value)
	}
	return input
}

// QueryURL builds the effective request URL: datasource base URL prefixing,
// secure-field substitution, and query params from both the query and the
// secure fields.
func QueryURL(settings Settings, q query.Query) string {
	urlString := q.URL
	if !strings.HasPrefix(q.URL, settings.URL) {
		urlString = settings.URL + urlString
	}
	urlString = replaceSecret(urlString, settings)
	u, err := url.Parse(urlString)
	if err != nil {
		return urlString
	}
	values := u.Query()
	for _, param := range q.URLOptions.Params {
		values.Set(param.Key, replaceSecret(param.Value, settings))
	}
	for key, value := range settings.SecureQueryFields {
		values.Set(key, value)
	}
	u.RawQuery = values.Encode()
	return u.String()
}

func (c *Client) buildRequest(ctx context.Context, q query.Query) (*http.Request, error) {
	target := QueryURL(c.settings, q)
	var req *http.Request
	var err error
	switch strings.ToUpper(q.URLOptions.Method) {
	case http.MethodPost:
		body := strings.NewReader(q.URLOptions.Data)
		if q.Type == query.TypeGraphQL {
			payload, err := graphQLBody(q.URLOptions.Data)
			if err != nil {
				return nil, err
			}
			body = strings.NewReader(payload)
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, target, body)
	default:
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	}
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	if c.settings.BasicAuthEnabled && (c.settings.UserName != "" || c.settings.Password != "") {
		req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(c.settings.UserName+":"+c.settings.Password)))
	}
	if q.Type == query.TypeJSON || q.Type == query.TypeGraphQL {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, header := range q.URLOptions.Headers {
		req.Header.Set(header.Key, replaceSecret(header.Value, c.settings))
	}
	for key, value := range c.settings.CustomHeaders {
		req.Header.Set(key, value)
	}
	return req, nil
}

// Fetch retrieves the raw payload for a url-sourced query. A non-2xx status
// is not an error here: body and status code are both returned so the engine
// can attach a notice while still transforming whatever arrived.
func (c *Client) Fetch(ctx context.Context, q query.Query) (Response, error) {
	req, err := c.buildRequest(ctx, q)
	if err != nil {
		return Response{Error: err.Error()}, err
	}
	started := time.Now()
	res, err := c.httpClient.Do(req)
	duration := time.Since(started)
	if err != nil {
		level.Error(c.logger).Log("msg", "fetch failed", "url", req.URL.Redacted(), "err", err)
		return Response{Duration: duration, Error: err.Error()}, errors.Wrapf(err, "error getting response from %s", q.URL)
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return Response{StatusCode: res.StatusCode, Duration: duration, Error: err.Error()}, errors.Wrap(err, "reading response body")
	}
	out := Response{
		Body:       string(body),
		StatusCode: res.StatusCode,
		Duration:   duration,
	}
	if res.StatusCode >= http.StatusBadRequest {
		out.Error = res.Status
	}
	level.Debug(c.logger).Log("msg", "fetched", "url", req.URL.Redacted(), "status", res.StatusCode, "duration", duration)
	return out, nil
}
