package network

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"stock-predictor/src/helpers"
	"stock-predictor/src/logger"
	"stock-predictor/src/models"
	"sync"
	"time"
)

type NetworkManager struct {
	Config       *models.MConfig
	ProxyManager *helpers.ProxyManager
	Logger       *logger.Logger

	mu     sync.Mutex
	client *http.Client
}

// -----------------------------------------------------------------------------

func NewNetworkManager(cfg *models.MConfig, log *logger.Logger) *NetworkManager {
	var proxies []string
	if cfg.Network.Enabled {
		proxies = cfg.Network.Proxies
	}

	nm := &NetworkManager{
		Config:       cfg,
		ProxyManager: helpers.NewProxyManager(proxies, cfg.Network.UserAgent),
		Logger:       log,
	}
	nm.client = nm.createClient()
	return nm
}

// -----------------------------------------------------------------------------

func (nm *NetworkManager) createClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if nm.ProxyManager.HasProxies() {
		proxyStr, err := nm.ProxyManager.GetCurrentProxy()
		if err == nil && proxyStr != "" {
			proxyURL, err := url.Parse(proxyStr)
			if err == nil {
				transport.Proxy = http.ProxyURL(proxyURL)
			}
		}
	}

	return &http.Client{
		Transport: transport,
		Timeout:   time.Duration(nm.Config.Network.RequestTimeout) * time.Second,
	}
}

// -----------------------------------------------------------------------------

func (nm *NetworkManager) currentClient() *http.Client {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	return nm.client
}

// -----------------------------------------------------------------------------

func (nm *NetworkManager) rotateProxy() {
	if !nm.ProxyManager.HasProxies() {
		return
	}

	nm.ProxyManager.RotateProxy()
	nm.mu.Lock()
	nm.client = nm.createClient()
	nm.mu.Unlock()
}

// -----------------------------------------------------------------------------

// Get performs a GET request. With the default retries of 0 it makes exactly
// one attempt; configured retries back off quadratically and rotate proxies.
func (nm *NetworkManager) Get(ctx context.Context, urlStr string, params map[string]string) ([]byte, error) {
	reqUrl, err := url.Parse(urlStr)
	if err != nil {
		return nil, helpers.NewNetworkError("invalid url", err)
	}

	q := reqUrl.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	reqUrl.RawQuery = q.Encode()

	finalUrl := reqUrl.String()

	maxRetries := nm.Config.Network.MaxRetries
	var lastErr error

	for i := 0; i <= maxRetries; i++ {
		if i > 0 {
			select {
			case <-time.After(time.Duration(i*i) * time.Second):
			case <-ctx.Done():
				return nil, helpers.NewNetworkError("request cancelled", ctx.Err())
			}
			nm.rotateProxy()
		}

		body, err := nm.do(ctx, finalUrl)
		if err == nil {
			return body, nil
		}
		lastErr = err
		nm.Logger.Info("Request failed (attempt %d/%d): %v", i+1, maxRetries+1, err)

		if ctx.Err() != nil {
			break
		}
	}

	return nil, helpers.NewNetworkError(fmt.Sprintf("GET %s failed", reqUrl.Path), lastErr)
}

// -----------------------------------------------------------------------------

func (nm *NetworkManager) do(ctx context.Context, finalUrl string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, finalUrl, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", nm.ProxyManager.GetUserAgent())
	req.Header.Set("Accept", "application/json")

	resp, err := nm.currentClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("blocked (status %d)", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		// Provider error payloads are JSON; hand them back with the status so
		// the caller can surface the description.
		return body, &StatusError{Code: resp.StatusCode, Body: body}
	}

	return body, nil
}

// -----------------------------------------------------------------------------

// StatusError carries a non-200 response.
type StatusError struct {
	Code int
	Body []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bad status: %d", e.Code)
}
