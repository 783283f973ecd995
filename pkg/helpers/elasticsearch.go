package helpers

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// NewESClient creates an Elasticsearch client with bounded transport
// timeouts and optional basic auth.
func NewESClient(addrs []string, username, password string) (*elasticsearch.Client, error) {
	cfg := elasticsearch.Config{
		Addresses:  addrs,
		Username:   username,
		Password:   password,
		MaxRetries: 2,
		Transport: &http.Transport{
			MaxIdleConnsPerHost:   10,
			ResponseHeaderTimeout: 5 * time.Second,
			TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
			DialContext:           (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		},
	}
	return elasticsearch.NewClient(cfg)
}

// EnsureESIndex creates index with the given mapping unless it already
// exists. It reports whether the index was created.
func EnsureESIndex(ctx context.Context, es *elasticsearch.Client, index string, mapping []byte) (bool, error) {
	exists, err := esapi.IndicesExistsRequest{Index: []string{index}}.Do(ctx, es)
	if err != nil {
		return false, err
	}
	if exists.Body != nil {
		_ = exists.Body.Close()
	}
	if exists.StatusCode == http.StatusOK {
		return false, nil
	}

	res, err := esapi.IndicesCreateRequest{Index: index, Body: bytes.NewReader(mapping)}.Do(ctx, es)
	if err != nil {
		return false, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return false, fmt.Errorf("create index %s: %s: %s", index, res.Status(), body)
	}
	return true, nil
}
