package services

import (
	"context"
	"errors"
	"fmt"
	gohttp "net/http"
	"strings"
	"time"

	"github.com/yuimaru-ship/storefront/pkg/http"
	"github.com/yuimaru-ship/storefront/pkg/metrics"
)

// ErrNeedsStoreID is returned by Lookup when the user has no store on file
// and must enter one.
var ErrNeedsStoreID = errors.New("store id required")

// StoreLinker talks to the endpoint that maps identity-provider subjects to
// store IDs.
type StoreLinker struct {
	url     string
	client  *gohttp.Client
	timeout time.Duration
}

func NewStoreLinker(linkURL string, hc *gohttp.Client, timeout time.Duration) *StoreLinker {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &StoreLinker{url: linkURL, client: hc, timeout: timeout}
}

type linkResponse struct {
	StoreID flexString `json:"store_id"`
}

func (l *StoreLinker) post(ctx context.Context, body map[string]string) (*http.Response, error) {
	return http.Post(l.url).
		Body(body).
		Client(l.client).
		Service("store.link").
		Timeout(l.timeout).
		WithContext(ctx).
		Send()
}

// Lookup returns the store linked to sub. A 400 means no link exists yet and
// yields ErrNeedsStoreID; other non-200 statuses yield *UnexpectedStatusError.
// A 200 without a store_id returns "" and no error.
func (l *StoreLinker) Lookup(ctx context.Context, sub string) (string, error) {
	resp, err := l.post(ctx, map[string]string{"sub": sub})
	if err != nil {
		metrics.StoreLinks.WithLabelValues("error").Inc()
		return "", fmt.Errorf("link lookup: %w", err)
	}

	switch resp.StatusCode {
	case gohttp.StatusOK:
		var out linkResponse
		if err := resp.JSON(&out); err != nil {
			metrics.StoreLinks.WithLabelValues("error").Inc()
			return "", fmt.Errorf("link lookup: decode: %w", err)
		}
		metrics.StoreLinks.WithLabelValues("linked").Inc()
		return out.StoreID.String(), nil
	case gohttp.StatusBadRequest:
		metrics.StoreLinks.WithLabelValues("needs_store_id").Inc()
		return "", ErrNeedsStoreID
	default:
		metrics.StoreLinks.WithLabelValues("error").Inc()
		return "", &UnexpectedStatusError{Status: resp.StatusCode}
	}
}

// Link associates sub with storeID. Any status other than 200 yields
// *LinkRejectedError carrying the response text.
func (l *StoreLinker) Link(ctx context.Context, sub, storeID string) error {
	resp, err := l.post(ctx, map[string]string{"sub": sub, "store_id": storeID})
	if err != nil {
		metrics.StoreLinks.WithLabelValues("error").Inc()
		return fmt.Errorf("link store %s: %w", storeID, err)
	}
	if resp.StatusCode != gohttp.StatusOK {
		metrics.StoreLinks.WithLabelValues("rejected").Inc()
		return &LinkRejectedError{Status: resp.StatusCode, Message: strings.TrimSpace(resp.Text())}
	}
	metrics.StoreLinks.WithLabelValues("linked").Inc()
	return nil
}
