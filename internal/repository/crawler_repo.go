package repository

import (
	"context"
	"errors"
)

// ErrUnexpectedStatus is returned by a PageFetcher when the remote source
// answers with a non-2xx status.
var ErrUnexpectedStatus = errors.New("unexpected status code")

// PageFetcher defines the contract for retrieving the raw markup of one page.
type PageFetcher interface {
	// Fetch retrieves url and returns the decoded body as text.
	Fetch(ctx context.Context, url string) (string, error)
}
