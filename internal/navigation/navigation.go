// Package navigation abstracts the landing location of the dashboard: the
// one-time query parameters the Etsy connect flow sends back, and redirects
// to external destinations such as sign-in or the Etsy consent page.
package navigation

import (
	"fmt"
	"net/url"
	"sync"
)

const (
	ParamEtsyConnected = "etsy_connected"
	ParamShop          = "shop"
	ParamEtsyError     = "etsy_error"
)

// Params are the one-time values present on the landing location.
type Params struct {
	EtsyConnected bool
	Shop          string
	EtsyError     string
}

func (p Params) Empty() bool {
	return !p.EtsyConnected && p.Shop == "" && p.EtsyError == ""
}

type Navigator interface {
	ReadOneTimeParams() Params
	// ClearParams strips the one-time params so a later read sees none.
	ClearParams()
	Redirect(target string) error
}

// Opener hands a destination to whatever can show it, e.g. a browser.
type Opener func(target string) error

// URL is a Navigator over a landing URL held in memory.
type URL struct {
	mu       sync.Mutex
	current  *url.URL
	open     Opener
	redirect []string
}

// NewURL parses the landing location. An empty landing is valid and carries
// no params. A nil opener only records redirects.
func NewURL(landing string, open Opener) (*URL, error) {
	u, err := url.Parse(landing)
	if err != nil {
		return nil, fmt.Errorf("parse landing url: %w", err)
	}
	return &URL{current: u, open: open}, nil
}

func (n *URL) ReadOneTimeParams() Params {
	n.mu.Lock()
	defer n.mu.Unlock()

	q := n.current.Query()
	return Params{
		EtsyConnected: q.Get(ParamEtsyConnected) == "true",
		Shop:          q.Get(ParamShop),
		EtsyError:     q.Get(ParamEtsyError),
	}
}

func (n *URL) ClearParams() {
	n.mu.Lock()
	defer n.mu.Unlock()

	q := n.current.Query()
	q.Del(ParamEtsyConnected)
	q.Del(ParamShop)
	q.Del(ParamEtsyError)
	n.current.RawQuery = q.Encode()
}

// Location is the current landing URL after any clearing.
func (n *URL) Location() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current.String()
}

func (n *URL) Redirect(target string) error {
	n.mu.Lock()
	n.redirect = append(n.redirect, target)
	open := n.open
	n.mu.Unlock()

	if open == nil {
		return nil
	}
	if err := open(target); err != nil {
		return fmt.Errorf("open %s: %w", target, err)
	}
	return nil
}

// Redirects lists every destination passed to Redirect, oldest first.
func (n *URL) Redirects() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.redirect...)
}
