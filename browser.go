package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

// browserLoader opens the settings page in a headless browser, so pages
// that fill the form with JavaScript can be scraped - it satisfies the
// pageLoader interface
type browserLoader struct {
	url     string
	cookie  string
	profile string
	timeout time.Duration
}

// newBrowserLoader creates a new browserLoader instance
func newBrowserLoader(url, cookie, profile string, timeout time.Duration) *browserLoader {
	return &browserLoader{url: url, cookie: cookie, profile: profile, timeout: timeout}
}

// allocatorOptions returns the Chrome flags for the loader
func (l *browserLoader) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.UserAgent(userAgent),
	)

	// reuse a logged-in profile
	if l.profile != "" {
		opts = append(opts, chromedp.UserDataDir(l.profile))
	}

	return opts
}

// load navigates to the page URL, waits for the form to render and
// returns the page, with live form values synced into its markup
func (l *browserLoader) load(ctx context.Context) (*goquery.Document, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, l.allocatorOptions()...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, args ...any) {
		log.Debug().Msgf(format, args...)
	}))
	defer cancelBrowser()

	timeoutCtx, cancelTimeout := context.WithTimeout(browserCtx, l.timeout)
	defer cancelTimeout()

	var page string
	err := chromedp.Run(timeoutCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(l.headers()),
		chromedp.Navigate(l.url),
		chromedp.WaitReady(bodySelector, chromedp.ByQuery),
		chromedp.Evaluate(syncFormScript, &page),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s in browser: %w", l.url, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("failed to parse browser page: %w", err)
	}

	return doc, nil
}

// headers returns the extra request headers sent with every browser request
func (l *browserLoader) headers() network.Headers {
	headers := network.Headers{}
	if l.cookie != "" {
		headers["Cookie"] = l.cookie
	}

	return headers
}
