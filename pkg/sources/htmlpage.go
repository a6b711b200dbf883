package sources

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/Aryanshaw/bitespeed-client/internal/domain"
	"github.com/PuerkitoBio/goquery"
)

const maxHTMLBodyBytes = 1 << 20 // 1 MiB

// htmlPageReader implements Reader for public contact pages: it extracts
// mailto: and tel: links and turns each distinct address or number into a
// submission.
type htmlPageReader struct {
	client HTTPClient
}

func NewHTMLPageReader(client HTTPClient) Reader {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &htmlPageReader{client: client}
}

func (r *htmlPageReader) Type() string { return TypeHTMLPage }

func (r *htmlPageReader) Read(ctx context.Context, cfg Source) ([]domain.Submission, error) {
	if !strings.EqualFold(cfg.Type, TypeHTMLPage) {
		return nil, fmt.Errorf("html page reader received incompatible source type %q", cfg.Type)
	}
	if strings.TrimSpace(cfg.Location) == "" {
		return nil, fmt.Errorf("source %q location is empty", cfg.ID)
	}

	body, err := fetchLocation(ctx, r.client, cfg.Location, cfg.ID, Headers(cfg))
	if err != nil {
		return nil, err
	}
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}

	return extractSubmissions(body)
}

// extractSubmissions pulls mailto:/tel: targets out of anchor hrefs.
func extractSubmissions(body []byte) ([]domain.Submission, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	seen := make(map[string]bool)
	var out []domain.Submission

	doc.Find(`a[href^="mailto:"]`).Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if email := linkTarget(href, "mailto:"); email != "" && !seen["m:"+email] {
			seen["m:"+email] = true
			out = append(out, domain.Submission{Email: email})
		}
	})
	doc.Find(`a[href^="tel:"]`).Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if phone := linkTarget(href, "tel:"); phone != "" && !seen["t:"+phone] {
			seen["t:"+phone] = true
			out = append(out, domain.Submission{PhoneNumber: phone})
		}
	})

	return out, nil
}

// linkTarget strips the scheme prefix and any query suffix from an href.
func linkTarget(href, prefix string) string {
	target := strings.TrimPrefix(strings.TrimSpace(href), prefix)
	if i := strings.IndexByte(target, '?'); i >= 0 {
		target = target[:i]
	}
	return strings.TrimSpace(target)
}
