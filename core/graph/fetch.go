package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// page is one Graph collection response.
type page struct {
	Value     []Record `json:"value"`
	NextLink  string   `json:"@odata.nextLink"`
	DeltaLink string   `json:"@odata.deltaLink"`
}

// Pager walks a paginated Graph collection one record at a time. The next
// page is only requested once every record of the current page has been
// consumed, so a slow consumer naturally throttles the upstream fetches.
//
// A pager is single-use and not safe for concurrent access.
type Pager struct {
	client *Client
	ctx    context.Context

	nextURL string
	delta   string

	records []Record
	idx     int
	primed  bool
	done    bool
	err     error
}

// Fetch prepares a pager over the given resource path. When delta is
// non-empty it is appended as the $deltatoken query parameter so the walk
// resumes from that cursor. No request is issued until Prime or Next.
func (c *Client) Fetch(ctx context.Context, resource, delta string) *Pager {
	u := c.URL(resource)
	if delta != "" {
		q := url.Values{}
		q.Set("$deltatoken", delta)
		u += "?" + q.Encode()
	}
	return &Pager{client: c, ctx: ctx, nextURL: u, delta: delta}
}

// Prime fetches the first page without consuming any record. It lets the
// HTTP layer surface auth or upstream failures as a proper error status
// before the streamed response body has begun.
func (p *Pager) Prime() error {
	if p.primed || p.done || p.err != nil {
		return p.err
	}
	p.err = p.fetchPage()
	return p.err
}

// Next returns the next record of the collection, in page-then-within-page
// order, fetching pages lazily. It returns false when the collection is
// exhausted or an error occurred; check Err to tell the two apart.
func (p *Pager) Next() (Record, bool) {
	for {
		if p.err != nil || p.done {
			return nil, false
		}
		if p.idx < len(p.records) {
			rec := p.records[p.idx]
			p.idx++
			return rec, true
		}
		if p.primed && p.nextURL == "" {
			p.done = true
			return nil, false
		}
		if err := p.fetchPage(); err != nil {
			p.err = err
			return nil, false
		}
	}
}

// Err returns the first error encountered while paging, if any.
func (p *Pager) Err() error { return p.err }

// Delta returns the active delta cursor: the token from the terminal delta
// link once it has been seen, otherwise the cursor the walk started from.
func (p *Pager) Delta() string { return p.delta }

// fetchPage requests p.nextURL, adopts a new delta cursor when the response
// carries a delta link, and tags the page's records with the cursor active
// for that page.
func (p *Pager) fetchPage() error {
	data, err := p.client.get(p.ctx, p.nextURL)
	if err != nil {
		return err
	}

	var pg page
	if err := json.Unmarshal(data, &pg); err != nil {
		return fmt.Errorf("failed to decode graph page: %w", err)
	}

	// The delta link signals pagination is complete for this pass; its
	// token becomes the cursor for this page's records and everything
	// after. A resource without delta support simply never updates it.
	if pg.DeltaLink != "" {
		if token, err := deltaToken(pg.DeltaLink); err == nil && token != "" {
			p.delta = token
		}
	}

	for _, rec := range pg.Value {
		rec.tag(p.delta)
	}

	p.records = pg.Value
	p.idx = 0
	p.primed = true
	p.nextURL = pg.NextLink
	return nil
}

// deltaToken extracts the $deltatoken query parameter from a delta link.
func deltaToken(link string) (string, error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", err
	}
	return u.Query().Get("$deltatoken"), nil
}
