/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package uschess

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gregjones/httpcache"

	"github.com/mikeb26/uscf-lookup/internal"
)

// Recorder receives the outcome of every upstream lookup attempt.
type Recorder interface {
	RecordLookup(kind string, outcome Outcome)
}

type ClientOptions struct {
	// DetailURL is the member detail page; the member id is appended as the
	// raw query string.
	DetailURL string
	// SearchURL is the member search form endpoint.
	SearchURL   string
	MinInterval time.Duration
	Timeout     time.Duration
	UserAgent   string

	// Transport is the base RoundTripper; nil means http.DefaultTransport.
	Transport http.RoundTripper
	Recorder  Recorder
	// Archive, when set, receives upstream bodies which were blocked or could
	// not be parsed so layout changes can be diagnosed later. It is never
	// read.
	Archive httpcache.Cache
}

type Client struct {
	http      *resty.Client
	throttle  *Throttle
	detailURL string
	searchURL string
	recorder  Recorder
	archive   httpcache.Cache
}

func NewClient(opts ClientOptions) *Client {
	if opts.DetailURL == "" {
		opts.DetailURL = internal.DefaultDetailURL
	}
	if opts.SearchURL == "" {
		opts.SearchURL = internal.DefaultSearchURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = internal.DefaultRequestTimeout
	}
	if opts.MinInterval < 0 {
		opts.MinInterval = 0
	}
	if opts.UserAgent == "" {
		opts.UserAgent = internal.BrowserUserAgent
	}

	client := &Client{
		throttle:  NewThrottle(opts.MinInterval),
		detailURL: opts.DetailURL,
		searchURL: opts.SearchURL,
		recorder:  opts.Recorder,
		archive:   opts.Archive,
	}

	client.http = resty.New().
		SetTransport(internal.NewBrowserTransport(opts.Transport,
			opts.UserAgent)).
		SetHeader("User-Agent", opts.UserAgent).
		SetTimeout(opts.Timeout).
		SetRetryCount(0)
	client.http.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return client.throttle.Wait(req.Context())
	})

	return client
}

// LookupByID fetches the member detail page for id. A nil Player with a nil
// error means no player could be found; upstream and parse failures are
// logged and reported that way too. ErrInvalidID is returned, without
// contacting uschess.org, when id is not exactly 7 or 8 digits.
func (client *Client) LookupByID(ctx context.Context,
	id string) (*Player, error) {

	id = strings.TrimSpace(id)
	if !ValidLookupID(id) {
		client.record("id", OutcomeInvalidInput)
		return nil, ErrInvalidID
	}

	players := client.attempt(ctx, "id", id, SingleRecord,
		func(req *resty.Request) (*resty.Response, error) {
			return req.Get(client.detailURL + "?" + id)
		})
	if len(players) == 0 {
		return nil, nil
	}

	player := players[0]
	if player.ID == "" {
		player.ID = id
	}

	return &player, nil
}

// NameQuery holds the parts of a player name search. At least one of First
// or Last must be non-blank.
type NameQuery struct {
	First string
	Last  string
	// State optionally narrows the search to a two letter region code.
	State string
}

// Candidates returns the search strings to try, in order.
func (q NameQuery) Candidates() []string {
	first := collapseSpace(q.First)
	last := collapseSpace(q.Last)

	switch {
	case first != "" && last != "":
		return []string{
			fmt.Sprintf("%v, %v", last, first),
			fmt.Sprintf("%v %v", first, last),
			fmt.Sprintf("%v %v", last, first),
		}
	case last != "":
		return []string{last}
	case first != "":
		return []string{first}
	default:
		return nil
	}
}

// LookupByName searches for players matching q. Candidate name formats are
// tried in order and the first one yielding any players wins. The result is
// never nil; an empty slice means nothing matched or uschess.org could not be
// reached. ErrMissingName is returned when q has no name parts.
func (client *Client) LookupByName(ctx context.Context,
	q NameQuery) ([]Player, error) {

	candidates := q.Candidates()
	if len(candidates) == 0 {
		client.record("name", OutcomeInvalidInput)
		return nil, ErrMissingName
	}

	for _, candidate := range candidates {
		form := map[string]string{
			"memname": candidate,
			"search":  "Search",
		}
		if state := strings.TrimSpace(q.State); state != "" {
			form["memstate"] = strings.ToUpper(state)
		}

		players := client.attempt(ctx, "name", candidate, MultiRecord,
			func(req *resty.Request) (*resty.Response, error) {
				return req.SetFormData(form).Post(client.searchURL)
			})
		if len(players) > 0 {
			return players, nil
		}
	}

	return []Player{}, nil
}

// attempt issues one throttled request and extracts its body. Every failure
// is logged, recorded and archived here and then dropped.
func (client *Client) attempt(ctx context.Context, kind string, query string,
	mode Mode,
	send func(req *resty.Request) (*resty.Response, error)) []Player {

	body, err := client.fetch(ctx, send)
	shape := ShapeUnknown
	var players []Player
	if err == nil {
		shape, players, err = extract(body, mode)
	}

	outcome := classify(err, len(players) > 0)
	client.record(kind, outcome)

	switch outcome {
	case OutcomeBlocked, OutcomeParseMismatch:
		log.Printf("uschess.%v: %v for %q (shape:%v): %v", kind, outcome,
			query, shape, err)
		client.archiveBody(kind, outcome, query, body)
	case OutcomeTransportError:
		log.Printf("uschess.%v: %v for %q: %v", kind, outcome, query, err)
	}

	return players
}

func (client *Client) fetch(ctx context.Context,
	send func(req *resty.Request) (*resty.Response, error)) (string, error) {

	resp, err := send(client.http.R().SetContext(ctx))
	if err != nil {
		return "", fmt.Errorf("performing HTTP request: %w", err)
	}

	body := string(resp.Body())
	if resp.StatusCode() != http.StatusOK {
		// protection pages are usually served with a 403 or 503
		if containsAny(strings.ToLower(body), blockedMarkers) {
			return body, fmt.Errorf("%w (status %d)", ErrBlocked,
				resp.StatusCode())
		}
		return body, fmt.Errorf("%w %d from %v", ErrUpstreamStatus,
			resp.StatusCode(), resp.Request.URL)
	}

	return body, nil
}

func (client *Client) record(kind string, outcome Outcome) {
	if client.recorder != nil {
		client.recorder.RecordLookup(kind, outcome)
	}
}

func (client *Client) archiveBody(kind string, outcome Outcome, query string,
	body string) {

	if client.archive == nil || body == "" {
		return
	}

	key := fmt.Sprintf("%v/%v/%v/%v", kind, outcome,
		time.Now().UTC().Format("20060102T150405Z"), query)
	client.archive.Set(key, []byte(body))
}
