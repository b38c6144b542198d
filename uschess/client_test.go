/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package uschess

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mikeb26/uscf-lookup/internal"
)

type fakeRecorder struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *fakeRecorder) RecordLookup(kind string, outcome Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, kind+":"+outcome.String())
}

func (r *fakeRecorder) get() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.outcomes...)
}

// fakeArchive implements httpcache.Cache and remembers every key written.
type fakeArchive struct {
	mu    sync.Mutex
	items map[string][]byte
}

func (a *fakeArchive) Get(key string) ([]byte, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	v, ok := a.items[key]
	return v, ok
}

func (a *fakeArchive) Set(key string, value []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.items == nil {
		a.items = make(map[string][]byte)
	}
	a.items[key] = value
}

func (a *fakeArchive) Delete(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.items, key)
}

func (a *fakeArchive) keys() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	ret := make([]string, 0, len(a.items))
	for k := range a.items {
		ret = append(ret, k)
	}
	return ret
}

// upstream is a scripted stand-in for uschess.org.
type upstream struct {
	mu       sync.Mutex
	requests []*http.Request
	forms    []map[string]string
	reply    func(r *http.Request, n int) (int, string)
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()

	u.mu.Lock()
	n := len(u.requests)
	u.requests = append(u.requests, r)
	form := make(map[string]string)
	for k := range r.PostForm {
		form[k] = r.PostForm.Get(k)
	}
	u.forms = append(u.forms, form)
	u.mu.Unlock()

	status, body := u.reply(r, n)
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(status)
	fmt.Fprint(w, body)
}

func (u *upstream) count() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.requests)
}

func (u *upstream) memnames() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	ret := make([]string, 0, len(u.forms))
	for _, f := range u.forms {
		ret = append(ret, f["memname"])
	}
	return ret
}

func newTestClient(t *testing.T, u *upstream) (*Client, *fakeRecorder,
	*fakeArchive) {

	srv := httptest.NewServer(u)
	t.Cleanup(srv.Close)

	rec := &fakeRecorder{}
	archive := &fakeArchive{}
	client := NewClient(ClientOptions{
		DetailURL: srv.URL + "/msa/MbrDtlMain.php",
		SearchURL: srv.URL + "/msa/MbrLst.php",
		Recorder:  rec,
		Archive:   archive,
	})

	return client, rec, archive
}

func TestLookupByIDRejectsInvalidIDs(t *testing.T) {
	u := &upstream{reply: func(*http.Request, int) (int, string) {
		return http.StatusOK, labeledPage
	}}
	client, rec, _ := newTestClient(t, u)

	for _, id := range []string{"", "123456", "123456789", "1234567a",
		"12 34567"} {

		t.Run(fmt.Sprintf("%q", id), func(t *testing.T) {
			player, err := client.LookupByID(context.Background(), id)
			if !errors.Is(err, ErrInvalidID) {
				t.Errorf("LookupByID() error = %v; want %v", err, ErrInvalidID)
			}
			if player != nil {
				t.Errorf("LookupByID() = %+v; want nil", player)
			}
		})
	}

	if n := u.count(); n != 0 {
		t.Errorf("issued %v upstream requests; want 0", n)
	}
	for _, o := range rec.get() {
		if o != "id:invalid_input" {
			t.Errorf("recorded %v; want id:invalid_input", o)
		}
	}
}

func TestLookupByID(t *testing.T) {
	u := &upstream{reply: func(r *http.Request, _ int) (int, string) {
		switch r.URL.RawQuery {
		case "12345678":
			return http.StatusOK, labeledPage
		case "1234567":
			return http.StatusOK, labeledPageMinimal
		default:
			return http.StatusOK, formFieldInvalid
		}
	}}
	client, rec, archive := newTestClient(t, u)

	player, err := client.LookupByID(context.Background(), " 12345678 ")
	if err != nil {
		t.Fatalf("LookupByID() returned error: %v", err)
	}
	want := &Player{
		ID:             "12345678",
		Name:           "SMITH, JOHN, DAVID",
		RegRating:      intPtr(1502),
		QuickRating:    intPtr(1450),
		State:          strPtr("TX"),
		ExpirationDate: strPtr("2026-03-31"),
	}
	if diff := cmp.Diff(want, player); diff != "" {
		t.Errorf("LookupByID() mismatch (-want +got):\n%s", diff)
	}

	// id missing from the page is filled in from the request
	player, err = client.LookupByID(context.Background(), "1234567")
	if err != nil {
		t.Fatalf("LookupByID() returned error: %v", err)
	}
	if player == nil || player.ID != "1234567" || player.Name != "DOE, JANE" {
		t.Errorf("LookupByID() = %+v; want id 1234567 DOE, JANE", player)
	}

	player, err = client.LookupByID(context.Background(), "7654321")
	if err != nil || player != nil {
		t.Errorf("LookupByID() = %+v, %v; want nil, nil", player, err)
	}

	if diff := cmp.Diff([]string{"id:found", "id:found", "id:not_found"},
		rec.get()); diff != "" {
		t.Errorf("recorded outcomes mismatch (-want +got):\n%s", diff)
	}
	if keys := archive.keys(); len(keys) != 0 {
		t.Errorf("archived %v; want nothing", keys)
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	for _, r := range u.requests {
		if r.Method != http.MethodGet {
			t.Errorf("method = %v; want GET", r.Method)
		}
		if r.URL.Path != "/msa/MbrDtlMain.php" {
			t.Errorf("path = %v; want /msa/MbrDtlMain.php", r.URL.Path)
		}
		if ua := r.Header.Get("User-Agent"); ua != internal.BrowserUserAgent {
			t.Errorf("User-Agent = %q; want %q", ua, internal.BrowserUserAgent)
		}
		if r.Header.Get("Accept-Language") == "" {
			t.Errorf("Accept-Language not set")
		}
	}
}

func TestLookupByIDFailuresDegradeToNotFound(t *testing.T) {
	cases := []struct {
		name        string
		status      int
		body        string
		wantOutcome string
		wantArchive bool
	}{
		{
			name:        "blocked with 403",
			status:      http.StatusForbidden,
			body:        "<html><title>Access denied</title></html>",
			wantOutcome: "id:blocked",
			wantArchive: true,
		},
		{
			name:        "blocked with 200",
			status:      http.StatusOK,
			body:        "<html>Sorry, you have been blocked</html>",
			wantOutcome: "id:blocked",
			wantArchive: true,
		},
		{
			name:        "server error",
			status:      http.StatusInternalServerError,
			body:        "oops",
			wantOutcome: "id:transport_error",
		},
		{
			name:        "layout change",
			status:      http.StatusOK,
			body:        "<html><body><div>redesigned</div></body></html>",
			wantOutcome: "id:parse_mismatch",
			wantArchive: true,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			u := &upstream{reply: func(*http.Request, int) (int, string) {
				return c.status, c.body
			}}
			client, rec, archive := newTestClient(t, u)

			player, err := client.LookupByID(context.Background(), "12345678")
			if err != nil || player != nil {
				t.Fatalf("LookupByID() = %+v, %v; want nil, nil", player, err)
			}
			if diff := cmp.Diff([]string{c.wantOutcome}, rec.get()); diff != "" {
				t.Errorf("recorded outcomes mismatch (-want +got):\n%s", diff)
			}

			keys := archive.keys()
			if !c.wantArchive {
				if len(keys) != 0 {
					t.Errorf("archived %v; want nothing", keys)
				}
				return
			}
			if len(keys) != 1 {
				t.Fatalf("archived %v; want exactly one body", keys)
			}
			if !strings.HasPrefix(keys[0], strings.Replace(c.wantOutcome,
				":", "/", 1)+"/") || !strings.HasSuffix(keys[0], "/12345678") {

				t.Errorf("archive key %q has unexpected layout", keys[0])
			}
			if body, _ := archive.Get(keys[0]); string(body) != c.body {
				t.Errorf("archived body = %q; want %q", body, c.body)
			}
		})
	}
}

func TestLookupByIDTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	rec := &fakeRecorder{}
	client := NewClient(ClientOptions{DetailURL: url, Recorder: rec})

	player, err := client.LookupByID(context.Background(), "12345678")
	if err != nil || player != nil {
		t.Fatalf("LookupByID() = %+v, %v; want nil, nil", player, err)
	}
	if diff := cmp.Diff([]string{"id:transport_error"}, rec.get()); diff != "" {
		t.Errorf("recorded outcomes mismatch (-want +got):\n%s", diff)
	}
}

func TestNameQueryCandidates(t *testing.T) {
	cases := []struct {
		name string
		q    NameQuery
		want []string
	}{
		{
			name: "first and last",
			q:    NameQuery{First: "John", Last: "Smith"},
			want: []string{"Smith, John", "John Smith", "Smith John"},
		},
		{
			name: "whitespace collapsed",
			q:    NameQuery{First: "  Mary  Ann ", Last: " Van   Dyke "},
			want: []string{"Van Dyke, Mary Ann", "Mary Ann Van Dyke",
				"Van Dyke Mary Ann"},
		},
		{
			name: "last only",
			q:    NameQuery{Last: "Smith"},
			want: []string{"Smith"},
		},
		{
			name: "first only",
			q:    NameQuery{First: "John", Last: "   "},
			want: []string{"John"},
		},
		{
			name: "neither",
			q:    NameQuery{State: "TX"},
			want: nil,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if diff := cmp.Diff(c.want, c.q.Candidates()); diff != "" {
				t.Errorf("Candidates() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLookupByNameMissingName(t *testing.T) {
	u := &upstream{reply: func(*http.Request, int) (int, string) {
		return http.StatusOK, tabularPage
	}}
	client, rec, _ := newTestClient(t, u)

	players, err := client.LookupByName(context.Background(),
		NameQuery{First: " ", Last: ""})
	if !errors.Is(err, ErrMissingName) {
		t.Errorf("LookupByName() error = %v; want %v", err, ErrMissingName)
	}
	if players != nil {
		t.Errorf("LookupByName() = %v; want nil", players)
	}
	if n := u.count(); n != 0 {
		t.Errorf("issued %v upstream requests; want 0", n)
	}
	if diff := cmp.Diff([]string{"name:invalid_input"}, rec.get()); diff != "" {
		t.Errorf("recorded outcomes mismatch (-want +got):\n%s", diff)
	}
}

func TestLookupByNameLastOnlyIssuesOneRequest(t *testing.T) {
	u := &upstream{reply: func(*http.Request, int) (int, string) {
		return http.StatusOK, "<html><body>Players found: 0</body></html>"
	}}
	client, _, _ := newTestClient(t, u)

	players, err := client.LookupByName(context.Background(),
		NameQuery{Last: "Smith"})
	if err != nil {
		t.Fatalf("LookupByName() returned error: %v", err)
	}
	if players == nil || len(players) != 0 {
		t.Errorf("LookupByName() = %#v; want empty non-nil slice", players)
	}
	if diff := cmp.Diff([]string{"Smith"}, u.memnames()); diff != "" {
		t.Errorf("searched names mismatch (-want +got):\n%s", diff)
	}
}

func TestLookupByNameTriesCandidatesInOrder(t *testing.T) {
	u := &upstream{reply: func(_ *http.Request, n int) (int, string) {
		if n < 2 {
			return http.StatusOK, "<html><body>No players found</body></html>"
		}
		return http.StatusOK, tabularPage
	}}
	client, rec, _ := newTestClient(t, u)

	players, err := client.LookupByName(context.Background(),
		NameQuery{First: "John", Last: "Smith", State: "tx"})
	if err != nil {
		t.Fatalf("LookupByName() returned error: %v", err)
	}
	if len(players) != 3 {
		t.Fatalf("LookupByName() returned %v players; want 3", len(players))
	}
	if players[0].ID != "12345678" || players[2].ID != "7654321" {
		t.Errorf("LookupByName() order = %v, %v; want 12345678, 7654321",
			players[0].ID, players[2].ID)
	}

	want := []string{"Smith, John", "John Smith", "Smith John"}
	if diff := cmp.Diff(want, u.memnames()); diff != "" {
		t.Errorf("searched names mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"name:not_found", "name:not_found",
		"name:found"}, rec.get()); diff != "" {
		t.Errorf("recorded outcomes mismatch (-want +got):\n%s", diff)
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	for i, f := range u.forms {
		if f["memstate"] != "TX" {
			t.Errorf("request %v memstate = %q; want TX", i, f["memstate"])
		}
		if u.requests[i].Method != http.MethodPost {
			t.Errorf("request %v method = %v; want POST", i,
				u.requests[i].Method)
		}
	}
}

func TestLookupByNameStopsAtFirstMatch(t *testing.T) {
	u := &upstream{reply: func(*http.Request, int) (int, string) {
		return http.StatusOK, tabularPage
	}}
	client, _, _ := newTestClient(t, u)

	players, err := client.LookupByName(context.Background(),
		NameQuery{First: "John", Last: "Smith"})
	if err != nil {
		t.Fatalf("LookupByName() returned error: %v", err)
	}
	if len(players) != 3 {
		t.Errorf("LookupByName() returned %v players; want 3", len(players))
	}
	if n := u.count(); n != 1 {
		t.Errorf("issued %v upstream requests; want 1", n)
	}
	if _, ok := u.forms[0]["memstate"]; ok {
		t.Errorf("memstate sent without a state filter")
	}
}

func TestLookupByNameTextListing(t *testing.T) {
	u := &upstream{reply: func(_ *http.Request, n int) (int, string) {
		if n == 0 {
			return http.StatusOK,
				"<html><body><pre></pre><p>0 members found</p></body></html>"
		}
		return http.StatusOK, textPage
	}}
	client, rec, archive := newTestClient(t, u)

	players, err := client.LookupByName(context.Background(),
		NameQuery{First: "John", Last: "Smith"})
	if err != nil {
		t.Fatalf("LookupByName() returned error: %v", err)
	}
	if len(players) != 3 {
		t.Errorf("LookupByName() returned %v players; want 3", len(players))
	}
	if n := u.count(); n != 2 {
		t.Errorf("issued %v upstream requests; want 2", n)
	}
	if diff := cmp.Diff([]string{"name:not_found", "name:found"},
		rec.get()); diff != "" {
		t.Errorf("recorded outcomes mismatch (-want +got):\n%s", diff)
	}
	if keys := archive.keys(); len(keys) != 0 {
		t.Errorf("archived %v; want nothing", keys)
	}
}

func TestLookupByNameBlockedKeepsTrying(t *testing.T) {
	u := &upstream{reply: func(*http.Request, int) (int, string) {
		return http.StatusServiceUnavailable,
			"<html>Checking your browser before accessing</html>"
	}}
	client, rec, archive := newTestClient(t, u)

	players, err := client.LookupByName(context.Background(),
		NameQuery{First: "John", Last: "Smith"})
	if err != nil {
		t.Fatalf("LookupByName() returned error: %v", err)
	}
	if players == nil || len(players) != 0 {
		t.Errorf("LookupByName() = %#v; want empty non-nil slice", players)
	}
	if n := u.count(); n != 3 {
		t.Errorf("issued %v upstream requests; want 3", n)
	}
	if diff := cmp.Diff([]string{"name:blocked", "name:blocked",
		"name:blocked"}, rec.get()); diff != "" {
		t.Errorf("recorded outcomes mismatch (-want +got):\n%s", diff)
	}
	if keys := archive.keys(); len(keys) != 3 {
		t.Errorf("archived %v bodies; want 3", len(keys))
	}
}

func TestLookupCanceledContext(t *testing.T) {
	u := &upstream{reply: func(*http.Request, int) (int, string) {
		return http.StatusOK, labeledPage
	}}
	client, rec, _ := newTestClient(t, u)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	player, err := client.LookupByID(ctx, "12345678")
	if err != nil || player != nil {
		t.Fatalf("LookupByID() = %+v, %v; want nil, nil", player, err)
	}
	if n := u.count(); n != 0 {
		t.Errorf("issued %v upstream requests; want 0", n)
	}
	if diff := cmp.Diff([]string{"id:transport_error"}, rec.get()); diff != "" {
		t.Errorf("recorded outcomes mismatch (-want +got):\n%s", diff)
	}
}

func TestLookupByIDTabularResponse(t *testing.T) {
	row := tabularRow("12345678", "1500/10", "1400/5", "-", "-", "-", "-",
		"TX", "2025-01-01", "SMITH, JOHN")
	u := &upstream{reply: func(*http.Request, int) (int, string) {
		return http.StatusOK, "<html><body><table>" + row +
			"</table></body></html>"
	}}
	client, _, _ := newTestClient(t, u)

	player, err := client.LookupByID(context.Background(), "12345678")
	if err != nil {
		t.Fatalf("LookupByID() returned error: %v", err)
	}
	want := &Player{
		ID:             "12345678",
		Name:           "SMITH, JOHN",
		RegRating:      intPtr(1500),
		QuickRating:    intPtr(1400),
		State:          strPtr("TX"),
		ExpirationDate: strPtr("2025-01-01"),
	}
	if diff := cmp.Diff(want, player); diff != "" {
		t.Errorf("LookupByID() mismatch (-want +got):\n%s", diff)
	}
}
