package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hazelfield/encore/internal/shared"
	tu "github.com/hazelfield/encore/internal/testing"
	"golang.org/x/time/rate"
)

// newTestSetlistFM points a service at a test server with the limiter opened up.
func newTestSetlistFM(t *testing.T, handler http.HandlerFunc) (*SetlistFMService, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := NewSetlistFMService("test_api_key")
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	svc.baseURL = server.URL
	svc.limiter = rate.NewLimiter(rate.Inf, 1)

	return svc, server
}

func TestSetlistFMService(t *testing.T) {
	ctx := context.Background()

	t.Run("NewSetlistFMService", func(t *testing.T) {
		t.Run("With API Key", func(t *testing.T) {
			svc, err := NewSetlistFMService("key")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if svc.Name() != "setlist.fm" {
				t.Errorf("expected service name 'setlist.fm', got %s", svc.Name())
			}
		})

		t.Run("Missing API Key", func(t *testing.T) {
			if _, err := NewSetlistFMService(""); !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})
	})

	t.Run("SetHTTPClient", func(t *testing.T) {
		t.Run("Requests Go Through The Injected Client", func(t *testing.T) {
			svc, err := NewSetlistFMService("key")
			if err != nil {
				t.Fatalf("failed to create service: %v", err)
			}
			svc.limiter = rate.NewLimiter(rate.Inf, 1)
			svc.SetHTTPClient(&http.Client{
				Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused")),
			})

			if _, err := svc.SearchSetlists(ctx, "Bandname", "2023-05-01"); !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest from the injected client, got %v", err)
			}
		})

		t.Run("Nil Client Is Ignored", func(t *testing.T) {
			svc, err := NewSetlistFMService("key")
			if err != nil {
				t.Fatalf("failed to create service: %v", err)
			}
			svc.SetHTTPClient(nil)
			if svc.httpClient == nil {
				t.Error("expected the default client to remain")
			}
		})
	})

	t.Run("SearchSetlists", func(t *testing.T) {
		t.Run("Sends API Key And Converted Date", func(t *testing.T) {
			svc, _ := newTestSetlistFM(t, func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("x-api-key"); got != "test_api_key" {
					t.Errorf("expected x-api-key header, got %q", got)
				}
				if got := r.URL.Query().Get("date"); got != "01-05-2023" {
					t.Errorf("expected date 01-05-2023, got %q", got)
				}
				if got := r.URL.Query().Get("artistName"); got != "Bandname" {
					t.Errorf("expected artistName Bandname, got %q", got)
				}
				w.Write([]byte(`{"total": 1, "setlist": [{"id": "s1", "eventDate": "01-05-2023", "artist": {"name": "Bandname"}, "venue": {"name": "Hall A", "city": {"name": "City"}}, "sets": {"set": [{"song": [{"name": "Song One"}]}]}}]}`))
			})

			setlists, err := svc.SearchSetlists(ctx, "Bandname", "2023-05-01")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(setlists) != 1 {
				t.Fatalf("expected 1 setlist, got %d", len(setlists))
			}
			if setlists[0].EventDate != "2023-05-01" {
				t.Errorf("expected event date converted back, got %q", setlists[0].EventDate)
			}
			if setlists[0].Venue != "Hall A" || setlists[0].City != "City" {
				t.Errorf("unexpected venue/city: %+v", setlists[0])
			}
		})

		t.Run("Splits Openers From Headliner", func(t *testing.T) {
			svc, _ := newTestSetlistFM(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"total": 1, "setlist": [{"id": "s1", "eventDate": "01-05-2023", "artist": {"name": "Headliner"}, "venue": {"name": "Hall A", "city": {"name": "City"}}, "sets": {"set": [
					{"name": "Opening Act", "song": [{"name": "Warm Up"}]},
					{"song": [{"name": "Hit One"}, {"name": "Hit Two"}]},
					{"name": "Encore", "encore": 1, "song": [{"name": "Closer"}]}
				]}}]}`))
			})

			setlists, err := svc.SearchSetlists(ctx, "Headliner", "2023-05-01")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			songs := setlists[0].Songs()
			want := []string{"Warm Up", "Hit One", "Hit Two", "Closer"}
			if len(songs) != len(want) {
				t.Fatalf("expected %d songs, got %d", len(want), len(songs))
			}
			for i, title := range want {
				if songs[i].Title != title {
					t.Errorf("songs[%d].Title = %q, want %q", i, songs[i].Title, title)
				}
			}
			if songs[0].Performer != "Opening Act" {
				t.Errorf("expected opener performer, got %q", songs[0].Performer)
			}
			if songs[1].Performer != "Headliner" {
				t.Errorf("expected headliner performer, got %q", songs[1].Performer)
			}
		})

		t.Run("Keeps Openers Billed Without Songs", func(t *testing.T) {
			svc, _ := newTestSetlistFM(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"total": 1, "setlist": [{"id": "s1", "eventDate": "01-05-2023", "artist": {"name": "Headliner"}, "venue": {"name": "Hall A", "city": {"name": "City"}}, "sets": {"set": [
					{"name": "Opening Act", "song": []},
					{"song": [{"name": "Hit One"}]}
				]}}]}`))
			})

			setlists, err := svc.SearchSetlists(ctx, "Headliner", "2023-05-01")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			acts := setlists[0].Acts
			if len(acts) != 2 {
				t.Fatalf("expected the songless opener kept, got %d acts", len(acts))
			}
			if !acts[0].Opener || acts[0].Performer != "Opening Act" || len(acts[0].Songs) != 0 {
				t.Errorf("unexpected opener act: %+v", acts[0])
			}
			if acts[1].Performer != "Headliner" {
				t.Errorf("unexpected headliner act: %+v", acts[1])
			}
		})

		t.Run("Skips Tape Songs", func(t *testing.T) {
			svc, _ := newTestSetlistFM(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"total": 1, "setlist": [{"id": "s1", "eventDate": "01-05-2023", "artist": {"name": "Band"}, "venue": {"name": "Hall", "city": {"name": "City"}}, "sets": {"set": [{"song": [{"name": "Intro Tape", "tape": true}, {"name": "Real Song"}]}]}}]}`))
			})

			setlists, err := svc.SearchSetlists(ctx, "Band", "2023-05-01")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			songs := setlists[0].Songs()
			if len(songs) != 1 || songs[0].Title != "Real Song" {
				t.Errorf("expected tape song skipped, got %+v", songs)
			}
		})

		t.Run("404 Is NoSetlistFound", func(t *testing.T) {
			svc, _ := newTestSetlistFM(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			})

			_, err := svc.SearchSetlists(ctx, "Unknown Band", "2023-05-01")
			if !errors.Is(err, shared.ErrNoSetlistFound) {
				t.Errorf("expected ErrNoSetlistFound, got %v", err)
			}
		})

		t.Run("Empty Result Is NoSetlistFound", func(t *testing.T) {
			svc, _ := newTestSetlistFM(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"total": 0, "setlist": []}`))
			})

			_, err := svc.SearchSetlists(ctx, "Unknown Band", "2023-05-01")
			if !errors.Is(err, shared.ErrNoSetlistFound) {
				t.Errorf("expected ErrNoSetlistFound, got %v", err)
			}
		})

		t.Run("403 Is AuthFailed", func(t *testing.T) {
			svc, _ := newTestSetlistFM(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			})

			_, err := svc.SearchSetlists(ctx, "Band", "2023-05-01")
			if !errors.Is(err, shared.ErrAuthFailed) {
				t.Errorf("expected ErrAuthFailed, got %v", err)
			}
		})

		t.Run("Invalid Date", func(t *testing.T) {
			svc, _ := newTestSetlistFM(t, func(w http.ResponseWriter, r *http.Request) {
				t.Error("no request expected for invalid date")
			})

			_, err := svc.SearchSetlists(ctx, "Band", "05/01/2023")
			if !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	})
}

func TestSetlistFMDates(t *testing.T) {
	t.Run("ToAPIForm", func(t *testing.T) {
		got, err := toSetlistFMDate("2023-05-01")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "01-05-2023" {
			t.Errorf("toSetlistFMDate() = %q, want 01-05-2023", got)
		}

		if _, err := toSetlistFMDate("not-a-date"); err == nil {
			t.Error("expected error for invalid date")
		}
	})

	t.Run("FromAPIForm", func(t *testing.T) {
		if got := fromSetlistFMDate("01-05-2023"); got != "2023-05-01" {
			t.Errorf("fromSetlistFMDate() = %q, want 2023-05-01", got)
		}
		if got := fromSetlistFMDate("garbage"); got != "garbage" {
			t.Errorf("expected passthrough, got %q", got)
		}
	})
}
