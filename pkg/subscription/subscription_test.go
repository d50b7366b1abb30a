package subscription

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSubscription_FetchAll(t *testing.T) {
	links := "vless://a@one.example\n\nvless://b@two.example\r\nvless://a@one.example\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "proxyfig-test" {
			t.Errorf("User-Agent = %q", ua)
		}
		switch r.URL.Path {
		case "/b64":
			w.Write([]byte(base64.StdEncoding.EncodeToString([]byte(links))))
		case "/wrapped":
			enc := base64.StdEncoding.EncodeToString([]byte(links))
			for len(enc) > 16 {
				w.Write([]byte(enc[:16] + "\r\n"))
				enc = enc[16:]
			}
			w.Write([]byte(enc + "\n"))
		case "/plain":
			w.Write([]byte(links))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	for _, path := range []string{"/b64", "/wrapped", "/plain"} {
		t.Run(path, func(t *testing.T) {
			s := Subscription{URL: srv.URL + path, UserAgent: "proxyfig-test"}
			got, err := s.FetchAll(context.Background())
			if err != nil {
				t.Fatalf("FetchAll() error = %v", err)
			}
			want := "vless://a@one.example|vless://b@two.example|vless://a@one.example"
			if strings.Join(got, "|") != want {
				t.Errorf("FetchAll() = %q", got)
			}

			s.RemoveDuplicate(false)
			if len(s.ConfigLinks) != 2 || s.ConfigLinks[0] != "vless://a@one.example" {
				t.Errorf("RemoveDuplicate() = %q", s.ConfigLinks)
			}
		})
	}

	s := Subscription{URL: srv.URL + "/missing"}
	if _, err := s.FetchAll(context.Background()); err == nil {
		t.Errorf("FetchAll() expected an error for status 404")
	}
	if _, err := (&Subscription{}).FetchAll(context.Background()); err == nil {
		t.Errorf("FetchAll() expected an error for an empty url")
	}
}

func TestSubscription_Fingerprint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("vless://a@one.example\n"))
	}))
	defer srv.Close()

	if _, err := (&Subscription{URL: srv.URL, Fingerprint: "netscape"}).FetchAll(context.Background()); err == nil {
		t.Errorf("FetchAll() accepted an unknown fingerprint")
	}

	s := &Subscription{URL: srv.URL, Fingerprint: "Chrome"}
	c, err := s.client()
	if err != nil {
		t.Fatalf("client() error = %v", err)
	}
	if c == nil {
		t.Fatalf("client() = nil")
	}
	links, err := s.FetchAll(context.Background())
	if err != nil || len(links) != 1 {
		t.Errorf("FetchAll() = %q, %v", links, err)
	}
}
