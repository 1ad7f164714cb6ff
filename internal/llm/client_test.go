package llm

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTrip func(*http.Request) (*http.Response, error)

func (rt roundTrip) RoundTrip(req *http.Request) (*http.Response, error) {
	return rt(req)
}

func jsonReply(content string) *http.Response {
	body := `{"choices":[{"message":{"role":"assistant","content":` + quote(content) + `}}]}`
	return &http.Response{
		StatusCode: 200,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return `"` + s + `"`
}

func newTestClient(rt roundTrip) *Client {
	return New(Options{
		BaseURL:    "https://api.test/v1",
		APIKey:     "sk-test",
		Model:      "gpt-test",
		HTTPClient: &http.Client{Transport: rt},
	})
}

func TestPolishAppliesReply(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %q, want /v1/chat/completions", req.URL.Path)
		}
		if got := req.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q", got)
		}
		body, _ := io.ReadAll(req.Body)
		for _, want := range []string{"gpt-test", "ORIGINAL:", "UDKAST:", "montering af lampe"} {
			if !strings.Contains(string(body), want) {
				t.Errorf("request body missing %q", want)
			}
		}
		return jsonReply("MONTERING AF LAMPE I KØKKEN"), nil
	})

	out := client.Polish(context.Background(), "monterig af lampe", "montering af lampe i køkken")
	if out != "MONTERING AF LAMPE I KØKKEN" {
		t.Errorf("Polish = %q", out)
	}
}

func TestPolishFallsBackOnTransportError(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})

	draft := "montering af lampe"
	if out := client.Polish(context.Background(), "x", draft); out != draft {
		t.Errorf("Polish = %q, want draft back", out)
	}
}

func TestPolishFallsBackOnAPIError(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: 200,
			Body:       io.NopCloser(strings.NewReader(`{"error":{"message":"quota"}}`)),
			Header:     make(http.Header),
		}, nil
	})

	draft := "montering af lampe"
	if out := client.Polish(context.Background(), "x", draft); out != draft {
		t.Errorf("Polish = %q, want draft back", out)
	}
}

func TestPolishFallsBackOnEmptyReply(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return jsonReply("   "), nil
	})

	draft := "montering af lampe"
	if out := client.Polish(context.Background(), "x", draft); out != draft {
		t.Errorf("Polish = %q, want draft back", out)
	}
}

func TestPolishFallsBackOnMultilineReply(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return jsonReply("MONTERING AF LAMPE\nFORKLARING: ..."), nil
	})

	draft := "montering af lampe"
	if out := client.Polish(context.Background(), "x", draft); out != draft {
		t.Errorf("Polish = %q, want draft back", out)
	}
}

func TestPolishFallsBackOnOverlongReply(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return jsonReply(strings.Repeat("LANG TEKST ", 40)), nil
	})

	draft := "kontrol af anlæg"
	if out := client.Polish(context.Background(), "x", draft); out != draft {
		t.Errorf("Polish = %q, want draft back", out)
	}
}

func TestPolishUnconfigured(t *testing.T) {
	client := New(Options{})

	draft := "montering af lampe"
	if out := client.Polish(context.Background(), "x", draft); out != draft {
		t.Errorf("Polish = %q, want draft back", out)
	}
}

func TestPolishRespectsContextThroughLimiter(t *testing.T) {
	calls := 0
	client := New(Options{
		BaseURL:       "https://api.test/v1",
		Model:         "gpt-test",
		RatePerSecond: 0.001,
		Burst:         1,
		HTTPClient: &http.Client{Transport: roundTrip(func(req *http.Request) (*http.Response, error) {
			calls++
			return jsonReply("OK TEKST"), nil
		})},
	})

	ctx, cancel := context.WithCancel(context.Background())
	draft := "montering af lampe"
	if out := client.Polish(ctx, "x", draft); out != "OK TEKST" {
		t.Fatalf("first Polish = %q, want reply", out)
	}
	cancel()

	// Burst spent; the canceled context must abort the limiter wait.
	if out := client.Polish(ctx, "x", draft); out != draft {
		t.Errorf("second Polish = %q, want draft back", out)
	}
	if calls != 1 {
		t.Errorf("transport calls = %d, want 1", calls)
	}
}
