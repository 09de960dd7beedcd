package llm

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSplitSentences(t *testing.T) {
	text := `- Leaving the switchboard as it is could let a fault go unnoticed.
* None of this work is needed today. Ok.
3) Allow roughly $2,600 for the recommended works.`

	want := []string{
		"Leaving the switchboard as it is could let a fault go unnoticed.",
		"None of this work is needed today.",
		"Allow roughly $2,600 for the recommended works.",
	}
	if diff := cmp.Diff(want, SplitSentences(text)); diff != "" {
		t.Errorf("sentences mismatch (-want +got):\n%s", diff)
	}
}

func TestClean_DropsLinkedSentences(t *testing.T) {
	kept, dropped := Clean("Read more at www.example.org about safety switches. Planned work keeps the risk manageable.")

	if dropped != 1 {
		t.Errorf("Expected 1 dropped, got %d", dropped)
	}
	if diff := cmp.Diff([]string{"Planned work keeps the risk manageable."}, kept); diff != "" {
		t.Errorf("kept mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractURLs_Dedupes(t *testing.T) {
	urls := extractURLs("see https://a.example/x, and https://a.example/x. also http://b.example")
	if diff := cmp.Diff([]string{"https://a.example/x", "http://b.example"}, urls); diff != "" {
		t.Errorf("urls mismatch (-want +got):\n%s", diff)
	}
}

func TestNewProxyFunc(t *testing.T) {
	proxy := newProxyFunc("http://plain:3128", "http://secure:3129", "localhost,.internal")

	tests := []struct {
		target string
		want   string
	}{
		{"http://api.example.com/v1", "http://plain:3128"},
		{"https://api.example.com/v1", "http://secure:3129"},
		{"http://localhost:11434/api/tags", ""},
		{"https://llm.internal/v1", ""},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			u, _ := url.Parse(tt.target)
			got, err := proxy(&http.Request{URL: u})
			if err != nil {
				t.Fatalf("proxy: %v", err)
			}
			if tt.want == "" {
				if got != nil {
					t.Errorf("Expected no proxy, got %s", got)
				}
				return
			}
			if got == nil || got.String() != tt.want {
				t.Errorf("Expected %s, got %v", tt.want, got)
			}
		})
	}
}
