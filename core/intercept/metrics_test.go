package intercept

import (
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHitsCollectorReportsRuleHits(t *testing.T) {
	rt := NewRouter()
	if err := rt.Fulfill("**/api/clips*", http.MethodGet, Response{Status: 200, Body: []byte(`[]`)}); err != nil {
		t.Fatal(err)
	}

	client := &http.Client{Transport: &Transport{Router: rt}}
	for i := 0; i < 3; i++ {
		resp, err := client.Get("http://mock.local/api/clips")
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
	}

	c := NewHitsCollector(rt)
	if got := testutil.CollectAndCount(c); got != 1 {
		t.Fatalf("metric series = %d, want 1", got)
	}
	if got := testutil.ToFloat64(c); got != 3 {
		t.Fatalf("hits = %v, want 3", got)
	}
}

func TestHitsCollectorEmptyRouter(t *testing.T) {
	c := NewHitsCollector(NewRouter())
	if got := testutil.CollectAndCount(c); got != 0 {
		t.Fatalf("metric series = %d, want 0", got)
	}
}
