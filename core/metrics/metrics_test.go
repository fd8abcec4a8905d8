package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters_Exposed(t *testing.T) {
	CatalogRows.WithLabelValues("accepted").Add(3)
	if got := testutil.ToFloat64(CatalogRows.WithLabelValues("accepted")); got < 3 {
		t.Errorf("catalog_rows_total{accepted} = %v, want >= 3", got)
	}

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "catalog_rows_total") {
		t.Error("catalog_rows_total missing from /metrics output")
	}
}
