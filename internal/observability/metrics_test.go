package observability

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsForTesting_Counts(t *testing.T) {
	m := NewMetricsForTesting()
	m.RowsSelected.Add(3)
	m.PublishErrors.WithLabelValues("dataset").Inc()
	m.IncompletePublished.Set(2)

	assert.InDelta(t, 3, testutil.ToFloat64(m.RowsSelected), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.PublishErrors.WithLabelValues("dataset")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.IncompletePublished), 0)
}

func TestMetrics_Push(t *testing.T) {
	var gotPath, gotMethod, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := NewMetrics()
	m.ProductsPublished.Add(4)

	require.NoError(t, m.Push(context.Background(), srv.URL))
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/metrics/job/"+PushJob, gotPath)
	assert.NotEmpty(t, gotBody)
}

func TestMetrics_PushError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	m := NewMetrics()
	assert.Error(t, m.Push(context.Background(), srv.URL))
}

func TestMetrics_PushWithoutRegistry(t *testing.T) {
	assert.Error(t, NewMetricsForTesting().Push(context.Background(), "http://localhost:9091"))
}
