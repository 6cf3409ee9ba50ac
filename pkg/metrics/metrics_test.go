package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastiangx/strgrp/pkg/strgrp"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveAdd(strgrp.OutcomeCreated, 1)
		m.ObservePass(10, 3, time.Millisecond)
	})
}

func TestObserveAdd(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(WithRegisterer(reg))

	m.ObserveAdd(strgrp.OutcomeCreated, 1)
	m.ObserveAdd(strgrp.OutcomeJoined, 1)
	m.ObserveAdd(strgrp.OutcomeJoined, 1)
	m.ObserveAdd(strgrp.OutcomeCreated, 2)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.adds.WithLabelValues("created")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.adds.WithLabelValues("joined")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.groups))
}

func TestObservePass(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(WithRegisterer(reg))

	m.ObservePass(10, 4, 2*time.Millisecond)
	m.ObservePass(10, 0, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.passes))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.skipped))
	assert.Equal(t, 16.0, testutil.ToFloat64(m.scored))
	assert.Equal(t, 1, testutil.CollectAndCount(m.passDuration))
}

func TestNewReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := New(WithRegisterer(reg))
	second := New(WithRegisterer(reg))

	first.ObservePass(1, 0, time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(second.passes))
}

func TestEngineFeedsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(WithRegisterer(reg), WithNamespace("test"))

	e, err := strgrp.New[int](0.85, strgrp.WithObserver(m))
	require.NoError(t, err)

	for i, key := range []string{"ANZ ATM 10 HIGH ST", "ANZ ATM 12 HIGH ST", "BP PETROL", "BP PETROL"} {
		_, err := e.Add(key, i)
		require.NoError(t, err)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.adds.WithLabelValues("created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.adds.WithLabelValues("joined")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.adds.WithLabelValues("cache_hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.groups))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.passes), "the first add and the cache hit do not score")
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(WithRegisterer(reg))
	m.ObserveAdd(strgrp.OutcomeCreated, 1)

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), `strgrp_adds_total{outcome="created"} 1`), string(body))
}
