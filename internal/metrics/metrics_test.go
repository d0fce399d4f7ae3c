// ABOUTME: Tests for the metrics helpers
// ABOUTME: Uses prometheus testutil to read counter values
package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserve_CountsFailuresOnly(t *testing.T) {
	before := testutil.ToFloat64(ExternalCallFailures.WithLabelValues("test_call"))

	assert.NoError(t, Observe("test_call", func() error { return nil }))
	assert.Equal(t, before, testutil.ToFloat64(ExternalCallFailures.WithLabelValues("test_call")))

	err := Observe("test_call", func() error { return errors.New("down") })
	assert.EqualError(t, err, "down")
	assert.Equal(t, before+1, testutil.ToFloat64(ExternalCallFailures.WithLabelValues("test_call")))
}
