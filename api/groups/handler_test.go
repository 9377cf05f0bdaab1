package groups

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/powermanager/core/model"
)

type staticView map[string]model.PowerMetrics

func (v staticView) Bounds(g model.BatteryGroup) (model.PowerMetrics, bool) {
	b, ok := v[g.Key()]
	return b, ok
}

func TestBoundsHandler(t *testing.T) {
	h := NewBoundsHandler(staticView{"1,2": {Inclusion: model.Bounds{Lower: -300, Upper: 300}}})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/groups/bounds?group=2,1", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var out model.PowerMetrics
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, 300.0, out.Inclusion.Upper)

	cases := map[string]int{
		"/api/groups/bounds?group=9": http.StatusNotFound,
		"/api/groups/bounds":         http.StatusBadRequest,
		"/api/groups/bounds?group=a": http.StatusBadRequest,
	}
	for target, code := range cases {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, code, rr.Code, target)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/groups/bounds?group=1", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
