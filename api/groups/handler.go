package groups

import (
	"encoding/json"
	"net/http"

	"github.com/kilianp07/powermanager/core/model"
)

// BoundsView exposes the latest known bounds of battery groups.
type BoundsView interface {
	Bounds(group model.BatteryGroup) (model.PowerMetrics, bool)
}

// NewBoundsHandler returns an HTTP handler exposing the cached bounds of a
// group via GET /api/groups/bounds?group=1,2.
func NewBoundsHandler(view BoundsView) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		g, err := model.ParseBatteryGroup(r.URL.Query().Get("group"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		b, ok := view.Bounds(g)
		if !ok {
			http.Error(w, "unknown battery group", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(b); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
