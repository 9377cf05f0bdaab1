package decisions

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kilianp07/powermanager/core/decisionlog"
	"github.com/kilianp07/powermanager/core/model"
)

// NewLogHandler returns an HTTP handler exposing decision logs via GET /api/decisions.
// Requests must include an Authorization header with "Bearer <token>" when token is non-empty.
func NewLogHandler(store decisionlog.LogStore, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		q, err := parseQuery(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		records, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []decisionlog.LogRecord{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(records); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

func parseQuery(r *http.Request) (decisionlog.LogQuery, error) {
	v := r.URL.Query()
	q := decisionlog.LogQuery{SourceID: v.Get("source_id")}
	if s := v.Get("start"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return q, err
		}
		q.Start = t
	}
	if s := v.Get("end"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return q, err
		}
		q.End = t
	}
	if s := v.Get("group"); s != "" {
		g, err := model.ParseBatteryGroup(s)
		if err != nil {
			return q, err
		}
		q.GroupKey = g.Key()
	}
	return q, nil
}
