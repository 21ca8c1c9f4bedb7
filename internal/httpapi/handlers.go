package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/kirinami/bancho-backend/internal/packet"
	"github.com/kirinami/bancho-backend/internal/registry"
)

// CreateMatchRequest is the JSON body for POST /matches.
type CreateMatchRequest struct {
	Name            string  `json:"name"`
	Password        *string `json:"password,omitempty"`
	HostID          int32   `json:"host_id"`
	BeatmapID       int32   `json:"beatmap_id"`
	BeatmapChecksum string  `json:"beatmap_checksum"`
	BeatmapName     string  `json:"beatmap_name"`
	Mode            int32   `json:"mode"`
}

func CreateMatch(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateMatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Name == "" {
			http.Error(w, "missing name", http.StatusBadRequest)
			return
		}

		m := reg.CreateMatch(packet.MatchData{
			Name:            req.Name,
			Password:        req.Password,
			HostID:          req.HostID,
			BeatmapID:       req.BeatmapID,
			BeatmapChecksum: req.BeatmapChecksum,
			BeatmapName:     req.BeatmapName,
			Mode:            req.Mode,
		})

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(struct {
			ID int32 `json:"id"`
		}{ID: m.ID()})
	}
}

func ListMatches(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matches := reg.Matches()
		out := make([]packet.MatchData, 0, len(matches))
		for _, m := range matches {
			data := m.Data()
			// The listing never leaks the room password; its presence is
			// signalled by a non-nil empty string.
			if data.Password != nil {
				hidden := ""
				data.Password = &hidden
			}
			out = append(out, data)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
