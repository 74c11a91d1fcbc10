package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/nearlink-net/nearlink/internal/discovery"
	"github.com/nearlink-net/nearlink/internal/domain"
)

var errBadJSON = errors.New("invalid JSON body")

// ─── Register ───────────────────────────────────────────────────────────────

type registerRequest struct {
	PeerID   string            `json:"peerId"`
	Username string            `json:"username"`
	Avatar   string            `json:"avatar"`
	Location domain.Coordinate `json:"location"`
}

type registerResponse struct {
	Success   bool      `json:"success"`
	PeerCount int       `json:"peerCount"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": map[string]interface{}{
				"code":    "bad_request",
				"message": errBadJSON.Error(),
			},
		})
		return
	}

	res, err := s.svc.Register(discovery.Registration{
		PeerID:   req.PeerID,
		Username: req.Username,
		Avatar:   req.Avatar,
		Location: req.Location,
	})
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"component": "api",
			"peer_id":   req.PeerID,
			"code":      domain.Code(err),
		}).Debug("registration rejected")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, registerResponse{
		Success:   true,
		PeerCount: res.PeerCount,
		Timestamp: res.Timestamp,
	})
}

// ─── Nearby ─────────────────────────────────────────────────────────────────

type nearbyPeer struct {
	PeerID          string        `json:"peerId"`
	Username        string        `json:"username"`
	Avatar          string        `json:"avatar"`
	Distance        float64       `json:"distance"`
	IsActive        bool          `json:"isActive"`
	Status          string        `json:"status"` // derived liveness label
	ReportedStatus  domain.Status `json:"reportedStatus"`
	Accuracy        float64       `json:"accuracy"`
	Activity        string        `json:"activity,omitempty"`
	LastSeenSeconds float64       `json:"lastSeenSeconds"`
	JoinedAt        time.Time     `json:"joinedAt"`
}

type nearbyResponse struct {
	Peers []nearbyPeer `json:"peers"`
	Total int          `json:"total"`
	Range float64      `json:"range"`
	Stats struct {
		TotalPeers  int `json:"totalPeers"`
		ActivePeers int `json:"activePeers"`
	} `json:"stats"`
}

func (s *Server) handleNearby(w http.ResponseWriter, r *http.Request) {
	peerID := chi.URLParam(r, "peerID")

	// A missing or unparsable range falls back to the default inside the
	// service; it is never a request failure.
	rangeMeters, _ := strconv.ParseFloat(r.URL.Query().Get("range"), 64)

	res, err := s.svc.Discover(peerID, rangeMeters)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := nearbyResponse{
		Peers: make([]nearbyPeer, 0, len(res.Peers)),
		Total: res.Total,
		Range: res.RangeMeters,
	}
	resp.Stats.TotalPeers = res.Stats.TotalPeers
	resp.Stats.ActivePeers = res.Stats.ActivePeers

	for _, p := range res.Peers {
		resp.Peers = append(resp.Peers, nearbyPeer{
			PeerID:          p.PeerID,
			Username:        p.Username,
			Avatar:          p.Avatar,
			Distance:        p.DistanceMeters,
			IsActive:        p.IsActive,
			Status:          p.Liveness,
			ReportedStatus:  p.Status,
			Accuracy:        p.AccuracyMeters,
			Activity:        p.Activity,
			LastSeenSeconds: p.LastSeenSeconds,
			JoinedAt:        p.JoinedAt,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// ─── Heartbeat ──────────────────────────────────────────────────────────────

type heartbeatRequest struct {
	Activity         string `json:"activity,omitempty"`
	MessageCount     int64  `json:"messageCount,omitempty"`
	ConnectionsCount int64  `json:"connectionsCount,omitempty"`
}

func (s *Server) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	peerID := chi.URLParam(r, "peerID")

	// An empty body is a valid bare heartbeat; a present but malformed
	// body is rejected like every other JSON endpoint.
	var req heartbeatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": map[string]interface{}{
				"code":    "bad_request",
				"message": errBadJSON.Error(),
			},
		})
		return
	}

	ts, err := s.svc.Heartbeat(peerID, discovery.Beat{
		Activity:         req.Activity,
		MessageCount:     req.MessageCount,
		ConnectionsCount: req.ConnectionsCount,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"timestamp": ts,
	})
}

// ─── Status ─────────────────────────────────────────────────────────────────

type statusRequest struct {
	Status domain.Status `json:"status"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	peerID := chi.URLParam(r, "peerID")

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": map[string]interface{}{
				"code":    "bad_request",
				"message": errBadJSON.Error(),
			},
		})
		return
	}

	ts, err := s.svc.SetStatus(peerID, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"status":    req.Status,
		"timestamp": ts,
	})
}

// ─── Health ─────────────────────────────────────────────────────────────────

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	st := s.svc.Stats()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":        "ok",
		"instance":      s.instanceID,
		"uptimeSeconds": int64(time.Since(s.startedAt).Seconds()),
		"peers":         st.TotalPeers,
		"activePeers":   st.ActivePeers,
	})
}
