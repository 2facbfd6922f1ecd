package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/foxseedlab/chanharvest/internal/harvest"
	"github.com/foxseedlab/chanharvest/internal/repository"
	"github.com/foxseedlab/chanharvest/internal/spreadsheet"
	"github.com/samber/lo"
)

const (
	maxRequestBody  = 1 << 16
	defaultRunLimit = 20
	maxRunLimit     = 200
)

// parseRequest accepts both the camelCase fields of the web form and the
// snake_case fields of scripted clients. AutoJoin defaults to true.
type parseRequest struct {
	Channel            string `json:"channel"`
	ChannelLink        string `json:"channel_link"`
	ParseBio           *bool  `json:"parseBio"`
	ParseBioSnake      *bool  `json:"parse_bio"`
	ParseUsername      *bool  `json:"parseUsername"`
	ParseUsernameSnake *bool  `json:"parse_username"`
	AutoJoin           *bool  `json:"autoJoin"`
	AutoJoinSnake      *bool  `json:"auto_join"`
}

func (p parseRequest) toRequest() harvest.Request {
	return harvest.Request{
		Channel:       lo.Ternary(p.Channel != "", p.Channel, p.ChannelLink),
		ParseBio:      firstBool(false, p.ParseBio, p.ParseBioSnake),
		ParseUsername: firstBool(false, p.ParseUsername, p.ParseUsernameSnake),
		AutoJoin:      firstBool(true, p.AutoJoin, p.AutoJoinSnake),
	}
}

func firstBool(fallback bool, values ...*bool) bool {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return fallback
}

type errorJSON struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type runJSON struct {
	ID               string     `json:"id"`
	Channel          string     `json:"channel"`
	Status           string     `json:"status"`
	ParseUsername    bool       `json:"parse_username"`
	ParseBio         bool       `json:"parse_bio"`
	StartedAt        time.Time  `json:"started_at"`
	EndedAt          *time.Time `json:"ended_at,omitempty"`
	ParticipantCount int        `json:"participant_count"`
	ArtifactName     string     `json:"artifact_name,omitempty"`
	ErrorDetail      string     `json:"error_detail,omitempty"`
}

func (s *Server) handleTest() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (s *Server) handleParse() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body parseRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, errorJSON{Error: "request body must be a JSON object"})
			return
		}

		result, err := s.harvester.Harvest(r.Context(), body.toRequest())
		if err != nil {
			msg := result.Error
			if msg == "" {
				msg = err.Error()
			}
			writeJSON(w, statusFor(err), errorJSON{Error: msg})
			return
		}
		s.serveArtifact(w, result)
	}
}

func (s *Server) serveArtifact(w http.ResponseWriter, result harvest.Result) {
	defer s.scheduleRemoval(result.ArtifactPath)

	f, err := os.Open(result.ArtifactPath)
	if err != nil {
		s.log.Error("failed to open artifact", "error", err, "path", result.ArtifactPath)
		writeJSON(w, http.StatusInternalServerError, errorJSON{Error: "artifact is not available"})
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", spreadsheet.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": result.ArtifactName}))
	if info, err := f.Stat(); err == nil {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, f); err != nil {
		s.log.Warn("failed to stream artifact", "error", err, "artifact", result.ArtifactName)
	}
}

// scheduleRemoval deletes a served artifact together with the per-run
// directory holding it. Other runs' directories are never touched.
func (s *Server) scheduleRemoval(path string) {
	remove := func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.log.Error("failed to remove served artifact", "error", err, "path", path)
			return
		}
		dir := filepath.Dir(path)
		if err := os.Remove(dir); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.log.Warn("failed to remove artifact dir", "error", err, "dir", dir)
		}
	}
	if s.retention <= 0 {
		remove()
		return
	}
	time.AfterFunc(s.retention, remove)
}

func (s *Server) handleRuns() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultRunLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				writeJSON(w, http.StatusBadRequest, errorJSON{Error: "limit must be a positive integer"})
				return
			}
			limit = min(n, maxRunLimit)
		}

		runs, err := s.harvester.RecentRuns(r.Context(), limit)
		if err != nil {
			s.log.Error("failed to list runs", "error", err)
			writeJSON(w, http.StatusInternalServerError, errorJSON{Error: "run history is unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, lo.Map(runs, func(run repository.Run, _ int) runJSON {
			return runJSON{
				ID:               run.ID,
				Channel:          run.Channel,
				Status:           string(run.Status),
				ParseUsername:    run.ParseUsername,
				ParseBio:         run.ParseBio,
				StartedAt:        run.StartedAt,
				EndedAt:          run.EndedAt,
				ParticipantCount: run.ParticipantCount,
				ArtifactName:     run.ArtifactName,
				ErrorDetail:      run.ErrorDetail,
			}
		}))
	}
}

func statusFor(err error) int {
	switch harvest.KindOf(err) {
	case harvest.KindInvalidRequest:
		return http.StatusBadRequest
	case harvest.KindResolution:
		return http.StatusNotFound
	case harvest.KindAccess:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
