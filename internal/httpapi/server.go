package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"

	"github.com/joelkehle/startup-valuation/internal/service"
	"github.com/joelkehle/startup-valuation/internal/store"
	"github.com/joelkehle/startup-valuation/internal/valuation"
)

// OwnerHeader carries the caller identity set by the upstream auth proxy.
const OwnerHeader = "X-Owner"

type Server struct {
	svc          *service.Service
	validate     *validator.Validate
	logger       *zap.Logger
	shareBaseURL string
	started      time.Time
}

func NewServer(svc *service.Service, logger *zap.Logger, shareBaseURL string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		svc:          svc,
		validate:     newValidator(),
		logger:       logger,
		shareBaseURL: strings.TrimRight(shareBaseURL, "/"),
		started:      time.Now().UTC(),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.accessLog)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/stages", s.handleStages)
		r.Get("/shared/{token}", s.handleShared)
		r.Route("/valuations", func(r chi.Router) {
			r.Post("/compute", s.handleCompute)
			r.Post("/", s.handleCreate)
			r.Get("/", s.handleList)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGet)
				r.Put("/", s.handleUpdate)
				r.Delete("/", s.handleDelete)
				r.Get("/verify", s.handleVerify)
				r.Post("/share", s.handleShare)
				r.Get("/report", s.handleReport)
				r.Get("/report.pdf", s.handleReportPDF)
			})
		})
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := toAPIError(err)
	if apiErr.Status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
	}
	writeJSON(w, apiErr.Status, map[string]any{
		"ok": false,
		"error": map[string]any{
			"code":    apiErr.Code,
			"message": apiErr.Message,
		},
	})
}

// accessLog continues any trace carried in the request headers and logs the
// outcome at debug level.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		r = r.WithContext(ctx)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

func owner(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(OwnerHeader))
}

// listOwner also accepts ?owner= so a listing can be linked directly.
func listOwner(r *http.Request) string {
	if v := owner(r); v != "" {
		return v
	}
	return strings.TrimSpace(r.URL.Query().Get("owner"))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":             true,
		"uptime_seconds": int64(time.Since(s.started).Seconds()),
	})
}

func (s *Server) handleStages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"stages": s.svc.Profiles()})
}

func (s *Server) handleCompute(w http.ResponseWriter, r *http.Request) {
	in, err := s.decodeInput(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.svc.Compute(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	in, err := s.decodeInput(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err := s.svc.Save(r.Context(), owner(r), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/valuations/"+rec.ID)
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	recs, err := s.svc.List(r.Context(), listOwner(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if recs == nil {
		recs = []store.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"valuations": recs})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := s.svc.Get(r.Context(), chi.URLParam(r, "id"), owner(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"valuation": rec,
		"insights":  valuation.ComputeInsights(rec.Input, rec.Snapshot),
	})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	in, err := s.decodeInput(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err := s.svc.Update(r.Context(), chi.URLParam(r, "id"), owner(r), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Delete(r.Context(), chi.URLParam(r, "id"), owner(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Verify(r.Context(), chi.URLParam(r, "id"), owner(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	token, err := s.svc.Share(r.Context(), chi.URLParam(r, "id"), owner(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	path := "/v1/shared/" + token
	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"url":   s.shareBaseURL + path,
	})
}

func (s *Server) handleShared(w http.ResponseWriter, r *http.Request) {
	view, err := s.svc.Shared(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	markdown, err := s.svc.Report(r.Context(), chi.URLParam(r, "id"), owner(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(markdown))
}

func (s *Server) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pdf, err := s.svc.ReportPDF(r.Context(), id, owner(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	filename := sanitizeFilename("valuation-"+id) + ".pdf"
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func sanitizeFilename(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "report"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, v)
}
