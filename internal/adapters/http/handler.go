package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/tubefetch/tubefetch/internal/application"
	"github.com/tubefetch/tubefetch/internal/contracts"
	"github.com/tubefetch/tubefetch/internal/domain"
)

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, "ok")
}

func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	if err := h.artifacts.Ready(); err != nil {
		logHTTPOperationError(r.Context(), "readyz", http.StatusServiceUnavailable, "not_ready", "storage not ready", err)
		writeError(w, http.StatusServiceUnavailable, contracts.ErrorPayload{
			Code:      "not_ready",
			Message:   "storage not ready",
			Retryable: true,
			RequestID: requestIDFromContext(r.Context()),
		})
		return
	}
	writeMessage(w, http.StatusOK, "ready")
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) {
	var req contracts.ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeInvalidJSON(w, r, "resolve", err)
		return
	}
	out, err := h.service.Resolve(r.Context(), application.ResolveInput{
		ClientKey: clientIP(r),
		URL:       strings.TrimSpace(req.URL),
	})
	if err != nil {
		h.writeDomainError(w, r, "resolve", err)
		return
	}
	writeSuccess(w, http.StatusOK, contracts.ResolveResponse{
		Metadata:     out.Video.Metadata,
		Variants:     out.Video.Variants,
		StrategyUsed: out.StrategyUsed,
	})
}

func (h *Handler) commitDownload(w http.ResponseWriter, r *http.Request) {
	var req contracts.CommitDownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeInvalidJSON(w, r, "commit_download", err)
		return
	}
	out, err := h.service.CommitDownload(r.Context(), application.CommitDownloadInput{
		ClientKey: clientIP(r),
		URL:       strings.TrimSpace(req.URL),
		VariantID: req.VariantID,
		MediaKind: strings.TrimSpace(req.MediaKind),
	})
	if err != nil {
		h.writeDomainError(w, r, "commit_download", err)
		return
	}
	writeSuccess(w, http.StatusAccepted, contracts.CommitDownloadResponse{
		JobID:    out.JobID,
		Filename: out.Filename,
		MimeType: out.MimeType,
	})
}

func (h *Handler) pollJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	out, err := h.service.PollJob(r.Context(), jobID)
	if err != nil {
		h.writeDomainError(w, r, "poll_job", err)
		return
	}
	writeSuccess(w, http.StatusOK, out)
}

func (h *Handler) fetchArtifact(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	artifact, err := h.service.FetchArtifact(r.Context(), jobID)
	if err != nil {
		h.writeDomainError(w, r, "fetch_artifact", err)
		return
	}
	defer artifact.Reader.Close()

	w.Header().Set("Content-Type", artifact.MimeType)
	w.Header().Set("Content-Length", fmt.Sprintf("%d", artifact.Size))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, artifact.Reader); err != nil {
		httpLogger().WarnContext(r.Context(), "artifact stream interrupted",
			"operation", "fetch_artifact",
			"outcome", "failure",
			"request_id", requestIDFromContext(r.Context()),
			"error", err.Error(),
		)
	}
}

func (h *Handler) writeInvalidJSON(w http.ResponseWriter, r *http.Request, operation string, err error) {
	logHTTPOperationError(r.Context(), operation, http.StatusBadRequest, "invalid_json", "malformed request body", err)
	writeError(w, http.StatusBadRequest, contracts.ErrorPayload{
		Code:      "invalid_json",
		Message:   "malformed request body",
		RequestID: requestIDFromContext(r.Context()),
	})
}

func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	status, payload := mapDomainError(err)
	payload.RequestID = requestIDFromContext(r.Context())
	logHTTPOperationError(r.Context(), operation, status, payload.Code, payload.Message, err)
	writeError(w, status, payload)
}

func mapDomainError(err error) (int, contracts.ErrorPayload) {
	switch {
	case errors.Is(err, domain.ErrInvalidURL):
		return http.StatusBadRequest, contracts.ErrorPayload{
			Code:    "invalid_url",
			Message: "the supplied URL is not a recognized video URL",
			Hint:    "use a watch or short-link URL containing a video id",
		}
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, contracts.ErrorPayload{
			Code:      "rate_limited",
			Message:   "too many requests",
			Hint:      "retry after the current window expires",
			Retryable: true,
		}
	case errors.Is(err, domain.ErrAllStrategiesExhausted):
		return http.StatusBadGateway, contracts.ErrorPayload{
			Code:      "all_strategies_exhausted",
			Message:   "no extraction strategy could resolve the video",
			Hint:      "the upstream source may be temporarily unavailable",
			Retryable: true,
		}
	case errors.Is(err, domain.ErrNoFormatsAvailable):
		return http.StatusUnprocessableEntity, contracts.ErrorPayload{
			Code:    "no_formats_available",
			Message: "the video resolved but exposes no downloadable streams",
		}
	case errors.Is(err, domain.ErrVariantNotFound):
		return http.StatusNotFound, contracts.ErrorPayload{
			Code:    "variant_not_found",
			Message: "the requested stream variant is not in the catalog",
			Hint:    "re-resolve the video and pick a variant id from the response",
		}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, contracts.ErrorPayload{
			Code:    "not_found",
			Message: "resource not found",
		}
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, contracts.ErrorPayload{
			Code:    "invalid_input",
			Message: err.Error(),
		}
	default:
		return http.StatusInternalServerError, contracts.ErrorPayload{
			Code:    "internal_error",
			Message: "internal server error",
		}
	}
}
