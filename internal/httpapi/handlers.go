package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/olegrjumin/threatlens/internal/checker"
	"github.com/olegrjumin/threatlens/internal/service"
)

// maxBodyBytes bounds request bodies; content descriptors may carry full markup
const maxBodyBytes = 8 << 20

// navigateRequest represents the JSON request body for /navigate
type navigateRequest struct {
	Target   string                    `json:"target"`
	URL      string                    `json:"url"`
	Settings *service.SettingsOverride `json:"settings,omitempty"`
}

// requestRequest represents the JSON request body for /request
type requestRequest struct {
	Target   string                    `json:"target"`
	URL      string                    `json:"url"`
	Settings *service.SettingsOverride `json:"settings,omitempty"`
}

// contentRequest represents the JSON request body for /content
type contentRequest struct {
	Target     string              `json:"target"`
	Generation uint64              `json:"generation,omitempty"`
	Content    checker.PageContent `json:"content"`
}

// cpuSampleRequest represents the JSON request body for /cpu-sample
type cpuSampleRequest struct {
	Target     string `json:"target"`
	Generation uint64 `json:"generation,omitempty"`
	Iterations int    `json:"iterations"`
}

// targetRequest represents the JSON request body for /complete and /close
type targetRequest struct {
	Target     string `json:"target"`
	Generation uint64 `json:"generation,omitempty"`
}

// analyzeRequest represents the JSON request body for /analyze
type analyzeRequest struct {
	URL      string                    `json:"url"`
	Content  *checker.PageContent      `json:"content,omitempty"`
	Settings *service.SettingsOverride `json:"settings,omitempty"`
}

// analyzeResponse pairs a result with its human-readable verdict
type analyzeResponse struct {
	Result  checker.AnalysisResult `json:"result"`
	Verdict *service.VerdictResult `json:"verdict"`
}

// navigateHandler handles POST requests to /navigate
// Starts a new evaluation for the target and returns its URL-level result
func navigateHandler(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req navigateRequest
		if !decodePost(w, r, &req) {
			return
		}

		if strings.TrimSpace(req.URL) == "" {
			writeError(w, http.StatusBadRequest, "invalid_request", "URL is required")
			return
		}

		result, err := svc.Navigate(req.Target, req.URL, req.Settings)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// requestHandler handles POST requests to /request
// Classifies one outbound request synchronously
func requestHandler(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req requestRequest
		if !decodePost(w, r, &req) {
			return
		}

		if strings.TrimSpace(req.URL) == "" {
			writeError(w, http.StatusBadRequest, "invalid_request", "URL is required")
			return
		}

		writeJSON(w, http.StatusOK, svc.ClassifyRequest(req.Target, req.URL, req.Settings))
	}
}

// contentHandler handles POST requests to /content
func contentHandler(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req contentRequest
		if !decodePost(w, r, &req) {
			return
		}

		result, err := svc.SubmitContent(req.Target, req.Generation, req.Content)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// cpuSampleHandler handles POST requests to /cpu-sample
func cpuSampleHandler(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req cpuSampleRequest
		if !decodePost(w, r, &req) {
			return
		}

		result, err := svc.SubmitCPUSample(req.Target, req.Generation, req.Iterations)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// completeHandler handles POST requests to /complete
func completeHandler(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req targetRequest
		if !decodePost(w, r, &req) {
			return
		}

		result, err := svc.Complete(req.Target, req.Generation)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// closeHandler handles POST requests to /close
func closeHandler(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req targetRequest
		if !decodePost(w, r, &req) {
			return
		}

		result, err := svc.Close(req.Target)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// resultHandler handles GET requests to /result?target=
func resultHandler(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodGet) {
			return
		}

		result, err := svc.Result(r.URL.Query().Get("target"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// analyzeHandler handles POST requests to /analyze
// One-shot evaluation outside any target; stats are not affected
func analyzeHandler(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req analyzeRequest
		if !decodePost(w, r, &req) {
			return
		}

		if strings.TrimSpace(req.URL) == "" {
			writeError(w, http.StatusBadRequest, "invalid_request", "URL is required")
			return
		}

		result := svc.Analyze(req.URL, req.Content, req.Settings)
		writeJSON(w, http.StatusOK, analyzeResponse{
			Result:  result,
			Verdict: service.SummarizeResult(result),
		})
	}
}

// statsHandler handles GET /stats and PUT /stats (restore)
func statsHandler(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, svc.Stats())
		case http.MethodPut:
			var stats checker.Stats
			if !decodeBody(w, r, &stats) {
				return
			}
			svc.RestoreStats(stats)
			writeJSON(w, http.StatusOK, svc.Stats())
		default:
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		}
	}
}

// statsResetHandler handles POST requests to /stats/reset
func statsResetHandler(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		writeJSON(w, http.StatusOK, svc.ResetStats())
	}
}

// patternsHandler handles GET requests to /patterns
func patternsHandler(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodGet) {
			return
		}
		writeJSON(w, http.StatusOK, svc.Patterns())
	}
}

// patternsReloadHandler handles POST requests to /patterns/reload
// A failed reload keeps the active set and reports why
func patternsReloadHandler(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}

		info, err := svc.ReloadPatterns()
		switch {
		case errors.Is(err, service.ErrNoPatternFile):
			writeError(w, http.StatusConflict, "no_pattern_file", err.Error())
		case err != nil:
			writeError(w, http.StatusUnprocessableEntity, "invalid_patterns", err.Error())
		default:
			writeJSON(w, http.StatusOK, info)
		}
	}
}

// requireMethod writes a 405 and returns false when r is not a method request
func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return false
	}
	return true
}

// decodePost checks for POST and decodes the JSON body into dst
func decodePost(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if !requireMethod(w, r, http.MethodPost) {
		return false
	}
	return decodeBody(w, r, dst)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return false
	}
	return true
}

// writeError writes the API error shape
func writeError(w http.ResponseWriter, status int, errorType, message string) {
	writeJSON(w, status, map[string]string{
		"error":      message,
		"error_type": errorType,
	})
}

// writeServiceError maps a service error to a status code via ClassifyError
func writeServiceError(w http.ResponseWriter, err error) {
	errorType, message := checker.ClassifyError(err)

	status := http.StatusInternalServerError
	switch errorType {
	case checker.ErrorMissingTarget, checker.ErrorInvalidURL, checker.ErrorUnsupportedScheme:
		status = http.StatusBadRequest
	case checker.ErrorUnknownTarget:
		status = http.StatusNotFound
	case checker.ErrorStaleGeneration:
		status = http.StatusConflict
	}

	writeError(w, status, errorType, message)
}
