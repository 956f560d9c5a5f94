package handler

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
)

// HTTPTriggerRequest represents the structure of the JSON payload for HTTP triggers.
type HTTPTriggerRequest struct {
	Data struct {
		Req struct {
			URL             string              `json:"Url"`
			Method          string              `json:"Method"`
			Query           map[string]string   `json:"Query"`
			Headers         map[string][]string `json:"Headers"`
			Params          map[string]string   `json:"Params"`
			Body            string              `json:"Body"`
			IsBase64Encoded bool                `json:"isBase64Encoded"`
		} `json:"req"`
	} `json:"Data"`
	Metadata map[string]any `json:"Metadata"`
}

// HTTPTriggerResponse represents the structure of the JSON response for HTTP triggers.
type HTTPTriggerResponse struct {
	Outputs struct {
		Res struct {
			StatusCode int               `json:"statusCode"`
			Headers    map[string]string `json:"headers"`
			Body       string            `json:"body"`
		} `json:"res"`
	} `json:"Outputs"`
	Logs        []string `json:"Logs,omitempty"`
	ReturnValue any      `json:"ReturnValue,omitempty"`
}

// triggerBody returns the wrapped request body. Multipart uploads arrive
// base64 encoded even when the flag is not set, so JSON-looking bodies are
// taken verbatim and everything else is decoded when possible.
func triggerBody(body string, isBase64 bool) []byte {
	if body == "" {
		return nil
	}
	trimmed := strings.TrimSpace(body)
	if !isBase64 && (strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")) {
		return []byte(body)
	}
	if decoded, err := base64.StdEncoding.DecodeString(body); err == nil {
		return decoded
	}
	return []byte(body)
}

// HandleHttpTrigger adapts the Azure Functions JSON POST request to a standard HTTP request/response.
// It wraps the provided Next handler (usually the ServeMux).
func (d *Dependencies) HandleHttpTrigger(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var invokeReq HTTPTriggerRequest
		if err := json.NewDecoder(r.Body).Decode(&invokeReq); err != nil {
			slog.Error("failed to unmarshal HTTP trigger request", "error", err)
			http.Error(w, "Failed to unmarshal request", http.StatusBadRequest)
			return
		}

		reqData := invokeReq.Data.Req
		slog.Info("processing wrapped HTTP request", "method", reqData.Method, "url", reqData.URL)

		target, err := url.Parse(reqData.URL)
		if err != nil {
			slog.Error("failed to parse wrapped URL", "url", reqData.URL, "error", err)
			http.Error(w, "Invalid request URL", http.StatusBadRequest)
			return
		}
		q := target.Query()
		for k, v := range reqData.Query {
			if !q.Has(k) {
				q.Set(k, v)
			}
		}
		target.RawQuery = q.Encode()

		var bodyReader io.Reader = http.NoBody
		if body := triggerBody(reqData.Body, reqData.IsBase64Encoded); body != nil {
			bodyReader = bytes.NewReader(body)
		}

		newReq, err := http.NewRequestWithContext(r.Context(), reqData.Method, target.String(), bodyReader)
		if err != nil {
			slog.Error("failed to create internal request", "error", err)
			http.Error(w, "Failed to create internal request", http.StatusInternalServerError)
			return
		}

		for k, v := range reqData.Headers {
			for _, val := range v {
				newReq.Header.Add(k, val)
			}
		}

		recorder := httptest.NewRecorder()
		next.ServeHTTP(recorder, newReq)

		respResult := recorder.Result()
		respBodyBytes, _ := io.ReadAll(respResult.Body)
		respResult.Body.Close()

		respHeaders := make(map[string]string, len(respResult.Header))
		for k, v := range respResult.Header {
			respHeaders[k] = strings.Join(v, ", ")
		}

		jsonResp := HTTPTriggerResponse{}
		jsonResp.Outputs.Res.StatusCode = respResult.StatusCode
		jsonResp.Outputs.Res.Headers = respHeaders
		jsonResp.Outputs.Res.Body = string(respBodyBytes)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(jsonResp); err != nil {
			slog.Error("failed to encode HTTP trigger response", "error", err)
		}
	}
}
