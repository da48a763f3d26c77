package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/xavierca1/ligue-leads/internal/usecase"
)

const maxBodyBytes = 1 << 20

const (
	CodeInvalidJSON        = "INVALID_JSON"
	CodeRouteNotFound      = "ROUTE_NOT_FOUND"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// Response é o envelope de todas as respostas JSON da API.
type Response struct {
	Success bool                      `json:"success"`
	Message string                    `json:"message,omitempty"`
	Data    any                       `json:"data,omitempty"`
	Errors  []usecase.ValidationError `json:"errors,omitempty"`
	Code    string                    `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("⚠️ [HTTP] Falha ao serializar resposta: %v", err)
	}
}

// writeError traduz o erro do use case para status + envelope.
// Em produção a mensagem de erro interno é genérica; o detalhe fica só no log.
func writeError(w http.ResponseWriter, r *http.Request, err error, production bool) {
	if de, ok := usecase.AsDomainError(err); ok {
		writeJSON(w, statusForKind(de.Kind), Response{
			Success: false,
			Message: de.Message,
			Data:    de.Data,
			Errors:  de.Fields,
			Code:    de.Code,
		})
		return
	}

	log.Printf("❌ [HTTP] %s %s ip=%s: %v", r.Method, r.URL.Path, clientIP(r), err)

	message := "Erro interno do servidor"
	if !production {
		message = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, Response{
		Success: false,
		Message: message,
		Code:    usecase.CodeInternal,
	})
}

func statusForKind(k usecase.ErrorKind) int {
	switch k {
	case usecase.KindValidation:
		return http.StatusBadRequest
	case usecase.KindConflict:
		return http.StatusConflict
	case usecase.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

var errEmptyBody = errors.New("corpo vazio")

// decodeBody lê um objeto JSON. Qualquer outra coisa (array, texto, corpo vazio) é INVALID_JSON.
func decodeBody(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var body map[string]any
	err := json.NewDecoder(r.Body).Decode(&body)
	if errors.Is(err, io.EOF) {
		err = errEmptyBody
	}
	if err == nil && body == nil {
		err = errEmptyBody
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Message: "JSON inválido",
			Code:    CodeInvalidJSON,
		})
		return nil, false
	}
	return body, true
}

func NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, Response{
		Success: false,
		Message: "Rota não encontrada: " + r.Method + " " + r.URL.Path,
		Code:    CodeRouteNotFound,
	})
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, Response{
		Success: false,
		Message: "Método não permitido",
		Code:    CodeMethodNotAllowed,
	})
}
