package middleware

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"runtime/debug"
)

// Recoverer transforma panic em 500 JSON. Em produção a mensagem é genérica.
func Recoverer(production bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil || rec == http.ErrAbortHandler {
					if rec != nil {
						panic(rec)
					}
					return
				}

				log.Printf("❌ [PANIC] %s %s: %v\n%s", r.Method, r.URL.Path, rec, debug.Stack())

				message := "Erro interno do servidor"
				if !production {
					message = fmt.Sprint(rec)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]any{
					"success": false,
					"message": message,
					"code":    "INTERNAL_SERVER_ERROR",
				})
			}()

			next.ServeHTTP(w, r)
		})
	}
}
