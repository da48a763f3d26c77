package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"github.com/xavierca1/ligue-leads/internal/infra/integration/leadapi"
)

// Envia um lead de teste para a API e mostra a resposta, incluindo o caminho de lead repetido.
func main() {
	godotenv.Load()

	baseURL := flag.String("url", envOr("LEADS_API_URL", "http://localhost:8080/api"), "URL base da API")
	name := flag.String("name", "Lead de Teste", "nome")
	email := flag.String("email", "teste@example.com", "email")
	whatsapp := flag.String("whatsapp", "", "whatsapp no formato (11) 99999-9999")
	source := flag.String("utm-source", "sample", "utm_source")
	flag.Parse()

	client := leadapi.NewClient(*baseURL,
		leadapi.WithRateLimit(rate.NewLimiter(rate.Every(200*time.Millisecond), 1)),
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	_, check, err := client.CheckEmail(ctx, *email)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	if check != nil {
		log.Printf("🔎 Email %s já existe? %v", check.Email, check.Exists)
	}

	resp, lead, err := client.CreateLead(ctx, leadapi.LeadInput{
		Name:        *name,
		Email:       *email,
		WhatsApp:    *whatsapp,
		LGPDConsent: true,
		UTMSource:   *source,
	})
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	if !resp.Success {
		log.Printf("❌ Falha [%s] %s", resp.Code, resp.Message)
		for _, fe := range resp.Errors {
			log.Printf("   - %s: %s (%s)", fe.Field, fe.Message, fe.Code)
		}
		os.Exit(1)
	}

	if lead.IsExisting {
		log.Printf("ℹ️ Lead já existia: %s (%s)", lead.LeadID, lead.Email)
		return
	}
	log.Printf("✅ Lead criado: %s (%s)", lead.LeadID, lead.Email)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
