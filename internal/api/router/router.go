package router

import (
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"dealerstock/internal/api/stocknumber"
	"dealerstock/internal/pkg/cache"
	"dealerstock/internal/pkg/middleware"
)

// NewRouter configura e retorna o roteador HTTP principal.
// Recebe os Handlers já inicializados por injeção de dependências.
func NewRouter(stockHandler *stocknumber.Handler, cacheClient cache.Client, rateLimit int, ratePeriod time.Duration) http.Handler {

	// Usamos o ServeMux padrão do net/http para roteamento
	// Em projetos maiores, pode-se usar um mux de terceiros (e.g., gorilla/mux, chi)
	mux := http.NewServeMux()

	// --- 1. Rotas de Health Check ---
	mux.HandleFunc("/ping", PingHandler)

	// --- 2. Rotas do Módulo de Números de Estoque (v1) ---

	// POST /v1/stock-numbers (Alocar) e GET /v1/stock-numbers (Listar)
	mux.HandleFunc("/v1/stock-numbers", stockHandler.CollectionHandler)

	// GET /v1/stock-numbers/{stockNumber} e PATCH /v1/stock-numbers/{stockNumber}/status
	mux.HandleFunc("/v1/stock-numbers/", stockHandler.ItemHandler)

	// GET /v1/counters (inspeção operacional dos contadores de sequência)
	mux.HandleFunc("/v1/counters", stockHandler.CounterHandler)

	// --- 3. Documentação (Swagger UI) ---
	mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// --- 4. Middlewares Globais ---
	// O rate limiter protege o motor de alocação por IP de origem.
	return middleware.RateLimiter(cacheClient, rateLimit, ratePeriod)(mux)
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
