package stocknumber

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"dealerstock/internal/domain"
	apperror "dealerstock/internal/errors"
	"dealerstock/internal/pkg/logger"
)

// AllocationService define o contrato que o Handler espera da camada de Serviço.
type AllocationService interface {
	Allocate(ctx domain.Context, req domain.AllocationRequest) (domain.StockNumber, error)
	TransitionStatus(ctx domain.Context, stockNumber string, req domain.StatusUpdateRequest) (domain.StockNumber, error)
	GetByStockNumber(ctx domain.Context, stockNumber string) (domain.StockNumber, error)
	ListStockNumbers(ctx domain.Context, filter domain.StockNumberFilter) ([]domain.StockNumber, error)
	CounterValue(ctx domain.Context, key domain.BusinessKey) (domain.Counter, error)
}

// Handler agrupa todos os métodos de Handler de números de estoque.
type Handler struct {
	Service AllocationService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc AllocationService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// handleServiceResponse processa erros de serviço e envia respostas padronizadas ao cliente.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	if err == nil {
		// Sucesso
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(successStatus)
		if data != nil {
			if jsonErr := json.NewEncoder(w).Encode(data); jsonErr != nil {
				h.Logger.Error("Falha ao codificar JSON de resposta", jsonErr)
				http.Error(w, "Erro ao codificar resposta", http.StatusInternalServerError)
			}
		}
		return
	}

	// TRATAMENTO DE ERROS
	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		h.Logger.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
	} else {
		h.Logger.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), map[string]interface{}{"path": r.URL.Path})
	}

	errorResponse := domain.ErrorResponse{
		Code:     status,
		Category: category,
		Message:  message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse)
}

// CollectionHandler despacha as rotas da coleção /v1/stock-numbers:
// POST aloca um novo número, GET lista com filtros.
func (h *Handler) CollectionHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.AllocateHandler(w, r)
	case http.MethodGet:
		h.ListHandler(w, r)
	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

// AllocateHandler lida com a requisição POST /v1/stock-numbers.
// @Summary Aloca um novo número de estoque
// @Description Valida os códigos, consome o próximo sequencial da chave de negócio e persiste o registro com status "available". A chamada não é idempotente: repetir o payload produz um novo número.
// @Tags stock-numbers
// @Accept json
// @Produce json
// @Param allocation body domain.AllocationRequest true "Códigos de loja, departamento e condição, com order_id e notes opcionais"
// @Success 201 {object} domain.StockNumber "Número de estoque alocado"
// @Failure 400 {object} domain.ErrorResponse "Código fora do conjunto configurado ou payload inválido"
// @Failure 409 {object} domain.ErrorResponse "Sequência esgotada ou número duplicado"
// @Failure 422 {object} domain.ErrorResponse "Ano fora da janela de codificação"
// @Failure 503 {object} domain.ErrorResponse "Armazenamento indisponível"
// @Router /stock-numbers [post]
func (h *Handler) AllocateHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req domain.AllocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusBadRequest)
		return
	}

	record, err := h.Service.Allocate(ctx, req)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, record, nil, http.StatusCreated)
}

// ListHandler lida com a requisição GET /v1/stock-numbers.
// @Summary Lista números de estoque
// @Description Retorna os registros filtrados por qualquer subconjunto de loja, departamento e status, ordenados por created_at decrescente.
// @Tags stock-numbers
// @Produce json
// @Param location_code query string false "Código de loja (2 letras)"
// @Param department query string false "Código de departamento (1 letra)"
// @Param status query string false "Status do registro"
// @Success 200 {array} domain.StockNumber "Lista de registros"
// @Failure 400 {object} domain.ErrorResponse "Status de filtro inválido"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /stock-numbers [get]
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter := domain.StockNumberFilter{
		LocationCode: r.URL.Query().Get("location_code"),
		Department:   r.URL.Query().Get("department"),
		Status:       r.URL.Query().Get("status"),
	}

	records, err := h.Service.ListStockNumbers(ctx, filter)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	if records == nil {
		records = []domain.StockNumber{}
	}

	h.handleServiceResponse(w, r, records, nil, http.StatusOK)
}

// CounterHandler lida com a requisição GET /v1/counters.
// @Summary Inspeciona um contador de sequência
// @Description Retorna o último sequencial commitado da chave de negócio informada. Chaves nunca alocadas retornam 0; contadores históricos nunca são apagados.
// @Tags counters
// @Produce json
// @Param location_code query string true "Código de loja (2 letras)"
// @Param department query string true "Código de departamento (1 letra)"
// @Param year_code query string true "Código de ano (1 letra maiúscula)"
// @Param condition query string true "Código de condição (1 letra)"
// @Success 200 {object} domain.Counter "Estado do contador"
// @Failure 400 {object} domain.ErrorResponse "Código fora do conjunto configurado"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /counters [get]
func (h *Handler) CounterHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	key := domain.BusinessKey{
		LocationCode: r.URL.Query().Get("location_code"),
		Department:   r.URL.Query().Get("department"),
		YearCode:     r.URL.Query().Get("year_code"),
		Condition:    r.URL.Query().Get("condition"),
	}

	counter, err := h.Service.CounterValue(r.Context(), key)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, counter, nil, http.StatusOK)
}

// ItemHandler despacha as rotas de item /v1/stock-numbers/{stockNumber}
// e /v1/stock-numbers/{stockNumber}/status.
func (h *Handler) ItemHandler(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/stock-numbers/")

	if rest, ok := strings.CutSuffix(path, "/status"); ok {
		if r.Method != http.MethodPatch {
			http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
			return
		}
		h.transitionStatus(w, r, rest)
		return
	}

	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}
	h.getByStockNumber(w, r, path)
}

// getByStockNumber lida com a requisição GET /v1/stock-numbers/{stockNumber}.
// @Summary Obtém um número de estoque
// @Description Busca um registro pela sua chave natural (o número formatado de 10 caracteres).
// @Tags stock-numbers
// @Produce json
// @Param stockNumber path string true "Número de estoque (e.g., CLRAN00001)"
// @Success 200 {object} domain.StockNumber "Registro encontrado"
// @Failure 404 {object} domain.ErrorResponse "Número de estoque não encontrado"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /stock-numbers/{stockNumber} [get]
func (h *Handler) getByStockNumber(w http.ResponseWriter, r *http.Request, stockNumber string) {
	record, err := h.Service.GetByStockNumber(r.Context(), stockNumber)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, record, nil, http.StatusOK)
}

// transitionStatus lida com a requisição PATCH /v1/stock-numbers/{stockNumber}/status.
// @Summary Transiciona o status de um número de estoque
// @Description Atualiza o status (e opcionalmente as notas) de um registro existente. Não há criação por este caminho: número inexistente é 404.
// @Tags stock-numbers
// @Accept json
// @Produce json
// @Param stockNumber path string true "Número de estoque (e.g., CLRAN00001)"
// @Param status body domain.StatusUpdateRequest true "Novo status e notas opcionais"
// @Success 200 {object} domain.StockNumber "Registro atualizado"
// @Failure 400 {object} domain.ErrorResponse "Status fora do conjunto fechado"
// @Failure 404 {object} domain.ErrorResponse "Número de estoque não encontrado"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /stock-numbers/{stockNumber}/status [patch]
func (h *Handler) transitionStatus(w http.ResponseWriter, r *http.Request, stockNumber string) {
	var req domain.StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusBadRequest)
		return
	}

	record, err := h.Service.TransitionStatus(r.Context(), stockNumber, req)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, record, nil, http.StatusOK)
}
