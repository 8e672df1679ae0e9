package allocationservice

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"dealerstock/internal/domain"
	apperror "dealerstock/internal/errors"
	"dealerstock/internal/pkg/logger"
)

// SequenceStore define o contrato que o motor de alocação espera do
// armazenamento de contadores por chave de negócio.
type SequenceStore interface {
	NextValue(ctx context.Context, key domain.BusinessKey) (int, error)
	CurrentValue(ctx context.Context, key domain.BusinessKey) (int, error)
}

// StockNumberRepository define o contrato que o motor espera da camada de
// Persistência dos registros de número de estoque.
type StockNumberRepository interface {
	Create(ctx context.Context, record domain.StockNumber) (domain.StockNumber, error)
	FindByStockNumber(ctx context.Context, stockNumber string) (domain.StockNumber, error)
	FindAll(ctx context.Context, filter domain.StockNumberFilter) ([]domain.StockNumber, error)
	UpdateStatus(ctx context.Context, stockNumber string, status domain.StockStatus, notes *string) (domain.StockNumber, error)
}

// yearWindow é o tamanho da janela de codificação do ano: uma letra por
// ano a partir do ano-base ('A' = ano-base).
const yearWindow = 26

// Service é o Motor de Alocação: compõe a chave de negócio, pede o próximo
// sequencial ao Sequence Store, formata o número de estoque e persiste o
// registro com status inicial "available".
type Service struct {
	sequences SequenceStore
	records   StockNumberRepository
	catalog   domain.Catalog
	baseYear  int
	now       func() time.Time
	logger    logger.Logger
}

// NewService cria e retorna uma nova instância do Motor de Alocação.
// O relógio é injetado (e não lido direto de time.Now dentro da lógica)
// para que a derivação do código de ano seja determinística em teste.
func NewService(sequences SequenceStore, records StockNumberRepository, catalog domain.Catalog, baseYear int, now func() time.Time, logger logger.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		sequences: sequences,
		records:   records,
		catalog:   catalog,
		baseYear:  baseYear,
		now:       now,
		logger:    logger,
	}
}

// yearCode deriva a letra do ano corrente: 'A' = ano-base, +1 por ano.
func (s *Service) yearCode(year int) (string, error) {
	offset := year - s.baseYear
	if offset < 0 || offset >= yearWindow {
		return "", apperror.NewUnsupportedYearError(year, s.baseYear)
	}
	return string(rune('A' + offset)), nil
}

// Allocate atende "alocar próximo número para a chave": valida os códigos,
// deriva o ano, consome um sequencial e persiste o registro resultante.
//
// A chamada NÃO é idempotente: repetir o mesmo payload consome um novo
// sequencial e produz um novo número de estoque. Se a persistência falhar
// depois do incremento, o sequencial fica permanentemente consumido
// (lacuna tolerada, duplicata nunca) e é reportado para reconciliação.
func (s *Service) Allocate(ctx domain.Context, req domain.AllocationRequest) (domain.StockNumber, error) {
	s.logger.Debug("Iniciando alocação no serviço.", map[string]interface{}{
		"location_code": req.LocationCode,
		"department":    req.Department,
		"condition":     req.Condition,
	})

	// Validação dos conjuntos fechados: nada fora da configuração passa.
	if !s.catalog.ValidLocation(req.LocationCode) {
		return domain.StockNumber{}, apperror.NewValidationError(fmt.Sprintf("O código de loja '%s' não pertence ao conjunto configurado.", req.LocationCode))
	}
	if !s.catalog.ValidDepartment(req.Department) {
		return domain.StockNumber{}, apperror.NewValidationError(fmt.Sprintf("O código de departamento '%s' não pertence ao conjunto configurado.", req.Department))
	}
	if !s.catalog.ValidCondition(req.Condition) {
		return domain.StockNumber{}, apperror.NewValidationError(fmt.Sprintf("O código de condição '%s' não pertence ao conjunto configurado.", req.Condition))
	}

	yearCode, err := s.yearCode(s.now().UTC().Year())
	if err != nil {
		s.logger.Warn("Ano corrente fora da janela de codificação.", map[string]interface{}{"base_year": s.baseYear})
		return domain.StockNumber{}, err
	}

	key := domain.BusinessKey{
		LocationCode: req.LocationCode,
		Department:   req.Department,
		YearCode:     yearCode,
		Condition:    req.Condition,
	}

	// Casting e Configuração do Contexto (Converte domain.Context para context.Context)
	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de domínio inválido, usando context.Background() para Allocate", nil)
	}

	// O incremento é a única seção com exclusão mútua entre requisições, e
	// só por chave; nenhum lock atravessa o incremento e a escrita abaixo.
	sequential, err := s.sequences.NextValue(ctxGo, key)
	if err != nil {
		s.logger.Error("Falha ao obter o próximo sequencial.", err)
		return domain.StockNumber{}, err
	}

	if sequential > domain.MaxSequential {
		// Falha dura: o contador já passou da largura de 5 dígitos. O valor
		// consumido segue no erro; nunca envelopar em 6 dígitos ou reiniciar.
		s.logger.Error("Sequência esgotada para a chave.", fmt.Errorf("chave %s atingiu %d", key.String(), sequential))
		return domain.StockNumber{}, apperror.NewSequenceExhaustedError(key.String(), sequential)
	}

	stockNumber := domain.FormatStockNumber(key, sequential)
	nowUTC := s.now().UTC()
	record := domain.StockNumber{
		ID:               uuid.New().String(),
		StockNumber:      stockNumber,
		LocationCode:     key.LocationCode,
		Department:       key.Department,
		YearCode:         key.YearCode,
		Condition:        key.Condition,
		SequentialNumber: sequential,
		Status:           domain.StatusAvailable,
		OrderID:          req.OrderID,
		Notes:            req.Notes,
		CreatedAt:        nowUTC,
		UpdatedAt:        nowUTC,
	}

	// Invariante de ida-e-volta verificada na escrita: os campos armazenados
	// precisam reproduzir exatamente a string formatada. Reparse posterior
	// da string nunca é necessário.
	if derived := domain.FormatStockNumber(record.Key(), record.SequentialNumber); derived != record.StockNumber {
		s.logger.Error("Campos do registro não reproduzem o número formatado.", fmt.Errorf("esperado %s, derivado %s", record.StockNumber, derived))
		return domain.StockNumber{}, apperror.NewInternalError(fmt.Sprintf("Registro inconsistente com o número formatado %s (sequencial %d consumido).", record.StockNumber, sequential), nil)
	}

	created, err := s.records.Create(ctxGo, record)
	if err != nil {
		// O sequencial já foi commitado pelo Sequence Store: fica queimado.
		// Logar com a chave e o valor para reconciliação manual do operador.
		s.logger.Warn("Escrita do registro falhou após incremento; sequencial consumido.", map[string]interface{}{
			"key":        key.String(),
			"sequential": sequential,
		})
		s.logger.Error("Falha ao persistir registro do número de estoque.", err)
		return domain.StockNumber{}, err
	}

	s.logger.Info("Número de estoque alocado.", map[string]interface{}{
		"stock_number": created.StockNumber,
		"sequential":   created.SequentialNumber,
		"status":       created.Status,
	})
	return created, nil
}

// TransitionStatus aplica uma transição de status sobre um registro
// existente. O modelo é permissivo: qualquer status pode ir para qualquer
// outro, desde que pertença ao conjunto fechado. Restringir estados
// terminais (cancelled/transferred) é decisão de produto pendente.
func (s *Service) TransitionStatus(ctx domain.Context, stockNumber string, req domain.StatusUpdateRequest) (domain.StockNumber, error) {
	s.logger.Debug("Iniciando transição de status no serviço.", map[string]interface{}{
		"stock_number": stockNumber,
		"status":       req.Status,
	})

	if !domain.ValidStatus(req.Status) {
		return domain.StockNumber{}, apperror.NewValidationError(fmt.Sprintf("O status '%s' não pertence ao conjunto {available, reserved, cancelled, transferred}.", req.Status))
	}

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de domínio inválido, usando context.Background() para TransitionStatus", nil)
	}

	updated, err := s.records.UpdateStatus(ctxGo, stockNumber, req.Status, req.Notes)
	if err != nil {
		s.logger.Error("Falha na transição de status.", err)
		return domain.StockNumber{}, err
	}

	s.logger.Info("Status transicionado com sucesso.", map[string]interface{}{
		"stock_number": updated.StockNumber,
		"status":       updated.Status,
	})
	return updated, nil
}

// CounterValue retorna o estado do contador da chave informada, para
// inspeção operacional. Chaves nunca alocadas retornam valor 0; contadores
// de anos anteriores permanecem consultáveis porque nunca são apagados.
func (s *Service) CounterValue(ctx domain.Context, key domain.BusinessKey) (domain.Counter, error) {
	if !s.catalog.ValidLocation(key.LocationCode) {
		return domain.Counter{}, apperror.NewValidationError(fmt.Sprintf("O código de loja '%s' não pertence ao conjunto configurado.", key.LocationCode))
	}
	if !s.catalog.ValidDepartment(key.Department) {
		return domain.Counter{}, apperror.NewValidationError(fmt.Sprintf("O código de departamento '%s' não pertence ao conjunto configurado.", key.Department))
	}
	if !s.catalog.ValidCondition(key.Condition) {
		return domain.Counter{}, apperror.NewValidationError(fmt.Sprintf("O código de condição '%s' não pertence ao conjunto configurado.", key.Condition))
	}
	if len(key.YearCode) != 1 || key.YearCode[0] < 'A' || key.YearCode[0] > 'Z' {
		return domain.Counter{}, apperror.NewValidationError(fmt.Sprintf("O código de ano '%s' deve ser uma letra maiúscula.", key.YearCode))
	}

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de domínio inválido, usando context.Background() para CounterValue", nil)
	}

	value, err := s.sequences.CurrentValue(ctxGo, key)
	if err != nil {
		s.logger.Error("Falha ao consultar o contador.", err)
		return domain.Counter{}, err
	}
	return domain.Counter{Key: key, CurrentValue: value}, nil
}

// GetByStockNumber busca um registro pela chave natural.
func (s *Service) GetByStockNumber(ctx domain.Context, stockNumber string) (domain.StockNumber, error) {
	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de domínio inválido, usando context.Background() para GetByStockNumber", nil)
	}

	return s.records.FindByStockNumber(ctxGo, stockNumber)
}

// ListStockNumbers lista os registros filtrados por qualquer subconjunto de
// {loja, departamento, status}, ordenados por created_at decrescente.
func (s *Service) ListStockNumbers(ctx domain.Context, filter domain.StockNumberFilter) ([]domain.StockNumber, error) {
	if filter.Status != "" && !domain.ValidStatus(domain.StockStatus(filter.Status)) {
		return nil, apperror.NewValidationError(fmt.Sprintf("O status de filtro '%s' não pertence ao conjunto {available, reserved, cancelled, transferred}.", filter.Status))
	}

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de domínio inválido, usando context.Background() para ListStockNumbers", nil)
	}

	records, err := s.records.FindAll(ctxGo, filter)
	if err != nil {
		s.logger.Error("Falha ao listar números de estoque.", err)
		return nil, err
	}
	return records, nil
}
