package allocationservice_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"dealerstock/internal/domain"
	apperror "dealerstock/internal/errors"
	"dealerstock/internal/pkg/logger"
	"dealerstock/internal/service/allocationservice"
)

// MockSequenceStore é uma implementação mock da interface SequenceStore
type MockSequenceStore struct {
	mock.Mock
}

func (m *MockSequenceStore) NextValue(ctx context.Context, key domain.BusinessKey) (int, error) {
	args := m.Called(ctx, key)
	return args.Int(0), args.Error(1)
}

func (m *MockSequenceStore) CurrentValue(ctx context.Context, key domain.BusinessKey) (int, error) {
	args := m.Called(ctx, key)
	return args.Int(0), args.Error(1)
}

// MockStockNumberRepository é uma implementação mock da interface StockNumberRepository
type MockStockNumberRepository struct {
	mock.Mock
}

// Create ecoa o registro recebido quando o teste configura Return(nil, nil),
// imitando o RETURNING do repositório real.
func (m *MockStockNumberRepository) Create(ctx context.Context, record domain.StockNumber) (domain.StockNumber, error) {
	args := m.Called(ctx, record)
	if args.Get(0) == nil {
		return record, args.Error(1)
	}
	return args.Get(0).(domain.StockNumber), args.Error(1)
}

func (m *MockStockNumberRepository) FindByStockNumber(ctx context.Context, stockNumber string) (domain.StockNumber, error) {
	args := m.Called(ctx, stockNumber)
	return args.Get(0).(domain.StockNumber), args.Error(1)
}

func (m *MockStockNumberRepository) FindAll(ctx context.Context, filter domain.StockNumberFilter) ([]domain.StockNumber, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StockNumber), args.Error(1)
}

func (m *MockStockNumberRepository) UpdateStatus(ctx context.Context, stockNumber string, status domain.StockStatus, notes *string) (domain.StockNumber, error) {
	args := m.Called(ctx, stockNumber, status, notes)
	return args.Get(0).(domain.StockNumber), args.Error(1)
}

// fixedClock retorna um relógio congelado em 1º de junho do ano informado.
func fixedClock(year int) func() time.Time {
	return func() time.Time {
		return time.Date(year, time.June, 1, 12, 0, 0, 0, time.UTC)
	}
}

func newService(seq *MockSequenceStore, repo *MockStockNumberRepository, year int) *allocationservice.Service {
	return allocationservice.NewService(seq, repo, domain.DefaultCatalog(), 2025, fixedClock(year), logger.NewLogger("error"))
}

// TestAllocate_Success_FirstAllocation testa a primeira alocação de uma chave
// inédita no ano-base: CL + R + A + N + 00001.
func TestAllocate_Success_FirstAllocation(t *testing.T) {
	mockSeq := new(MockSequenceStore)
	mockRepo := new(MockStockNumberRepository)
	svc := newService(mockSeq, mockRepo, 2025)

	expectedKey := domain.BusinessKey{LocationCode: "CL", Department: "R", YearCode: "A", Condition: "N"}
	mockSeq.On("NextValue", mock.Anything, expectedKey).Return(1, nil)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("domain.StockNumber")).Return(nil, nil)

	record, err := svc.Allocate(context.Background(), domain.AllocationRequest{
		LocationCode: "CL",
		Department:   "R",
		Condition:    "N",
	})

	assert.NoError(t, err)
	assert.Equal(t, "CLRAN00001", record.StockNumber)
	assert.Equal(t, domain.StatusAvailable, record.Status)
	assert.Equal(t, 1, record.SequentialNumber)
	assert.Equal(t, "A", record.YearCode)
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, record.CreatedAt, record.UpdatedAt)
	mockSeq.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}

// TestAllocate_Success_RoundTrip testa a invariante de ida-e-volta: os campos
// persistidos reproduzem exatamente o número formatado.
func TestAllocate_Success_RoundTrip(t *testing.T) {
	for _, sequential := range []int{1, 42, 5873, 99999} {
		mockSeq := new(MockSequenceStore)
		mockRepo := new(MockStockNumberRepository)
		svc := newService(mockSeq, mockRepo, 2027)

		mockSeq.On("NextValue", mock.Anything, mock.AnythingOfType("domain.BusinessKey")).Return(sequential, nil)
		mockRepo.On("Create", mock.Anything, mock.AnythingOfType("domain.StockNumber")).Return(nil, nil)

		record, err := svc.Allocate(context.Background(), domain.AllocationRequest{
			LocationCode: "MG",
			Department:   "F",
			Condition:    "C",
		})

		assert.NoError(t, err)
		assert.Len(t, record.StockNumber, 10)
		assert.Equal(t, record.StockNumber, domain.FormatStockNumber(record.Key(), record.SequentialNumber))
	}
}

// TestAllocate_Success_OptionalFields testa a propagação de order_id e notes.
func TestAllocate_Success_OptionalFields(t *testing.T) {
	mockSeq := new(MockSequenceStore)
	mockRepo := new(MockStockNumberRepository)
	svc := newService(mockSeq, mockRepo, 2025)

	orderID := "ORD-7781"
	notes := "Chegada prevista para sexta."
	mockSeq.On("NextValue", mock.Anything, mock.AnythingOfType("domain.BusinessKey")).Return(12, nil)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("domain.StockNumber")).Return(nil, nil)

	record, err := svc.Allocate(context.Background(), domain.AllocationRequest{
		LocationCode: "BR",
		Department:   "A",
		Condition:    "D",
		OrderID:      &orderID,
		Notes:        &notes,
	})

	assert.NoError(t, err)
	assert.Equal(t, "BRAAD00012", record.StockNumber)
	assert.Equal(t, &orderID, record.OrderID)
	assert.Equal(t, &notes, record.Notes)
}

// TestAllocate_Fail_UnknownLocation testa a rejeição de código de loja fora
// do conjunto configurado. O contador não deve ser tocado.
func TestAllocate_Fail_UnknownLocation(t *testing.T) {
	mockSeq := new(MockSequenceStore)
	mockRepo := new(MockStockNumberRepository)
	svc := newService(mockSeq, mockRepo, 2025)

	_, err := svc.Allocate(context.Background(), domain.AllocationRequest{
		LocationCode: "ZZ",
		Department:   "R",
		Condition:    "N",
	})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockSeq.AssertNotCalled(t, "NextValue", mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// TestAllocate_Fail_UnknownDepartment testa a rejeição de departamento inválido.
func TestAllocate_Fail_UnknownDepartment(t *testing.T) {
	mockSeq := new(MockSequenceStore)
	mockRepo := new(MockStockNumberRepository)
	svc := newService(mockSeq, mockRepo, 2025)

	_, err := svc.Allocate(context.Background(), domain.AllocationRequest{
		LocationCode: "CL",
		Department:   "X",
		Condition:    "N",
	})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockSeq.AssertNotCalled(t, "NextValue", mock.Anything, mock.Anything)
}

// TestAllocate_Fail_UnknownCondition testa a rejeição de condição inválida.
func TestAllocate_Fail_UnknownCondition(t *testing.T) {
	mockSeq := new(MockSequenceStore)
	mockRepo := new(MockStockNumberRepository)
	svc := newService(mockSeq, mockRepo, 2025)

	_, err := svc.Allocate(context.Background(), domain.AllocationRequest{
		LocationCode: "CL",
		Department:   "R",
		Condition:    "Z",
	})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockSeq.AssertNotCalled(t, "NextValue", mock.Anything, mock.Anything)
}

// TestAllocate_Fail_YearBeforeBase testa o ano anterior ao ano-base.
func TestAllocate_Fail_YearBeforeBase(t *testing.T) {
	mockSeq := new(MockSequenceStore)
	mockRepo := new(MockStockNumberRepository)
	svc := newService(mockSeq, mockRepo, 2024)

	_, err := svc.Allocate(context.Background(), domain.AllocationRequest{
		LocationCode: "CL",
		Department:   "R",
		Condition:    "N",
	})

	assert.Error(t, err)
	assert.IsType(t, &apperror.UnsupportedYearError{}, err)
	mockSeq.AssertNotCalled(t, "NextValue", mock.Anything, mock.Anything)
}

// TestAllocate_Fail_YearBeyondWindow testa o primeiro ano depois da janela
// de 26 letras (ano-base + 26).
func TestAllocate_Fail_YearBeyondWindow(t *testing.T) {
	mockSeq := new(MockSequenceStore)
	mockRepo := new(MockStockNumberRepository)
	svc := newService(mockSeq, mockRepo, 2051)

	_, err := svc.Allocate(context.Background(), domain.AllocationRequest{
		LocationCode: "CL",
		Department:   "R",
		Condition:    "N",
	})

	assert.Error(t, err)
	assert.IsType(t, &apperror.UnsupportedYearError{}, err)
}

// TestAllocate_Success_LastYearOfWindow testa a última letra da janela ('Z' = 2050).
func TestAllocate_Success_LastYearOfWindow(t *testing.T) {
	mockSeq := new(MockSequenceStore)
	mockRepo := new(MockStockNumberRepository)
	svc := newService(mockSeq, mockRepo, 2050)

	expectedKey := domain.BusinessKey{LocationCode: "CL", Department: "R", YearCode: "Z", Condition: "N"}
	mockSeq.On("NextValue", mock.Anything, expectedKey).Return(3, nil)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("domain.StockNumber")).Return(nil, nil)

	record, err := svc.Allocate(context.Background(), domain.AllocationRequest{
		LocationCode: "CL",
		Department:   "R",
		Condition:    "N",
	})

	assert.NoError(t, err)
	assert.Equal(t, "CLRZN00003", record.StockNumber)
	mockSeq.AssertExpectations(t)
}

// TestAllocate_Fail_SequenceExhausted testa o esgotamento da largura de 5
// dígitos: o valor 100000 nunca vira número de 6 dígitos nem é envelopado.
func TestAllocate_Fail_SequenceExhausted(t *testing.T) {
	mockSeq := new(MockSequenceStore)
	mockRepo := new(MockStockNumberRepository)
	svc := newService(mockSeq, mockRepo, 2025)

	mockSeq.On("NextValue", mock.Anything, mock.AnythingOfType("domain.BusinessKey")).Return(100000, nil)

	_, err := svc.Allocate(context.Background(), domain.AllocationRequest{
		LocationCode: "CL",
		Department:   "R",
		Condition:    "N",
	})

	assert.Error(t, err)
	var exhausted *apperror.SequenceExhaustedError
	assert.ErrorAs(t, err, &exhausted)
	// O valor consumido segue no erro para reconciliação manual.
	assert.Equal(t, 100000, exhausted.Sequential)
	assert.Equal(t, "CLRAN", exhausted.Key)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// TestAllocate_Success_MaxSequential testa a fronteira superior válida (99999).
func TestAllocate_Success_MaxSequential(t *testing.T) {
	mockSeq := new(MockSequenceStore)
	mockRepo := new(MockStockNumberRepository)
	svc := newService(mockSeq, mockRepo, 2025)

	mockSeq.On("NextValue", mock.Anything, mock.AnythingOfType("domain.BusinessKey")).Return(99999, nil)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("domain.StockNumber")).Return(nil, nil)

	record, err := svc.Allocate(context.Background(), domain.AllocationRequest{
		LocationCode: "CL",
		Department:   "R",
		Condition:    "N",
	})

	assert.NoError(t, err)
	assert.Equal(t, "CLRAN99999", record.StockNumber)
	assert.Len(t, record.StockNumber, 10)
}

// TestAllocate_NotIdempotent testa que a alocação NÃO é idempotente: dois
// payloads idênticos consomem dois sequenciais e produzem números distintos
// que diferem em exatamente 1 nos últimos 5 dígitos.
func TestAllocate_NotIdempotent(t *testing.T) {
	mockSeq := new(MockSequenceStore)
	mockRepo := new(MockStockNumberRepository)
	svc := newService(mockSeq, mockRepo, 2025)

	expectedKey := domain.BusinessKey{LocationCode: "MC", Department: "F", YearCode: "A", Condition: "U"}
	mockSeq.On("NextValue", mock.Anything, expectedKey).Return(1, nil).Once()
	mockSeq.On("NextValue", mock.Anything, expectedKey).Return(2, nil).Once()
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("domain.StockNumber")).Return(nil, nil)

	req := domain.AllocationRequest{LocationCode: "MC", Department: "F", Condition: "U"}

	first, err := svc.Allocate(context.Background(), req)
	assert.NoError(t, err)
	second, err := svc.Allocate(context.Background(), req)
	assert.NoError(t, err)

	assert.NotEqual(t, first.StockNumber, second.StockNumber)
	assert.Equal(t, first.StockNumber[:5], second.StockNumber[:5])
	assert.Equal(t, first.SequentialNumber+1, second.SequentialNumber)
	assert.Equal(t, "MCFAU00001", first.StockNumber)
	assert.Equal(t, "MCFAU00002", second.StockNumber)
	mockSeq.AssertExpectations(t)
}

// TestAllocate_Fail_DuplicatePropagates testa a propagação da colisão de
// escrita (quebra de invariante do contador) com o sequencial consumido.
func TestAllocate_Fail_DuplicatePropagates(t *testing.T) {
	mockSeq := new(MockSequenceStore)
	mockRepo := new(MockStockNumberRepository)
	svc := newService(mockSeq, mockRepo, 2025)

	mockSeq.On("NextValue", mock.Anything, mock.AnythingOfType("domain.BusinessKey")).Return(7, nil)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("domain.StockNumber")).
		Return(domain.StockNumber{}, apperror.NewDuplicateError("CLRAN00007", 7))

	_, err := svc.Allocate(context.Background(), domain.AllocationRequest{
		LocationCode: "CL",
		Department:   "R",
		Condition:    "N",
	})

	assert.Error(t, err)
	var dup *apperror.DuplicateError
	assert.ErrorAs(t, err, &dup)
	assert.Equal(t, 7, dup.Sequential)
}

// TestAllocate_Fail_StoreUnavailable testa a propagação intacta da falha
// transitória do armazenamento; nenhuma re-tentativa interna.
func TestAllocate_Fail_StoreUnavailable(t *testing.T) {
	mockSeq := new(MockSequenceStore)
	mockRepo := new(MockStockNumberRepository)
	svc := newService(mockSeq, mockRepo, 2025)

	storeErr := apperror.NewUnavailableError("não foi possível iniciar a transação do contador", nil)
	mockSeq.On("NextValue", mock.Anything, mock.AnythingOfType("domain.BusinessKey")).Return(0, storeErr).Once()

	_, err := svc.Allocate(context.Background(), domain.AllocationRequest{
		LocationCode: "CL",
		Department:   "R",
		Condition:    "N",
	})

	assert.Error(t, err)
	assert.Equal(t, storeErr, err)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mockSeq.AssertExpectations(t)
}

// TestAllocate_Fail_InvariantViolationPropagates testa que a violação de
// invariante do contador é fatal para a requisição, nunca corrigida.
func TestAllocate_Fail_InvariantViolationPropagates(t *testing.T) {
	mockSeq := new(MockSequenceStore)
	mockRepo := new(MockStockNumberRepository)
	svc := newService(mockSeq, mockRepo, 2025)

	mockSeq.On("NextValue", mock.Anything, mock.AnythingOfType("domain.BusinessKey")).
		Return(0, apperror.NewInvariantViolationError("CLRAN", 4, 9))

	_, err := svc.Allocate(context.Background(), domain.AllocationRequest{
		LocationCode: "CL",
		Department:   "R",
		Condition:    "N",
	})

	assert.Error(t, err)
	assert.IsType(t, &apperror.InvariantViolationError{}, err)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// fakeSequenceStore é um Sequence Store em memória com exclusão mútua por
// processo, usado para exercitar o motor sob chamadas concorrentes.
type fakeSequenceStore struct {
	mu       sync.Mutex
	counters map[domain.BusinessKey]int
}

func (f *fakeSequenceStore) NextValue(_ context.Context, key domain.BusinessKey) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.counters == nil {
		f.counters = make(map[domain.BusinessKey]int)
	}
	f.counters[key]++
	return f.counters[key], nil
}

func (f *fakeSequenceStore) CurrentValue(_ context.Context, key domain.BusinessKey) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counters[key], nil
}

// fakeStockNumberRepository ecoa o registro criado, guardando os números
// emitidos para inspeção.
type fakeStockNumberRepository struct {
	mu     sync.Mutex
	issued []string
}

func (f *fakeStockNumberRepository) Create(_ context.Context, record domain.StockNumber) (domain.StockNumber, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.issued = append(f.issued, record.StockNumber)
	return record, nil
}

func (f *fakeStockNumberRepository) FindByStockNumber(_ context.Context, stockNumber string) (domain.StockNumber, error) {
	return domain.StockNumber{}, apperror.NewNotFoundError(stockNumber)
}

func (f *fakeStockNumberRepository) FindAll(_ context.Context, _ domain.StockNumberFilter) ([]domain.StockNumber, error) {
	return nil, nil
}

func (f *fakeStockNumberRepository) UpdateStatus(_ context.Context, stockNumber string, _ domain.StockStatus, _ *string) (domain.StockNumber, error) {
	return domain.StockNumber{}, apperror.NewNotFoundError(stockNumber)
}

// TestAllocate_ConcurrentRequests_DistinctSequentials testa que N chamadas
// concorrentes com o mesmo payload produzem N números distintos formando uma
// sequência contígua a partir de 1, sem duplicatas e sem saltos.
func TestAllocate_ConcurrentRequests_DistinctSequentials(t *testing.T) {
	const callers = 50

	seq := &fakeSequenceStore{}
	repo := &fakeStockNumberRepository{}
	svc := allocationservice.NewService(seq, repo, domain.DefaultCatalog(), 2025, fixedClock(2025), logger.NewLogger("error"))

	var wg sync.WaitGroup
	results := make(chan domain.StockNumber, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			record, err := svc.Allocate(context.Background(), domain.AllocationRequest{
				LocationCode: "MC",
				Department:   "F",
				Condition:    "U",
			})
			assert.NoError(t, err)
			results <- record
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[int]bool)
	numbers := make(map[string]bool)
	for record := range results {
		assert.False(t, seen[record.SequentialNumber], "sequencial repetido: %d", record.SequentialNumber)
		seen[record.SequentialNumber] = true
		numbers[record.StockNumber] = true
	}

	assert.Len(t, numbers, callers)
	for i := 1; i <= callers; i++ {
		assert.True(t, seen[i], "sequencial ausente: %d", i)
	}
}

// TestTransitionStatus_Success testa a transição available -> reserved com
// updated_at estritamente posterior a created_at.
func TestTransitionStatus_Success(t *testing.T) {
	mockSeq := new(MockSequenceStore)
	mockRepo := new(MockStockNumberRepository)
	svc := newService(mockSeq, mockRepo, 2025)

	createdAt := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
	updated := domain.StockNumber{
		ID:               "a2a3f9f0-1111-2222-3333-444455556666",
		StockNumber:      "CLRAN00001",
		LocationCode:     "CL",
		Department:       "R",
		YearCode:         "A",
		Condition:        "N",
		SequentialNumber: 1,
		Status:           domain.StatusReserved,
		CreatedAt:        createdAt,
		UpdatedAt:        createdAt.Add(2 * time.Hour),
	}
	mockRepo.On("UpdateStatus", mock.Anything, "CLRAN00001", domain.StatusReserved, (*string)(nil)).
		Return(updated, nil)

	result, err := svc.TransitionStatus(context.Background(), "CLRAN00001", domain.StatusUpdateRequest{
		Status: domain.StatusReserved,
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.StatusReserved, result.Status)
	assert.True(t, result.UpdatedAt.After(result.CreatedAt))
	mockRepo.AssertExpectations(t)
}

// TestTransitionStatus_Permissive testa o modelo permissivo: cancelled não é
// terminal e pode voltar para available.
func TestTransitionStatus_Permissive(t *testing.T) {
	mockSeq := new(MockSequenceStore)
	mockRepo := new(MockStockNumberRepository)
	svc := newService(mockSeq, mockRepo, 2025)

	mockRepo.On("UpdateStatus", mock.Anything, "MCFAU00002", domain.StatusAvailable, (*string)(nil)).
		Return(domain.StockNumber{StockNumber: "MCFAU00002", Status: domain.StatusAvailable}, nil)

	result, err := svc.TransitionStatus(context.Background(), "MCFAU00002", domain.StatusUpdateRequest{
		Status: domain.StatusAvailable,
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.StatusAvailable, result.Status)
}

// TestTransitionStatus_Fail_InvalidStatus testa a rejeição de status fora do
// conjunto fechado. O repositório não deve ser chamado.
func TestTransitionStatus_Fail_InvalidStatus(t *testing.T) {
	mockSeq := new(MockSequenceStore)
	mockRepo := new(MockStockNumberRepository)
	svc := newService(mockSeq, mockRepo, 2025)

	_, err := svc.TransitionStatus(context.Background(), "CLRAN00001", domain.StatusUpdateRequest{
		Status: "sold",
	})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// TestTransitionStatus_Fail_NotFound testa a transição sobre número
// inexistente: NotFound, sem criação de registro pelo caminho de status.
func TestTransitionStatus_Fail_NotFound(t *testing.T) {
	mockSeq := new(MockSequenceStore)
	mockRepo := new(MockStockNumberRepository)
	svc := newService(mockSeq, mockRepo, 2025)

	mockRepo.On("UpdateStatus", mock.Anything, "ZZZZZ99999", domain.StatusReserved, (*string)(nil)).
		Return(domain.StockNumber{}, apperror.NewNotFoundError("Número de estoque ZZZZZ99999 não encontrado para transição de status."))

	_, err := svc.TransitionStatus(context.Background(), "ZZZZZ99999", domain.StatusUpdateRequest{
		Status: domain.StatusReserved,
	})

	assert.Error(t, err)
	assert.IsType(t, &apperror.NotFoundError{}, err)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

// TestListStockNumbers_PassesFilter testa o repasse fiel dos filtros e da
// ordenação à camada de persistência.
func TestListStockNumbers_PassesFilter(t *testing.T) {
	mockSeq := new(MockSequenceStore)
	mockRepo := new(MockStockNumberRepository)
	svc := newService(mockSeq, mockRepo, 2025)

	filter := domain.StockNumberFilter{LocationCode: "CL", Status: "available"}
	expected := []domain.StockNumber{
		{StockNumber: "CLRAN00002", Status: domain.StatusAvailable},
		{StockNumber: "CLRAN00001", Status: domain.StatusAvailable},
	}
	mockRepo.On("FindAll", mock.Anything, filter).Return(expected, nil)

	records, err := svc.ListStockNumbers(context.Background(), filter)

	assert.NoError(t, err)
	assert.Equal(t, expected, records)
	mockRepo.AssertExpectations(t)
}

// TestListStockNumbers_Fail_InvalidStatusFilter testa a rejeição de status de
// filtro fora do conjunto fechado.
func TestListStockNumbers_Fail_InvalidStatusFilter(t *testing.T) {
	mockSeq := new(MockSequenceStore)
	mockRepo := new(MockStockNumberRepository)
	svc := newService(mockSeq, mockRepo, 2025)

	_, err := svc.ListStockNumbers(context.Background(), domain.StockNumberFilter{Status: "archived"})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything)
}

// TestCounterValue_Success testa a inspeção do contador de uma chave.
func TestCounterValue_Success(t *testing.T) {
	mockSeq := new(MockSequenceStore)
	mockRepo := new(MockStockNumberRepository)
	svc := newService(mockSeq, mockRepo, 2025)

	key := domain.BusinessKey{LocationCode: "CL", Department: "R", YearCode: "A", Condition: "N"}
	mockSeq.On("CurrentValue", mock.Anything, key).Return(41, nil)

	counter, err := svc.CounterValue(context.Background(), key)

	assert.NoError(t, err)
	assert.Equal(t, 41, counter.CurrentValue)
	assert.Equal(t, key, counter.Key)
	mockSeq.AssertExpectations(t)
}

// TestCounterValue_Fail_InvalidYearCode testa a rejeição de código de ano
// que não é uma letra maiúscula.
func TestCounterValue_Fail_InvalidYearCode(t *testing.T) {
	mockSeq := new(MockSequenceStore)
	mockRepo := new(MockStockNumberRepository)
	svc := newService(mockSeq, mockRepo, 2025)

	key := domain.BusinessKey{LocationCode: "CL", Department: "R", YearCode: "a", Condition: "N"}
	_, err := svc.CounterValue(context.Background(), key)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockSeq.AssertNotCalled(t, "CurrentValue", mock.Anything, mock.Anything)
}

// TestGetByStockNumber_Success testa a busca pela chave natural.
func TestGetByStockNumber_Success(t *testing.T) {
	mockSeq := new(MockSequenceStore)
	mockRepo := new(MockStockNumberRepository)
	svc := newService(mockSeq, mockRepo, 2025)

	expected := domain.StockNumber{StockNumber: "CLRAN00001", Status: domain.StatusAvailable}
	mockRepo.On("FindByStockNumber", mock.Anything, "CLRAN00001").Return(expected, nil)

	record, err := svc.GetByStockNumber(context.Background(), "CLRAN00001")

	assert.NoError(t, err)
	assert.Equal(t, expected, record)
	mockRepo.AssertExpectations(t)
}
