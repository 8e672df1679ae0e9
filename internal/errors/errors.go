package errors

import (
	"fmt"
	"net/http"
)

// AppError é a interface central para todos os erros customizados do serviço.
// Ela permite que o código externo (Handler) acesse a Categoria e a Mensagem do erro.
type AppError interface {
	Error() string    // Implementa a interface error padrão do Go
	Category() string // Categoria do erro (e.g., "VALIDATION_ERROR", "NOT_FOUND")
	HTTPStatus() int  // Código HTTP sugerido para o Handler
	Unwrap() error    // Permite encapsular erros subjacentes (original error)
}

// --- Tipos de Erro Específicos (Erros de Domínio) ---

// ValidationError representa falhas de validação de dados de entrada
// (código fora do conjunto configurado, payload malformado, status inválido).
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string    { return fmt.Sprintf("Erro de Validação: %s", e.Msg) }
func (e *ValidationError) Category() string { return "VALIDATION_ERROR" }
func (e *ValidationError) HTTPStatus() int  { return http.StatusBadRequest } // 400
func (e *ValidationError) Unwrap() error    { return nil }

// NewValidationError cria um novo erro de validação.
func NewValidationError(msg string) AppError {
	return &ValidationError{Msg: msg}
}

// NotFoundError representa a ausência de um recurso solicitado.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string    { return fmt.Sprintf("Recurso não encontrado: %s", e.Msg) }
func (e *NotFoundError) Category() string { return "NOT_FOUND" }
func (e *NotFoundError) HTTPStatus() int  { return http.StatusNotFound } // 404
func (e *NotFoundError) Unwrap() error    { return nil }

// NewNotFoundError cria um novo erro de recurso não encontrado.
func NewNotFoundError(msg string) AppError {
	return &NotFoundError{Msg: msg}
}

// UnsupportedYearError indica que o ano corrente não pode ser codificado em
// uma letra dentro da janela suportada (ano-base + 26 anos).
type UnsupportedYearError struct {
	Year     int
	BaseYear int
}

func (e *UnsupportedYearError) Error() string {
	return fmt.Sprintf("Ano não suportado: %d está fora da janela de codificação iniciada em %d.", e.Year, e.BaseYear)
}
func (e *UnsupportedYearError) Category() string { return "UNSUPPORTED_YEAR" }
func (e *UnsupportedYearError) HTTPStatus() int  { return http.StatusUnprocessableEntity } // 422
func (e *UnsupportedYearError) Unwrap() error    { return nil }

// NewUnsupportedYearError cria um erro de ano fora da janela de codificação.
func NewUnsupportedYearError(year, baseYear int) AppError {
	return &UnsupportedYearError{Year: year, BaseYear: baseYear}
}

// SequenceExhaustedError indica que o contador de uma chave de negócio
// ultrapassou a largura de 5 dígitos. O valor consumido é mantido no erro
// para reconciliação manual: lacunas são toleradas, duplicatas não.
type SequenceExhaustedError struct {
	Key        string
	Sequential int
}

func (e *SequenceExhaustedError) Error() string {
	return fmt.Sprintf("Sequência esgotada para a chave %s: valor %d excede a largura de 5 dígitos.", e.Key, e.Sequential)
}
func (e *SequenceExhaustedError) Category() string { return "SEQUENCE_EXHAUSTED" }
func (e *SequenceExhaustedError) HTTPStatus() int  { return http.StatusConflict } // 409
func (e *SequenceExhaustedError) Unwrap() error    { return nil }

// NewSequenceExhaustedError cria um erro de esgotamento de sequência.
func NewSequenceExhaustedError(key string, sequential int) AppError {
	return &SequenceExhaustedError{Key: key, Sequential: sequential}
}

// DuplicateError representa uma colisão na escrita de um número de estoque.
// Deveria ser inalcançável com o Sequence Store correto; quando ocorre,
// sinaliza quebra de invariante no contador e carrega o número consumido.
type DuplicateError struct {
	StockNumber string
	Sequential  int
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("Número de estoque duplicado: %s já existe (sequencial %d consumido).", e.StockNumber, e.Sequential)
}
func (e *DuplicateError) Category() string { return "DUPLICATE_STOCK_NUMBER" }
func (e *DuplicateError) HTTPStatus() int  { return http.StatusConflict } // 409
func (e *DuplicateError) Unwrap() error    { return nil }

// NewDuplicateError cria um erro de número de estoque duplicado.
func NewDuplicateError(stockNumber string, sequential int) AppError {
	return &DuplicateError{StockNumber: stockNumber, Sequential: sequential}
}

// InvariantViolationError indica que o armazenamento devolveu um valor de
// sequência não monotônico ou repetido. É fatal para a requisição e deve
// ser logado em nível de erro, nunca corrigido silenciosamente.
type InvariantViolationError struct {
	Key      string
	Expected int
	Got      int
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("Violação de invariante na chave %s: esperado %d, contador devolveu %d.", e.Key, e.Expected, e.Got)
}
func (e *InvariantViolationError) Category() string { return "INVARIANT_VIOLATION" }
func (e *InvariantViolationError) HTTPStatus() int  { return http.StatusInternalServerError } // 500
func (e *InvariantViolationError) Unwrap() error    { return nil }

// NewInvariantViolationError cria um erro de violação de invariante do contador.
func NewInvariantViolationError(key string, expected, got int) AppError {
	return &InvariantViolationError{Key: key, Expected: expected, Got: got}
}

// --- Tipos de Erro de Infraestrutura (Encapsulamento) ---

// UnavailableError representa falha transitória de acesso ao armazenamento
// durável (conexão, início de transação). O chamador decide se tenta de novo;
// nada é re-tentado internamente.
type UnavailableError struct {
	Msg string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("Armazenamento indisponível: %s", e.Msg)
}
func (e *UnavailableError) Category() string { return "UNAVAILABLE" }
func (e *UnavailableError) HTTPStatus() int  { return http.StatusServiceUnavailable } // 503
func (e *UnavailableError) Unwrap() error    { return e.Err }

// NewUnavailableError cria um erro de armazenamento indisponível.
func NewUnavailableError(msg string, err error) AppError {
	return &UnavailableError{Msg: msg, Err: err}
}

// InternalError representa falhas inesperadas no servidor, serviço ou repositório.
type InternalError struct {
	Msg string
	Err error // Erro original subjacente (e.g., erro do driver SQL)
}

func (e *InternalError) Error() string    { return fmt.Sprintf("Erro Interno: %s", e.Msg) }
func (e *InternalError) Category() string { return "INTERNAL_ERROR" }
func (e *InternalError) HTTPStatus() int  { return http.StatusInternalServerError } // 500
func (e *InternalError) Unwrap() error    { return e.Err }

// NewInternalError cria um erro de servidor (para falhas de lógica ou código não esperado).
func NewInternalError(msg string, err error) AppError {
	return &InternalError{Msg: msg, Err: err}
}

// NewDBError é um atalho para criar um InternalError específico de falhas no DB.
func NewDBError(msg string, err error) AppError {
	return NewInternalError(fmt.Sprintf("%s (DB): %s", msg, err.Error()), err)
}

// --- Helper para o Handler (Tradução Final) ---

// MapToHTTPStatus recebe um erro e o traduz para o código HTTP e corpo de resposta.
func MapToHTTPStatus(err error) (int, string, string) {
	if appErr, ok := err.(AppError); ok {
		// O erro é tipado (ValidationError, NotFoundError, etc.)
		return appErr.HTTPStatus(), appErr.Category(), appErr.Error()
	}

	// Erro não tipado (e.g., erro simples de pacote Go que não implementa AppError)
	// Tratar como erro interno genérico.
	return http.StatusInternalServerError, "UNKNOWN_ERROR", "Ocorreu um erro inesperado."
}
