package domain

import (
	"fmt"
	"time"
)

// StockStatus representa o estado do ciclo de vida de um número de estoque.
type StockStatus string

const (
	StatusAvailable   StockStatus = "available"
	StatusReserved    StockStatus = "reserved"
	StatusCancelled   StockStatus = "cancelled"
	StatusTransferred StockStatus = "transferred"
)

// ValidStatus verifica se o status pertence ao conjunto fechado de estados.
func ValidStatus(s StockStatus) bool {
	switch s {
	case StatusAvailable, StatusReserved, StatusCancelled, StatusTransferred:
		return true
	}
	return false
}

// SequenceWidth é a largura fixa do sufixo sequencial no número de estoque.
// MaxSequential é o maior valor representável nessa largura: ultrapassá-lo
// é uma falha dura (SequenceExhausted), nunca um overflow silencioso.
const (
	SequenceWidth = 5
	MaxSequential = 99999
)

// BusinessKey é a tupla que identifica um contador de sequência.
// Imutável depois de composta para uma requisição de alocação.
type BusinessKey struct {
	LocationCode string `json:"location_code"`
	Department   string `json:"department"`
	YearCode     string `json:"year_code"`
	Condition    string `json:"condition"`
}

// String retorna o prefixo do número de estoque (LL+D+Y+C).
func (k BusinessKey) String() string {
	return k.LocationCode + k.Department + k.YearCode + k.Condition
}

// FormatStockNumber compõe o identificador externo de 10 caracteres:
// 2 letras de loja, 1 de departamento, 1 de ano, 1 de condição e
// 5 dígitos sequenciais com zeros à esquerda.
func FormatStockNumber(key BusinessKey, sequential int) string {
	return fmt.Sprintf("%s%0*d", key.String(), SequenceWidth, sequential)
}

// StockNumber representa um número de estoque emitido e seu ciclo de vida.
// O campo StockNumber é a chave natural; SequentialNumber é armazenado em
// separado para que a invariante de ida-e-volta (campos -> string formatada)
// possa ser verificada sem reparse da string.
type StockNumber struct {
	ID               string      `json:"id"`
	StockNumber      string      `json:"stock_number"`
	LocationCode     string      `json:"location_code"`
	Department       string      `json:"department"`
	YearCode         string      `json:"year_code"`
	Condition        string      `json:"condition"`
	SequentialNumber int         `json:"sequential_number"`
	Status           StockStatus `json:"status"`
	OrderID          *string     `json:"order_id,omitempty"`
	Notes            *string     `json:"notes,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// Key reconstrói a BusinessKey a partir dos campos persistidos.
func (s StockNumber) Key() BusinessKey {
	return BusinessKey{
		LocationCode: s.LocationCode,
		Department:   s.Department,
		YearCode:     s.YearCode,
		Condition:    s.Condition,
	}
}

// AllocationRequest é o payload esperado para a requisição de alocação.
type AllocationRequest struct {
	LocationCode string  `json:"location_code"`
	Department   string  `json:"department"`
	Condition    string  `json:"condition"`
	OrderID      *string `json:"order_id,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}

// StatusUpdateRequest é o payload esperado para a transição de status.
type StatusUpdateRequest struct {
	Status StockStatus `json:"status"`
	Notes  *string     `json:"notes,omitempty"`
}

// Counter é a visão externa de um contador de sequência. Contadores são
// criados preguiçosamente na primeira alocação de uma chave e nunca
// apagados; CurrentValue é 0 para chaves ainda não alocadas.
type Counter struct {
	Key          BusinessKey `json:"key"`
	CurrentValue int         `json:"current_value"`
}

// StockNumberFilter define os parâmetros de busca da listagem.
// Qualquer subconjunto dos campos pode ser informado; a ordenação é
// sempre por created_at decrescente.
type StockNumberFilter struct {
	LocationCode string
	Department   string
	Status       string
}

// Context é uma interface que encapsula o Go context.Context.
// É usado para propagar o timeout e sinais de cancelamento pelas camadas.
// Isso evita a dependência direta do pacote "context".
type Context interface{}
