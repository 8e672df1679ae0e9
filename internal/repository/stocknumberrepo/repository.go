package stocknumberrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/lib/pq"

	"dealerstock/internal/domain"
	"dealerstock/internal/errors"
	"dealerstock/internal/pkg/cache"
	"dealerstock/internal/pkg/logger"
)

// uniqueViolation é o código SQLSTATE do PostgreSQL para violação de UNIQUE.
const uniqueViolation = "23505"

// Chave de cache para registros individuais (estratégia Cache-Aside).
const stockNumberCacheKey = "stock-number:%s"

// cacheTTL é a expiração das entradas de cache de registro.
const cacheTTL = 5 * time.Minute

// StockNumberRepository persiste os registros de número de estoque.
// Registros nunca são apagados fisicamente: aposentadoria é transição de
// status, não DELETE.
type StockNumberRepository struct {
	DB        *sql.DB
	Cache     cache.Client
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewStockNumberRepository cria e retorna uma nova instância do Repositório.
// Aqui injetamos as dependências de Infraestrutura (DB e Cache).
func NewStockNumberRepository(db *sql.DB, cacheClient cache.Client, dbTimeout time.Duration, logger logger.Logger) *StockNumberRepository {
	return &StockNumberRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Create insere um novo registro de número de estoque.
// Uma violação de UNIQUE em stock_number vira DuplicateError: com o
// Sequence Store correto isso é inalcançável, então a ocorrência sinaliza
// quebra de invariante do contador e carrega o sequencial consumido.
func (r *StockNumberRepository) Create(ctx context.Context, record domain.StockNumber) (domain.StockNumber, error) {
	r.logger.Debug("Iniciando Create no repositório de números de estoque.", map[string]interface{}{"stock_number": record.StockNumber})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
        INSERT INTO stock_numbers (id, stock_number, location_code, department, year_code, condition,
                                   sequential_number, status, order_id, notes, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING id, stock_number, location_code, department, year_code, condition,
                  sequential_number, status, order_id, notes, created_at, updated_at`

	var created domain.StockNumber
	err := r.DB.QueryRowContext(ctxTimeout, query,
		record.ID, record.StockNumber, record.LocationCode, record.Department, record.YearCode,
		record.Condition, record.SequentialNumber, record.Status, record.OrderID, record.Notes,
		record.CreatedAt, record.UpdatedAt,
	).Scan(
		&created.ID, &created.StockNumber, &created.LocationCode, &created.Department,
		&created.YearCode, &created.Condition, &created.SequentialNumber, &created.Status,
		&created.OrderID, &created.Notes, &created.CreatedAt, &created.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
			r.logger.Error("Colisão de número de estoque na escrita.", err)
			return domain.StockNumber{}, errors.NewDuplicateError(record.StockNumber, record.SequentialNumber)
		}
		r.logger.Error("Falha ao inserir número de estoque no DB.", err)
		return domain.StockNumber{}, errors.NewDBError("Falha ao criar o registro do número de estoque", err)
	}

	r.logger.Info("Número de estoque persistido.", map[string]interface{}{"stock_number": created.StockNumber, "status": created.Status})
	return created, nil
}

// FindByStockNumber busca um registro pela chave natural, utilizando a
// estratégia Cache-Aside: tenta o cache, cai para o DB e repovoa o cache.
func (r *StockNumberRepository) FindByStockNumber(ctx context.Context, stockNumber string) (domain.StockNumber, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	key := fmt.Sprintf(stockNumberCacheKey, stockNumber)
	var record domain.StockNumber

	// 1. Tentar obter do Cache (Redis)
	cachedData, err := r.Cache.Get(ctxTimeout, key)
	if err == nil {
		if json.Unmarshal([]byte(cachedData), &record) == nil {
			return record, nil
		}
		// Desserialização falhou; segue para o DB e o cache será reescrito.
	} else if err != cache.ErrCacheMiss {
		// Erro real de cache (ex: conexão perdida): logar e continuar no DB.
		r.logger.Warn("Falha ao ler do cache; seguindo para o DB.", map[string]interface{}{"error": err.Error()})
	}

	// 2. Busca no Banco de Dados (PostgreSQL)
	const query = `
        SELECT id, stock_number, location_code, department, year_code, condition,
               sequential_number, status, order_id, notes, created_at, updated_at
        FROM stock_numbers
        WHERE stock_number = $1`

	err = r.DB.QueryRowContext(ctxTimeout, query, stockNumber).Scan(
		&record.ID, &record.StockNumber, &record.LocationCode, &record.Department,
		&record.YearCode, &record.Condition, &record.SequentialNumber, &record.Status,
		&record.OrderID, &record.Notes, &record.CreatedAt, &record.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return domain.StockNumber{}, errors.NewNotFoundError(fmt.Sprintf("Número de estoque %s não existe na base de dados.", stockNumber))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar número de estoque no DB.", err)
		return domain.StockNumber{}, errors.NewDBError("Falha ao buscar o registro do número de estoque", err)
	}

	// 3. Repovoar o cache para futuras requisições.
	if recordJSON, marshalErr := json.Marshal(record); marshalErr == nil {
		r.Cache.Set(ctxTimeout, key, recordJSON, cacheTTL)
	}

	return record, nil
}

// FindAll lista os registros filtrados por qualquer subconjunto de
// {loja, departamento, status}, sempre ordenados por created_at decrescente.
func (r *StockNumberRepository) FindAll(ctx context.Context, filter domain.StockNumberFilter) ([]domain.StockNumber, error) {
	r.logger.Debug("Iniciando FindAll no repositório de números de estoque.", map[string]interface{}{
		"location_code": filter.LocationCode,
		"department":    filter.Department,
		"status":        filter.Status,
	})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT id, stock_number, location_code, department, year_code, condition,
               sequential_number, status, order_id, notes, created_at, updated_at
        FROM stock_numbers`

	var conditions []string
	var args []interface{}
	if filter.LocationCode != "" {
		args = append(args, filter.LocationCode)
		conditions = append(conditions, "location_code = $"+strconv.Itoa(len(args)))
	}
	if filter.Department != "" {
		args = append(args, filter.Department)
		conditions = append(conditions, "department = $"+strconv.Itoa(len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, "status = $"+strconv.Itoa(len(args)))
	}
	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		r.logger.Error("Falha ao executar FindAll query.", err)
		return nil, errors.NewDBError("Falha ao listar números de estoque", err)
	}
	defer rows.Close()

	var records []domain.StockNumber
	for rows.Next() {
		var record domain.StockNumber
		err := rows.Scan(
			&record.ID, &record.StockNumber, &record.LocationCode, &record.Department,
			&record.YearCode, &record.Condition, &record.SequentialNumber, &record.Status,
			&record.OrderID, &record.Notes, &record.CreatedAt, &record.UpdatedAt,
		)
		if err != nil {
			r.logger.Error("Falha ao mapear número de estoque na iteração de FindAll.", err)
			return nil, errors.NewDBError("Falha ao mapear números de estoque do DB", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Erro após iteração das linhas de números de estoque.", err)
		return nil, errors.NewDBError("Erro após iteração de números de estoque", err)
	}

	r.logger.Info("FindAll concluído com sucesso.", map[string]interface{}{"total": len(records)})
	return records, nil
}

// UpdateStatus aplica a transição de status sobre um registro existente.
// Não há upsert por este caminho: stock_number inexistente é NotFound.
// Notes, quando informado, substitui o valor anterior.
func (r *StockNumberRepository) UpdateStatus(ctx context.Context, stockNumber string, status domain.StockStatus, notes *string) (domain.StockNumber, error) {
	r.logger.Debug("Iniciando UpdateStatus no repositório.", map[string]interface{}{"stock_number": stockNumber, "status": status})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
        UPDATE stock_numbers
        SET status = $1, notes = COALESCE($2, notes), updated_at = $3
        WHERE stock_number = $4
        RETURNING id, stock_number, location_code, department, year_code, condition,
                  sequential_number, status, order_id, notes, created_at, updated_at`

	var record domain.StockNumber
	err := r.DB.QueryRowContext(ctxTimeout, query, status, notes, time.Now().UTC(), stockNumber).Scan(
		&record.ID, &record.StockNumber, &record.LocationCode, &record.Department,
		&record.YearCode, &record.Condition, &record.SequentialNumber, &record.Status,
		&record.OrderID, &record.Notes, &record.CreatedAt, &record.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		r.logger.Info("Número de estoque não encontrado para transição de status.", map[string]interface{}{"stock_number": stockNumber})
		return domain.StockNumber{}, errors.NewNotFoundError(fmt.Sprintf("Número de estoque %s não encontrado para transição de status.", stockNumber))
	}
	if err != nil {
		r.logger.Error("Falha ao atualizar status no DB.", err)
		return domain.StockNumber{}, errors.NewDBError("Falha ao atualizar o status do número de estoque", err)
	}

	// Invalida a entrada de cache do registro, se houver.
	r.Cache.Delete(ctxTimeout, fmt.Sprintf(stockNumberCacheKey, stockNumber))

	r.logger.Info("Status atualizado com sucesso.", map[string]interface{}{"stock_number": stockNumber, "status": record.Status})
	return record, nil
}
