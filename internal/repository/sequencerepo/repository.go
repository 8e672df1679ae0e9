package sequencerepo

import (
	"context"
	"database/sql"
	"time"

	"dealerstock/internal/domain"
	"dealerstock/internal/errors"
	"dealerstock/internal/pkg/logger"
)

// SequenceRepository é o Sequence Store: um contador durável por chave de
// negócio (loja, departamento, ano, condição). O incremento é indivisível
// em relação a chamadas concorrentes da mesma chave; chaves diferentes
// seguem em paralelo porque o lock é de linha, não de tabela.
type SequenceRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewSequenceRepository cria e retorna uma nova instância do Sequence Store.
func NewSequenceRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *SequenceRepository {
	return &SequenceRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// maxInsertRaces limita as repetições do laço de criação preguiçosa.
// A corrida de INSERT só pode ser perdida enquanto a linha não existe,
// ou seja, no máximo uma vez por chave na prática.
const maxInsertRaces = 3

// NextValue incrementa atomicamente o contador da chave e retorna o novo
// valor. A linha é criada com valor 1 na primeira alocação de uma chave
// inédita. A sequência ler-incrementar-gravar acontece inteira dentro de
// uma transação com lock de linha (SELECT ... FOR UPDATE): ou o novo valor
// é commitado, ou nada é. Uma tentativa falha não incrementa o contador.
func (r *SequenceRepository) NextValue(ctx context.Context, key domain.BusinessKey) (int, error) {
	r.logger.Debug("Iniciando NextValue no Sequence Store.", map[string]interface{}{"key": key.String()})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		r.logger.Error("Falha ao iniciar transação do contador.", err)
		return 0, errors.NewUnavailableError("não foi possível iniciar a transação do contador", err)
	}
	defer tx.Rollback() // Rollback em caso de erro; no-op após Commit

	const querySelect = `
        SELECT current_value
        FROM stock_counters
        WHERE location_code = $1 AND department = $2 AND year_code = $3 AND condition = $4
        FOR UPDATE`

	const queryUpdate = `
        UPDATE stock_counters
        SET current_value = current_value + 1, updated_at = $5
        WHERE location_code = $1 AND department = $2 AND year_code = $3 AND condition = $4
          AND current_value = $6
        RETURNING current_value`

	const queryInsert = `
        INSERT INTO stock_counters (location_code, department, year_code, condition, current_value, created_at, updated_at)
        VALUES ($1, $2, $3, $4, 1, $5, $5)
        ON CONFLICT (location_code, department, year_code, condition) DO NOTHING
        RETURNING current_value`

	var next int
	for attempt := 0; ; attempt++ {
		if attempt >= maxInsertRaces {
			return 0, errors.NewInternalError("laço de criação do contador excedeu o número de tentativas", nil)
		}

		var prev int
		err = tx.QueryRowContext(ctxTimeout, querySelect,
			key.LocationCode, key.Department, key.YearCode, key.Condition,
		).Scan(&prev)

		if err == sql.ErrNoRows {
			// Primeira alocação da chave: criação preguiçosa com valor 1.
			// Se outra transação inserir primeiro, o ON CONFLICT não retorna
			// linha e voltamos ao SELECT FOR UPDATE, agora bloqueante.
			err = tx.QueryRowContext(ctxTimeout, queryInsert,
				key.LocationCode, key.Department, key.YearCode, key.Condition, time.Now().UTC(),
			).Scan(&next)
			if err == sql.ErrNoRows {
				continue
			}
			if err != nil {
				r.logger.Error("Falha ao criar linha do contador.", err)
				return 0, errors.NewDBError("Falha ao criar o contador da chave", err)
			}
			break
		}
		if err != nil {
			r.logger.Error("Falha ao selecionar contador para incremento.", err)
			return 0, errors.NewDBError("Falha ao ler o contador da chave", err)
		}

		// A cláusula current_value = prev é redundante sob FOR UPDATE, mas
		// serve de verificação defensiva contra um backing que perdeu escritas.
		err = tx.QueryRowContext(ctxTimeout, queryUpdate,
			key.LocationCode, key.Department, key.YearCode, key.Condition, time.Now().UTC(), prev,
		).Scan(&next)
		if err == sql.ErrNoRows {
			r.logger.Error("Contador mudou sob lock de linha.", nil)
			return 0, errors.NewInvariantViolationError(key.String(), prev+1, prev)
		}
		if err != nil {
			r.logger.Error("Falha ao incrementar contador.", err)
			return 0, errors.NewDBError("Falha ao incrementar o contador da chave", err)
		}

		if next != prev+1 {
			// Nunca corrigir silenciosamente: um valor não monotônico indica
			// backing store corrompido e é fatal para a requisição.
			r.logger.Error("Contador devolveu valor não monotônico.", nil)
			return 0, errors.NewInvariantViolationError(key.String(), prev+1, next)
		}
		break
	}

	if err = tx.Commit(); err != nil {
		r.logger.Error("Falha ao commitar transação do contador.", err)
		return 0, errors.NewUnavailableError("não foi possível commitar o incremento do contador", err)
	}

	r.logger.Info("Sequencial emitido.", map[string]interface{}{"key": key.String(), "sequential": next})
	return next, nil
}

// CurrentValue retorna o último valor commitado do contador da chave, ou 0
// se a chave nunca foi alocada. Contadores nunca são apagados, então o
// histórico permanece inspecionável.
func (r *SequenceRepository) CurrentValue(ctx context.Context, key domain.BusinessKey) (int, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
        SELECT current_value
        FROM stock_counters
        WHERE location_code = $1 AND department = $2 AND year_code = $3 AND condition = $4`

	var value int
	err := r.DB.QueryRowContext(ctxTimeout, query,
		key.LocationCode, key.Department, key.YearCode, key.Condition,
	).Scan(&value)

	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		r.logger.Error("Falha ao consultar contador.", err)
		return 0, errors.NewDBError("Falha ao consultar o contador da chave", err)
	}
	return value, nil
}
