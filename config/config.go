package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"dealerstock/internal/domain"
)

// Config armazena todas as configurações do serviço de números de estoque.
// Inclui os conjuntos fechados de códigos (Catálogo): o motor rejeita
// qualquer código fora deles.
type Config struct {
	// Geral
	Port        string
	Environment string
	LogLevel    string

	// Banco de Dados (PostgreSQL)
	DatabaseURL string
	DBTimeout   time.Duration

	// Cache (Redis)
	RedisAddr string

	// Rate Limiting
	RateLimitMaxRequests int
	RateLimitPeriod      time.Duration

	// Alocação
	// BaseYear é o ano-base da codificação de ano: 'A' = BaseYear,
	// +1 letra por ano subsequente, janela de 26 anos.
	BaseYear int

	// Catálogo (conjuntos fechados de códigos)
	Catalog domain.Catalog
}

// LoadConfig carrega as configurações a partir das variáveis de ambiente.
func LoadConfig() *Config {
	defaults := domain.DefaultCatalog()

	cfg := &Config{
		// 1. Geral
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// 2. Banco de Dados (PostgreSQL)
		// mustGetEnv garante que a aplicação não inicie sem credenciais de DB
		DatabaseURL: mustGetEnv("DATABASE_URL"),
		DBTimeout:   getDurationEnv("DB_TIMEOUT_SEC", 5) * time.Second, // 5s padrão

		// 3. Cache (Redis)
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),

		// 4. Rate Limiting
		RateLimitMaxRequests: getIntEnv("RATE_LIMIT_MAX_REQUESTS", 100),
		RateLimitPeriod:      getDurationEnv("RATE_LIMIT_PERIOD_MIN", 1) * time.Minute, // 1 min padrão

		// 5. Alocação
		BaseYear: getIntEnv("BASE_YEAR", 2025),

		// 6. Catálogo: padrão do grupo de referência, substituível por env
		// no formato "CODE:Label,CODE:Label".
		Catalog: domain.Catalog{
			Locations:   getCodeSetEnv("LOCATIONS", defaults.Locations),
			Departments: getCodeSetEnv("DEPARTMENTS", defaults.Departments),
			Conditions:  getCodeSetEnv("CONDITIONS", defaults.Conditions),
		},
	}

	return cfg
}

// Funções Helpers (Auxiliares)

// getEnv lê a variável de ambiente ou retorna um valor padrão.
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// mustGetEnv lê a variável de ambiente, fatal se não estiver presente.
func mustGetEnv(key string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Fatalf("❌ Erro de Configuração: A variável de ambiente %s deve ser definida.", key)
	return ""
}

// getDurationEnv lê uma variável de ambiente numérica e retorna-a como time.Duration.
func getDurationEnv(key string, defaultValue int) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return time.Duration(defaultValue)
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("⚠️ Aviso: Valor de %s ('%s') não é um número inteiro válido. Usando padrão (%d).", key, valueStr, defaultValue)
		return time.Duration(defaultValue)
	}
	return time.Duration(value)
}

// getIntEnv lê uma variável de ambiente numérica e retorna-a como int.
func getIntEnv(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("⚠️ Aviso: Valor de %s ('%s') não é um número inteiro válido. Usando padrão (%d).", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

// getCodeSetEnv lê um conjunto fechado de códigos no formato
// "CODE:Label,CODE:Label". Entradas malformadas invalidam a variável
// inteira e mantêm o conjunto padrão: melhor padrão conhecido do que um
// catálogo meio-parseado.
func getCodeSetEnv(key string, defaultValue map[string]string) map[string]string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	set := make(map[string]string)
	for _, pair := range strings.Split(valueStr, ",") {
		code, label, found := strings.Cut(strings.TrimSpace(pair), ":")
		if !found || code == "" || label == "" {
			log.Printf("⚠️ Aviso: Entrada '%s' de %s não está no formato CODE:Label. Usando conjunto padrão.", pair, key)
			return defaultValue
		}
		set[code] = label
	}
	return set
}
