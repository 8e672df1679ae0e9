package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Nossos pacotes de infraestrutura e utilitários
	"dealerstock/config"
	"dealerstock/internal/pkg/cache"
	"dealerstock/internal/pkg/database"
	"dealerstock/internal/pkg/logger"

	// Camadas do serviço para Injeção de Dependências
	"dealerstock/internal/api/router"
	"dealerstock/internal/api/stocknumber"
	"dealerstock/internal/repository/sequencerepo"
	"dealerstock/internal/repository/stocknumberrepo"
	"dealerstock/internal/service/allocationservice"
)

func main() {
	// 1. Configuração e Inicialização
	log.Println("⚡ Inicializando serviço de números de estoque...")

	// 0. CARREGAR VARIÁVEIS DE AMBIENTE (.env)
	// O godotenv.Load() procura por um arquivo chamado .env na raiz.
	if err := godotenv.Load(); err != nil {
		// Se o arquivo .env não for encontrado, avisamos mas continuamos,
		// pois as variáveis essenciais podem estar no ambiente do sistema (ex: Docker).
		log.Println("⚠️ Aviso: Arquivo .env não encontrado ou erro de leitura. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadConfig() // Carrega as configurações (URLs, Timeouts, Catálogo, etc.)
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("Configurações carregadas.", map[string]interface{}{"base_year": cfg.BaseYear})

	// 2. Conexão com Recursos de Infraestrutura

	// A. Banco de Dados (PostgreSQL)
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close() // Fecha a conexão de DB ao sair
	log.Info("Conexão PostgreSQL estabelecida.", nil)

	// B. Cache (Redis)
	cacheClient := cache.NewRedisClient(cfg.RedisAddr)
	log.Info("Conexão Redis estabelecida.", nil)

	// 3. INJEÇÃO DE DEPENDÊNCIAS (Montagem da Clean Architecture)
	// Ordem: Repository -> Service -> Handler

	// A. Repositórios (Camada de Acesso a Dados)
	sequenceRepo := sequencerepo.NewSequenceRepository(db, cfg.DBTimeout, log)
	log.Debug("Sequence Store inicializado.", nil)

	stockNumberRepo := stocknumberrepo.NewStockNumberRepository(db, cacheClient, cfg.DBTimeout, log)
	log.Debug("Repositório de Números de Estoque inicializado.", nil)

	// B. Serviço (Camada de Lógica de Negócio)
	// O relógio (time.Now) é injetado para manter a derivação do ano testável.
	allocationSvc := allocationservice.NewService(sequenceRepo, stockNumberRepo, cfg.Catalog, cfg.BaseYear, time.Now, log)
	log.Debug("Motor de Alocação inicializado.", nil)

	// C. Handler (Camada de Apresentação)
	stockHandler := stocknumber.NewHandler(allocationSvc, log)
	log.Debug("Handler de Números de Estoque inicializado.", nil)

	// 4. Configuração e Início do Roteador/Servidor

	r := router.NewRouter(stockHandler, cacheClient, cfg.RateLimitMaxRequests, cfg.RateLimitPeriod)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r, // O roteador final
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Execução e Graceful Shutdown
	go func() {
		log.Info("Servidor ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Servidor falhou.", err)
		}
	}()

	// Lógica do Graceful Shutdown (captura de sinal)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	// Timeout para desligamento (usa o contexto)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Desligamento do servidor forçado.", err)
	}

	log.Info("Servidor encerrado com sucesso.", nil)
}
