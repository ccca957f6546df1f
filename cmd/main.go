package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelBookingHandler "github.com/spaflow/booking-engine/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/spaflow/booking-engine/internal/api/handlers/create_booking"
	getAvailabilityHandler "github.com/spaflow/booking-engine/internal/api/handlers/get_availability"
	getBookingHandler "github.com/spaflow/booking-engine/internal/api/handlers/get_booking"
	getCustomerBookingsHandler "github.com/spaflow/booking-engine/internal/api/handlers/get_customer_bookings"
	rescheduleBookingHandler "github.com/spaflow/booking-engine/internal/api/handlers/reschedule_booking"
	updateBookingStatusHandler "github.com/spaflow/booking-engine/internal/api/handlers/update_booking_status"
	"github.com/spaflow/booking-engine/internal/api/middleware"
	"github.com/spaflow/booking-engine/internal/config"
	"github.com/spaflow/booking-engine/internal/engine/availability"
	"github.com/spaflow/booking-engine/internal/infra/cache"
	bookingRepo "github.com/spaflow/booking-engine/internal/infra/storage/booking"
	catalogRepo "github.com/spaflow/booking-engine/internal/infra/storage/catalog"
	scheduleRepo "github.com/spaflow/booking-engine/internal/infra/storage/schedule"
	"github.com/spaflow/booking-engine/internal/integrations/auditservice"
	bookingsService "github.com/spaflow/booking-engine/internal/service/bookings"
	createBookingUC "github.com/spaflow/booking-engine/internal/usecase/create_booking"
	getDateAvailabilityUC "github.com/spaflow/booking-engine/internal/usecase/get_date_availability"
	getTimeSlotsUC "github.com/spaflow/booking-engine/internal/usecase/get_time_slots"
	"github.com/spaflow/booking-engine/pkg/dbmetrics"
	"github.com/spaflow/booking-engine/pkg/logger"
	"github.com/spaflow/booking-engine/pkg/metrics"
	"github.com/spaflow/booking-engine/pkg/simpletxmanager"
	"github.com/spaflow/booking-engine/pkg/txmanager"
	"github.com/spaflow/booking-engine/pkg/types"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting booking-engine...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Подключаемся к Redis (кеш доступности)
	redisClient := cache.NewRedisClient(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PoolSize)

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := cache.Ping(pingCtx, redisClient); err != nil {
		cancelPing()
		log.Fatal("Failed to ping redis: %v", err)
	}
	cancelPing()
	log.Info("Successfully connected to redis (addr=%s, db=%d)", cfg.Redis.Address, cfg.Redis.DB)

	var cacheMetrics cache.MetricsRecorder
	if cfg.Metrics.Enabled {
		cacheMetrics = metricsCollector
	}
	availabilityCache := cache.New(
		redisClient,
		time.Duration(cfg.Engine.DateSummaryCacheTTLSeconds)*time.Second,
		time.Duration(cfg.Engine.SlotCacheTTLSeconds)*time.Second,
		cacheMetrics,
	)
	defer availabilityCache.Close()

	// Инициализируем клиент аудит-сервиса
	var auditNotifier createBookingUC.AuditNotifier
	if cfg.AuditService.Enabled {
		auditNotifier = auditservice.NewClient(
			cfg.AuditService.URL,
			time.Duration(cfg.AuditService.Timeout)*time.Second,
			log,
		)
		log.Info("AuditService client initialized (url=%s, timeout=%ds)",
			cfg.AuditService.URL, cfg.AuditService.Timeout)
	} else {
		auditNotifier = auditservice.NoopNotifier{}
		log.Info("AuditService disabled, status change events will be dropped")
	}

	// Инициализируем репозитории (с метриками или без)
	var (
		bookingRepository  *bookingRepo.Repository
		catalogRepository  *catalogRepo.Repository
		scheduleRepository *scheduleRepo.Repository
	)

	type TxManager interface {
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		catalogRepository = catalogRepo.NewRepository(wrappedDB)
		scheduleRepository = scheduleRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		bookingRepository = bookingRepo.NewRepository(db)
		catalogRepository = catalogRepo.NewRepository(db)
		scheduleRepository = scheduleRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Калькулятор доступности
	calculator := availability.NewCalculator(availability.Config{
		SlotGranularityMinutes: cfg.Engine.SlotGranularityMinutes,
		BusinessHoursStart:     types.TimeString(cfg.Engine.BusinessHoursStart),
		BusinessHoursEnd:       types.TimeString(cfg.Engine.BusinessHoursEnd),
	})

	timeProvider := &createBookingUC.RealTimeProvider{}

	// Инициализируем сервис жизненного цикла бронирований
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		catalogRepository,
		scheduleRepository,
		availabilityCache,
		auditNotifier,
		txMgr,
		bookingsService.Settings{
			BusinessHoursStart:     types.TimeString(cfg.Engine.BusinessHoursStart),
			BusinessHoursEnd:       types.TimeString(cfg.Engine.BusinessHoursEnd),
			MaxAdvanceBookingDays:  cfg.Engine.MaxAdvanceBookingDays,
			MinAdvanceBookingHours: cfg.Engine.MinAdvanceBookingHours,
		},
		timeProvider,
		log,
	)

	// Инициализируем use cases
	var ucMetrics createBookingUC.MetricsRecorder
	if cfg.Metrics.Enabled {
		ucMetrics = metricsCollector
	}

	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		catalogRepository,
		scheduleRepository,
		availabilityCache,
		auditNotifier,
		txMgr,
		ucMetrics,
		createBookingUC.Settings{
			BusinessHoursStart:     types.TimeString(cfg.Engine.BusinessHoursStart),
			BusinessHoursEnd:       types.TimeString(cfg.Engine.BusinessHoursEnd),
			MaxAdvanceBookingDays:  cfg.Engine.MaxAdvanceBookingDays,
			MinAdvanceBookingHours: cfg.Engine.MinAdvanceBookingHours,
		},
		timeProvider,
		log,
	)

	getTimeSlotsUseCase := getTimeSlotsUC.NewUseCase(
		bookingRepository,
		catalogRepository,
		scheduleRepository,
		availabilityCache,
		calculator,
		log,
	)

	getDateAvailabilityUseCase := getDateAvailabilityUC.NewUseCase(
		bookingRepository,
		scheduleRepository,
		availabilityCache,
		calculator,
		timeProvider,
		log,
	)

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getAvailability := getAvailabilityHandler.NewHandler(getTimeSlotsUseCase, getDateAvailabilityUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	updateBookingStatus := updateBookingStatusHandler.NewHandler(bookingSvc, log)
	rescheduleBooking := rescheduleBookingHandler.NewHandler(bookingSvc, log)
	getCustomerBookings := getCustomerBookingsHandler.NewHandler(bookingSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	r.Use(middleware.RequestID)

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")

		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Доступность: сводка по датам или слоты на дату
	api.HandleFunc("/availability", getAvailability.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// Создание бронирования
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)

	// Получение бронирования по ID
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)

	// Отмена бронирования
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)

	// Смена статуса бронирования
	protected.HandleFunc("/bookings/{bookingId}/status", updateBookingStatus.Handle).Methods(http.MethodPatch)

	// Перенос бронирования на новый слот
	protected.HandleFunc("/bookings/{bookingId}/reschedule", rescheduleBooking.Handle).Methods(http.MethodPatch)

	// История бронирований клиента
	protected.HandleFunc("/customers/{customerId}/bookings", getCustomerBookings.Handle).Methods(http.MethodGet)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
