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

	cancelBookingHandler "github.com/m04kA/SMC-SpaceBookingService/internal/api/handlers/cancel_booking"
	checkAvailabilityHandler "github.com/m04kA/SMC-SpaceBookingService/internal/api/handlers/check_availability"
	checkinBookingHandler "github.com/m04kA/SMC-SpaceBookingService/internal/api/handlers/checkin_booking"
	checkoutBookingHandler "github.com/m04kA/SMC-SpaceBookingService/internal/api/handlers/checkout_booking"
	confirmBookingHandler "github.com/m04kA/SMC-SpaceBookingService/internal/api/handlers/confirm_booking"
	createBookingHandler "github.com/m04kA/SMC-SpaceBookingService/internal/api/handlers/create_booking"
	exportCalendarHandler "github.com/m04kA/SMC-SpaceBookingService/internal/api/handlers/export_calendar"
	getBookingHandler "github.com/m04kA/SMC-SpaceBookingService/internal/api/handlers/get_booking"
	getIcalSettingsHandler "github.com/m04kA/SMC-SpaceBookingService/internal/api/handlers/get_ical_settings"
	getSpaceBookingsHandler "github.com/m04kA/SMC-SpaceBookingService/internal/api/handlers/get_space_bookings"
	getUserBookingsHandler "github.com/m04kA/SMC-SpaceBookingService/internal/api/handlers/get_user_bookings"
	syncAllHandler "github.com/m04kA/SMC-SpaceBookingService/internal/api/handlers/sync_all"
	triggerIcalSyncHandler "github.com/m04kA/SMC-SpaceBookingService/internal/api/handlers/trigger_ical_sync"
	updateBookingStatusHandler "github.com/m04kA/SMC-SpaceBookingService/internal/api/handlers/update_booking_status"
	updateIcalSettingsHandler "github.com/m04kA/SMC-SpaceBookingService/internal/api/handlers/update_ical_settings"
	"github.com/m04kA/SMC-SpaceBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SpaceBookingService/internal/config"
	bookingRepo "github.com/m04kA/SMC-SpaceBookingService/internal/infra/storage/booking"
	icalSettingRepo "github.com/m04kA/SMC-SpaceBookingService/internal/infra/storage/icalsetting"
	icalFeedClient "github.com/m04kA/SMC-SpaceBookingService/internal/integrations/icalfeed"
	notifyServiceClient "github.com/m04kA/SMC-SpaceBookingService/internal/integrations/notifyservice"
	spaceServiceClient "github.com/m04kA/SMC-SpaceBookingService/internal/integrations/spaceservice"
	userServiceClient "github.com/m04kA/SMC-SpaceBookingService/internal/integrations/userservice"
	availabilityService "github.com/m04kA/SMC-SpaceBookingService/internal/service/availability"
	bookingsService "github.com/m04kA/SMC-SpaceBookingService/internal/service/bookings"
	"github.com/m04kA/SMC-SpaceBookingService/internal/service/conflicts"
	icalService "github.com/m04kA/SMC-SpaceBookingService/internal/service/ical"
	icalSettingsService "github.com/m04kA/SMC-SpaceBookingService/internal/service/icalsettings"
	overdueService "github.com/m04kA/SMC-SpaceBookingService/internal/service/overdue"
	pricingService "github.com/m04kA/SMC-SpaceBookingService/internal/service/pricing"
	checkAvailabilityUC "github.com/m04kA/SMC-SpaceBookingService/internal/usecase/check_availability"
	confirmBookingUC "github.com/m04kA/SMC-SpaceBookingService/internal/usecase/confirm_booking"
	createBookingUC "github.com/m04kA/SMC-SpaceBookingService/internal/usecase/create_booking"
	"github.com/m04kA/SMC-SpaceBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SpaceBookingService/pkg/logger"
	"github.com/m04kA/SMC-SpaceBookingService/pkg/metrics"
	"github.com/m04kA/SMC-SpaceBookingService/pkg/simpletxmanager"
	"github.com/m04kA/SMC-SpaceBookingService/pkg/txmanager"
)

// nopMetrics заглушка бизнес-метрик при выключенном prometheus
type nopMetrics struct{}

func (nopMetrics) IncBookingsCreated()     {}
func (nopMetrics) IncIcalSyncRun(_ string) {}

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

	log.Info("Starting SMC-SpaceBookingService...")
	log.Info("Configuration loaded from config.toml")

	// Таймзона по умолчанию для пространств без явной настройки
	defaultLocation, err := time.LoadLocation(cfg.Booking.DefaultTimezone)
	if err != nil {
		log.Fatal("Invalid default timezone %q: %v", cfg.Booking.DefaultTimezone, err)
	}

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
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

	// Инициализируем интеграционных клиентов
	spaceClient := spaceServiceClient.NewClient(
		cfg.SpaceService.URL,
		time.Duration(cfg.SpaceService.Timeout)*time.Second,
		log,
	)
	userClient := userServiceClient.NewClient(
		cfg.UserService.URL,
		time.Duration(cfg.UserService.Timeout)*time.Second,
		log,
	)
	notifyClient := notifyServiceClient.NewClient(
		cfg.NotifyService.URL,
		time.Duration(cfg.NotifyService.Timeout)*time.Second,
		log,
	)
	feedClient := icalFeedClient.NewClient(
		time.Duration(cfg.IcalSync.FetchTimeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (SpaceService=%s, UserService=%s, NotifyService=%s)",
		cfg.SpaceService.URL, cfg.UserService.URL, cfg.NotifyService.URL)

	// Инициализируем репозитории и transaction manager (с метриками или без)
	var (
		bookingRepository     *bookingRepo.Repository
		icalSettingRepository *icalSettingRepo.Repository
	)

	type TxManager interface {
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		icalSettingRepository = icalSettingRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		bookingRepository = bookingRepo.NewRepository(db)
		icalSettingRepository = icalSettingRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Бизнес-метрики для use case создания и движка синхронизации
	var bookingMetrics createBookingUC.Metrics = nopMetrics{}
	var syncMetrics icalService.Metrics = nopMetrics{}
	if cfg.Metrics.Enabled {
		bookingMetrics = metricsCollector
		syncMetrics = metricsCollector
	}

	// Инициализируем доменные сервисы
	detector := conflicts.NewDetector()
	availabilityChecker := availabilityService.NewService(
		detector,
		defaultLocation,
		cfg.Booking.PastStartToleranceMinutes,
	)
	priceCalculator := pricingService.NewCalculator(cfg.Booking.DayRateThresholdHours)
	sweeper := overdueService.NewSweeper(
		bookingRepository,
		spaceClient,
		log,
		cfg.Booking.CheckinGraceMinutes,
		cfg.Booking.CheckoutGraceMinutes,
	)
	syncEngine := icalService.NewEngine(
		bookingRepository,
		icalSettingRepository,
		feedClient,
		notifyClient,
		detector,
		log,
		syncMetrics,
		cfg.IcalSync.ExportWindowDays,
	)

	bookingSvc := bookingsService.NewService(
		bookingRepository,
		spaceClient,
		notifyClient,
		sweeper,
		detector,
		log,
		defaultLocation,
	)
	icalSettingsSvc := icalSettingsService.NewService(
		icalSettingRepository,
		spaceClient,
		syncEngine,
		log,
	)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		spaceClient,
		userClient,
		availabilityChecker,
		priceCalculator,
		&createBookingUC.RealTimeProvider{},
		bookingMetrics,
		log,
	)
	confirmBookingUseCase := confirmBookingUC.NewUseCase(
		bookingRepository,
		spaceClient,
		userClient,
		notifyClient,
		detector,
		txMgr,
		&confirmBookingUC.RealTimeProvider{},
		defaultLocation,
		log,
	)
	checkAvailabilityUseCase := checkAvailabilityUC.NewUseCase(
		bookingRepository,
		spaceClient,
		availabilityChecker,
		priceCalculator,
		&checkAvailabilityUC.RealTimeProvider{},
		log,
	)

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	confirmBooking := confirmBookingHandler.NewHandler(confirmBookingUseCase, log)
	checkinBooking := checkinBookingHandler.NewHandler(bookingSvc, log)
	checkoutBooking := checkoutBookingHandler.NewHandler(bookingSvc, log)
	updateBookingStatus := updateBookingStatusHandler.NewHandler(bookingSvc, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingSvc, log)
	getSpaceBookings := getSpaceBookingsHandler.NewHandler(bookingSvc, log)
	checkAvailability := checkAvailabilityHandler.NewHandler(checkAvailabilityUseCase, log)
	exportCalendar := exportCalendarHandler.NewHandler(spaceClient, syncEngine, log)
	getIcalSettings := getIcalSettingsHandler.NewHandler(icalSettingsSvc, log)
	updateIcalSettings := updateIcalSettingsHandler.NewHandler(icalSettingsSvc, log)
	triggerIcalSync := triggerIcalSyncHandler.NewHandler(icalSettingsSvc, log)
	syncAll := syncAllHandler.NewHandler(syncEngine, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Публичный iCal-фид занятости пространства
	r.HandleFunc("/spaces/{spaceId}.ics", exportCalendar.Handle).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	// Проверка доступности интервала
	api.HandleFunc("/spaces/{spaceId}/availability", checkAvailability.Handle).Methods(http.MethodGet)

	// Создание бронирования: X-User-ID опционален, гости передают
	// guestName/guestEmail в теле запроса
	guest := api.PathPrefix("").Subrouter()
	guest.Use(middleware.OptionalAuth)
	guest.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)

	// Внутренний эндпоинт планировщика синхронизации календарей
	api.HandleFunc("/internal/ical-sync", syncAll.Handle).Methods(http.MethodPost)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/confirm", confirmBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}/checkin", checkinBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}/checkout", checkoutBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}/status", updateBookingStatus.Handle).Methods(http.MethodPost)

	// История бронирований пользователя
	protected.HandleFunc("/users/{userId}/bookings", getUserBookings.Handle).Methods(http.MethodGet)

	// --- Управление пространством (для владельцев) ---
	protected.HandleFunc("/spaces/{spaceId}/bookings", getSpaceBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/spaces/{spaceId}/ical-settings", getIcalSettings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/spaces/{spaceId}/ical-settings", updateIcalSettings.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/spaces/{spaceId}/ical-settings/sync", triggerIcalSync.Handle).Methods(http.MethodPost)

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
