package bootstrap

import (
	"context"
	"log"
	"time"

	"swappay-be/internal/config"
	"swappay-be/internal/controller"
	"swappay-be/internal/handler"
	"swappay-be/internal/pkg/keymutex"
	"swappay-be/internal/pkg/logger"
	"swappay-be/internal/pkg/metrics"
	"swappay-be/internal/repository/memory"
	"swappay-be/internal/repository/unitofwork"
	"swappay-be/internal/service"
	"swappay-be/internal/websocket"
	mpEvents "swappay-be/pkg/marketplace/events"
	pktNats "swappay-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const membershipCacheTTL = 5 * time.Minute

type Container struct {
	// Controllers
	TradeController  controller.ITradeController
	ChatController   controller.IChatController
	WalletController controller.IWalletController

	// Background services (started by main.go)
	ConsumerService service.IConsumerService
	JanitorService  service.IJanitorService

	// WebSockets
	ChatSocketHandler *handler.ChatSocketHandler
	WebSocketHub      *websocket.Hub

	Metrics *metrics.Metrics
	Logger  logger.ILogger

	natsPub *pktNats.Publisher
	rdb     *redis.Client
	pubSub  *gochannel.GoChannel
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	wsLogger := logger.NewIsolatedLogger(cfg.App.SocketLogFilePath)
	appMetrics := metrics.New()
	roomLocks := keymutex.New()

	// 2. Event bus feeding the websocket hub
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		watermill.NewStdLogger(false, false),
	)

	// 3. Infrastructure
	// NATS is optional; without it marketplace events are dropped.
	var eventSink mpEvents.Sink
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		eventSink = natsPub
	}
	marketplaceEvents := mpEvents.NewNatsPublisher(eventSink, sysLogger)

	// Redis is optional; without it the hub only serves local clients.
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v (single instance fan-out)", err)
		_ = rdb.Close()
		rdb = nil
	}

	wsHub := websocket.NewHub(rdb, wsLogger)

	publisherService := service.NewPublisherService(cfg.App.RoomEventsTopic, pubSub, sysLogger)
	consumerService := service.NewConsumerService(pubSub, cfg.App.RoomEventsTopic, wsHub, wsLogger)

	// 4. Domain services
	ledgerService := service.NewLedgerService(uowFactory, appMetrics, sysLogger)
	chatRoomService := service.NewChatRoomService(
		uowFactory,
		roomLocks,
		publisherService,
		marketplaceEvents,
		memory.NewRoomMembershipCache(membershipCacheTTL),
		appMetrics,
		sysLogger,
	)
	tradeService := service.NewTradeAgreementService(
		uowFactory,
		ledgerService,
		roomLocks,
		publisherService,
		marketplaceEvents,
		appMetrics,
		sysLogger,
	)
	janitorService := service.NewJanitorService(
		uowFactory,
		cfg.Janitor.Schedule,
		cfg.Janitor.MessageRetention,
		appMetrics,
		sysLogger,
	)

	return &Container{
		TradeController:  controller.NewTradeController(tradeService),
		ChatController:   controller.NewChatController(chatRoomService),
		WalletController: controller.NewWalletController(ledgerService),

		ConsumerService: consumerService,
		JanitorService:  janitorService,

		ChatSocketHandler: handler.NewChatSocketHandler(wsHub, chatRoomService, wsLogger),
		WebSocketHub:      wsHub,

		Metrics: appMetrics,
		Logger:  sysLogger,

		natsPub: natsPub,
		rdb:     rdb,
		pubSub:  pubSub,
	}
}

// Close releases the external connections opened by NewContainer.
func (c *Container) Close() {
	c.JanitorService.Stop()
	if err := c.pubSub.Close(); err != nil {
		log.Printf("[WARN] Failed to close event bus: %v", err)
	}
	if c.natsPub != nil {
		c.natsPub.Close()
	}
	if c.rdb != nil {
		_ = c.rdb.Close()
	}
}
