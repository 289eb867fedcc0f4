package app

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sweater-ventures/courier/config"
	"github.com/sweater-ventures/courier/db"
)

type Application struct {
	Config       config.AppConfig
	DB           db.Querier
	DeliveryChan chan db.WebhookDelivery
	EventBus     *EventBus
	TokenCache   *Cache[[16]byte, db.ApiToken]
	dbconn       *pgxpool.Pool
	stopDelivery func()
}

func NewApp(config *config.AppConfig) (*Application, error) {
	conn, err := connectToDB(config)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		return nil, err
	}
	queries := db.New(conn)

	return &Application{
		Config:       *config,
		DB:           queries,
		DeliveryChan: make(chan db.WebhookDelivery, config.DeliveryQueueSize),
		EventBus:     NewEventBus(),
		TokenCache:   NewCache[[16]byte, db.ApiToken](),
		dbconn:       conn,
		stopDelivery: func() {},
	}, nil
}

func (courier *Application) SetStopDelivery(fn func()) {
	courier.stopDelivery = fn
}

// Close stops the delivery pipeline (draining in-flight requests up to the
// configured grace period) and then closes the database pool.
func (courier *Application) Close() {
	courier.stopDelivery()
	if courier.dbconn != nil {
		courier.dbconn.Close()
	}
}
