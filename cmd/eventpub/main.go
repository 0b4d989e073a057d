package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/iwa-store/user-service/config"
	"github.com/iwa-store/user-service/internal/domain/entity"
	"github.com/iwa-store/user-service/internal/interface/events"
	"github.com/iwa-store/user-service/pkg/helpers"
)

// Publishes a sample envelope to the store exchange, the way the shopping
// service would. Useful for exercising the consumer end to end.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	event := flag.String("event", "ADD_TO_CART", "event kind to publish")
	userID := flag.String("user", "", "target user id (required)")
	productID := flag.String("product", "sample-product", "product id")
	qty := flag.Int("qty", 1, "cart quantity")
	flag.Parse()

	if *userID == "" {
		log.Fatal("-user is required")
	}

	env := events.Envelope{
		Event: *event,
		Data: events.Payload{
			UserID: *userID,
			Qty:    *qty,
		},
	}
	switch events.ParseKind(*event) {
	case events.KindCreateOrder:
		env.Data.Order = &entity.Order{
			ID:     "sample-order",
			Amount: 42.50,
			Status: "received",
			Date:   time.Now().UTC(),
		}
	default:
		env.Data.Product = &events.Product{
			ID:        *productID,
			Name:      "Sample Product",
			Price:     9.99,
			Available: true,
		}
	}

	pub, err := helpers.NewRabbitPublisher(cfg.MsgQueueURL, cfg.ExchangeName)
	if err != nil {
		log.Fatalf("amqp dial: %v", err)
	}
	defer pub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pub.PublishJSON(ctx, cfg.BindingKey, env); err != nil {
		log.Fatalf("publish: %v", err)
	}
	log.Printf("published %s for user %s", *event, *userID)
}
