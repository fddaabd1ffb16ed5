package main

import (
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"storefront-service/handlers"
	"storefront-service/internal/auth"
	"storefront-service/internal/cart"
	"storefront-service/internal/consul"
	"storefront-service/internal/orders"
	"storefront-service/internal/payments"
	"storefront-service/internal/products"
	"storefront-service/internal/stores/kafka"
	"storefront-service/internal/stores/postgres"
	"storefront-service/internal/users"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, relying on environment")
	}

	if err := startApp(); err != nil {
		log.Fatal(err)
	}
}

func startApp() error {
	slog.Info("migrating database")
	db, err := postgres.OpenDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.RunMigrations(db); err != nil {
		return err
	}

	tokenTTL := 24 * time.Hour
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		tokenTTL = d
	}
	keys, err := auth.NewKeys(os.Getenv("JWT_SECRET"), tokenTTL)
	if err != nil {
		return err
	}
	blacklist := auth.NewBlacklist()

	usersConf, err := users.NewConf(db)
	if err != nil {
		return err
	}
	productsConf, err := products.NewConf(db)
	if err != nil {
		return err
	}
	cartConf, err := cart.NewConf(db)
	if err != nil {
		return err
	}
	ordersConf, err := orders.NewConf(db)
	if err != nil {
		return err
	}
	paymentsConf, err := payments.NewConf(db)
	if err != nil {
		return err
	}

	// Kafka is optional; without brokers the order-paid event is skipped.
	var kafkaConf *kafka.Conf
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		kafkaConf, err = kafka.NewConf(strings.Split(brokers, ","))
		if err != nil {
			return err
		}
		defer kafkaConf.Close()
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	if os.Getenv("CONSUL_REGISTER") == "true" {
		client, err := consul.NewClient()
		if err != nil {
			return err
		}
		portNum, err := strconv.Atoi(port)
		if err != nil {
			return err
		}
		serviceName := os.Getenv("SERVICE_NAME")
		if serviceName == "" {
			serviceName = "storefront-service"
		}
		address := os.Getenv("SERVICE_ADDRESS")
		if address == "" {
			address = "localhost"
		}
		if err := consul.RegisterService(client, serviceName, address, portNum); err != nil {
			return err
		}
		slog.Info("registered with consul", slog.String("service", serviceName))
	}

	r := handlers.API(keys, blacklist, usersConf, productsConf, cartConf, ordersConf, paymentsConf, kafkaConf)

	slog.Info("starting server", slog.String("port", port))
	return r.Run(":" + port)
}
