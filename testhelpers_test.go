//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/petatwork/service-booking/internal/application"
	"github.com/petatwork/service-booking/internal/events"
	"github.com/petatwork/service-booking/internal/pkg/auth"
	"github.com/petatwork/service-booking/internal/pkg/kafka"
	"github.com/petatwork/service-booking/internal/repository"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// serviceStack holds the fully wired booking service.
type serviceStack struct {
	Users           *application.UserService
	Animals         *application.AnimalService
	Bookings        *application.BookingService
	Payments        *application.PaymentService
	Engagements     *application.EngagementService
	Consumer        *events.NotificationConsumer
	CleanupProducer func()
}

// recordingMailer captures delivered notifications for assertions.
type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

type sentMail struct {
	Recipient string
	Subject   string
	Body      string
}

func (m *recordingMailer) Send(ctx context.Context, recipient, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{Recipient: recipient, Subject: subject, Body: body})
	return nil
}

func (m *recordingMailer) forRecipient(recipient string) []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []sentMail
	for _, s := range m.sent {
		if s.Recipient == recipient {
			out = append(out, s)
		}
	}
	return out
}

// setupContainers starts PostgreSQL and Kafka testcontainers and returns a
// connected GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_booking",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_booking sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, db.AutoMigrate(
		&repository.ActorModel{},
		&repository.AnimalModel{},
		&repository.BookingModel{},
		&repository.EngagementModel{},
		&repository.PaymentModel{},
	))

	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers, events.TopicNotificationEvents)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupServiceStack wires the full service against real infrastructure.
func setupServiceStack(t *testing.T, db *gorm.DB, brokers []string, mailer events.Mailer) *serviceStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	producer := kafka.NewProducer(brokers, logger)
	notifier := events.NewKafkaNotifier(producer, logger)

	txManager := repository.NewTxManager(db)
	actorRepo := repository.NewGormActorRepository(db)
	animalRepo := repository.NewGormAnimalRepository(db)
	bookingRepo := repository.NewGormBookingRepository(db)
	engagementRepo := repository.NewGormEngagementRepository(db)
	paymentRepo := repository.NewGormPaymentRepository(db)

	jwtManager := auth.NewJWTManager("integration-secret", 15*time.Minute, 24*time.Hour)

	engagementSvc := application.NewEngagementService(engagementRepo, actorRepo, txManager, notifier, logger)

	groupID := fmt.Sprintf("test-notify-%s", uuid.New().String()[:8])
	consumer := events.NewNotificationConsumer(brokers, groupID, mailer, logger)

	return &serviceStack{
		Users:       application.NewUserService(actorRepo, bookingRepo, jwtManager, notifier, logger),
		Animals:     application.NewAnimalService(animalRepo, logger),
		Engagements: engagementSvc,
		Bookings: application.NewBookingService(
			bookingRepo, animalRepo, actorRepo, engagementSvc,
			txManager, notifier, false, logger,
		),
		Payments: application.NewPaymentService(
			paymentRepo, bookingRepo, animalRepo, actorRepo,
			txManager, notifier, 1000, logger,
		),
		Consumer:        consumer,
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with
// "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
