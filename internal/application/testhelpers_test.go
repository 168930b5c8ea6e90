package application_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/petatwork/service-booking/internal/application"
	"github.com/petatwork/service-booking/internal/pkg/auth"
	"github.com/petatwork/service-booking/internal/repository"
)

// recordingNotifier captures published notifications for assertions.
type recordingNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	Type    string
	Payload any
}

func (n *recordingNotifier) Notify(ctx context.Context, eventType string, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{Type: eventType, Payload: payload})
}

func (n *recordingNotifier) byType(eventType string) []recordedEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []recordedEvent
	for _, e := range n.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// testStack wires the full service stack against an in-memory database.
type testStack struct {
	DB          *gorm.DB
	Users       *application.UserService
	Animals     *application.AnimalService
	Bookings    *application.BookingService
	Engagements *application.EngagementService
	Payments    *application.PaymentService
	Notifier    *recordingNotifier
	JWT         *auth.JWTManager
}

const testDailyRateCents = 1000

func newTestStack(t *testing.T) *testStack {
	return newTestStackWith(t, false)
}

func newTestStackWith(t *testing.T, allowOwnerAccept bool) *testStack {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open sqlite")

	// A single connection keeps all statements on the same in-memory DB.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&repository.ActorModel{},
		&repository.AnimalModel{},
		&repository.BookingModel{},
		&repository.EngagementModel{},
		&repository.PaymentModel{},
	))

	log := zap.NewNop()
	notifier := &recordingNotifier{}
	jwtManager := auth.NewJWTManager("test-secret", 15*time.Minute, 24*time.Hour)

	txManager := repository.NewTxManager(db)
	actorRepo := repository.NewGormActorRepository(db)
	animalRepo := repository.NewGormAnimalRepository(db)
	bookingRepo := repository.NewGormBookingRepository(db)
	engagementRepo := repository.NewGormEngagementRepository(db)
	paymentRepo := repository.NewGormPaymentRepository(db)

	engagementSvc := application.NewEngagementService(engagementRepo, actorRepo, txManager, notifier, log)

	return &testStack{
		DB:          db,
		Users:       application.NewUserService(actorRepo, bookingRepo, jwtManager, notifier, log),
		Animals:     application.NewAnimalService(animalRepo, log),
		Engagements: engagementSvc,
		Bookings: application.NewBookingService(
			bookingRepo, animalRepo, actorRepo, engagementSvc,
			txManager, notifier, allowOwnerAccept, log,
		),
		Payments: application.NewPaymentService(
			paymentRepo, bookingRepo, animalRepo, actorRepo,
			txManager, notifier, testDailyRateCents, log,
		),
		Notifier: notifier,
		JWT:      jwtManager,
	}
}

func registerOwner(t *testing.T, s *testStack, email string) uuid.UUID {
	t.Helper()
	actor, err := s.Users.Register(context.Background(), application.RegisterRequest{
		Email:    email,
		Name:     "Owner " + email,
		Role:     string(auth.RoleOwner),
		Password: "password123",
		Address:  "12 Rue des Lilas",
	})
	require.NoError(t, err)
	return actor.ID
}

func registerSitter(t *testing.T, s *testStack, email string) uuid.UUID {
	t.Helper()
	actor, err := s.Users.Register(context.Background(), application.RegisterRequest{
		Email:      email,
		Name:       "Sitter " + email,
		Role:       string(auth.RoleSitter),
		Password:   "password123",
		Experience: "5 years with dogs and cats",
	})
	require.NoError(t, err)
	return actor.ID
}

func registerCompany(t *testing.T, s *testStack, email string, capacity int) uuid.UUID {
	t.Helper()
	actor, err := s.Users.Register(context.Background(), application.RegisterRequest{
		Email:    email,
		Name:     "Company " + email,
		Role:     string(auth.RoleCompany),
		Password: "password123",
		Address:  "3 Avenue de la Gare",
		Capacity: capacity,
	})
	require.NoError(t, err)
	return actor.ID
}

func createAnimal(t *testing.T, s *testStack, ownerID uuid.UUID, name string) uuid.UUID {
	t.Helper()
	animal, err := s.Animals.CreateAnimal(context.Background(), ownerID, application.CreateAnimalRequest{
		Name:       name,
		AnimalType: "dog",
		Breed:      "labrador",
	})
	require.NoError(t, err)
	return animal.ID
}

// date builds a UTC midnight timestamp for test ranges.
func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
