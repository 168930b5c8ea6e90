package application_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petatwork/service-booking/internal/application"
	"github.com/petatwork/service-booking/internal/pkg/domain"
)

func TestAnimalLifecycle(t *testing.T) {
	s := newTestStack(t)
	ownerID := registerOwner(t, s, "marie@example.com")

	created, err := s.Animals.CreateAnimal(context.Background(), ownerID, application.CreateAnimalRequest{
		Name:       "Luna",
		AnimalType: "dog",
		Breed:      "labrador",
		Age:        "3 years",
	})
	require.NoError(t, err)
	assert.Equal(t, ownerID, created.OwnerID)

	fetched, err := s.Animals.GetAnimal(context.Background(), ownerID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Luna", fetched.Name)

	updated, err := s.Animals.UpdateAnimal(context.Background(), ownerID, created.ID, application.UpdateAnimalRequest{
		Name:       "Luna",
		AnimalType: "dog",
		Breed:      "labrador",
		Age:        "4 years",
		Conditions: "grain allergy",
	})
	require.NoError(t, err)
	assert.Equal(t, "4 years", updated.Age)
	assert.Equal(t, "grain allergy", updated.Conditions)

	list, err := s.Animals.ListAnimals(context.Background(), ownerID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAnimalAccess_OwnerScoped(t *testing.T) {
	s := newTestStack(t)
	ownerID := registerOwner(t, s, "marie@example.com")
	intruderID := registerOwner(t, s, "intrus@example.com")
	animalID := createAnimal(t, s, ownerID, "Luna")

	_, err := s.Animals.GetAnimal(context.Background(), intruderID, animalID)
	require.Error(t, err)
	appErr, ok := domain.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, domain.ErrCodeForbidden, appErr.Code)

	_, err = s.Animals.UpdateAnimal(context.Background(), intruderID, animalID, application.UpdateAnimalRequest{
		Name: "Stolen",
	})
	require.Error(t, err)

	list, err := s.Animals.ListAnimals(context.Background(), intruderID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
