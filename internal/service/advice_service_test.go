package service_test

import (
	"context"
	"testing"

	"github.com/nsxzhou1114/social-api/internal/dto"
	"github.com/nsxzhou1114/social-api/internal/model"
	"github.com/nsxzhou1114/social-api/internal/service"
	"github.com/nsxzhou1114/social-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdviceCategories(t *testing.T) {
	testutil.SetupConfig(t)
	services := testutil.NewServices(t, testutil.NewDB(t))
	ctx := context.Background()

	alice := testutil.CreateUser(t, services, "alice")

	general, err := services.Advice.Create(ctx, alice.ID, &dto.AdviceCreateRequest{Title: "Drink water", Content: "Every day"})
	require.NoError(t, err)
	assert.Equal(t, model.AdviceCategoryDefault, general.Category)
	assert.Equal(t, "alice", general.AuthorName)

	_, err = services.Advice.Create(ctx, alice.ID, &dto.AdviceCreateRequest{Title: "Sleep", Content: "Eight hours", Category: "saude"})
	require.NoError(t, err)

	_, err = services.Advice.Create(ctx, alice.ID, &dto.AdviceCreateRequest{Title: "x", Content: "y", Category: "unknown"})
	assert.ErrorIs(t, err, service.ErrInvalidCategory)
	_, err = services.Advice.Create(ctx, alice.ID, &dto.AdviceCreateRequest{Title: " ", Content: "y"})
	assert.ErrorIs(t, err, service.ErrEmptyContent)

	all, err := services.Advice.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	all, err = services.Advice.List(ctx, model.AdviceCategoryAll)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	health, err := services.Advice.List(ctx, "saude")
	require.NoError(t, err)
	require.Len(t, health, 1)
	assert.Equal(t, "Sleep", health[0].Title)

	none, err := services.Advice.List(ctx, "estudos")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	categories := services.Advice.Categories()
	assert.Equal(t, model.AdviceCategories, categories)
	categories[0] = "changed"
	assert.Equal(t, "geral", model.AdviceCategories[0])
}
