package services

import (
	"context"
	"testing"

	"saif-gifts/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPOSService_Scan(t *testing.T) {
	carts, _ := newTestCartService()
	svc := NewPOSService(testCatalog(), carts, zap.NewNop())
	ctx := context.Background()

	p, view, err := svc.Scan(ctx, testUser, "SG-B", 0)
	require.NoError(t, err)
	assert.Equal(t, "B", p.ID)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 1, view.Items[0].Quantity)

	_, view, err = svc.Scan(ctx, testUser, "SG-B", 4)
	require.NoError(t, err)
	assert.Equal(t, 5, view.Items[0].Quantity)

	_, _, err = svc.Scan(ctx, testUser, "UNKNOWN", 1)
	assert.True(t, models.IsNotFound(err))
}
