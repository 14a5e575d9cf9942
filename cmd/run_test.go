package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MuhammadaminPy/gifts/config"
	"github.com/MuhammadaminPy/gifts/service"
)

func TestBuildServices(t *testing.T) {
	factory := new(service.MockUnitOfWorkFactory)
	cfg := &config.Config{Environment: "test"}

	services := BuildServices(factory, cfg)

	assert.NotNil(t, services.User)
	assert.NotNil(t, services.Ledger)
	assert.NotNil(t, services.Game)
	assert.NotNil(t, services.Withdrawal)
	assert.NotNil(t, services.Inventory)
	assert.NotNil(t, services.FreeCase)
	assert.NotNil(t, services.Stats)
}
