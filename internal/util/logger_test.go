package util

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitLoggerLevel(t *testing.T) {
	require.NoError(t, InitLogger("production", "warn"))

	assert.False(t, GetLogger().Core().Enabled(zap.InfoLevel))
	assert.True(t, GetLogger().Core().Enabled(zap.WarnLevel))
}

func TestInitLoggerRejectsUnknownLevel(t *testing.T) {
	assert.Error(t, InitLogger("development", "loud"))
}

func TestGetLoggerConcurrentWithInit(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NotNil(t, GetLogger())
			Named("worker").Debug("tick")
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, InitLogger("production", "error"))
		}()
	}
	wg.Wait()

	assert.False(t, GetLogger().Core().Enabled(zap.WarnLevel))
}
