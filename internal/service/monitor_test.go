package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMonitorSnapshot(t *testing.T) {
	m := &Monitor{}
	m.RecordCheckoutRequest()
	m.RecordCheckoutSuccess()
	m.RecordCheckoutError()
	m.RecordWorkerProcessed()
	m.RecordMQError()
	m.RecordCacheError()
	m.RecordDBError()

	snap := m.Snapshot()
	assert.Equal(t, int64(1), snap.CheckoutRequests)
	assert.Equal(t, int64(1), snap.CheckoutSuccess)
	assert.Equal(t, int64(1), snap.CheckoutErrors)
	assert.Equal(t, int64(1), snap.WorkerProcessed)
	assert.Equal(t, int64(1), snap.MQErrors)
	assert.Equal(t, int64(1), snap.CacheErrors)
	assert.Equal(t, int64(1), snap.DBErrors)
	assert.False(t, snap.LastCheckoutTime.IsZero())
}

func TestMonitorConcurrentAccess(t *testing.T) {
	m := &Monitor{}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordCheckoutRequest()
			m.Snapshot()
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), m.Snapshot().CheckoutRequests)
}
