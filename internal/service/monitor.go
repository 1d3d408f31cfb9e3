package service

import (
	"sync"
	"time"
)

// Monitor 监控服务，用于统计错误和性能指标
type Monitor struct {
	mu sync.RWMutex

	// 错误统计
	DBErrors    int64
	MQErrors    int64
	CacheErrors int64

	// 业务统计
	CheckoutRequests int64
	CheckoutSuccess  int64
	CheckoutErrors   int64
	WorkerProcessed  int64
	WorkerFailed     int64

	// 时间统计
	LastCheckoutTime time.Time
	LastWorkerTime   time.Time
	LastMQError      time.Time
	LastCacheError   time.Time
}

var globalMonitor = &Monitor{}

// GetMonitor 获取全局监控实例
func GetMonitor() *Monitor {
	return globalMonitor
}

// RecordCheckoutRequest 记录结算请求
func (m *Monitor) RecordCheckoutRequest() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CheckoutRequests++
	m.LastCheckoutTime = time.Now()
}

// RecordCheckoutSuccess 记录结算成功
func (m *Monitor) RecordCheckoutSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CheckoutSuccess++
}

// RecordCheckoutError 记录结算失败
func (m *Monitor) RecordCheckoutError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CheckoutErrors++
}

// RecordWorkerProcessed 记录 worker 处理成功
func (m *Monitor) RecordWorkerProcessed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WorkerProcessed++
	m.LastWorkerTime = time.Now()
}

// RecordWorkerFailed 记录 worker 处理失败
func (m *Monitor) RecordWorkerFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WorkerFailed++
	m.LastWorkerTime = time.Now()
}

// RecordDBError 记录数据库错误
func (m *Monitor) RecordDBError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DBErrors++
}

// RecordMQError 记录 MQ 错误
func (m *Monitor) RecordMQError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MQErrors++
	m.LastMQError = time.Now()
}

// RecordCacheError 记录缓存错误
func (m *Monitor) RecordCacheError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheErrors++
	m.LastCacheError = time.Now()
}

// MonitorSnapshot 监控快照，后台接口返回
type MonitorSnapshot struct {
	DBErrors         int64     `json:"db_errors"`
	MQErrors         int64     `json:"mq_errors"`
	CacheErrors      int64     `json:"cache_errors"`
	CheckoutRequests int64     `json:"checkout_requests"`
	CheckoutSuccess  int64     `json:"checkout_success"`
	CheckoutErrors   int64     `json:"checkout_errors"`
	WorkerProcessed  int64     `json:"worker_processed"`
	WorkerFailed     int64     `json:"worker_failed"`
	LastCheckoutTime time.Time `json:"last_checkout_time"`
	LastWorkerTime   time.Time `json:"last_worker_time"`
}

// Snapshot 读取当前指标
func (m *Monitor) Snapshot() MonitorSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return MonitorSnapshot{
		DBErrors:         m.DBErrors,
		MQErrors:         m.MQErrors,
		CacheErrors:      m.CacheErrors,
		CheckoutRequests: m.CheckoutRequests,
		CheckoutSuccess:  m.CheckoutSuccess,
		CheckoutErrors:   m.CheckoutErrors,
		WorkerProcessed:  m.WorkerProcessed,
		WorkerFailed:     m.WorkerFailed,
		LastCheckoutTime: m.LastCheckoutTime,
		LastWorkerTime:   m.LastWorkerTime,
	}
}
