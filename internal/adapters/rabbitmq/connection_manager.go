package rabbitmq

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ferone/Germany-real-sate/internal/core/port"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ReconnectInterval - как часто проверяется закрытое соединение
const ReconnectInterval = 10 * time.Second

// ConnectionManager держит одно соединение на процесс и переподключается в фоне
type ConnectionManager struct {
	url        string
	connection *amqp.Connection
	mutex      sync.RWMutex
	logger     port.LoggerPort
	cancel     context.CancelFunc
}

func NewConnectionManager(url string, logger port.LoggerPort) (*ConnectionManager, error) {
	if url == "" {
		return nil, fmt.Errorf("RabbitMQ URL is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &ConnectionManager{
		url:    url,
		logger: logger.WithFields(port.Fields{"component": "RabbitMQConnectionManager"}),
		cancel: cancel,
	}

	if _, err := m.getConnection(); err != nil {
		cancel()
		m.logger.Error("Initial connection failed", err, nil)
		return nil, fmt.Errorf("initial connection failed: %w", err)
	}

	go m.handleReconnect(ctx)
	return m, nil
}

// getConnection возвращает живое соединение или устанавливает новое
func (m *ConnectionManager) getConnection() (*amqp.Connection, error) {
	m.mutex.RLock()
	if m.connection != nil && !m.connection.IsClosed() {
		m.mutex.RUnlock()
		return m.connection, nil
	}
	m.mutex.RUnlock()

	m.mutex.Lock()
	defer m.mutex.Unlock()

	// Повторная проверка под write-lock
	if m.connection != nil && !m.connection.IsClosed() {
		return m.connection, nil
	}

	m.logger.Debug("Connecting to RabbitMQ", nil)
	conn, err := amqp.Dial(m.url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial RabbitMQ: %w", err)
	}
	m.connection = conn
	m.logger.Debug("Connected to RabbitMQ", nil)
	return m.connection, nil
}

// GetChannel открывает новый канал на общем соединении
func (m *ConnectionManager) GetChannel() (*amqp.Connection, *amqp.Channel, error) {
	conn, err := m.getConnection()
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		return conn, nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	return conn, ch, nil
}

func (m *ConnectionManager) handleReconnect(ctx context.Context) {
	ticker := time.NewTicker(ReconnectInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		m.mutex.RLock()
		closed := m.connection != nil && m.connection.IsClosed()
		m.mutex.RUnlock()
		if !closed {
			continue
		}

		m.logger.Warn("Detected closed connection, reconnecting", nil)
		if _, err := m.getConnection(); err != nil {
			m.logger.Error("Reconnect failed", err, nil)
		}
	}
}

func (m *ConnectionManager) Close() error {
	m.cancel()

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.connection == nil || m.connection.IsClosed() {
		m.logger.Debug("Connection was already closed or not established", nil)
		return nil
	}
	if err := m.connection.Close(); err != nil {
		m.logger.Error("Failed to close connection properly", err, nil)
		return err
	}
	m.logger.Debug("Connection closed", nil)
	return nil
}
