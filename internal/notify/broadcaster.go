package notify

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/domain"
	rediscommon "github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/redis"

	"go.uber.org/zap"
)

// Publisher is the MQTT publish surface (satisfied by *mqtt.Client).
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
}

// Broadcaster pushes created alerts to MQTT and a Redis stream. Either sink may be nil.
type Broadcaster struct {
	mqtt        Publisher
	topicPrefix string
	qos         byte
	redis       *rediscommon.Client
	stream      string
	logger      *zap.Logger
}

func NewBroadcaster(mqtt Publisher, topicPrefix string, qos byte, redis *rediscommon.Client, stream string, logger *zap.Logger) *Broadcaster {
	return &Broadcaster{
		mqtt:        mqtt,
		topicPrefix: strings.TrimSuffix(topicPrefix, "/"),
		qos:         qos,
		redis:       redis,
		stream:      stream,
		logger:      logger,
	}
}

// AlertTopic returns <prefix>/alerts/<barangay> with spaces replaced by '-'.
func (b *Broadcaster) AlertTopic(barangay string) string {
	return b.topicPrefix + "/alerts/" + strings.ReplaceAll(barangay, " ", "-")
}

// Broadcast publishes the alert. Failures are logged, never returned.
func (b *Broadcaster) Broadcast(ctx context.Context, alert *domain.Alert) {
	if b == nil {
		return
	}

	if b.mqtt != nil {
		payload, err := json.Marshal(alert)
		if err == nil {
			err = b.mqtt.Publish(b.AlertTopic(alert.Barangay), b.qos, false, payload)
		}
		if err != nil {
			b.logger.Warn("Failed to publish alert to MQTT",
				zap.String("alert_id", alert.ID),
				zap.Error(err),
			)
		}
	}

	if b.redis != nil && b.stream != "" {
		if _, err := rediscommon.PublishJSONToStream(ctx, b.redis, b.stream, alert); err != nil {
			b.logger.Warn("Failed to publish alert to stream",
				zap.String("alert_id", alert.ID),
				zap.String("stream", b.stream),
				zap.Error(err),
			)
		}
	}
}
