package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/commodity-desk/pricer/internal/metrics"
	"github.com/commodity-desk/pricer/pkg/model"
)

// Publisher wraps a NATS connection for publishing market-data events.
type Publisher struct {
	nc      *nats.Conn
	js      nats.JetStreamContext
	subject string
	service string
	logger  *zap.Logger
}

// New creates a Publisher with JetStream enabled.
func New(logger *zap.Logger, nc *nats.Conn, subject, service string) (*Publisher, error) {
	js, err := nc.JetStream()
	if err != nil {
		return nil, err
	}
	return &Publisher{
		nc:      nc,
		js:      js,
		subject: subject,
		service: service,
		logger:  logger,
	}, nil
}

// PublishMarketDataUploaded emits a marketdata.uploaded event for a freshly
// stored record.
func (p *Publisher) PublishMarketDataUploaded(ctx context.Context, rec model.MarketDataRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		metrics.IncError("publisher", "marshal_failed")
		return err
	}

	env := model.Envelope{
		ID:        uuid.New(),
		EventType: "marketdata.uploaded",
		Version:   "1.0.0",
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
	data, err := json.Marshal(env)
	if err != nil {
		metrics.IncError("publisher", "marshal_failed")
		return err
	}

	msg := &nats.Msg{
		Subject: p.subject,
		Data:    data,
		Header: nats.Header{
			"event_type":   []string{env.EventType},
			"service":      []string{p.service},
			"content_type": []string{"application/json"},
		},
	}

	start := time.Now()
	_, err = p.js.PublishMsg(msg)
	metrics.ObserveDuration(metrics.NATSMessageLatency, start, p.subject)

	if err != nil {
		p.logger.Error("publisher.publish_failed",
			zap.String("subject", p.subject),
			zap.Int64("record_id", rec.ID),
			zap.Error(err))
		metrics.IncNATSMessage(p.subject, "error")
		return err
	}

	p.logger.Info("publisher.publish_success",
		zap.String("subject", p.subject),
		zap.Int64("record_id", rec.ID))
	metrics.IncNATSMessage(p.subject, "ok")
	return nil
}

func (p *Publisher) Close() {
	if p.nc != nil && p.nc.IsConnected() {
		p.nc.Close()
	}
}
