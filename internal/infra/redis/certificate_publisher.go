package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"osint-challenge-service/internal/domain"
)

// DefaultCertificateChannel is where issued certificates are published for renderers.
const DefaultCertificateChannel = "certificates:issued"

// CertificatePublisher hands issued certificates to external renderers over Redis pub/sub.
type CertificatePublisher struct {
	client  *redis.Client
	channel string
}

func NewCertificatePublisher(client *redis.Client, channel string) *CertificatePublisher {
	if channel == "" {
		channel = DefaultCertificateChannel
	}
	return &CertificatePublisher{client: client, channel: channel}
}

func (p *CertificatePublisher) Deliver(ctx context.Context, cert domain.Certificate) error {
	payload, err := json.Marshal(cert)
	if err != nil {
		return fmt.Errorf("encode certificate: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish certificate: %w", err)
	}
	return nil
}
