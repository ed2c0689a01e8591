// Package redissink delivers replication messages as Redis list jobs, one
// list per downstream consumer.
package redissink

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"

	"github.com/profaxno/admin-management/internal"
	"github.com/profaxno/admin-management/internal/replication"
)

type Sink struct {
	client *redis.Client
	queues queues
}

type queues struct {
	products  string
	purchases string
	sales     string
}

func New(ctx context.Context, cfg internal.RedisReplicationConfig) (*Sink, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Sink{
		client: client,
		queues: queues{
			products:  cfg.QueueProducts,
			purchases: cfg.QueuePurchases,
			sales:     cfg.QueueSales,
		},
	}, nil
}

// Send pushes the message onto every queue its process routes to. Product
// units only concern the products consumer and document types the
// purchases/sales consumers; everything else, companies and users included,
// fans out to all queues.
func (s *Sink) Send(ctx context.Context, msg replication.Message) (string, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("encode message: %w", err)
	}

	var targets []string
	switch msg.Process {
	case replication.ProcessProductUnitUpdate, replication.ProcessProductUnitDelete:
		targets = []string{s.queues.products}
	case replication.ProcessDocumentTypeUpdate, replication.ProcessDocumentTypeDelete:
		targets = []string{s.queues.purchases, s.queues.sales}
	default:
		targets = []string{s.queues.products, s.queues.purchases, s.queues.sales}
	}

	acks := make([]string, 0, len(targets))
	for _, queue := range targets {
		n, err := s.client.RPush(ctx, queue, body).Result()
		if err != nil {
			return "", fmt.Errorf("rpush %s: %w", queue, err)
		}
		acks = append(acks, fmt.Sprintf("%s(len=%d)", queue, n))
	}

	return "job queued, queues=" + strings.Join(acks, ","), nil
}

func (s *Sink) Close() error {
	return s.client.Close()
}
