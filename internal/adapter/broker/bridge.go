package broker

import (
	"context"
	"crypto/rand"
	"crypto/tls"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/webshop/backend/internal/core/domain"
	"github.com/webshop/backend/internal/core/port"
	"github.com/webshop/backend/pkg/schema"
)

var _ port.OrderSubmitter = (*OrderBridge)(nil)

const sweepInterval = 500 * time.Millisecond

type Config struct {
	SeedBrokers    []string
	RequestTopic   string
	ResponseTopic  string
	ResponseGroup  string
	RequestTimeout time.Duration
	TLS            *tls.Config
}

type producerClient interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

type consumerClient interface {
	PollFetches(context.Context) kgo.Fetches
	CommitUncommittedOffsets(context.Context) error
	Close()
}

// OrderBridge submits purchase orders over the request topic and
// matches each response record back to its caller through the
// correlation id carried in the record key.
type OrderBridge struct {
	cfg      Config
	encoder  Encoder
	decoder  Decoder
	pending  *pendingTable
	producer producerClient
	consumer consumerClient
	opPrefix string
}

func NewOrderBridge(cfg Config, encoder Encoder, decoder Decoder) *OrderBridge {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	return &OrderBridge{
		cfg:      cfg,
		encoder:  encoder,
		decoder:  decoder,
		pending:  newPendingTable(),
		opPrefix: "OrderBridge",
	}
}

// Connect declares both topics and opens the producer and consumer
// clients. It must complete before Submit or Run are used.
func (b *OrderBridge) Connect(ctx context.Context) error {
	const op = "Connect"

	if err := b.declareTopics(ctx); err != nil {
		return opErr(err, b.opPrefix, op)
	}

	producer, err := kgo.NewClient(b.clientOpts(
		kgo.DefaultProduceTopicAlways(),
		kgo.DefaultProduceTopic(b.cfg.RequestTopic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)...)
	if err != nil {
		return opErr(err, b.opPrefix, op)
	}
	if err := producer.Ping(ctx); err != nil {
		producer.Close()
		return opErr(err, b.opPrefix, op)
	}

	consumer, err := kgo.NewClient(b.clientOpts(
		kgo.ConsumeTopics(b.cfg.ResponseTopic),
		kgo.ConsumerGroup(b.cfg.ResponseGroup),
		kgo.DisableAutoCommit(),
	)...)
	if err != nil {
		producer.Close()
		return opErr(err, b.opPrefix, op)
	}

	b.producer = producer
	b.consumer = consumer
	return nil
}

func (b *OrderBridge) clientOpts(opts ...kgo.Opt) []kgo.Opt {
	base := []kgo.Opt{kgo.SeedBrokers(b.cfg.SeedBrokers...)}
	if b.cfg.TLS != nil {
		base = append(base, kgo.DialTLSConfig(b.cfg.TLS))
	}
	return append(base, opts...)
}

func (b *OrderBridge) declareTopics(ctx context.Context) error {
	cl, err := kadm.NewOptClient(b.clientOpts()...)
	if err != nil {
		return err
	}
	defer cl.Close()

	responses, err := cl.CreateTopics(
		ctx, -1, -1, nil,
		b.cfg.RequestTopic, b.cfg.ResponseTopic,
	)
	if err != nil {
		return err
	}

	var errs []error
	for _, res := range responses.Sorted() {
		if res.Err != nil && !errors.Is(res.Err, kerr.TopicAlreadyExists) {
			errs = append(errs, res.Err)
		}
	}
	return errors.Join(errs...)
}

// Run consumes response records and sweeps expired requests until ctx
// is canceled.
func (b *OrderBridge) Run(ctx context.Context) {
	const op = "Run"
	log := slog.With("op", makeOp(b.opPrefix, op))

	log.Info("running")

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if n := b.pending.sweep(now); n != 0 {
					log.Warn("expired unanswered requests", "count", n)
				}
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			if err := b.consume(ctx); err != nil {
				if errors.Is(err, context.Canceled) {
					continue
				}
				log.Error("failed to consume responses", "err", err)
			}
		}
	}
}

func (b *OrderBridge) Close() {
	const op = "Close"
	log := slog.With("op", makeOp(b.opPrefix, op))

	log.Info("closing bridge...")
	if b.producer != nil {
		b.producer.Close()
	}
	if b.consumer != nil {
		b.consumer.Close()
	}
	log.Info("bridge is closed")
}

func (b *OrderBridge) consume(ctx context.Context) error {
	const op = "consume"
	log := slog.With("op", makeOp(b.opPrefix, op))

	fetches := b.consumer.PollFetches(ctx)
	if err := fetches.Err0(); err != nil {
		return opErr(err, b.opPrefix, op)
	}
	if err := handleFetchErrs(fetches.EachError); err != nil {
		return opErr(err, b.opPrefix, op)
	}
	if fetches.Empty() {
		return nil
	}

	fetches.EachRecord(func(r *kgo.Record) {
		corrID := string(r.Key)

		var resp schema.OrderResponseV1
		if err := b.decoder.Decode(r.Value, &resp); err != nil {
			log.Error("failed to decode response", "correlationID", corrID, "err", err)
			return
		}

		if !b.pending.resolve(corrID, outcome{resp: resp}) {
			log.Warn("dropping orphan response", "correlationID", corrID)
		}
	})

	if err := b.consumer.CommitUncommittedOffsets(ctx); err != nil {
		return opErr(err, b.opPrefix, op)
	}
	return nil
}

// Submit publishes the purchase order and blocks until the matching
// response arrives, the request expires, or ctx is canceled.
func (b *OrderBridge) Submit(
	ctx context.Context, po domain.PurchaseOrder,
) (json.RawMessage, error) {
	const op = "Submit"

	if err := ctx.Err(); err != nil {
		return nil, opErr(err, b.opPrefix, op)
	}
	if b.producer == nil {
		return nil, opErr(ErrNotConnected, b.opPrefix, op)
	}

	value, err := b.encoder.Encode(toSchema(po))
	if err != nil {
		return nil, opErr(err, b.opPrefix, op)
	}

	corrID := newCorrelationID()
	ch := b.pending.add(corrID, time.Now().Add(b.cfg.RequestTimeout))

	record := &kgo.Record{Key: []byte(corrID), Value: value}
	if err := b.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		b.pending.remove(corrID)
		return nil, opErr(
			fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err),
			b.opPrefix, op,
		)
	}

	select {
	case <-ctx.Done():
		b.pending.remove(corrID)
		return nil, opErr(ctx.Err(), b.opPrefix, op)
	case o := <-ch:
		return b.confirmation(o, op)
	}
}

func (b *OrderBridge) confirmation(o outcome, op string) (json.RawMessage, error) {
	if o.err != nil {
		return nil, opErr(
			fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, o.err),
			b.opPrefix, op,
		)
	}
	if !o.resp.Success {
		return nil, opErr(
			fmt.Errorf("%w: %s", domain.ErrUpstreamError, o.resp.Error),
			b.opPrefix, op,
		)
	}

	confirmation, err := json.Marshal(struct {
		ID     string `json:"ID"`
		Status string `json:"status"`
	}{ID: o.resp.OrderID, Status: o.resp.Status})
	if err != nil {
		return nil, opErr(err, b.opPrefix, op)
	}
	return confirmation, nil
}

func newCorrelationID() string {
	var buf [4]byte
	_, _ = rand.Read(buf[:])
	return fmt.Sprintf("order-%d-%s", time.Now().UnixMilli(), hex.EncodeToString(buf[:]))
}

func toSchema(po domain.PurchaseOrder) schema.OrderRequestV1 {
	s := schema.OrderRequestV1{
		Customer: schema.OrderCustomerV1{
			Name:    po.Customer.Name,
			Email:   po.Customer.Email,
			Address: po.Customer.Address,
		},
		Total: po.Total,
	}
	s.Items = make([]schema.OrderItemV1, len(po.Items))
	for i, it := range po.Items {
		s.Items[i] = schema.OrderItemV1{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Price:       it.Price,
		}
	}
	return s
}
