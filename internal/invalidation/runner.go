package invalidation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/IBM/sarama"

	"github.com/cascadia-hazards/landslide-viewer/internal/core/config"
)

// Purger is the cache surface the runner drives; details.Store satisfies it.
type Purger interface {
	Purge(ctx context.Context) error
}

type Runner struct {
	log    *slog.Logger
	cfg    config.InvalidationCfg
	store  Purger
	ver    *revisionDedupe
	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func New(cfg config.InvalidationCfg, store Purger, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{
		log:   log,
		cfg:   cfg,
		store: store,
		ver:   newRevisionDedupe(1024),
	}
}

func (r *Runner) Start(ctx context.Context) error {
	if !r.cfg.Enabled {
		r.log.Info("invalidation runner disabled")
		return nil
	}
	if r.store == nil {
		return errors.New("invalidation runner: cache dependency is required")
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_5_0_0
	if r.cfg.InitialOldest {
		cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	}
	cfg.Consumer.Return.Errors = true

	brokers := strings.Split(r.cfg.Brokers, ",")
	group, err := sarama.NewConsumerGroup(brokers, r.cfg.GroupID, cfg)
	if err != nil {
		return fmt.Errorf("consumer group: %w", err)
	}

	h := &groupHandler{process: r.HandleMessage}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if err := group.Close(); err != nil {
				r.log.Error("kafka consumer group close", "err", err)
			}
		}()

		for {
			if err := group.Consume(ctx, []string{r.cfg.Topic}, h); err != nil {
				r.log.Error("kafka consume error", "err", err)
				select {
				case <-time.After(2 * time.Second):
				case <-ctx.Done():
					return
				}
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for err := range group.Errors() {
			r.log.Error("kafka group error", "err", err)
		}
	}()

	r.log.Info("invalidation runner started",
		"topic", r.cfg.Topic, "group", r.cfg.GroupID, "brokers", r.cfg.Brokers)
	return nil
}

func (r *Runner) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
	r.log.Info("invalidation runner stopped")
}

// HandleMessage applies one republish event: validate, dedupe by dataset
// revision, purge.
func (r *Runner) HandleMessage(ctx context.Context, value []byte) error {
	var ev Event
	if err := json.Unmarshal(value, &ev); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if err := ev.Validate(); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if !r.ver.shouldApply(ev.Dataset, ev.Revision) {
		r.log.Debug("republish event already applied",
			"dataset", ev.Dataset, "revision", ev.Revision)
		return nil
	}

	if err := r.store.Purge(ctx); err != nil {
		return fmt.Errorf("purge details cache: %w", err)
	}
	r.log.Info("details cache purged",
		"dataset", ev.Dataset, "revision", ev.Revision)
	return nil
}

type messageProcessor func(context.Context, []byte) error

type groupHandler struct {
	process messageProcessor
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *groupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	ctx := sess.Context()
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("claim context done: %w", ctx.Err())
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := h.process(ctx, msg.Value); err != nil {
				return fmt.Errorf("process failed (topic=%s, part=%d, off=%d): %w",
					msg.Topic, msg.Partition, msg.Offset, err)
			}
			sess.MarkMessage(msg, "")
		}
	}
}
