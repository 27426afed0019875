package main

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const subscriptionSweepLease = "madaure:scheduler:subscription-sweep"

// SubscriptionExpirer defines the maintenance operation run by the scheduler
type SubscriptionExpirer interface {
	// ExpireDue expires subscriptions past their end date and notifies their users
	//
	// Returns the number of expired subscriptions.
	ExpireDue(ctx context.Context) (int, error)
}

// Lease is a named lock with an expiry, shared by every scheduler replica
type Lease interface {
	// Acquire takes key for ttl on behalf of owner; false means another owner holds it
	Acquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error)
	// Release frees key when owner still holds it
	Release(ctx context.Context, key, owner string) error
}

// Scheduler runs maintenance jobs on a cron schedule
type Scheduler struct {
	cron          *cron.Cron
	lease         Lease
	subscriptions SubscriptionExpirer
	logger        *zap.Logger
	leaseTTL      time.Duration
	owner         string
}

// NewScheduler creates a scheduler sweeping expired subscriptions on sweepSpec
//
// Returns an error when sweepSpec is not a valid cron expression.
func NewScheduler(lease Lease, subscriptions SubscriptionExpirer, logger *zap.Logger, sweepSpec string, leaseTTL time.Duration) (*Scheduler, error) {
	s := &Scheduler{
		cron:          cron.New(cron.WithLocation(time.UTC)),
		lease:         lease,
		subscriptions: subscriptions,
		logger:        logger,
		leaseTTL:      leaseTTL,
		owner:         uuid.NewString(),
	}

	if _, err := s.cron.AddFunc(sweepSpec, s.sweepSubscriptions); err != nil {
		return nil, fmt.Errorf("invalid subscription sweep schedule %q: %w", sweepSpec, err)
	}
	return s, nil
}

// Start runs a first sweep and starts the cron loop
func (s *Scheduler) Start() {
	s.logger.Info("Scheduler started")
	go s.sweepSubscriptions()
	s.cron.Start()
}

// Stop stops the cron loop and waits for running jobs
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// sweepSubscriptions expires due subscriptions while holding the sweep lease
func (s *Scheduler) sweepSubscriptions() {
	ctx, cancel := context.WithTimeout(context.Background(), s.leaseTTL)
	defer cancel()

	acquired, err := s.lease.Acquire(ctx, subscriptionSweepLease, s.owner, s.leaseTTL)
	if err != nil {
		s.logger.Error("Failed to acquire sweep lease", zap.Error(err))
		return
	}
	if !acquired {
		s.logger.Debug("Subscription sweep already running elsewhere")
		return
	}
	defer func() {
		if err := s.lease.Release(context.Background(), subscriptionSweepLease, s.owner); err != nil {
			s.logger.Error("Failed to release sweep lease", zap.Error(err))
		}
	}()

	expired, err := s.subscriptions.ExpireDue(ctx)
	if err != nil {
		s.logger.Error("Subscription sweep failed", zap.Error(err))
		return
	}
	if expired > 0 {
		s.logger.Info("Expired subscriptions", zap.Int("count", expired))
	}
}

// releaseScript deletes the key only when it still holds the caller's owner token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// redisLease implements Lease with SET NX and a compare-and-delete script
type redisLease struct {
	client *redis.Client
}

// NewRedisLease creates a Lease stored in Redis
func NewRedisLease(client *redis.Client) *redisLease {
	return &redisLease{client: client}
}

// Acquire implements Lease
func (l *redisLease) Acquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, key, owner, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to set lease %s: %w", key, err)
	}
	return ok, nil
}

// Release implements Lease
func (l *redisLease) Release(ctx context.Context, key, owner string) error {
	if err := releaseScript.Run(ctx, l.client, []string{key}, owner).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("failed to release lease %s: %w", key, err)
	}
	return nil
}
