package service

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"neuranest-explorer/internal/entity"
	"neuranest-explorer/pkg/common"
	"neuranest-explorer/pkg/logger"
	"neuranest-explorer/pkg/telegram"
)

// JobSettledEvent is the payload published when an import job settles.
type JobSettledEvent struct {
	SessionID string           `json:"session_id,omitempty"`
	Job       entity.ImportJob `json:"job"`
}

type redisJobNotifier struct {
	client    *redis.Client
	maxLen    int64
	sessionID string
	logger    *logger.Logger
}

// NewRedisJobNotifier publishes settled jobs to the import.job.settled stream.
func NewRedisJobNotifier(client *redis.Client, maxLen int64, sessionID string, log *logger.Logger) JobSettledNotifier {
	return &redisJobNotifier{client: client, maxLen: maxLen, sessionID: sessionID, logger: log}
}

func (n *redisJobNotifier) NotifyJobSettled(ctx context.Context, job entity.ImportJob) error {
	payload, err := json.Marshal(JobSettledEvent{SessionID: n.sessionID, Job: job})
	if err != nil {
		return err
	}

	if err := n.client.XAdd(ctx, &redis.XAddArgs{
		Stream: common.RedisStreamImportJobSettled,
		Values: map[string]interface{}{"payload": payload},
		MaxLen: n.maxLen,
		Approx: true,
	}).Err(); err != nil {
		return err
	}

	n.logger.Debug("Published job settled event", logger.StringField("job_id", job.ID))
	return nil
}

type telegramJobNotifier struct {
	notifier telegram.Notifier
}

// NewTelegramJobNotifier sends a chat message for every settled job.
func NewTelegramJobNotifier(notifier telegram.Notifier) JobSettledNotifier {
	return &telegramJobNotifier{notifier: notifier}
}

func (n *telegramJobNotifier) NotifyJobSettled(ctx context.Context, job entity.ImportJob) error {
	return n.notifier.SendMessage(telegram.FormatImportJobSettled(job))
}
