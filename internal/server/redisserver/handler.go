package redisserver

import (
	"log/slog"
	"time"

	"github.com/yndnr/respkv-go/internal/telemetry/logger"
	"github.com/yndnr/respkv-go/internal/telemetry/metric"
)

// keyPreviewLen bounds how much of a key reaches the log.
const keyPreviewLen = 64

// Store is the keyspace the handler executes against.
type Store interface {
	Set(key, value string)
	SetWithTTL(key, value string, ttl time.Duration)
	Get(key string) (string, bool)
}

// CommandHandler turns decoded requests into replies.
type CommandHandler struct {
	store   Store
	metrics *metric.Registry
	logger  *slog.Logger
}

// NewCommandHandler creates a handler over store.
func NewCommandHandler(store Store, metrics *metric.Registry, logger *slog.Logger) *CommandHandler {
	if metrics == nil {
		metrics = metric.NewRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CommandHandler{
		store:   store,
		metrics: metrics,
		logger:  logger,
	}
}

// Handle executes one request for c and returns the reply to send.
// c may be nil, in which case no rate limit applies.
func (h *CommandHandler) Handle(c *Conn, req Value) Value {
	start := time.Now()
	cmd := ParseCommand(req)
	name := cmd.Name()

	log := h.logger
	if c != nil {
		log = logger.L(c.Context())
		if !c.allow() {
			h.metrics.CommandsTotal.WithLabelValues(name, metric.ResultRateLimited).Inc()
			log.Debug("command rate limited", "command", name)
			return ErrorReply("ERR rate limit exceeded")
		}
	}

	reply := h.execute(cmd, log)

	result := metric.ResultOK
	if reply.Kind == KindError {
		result = metric.ResultError
	}
	h.metrics.CommandsTotal.WithLabelValues(name, result).Inc()
	h.metrics.CommandDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	return reply
}

func (h *CommandHandler) execute(cmd Command, log *slog.Logger) Value {
	switch cmd.Kind {
	case CmdPing:
		return SimpleString("PONG")

	case CmdEcho:
		return cmd.Message

	case CmdSet:
		if cmd.Warning != "" {
			log.Warn("ignoring SET expiry modifier",
				"key", logger.Preview(cmd.Key, keyPreviewLen), "reason", cmd.Warning)
		}
		if cmd.HasTTL {
			h.store.SetWithTTL(cmd.Key, cmd.Value, cmd.TTL)
		} else {
			h.store.Set(cmd.Key, cmd.Value)
		}
		log.Debug("set", "key", logger.Preview(cmd.Key, keyPreviewLen), "value", cmd.Value, "ttl", cmd.TTL)
		return SimpleString("OK")

	case CmdGet:
		value, ok := h.store.Get(cmd.Key)
		if !ok {
			h.metrics.KeyspaceMisses.Inc()
			return NullBulk()
		}
		h.metrics.KeyspaceHits.Inc()
		return BulkString(value)

	default:
		log.Debug("rejected command", "command", cmd.Token, "reason", cmd.Reason)
		return ErrorReply("ERR " + cmd.Reason)
	}
}
