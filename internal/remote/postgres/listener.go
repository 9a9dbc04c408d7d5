package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Amrutha-Gopalakrishnan/Stock-Wise/internal/common"
	"github.com/Amrutha-Gopalakrishnan/Stock-Wise/internal/logging"
	"github.com/Amrutha-Gopalakrishnan/Stock-Wise/internal/remote"
)

// DefaultChannelPrefix is prepended to a table name to form its notification
// channel. The backend raises pg_notify on these channels from row triggers.
const DefaultChannelPrefix = "stockwise_changes_"

// Listener implements remote.Notifier over Postgres LISTEN/NOTIFY. Each
// subscription holds its own connection; the expected subscriber count is a
// handful of dashboard tables.
type Listener struct {
	dsn    string
	prefix string
	log    logging.Logger
}

func NewListener(dsn, channelPrefix string, log logging.Logger) *Listener {
	if channelPrefix == "" {
		channelPrefix = DefaultChannelPrefix
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Listener{dsn: dsn, prefix: channelPrefix, log: log}
}

// Subscribe listens on the table's channel and invokes onChange for every
// notification until the subscription is torn down. The callback receives no
// payload; it is a cue to re-read, nothing more.
func (l *Listener) Subscribe(ctx context.Context, table string, onChange func()) (remote.Unsubscribe, error) {
	if !identPattern.MatchString(table) {
		return nil, fmt.Errorf("%q: %w", table, common.ErrBadIdentifier)
	}

	conn, err := pgx.Connect(ctx, l.dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting listener: %w", err)
	}

	channel := l.prefix + table
	if _, err := conn.Exec(ctx, "LISTEN "+channel); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("listening on %s: %w", channel, err)
	}

	waitCtx, cancel := context.WithCancel(context.Background())
	go func() {
		for {
			if _, err := conn.WaitForNotification(waitCtx); err != nil {
				if waitCtx.Err() == nil {
					l.log.Warn(waitCtx, "notification wait failed", "channel", channel, "error", err)
				}
				return
			}
			onChange()
		}
	}()

	return func() {
		cancel()
		_ = conn.Close(context.Background())
	}, nil
}
