// Command keeplast-demo replays conflicting writes from three peers into a
// SQLite database and resolves them with the keep_last aggregate, then runs
// the same reduction as a sliding-window aggregate in process.
package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/c0deZ3R0/go-lww-kit/logging"
	"github.com/c0deZ3R0/go-lww-kit/lww"
	"github.com/c0deZ3R0/go-lww-kit/sqlitefunc"
	"github.com/c0deZ3R0/go-lww-kit/window"
)

func main() {
	logging.Init(logging.GetConfigFromEnv())
	ctx := context.Background()

	if err := run(ctx); err != nil {
		logging.LogError(ctx, err, "demo failed")
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	dir, err := os.MkdirTemp("", "keeplast-demo")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	db, err := sqlitefunc.Open(sqlitefunc.DefaultConfig(filepath.Join(dir, "demo.db")))
	if err != nil {
		return err
	}
	defer db.Close()

	if err := resolveInSQL(ctx, db); err != nil {
		return err
	}
	return resolveInWindow(ctx)
}

// resolveInSQL collapses each document's conflicting writes to one winner
// with the plain keep_last aggregate.
func resolveInSQL(ctx context.Context, db *sql.DB) error {
	logger := logging.WithComponent(logging.Component("sql-demo"))

	_, err := db.ExecContext(ctx, `
        CREATE TABLE writes (
            doc        TEXT NOT NULL,
            body       TEXT,
            patched_at INTEGER NOT NULL,
            peer_id    INTEGER NOT NULL,
            seq        INTEGER NOT NULL
        );
    `)
	if err != nil {
		return err
	}

	// Three peers race on "greeting"; peer 2 writes last. On "notes" a
	// later NULL arrives, which must not delete peer 1's write.
	writes := []struct {
		doc       string
		body      any
		patchedAt int64
		peerID    int64
		seq       int64
	}{
		{"greeting", "hello from peer 1", 100, 1, 1},
		{"greeting", "hello from peer 3", 100, 3, 1},
		{"greeting", "hello from peer 2", 120, 2, 4},
		{"notes", "draft kept by peer 1", 50, 1, 9},
		{"notes", nil, 80, 2, 2},
	}
	for _, w := range writes {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO writes (doc, body, patched_at, peer_id, seq) VALUES (?, ?, ?, ?, ?)`,
			w.doc, w.body, w.patchedAt, w.peerID, w.seq); err != nil {
			return err
		}
	}

	rows, err := db.QueryContext(ctx, `
        SELECT doc, keep_last(body, patched_at, peer_id, seq)
        FROM writes GROUP BY doc ORDER BY doc`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var doc string
		var winner sql.NullString
		if err := rows.Scan(&doc, &winner); err != nil {
			return err
		}
		logger.Info("resolved document",
			slog.String("doc", doc),
			slog.Bool("has_value", winner.Valid),
			slog.String("winner", winner.String),
		)
	}
	return rows.Err()
}

// resolveInWindow reports the winner of the last three writes as each new
// write for a single key arrives.
func resolveInWindow(ctx context.Context) error {
	logger := logging.WithComponent(logging.Component("window-demo"))

	updates := []lww.Update{
		{Value: lww.Text("rev-a"), Key: lww.Key{Timestamp: 10, OriginID: 1, SequenceID: 1}},
		{Value: lww.Text("rev-b"), Key: lww.Key{Timestamp: 40, OriginID: 2, SequenceID: 1}},
		{Value: lww.Text("rev-c"), Key: lww.Key{Timestamp: 20, OriginID: 3, SequenceID: 1}},
		{Value: lww.Text("rev-d"), Key: lww.Key{Timestamp: 30, OriginID: 1, SequenceID: 2}},
		{Value: lww.Text("rev-e"), Key: lww.Key{Timestamp: 25, OriginID: 2, SequenceID: 2}},
	}

	d := window.NewDriver(updates)
	defer d.Close()

	for i, f := range window.SlidingFrames(len(updates), 3) {
		v, ok, err := d.Value(f)
		if err != nil {
			return err
		}
		winner := ""
		if ok {
			winner = string(v.(lww.Text))
		}
		logger.InfoContext(ctx, "frame resolved",
			slog.Int("row", i),
			slog.Int("frame_start", f.Start),
			slog.Int("frame_end", f.End),
			slog.String("winner", winner),
		)
	}
	return nil
}
