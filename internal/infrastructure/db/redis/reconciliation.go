package redis

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/99minutos/account-service/internal/core/ports"
)

const pendingSetKey = "reconciliation:pending"

// ReconciliationLog keeps remote identities that have no local account.
// Each entry is a hash at reconciliation:<id>; the ids of unresolved entries
// live in the reconciliation:pending set. Entries never expire.
type ReconciliationLog struct {
	client *redis.Client
}

func NewReconciliationLog(client *redis.Client) *ReconciliationLog {
	return &ReconciliationLog{client: client}
}

// Record stores the entry and marks it pending in one MULTI/EXEC.
func (l *ReconciliationLog) Record(ctx context.Context, e ports.ReconciliationEntry) error {
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, l.key(e.ID), map[string]any{
			"subject_id": e.SubjectID,
			"login":      e.Login,
			"email":      e.Email,
			"reason":     e.Reason,
			"created_at": e.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
		pipe.SAdd(ctx, pendingSetKey, e.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("record reconciliation %s: %w", e.ID, err)
	}
	return nil
}

// Pending returns every unresolved entry, oldest first.
func (l *ReconciliationLog) Pending(ctx context.Context) ([]ports.ReconciliationEntry, error) {
	ids, err := l.client.SMembers(ctx, pendingSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list reconciliation: %w", err)
	}

	entries := make([]ports.ReconciliationEntry, 0, len(ids))
	for _, id := range ids {
		fields, err := l.client.HGetAll(ctx, l.key(id)).Result()
		if err != nil {
			return nil, fmt.Errorf("load reconciliation %s: %w", id, err)
		}
		if len(fields) == 0 {
			continue
		}
		entries = append(entries, decodeEntry(id, fields))
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries, nil
}

func (l *ReconciliationLog) key(id string) string {
	return "reconciliation:" + id
}

func decodeEntry(id string, fields map[string]string) ports.ReconciliationEntry {
	subjectID, _ := strconv.ParseInt(fields["subject_id"], 10, 64)
	createdAt, _ := time.Parse(time.RFC3339Nano, fields["created_at"])
	return ports.ReconciliationEntry{
		ID:        id,
		SubjectID: subjectID,
		Login:     fields["login"],
		Email:     fields["email"],
		Reason:    fields["reason"],
		CreatedAt: createdAt,
	}
}
