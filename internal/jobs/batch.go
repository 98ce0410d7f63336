package jobs

import (
	"context"

	"github.com/sirupsen/logrus"
)

// BatchSize is the number of participants embedded per batch.
const BatchSize = 10

// BatchResult summarizes a synchronous embedding run.
type BatchResult struct {
	Total     int
	Succeeded int
	Failed    map[int64]error
}

// EmbedParticipants generates embeddings for ids in batches of BatchSize,
// concurrently within a batch. Duplicate ids are embedded once. Failures are
// collected, not returned.
func (w *EmbeddingWorker) EmbedParticipants(ctx context.Context, ids []int64) *BatchResult {
	ids = uniqueIDs(ids)
	result := &BatchResult{Total: len(ids), Failed: map[int64]error{}}

	for start := 0; start < len(ids); start += BatchSize {
		if ctx.Err() != nil {
			for _, id := range ids[start:] {
				result.Failed[id] = ctx.Err()
			}
			break
		}

		batch := ids[start:min(start+BatchSize, len(ids))]
		w.run(len(batch), func(i int) error {
			return w.generator.GenerateEmbedding(ctx, batch[i])
		}, func(i int, err error) {
			result.Failed[batch[i]] = err
			w.logger.WithError(err).WithField("participant_id", batch[i]).Warn("embedding generation failed")
		})

		w.logger.WithFields(logrus.Fields{
			"processed": start + len(batch),
			"total":     len(ids),
		}).Info("embedding batch complete")
	}

	result.Succeeded = result.Total - len(result.Failed)
	return result
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
