package outbox

import "github.com/mmcdole/sbx/internal/domain"

// GroupTransactions folds an outbox snapshot into one group per transaction
// id, in order of first appearance. Box name, total count and failure flag
// come from the first entry of each transaction; ImagesLeft counts entries.
func GroupTransactions(entries []domain.OutboxEntry) []domain.TransactionGroup {
	index := make(map[int64]int)
	var groups []domain.TransactionGroup

	for _, e := range entries {
		i, ok := index[e.TransactionID]
		if !ok {
			i = len(groups)
			index[e.TransactionID] = i
			groups = append(groups, domain.TransactionGroup{
				TransactionID:   e.TransactionID,
				RemoteBoxName:   e.RemoteBoxName,
				TotalImageCount: e.TotalImageCount,
				Failed:          e.Failed,
			})
		}
		groups[i].ImagesLeft++
		groups[i].EntryIDs = append(groups[i].EntryIDs, e.ID)
	}
	return groups
}

// EntryIDs returns the outbox entry ids of the given groups, in order
func EntryIDs(groups []domain.TransactionGroup) []int64 {
	var ids []int64
	for _, g := range groups {
		ids = append(ids, g.EntryIDs...)
	}
	return ids
}
