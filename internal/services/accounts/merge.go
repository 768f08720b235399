package accounts

import (
	"github.com/samber/lo"

	"github.com/j-veylop/codex-switcher-tui/internal/models"
)

// joinAccounts builds a fresh working set from an authoritative account list.
// When preserve is set, usage cached for ids present in both lists is kept;
// usage for ids missing from next is discarded.
func joinAccounts(prev []models.AccountWithUsage, next []models.Account, preserve bool) []models.AccountWithUsage {
	var usageByID map[string]*models.UsageSnapshot
	if preserve {
		usageByID = lo.SliceToMap(prev, func(a models.AccountWithUsage) (string, *models.UsageSnapshot) {
			return a.ID, a.Usage
		})
	}

	return lo.Map(next, func(acc models.Account, _ int) models.AccountWithUsage {
		return models.AccountWithUsage{Account: acc, Usage: usageByID[acc.ID]}
	})
}

// applyUsage replaces every account's usage with the matching entry from
// usage. Accounts without an entry end up with no usage.
func applyUsage(prev []models.AccountWithUsage, usage []models.UsageSnapshot) []models.AccountWithUsage {
	byID := make(map[string]*models.UsageSnapshot, len(usage))
	for i := range usage {
		if _, ok := byID[usage[i].AccountID]; ok {
			continue
		}
		u := usage[i]
		byID[u.AccountID] = &u
	}

	return lo.Map(prev, func(a models.AccountWithUsage, _ int) models.AccountWithUsage {
		a.Usage = byID[a.ID]
		a.UsageLoading = false
		return a
	})
}

// updateAccount returns a copy of prev with fn applied to the account with id.
func updateAccount(prev []models.AccountWithUsage, id string, fn func(models.AccountWithUsage) models.AccountWithUsage) []models.AccountWithUsage {
	return lo.Map(prev, func(a models.AccountWithUsage, _ int) models.AccountWithUsage {
		if a.ID == id {
			return fn(a)
		}
		return a
	})
}

// mergeActiveSnapshot puts acc at the front of the list as the active
// account, keeping its previously known usage, and demotes all others.
func mergeActiveSnapshot(prev []models.AccountWithUsage, acc models.Account) []models.AccountWithUsage {
	merged := models.AccountWithUsage{Account: acc}
	merged.IsActive = true
	if existing, ok := lo.Find(prev, func(a models.AccountWithUsage) bool { return a.ID == acc.ID }); ok {
		merged.Usage = existing.Usage
		merged.UsageLoading = existing.UsageLoading
	}

	out := make([]models.AccountWithUsage, 0, len(prev)+1)
	out = append(out, merged)
	for _, a := range prev {
		if a.ID == acc.ID {
			continue
		}
		a.IsActive = false
		out = append(out, a)
	}
	return out
}

// reorder arranges prev to follow ids exactly. Accounts not named in ids
// keep their relative order after the named ones; unknown ids are skipped.
func reorder(prev []models.AccountWithUsage, ids []string) []models.AccountWithUsage {
	byID := lo.KeyBy(prev, func(a models.AccountWithUsage) string { return a.ID })

	out := make([]models.AccountWithUsage, 0, len(prev))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		a, ok := byID[id]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, a)
	}
	for _, a := range prev {
		if _, ok := seen[a.ID]; !ok {
			out = append(out, a)
		}
	}
	return out
}

func findAccount(accounts []models.AccountWithUsage, id string) (models.AccountWithUsage, bool) {
	return lo.Find(accounts, func(a models.AccountWithUsage) bool { return a.ID == id })
}
