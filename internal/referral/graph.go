package referral

import "context"

// CountInGenerations walks the downline of startCode one generation at a
// time and returns how many paid members across all visited generations hold
// targetTier. Each generation is fetched with a single batched query, the
// walk stops at maxDepth or at the first generation with no members, and a
// visited set keeps a cyclic referral chain from being walked twice.
func CountInGenerations(ctx context.Context, store Store, startCode string, maxDepth int, targetTier string) (int, error) {
	count := 0
	visited := map[string]bool{startCode: true}
	generation := []string{startCode}

	for depth := 0; depth < maxDepth && len(generation) > 0; depth++ {
		members, err := store.PaidReferredBy(ctx, generation)
		if err != nil {
			return count, err
		}

		next := make([]string, 0, len(members))
		for _, m := range members {
			if m.ReferralCode != "" && visited[m.ReferralCode] {
				continue
			}
			if m.HoldsTier(targetTier) {
				count++
			}
			if m.ReferralCode == "" {
				continue
			}
			visited[m.ReferralCode] = true
			next = append(next, m.ReferralCode)
		}
		generation = next
	}

	return count, nil
}
