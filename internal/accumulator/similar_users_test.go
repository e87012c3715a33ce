package accumulator

import (
	"testing"

	"github.com/csy1204/recsys-2019-conf-ver/internal/domain"
)

func interact(acc Accumulator, userID, itemID string) {
	acc.Update(&domain.Event{UserID: userID, ActionType: domain.ActionInteractionItemInfo, Reference: itemID})
}

func TestSimilarUsers_SummedCoInteractionCounts(t *testing.T) {
	acc := NewSimilarUsersItemInteraction()

	// a shares item 1 with b and item 2 with c; d is unrelated.
	interact(acc, "a", "1")
	interact(acc, "a", "2")
	interact(acc, "b", "1")
	interact(acc, "b", "3")
	interact(acc, "c", "2")
	interact(acc, "c", "3")
	interact(acc, "d", "9")

	row := &domain.Event{UserID: "a", Timestamp: 100}
	// Item 3 occurs in both b's and c's sets.
	out := collect(t, acc, row, &domain.Candidate{ItemID: "3"})
	if out["similar_users_item_interaction"] != 2 {
		t.Errorf("item 3 = %v, want 2", out["similar_users_item_interaction"])
	}
	// Item 1 occurs only in b's set.
	out = collect(t, acc, row, &domain.Candidate{ItemID: "1"})
	if out["similar_users_item_interaction"] != 1 {
		t.Errorf("item 1 = %v, want 1", out["similar_users_item_interaction"])
	}
	// d shares nothing with a; its item is invisible.
	out = collect(t, acc, row, &domain.Candidate{ItemID: "9"})
	if out["similar_users_item_interaction"] != 0 {
		t.Errorf("item 9 = %v, want 0", out["similar_users_item_interaction"])
	}
}

func TestSimilarUsers_SharedItemMultiplicity(t *testing.T) {
	acc := NewSimilarUsersItemInteraction()

	// b shares both of a's items, so b's set is counted once per shared
	// item: every item of b scores 2, including the unshared item 5.
	interact(acc, "a", "1")
	interact(acc, "a", "2")
	interact(acc, "b", "1")
	interact(acc, "b", "2")
	interact(acc, "b", "5")

	row := &domain.Event{UserID: "a", Timestamp: 100}
	out := collect(t, acc, row, &domain.Candidate{ItemID: "5"})
	if out["similar_users_item_interaction"] != 2 {
		t.Errorf("item 5 = %v, want 2", out["similar_users_item_interaction"])
	}
	out = collect(t, acc, row, &domain.Candidate{ItemID: "1"})
	if out["similar_users_item_interaction"] != 2 {
		t.Errorf("item 1 = %v, want 2", out["similar_users_item_interaction"])
	}
}

func TestSimilarUsers_CacheRecomputesOncePerClickout(t *testing.T) {
	acc := NewSimilarUsersItemInteraction()
	interact(acc, "a", "1")
	interact(acc, "b", "1")

	row := &domain.Event{UserID: "a", Timestamp: 100}
	for _, itemID := range []string{"1", "2", "3"} {
		collect(t, acc, row, &domain.Candidate{ItemID: itemID})
	}
	if acc.Recomputes != 1 {
		t.Errorf("Recomputes = %d after one clickout, want 1", acc.Recomputes)
	}

	// A later clickout by the same user invalidates by timestamp.
	collect(t, acc, &domain.Event{UserID: "a", Timestamp: 200}, &domain.Candidate{ItemID: "1"})
	if acc.Recomputes != 2 {
		t.Errorf("Recomputes = %d after second clickout, want 2", acc.Recomputes)
	}

	// A different user at the same timestamp also recomputes.
	collect(t, acc, &domain.Event{UserID: "b", Timestamp: 200}, &domain.Candidate{ItemID: "1"})
	if acc.Recomputes != 3 {
		t.Errorf("Recomputes = %d after other user, want 3", acc.Recomputes)
	}
}

func TestMostSimilarUser_BinaryMembership(t *testing.T) {
	acc := NewMostSimilarUserItemInteraction()

	// b shares two items with a, c shares one; both score by union size:
	// union(a{1,2,3}, b{1,2,4}) = 4, union(a{1,2,3}, c{3,9,8,7}) = 6.
	// The larger union wins, so c is picked.
	for _, itemID := range []string{"1", "2", "3"} {
		interact(acc, "a", itemID)
	}
	for _, itemID := range []string{"1", "2", "4"} {
		interact(acc, "b", itemID)
	}
	for _, itemID := range []string{"3", "9", "8", "7"} {
		interact(acc, "c", itemID)
	}

	row := &domain.Event{UserID: "a", Timestamp: 100}
	out := collect(t, acc, row, &domain.Candidate{ItemID: "9"})
	if out["most_similar_item_interaction"] != 1 {
		t.Errorf("item 9 = %v, want 1 (member of c's set)", out["most_similar_item_interaction"])
	}
	out = collect(t, acc, row, &domain.Candidate{ItemID: "4"})
	if out["most_similar_item_interaction"] != 0 {
		t.Errorf("item 4 = %v, want 0 (member of b's set only)", out["most_similar_item_interaction"])
	}
}

func TestMostSimilarUser_NoOtherUsers(t *testing.T) {
	acc := NewMostSimilarUserItemInteraction()
	interact(acc, "a", "1")

	out := collect(t, acc, &domain.Event{UserID: "a", Timestamp: 100}, &domain.Candidate{ItemID: "1"})
	if out["most_similar_item_interaction"] != 0 {
		t.Errorf("lonely user = %v, want 0", out["most_similar_item_interaction"])
	}
}

func TestTopKSimilarUsers_UnionOfKBestUsers(t *testing.T) {
	acc := NewTopKSimilarUsersItemInteraction(2)

	for _, itemID := range []string{"1", "2"} {
		interact(acc, "a", itemID)
	}
	// Three co-interacting users with distinct extra items.
	interact(acc, "b", "1")
	interact(acc, "b", "5")
	for _, itemID := range []string{"2", "6", "7"} {
		interact(acc, "c", itemID)
	}
	interact(acc, "d", "1")

	// Scores by union with a{1,2}: b{1,5} -> 3, c{2,6,7} -> 4, d{1} -> 2.
	// Top 2 are c and b; d's exclusive items stay invisible.
	row := &domain.Event{UserID: "a", Timestamp: 100}
	out := collect(t, acc, row, &domain.Candidate{ItemID: "5"})
	if out["most_similar_item_interaction_k_2"] != 1 {
		t.Errorf("item 5 = %v, want 1", out["most_similar_item_interaction_k_2"])
	}
	out = collect(t, acc, row, &domain.Candidate{ItemID: "6"})
	if out["most_similar_item_interaction_k_2"] != 1 {
		t.Errorf("item 6 = %v, want 1", out["most_similar_item_interaction_k_2"])
	}
}

func TestTopKSimilarUsers_RepeatedUserConsumesSlots(t *testing.T) {
	acc := NewTopKSimilarUsersItemInteraction(2)

	// b shares both of a's items and enters the ranking once per shared
	// item; with equal scores (union 3 for both b and c) b's two entries
	// fill both slots and c's exclusive item stays invisible.
	interact(acc, "a", "1")
	interact(acc, "a", "2")
	interact(acc, "b", "1")
	interact(acc, "b", "2")
	interact(acc, "b", "5")
	interact(acc, "c", "2")
	interact(acc, "c", "9")

	row := &domain.Event{UserID: "a", Timestamp: 100}
	out := collect(t, acc, row, &domain.Candidate{ItemID: "5"})
	if out["most_similar_item_interaction_k_2"] != 1 {
		t.Errorf("item 5 = %v, want 1", out["most_similar_item_interaction_k_2"])
	}
	out = collect(t, acc, row, &domain.Candidate{ItemID: "9"})
	if out["most_similar_item_interaction_k_2"] != 0 {
		t.Errorf("item 9 = %v, want 0", out["most_similar_item_interaction_k_2"])
	}
}
