package accumulator

import (
	"fmt"
	"strings"

	"github.com/csy1204/recsys-2019-conf-ver/internal/domain"
	"github.com/csy1204/recsys-2019-conf-ver/internal/priors"
	"github.com/csy1204/recsys-2019-conf-ver/internal/similarity"
)

// Deps carries the externally loaded tables the default accumulator set
// depends on. All fields are required; constructing the set with a missing
// table is a misconfigured deployment.
type Deps struct {
	ClickProbs *priors.ClickProbs
	// MetadataSim is the content-metadata Jaccard provider.
	MetadataSim similarity.Provider
	// PoiSim is the point-of-interest Jaccard provider.
	PoiSim similarity.Provider
	// PriceSim is the price-distance provider.
	PriceSim similarity.Provider
}

// Defaults constructs the full default accumulator set, empty, in the fixed
// registration order the sharding contract depends on.
func Defaults(deps Deps) []Accumulator {
	accs := []Accumulator{
		NewViewItemClicks("identical_impressions_item_clicks",
			func(row *domain.Event) string { return row.ImpressionsHash }),
		NewViewItemClicks("identical_impressions_item_clicks2",
			func(row *domain.Event) string { return row.ImpressionsRaw }),
		NewSameImpression("is_impression_the_same"),
		NewActionHistory("last_10_actions"),
		NewLastValue("last_sort_order", []domain.ActionType{domain.ActionChangeOfSortOrder},
			eventReference, "UNK"),
		NewLastValue("last_filter_selection", []domain.ActionType{domain.ActionFilterSelection},
			eventReference, "UNK"),
		NewLastIndexDiff("last_item_index", []domain.ActionType{domain.ActionClickoutItem},
			UserKey, indexClicked),
		NewLastIndexDiff("last_item_fake_index", domain.ActionsWithItemReference,
			UserKey, fakeIndexInteracted),
		NewLastPosition("last_clicked_item_position_same_view"),
		NewLastIndexDiff("last_item_index_same_view", []domain.ActionType{domain.ActionClickoutItem},
			UserImpressionsKey, indexClicked),
		NewLastIndexDiff("last_item_index_same_fake_view", domain.ActionsWithItemReference,
			UserFakeImpressionsKey, fakeIndexInteracted),
		NewActionTimeDiffs("last_event_ts"),
		NewLastValue("last_item_clickout", []domain.ActionType{domain.ActionClickoutItem},
			eventReference, 0),
		NewItemCTR(),
		NewKeyedCounter("clickout_item_platform_clicks", clickoutOnly,
			func(row *domain.Event) string { return pairKey(row.Reference, row.Platform) },
			func(row *domain.Event, item *domain.Candidate) string { return pairKey(item.ItemID, row.Platform) }),
		NewKeyedCounter("clickout_user_item_clicks", clickoutOnly,
			func(row *domain.Event) string { return pairKey(row.UserID, row.Reference) },
			func(row *domain.Event, item *domain.Candidate) string { return pairKey(row.UserID, item.ItemID) }),
		NewImpressionCounter("clickout_user_item_impressions"),
		NewMatchLast("was_interaction_img", domain.ActionInteractionItemImage),
		NewTimestampDelta("interaction_img_diff_ts", domain.ActionInteractionItemImage),
		NewKeyedCounter("interaction_img_freq", []domain.ActionType{domain.ActionInteractionItemImage},
			userReferenceKey, userItemKey),
		NewMatchLast("was_interaction_deal", domain.ActionInteractionItemDeals),
		NewKeyedCounter("interaction_deal_freq", []domain.ActionType{domain.ActionInteractionItemDeals},
			userReferenceKey, userItemKey),
		NewMatchLast("was_interaction_rating", domain.ActionInteractionItemRate),
		NewKeyedCounter("interaction_rating_freq", []domain.ActionType{domain.ActionInteractionItemRate},
			userReferenceKey, userItemKey),
		NewMatchLast("was_interaction_info", domain.ActionInteractionItemInfo),
		NewKeyedCounter("interaction_info_freq", []domain.ActionType{domain.ActionInteractionItemInfo},
			userReferenceKey, userItemKey),
		NewMatchLast("was_item_searched", domain.ActionSearchForItem),
		NewLastValue("last_filter",
			[]domain.ActionType{domain.ActionFilterSelection, domain.ActionSearchForDestination, domain.ActionSearchForPoi},
			func(row *domain.Event) string { return row.CurrentFilters }, ""),
		NewInteractionSet("user_item_interactions_list", UserKey),
		NewInteractionSet("user_item_session_interactions_list", UserSessionKey),
		NewKeyedCounter("user_rank_preference", clickoutOnly,
			func(row *domain.Event) string { return rankKey(row.UserID, row.IndexClicked) },
			func(row *domain.Event, item *domain.Candidate) string { return rankKey(row.UserID, item.Rank) }),
		NewKeyedCounter("user_fake_rank_preference", domain.ActionsWithItemReference,
			func(row *domain.Event) string { return rankKey(row.UserID, row.FakeIndexInteracted) },
			func(row *domain.Event, item *domain.Candidate) string { return rankKey(row.UserID, item.Rank) }),
		NewKeyedCounter("user_session_rank_preference", clickoutOnly,
			func(row *domain.Event) string { return rankKey(pairKey(row.UserID, row.SessionID), row.IndexClicked) },
			func(row *domain.Event, item *domain.Candidate) string {
				return rankKey(pairKey(row.UserID, row.SessionID), item.Rank)
			}),
		NewKeyedCounter("user_impression_rank_preference", clickoutOnly,
			func(row *domain.Event) string { return rankKey(pairKey(row.UserID, row.ImpressionsHash), row.IndexClicked) },
			func(row *domain.Event, item *domain.Candidate) string {
				return rankKey(pairKey(row.UserID, row.ImpressionsHash), item.Rank)
			}),
		NewLastSeenTimestamp("interaction_item_image_item_last_timestamp", domain.ActionInteractionItemImage),
		NewLastSeenTimestamp("clickout_item_item_last_timestamp", domain.ActionClickoutItem),
		NewLastClickoutTimestamp("last_timestamp_clickout"),
		NewClickProbability(deps.ClickProbs),
		NewFakeClickProbability(deps.ClickProbs),
		NewSimilarityFeatures("item_similarity_to_last_clicked_item", deps.MetadataSim, SimToLastClicked),
		NewSimilarityFeatures("avg_similarity_to_interacted_items", deps.MetadataSim, SimToInteracted),
		NewSimilarityFeatures("avg_similarity_to_interacted_session_items", deps.MetadataSim, SimToSessionInteracted),
		NewSimilarityFeatures("poi_item_similarity_to_last_clicked_item", deps.PoiSim, SimToLastClicked),
		NewSimilarityFeatures("poi_avg_similarity_to_interacted_items", deps.PoiSim, SimToInteracted),
		NewSimilarityFeatures("num_pois", deps.PoiSim, SimSetSize),
		NewSimilarityFeatures("avg_price_similarity_to_interacted_items", deps.PriceSim, SimToInteracted),
		NewSimilarityFeatures("avg_price_similarity_to_interacted_session_items", deps.PriceSim, SimToSessionInteracted),
		NewPoiFeatures(),
		NewClickSequenceEncoder(),
		NewItemLastClickoutStatsInSession(),
		NewIndicesFeatures(),
		NewFakeIndicesFeatures(),
		NewPriceFeatures(),
		NewPriceSimilarity(),
		NewSimilarUsersItemInteraction(),
		NewMostSimilarUserItemInteraction(),
		NewGlobalTimestampPerItem(),
	}

	accs = append(accs, actionCountAccumulators(domain.ActionFilterSelection)...)

	for _, t := range domain.ActionsWithItemReference {
		accs = append(accs, NewDistinctInteractions(t, DistinctByTimestamp))
	}
	for _, t := range domain.ActionsWithItemReference {
		accs = append(accs, NewDistinctInteractions(t, DistinctBySession))
	}

	return accs
}

// Extras returns accumulators that exist but are not part of the default
// registration: the per-platform CTR decomposition, the top-k similar-user
// generalization and the dwell-time estimators.
func Extras() []Accumulator {
	return []Accumulator{
		NewItemCTRByPlatform(),
		NewTopKSimilarUsersItemInteraction(1),
		NewItemAttentionSpan(),
		NewMouseSpeed(),
	}
}

// clickoutOnly is the most common interest declaration.
var clickoutOnly = []domain.ActionType{domain.ActionClickoutItem}

func eventReference(row *domain.Event) string { return row.Reference }

func indexClicked(row *domain.Event) int { return row.IndexClicked }

func fakeIndexInteracted(row *domain.Event) int { return row.FakeIndexInteracted }

func userReferenceKey(row *domain.Event) string { return pairKey(row.UserID, row.Reference) }

func userItemKey(row *domain.Event, item *domain.Candidate) string {
	return pairKey(row.UserID, item.ItemID)
}

// actionCountAccumulators builds plain per-user action counters for the
// given action types.
func actionCountAccumulators(actions ...domain.ActionType) []Accumulator {
	var accs []Accumulator
	for _, t := range actions {
		action := t
		name := fmt.Sprintf("%s_count", strings.ReplaceAll(string(action), " ", "_"))
		accs = append(accs, NewKeyedCounter(name, []domain.ActionType{action},
			func(row *domain.Event) string { return pairKey(row.UserID, string(action)) },
			func(row *domain.Event, item *domain.Candidate) string { return pairKey(row.UserID, string(action)) }))
	}
	return accs
}
