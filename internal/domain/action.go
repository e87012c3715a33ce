package domain

// ActionType identifies the kind of a logged user interaction.
type ActionType string

// All action types present in the interaction log.
const (
	ActionChangeOfSortOrder    ActionType = "change of sort order"
	ActionClickoutItem         ActionType = "clickout item"
	ActionFilterSelection      ActionType = "filter selection"
	ActionInteractionItemDeals ActionType = "interaction item deals"
	ActionInteractionItemRate  ActionType = "interaction item rating"
	ActionInteractionItemImage ActionType = "interaction item image"
	ActionInteractionItemInfo  ActionType = "interaction item info"
	ActionSearchForDestination ActionType = "search for destination"
	ActionSearchForItem        ActionType = "search for item"
	ActionSearchForPoi         ActionType = "search for poi"
)

// AllActions lists every action type, in a fixed order.
var AllActions = []ActionType{
	ActionChangeOfSortOrder,
	ActionClickoutItem,
	ActionFilterSelection,
	ActionInteractionItemDeals,
	ActionInteractionItemRate,
	ActionInteractionItemImage,
	ActionInteractionItemInfo,
	ActionSearchForDestination,
	ActionSearchForItem,
	ActionSearchForPoi,
}

// ActionsWithItemReference lists the action types whose Reference field
// carries an item id.
var ActionsWithItemReference = []ActionType{
	ActionSearchForItem,
	ActionInteractionItemInfo,
	ActionInteractionItemImage,
	ActionInteractionItemDeals,
	ActionInteractionItemRate,
	ActionClickoutItem,
}

// actionShortCodes maps each action type to a one-letter code used when
// encoding action histories as compact strings.
var actionShortCodes = map[ActionType]string{
	ActionChangeOfSortOrder:    "a",
	ActionClickoutItem:         "b",
	ActionFilterSelection:      "c",
	ActionInteractionItemDeals: "d",
	ActionInteractionItemRate:  "j",
	ActionInteractionItemImage: "e",
	ActionInteractionItemInfo:  "f",
	ActionSearchForDestination: "g",
	ActionSearchForItem:        "h",
	ActionSearchForPoi:         "i",
}

// ShortCode returns the one-letter code for an action type, or "?" for an
// unknown type.
func (a ActionType) ShortCode() string {
	if c, ok := actionShortCodes[a]; ok {
		return c
	}
	return "?"
}

// HasItemReference reports whether the action's Reference is an item id.
func (a ActionType) HasItemReference() bool {
	for _, t := range ActionsWithItemReference {
		if t == a {
			return true
		}
	}
	return false
}
