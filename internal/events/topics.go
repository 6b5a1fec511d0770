package events

const (
	TopicQuoteCreated = "quote.created"
	TopicStockLow     = "stock.low"
	TopicKitToggled   = "kit.toggled"
)

var knownTopics = map[string]struct{}{
	TopicQuoteCreated: {},
	TopicStockLow:     {},
	TopicKitToggled:   {},
}

// Known reports whether topic is one the service emits.
func Known(topic string) bool {
	_, ok := knownTopics[topic]
	return ok
}
