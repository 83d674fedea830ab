package events

// Topic constants for domain events emitted by the storefront.
const (
	TopicCartCleared          = "cart.cleared"
	TopicCheckoutHandedOff    = "checkout.handed_off"
	TopicNewsletterSubscribed = "newsletter.subscribed"
)

// DefaultTopics returns the canonical list of topics.
func DefaultTopics() []string {
	return []string{
		TopicCartCleared,
		TopicCheckoutHandedOff,
		TopicNewsletterSubscribed,
	}
}
