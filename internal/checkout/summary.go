package checkout

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/Pelestrom/vin-gros-boutique-ci/internal/cart"
	"github.com/Pelestrom/vin-gros-boutique-ci/internal/pricing"
)

// Summary renders the plain-text order message sent to the shop manager.
func Summary(c Customer, snap cart.Snapshot, currency string, labels Labels) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", labels.OrderFrom, c.Name)
	fmt.Fprintf(&b, "%s: %s\n", labels.Phone, c.Phone)
	fmt.Fprintf(&b, "%s: %s\n", labels.Fulfilment, labels.Mode(c.Mode))
	if c.Mode == ModeDelivery {
		fmt.Fprintf(&b, "%s: %s\n", labels.Address, c.Address)
	}

	fmt.Fprintf(&b, "\n*%s:*\n", labels.Products)
	for _, l := range snap.Lines {
		fmt.Fprintf(&b, "- %s x%d (%s)\n", l.Name, l.Quantity, pricing.Format(l.Subtotal(), currency))
	}

	fmt.Fprintf(&b, "\n%s: %s %s %d %s\n", labels.Total, pricing.Format(snap.TotalPrice, currency), labels.ItemsFor, snap.TotalCount, labels.Items)
	if c.Note != "" {
		fmt.Fprintf(&b, "\n%s: %s", labels.Note, c.Note)
	}
	return b.String()
}

// HandOffURL builds the messaging link carrying text to destination. The text
// is percent-encoded with spaces as %20.
func HandOffURL(base, destination, text string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	return base + "/" + url.PathEscape(strings.TrimSpace(destination)) + "?text=" + EncodeComponent(text)
}

// componentUnescape restores the marks encodeURIComponent leaves untouched.
var componentUnescape = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeComponent percent-encodes s like encodeURIComponent: letters, digits
// and -_.!~*'() stay literal, everything else is UTF-8 percent-encoded.
func EncodeComponent(s string) string {
	return componentUnescape.Replace(url.QueryEscape(s))
}
