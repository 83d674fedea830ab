package checkout

import "strings"

// Labels is the wording of the order summary.
type Labels struct {
	OrderFrom  string
	Phone      string
	Fulfilment string
	Pickup     string
	Delivery   string
	Address    string
	Products   string
	Total      string
	ItemsFor   string
	Items      string
	Note       string
}

var summaryLabels = map[string]Labels{
	"en": {
		OrderFrom:  "New order from",
		Phone:      "Phone",
		Fulfilment: "Fulfilment",
		Pickup:     "Store pickup",
		Delivery:   "Home delivery",
		Address:    "Address",
		Products:   "Ordered products",
		Total:      "Total",
		ItemsFor:   "for",
		Items:      "item(s)",
		Note:       "Note",
	},
	"fr": {
		OrderFrom:  "Nouvelle commande de",
		Phone:      "Téléphone",
		Fulfilment: "Mode de récupération",
		Pickup:     "Retrait en magasin",
		Delivery:   "Livraison",
		Address:    "Adresse",
		Products:   "Produits commandés",
		Total:      "Total",
		ItemsFor:   "pour",
		Items:      "article(s)",
		Note:       "Note",
	},
}

// LabelsFor returns the summary wording for lang ("en" or "fr"). An empty
// lang means English.
func LabelsFor(lang string) (Labels, bool) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		lang = "en"
	}
	l, ok := summaryLabels[lang]
	return l, ok
}

// Mode returns the wording for a fulfilment mode.
func (l Labels) Mode(m Mode) string {
	if m == ModeDelivery {
		return l.Delivery
	}
	return l.Pickup
}
