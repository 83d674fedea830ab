package checkout

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Pelestrom/vin-gros-boutique-ci/internal/cart"
	"github.com/Pelestrom/vin-gros-boutique-ci/internal/pricing"
)

func sampleSnapshot() cart.Snapshot {
	s := cart.NewStore()
	s.AddToCart(cart.Line{ID: 2, Name: "Hennessy XO", UnitPrice: pricing.FromUnits(180), Quantity: 1})
	s.AddToCart(cart.Line{ID: 5, Name: "Corona Extra Pack", UnitPrice: pricing.FromUnits(35), Quantity: 2})
	return s.Snapshot()
}

func english(t *testing.T) Labels {
	t.Helper()
	l, ok := LabelsFor("")
	require.True(t, ok)
	return l
}

func TestSummaryPickup(t *testing.T) {
	c := Customer{Name: "Awa", Phone: "0707070707", Mode: ModePickup}
	got := Summary(c, sampleSnapshot(), "€", english(t))
	want := "New order from: Awa\n" +
		"Phone: 0707070707\n" +
		"Fulfilment: Store pickup\n" +
		"\n*Ordered products:*\n" +
		"- Hennessy XO x1 (180€)\n" +
		"- Corona Extra Pack x2 (70€)\n" +
		"\nTotal: 250€ for 3 item(s)\n"
	require.Equal(t, want, got)
}

func TestSummaryDeliveryWithNote(t *testing.T) {
	c := Customer{Name: "Koffi", Phone: "0102030405", Mode: ModeDelivery, Address: "Cocody, Abidjan", Note: "Call before"}
	got := Summary(c, sampleSnapshot(), "€", english(t))
	require.Contains(t, got, "Fulfilment: Home delivery\nAddress: Cocody, Abidjan\n\n*Ordered products:*\n")
	require.True(t, len(got) > 0 && got[len(got)-1] != '\n')
	require.Contains(t, got, "item(s)\n\nNote: Call before")
}

func TestSummaryOmitsAddressForPickup(t *testing.T) {
	c := Customer{Name: "Awa", Phone: "1", Mode: ModePickup, Address: "ignored"}
	require.NotContains(t, Summary(c, sampleSnapshot(), "€", english(t)), "Address:")
}

func TestSummaryInFrench(t *testing.T) {
	labels, ok := LabelsFor("FR")
	require.True(t, ok)
	c := Customer{Name: "Koffi", Phone: "0102030405", Mode: ModeDelivery, Address: "Cocody"}
	want := "Nouvelle commande de: Koffi\n" +
		"Téléphone: 0102030405\n" +
		"Mode de récupération: Livraison\n" +
		"Adresse: Cocody\n" +
		"\n*Produits commandés:*\n" +
		"- Hennessy XO x1 (180€)\n" +
		"- Corona Extra Pack x2 (70€)\n" +
		"\nTotal: 250€ pour 3 article(s)\n"
	require.Equal(t, want, Summary(c, sampleSnapshot(), "€", labels))

	_, ok = LabelsFor("de")
	require.False(t, ok)
}

func TestEncodeComponentMatchesBrowserEncoding(t *testing.T) {
	cases := map[string]string{
		"a b":                 "a%20b",
		"x1 (180€)":           "x1%20(180%E2%82%AC)",
		"*Ordered products:*": "*Ordered%20products%3A*",
		"line\nbreak":         "line%0Abreak",
		"1+1=2 & done!":       "1%2B1%3D2%20%26%20done!",
		"it's ~fine_-.":       "it's%20~fine_-.",
		"Château":             "Ch%C3%A2teau",
	}
	for in, want := range cases {
		require.Equal(t, want, EncodeComponent(in), in)
	}
}

func TestHandOffURLRoundTrips(t *testing.T) {
	text := Summary(Customer{Name: "Awa", Phone: "07", Mode: ModePickup}, sampleSnapshot(), "€", english(t))
	link := HandOffURL("https://wa.me/", "22507070707", text)
	require.Contains(t, link, "https://wa.me/22507070707?text=New%20order%20from%3A%20Awa%0A")

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	require.Equal(t, "/22507070707", parsed.Path)
	require.Equal(t, text, parsed.Query().Get("text"))
}
