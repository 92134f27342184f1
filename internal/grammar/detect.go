package grammar

import (
	"github.com/foxxcyber/receipt-grammar/internal/models"
)

// vendorSignals are checked against each token in stream order
var vendorSignals = []struct {
	vendor models.Vendor
	match  Predicate
}{
	{models.VendorTesco, AnyOf(
		ContainsFold("tesco"),
		ContainsFold("clubcard"),
		Label{Target: "TESCO", Threshold: 0.75}.Predicate(),
	)},
	{models.VendorSainsbury, AnyOf(
		ContainsFold("sainsbury"),
		ContainsFold("nectar"),
		Equals("Good food for all of us"),
		Label{Target: "Sainsbury's", Threshold: 0.8}.Predicate(),
	)},
	{models.VendorLidl, AnyOf(
		ContainsFold("lidl"),
		Label{Target: "Lidl", Threshold: 0.75}.Predicate(),
	)},
}

// DetectVendor returns the vendor named by the earliest identifying token
func DetectVendor(s Stream) (models.Vendor, bool) {
	for _, tok := range s.Tokens() {
		for _, sig := range vendorSignals {
			if sig.match(tok) {
				return sig.vendor, true
			}
		}
	}
	return "", false
}
