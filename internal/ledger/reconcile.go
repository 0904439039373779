package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/kosztorapp/kosztor/internal/model"
)

// Fingerprint digests the fields of the element list that matter for
// deciding whether content has meaningfully changed: identity, name,
// price, value, group, and the tax shape. It is the comparator used
// both to detect external updates (reprice, refetch) and to suppress
// the redundant write-back they would otherwise trigger.
func Fingerprint(els []model.Element) string {
	var b strings.Builder
	for _, el := range els {
		target := "-"
		if el.TaxTarget != nil {
			target = fmt.Sprintf("%d", *el.TaxTarget)
		}
		fmt.Fprintf(&b, "%s|%s|%s|%.2f|%.2f|%d|%t|%.4f|%s\n",
			el.ClientID, el.ServerID, el.Name,
			el.Price, el.Value, el.Group,
			el.IsTax, el.TaxPercentage, target,
		)
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// Reconcile produces the authoritative starting content for a project
// from its competing sources. Remote wins when it actually has
// elements; the local cache is the fallback; with neither, the built-in
// default group set is used. The result is always normalized.
func Reconcile(remote, cached *model.Content) model.Content {
	switch {
	case remote != nil && len(remote.Elements) > 0:
		return model.Normalize(*remote)
	case cached != nil && (len(cached.Elements) > 0 || len(cached.Groups) > 0):
		return model.Normalize(*cached)
	case remote != nil && len(remote.Groups) > 0:
		// Remote knows the group layout even with no elements yet.
		return model.Normalize(*remote)
	default:
		return model.Normalize(model.DefaultContent())
	}
}
