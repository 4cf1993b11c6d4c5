package contracts

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
)

// ItemID is the stable id of a derived item (leakage, opportunity, signal):
// the first 12 hex chars of md5("{contract index}-{subtype}").
// Same snapshot, same ids; actions and outreach rely on that.
func ItemID(contractID int, subtype string) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%d-%s", contractID, subtype)))
	return hex.EncodeToString(sum[:])[:12]
}
