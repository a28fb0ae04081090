package checker

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"das.dev/contracts/witness"
)

func describeEditValue(v witness.EditValue) string {
	switch ev := v.(type) {
	case witness.EditOwner:
		return "owner(" + hex.EncodeToString(ev.LockArgs) + ")"
	case witness.EditManager:
		return "manager(" + hex.EncodeToString(ev.LockArgs) + ")"
	case witness.EditRecords:
		return fmt.Sprintf("records(%d)", len(ev.Records))
	case witness.EditProof:
		return "proof"
	case witness.EditChannel:
		return fmt.Sprintf("channel(%s, fee=%d)", hex.EncodeToString(ev.LockHash[:]), ev.Fee)
	case witness.EditExpiredAt:
		if ev.Channel != nil {
			return fmt.Sprintf("expired_at(%d, channel=%s, fee=%d)", ev.ExpiredAt, hex.EncodeToString(ev.Channel.LockHash[:]), ev.Channel.Fee)
		}
		return fmt.Sprintf("expired_at(%d)", ev.ExpiredAt)
	default:
		return "none"
	}
}

func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func (r *Report) WriteText(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "fixture: %s\n", r.Name)
	fmt.Fprintf(&b, "flag: %s\n", r.Flag)
	fmt.Fprintf(&b, "contains: creation=%t edition=%t renew=%t recycle=%t\n",
		r.ContainsCreation, r.ContainsEdition, r.ContainsRenew, r.ContainsRecycle)
	for _, s := range r.Witnesses {
		fmt.Fprintf(&b, "  witnesses[%d] %-7s %s", s.Index, s.Action, s.Account)
		if s.EditKey != "" {
			fmt.Fprintf(&b, " %s=%s", s.EditKey, s.EditValue)
		}
		if s.SignRole != "" {
			fmt.Fprintf(&b, " signer=%s/%s", s.SignRole, s.SignType)
		}
		b.WriteByte('\n')
	}
	writeSign(&b, "mint_sign", r.MintSign)
	writeSign(&b, "renew_sign", r.RenewSign)
	writeRules(&b, "price_rules", r.PriceRules)
	writeRules(&b, "preserved_rules", r.PreservedRules)
	if r.Verified {
		b.WriteString("signatures: ok\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeSign(b *strings.Builder, label string, s *SignSummary) {
	if s == nil {
		return
	}
	fmt.Fprintf(b, "%s: witnesses[%d] signer=%s/%s expired_at=%d root=%s\n",
		label, s.Index, s.SignRole, s.SignType, s.ExpiredAt, s.AccountListSmtRoot)
}

func writeRules(b *strings.Builder, label string, s *RuleSummary) {
	if s == nil {
		return
	}
	fmt.Fprintf(b, "%s: %d rules, hash=%s\n", label, s.Count, s.Hash)
}
