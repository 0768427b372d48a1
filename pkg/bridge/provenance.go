package bridge

// ValidateCustody proves that custody of tokenID passed directly from the
// customer to the bridge admin in a single transfer. history must be ordered
// most-recent-first; only the most recent transfer touching tokenID is
// inspected, older entries are ignored. Multi-hop custody paths through
// an intermediary holder are not recognized.
func ValidateCustody(history []Transfer, tokenID, customerKey, adminKey string) error {
	for i := range history {
		t := &history[i]
		if t.TokenID != tokenID {
			continue
		}
		if t.Recipient != adminKey {
			return &TokenError{TokenID: tokenID, Err: ErrCurrentOwnerNotAdmin}
		}
		if t.Sender != customerKey {
			return &TokenError{TokenID: tokenID, Err: ErrPreviousOwnerMismatch}
		}
		return nil
	}
	return &TokenError{TokenID: tokenID, Err: ErrNoCustodyRecord}
}
