// Package policy holds the fixed business constants of the attestation core.
package policy

// MinimumStake is the smallest stake an organization must post at
// enrollment. Stake bookkeeping itself lives with the settlement
// collaborator; the directory only checks the floor.
const MinimumStake int64 = 1000

// VerifiedThreshold is the combined-confidence floor for a verified
// decision.
const VerifiedThreshold = 0.8

// FieldMatchThreshold is the per-field similarity floor below which a fuzzy
// comparison earns no credit.
const FieldMatchThreshold = 0.8
