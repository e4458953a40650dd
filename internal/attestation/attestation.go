// Package attestation implements the challenge-response attestation issued
// alongside each commitment.
//
// The issuer builds a fresh Merkle tree per attestation from eight synthetic
// filler leaves plus the commitment digest, derives a challenge from the
// commitment and the root, and binds the caller's secret key into a response
// digest. Verification is a freshness and well-formedness check only: it does
// not recompute the challenge, the response, or the Merkle inclusion path.
// That weak contract is the protocol as shipped, not an oversight to fix
// here; a sound scheme would replace this package wholesale.
package attestation

import (
	"strconv"
	"time"

	"github.com/mbd888/zkroulette/internal/digest"
	"github.com/mbd888/zkroulette/internal/merkle"
	"github.com/mbd888/zkroulette/internal/metrics"
)

const (
	// fillerLeafCount is the number of synthetic leaves padded in front of
	// the commitment leaf.
	fillerLeafCount = 8

	// DefaultMaxAge is how long an attestation stays verifiable.
	DefaultMaxAge = 600 * time.Second
)

// Attestation is the proof bundle returned to the caller. It is ephemeral:
// the issuer never stores it server side.
type Attestation struct {
	Commitment  string   `json:"commitment"`
	Challenge   string   `json:"challenge"`
	Response    string   `json:"response"`
	MerkleProof []string `json:"merkleProof"`
	MerkleRoot  string   `json:"merkleRoot"`
	IssuedAt    float64  `json:"timestamp"` // epoch seconds
}

// Issuer mints and verifies attestations.
type Issuer struct {
	maxAge  time.Duration
	nowFunc func() time.Time
}

// NewIssuer creates an issuer with the given verification window. A zero
// maxAge selects DefaultMaxAge.
func NewIssuer(maxAge time.Duration) *Issuer {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Issuer{maxAge: maxAge, nowFunc: time.Now}
}

// Issue builds an attestation for the given commitment digest and secret key.
func (is *Issuer) Issue(commitmentDigest, secretKey string) *Attestation {
	leaves := make([]string, 0, fillerLeafCount+1)
	for i := 0; i < fillerLeafCount; i++ {
		leaves = append(leaves, digest.Sum("leaf_"+strconv.Itoa(i), commitmentDigest))
	}
	leaves = append(leaves, commitmentDigest)

	tree := merkle.Build(leaves)
	now := is.nowFunc()

	challenge := digest.Sum(commitmentDigest, tree.Root(), strconv.FormatInt(now.Unix(), 10))
	response := digest.Sum(challenge, secretKey)

	metrics.AttestationsIssuedTotal.Inc()

	return &Attestation{
		Commitment:  commitmentDigest,
		Challenge:   challenge,
		Response:    response,
		MerkleProof: tree.Proof(len(leaves) - 1),
		MerkleRoot:  tree.Root(),
		IssuedAt:    float64(now.UnixNano()) / float64(time.Second),
	}
}

// Verify reports whether the attestation is well formed and fresh: all of
// commitment, challenge, response, and root present, and issued within the
// verification window. It never returns an error; stale or malformed input
// is simply false.
func (is *Issuer) Verify(att *Attestation) bool {
	ok := is.verify(att)
	if ok {
		metrics.AttestationVerificationsTotal.WithLabelValues("ok").Inc()
	} else {
		metrics.AttestationVerificationsTotal.WithLabelValues("rejected").Inc()
	}
	return ok
}

func (is *Issuer) verify(att *Attestation) bool {
	if att == nil {
		return false
	}
	if att.Commitment == "" || att.Challenge == "" || att.Response == "" || att.MerkleRoot == "" {
		return false
	}

	age := float64(is.nowFunc().UnixNano())/float64(time.Second) - att.IssuedAt
	return age <= is.maxAge.Seconds()
}
