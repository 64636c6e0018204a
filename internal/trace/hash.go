package trace

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	cyberphone "github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"

	"morphtest/internal/core"
)

// ComputeTraceHash is the sha256 hex digest of a canonical encoding. Empty
// input hashes to "".
func ComputeTraceHash(canonicalEncoding []byte) string {
	if len(canonicalEncoding) == 0 {
		return ""
	}
	sum := sha256.Sum256(canonicalEncoding)
	return hex.EncodeToString(sum[:])
}

type plannedCase struct {
	Suite     string   `json:"suite"`
	Name      string   `json:"name"`
	Direction string   `json:"direction"`
	Input     string   `json:"input"`
	Expect    []string `json:"expect"`
}

// PlanHash identifies the set of scheduled cases independent of file and
// expectation order.
func PlanHash(suites []core.Suite) (string, error) {
	var plan []plannedCase
	for _, s := range suites {
		for _, c := range s.Cases {
			exp := append([]string{}, c.Expect...)
			sort.Strings(exp)
			plan = append(plan, plannedCase{
				Suite: s.Name, Name: c.Name, Direction: string(c.Direction),
				Input: c.Input, Expect: exp,
			})
		}
	}
	sort.SliceStable(plan, func(i, j int) bool {
		a, b := plan[i], plan[j]
		if a.Suite != b.Suite {
			return a.Suite < b.Suite
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Direction < b.Direction
	})
	if plan == nil {
		plan = []plannedCase{}
	}
	raw, err := json.Marshal(plan)
	if err != nil {
		return "", err
	}
	canon, err := cyberphone.Transform(raw)
	if err != nil {
		return "", err
	}
	return ComputeTraceHash(canon), nil
}
