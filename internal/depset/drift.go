package depset

import (
	"sort"
	"strings"

	"github.com/blang/semver/v4"
)

const (
	DriftUpgrade   = "upgrade"
	DriftDowngrade = "downgrade"
	DriftChanged   = "changed"
)

// Drift pairs a missing golden coordinate with an extra generated coordinate
// naming the same group:artifact at a different version.
type Drift struct {
	Module    string `json:"module"`
	Golden    string `json:"golden_version"`
	Generated string `json:"generated_version"`
	Direction string `json:"direction"`
}

// FindDrift matches missing and extra identifiers of the form
// group:artifact:version[:classifier]. Identifiers that are not Maven
// coordinates (catalog references, plugin aliases) never pair up, and
// neither do coordinates whose versions are equal and differ only in
// classifier.
func FindDrift(missing, extra Set) []Drift {
	generated := make(map[string]string)
	for _, id := range extra.List() {
		mod, ver, ok := splitCoordinate(id)
		if !ok {
			continue
		}
		if _, seen := generated[mod]; !seen {
			generated[mod] = ver
		}
	}

	var out []Drift
	seen := make(map[string]bool)
	for _, id := range missing.List() {
		mod, ver, ok := splitCoordinate(id)
		if !ok || seen[mod] {
			continue
		}
		genVer, found := generated[mod]
		if !found || genVer == ver {
			continue
		}
		seen[mod] = true
		out = append(out, Drift{
			Module:    mod,
			Golden:    ver,
			Generated: genVer,
			Direction: direction(ver, genVer),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Module < out[j].Module })
	return out
}

func splitCoordinate(id string) (module, version string, ok bool) {
	parts := strings.Split(id, ":")
	if len(parts) < 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[0] + ":" + parts[1], parts[2], true
}

func direction(golden, generated string) string {
	gv, err := semver.ParseTolerant(golden)
	if err != nil {
		return DriftChanged
	}
	nv, err := semver.ParseTolerant(generated)
	if err != nil {
		return DriftChanged
	}
	switch nv.Compare(gv) {
	case 1:
		return DriftUpgrade
	case -1:
		return DriftDowngrade
	default:
		return DriftChanged
	}
}
